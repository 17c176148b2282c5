package policy

import "fmt"

// Periodic computes the (R, S) periodic review policy.
//
// Every R days stock is topped up to S, which must cover expected demand
// over the lead time plus the review period and a safety buffer of k
// standard deviations over the same window.
func (c *Calculator) Periodic(series []float64, params PeriodicParams) (PeriodicResult, error) {
	if err := params.Validate(); err != nil {
		return PeriodicResult{}, fmt.Errorf("periodic policy: %w", err)
	}

	stats, err := c.Statistics(series)
	if err != nil {
		return PeriodicResult{}, fmt.Errorf("periodic policy: %w", err)
	}

	result, err := periodicFromStats(stats, params)
	if err != nil {
		return PeriodicResult{}, fmt.Errorf("periodic policy: %w", err)
	}
	return result, nil
}

func periodicFromStats(stats Statistics, params PeriodicParams) (PeriodicResult, error) {
	window := params.Window()
	muLD, err := windowDemand(stats.DailyDemand, window)
	if err != nil {
		return PeriodicResult{}, err
	}
	sigmaLD := windowSigma(stats.Sigma, window)
	s, err := level(muLD, params.K, sigmaLD)
	if err != nil {
		return PeriodicResult{}, err
	}

	return PeriodicResult{
		DailyDemand: stats.DailyDemand,
		Sigma:       stats.Sigma,
		MuLD:        muLD,
		SigmaLD:     sigmaLD,
		S:           s,
		R:           params.R,
		LD:          params.LD,
		K:           params.K,
	}, nil
}
