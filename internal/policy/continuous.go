package policy

import "fmt"

// Continuous computes the (s, Q) continuous review policy.
//
// An order of Q units (five days of average demand) is placed as soon as
// stock falls to the reorder point s, which covers expected lead time demand
// plus k lead time standard deviations.
func (c *Calculator) Continuous(series []float64, params ContinuousParams) (ContinuousResult, error) {
	if err := params.Validate(); err != nil {
		return ContinuousResult{}, fmt.Errorf("continuous policy: %w", err)
	}

	stats, err := c.Statistics(series)
	if err != nil {
		return ContinuousResult{}, fmt.Errorf("continuous policy: %w", err)
	}

	muLD, err := windowDemand(stats.DailyDemand, params.LD)
	if err != nil {
		return ContinuousResult{}, fmt.Errorf("continuous policy: %w", err)
	}
	sigmaLD := windowSigma(stats.Sigma, params.LD)
	reorderPoint, err := level(muLD, params.K, sigmaLD)
	if err != nil {
		return ContinuousResult{}, fmt.Errorf("continuous policy: %w", err)
	}

	return ContinuousResult{
		DailyDemand:  stats.DailyDemand,
		Sigma:        stats.Sigma,
		MuLD:         muLD,
		SigmaLD:      sigmaLD,
		ReorderPoint: reorderPoint,
		Q:            OrderQuantityDays * stats.DailyDemand,
		LD:           params.LD,
		K:            params.K,
	}, nil
}
