package policy

import (
	"math"

	"github.com/andresuchdata/replenish/internal/domain"
)

// Statistics reduces a demand series to its rounded-up mean daily demand and
// the standard deviation of daily demand.
//
// The series must be non-empty and free of negative or non-finite values.
// In sample mode at least two observations are required; in population mode
// a single observation yields a sigma of 0.
func (c *Calculator) Statistics(series []float64) (Statistics, error) {
	n := len(series)
	if n == 0 {
		return Statistics{}, domain.InvalidInputf("demand series is empty")
	}
	if c.mode == SampleStdDev && n < 2 {
		return Statistics{}, domain.InvalidInputf("sample standard deviation needs at least 2 observations, got %d", n)
	}

	var sum float64
	for i, v := range series {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Statistics{}, domain.InvalidInputf("observation %d is not a finite number", i)
		}
		if v < 0 {
			return Statistics{}, domain.InvalidInputf("observation %d is negative (%v)", i, v)
		}
		sum += v
	}
	mean := sum / float64(n)
	daily := math.Ceil(mean)
	if daily >= float64(maxDailyDemand) {
		return Statistics{}, domain.InvalidInputf("mean daily demand %g is too large", mean)
	}

	// Second pass over deviations keeps sigma exactly 0 for constant series.
	var sumSq float64
	for _, v := range series {
		d := v - mean
		sumSq += d * d
	}

	denom := float64(n)
	if c.mode == SampleStdDev {
		denom = float64(n - 1)
	}

	sigma := math.Sqrt(sumSq / denom)
	if math.IsInf(sumSq, 0) || math.IsNaN(sigma) || math.IsInf(sigma, 0) {
		return Statistics{}, domain.InvalidInputf("demand variance is not finite")
	}

	return Statistics{
		DailyDemand:  int(daily),
		Sigma:        sigma,
		Observations: n,
	}, nil
}
