package policy

import (
	"fmt"

	"github.com/andresuchdata/replenish/internal/domain"
)

// CompareReviewPeriods evaluates the periodic policy once per candidate
// review period, holding the lead time and safety factor of base fixed.
// Points are returned in the order of periods.
func (c *Calculator) CompareReviewPeriods(series []float64, periods []int, base PeriodicParams) ([]ReviewPoint, error) {
	if len(periods) == 0 {
		return nil, fmt.Errorf("compare review periods: %w", domain.InvalidInputf("no review periods given"))
	}

	points := make([]ReviewPoint, 0, len(periods))
	for _, r := range periods {
		params := base
		params.R = r

		result, err := c.Periodic(series, params)
		if err != nil {
			return nil, fmt.Errorf("compare review periods (R=%d): %w", r, err)
		}
		points = append(points, ReviewPoint{R: r, S: result.S})
	}

	return points, nil
}
