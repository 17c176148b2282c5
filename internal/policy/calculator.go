package policy

import (
	"math"
	"strings"

	"github.com/andresuchdata/replenish/internal/domain"
)

// Calculator computes replenishment policies from daily demand series.
// It holds no mutable state and is safe for concurrent use.
type Calculator struct {
	mode StdDevMode
}

// NewCalculator creates a calculator using the given standard deviation
// definition. An empty mode selects SampleStdDev.
func NewCalculator(mode StdDevMode) *Calculator {
	if mode == "" {
		mode = SampleStdDev
	}
	return &Calculator{mode: mode}
}

// Default returns a calculator using the sample standard deviation.
func Default() *Calculator {
	return NewCalculator(SampleStdDev)
}

// Mode returns the standard deviation definition in use.
func (c *Calculator) Mode() StdDevMode {
	return c.mode
}

// ParseStdDevMode maps a config string to a StdDevMode.
func ParseStdDevMode(s string) (StdDevMode, error) {
	switch StdDevMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", SampleStdDev:
		return SampleStdDev, nil
	case PopulationStdDev:
		return PopulationStdDev, nil
	default:
		return "", domain.InvalidInputf("unknown stddev mode %q", s)
	}
}

// maxDailyDemand keeps Q = OrderQuantityDays * daily demand within int.
const maxDailyDemand = math.MaxInt / OrderQuantityDays

// windowDemand is the expected demand over a window of days. The daily
// figure is already rounded up, the window total is rounded down.
func windowDemand(dailyDemand, days int) (int, error) {
	total := math.Floor(float64(dailyDemand) * float64(days))
	if total >= float64(math.MaxInt) {
		return 0, domain.InvalidInputf("demand over %d days overflows (daily demand %d)", days, dailyDemand)
	}
	return int(total), nil
}

// level is mu + k*sigma, rejected when k pushes it past float range.
func level(mu int, k, sigma float64) (float64, error) {
	v := float64(mu) + k*sigma
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, domain.InvalidInputf("safety factor %g gives a non-finite level", k)
	}
	return v, nil
}

// windowSigma scales a daily standard deviation to a window of days.
func windowSigma(sigma float64, days int) float64 {
	return sigma * math.Sqrt(float64(days))
}

func validateLeadTime(ld int) error {
	if ld < 0 {
		return domain.InvalidInputf("lead time must be >= 0, got %d", ld)
	}
	return nil
}

func validateSafetyFactor(k float64) error {
	if math.IsNaN(k) || math.IsInf(k, 0) {
		return domain.InvalidInputf("safety factor must be finite, got %v", k)
	}
	return nil
}

// Validate checks the periodic review parameters.
func (p PeriodicParams) Validate() error {
	if p.R < 1 {
		return domain.InvalidInputf("review period must be >= 1, got %d", p.R)
	}
	if err := validateLeadTime(p.LD); err != nil {
		return err
	}
	if p.LD > math.MaxInt-p.R {
		return domain.InvalidInputf("lead time %d plus review period %d overflows", p.LD, p.R)
	}
	return validateSafetyFactor(p.K)
}

// Validate checks the continuous review parameters.
func (p ContinuousParams) Validate() error {
	if err := validateLeadTime(p.LD); err != nil {
		return err
	}
	return validateSafetyFactor(p.K)
}
