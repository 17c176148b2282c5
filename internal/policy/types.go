package policy

// StdDevMode selects the standard deviation definition used for daily demand.
type StdDevMode string

const (
	// SampleStdDev divides by n-1. This is the default.
	SampleStdDev StdDevMode = "sample"
	// PopulationStdDev divides by n.
	PopulationStdDev StdDevMode = "population"
)

// Default policy parameters.
const (
	DefaultReviewPeriod       = 10
	DefaultPeriodicLeadTime   = 2
	DefaultPeriodicSafety     = 1.0
	DefaultContinuousLeadTime = 2
	DefaultContinuousSafety   = 3.0

	// OrderQuantityDays is the number of days of average demand ordered
	// each time the reorder point is reached.
	OrderQuantityDays = 5
)

// DefaultReviewPeriods are the candidate review periods compared by default.
var DefaultReviewPeriods = []int{5, 7, 10, 14}

// Statistics summarizes a demand series
type Statistics struct {
	DailyDemand  int     `json:"daily_demand"` // ceil(mean)
	Sigma        float64 `json:"sigma"`        // std dev of daily demand
	Observations int     `json:"observations"`
}

// PeriodicParams configures the (R, S) periodic review policy.
type PeriodicParams struct {
	R  int     `json:"r" mapstructure:"r"`   // review period (days)
	LD int     `json:"ld" mapstructure:"ld"` // lead time (days)
	K  float64 `json:"k" mapstructure:"k"`   // safety factor
}

// DefaultPeriodicParams returns R=10, LD=2, k=1.
func DefaultPeriodicParams() PeriodicParams {
	return PeriodicParams{
		R:  DefaultReviewPeriod,
		LD: DefaultPeriodicLeadTime,
		K:  DefaultPeriodicSafety,
	}
}

// Window is the number of days covered by the order-up-to level (LD + R).
func (p PeriodicParams) Window() int {
	return p.LD + p.R
}

// ContinuousParams configures the (s, Q) continuous review policy.
type ContinuousParams struct {
	LD int     `json:"ld" mapstructure:"ld"`
	K  float64 `json:"k" mapstructure:"k"`
}

// DefaultContinuousParams returns LD=2, k=3.
func DefaultContinuousParams() ContinuousParams {
	return ContinuousParams{
		LD: DefaultContinuousLeadTime,
		K:  DefaultContinuousSafety,
	}
}

// PeriodicResult holds the computed (R, S) policy for one series.
type PeriodicResult struct {
	DailyDemand int     `json:"daily_demand"`
	Sigma       float64 `json:"sigma"`
	MuLD        int     `json:"mu_ld"`    // expected demand over LD+R
	SigmaLD     float64 `json:"sigma_ld"` // std dev over LD+R
	S           float64 `json:"S"`        // order-up-to level
	R           int     `json:"R"`
	LD          int     `json:"LD"`
	K           float64 `json:"k"`
}

// ContinuousResult holds the computed (s, Q) policy for one series.
type ContinuousResult struct {
	DailyDemand  int     `json:"daily_demand"`
	Sigma        float64 `json:"sigma"`
	MuLD         int     `json:"mu_ld"`    // expected demand over LD
	SigmaLD      float64 `json:"sigma_ld"` // std dev over LD
	ReorderPoint float64 `json:"s"`
	Q            int     `json:"Q"`
	LD           int     `json:"LD"`
	K            float64 `json:"k"`
}

// ReviewPoint is one row of a review period comparison.
type ReviewPoint struct {
	R int     `json:"R"`
	S float64 `json:"S"`
}
