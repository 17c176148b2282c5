package policy

// Analysis is the result of running both review policies on one item.
type Analysis struct {
	ItemID     string           `json:"item_id"`
	Synthetic  bool             `json:"synthetic,omitempty"` // demand was generated, not loaded
	Statistics Statistics       `json:"statistics"`
	Continuous ContinuousResult `json:"continuous"`
	Periodic   PeriodicResult   `json:"periodic"`
}

// Analyze runs the continuous and periodic policies on the same series.
func (c *Calculator) Analyze(itemID string, series []float64, cp ContinuousParams, pp PeriodicParams) (Analysis, error) {
	stats, err := c.Statistics(series)
	if err != nil {
		return Analysis{}, err
	}

	continuous, err := c.Continuous(series, cp)
	if err != nil {
		return Analysis{}, err
	}

	periodic, err := c.Periodic(series, pp)
	if err != nil {
		return Analysis{}, err
	}

	return Analysis{
		ItemID:     itemID,
		Statistics: stats,
		Continuous: continuous,
		Periodic:   periodic,
	}, nil
}

// Comparison is the order-up-to level of one item across review periods.
type Comparison struct {
	ItemID    string        `json:"item_id"`
	Synthetic bool          `json:"synthetic,omitempty"`
	LD        int           `json:"LD"`
	K         float64       `json:"k"`
	Points    []ReviewPoint `json:"points"`
}

// Compare runs CompareReviewPeriods and labels the points with the item.
func (c *Calculator) Compare(itemID string, series []float64, periods []int, base PeriodicParams) (Comparison, error) {
	points, err := c.CompareReviewPeriods(series, periods, base)
	if err != nil {
		return Comparison{}, err
	}
	return Comparison{ItemID: itemID, LD: base.LD, K: base.K, Points: points}, nil
}
