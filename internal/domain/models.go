// internal/domain/models.go
package domain

// DemandSeries is the ordered daily demand history of a single item.
// Values are treated as read-only once loaded.
type DemandSeries struct {
	ItemID string    `json:"item_id"`
	Values []float64 `json:"values"`
}

// Len returns the number of daily observations.
func (s DemandSeries) Len() int {
	return len(s.Values)
}

// Item identifies an item available from a demand source
type Item struct {
	ID           string `json:"id" db:"item_id"`
	Observations int    `json:"observations" db:"observations"`
}

// DemandRecord is one (item, day) observation in long format
type DemandRecord struct {
	ItemID   string  `db:"item_id"`
	Day      int     `db:"day"`
	Quantity float64 `db:"quantity"`
}
