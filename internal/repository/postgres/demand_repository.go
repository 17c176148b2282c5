package postgres

import (
	"context"
	"fmt"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"
)

// insertBatchSize keeps a multi-row insert under the postgres bind
// parameter limit (3 columns per row).
const insertBatchSize = 1000

const demandSchema = `
CREATE TABLE IF NOT EXISTS daily_demand (
	item_id  TEXT             NOT NULL,
	day      INTEGER          NOT NULL,
	quantity DOUBLE PRECISION NOT NULL,
	PRIMARY KEY (item_id, day)
)`

// DemandRepository stores daily demand in long format, one row per item
// and day.
type DemandRepository struct {
	db *DB
}

func NewDemandRepository(db *DB) *DemandRepository {
	return &DemandRepository{db: db}
}

func (r *DemandRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, demandSchema); err != nil {
		return fmt.Errorf("failed to create daily_demand: %w", err)
	}
	return nil
}

func (r *DemandRepository) ListItems(ctx context.Context) ([]domain.Item, error) {
	query := `
		SELECT item_id, COUNT(*) AS observations
		FROM daily_demand
		GROUP BY item_id
		ORDER BY item_id
	`
	var items []domain.Item
	if err := r.db.SelectContext(ctx, &items, query); err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *DemandRepository) GetSeries(ctx context.Context, itemID string) (domain.DemandSeries, error) {
	query := `
		SELECT item_id, day, quantity
		FROM daily_demand
		WHERE item_id = $1
		ORDER BY day
	`
	var records []domain.DemandRecord
	if err := r.db.SelectContext(ctx, &records, query, itemID); err != nil {
		return domain.DemandSeries{}, fmt.Errorf("failed to load demand for %s: %w", itemID, err)
	}
	if len(records) == 0 {
		return domain.DemandSeries{}, fmt.Errorf("%s: %w", itemID, domain.ErrItemNotFound)
	}
	return seriesFromRecords(itemID, records), nil
}

// ReplaceSeries overwrites the stored demand of every given item in a
// single transaction.
func (r *DemandRepository) ReplaceSeries(ctx context.Context, series []domain.DemandSeries) error {
	return r.db.WithTx(ctx, func(tx *sqlx.Tx) error {
		for _, s := range series {
			if _, err := tx.ExecContext(ctx, `DELETE FROM daily_demand WHERE item_id = $1`, s.ItemID); err != nil {
				return fmt.Errorf("failed to clear demand for %s: %w", s.ItemID, err)
			}

			records := recordsFromSeries(s)
			for start := 0; start < len(records); start += insertBatchSize {
				end := min(start+insertBatchSize, len(records))
				if _, err := tx.NamedExecContext(ctx, `
					INSERT INTO daily_demand (item_id, day, quantity)
					VALUES (:item_id, :day, :quantity)
				`, records[start:end]); err != nil {
					return fmt.Errorf("failed to insert demand for %s: %w", s.ItemID, err)
				}
			}
			log.Debug().Str("item", s.ItemID).Int("days", len(records)).Msg("demand series stored")
		}
		return nil
	})
}

func recordsFromSeries(s domain.DemandSeries) []domain.DemandRecord {
	records := make([]domain.DemandRecord, len(s.Values))
	for i, v := range s.Values {
		records[i] = domain.DemandRecord{ItemID: s.ItemID, Day: i + 1, Quantity: v}
	}
	return records
}

func seriesFromRecords(itemID string, records []domain.DemandRecord) domain.DemandSeries {
	values := make([]float64, len(records))
	for i, rec := range records {
		values[i] = rec.Quantity
	}
	return domain.DemandSeries{ItemID: itemID, Values: values}
}
