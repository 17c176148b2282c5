package demand

import (
	"context"

	"github.com/andresuchdata/replenish/internal/domain"
)

// DemandReader is the read side of the demand repository.
type DemandReader interface {
	ListItems(ctx context.Context) ([]domain.Item, error)
	GetSeries(ctx context.Context, itemID string) (domain.DemandSeries, error)
}

// PostgresSource serves demand stored in the daily_demand table.
type PostgresSource struct {
	repo DemandReader
}

func NewPostgresSource(repo DemandReader) *PostgresSource {
	return &PostgresSource{repo: repo}
}

func (s *PostgresSource) Items(ctx context.Context) ([]domain.Item, error) {
	return s.repo.ListItems(ctx)
}

func (s *PostgresSource) Series(ctx context.Context, itemID string) (domain.DemandSeries, error) {
	return s.repo.GetSeries(ctx, itemID)
}
