package demand

import (
	"context"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/rs/zerolog/log"
)

// CachedSource serves series from a cache before falling through to the
// wrapped source. Cache failures are logged and never fail a lookup.
type CachedSource struct {
	next  Source
	cache cache.SeriesCache
}

func NewCachedSource(next Source, c cache.SeriesCache) *CachedSource {
	return &CachedSource{next: next, cache: c}
}

func (s *CachedSource) Items(ctx context.Context) ([]domain.Item, error) {
	return s.next.Items(ctx)
}

func (s *CachedSource) Series(ctx context.Context, itemID string) (domain.DemandSeries, error) {
	series, ok, err := s.cache.Get(ctx, itemID)
	if err != nil {
		log.Warn().Err(err).Str("item", itemID).Msg("demand cache read failed")
	} else if ok {
		log.Debug().
			Str("item", itemID).
			Str("backend", s.cache.Backend()).
			Int("observations", series.Len()).
			Msg("demand cache hit")
		return series, nil
	}

	series, err = s.next.Series(ctx, itemID)
	if err != nil {
		return domain.DemandSeries{}, err
	}

	if err := s.cache.Set(ctx, series); err != nil {
		log.Warn().Err(err).Str("item", itemID).Msg("demand cache write failed")
	}
	return series, nil
}

// Close releases the cache connection.
func (s *CachedSource) Close() error {
	return s.cache.Close()
}
