package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"github.com/rs/zerolog/log"
)

const (
	seriesKeyPrefix     = "demand:series"
	seriesScanBatchSize = 100
)

// SeriesCache caches loaded demand series by item id within a namespace,
// normally the demand source kind. Only demand input is cached; computed
// policies are never stored.
type SeriesCache interface {
	Get(ctx context.Context, itemID string) (domain.DemandSeries, bool, error)
	Set(ctx context.Context, series domain.DemandSeries) error
	InvalidateAll(ctx context.Context) error
	Backend() string
	Close() error
}

type memorySeriesCache struct {
	store     *gocache.Cache
	namespace string
}

type noopSeriesCache struct{}

// NewSeriesCache builds the cache selected by cfg. A disabled cache yields a
// no-op implementation.
func NewSeriesCache(cfg config.CacheConfig, namespace string) (SeriesCache, error) {
	if !cfg.Enabled {
		return &noopSeriesCache{}, nil
	}

	switch cfg.Backend {
	case "redis":
		c, err := newRedisSeriesCache(cfg, namespace)
		if err != nil {
			return nil, err
		}
		return c, nil
	case "", "memory":
		return NewMemorySeriesCache(namespace, cacheTTL(cfg)), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// NewMemorySeriesCache returns an in-process cache with the given TTL.
func NewMemorySeriesCache(namespace string, ttl time.Duration) SeriesCache {
	return &memorySeriesCache{store: gocache.New(ttl, 2*ttl), namespace: namespace}
}

func NewNoopSeriesCache() SeriesCache {
	return &noopSeriesCache{}
}

func (c *memorySeriesCache) Get(_ context.Context, itemID string) (domain.DemandSeries, bool, error) {
	v, ok := c.store.Get(buildSeriesKey(c.namespace, itemID))
	if !ok {
		return domain.DemandSeries{}, false, nil
	}
	series, ok := v.(domain.DemandSeries)
	if !ok {
		log.Warn().Str("item", itemID).Msg("demand cache: unexpected value type, dropping entry")
		c.store.Delete(buildSeriesKey(c.namespace, itemID))
		return domain.DemandSeries{}, false, nil
	}
	return series, true, nil
}

func (c *memorySeriesCache) Set(_ context.Context, series domain.DemandSeries) error {
	// copy so later mutation by the caller cannot leak into the cache
	values := append([]float64(nil), series.Values...)
	c.store.SetDefault(buildSeriesKey(c.namespace, series.ItemID), domain.DemandSeries{ItemID: series.ItemID, Values: values})
	return nil
}

func (c *memorySeriesCache) InvalidateAll(_ context.Context) error {
	c.store.Flush()
	return nil
}

func (c *memorySeriesCache) Backend() string { return "memory" }

func (c *memorySeriesCache) Close() error { return nil }

func (n *noopSeriesCache) Get(context.Context, string) (domain.DemandSeries, bool, error) {
	return domain.DemandSeries{}, false, nil
}

func (n *noopSeriesCache) Set(context.Context, domain.DemandSeries) error { return nil }

func (n *noopSeriesCache) InvalidateAll(context.Context) error { return nil }

func (n *noopSeriesCache) Backend() string { return "none" }

func (n *noopSeriesCache) Close() error { return nil }

func buildSeriesKey(namespace, itemID string) string {
	return fmt.Sprintf("%s:%s", seriesKeyPattern(namespace), strings.TrimSpace(itemID))
}

func seriesKeyPattern(namespace string) string {
	if namespace == "" {
		namespace = "default"
	}
	return seriesKeyPrefix + ":" + namespace
}
