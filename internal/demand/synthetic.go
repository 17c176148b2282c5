package demand

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
)

const syntheticPrefix = "SKU-"

type SyntheticOptions struct {
	Items  int
	Lambda float64
	Days   int
	Seed   int64
}

// DefaultSyntheticOptions is one year of Poisson(5) demand for one item.
func DefaultSyntheticOptions() SyntheticOptions {
	return SyntheticOptions{Items: 1, Lambda: 5, Days: 365, Seed: 42}
}

func SyntheticOptionsFrom(cfg config.SyntheticConfig) SyntheticOptions {
	opts := DefaultSyntheticOptions()
	if cfg.Items > 0 {
		opts.Items = cfg.Items
	}
	if cfg.Lambda > 0 {
		opts.Lambda = cfg.Lambda
	}
	if cfg.Days > 0 {
		opts.Days = cfg.Days
	}
	opts.Seed = cfg.Seed
	return opts
}

// SyntheticSource generates Poisson demand. The same options always yield
// the same series.
type SyntheticSource struct {
	opts SyntheticOptions
}

func NewSyntheticSource(opts SyntheticOptions) *SyntheticSource {
	if opts.Items < 1 {
		opts.Items = 1
	}
	return &SyntheticSource{opts: opts}
}

func SyntheticItemID(n int) string {
	return fmt.Sprintf("%s%04d", syntheticPrefix, n)
}

func (s *SyntheticSource) Items(context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, s.opts.Items)
	for i := range items {
		items[i] = domain.Item{ID: SyntheticItemID(i + 1), Observations: s.opts.Days}
	}
	return items, nil
}

func (s *SyntheticSource) Series(_ context.Context, itemID string) (domain.DemandSeries, error) {
	id := strings.TrimSpace(itemID)
	n, err := strconv.Atoi(strings.TrimPrefix(id, syntheticPrefix))
	if !strings.HasPrefix(id, syntheticPrefix) || err != nil || n < 1 || n > s.opts.Items {
		return domain.DemandSeries{}, fmt.Errorf("%s: %w", id, domain.ErrItemNotFound)
	}
	return domain.DemandSeries{
		ItemID: id,
		Values: PoissonSeries(s.opts.Lambda, s.opts.Days, s.opts.Seed+int64(n-1)),
	}, nil
}

// PoissonSeries draws days Poisson(lambda) counts from a generator seeded
// with seed.
func PoissonSeries(lambda float64, days int, seed int64) []float64 {
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
	values := make([]float64, days)
	for i := range values {
		values[i] = float64(poisson(rng, lambda))
	}
	return values
}

// poisson uses Knuth's multiplication method, which is exact and fast for
// the small rates daily demand has.
func poisson(rng *rand.Rand, lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k := 0
	p := rng.Float64()
	for p > limit {
		k++
		p *= rng.Float64()
	}
	return k
}
