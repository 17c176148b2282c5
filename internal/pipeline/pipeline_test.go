package pipeline

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type flakySource struct {
	mu       sync.Mutex
	series   map[string][]float64
	order    []string
	failures map[string]int // remaining ErrDataUnavailable responses per item
	calls    map[string]int
}

func newFlakySource() *flakySource {
	return &flakySource{
		series:   make(map[string][]float64),
		failures: make(map[string]int),
		calls:    make(map[string]int),
	}
}

func (f *flakySource) add(id string, values ...float64) {
	f.series[id] = values
	f.order = append(f.order, id)
}

func (f *flakySource) Items(context.Context) ([]domain.Item, error) {
	items := make([]domain.Item, len(f.order))
	for i, id := range f.order {
		items[i] = domain.Item{ID: id, Observations: len(f.series[id])}
	}
	return items, nil
}

func (f *flakySource) Series(_ context.Context, id string) (domain.DemandSeries, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[id]++
	if f.failures[id] > 0 {
		f.failures[id]--
		return domain.DemandSeries{}, fmt.Errorf("%s: %w", id, domain.ErrDataUnavailable)
	}
	v, ok := f.series[id]
	if !ok {
		return domain.DemandSeries{}, fmt.Errorf("%s: %w", id, domain.ErrItemNotFound)
	}
	return domain.DemandSeries{ItemID: id, Values: v}, nil
}

func newTestRunner(t *testing.T, src *flakySource, cfg Config) *Runner {
	t.Helper()
	r, err := NewRunner(src, policy.Default(), policy.DefaultContinuousParams(), policy.DefaultPeriodicParams(), cfg)
	require.NoError(t, err)
	r.sleep = func(context.Context, time.Duration) error { return nil }
	return r
}

func TestRunnerEvaluatesItemsInSourceOrder(t *testing.T) {
	src := newFlakySource()
	src.add("C", 4, 6, 5, 7, 3, 6, 5)
	src.add("A", 5, 5, 5)
	src.add("B", 1)

	res, err := newTestRunner(t, src, Config{Workers: 2}).Run(context.Background())
	require.NoError(t, err)

	require.Len(t, res.Items, 3)
	assert.Equal(t, []string{"C", "A", "B"}, []string{res.Items[0].ItemID, res.Items[1].ItemID, res.Items[2].ItemID})

	assert.Equal(t, ItemStatusCompleted, res.Items[0].Status)
	require.NotNil(t, res.Items[0].Analysis)
	assert.InDelta(t, 76.65985898008574, res.Items[0].Analysis.Periodic.S, 1e-9)
	assert.InDelta(t, 17.707138387268053, res.Items[0].Analysis.Continuous.ReorderPoint, 1e-9)

	// a single observation has no sample deviation
	assert.Equal(t, ItemStatusFailed, res.Items[2].Status)
	assert.Contains(t, res.Items[2].Error, "invalid input")
	assert.Nil(t, res.Items[2].Analysis)

	assert.Equal(t, Summary{Total: 3, Processed: 2, Failed: 1, StartedAt: res.Summary.StartedAt, Duration: res.Summary.Duration}, res.Summary)
}

func TestRunnerRetriesUnavailableData(t *testing.T) {
	src := newFlakySource()
	src.add("A", 4, 6, 5)
	src.add("B", 4, 6, 5)
	src.failures["A"] = 2
	src.failures["B"] = 5

	res, err := newTestRunner(t, src, Config{Workers: 1, RetryAttempts: 3}).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, ItemStatusCompleted, res.Items[0].Status)
	assert.Equal(t, 3, res.Items[0].Attempts)

	assert.Equal(t, ItemStatusFailed, res.Items[1].Status)
	assert.Equal(t, 4, res.Items[1].Attempts)
	assert.Equal(t, 4, src.calls["B"])
}

func TestRunnerDoesNotRetryUnknownItems(t *testing.T) {
	src := newFlakySource()

	res, err := newTestRunner(t, src, Config{RetryAttempts: 3}).RunItems(context.Background(), []string{"ghost"})
	require.NoError(t, err)
	assert.Equal(t, ItemStatusFailed, res.Items[0].Status)
	assert.Equal(t, 1, src.calls["ghost"])
}

func TestRunnerCancelled(t *testing.T) {
	src := newFlakySource()
	src.add("A", 4, 6, 5)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestRunner(t, src, DefaultConfig()).RunItems(ctx, []string{"A"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewRunnerValidatesParams(t *testing.T) {
	_, err := NewRunner(newFlakySource(), nil, policy.ContinuousParams{LD: -1}, policy.DefaultPeriodicParams(), DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = NewRunner(newFlakySource(), nil, policy.DefaultContinuousParams(), policy.PeriodicParams{R: 0, LD: 2}, DefaultConfig())
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSleepContext(t *testing.T) {
	assert.NoError(t, sleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepContext(ctx, time.Hour), context.Canceled)
}

func TestConfigFrom(t *testing.T) {
	assert.Equal(t, Config{Workers: 8, RetryAttempts: 0, RetryBackoff: time.Second},
		ConfigFrom(config.PipelineConfig{Workers: 8, RetryAttempts: 0, RetryBackoff: time.Second}))
	assert.Equal(t, DefaultConfig().Workers, ConfigFrom(config.PipelineConfig{}).Workers)
}
