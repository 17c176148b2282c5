package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/internal/demand"
	"github.com/andresuchdata/replenish/internal/policy"
)

// Runner evaluates both review policies for every item of a demand source.
type Runner struct {
	source     demand.Source
	calc       *policy.Calculator
	continuous policy.ContinuousParams
	periodic   policy.PeriodicParams
	cfg        Config
	sleep      func(ctx context.Context, d time.Duration) error
}

// NewRunner creates a new Runner. Policy parameters are validated once up
// front so a bad configuration fails the batch instead of every item.
func NewRunner(source demand.Source, calc *policy.Calculator, cp policy.ContinuousParams, pp policy.PeriodicParams, cfg Config) (*Runner, error) {
	if err := cp.Validate(); err != nil {
		return nil, fmt.Errorf("continuous params: %w", err)
	}
	if err := pp.Validate(); err != nil {
		return nil, fmt.Errorf("periodic params: %w", err)
	}
	if calc == nil {
		calc = policy.Default()
	}
	return &Runner{
		source:     source,
		calc:       calc,
		continuous: cp,
		periodic:   pp,
		cfg:        cfg,
		sleep:      sleepContext,
	}, nil
}

// Run evaluates every item the source lists.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	items, err := r.source.Items(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}

	ids := make([]string, len(items))
	for i, item := range items {
		ids[i] = item.ID
	}
	return r.RunItems(ctx, ids)
}
