package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// RunItems evaluates the given items with a bounded worker pool. A failing
// item is recorded in its result and does not stop the batch; only context
// cancellation does.
func (r *Runner) RunItems(ctx context.Context, itemIDs []string) (*Result, error) {
	startTime := time.Now()
	log.Info().Int("items", len(itemIDs)).Int("workers", r.workerCount()).Msg("starting batch")

	results := make([]ItemResult, len(itemIDs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workerCount())
	for i, id := range itemIDs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.processItem(gctx, id)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	summary := Summary{Total: len(itemIDs), StartedAt: startTime}
	for _, res := range results {
		if res.Status == ItemStatusCompleted {
			summary.Processed++
		} else {
			summary.Failed++
		}
	}
	summary.Duration = time.Since(startTime)

	log.Info().
		Int("processed", summary.Processed).
		Int("failed", summary.Failed).
		Dur("duration", summary.Duration).
		Msg("batch completed")

	return &Result{Items: results, Summary: summary}, nil
}

func (r *Runner) workerCount() int {
	if r.cfg.Workers < 1 {
		return 1
	}
	return r.cfg.Workers
}

// processItem loads and evaluates a single item
func (r *Runner) processItem(ctx context.Context, itemID string) ItemResult {
	startTime := time.Now()
	res := ItemResult{ItemID: itemID}

	series, attempts, err := r.loadWithRetry(ctx, itemID)
	res.Attempts = attempts
	if err == nil {
		var analysis policy.Analysis
		analysis, err = r.calc.Analyze(series.ItemID, series.Values, r.continuous, r.periodic)
		if err == nil {
			res.Analysis = &analysis
		}
	}

	res.Duration = time.Since(startTime)
	if err != nil {
		res.Status = ItemStatusFailed
		res.Error = err.Error()
		log.Warn().Err(err).Str("item", itemID).Int("attempts", attempts).Msg("item failed")
		return res
	}

	res.Status = ItemStatusCompleted
	log.Debug().Str("item", itemID).Dur("duration", res.Duration).Msg("item completed")
	return res
}

// loadWithRetry retries transient unavailability with exponential backoff.
// Unknown items are not retried.
func (r *Runner) loadWithRetry(ctx context.Context, itemID string) (domain.DemandSeries, int, error) {
	backoff := r.cfg.RetryBackoff
	attempts := 0
	for {
		attempts++
		series, err := r.source.Series(ctx, itemID)
		if err == nil {
			return series, attempts, nil
		}
		if !retryable(err) || attempts > r.cfg.RetryAttempts {
			return domain.DemandSeries{}, attempts, err
		}

		log.Debug().Err(err).Str("item", itemID).Int("attempt", attempts).Dur("backoff", backoff).Msg("retrying demand load")
		if err := r.sleep(ctx, backoff); err != nil {
			return domain.DemandSeries{}, attempts, err
		}
		backoff *= 2
	}
}

func retryable(err error) bool {
	return errors.Is(err, domain.ErrDataUnavailable) && !errors.Is(err, domain.ErrItemNotFound)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
