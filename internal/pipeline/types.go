package pipeline

import (
	"time"

	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/policy"
)

// Config controls how a batch evaluates its items.
type Config struct {
	Workers       int           // Number of concurrent workers
	RetryAttempts int           // Extra attempts when demand is unavailable
	RetryBackoff  time.Duration // Base wait between attempts, doubled each retry
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Workers:       4,
		RetryAttempts: 3,
		RetryBackoff:  500 * time.Millisecond,
	}
}

func ConfigFrom(cfg config.PipelineConfig) Config {
	out := DefaultConfig()
	if cfg.Workers > 0 {
		out.Workers = cfg.Workers
	}
	if cfg.RetryAttempts >= 0 {
		out.RetryAttempts = cfg.RetryAttempts
	}
	if cfg.RetryBackoff > 0 {
		out.RetryBackoff = cfg.RetryBackoff
	}
	return out
}

// ItemStatus represents the outcome of a single item
type ItemStatus string

const (
	ItemStatusCompleted ItemStatus = "completed"
	ItemStatusFailed    ItemStatus = "failed"
)

// ItemResult tracks the evaluation of a single item
type ItemResult struct {
	ItemID   string           `json:"item_id"`
	Status   ItemStatus       `json:"status"`
	Analysis *policy.Analysis `json:"analysis,omitempty"`
	Error    string           `json:"error,omitempty"`
	Attempts int              `json:"attempts"`
	Duration time.Duration    `json:"duration_ns"`
}

// Summary holds batch level counters
type Summary struct {
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Result lists item outcomes in source order.
type Result struct {
	Items   []ItemResult `json:"items"`
	Summary Summary      `json:"summary"`
}
