// Package demand loads daily demand series from the configured backend.
package demand

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/drive"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/rs/zerolog/log"
)

// Source provides the items and their ordered daily demand.
type Source interface {
	Items(ctx context.Context) ([]domain.Item, error)
	Series(ctx context.Context, itemID string) (domain.DemandSeries, error)
}

// Kind is the configured source name, "csv" when unset. It also scopes the
// series cache.
func Kind(cfg *config.Config) string {
	kind := strings.ToLower(strings.TrimSpace(cfg.Demand.Source))
	if kind == "" {
		return "csv"
	}
	return kind
}

// NewSource builds the source named by cfg.Demand.Source and wraps it with
// the series cache when caching is enabled. The returned close func
// releases any connection the source holds.
func NewSource(ctx context.Context, cfg *config.Config) (Source, func() error, error) {
	noop := func() error { return nil }

	var (
		src     Source
		closeFn = noop
	)

	kind := Kind(cfg)
	switch kind {
	case "csv":
		src = NewCSVSource(cfg.Demand.CSVPath, CSVOptionsFrom(cfg.Demand))
	case "synthetic":
		src = NewSyntheticSource(SyntheticOptionsFrom(cfg.Synthetic))
	case "postgres":
		db, err := postgres.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, noop, fmt.Errorf("%w: %v", domain.ErrDataUnavailable, err)
		}
		src = NewPostgresSource(postgres.NewDemandRepository(db))
		closeFn = db.Close
	case "s3":
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			return nil, noop, err
		}
		src = NewObjectSource(client, cfg.Storage.ObjectKey, CSVOptionsFrom(cfg.Demand))
	case "drive":
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, noop, err
		}
		src = NewDriveSource(svc, cfg.Drive.FileID, CSVOptionsFrom(cfg.Demand))
	default:
		return nil, noop, fmt.Errorf("unknown demand source %q", cfg.Demand.Source)
	}

	if cfg.Cache.Enabled {
		seriesCache, err := cache.NewSeriesCache(cfg.Cache, kind)
		if err != nil {
			_ = closeFn()
			return nil, noop, err
		}
		cached := NewCachedSource(src, seriesCache)
		src = cached
		closeSource := closeFn
		closeFn = func() error {
			return errors.Join(cached.Close(), closeSource())
		}
		log.Info().Str("backend", seriesCache.Backend()).Msg("demand series cache enabled")
	}

	log.Info().Str("source", kind).Msg("demand source ready")
	return src, closeFn, nil
}
