package main

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/andresuchdata/replenish/internal/cache"
	"github.com/andresuchdata/replenish/internal/config"
	"github.com/andresuchdata/replenish/internal/demand"
	"github.com/andresuchdata/replenish/internal/domain"
	"github.com/andresuchdata/replenish/internal/pipeline"
	"github.com/andresuchdata/replenish/internal/policy"
	"github.com/andresuchdata/replenish/internal/report"
	"github.com/andresuchdata/replenish/internal/repository/postgres"
	"github.com/andresuchdata/replenish/internal/service"
	"github.com/andresuchdata/replenish/internal/storage"
	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/urfave/cli/v2"
)

type ctxKey struct{}

// setup loads configuration, applies global flag overrides and stores the
// result on the cli context.
func setup(c *cli.Context) error {
	cfg := *config.Load()
	applyGlobalFlags(c, &cfg)

	logger.SetJSON(cfg.LogJSON)
	logger.SetLevel(cfg.LogLevel)

	c.Context = context.WithValue(c.Context, ctxKey{}, &cfg)
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.Context.Value(ctxKey{}).(*config.Config); ok {
		return cfg
	}
	return config.Load()
}

func applyGlobalFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("source") {
		cfg.Demand.Source = c.String("source")
	}
	if c.IsSet("csv") {
		cfg.Demand.CSVPath = c.String("csv")
	}
	if c.IsSet("format") {
		cfg.Report.Format = c.String("format")
	}
	if c.IsSet("precision") {
		cfg.Report.Precision = c.Int("precision")
	}
	if c.IsSet("locale") {
		cfg.Report.Locale = c.String("locale")
	}
	if c.Bool("no-color") {
		cfg.Report.UseColors = false
	}
	if c.IsSet("stddev-mode") {
		cfg.Policy.StdDevMode = c.String("stddev-mode")
	}
	if c.Bool("no-fallback") {
		cfg.Demand.SyntheticFallback = false
	}
	if c.IsSet("log-level") {
		cfg.LogLevel = c.String("log-level")
	}
}

// applyPolicyFlags overrides the configured policy parameters with the
// command's flags.
func applyPolicyFlags(c *cli.Context, p service.Params) service.Params {
	if c.IsSet("r") {
		p.Periodic.R = c.Int("r")
	}
	if c.IsSet("ld") {
		p.Periodic.LD = c.Int("ld")
	}
	if c.IsSet("k") {
		p.Periodic.K = c.Float64("k")
	}
	if c.IsSet("continuous-ld") {
		p.Continuous.LD = c.Int("continuous-ld")
	}
	if c.IsSet("continuous-k") {
		p.Continuous.K = c.Float64("continuous-k")
	}
	if c.IsSet("review-periods") {
		p.ReviewPeriods = c.IntSlice("review-periods")
	}
	return p
}

// withService builds the demand source and policy service for one command.
func withService(c *cli.Context, fn func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error) error {
	cfg := configFrom(c)

	source, closeSource, err := demand.NewSource(c.Context, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeSource(); err != nil {
			logger.Log.Warn().Err(err).Msg("failed to close demand source")
		}
	}()

	svc, err := service.NewPolicyServiceFromConfig(source, cfg)
	if err != nil {
		return err
	}
	return fn(cfg, source, svc)
}

// runDemo analyzes the configured item and compares review periods, the
// default when no command is given.
func runDemo(c *cli.Context) error {
	return withService(c, func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error {
		opts := report.OptionsFrom(cfg.Report)
		p := svc.Defaults()

		analysis, err := svc.AnalyzeIndex(c.Context, -1, p)
		if err != nil {
			return err
		}
		if err := report.WriteAnalysis(os.Stdout, analysis, opts); err != nil {
			return err
		}

		var cmp policy.Comparison
		if analysis.Synthetic {
			cmp, err = svc.CompareIndex(c.Context, -1, p)
		} else {
			cmp, err = svc.CompareReviewPeriods(c.Context, analysis.ItemID, p)
		}
		if err != nil {
			return err
		}
		fmt.Fprintln(os.Stdout)
		return report.WriteComparison(os.Stdout, cmp, opts)
	})
}

func runAnalyze(c *cli.Context) error {
	return withService(c, func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error {
		p := applyPolicyFlags(c, svc.Defaults())

		var (
			analysis policy.Analysis
			err      error
		)
		if item := c.String("item"); item != "" {
			analysis, err = svc.AnalyzeItem(c.Context, item, p)
		} else {
			analysis, err = svc.AnalyzeIndex(c.Context, c.Int("index"), p)
		}
		if err != nil {
			return err
		}
		return report.WriteAnalysis(os.Stdout, analysis, report.OptionsFrom(cfg.Report))
	})
}

func runCompare(c *cli.Context) error {
	return withService(c, func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error {
		p := applyPolicyFlags(c, svc.Defaults())

		var (
			cmp policy.Comparison
			err error
		)
		if item := c.String("item"); item != "" {
			cmp, err = svc.CompareReviewPeriods(c.Context, item, p)
		} else {
			cmp, err = svc.CompareIndex(c.Context, c.Int("index"), p)
		}
		if err != nil {
			return err
		}
		return report.WriteComparison(os.Stdout, cmp, report.OptionsFrom(cfg.Report))
	})
}

func runBatch(c *cli.Context) error {
	return withService(c, func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error {
		p := applyPolicyFlags(c, svc.Defaults())

		pcfg := pipeline.ConfigFrom(cfg.Pipeline)
		if c.IsSet("workers") {
			pcfg.Workers = c.Int("workers")
		}

		runner, err := pipeline.NewRunner(source, svc.Calculator(), p.Continuous, p.Periodic, pcfg)
		if err != nil {
			return err
		}
		res, err := runner.Run(c.Context)
		if err != nil {
			return err
		}
		return report.WriteBatch(os.Stdout, res, report.OptionsFrom(cfg.Report))
	})
}

func runItems(c *cli.Context) error {
	return withService(c, func(cfg *config.Config, source demand.Source, svc *service.PolicyService) error {
		items, err := svc.ListItems(c.Context)
		if err != nil {
			return err
		}
		return report.WriteItems(os.Stdout, items, report.OptionsFrom(cfg.Report))
	})
}

func runSeed(c *cli.Context) error {
	cfg := configFrom(c)
	dbCfg := cfg.Database
	if c.IsSet("db-url") {
		dbCfg.URL = c.String("db-url")
	}

	series, err := seedSeries(c, cfg)
	if err != nil {
		return err
	}

	db, err := postgres.NewDB(c.Context, &dbCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewDemandRepository(db)
	if err := repo.EnsureSchema(c.Context); err != nil {
		return err
	}
	if err := repo.ReplaceSeries(c.Context, series); err != nil {
		return err
	}

	logger.Log.Info().Int("items", len(series)).Msg("demand seeding completed")

	return invalidateSeriesCache(c.Context, cfg, "postgres")
}

func seedSeries(c *cli.Context, cfg *config.Config) ([]domain.DemandSeries, error) {
	var source demand.Source
	if c.Bool("synthetic") {
		source = demand.NewSyntheticSource(demand.SyntheticOptionsFrom(cfg.Synthetic))
	} else {
		from := cfg.Demand.CSVPath
		if c.IsSet("from") {
			from = c.String("from")
		}
		logger.Log.Info().Str("path", from).Msg("seeding demand from csv")
		source = demand.NewCSVSource(from, demand.CSVOptionsFrom(cfg.Demand))
	}

	items, err := source.Items(c.Context)
	if err != nil {
		return nil, err
	}
	series := make([]domain.DemandSeries, 0, len(items))
	for _, item := range items {
		s, err := source.Series(c.Context, item.ID)
		if err != nil {
			return nil, err
		}
		series = append(series, s)
	}
	return series, nil
}

func runFetch(c *cli.Context) error {
	cfg := configFrom(c)

	client, err := storage.NewMinioClient(cfg.Storage)
	if err != nil {
		return err
	}

	key := cfg.Storage.ObjectKey
	if c.IsSet("key") {
		key = storage.ResolveObjectKey(objectPrefix(cfg.Storage.ObjectKey), c.String("key"))
	}

	if c.Bool("list") {
		objects, err := client.ListObjects(c.Context, objectPrefix(key))
		if err != nil {
			return err
		}
		for _, obj := range objects {
			fmt.Fprintf(os.Stdout, "%s\t%d\n", obj.Key, obj.Size)
		}
		return nil
	}

	dest := cfg.Demand.CSVPath
	if c.IsSet("dest") {
		dest = c.String("dest")
	}
	if err := client.DownloadObject(c.Context, key, dest); err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Str("dest", dest).Msg("demand csv downloaded")

	return invalidateSeriesCache(c.Context, cfg, "csv")
}

// invalidateSeriesCache drops cached series of one source kind so the next
// run reads the fresh file.
func invalidateSeriesCache(ctx context.Context, cfg *config.Config, kind string) error {
	if !cfg.Cache.Enabled {
		return nil
	}
	seriesCache, err := cache.NewSeriesCache(cfg.Cache, kind)
	if err != nil {
		return err
	}
	defer seriesCache.Close()

	if err := seriesCache.InvalidateAll(ctx); err != nil {
		return fmt.Errorf("invalidate %s series cache: %w", kind, err)
	}
	logger.Log.Info().Str("source", kind).Str("backend", seriesCache.Backend()).Msg("demand series cache invalidated")
	return nil
}

// objectPrefix is the "directory" part of an object key.
func objectPrefix(key string) string {
	dir := path.Dir(key)
	if dir == "." || dir == "/" {
		return ""
	}
	return dir
}
