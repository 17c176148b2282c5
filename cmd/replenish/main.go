package main

import (
	"os"

	"github.com/andresuchdata/replenish/pkg/logger"
	"github.com/urfave/cli/v2"
)

func policyFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "r",
			Usage: "Review period in days for the periodic policy",
		},
		&cli.IntFlag{
			Name:  "ld",
			Usage: "Lead time in days for the periodic policy",
		},
		&cli.Float64Flag{
			Name:  "k",
			Usage: "Safety factor for the periodic policy",
		},
		&cli.IntFlag{
			Name:  "continuous-ld",
			Usage: "Lead time in days for the continuous policy",
		},
		&cli.Float64Flag{
			Name:  "continuous-k",
			Usage: "Safety factor for the continuous policy",
		},
		&cli.IntSliceFlag{
			Name:  "review-periods",
			Usage: "Review periods to compare, e.g. --review-periods 5,7,10,14",
		},
	}
}

func itemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "item",
			Usage: "Item id to analyze",
		},
		&cli.IntFlag{
			Name:  "index",
			Usage: "Position of the item in source order (default from POLICY_ITEM_INDEX)",
			Value: -1,
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "replenish",
		Usage: "Compute (s,Q) and (R,S) replenishment policies from daily demand",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "source",
				Usage:   "Demand source: csv, postgres, s3, drive or synthetic",
				EnvVars: []string{"DEMAND_SOURCE"},
			},
			&cli.StringFlag{
				Name:    "csv",
				Usage:   "Path of the wide demand CSV",
				EnvVars: []string{"DEMAND_CSV_PATH"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"o"},
				Usage:   "Output format: table, csv or json",
				EnvVars: []string{"REPORT_FORMAT"},
			},
			&cli.IntFlag{
				Name:  "precision",
				Usage: "Decimal places in reports",
			},
			&cli.StringFlag{
				Name:  "locale",
				Usage: "Number locale for tables: en or id",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored table output",
			},
			&cli.StringFlag{
				Name:    "stddev-mode",
				Usage:   "Standard deviation definition: sample or population",
				EnvVars: []string{"POLICY_STDDEV_MODE"},
			},
			&cli.BoolFlag{
				Name:  "no-fallback",
				Usage: "Fail instead of using synthetic demand when data is unavailable",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
		},
		Before: setup,
		Action: runDemo,
		Commands: []*cli.Command{
			{
				Name:   "analyze",
				Usage:  "Run both review policies for one item",
				Flags:  append(itemFlags(), policyFlags()...),
				Action: runAnalyze,
			},
			{
				Name:   "compare",
				Usage:  "Compare the order-up-to level across review periods",
				Flags:  append(itemFlags(), policyFlags()...),
				Action: runCompare,
			},
			{
				Name:  "batch",
				Usage: "Evaluate every item of the demand source",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:    "workers",
						Usage:   "Number of concurrent workers",
						EnvVars: []string{"PIPELINE_WORKERS"},
					},
				}, policyFlags()...),
				Action: runBatch,
			},
			{
				Name:   "items",
				Usage:  "List the items of the demand source",
				Action: runItems,
			},
			{
				Name:  "seed",
				Usage: "Load demand into Postgres for the postgres source",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "db-url",
						Usage:   "Database connection string",
						EnvVars: []string{"DATABASE_URL"},
					},
					&cli.StringFlag{
						Name:  "from",
						Usage: "Wide CSV to load (default DEMAND_CSV_PATH)",
					},
					&cli.BoolFlag{
						Name:  "synthetic",
						Usage: "Seed generated Poisson demand instead of a CSV",
					},
				},
				Action: runSeed,
			},
			{
				Name:  "fetch",
				Usage: "Download the demand CSV from object storage",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "key",
						Usage: "Object key (default S3_OBJECT_KEY)",
					},
					&cli.StringFlag{
						Name:  "dest",
						Usage: "Local destination (default DEMAND_CSV_PATH)",
					},
					&cli.BoolFlag{
						Name:  "list",
						Usage: "List objects under the key prefix instead of downloading",
					},
				},
				Action: runFetch,
			},
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("replenish failed")
	}
}
