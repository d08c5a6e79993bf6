// cmd/trainer/main.go
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/retailpulse/forecast-engine/internal/config"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/pipeline"
	"github.com/retailpulse/forecast-engine/internal/repository"
	"github.com/retailpulse/forecast-engine/internal/repository/postgres"
	"github.com/retailpulse/forecast-engine/internal/storage"
	"github.com/retailpulse/forecast-engine/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "db-url",
		Usage:   "Database connection string; omit to run against the synthetic in-memory catalog",
		EnvVars: []string{"DATABASE_URL"},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "trainer",
		Usage: "Seed demand data and run model training passes",
		Commands: []*cli.Command{
			{
				Name:  "seed",
				Usage: "Generate a synthetic catalog with sales history",
				Flags: []cli.Flag{
					newDBURLFlag(),
					&cli.Int64Flag{
						Name:    "seed",
						Usage:   "Generator seed, same seed yields the same catalog",
						Value:   42,
						EnvVars: []string{"ENGINE_SYNTHETIC_SEED"},
					},
					&cli.IntFlag{
						Name:  "products",
						Usage: "Number of products to generate",
						Value: 60,
					},
					&cli.IntFlag{
						Name:  "history-days",
						Usage: "Days of sales history per product",
						Value: 180,
					},
				},
				Action: runSeed,
			},
			{
				Name:   "backtest",
				Usage:  "Train every model, cross-validate the ensemble and print the report",
				Flags:  trainingFlags(),
				Action: runBacktest,
			},
			{
				Name:   "retrain",
				Usage:  "Run a training pass and archive the report to object storage",
				Flags:  trainingFlags(),
				Action: runRetrain,
			},
			{
				Name:  "reports",
				Usage: "List archived training reports, or print one with --fetch",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "prefix",
						Usage: "Archive key prefix to list under",
					},
					&cli.StringFlag{
						Name:  "fetch",
						Usage: "Print the report stored under this key instead of listing",
					},
				},
				Action: runReports,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("trainer failed")
	}
}

func trainingFlags() []cli.Flag {
	return []cli.Flag{
		newDBURLFlag(),
		&cli.IntFlag{
			Name:  "folds",
			Usage: "Cross-validation fold count",
			Value: 5,
		},
		&cli.Float64Flag{
			Name:  "holdout",
			Usage: "Held-out fraction for model backtests",
			Value: 0.2,
		},
		&cli.IntFlag{
			Name:  "history-days",
			Usage: "Days of history pulled per product",
			Value: 180,
		},
	}
}

func runSeed(c *cli.Context) error {
	repo, err := openRepository(c)
	if err != nil {
		return err
	}

	gen := forecast.NewSyntheticGenerator(c.Int64("seed"))
	end := time.Now().UTC().Truncate(24 * time.Hour)
	historyDays := c.Int("history-days")

	catalog := gen.Catalog(c.Int("products"))
	for _, p := range catalog {
		if err := repo.SaveProduct(c.Context, p); err != nil {
			return fmt.Errorf("save product %s: %w", p.ID, err)
		}
		if err := repo.SaveSalesHistory(c.Context, p.ID, gen.History(p, historyDays, end)); err != nil {
			return fmt.Errorf("save history %s: %w", p.ID, err)
		}
	}

	seedLog := logger.Component("seed")
	seedLog.Info().
		Int("products", len(catalog)).
		Int("history_days", historyDays).
		Msg("catalog seeded")
	return nil
}

func runBacktest(c *cli.Context) error {
	report, err := runTraining(c, storage.NoopStorage{})
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func runRetrain(c *cli.Context) error {
	cfg := config.Load()

	reports := storage.ObjectStorage(storage.NoopStorage{})
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(c.Context, cfg.Storage)
		if err != nil {
			return fmt.Errorf("object storage: %w", err)
		}
		reports = client
	}

	report, err := runTraining(c, reports)
	if err != nil {
		return err
	}

	logger.Log.Info().
		Str("run_id", report.RunID).
		Float64("avg_accuracy", report.AvgAccuracy).
		Msg("retrain complete")
	return nil
}

func runReports(c *cli.Context) error {
	cfg := config.Load()
	if !cfg.Storage.Enabled {
		return fmt.Errorf("object storage is disabled, set STORAGE_ENABLED=true")
	}

	client, err := storage.NewMinioClient(c.Context, cfg.Storage)
	if err != nil {
		return fmt.Errorf("object storage: %w", err)
	}

	if key := c.String("fetch"); key != "" {
		report, err := pipeline.FetchArchivedReport(c.Context, client, key)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	objects, err := pipeline.ListArchivedReports(c.Context, client, c.String("prefix"))
	if err != nil {
		return err
	}
	if len(objects) == 0 {
		fmt.Println("no archived reports")
		return nil
	}
	for _, obj := range objects {
		fmt.Printf("%s\t%d bytes\n", obj.Key, obj.Size)
	}
	return nil
}

func runTraining(c *cli.Context, reports storage.ObjectStorage) (*pipeline.Report, error) {
	repo, err := openRepository(c)
	if err != nil {
		return nil, err
	}

	runs, err := openRunStore(c)
	if err != nil {
		return nil, err
	}

	trainer := pipeline.NewTrainer(pipeline.Config{
		Folds:       c.Int("folds"),
		Holdout:     c.Float64("holdout"),
		WorkerCount: 4,
		HistoryDays: c.Int("history-days"),
	}, forecast.NewRegistry(), repo, runs, ensemble.NewStore(), reports)

	return trainer.Run(c.Context)
}

func openRepository(c *cli.Context) (repository.ProductRepository, error) {
	url := c.String("db-url")
	if url == "" {
		seed := c.Int64("seed")
		if seed == 0 {
			seed = 42
		}
		return repository.NewSyntheticRepository(seed, 60, 180), nil
	}

	db, err := postgres.NewDBFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	repo := postgres.NewProductRepository(db)
	if err := repo.EnsureSchema(c.Context); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return repo, nil
}

func openRunStore(c *cli.Context) (pipeline.RunStore, error) {
	url := c.String("db-url")
	if url == "" {
		return pipeline.NewMemoryRunStore(), nil
	}

	db, err := postgres.NewDBFromURL(url)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	store := pipeline.NewPostgresRunStore(db)
	if err := store.EnsureSchema(c.Context); err != nil {
		return nil, fmt.Errorf("ensure run schema: %w", err)
	}
	return store, nil
}
