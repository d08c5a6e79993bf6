// cmd/api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/forecast-engine/internal/api"
	"github.com/retailpulse/forecast-engine/internal/cache"
	"github.com/retailpulse/forecast-engine/internal/config"
	"github.com/retailpulse/forecast-engine/internal/ensemble"
	"github.com/retailpulse/forecast-engine/internal/external"
	"github.com/retailpulse/forecast-engine/internal/forecast"
	"github.com/retailpulse/forecast-engine/internal/inventory"
	"github.com/retailpulse/forecast-engine/internal/pipeline"
	"github.com/retailpulse/forecast-engine/internal/repository"
	"github.com/retailpulse/forecast-engine/internal/repository/postgres"
	"github.com/retailpulse/forecast-engine/internal/service"
	"github.com/retailpulse/forecast-engine/internal/storage"
	"github.com/retailpulse/forecast-engine/pkg/logger"
)

const (
	syntheticProducts    = 60
	syntheticHistoryDays = 180
)

func main() {
	cfg := config.Load()

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()

	products, runs := buildStores(ctx, cfg)
	registry := forecast.NewRegistry()
	weights := ensemble.NewStore()

	factorCache, err := cache.NewFactorCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("factor cache unavailable, running uncached")
		factorCache = cache.NewNoopFactorCache()
	}
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("forecast cache unavailable, running uncached")
		forecastCache = cache.NewNoopForecastCache()
	}

	adapter := external.NewAdapter(cfg.External, factorCache)

	forecastService := service.NewForecastService(products, registry, weights, adapter, forecastCache, cfg.Engine.MaxHorizonDays)
	optimizer := inventory.NewOptimizer(cfg.Engine.OrderingCost)
	optimizationService := service.NewOptimizationService(products, forecastService, registry, optimizer, cfg.Engine.DefaultServiceLevel)
	catalogService := service.NewCatalogService(products)

	// Bootstrap training so the API does not answer MODEL_NOT_READY until
	// the first scheduled retrain.
	trainer := pipeline.NewTrainer(pipeline.Config{
		Folds:       cfg.Engine.TrainingFolds,
		Holdout:     cfg.Engine.TrainingHoldout,
		WorkerCount: cfg.Engine.WorkerCount,
		HistoryDays: syntheticHistoryDays,
	}, registry, products, runs, weights, reportStorage(ctx, cfg))
	go func() {
		if _, err := trainer.Run(ctx); err != nil {
			logger.Log.Error().Err(err).Msg("bootstrap training failed")
		}
	}()

	router := api.NewRouter(&api.Services{
		ForecastService:     forecastService,
		OptimizationService: optimizationService,
		CatalogService:      catalogService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Log.Info().Msg("server exiting")
}

// buildStores connects postgres when it is reachable and otherwise falls
// back to the seeded in-memory repository, so the engine always serves.
func buildStores(ctx context.Context, cfg *config.Config) (repository.ProductRepository, pipeline.RunStore) {
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("postgres unavailable, using synthetic catalog")
		return syntheticStores(cfg)
	}

	productRepo := postgres.NewProductRepository(db)
	if err := productRepo.EnsureSchema(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("schema setup failed, using synthetic catalog")
		return syntheticStores(cfg)
	}

	runStore := pipeline.NewPostgresRunStore(db)
	if err := runStore.EnsureSchema(ctx); err != nil {
		logger.Log.Warn().Err(err).Msg("run schema setup failed, tracking runs in memory")
		return productRepo, pipeline.NewMemoryRunStore()
	}

	// Empty databases get the synthetic catalog seeded in.
	if existing, err := productRepo.ListProducts(ctx); err == nil && len(existing) == 0 {
		seedSynthetic(ctx, cfg, productRepo)
	}

	return productRepo, runStore
}

func syntheticStores(cfg *config.Config) (repository.ProductRepository, pipeline.RunStore) {
	repo := repository.NewSyntheticRepository(cfg.Engine.SyntheticSeed, syntheticProducts, syntheticHistoryDays)
	return repo, pipeline.NewMemoryRunStore()
}

func seedSynthetic(ctx context.Context, cfg *config.Config, repo repository.ProductRepository) {
	gen := forecast.NewSyntheticGenerator(cfg.Engine.SyntheticSeed)
	end := time.Now().UTC().Truncate(24 * time.Hour)

	for _, p := range gen.Catalog(syntheticProducts) {
		if err := repo.SaveProduct(ctx, p); err != nil {
			logger.Log.Warn().Err(err).Str("product_id", p.ID).Msg("seed: save product failed")
			continue
		}
		if err := repo.SaveSalesHistory(ctx, p.ID, gen.History(p, syntheticHistoryDays, end)); err != nil {
			logger.Log.Warn().Err(err).Str("product_id", p.ID).Msg("seed: save history failed")
		}
	}
	logger.Log.Info().Int("products", syntheticProducts).Msg("seeded synthetic catalog")
}

func reportStorage(ctx context.Context, cfg *config.Config) storage.ObjectStorage {
	if !cfg.Storage.Enabled {
		return storage.NoopStorage{}
	}

	client, err := storage.NewMinioClient(ctx, cfg.Storage)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("object storage unavailable, reports will not be archived")
		return storage.NoopStorage{}
	}
	return client
}
