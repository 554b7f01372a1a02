package main

import (
	"fmt"
	"log"

	"go.uber.org/zap"

	"github.com/nutrilog/backend/config"
	httpDelivery "github.com/nutrilog/backend/internal/delivery/http"
	"github.com/nutrilog/backend/internal/infrastructure/cache"
	"github.com/nutrilog/backend/internal/infrastructure/estimator"
	"github.com/nutrilog/backend/internal/infrastructure/fdc"
	"github.com/nutrilog/backend/internal/infrastructure/postgres"
	"github.com/nutrilog/backend/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := buildLogger(cfg.Server.Environment)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()

	sugar.Infow("starting nutrilog backend",
		"environment", cfg.Server.Environment,
		"port", cfg.Server.Port)

	// Database
	db, err := postgres.Open(cfg.Database.DSN(), sugar)
	if err != nil {
		sugar.Fatalw("failed to connect to database", "error", err)
	}
	if cfg.Server.Environment == "development" {
		if err := postgres.AutoMigrate(db); err != nil {
			sugar.Fatalw("failed to run migrations", "error", err)
		}
	}

	foodRepo := postgres.NewFoodRepo(db, cfg.Matching.MaxCandidates)
	logRepo := postgres.NewLogRepo(db)
	targetRepo := postgres.NewTargetRepo(db)

	// External clients
	fdcClient := fdc.NewClient(cfg.FoodData.APIKey, cfg.FoodData.BaseURL, sugar)
	estimateCache := cache.NewMemoryCache(cfg.Estimator.CacheMaxItems)
	estimatorClient := estimator.NewClient(estimator.Config{
		APIKey:   cfg.Estimator.APIKey,
		BaseURL:  cfg.Estimator.BaseURL,
		Model:    cfg.Estimator.Model,
		CacheTTL: cfg.Estimator.CacheTTL,
	}, estimateCache, sugar)

	// Usecase layer
	debug := cfg.Matching.EnableDebugLogging
	matcher := usecase.NewMatcher(foodRepo, sugar, debug)
	logService := usecase.NewLogService(foodRepo, logRepo, matcher, estimatorClient, sugar, debug)
	importService := usecase.NewImportService(foodRepo, fdcClient, sugar)
	targetService := usecase.NewTargetService(targetRepo, sugar)

	// HTTP delivery
	handler := httpDelivery.NewHandler(logService, importService, targetService, sugar)
	router := httpDelivery.SetupRouter(cfg, handler, sugar)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	sugar.Infow("server listening", "addr", addr)
	if err := router.Run(addr); err != nil {
		sugar.Fatalw("server exited", "error", err)
	}
}

func buildLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
