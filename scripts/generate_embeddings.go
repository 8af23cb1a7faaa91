package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	database "github.com/FACorreiaa/go-itinerary-planner/app/db"
	appLogger "github.com/FACorreiaa/go-itinerary-planner/app/logger"
	"github.com/FACorreiaa/go-itinerary-planner/config"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/container"
)

// Regenerates the embedding of every POI from its document text.
func main() {
	batchSize := flag.Int("batch", poi.DefaultReembedBatchSize, "POIs fetched and embedded per batch")
	rps := flag.Float64("rps", 10, "embedding calls per second")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := appLogger.SetupLogger(os.Getenv("APP_ENV"), os.Stdout)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	dbConfig, err := database.NewDatabaseConfig(&cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		os.Exit(1)
	}

	pool, err := database.Init(dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, logger)
	if err != nil {
		logger.Error("Failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	if !database.WaitForDB(ctx, pool, logger) {
		logger.Error("Database not ready, exiting")
		os.Exit(1)
	}

	embedder, err := container.NewEmbedder(ctx, cfg.Embedding, logger)
	if err != nil {
		logger.Error("Failed to create embedding provider", slog.Any("error", err))
		os.Exit(1)
	}

	poiService := poi.NewServiceImpl(poi.NewRepository(pool, logger), embedder, rate.NewLimiter(rate.Limit(*rps), 1), logger)

	logger.Info("Generating embeddings for POIs...", slog.Int("batch_size", *batchSize))
	count, err := poiService.ReembedAll(ctx, *batchSize)
	if err != nil {
		logger.Error("Failed to generate POI embeddings", slog.Any("error", err), slog.Int("embedded", count))
		os.Exit(1)
	}
	logger.Info("Embedding generation completed", slog.Int("embedded", count))
}
