package container

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	database "github.com/FACorreiaa/go-itinerary-planner/app/db"
	"github.com/FACorreiaa/go-itinerary-planner/config"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/country"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/embedding"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/query"
)

const reembedRequestsPerSecond = 10

// Container holds all application dependencies.
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	Embedder         embedding.Provider
	POIService       *poi.ServiceImpl
	QueryHandler     *query.HandlerImpl
	POIHandler       *poi.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	CountryHandler   *country.HandlerImpl
}

// NewEmbedder builds the configured embedding provider wrapped in the
// in-process cache. API keys come from GOOGLE_GEMINI_API_KEY or
// OPENAI_API_KEY.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig, logger *slog.Logger) (embedding.Provider, error) {
	var (
		provider embedding.Provider
		err      error
	)
	switch strings.ToLower(cfg.Provider) {
	case "", "gemini":
		provider, err = embedding.NewGeminiProvider(ctx, os.Getenv("GOOGLE_GEMINI_API_KEY"), cfg.Model, cfg.Dimensions, logger)
	case "openai":
		provider, err = embedding.NewOpenAIProvider(os.Getenv("OPENAI_API_KEY"), cfg.Model, cfg.Dimensions, logger)
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedding provider: %w", cfg.Provider, err)
	}
	return embedding.NewCachedProvider(provider, cfg.CacheTTL, logger), nil
}

// NewContainer opens the database pool and wires repositories, services and
// handlers.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, cfg.Repositories.Postgres.MaxConns, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := NewEmbedder(ctx, cfg.Embedding, logger)
	if err != nil {
		pool.Close()
		return nil, err
	}

	poiRepo := poi.NewRepository(pool, logger)
	poiService := poi.NewServiceImpl(poiRepo, embedder, rate.NewLimiter(reembedRequestsPerSecond, 1), logger)

	searcher := query.NewSearcher(poiRepo, embedder, cfg.Search.MinResults, cfg.Search.OverfetchFactor, logger)
	queryService := query.NewServiceImpl(query.NewParser(), searcher, query.Options{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		CacheTTL:     cfg.Search.CacheTTL,
	}, logger)

	itineraryRepo := itinerary.NewRepository(pool, logger)
	itineraryService := itinerary.NewServiceImpl(poiRepo, embedder, itineraryRepo,
		itinerary.NewScorer(cfg.Scoring.MustSeeBoost), cfg.Itinerary.CandidateLimit, logger)

	countryService := country.NewServiceImpl(itineraryService, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		Embedder:         embedder,
		POIService:       poiService,
		QueryHandler:     query.NewHandlerImpl(queryService, logger),
		POIHandler:       poi.NewHandlerImpl(poiService, logger),
		ItineraryHandler: itinerary.NewHandlerImpl(itineraryService, logger),
		CountryHandler:   country.NewHandlerImpl(countryService, logger),
	}, nil
}

// Close releases all resources held by the container.
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready.
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}
