package itinerary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/embedding"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const (
	DefaultCandidateLimit = 100
	GenerationMethod      = "rag_v1"

	defaultListLimit = 20
	maxListLimit     = 50
)

type Service interface {
	Generate(ctx context.Context, req types.GenerateItineraryRequest) (*types.Itinerary, error)
	Get(ctx context.Context, itineraryID uuid.UUID) (*types.Itinerary, error)
	List(ctx context.Context, limit, offset int) ([]types.ItinerarySummary, error)
	Delete(ctx context.Context, itineraryID uuid.UUID) error
}

// CandidateStore retrieves the vector-ranked POI pool of a city.
type CandidateStore interface {
	RetrieveCandidates(ctx context.Context, filter poi.CandidateFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error)
}

type ServiceImpl struct {
	logger         *slog.Logger
	candidates     CandidateStore
	embedder       embedding.Provider
	repo           Repository
	scorer         *Scorer
	candidateLimit int
}

func NewServiceImpl(candidates CandidateStore, embedder embedding.Provider, repo Repository, scorer *Scorer, candidateLimit int, logger *slog.Logger) *ServiceImpl {
	if candidateLimit <= 0 {
		candidateLimit = DefaultCandidateLimit
	}
	return &ServiceImpl{
		logger:         logger,
		candidates:     candidates,
		embedder:       embedder,
		repo:           repo,
		scorer:         scorer,
		candidateLimit: candidateLimit,
	}
}

// Generate runs retrieval, persona scoring, hard filtering and day assembly
// for a trip, then persists the result.
func (s *ServiceImpl) Generate(ctx context.Context, req types.GenerateItineraryRequest) (*types.Itinerary, error) {
	trip := req.TripRequest
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Generate", trace.WithAttributes(
		attribute.String("trip.destination", trip.DestinationCity),
		attribute.String("trip.group_type", string(trip.GroupType)),
		attribute.String("trip.pacing", string(trip.Pacing)),
		attribute.Int("trip.days", trip.NumDays()),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Generate"), slog.String("destination", trip.DestinationCity))

	if err := trip.Validate(); err != nil {
		span.SetStatus(codes.Error, "Invalid trip request")
		return nil, err
	}
	if trip.Pacing == "" {
		trip.Pacing = types.PacingModerate
	}

	queryText := embedding.TripQueryText(trip.DestinationCity, trip.GroupType, trip.Vibes, trip.Pacing)
	vector, err := s.embedder.Embed(ctx, queryText)
	if err != nil {
		l.ErrorContext(ctx, "Failed to embed trip query", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding failed")
		return nil, fmt.Errorf("failed to embed trip query: %w", err)
	}

	candidates, err := s.candidates.RetrieveCandidates(ctx, poi.CandidateFilter{
		City:         trip.DestinationCity,
		MaxCostLevel: trip.BudgetLevel,
		ExcludeIDs:   req.ExcludePOIs,
	}, vector, s.candidateLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Candidate retrieval failed")
		return nil, fmt.Errorf("failed to retrieve candidates: %w", err)
	}
	if len(candidates) == 0 {
		l.WarnContext(ctx, "No candidates found")
		span.SetStatus(codes.Error, "No candidates")
		return nil, fmt.Errorf("%s: %w", trip.DestinationCity, types.ErrNoCandidates)
	}

	scored := s.scorer.ScoreCandidates(candidates, trip)
	filtered := ApplyFilters(scored, trip)
	if len(filtered) == 0 {
		l.WarnContext(ctx, "All candidates removed by filters", slog.Int("candidates", len(candidates)))
		span.SetStatus(codes.Error, "Nothing passed filters")
		return nil, fmt.Errorf("%s: %w", trip.DestinationCity, types.ErrNoPOIsPassedFilters)
	}

	days := NewAssembler(trip.Pacing, trip.GroupType).Build(filtered, trip, req.MustIncludePOIs)
	it := &types.Itinerary{
		Trip:             trip,
		Days:             days,
		GenerationMethod: GenerationMethod,
	}
	for _, d := range days {
		it.TotalEstimatedCost += d.EstimatedCost
	}
	it.TotalEstimatedCost = round2(it.TotalEstimatedCost)

	if err := s.repo.Save(ctx, it); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to persist itinerary")
		return nil, fmt.Errorf("failed to save itinerary: %w", err)
	}

	metrics.Get().ItinerariesGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("pacing", string(trip.Pacing)),
		attribute.String("group_type", string(trip.GroupType)),
	))
	l.InfoContext(ctx, "Itinerary generated",
		slog.String("itinerary_id", it.ID.String()),
		slog.Int("candidates", len(candidates)),
		slog.Int("passed_filters", len(filtered)),
		slog.Int("days", len(days)))
	span.SetAttributes(attribute.String("itinerary.id", it.ID.String()))
	span.SetStatus(codes.Ok, "Itinerary generated")
	return it, nil
}

func (s *ServiceImpl) Get(ctx context.Context, itineraryID uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Get")
	defer span.End()

	it, err := s.repo.Get(ctx, itineraryID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch itinerary")
		return nil, err
	}
	span.SetStatus(codes.Ok, "Itinerary fetched")
	return it, nil
}

func (s *ServiceImpl) List(ctx context.Context, limit, offset int) ([]types.ItinerarySummary, error) {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "List")
	defer span.End()

	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset = max(offset, 0)

	start := time.Now()
	summaries, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to list itineraries")
		return nil, err
	}
	s.logger.DebugContext(ctx, "Itineraries listed",
		slog.Int("count", len(summaries)),
		slog.Duration("elapsed", time.Since(start)))
	span.SetStatus(codes.Ok, "Itineraries listed")
	return summaries, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, itineraryID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryService").Start(ctx, "Delete")
	defer span.End()

	if err := s.repo.Delete(ctx, itineraryID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to delete itinerary")
		return err
	}
	span.SetStatus(codes.Ok, "Itinerary deleted")
	return nil
}
