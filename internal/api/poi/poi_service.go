package poi

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api/embedding"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const (
	DefaultReembedBatchSize = 50
	reembedConcurrency      = 4
)

type Service interface {
	GetPOI(ctx context.Context, poiID uuid.UUID) (*types.POI, error)
	// ReembedAll regenerates the embedding of every POI and returns how many
	// were updated.
	ReembedAll(ctx context.Context, batchSize int) (int, error)
}

type ServiceImpl struct {
	logger        *slog.Logger
	poiRepository Repository
	embedder      embedding.Provider
	limiter       *rate.Limiter
}

// NewServiceImpl builds the POI service. limiter throttles embedding calls
// during re-embedding; nil means unlimited.
func NewServiceImpl(poiRepository Repository, embedder embedding.Provider, limiter *rate.Limiter, logger *slog.Logger) *ServiceImpl {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 0)
	}
	return &ServiceImpl{
		logger:        logger,
		poiRepository: poiRepository,
		embedder:      embedder,
		limiter:       limiter,
	}
}

func (s *ServiceImpl) GetPOI(ctx context.Context, poiID uuid.UUID) (*types.POI, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "GetPOI", trace.WithAttributes(
		attribute.String("poi.id", poiID.String()),
	))
	defer span.End()

	p, err := s.poiRepository.GetPOI(ctx, poiID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to fetch POI")
		return nil, err
	}
	span.SetStatus(codes.Ok, "POI fetched")
	return p, nil
}

func (s *ServiceImpl) ReembedAll(ctx context.Context, batchSize int) (int, error) {
	ctx, span := otel.Tracer("POIService").Start(ctx, "ReembedAll", trace.WithAttributes(
		attribute.Int("batch.size", batchSize),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "ReembedAll"))
	if batchSize <= 0 {
		batchSize = DefaultReembedBatchSize
	}

	total := 0
	after := uuid.Nil
	for {
		batch, err := s.poiRepository.ListPOIsForEmbedding(ctx, after, batchSize)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to list POIs")
			return total, fmt.Errorf("failed to list POIs for embedding: %w", err)
		}
		if len(batch) == 0 {
			break
		}

		if err := s.embedBatch(ctx, batch); err != nil {
			l.ErrorContext(ctx, "Embedding batch failed", slog.Any("error", err), slog.Int("embedded_so_far", total))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Embedding batch failed")
			return total, err
		}

		total += len(batch)
		after = batch[len(batch)-1].ID
		l.InfoContext(ctx, "Embedded POI batch", slog.Int("batch", len(batch)), slog.Int("total", total))

		if len(batch) < batchSize {
			break
		}
	}

	span.SetAttributes(attribute.Int("pois.embedded", total))
	span.SetStatus(codes.Ok, "POIs re-embedded")
	return total, nil
}

func (s *ServiceImpl) embedBatch(ctx context.Context, batch []types.POI) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reembedConcurrency)

	for _, p := range batch {
		g.Go(func() error {
			if err := s.limiter.Wait(gctx); err != nil {
				return err
			}
			vec, err := s.embedder.Embed(gctx, embedding.POIDocumentText(p))
			if err != nil {
				return fmt.Errorf("failed to embed POI %s: %w", p.ID, err)
			}
			if err := s.poiRepository.UpdateEmbedding(gctx, p.ID, vec); err != nil {
				return fmt.Errorf("failed to store embedding for POI %s: %w", p.ID, err)
			}
			return nil
		})
	}
	return g.Wait()
}
