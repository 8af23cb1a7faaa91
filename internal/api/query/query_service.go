package query

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Service = (*ServiceImpl)(nil)

const (
	DefaultLimit = 20
	MaxLimit     = 50
)

type Service interface {
	Parse(ctx context.Context, query string) (types.ParsedQuery, error)
	Search(ctx context.Context, req types.NLQueryRequest) (*types.NLQueryResponse, error)
}

// Options tunes result limits and caching of the query service.
type Options struct {
	DefaultLimit int
	MaxLimit     int
	CacheTTL     time.Duration
}

type ServiceImpl struct {
	logger       *slog.Logger
	parser       *Parser
	searcher     *Searcher
	cache        *cache.Cache
	defaultLimit int
	maxLimit     int
}

func NewServiceImpl(parser *Parser, searcher *Searcher, opts Options, logger *slog.Logger) *ServiceImpl {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}
	return &ServiceImpl{
		logger:       logger,
		parser:       parser,
		searcher:     searcher,
		cache:        cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		defaultLimit: opts.DefaultLimit,
		maxLimit:     opts.MaxLimit,
	}
}

func (s *ServiceImpl) Parse(ctx context.Context, query string) (types.ParsedQuery, error) {
	_, span := otel.Tracer("QueryService").Start(ctx, "Parse")
	defer span.End()

	if strings.TrimSpace(query) == "" {
		span.SetStatus(codes.Error, "Empty query")
		return types.ParsedQuery{}, fmt.Errorf("query is required: %w", types.ErrInvalidRequest)
	}
	parsed := s.parser.Parse(query)
	span.SetAttributes(attribute.Float64("query.confidence", parsed.Confidence))
	span.SetStatus(codes.Ok, "Query parsed")
	return parsed, nil
}

func (s *ServiceImpl) limit(requested int) int {
	switch {
	case requested <= 0:
		return s.defaultLimit
	case requested > s.maxLimit:
		return s.maxLimit
	default:
		return requested
	}
}

// Search parses, ranks and explains results for a natural-language query.
// Identical queries are served from an in-process cache.
func (s *ServiceImpl) Search(ctx context.Context, req types.NLQueryRequest) (*types.NLQueryResponse, error) {
	ctx, span := otel.Tracer("QueryService").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query.text", req.Query),
		attribute.Int("query.limit", req.Limit),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))
	start := time.Now()
	m := metrics.Get()

	parsed, err := s.Parse(ctx, req.Query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	limit := s.limit(req.Limit)

	key := fmt.Sprintf("%s|%d", strings.ToLower(strings.TrimSpace(req.Query)), limit)
	if cached, found := s.cache.Get(key); found {
		if resp, ok := cached.(*types.NLQueryResponse); ok {
			l.DebugContext(ctx, "Search served from cache", slog.String("query", req.Query))
			m.NLSearchRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "cache_hit")))
			span.SetStatus(codes.Ok, "Cache hit")
			return resp, nil
		}
	}

	results, err := s.searcher.Search(ctx, parsed, limit)
	if err != nil {
		m.NLSearchRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "error")))
		l.ErrorContext(ctx, "Hybrid search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Search failed")
		return nil, fmt.Errorf("failed to search POIs: %w", err)
	}

	resp := &types.NLQueryResponse{
		Query:        req.Query,
		ParsedIntent: parsed,
		Results:      Enrich(results, parsed),
		Total:        len(results),
	}
	s.cache.Set(key, resp, cache.DefaultExpiration)

	m.NLSearchRequestsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", "ok")))
	m.NLSearchDurationSeconds.Record(ctx, time.Since(start).Seconds())
	l.InfoContext(ctx, "Search completed",
		slog.String("city", parsed.City),
		slog.String("category", parsed.Category),
		slog.Float64("confidence", parsed.Confidence),
		slog.Int("results", resp.Total))
	span.SetAttributes(attribute.Int("results.count", resp.Total))
	span.SetStatus(codes.Ok, "Search completed")
	return resp, nil
}
