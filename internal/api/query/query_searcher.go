package query

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api/embedding"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const (
	vectorWeight    = 0.40
	personaWeight   = 0.35
	attributeWeight = 0.15
	proximityWeight = 0.10

	neutralScore = 0.5

	DefaultMinResults      = 3
	DefaultOverfetchFactor = 3
	minRestrictiveFilters  = 2
)

// POIStore is the part of the POI repository the searcher reads from.
type POIStore interface {
	SearchSimilar(ctx context.Context, filter poi.SearchFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error)
	FindAnchorByName(ctx context.Context, name string) (*types.Coordinates, error)
}

// Searcher ranks POIs for a parsed query by combining vector similarity with
// persona, attribute and proximity signals.
type Searcher struct {
	store           POIStore
	embedder        embedding.Provider
	minResults      int
	overfetchFactor int
	logger          *slog.Logger
}

func NewSearcher(store POIStore, embedder embedding.Provider, minResults, overfetchFactor int, logger *slog.Logger) *Searcher {
	if minResults <= 0 {
		minResults = DefaultMinResults
	}
	if overfetchFactor <= 0 {
		overfetchFactor = DefaultOverfetchFactor
	}
	return &Searcher{
		store:           store,
		embedder:        embedder,
		minResults:      minResults,
		overfetchFactor: overfetchFactor,
		logger:          logger,
	}
}

func filterFromQuery(q types.ParsedQuery) poi.SearchFilter {
	return poi.SearchFilter{
		City:         q.City,
		Category:     q.Category,
		Subcategory:  q.Subcategory,
		MaxCostLevel: q.CostLevel,
		TimeOfDay:    q.TimeOfDay,
		Neighborhood: q.Neighborhood,
	}
}

// Search returns at most limit results ordered by final score. Fewer results
// are returned when the candidate pool is exhausted. A non-positive limit
// falls back to DefaultLimit.
func (s *Searcher) Search(ctx context.Context, parsed types.ParsedQuery, limit int) ([]types.SearchResult, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	ctx, span := otel.Tracer("QuerySearcher").Start(ctx, "Search", trace.WithAttributes(
		attribute.String("query.city", parsed.City),
		attribute.String("query.category", parsed.Category),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := s.logger.With(slog.String("method", "Search"))

	vec, err := s.embedder.Embed(ctx, parsed.EmbeddingText())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Embedding failed")
		return nil, fmt.Errorf("failed to embed search query: %w", err)
	}

	filter := filterFromQuery(parsed)
	fetchLimit := limit * s.overfetchFactor

	rows, err := s.store.SearchSimilar(ctx, filter, vec, fetchLimit)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Vector search failed")
		return nil, err
	}

	if len(rows) < s.minResults && filter.RestrictiveCount() >= minRestrictiveFilters {
		l.DebugContext(ctx, "Sparse results, relaxing filters",
			slog.Int("rows", len(rows)),
			slog.Int("restrictive_filters", filter.RestrictiveCount()))
		rows, err = s.relax(ctx, filter, vec, fetchLimit, rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Relaxed search failed")
			return nil, err
		}
	}

	var anchor *types.Coordinates
	if parsed.NearPOIName != "" {
		anchor, err = s.store.FindAnchorByName(ctx, parsed.NearPOIName)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Anchor lookup failed")
			return nil, err
		}
	}

	results := make([]types.SearchResult, 0, len(rows))
	for _, row := range rows {
		results = append(results, rank(row, parsed, anchor))
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].FinalScore > results[j].FinalScore
	})
	if len(results) > limit {
		results = results[:limit]
	}

	span.SetAttributes(attribute.Int("results.count", len(results)), attribute.Bool("anchor.resolved", anchor != nil))
	span.SetStatus(codes.Ok, "Search completed")
	return results, nil
}

// relax retries with city and category, then with the city alone. The first
// attempt that reaches the minimum wins; otherwise the original rows stand.
func (s *Searcher) relax(ctx context.Context, strict poi.SearchFilter, vec []float32, limit int, original []types.CandidatePOI) ([]types.CandidatePOI, error) {
	attempts := []poi.SearchFilter{{City: strict.City, Category: strict.Category}}
	if strict.City != "" {
		attempts = append(attempts, poi.SearchFilter{City: strict.City})
	}

	for _, f := range attempts {
		rows, err := s.store.SearchSimilar(ctx, f, vec, limit)
		if err != nil {
			return nil, err
		}
		if len(rows) >= s.minResults {
			return rows, nil
		}
	}
	return original, nil
}

func rank(c types.CandidatePOI, q types.ParsedQuery, anchor *types.Coordinates) types.SearchResult {
	vs := clamp01(c.Similarity)
	ps := personaBoost(c.POI, q)
	as := attributeBoost(c.POI, q)
	px := proximityScore(c.POI, anchor)

	final := vs*vectorWeight + ps*personaWeight + as*attributeWeight + px*proximityWeight
	return types.SearchResult{
		POI:            c.POI,
		FinalScore:     round4(final),
		VectorScore:    round4(vs),
		PersonaScore:   round4(ps),
		AttributeScore: round4(as),
		ProximityScore: round4(px),
	}
}

// personaBoost averages the scores for the requested vibes and group. Unset
// scores count as neutral.
func personaBoost(p types.POI, q types.ParsedQuery) float64 {
	if p.PersonaScores == nil {
		return neutralScore
	}
	var sum float64
	var n int
	for _, v := range q.Vibes {
		if score, ok := p.PersonaScores.Vibe(v); ok {
			sum += score
			n++
		}
	}
	if q.GroupType != "" {
		if score, ok := p.PersonaScores.Group(q.GroupType); ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return neutralScore
	}
	return clamp01(sum / float64(n))
}

func attributeBoost(p types.POI, q types.ParsedQuery) float64 {
	if p.Attributes == nil || len(q.Attributes) == 0 {
		return neutralScore
	}
	matches := 0
	for _, f := range q.Attributes {
		if p.Attributes.Flag(f) {
			matches++
		}
	}
	return neutralScore + neutralScore*float64(matches)/float64(len(q.Attributes))
}

func proximityScore(p types.POI, anchor *types.Coordinates) float64 {
	if anchor == nil {
		return neutralScore
	}
	loc, ok := p.Location()
	if !ok {
		return 0.3
	}
	switch d := poi.DistanceKm(loc, *anchor); {
	case d <= 0.5:
		return 1.0
	case d <= 1.0:
		return 0.8
	case d <= 2.0:
		return 0.6
	case d <= 5.0:
		return 0.3
	default:
		return 0.1
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
