package poi

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-itinerary-planner/app/db"
	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// SearchSimilar returns POIs with an embedding that satisfy filter,
	// ordered by ascending cosine distance to queryEmbedding.
	SearchSimilar(ctx context.Context, filter SearchFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error)
	FindAnchorByName(ctx context.Context, name string) (*types.Coordinates, error)
	RetrieveCandidates(ctx context.Context, filter CandidateFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error)
	GetPOI(ctx context.Context, poiID uuid.UUID) (*types.POI, error)

	// Embedding maintenance
	ListPOIsForEmbedding(ctx context.Context, afterID uuid.UUID, batchSize int) ([]types.POI, error)
	UpdateEmbedding(ctx context.Context, poiID uuid.UUID, embedding []float32) error
}

// SearchFilter holds the hard filters of a natural-language search. Zero
// values are not applied.
type SearchFilter struct {
	City         string
	Category     string
	Subcategory  string
	MaxCostLevel int
	TimeOfDay    string
	Neighborhood string
}

// RestrictiveCount counts the filters that narrow a search beyond the city.
func (f SearchFilter) RestrictiveCount() int {
	n := 0
	for _, set := range []bool{
		f.Category != "", f.Subcategory != "", f.MaxCostLevel > 0, f.TimeOfDay != "", f.Neighborhood != "",
	} {
		if set {
			n++
		}
	}
	return n
}

// CandidateFilter restricts itinerary candidate retrieval.
type CandidateFilter struct {
	City         string
	MaxCostLevel int
	ExcludeIDs   []uuid.UUID
}

type RepositoryImpl struct {
	logger *slog.Logger
	pgpool database.Pool
}

func NewRepository(pgpool database.Pool, logger *slog.Logger) *RepositoryImpl {
	return &RepositoryImpl{
		logger: logger,
		pgpool: pgpool,
	}
}

const poiColumns = `
            p.id, p.name, p.description, p.latitude, p.longitude, p.address, p.neighborhood,
            p.city, p.country, p.category, p.subcategory, p.typical_duration_minutes,
            p.best_time_of_day, p.cost_level, p.avg_cost_per_person, p.cost_currency,
            CASE WHEN ps.poi_id IS NULL THEN NULL ELSE to_jsonb(ps) END AS persona_scores,
            CASE WHEN pa.poi_id IS NULL THEN NULL ELSE to_jsonb(pa) END AS attributes`

const poiJoins = `
        FROM pois p
        LEFT JOIN poi_persona_scores ps ON ps.poi_id = p.id
        LEFT JOIN poi_attributes pa ON pa.poi_id = p.id`

// scanPOI reads the poiColumns projection followed by any extra columns.
func scanPOI(row pgx.Row, extra ...any) (types.POI, error) {
	var (
		p                                     types.POI
		description, address, neighborhood    sql.NullString
		category, subcategory, bestTime, curr sql.NullString
		personaJSON, attributesJSON           []byte
	)
	dest := []any{
		&p.ID, &p.Name, &description, &p.Latitude, &p.Longitude, &address, &neighborhood,
		&p.City, &p.Country, &category, &subcategory, &p.TypicalDurationMinutes,
		&bestTime, &p.CostLevel, &p.AvgCostPerPerson, &curr,
		&personaJSON, &attributesJSON,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return types.POI{}, err
	}

	p.Description = description.String
	p.Address = address.String
	p.Neighborhood = neighborhood.String
	p.Category = category.String
	p.Subcategory = subcategory.String
	p.BestTimeOfDay = bestTime.String
	p.CostCurrency = curr.String

	if len(personaJSON) > 0 {
		var scores types.PersonaScores
		if err := json.Unmarshal(personaJSON, &scores); err != nil {
			return types.POI{}, fmt.Errorf("failed to decode persona scores: %w", err)
		}
		p.PersonaScores = &scores
	}
	if len(attributesJSON) > 0 {
		var attrs types.Attributes
		if err := json.Unmarshal(attributesJSON, &attrs); err != nil {
			return types.POI{}, fmt.Errorf("failed to decode attributes: %w", err)
		}
		p.Attributes = &attrs
	}
	return p, nil
}

func (r *RepositoryImpl) observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) queryCandidates(ctx context.Context, l *slog.Logger, span trace.Span, op, query string, args []any) ([]types.CandidatePOI, error) {
	l.DebugContext(ctx, "Executing similarity search query",
		slog.String("query", query),
		slog.Int("args_count", len(args)))

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, args...)
	if err != nil {
		r.observe(ctx, op, start, err)
		l.ErrorContext(ctx, "Failed to query similar POIs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to search similar POIs: %w", err)
	}
	defer rows.Close()

	var results []types.CandidatePOI
	for rows.Next() {
		var similarity float64
		p, err := scanPOI(rows, &similarity)
		if err != nil {
			r.observe(ctx, op, start, err)
			l.ErrorContext(ctx, "Failed to scan similar POI row", slog.Any("error", err))
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan similar POI row: %w", err)
		}
		results = append(results, types.CandidatePOI{POI: p, Similarity: similarity})
	}
	if err = rows.Err(); err != nil {
		r.observe(ctx, op, start, err)
		l.ErrorContext(ctx, "Error iterating similar POI rows", slog.Any("error", err))
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating similar POI rows: %w", err)
	}
	r.observe(ctx, op, start, nil)

	l.InfoContext(ctx, "Similar POIs found", slog.Int("count", len(results)))
	span.SetAttributes(attribute.Int("results.count", len(results)))
	span.SetStatus(codes.Ok, "Similar POIs found")
	return results, nil
}

func (r *RepositoryImpl) SearchSimilar(ctx context.Context, filter SearchFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "SearchSimilar", trace.WithAttributes(
		attribute.Int("embedding.dimension", len(queryEmbedding)),
		attribute.Int("limit", limit),
		attribute.String("city", filter.City),
		attribute.String("category", filter.Category),
		attribute.Int("filters.restrictive", filter.RestrictiveCount()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "SearchSimilar"))

	args := []any{pgvector.NewVector(queryEmbedding)}
	conditions := []string{"p.embedding IS NOT NULL"}
	add := func(format string, v any) {
		args = append(args, v)
		conditions = append(conditions, fmt.Sprintf(format, len(args)))
	}
	if filter.City != "" {
		add("p.city ILIKE $%d", "%"+filter.City+"%")
	}
	if filter.Category != "" {
		add("p.category = $%d", filter.Category)
	}
	if filter.Subcategory != "" {
		add("p.subcategory = $%d", filter.Subcategory)
	}
	if filter.MaxCostLevel > 0 {
		add("(p.cost_level IS NULL OR p.cost_level <= $%d)", filter.MaxCostLevel)
	}
	if filter.TimeOfDay != "" {
		add("(p.best_time_of_day IS NULL OR p.best_time_of_day IN ($%d, 'any'))", filter.TimeOfDay)
	}
	if filter.Neighborhood != "" {
		add("p.neighborhood ILIKE $%d", "%"+filter.Neighborhood+"%")
	}
	args = append(args, limit)

	query := `
        SELECT ` + poiColumns + `,
            1 - (p.embedding <=> $1::vector) AS similarity_score` + poiJoins + `
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY p.embedding <=> $1::vector
        LIMIT $` + fmt.Sprint(len(args))

	return r.queryCandidates(ctx, l, span, "search_similar", query, args)
}

func (r *RepositoryImpl) RetrieveCandidates(ctx context.Context, filter CandidateFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "RetrieveCandidates", trace.WithAttributes(
		attribute.String("city", filter.City),
		attribute.Int("budget.level", filter.MaxCostLevel),
		attribute.Int("exclude.count", len(filter.ExcludeIDs)),
		attribute.Int("limit", limit),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "RetrieveCandidates"))

	args := []any{pgvector.NewVector(queryEmbedding), filter.City}
	conditions := []string{"p.embedding IS NOT NULL", "LOWER(p.city) = LOWER($2)"}
	if filter.MaxCostLevel > 0 {
		args = append(args, filter.MaxCostLevel)
		conditions = append(conditions, fmt.Sprintf("(p.cost_level IS NULL OR p.cost_level <= $%d)", len(args)))
	}
	if len(filter.ExcludeIDs) > 0 {
		args = append(args, filter.ExcludeIDs)
		conditions = append(conditions, fmt.Sprintf("NOT (p.id = ANY($%d))", len(args)))
	}
	args = append(args, limit)

	query := `
        SELECT ` + poiColumns + `,
            1 - (p.embedding <=> $1::vector) AS similarity_score` + poiJoins + `
        WHERE ` + strings.Join(conditions, " AND ") + `
        ORDER BY p.embedding <=> $1::vector
        LIMIT $` + fmt.Sprint(len(args))

	return r.queryCandidates(ctx, l, span, "retrieve_candidates", query, args)
}

func (r *RepositoryImpl) FindAnchorByName(ctx context.Context, name string) (*types.Coordinates, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "FindAnchorByName", trace.WithAttributes(
		attribute.String("poi.name", name),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "FindAnchorByName"))

	query := `
        SELECT latitude, longitude
        FROM pois
        WHERE name ILIKE $1 AND latitude IS NOT NULL AND longitude IS NOT NULL
        LIMIT 1
    `
	start := time.Now()
	var c types.Coordinates
	err := r.pgpool.QueryRow(ctx, query, "%"+name+"%").Scan(&c.Latitude, &c.Longitude)
	if errors.Is(err, pgx.ErrNoRows) {
		r.observe(ctx, "find_anchor", start, nil)
		l.DebugContext(ctx, "No anchor POI found", slog.String("name", name))
		span.SetStatus(codes.Ok, "No anchor found")
		return nil, nil
	}
	r.observe(ctx, "find_anchor", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to look up anchor POI", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to find anchor POI: %w", err)
	}

	span.SetStatus(codes.Ok, "Anchor found")
	return &c, nil
}

func (r *RepositoryImpl) GetPOI(ctx context.Context, poiID uuid.UUID) (*types.POI, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "GetPOI", trace.WithAttributes(
		attribute.String("poi.id", poiID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "GetPOI"), slog.String("poi_id", poiID.String()))

	query := `SELECT ` + poiColumns + poiJoins + ` WHERE p.id = $1`

	start := time.Now()
	p, err := scanPOI(r.pgpool.QueryRow(ctx, query, poiID))
	if errors.Is(err, pgx.ErrNoRows) {
		r.observe(ctx, "get_poi", start, nil)
		l.WarnContext(ctx, "POI not found")
		span.SetStatus(codes.Error, "POI not found")
		return nil, fmt.Errorf("poi %s: %w", poiID, types.ErrNotFound)
	}
	r.observe(ctx, "get_poi", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to fetch POI", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to fetch POI: %w", err)
	}

	span.SetStatus(codes.Ok, "POI fetched")
	return &p, nil
}

func (r *RepositoryImpl) ListPOIsForEmbedding(ctx context.Context, afterID uuid.UUID, batchSize int) ([]types.POI, error) {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "ListPOIsForEmbedding", trace.WithAttributes(
		attribute.String("after.id", afterID.String()),
		attribute.Int("batch.size", batchSize),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "ListPOIsForEmbedding"))

	query := `SELECT ` + poiColumns + poiJoins + `
        WHERE p.id > $1
        ORDER BY p.id
        LIMIT $2`

	start := time.Now()
	rows, err := r.pgpool.Query(ctx, query, afterID, batchSize)
	if err != nil {
		r.observe(ctx, "list_for_embedding", start, err)
		l.ErrorContext(ctx, "Failed to list POIs", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to list POIs for embedding: %w", err)
	}
	defer rows.Close()

	var pois []types.POI
	for rows.Next() {
		p, err := scanPOI(rows)
		if err != nil {
			r.observe(ctx, "list_for_embedding", start, err)
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan POI row: %w", err)
		}
		pois = append(pois, p)
	}
	if err = rows.Err(); err != nil {
		r.observe(ctx, "list_for_embedding", start, err)
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating POI rows: %w", err)
	}
	r.observe(ctx, "list_for_embedding", start, nil)

	span.SetAttributes(attribute.Int("results.count", len(pois)))
	span.SetStatus(codes.Ok, "POIs listed")
	return pois, nil
}

func (r *RepositoryImpl) UpdateEmbedding(ctx context.Context, poiID uuid.UUID, embedding []float32) error {
	ctx, span := otel.Tracer("POIRepository").Start(ctx, "UpdateEmbedding", trace.WithAttributes(
		attribute.String("poi.id", poiID.String()),
		attribute.Int("embedding.dimension", len(embedding)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "UpdateEmbedding"))

	query := `
        UPDATE pois
        SET embedding = $1, embedding_generated_at = NOW(), updated_at = NOW()
        WHERE id = $2
    `

	start := time.Now()
	result, err := r.pgpool.Exec(ctx, query, pgvector.NewVector(embedding), poiID)
	r.observe(ctx, "update_embedding", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to update POI embedding",
			slog.Any("error", err),
			slog.String("poi_id", poiID.String()))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database update failed")
		return fmt.Errorf("failed to update POI embedding: %w", err)
	}

	if result.RowsAffected() == 0 {
		l.WarnContext(ctx, "No POI found for embedding update", slog.String("poi_id", poiID.String()))
		span.SetStatus(codes.Error, "POI not found")
		return fmt.Errorf("poi %s: %w", poiID, types.ErrNotFound)
	}

	span.SetStatus(codes.Ok, "POI embedding updated")
	return nil
}
