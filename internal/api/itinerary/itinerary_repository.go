package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-itinerary-planner/app/db"
	"github.com/FACorreiaa/go-itinerary-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var _ Repository = (*RepositoryImpl)(nil)

type Repository interface {
	// Save persists the trip request, the itinerary, its days and items in a
	// single transaction and fills in the generated ids.
	Save(ctx context.Context, itinerary *types.Itinerary) error
	Get(ctx context.Context, itineraryID uuid.UUID) (*types.Itinerary, error)
	List(ctx context.Context, limit, offset int) ([]types.ItinerarySummary, error)
	Delete(ctx context.Context, itineraryID uuid.UUID) error
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

func (r *RepositoryImpl) observe(ctx context.Context, op string, start time.Time, err error) {
	m := metrics.Get()
	attrs := metric.WithAttributes(attribute.String("operation", op))
	m.DbQueryDurationSeconds.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.DbQueryErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (r *RepositoryImpl) Save(ctx context.Context, it *types.Itinerary) (err error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Save", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "INSERT"),
		attribute.String("db.sql.table", "itineraries"),
		attribute.Int("days.count", len(it.Days)),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Save"))
	start := time.Now()
	defer func() {
		r.observe(ctx, "save_itinerary", start, err)
		if err != nil {
			l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
			span.RecordError(err)
			span.SetStatus(codes.Error, "Failed to save itinerary")
		}
	}()

	request, err := json.Marshal(it.Trip)
	if err != nil {
		return fmt.Errorf("failed to encode trip request: %w", err)
	}

	tx, err := r.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx, `
        INSERT INTO trip_requests (destination_city, start_date, end_date, group_type, budget_level, pacing, request)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id`,
		it.Trip.DestinationCity, it.Trip.StartDate.Time, it.Trip.EndDate.Time, string(it.Trip.GroupType),
		it.Trip.BudgetLevel, string(it.Trip.Pacing), request,
	).Scan(&it.TripRequestID)
	if err != nil {
		return fmt.Errorf("failed to insert trip request: %w", err)
	}

	err = tx.QueryRow(ctx, `
        INSERT INTO itineraries (trip_request_id, total_estimated_cost, generation_method)
        VALUES ($1, $2, $3)
        RETURNING id, created_at`,
		it.TripRequestID, it.TotalEstimatedCost, it.GenerationMethod,
	).Scan(&it.ID, &it.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert itinerary: %w", err)
	}

	for _, day := range it.Days {
		var dayID uuid.UUID
		err = tx.QueryRow(ctx, `
            INSERT INTO itinerary_days (itinerary_id, day_number, date, theme, estimated_cost, pacing_score)
            VALUES ($1, $2, $3, $4, $5, $6)
            RETURNING id`,
			it.ID, day.DayNumber, day.Date.Time, day.Theme, day.EstimatedCost, day.PacingScore,
		).Scan(&dayID)
		if err != nil {
			return fmt.Errorf("failed to insert day %d: %w", day.DayNumber, err)
		}

		for _, item := range day.Items {
			_, err = tx.Exec(ctx, `
                INSERT INTO itinerary_items (
                    itinerary_day_id, poi_id, sequence_order, start_time, end_time, duration_minutes,
                    selection_reason, persona_match_score, travel_time_from_previous, travel_mode
                ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
				dayID, item.POI.ID, item.SequenceOrder, item.StartTime.String(), item.EndTime.String(),
				item.DurationMinutes, item.SelectionReason, item.PersonaMatchScore,
				item.TravelTimeMinutes, item.TravelMode,
			)
			if err != nil {
				return fmt.Errorf("failed to insert item %d of day %d: %w", item.SequenceOrder, day.DayNumber, err)
			}
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit itinerary: %w", err)
	}

	l.InfoContext(ctx, "Itinerary saved", slog.String("itinerary_id", it.ID.String()))
	span.SetAttributes(attribute.String("itinerary.id", it.ID.String()))
	span.SetStatus(codes.Ok, "Itinerary saved")
	return nil
}

func (r *RepositoryImpl) Get(ctx context.Context, itineraryID uuid.UUID) (*types.Itinerary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Get", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Get"), slog.String("itinerary_id", itineraryID.String()))
	start := time.Now()

	it := types.Itinerary{ID: itineraryID}
	var request []byte
	err := r.pgpool.QueryRow(ctx, `
        SELECT i.trip_request_id, i.total_estimated_cost, i.generation_method, i.created_at, t.request
        FROM itineraries i
        JOIN trip_requests t ON t.id = i.trip_request_id
        WHERE i.id = $1`, itineraryID,
	).Scan(&it.TripRequestID, &it.TotalEstimatedCost, &it.GenerationMethod, &it.CreatedAt, &request)
	if errors.Is(err, pgx.ErrNoRows) {
		r.observe(ctx, "get_itinerary", start, nil)
		l.WarnContext(ctx, "Itinerary not found")
		span.SetStatus(codes.Error, "Itinerary not found")
		return nil, fmt.Errorf("itinerary %s: %w", itineraryID, types.ErrNotFound)
	}
	if err != nil {
		r.observe(ctx, "get_itinerary", start, err)
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}
	if err := json.Unmarshal(request, &it.Trip); err != nil {
		r.observe(ctx, "get_itinerary", start, err)
		span.RecordError(err)
		return nil, fmt.Errorf("failed to decode trip request: %w", err)
	}

	days, err := r.loadDays(ctx, itineraryID)
	r.observe(ctx, "get_itinerary", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to load itinerary days", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, err
	}
	it.Days = days

	span.SetStatus(codes.Ok, "Itinerary fetched")
	return &it, nil
}

func (r *RepositoryImpl) loadDays(ctx context.Context, itineraryID uuid.UUID) ([]types.DayPlan, error) {
	rows, err := r.pgpool.Query(ctx, `
        SELECT id, day_number, date, theme, estimated_cost, pacing_score
        FROM itinerary_days
        WHERE itinerary_id = $1
        ORDER BY day_number`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary days: %w", err)
	}
	defer rows.Close()

	var days []types.DayPlan
	index := make(map[uuid.UUID]int)
	for rows.Next() {
		var (
			id    uuid.UUID
			day   types.DayPlan
			date  time.Time
			theme *string
		)
		if err := rows.Scan(&id, &day.DayNumber, &date, &theme, &day.EstimatedCost, &day.PacingScore); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary day: %w", err)
		}
		day.Date = types.Date{Time: date}
		if theme != nil {
			day.Theme = *theme
		}
		day.Items = []types.PlannedItem{}
		index[id] = len(days)
		days = append(days, day)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary days: %w", err)
	}

	itemRows, err := r.pgpool.Query(ctx, `
        SELECT it.itinerary_day_id, it.sequence_order, it.start_time, it.end_time, it.duration_minutes,
               it.selection_reason, it.persona_match_score, it.travel_time_from_previous, it.travel_mode,
               p.id, p.name, p.category, p.subcategory, p.neighborhood, p.latitude, p.longitude,
               p.avg_cost_per_person
        FROM itinerary_items it
        JOIN itinerary_days d ON d.id = it.itinerary_day_id
        LEFT JOIN pois p ON p.id = it.poi_id
        WHERE d.itinerary_id = $1
        ORDER BY d.day_number, it.sequence_order`, itineraryID)
	if err != nil {
		return nil, fmt.Errorf("failed to query itinerary items: %w", err)
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var (
			dayID                                uuid.UUID
			item                                 types.PlannedItem
			startTime, endTime                   string
			reason, mode                         *string
			score                                *float64
			poiID                                *uuid.UUID
			name, category, subcategory, quarter *string
		)
		if err := itemRows.Scan(
			&dayID, &item.SequenceOrder, &startTime, &endTime, &item.DurationMinutes,
			&reason, &score, &item.TravelTimeMinutes, &mode,
			&poiID, &name, &category, &subcategory, &quarter, &item.POI.Latitude, &item.POI.Longitude,
			&item.POI.AvgCostPerPerson,
		); err != nil {
			return nil, fmt.Errorf("failed to scan itinerary item: %w", err)
		}
		if err := item.StartTime.UnmarshalText([]byte(startTime)); err != nil {
			return nil, err
		}
		if err := item.EndTime.UnmarshalText([]byte(endTime)); err != nil {
			return nil, err
		}
		item.SelectionReason = deref(reason)
		item.TravelMode = deref(mode)
		if score != nil {
			item.PersonaMatchScore = *score
		}
		if poiID != nil {
			item.POI.ID = *poiID
		}
		item.POI.Name = deref(name)
		item.POI.Category = deref(category)
		item.POI.Subcategory = deref(subcategory)
		item.POI.Neighborhood = deref(quarter)

		if i, ok := index[dayID]; ok {
			days[i].Items = append(days[i].Items, item)
		}
	}
	if err := itemRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating itinerary items: %w", err)
	}
	return days, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func (r *RepositoryImpl) List(ctx context.Context, limit, offset int) ([]types.ItinerarySummary, error) {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "List", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "SELECT"),
		attribute.Int("limit", limit),
		attribute.Int("offset", offset),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "List"))
	start := time.Now()

	rows, err := r.pgpool.Query(ctx, `
        SELECT i.id, t.destination_city, t.start_date, t.end_date, t.group_type, i.created_at
        FROM itineraries i
        JOIN trip_requests t ON t.id = i.trip_request_id
        ORDER BY i.created_at DESC
        LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		r.observe(ctx, "list_itineraries", start, err)
		l.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database query failed")
		return nil, fmt.Errorf("failed to list itineraries: %w", err)
	}
	defer rows.Close()

	summaries := []types.ItinerarySummary{}
	for rows.Next() {
		var (
			s            types.ItinerarySummary
			startD, endD time.Time
			group        string
		)
		if err := rows.Scan(&s.ID, &s.DestinationCity, &startD, &endD, &group, &s.CreatedAt); err != nil {
			r.observe(ctx, "list_itineraries", start, err)
			span.RecordError(err)
			return nil, fmt.Errorf("failed to scan itinerary summary: %w", err)
		}
		s.StartDate = types.Date{Time: startD}
		s.EndDate = types.Date{Time: endD}
		s.GroupType = types.GroupType(group)
		s.NumDays = types.TripRequest{StartDate: s.StartDate, EndDate: s.EndDate}.NumDays()
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		r.observe(ctx, "list_itineraries", start, err)
		span.RecordError(err)
		return nil, fmt.Errorf("error iterating itineraries: %w", err)
	}
	r.observe(ctx, "list_itineraries", start, nil)

	span.SetAttributes(attribute.Int("results.count", len(summaries)))
	span.SetStatus(codes.Ok, "Itineraries listed")
	return summaries, nil
}

// Delete removes an itinerary and, through cascading keys, its trip request,
// days and items.
func (r *RepositoryImpl) Delete(ctx context.Context, itineraryID uuid.UUID) error {
	ctx, span := otel.Tracer("ItineraryRepository").Start(ctx, "Delete", trace.WithAttributes(
		semconv.DBSystemPostgreSQL,
		attribute.String("db.operation", "DELETE"),
		attribute.String("itinerary.id", itineraryID.String()),
	))
	defer span.End()

	l := r.logger.With(slog.String("method", "Delete"), slog.String("itinerary_id", itineraryID.String()))
	start := time.Now()

	tag, err := r.pgpool.Exec(ctx, `
        DELETE FROM trip_requests
        WHERE id = (SELECT trip_request_id FROM itineraries WHERE id = $1)`, itineraryID)
	r.observe(ctx, "delete_itinerary", start, err)
	if err != nil {
		l.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Database delete failed")
		return fmt.Errorf("failed to delete itinerary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		span.SetStatus(codes.Error, "Itinerary not found")
		return fmt.Errorf("itinerary %s: %w", itineraryID, types.ErrNotFound)
	}

	l.InfoContext(ctx, "Itinerary deleted")
	span.SetStatus(codes.Ok, "Itinerary deleted")
	return nil
}
