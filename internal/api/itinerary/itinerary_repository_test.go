package itinerary

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

func setupRepositoryTest(t *testing.T) (*RepositoryImpl, pgxmock.PgxPoolIface) {
	t.Helper()
	pool, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRepository(pool, slog.New(slog.NewTextHandler(io.Discard, nil))), pool
}

func sampleItinerary() *types.Itinerary {
	trip := tripDays(types.PacingModerate, types.GroupCouple, 1)
	return &types.Itinerary{
		Trip:               trip,
		TotalEstimatedCost: 35.5,
		GenerationMethod:   GenerationMethod,
		Days: []types.DayPlan{{
			DayNumber:     1,
			Date:          trip.StartDate,
			Theme:         "History & Heritage Day",
			EstimatedCost: 35.5,
			PacingScore:   0.2,
			Items: []types.PlannedItem{{
				POI:               types.POI{ID: uuid.New(), Name: "Colosseum"},
				StartTime:         types.Clock(9, 0),
				EndTime:           types.Clock(10, 48),
				DurationMinutes:   108,
				SequenceOrder:     1,
				TravelMode:        "walk",
				SelectionReason:   "Must-see attraction",
				PersonaMatchScore: 0.91,
			}},
		}},
	}
}

func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestRepositoryImpl_Save(t *testing.T) {
	ctx := context.Background()

	t.Run("writes every row in one transaction", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		it := sampleItinerary()
		tripID, itineraryID, dayID := uuid.New(), uuid.New(), uuid.New()
		created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)

		pool.ExpectBegin()
		pool.ExpectQuery(`INSERT INTO trip_requests`).
			WithArgs("Rome", pgxmock.AnyArg(), pgxmock.AnyArg(), "couple", 3, "moderate", pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tripID))
		pool.ExpectQuery(`INSERT INTO itineraries`).
			WithArgs(tripID, 35.5, "rag_v1").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(itineraryID, created))
		pool.ExpectQuery(`INSERT INTO itinerary_days`).
			WithArgs(itineraryID, 1, pgxmock.AnyArg(), "History & Heritage Day", 35.5, 0.2).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(dayID))
		pool.ExpectExec(`INSERT INTO itinerary_items`).
			WithArgs(dayID, it.Days[0].Items[0].POI.ID, 1, "09:00", "10:48", 108, "Must-see attraction", 0.91, 0, "walk").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		pool.ExpectCommit()

		require.NoError(t, repo.Save(ctx, it))
		assert.Equal(t, itineraryID, it.ID)
		assert.Equal(t, tripID, it.TripRequestID)
		assert.Equal(t, created, it.CreatedAt)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("failed item insert rolls back", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		it := sampleItinerary()

		pool.ExpectBegin()
		tripID, itineraryID, dayID := uuid.New(), uuid.New(), uuid.New()
		pool.ExpectQuery(`INSERT INTO trip_requests`).
			WithArgs(anyArgs(7)...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(tripID))
		pool.ExpectQuery(`INSERT INTO itineraries`).
			WithArgs(tripID, pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(itineraryID, time.Now()))
		pool.ExpectQuery(`INSERT INTO itinerary_days`).
			WithArgs(append([]any{itineraryID}, anyArgs(5)...)...).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(dayID))
		pool.ExpectExec(`INSERT INTO itinerary_items`).
			WithArgs(append([]any{dayID}, anyArgs(9)...)...).
			WillReturnError(errors.New("fk violation"))
		pool.ExpectRollback()

		err := repo.Save(ctx, it)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to insert item 1 of day 1")
		require.NoError(t, pool.ExpectationsWereMet())
	})
}

func TestRepositoryImpl_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("loads trip, days and items", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		id, tripID, dayID, poiID := uuid.New(), uuid.New(), uuid.New(), uuid.New()
		created := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
		request := []byte(`{"destination_city":"Rome","start_date":"2025-05-01","end_date":"2025-05-02",` +
			`"group_type":"couple","vibes":["cultural"],"budget_level":3,"pacing":"slow"}`)

		pool.ExpectQuery(`SELECT .+ FROM itineraries i JOIN trip_requests t .+ WHERE i.id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"trip_request_id", "total_estimated_cost", "generation_method", "created_at", "request"}).
				AddRow(tripID, 18.0, "rag_v1", created, request))
		pool.ExpectQuery(`FROM itinerary_days WHERE itinerary_id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{"id", "day_number", "date", "theme", "estimated_cost", "pacing_score"}).
				AddRow(dayID, 1, time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), strPtr("Sightseeing Day"), 18.0, 0.33).
				AddRow(uuid.New(), 2, time.Date(2025, 5, 2, 0, 0, 0, 0, time.UTC), strPtr("Free Day"), 0.0, 0.0))
		pool.ExpectQuery(`FROM itinerary_items it .+ WHERE d.itinerary_id = \$1`).
			WithArgs(id).
			WillReturnRows(pgxmock.NewRows([]string{
				"itinerary_day_id", "sequence_order", "start_time", "end_time", "duration_minutes",
				"selection_reason", "persona_match_score", "travel_time_from_previous", "travel_mode",
				"id", "name", "category", "subcategory", "neighborhood", "latitude", "longitude", "avg_cost_per_person",
			}).AddRow(
				dayID, 1, "09:00", "11:00", 120,
				strPtr("Must-see attraction"), f64(0.91), 0, strPtr("walk"),
				&poiID, strPtr("Colosseum"), strPtr("attraction"), strPtr("monument"), strPtr("Monti"),
				f64(41.8902), f64(12.4922), f64(18.0),
			))

		it, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, tripID, it.TripRequestID)
		assert.Equal(t, "Rome", it.Trip.DestinationCity)
		assert.Equal(t, types.PacingSlow, it.Trip.Pacing)
		require.Len(t, it.Days, 2)
		assert.Equal(t, "2025-05-01", it.Days[0].Date.String())
		require.Len(t, it.Days[0].Items, 1)
		item := it.Days[0].Items[0]
		assert.Equal(t, poiID, item.POI.ID)
		assert.Equal(t, "Colosseum", item.POI.Name)
		assert.Equal(t, types.Clock(11, 0), item.EndTime)
		assert.Equal(t, 0.91, item.PersonaMatchScore)
		assert.Empty(t, it.Days[1].Items)
		require.NoError(t, pool.ExpectationsWereMet())
	})

	t.Run("missing itinerary maps to not found", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		id := uuid.New()
		pool.ExpectQuery(`FROM itineraries i`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

		_, err := repo.Get(ctx, id)
		assert.ErrorIs(t, err, types.ErrNotFound)
	})
}

func TestRepositoryImpl_List(t *testing.T) {
	repo, pool := setupRepositoryTest(t)
	id := uuid.New()
	created := time.Now().UTC()

	pool.ExpectQuery(`ORDER BY i.created_at DESC LIMIT \$1 OFFSET \$2`).
		WithArgs(10, 20).
		WillReturnRows(pgxmock.NewRows([]string{"id", "destination_city", "start_date", "end_date", "group_type", "created_at"}).
			AddRow(id, "Rome", time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), "family", created))

	out, err := repo.List(context.Background(), 10, 20)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, id, out[0].ID)
	assert.Equal(t, types.GroupFamily, out[0].GroupType)
	assert.Equal(t, 3, out[0].NumDays)
	require.NoError(t, pool.ExpectationsWereMet())
}

func TestRepositoryImpl_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("deleted", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		id := uuid.New()
		pool.ExpectExec(`DELETE FROM trip_requests`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 1))
		require.NoError(t, repo.Delete(ctx, id))
	})

	t.Run("unknown id", func(t *testing.T) {
		repo, pool := setupRepositoryTest(t)
		id := uuid.New()
		pool.ExpectExec(`DELETE FROM trip_requests`).WithArgs(id).WillReturnResult(pgxmock.NewResult("DELETE", 0))
		assert.ErrorIs(t, repo.Delete(ctx, id), types.ErrNotFound)
	})
}
