package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

type MockPOIStore struct {
	mock.Mock
}

func (m *MockPOIStore) SearchSimilar(ctx context.Context, filter poi.SearchFilter, queryEmbedding []float32, limit int) ([]types.CandidatePOI, error) {
	args := m.Called(ctx, filter, queryEmbedding, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.CandidatePOI), args.Error(1)
}

func (m *MockPOIStore) FindAnchorByName(ctx context.Context, name string) (*types.Coordinates, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Coordinates), args.Error(1)
}

type MockEmbedder struct {
	mock.Mock
}

func (m *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]float32), args.Error(1)
}

func (m *MockEmbedder) Dimensions() int { return 2 }

var testVector = []float32{0.6, 0.8}

func f64(v float64) *float64 { return &v }

func candidates(n int, similarity float64) []types.CandidatePOI {
	out := make([]types.CandidatePOI, n)
	for i := range out {
		out[i] = types.CandidatePOI{POI: types.POI{ID: uuid.New(), Name: "POI"}, Similarity: similarity}
	}
	return out
}

func setupSearcherTest() (*Searcher, *MockPOIStore, *MockEmbedder) {
	store := new(MockPOIStore)
	embedder := new(MockEmbedder)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSearcher(store, embedder, 0, 0, logger), store, embedder
}

func TestSearcher_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("weighted re-ranking", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{
			RawQuery:  "romantic spot for couples in rome",
			City:      "Rome",
			Vibes:     []types.Vibe{types.VibeRomantic},
			GroupType: types.GroupCouple,
		}
		strong := types.CandidatePOI{
			POI: types.POI{ID: uuid.New(), Name: "Trastevere Terrace", PersonaScores: &types.PersonaScores{
				Couple: f64(0.9), Romantic: f64(0.8),
			}},
			Similarity: 0.8,
		}
		weak := types.CandidatePOI{POI: types.POI{ID: uuid.New(), Name: "Bus Depot"}, Similarity: 0.9}

		embedder.On("Embed", mock.Anything, q.RawQuery).Return(testVector, nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome"}, testVector, 30).
			Return([]types.CandidatePOI{weak, strong}, nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)

		assert.Equal(t, strong.POI.ID, results[0].POI.ID)
		assert.InDelta(t, 0.85, results[0].PersonaScore, 1e-9)
		assert.InDelta(t, 0.5, results[0].AttributeScore, 1e-9)
		assert.InDelta(t, 0.5, results[0].ProximityScore, 1e-9)
		assert.InDelta(t, 0.7425, results[0].FinalScore, 1e-4)

		// No persona row: neutral 0.5 persona boost.
		assert.InDelta(t, 0.5, results[1].PersonaScore, 1e-9)
		assert.InDelta(t, 0.9*0.4+0.5*0.35+0.5*0.15+0.5*0.1, results[1].FinalScore, 1e-4)
		store.AssertNotCalled(t, "FindAnchorByName", mock.Anything, mock.Anything)
	})

	t.Run("results are truncated to limit", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "museums", SemanticQuery: "museums"}
		embedder.On("Embed", mock.Anything, "museums").Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{}, testVector, 6).Return(candidates(6, 0.7), nil)

		results, err := searcher.Search(ctx, q, 2)
		require.NoError(t, err)
		assert.Len(t, results, 2)
	})

	t.Run("non-positive limit uses the default", func(t *testing.T) {
		for _, limit := range []int{0, -1} {
			searcher, store, embedder := setupSearcherTest()
			q := types.ParsedQuery{RawQuery: "museums", SemanticQuery: "museums"}
			embedder.On("Embed", mock.Anything, "museums").Return(testVector, nil)
			store.On("SearchSimilar", mock.Anything, poi.SearchFilter{}, testVector, DefaultLimit*DefaultOverfetchFactor).
				Return(candidates(5, 0.7), nil).Once()

			results, err := searcher.Search(ctx, q, limit)
			require.NoError(t, err)
			assert.Len(t, results, 5)
			store.AssertExpectations(t)
		}
	})

	t.Run("sparse strict results fall back to city and category", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "cheap cafe in rome", City: "Rome", Category: "restaurant", Subcategory: "cafe", CostLevel: 1}
		strict := poi.SearchFilter{City: "Rome", Category: "restaurant", Subcategory: "cafe", MaxCostLevel: 1}

		embedder.On("Embed", mock.Anything, q.RawQuery).Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, strict, testVector, 30).Return(candidates(1, 0.9), nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant"}, testVector, 30).
			Return(candidates(4, 0.6), nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Len(t, results, 4)
		store.AssertNumberOfCalls(t, "SearchSimilar", 2)
	})

	t.Run("second relaxation keeps only the city", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "q", City: "Rome", Category: "restaurant", TimeOfDay: "morning"}

		embedder.On("Embed", mock.Anything, "q").Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant", TimeOfDay: "morning"}, testVector, 30).
			Return([]types.CandidatePOI{}, nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant"}, testVector, 30).
			Return(candidates(2, 0.6), nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome"}, testVector, 30).
			Return(candidates(5, 0.5), nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Len(t, results, 5)
	})

	t.Run("original rows kept when relaxation stays sparse", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "q", City: "Rome", Category: "restaurant", Subcategory: "bar"}
		original := candidates(1, 0.9)

		embedder.On("Embed", mock.Anything, "q").Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant", Subcategory: "bar"}, testVector, 30).
			Return(original, nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant"}, testVector, 30).
			Return(candidates(2, 0.5), nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome"}, testVector, 30).
			Return(candidates(2, 0.5), nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, original[0].POI.ID, results[0].POI.ID)
	})

	t.Run("single restrictive filter does not relax", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "q", City: "Rome", Category: "restaurant"}

		embedder.On("Embed", mock.Anything, "q").Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant"}, testVector, 30).
			Return(candidates(1, 0.9), nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		assert.Len(t, results, 1)
		store.AssertNumberOfCalls(t, "SearchSimilar", 1)
	})

	t.Run("proximity to a resolved anchor", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		q := types.ParsedQuery{RawQuery: "gelato near trevi fountain", NearPOIName: "trevi fountain"}
		anchor := &types.Coordinates{Latitude: 41.9009, Longitude: 12.4833}
		near := types.CandidatePOI{POI: types.POI{ID: uuid.New(), Latitude: f64(41.9012), Longitude: f64(12.4836)}, Similarity: 0.5}
		far := types.CandidatePOI{POI: types.POI{ID: uuid.New(), Latitude: f64(41.8902), Longitude: f64(12.4922)}, Similarity: 0.5}
		unknown := types.CandidatePOI{POI: types.POI{ID: uuid.New()}, Similarity: 0.5}

		embedder.On("Embed", mock.Anything, q.RawQuery).Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{}, testVector, 30).
			Return([]types.CandidatePOI{unknown, far, near}, nil)
		store.On("FindAnchorByName", mock.Anything, "trevi fountain").Return(anchor, nil).Once()

		results, err := searcher.Search(ctx, q, 10)
		require.NoError(t, err)
		require.Len(t, results, 3)
		assert.Equal(t, near.POI.ID, results[0].POI.ID)
		assert.InDelta(t, 1.0, results[0].ProximityScore, 1e-9)
		assert.InDelta(t, 0.6, results[1].ProximityScore, 1e-9)
		assert.InDelta(t, 0.3, results[2].ProximityScore, 1e-9)
	})

	t.Run("embedding failure propagates", func(t *testing.T) {
		searcher, store, embedder := setupSearcherTest()
		embedder.On("Embed", mock.Anything, "q").Return(nil, errors.New("provider down"))

		_, err := searcher.Search(ctx, types.ParsedQuery{RawQuery: "q"}, 10)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider down")
		store.AssertNotCalled(t, "SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestScoreComponentsStayInUnitRange(t *testing.T) {
	full := types.POI{
		PersonaScores: &types.PersonaScores{Family: f64(1), Romantic: f64(1), Foodie: f64(0)},
		Attributes:    &types.Attributes{IsHiddenGem: true, IsMustSee: true},
		Latitude:      f64(0), Longitude: f64(0),
	}
	queries := []types.ParsedQuery{
		{},
		{Vibes: []types.Vibe{types.VibeRomantic, types.VibeFoodie}, GroupType: types.GroupFamily},
		{Attributes: []types.AttributeFlag{types.AttrHiddenGem, types.AttrMustSee}},
		{Attributes: []types.AttributeFlag{types.AttrKidFriendly}},
	}
	anchors := []*types.Coordinates{nil, {Latitude: 0, Longitude: 0}, {Latitude: 10, Longitude: 10}}

	for _, q := range queries {
		for _, a := range anchors {
			for _, sim := range []float64{-0.2, 0, 0.5, 1, 1.3} {
				r := rank(types.CandidatePOI{POI: full, Similarity: sim}, q, a)
				for _, v := range []float64{r.FinalScore, r.VectorScore, r.PersonaScore, r.AttributeScore, r.ProximityScore} {
					assert.GreaterOrEqual(t, v, 0.0)
					assert.LessOrEqual(t, v, 1.0)
				}
			}
		}
	}
}

func TestAttributeBoost(t *testing.T) {
	p := types.POI{Attributes: &types.Attributes{IsHiddenGem: true}}
	q := types.ParsedQuery{Attributes: []types.AttributeFlag{types.AttrHiddenGem, types.AttrInstagramWorthy}}
	assert.InDelta(t, 0.75, attributeBoost(p, q), 1e-9)
	assert.InDelta(t, 0.5, attributeBoost(types.POI{}, q), 1e-9)
}

func TestPersonaBoost_UnsetScoresAreNeutral(t *testing.T) {
	q := types.ParsedQuery{Vibes: []types.Vibe{types.VibeRomantic}, GroupType: types.GroupCouple}

	partial := types.POI{PersonaScores: &types.PersonaScores{Romantic: f64(0.9)}}
	assert.InDelta(t, 0.7, personaBoost(partial, q), 1e-9)

	full := types.POI{PersonaScores: &types.PersonaScores{Romantic: f64(0.9), Couple: f64(0.9)}}
	assert.InDelta(t, 0.9, personaBoost(full, q), 1e-9)

	assert.Equal(t, neutralScore, personaBoost(types.POI{}, q))
	assert.Equal(t, neutralScore, personaBoost(partial, types.ParsedQuery{}))
}
