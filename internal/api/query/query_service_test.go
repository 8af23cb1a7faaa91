package query

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

func setupQueryServiceTest() (*ServiceImpl, *MockPOIStore, *MockEmbedder) {
	searcher, store, embedder := setupSearcherTest()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewServiceImpl(NewParser(), searcher, Options{DefaultLimit: 5, MaxLimit: 10, CacheTTL: time.Minute}, logger)
	return service, store, embedder
}

func TestQueryServiceImpl_Search(t *testing.T) {
	ctx := context.Background()

	t.Run("parse, search and enrich", func(t *testing.T) {
		service, store, embedder := setupQueryServiceTest()
		match := types.CandidatePOI{
			POI: types.POI{
				ID: uuid.New(), Name: "Da Enzo", Category: "restaurant", Neighborhood: "Trastevere",
				PersonaScores: &types.PersonaScores{Romantic: f64(0.85)},
			},
			Similarity: 0.7,
		}
		embedder.On("Embed", mock.Anything, "romantic restaurant in rome").Return(testVector, nil).Once()
		store.On("SearchSimilar", mock.Anything, poi.SearchFilter{City: "Rome", Category: "restaurant"}, testVector, 15).
			Return([]types.CandidatePOI{match}, nil).Once()

		resp, err := service.Search(ctx, types.NLQueryRequest{Query: "romantic restaurant in rome"})
		require.NoError(t, err)
		assert.Equal(t, "Rome", resp.ParsedIntent.City)
		require.Equal(t, 1, resp.Total)
		assert.Equal(t, []string{
			"Excellent romantic match (85%)",
			"Matches restaurant search",
			"In Trastevere",
		}, resp.Results[0].MatchReasons)
		assert.Equal(t, []types.Vibe{types.VibeRomantic}, resp.Results[0].MatchedVibes)
	})

	t.Run("repeated query is served from cache", func(t *testing.T) {
		service, store, embedder := setupQueryServiceTest()
		embedder.On("Embed", mock.Anything, mock.Anything).Return(testVector, nil).Once()
		store.On("SearchSimilar", mock.Anything, mock.Anything, testVector, 15).Return(candidates(2, 0.5), nil).Once()

		first, err := service.Search(ctx, types.NLQueryRequest{Query: "Gelato"})
		require.NoError(t, err)
		second, err := service.Search(ctx, types.NLQueryRequest{Query: "  gelato "})
		require.NoError(t, err)

		assert.Same(t, first, second)
		store.AssertNumberOfCalls(t, "SearchSimilar", 1)
	})

	t.Run("limit is clamped to the maximum", func(t *testing.T) {
		service, store, embedder := setupQueryServiceTest()
		embedder.On("Embed", mock.Anything, mock.Anything).Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, mock.Anything, testVector, 30).Return(candidates(1, 0.5), nil).Once()

		_, err := service.Search(ctx, types.NLQueryRequest{Query: "gelato", Limit: 500})
		require.NoError(t, err)
		store.AssertExpectations(t)
	})

	t.Run("empty query is invalid", func(t *testing.T) {
		service, store, _ := setupQueryServiceTest()
		_, err := service.Search(ctx, types.NLQueryRequest{Query: "   "})
		assert.ErrorIs(t, err, types.ErrInvalidRequest)
		store.AssertNotCalled(t, "SearchSimilar", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure is wrapped", func(t *testing.T) {
		service, store, embedder := setupQueryServiceTest()
		embedder.On("Embed", mock.Anything, mock.Anything).Return(testVector, nil)
		store.On("SearchSimilar", mock.Anything, mock.Anything, testVector, 15).Return(nil, errors.New("db down"))

		_, err := service.Search(ctx, types.NLQueryRequest{Query: "bars"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to search POIs")
	})
}

func TestEnrich(t *testing.T) {
	q := types.ParsedQuery{
		Vibes:       []types.Vibe{types.VibeCultural, types.VibeNightlife, types.VibeFoodie},
		GroupType:   types.GroupFamily,
		Attributes:  []types.AttributeFlag{types.AttrHiddenGem, types.AttrKidFriendly},
		NearPOIName: "pantheon",
	}
	yes := true
	r := types.SearchResult{
		POI: types.POI{
			PersonaScores: &types.PersonaScores{Cultural: f64(0.9), Nightlife: f64(0.65), Foodie: f64(0.2), Family: f64(0.75)},
			Attributes:    &types.Attributes{IsHiddenGem: true, IsKidFriendly: &yes, IsMustSee: true},
		},
		ProximityScore: 0.8,
	}

	out := Enrich([]types.SearchResult{r}, q)
	require.Len(t, out, 1)
	assert.Equal(t, []string{
		"Excellent cultural match (90%)",
		"Good nightlife match (65%)",
		"Great for family",
		"Hidden gem",
		"Must-see attraction",
		"Kid-friendly",
		"Close to pantheon",
	}, out[0].MatchReasons)
	assert.Equal(t, []types.Vibe{types.VibeCultural, types.VibeNightlife}, out[0].MatchedVibes)
	assert.Equal(t, []types.AttributeFlag{types.AttrHiddenGem, types.AttrKidFriendly}, out[0].MatchedAttributes)

	bare := Enrich([]types.SearchResult{{}}, types.ParsedQuery{})
	assert.Equal(t, []string{"Semantically similar to your search"}, bare[0].MatchReasons)
	assert.Empty(t, bare[0].MatchedVibes)
}

type MockQueryService struct {
	mock.Mock
}

func (m *MockQueryService) Parse(ctx context.Context, query string) (types.ParsedQuery, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(types.ParsedQuery), args.Error(1)
}

func (m *MockQueryService) Search(ctx context.Context, req types.NLQueryRequest) (*types.NLQueryResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.NLQueryResponse), args.Error(1)
}

func newQueryRouter(svc Service) http.Handler {
	h := NewHandlerImpl(svc, slog.New(slog.NewTextHandler(io.Discard, nil)))
	r := chi.NewRouter()
	r.Post("/search", h.Search)
	r.Post("/parse", h.Parse)
	return r
}

func TestQueryHandler(t *testing.T) {
	t.Run("search ok", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Search", mock.Anything, types.NLQueryRequest{Query: "bars in rome", Limit: 3}).
			Return(&types.NLQueryResponse{Query: "bars in rome", Results: []types.EnrichedResult{}}, nil)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"bars in rome","limit":3}`))
		newQueryRouter(svc).ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"query":"bars in rome"`)
	})

	t.Run("invalid request maps to 400", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Search", mock.Anything, mock.Anything).Return(nil, types.ErrInvalidRequest)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":""}`))
		newQueryRouter(svc).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown field is rejected", func(t *testing.T) {
		svc := new(MockQueryService)
		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"q":"x"}`))
		newQueryRouter(svc).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		svc.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
	})

	t.Run("backend failure maps to 500", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Search", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{"query":"x"}`))
		newQueryRouter(svc).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})

	t.Run("parse", func(t *testing.T) {
		svc := new(MockQueryService)
		svc.On("Parse", mock.Anything, "museums in paris").Return(types.ParsedQuery{City: "Paris"}, nil)

		rr := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/parse", strings.NewReader(`{"query":"museums in paris"}`))
		newQueryRouter(svc).ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"city":"Paris"`)
	})
}
