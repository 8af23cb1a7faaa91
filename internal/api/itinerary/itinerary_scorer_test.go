package itinerary

import (
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

func f64(v float64) *float64 { return &v }
func intPtr(v int) *int      { return &v }
func boolPtr(v bool) *bool   { return &v }
func strPtr(v string) *string {
	return &v
}

func tripOn(month time.Month) types.TripRequest {
	return types.TripRequest{
		DestinationCity: "Rome",
		StartDate:       types.NewDate(2025, month, 10),
		EndDate:         types.NewDate(2025, month, 10),
		GroupType:       types.GroupCouple,
		Vibes:           []types.Vibe{types.VibeCultural},
		BudgetLevel:     3,
	}
}

func TestScorer_MustSeeComposite(t *testing.T) {
	scorer := NewScorer(DefaultMustSeeBoost)
	trip := tripOn(time.April)
	p := types.POI{
		ID:       uuid.New(),
		Name:     "Pantheon",
		Category: types.CategoryAttraction,
		PersonaScores: &types.PersonaScores{
			Couple:   f64(0.9),
			Cultural: f64(0.8),
			Spring:   f64(0.8),
		},
		Attributes: &types.Attributes{IsMustSee: true},
	}

	t.Run("boost is added after the weighted sum", func(t *testing.T) {
		out := scorer.ScoreCandidates([]types.CandidatePOI{{POI: p, Similarity: 0.5}}, trip)
		require.Len(t, out, 1)
		s := out[0]
		assert.InDelta(t, 0.9, s.GroupScore, 1e-9)
		assert.InDelta(t, 0.8, s.VibeScore, 1e-9)
		assert.InDelta(t, 1.0, s.PracticalScore, 1e-9)
		assert.InDelta(t, 0.8, s.SeasonScore, 1e-9)
		assert.InDelta(t, 0.73+0.15*0.5+0.15, s.FinalScore, 1e-9)
		assert.True(t, s.IsMustSee)
		assert.Equal(t, "Excellent match for couple travelers; Strong cultural vibes; Great choice in spring; Must-see attraction", s.Reason)
	})

	t.Run("boosted total is clamped to one", func(t *testing.T) {
		out := scorer.ScoreCandidates([]types.CandidatePOI{{POI: p, Similarity: 1.0}}, trip)
		assert.Equal(t, 1.0, out[0].FinalScore)
	})
}

func TestScorer_NeutralDefaults(t *testing.T) {
	out := NewScorer(0).ScoreCandidates([]types.CandidatePOI{{POI: types.POI{ID: uuid.New()}}}, tripOn(time.April))
	s := out[0]
	assert.Equal(t, 0.5, s.GroupScore)
	assert.Equal(t, 0.5, s.VibeScore)
	assert.Equal(t, 0.5, s.PracticalScore)
	assert.Equal(t, 0.7, s.SeasonScore)
	assert.InDelta(t, 0.455, s.FinalScore, 1e-9)
	assert.Equal(t, "Great choice in spring", s.Reason)

	t.Run("fallback reason when nothing stands out", func(t *testing.T) {
		p := types.POI{ID: uuid.New(), PersonaScores: &types.PersonaScores{Spring: f64(0.5)}}
		out := NewScorer(0).ScoreCandidates([]types.CandidatePOI{{POI: p}}, tripOn(time.April))
		assert.Equal(t, 0.5, out[0].SeasonScore)
		assert.Equal(t, "Matches your couple travel style", out[0].Reason)
	})
}

func TestScorer_PartialScoreRow(t *testing.T) {
	trip := tripOn(time.April)
	trip.Vibes = []types.Vibe{types.VibeCultural, types.VibeRomantic}
	p := types.POI{ID: uuid.New(), PersonaScores: &types.PersonaScores{Cultural: f64(0.9)}}

	s := NewScorer(0).ScoreCandidates([]types.CandidatePOI{{POI: p}}, trip)[0]
	assert.Equal(t, 0.5, s.GroupScore)
	assert.InDelta(t, 0.7, s.VibeScore, 1e-9)
	assert.Equal(t, 0.7, s.SeasonScore)
	assert.Equal(t, "Strong cultural vibes; Great choice in spring", s.Reason)
}

func TestScorer_OrdersByFinalScore(t *testing.T) {
	low := types.CandidatePOI{POI: types.POI{ID: uuid.New(), PersonaScores: &types.PersonaScores{Couple: f64(0.1)}}, Similarity: 0.9}
	high := types.CandidatePOI{POI: types.POI{ID: uuid.New(), PersonaScores: &types.PersonaScores{Couple: f64(0.95)}}, Similarity: 0.2}

	out := NewScorer(0).ScoreCandidates([]types.CandidatePOI{low, high}, tripOn(time.April))
	assert.Equal(t, high.POI.ID, out[0].POI.ID)
	assert.Equal(t, low.POI.ID, out[1].POI.ID)
}

func TestPracticalScore(t *testing.T) {
	trip := tripOn(time.April)
	trip.HasKids = true
	trip.HasSeniors = true
	trip.MobilityConstraints = []string{"wheelchair"}

	strict := &types.Attributes{
		IsKidFriendly:          boolPtr(false),
		IsWheelchairAccessible: boolPtr(false),
		PhysicalIntensity:      intPtr(4),
	}
	assert.InDelta(t, 0.1, practicalScore(strict, trip), 1e-9)

	unknown := &types.Attributes{}
	assert.Equal(t, 1.0, practicalScore(unknown, trip))
	assert.Equal(t, 0.5, practicalScore(nil, trip))
}

func TestSeasonScore(t *testing.T) {
	t.Run("peak summer penalties stack", func(t *testing.T) {
		trip := tripOn(time.August)
		trip.AvoidHeat = true
		p := types.POI{Attributes: &types.Attributes{IsOutdoor: true, HeatSensitive: true}}
		assert.InDelta(t, 0.25, seasonScore(p, trip), 1e-9)
	})

	t.Run("winter indoor with preference", func(t *testing.T) {
		trip := tripOn(time.January)
		trip.PreferIndoor = true
		p := types.POI{Attributes: &types.Attributes{IsIndoor: true}}
		assert.InDelta(t, 0.9, seasonScore(p, trip), 1e-9)
	})

	t.Run("clamped at one", func(t *testing.T) {
		trip := tripOn(time.July)
		trip.Vibes = []types.Vibe{types.VibePhotography}
		p := types.POI{
			PersonaScores: &types.PersonaScores{Summer: f64(1.0)},
			Attributes:    &types.Attributes{IsIndoor: true, SunsetWorthy: true},
		}
		assert.Equal(t, 1.0, seasonScore(p, trip))
	})
}

func TestScorer_ComponentsStayInUnitRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	scorer := NewScorer(DefaultMustSeeBoost)
	months := []time.Month{time.January, time.April, time.July, time.August, time.October}

	for i := 0; i < 500; i++ {
		trip := tripOn(months[rng.Intn(len(months))])
		trip.GroupType = types.GroupTypes[rng.Intn(len(types.GroupTypes))]
		trip.Vibes = []types.Vibe{types.Vibes[rng.Intn(len(types.Vibes))], types.VibePhotography}
		trip.HasKids = rng.Intn(2) == 0
		trip.HasSeniors = rng.Intn(2) == 0
		trip.AvoidHeat = rng.Intn(2) == 0
		trip.PreferOutdoor = rng.Intn(2) == 0
		trip.EarlyRiser = rng.Intn(2) == 0
		trip.NightOwl = rng.Intn(2) == 0

		p := types.POI{
			ID: uuid.New(),
			PersonaScores: &types.PersonaScores{
				Family: f64(rng.Float64()), Couple: f64(rng.Float64()), Solo: f64(rng.Float64()),
				Cultural: f64(rng.Float64()), Photography: f64(rng.Float64()),
				Summer: f64(rng.Float64()), Winter: f64(rng.Float64()),
			},
			Attributes: &types.Attributes{
				IsKidFriendly:     boolPtr(rng.Intn(2) == 0),
				IsIndoor:          rng.Intn(2) == 0,
				IsOutdoor:         rng.Intn(2) == 0,
				HeatSensitive:     rng.Intn(2) == 0,
				ColdSensitive:     rng.Intn(2) == 0,
				BestInMorning:     rng.Intn(2) == 0,
				BestInEvening:     rng.Intn(2) == 0,
				SunsetWorthy:      rng.Intn(2) == 0,
				IsMustSee:         rng.Intn(2) == 0,
				PhysicalIntensity: intPtr(1 + rng.Intn(5)),
			},
		}
		s := scorer.ScoreCandidates([]types.CandidatePOI{{POI: p, Similarity: rng.Float64()}}, trip)[0]
		for name, v := range map[string]float64{
			"group": s.GroupScore, "vibe": s.VibeScore, "practical": s.PracticalScore,
			"season": s.SeasonScore, "final": s.FinalScore,
		} {
			require.GreaterOrEqual(t, v, 0.0, name)
			require.LessOrEqual(t, v, 1.0, name)
		}
	}
}

func TestApplyFilters(t *testing.T) {
	august := tripOn(time.August)

	cases := []struct {
		name   string
		trip   func() types.TripRequest
		attrs  *types.Attributes
		passes bool
	}{
		{"no attributes always pass", func() types.TripRequest {
			tr := august
			tr.HasKids, tr.HasSeniors, tr.AvoidHeat = true, true, true
			tr.MobilityConstraints = []string{"wheelchair"}
			return tr
		}, nil, true},
		{"explicitly not kid friendly", func() types.TripRequest {
			tr := august
			tr.HasKids = true
			return tr
		}, &types.Attributes{IsKidFriendly: boolPtr(false)}, false},
		{"unknown kid friendliness passes", func() types.TripRequest {
			tr := august
			tr.HasKids = true
			return tr
		}, &types.Attributes{}, true},
		{"not wheelchair accessible", func() types.TripRequest {
			tr := august
			tr.MobilityConstraints = []string{"Wheelchair"}
			return tr
		}, &types.Attributes{IsWheelchairAccessible: boolPtr(false)}, false},
		{"seniors and maximum intensity", func() types.TripRequest {
			tr := august
			tr.HasSeniors = true
			return tr
		}, &types.Attributes{PhysicalIntensity: intPtr(5)}, false},
		{"seniors and high intensity", func() types.TripRequest {
			tr := august
			tr.HasSeniors = true
			return tr
		}, &types.Attributes{PhysicalIntensity: intPtr(4)}, true},
		{"closed in the trip month", func() types.TripRequest { return august },
			&types.Attributes{SeasonalClosure: strPtr("Closed in August for holidays")}, false},
		{"closed in another month", func() types.TripRequest { return tripOn(time.July) },
			&types.Attributes{SeasonalClosure: strPtr("Closed in August for holidays")}, true},
		{"outdoor heat sensitive in peak summer", func() types.TripRequest {
			tr := august
			tr.AvoidHeat = true
			return tr
		}, &types.Attributes{IsOutdoor: true, HeatSensitive: true}, false},
		{"outdoor heat sensitive without avoid heat", func() types.TripRequest { return august },
			&types.Attributes{IsOutdoor: true, HeatSensitive: true}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := []types.ScoredPOI{{POI: types.POI{ID: uuid.New(), Attributes: tc.attrs}}}
			out := ApplyFilters(in, tc.trip())
			assert.Equal(t, tc.passes, len(out) == 1)
		})
	}
}

func TestApplyFilters_PreservesOrder(t *testing.T) {
	trip := tripOn(time.April)
	trip.HasKids = true
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	in := []types.ScoredPOI{
		{POI: types.POI{ID: ids[0]}, FinalScore: 0.9},
		{POI: types.POI{ID: uuid.New(), Attributes: &types.Attributes{IsKidFriendly: boolPtr(false)}}, FinalScore: 0.8},
		{POI: types.POI{ID: ids[1]}, FinalScore: 0.7},
		{POI: types.POI{ID: ids[2], Attributes: &types.Attributes{IsKidFriendly: boolPtr(true)}}, FinalScore: 0.6},
	}
	out := ApplyFilters(in, trip)
	require.Len(t, out, 3)
	for i, s := range out {
		assert.Equal(t, ids[i], s.POI.ID)
	}
}
