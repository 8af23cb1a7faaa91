package country

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-itinerary-planner/internal/refdata"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

func italy(t *testing.T) types.CountryProfile {
	t.Helper()
	c, ok := refdata.Country("italy")
	require.True(t, ok)
	return c
}

func cityDays(alloc []types.CityAllocation) map[string]int {
	out := make(map[string]int, len(alloc))
	for _, a := range alloc {
		out[a.CityID] = a.Days
	}
	return out
}

func TestPlanner_MustIncludeAndExclude(t *testing.T) {
	options, recommended, err := NewPlanner().GenerateOptions(italy(t), types.AllocationRequest{
		Country:     "italy",
		TotalDays:   6,
		GroupType:   types.GroupCouple,
		Vibes:       []string{"romantic", "cultural"},
		MustInclude: []string{"rome"},
		Exclude:     []string{"milan"},
	})
	require.NoError(t, err)
	require.Len(t, options, 2)
	assert.Equal(t, 0, recommended)

	for _, o := range options {
		days := cityDays(o.Cities)
		assert.Contains(t, days, "rome")
		assert.NotContains(t, days, "milan")
	}

	classic := options[0]
	assert.Equal(t, "1", classic.OptionID)
	assert.Equal(t, []string{"rome", "florence", "venice"}, cityIDs(classic.Cities))
	assert.Equal(t, map[string]int{"rome": 3, "florence": 2, "venice": 1}, cityDays(classic.Cities))
	assert.Equal(t, "3 days Rome + 2 days Florence + 1 days Venice", classic.Description)
	assert.Equal(t, "Art & Culture Tour", classic.Name)
	assert.Equal(t, 220, classic.TotalTravelMinutes)
	assert.Equal(t, "Rome", classic.Cities[1].ArrivalFrom)
	require.NotNil(t, classic.Cities[1].TravelTimeMinutes)
	assert.Equal(t, 95, *classic.Cities[1].TravelTimeMinutes)
	assert.Nil(t, classic.Cities[0].TravelTimeMinutes)
	assert.Equal(t, []string{"Colosseum", "Vatican", "Trevi Fountain"}, classic.Cities[0].Highlights)
	assert.InDelta(t, 1.0, classic.PersonaMatchScore, 1e-9)
	assert.Equal(t, []string{"Great variety of experiences", "Enough time in Rome"}, classic.Pros)
	assert.Equal(t, []string{"Tight schedule in Venice"}, classic.Cons)

	persona := options[1]
	assert.Equal(t, "2", persona.OptionID)
	assert.Equal(t, map[string]int{"rome": 2, "florence": 2, "venice": 1, "amalfi": 1}, cityDays(persona.Cities))
	assert.InDelta(t, 5.7/6, persona.PersonaMatchScore, 1e-9)
	// Venice and the Amalfi Coast have no direct connection.
	assert.Nil(t, persona.Cities[3].TravelTimeMinutes)
	assert.Equal(t, 220, persona.TotalTravelMinutes)
}

func TestPlanner_SingleOptionWhenNoVariantFits(t *testing.T) {
	options, recommended, err := NewPlanner().GenerateOptions(italy(t), types.AllocationRequest{
		Country:   "italy",
		TotalDays: 2,
		GroupType: types.GroupSolo,
		Vibes:     []string{"historical"},
	})
	require.NoError(t, err)
	require.Len(t, options, 1)
	assert.Equal(t, 0, recommended)
	assert.Equal(t, map[string]int{"rome": 2}, cityDays(options[0].Cities))
	assert.Equal(t, []string{"Deep exploration of one city", "Minimal travel time between cities"}, options[0].Pros)
	assert.Equal(t, []string{"Less variety", "Tight schedule in Rome"}, options[0].Cons)
}

func TestPlanner_StartAndEndCity(t *testing.T) {
	options, _, err := NewPlanner().GenerateOptions(italy(t), types.AllocationRequest{
		Country:     "italy",
		TotalDays:   6,
		GroupType:   types.GroupCouple,
		Vibes:       []string{"romantic", "cultural"},
		MustInclude: []string{"rome"},
		Exclude:     []string{"milan"},
		StartCity:   "venice",
		EndCity:     "rome",
	})
	require.NoError(t, err)

	classic := options[0]
	assert.Equal(t, []string{"venice", "florence", "rome"}, cityIDs(classic.Cities))
	assert.Empty(t, classic.Cities[0].ArrivalFrom)
	assert.Equal(t, "Venice", classic.Cities[1].ArrivalFrom)
	assert.Equal(t, 125, *classic.Cities[1].TravelTimeMinutes)
	assert.Equal(t, 95, *classic.Cities[2].TravelTimeMinutes)
}

func TestPlanner_Errors(t *testing.T) {
	c := italy(t)
	all := make([]string, 0, len(c.Cities))
	for _, city := range c.Cities {
		all = append(all, city.ID)
	}

	_, _, err := NewPlanner().GenerateOptions(c, types.AllocationRequest{
		Country: "italy", TotalDays: 5, GroupType: types.GroupSolo, Exclude: all,
	})
	assert.ErrorIs(t, err, types.ErrNoCitiesAvailable)

	_, _, err = NewPlanner().GenerateOptions(c, types.AllocationRequest{
		Country: "italy", TotalDays: 1, GroupType: types.GroupSolo, Exclude: []string{"venice", "milan", "naples", "amalfi"},
	})
	assert.ErrorIs(t, err, types.ErrNoAllocation)
}

func TestAllocateDays(t *testing.T) {
	c := italy(t)
	byID := make(map[string]types.CityProfile)
	for _, city := range c.Cities {
		byID[city.ID] = city
	}

	t.Run("minimums exceed the budget", func(t *testing.T) {
		assert.Nil(t, allocateDays([]string{"rome", "florence"}, 3, byID))
	})

	t.Run("leftover days with every city at max", func(t *testing.T) {
		assert.Nil(t, allocateDays([]string{"venice"}, 5, byID))
	})

	t.Run("below ideal wins over priority", func(t *testing.T) {
		// rome is at its ideal after one extra day, venice is still below.
		alloc := allocateDays([]string{"venice", "rome"}, 6, byID)
		require.NotNil(t, alloc)
		assert.Equal(t, map[string]int{"rome": 4, "venice": 2}, cityDays(alloc))
		assert.Equal(t, "rome", alloc[0].CityID)
	})
}

func TestPlanner_DayConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	vibes := []string{"cultural", "romantic", "foodie", "art", "nature", "adventure", "shopping", "historical", "relaxation"}
	planner := NewPlanner()

	for _, c := range refdata.Countries() {
		byID := make(map[string]types.CityProfile)
		for _, city := range c.Cities {
			byID[city.ID] = city
		}

		for run := 0; run < 60; run++ {
			req := types.AllocationRequest{
				Country:   c.ID,
				TotalDays: 1 + rng.Intn(16),
				GroupType: types.GroupTypes[rng.Intn(len(types.GroupTypes))],
				Vibes:     []string{vibes[rng.Intn(len(vibes))], vibes[rng.Intn(len(vibes))]},
			}
			if rng.Intn(3) == 0 {
				req.MustInclude = []string{c.Cities[rng.Intn(len(c.Cities))].ID}
			}
			if rng.Intn(3) == 0 {
				req.Exclude = []string{c.Cities[rng.Intn(len(c.Cities))].ID}
			}

			options, recommended, err := planner.GenerateOptions(c, req)
			if err != nil {
				require.ErrorIs(t, err, types.ErrNoAllocation)
				continue
			}
			require.NotEmpty(t, options)
			require.LessOrEqual(t, len(options), 2)
			require.Less(t, recommended, len(options))

			for _, o := range options {
				total := 0
				seen := make(map[string]bool)
				for _, a := range o.Cities {
					city := byID[a.CityID]
					require.False(t, seen[a.CityID], "%s listed twice", a.CityID)
					seen[a.CityID] = true
					require.NotContains(t, req.Exclude, a.CityID)
					require.GreaterOrEqual(t, a.Days, city.MinDays)
					require.LessOrEqual(t, a.Days, city.MaxDays)
					total += a.Days
				}
				require.Equal(t, req.TotalDays, total, "%s: %s", c.ID, o.Description)
				require.LessOrEqual(t, len(o.Pros), 3)
				require.LessOrEqual(t, len(o.Cons), 2)
				require.GreaterOrEqual(t, o.PersonaMatchScore, 0.0)
				require.LessOrEqual(t, o.PersonaMatchScore, 1.0)
			}
		}
	}
}
