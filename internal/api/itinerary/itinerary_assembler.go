package itinerary

import (
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var (
	dayStart       = types.Clock(9, 0)
	lunchStart     = types.Clock(12, 30)
	lunchEnd       = types.Clock(14, 0)
	afternoonStart = types.Clock(14, 30)
	fillerStart    = types.Clock(17, 0)
	dinnerStart    = types.Clock(19, 30)
	dinnerEnd      = types.Clock(21, 0)
)

const (
	mealTravelMinutes   = 15
	anchorTravelMinutes = 20
	travelModeWalk      = "walk"
)

// Assembler lays ranked POIs out into day plans using a fixed daily
// template: morning anchor, lunch, afternoon anchor, evening fillers, dinner.
type Assembler struct {
	profile PacingProfile
	group   types.GroupType
}

func NewAssembler(pacing types.Pacing, group types.GroupType) *Assembler {
	return &Assembler{profile: ProfileFor(pacing), group: group}
}

// Build plans every day of trip. scored must be ordered by descending final
// score; earlier days get first pick. mustInclude ids are preferred as the
// first day's anchors. No POI is used twice.
func (a *Assembler) Build(scored []types.ScoredPOI, trip types.TripRequest, mustInclude []uuid.UUID) []types.DayPlan {
	var anchors, restaurants, activities, priority []types.ScoredPOI
	wanted := make(map[uuid.UUID]bool, len(mustInclude))
	for _, id := range mustInclude {
		wanted[id] = true
	}
	for _, s := range scored {
		if isAnchorWorthy(s.POI) {
			anchors = append(anchors, s)
		}
		switch s.POI.Category {
		case types.CategoryRestaurant:
			restaurants = append(restaurants, s)
		case types.CategoryActivity, types.CategoryShopping, types.CategoryAttraction:
			activities = append(activities, s)
		}
		if wanted[s.POI.ID] {
			priority = append(priority, s)
		}
	}

	used := make(map[uuid.UUID]bool)
	numDays := trip.NumDays()
	days := make([]types.DayPlan, 0, numDays)
	for n := 1; n <= numDays; n++ {
		var first []types.ScoredPOI
		if n == 1 {
			first = priority
		}
		days = append(days, a.buildDay(n, trip.StartDate.AddDays(n-1), anchors, restaurants, activities, first, used))
	}
	return days
}

func (a *Assembler) buildDay(
	number int,
	date types.Date,
	anchors, restaurants, activities, priority []types.ScoredPOI,
	used map[uuid.UUID]bool,
) types.DayPlan {
	day := types.DayPlan{DayNumber: number, Date: date, Items: []types.PlannedItem{}}

	place := func(s types.ScoredPOI, start, end types.ClockTime, duration, travel int) {
		day.Items = append(day.Items, types.PlannedItem{
			POI:               s.POI,
			StartTime:         start,
			EndTime:           end,
			DurationMinutes:   duration,
			SequenceOrder:     len(day.Items) + 1,
			TravelTimeMinutes: travel,
			TravelMode:        travelModeWalk,
			SelectionReason:   s.Reason,
			PersonaMatchScore: round2(s.FinalScore),
		})
		if s.POI.AvgCostPerPerson != nil {
			day.EstimatedCost += *s.POI.AvgCostPerPerson
		}
		used[s.POI.ID] = true
	}

	dayAnchors := selectBestAvailable(anchors, used, a.profile.AnchorsPerDay, priority)

	if len(dayAnchors) > 0 {
		d := a.personaDuration(dayAnchors[0].POI)
		place(dayAnchors[0], dayStart, dayStart.Add(d), d, 0)
	}

	if lunch := selectBestAvailable(restaurants, used, 1, nil); len(lunch) > 0 {
		place(lunch[0], lunchStart, lunchEnd, int(lunchEnd-lunchStart), mealTravelMinutes)
	}

	clock := afternoonStart
	if len(dayAnchors) > 1 {
		d := a.personaDuration(dayAnchors[1].POI)
		place(dayAnchors[1], afternoonStart, afternoonStart.Add(d), d, anchorTravelMinutes)
		clock = afternoonStart.Add(d)
		if a.profile.MustIncludeBreaks {
			clock = clock.Add(a.breakAfter(dayAnchors[1].POI))
		}
	}

	if remaining := a.profile.MaxActivities - len(day.Items); remaining > 0 {
		fillers := selectBestAvailable(activities, used, remaining, nil)
		if clock < fillerStart {
			clock = fillerStart
		}
		for _, f := range fillers {
			if clock >= dinnerStart {
				break
			}
			d := a.personaDuration(f.POI)
			end := clock.Add(d)
			place(f, clock, end, d, mealTravelMinutes)

			buffer := a.profile.MinBufferMinutes
			if a.profile.MustIncludeBreaks {
				buffer += a.breakAfter(f.POI)
			}
			clock = end.Add(buffer)
		}
	}

	if dinner := selectBestAvailable(restaurants, used, 1, nil); len(dinner) > 0 {
		place(dinner[0], dinnerStart, dinnerEnd, int(dinnerEnd-dinnerStart), mealTravelMinutes)
	}

	day.Theme = dayTheme(day.Items)
	day.EstimatedCost = round2(day.EstimatedCost)
	day.PacingScore = round2(float64(len(day.Items)) / float64(a.profile.MaxActivities))
	return day
}

// selectBestAvailable takes up to count unused POIs, priority entries first,
// then in ranked order.
func selectBestAvailable(ranked []types.ScoredPOI, used map[uuid.UUID]bool, count int, priority []types.ScoredPOI) []types.ScoredPOI {
	selected := make([]types.ScoredPOI, 0, count)
	taken := make(map[uuid.UUID]bool, count)
	for _, group := range [][]types.ScoredPOI{priority, ranked} {
		for _, s := range group {
			if len(selected) >= count {
				return selected
			}
			if used[s.POI.ID] || taken[s.POI.ID] {
				continue
			}
			selected = append(selected, s)
			taken[s.POI.ID] = true
		}
	}
	return selected
}

func isAnchorWorthy(p types.POI) bool {
	if p.Category != types.CategoryAttraction && p.Category != types.CategoryActivity {
		return false
	}
	return p.DurationOr(0) >= anchorMinDuration || p.IsMustSee()
}

func (a *Assembler) personaDuration(p types.POI) int {
	base := p.DurationOr(defaultDurationMinutes)
	if a.group == "" {
		return base
	}
	sub := p.Subcategory
	if sub == "" {
		sub = "default"
	}
	return int(float64(base) * durationMultiplier(a.group, sub))
}

func isHeavy(p types.POI) bool {
	return heavySubcategories[p.Subcategory] && p.DurationOr(0) >= heavyMinDuration
}

func (a *Assembler) breakAfter(p types.POI) int {
	switch {
	case isHeavy(p):
		return a.profile.BreakAfterHeavy
	case p.DurationOr(0) >= moderateMinDuration:
		return a.profile.BreakAfterModerate
	}
	return 0
}

func dayTheme(items []types.PlannedItem) string {
	if len(items) == 0 {
		return "Free Day"
	}

	hasAttraction := false
	subs := make(map[string]bool)
	counts := make(map[string]int)
	var order []string
	for _, it := range items {
		if it.POI.Category == types.CategoryAttraction {
			hasAttraction = true
		}
		if it.POI.Subcategory != "" {
			subs[it.POI.Subcategory] = true
		}
		if n := it.POI.Neighborhood; n != "" {
			if counts[n] == 0 {
				order = append(order, n)
			}
			counts[n]++
		}
	}

	if hasAttraction {
		switch {
		case subs["museum"] || subs["gallery"]:
			return "Art & Culture Day"
		case subs["historical"] || subs["ruins"] || subs["monument"]:
			return "History & Heritage Day"
		}
		return "Sightseeing Day"
	}

	if len(order) > 0 {
		best := order[0]
		for _, n := range order[1:] {
			if counts[n] > counts[best] {
				best = n
			}
		}
		return fmt.Sprintf("Exploring %s", best)
	}
	return "Discovery Day"
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
