package country

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const (
	kindClassic = "classic"
	kindPersona = "persona"
	kindBreadth = "breadth"
	kindDepth   = "depth"

	maxHighlights = 3
	maxPros       = 3
	maxCons       = 2
)

// Planner splits a day budget across the cities of a country. It keeps no
// state between calls.
type Planner struct{}

func NewPlanner() *Planner {
	return &Planner{}
}

type plannedRoute struct {
	cities       []types.CityAllocation
	travelMinute int
	kind         string
}

// GenerateOptions returns up to two distinct allocation options and the index
// of the recommended one. Every returned option assigns exactly
// req.TotalDays days, each city within its min and max.
func (p *Planner) GenerateOptions(country types.CountryProfile, req types.AllocationRequest) ([]types.AllocationOption, int, error) {
	available := make([]types.CityProfile, 0, len(country.Cities))
	for _, c := range country.Cities {
		if !slices.Contains(req.Exclude, c.ID) {
			available = append(available, c)
		}
	}
	if len(available) == 0 {
		return nil, 0, types.ErrNoCitiesAvailable
	}
	byID := make(map[string]types.CityProfile, len(available))
	for _, c := range available {
		byID[c.ID] = c
	}

	mustInclude := make([]string, 0, len(req.MustInclude))
	for _, id := range req.MustInclude {
		if _, ok := byID[id]; ok && !slices.Contains(mustInclude, id) {
			mustInclude = append(mustInclude, id)
		}
	}

	build := func(ids []string, kind string) *plannedRoute {
		alloc := allocateDays(ids, req.TotalDays, byID)
		if alloc == nil {
			return nil
		}
		alloc = orderEndpoints(alloc, req.StartCity, req.EndCity)
		attachLegs(country, alloc)
		return &plannedRoute{cities: alloc, travelMinute: totalTravel(alloc), kind: kind}
	}

	classic := build(classicRoute(country, available, byID, req.TotalDays, mustInclude), kindClassic)
	persona := build(personaRoute(available, byID, req, mustInclude), kindPersona)

	if classic != nil && persona != nil && sameCities(classic.cities, persona.cities) {
		persona = variantRoute(classic, available, byID, req.TotalDays, mustInclude, build)
	}

	var routes []*plannedRoute
	for _, r := range []*plannedRoute{classic, persona} {
		if r != nil {
			routes = append(routes, r)
		}
	}
	if len(routes) == 0 {
		return nil, 0, types.ErrNoAllocation
	}

	options := make([]types.AllocationOption, 0, len(routes))
	for i, r := range routes {
		pros, cons := prosAndCons(r, byID)
		options = append(options, types.AllocationOption{
			OptionID:           strconv.Itoa(i + 1),
			Name:               optionName(r, byID, i),
			Description:        describe(r.cities),
			Cities:             r.cities,
			TotalTravelMinutes: r.travelMinute,
			PersonaMatchScore:  matchScore(r.cities, byID, req.GroupType, req.Vibes),
			Pros:               pros,
			Cons:               cons,
			Kind:               r.kind,
		})
	}

	recommended := 0
	if len(options) > 1 && options[1].PersonaMatchScore > options[0].PersonaMatchScore {
		recommended = 1
	}
	return options, recommended, nil
}

func sortedByPriority(cities []types.CityProfile) []types.CityProfile {
	out := slices.Clone(cities)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return out
}

// classicRoute picks the best fitting curated route, or falls back to the
// highest-priority cities that fit the budget.
func classicRoute(country types.CountryProfile, available []types.CityProfile, byID map[string]types.CityProfile, totalDays int, mustInclude []string) []string {
	var best []string
	bestScore := -1 << 31

	for _, route := range country.PopularRoutes {
		usable := true
		minDays, idealDays, priority := 0, 0, 0
		for _, id := range route {
			c, ok := byID[id]
			if !ok {
				usable = false
				break
			}
			minDays += c.MinDays
			idealDays += c.IdealDays
			priority += 6 - c.Priority
		}
		if !usable || minDays > totalDays {
			continue
		}
		if !containsAll(route, mustInclude) {
			continue
		}
		score := 10 - abs(idealDays-totalDays) + priority
		if score > bestScore {
			bestScore = score
			best = route
		}
	}
	if best != nil {
		return slices.Clone(best)
	}

	var route []string
	running := 0
	for _, c := range sortedByPriority(available) {
		if running+c.MinDays <= totalDays {
			route = append(route, c.ID)
			running += c.MinDays
		}
	}
	for _, id := range mustInclude {
		if !slices.Contains(route, id) {
			route = append(route, id)
		}
	}
	return route
}

func cityFit(c types.CityProfile, group types.GroupType, vibes []string) float64 {
	overlap := 0
	for _, v := range uniq(vibes) {
		if slices.Contains(c.Vibes, v) {
			overlap++
		}
	}
	vibeOverlap := float64(overlap) / float64(max(len(uniq(vibes)), 1))
	groupMatch := 0.3
	if slices.Contains(c.BestFor, string(group)) {
		groupMatch = 1.0
	}
	return vibeOverlap*0.6 + groupMatch*0.4
}

// personaRoute ranks cities by vibe and group fit and adds them greedily
// after the forced cities.
func personaRoute(available []types.CityProfile, byID map[string]types.CityProfile, req types.AllocationRequest, mustInclude []string) []string {
	ranked := slices.Clone(available)
	sort.SliceStable(ranked, func(i, j int) bool {
		return cityFit(ranked[i], req.GroupType, req.Vibes) > cityFit(ranked[j], req.GroupType, req.Vibes)
	})

	candidates := slices.Clone(mustInclude)
	for _, c := range ranked {
		if !slices.Contains(candidates, c.ID) {
			candidates = append(candidates, c.ID)
		}
	}

	var route []string
	running := 0
	for _, id := range candidates {
		if c := byID[id]; running+c.MinDays <= req.TotalDays {
			route = append(route, id)
			running += c.MinDays
		}
	}
	return route
}

// variantRoute replaces a duplicate of the classic route with a breadth
// variant (one more city) or, failing that, a depth variant (one fewer).
func variantRoute(
	existing *plannedRoute,
	available []types.CityProfile,
	byID map[string]types.CityProfile,
	totalDays int,
	mustInclude []string,
	build func([]string, string) *plannedRoute,
) *plannedRoute {
	ids := cityIDs(existing.cities)

	for _, c := range sortedByPriority(available) {
		if slices.Contains(ids, c.ID) {
			continue
		}
		trial := append(slices.Clone(ids), c.ID)
		minDays := 0
		for _, id := range trial {
			minDays += byID[id].MinDays
		}
		if minDays > totalDays {
			continue
		}
		if r := build(trial, kindBreadth); r != nil {
			return r
		}
	}

	if len(ids) > 2 {
		trial := slices.Clone(ids[:len(ids)-1])
		for _, id := range mustInclude {
			if !slices.Contains(trial, id) {
				trial = append(trial, id)
			}
		}
		return build(trial, kindDepth)
	}
	return nil
}

// allocateDays gives every city its minimum, then hands out the remaining
// days one at a time by priority, favouring cities below their ideal stay.
// It returns nil when the minimums do not fit or when days are left over
// with every city at its maximum.
func allocateDays(ids []string, totalDays int, byID map[string]types.CityProfile) []types.CityAllocation {
	if len(ids) == 0 {
		return nil
	}
	cities := make([]types.CityProfile, 0, len(ids))
	for _, id := range ids {
		c, ok := byID[id]
		if !ok {
			return nil
		}
		cities = append(cities, c)
	}
	cities = sortedByPriority(cities)

	alloc := make([]types.CityAllocation, 0, len(cities))
	remaining := totalDays
	for _, c := range cities {
		if remaining < c.MinDays {
			return nil
		}
		highlights := c.Highlights
		if len(highlights) > maxHighlights {
			highlights = highlights[:maxHighlights]
		}
		alloc = append(alloc, types.CityAllocation{
			CityID:     c.ID,
			CityName:   c.Name,
			Days:       c.MinDays,
			Highlights: slices.Clone(highlights),
		})
		remaining -= c.MinDays
	}

	for ; remaining > 0; remaining-- {
		best, bestScore := -1, -1
		for i, c := range cities {
			if alloc[i].Days >= c.MaxDays {
				continue
			}
			score := (6 - c.Priority) * 10
			if alloc[i].Days < c.IdealDays {
				score += 20
			}
			if score > bestScore {
				best, bestScore = i, score
			}
		}
		if best < 0 {
			return nil
		}
		alloc[best].Days++
	}
	return alloc
}

// orderEndpoints moves the requested start and end cities to the front and
// back of the route when they are part of it.
func orderEndpoints(alloc []types.CityAllocation, start, end string) []types.CityAllocation {
	move := func(id string, toFront bool) {
		i := slices.IndexFunc(alloc, func(a types.CityAllocation) bool { return a.CityID == id })
		if i < 0 {
			return
		}
		c := alloc[i]
		alloc = slices.Delete(alloc, i, i+1)
		if toFront {
			alloc = slices.Insert(alloc, 0, c)
		} else {
			alloc = append(alloc, c)
		}
	}
	if end != "" {
		move(end, false)
	}
	if start != "" && start != end {
		move(start, true)
	}
	return alloc
}

func attachLegs(country types.CountryProfile, alloc []types.CityAllocation) {
	for i := range alloc {
		alloc[i].ArrivalFrom = ""
		alloc[i].TravelTimeMinutes = nil
		if i == 0 {
			continue
		}
		alloc[i].ArrivalFrom = alloc[i-1].CityName
		if t := country.TravelTime(alloc[i-1].CityID, alloc[i].CityID); t < types.UnknownTravelTime {
			alloc[i].TravelTimeMinutes = &t
		}
	}
}

func totalTravel(alloc []types.CityAllocation) int {
	total := 0
	for _, a := range alloc {
		if a.TravelTimeMinutes != nil {
			total += *a.TravelTimeMinutes
		}
	}
	return total
}

// matchScore is the days-weighted mean city fit of a route.
func matchScore(alloc []types.CityAllocation, byID map[string]types.CityProfile, group types.GroupType, vibes []string) float64 {
	if len(alloc) == 0 {
		return 0
	}
	var total, weight float64
	for _, a := range alloc {
		total += cityFit(byID[a.CityID], group, vibes) * float64(a.Days)
		weight += float64(a.Days)
	}
	return min(total/max(weight, 1), 1.0)
}

func optionName(r *plannedRoute, byID map[string]types.CityProfile, index int) string {
	has := make(map[string]bool)
	for _, a := range r.cities {
		for _, v := range byID[a.CityID].Vibes {
			has[v] = true
		}
	}
	switch {
	case has["romantic"] && has["beach"]:
		return "Romance & Relaxation"
	case has["cultural"] && has["art"]:
		return "Art & Culture Tour"
	case has["foodie"] && has["relaxation"]:
		return "Culinary Journey"
	case has["adventure"]:
		return "Adventure Trail"
	case has["historical"] && has["cultural"]:
		return "History & Heritage"
	case has["modern"] && has["shopping"]:
		return "City & Shopping"
	}
	switch r.kind {
	case kindClassic:
		return "Classic Route"
	case kindPersona:
		return "Personalized Pick"
	case kindBreadth:
		return "Explorer's Choice"
	case kindDepth:
		return "Deep Dive"
	}
	return fmt.Sprintf("Option %d", index+1)
}

func describe(alloc []types.CityAllocation) string {
	parts := make([]string, 0, len(alloc))
	for _, a := range alloc {
		parts = append(parts, fmt.Sprintf("%d days %s", a.Days, a.CityName))
	}
	return strings.Join(parts, " + ")
}

func prosAndCons(r *plannedRoute, byID map[string]types.CityProfile) ([]string, []string) {
	pros, cons := []string{}, []string{}
	travel := r.travelMinute

	switch n := len(r.cities); {
	case n == 1:
		pros = append(pros, "Deep exploration of one city")
		cons = append(cons, "Less variety")
	case n == 2:
		pros = append(pros, "Good balance of depth and variety")
	case n >= 3:
		pros = append(pros, "Great variety of experiences")
		if travel > 300 {
			cons = append(cons, fmt.Sprintf("More travel time (%dh total)", travel/60))
		}
	}
	if travel < 180 {
		pros = append(pros, "Minimal travel time between cities")
	}
	for _, a := range r.cities {
		if a.Days >= byID[a.CityID].IdealDays {
			pros = append(pros, fmt.Sprintf("Enough time in %s", a.CityName))
			break
		}
	}
	for _, a := range r.cities {
		if a.Days < byID[a.CityID].IdealDays {
			cons = append(cons, fmt.Sprintf("Tight schedule in %s", a.CityName))
			break
		}
	}

	if len(pros) > maxPros {
		pros = pros[:maxPros]
	}
	if len(cons) > maxCons {
		cons = cons[:maxCons]
	}
	return pros, cons
}

func cityIDs(alloc []types.CityAllocation) []string {
	ids := make([]string, 0, len(alloc))
	for _, a := range alloc {
		ids = append(ids, a.CityID)
	}
	return ids
}

func sameCities(a, b []types.CityAllocation) bool {
	x, y := cityIDs(a), cityIDs(b)
	slices.Sort(x)
	slices.Sort(y)
	return slices.Equal(x, y)
}

func containsAll(route, ids []string) bool {
	for _, id := range ids {
		if !slices.Contains(route, id) {
			return false
		}
	}
	return true
}

func uniq(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
