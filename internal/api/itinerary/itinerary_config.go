package itinerary

import "github.com/FACorreiaa/go-itinerary-planner/internal/types"

// PacingProfile controls how dense a single day is.
type PacingProfile struct {
	AnchorsPerDay      int
	MaxActivities      int
	MinBufferMinutes   int
	MustIncludeBreaks  bool
	BreakAfterHeavy    int
	BreakAfterModerate int
}

var pacingProfiles = map[types.Pacing]PacingProfile{
	types.PacingSlow: {
		AnchorsPerDay:      1,
		MaxActivities:      3,
		MinBufferMinutes:   60,
		MustIncludeBreaks:  true,
		BreakAfterHeavy:    60,
		BreakAfterModerate: 30,
	},
	types.PacingModerate: {
		AnchorsPerDay:      2,
		MaxActivities:      5,
		MinBufferMinutes:   30,
		MustIncludeBreaks:  true,
		BreakAfterHeavy:    45,
		BreakAfterModerate: 15,
	},
	types.PacingFast: {
		AnchorsPerDay:      3,
		MaxActivities:      7,
		MinBufferMinutes:   15,
		MustIncludeBreaks:  false,
		BreakAfterHeavy:    20,
		BreakAfterModerate: 0,
	},
}

// ProfileFor returns the profile of p, falling back to moderate.
func ProfileFor(p types.Pacing) PacingProfile {
	if profile, ok := pacingProfiles[p]; ok {
		return profile
	}
	return pacingProfiles[types.PacingModerate]
}

// durationMultipliers scales typical visit durations per group and
// subcategory. The "default" entry applies to unlisted subcategories.
var durationMultipliers = map[types.GroupType]map[string]float64{
	types.GroupFamily: {
		"museum": 0.5, "historical": 0.6, "park": 1.2, "market": 0.8, "walking_tour": 0.6,
		"default": 0.7,
	},
	types.GroupHoneymoon: {
		"museum": 0.5, "historical": 0.6, "park": 1.0, "viewpoint": 1.2, "trattoria": 1.3,
		"fine_dining": 1.4, "cocktail_bar": 1.2,
		"default": 0.8,
	},
	types.GroupCouple: {
		"museum": 0.8, "historical": 0.8, "viewpoint": 1.1,
		"default": 0.9,
	},
	types.GroupSolo: {
		"museum": 1.2, "historical": 1.2, "walking_tour": 1.0, "market": 1.1,
		"default": 1.0,
	},
	types.GroupFriends: {
		"museum": 0.7, "historical": 0.7, "nightlife": 1.5, "cocktail_bar": 1.3, "market": 1.0,
		"walking_tour": 0.8,
		"default": 0.8,
	},
	types.GroupSeniors: {
		"museum": 0.9, "historical": 0.8, "park": 1.3, "walking_tour": 0.6, "trattoria": 1.2,
		"default": 0.8,
	},
	types.GroupKids: {
		"museum": 0.4, "historical": 0.4, "park": 1.5, "dessert": 1.2,
		"default": 0.6,
	},
	types.GroupBusiness: {
		"museum": 0.6, "historical": 0.6, "fine_dining": 1.2,
		"default": 0.7,
	},
}

func durationMultiplier(group types.GroupType, subcategory string) float64 {
	table, ok := durationMultipliers[group]
	if !ok {
		return 1.0
	}
	if m, ok := table[subcategory]; ok {
		return m
	}
	if m, ok := table["default"]; ok {
		return m
	}
	return 1.0
}

const (
	defaultDurationMinutes = 60
	anchorMinDuration      = 90
	heavyMinDuration       = 90
	moderateMinDuration    = 60
)

var heavySubcategories = map[string]bool{"museum": true, "historical": true}
