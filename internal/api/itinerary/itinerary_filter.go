package itinerary

import (
	"strings"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

// ApplyFilters drops POIs that violate a hard trip constraint, preserving
// order. Unknown attribute values never exclude a POI.
func ApplyFilters(scored []types.ScoredPOI, trip types.TripRequest) []types.ScoredPOI {
	filtered := make([]types.ScoredPOI, 0, len(scored))
	for _, s := range scored {
		if passesFilters(s.POI.Attributes, trip) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

func passesFilters(a *types.Attributes, trip types.TripRequest) bool {
	if a == nil {
		return true
	}
	if trip.HasKids && a.IsKidFriendly != nil && !*a.IsKidFriendly {
		return false
	}
	if trip.RequiresWheelchair() && a.IsWheelchairAccessible != nil && !*a.IsWheelchairAccessible {
		return false
	}
	if trip.HasSeniors && a.PhysicalIntensity != nil && *a.PhysicalIntensity >= 5 {
		return false
	}
	if a.SeasonalClosure != nil {
		month := strings.ToLower(trip.TripMonth().String())
		if strings.Contains(strings.ToLower(*a.SeasonalClosure), month) {
			return false
		}
	}
	if trip.AvoidHeat && trip.IsPeakSummer() && a.OutdoorOnly() && a.HeatSensitive {
		return false
	}
	return true
}
