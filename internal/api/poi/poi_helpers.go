package poi

import (
	"math"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const earthRadiusKm = 6371.0

// DistanceKm returns the great-circle distance between two coordinates using
// the Haversine formula.
func DistanceKm(a, b types.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dlat := (b.Latitude - a.Latitude) * math.Pi / 180
	dlon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKm * c
}
