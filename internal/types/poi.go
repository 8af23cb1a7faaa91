package types

import (
	"time"

	"github.com/google/uuid"
)

const (
	CategoryAttraction = "attraction"
	CategoryRestaurant = "restaurant"
	CategoryActivity   = "activity"
	CategoryShopping   = "shopping"
	CategoryNightlife  = "nightlife"
)

// AttributeFlag names a boolean POI attribute that a query can ask for.
type AttributeFlag string

const (
	AttrHiddenGem       AttributeFlag = "is_hidden_gem"
	AttrMustSee         AttributeFlag = "is_must_see"
	AttrKidFriendly     AttributeFlag = "is_kid_friendly"
	AttrInstagramWorthy AttributeFlag = "instagram_worthy"
)

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type POI struct {
	ID                     uuid.UUID      `json:"id"`
	Name                   string         `json:"name"`
	Description            string         `json:"description,omitempty"`
	Latitude               *float64       `json:"latitude,omitempty"`
	Longitude              *float64       `json:"longitude,omitempty"`
	Address                string         `json:"address,omitempty"`
	Neighborhood           string         `json:"neighborhood,omitempty"`
	City                   string         `json:"city"`
	Country                string         `json:"country"`
	Category               string         `json:"category"`
	Subcategory            string         `json:"subcategory,omitempty"`
	TypicalDurationMinutes *int           `json:"typical_duration_minutes,omitempty"`
	BestTimeOfDay          string         `json:"best_time_of_day,omitempty"`
	CostLevel              *int           `json:"cost_level,omitempty"`
	AvgCostPerPerson       *float64       `json:"avg_cost_per_person,omitempty"`
	CostCurrency           string         `json:"cost_currency,omitempty"`
	PersonaScores          *PersonaScores `json:"persona_scores,omitempty"`
	Attributes             *Attributes    `json:"attributes,omitempty"`
	CreatedAt              time.Time      `json:"created_at,omitempty"`
	UpdatedAt              time.Time      `json:"updated_at,omitempty"`
}

// DurationOr returns the typical visit duration, or def when it is unknown.
func (p POI) DurationOr(def int) int {
	if p.TypicalDurationMinutes == nil || *p.TypicalDurationMinutes <= 0 {
		return def
	}
	return *p.TypicalDurationMinutes
}

func (p POI) Location() (Coordinates, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return Coordinates{}, false
	}
	return Coordinates{Latitude: *p.Latitude, Longitude: *p.Longitude}, true
}

func (p POI) IsMustSee() bool {
	return p.Attributes != nil && p.Attributes.IsMustSee
}

// Attributes are the hard-filter and boost flags of a POI. Pointer fields are
// tri-state: nil means the value is unknown and must be treated permissively.
type Attributes struct {
	IsKidFriendly          *bool `json:"is_kid_friendly"`
	IsPetFriendly          bool  `json:"is_pet_friendly"`
	IsWheelchairAccessible *bool `json:"is_wheelchair_accessible"`
	RequiresReservation    bool  `json:"requires_reservation"`

	IsIndoor          bool `json:"is_indoor"`
	IsOutdoor         bool `json:"is_outdoor"`
	PhysicalIntensity *int `json:"physical_intensity"`

	TypicalCrowdLevel *int `json:"typical_crowd_level"`
	IsHiddenGem       bool `json:"is_hidden_gem"`
	IsMustSee         bool `json:"is_must_see"`
	InstagramWorthy   bool `json:"instagram_worthy"`

	WeatherDependent bool `json:"weather_dependent"`
	HeatSensitive    bool `json:"heat_sensitive"`
	ColdSensitive    bool `json:"cold_sensitive"`

	BestInMorning      bool `json:"best_in_morning"`
	BestInEvening      bool `json:"best_in_evening"`
	SunsetWorthy       bool `json:"sunset_worthy"`
	NightVisitPossible bool `json:"night_visit_possible"`

	SeasonalClosure *string `json:"seasonal_closure"`
}

func (a *Attributes) OutdoorOnly() bool {
	return a != nil && a.IsOutdoor && !a.IsIndoor
}

// Flag reports whether the attribute named by f is explicitly set to true.
func (a *Attributes) Flag(f AttributeFlag) bool {
	if a == nil {
		return false
	}
	switch f {
	case AttrHiddenGem:
		return a.IsHiddenGem
	case AttrMustSee:
		return a.IsMustSee
	case AttrKidFriendly:
		return a.IsKidFriendly != nil && *a.IsKidFriendly
	case AttrInstagramWorthy:
		return a.InstagramWorthy
	}
	return false
}

// CandidatePOI is a retrieved POI together with its vector similarity.
type CandidatePOI struct {
	POI        POI     `json:"poi"`
	Similarity float64 `json:"similarity"`
}
