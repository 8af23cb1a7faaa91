package types

import "github.com/google/uuid"

type CityProfile struct {
	ID         string   `yaml:"id" json:"id"`
	Name       string   `yaml:"name" json:"name"`
	MinDays    int      `yaml:"min_days" json:"min_days"`
	MaxDays    int      `yaml:"max_days" json:"max_days"`
	IdealDays  int      `yaml:"ideal_days" json:"ideal_days"`
	Priority   int      `yaml:"priority" json:"priority"`
	Highlights []string `yaml:"highlights" json:"highlights"`
	Vibes      []string `yaml:"vibes" json:"vibes"`
	BestFor    []string `yaml:"best_for" json:"best_for"`
}

// TravelLeg is an undirected inter-city connection.
type TravelLeg struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Minutes int    `yaml:"minutes"`
}

// CountryProfile keeps its cities in declaration order so that ties in
// priority resolve the same way on every run.
type CountryProfile struct {
	ID            string        `yaml:"id" json:"id"`
	Name          string        `yaml:"name" json:"name"`
	Flag          string        `yaml:"flag" json:"flag"`
	Currency      string        `yaml:"currency" json:"currency"`
	Languages     []string      `yaml:"languages" json:"languages"`
	Cities        []CityProfile `yaml:"cities" json:"cities"`
	TravelTimes   []TravelLeg   `yaml:"travel_times" json:"-"`
	PopularRoutes [][]string    `yaml:"popular_routes" json:"popular_routes"`
	TravelTips    []string      `yaml:"travel_tips" json:"travel_tips"`
}

// UnknownTravelTime is returned for city pairs without a known connection.
const UnknownTravelTime = 999

func (c CountryProfile) City(id string) (CityProfile, bool) {
	for _, city := range c.Cities {
		if city.ID == id {
			return city, true
		}
	}
	return CityProfile{}, false
}

// TravelTime returns the travel time in minutes between two cities in either
// direction, or UnknownTravelTime.
func (c CountryProfile) TravelTime(a, b string) int {
	for _, leg := range c.TravelTimes {
		if (leg.From == a && leg.To == b) || (leg.From == b && leg.To == a) {
			return leg.Minutes
		}
	}
	return UnknownTravelTime
}

// CityBox is the bounding box of a supported city.
type CityBox struct {
	ID      string  `yaml:"id" json:"id"`
	Name    string  `yaml:"name" json:"name"`
	Country string  `yaml:"country" json:"country"`
	MinLat  float64 `yaml:"min_lat" json:"min_lat"`
	MaxLat  float64 `yaml:"max_lat" json:"max_lat"`
	MinLon  float64 `yaml:"min_lon" json:"min_lon"`
	MaxLon  float64 `yaml:"max_lon" json:"max_lon"`
}

type CityAllocation struct {
	CityID            string   `json:"city_id"`
	CityName          string   `json:"city_name"`
	Days              int      `json:"days"`
	ArrivalFrom       string   `json:"arrival_from,omitempty"`
	TravelTimeMinutes *int     `json:"travel_time_minutes,omitempty"`
	Highlights        []string `json:"highlights"`
}

type AllocationOption struct {
	OptionID           string           `json:"option_id"`
	Name               string           `json:"name"`
	Description        string           `json:"description"`
	Cities             []CityAllocation `json:"cities"`
	TotalTravelMinutes int              `json:"total_travel_time_minutes"`
	PersonaMatchScore  float64          `json:"persona_match_score"`
	Pros               []string         `json:"pros"`
	Cons               []string         `json:"cons"`
	Kind               string           `json:"-"`
}

type AllocationRequest struct {
	Country     string    `json:"country"`
	TotalDays   int       `json:"total_days"`
	GroupType   GroupType `json:"group_type"`
	Vibes       []string  `json:"vibes"`
	Pacing      Pacing    `json:"pacing,omitempty"`
	MustInclude []string  `json:"must_include,omitempty"`
	Exclude     []string  `json:"exclude,omitempty"`
	StartCity   string    `json:"start_city,omitempty"`
	EndCity     string    `json:"end_city,omitempty"`
}

func (r AllocationRequest) Validate() error {
	if r.Country == "" {
		return ErrInvalidRequest
	}
	if r.TotalDays < 1 || r.TotalDays > 60 {
		return ErrInvalidRequest
	}
	if r.GroupType == "" {
		return ErrInvalidRequest
	}
	return nil
}

type AllocationResponse struct {
	Country          string             `json:"country"`
	TotalDays        int                `json:"total_days"`
	Options          []AllocationOption `json:"options"`
	RecommendedIndex int                `json:"recommended_option"`
	TravelTips       []string           `json:"travel_tips"`
}

type CountryItineraryRequest struct {
	AllocationRequest
	StartDate          Date             `json:"start_date"`
	EndDate            Date             `json:"end_date"`
	BudgetLevel        int              `json:"budget_level"`
	GroupSize          int              `json:"group_size,omitempty"`
	HasKids            bool             `json:"has_kids,omitempty"`
	HasSeniors         bool             `json:"has_seniors,omitempty"`
	SelectedOptionID   string           `json:"selected_option_id,omitempty"`
	SelectedAllocation []CityAllocation `json:"selected_allocation,omitempty"`
}

type CityItinerarySummary struct {
	CityID       string           `json:"city_id"`
	CityName     string           `json:"city_name"`
	StartDate    Date             `json:"start_date"`
	EndDate      Date             `json:"end_date"`
	Days         int              `json:"days"`
	ItineraryID  *uuid.UUID       `json:"itinerary_id,omitempty"`
	DayPlans     []DayPlan        `json:"day_plans"`
	Note         string           `json:"note,omitempty"`
	TravelToNext *InterCityTravel `json:"travel_to_next,omitempty"`
}

type InterCityTravel struct {
	FromCity          string `json:"from_city"`
	ToCity            string `json:"to_city"`
	TravelTimeMinutes int    `json:"travel_time_minutes"`
	Date              Date   `json:"date"`
}

type CountryItineraryResponse struct {
	Country            string                 `json:"country"`
	OptionName         string                 `json:"option_name"`
	StartDate          Date                   `json:"start_date"`
	EndDate            Date                   `json:"end_date"`
	TotalDays          int                    `json:"total_days"`
	Cities             []CityItinerarySummary `json:"cities"`
	TotalTravelMinutes int                    `json:"total_travel_time_minutes"`
	TravelTips         []string               `json:"travel_tips"`
}

type CityInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Country    string   `json:"country"`
	MinDays    int      `json:"min_days"`
	MaxDays    int      `json:"max_days"`
	IdealDays  int      `json:"ideal_days"`
	Highlights []string `json:"highlights"`
	Vibes      []string `json:"vibes"`
	BestFor    []string `json:"best_for"`
}

type CountrySummary struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Flag          string     `json:"flag"`
	Currency      string     `json:"currency"`
	Languages     []string   `json:"languages"`
	Cities        []CityInfo `json:"cities"`
	PopularRoutes [][]string `json:"popular_routes"`
}
