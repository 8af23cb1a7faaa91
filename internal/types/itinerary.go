package types

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ClockTime is a wall-clock time of day in minutes after midnight.
type ClockTime int

func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// Add advances the clock, wrapping around midnight.
func (c ClockTime) Add(minutes int) ClockTime {
	v := (int(c) + minutes) % (24 * 60)
	if v < 0 {
		v += 24 * 60
	}
	return ClockTime(v)
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

func (c ClockTime) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *ClockTime) UnmarshalText(b []byte) error {
	t, err := time.Parse("15:04", string(b))
	if err != nil {
		return fmt.Errorf("invalid clock time %q: %w", string(b), err)
	}
	*c = Clock(t.Hour(), t.Minute())
	return nil
}

// ScoredPOI is a candidate ranked against a trip persona.
type ScoredPOI struct {
	POI             POI     `json:"poi"`
	FinalScore      float64 `json:"final_score"`
	GroupScore      float64 `json:"group_score"`
	VibeScore       float64 `json:"vibe_score"`
	SimilarityScore float64 `json:"similarity_score"`
	PracticalScore  float64 `json:"practical_score"`
	SeasonScore     float64 `json:"season_score"`
	Reason          string  `json:"reason"`
	IsMustSee       bool    `json:"is_must_see"`
}

type PlannedItem struct {
	POI               POI       `json:"poi"`
	StartTime         ClockTime `json:"start_time"`
	EndTime           ClockTime `json:"end_time"`
	DurationMinutes   int       `json:"duration_minutes"`
	SequenceOrder     int       `json:"sequence_order"`
	TravelTimeMinutes int       `json:"travel_time_from_previous"`
	TravelMode        string    `json:"travel_mode"`
	SelectionReason   string    `json:"selection_reason"`
	PersonaMatchScore float64   `json:"persona_match_score"`
}

type DayPlan struct {
	DayNumber     int           `json:"day_number"`
	Date          Date          `json:"date"`
	Theme         string        `json:"theme"`
	Items         []PlannedItem `json:"items"`
	EstimatedCost float64       `json:"estimated_cost"`
	PacingScore   float64       `json:"pacing_score"`
}

type Itinerary struct {
	ID                 uuid.UUID   `json:"id"`
	TripRequestID      uuid.UUID   `json:"trip_request_id"`
	Trip               TripRequest `json:"trip"`
	Days               []DayPlan   `json:"days"`
	TotalEstimatedCost float64     `json:"total_estimated_cost"`
	GenerationMethod   string      `json:"generation_method"`
	CreatedAt          time.Time   `json:"created_at"`
}

type ItinerarySummary struct {
	ID              uuid.UUID `json:"id"`
	DestinationCity string    `json:"destination_city"`
	StartDate       Date      `json:"start_date"`
	EndDate         Date      `json:"end_date"`
	GroupType       GroupType `json:"group_type"`
	NumDays         int       `json:"num_days"`
	CreatedAt       time.Time `json:"created_at"`
}

type GenerateItineraryRequest struct {
	TripRequest
	MustIncludePOIs []uuid.UUID `json:"must_include_pois,omitempty"`
	ExcludePOIs     []uuid.UUID `json:"exclude_pois,omitempty"`
}
