package types

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD: %w", s, err)
	}
	d.Time = t
	return nil
}

// TripRequest is the persona and date input of one planning session.
type TripRequest struct {
	DestinationCity string    `json:"destination_city"`
	StartDate       Date      `json:"start_date"`
	EndDate         Date      `json:"end_date"`
	GroupType       GroupType `json:"group_type"`
	GroupSize       int       `json:"group_size,omitempty"`
	HasKids         bool      `json:"has_kids,omitempty"`
	KidsAges        []int     `json:"kids_ages,omitempty"`
	HasSeniors      bool      `json:"has_seniors,omitempty"`

	Vibes       []Vibe   `json:"vibes"`
	BudgetLevel int      `json:"budget_level"`
	DailyBudget *float64 `json:"daily_budget,omitempty"`
	Pacing      Pacing   `json:"pacing,omitempty"`

	MobilityConstraints []string `json:"mobility_constraints,omitempty"`
	DietaryRestrictions []string `json:"dietary_restrictions,omitempty"`

	PreferOutdoor bool `json:"prefer_outdoor,omitempty"`
	PreferIndoor  bool `json:"prefer_indoor,omitempty"`
	AvoidHeat     bool `json:"avoid_heat,omitempty"`
	EarlyRiser    bool `json:"early_riser,omitempty"`
	NightOwl      bool `json:"night_owl,omitempty"`
}

func (t TripRequest) TripMonth() time.Month {
	return t.StartDate.Month()
}

func (t TripRequest) Season() Season {
	switch t.StartDate.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}

func (t TripRequest) IsPeakSummer() bool {
	m := t.StartDate.Month()
	return m == time.July || m == time.August
}

// IsHolidaySeason covers Christmas/New Year and an approximate Easter window.
func (t TripRequest) IsHolidaySeason() bool {
	m, d := t.StartDate.Month(), t.StartDate.Day()
	switch {
	case m == time.December && d >= 20:
		return true
	case m == time.January && d <= 6:
		return true
	case m == time.March || m == time.April:
		return true
	}
	return false
}

// NumDays counts both the start and the end date.
func (t TripRequest) NumDays() int {
	return int(t.EndDate.Sub(t.StartDate.Time).Hours()/24) + 1
}

func (t TripRequest) RequiresWheelchair() bool {
	for _, c := range t.MobilityConstraints {
		if strings.EqualFold(c, "wheelchair") {
			return true
		}
	}
	return false
}

func (t TripRequest) HasVibe(v Vibe) bool {
	for _, selected := range t.Vibes {
		if selected == v {
			return true
		}
	}
	return false
}

func (t TripRequest) Validate() error {
	if strings.TrimSpace(t.DestinationCity) == "" {
		return fmt.Errorf("destination_city is required: %w", ErrInvalidRequest)
	}
	if t.GroupType == "" {
		return fmt.Errorf("group_type is required: %w", ErrInvalidRequest)
	}
	if t.StartDate.IsZero() || t.EndDate.IsZero() {
		return fmt.Errorf("start_date and end_date are required: %w", ErrInvalidRequest)
	}
	if t.EndDate.Before(t.StartDate.Time) {
		return fmt.Errorf("end_date must not be before start_date: %w", ErrInvalidRequest)
	}
	if t.BudgetLevel < 1 || t.BudgetLevel > 5 {
		return fmt.Errorf("budget_level must be between 1 and 5: %w", ErrInvalidRequest)
	}
	return nil
}
