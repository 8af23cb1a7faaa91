package types

// GroupType is the traveler composition category.
type GroupType string

const (
	GroupFamily    GroupType = "family"
	GroupKids      GroupType = "kids"
	GroupCouple    GroupType = "couple"
	GroupHoneymoon GroupType = "honeymoon"
	GroupSolo      GroupType = "solo"
	GroupFriends   GroupType = "friends"
	GroupSeniors   GroupType = "seniors"
	GroupBusiness  GroupType = "business"
)

var GroupTypes = []GroupType{
	GroupFamily, GroupKids, GroupCouple, GroupHoneymoon,
	GroupSolo, GroupFriends, GroupSeniors, GroupBusiness,
}

func (g GroupType) Valid() bool {
	for _, known := range GroupTypes {
		if g == known {
			return true
		}
	}
	return false
}

// Vibe is a trip-style tag that is orthogonal to the group type.
type Vibe string

const (
	VibeCultural    Vibe = "cultural"
	VibeFoodie      Vibe = "foodie"
	VibeAdventure   Vibe = "adventure"
	VibeRelaxation  Vibe = "relaxation"
	VibeNature      Vibe = "nature"
	VibeNightlife   Vibe = "nightlife"
	VibeShopping    Vibe = "shopping"
	VibePhotography Vibe = "photography"
	VibeWellness    Vibe = "wellness"
	VibeRomantic    Vibe = "romantic"
)

var Vibes = []Vibe{
	VibeRomantic, VibeCultural, VibeFoodie, VibeAdventure, VibeRelaxation,
	VibeNature, VibeNightlife, VibePhotography, VibeWellness, VibeShopping,
}

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

type Pacing string

const (
	PacingSlow     Pacing = "slow"
	PacingModerate Pacing = "moderate"
	PacingFast     Pacing = "fast"
)

// PersonaScores holds the per-POI fit scores in [0,1]. A nil field means the
// score was never set and callers fall back to a neutral default.
type PersonaScores struct {
	Family    *float64 `json:"score_family"`
	Kids      *float64 `json:"score_kids"`
	Couple    *float64 `json:"score_couple"`
	Honeymoon *float64 `json:"score_honeymoon"`
	Solo      *float64 `json:"score_solo"`
	Friends   *float64 `json:"score_friends"`
	Seniors   *float64 `json:"score_seniors"`
	Business  *float64 `json:"score_business"`

	Adventure   *float64 `json:"score_adventure"`
	Relaxation  *float64 `json:"score_relaxation"`
	Cultural    *float64 `json:"score_cultural"`
	Foodie      *float64 `json:"score_foodie"`
	Nightlife   *float64 `json:"score_nightlife"`
	Nature      *float64 `json:"score_nature"`
	Shopping    *float64 `json:"score_shopping"`
	Photography *float64 `json:"score_photography"`
	Wellness    *float64 `json:"score_wellness"`
	Romantic    *float64 `json:"score_romantic"`

	Accessibility *float64 `json:"score_accessibility"`
	Indoor        *float64 `json:"score_indoor"`

	Spring *float64 `json:"score_spring"`
	Summer *float64 `json:"score_summer"`
	Fall   *float64 `json:"score_fall"`
	Winter *float64 `json:"score_winter"`
}

const (
	NeutralPersonaScore = 0.5
	NeutralSeasonScore  = 0.7
)

func deref(v *float64) (float64, bool) {
	return orDefault(v, NeutralPersonaScore)
}

func orDefault(v *float64, def float64) (float64, bool) {
	if v == nil {
		return def, true
	}
	return *v, true
}

// Group returns the score for g. Unset scores read as neutral; ok is false
// only for unknown group types or a missing score row.
func (p *PersonaScores) Group(g GroupType) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch g {
	case GroupFamily:
		return deref(p.Family)
	case GroupKids:
		return deref(p.Kids)
	case GroupCouple:
		return deref(p.Couple)
	case GroupHoneymoon:
		return deref(p.Honeymoon)
	case GroupSolo:
		return deref(p.Solo)
	case GroupFriends:
		return deref(p.Friends)
	case GroupSeniors:
		return deref(p.Seniors)
	case GroupBusiness:
		return deref(p.Business)
	}
	return 0, false
}

func (p *PersonaScores) Vibe(v Vibe) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch v {
	case VibeAdventure:
		return deref(p.Adventure)
	case VibeRelaxation:
		return deref(p.Relaxation)
	case VibeCultural:
		return deref(p.Cultural)
	case VibeFoodie:
		return deref(p.Foodie)
	case VibeNightlife:
		return deref(p.Nightlife)
	case VibeNature:
		return deref(p.Nature)
	case VibeShopping:
		return deref(p.Shopping)
	case VibePhotography:
		return deref(p.Photography)
	case VibeWellness:
		return deref(p.Wellness)
	case VibeRomantic:
		return deref(p.Romantic)
	}
	return 0, false
}

func (p *PersonaScores) Season(s Season) (float64, bool) {
	if p == nil {
		return 0, false
	}
	switch s {
	case SeasonSpring:
		return orDefault(p.Spring, NeutralSeasonScore)
	case SeasonSummer:
		return orDefault(p.Summer, NeutralSeasonScore)
	case SeasonFall:
		return orDefault(p.Fall, NeutralSeasonScore)
	case SeasonWinter:
		return orDefault(p.Winter, NeutralSeasonScore)
	}
	return 0, false
}
