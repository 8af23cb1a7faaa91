package itinerary

import (
	"fmt"
	"sort"
	"strings"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const (
	weightGroup      = 0.30
	weightVibe       = 0.30
	weightSimilarity = 0.15
	weightPractical  = 0.10
	weightSeason     = 0.15

	DefaultMustSeeBoost = 0.15

	neutralScore       = 0.5
	neutralSeasonScore = 0.7
)

// Scorer ranks retrieved candidates against a trip persona.
type Scorer struct {
	mustSeeBoost float64
}

func NewScorer(mustSeeBoost float64) *Scorer {
	if mustSeeBoost <= 0 {
		mustSeeBoost = DefaultMustSeeBoost
	}
	return &Scorer{mustSeeBoost: mustSeeBoost}
}

// ScoreCandidates scores every candidate and returns them ordered by
// descending final score. Ties keep retrieval order.
func (s *Scorer) ScoreCandidates(candidates []types.CandidatePOI, trip types.TripRequest) []types.ScoredPOI {
	scored := make([]types.ScoredPOI, 0, len(candidates))
	for _, c := range candidates {
		scored = append(scored, s.score(c.POI, c.Similarity, trip))
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].FinalScore > scored[j].FinalScore
	})
	return scored
}

func (s *Scorer) score(p types.POI, similarity float64, trip types.TripRequest) types.ScoredPOI {
	group := groupScore(p.PersonaScores, trip.GroupType)
	vibe := vibeScore(p.PersonaScores, trip.Vibes)
	practical := practicalScore(p.Attributes, trip)
	season := seasonScore(p, trip)

	final := group*weightGroup +
		vibe*weightVibe +
		similarity*weightSimilarity +
		practical*weightPractical +
		season*weightSeason

	mustSee := p.IsMustSee()
	if mustSee {
		final = min(1.0, final+s.mustSeeBoost)
	}

	return types.ScoredPOI{
		POI:             p,
		FinalScore:      final,
		GroupScore:      group,
		VibeScore:       vibe,
		SimilarityScore: similarity,
		PracticalScore:  practical,
		SeasonScore:     season,
		Reason:          selectionReason(p, trip, group, season),
		IsMustSee:       mustSee,
	}
}

func groupScore(scores *types.PersonaScores, g types.GroupType) float64 {
	if v, ok := scores.Group(g); ok {
		return v
	}
	return neutralScore
}

func vibeScore(scores *types.PersonaScores, vibes []types.Vibe) float64 {
	var sum float64
	var n int
	for _, v := range vibes {
		if score, ok := scores.Vibe(v); ok {
			sum += score
			n++
		}
	}
	if n == 0 {
		return neutralScore
	}
	return sum / float64(n)
}

func practicalScore(attrs *types.Attributes, trip types.TripRequest) float64 {
	if attrs == nil {
		return neutralScore
	}
	score := 1.0
	if trip.HasKids && attrs.IsKidFriendly != nil && !*attrs.IsKidFriendly {
		score -= 0.3
	}
	if trip.RequiresWheelchair() && attrs.IsWheelchairAccessible != nil && !*attrs.IsWheelchairAccessible {
		score -= 0.4
	}
	if trip.HasSeniors && attrs.PhysicalIntensity != nil && *attrs.PhysicalIntensity > 3 {
		score -= 0.2
	}
	return max(0, score)
}

func seasonScore(p types.POI, trip types.TripRequest) float64 {
	season := trip.Season()
	score := neutralSeasonScore
	if v, ok := p.PersonaScores.Season(season); ok {
		score = v
	}

	a := p.Attributes
	if a != nil {
		if trip.IsPeakSummer() {
			if a.HeatSensitive {
				score -= 0.2
			}
			if a.OutdoorOnly() {
				score -= 0.1
			}
			if a.IsIndoor {
				score += 0.1
			}
		}
		if season == types.SeasonWinter {
			if a.ColdSensitive {
				score -= 0.15
			}
			if a.IsIndoor {
				score += 0.1
			}
		}
		if trip.AvoidHeat && a.HeatSensitive {
			score -= 0.15
		}
		if trip.PreferOutdoor && a.IsOutdoor {
			score += 0.1
		} else if trip.PreferIndoor && a.IsIndoor {
			score += 0.1
		}
		if trip.EarlyRiser && a.BestInMorning {
			score += 0.1
		}
		if trip.NightOwl && a.BestInEvening {
			score += 0.1
		}
		if trip.HasVibe(types.VibePhotography) && a.SunsetWorthy {
			score += 0.1
		}
	}
	return max(0, min(1, score))
}

func selectionReason(p types.POI, trip types.TripRequest, group, season float64) string {
	var reasons []string

	switch {
	case group >= 0.8:
		reasons = append(reasons, fmt.Sprintf("Excellent match for %s travelers", trip.GroupType))
	case group >= 0.6:
		reasons = append(reasons, fmt.Sprintf("Good fit for %s groups", trip.GroupType))
	}

	var strong []string
	for _, v := range trip.Vibes {
		if score, ok := p.PersonaScores.Vibe(v); ok && score >= 0.7 {
			strong = append(strong, string(v))
		}
	}
	if len(strong) > 0 {
		reasons = append(reasons, fmt.Sprintf("Strong %s vibes", strings.Join(strong, ", ")))
	}

	switch {
	case season >= 0.85:
		reasons = append(reasons, fmt.Sprintf("Perfect for %s", trip.Season()))
	case season >= 0.7:
		reasons = append(reasons, fmt.Sprintf("Great choice in %s", trip.Season()))
	}

	if a := p.Attributes; a != nil {
		if a.IsMustSee {
			reasons = append(reasons, "Must-see attraction")
		}
		if a.IsHiddenGem {
			reasons = append(reasons, "Hidden gem")
		}
		if a.InstagramWorthy {
			reasons = append(reasons, "Great photo opportunity")
		}
		if a.SunsetWorthy && trip.HasVibe(types.VibePhotography) {
			reasons = append(reasons, "Stunning at sunset")
		}
	}

	if len(reasons) == 0 {
		return fmt.Sprintf("Matches your %s travel style", trip.GroupType)
	}
	return strings.Join(reasons, "; ")
}
