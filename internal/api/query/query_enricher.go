package query

import (
	"fmt"
	"slices"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const (
	excellentVibeThreshold = 0.8
	goodVibeThreshold      = 0.6
	groupReasonThreshold   = 0.7
	closeProximityScore    = 0.8
)

// Enrich attaches human-readable match explanations to each result.
func Enrich(results []types.SearchResult, q types.ParsedQuery) []types.EnrichedResult {
	out := make([]types.EnrichedResult, 0, len(results))
	for _, r := range results {
		out = append(out, types.EnrichedResult{
			SearchResult:      r,
			MatchReasons:      matchReasons(r, q),
			MatchedVibes:      matchedVibes(r.POI, q),
			MatchedAttributes: matchedAttributes(r.POI, q),
		})
	}
	return out
}

func matchReasons(r types.SearchResult, q types.ParsedQuery) []string {
	p := r.POI
	var reasons []string

	if p.PersonaScores != nil {
		for _, v := range q.Vibes {
			score, ok := p.PersonaScores.Vibe(v)
			switch {
			case !ok:
			case score >= excellentVibeThreshold:
				reasons = append(reasons, fmt.Sprintf("Excellent %s match (%.0f%%)", v, score*100))
			case score >= goodVibeThreshold:
				reasons = append(reasons, fmt.Sprintf("Good %s match (%.0f%%)", v, score*100))
			}
		}
		if q.GroupType != "" {
			if score, ok := p.PersonaScores.Group(q.GroupType); ok && score >= groupReasonThreshold {
				reasons = append(reasons, fmt.Sprintf("Great for %s", q.GroupType))
			}
		}
	}

	if a := p.Attributes; a != nil {
		requested := func(f types.AttributeFlag) bool {
			return slices.Contains(q.Attributes, f) && a.Flag(f)
		}
		if requested(types.AttrHiddenGem) {
			reasons = append(reasons, "Hidden gem")
		}
		if a.IsMustSee {
			reasons = append(reasons, "Must-see attraction")
		}
		if requested(types.AttrInstagramWorthy) {
			reasons = append(reasons, "Great photo opportunity")
		}
		if requested(types.AttrKidFriendly) {
			reasons = append(reasons, "Kid-friendly")
		}
	}

	if q.Category != "" && p.Category == q.Category {
		reasons = append(reasons, fmt.Sprintf("Matches %s search", q.Category))
	}
	if p.Neighborhood != "" {
		reasons = append(reasons, "In "+p.Neighborhood)
	}
	if q.NearPOIName != "" && r.ProximityScore >= closeProximityScore {
		reasons = append(reasons, "Close to "+q.NearPOIName)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, "Semantically similar to your search")
	}
	return reasons
}

func matchedVibes(p types.POI, q types.ParsedQuery) []types.Vibe {
	matched := []types.Vibe{}
	for _, v := range q.Vibes {
		if score, ok := p.PersonaScores.Vibe(v); ok && score >= goodVibeThreshold {
			matched = append(matched, v)
		}
	}
	return matched
}

func matchedAttributes(p types.POI, q types.ParsedQuery) []types.AttributeFlag {
	matched := []types.AttributeFlag{}
	for _, f := range q.Attributes {
		if p.Attributes.Flag(f) {
			matched = append(matched, f)
		}
	}
	return matched
}
