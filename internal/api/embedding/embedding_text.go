package embedding

import (
	"fmt"
	"strings"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

const strongVibeThreshold = 0.75

// TripQueryText is the retrieval text for a structured itinerary request.
func TripQueryText(destination string, group types.GroupType, vibes []types.Vibe, pacing types.Pacing) string {
	names := make([]string, len(vibes))
	for i, v := range vibes {
		names[i] = string(v)
	}
	return fmt.Sprintf("%s trip for %s\nvibes: %s\nlooking for %s paced activities",
		destination, group, strings.Join(names, ", "), pacing)
}

// POIDocumentText is the text embedded for a stored POI. It adds strong vibe
// signals and attribute tags to the descriptive fields.
func POIDocumentText(p types.POI) string {
	parts := []string{p.Name}

	if p.Description != "" && p.Description != fmt.Sprintf("%s - %s in %s", p.Name, p.Category, p.City) {
		parts = append(parts, p.Description)
	}
	if p.Category != "" {
		parts = append(parts, "Type: "+p.Category)
	}
	if p.Subcategory != "" && p.Subcategory != p.Category {
		parts = append(parts, "Style: "+p.Subcategory)
	}
	if p.Neighborhood != "" {
		parts = append(parts, "Area: "+p.Neighborhood)
	}

	if p.PersonaScores != nil {
		var strong []string
		for _, v := range types.Vibes {
			if score, ok := p.PersonaScores.Vibe(v); ok && score >= strongVibeThreshold {
				strong = append(strong, string(v))
			}
		}
		if len(strong) > 0 {
			parts = append(parts, "Known for: "+strings.Join(strong, ", "))
		}
	}

	if a := p.Attributes; a != nil {
		var tags []string
		if a.IsHiddenGem {
			tags = append(tags, "hidden gem")
		}
		if a.IsMustSee {
			tags = append(tags, "must-see")
		}
		if a.InstagramWorthy {
			tags = append(tags, "photogenic")
		}
		if a.Flag(types.AttrKidFriendly) {
			tags = append(tags, "family-friendly")
		}
		if len(tags) > 0 {
			parts = append(parts, "Tags: "+strings.Join(tags, ", "))
		}
	}

	return strings.Join(parts, ". ")
}
