package types

// ParsedQuery is the structured intent extracted from a free-text query.
// Zero values mean "not extracted".
type ParsedQuery struct {
	RawQuery      string          `json:"raw_query"`
	City          string          `json:"city,omitempty"`
	Country       string          `json:"country,omitempty"`
	Category      string          `json:"category,omitempty"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Neighborhood  string          `json:"neighborhood,omitempty"`
	Vibes         []Vibe          `json:"vibes"`
	GroupType     GroupType       `json:"group_type,omitempty"`
	Attributes    []AttributeFlag `json:"attributes"`
	NearPOIName   string          `json:"near_poi_name,omitempty"`
	CostLevel     int             `json:"cost_level,omitempty"`
	TimeOfDay     string          `json:"time_of_day,omitempty"`
	SemanticQuery string          `json:"semantic_query"`
	Confidence    float64         `json:"confidence"`
}

// EmbeddingText is the text handed to the embedding provider.
func (p ParsedQuery) EmbeddingText() string {
	if p.SemanticQuery != "" {
		return p.SemanticQuery
	}
	return p.RawQuery
}

type SearchResult struct {
	POI            POI     `json:"poi"`
	FinalScore     float64 `json:"final_score"`
	VectorScore    float64 `json:"vector_score"`
	PersonaScore   float64 `json:"persona_score"`
	AttributeScore float64 `json:"attribute_score"`
	ProximityScore float64 `json:"proximity_score"`
}

type EnrichedResult struct {
	SearchResult
	MatchReasons      []string        `json:"match_reasons"`
	MatchedVibes      []Vibe          `json:"matched_vibes"`
	MatchedAttributes []AttributeFlag `json:"matched_attributes"`
}

type NLQueryRequest struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type NLQueryResponse struct {
	Query        string           `json:"query"`
	ParsedIntent ParsedQuery      `json:"parsed_intent"`
	Results      []EnrichedResult `json:"results"`
	Total        int              `json:"total"`
}
