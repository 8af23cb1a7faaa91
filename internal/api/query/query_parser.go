package query

import (
	"regexp"
	"strings"

	"github.com/FACorreiaa/go-itinerary-planner/internal/refdata"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

var (
	spatialPattern = regexp.MustCompile(
		`(?i)\b(?:near|close to|next to|around|by|beside|nearby|walking distance from|walking distance to)\s+(.+)`)
	spatialTail = regexp.MustCompile(`\s+(in|at|of|for|with)\s+.*$`)
	stopWords   = regexp.MustCompile(`\b(in|at|of|the|a|an|for|with|and|or)\b`)
	whitespace  = regexp.MustCompile(`\s+`)
	wordPattern = regexp.MustCompile(`\S+`)

	prepositionPatterns = buildPrepositionPatterns()
)

func buildPrepositionPatterns() map[string]*regexp.Regexp {
	m := make(map[string]*regexp.Regexp, len(cityPrepositions))
	for _, p := range cityPrepositions {
		m[p] = regexp.MustCompile(`\b` + regexp.QuoteMeta(p) + `\s+(\w[\w\s]*)`)
	}
	return m
}

// span is a half-open byte range [start, end) of the normalized query.
type span struct {
	start, end int
}

type spans []span

func (s spans) overlaps(c span) bool {
	for _, o := range s {
		if c.start < o.end && c.end > o.start {
			return true
		}
	}
	return false
}

func (s spans) covers(pos int) bool {
	for _, o := range s {
		if o.start <= pos && pos < o.end {
			return true
		}
	}
	return false
}

type cityEntry struct {
	display string
	country string
}

// Parser decomposes free text into structured search intent. It is safe for
// concurrent use.
type Parser struct {
	cities      map[string]cityEntry
	attributes  []phrase
	costs       []phrase
	times       []phrase
	subcategory []phrase
	category    []phrase
	vibes       []phrase
	groups      []phrase
}

// NewParser builds the lookup tables from the static city reference data.
func NewParser() *Parser {
	return &Parser{
		cities:      buildCityLookup(),
		attributes:  sortedPhrases(attributeKeywords),
		costs:       sortedPhrases(costKeywords),
		times:       sortedPhrases(timeKeywords),
		subcategory: sortedPhrases(subcategorySynonyms),
		category:    sortedPhrases(categorySynonyms),
		vibes:       sortedPhrases(vibeSynonyms),
		groups:      sortedPhrases(groupSynonyms),
	}
}

// buildCityLookup keys every city by slug and by lowercased display name.
// Country database entries win over bounding-box entries.
func buildCityLookup() map[string]cityEntry {
	lookup := make(map[string]cityEntry)
	for _, box := range refdata.CityBoxes() {
		e := cityEntry{display: box.Name, country: box.Country}
		lookup[box.ID] = e
		lookup[strings.ToLower(box.Name)] = e
	}
	for _, c := range refdata.Countries() {
		for _, city := range c.Cities {
			e := cityEntry{display: city.Name, country: c.Name}
			lookup[city.ID] = e
			lookup[strings.ToLower(city.Name)] = e
		}
	}
	return lookup
}

// Parse never fails. A query with nothing recognisable yields an empty intent
// whose semantic query is the cleaned input.
func (p *Parser) Parse(raw string) types.ParsedQuery {
	result := types.ParsedQuery{
		RawQuery:   raw,
		Vibes:      []types.Vibe{},
		Attributes: []types.AttributeFlag{},
	}
	text := whitespace.ReplaceAllString(strings.ToLower(strings.TrimSpace(raw)), " ")

	var consumed spans
	result.NearPOIName, consumed = extractSpatial(text, consumed)
	result.City, result.Country, consumed = p.extractCity(text, consumed)

	var matches []string
	matches, consumed = extractPhrases(text, consumed, p.attributes)
	for _, m := range matches {
		result.Attributes = append(result.Attributes, types.AttributeFlag(m))
	}

	matches, consumed = extractPhrases(text, consumed, p.costs)
	if len(matches) > 0 {
		result.CostLevel = costLevel(matches[0])
	}

	matches, consumed = extractPhrases(text, consumed, p.times)
	if len(matches) > 0 {
		result.TimeOfDay = matches[0]
	}

	matches, consumed = extractPhrases(text, consumed, p.subcategory)
	if len(matches) > 0 {
		result.Subcategory = matches[0]
	}

	matches, consumed = extractPhrases(text, consumed, p.category)
	if len(matches) > 0 {
		result.Category = matches[0]
	}
	if result.Subcategory != "" && result.Category == "" {
		result.Category = subcategoryParent[result.Subcategory]
	}

	matches, consumed = extractPhrases(text, consumed, p.vibes)
	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		if !seen[m] {
			seen[m] = true
			result.Vibes = append(result.Vibes, types.Vibe(m))
		}
	}

	matches, consumed = extractPhrases(text, consumed, p.groups)
	if len(matches) > 0 {
		result.GroupType = types.GroupType(matches[0])
	}

	result.SemanticQuery = semanticResidual(text, consumed)
	result.Confidence = confidence(result)
	return result
}

func extractSpatial(text string, consumed spans) (string, spans) {
	loc := spatialPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", consumed
	}
	ref := strings.TrimSpace(text[loc[2]:loc[3]])
	ref = spatialTail.ReplaceAllString(ref, "")
	ref = strings.TrimRight(ref, ".,;!?")
	if ref == "" {
		return "", consumed
	}
	return ref, append(consumed, span{loc[0], loc[1]})
}

func (p *Parser) extractCity(text string, consumed spans) (string, string, spans) {
	// A preposition followed by a known name is the strongest signal. The
	// longest word prefix after the preposition is tried first.
	for _, prep := range cityPrepositions {
		for _, m := range prepositionPatterns[prep].FindAllStringSubmatchIndex(text, -1) {
			words := strings.Fields(text[m[2]:m[3]])
			for n := len(words); n > 0; n-- {
				attempt := strings.Join(words[:n], " ")
				if e, ok := p.cities[attempt]; ok {
					return e.display, e.country, append(consumed, span{m[0], m[2] + len(attempt)})
				}
			}
		}
	}

	for _, w := range wordPattern.FindAllStringIndex(text, -1) {
		if consumed.covers(w[0]) {
			continue
		}
		word := strings.TrimRight(text[w[0]:w[1]], ".,;!?")
		if ambiguousCities[word] {
			continue
		}
		if e, ok := p.cities[word]; ok {
			return e.display, e.country, append(consumed, span{w[0], w[1]})
		}
	}
	return "", "", consumed
}

// extractPhrases records every phrase that has an occurrence outside the
// consumed spans, consuming the first such occurrence.
func extractPhrases(text string, consumed spans, phrases []phrase) ([]string, spans) {
	var matches []string
	for _, ph := range phrases {
		from := 0
		for from <= len(text) {
			idx := strings.Index(text[from:], ph.text)
			if idx < 0 {
				break
			}
			s := span{from + idx, from + idx + len(ph.text)}
			if !consumed.overlaps(s) {
				matches = append(matches, ph.canonical)
				consumed = append(consumed, s)
				break
			}
			from = s.start + 1
		}
	}
	return matches, consumed
}

func semanticResidual(text string, consumed spans) string {
	var b strings.Builder
	inGap := false
	for i := 0; i < len(text); i++ {
		if consumed.covers(i) {
			inGap = true
			continue
		}
		if inGap && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inGap = false
		b.WriteByte(text[i])
	}
	out := stopWords.ReplaceAllString(b.String(), " ")
	return strings.TrimSpace(whitespace.ReplaceAllString(out, " "))
}

func confidence(q types.ParsedQuery) float64 {
	score := 0.0
	if q.City != "" {
		score += 0.25
	}
	if q.Category != "" {
		score += 0.20
	}
	if len(q.Vibes) > 0 {
		score += 0.15
	}
	if q.Subcategory != "" {
		score += 0.10
	}
	if q.GroupType != "" {
		score += 0.10
	}
	if len(q.Attributes) > 0 {
		score += 0.10
	}
	if q.CostLevel > 0 {
		score += 0.05
	}
	if q.TimeOfDay != "" {
		score += 0.05
	}
	return min(score, 1.0)
}
