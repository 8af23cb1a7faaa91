// Package refdata exposes the static city and country tables used by the
// query parser and the multi-city planner. The data is embedded in the binary
// and decoded once per process.
package refdata

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

//go:embed countries.yml
var countriesYAML []byte

type document struct {
	CityBoxes []types.CityBox        `yaml:"city_boxes"`
	Countries []types.CountryProfile `yaml:"countries"`
}

var (
	loadOnce sync.Once
	loaded   *document
	loadErr  error
)

func load() (*document, error) {
	loadOnce.Do(func() {
		var doc document
		if err := yaml.Unmarshal(countriesYAML, &doc); err != nil {
			loadErr = fmt.Errorf("failed to decode reference data: %w", err)
			return
		}
		for i := range doc.CityBoxes {
			if doc.CityBoxes[i].Name == "" {
				doc.CityBoxes[i].Name = titleCase(doc.CityBoxes[i].ID)
			}
		}
		loaded = &doc
	})
	return loaded, loadErr
}

func mustLoad() *document {
	doc, err := load()
	if err != nil {
		panic(err)
	}
	return doc
}

// Countries returns every country profile in declaration order.
func Countries() []types.CountryProfile {
	return mustLoad().Countries
}

func Country(id string) (types.CountryProfile, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, c := range mustLoad().Countries {
		if c.ID == id {
			return c, true
		}
	}
	return types.CountryProfile{}, false
}

func CityBoxes() []types.CityBox {
	return mustLoad().CityBoxes
}

// TravelTime returns the minutes between two cities of a country, in either
// direction, or types.UnknownTravelTime.
func TravelTime(countryID, from, to string) int {
	c, ok := Country(countryID)
	if !ok {
		return types.UnknownTravelTime
	}
	return c.TravelTime(from, to)
}

func TravelTips(countryID string) []string {
	c, ok := Country(countryID)
	if !ok {
		return nil
	}
	return c.TravelTips
}

// ListCountries returns API summaries sorted by country name.
func ListCountries() []types.CountrySummary {
	countries := Countries()
	out := make([]types.CountrySummary, 0, len(countries))
	for _, c := range countries {
		out = append(out, Summarize(c))
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func Summarize(c types.CountryProfile) types.CountrySummary {
	cities := make([]types.CityInfo, 0, len(c.Cities))
	for _, city := range c.Cities {
		cities = append(cities, types.CityInfo{
			ID:         city.ID,
			Name:       city.Name,
			Country:    c.Name,
			MinDays:    city.MinDays,
			MaxDays:    city.MaxDays,
			IdealDays:  city.IdealDays,
			Highlights: city.Highlights,
			Vibes:      city.Vibes,
			BestFor:    city.BestFor,
		})
	}
	return types.CountrySummary{
		ID:            c.ID,
		Name:          c.Name,
		Flag:          c.Flag,
		Currency:      c.Currency,
		Languages:     c.Languages,
		Cities:        cities,
		PopularRoutes: c.PopularRoutes,
	}
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
