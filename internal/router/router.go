package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api/country"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/itinerary"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/poi"
	"github.com/FACorreiaa/go-itinerary-planner/internal/api/query"
)

// Config contains the handlers and middleware mounted by SetupRouter.
type Config struct {
	QueryHandler     *query.HandlerImpl
	POIHandler       *poi.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
	CountryHandler   *country.HandlerImpl
	RateLimit        func(http.Handler) http.Handler
	AllowedOrigins   []string
}

// SetupRouter builds the API router. Server-wide middleware (request id,
// logging, recoverer) is applied in main before mounting it.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Link"},
		MaxAge:         300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		if cfg.RateLimit != nil {
			r.Use(cfg.RateLimit)
		}

		r.Route("/query", func(r chi.Router) {
			r.Post("/search", cfg.QueryHandler.Search)
			r.Post("/parse", cfg.QueryHandler.Parse)
		})

		r.Route("/pois", func(r chi.Router) {
			r.With(httprate.LimitByIP(1, time.Minute)).Post("/re-embed", cfg.POIHandler.ReembedPOIs)
			r.Get("/{poiID}", cfg.POIHandler.GetPOI)
		})

		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/generate", cfg.ItineraryHandler.Generate)
			r.Get("/", cfg.ItineraryHandler.List)
			r.Get("/{itineraryID}", cfg.ItineraryHandler.Get)
			r.Delete("/{itineraryID}", cfg.ItineraryHandler.Delete)
		})

		r.Route("/countries", func(r chi.Router) {
			r.Get("/", cfg.CountryHandler.ListCountries)
			r.Post("/allocations", cfg.CountryHandler.Allocations)
			r.Post("/itinerary", cfg.CountryHandler.Itinerary)
			r.Get("/{countryID}", cfg.CountryHandler.GetCountry)
		})
	})

	return r
}
