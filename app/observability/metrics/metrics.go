package metrics

import (
	"log"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
type AppMetrics struct {
	NLSearchRequestsTotal    metric.Int64Counter
	NLSearchDurationSeconds  metric.Float64Histogram
	ItinerariesGenerated     metric.Int64Counter
	EmbeddingDurationSeconds metric.Float64Histogram
	EmbeddingCacheHitsTotal  metric.Int64Counter
	DbQueryDurationSeconds   metric.Float64Histogram
	DbQueryErrorsTotal       metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments once, using the
// globally configured MeterProvider. When no provider has been installed the
// instruments are no-ops.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("ItineraryPlanner")
		var err error
		m := &AppMetrics{}

		m.NLSearchRequestsTotal, err = meter.Int64Counter(
			"nl_search_requests_total",
			metric.WithDescription("Total number of natural-language search requests"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nl_search_requests_total: %v", err)
		}

		m.NLSearchDurationSeconds, err = meter.Float64Histogram(
			"nl_search_duration_seconds",
			metric.WithDescription("Duration of natural-language searches in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nl_search_duration_seconds: %v", err)
		}

		m.ItinerariesGenerated, err = meter.Int64Counter(
			"itineraries_generated_total",
			metric.WithDescription("Total number of generated itineraries"),
			metric.WithUnit("{itinerary}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create itineraries_generated_total: %v", err)
		}

		m.EmbeddingDurationSeconds, err = meter.Float64Histogram(
			"embedding_duration_seconds",
			metric.WithDescription("Duration of embedding provider calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create embedding_duration_seconds: %v", err)
		}

		m.EmbeddingCacheHitsTotal, err = meter.Int64Counter(
			"embedding_cache_hits_total",
			metric.WithDescription("Total number of embeddings served from cache"),
			metric.WithUnit("{hit}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create embedding_cache_hits_total: %v", err)
		}

		m.DbQueryDurationSeconds, err = meter.Float64Histogram(
			"db_query_duration_seconds",
			metric.WithDescription("Duration of database queries in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_duration_seconds: %v", err)
		}

		m.DbQueryErrorsTotal, err = meter.Int64Counter(
			"db_query_errors_total",
			metric.WithDescription("Total number of database query errors"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create db_query_errors_total: %v", err)
		}

		appMetrics = m
	})
}

// Get returns the global AppMetrics, initializing it on first use.
func Get() *AppMetrics {
	InitAppMetrics()
	return appMetrics
}
