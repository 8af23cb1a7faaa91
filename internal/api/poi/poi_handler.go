package poi

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

type HandlerImpl struct {
	poiService Service
	logger     *slog.Logger
}

func NewHandlerImpl(poiService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		poiService: poiService,
		logger:     logger,
	}
}

type reembedResponse struct {
	Embedded int `json:"embedded"`
}

// GetPOI returns a single POI with its persona scores and attributes.
func (h *HandlerImpl) GetPOI(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "GetPOI", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/pois/{poiID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetPOI"))

	poiID, err := uuid.Parse(chi.URLParam(r, "poiID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid POI ID", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid POI ID format")
		return
	}

	p, err := h.poiService.GetPOI(ctx, poiID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "POI not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch POI", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch POI")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, p)
}

// ReembedPOIs regenerates every stored POI embedding. Accepts an optional
// batch_size query parameter.
func (h *HandlerImpl) ReembedPOIs(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("POIHandler").Start(r.Context(), "ReembedPOIs", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/pois/re-embed"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ReembedPOIs"))

	batchSize := DefaultReembedBatchSize
	if raw := r.URL.Query().Get("batch_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			api.ErrorResponse(w, r, http.StatusBadRequest, "batch_size must be a positive integer")
			return
		}
		batchSize = n
	}

	count, err := h.poiService.ReembedAll(ctx, batchSize)
	if err != nil {
		l.ErrorContext(ctx, "Re-embedding failed", slog.Any("error", err), slog.Int("embedded", count))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to re-embed POIs")
		return
	}

	l.InfoContext(ctx, "POIs re-embedded", slog.Int("embedded", count))
	api.WriteJSONResponse(w, r, http.StatusOK, reembedResponse{Embedded: count})
}
