package itinerary

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
	itineraryService Service
	logger           *slog.Logger
}

func NewHandlerImpl(itineraryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		itineraryService: itineraryService,
		logger:           logger,
	}
}

type deleteResponse struct {
	Status string    `json:"status"`
	ID     uuid.UUID `json:"id"`
}

// Generate builds and stores a personalized itinerary.
func (h *HandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Generate", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/generate"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Generate"))

	var req types.GenerateItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	it, err := h.itineraryService.Generate(ctx, req)
	switch {
	case err == nil:
		api.WriteJSONResponse(w, r, http.StatusCreated, it)
	case errors.Is(err, types.ErrInvalidRequest):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, types.ErrNoCandidates):
		api.ErrorResponse(w, r, http.StatusNotFound, "No POIs found matching your criteria. Try adjusting filters.")
	case errors.Is(err, types.ErrNoPOIsPassedFilters):
		api.ErrorResponse(w, r, http.StatusNotFound, "No POIs passed the filters. Try relaxing constraints.")
	default:
		l.ErrorContext(ctx, "Itinerary generation failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary")
	}
}

func (h *HandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "List", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries"),
	))
	defer span.End()

	limit, err := intParam(r, "limit")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "limit must be an integer")
		return
	}
	offset, err := intParam(r, "offset")
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "offset must be an integer")
		return
	}

	summaries, err := h.itineraryService.List(ctx, limit, offset)
	if err != nil {
		h.logger.ErrorContext(ctx, "Failed to list itineraries", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to list itineraries")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, summaries)
}

func (h *HandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Get", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/{itineraryID}"),
	))
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	it, err := h.itineraryService.Get(ctx, id)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, it)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Delete", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/itineraries/{itineraryID}"),
	))
	defer span.End()

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format")
		return
	}

	if err := h.itineraryService.Delete(ctx, id); err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		h.logger.ErrorContext(ctx, "Failed to delete itinerary", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to delete itinerary")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, deleteResponse{Status: "deleted", ID: id})
}

func intParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
