package country

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

type HandlerImpl struct {
	countryService Service
	logger         *slog.Logger
}

func NewHandlerImpl(countryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		countryService: countryService,
		logger:         logger,
	}
}

func (h *HandlerImpl) ListCountries(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CountryHandler").Start(r.Context(), "ListCountries", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/countries"),
	))
	defer span.End()

	api.WriteJSONResponse(w, r, http.StatusOK, h.countryService.ListCountries(ctx))
}

func (h *HandlerImpl) GetCountry(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CountryHandler").Start(r.Context(), "GetCountry", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/countries/{countryID}"),
	))
	defer span.End()

	c, err := h.countryService.GetCountry(ctx, chi.URLParam(r, "countryID"))
	if err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, c)
}

// Allocations suggests how to split the trip days across cities.
func (h *HandlerImpl) Allocations(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CountryHandler").Start(r.Context(), "Allocations", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/countries/allocations"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Allocations"))

	var req types.AllocationRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.countryService.Allocations(ctx, req)
	if err != nil {
		h.writeError(w, r, err, "Failed to generate allocations")
		span.RecordError(err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Itinerary plans a full multi-city trip.
func (h *HandlerImpl) Itinerary(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("CountryHandler").Start(r.Context(), "Itinerary", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/countries/itinerary"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Itinerary"))

	var req types.CountryItineraryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.countryService.GenerateCountryItinerary(ctx, req)
	if err != nil {
		h.writeError(w, r, err, "Failed to generate country itinerary")
		span.RecordError(err)
		return
	}
	api.WriteJSONResponse(w, r, http.StatusCreated, resp)
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, types.ErrUnknownCountry):
		api.ErrorResponse(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, types.ErrNoCitiesAvailable),
		errors.Is(err, types.ErrNoAllocation):
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
	default:
		h.logger.ErrorContext(r.Context(), fallback, slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, fallback)
	}
}
