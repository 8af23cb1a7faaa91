package query

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-itinerary-planner/internal/api"
	"github.com/FACorreiaa/go-itinerary-planner/internal/types"
)

type HandlerImpl struct {
	queryService Service
	logger       *slog.Logger
}

func NewHandlerImpl(queryService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		queryService: queryService,
		logger:       logger,
	}
}

// Search handles a natural-language POI search.
func (h *HandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("QueryHandler").Start(r.Context(), "Search", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/query/search"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "Search"))

	var req types.NLQueryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Failed to decode request body", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.queryService.Search(ctx, req)
	if err != nil {
		if errors.Is(err, types.ErrInvalidRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		l.ErrorContext(ctx, "Search failed", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to search POIs")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}

// Parse returns the structured intent of a query without searching.
func (h *HandlerImpl) Parse(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("QueryHandler").Start(r.Context(), "Parse", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/v1/query/parse"),
	))
	defer span.End()

	var req types.NLQueryRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	parsed, err := h.queryService.Parse(ctx, req.Query)
	if err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, parsed)
}
