package itinerary

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/amirulhz/go-trip-planner/internal/api"
	"github.com/amirulhz/go-trip-planner/internal/types"
)

// HandlerImpl exposes itinerary storage over HTTP.
type HandlerImpl struct {
	repo   Repository
	logger *slog.Logger
}

func NewHandlerImpl(repo Repository, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{repo: repo, logger: logger}
}

// Save handles POST /itineraries.
func (h *HandlerImpl) Save(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Save", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "SaveItinerary"))

	var payload types.ItineraryPayload
	if err := api.DecodeJSONBody(w, r, &payload); err != nil {
		l.WarnContext(ctx, "Invalid itinerary payload", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	id, err := h.repo.Save(ctx, payload)
	if err != nil {
		l.ErrorContext(ctx, "Failed to save itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Save failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to save itinerary.")
		return
	}

	span.SetAttributes(attribute.String("app.itinerary.id", id.String()))
	span.SetStatus(codes.Ok, "Itinerary saved")
	api.WriteJSONResponse(w, r, http.StatusCreated, api.SaveItineraryResponse{ID: id.String(), Message: "Itinerary saved"})
}

// Get handles GET /itineraries/{itineraryID}.
func (h *HandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("ItineraryHandler").Start(r.Context(), "Get", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/{itineraryID}"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "GetItinerary"))

	id, err := uuid.Parse(chi.URLParam(r, "itineraryID"))
	if err != nil {
		l.WarnContext(ctx, "Invalid itinerary ID format", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid itinerary ID")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Invalid itinerary ID format in URL")
		return
	}
	span.SetAttributes(attribute.String("app.itinerary.id", id.String()))

	stored, err := h.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			span.SetStatus(codes.Error, "Not found")
			api.ErrorResponse(w, r, http.StatusNotFound, "Itinerary not found")
			return
		}
		l.ErrorContext(ctx, "Failed to fetch itinerary", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Fetch failed")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to fetch itinerary.")
		return
	}

	span.SetStatus(codes.Ok, "Itinerary fetched")
	api.WriteJSONResponse(w, r, http.StatusOK, stored)
}
