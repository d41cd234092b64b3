package planner

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/amirulhz/go-trip-planner/app/observability/metrics"
	"github.com/amirulhz/go-trip-planner/internal/api"
	"github.com/amirulhz/go-trip-planner/internal/api/location"
	"github.com/amirulhz/go-trip-planner/internal/types"
)

// HandlerImpl exposes the planning pipeline over HTTP.
type HandlerImpl struct {
	plannerService Service
	logger         *slog.Logger
}

func NewHandlerImpl(plannerService Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		plannerService: plannerService,
		logger:         logger,
	}
}

// GeneratePlan handles POST /itineraries/plan.
// A plan:null body with ok:true means structured-output recovery was
// exhausted; only an unresolvable destination is an error status.
func (h *HandlerImpl) GeneratePlan(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("PlannerHandler").Start(r.Context(), "GeneratePlan", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/itineraries/plan"),
	))
	defer span.End()

	start := time.Now()
	m := metrics.Get()
	l := h.logger.With(slog.String("handler", "GeneratePlan"))

	var req types.PlanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid planning request body", slog.Any("error", err))
		span.SetStatus(codes.Error, "Invalid request body")
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}
	if req.Destination == "" {
		l.WarnContext(ctx, "Planning request missing destination")
		span.SetStatus(codes.Error, "Destination missing")
		api.ErrorResponse(w, r, http.StatusBadRequest, "Field 'destination' is required.")
		return
	}
	span.SetAttributes(attribute.String("app.trip.destination", req.Destination))
	l = l.With(slog.String("destination", req.Destination))

	l.InfoContext(ctx, "Processing planning request")

	resp, err := h.plannerService.GeneratePlan(ctx, req)
	m.PlanRequestsTotal.Add(ctx, 1)
	m.PlanDurationSeconds.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, location.ErrGeocodeFailed) {
			m.GeocodeFailuresTotal.Add(ctx, 1)
			l.WarnContext(ctx, "Destination could not be resolved", slog.Any("error", err))
			span.SetStatus(codes.Error, "Geocode failed")
			api.ErrorResponse(w, r, http.StatusUnprocessableEntity, fmt.Sprintf("Could not resolve destination: %s", err.Error()))
			return
		}
		l.ErrorContext(ctx, "Planner service failed", slog.Any("error", err))
		span.SetStatus(codes.Error, "Service error")
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to generate itinerary.")
		return
	}

	if resp.Plan == nil {
		m.PlanRecoveryFailuresTotal.Add(ctx, 1)
		l.WarnContext(ctx, "Returning degraded response without recovered plan")
	} else {
		span.SetAttributes(attribute.Int("app.plan.days", len(resp.Plan.Days)))
	}
	span.SetStatus(codes.Ok, "Plan generated")
	api.WriteJSONResponse(w, r, http.StatusOK, resp)
}
