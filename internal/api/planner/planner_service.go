package planner

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"google.golang.org/genai"

	"github.com/amirulhz/go-trip-planner/internal/api/enrichment"
	"github.com/amirulhz/go-trip-planner/internal/api/location"
	"github.com/amirulhz/go-trip-planner/internal/api/venue"
	"github.com/amirulhz/go-trip-planner/internal/types"
)

const planTemperature = 0.5

// ContentGenerator is the outbound boundary for the language model.
type ContentGenerator interface {
	GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service runs one planning request through the full aggregation pipeline.
type Service interface {
	GeneratePlan(ctx context.Context, req types.PlanRequest) (*types.PlanResponse, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger        *slog.Logger
	resolver      location.Resolver
	venues        venue.Service
	enricher      enrichment.Service
	generator     ContentGenerator
	repairer      *Repairer
	defaultBudget float64
}

// NewService creates a new planner service instance.
func NewService(
	resolver location.Resolver,
	venues venue.Service,
	enricher enrichment.Service,
	generator ContentGenerator,
	repairer *Repairer,
	defaultBudget float64,
	logger *slog.Logger,
) *ServiceImpl {
	return &ServiceImpl{
		logger:        logger,
		resolver:      resolver,
		venues:        venues,
		enricher:      enricher,
		generator:     generator,
		repairer:      repairer,
		defaultBudget: defaultBudget,
	}
}

// GeneratePlan resolves the destination (the one hard dependency), then runs
// the travel estimate, the model call, and venue search concurrently. Every
// provider irregularity past the destination resolve degrades the result
// instead of failing it: the only fatal error is an unresolvable destination.
func (s *ServiceImpl) GeneratePlan(ctx context.Context, req types.PlanRequest) (*types.PlanResponse, error) {
	dest, err := s.resolver.Resolve(ctx, req.Destination)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve destination: %w", err)
	}
	days := TripDurationDays(req)

	var (
		origin     *types.ResolvedLocation
		travel     *types.TravelEstimate
		modelResp  *genai.GenerateContentResponse
		rawText    string
		lodging    []types.NormalizedVenue
		activities []types.NormalizedVenue
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if req.Origin == "" {
			return nil
		}
		loc, err := s.resolver.Resolve(gctx, req.Origin)
		if err != nil {
			s.logger.WarnContext(gctx, "Origin resolution failed, travel estimate skipped",
				slog.String("origin", req.Origin),
				slog.Any("error", err))
			return nil
		}
		origin = &loc
		est := s.resolver.EstimateTravel(gctx, loc.Point, dest.Point, "driving")
		travel = &est
		return nil
	})

	g.Go(func() error {
		prompt := BuildItineraryPrompt(req, s.defaultBudget)
		resp, err := s.generator.GenerateResponse(gctx, prompt, ItineraryToolConfig(planTemperature))
		if err != nil {
			s.logger.ErrorContext(gctx, "Model call failed, plan will be empty",
				slog.Any("error", err))
			return nil
		}
		modelResp = resp
		rawText = resp.Text()
		return nil
	})

	g.Go(func() error {
		dates := venue.DateRange{Start: req.StartDate, End: req.EndDate}
		found, err := s.venues.SearchLodging(gctx, dest.Point, dates, req.GroupSize)
		if err != nil {
			s.logger.WarnContext(gctx, "Lodging provider degraded, continuing with partial data",
				slog.Any("error", err))
		} else {
			lodging = found
		}

		theme := ""
		if len(req.Interests) > 0 {
			theme = req.Interests[0]
		}
		acts, err := s.venues.SearchActivities(gctx, dest.Point, theme)
		if err != nil {
			s.logger.WarnContext(gctx, "Activity provider degraded, continuing with partial data",
				slog.Any("error", err))
		} else {
			activities = acts
		}

		lodging = s.enricher.EnrichAll(gctx, lodging)
		activities = s.enricher.EnrichAll(gctx, activities)
		return nil
	})

	// Branches absorb their own failures; the group only propagates context
	// cancellation.
	if err := g.Wait(); err != nil {
		return nil, err
	}

	plan := s.repairer.ExtractPlan(modelResp)
	if plan == nil {
		s.logger.WarnContext(ctx, "Structured-output recovery exhausted, returning plan:null",
			slog.String("destination", req.Destination))
	} else if len(plan.Days) < days {
		s.logger.WarnContext(ctx, "Partial plan recovered",
			slog.Int("days_requested", days),
			slog.Int("days_recovered", len(plan.Days)))
	}

	payload := Assemble(dest, origin, travel, plan, lodging, activities, days)
	return &types.PlanResponse{
		OK:        true,
		Plan:      plan,
		Itinerary: &payload,
		Raw:       rawText,
	}, nil
}
