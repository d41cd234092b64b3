package enrichment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service backfills address/rating/thumbnail on venues the normalizer left
// incomplete. Enrichment is best-effort: a nil patch means no mutation, and
// no lookup failure ever aborts the overall plan.
type Service interface {
	Enrich(ctx context.Context, v *types.NormalizedVenue) *types.VenuePatch
	EnrichAll(ctx context.Context, venues []types.NormalizedVenue) []types.NormalizedVenue
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger  *slog.Logger
	places  PlacesProvider
	limiter *rate.Limiter
	budget  int
}

// NewService creates a new enrichment service. interval is the fixed delay
// between successive provider calls (a rate-limiting courtesy, not a
// correctness requirement); budget caps calls per EnrichAll invocation.
func NewService(places PlacesProvider, budget int, interval time.Duration, logger *slog.Logger) *ServiceImpl {
	if budget <= 0 {
		budget = 6
	}
	if interval <= 0 {
		interval = 250 * time.Millisecond
	}
	return &ServiceImpl{
		logger:  logger,
		places:  places,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		budget:  budget,
	}
}

// EnrichAll patches venues in place, skipping complete ones and stopping at
// the per-request budget. Order does not affect correctness, only latency.
func (s *ServiceImpl) EnrichAll(ctx context.Context, venues []types.NormalizedVenue) []types.NormalizedVenue {
	calls := 0
	for i := range venues {
		if !venues[i].NeedsEnrichment() {
			continue
		}
		if calls >= s.budget {
			s.logger.DebugContext(ctx, "Enrichment budget exhausted",
				slog.Int("budget", s.budget),
				slog.Int("remaining", len(venues)-i))
			break
		}
		if err := s.limiter.Wait(ctx); err != nil {
			break
		}
		calls++
		if patch := s.Enrich(ctx, &venues[i]); patch != nil {
			patch.Apply(&venues[i])
		}
	}
	return venues
}

// Enrich resolves one venue against the places provider: proximity search
// first when the record carried coordinates, then a text search combining
// name and address fragment. Returns nil on any failure.
func (s *ServiceImpl) Enrich(ctx context.Context, v *types.NormalizedVenue) *types.VenuePatch {
	candidate := s.findCandidate(ctx, v)
	if candidate == nil {
		return nil
	}

	details, err := s.places.PlaceDetails(ctx, candidate.PlaceID)
	if err != nil {
		s.logger.DebugContext(ctx, "Place details lookup failed",
			slog.String("venue", v.Name),
			slog.Any("error", err))
		return nil
	}

	patch := &types.VenuePatch{}
	if details.Address != "" {
		patch.Address = &details.Address
	}
	if details.Rating > 0 {
		patch.Rating = &details.Rating
	}
	if details.ReviewCount > 0 {
		patch.ReviewCount = &details.ReviewCount
	}
	if details.PhotoURL != "" {
		patch.ThumbnailURL = &details.PhotoURL
	}
	return patch
}

func (s *ServiceImpl) findCandidate(ctx context.Context, v *types.NormalizedVenue) *PlaceCandidate {
	if point, ok := venueCoordinates(v); ok {
		candidates, err := s.places.NearbySearch(ctx, point, v.Name)
		if err == nil && len(candidates) > 0 {
			return &candidates[0]
		}
	}

	query := v.Name
	if v.Address != nil {
		query = fmt.Sprintf("%s %s", v.Name, addressFragment(*v.Address))
	}
	candidates, err := s.places.TextSearch(ctx, query)
	if err != nil || len(candidates) == 0 {
		return nil
	}
	return &candidates[0]
}

// venueCoordinates digs a coordinate pair out of the raw provider record.
func venueCoordinates(v *types.NormalizedVenue) (types.GeoPoint, bool) {
	if v.Raw == nil {
		return types.GeoPoint{}, false
	}
	latKeys := []string{"latitude", "lat"}
	lngKeys := []string{"longitude", "lng", "lon"}
	lat, latOK := numericField(v.Raw, latKeys)
	lng, lngOK := numericField(v.Raw, lngKeys)
	if !latOK || !lngOK {
		return types.GeoPoint{}, false
	}
	p := types.GeoPoint{Lat: lat, Lng: lng}
	return p, p.Valid() && (p.Lat != 0 || p.Lng != 0)
}

func numericField(raw map[string]any, keys []string) (float64, bool) {
	for _, k := range keys {
		if val, ok := raw[k]; ok {
			if f, ok := val.(float64); ok {
				return f, true
			}
		}
	}
	return 0, false
}

// addressFragment keeps the leading portion of an address, enough to anchor
// a text search without overconstraining it.
func addressFragment(addr string) string {
	parts := strings.SplitN(addr, ",", 3)
	if len(parts) >= 2 {
		return strings.TrimSpace(parts[0] + "," + parts[1])
	}
	return strings.TrimSpace(addr)
}
