package location

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// ErrGeocodeFailed is returned only when both the routing provider and the
// static gazetteer failed to match the input. Every other irregularity is
// absorbed by a fallback path.
var ErrGeocodeFailed = errors.New("geocode failed: no provider result and no gazetteer match")

// Regional sanity bounds. Provider results outside this box are treated as
// out-of-scope ambiguous matches and lose to the gazetteer.
const (
	regionMinLat = 0.5
	regionMaxLat = 7.6
	regionMinLng = 98.5
	regionMaxLng = 119.5
)

// GeocodeResult is the raw provider answer for a single geocode call.
type GeocodeResult struct {
	Lat              float64
	Lng              float64
	FormattedAddress string
}

// MatrixResult is one element of a provider distance-matrix response.
// Status is the element-level status ("OK" when usable).
type MatrixResult struct {
	Status          string
	DistanceMeters  float64
	DistanceText    string
	DurationSeconds float64
	DurationText    string
}

// RoutingProvider is the outbound capability boundary for geocoding and
// route estimation. The default implementation speaks a Google-Maps-shaped
// HTTP API; tests substitute mocks.
type RoutingProvider interface {
	Geocode(ctx context.Context, query string) (*GeocodeResult, error)
	DistanceMatrix(ctx context.Context, origin, destination types.GeoPoint, mode string) (*MatrixResult, error)
}

// Ensure implementation satisfies the interface
var _ Resolver = (*ResolverImpl)(nil)

// Resolver turns free-text place names or raw coordinates into canonical
// resolved locations and estimates travel between them.
type Resolver interface {
	Resolve(ctx context.Context, query string) (types.ResolvedLocation, error)
	ResolvePoint(ctx context.Context, point types.GeoPoint) (types.ResolvedLocation, error)
	EstimateTravel(ctx context.Context, origin, destination types.GeoPoint, mode string) types.TravelEstimate
}

// ResolverImpl provides the implementation for Resolver.
type ResolverImpl struct {
	logger           *slog.Logger
	provider         RoutingProvider
	gazetteer        *Gazetteer
	fallbackSpeedKmh float64
}

// NewResolver creates a new location resolver instance.
func NewResolver(provider RoutingProvider, gazetteer *Gazetteer, fallbackSpeedKmh float64, logger *slog.Logger) *ResolverImpl {
	if fallbackSpeedKmh <= 0 {
		fallbackSpeedKmh = 70
	}
	return &ResolverImpl{
		logger:           logger,
		provider:         provider,
		gazetteer:        gazetteer,
		fallbackSpeedKmh: fallbackSpeedKmh,
	}
}

// Resolve tries the gazetteer before the network call: for short regional
// names the curated table is more trustworthy than an ambiguous provider
// match. The provider is consulted only for unknown names, and its answer is
// rejected when it lands outside the regional sanity bounds.
func (r *ResolverImpl) Resolve(ctx context.Context, query string) (types.ResolvedLocation, error) {
	if loc, ok := r.gazetteer.Lookup(query); ok {
		r.logger.DebugContext(ctx, "Resolved location from gazetteer",
			slog.String("query", query),
			slog.String("name", loc.FormattedName))
		return loc, nil
	}

	res, err := r.provider.Geocode(ctx, query)
	if err != nil {
		r.logger.WarnContext(ctx, "Geocoding provider failed",
			slog.String("query", query),
			slog.Any("error", err))
		return types.ResolvedLocation{}, fmt.Errorf("%w: %q", ErrGeocodeFailed, query)
	}
	if res == nil {
		return types.ResolvedLocation{}, fmt.Errorf("%w: %q", ErrGeocodeFailed, query)
	}

	point := types.GeoPoint{Lat: res.Lat, Lng: res.Lng}
	if !point.Valid() || !inRegion(point) {
		r.logger.WarnContext(ctx, "Provider geocode result outside regional bounds, rejecting",
			slog.String("query", query),
			slog.Float64("lat", res.Lat),
			slog.Float64("lng", res.Lng))
		return types.ResolvedLocation{}, fmt.Errorf("%w: %q", ErrGeocodeFailed, query)
	}

	return types.ResolvedLocation{
		Point:         point,
		FormattedName: res.FormattedAddress,
		Source:        types.LocationSourceProvider,
	}, nil
}

// ResolvePoint canonicalizes a raw coordinate pair without a network call.
func (r *ResolverImpl) ResolvePoint(ctx context.Context, point types.GeoPoint) (types.ResolvedLocation, error) {
	if !point.Valid() {
		return types.ResolvedLocation{}, fmt.Errorf("%w: coordinates out of range (%f, %f)", ErrGeocodeFailed, point.Lat, point.Lng)
	}
	return types.ResolvedLocation{
		Point:         point,
		FormattedName: fmt.Sprintf("%.5f, %.5f", point.Lat, point.Lng),
		Source:        types.LocationSourceProvider,
	}, nil
}

// EstimateTravel never fails: on any provider error, timeout, or non-OK
// element status it degrades to a great-circle distance at the configured
// average road speed and marks the estimate accordingly.
func (r *ResolverImpl) EstimateTravel(ctx context.Context, origin, destination types.GeoPoint, mode string) types.TravelEstimate {
	if mode == "" {
		mode = "driving"
	}
	res, err := r.provider.DistanceMatrix(ctx, origin, destination, mode)
	if err != nil {
		r.logger.WarnContext(ctx, "Distance matrix call failed, using haversine estimate",
			slog.String("mode", mode),
			slog.Any("error", err))
		return r.haversineEstimate(origin, destination)
	}
	if res == nil || res.Status != "OK" {
		status := "nil"
		if res != nil {
			status = res.Status
		}
		r.logger.WarnContext(ctx, "Distance matrix element not OK, using haversine estimate",
			slog.String("element_status", status))
		return r.haversineEstimate(origin, destination)
	}

	if res.DistanceMeters > 0 && res.DurationSeconds <= 0 {
		// An OK element with distance but no duration is still malformed;
		// treat it like any other degraded element.
		r.logger.WarnContext(ctx, "Distance matrix element missing duration, using haversine estimate",
			slog.Float64("distance_meters", res.DistanceMeters))
		return r.haversineEstimate(origin, destination)
	}

	est := types.TravelEstimate{
		DistanceMeters:  res.DistanceMeters,
		DistanceText:    res.DistanceText,
		DurationSeconds: res.DurationSeconds,
		DurationText:    res.DurationText,
		Source:          types.EstimateSourceProvider,
	}
	if est.DistanceText == "" {
		est.DistanceText = formatDistance(est.DistanceMeters)
	}
	if est.DurationText == "" {
		est.DurationText = formatDuration(est.DurationSeconds)
	}
	return est
}

func (r *ResolverImpl) haversineEstimate(origin, destination types.GeoPoint) types.TravelEstimate {
	meters := HaversineMeters(origin, destination)
	seconds := meters / (r.fallbackSpeedKmh * 1000 / 3600)
	return types.TravelEstimate{
		DistanceMeters:  meters,
		DistanceText:    formatDistance(meters),
		DurationSeconds: seconds,
		DurationText:    formatDuration(seconds),
		Source:          types.EstimateSourceHaversine,
	}
}

// HaversineMeters calculates the great-circle distance between two
// coordinates in meters.
func HaversineMeters(a, b types.GeoPoint) float64 {
	const earthRadiusM = 6371000

	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dlat := (b.Lat - a.Lat) * math.Pi / 180
	dlng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusM * c
}

func inRegion(p types.GeoPoint) bool {
	return p.Lat >= regionMinLat && p.Lat <= regionMaxLat &&
		p.Lng >= regionMinLng && p.Lng <= regionMaxLng
}

func formatDistance(meters float64) string {
	if meters < 1000 {
		return fmt.Sprintf("%.0f m", meters)
	}
	return fmt.Sprintf("%.1f km", meters/1000)
}

func formatDuration(seconds float64) string {
	mins := int(math.Round(seconds / 60))
	if mins < 1 {
		mins = 1
	}
	hours := mins / 60
	mins = mins % 60
	switch {
	case hours == 0:
		return fmt.Sprintf("%d min", mins)
	case mins == 0:
		return fmt.Sprintf("%d hr", hours)
	default:
		return fmt.Sprintf("%d hr %d min", hours, mins)
	}
}
