package location

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// MockRoutingProvider is a mock implementation of RoutingProvider
type MockRoutingProvider struct {
	mock.Mock
}

func (m *MockRoutingProvider) Geocode(ctx context.Context, query string) (*GeocodeResult, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*GeocodeResult), args.Error(1)
}

func (m *MockRoutingProvider) DistanceMatrix(ctx context.Context, origin, destination types.GeoPoint, mode string) (*MatrixResult, error) {
	args := m.Called(ctx, origin, destination, mode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MatrixResult), args.Error(1)
}

func TestResolveGazetteerHit(t *testing.T) {
	mockProvider := new(MockRoutingProvider)
	resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	tests := []struct {
		query string
		name  string
	}{
		{"Kuala Lumpur", "Kuala Lumpur, Malaysia"},
		{"weekend trip to KL", "Kuala Lumpur, Malaysia"},
		{"penang", "Penang, Malaysia"},
		{"Melaka", "Malacca, Malaysia"},
	}

	for _, tc := range tests {
		t.Run(tc.query, func(t *testing.T) {
			loc, err := resolver.Resolve(ctx, tc.query)

			assert.NoError(t, err)
			assert.Equal(t, tc.name, loc.FormattedName)
			assert.Equal(t, types.LocationSourceGazetteer, loc.Source)
			assert.True(t, loc.Point.Valid())
		})
	}

	// The provider must never have been consulted.
	mockProvider.AssertNotCalled(t, "Geocode", mock.Anything, mock.Anything)
}

func TestGazetteerShortKeyWholeWordOnly(t *testing.T) {
	g := NewGazetteer()

	_, ok := g.Lookup("klang valley tour")
	assert.False(t, ok)

	loc, ok := g.Lookup("3 days in kl, food focus")
	assert.True(t, ok)
	assert.Equal(t, "Kuala Lumpur, Malaysia", loc.FormattedName)
}

func TestResolveProviderFallback(t *testing.T) {
	mockProvider := new(MockRoutingProvider)
	resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	mockProvider.On("Geocode", ctx, "Taman Negara").Return(&GeocodeResult{
		Lat:              4.3839,
		Lng:              102.4000,
		FormattedAddress: "Taman Negara National Park, Pahang, Malaysia",
	}, nil)

	loc, err := resolver.Resolve(ctx, "Taman Negara")

	assert.NoError(t, err)
	assert.Equal(t, types.LocationSourceProvider, loc.Source)
	assert.Equal(t, "Taman Negara National Park, Pahang, Malaysia", loc.FormattedName)
	mockProvider.AssertExpectations(t)
}

func TestResolveUnknownPlace(t *testing.T) {
	mockProvider := new(MockRoutingProvider)
	resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	mockProvider.On("Geocode", ctx, "Zzqxv9").Return(nil, errors.New("ZERO_RESULTS"))

	_, err := resolver.Resolve(ctx, "Zzqxv9")

	assert.ErrorIs(t, err, ErrGeocodeFailed)
}

func TestResolveRejectsOutOfRegionResult(t *testing.T) {
	mockProvider := new(MockRoutingProvider)
	resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	// A London match for an ambiguous name is worse than no match.
	mockProvider.On("Geocode", ctx, "Victoria Park").Return(&GeocodeResult{
		Lat:              51.5362,
		Lng:              -0.0385,
		FormattedAddress: "Victoria Park, London, UK",
	}, nil)

	_, err := resolver.Resolve(ctx, "Victoria Park")

	assert.ErrorIs(t, err, ErrGeocodeFailed)
}

func TestResolvePoint(t *testing.T) {
	resolver := NewResolver(new(MockRoutingProvider), NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	loc, err := resolver.ResolvePoint(ctx, types.GeoPoint{Lat: 3.1570, Lng: 101.7123})
	assert.NoError(t, err)
	assert.Equal(t, "3.15700, 101.71230", loc.FormattedName)

	_, err = resolver.ResolvePoint(ctx, types.GeoPoint{Lat: 123, Lng: 500})
	assert.ErrorIs(t, err, ErrGeocodeFailed)
}

func TestEstimateTravelProviderResult(t *testing.T) {
	mockProvider := new(MockRoutingProvider)
	resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
	ctx := context.Background()

	origin := types.GeoPoint{Lat: 3.139003, Lng: 101.686855}
	dest := types.GeoPoint{Lat: 5.416393, Lng: 100.332680}

	mockProvider.On("DistanceMatrix", ctx, origin, dest, "driving").Return(&MatrixResult{
		Status:          "OK",
		DistanceMeters:  355000,
		DistanceText:    "355 km",
		DurationSeconds: 14400,
		DurationText:    "4 hours",
	}, nil)

	est := resolver.EstimateTravel(ctx, origin, dest, "driving")

	assert.Equal(t, types.EstimateSourceProvider, est.Source)
	assert.Equal(t, 355000.0, est.DistanceMeters)
	assert.Equal(t, "4 hours", est.DurationText)
}

func TestEstimateTravelHaversineFallback(t *testing.T) {
	origin := types.GeoPoint{Lat: 3.139003, Lng: 101.686855}
	dest := types.GeoPoint{Lat: 5.416393, Lng: 100.332680}

	tests := []struct {
		name      string
		setupMock func(m *MockRoutingProvider, ctx context.Context)
	}{
		{
			name: "provider error",
			setupMock: func(m *MockRoutingProvider, ctx context.Context) {
				m.On("DistanceMatrix", ctx, origin, dest, "driving").Return(nil, context.DeadlineExceeded)
			},
		},
		{
			name: "element not OK",
			setupMock: func(m *MockRoutingProvider, ctx context.Context) {
				m.On("DistanceMatrix", ctx, origin, dest, "driving").Return(&MatrixResult{Status: "ZERO_RESULTS"}, nil)
			},
		},
		{
			name: "OK element with distance but no duration",
			setupMock: func(m *MockRoutingProvider, ctx context.Context) {
				m.On("DistanceMatrix", ctx, origin, dest, "driving").Return(&MatrixResult{Status: "OK", DistanceMeters: 355000}, nil)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			mockProvider := new(MockRoutingProvider)
			resolver := NewResolver(mockProvider, NewGazetteer(), 70, slog.Default())
			ctx := context.Background()
			tc.setupMock(mockProvider, ctx)

			est := resolver.EstimateTravel(ctx, origin, dest, "")

			assert.Equal(t, types.EstimateSourceHaversine, est.Source)
			assert.Greater(t, est.DistanceMeters, 0.0)
			assert.Greater(t, est.DurationSeconds, 0.0)
			// Duration derives from the fallback road speed.
			wantSeconds := est.DistanceMeters / (70 * 1000.0 / 3600.0)
			assert.InDelta(t, wantSeconds, est.DurationSeconds, 0.01)
			assert.NotEmpty(t, est.DistanceText)
			assert.NotEmpty(t, est.DurationText)
		})
	}
}

func TestHaversineMeters(t *testing.T) {
	kl := types.GeoPoint{Lat: 3.139003, Lng: 101.686855}
	penang := types.GeoPoint{Lat: 5.416393, Lng: 100.332680}

	// KL to Penang is roughly 290 km great-circle.
	d := HaversineMeters(kl, penang)
	assert.InDelta(t, 290000, d, 15000)

	// Zero distance to itself.
	assert.InDelta(t, 0, HaversineMeters(kl, kl), 0.001)

	// Symmetric.
	assert.InDelta(t, d, HaversineMeters(penang, kl), 0.001)
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "850 m", formatDistance(850))
	assert.Equal(t, "12.5 km", formatDistance(12500))

	assert.Equal(t, "1 min", formatDuration(10))
	assert.Equal(t, "45 min", formatDuration(45*60))
	assert.Equal(t, "2 hr", formatDuration(2*3600))
	assert.Equal(t, "1 hr 30 min", formatDuration(90*60))
}
