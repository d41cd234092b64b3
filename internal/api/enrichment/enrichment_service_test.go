package enrichment

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// MockPlacesProvider is a mock implementation of PlacesProvider
type MockPlacesProvider struct {
	mock.Mock
}

func (m *MockPlacesProvider) NearbySearch(ctx context.Context, point types.GeoPoint, keyword string) ([]PlaceCandidate, error) {
	args := m.Called(ctx, point, keyword)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PlaceCandidate), args.Error(1)
}

func (m *MockPlacesProvider) TextSearch(ctx context.Context, query string) ([]PlaceCandidate, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]PlaceCandidate), args.Error(1)
}

func (m *MockPlacesProvider) PlaceDetails(ctx context.Context, placeID string) (*PlaceDetails, error) {
	args := m.Called(ctx, placeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*PlaceDetails), args.Error(1)
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func TestEnrichBackfillsOnlyMissingFields(t *testing.T) {
	mockPlaces := new(MockPlacesProvider)
	service := NewService(mockPlaces, 6, time.Millisecond, slog.Default())
	ctx := context.Background()

	// Rating already present; address and thumbnail missing.
	venue := types.NormalizedVenue{
		Name:   "Nasi Kandar Line Clear",
		Rating: f64Ptr(4.3),
		Raw:    map[string]any{"latitude": 5.4185, "longitude": 100.3327},
	}

	mockPlaces.On("NearbySearch", ctx, types.GeoPoint{Lat: 5.4185, Lng: 100.3327}, venue.Name).
		Return([]PlaceCandidate{{PlaceID: "place-123", Name: venue.Name}}, nil)
	mockPlaces.On("PlaceDetails", ctx, "place-123").Return(&PlaceDetails{
		Address:     "177, Penang Road, George Town",
		Rating:      4.1,
		ReviewCount: 8200,
		PhotoURL:    "https://places.example/photo.jpg",
	}, nil)

	patch := service.Enrich(ctx, &venue)
	if assert.NotNil(t, patch) {
		patch.Apply(&venue)
	}

	if assert.NotNil(t, venue.Address) {
		assert.Equal(t, "177, Penang Road, George Town", *venue.Address)
	}
	if assert.NotNil(t, venue.ThumbnailURL) {
		assert.Equal(t, "https://places.example/photo.jpg", *venue.ThumbnailURL)
	}
	// The existing rating must survive the patch.
	assert.Equal(t, 4.3, *venue.Rating)
	mockPlaces.AssertExpectations(t)
}

func TestEnrichTextSearchFallback(t *testing.T) {
	mockPlaces := new(MockPlacesProvider)
	service := NewService(mockPlaces, 6, time.Millisecond, slog.Default())
	ctx := context.Background()

	// No coordinates in the raw record, so only text search applies.
	venue := types.NormalizedVenue{
		Name:    "Petronas Twin Towers",
		Address: strPtr("Concourse Level, Lower Ground, KLCC, 50088 Kuala Lumpur"),
	}

	mockPlaces.On("TextSearch", ctx, "Petronas Twin Towers Concourse Level, Lower Ground").
		Return([]PlaceCandidate{{PlaceID: "place-klcc"}}, nil)
	mockPlaces.On("PlaceDetails", ctx, "place-klcc").Return(&PlaceDetails{Rating: 4.6}, nil)

	patch := service.Enrich(ctx, &venue)

	if assert.NotNil(t, patch) {
		assert.Equal(t, 4.6, *patch.Rating)
		assert.Nil(t, patch.Address)
	}
	mockPlaces.AssertExpectations(t)
}

func TestEnrichReturnsNilOnProviderFailure(t *testing.T) {
	mockPlaces := new(MockPlacesProvider)
	service := NewService(mockPlaces, 6, time.Millisecond, slog.Default())
	ctx := context.Background()

	venue := types.NormalizedVenue{Name: "Some Cafe"}

	t.Run("search fails", func(t *testing.T) {
		mockPlaces.On("TextSearch", ctx, "Some Cafe").Return(nil, errors.New("quota exceeded")).Once()
		assert.Nil(t, service.Enrich(ctx, &venue))
	})

	t.Run("no candidates", func(t *testing.T) {
		mockPlaces.On("TextSearch", ctx, "Some Cafe").Return([]PlaceCandidate{}, nil).Once()
		assert.Nil(t, service.Enrich(ctx, &venue))
	})

	t.Run("details fail", func(t *testing.T) {
		mockPlaces.On("TextSearch", ctx, "Some Cafe").Return([]PlaceCandidate{{PlaceID: "p1"}}, nil).Once()
		mockPlaces.On("PlaceDetails", ctx, "p1").Return(nil, errors.New("NOT_FOUND")).Once()
		assert.Nil(t, service.Enrich(ctx, &venue))
	})
}

func TestEnrichAllRespectsBudget(t *testing.T) {
	mockPlaces := new(MockPlacesProvider)
	service := NewService(mockPlaces, 2, time.Millisecond, slog.Default())
	ctx := context.Background()

	venues := make([]types.NormalizedVenue, 5)
	for i := range venues {
		venues[i] = types.NormalizedVenue{Name: "Venue"}
	}

	mockPlaces.On("TextSearch", ctx, "Venue").Return([]PlaceCandidate{{PlaceID: "p"}}, nil)
	mockPlaces.On("PlaceDetails", ctx, "p").Return(&PlaceDetails{Address: "Jalan Alor, KL"}, nil)

	out := service.EnrichAll(ctx, venues)

	// Only the first two within budget got patched.
	assert.NotNil(t, out[0].Address)
	assert.NotNil(t, out[1].Address)
	for _, v := range out[2:] {
		assert.Nil(t, v.Address)
	}
	mockPlaces.AssertNumberOfCalls(t, "PlaceDetails", 2)
}

func TestEnrichAllSkipsCompleteVenues(t *testing.T) {
	mockPlaces := new(MockPlacesProvider)
	service := NewService(mockPlaces, 6, time.Millisecond, slog.Default())
	ctx := context.Background()

	complete := types.NormalizedVenue{
		Name:         "Complete Hotel",
		Address:      strPtr("Jalan Sultan Ismail"),
		Rating:       f64Ptr(4.5),
		ThumbnailURL: strPtr("https://x.example/t.jpg"),
	}

	out := service.EnrichAll(ctx, []types.NormalizedVenue{complete})

	assert.Equal(t, complete.Name, out[0].Name)
	mockPlaces.AssertNotCalled(t, "TextSearch", mock.Anything, mock.Anything)
	mockPlaces.AssertNotCalled(t, "NearbySearch", mock.Anything, mock.Anything, mock.Anything)
}

func TestAddressFragment(t *testing.T) {
	assert.Equal(t, "177, Penang Road", addressFragment("177, Penang Road, 10000 George Town, Penang"))
	assert.Equal(t, "Jalan Alor", addressFragment("Jalan Alor"))
}
