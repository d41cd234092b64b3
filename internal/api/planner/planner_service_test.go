package planner

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/genai"

	"github.com/amirulhz/go-trip-planner/internal/api/venue"
	"github.com/amirulhz/go-trip-planner/internal/types"
)

// MockResolver is a mock implementation of location.Resolver
type MockResolver struct {
	mock.Mock
}

func (m *MockResolver) Resolve(ctx context.Context, query string) (types.ResolvedLocation, error) {
	args := m.Called(ctx, query)
	return args.Get(0).(types.ResolvedLocation), args.Error(1)
}

func (m *MockResolver) ResolvePoint(ctx context.Context, point types.GeoPoint) (types.ResolvedLocation, error) {
	args := m.Called(ctx, point)
	return args.Get(0).(types.ResolvedLocation), args.Error(1)
}

func (m *MockResolver) EstimateTravel(ctx context.Context, origin, destination types.GeoPoint, mode string) types.TravelEstimate {
	args := m.Called(ctx, origin, destination, mode)
	return args.Get(0).(types.TravelEstimate)
}

// MockVenueService is a mock implementation of venue.Service
type MockVenueService struct {
	mock.Mock
}

func (m *MockVenueService) SearchLodging(ctx context.Context, point types.GeoPoint, dates venue.DateRange, partySize int) ([]types.NormalizedVenue, error) {
	args := m.Called(ctx, point, dates, partySize)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.NormalizedVenue), args.Error(1)
}

func (m *MockVenueService) SearchActivities(ctx context.Context, point types.GeoPoint, theme string) ([]types.NormalizedVenue, error) {
	args := m.Called(ctx, point, theme)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.NormalizedVenue), args.Error(1)
}

// MockEnricher is a pass-through mock for enrichment.Service
type MockEnricher struct {
	mock.Mock
}

func (m *MockEnricher) Enrich(ctx context.Context, v *types.NormalizedVenue) *types.VenuePatch {
	args := m.Called(ctx, v)
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).(*types.VenuePatch)
}

func (m *MockEnricher) EnrichAll(ctx context.Context, venues []types.NormalizedVenue) []types.NormalizedVenue {
	m.Called(ctx, venues)
	return venues
}

// MockGenerator is a mock implementation of ContentGenerator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateResponse(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	args := m.Called(ctx, prompt, config)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*genai.GenerateContentResponse), args.Error(1)
}

func penangLocation() types.ResolvedLocation {
	return types.ResolvedLocation{
		Point:         types.GeoPoint{Lat: 5.416393, Lng: 100.332680},
		FormattedName: "Penang, Malaysia",
		Source:        types.LocationSourceGazetteer,
	}
}

func klLocation() types.ResolvedLocation {
	return types.ResolvedLocation{
		Point:         types.GeoPoint{Lat: 3.139003, Lng: 101.686855},
		FormattedName: "Kuala Lumpur, Malaysia",
		Source:        types.LocationSourceGazetteer,
	}
}

func twoDayPlanResponse() *genai.GenerateContentResponse {
	return functionCallResponse(CreateItineraryFunction, map[string]any{
		"summary": map[string]any{"title": "Penang in Two Days"},
		"days": []any{
			map[string]any{"day": 1, "segments": []any{map[string]any{"title": "Clan jetties"}}},
			map[string]any{"day": 2, "segments": []any{map[string]any{"title": "Penang Hill"}}},
		},
	})
}

func TestGeneratePlanHappyPath(t *testing.T) {
	mockResolver := new(MockResolver)
	mockVenues := new(MockVenueService)
	mockEnricher := new(MockEnricher)
	mockGenerator := new(MockGenerator)
	service := NewService(mockResolver, mockVenues, mockEnricher, mockGenerator, NewRepairer(0, slog.Default()), 1500, slog.Default())

	req := types.PlanRequest{
		Destination:  "Penang",
		Origin:       "Kuala Lumpur",
		DurationDays: 2,
		Interests:    []string{"street food"},
	}

	dest := penangLocation()
	origin := klLocation()
	est := types.TravelEstimate{DistanceMeters: 355000, DurationSeconds: 14400, Source: types.EstimateSourceProvider}
	lodging := []types.NormalizedVenue{{Name: "Eastern & Oriental", Category: types.VenueCategoryLodging}}
	activities := []types.NormalizedVenue{{Name: "Penang Hill Funicular", Category: types.VenueCategoryActivity}}

	mockResolver.On("Resolve", mock.Anything, "Penang").Return(dest, nil)
	mockResolver.On("Resolve", mock.Anything, "Kuala Lumpur").Return(origin, nil)
	mockResolver.On("EstimateTravel", mock.Anything, origin.Point, dest.Point, "driving").Return(est)
	mockGenerator.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).Return(twoDayPlanResponse(), nil)
	mockVenues.On("SearchLodging", mock.Anything, dest.Point, venue.DateRange{}, 0).Return(lodging, nil)
	mockVenues.On("SearchActivities", mock.Anything, dest.Point, "street food").Return(activities, nil)
	mockEnricher.On("EnrichAll", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.GeneratePlan(context.Background(), req)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.True(t, resp.OK)
		if assert.NotNil(t, resp.Plan) {
			assert.Equal(t, "Penang in Two Days", resp.Plan.Summary.Title)
			assert.Len(t, resp.Plan.Days, 2)
		}
		if assert.NotNil(t, resp.Itinerary) {
			assert.False(t, resp.Itinerary.Degraded)
			assert.Equal(t, 2, resp.Itinerary.DaysRequested)
			assert.Equal(t, "Penang, Malaysia", resp.Itinerary.Destination.FormattedName)
			if assert.NotNil(t, resp.Itinerary.Travel) {
				assert.Equal(t, types.EstimateSourceProvider, resp.Itinerary.Travel.Source)
			}
			assert.Len(t, resp.Itinerary.Lodging, 1)
			assert.Len(t, resp.Itinerary.Activities, 1)
		}
	}
	mockResolver.AssertExpectations(t)
	mockVenues.AssertExpectations(t)
	mockGenerator.AssertExpectations(t)
}

func TestGeneratePlanUnresolvableDestination(t *testing.T) {
	mockResolver := new(MockResolver)
	service := NewService(mockResolver, new(MockVenueService), new(MockEnricher), new(MockGenerator), NewRepairer(0, slog.Default()), 1500, slog.Default())

	mockResolver.On("Resolve", mock.Anything, "Zzqxv9").
		Return(types.ResolvedLocation{}, errors.New("geocode failed"))

	resp, err := service.GeneratePlan(context.Background(), types.PlanRequest{Destination: "Zzqxv9"})

	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestGeneratePlanDegradedProviders(t *testing.T) {
	mockResolver := new(MockResolver)
	mockVenues := new(MockVenueService)
	mockEnricher := new(MockEnricher)
	mockGenerator := new(MockGenerator)
	service := NewService(mockResolver, mockVenues, mockEnricher, mockGenerator, NewRepairer(0, slog.Default()), 1500, slog.Default())

	req := types.PlanRequest{Destination: "Penang", DurationDays: 2}
	dest := penangLocation()

	// Every optional collaborator fails; the pipeline must still answer.
	mockResolver.On("Resolve", mock.Anything, "Penang").Return(dest, nil)
	mockGenerator.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("model unavailable"))
	mockVenues.On("SearchLodging", mock.Anything, dest.Point, venue.DateRange{}, 0).
		Return(nil, errors.New("provider 502"))
	mockVenues.On("SearchActivities", mock.Anything, dest.Point, "").
		Return(nil, errors.New("provider 502"))
	mockEnricher.On("EnrichAll", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.GeneratePlan(context.Background(), req)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) {
		assert.True(t, resp.OK)
		assert.Nil(t, resp.Plan)
		if assert.NotNil(t, resp.Itinerary) {
			assert.True(t, resp.Itinerary.Degraded)
			assert.Empty(t, resp.Itinerary.Lodging)
			assert.Empty(t, resp.Itinerary.Activities)
			assert.Nil(t, resp.Itinerary.Travel)
		}
	}
}

func TestGeneratePlanPartialDaysMarksDegraded(t *testing.T) {
	mockResolver := new(MockResolver)
	mockVenues := new(MockVenueService)
	mockEnricher := new(MockEnricher)
	mockGenerator := new(MockGenerator)
	service := NewService(mockResolver, mockVenues, mockEnricher, mockGenerator, NewRepairer(0, slog.Default()), 1500, slog.Default())

	req := types.PlanRequest{Destination: "Penang", DurationDays: 4}
	dest := penangLocation()

	mockResolver.On("Resolve", mock.Anything, "Penang").Return(dest, nil)
	mockGenerator.On("GenerateResponse", mock.Anything, mock.Anything, mock.Anything).
		Return(twoDayPlanResponse(), nil)
	mockVenues.On("SearchLodging", mock.Anything, dest.Point, venue.DateRange{}, 0).
		Return([]types.NormalizedVenue{}, nil)
	mockVenues.On("SearchActivities", mock.Anything, dest.Point, "").
		Return([]types.NormalizedVenue{}, nil)
	mockEnricher.On("EnrichAll", mock.Anything, mock.Anything).Return(nil)

	resp, err := service.GeneratePlan(context.Background(), req)

	assert.NoError(t, err)
	if assert.NotNil(t, resp) && assert.NotNil(t, resp.Itinerary) {
		assert.NotNil(t, resp.Plan)
		assert.True(t, resp.Itinerary.Degraded)
		assert.Equal(t, 4, resp.Itinerary.DaysRequested)
	}
}

func TestAssembleDegradedFlags(t *testing.T) {
	dest := penangLocation()
	plan := &types.StructuredItineraryPlan{
		Summary: types.PlanSummary{Title: "Full"},
		Days:    []types.PlanDay{{Day: 1}, {Day: 2}},
	}

	full := Assemble(dest, nil, nil, plan, nil, nil, 2)
	assert.False(t, full.Degraded)

	partial := Assemble(dest, nil, nil, plan, nil, nil, 3)
	assert.True(t, partial.Degraded)

	missing := Assemble(dest, nil, nil, nil, nil, nil, 2)
	assert.True(t, missing.Degraded)
	assert.False(t, missing.GeneratedAt.IsZero())
}
