package venue

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// Ensure implementation satisfies the interface
var _ Service = (*ServiceImpl)(nil)

// Service searches the inventory provider and normalizes its records.
type Service interface {
	SearchLodging(ctx context.Context, point types.GeoPoint, dates DateRange, partySize int) ([]types.NormalizedVenue, error)
	SearchActivities(ctx context.Context, point types.GeoPoint, theme string) ([]types.NormalizedVenue, error)
}

// ServiceImpl provides the implementation for Service.
type ServiceImpl struct {
	logger     *slog.Logger
	inventory  InventoryProvider
	normalizer *Normalizer
	maxResults int
}

// NewService creates a new venue search service instance.
func NewService(inventory InventoryProvider, normalizer *Normalizer, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{
		logger:     logger,
		inventory:  inventory,
		normalizer: normalizer,
		maxResults: 8,
	}
}

func (s *ServiceImpl) SearchLodging(ctx context.Context, point types.GeoPoint, dates DateRange, partySize int) ([]types.NormalizedVenue, error) {
	records, err := s.inventory.SearchLodging(ctx, point, dates, partySize)
	if err != nil {
		return nil, fmt.Errorf("lodging search failed: %w", err)
	}
	return s.normalizeAll(ctx, records, types.VenueCategoryLodging), nil
}

func (s *ServiceImpl) SearchActivities(ctx context.Context, point types.GeoPoint, theme string) ([]types.NormalizedVenue, error) {
	records, err := s.inventory.SearchActivities(ctx, point, theme)
	if err != nil {
		return nil, fmt.Errorf("activity search failed: %w", err)
	}
	return s.normalizeAll(ctx, records, types.VenueCategoryActivity), nil
}

func (s *ServiceImpl) normalizeAll(ctx context.Context, records []map[string]any, category types.VenueCategory) []types.NormalizedVenue {
	if len(records) > s.maxResults {
		records = records[:s.maxResults]
	}
	venues := make([]types.NormalizedVenue, 0, len(records))
	for _, rec := range records {
		venues = append(venues, s.normalizer.Normalize(rec, ProviderBooking, category))
	}
	s.logger.DebugContext(ctx, "Normalized provider records",
		slog.String("category", string(category)),
		slog.Int("count", len(venues)))
	return venues
}
