package container

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"

	database "github.com/amirulhz/go-trip-planner/app/db"
	"github.com/amirulhz/go-trip-planner/config"
	"github.com/amirulhz/go-trip-planner/internal/api/enrichment"
	generativeAI "github.com/amirulhz/go-trip-planner/internal/api/generative_ai"
	"github.com/amirulhz/go-trip-planner/internal/api/itinerary"
	"github.com/amirulhz/go-trip-planner/internal/api/location"
	"github.com/amirulhz/go-trip-planner/internal/api/planner"
	"github.com/amirulhz/go-trip-planner/internal/api/venue"
)

// Container holds all application dependencies
type Container struct {
	Config           *config.Config
	Logger           *slog.Logger
	Pool             *pgxpool.Pool
	PlannerHandler   *planner.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
}

// NewContainer initializes and returns a new dependency container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	// Initialize database
	dbConfig, err := database.NewDatabaseConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to generate database config", slog.Any("error", err))
		return nil, err
	}

	pool, err := database.Init(dbConfig.ConnectionURL, logger)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.Any("error", err))
		return nil, err
	}

	mapsKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	rapidKey := os.Getenv("RAPIDAPI_KEY")

	// Location resolution
	routingClient := location.NewHTTPRoutingClient(cfg.Providers.Routing.BaseURL, mapsKey, cfg.Providers.Routing.Timeout, logger)
	resolver := location.NewResolver(routingClient, location.NewGazetteer(), cfg.Pipeline.FallbackSpeedKmh, logger)

	// Venue search and normalization
	inventoryClient := venue.NewHTTPInventoryClient(cfg.Providers.Inventory.BaseURL, rapidKey, cfg.Providers.Inventory.Host, cfg.Providers.Inventory.Timeout, logger)
	venueService := venue.NewService(inventoryClient, venue.NewNormalizer(logger), logger)

	// Secondary enrichment
	placesClient := enrichment.NewHTTPPlacesClient(cfg.Providers.Places.BaseURL, mapsKey, cfg.Providers.Places.Timeout, logger)
	enrichmentService := enrichment.NewService(placesClient, cfg.Pipeline.EnrichmentBudget, cfg.Pipeline.EnrichmentInterval, logger)

	// Model client and plan recovery
	aiClient, err := generativeAI.NewAIClient(ctx)
	if err != nil {
		logger.Error("Failed to initialize AI client", slog.Any("error", err))
		return nil, err
	}
	repairer := planner.NewRepairer(cfg.Pipeline.RepairIterations, logger)

	plannerService := planner.NewService(resolver, venueService, enrichmentService, aiClient, repairer, cfg.Pipeline.DefaultBudget, logger)
	plannerHandler := planner.NewHandlerImpl(plannerService, logger)

	itineraryRepo := itinerary.NewPostgresRepository(pool, logger)
	itineraryHandler := itinerary.NewHandlerImpl(itineraryRepo, logger)

	return &Container{
		Config:           cfg,
		Logger:           logger,
		Pool:             pool,
		PlannerHandler:   plannerHandler,
		ItineraryHandler: itineraryHandler,
	}, nil
}

// Close releases all resources held by the container
func (c *Container) Close() {
	if c.Pool != nil {
		c.Pool.Close()
	}
}

// WaitForDB waits for the database to be ready
func (c *Container) WaitForDB(ctx context.Context) bool {
	return database.WaitForDB(ctx, c.Pool, c.Logger)
}

// RunMigrations runs database migrations
func (c *Container) RunMigrations(connectionURL string) error {
	return database.RunMigrations(connectionURL, c.Logger)
}
