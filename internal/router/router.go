package api

import (
	"net/http"

	"github.com/amirulhz/go-trip-planner/internal/api/itinerary"
	"github.com/amirulhz/go-trip-planner/internal/api/planner"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config contains dependencies needed for the router setup
type Config struct {
	PlannerHandler   *planner.HandlerImpl
	ItineraryHandler *itinerary.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (logger, requestID, recoverer) are expected
// to be applied before mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/itineraries", func(r chi.Router) {
			r.Post("/plan", cfg.PlannerHandler.GeneratePlan)
			r.Post("/", cfg.ItineraryHandler.Save)
			r.Get("/{itineraryID}", cfg.ItineraryHandler.Get)
		})
	})

	return r
}
