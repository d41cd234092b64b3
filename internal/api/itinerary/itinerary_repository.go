package itinerary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/amirulhz/go-trip-planner/internal/types"
)

// ErrNotFound is returned when no stored itinerary matches the given ID.
var ErrNotFound = errors.New("itinerary not found")

// DB is the subset of pgxpool.Pool the repository needs; pgxmock satisfies
// it in tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Ensure implementation satisfies the interface
var _ Repository = (*PostgresRepository)(nil)

// Repository stores composed itinerary payloads. The pipeline has no opinion
// on this schema beyond producing a stable shape; storage is plain
// key-to-JSONB persistence.
type Repository interface {
	Save(ctx context.Context, payload types.ItineraryPayload) (uuid.UUID, error)
	Get(ctx context.Context, id uuid.UUID) (*StoredItinerary, error)
}

// StoredItinerary is one persisted planning result.
type StoredItinerary struct {
	ID          uuid.UUID              `json:"id"`
	Destination string                 `json:"destination"`
	Payload     types.ItineraryPayload `json:"payload"`
}

// PostgresRepository provides the implementation for Repository.
type PostgresRepository struct {
	db     DB
	logger *slog.Logger
}

func NewPostgresRepository(db DB, logger *slog.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: logger}
}

func (r *PostgresRepository) Save(ctx context.Context, payload types.ItineraryPayload) (uuid.UUID, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to encode itinerary payload: %w", err)
	}

	id := uuid.New()
	_, err = r.db.Exec(ctx,
		`INSERT INTO itineraries (id, destination, degraded, payload) VALUES ($1, $2, $3, $4)`,
		id, payload.Destination.FormattedName, payload.Degraded, encoded)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert itinerary", slog.Any("error", err))
		return uuid.Nil, fmt.Errorf("failed to save itinerary: %w", err)
	}
	return id, nil
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*StoredItinerary, error) {
	var (
		destination string
		encoded     []byte
	)
	err := r.db.QueryRow(ctx,
		`SELECT destination, payload FROM itineraries WHERE id = $1`, id).
		Scan(&destination, &encoded)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch itinerary: %w", err)
	}

	stored := &StoredItinerary{ID: id, Destination: destination}
	if err := json.Unmarshal(encoded, &stored.Payload); err != nil {
		return nil, fmt.Errorf("failed to decode stored payload: %w", err)
	}
	return stored, nil
}
