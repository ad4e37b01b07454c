package account

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository answers owner-existence checks against the marketplace user store.
// Accounts are owned by the wider marketplace; this subsystem never creates them.
type Repository interface {
	Exists(ctx context.Context, ownerID string) (bool, error)
}

// PostgresRepository implements Repository over the shared users table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed account repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Exists reports whether the owner identifier resolves to a registered user.
func (r *PostgresRepository) Exists(ctx context.Context, ownerID string) (bool, error) {
	userID, err := uuid.Parse(ownerID)
	if err != nil {
		return false, nil
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

type memoryRepository struct {
	known map[string]struct{}
}

// NewMemoryRepository builds an in-memory account store seeded with the given
// owner identifiers. Useful for tests and development mode.
func NewMemoryRepository(ownerIDs ...string) Repository {
	known := make(map[string]struct{}, len(ownerIDs))
	for _, id := range ownerIDs {
		known[id] = struct{}{}
	}
	return &memoryRepository{known: known}
}

func (r *memoryRepository) Exists(_ context.Context, ownerID string) (bool, error) {
	if ownerID == "" {
		return false, errors.New("owner id is required")
	}
	_, ok := r.known[ownerID]
	return ok, nil
}

type allowAllRepository struct{}

// NewAllowAllRepository accepts any well-formed owner identifier. Development
// mode runs without the marketplace user store, so there is nothing to check
// against.
func NewAllowAllRepository() Repository {
	return allowAllRepository{}
}

func (allowAllRepository) Exists(_ context.Context, ownerID string) (bool, error) {
	if _, err := uuid.Parse(ownerID); err != nil {
		return false, nil
	}
	return true, nil
}
