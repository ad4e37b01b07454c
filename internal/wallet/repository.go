package wallet

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no wallet matches the lookup.
var ErrNotFound = errors.New("wallet not found")

// Repository persists wallet rows.
type Repository interface {
	// GetOrCreate lazily provisions the wallet for (owner, currency). The insert
	// happens at most once per pair; subsequent calls return the existing row.
	GetOrCreate(ctx context.Context, ownerID, currency string) (Wallet, error)
	Get(ctx context.Context, id string) (Wallet, error)
	FindByOwnerAndCurrency(ctx context.Context, ownerID, currency string) (Wallet, error)
	// Credit increments the available balance and returns the new value.
	Credit(ctx context.Context, id string, amount int64) (int64, error)
}

// PostgresRepository stores wallets in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a repository backed by PostgreSQL.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetOrCreate inserts the wallet row if absent and returns it. The unique
// constraint on (owner_id, currency) makes concurrent first deposits converge
// on a single row.
func (r *PostgresRepository) GetOrCreate(ctx context.Context, ownerID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, err
	}

	_, err = r.db.Exec(ctx, `INSERT INTO wallets (id, owner_id, currency, available, held, created_at, updated_at)
        VALUES ($1, $2, $3, 0, 0, $4, $4)
        ON CONFLICT (owner_id, currency) DO NOTHING`,
		uuid.New(), owner, currency, time.Now().UTC())
	if err != nil {
		return Wallet{}, err
	}

	return r.FindByOwnerAndCurrency(ctx, ownerID, currency)
}

// Get fetches a wallet by identifier.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Wallet, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return Wallet{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, currency, available, held, created_at, updated_at
        FROM wallets WHERE id = $1`, walletID)
	return scanWallet(row)
}

// FindByOwnerAndCurrency fetches the wallet for an (owner, currency) pair.
func (r *PostgresRepository) FindByOwnerAndCurrency(ctx context.Context, ownerID, currency string) (Wallet, error) {
	owner, err := uuid.Parse(ownerID)
	if err != nil {
		return Wallet{}, err
	}
	row := r.db.QueryRow(ctx, `SELECT id, owner_id, currency, available, held, created_at, updated_at
        FROM wallets WHERE owner_id = $1 AND currency = $2`, owner, currency)
	return scanWallet(row)
}

// Credit increments the available balance.
func (r *PostgresRepository) Credit(ctx context.Context, id string, amount int64) (int64, error) {
	walletID, err := uuid.Parse(id)
	if err != nil {
		return 0, err
	}
	var balance int64
	err = r.db.QueryRow(ctx, `UPDATE wallets SET available = available + $2, updated_at = $3
        WHERE id = $1 RETURNING available`, walletID, amount, time.Now().UTC()).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return balance, nil
}

func scanWallet(row pgx.Row) (Wallet, error) {
	var (
		w         Wallet
		id        uuid.UUID
		owner     uuid.UUID
		createdAt time.Time
		updatedAt time.Time
	)
	if err := row.Scan(&id, &owner, &w.Currency, &w.Available, &w.Held, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Wallet{}, ErrNotFound
		}
		return Wallet{}, err
	}
	w.ID = id.String()
	w.OwnerID = owner.String()
	w.CreatedAt = createdAt.UTC()
	w.UpdatedAt = updatedAt.UTC()
	return w, nil
}
