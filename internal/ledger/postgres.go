package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

// PostgresStore persists ledger transactions in PostgreSQL.
type PostgresStore struct {
	db *pgxpool.Pool
}

// NewPostgresStore constructs a Postgres-backed ledger store.
func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

// Insert records a new transaction row.
func (s *PostgresStore) Insert(ctx context.Context, txn Transaction) error {
	txID, err := uuid.Parse(txn.ID)
	if err != nil {
		return err
	}
	walletID, err := uuid.Parse(txn.WalletID)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(txn.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	_, err = s.db.Exec(ctx, `INSERT INTO transactions
        (id, wallet_id, owner_id, kind, amount, currency, status, reference, metadata, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)`,
		txID, walletID, txn.OwnerID, txn.Kind, txn.Amount, txn.Currency, txn.Status, txn.Reference, meta, txn.CreatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return ErrDuplicateReference
		}
		return err
	}
	return nil
}

// FindByReference fetches the transaction carrying the given reference code.
func (s *PostgresStore) FindByReference(ctx context.Context, reference string) (Transaction, error) {
	row := s.db.QueryRow(ctx, `SELECT id, wallet_id, owner_id, kind, amount, currency, status, reference, metadata, created_at, updated_at
        FROM transactions WHERE reference = $1`, reference)
	return scanTransaction(row)
}

// MarkFailed moves a pending transaction into the terminal failed status.
func (s *PostgresStore) MarkFailed(ctx context.Context, id string, extra map[string]any) error {
	txID, err := uuid.Parse(id)
	if err != nil {
		return err
	}
	meta, err := json.Marshal(extra)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	cmd, err := s.db.Exec(ctx, `UPDATE transactions
        SET status = $2, metadata = COALESCE(metadata, '{}'::jsonb) || $3::jsonb, updated_at = $4
        WHERE id = $1 AND status = $5`,
		txID, StatusFailed, meta, time.Now().UTC(), StatusPending)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return s.finalizeMiss(ctx, txID)
	}
	return nil
}

// Post transitions a pending transaction to posted and credits the wallet in a
// single database transaction. The status predicate on the UPDATE makes the
// transition succeed at most once; a second confirmation observes zero rows and
// gets ErrAlreadyFinal without touching the balance.
func (s *PostgresStore) Post(ctx context.Context, id string, amount int64, extra map[string]any) (PostResult, error) {
	txID, err := uuid.Parse(id)
	if err != nil {
		return PostResult{}, err
	}
	meta, err := json.Marshal(extra)
	if err != nil {
		return PostResult{}, fmt.Errorf("encode metadata: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return PostResult{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	now := time.Now().UTC()

	var walletID uuid.UUID
	err = tx.QueryRow(ctx, `UPDATE transactions
        SET status = $2, metadata = COALESCE(metadata, '{}'::jsonb) || $3::jsonb, updated_at = $4
        WHERE id = $1 AND status = $5
        RETURNING wallet_id`,
		txID, StatusPosted, meta, now, StatusPending).Scan(&walletID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return PostResult{}, s.finalizeMiss(ctx, txID)
		}
		return PostResult{}, err
	}

	var balance int64
	err = tx.QueryRow(ctx, `UPDATE wallets
        SET available = available + $2, updated_at = $3
        WHERE id = $1
        RETURNING available`, walletID, amount, now).Scan(&balance)
	if err != nil {
		return PostResult{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return PostResult{}, err
	}

	return PostResult{TransactionID: id, WalletBalance: balance, PostedAt: now}, nil
}

// finalizeMiss distinguishes "no such transaction" from "already terminal" after
// a conditional update matched nothing.
func (s *PostgresStore) finalizeMiss(ctx context.Context, txID uuid.UUID) error {
	var status string
	if err := s.db.QueryRow(ctx, `SELECT status FROM transactions WHERE id = $1`, txID).Scan(&status); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return ErrAlreadyFinal
}

func scanTransaction(row pgx.Row) (Transaction, error) {
	var (
		txn       Transaction
		id        uuid.UUID
		walletID  uuid.UUID
		meta      []byte
		createdAt time.Time
		updatedAt time.Time
	)
	err := row.Scan(&id, &walletID, &txn.OwnerID, &txn.Kind, &txn.Amount, &txn.Currency, &txn.Status, &txn.Reference, &meta, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, ErrNotFound
		}
		return Transaction{}, err
	}
	txn.ID = id.String()
	txn.WalletID = walletID.String()
	txn.CreatedAt = createdAt.UTC()
	txn.UpdatedAt = updatedAt.UTC()
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &txn.Metadata); err != nil {
			return Transaction{}, fmt.Errorf("decode metadata: %w", err)
		}
	}
	return txn, nil
}
