package ledger

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotFound indicates no transaction matches the given identifier or reference.
	ErrNotFound = errors.New("transaction not found")

	// ErrAlreadyFinal indicates the transaction already reached a terminal status and
	// the requested transition was a no-op. Callers treat this as "already handled".
	ErrAlreadyFinal = errors.New("transaction already finalized")

	// ErrDuplicateReference indicates the reference code is already taken by another
	// transaction. Reference codes must be unique for the lifetime of the system.
	ErrDuplicateReference = errors.New("duplicate reference code")
)

const (
	// StatusPending marks a transaction awaiting provider confirmation.
	StatusPending = "pending"
	// StatusPosted marks a transaction whose credit has been applied. Terminal.
	StatusPosted = "posted"
	// StatusFailed marks a transaction that failed synchronously. Terminal.
	StatusFailed = "failed"

	// KindTopup is the transaction kind recorded for wallet deposits.
	KindTopup = "topup"
)

// Transaction is the durable record of one deposit attempt.
type Transaction struct {
	ID        string
	WalletID  string
	OwnerID   string
	Kind      string
	Amount    int64
	Currency  string
	Status    string
	Reference string
	Metadata  map[string]any
	CreatedAt time.Time
	UpdatedAt time.Time
}

// PostResult captures the outcome of posting a pending transaction.
type PostResult struct {
	TransactionID string
	WalletBalance int64
	PostedAt      time.Time
}

// BalanceStore mutates wallet balances alongside ledger postings. The Postgres
// store updates the wallets table inside its own transaction instead.
type BalanceStore interface {
	Credit(ctx context.Context, walletID string, amount int64) (int64, error)
}

// Store defines the contract implemented by ledger backends.
//
// Post transitions a transaction from pending to posted and credits the wallet
// as one logical event: the status predicate guarantees the credit is applied
// at most once even under concurrent delivery of the same confirmation.
type Store interface {
	Insert(ctx context.Context, tx Transaction) error
	FindByReference(ctx context.Context, reference string) (Transaction, error)
	MarkFailed(ctx context.Context, id string, extra map[string]any) error
	Post(ctx context.Context, id string, amount int64, extra map[string]any) (PostResult, error)
}
