package ledger

import (
	"context"
	"sync"
	"time"
)

type inMemoryStore struct {
	mu       sync.RWMutex
	byID     map[string]Transaction
	byRef    map[string]string
	balances BalanceStore
}

// NewInMemory creates a concurrency-safe in-memory ledger store useful for unit
// tests and development mode. Wallet credits are delegated to the provided
// balance store.
func NewInMemory(balances BalanceStore) Store {
	return &inMemoryStore{
		byID:     make(map[string]Transaction),
		byRef:    make(map[string]string),
		balances: balances,
	}
}

func (s *inMemoryStore) Insert(_ context.Context, txn Transaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byRef[txn.Reference]; exists {
		return ErrDuplicateReference
	}
	if txn.Metadata == nil {
		txn.Metadata = map[string]any{}
	}
	txn.UpdatedAt = txn.CreatedAt
	s.byID[txn.ID] = txn
	s.byRef[txn.Reference] = txn.ID
	return nil
}

func (s *inMemoryStore) FindByReference(_ context.Context, reference string) (Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byRef[reference]
	if !ok {
		return Transaction{}, ErrNotFound
	}
	return cloneTransaction(s.byID[id]), nil
}

func (s *inMemoryStore) MarkFailed(_ context.Context, id string, extra map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	txn, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	if txn.Status != StatusPending {
		return ErrAlreadyFinal
	}
	txn.Status = StatusFailed
	mergeMetadata(&txn, extra)
	txn.UpdatedAt = time.Now().UTC()
	s.byID[id] = txn
	return nil
}

func (s *inMemoryStore) Post(ctx context.Context, id string, amount int64, extra map[string]any) (PostResult, error) {
	s.mu.Lock()
	txn, ok := s.byID[id]
	if !ok {
		s.mu.Unlock()
		return PostResult{}, ErrNotFound
	}
	if txn.Status != StatusPending {
		s.mu.Unlock()
		return PostResult{}, ErrAlreadyFinal
	}

	now := time.Now().UTC()
	txn.Status = StatusPosted
	mergeMetadata(&txn, extra)
	txn.UpdatedAt = now
	s.byID[id] = txn
	s.mu.Unlock()

	balance, err := s.balances.Credit(ctx, txn.WalletID, amount)
	if err != nil {
		return PostResult{}, err
	}

	return PostResult{TransactionID: id, WalletBalance: balance, PostedAt: now}, nil
}

func mergeMetadata(txn *Transaction, extra map[string]any) {
	if txn.Metadata == nil {
		txn.Metadata = map[string]any{}
	}
	for k, v := range extra {
		txn.Metadata[k] = v
	}
}

func cloneTransaction(txn Transaction) Transaction {
	meta := make(map[string]any, len(txn.Metadata))
	for k, v := range txn.Metadata {
		meta[k] = v
	}
	txn.Metadata = meta
	return txn
}
