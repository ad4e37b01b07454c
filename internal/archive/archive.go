package archive

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Store writes immutable audit documents. Writes are best-effort: callers log
// failures and move on, archival must never block posting.
type Store interface {
	Put(ctx context.Context, key string, doc any) error
}

// Record is the audit document written after a transaction is posted. It is
// never read back by the running system.
type Record struct {
	TransactionID string    `json:"transaction_id"`
	WalletID      string    `json:"wallet_id"`
	OwnerID       string    `json:"owner_id"`
	Reference     string    `json:"reference"`
	Amount        int64     `json:"amount"`
	Currency      string    `json:"currency"`
	ProviderTxID  string         `json:"provider_tx_id,omitempty"`
	PostedAt      time.Time      `json:"posted_at"`
	Metadata      map[string]any `json:"metadata,omitempty"`
}

// RecordKey builds the date-partitioned object key for a posted transaction.
func RecordKey(postedAt time.Time, transactionID string) string {
	return fmt.Sprintf("topups/%s/%s.json", postedAt.UTC().Format("2006/01/02"), transactionID)
}

// MemoryStore collects documents in memory. Used in tests and dev mode.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]any
}

// NewMemoryStore constructs an in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{docs: make(map[string]any)}
}

// Put stores the document under the given key.
func (s *MemoryStore) Put(_ context.Context, key string, doc any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = doc
	return nil
}

// Get returns a stored document, for test assertions.
func (s *MemoryStore) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[key]
	return doc, ok
}

// Len reports the number of stored documents.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
