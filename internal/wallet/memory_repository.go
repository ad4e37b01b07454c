package wallet

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryRepository struct {
	mu      sync.RWMutex
	byID    map[string]Wallet
	byOwner map[string]string // ownerID+":"+currency -> wallet id
}

// NewMemoryRepository constructs an in-memory repository for tests and dev mode.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		byID:    make(map[string]Wallet),
		byOwner: make(map[string]string),
	}
}

func ownerKey(ownerID, currency string) string {
	return ownerID + ":" + currency
}

func (r *memoryRepository) GetOrCreate(_ context.Context, ownerID, currency string) (Wallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byOwner[ownerKey(ownerID, currency)]; ok {
		return r.byID[id], nil
	}

	now := time.Now().UTC()
	w := Wallet{
		ID:        uuid.NewString(),
		OwnerID:   ownerID,
		Currency:  currency,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.byID[w.ID] = w
	r.byOwner[ownerKey(ownerID, currency)] = w.ID
	return w, nil
}

func (r *memoryRepository) Get(_ context.Context, id string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.byID[id]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return w, nil
}

func (r *memoryRepository) FindByOwnerAndCurrency(_ context.Context, ownerID, currency string) (Wallet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byOwner[ownerKey(ownerID, currency)]
	if !ok {
		return Wallet{}, ErrNotFound
	}
	return r.byID[id], nil
}

func (r *memoryRepository) Credit(_ context.Context, id string, amount int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.byID[id]
	if !ok {
		return 0, ErrNotFound
	}
	w.Available += amount
	w.UpdatedAt = time.Now().UTC()
	r.byID[id] = w
	return w.Available, nil
}
