package ledger

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubBalances struct {
	mu       sync.Mutex
	balances map[string]int64
	credits  int
}

func newStubBalances() *stubBalances {
	return &stubBalances{balances: make(map[string]int64)}
}

func (b *stubBalances) Credit(_ context.Context, walletID string, amount int64) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.balances[walletID] += amount
	b.credits++
	return b.balances[walletID], nil
}

func pendingTopup(walletID string) Transaction {
	return Transaction{
		ID:        uuid.NewString(),
		WalletID:  walletID,
		OwnerID:   uuid.NewString(),
		Kind:      KindTopup,
		Amount:    50_000,
		Currency:  "VND",
		Status:    StatusPending,
		Reference: "TP" + uuid.NewString()[:8],
		CreatedAt: time.Now().UTC(),
	}
}

func TestInMemoryStore_InsertAndFind(t *testing.T) {
	store := NewInMemory(newStubBalances())
	ctx := context.Background()

	txn := pendingTopup(uuid.NewString())
	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("insert: %v", err)
	}

	found, err := store.FindByReference(ctx, txn.Reference)
	if err != nil {
		t.Fatalf("find by reference: %v", err)
	}
	if found.ID != txn.ID || found.Status != StatusPending {
		t.Fatalf("unexpected transaction: %+v", found)
	}

	if _, err := store.FindByReference(ctx, "TPUNKNOWN1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestInMemoryStore_DuplicateReference(t *testing.T) {
	store := NewInMemory(newStubBalances())
	ctx := context.Background()

	txn := pendingTopup(uuid.NewString())
	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("insert: %v", err)
	}

	dup := pendingTopup(uuid.NewString())
	dup.Reference = txn.Reference
	if err := store.Insert(ctx, dup); !errors.Is(err, ErrDuplicateReference) {
		t.Fatalf("expected ErrDuplicateReference, got %v", err)
	}
}

func TestInMemoryStore_PostCreditsOnce(t *testing.T) {
	balances := newStubBalances()
	store := NewInMemory(balances)
	ctx := context.Background()

	walletID := uuid.NewString()
	txn := pendingTopup(walletID)
	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("insert: %v", err)
	}

	res, err := store.Post(ctx, txn.ID, txn.Amount, map[string]any{"provider_tx_id": "abc"})
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	if res.WalletBalance != 50_000 {
		t.Fatalf("expected balance 50000, got %d", res.WalletBalance)
	}

	if _, err := store.Post(ctx, txn.ID, txn.Amount, nil); !errors.Is(err, ErrAlreadyFinal) {
		t.Fatalf("expected ErrAlreadyFinal, got %v", err)
	}
	if balances.credits != 1 {
		t.Fatalf("expected exactly one credit, got %d", balances.credits)
	}

	posted, err := store.FindByReference(ctx, txn.Reference)
	if err != nil {
		t.Fatalf("find posted: %v", err)
	}
	if posted.Status != StatusPosted {
		t.Fatalf("expected posted status, got %s", posted.Status)
	}
	if posted.Metadata["provider_tx_id"] != "abc" {
		t.Fatalf("expected merged metadata, got %+v", posted.Metadata)
	}
}

func TestInMemoryStore_ConcurrentPostsCreditOnce(t *testing.T) {
	balances := newStubBalances()
	store := NewInMemory(balances)
	ctx := context.Background()

	walletID := uuid.NewString()
	txn := pendingTopup(walletID)
	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("insert: %v", err)
	}

	const workers = 10
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Post(ctx, txn.ID, txn.Amount, nil) // nolint:errcheck
		}()
	}
	wg.Wait()

	if balances.credits != 1 {
		t.Fatalf("expected exactly one credit under concurrency, got %d", balances.credits)
	}
	if balances.balances[walletID] != txn.Amount {
		t.Fatalf("expected balance %d, got %d", txn.Amount, balances.balances[walletID])
	}
}

func TestInMemoryStore_MarkFailedIsTerminal(t *testing.T) {
	store := NewInMemory(newStubBalances())
	ctx := context.Background()

	txn := pendingTopup(uuid.NewString())
	if err := store.Insert(ctx, txn); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := store.MarkFailed(ctx, txn.ID, map[string]any{"error": "provider timeout"}); err != nil {
		t.Fatalf("mark failed: %v", err)
	}
	if err := store.MarkFailed(ctx, txn.ID, nil); !errors.Is(err, ErrAlreadyFinal) {
		t.Fatalf("expected ErrAlreadyFinal, got %v", err)
	}
	if _, err := store.Post(ctx, txn.ID, txn.Amount, nil); !errors.Is(err, ErrAlreadyFinal) {
		t.Fatalf("expected ErrAlreadyFinal after failure, got %v", err)
	}
}
