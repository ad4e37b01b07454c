package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func TestServiceGetOrCreateIsIdempotent(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()
	ownerID := uuid.NewString()

	first, err := svc.GetOrCreate(ctx, ownerID, "vnd")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}
	if first.Currency != "VND" {
		t.Fatalf("expected normalized currency VND, got %s", first.Currency)
	}
	if first.Available != 0 || first.Held != 0 {
		t.Fatalf("expected zero balances, got %+v", first)
	}

	second, err := svc.GetOrCreate(ctx, ownerID, "VND")
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("expected one wallet per (owner, currency), got %s and %s", first.ID, second.ID)
	}
}

func TestServiceFindDoesNotCreate(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Find(ctx, uuid.NewString(), "VND"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRepositoryCredit(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	w, err := repo.GetOrCreate(ctx, uuid.NewString(), "VND")
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	balance, err := repo.Credit(ctx, w.ID, 50_000)
	if err != nil {
		t.Fatalf("credit: %v", err)
	}
	if balance != 50_000 {
		t.Fatalf("expected balance 50000, got %d", balance)
	}

	if _, err := repo.Credit(ctx, uuid.NewString(), 1); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
