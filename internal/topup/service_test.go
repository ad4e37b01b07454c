package topup

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mekong-market/mekong_pay/internal/account"
	"github.com/mekong-market/mekong_pay/internal/ledger"
	"github.com/mekong-market/mekong_pay/internal/provider"
	"github.com/mekong-market/mekong_pay/internal/wallet"
)

type captureProvider struct {
	last provider.InstrumentRequest
	fail error
}

func (p *captureProvider) Name() string { return "capture" }

func (p *captureProvider) CreateInstrument(_ context.Context, req provider.InstrumentRequest) (*provider.Instrument, error) {
	p.last = req
	if p.fail != nil {
		return nil, p.fail
	}
	return &provider.Instrument{QRImage: "data:image/png;base64,QR", AccountName: "MEKONG MARKET JSC"}, nil
}

type countingStore struct {
	ledger.Store
	inserts int
}

func (s *countingStore) Insert(ctx context.Context, txn ledger.Transaction) error {
	s.inserts++
	return s.Store.Insert(ctx, txn)
}

func testLimits() Limits {
	return Limits{
		MinAmount:           10_000,
		MaxAmount:           300_000_000,
		DefaultCurrency:     "VND",
		SupportedCurrencies: []string{"VND"},
	}
}

func newFixture(ownerIDs ...string) (*Service, *countingStore, *captureProvider, wallet.Repository) {
	walletRepo := wallet.NewMemoryRepository()
	store := &countingStore{Store: ledger.NewInMemory(walletRepo)}
	gateway := &captureProvider{}
	svc := NewService(
		account.NewMemoryRepository(ownerIDs...),
		wallet.NewService(walletRepo),
		store,
		gateway,
		testLimits(),
	)
	return svc, store, gateway, walletRepo
}

func TestCreateIntentRejectsMissingOwner(t *testing.T) {
	svc, store, _, _ := newFixture()

	_, err := svc.CreateIntent(context.Background(), CreateInput{Amount: 50_000})
	if !errors.Is(err, ErrAuthRequired) {
		t.Fatalf("expected ErrAuthRequired, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("expected no transaction, got %d inserts", store.inserts)
	}
}

func TestCreateIntentRejectsBadAmounts(t *testing.T) {
	ownerID := uuid.NewString()
	svc, store, _, _ := newFixture(ownerID)
	ctx := context.Background()

	cases := []struct {
		name   string
		amount float64
		want   *Error
	}{
		{"zero", 0, ErrInvalidAmount},
		{"negative", -5_000, ErrInvalidAmount},
		{"fractional", 50_000.5, ErrInvalidAmount},
		{"below minimum", 9_999, ErrAmountOutOfRange},
		{"above maximum", 300_000_001, ErrAmountOutOfRange},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: tc.amount})
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
	if store.inserts != 0 {
		t.Fatalf("expected no transactions for rejected amounts, got %d", store.inserts)
	}
}

func TestCreateIntentUnknownOwner(t *testing.T) {
	svc, store, _, walletRepo := newFixture(uuid.NewString())
	ctx := context.Background()

	strangerID := uuid.NewString()
	_, err := svc.CreateIntent(ctx, CreateInput{OwnerID: strangerID, Amount: 50_000})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
	if store.inserts != 0 {
		t.Fatalf("expected no transaction, got %d inserts", store.inserts)
	}
	if _, err := walletRepo.FindByOwnerAndCurrency(ctx, strangerID, "VND"); !errors.Is(err, wallet.ErrNotFound) {
		t.Fatalf("expected no wallet for unknown owner, got %v", err)
	}
}

func TestCreateIntentHappyPath(t *testing.T) {
	ownerID := uuid.NewString()
	svc, store, gateway, walletRepo := newFixture(ownerID)
	ctx := context.Background()

	intent, err := svc.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: 50_000, Currency: "VND"})
	if err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if intent.QRImage == "" || intent.AccountName == "" {
		t.Fatalf("incomplete intent: %+v", intent)
	}

	if gateway.last.Reference == "" {
		t.Fatal("expected reference in provider-bound payload")
	}
	if !ledger.ReferencePattern.MatchString(gateway.last.Reference) {
		t.Fatalf("reference %q does not match the expected format", gateway.last.Reference)
	}
	if gateway.last.Amount != 50_000 || gateway.last.Currency != "VND" {
		t.Fatalf("unexpected provider request: %+v", gateway.last)
	}

	txn, err := store.FindByReference(ctx, gateway.last.Reference)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if txn.Status != ledger.StatusPending {
		t.Fatalf("expected pending transaction, got %s", txn.Status)
	}
	if txn.Amount != 50_000 || txn.Kind != ledger.KindTopup {
		t.Fatalf("unexpected transaction: %+v", txn)
	}
	if store.inserts != 1 {
		t.Fatalf("expected exactly one transaction, got %d", store.inserts)
	}

	w, err := walletRepo.FindByOwnerAndCurrency(ctx, ownerID, "VND")
	if err != nil {
		t.Fatalf("wallet not created: %v", err)
	}
	if w.Available != 0 {
		t.Fatalf("intent must not credit the wallet, balance=%d", w.Available)
	}
}

func TestCreateIntentNormalizesUnsupportedCurrency(t *testing.T) {
	ownerID := uuid.NewString()
	svc, _, gateway, _ := newFixture(ownerID)

	if _, err := svc.CreateIntent(context.Background(), CreateInput{OwnerID: ownerID, Amount: 50_000, Currency: "XYZ"}); err != nil {
		t.Fatalf("create intent: %v", err)
	}
	if gateway.last.Currency != "VND" {
		t.Fatalf("expected unsupported currency normalized to VND, got %s", gateway.last.Currency)
	}
}

func TestCreateIntentProviderFailureMarksTransactionFailed(t *testing.T) {
	ownerID := uuid.NewString()
	svc, store, gateway, _ := newFixture(ownerID)
	gateway.fail = provider.ErrRequestFailed
	ctx := context.Background()

	_, err := svc.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: 50_000})
	if !errors.Is(err, ErrProviderRequestFailed) {
		t.Fatalf("expected ErrProviderRequestFailed, got %v", err)
	}

	txn, err := store.FindByReference(ctx, gateway.last.Reference)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if txn.Status != ledger.StatusFailed {
		t.Fatalf("expected failed transaction, got %s", txn.Status)
	}
}

func TestCreateIntentInvalidProviderResponse(t *testing.T) {
	ownerID := uuid.NewString()
	svc, store, gateway, _ := newFixture(ownerID)
	gateway.fail = provider.ErrInvalidResponse
	ctx := context.Background()

	_, err := svc.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: 50_000})
	if !errors.Is(err, ErrProviderResponseInvalid) {
		t.Fatalf("expected ErrProviderResponseInvalid, got %v", err)
	}

	txn, err := store.FindByReference(ctx, gateway.last.Reference)
	if err != nil {
		t.Fatalf("find transaction: %v", err)
	}
	if txn.Status != ledger.StatusFailed {
		t.Fatalf("expected failed transaction, got %s", txn.Status)
	}
}

func TestCreateIntentUnconfiguredDependencies(t *testing.T) {
	ownerID := uuid.NewString()
	walletRepo := wallet.NewMemoryRepository()
	accounts := account.NewMemoryRepository(ownerID)
	ctx := context.Background()

	noStore := NewService(accounts, wallet.NewService(walletRepo), nil, &captureProvider{}, testLimits())
	if _, err := noStore.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: 50_000}); !errors.Is(err, ErrStoreNotConfigured) {
		t.Fatalf("expected ErrStoreNotConfigured, got %v", err)
	}

	noGateway := NewService(accounts, wallet.NewService(walletRepo), ledger.NewInMemory(walletRepo), nil, testLimits())
	if _, err := noGateway.CreateIntent(ctx, CreateInput{OwnerID: ownerID, Amount: 50_000}); !errors.Is(err, ErrProviderNotConfigured) {
		t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
	}
}
