package topup

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mekong-market/mekong_pay/internal/account"
	"github.com/mekong-market/mekong_pay/internal/ledger"
	"github.com/mekong-market/mekong_pay/internal/provider"
	"github.com/mekong-market/mekong_pay/internal/wallet"
)

// Limits bound top-up amounts and currency handling.
type Limits struct {
	MinAmount           int64
	MaxAmount           int64
	DefaultCurrency     string
	SupportedCurrencies []string
}

// Service issues deposit intents: it validates the request, records a pending
// ledger transaction, and obtains a payment instrument from the gateway.
type Service struct {
	accounts account.Repository
	wallets  *wallet.Service
	store    ledger.Store
	gateway  provider.PaymentProvider
	limits   Limits
}

// NewService constructs the intent issuer. A nil store or gateway is tolerated
// at construction and reported as a coded error per request.
func NewService(accounts account.Repository, wallets *wallet.Service, store ledger.Store, gateway provider.PaymentProvider, limits Limits) *Service {
	return &Service{accounts: accounts, wallets: wallets, store: store, gateway: gateway, limits: limits}
}

// CreateInput captures a deposit request.
type CreateInput struct {
	OwnerID  string
	Amount   float64
	Currency string
}

// Intent is what the caller gets back: the scannable instrument and the
// receiving account's display name. The reference code and transaction id stay
// internal; only the provider echoes the reference back.
type Intent struct {
	QRImage     string
	AccountName string
}

// CreateIntent validates the request, opens a pending transaction, and asks the
// gateway for a payment instrument. Exactly one transaction row and one
// outbound gateway call happen per invocation; gateway failures terminate the
// transaction as failed rather than leaving it dangling.
func (s *Service) CreateIntent(ctx context.Context, input CreateInput) (*Intent, error) {
	if input.OwnerID == "" {
		return nil, ErrAuthRequired
	}

	amount, err := wholeAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	if amount < s.limits.MinAmount || amount > s.limits.MaxAmount {
		return nil, ErrAmountOutOfRange
	}

	currency := s.normalizeCurrency(input.Currency)

	if s.store == nil {
		return nil, ErrStoreNotConfigured
	}
	if s.gateway == nil {
		return nil, ErrProviderNotConfigured
	}

	exists, err := s.accounts.Exists(ctx, input.OwnerID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrUserNotFound
	}

	w, err := s.wallets.GetOrCreate(ctx, input.OwnerID, currency)
	if err != nil {
		return nil, err
	}

	reference := ledger.NewReference()
	txn := ledger.Transaction{
		ID:        uuid.NewString(),
		WalletID:  w.ID,
		OwnerID:   w.OwnerID,
		Kind:      ledger.KindTopup,
		Amount:    amount,
		Currency:  currency,
		Status:    ledger.StatusPending,
		Reference: reference,
		Metadata: map[string]any{
			"provider":         s.gateway.Name(),
			"intent":           "wallet_topup",
			"requested_amount": amount,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, txn); err != nil {
		return nil, err
	}

	instrument, err := s.gateway.CreateInstrument(ctx, provider.InstrumentRequest{
		Amount:    amount,
		Currency:  currency,
		Reference: reference,
	})
	if err != nil {
		// Terminate the pending entry so it is never left dangling. Best effort:
		// the caller's error is the provider failure, not a failed cleanup.
		_ = s.store.MarkFailed(ctx, txn.ID, map[string]any{"provider_error": err.Error()})
		if errors.Is(err, provider.ErrInvalidResponse) {
			return nil, ErrProviderResponseInvalid
		}
		return nil, ErrProviderRequestFailed
	}

	return &Intent{QRImage: instrument.QRImage, AccountName: instrument.AccountName}, nil
}

// wholeAmount rejects non-finite and fractional inputs and converts to the
// smallest currency unit.
func wholeAmount(v float64) (int64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0, ErrInvalidAmount
	}
	if v != math.Trunc(v) {
		return 0, ErrInvalidAmount
	}
	return int64(v), nil
}

// normalizeCurrency maps unsupported codes to the default currency instead of
// rejecting them, matching the tolerance of the legacy flow.
func (s *Service) normalizeCurrency(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return s.limits.DefaultCurrency
	}
	for _, supported := range s.limits.SupportedCurrencies {
		if code == supported {
			return code
		}
	}
	return s.limits.DefaultCurrency
}
