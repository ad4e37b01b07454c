package webhook

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mekong-market/mekong_pay/internal/archive"
	"github.com/mekong-market/mekong_pay/internal/ledger"
	"github.com/mekong-market/mekong_pay/internal/notification"
)

// Processing results, surfaced for logging and tests.
const (
	ResultPosted    = "posted"
	ResultDuplicate = "duplicate"
	ResultIgnored   = "ignored"
)

// Outcome describes what happened to one notification.
type Outcome struct {
	Result        string
	TransactionID string
	Amount        int64
}

// Service reconciles provider confirmations against pending ledger
// transactions and applies each credit exactly once.
type Service struct {
	store    ledger.Store
	archives archive.Store
	notifier notification.Notifier
	logger   *slog.Logger
}

// NewService constructs the reconciler. Archive store and notifier are
// optional; both are best-effort side channels.
func NewService(store ledger.Store, archives archive.Store, notifier notification.Notifier, logger *slog.Logger) *Service {
	return &Service{store: store, archives: archives, notifier: notifier, logger: logger}
}

// Process matches the normalized notification to a pending transaction and
// posts it. Unresolvable notifications (no reference, unknown reference,
// already-final transaction) are dropped without error: the provider cannot
// act on a failure and must not be induced to retry forever.
func (s *Service) Process(ctx context.Context, fields map[string]string) (Outcome, error) {
	reference, ok := ExtractReference(fields)
	if !ok {
		s.logger.Debug("webhook without extractable reference dropped")
		return Outcome{Result: ResultIgnored}, nil
	}

	txn, err := s.store.FindByReference(ctx, reference)
	if err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			s.logger.Info("webhook for unknown reference dropped", "reference", reference)
			return Outcome{Result: ResultIgnored}, nil
		}
		return Outcome{}, fmt.Errorf("lookup reference %s: %w", reference, err)
	}
	if txn.Status != ledger.StatusPending {
		s.logger.Info("webhook for finalized transaction dropped", "reference", reference, "status", txn.Status)
		return Outcome{Result: ResultDuplicate, TransactionID: txn.ID}, nil
	}

	meta := map[string]any{
		"posted_via": "webhook",
	}
	if providerTxID := ExtractProviderTxID(fields); providerTxID != "" {
		meta["provider_tx_id"] = providerTxID
	}

	// The callback is trusted less than our own pending record for the amount
	// being credited: missing or unparsable amounts fall back to the requested
	// amount, and mismatches are flagged for after-the-fact reconciliation.
	amount, found := ExtractAmount(fields)
	switch {
	case !found:
		amount = txn.Amount
		meta["amount_source"] = "pending_transaction"
	case amount != txn.Amount:
		meta["amount_mismatch"] = true
		meta["received_amount"] = amount
	}
	meta["posted_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	res, err := s.store.Post(ctx, txn.ID, amount, meta)
	if err != nil {
		if errors.Is(err, ledger.ErrAlreadyFinal) {
			// Lost the race against a concurrent delivery of the same reference.
			return Outcome{Result: ResultDuplicate, TransactionID: txn.ID}, nil
		}
		return Outcome{}, fmt.Errorf("post transaction %s: %w", txn.ID, err)
	}

	s.archiveRecord(ctx, txn, res, amount, meta)
	s.notifyOwner(ctx, txn, amount)

	return Outcome{Result: ResultPosted, TransactionID: txn.ID, Amount: amount}, nil
}

// archiveRecord writes the immutable audit document. Failures are logged and
// never affect the posting outcome.
func (s *Service) archiveRecord(ctx context.Context, txn ledger.Transaction, res ledger.PostResult, amount int64, meta map[string]any) {
	if s.archives == nil {
		return
	}

	providerTxID, _ := meta["provider_tx_id"].(string)
	rec := archive.Record{
		TransactionID: txn.ID,
		WalletID:      txn.WalletID,
		OwnerID:       txn.OwnerID,
		Reference:     txn.Reference,
		Amount:        amount,
		Currency:      txn.Currency,
		ProviderTxID:  providerTxID,
		PostedAt:      res.PostedAt,
		Metadata:      meta,
	}

	if err := s.archives.Put(ctx, archive.RecordKey(res.PostedAt, txn.ID), rec); err != nil {
		s.logger.Warn("audit archive write failed", "transaction_id", txn.ID, "error", err)
	}
}

func (s *Service) notifyOwner(ctx context.Context, txn ledger.Transaction, amount int64) {
	if s.notifier == nil {
		return
	}
	_ = s.notifier.Send(ctx, notification.Message{
		Kind:        notification.KindTopupPosted,
		Destination: txn.OwnerID,
		Body:        fmt.Sprintf("Your wallet was credited %d %s", amount, txn.Currency),
	})
}
