package webhook

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mekong-market/mekong_pay/internal/ledger"
)

// Ordered fallback chains for field extraction. Explicit lists keep the chains
// independently testable and extensible as providers change payload shapes.
var (
	referenceFields = []string{
		"reference", "referenceCode", "reference_code", "ref",
		"orderId", "order_id", "txnRef",
	}
	contentFields = []string{
		"content", "description", "memo", "message", "addInfo", "transferNote",
	}
	amountFields = []string{
		"transferAmount", "transfer_amount", "amount",
		"transactionAmount", "transaction_amount", "value",
	}
	providerTxFields = []string{
		"transactionId", "transaction_id", "txid", "referenceNumber", "id",
	}
)

// ExtractReference resolves the correlation key: well-known fields first, then
// a pattern scan over free-text fields, first match wins.
func ExtractReference(fields map[string]string) (string, bool) {
	for _, key := range referenceFields {
		if v := strings.TrimSpace(fields[key]); v != "" {
			if m := ledger.ReferencePattern.FindString(strings.ToUpper(v)); m != "" {
				return m, true
			}
			return v, true
		}
	}
	for _, key := range contentFields {
		if v := fields[key]; v != "" {
			if m := ledger.ReferencePattern.FindString(strings.ToUpper(v)); m != "" {
				return m, true
			}
		}
	}
	return "", false
}

// ExtractAmount resolves the credited amount from the first parsable
// amount-bearing field, rounded to the nearest whole currency unit. Returns
// false when nothing parses to a positive amount; the caller then falls back to
// the pending transaction's own amount.
func ExtractAmount(fields map[string]string) (int64, bool) {
	for _, key := range amountFields {
		raw, ok := fields[key]
		if !ok || raw == "" {
			continue
		}
		if n, ok := parseAmount(raw); ok && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// ExtractProviderTxID pulls the provider's own transaction identifier, if any.
func ExtractProviderTxID(fields map[string]string) string {
	for _, key := range providerTxFields {
		if v := strings.TrimSpace(fields[key]); v != "" {
			return v
		}
	}
	return ""
}

// parseAmount strips formatting noise (currency symbols, thousand separators)
// and rounds to a whole unit.
func parseAmount(raw string) (int64, bool) {
	var b strings.Builder
	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	d, err := decimal.NewFromString(b.String())
	if err != nil {
		return 0, false
	}
	return d.Round(0).IntPart(), true
}
