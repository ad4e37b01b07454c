package provider

import (
	"context"
	"encoding/json"
	"fmt"
)

// StaticProvider simulates a successful gateway integration. Used in dev mode
// and tests.
type StaticProvider struct {
	AccountName string
}

// Name identifies the stub.
func (StaticProvider) Name() string { return "static" }

// CreateInstrument returns a deterministic instrument embedding the reference.
func (p StaticProvider) CreateInstrument(_ context.Context, req InstrumentRequest) (*Instrument, error) {
	name := p.AccountName
	if name == "" {
		name = "MEKONG MARKET JSC"
	}
	raw, _ := json.Marshal(map[string]any{
		"amount":    req.Amount,
		"currency":  req.Currency,
		"reference": req.Reference,
	})
	return &Instrument{
		QRImage:     fmt.Sprintf("data:image/png;base64,STATIC-%s", req.Reference),
		AccountName: name,
		Raw:         raw,
	}, nil
}
