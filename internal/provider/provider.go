package provider

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrRequestFailed indicates the gateway could not be reached or rejected
	// the request outright.
	ErrRequestFailed = errors.New("provider request failed")

	// ErrInvalidResponse indicates the gateway answered but returned no usable
	// payment instrument.
	ErrInvalidResponse = errors.New("provider returned no usable payment instrument")
)

// InstrumentRequest captures what the gateway needs to mint a payment instrument.
// Reference is passed as both the payment memo and the gateway's own order key so
// the asynchronous confirmation echoes it back.
type InstrumentRequest struct {
	Amount    int64
	Currency  string
	Reference string
}

// Instrument is the gateway-supplied artifact presented to the end user.
type Instrument struct {
	// QRImage is either an embedded data URL or a remote image URL.
	QRImage     string
	AccountName string
	Raw         json.RawMessage
}

// PaymentProvider represents a connector to an external QR payment gateway.
type PaymentProvider interface {
	Name() string
	CreateInstrument(ctx context.Context, req InstrumentRequest) (*Instrument, error)
}
