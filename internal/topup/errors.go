package topup

import "net/http"

// Error is a coded failure reported to the caller of the intent endpoint.
type Error struct {
	Code    string
	Message string
	Status  int
}

func (e *Error) Error() string {
	return e.Code + ": " + e.Message
}

var (
	// ErrAuthRequired indicates the owner identifier is missing.
	ErrAuthRequired = &Error{Code: "AUTH_REQUIRED", Message: "owner identifier is required", Status: http.StatusUnauthorized}
	// ErrInvalidAmount indicates the amount is not a usable whole number.
	ErrInvalidAmount = &Error{Code: "INVALID_AMOUNT", Message: "amount must be a positive whole number", Status: http.StatusBadRequest}
	// ErrAmountOutOfRange indicates the amount falls outside the configured limits.
	ErrAmountOutOfRange = &Error{Code: "AMOUNT_OUT_OF_RANGE", Message: "amount is outside the allowed top-up range", Status: http.StatusBadRequest}
	// ErrUserNotFound indicates the owner identifier resolves to no account.
	ErrUserNotFound = &Error{Code: "USER_NOT_FOUND", Message: "owner account does not exist", Status: http.StatusNotFound}
	// ErrProviderNotConfigured indicates gateway credentials are absent.
	ErrProviderNotConfigured = &Error{Code: "PROVIDER_NOT_CONFIGURED", Message: "payment provider is not configured", Status: http.StatusServiceUnavailable}
	// ErrProviderRequestFailed indicates the outbound gateway call failed.
	ErrProviderRequestFailed = &Error{Code: "PROVIDER_REQUEST_FAILED", Message: "payment provider request failed", Status: http.StatusBadGateway}
	// ErrProviderResponseInvalid indicates the gateway returned no usable instrument.
	ErrProviderResponseInvalid = &Error{Code: "PROVIDER_RESPONSE_INVALID", Message: "payment provider returned an invalid response", Status: http.StatusBadGateway}
	// ErrStoreNotConfigured indicates the ledger store is unavailable.
	ErrStoreNotConfigured = &Error{Code: "STORE_NOT_CONFIGURED", Message: "ledger store is not configured", Status: http.StatusServiceUnavailable}
)
