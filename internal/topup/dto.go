package topup

// CreateRequest captures the caller's deposit request. The owner id normally
// arrives via the X-User-ID header set by the upstream gateway; the body field
// is a fallback for internal callers.
type CreateRequest struct {
	UserID   string  `json:"user_id"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

// CreateResponse is the success shape returned to the caller.
type CreateResponse struct {
	OK          bool   `json:"ok"`
	QRImage     string `json:"qrImage"`
	AccountName string `json:"accountName"`
}

// ErrorResponse is the coded failure shape.
type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
