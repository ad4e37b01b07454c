package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// QRPayConfig carries the gateway connection settings.
type QRPayConfig struct {
	Name        string
	BaseURL     string
	APIKey      string
	AccountNo   string
	AccountName string
	Timeout     time.Duration
}

// QRPayProvider talks to a VietQR-style gateway that renders scannable payment
// codes against the marketplace's collection account.
type QRPayProvider struct {
	cfg    QRPayConfig
	client *http.Client
}

// NewQRPay constructs the gateway connector.
func NewQRPay(cfg QRPayConfig) *QRPayProvider {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &QRPayProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the configured provider name.
func (p *QRPayProvider) Name() string {
	if p.cfg.Name != "" {
		return p.cfg.Name
	}
	return "qrpay"
}

type generateRequest struct {
	AccountNo   string `json:"accountNo"`
	AccountName string `json:"accountName"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	AddInfo     string `json:"addInfo"`
	OrderID     string `json:"orderId"`
}

type generateResponse struct {
	Code string `json:"code"`
	Desc string `json:"desc"`
	Data struct {
		QRDataURL   string `json:"qrDataURL"`
		ImageURL    string `json:"imageUrl"`
		AccountName string `json:"accountName"`
	} `json:"data"`
}

// CreateInstrument requests a scannable payment code carrying the reference as
// both memo and order key.
func (p *QRPayProvider) CreateInstrument(ctx context.Context, req InstrumentRequest) (*Instrument, error) {
	base, err := url.Parse(p.cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base url: %v", ErrRequestFailed, err)
	}
	base.Path += "/v2/generate"

	payload, err := json.Marshal(generateRequest{
		AccountNo:   p.cfg.AccountNo,
		AccountName: p.cfg.AccountName,
		Amount:      req.Amount,
		Currency:    req.Currency,
		AddInfo:     req.Reference,
		OrderID:     req.Reference,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base.String(), bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	httpReq.Header.Set("Idempotency-Key", req.Reference)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrRequestFailed, resp.StatusCode)
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	image := decoded.Data.QRDataURL
	if image == "" {
		image = decoded.Data.ImageURL
	}
	if image == "" {
		return nil, ErrInvalidResponse
	}

	accountName := decoded.Data.AccountName
	if accountName == "" {
		accountName = p.cfg.AccountName
	}

	return &Instrument{QRImage: image, AccountName: accountName, Raw: body}, nil
}
