// Package gateway talks to the NOWPayments crypto payment API.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	StatusWaiting       = "waiting"
	StatusConfirming    = "confirming"
	StatusConfirmed     = "confirmed"
	StatusSending       = "sending"
	StatusPartiallyPaid = "partially_paid"
	StatusFinished      = "finished"
	StatusFailed        = "failed"
	StatusRefunded      = "refunded"
	StatusExpired       = "expired"
	StatusError         = "error"
)

var ErrGateway = errors.New("payment gateway error")

// FlexString decodes from either a JSON string or a JSON number; the API is
// not consistent about which one it sends for ids and amounts.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

func (f FlexString) String() string { return string(f) }

type CreatePaymentParams struct {
	PriceAmount      string `json:"-"`
	PriceCurrency    string `json:"price_currency"`
	PayCurrency      string `json:"pay_currency"`
	OrderID          string `json:"order_id"`
	OrderDescription string `json:"order_description"`
	IPNCallbackURL   string `json:"ipn_callback_url"`
	CustomerEmail    string `json:"customer_email,omitempty"`
	IsFixedRate      bool   `json:"is_fixed_rate"`
}

// MarshalJSON sends price_amount as a JSON number.
func (p CreatePaymentParams) MarshalJSON() ([]byte, error) {
	type alias CreatePaymentParams
	return json.Marshal(struct {
		PriceAmount json.Number `json:"price_amount"`
		alias
	}{
		PriceAmount: json.Number(p.PriceAmount),
		alias:       alias(p),
	})
}

type Payment struct {
	PaymentID     FlexString `json:"payment_id"`
	PaymentStatus string     `json:"payment_status"`
	PayAddress    string     `json:"pay_address,omitempty"`
	PayAmount     FlexString `json:"pay_amount,omitempty"`
	PayCurrency   string     `json:"pay_currency,omitempty"`
	PriceAmount   FlexString `json:"price_amount,omitempty"`
	PriceCurrency string     `json:"price_currency,omitempty"`
	OrderID       FlexString `json:"order_id,omitempty"`
	PaymentURL    string     `json:"payment_url,omitempty"`
	Message       string     `json:"message,omitempty"`
}

type Options struct {
	BaseURL      string
	APIKey       string
	Timeout      time.Duration
	MaxRedirects int
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	maxRedirects := opts.MaxRedirects

	return &Client{
		baseURL: strings.TrimSuffix(opts.BaseURL, "/"),
		apiKey:  opts.APIKey,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) > maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
	}
}

// CreatePayment registers a new payment. Failures are returned as-is; there
// is no retry.
func (c *Client) CreatePayment(ctx context.Context, params CreatePaymentParams) (*Payment, error) {
	body, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("failed to encode payment request: %w", err)
	}

	var payment Payment
	if err := c.do(ctx, http.MethodPost, "/payment", body, &payment); err != nil {
		return nil, err
	}
	if payment.PaymentStatus == StatusError {
		return nil, fmt.Errorf("%w: payment creation failed: %s", ErrGateway, payment.Message)
	}
	if payment.PaymentID == "" {
		return nil, fmt.Errorf("%w: response carried no payment id", ErrGateway)
	}
	return &payment, nil
}

func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	var payment Payment
	if err := c.do(ctx, http.MethodGet, "/payment/"+url.PathEscape(paymentID), nil, &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, out interface{}) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build gateway request: %w", err)
	}
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrGateway, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrGateway, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr struct {
			Message string `json:"message"`
		}
		_ = json.Unmarshal(data, &apiErr)
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return fmt.Errorf("%w: %s %s returned %d: %s", ErrGateway, method, path, resp.StatusCode, apiErr.Message)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrGateway, err)
	}
	return nil
}

// IsPaid reports whether a gateway status means the funds have arrived.
func IsPaid(status string) bool {
	return status == StatusConfirmed || status == StatusFinished
}
