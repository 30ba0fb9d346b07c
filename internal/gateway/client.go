// Package gateway is the HTTP adapter for the hosted-checkout payment
// provider: it creates checkout sessions and single-use discount objects.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/cszshop/checkout-api/internal/domain/payment"
)

var _ payment.Gateway = (*Client)(nil)

// Client implements payment.Gateway over the provider's REST API with a
// static secret-key credential.
type Client struct {
	baseURL   string
	secretKey string
	http      *http.Client
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client (used by tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a gateway client. The timeout is generous because session
// creation is the last pipeline stage and aborting it risks a session the
// order never learns about.
func NewClient(baseURL, secretKey string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		secretKey: secretKey,
		http: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type lineItemPayload struct {
	Name       string `json:"name"`
	UnitAmount int64  `json:"unitAmount"`
	Quantity   int    `json:"quantity"`
}

type discountPayload struct {
	AmountOff int64  `json:"amountOff"`
	Currency  string `json:"currency"`
	Duration  string `json:"duration"`
	Name      string `json:"name,omitempty"`
}

type sessionPayload struct {
	Currency  string            `json:"currency"`
	Locale    string            `json:"locale"`
	LineItems []lineItemPayload `json:"lineItems"`
	Discounts []string          `json:"discounts,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	ReturnURL string            `json:"returnUrl"`
}

// CreateDiscount creates a one-time discount object scoped to a single
// checkout session.
func (c *Client) CreateDiscount(ctx context.Context, params payment.DiscountParams) (*payment.Discount, error) {
	payload := discountPayload{
		AmountOff: params.AmountOff,
		Currency:  params.Currency,
		Duration:  "once",
		Name:      params.Name,
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := c.post(ctx, "/discount-objects", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, errors.New("gateway returned no discount id")
	}
	return &payment.Discount{ID: out.ID}, nil
}

// CreateSession creates a hosted checkout session and returns its id plus the
// client-side handle used to mount the payment widget.
func (c *Client) CreateSession(ctx context.Context, params payment.SessionParams) (*payment.Session, error) {
	payload := sessionPayload{
		Currency:  params.Currency,
		Locale:    params.Locale,
		LineItems: make([]lineItemPayload, len(params.LineItems)),
		Metadata:  params.Metadata,
		ReturnURL: params.ReturnURL,
	}
	for i, li := range params.LineItems {
		payload.LineItems[i] = lineItemPayload{Name: li.Name, UnitAmount: li.UnitAmount, Quantity: li.Quantity}
	}
	if params.DiscountID != "" {
		payload.Discounts = []string{params.DiscountID}
	}

	var out struct {
		ID           string `json:"id"`
		ClientSecret string `json:"clientSecret"`
	}
	if err := c.post(ctx, "/checkout-sessions", payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" || out.ClientSecret == "" {
		return nil, errors.New("gateway returned incomplete session")
	}
	return &payment.Session{ID: out.ID, ClientSecret: out.ClientSecret}, nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return errors.Wrap(err, "encode request body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrapf(err, "POST %s", path)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return errors.Errorf("POST %s: status %d: %s", path, resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decode POST %s response", path)
	}
	return nil
}
