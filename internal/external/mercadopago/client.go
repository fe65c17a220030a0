// Package mercadopago is the HTTP client for the Mercado Pago REST API.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/metrics"
	"MercadoPagoGateway/pkg/telemetry"

	"github.com/google/go-querystring/query"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultBaseURL = "https://api.mercadopago.com"

	pathPreferences    = "/checkout/preferences"
	pathPayments       = "/v1/payments/"
	pathPaymentsSearch = "/v1/payments/search"

	maxErrorBody = 4 * 1024
)

// Config holds transport settings only. A zero Retry means DefaultRetryConfig.
type Config struct {
	BaseURL string
	Timeout time.Duration
	Retry   RetryConfig
}

// Client implements payment.Processor. It holds no credentials; every call
// receives them explicitly.
type Client struct {
	baseURL    string
	httpClient *http.Client
	retryCfg   RetryConfig
}

var _ payment.Processor = (*Client)(nil)

// New creates a Client, filling unset fields with defaults.
func New(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		retryCfg:   cfg.Retry,
	}
}

// CreatePreference opens a checkout preference. The idempotency key makes a
// retried create return the same preference.
func (c *Client) CreatePreference(ctx context.Context, creds payment.Credentials, req payment.PreferenceRequest, idempotencyKey string) (payment.Preference, error) {
	var out payment.Preference
	err := doWithRetry(ctx, c.retryCfg, func() error {
		return c.do(ctx, "create_preference", creds, http.MethodPost, pathPreferences, req, idempotencyKey, &out)
	})
	if err != nil {
		return payment.Preference{}, err
	}
	return out, nil
}

// GetPayment fetches the authoritative payment record.
// A 404 maps to payment.ErrNotFound.
func (c *Client) GetPayment(ctx context.Context, creds payment.Credentials, id string) (payment.Record, error) {
	var out paymentDTO
	err := doWithRetry(ctx, c.retryCfg, func() error {
		return c.do(ctx, "get_payment", creds, http.MethodGet, pathPayments+url.PathEscape(id), nil, "", &out)
	})
	if err != nil {
		return payment.Record{}, err
	}
	return out.toRecord(), nil
}

// SearchPayments lists payments matching q, in the order the API returns them.
func (c *Client) SearchPayments(ctx context.Context, creds payment.Credentials, q payment.SearchQuery) ([]payment.Record, error) {
	values, err := query.Values(q)
	if err != nil {
		return nil, fmt.Errorf("encode search query: %w", err)
	}

	var out searchDTO
	err = doWithRetry(ctx, c.retryCfg, func() error {
		return c.do(ctx, "search_payments", creds, http.MethodGet, pathPaymentsSearch+"?"+values.Encode(), nil, "", &out)
	})
	if err != nil {
		return nil, err
	}

	records := make([]payment.Record, 0, len(out.Results))
	for _, r := range out.Results {
		records = append(records, r.toRecord())
	}
	return records, nil
}

// Ping reports whether the API host answers at all. Any HTTP status counts.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", payment.ErrUnavailable, err)
	}
	_ = resp.Body.Close()
	return nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

func (c *Client) do(ctx context.Context, op string, creds payment.Credentials, method, path string, body any, idempotencyKey string, out any) (err error) {
	ctx, span := telemetry.StartSpan(ctx, "mercadopago."+op,
		attribute.String("http.method", method),
		attribute.Bool("mercadopago.sandbox", creds.Sandbox),
	)
	defer span.End()

	start := time.Now()
	status := "error"
	defer func() {
		metrics.ProcessorRequestDuration.WithLabelValues(op, status).Observe(time.Since(start).Seconds())
		telemetry.RecordSpanError(span, err)
	}()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+creds.AccessToken)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if idempotencyKey != "" {
		req.Header.Set("X-Idempotency-Key", idempotencyKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", payment.ErrUnavailable, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode %s response: %w", op, err)
		}
		return nil
	}
	return handleError(op, resp)
}

func handleError(op string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &payment.APIError{Operation: op, StatusCode: resp.StatusCode, Body: string(raw)}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", payment.ErrNotFound, apiErr)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", payment.ErrUnavailable, apiErr)
	default:
		return apiErr
	}
}

type paymentDTO struct {
	ID                json.Number     `json:"id"`
	Status            string          `json:"status"`
	StatusDetail      string          `json:"status_detail"`
	ExternalReference string          `json:"external_reference"`
	TransactionAmount decimal.Decimal `json:"transaction_amount"`
	CurrencyID        string          `json:"currency_id"`
	PaymentMethodID   string          `json:"payment_method_id"`
}

func (d paymentDTO) toRecord() payment.Record {
	return payment.Record{
		ID:                d.ID.String(),
		Status:            payment.Status(d.Status),
		StatusDetail:      d.StatusDetail,
		ExternalReference: d.ExternalReference,
		TransactionAmount: d.TransactionAmount,
		CurrencyID:        d.CurrencyID,
		PaymentMethodID:   d.PaymentMethodID,
	}
}

type searchDTO struct {
	Results []paymentDTO `json:"results"`
}
