//go:build !integration

package mercadopago

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"MercadoPagoGateway/internal/domain/currency"
	"MercadoPagoGateway/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCreds = payment.Credentials{AccessToken: "TEST-token", Sandbox: true}

func newTestClient(url string, attempts int) *Client {
	return New(Config{
		BaseURL: url,
		Timeout: 2 * time.Second,
		Retry: RetryConfig{
			MaxAttempts: attempts,
			BaseDelay:   time.Millisecond,
			MaxDelay:    5 * time.Millisecond,
		},
	})
}

func TestClient_CreatePreference(t *testing.T) {
	t.Run("sends request with token and idempotency key", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/checkout/preferences", r.URL.Path)
			assert.Equal(t, "Bearer TEST-token", r.Header.Get("Authorization"))
			assert.Equal(t, "key-1", r.Header.Get("X-Idempotency-Key"))
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "100000001", body["external_reference"])
			items := body["items"].([]any)
			require.Len(t, items, 1)
			assert.Equal(t, 10.5, items[0].(map[string]any)["unit_price"])

			_ = json.NewEncoder(w).Encode(map[string]string{
				"id":                 "pref-1",
				"init_point":         "https://www.mercadopago.com/checkout?pref_id=pref-1",
				"sandbox_init_point": "https://sandbox.mercadopago.com/checkout?pref_id=pref-1",
			})
		}))
		defer server.Close()

		client := newTestClient(server.URL, 1)
		pref, err := client.CreatePreference(context.Background(), testCreds, payment.PreferenceRequest{
			ExternalReference: "100000001",
			Items: []payment.Item{{
				ID:         "1",
				Title:      "Shoe",
				Quantity:   1,
				CurrencyID: "BRL",
				UnitPrice:  currency.NewAmount(decimal.RequireFromString("10.5"), 2),
			}},
		}, "key-1")

		require.NoError(t, err)
		assert.Equal(t, "pref-1", pref.ID)
		assert.Contains(t, pref.CheckoutURL(true), "sandbox")
	})

	t.Run("returns APIError on 400", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"message":"invalid items"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)
		_, err := client.CreatePreference(context.Background(), testCreds, payment.PreferenceRequest{}, "k")

		var apiErr *payment.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Body, "invalid items")
		assert.NotErrorIs(t, err, payment.ErrUnavailable)
	})
}

func TestClient_GetPayment(t *testing.T) {
	t.Run("decodes numeric id", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v1/payments/1234567890", r.URL.Path)
			_, _ = w.Write([]byte(`{
				"id": 1234567890,
				"status": "approved",
				"status_detail": "accredited",
				"external_reference": "100000001",
				"transaction_amount": 150.25,
				"currency_id": "BRL",
				"payment_method_id": "visa"
			}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 1)
		rec, err := client.GetPayment(context.Background(), testCreds, "1234567890")

		require.NoError(t, err)
		assert.Equal(t, "1234567890", rec.ID)
		assert.Equal(t, payment.StatusApproved, rec.Status)
		assert.Equal(t, "100000001", rec.ExternalReference)
		assert.True(t, decimal.RequireFromString("150.25").Equal(rec.TransactionAmount))
	})

	t.Run("returns ErrNotFound on 404", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)
		_, err := client.GetPayment(context.Background(), testCreds, "42")

		assert.ErrorIs(t, err, payment.ErrNotFound)
	})

	t.Run("retries on 5xx then succeeds", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusBadGateway)
				return
			}
			_, _ = w.Write([]byte(`{"id": 42, "status": "pending"}`))
		}))
		defer server.Close()

		client := newTestClient(server.URL, 3)
		rec, err := client.GetPayment(context.Background(), testCreds, "42")

		require.NoError(t, err)
		assert.Equal(t, payment.StatusPending, rec.Status)
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("returns ErrUnavailable after exhausting retries", func(t *testing.T) {
		var calls atomic.Int32
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer server.Close()

		client := newTestClient(server.URL, 2)
		_, err := client.GetPayment(context.Background(), testCreds, "42")

		assert.ErrorIs(t, err, payment.ErrUnavailable)
		assert.Equal(t, int32(2), calls.Load())
	})

	t.Run("returns ErrUnavailable when context deadline passes", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer server.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		client := newTestClient(server.URL, 1)
		_, err := client.GetPayment(ctx, testCreds, "42")

		assert.ErrorIs(t, err, payment.ErrUnavailable)
	})
}

func TestClient_SearchPayments(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/payments/search", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "100000001", q.Get("external_reference"))
		assert.Equal(t, "date_created", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("criteria"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.False(t, q.Has("offset"))

		_, _ = w.Write([]byte(`{"results": [{"id": 7, "status": "rejected", "external_reference": "100000001"}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL, 1)
	recs, err := client.SearchPayments(context.Background(), testCreds, payment.SearchQuery{
		ExternalReference: "100000001",
		Sort:              "date_created",
		Criteria:          "desc",
		Limit:             1,
	})

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "7", recs[0].ID)
	assert.Equal(t, payment.StatusRejected, recs[0].Status)
}

func TestClient_Ping(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	client := newTestClient(server.URL, 1)

	assert.NoError(t, client.Ping(context.Background()))

	server.Close()
	assert.ErrorIs(t, client.Ping(context.Background()), payment.ErrUnavailable)
}
