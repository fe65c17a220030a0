package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifications struct {
	processed []map[string]any
	rejected  []ipn.Outcome
	panicWith any
}

func (f *fakeNotifications) Process(_ context.Context, payload map[string]any) ipn.Outcome {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.processed = append(f.processed, payload)
	return ipn.OutcomeUnchanged
}

func (f *fakeNotifications) Reject(_ context.Context, _ map[string]any, out ipn.Outcome) {
	f.rejected = append(f.rejected, out)
}

func serveIPN(h *IPNHandler, target, body string, headers map[string]string) *httptest.ResponseRecorder {
	engine := gin.New()
	engine.POST("/mercadopago/standard/ipn", h.Notify)

	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestIPNHandler_Notify(t *testing.T) {
	t.Run("empty object answers OK", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn", `{}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", decodeBody(t, w)["status"])
		require.Len(t, proc.processed, 1)
		assert.Empty(t, proc.processed[0])
	})

	t.Run("body wins over query", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn?topic=payment&id=111", `{"id": "222"}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		require.Len(t, proc.processed, 1)
		assert.Equal(t, "payment", proc.processed[0]["topic"])
		assert.Equal(t, "222", proc.processed[0]["id"])
	})

	t.Run("dotted query keys become nested", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		serveIPN(h, "/mercadopago/standard/ipn?type=payment&data.id=999", "", nil)

		require.Len(t, proc.processed, 1)
		ref, ok := ipn.Normalize(proc.processed[0])
		require.True(t, ok)
		assert.Equal(t, "999", ref.ID)
	})

	t.Run("numeric ids keep full precision", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		serveIPN(h, "/mercadopago/standard/ipn", `{"type":"payment","data":{"id":12345678901234567}}`, nil)

		require.Len(t, proc.processed, 1)
		ref, ok := ipn.Normalize(proc.processed[0])
		require.True(t, ok)
		assert.Equal(t, "12345678901234567", ref.ID)
	})

	t.Run("malformed body still answers OK", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn?topic=payment", `{not json`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", decodeBody(t, w)["status"])
		require.Len(t, proc.processed, 1)
		assert.Equal(t, "payment", proc.processed[0]["topic"])
	})

	t.Run("panic answers OK status code with error body", func(t *testing.T) {
		proc := &fakeNotifications{panicWith: "boom"}
		h := NewIPNHandler(proc, nil, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn", `{"type":"payment","data":{"id":"5"}}`, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, "ERROR", body["status"])
		assert.Equal(t, "Internal error", body["message"])
	})
}

func TestIPNHandler_Signature(t *testing.T) {
	verifier := ipn.NewSignatureVerifier("webhook-secret", 5*time.Minute)
	ts := strconv.FormatInt(time.Now().Unix(), 10)

	t.Run("valid signature is processed", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, verifier, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn?type=payment&data.id=777", "", map[string]string{
			"x-signature":  verifier.Sign("req-1", "777", ts),
			"x-request-id": "req-1",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Len(t, proc.processed, 1)
		assert.Empty(t, proc.rejected)
	})

	t.Run("bad signature is rejected but answered OK", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, verifier, logger.NewNop())

		w := serveIPN(h, "/mercadopago/standard/ipn?type=payment&data.id=777", "", map[string]string{
			"x-signature":  "ts=" + ts + ",v1=deadbeef",
			"x-request-id": "req-1",
		})

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "OK", decodeBody(t, w)["status"])
		assert.Empty(t, proc.processed)
		assert.Equal(t, []ipn.Outcome{ipn.OutcomeInvalidSignature}, proc.rejected)
	})

	t.Run("missing signature is rejected", func(t *testing.T) {
		proc := &fakeNotifications{}
		h := NewIPNHandler(proc, verifier, logger.NewNop())

		serveIPN(h, "/mercadopago/standard/ipn", `{"type":"payment","data":{"id":"777"}}`, nil)

		assert.Empty(t, proc.processed)
		assert.Len(t, proc.rejected, 1)
	})
}
