package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/internal/domain/order"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeResync struct {
	out ipn.Outcome
	ids []string
}

func (f *fakeResync) ReconcileOrder(_ context.Context, orderID string) ipn.Outcome {
	f.ids = append(f.ids, orderID)
	return f.out
}

type fakeAudit struct {
	entries []ipn.AuditEntry
}

func (f *fakeAudit) Recent(_ context.Context, size int) ([]ipn.AuditEntry, error) {
	if size < len(f.entries) {
		return f.entries[:size], nil
	}
	return f.entries, nil
}

func newOrderEngine(h *OrderHandler) *gin.Engine {
	engine := gin.New()
	engine.GET("/orders/:order_id", h.Get)
	engine.POST("/admin/orders/:order_id/resync", h.Resync)
	engine.GET("/admin/ipn/deliveries", h.Deliveries)
	return engine
}

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestOrderHandler_Get(t *testing.T) {
	orders := &fakeOrders{stored: map[string]order.Order{
		"100000001": {ID: "100000001", Status: order.StatusProcessing},
	}}
	engine := newOrderEngine(NewOrderHandler(orders, &fakeResync{}, nil))

	w := serve(engine, http.MethodGet, "/orders/100000001")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "processing", decodeBody(t, w)["status"])

	w = serve(engine, http.MethodGet, "/orders/404")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestOrderHandler_Resync(t *testing.T) {
	tests := []struct {
		out  ipn.Outcome
		code int
	}{
		{ipn.OutcomeInvoiced, http.StatusOK},
		{ipn.OutcomeUnchanged, http.StatusOK},
		{ipn.OutcomePaymentNotFound, http.StatusNotFound},
		{ipn.OutcomeOrderNotFound, http.StatusNotFound},
		{ipn.OutcomeFetchFailed, http.StatusBadGateway},
		{ipn.OutcomeMissingCredentials, http.StatusServiceUnavailable},
		{ipn.OutcomeStoreFailed, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(string(tt.out), func(t *testing.T) {
			resync := &fakeResync{out: tt.out}
			engine := newOrderEngine(NewOrderHandler(&fakeOrders{}, resync, nil))

			w := serve(engine, http.MethodPost, "/admin/orders/100000001/resync")

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, string(tt.out), decodeBody(t, w)["outcome"])
			assert.Equal(t, []string{"100000001"}, resync.ids)
		})
	}
}

func TestOrderHandler_Deliveries(t *testing.T) {
	t.Run("unavailable without audit store", func(t *testing.T) {
		engine := newOrderEngine(NewOrderHandler(&fakeOrders{}, &fakeResync{}, nil))

		w := serve(engine, http.MethodGet, "/admin/ipn/deliveries")

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})

	t.Run("rejects bad size", func(t *testing.T) {
		engine := newOrderEngine(NewOrderHandler(&fakeOrders{}, &fakeResync{}, &fakeAudit{}))

		w := serve(engine, http.MethodGet, "/admin/ipn/deliveries?size=abc")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("lists recent deliveries", func(t *testing.T) {
		audit := &fakeAudit{entries: []ipn.AuditEntry{
			{DeliveryID: "d-2", Outcome: ipn.OutcomeInvoiced},
			{DeliveryID: "d-1", Outcome: ipn.OutcomeIgnored},
		}}
		engine := newOrderEngine(NewOrderHandler(&fakeOrders{}, &fakeResync{}, audit))

		w := serve(engine, http.MethodGet, "/admin/ipn/deliveries?size=1")

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `[{"delivery_id":"d-2","received_at":"0001-01-01T00:00:00Z","payload":null,"outcome":"invoiced","duration_ms":0}]`, w.Body.String())
	})
}
