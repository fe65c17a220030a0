package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"MercadoPagoGateway/internal/domain/ipn"
	"MercadoPagoGateway/internal/domain/order"

	"github.com/gin-gonic/gin"
)

type OrderReader interface {
	GetOrderByID(ctx context.Context, id string) (order.Order, error)
}

type OrderResyncer interface {
	ReconcileOrder(ctx context.Context, orderID string) ipn.Outcome
}

type OrderHandler struct {
	orders OrderReader
	resync OrderResyncer
	audit  ipn.AuditReader
}

func NewOrderHandler(orders OrderReader, resync OrderResyncer, audit ipn.AuditReader) *OrderHandler {
	return &OrderHandler{orders: orders, resync: resync, audit: audit}
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing order_id"})
		return
	}

	res, err := h.orders.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// Resync pulls the latest payment of the order from Mercado Pago and applies
// it, for notifications that never arrived.
func (h *OrderHandler) Resync(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing order_id"})
		return
	}

	out := h.resync.ReconcileOrder(c.Request.Context(), orderID)

	status := http.StatusOK
	switch out {
	case ipn.OutcomeOrderNotFound, ipn.OutcomePaymentNotFound:
		status = http.StatusNotFound
	case ipn.OutcomeFetchFailed:
		status = http.StatusBadGateway
	case ipn.OutcomeMissingCredentials:
		status = http.StatusServiceUnavailable
	case ipn.OutcomeStoreFailed, ipn.OutcomePanic:
		status = http.StatusInternalServerError
	}
	c.JSON(status, gin.H{"order_id": orderID, "outcome": out})
}

func (h *OrderHandler) Deliveries(c *gin.Context) {
	if h.audit == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "Delivery audit is not configured"})
		return
	}

	size, err := strconv.Atoi(c.DefaultQuery("size", "50"))
	if err != nil || size <= 0 || size > 500 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "size must be between 1 and 500"})
		return
	}

	entries, err := h.audit.Recent(c.Request.Context(), size)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"message": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}
