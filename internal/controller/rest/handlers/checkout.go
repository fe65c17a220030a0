package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"MercadoPagoGateway/internal/domain/checkout"
	"MercadoPagoGateway/internal/domain/currency"
	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
)

type PreferenceCreator interface {
	FormFields(ctx context.Context, snap *checkout.Snapshot) (checkout.FormFields, error)
	Method() checkout.MethodInfo
}

type OrderPlacer interface {
	PlaceOrder(ctx context.Context, o order.Order) (order.Order, bool, error)
	GetOrderByID(ctx context.Context, id string) (order.Order, error)
}

type ShopURLs struct {
	Cart    string
	Success string
}

type CheckoutHandler struct {
	preferences PreferenceCreator
	orders      OrderPlacer
	shop        ShopURLs
	l           logger.Interface
}

func NewCheckoutHandler(preferences PreferenceCreator, orders OrderPlacer, shop ShopURLs, l logger.Interface) *CheckoutHandler {
	return &CheckoutHandler{preferences: preferences, orders: orders, shop: shop, l: l}
}

// returnQuery is what Mercado Pago appends to the back URLs.
type returnQuery struct {
	ExternalReference string `form:"external_reference"`
	PaymentID         string `form:"payment_id"`
	CollectionID      string `form:"collection_id"`
	Status            string `form:"status"`
	CollectionStatus  string `form:"collection_status"`
	PreferenceID      string `form:"preference_id"`
}

func (q returnQuery) paymentID() string {
	if q.PaymentID != "" {
		return q.PaymentID
	}
	return q.CollectionID
}

func (q returnQuery) status() string {
	if q.Status != "" {
		return q.Status
	}
	return q.CollectionStatus
}

type successParams struct {
	OrderID   string `url:"order_id,omitempty"`
	PaymentID string `url:"payment_id,omitempty"`
	Status    string `url:"status,omitempty"`
}

type noticeParams struct {
	Notice  string `url:"notice"`
	Level   string `url:"level"`
	OrderID string `url:"order_id,omitempty"`
}

// Redirect stores the order before the buyer leaves for Mercado Pago, then
// opens a preference and returns the fields the redirect page posts.
func (h *CheckoutHandler) Redirect(c *gin.Context) {
	ctx := c.Request.Context()
	l := h.l.WithContext(ctx)

	var snap checkout.Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		h.fail(c, http.StatusBadRequest, "Invalid checkout payload")
		return
	}

	if _, created, err := h.orders.PlaceOrder(ctx, snap.ToOrder()); err != nil {
		l.Error("checkout: redirect order creation failed: cart_id=%s error=%v", snap.CartID, err)
	} else if created {
		l.Info("checkout: order stored before redirect: order_id=%s", snap.CartID)
	}

	fields, err := h.preferences.FormFields(ctx, &snap)
	if err != nil {
		h.fail(c, statusForCheckoutError(err), "Could not start Mercado Pago checkout")
		return
	}

	c.JSON(http.StatusOK, fields)
}

// Method tells the shop whether and how to offer Mercado Pago at checkout.
func (h *CheckoutHandler) Method(c *gin.Context) {
	c.JSON(http.StatusOK, h.preferences.Method())
}

func (h *CheckoutHandler) Success(c *gin.Context) {
	ctx := c.Request.Context()
	var q returnQuery
	_ = c.ShouldBindQuery(&q)

	if q.ExternalReference != "" {
		if _, err := h.orders.GetOrderByID(ctx, q.ExternalReference); err != nil {
			h.l.WithContext(ctx).Warn("checkout: success return without stored order: order_id=%s error=%v",
				q.ExternalReference, err)
		}
	}

	h.redirect(c, h.shop.Success, successParams{
		OrderID:   q.ExternalReference,
		PaymentID: q.paymentID(),
		Status:    q.status(),
	})
}

func (h *CheckoutHandler) Cancel(c *gin.Context) {
	var q returnQuery
	_ = c.ShouldBindQuery(&q)
	h.redirect(c, h.shop.Cart, noticeParams{Notice: "payment-cancelled", Level: "error", OrderID: q.ExternalReference})
}

func (h *CheckoutHandler) Pending(c *gin.Context) {
	var q returnQuery
	_ = c.ShouldBindQuery(&q)
	h.redirect(c, h.shop.Cart, noticeParams{Notice: "payment-pending", Level: "warning", OrderID: q.ExternalReference})
}

func (h *CheckoutHandler) redirect(c *gin.Context, target string, params any) {
	values, err := query.Values(params)
	if err != nil {
		c.Redirect(http.StatusFound, target)
		return
	}
	c.Redirect(http.StatusFound, withQuery(target, values))
}

func (h *CheckoutHandler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"message": message, "cart_url": h.shop.Cart})
}

func withQuery(target string, values url.Values) string {
	if len(values) == 0 {
		return target
	}
	u, err := url.Parse(target)
	if err != nil {
		return target
	}
	q := u.Query()
	for k, vs := range values {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func statusForCheckoutError(err error) int {
	var verr *currency.ValidationError
	switch {
	case errors.Is(err, checkout.ErrInvalidSnapshot), errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, checkout.ErrMethodDisabled):
		return http.StatusForbidden
	case errors.Is(err, payment.ErrMissingCredentials):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}
