package order

import (
	"errors"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID            string          `json:"order_id"`
	Status        Status          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	CurrencyCode  string          `json:"currency_code"`
	GrandTotal    decimal.Decimal `json:"grand_total"`
	CustomerEmail string          `json:"customer_email"`
	Items         []Item          `json:"items"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

type Item struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	QtyInvoiced int             `json:"qty_invoiced"`
}

func (i Item) QtyToInvoice() int {
	if q := i.Quantity - i.QtyInvoiced; q > 0 {
		return q
	}
	return 0
}

type Status string

const (
	StatusPending        Status = "pending"
	StatusPendingPayment Status = "pending_payment"
	StatusProcessing     Status = "processing"
	StatusCompleted      Status = "completed"
	StatusCanceled       Status = "canceled"
	StatusClosed         Status = "closed"
	StatusFraud          Status = "fraud"
)

var AvailableStatuses = []Status{
	StatusPending, StatusPendingPayment, StatusProcessing, StatusCompleted,
	StatusCanceled, StatusClosed, StatusFraud,
}

func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", errors.New("invalid order status")
}

// CanBeInvoiced holds only for orders still waiting for their first payment.
func (o Order) CanBeInvoiced() bool {
	return o.Status == StatusPending
}

// CanBeCanceled treats canceled as absorbing.
func (o Order) CanBeCanceled() bool {
	return o.Status != StatusCanceled
}

func (o Order) Validate() error {
	if o.ID == "" {
		return errors.New("order id is required")
	}
	if len(o.Items) == 0 {
		return errors.New("order has no items")
	}
	for _, it := range o.Items {
		if it.Quantity <= 0 {
			return errors.New("item quantity must be positive")
		}
	}
	return nil
}
