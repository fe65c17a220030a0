package order

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type InvoiceState string

const InvoiceStatePaid InvoiceState = "paid"

type Invoice struct {
	ID         uuid.UUID       `json:"id"`
	OrderID    string          `json:"order_id"`
	State      InvoiceState    `json:"state"`
	PaymentID  string          `json:"payment_id"`
	GrandTotal decimal.Decimal `json:"grand_total"`
	Items      []InvoiceItem   `json:"items"`
	CreatedAt  time.Time       `json:"created_at"`
}

type InvoiceItem struct {
	OrderItemID string          `json:"order_item_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

// PrepareInvoice covers every item at its remaining invoiceable quantity.
func PrepareInvoice(o Order, paymentID string, now time.Time) (Invoice, error) {
	inv := Invoice{
		ID:        uuid.New(),
		OrderID:   o.ID,
		State:     InvoiceStatePaid,
		PaymentID: paymentID,
		CreatedAt: now,
	}

	total := decimal.Zero
	for _, it := range o.Items {
		qty := it.QtyToInvoice()
		if qty == 0 {
			continue
		}
		inv.Items = append(inv.Items, InvoiceItem{
			OrderItemID: it.ID,
			SKU:         it.SKU,
			Name:        it.Name,
			Price:       it.Price,
			Quantity:    qty,
		})
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	if len(inv.Items) == 0 {
		return Invoice{}, ErrNothingToInvoice
	}

	inv.GrandTotal = total
	return inv, nil
}
