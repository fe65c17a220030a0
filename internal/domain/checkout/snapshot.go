package checkout

import (
	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/internal/domain/payment"

	"github.com/shopspring/decimal"
)

// Snapshot is the cart as handed over by the shop at checkout time.
type Snapshot struct {
	CartID       string          `json:"cart_id" binding:"required"`
	CurrencyCode string          `json:"currency_code" binding:"required,len=3"`
	GrandTotal   decimal.Decimal `json:"grand_total"`
	Items        []SnapshotItem  `json:"items"`
	Shipping     *ShippingRate   `json:"shipping,omitempty"`
	Billing      *Address        `json:"billing_address,omitempty"`
}

type SnapshotItem struct {
	ID       string          `json:"id"`
	SKU      string          `json:"sku"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

type ShippingRate struct {
	Carrier string          `json:"carrier"`
	Price   decimal.Decimal `json:"price"`
}

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Postcode  string `json:"postcode"`
	Street    string `json:"address"`
}

// ToOrder converts the snapshot into the pending order stored at redirect.
// Lines without a positive quantity are dropped, as Build drops them from
// the preference.
func (s *Snapshot) ToOrder() order.Order {
	o := order.Order{
		ID:            s.CartID,
		PaymentMethod: payment.MethodCode,
		CurrencyCode:  s.CurrencyCode,
		GrandTotal:    s.GrandTotal,
	}
	if s.Billing != nil {
		o.CustomerEmail = s.Billing.Email
	}
	for _, it := range s.Items {
		if it.Quantity <= 0 {
			continue
		}
		o.Items = append(o.Items, order.Item{
			ID:       it.ID,
			SKU:      it.SKU,
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		})
	}
	return o
}
