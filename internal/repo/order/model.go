package order_repo

import (
	"fmt"
	"time"

	"MercadoPagoGateway/internal/domain/order"

	"github.com/shopspring/decimal"
)

type orderRow struct {
	ID            string
	Status        string
	PaymentMethod string
	CurrencyCode  string
	GrandTotal    decimal.Decimal
	CustomerEmail string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (m orderRow) toDomain(items []order.Item) (order.Order, error) {
	status, err := order.NewStatus(m.Status)
	if err != nil {
		return order.Order{}, fmt.Errorf("order %s: %w", m.ID, err)
	}
	return order.Order{
		ID:            m.ID,
		Status:        status,
		PaymentMethod: m.PaymentMethod,
		CurrencyCode:  m.CurrencyCode,
		GrandTotal:    m.GrandTotal,
		CustomerEmail: m.CustomerEmail,
		Items:         items,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}, nil
}
