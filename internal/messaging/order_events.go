package messaging

import (
	"context"
	"fmt"

	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/pkg/correlation"
)

var _ order.EventPublisher = (*OrderEvents)(nil)

// OrderEvents publishes order lifecycle events keyed by order ID, so all
// events of one order land on the same partition in order.
type OrderEvents struct {
	pub Publisher
}

func NewOrderEvents(pub Publisher) *OrderEvents {
	return &OrderEvents{pub: pub}
}

func (p *OrderEvents) PublishOrderEvent(ctx context.Context, event order.Event) error {
	env, err := NewEnvelope(event.OrderID, string(event.Kind), event)
	if err != nil {
		return fmt.Errorf("envelope %s: %w", event.Kind, err)
	}
	env.CorrelationID = correlation.FromContext(ctx)

	return p.pub.Publish(ctx, env)
}
