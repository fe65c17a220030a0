package order

import (
	"context"
	"time"
)

type EventKind string

const (
	EventPlaced   EventKind = "order.placed"
	EventInvoiced EventKind = "order.invoiced"
	EventCanceled EventKind = "order.canceled"
)

type Event struct {
	Kind       EventKind `json:"kind"`
	OrderID    string    `json:"order_id"`
	Status     Status    `json:"status"`
	PaymentID  string    `json:"payment_id,omitempty"`
	InvoiceID  string    `json:"invoice_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher is notified after a state change has been committed.
// Delivery is best effort.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event Event) error
}

type NoopPublisher struct{}

func (NoopPublisher) PublishOrderEvent(context.Context, Event) error { return nil }
