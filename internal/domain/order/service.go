package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"MercadoPagoGateway/pkg/logger"
)

type OrderService struct {
	orderRepo OrderRepo
	events    EventPublisher
	l         logger.Interface
	now       func() time.Time
}

func NewOrderService(orderRepo OrderRepo, events EventPublisher, l logger.Interface) *OrderService {
	if events == nil {
		events = NoopPublisher{}
	}
	return &OrderService{orderRepo: orderRepo, events: events, l: l, now: time.Now}
}

func (s *OrderService) GetOrderByID(ctx context.Context, id string) (Order, error) {
	o, err := s.orderRepo.GetOrder(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Order{}, err
		}
		return Order{}, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

// PlaceOrder stores a pending order for the checkout. Placing the same id twice
// returns the stored order and created=false.
func (s *OrderService) PlaceOrder(ctx context.Context, o Order) (placed Order, created bool, err error) {
	if err := o.Validate(); err != nil {
		return Order{}, false, fmt.Errorf("%w: %s", ErrInvalidOrder, err.Error())
	}

	now := s.now().UTC()
	o.Status = StatusPending
	o.CreatedAt, o.UpdatedAt = now, now

	err = s.orderRepo.InTransaction(ctx, func(tx TxOrderRepo) error {
		existing, err := tx.GetOrder(ctx, o.ID)
		if err == nil {
			placed = existing
			return nil
		}
		if !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("load order: %w", err)
		}

		if err := tx.CreateOrder(ctx, o); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		placed, created = o, true
		return nil
	})
	if err != nil {
		return Order{}, false, err
	}

	if created {
		s.Publish(ctx, Event{Kind: EventPlaced, OrderID: o.ID, Status: o.Status, OccurredAt: now})
	}
	return placed, created, nil
}

// Publish forwards a committed change to the event publisher. Failures are
// logged and dropped.
func (s *OrderService) Publish(ctx context.Context, e Event) {
	if err := s.events.PublishOrderEvent(ctx, e); err != nil {
		s.l.WithContext(ctx).Warn("order event not published: kind=%s order_id=%s error=%v", e.Kind, e.OrderID, err)
	}
}

// InvoiceOrder creates a paid invoice and moves the order to processing.
// Callers run it inside a transaction holding the order row.
func InvoiceOrder(ctx context.Context, tx TxOrderRepo, o Order, paymentID string, now time.Time) (Invoice, error) {
	inv, err := PrepareInvoice(o, paymentID, now)
	if err != nil {
		return Invoice{}, err
	}
	if err := tx.CreateInvoice(ctx, inv); err != nil {
		return Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	if err := tx.UpdateStatus(ctx, o.ID, StatusProcessing); err != nil {
		return Invoice{}, fmt.Errorf("update status: %w", err)
	}
	return inv, nil
}

func CancelOrder(ctx context.Context, tx TxOrderRepo, o Order) error {
	if err := tx.UpdateStatus(ctx, o.ID, StatusCanceled); err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	return nil
}
