package ipn

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/telemetry"

	"go.opentelemetry.io/otel/attribute"
)

const (
	// DefaultFetchTimeout bounds the payment lookup made for one notification.
	DefaultFetchTimeout = 8 * time.Second
	// DefaultSinkTimeout bounds each side effect that runs after the outcome
	// is known: the order event publish and the audit record.
	DefaultSinkTimeout = 2 * time.Second
)

// Timeouts bounds the blocking calls made while answering a notification.
// Zero values fall back to the defaults.
type Timeouts struct {
	Fetch time.Duration
	Sink  time.Duration
}

func (t Timeouts) withDefaults() Timeouts {
	if t.Fetch <= 0 {
		t.Fetch = DefaultFetchTimeout
	}
	if t.Sink <= 0 {
		t.Sink = DefaultSinkTimeout
	}
	return t
}

// detached keeps the request values (correlation id, span) but not its
// cancellation, so a notifier hanging up after the commit does not drop
// the side effect. The returned context is still bounded by d.
func detached(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), d)
}

// Reconciler turns a payment reference into an order transition. It owns the
// status transition table and is safe for concurrent use: deliveries for the
// same order are serialized by the row lock taken in apply.
type Reconciler struct {
	settings  payment.Settings
	processor payment.Processor
	orderRepo order.OrderRepo
	events    order.EventPublisher
	l         logger.Interface
	timeouts  Timeouts
	now       func() time.Time
}

// NewReconciler builds a Reconciler. A nil events publisher disables order
// events.
func NewReconciler(
	settings payment.Settings,
	processor payment.Processor,
	orderRepo order.OrderRepo,
	events order.EventPublisher,
	l logger.Interface,
	timeouts Timeouts,
) *Reconciler {
	if events == nil {
		events = order.NoopPublisher{}
	}
	return &Reconciler{
		settings:  settings,
		processor: processor,
		orderRepo: orderRepo,
		events:    events,
		l:         l,
		timeouts:  timeouts.withDefaults(),
		now:       time.Now,
	}
}

// Reconcile fetches the authoritative payment and applies the matching order
// transition. It never fails: every problem ends in a log line and an Outcome.
func (r *Reconciler) Reconcile(ctx context.Context, ref payment.Reference) (out Outcome) {
	ctx, span := telemetry.StartSpan(ctx, "ipn.reconcile", attribute.String("payment.id", ref.ID))
	defer span.End()
	l := r.l.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error("ipn: panic while reconciling payment %s: %v\n%s", ref.ID, rec, debug.Stack())
			telemetry.RecordSpanError(span, fmt.Errorf("panic: %v", rec))
			out = OutcomePanic
		}
		span.SetAttributes(attribute.String("ipn.outcome", string(out)))
	}()

	creds, err := r.settings.Credentials()
	if err != nil {
		l.Error("ipn: access token not configured, payment %s skipped", ref.ID)
		return OutcomeMissingCredentials
	}

	rec, out := r.fetch(ctx, l, creds, ref.ID)
	if out != "" {
		return out
	}
	return r.apply(ctx, l, rec)
}

// ReconcileOrder looks up the latest payment for an order and applies it.
// Used for manual resyncs when a notification was lost.
func (r *Reconciler) ReconcileOrder(ctx context.Context, orderID string) (out Outcome) {
	ctx, span := telemetry.StartSpan(ctx, "ipn.reconcile_order", attribute.String("order.id", orderID))
	defer span.End()
	l := r.l.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error("ipn: panic while resyncing order %s: %v\n%s", orderID, rec, debug.Stack())
			out = OutcomePanic
		}
	}()

	creds, err := r.settings.Credentials()
	if err != nil {
		l.Error("ipn: access token not configured, order %s not resynced", orderID)
		return OutcomeMissingCredentials
	}

	fetchCtx, cancel := context.WithTimeout(ctx, r.timeouts.Fetch)
	defer cancel()

	records, err := r.processor.SearchPayments(fetchCtx, creds, payment.SearchQuery{
		ExternalReference: orderID,
		Sort:              "date_created",
		Criteria:          "desc",
		Limit:             1,
	})
	if err != nil {
		telemetry.RecordSpanError(span, err)
		l.Error("ipn: search payments for order %s: %v", orderID, err)
		return OutcomeFetchFailed
	}
	if len(records) == 0 {
		l.Warn("ipn: no payments found for order %s", orderID)
		return OutcomePaymentNotFound
	}

	rec := records[0]
	if rec.ExternalReference == "" {
		rec.ExternalReference = orderID
	}
	return r.apply(ctx, l, rec)
}

func (r *Reconciler) fetch(ctx context.Context, l logger.Interface, creds payment.Credentials, id string) (payment.Record, Outcome) {
	fetchCtx, cancel := context.WithTimeout(ctx, r.timeouts.Fetch)
	defer cancel()

	rec, err := r.processor.GetPayment(fetchCtx, creds, id)
	switch {
	case errors.Is(err, payment.ErrNotFound):
		l.Warn("ipn: payment %s not found upstream, likely test data", id)
		return payment.Record{}, OutcomePaymentNotFound
	case err != nil:
		l.Error("ipn: fetch payment %s: %v", id, err)
		return payment.Record{}, OutcomeFetchFailed
	case rec.ExternalReference == "":
		l.Error("ipn: payment %s has no external_reference", id)
		return payment.Record{}, OutcomeMissingReference
	}
	return rec, ""
}

// apply runs the status transition table against the locked order row.
func (r *Reconciler) apply(ctx context.Context, l logger.Interface, rec payment.Record) Outcome {
	orderID := rec.ExternalReference
	var (
		out   Outcome
		event *order.Event
	)

	err := r.orderRepo.InTransaction(ctx, func(tx order.TxOrderRepo) error {
		o, err := tx.GetOrderForUpdate(ctx, orderID)
		if errors.Is(err, order.ErrNotFound) {
			out = OutcomeOrderNotFound
			return nil
		}
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		now := r.now().UTC()
		switch rec.Status {
		case payment.StatusApproved:
			if !o.CanBeInvoiced() {
				out = OutcomeUnchanged
				return nil
			}
			if o.PaymentMethod != payment.MethodCode {
				out = OutcomeOtherMethod
				return nil
			}
			inv, err := order.InvoiceOrder(ctx, tx, o, rec.ID, now)
			if errors.Is(err, order.ErrNothingToInvoice) {
				out = OutcomeUnchanged
				return nil
			}
			if err != nil {
				return err
			}
			out = OutcomeInvoiced
			event = &order.Event{
				Kind: order.EventInvoiced, OrderID: o.ID, Status: order.StatusProcessing,
				PaymentID: rec.ID, InvoiceID: inv.ID.String(), OccurredAt: now,
			}

		case payment.StatusPending, payment.StatusInProcess:
			out = OutcomeUnchanged

		case payment.StatusRejected, payment.StatusCancelled, payment.StatusRefunded, payment.StatusChargedBack:
			if !o.CanBeCanceled() {
				out = OutcomeUnchanged
				return nil
			}
			if err := order.CancelOrder(ctx, tx, o); err != nil {
				return err
			}
			out = OutcomeCanceled
			event = &order.Event{
				Kind: order.EventCanceled, OrderID: o.ID, Status: order.StatusCanceled,
				PaymentID: rec.ID, OccurredAt: now,
			}

		default:
			out = OutcomeUnknownStatus
		}
		return nil
	})
	if err != nil {
		l.Error("ipn: apply payment %s to order %s: %v", rec.ID, orderID, err)
		return OutcomeStoreFailed
	}

	switch out {
	case OutcomeOrderNotFound:
		l.Warn("ipn: order %s not found for payment %s, could be test data or an old payment", orderID, rec.ID)
	case OutcomeUnknownStatus:
		l.Warn("ipn: unknown payment status %q for order %s", rec.Status, orderID)
	case OutcomeInvoiced:
		l.Info("ipn: invoice %s created for order %s, payment %s", event.InvoiceID, orderID, rec.ID)
	case OutcomeCanceled:
		l.Info("ipn: order %s canceled due to payment status %s", orderID, rec.Status)
	case OutcomeOtherMethod:
		l.Info("ipn: order %s is not paid with %s, no invoice created", orderID, payment.MethodCode)
	default:
		l.Debug("ipn: payment %s status %s leaves order %s unchanged", rec.ID, rec.Status, orderID)
	}

	if event != nil {
		pubCtx, cancel := detached(ctx, r.timeouts.Sink)
		defer cancel()
		if err := r.events.PublishOrderEvent(pubCtx, *event); err != nil {
			l.Warn("ipn: publish %s for order %s: %v", event.Kind, orderID, err)
		}
	}
	return out
}
