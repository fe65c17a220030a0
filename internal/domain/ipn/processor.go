package ipn

import (
	"context"
	"runtime/debug"
	"time"

	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/correlation"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/metrics"
	"MercadoPagoGateway/pkg/pointers"
	"MercadoPagoGateway/pkg/telemetry"

	"github.com/google/uuid"
)

//go:generate mockgen -source processor.go -destination mock_processor.go -package ipn

// PaymentReconciler is the part of Reconciler the Processor depends on.
type PaymentReconciler interface {
	Reconcile(ctx context.Context, ref payment.Reference) Outcome
}

// Processor is the single entry point for a webhook delivery:
// normalize, reconcile, then account for the result.
type Processor struct {
	reconciler  PaymentReconciler
	audit       AuditSink
	l           logger.Interface
	sinkTimeout time.Duration
	now         func() time.Time
}

// NewProcessor builds a Processor. A nil audit sink disables the audit trail;
// a non-positive sinkTimeout means DefaultSinkTimeout.
func NewProcessor(reconciler PaymentReconciler, audit AuditSink, l logger.Interface, sinkTimeout time.Duration) *Processor {
	if audit == nil {
		audit = NoopAuditSink{}
	}
	if sinkTimeout <= 0 {
		sinkTimeout = DefaultSinkTimeout
	}
	return &Processor{reconciler: reconciler, audit: audit, l: l, sinkTimeout: sinkTimeout, now: time.Now}
}

// Process never fails and never panics.
func (p *Processor) Process(ctx context.Context, payload map[string]any) (out Outcome) {
	start := p.now()
	entry := AuditEntry{ReceivedAt: start.UTC(), Payload: payload}
	l := p.l.WithContext(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			l.Error("ipn: panic while processing delivery: %v\n%s", rec, debug.Stack())
			out = OutcomePanic
		}
		entry.Outcome = out
		p.finish(ctx, l, start, entry)
	}()

	ref, rej := Inspect(payload)
	if rej != RejectNone {
		entry.Rejection = rej
		l.Debug("ipn: delivery ignored: reason=%s", rej)
		return OutcomeIgnored
	}
	entry.Reference = pointers.Ptr(ref)

	return p.reconciler.Reconcile(ctx, ref)
}

// Reject accounts for a delivery that was refused before normalization.
func (p *Processor) Reject(ctx context.Context, payload map[string]any, out Outcome) {
	start := p.now()
	p.finish(ctx, p.l.WithContext(ctx), start, AuditEntry{ReceivedAt: start.UTC(), Payload: payload, Outcome: out})
}

func (p *Processor) finish(ctx context.Context, l logger.Interface, start time.Time, entry AuditEntry) {
	elapsed := p.now().Sub(start)
	metrics.IPNNotificationsTotal.WithLabelValues(string(entry.Outcome)).Inc()
	metrics.IPNReconcileDuration.WithLabelValues(string(entry.Outcome)).Observe(elapsed.Seconds())

	entry.DeliveryID = uuid.NewString()
	entry.DurationMs = elapsed.Milliseconds()
	entry.CorrelationID = correlation.FromContext(ctx)
	entry.TraceID = telemetry.TraceID(ctx)

	auditCtx, cancel := detached(ctx, p.sinkTimeout)
	defer cancel()
	if err := p.audit.Record(auditCtx, entry); err != nil {
		l.Warn("ipn: audit record not stored: outcome=%s error=%v", entry.Outcome, err)
	}
}
