package ipn

import (
	"context"
	"time"

	"MercadoPagoGateway/internal/domain/payment"
)

// AuditEntry records one webhook delivery as received, with its result.
type AuditEntry struct {
	DeliveryID    string             `json:"delivery_id"`
	ReceivedAt    time.Time          `json:"received_at"`
	Payload       map[string]any     `json:"payload"`
	Reference     *payment.Reference `json:"reference,omitempty"`
	Rejection     Rejection          `json:"rejection,omitempty"`
	Outcome       Outcome            `json:"outcome"`
	DurationMs    int64              `json:"duration_ms"`
	CorrelationID string             `json:"correlation_id,omitempty"`
	TraceID       string             `json:"trace_id,omitempty"`
}

// AuditSink stores AuditEntry records. Failures are logged and never change
// the response to the notifier.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditReader lists recent deliveries for operators.
type AuditReader interface {
	Recent(ctx context.Context, size int) ([]AuditEntry, error)
}

// NoopAuditSink discards entries. Used when no audit store is configured.
type NoopAuditSink struct{}

func (NoopAuditSink) Record(context.Context, AuditEntry) error { return nil }
