// Package correlation carries the id that ties one checkout or notification
// together across logs, spans, audit entries and order events.
package correlation

import (
	"context"

	"github.com/google/uuid"
)

const (
	HeaderName = "X-Correlation-ID"
	// RequestIDHeader is set by Mercado Pago on every notification delivery.
	RequestIDHeader = "X-Request-Id"
	KafkaHeaderName = "correlation_id"
)

type contextKey struct{}

func FromContext(ctx context.Context) string {
	if id, ok := ctx.Value(contextKey{}).(string); ok {
		return id
	}
	return ""
}

func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextKey{}, id)
}

func NewID() string {
	return uuid.New().String()
}

// Resolve picks the id for an inbound request: our own header first, then
// the processor's request id, else a fresh one.
func Resolve(header func(string) string) string {
	if id := header(HeaderName); id != "" {
		return id
	}
	if id := header(RequestIDHeader); id != "" {
		return id
	}
	return NewID()
}
