package payment

import "context"

//go:generate mockgen -source port.go -destination mock_port.go -package payment

// Processor is the outbound port to the payment processor API. Credentials are
// passed on every call and never stored by the implementation.
type Processor interface {
	CreatePreference(ctx context.Context, creds Credentials, req PreferenceRequest, idempotencyKey string) (Preference, error)
	// GetPayment returns ErrNotFound when the processor does not know the id.
	GetPayment(ctx context.Context, creds Credentials, id string) (Record, error)
	SearchPayments(ctx context.Context, creds Credentials, q SearchQuery) ([]Record, error)
}
