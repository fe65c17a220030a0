package ipn

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MercadoPagoGateway/internal/domain/payment"
	"MercadoPagoGateway/pkg/correlation"
	"MercadoPagoGateway/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type memAudit struct {
	mu       sync.Mutex
	entries  []AuditEntry
	err      error
	ctxErr   error
	deadline bool
}

func (a *memAudit) Record(ctx context.Context, e AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	a.ctxErr = ctx.Err()
	_, a.deadline = ctx.Deadline()
	return a.err
}

// stallingAudit never answers before its context is done.
type stallingAudit struct{}

func (stallingAudit) Record(ctx context.Context, _ AuditEntry) error {
	<-ctx.Done()
	return ctx.Err()
}

func newProcessor(t *testing.T) (*Processor, *MockPaymentReconciler, *memAudit) {
	t.Helper()

	rec := NewMockPaymentReconciler(gomock.NewController(t))
	audit := &memAudit{}
	return NewProcessor(rec, audit, logger.NewNop(), time.Second), rec, audit
}

func TestProcessor_Process(t *testing.T) {
	t.Run("malformed payload never reaches the reconciler", func(t *testing.T) {
		p, _, audit := newProcessor(t)

		got := p.Process(context.Background(), map[string]any{})

		assert.Equal(t, OutcomeIgnored, got)
		require.Len(t, audit.entries, 1)
		assert.Equal(t, RejectNoShape, audit.entries[0].Rejection)
		assert.Nil(t, audit.entries[0].Reference)
		assert.NotEmpty(t, audit.entries[0].DeliveryID)
	})

	t.Run("test data never reaches the reconciler", func(t *testing.T) {
		p, _, audit := newProcessor(t)

		got := p.Process(context.Background(), map[string]any{"type": "payment", "data": map[string]any{"id": "123456"}})

		assert.Equal(t, OutcomeIgnored, got)
		assert.Equal(t, RejectTestData, audit.entries[0].Rejection)
	})

	t.Run("valid payload is reconciled and audited", func(t *testing.T) {
		p, rec, audit := newProcessor(t)
		ctx := correlation.WithID(context.Background(), "corr-9")
		rec.EXPECT().Reconcile(ctx, payment.Reference{Type: "payment", ID: "55"}).Return(OutcomeInvoiced)

		got := p.Process(ctx, map[string]any{"topic": "payment", "id": "55"})

		assert.Equal(t, OutcomeInvoiced, got)
		require.Len(t, audit.entries, 1)
		e := audit.entries[0]
		assert.Equal(t, OutcomeInvoiced, e.Outcome)
		require.NotNil(t, e.Reference)
		assert.Equal(t, "55", e.Reference.ID)
		assert.Equal(t, "corr-9", e.CorrelationID)
		assert.Equal(t, "payment", e.Payload["topic"])
	})

	t.Run("reconciler panic is contained", func(t *testing.T) {
		p, rec, audit := newProcessor(t)
		rec.EXPECT().Reconcile(gomock.Any(), gomock.Any()).DoAndReturn(func(context.Context, payment.Reference) Outcome {
			panic("nil map")
		})

		var got Outcome
		assert.NotPanics(t, func() {
			got = p.Process(context.Background(), map[string]any{"type": "payment", "data": map[string]any{"id": "55"}})
		})
		assert.Equal(t, OutcomePanic, got)
		require.Len(t, audit.entries, 1)
		assert.Equal(t, OutcomePanic, audit.entries[0].Outcome)
	})

	t.Run("audit failure is swallowed", func(t *testing.T) {
		p, rec, audit := newProcessor(t)
		audit.err = errors.New("opensearch down")
		rec.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(OutcomeUnchanged)

		got := p.Process(context.Background(), map[string]any{"type": "payment", "data": map[string]any{"id": "55"}})

		assert.Equal(t, OutcomeUnchanged, got)
	})
}

func TestProcessor_AuditIsBounded(t *testing.T) {
	t.Run("stalled sink does not hold the response", func(t *testing.T) {
		rec := NewMockPaymentReconciler(gomock.NewController(t))
		rec.EXPECT().Reconcile(gomock.Any(), gomock.Any()).Return(OutcomeInvoiced)
		p := NewProcessor(rec, stallingAudit{}, logger.NewNop(), 50*time.Millisecond)

		start := time.Now()
		got := p.Process(context.Background(), map[string]any{"topic": "payment", "id": "55"})

		assert.Equal(t, OutcomeInvoiced, got)
		assert.Less(t, time.Since(start), time.Second)
	})

	t.Run("notifier hang-up does not drop the record", func(t *testing.T) {
		p, _, audit := newProcessor(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		got := p.Process(ctx, map[string]any{})

		assert.Equal(t, OutcomeIgnored, got)
		require.Len(t, audit.entries, 1)
		assert.NoError(t, audit.ctxErr)
		assert.True(t, audit.deadline)
	})
}

func TestProcessor_Reject(t *testing.T) {
	p, _, audit := newProcessor(t)

	p.Reject(context.Background(), map[string]any{"id": "55"}, OutcomeInvalidSignature)

	require.Len(t, audit.entries, 1)
	assert.Equal(t, OutcomeInvalidSignature, audit.entries[0].Outcome)
}
