//go:build integration
// +build integration

package kafka_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"MercadoPagoGateway/internal/domain/order"
	"MercadoPagoGateway/internal/external/kafka"
	"MercadoPagoGateway/internal/messaging"
	"MercadoPagoGateway/internal/testinfra"
	"MercadoPagoGateway/pkg/correlation"
	"MercadoPagoGateway/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_OrderEventsReachTopic(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()

	k, err := testinfra.NewKafka(ctx)
	require.NoError(t, err)
	t.Cleanup(func() { k.Cleanup(context.Background()) })

	pub := kafka.NewPublisher(logger.NewNop(), k.Brokers, k.OrdersTopic)
	t.Cleanup(func() { _ = pub.Close() })

	events := messaging.NewOrderEvents(pub)
	ctx = correlation.WithID(ctx, "corr-123")
	require.NoError(t, events.PublishOrderEvent(ctx, order.Event{
		Kind:       order.EventInvoiced,
		OrderID:    "cart-9",
		Status:     order.StatusProcessing,
		PaymentID:  "pay-9",
		OccurredAt: time.Now().UTC(),
	}))

	reader := k.OrdersReader()
	t.Cleanup(func() { _ = reader.Close() })

	msg, err := reader.ReadMessage(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cart-9", string(msg.Key))

	headers := map[string]string{}
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	assert.Equal(t, string(order.EventInvoiced), headers["type"])
	assert.Equal(t, "corr-123", headers[correlation.KafkaHeaderName])

	var env messaging.Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	var ev order.Event
	require.NoError(t, json.Unmarshal(env.Payload, &ev))
	assert.Equal(t, "pay-9", ev.PaymentID)
}
