package kafka

import (
	"context"
	"encoding/json"
	"time"

	"MercadoPagoGateway/internal/messaging"
	"MercadoPagoGateway/pkg/correlation"
	"MercadoPagoGateway/pkg/logger"
	"MercadoPagoGateway/pkg/metrics"

	"github.com/segmentio/kafka-go"
)

var _ messaging.Publisher = (*Publisher)(nil)

// Publisher implements messaging.Publisher using Kafka.
type Publisher struct {
	writer *kafka.Writer
	logger logger.Interface
}

func NewPublisher(l logger.Interface, brokers []string, topic string) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 10 * time.Millisecond,
		WriteTimeout: 5 * time.Second,
		MaxAttempts:  3,
	}

	return &Publisher{
		writer: writer,
		logger: l,
	}
}

func (p *Publisher) Publish(ctx context.Context, env messaging.Envelope) error {
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:     []byte(env.Key),
		Value:   value,
		Headers: []kafka.Header{{Key: "type", Value: []byte(env.Type)}},
	}
	if env.CorrelationID != "" {
		msg.Headers = append(msg.Headers, kafka.Header{Key: correlation.KafkaHeaderName, Value: []byte(env.CorrelationID)})
	}

	start := time.Now()
	err = p.writer.WriteMessages(ctx, msg)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.KafkaPublishDuration.WithLabelValues(p.writer.Topic, status).Observe(time.Since(start).Seconds())
	metrics.KafkaMessagesPublished.WithLabelValues(p.writer.Topic, status).Inc()

	l := p.logger.WithContext(ctx)
	if err != nil {
		l.Error("Failed to publish message: topic=%s key=%s error=%v", p.writer.Topic, env.Key, err)
		return err
	}

	l.Debug("Message published: topic=%s key=%s event_id=%s type=%s",
		p.writer.Topic, env.Key, env.EventID, env.Type)
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
