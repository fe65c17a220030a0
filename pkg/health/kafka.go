package health

import (
	"context"
	"fmt"

	"github.com/segmentio/kafka-go"
)

// KafkaChecker passes when a broker answers and the order events topic exists.
type KafkaChecker struct {
	brokers []string
	topic   string
}

func NewKafkaChecker(brokers []string, topic string) *KafkaChecker {
	return &KafkaChecker{brokers: brokers, topic: topic}
}

func (c *KafkaChecker) Name() string {
	return "kafka"
}

func (c *KafkaChecker) Check(ctx context.Context) Result {
	var lastErr error
	for _, broker := range c.brokers {
		conn, err := kafka.DialContext(ctx, "tcp", broker)
		if err != nil {
			lastErr = err
			continue
		}
		if dl, ok := ctx.Deadline(); ok {
			_ = conn.SetDeadline(dl)
		}

		partitions, err := conn.ReadPartitions(c.topic)
		_ = conn.Close()
		if err != nil {
			return resultOf(fmt.Errorf("topic %s: %w", c.topic, err))
		}
		if len(partitions) == 0 {
			return resultOf(fmt.Errorf("topic %s has no partitions", c.topic))
		}
		return Result{Status: StatusUp}
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no brokers configured")
	}
	return resultOf(fmt.Errorf("all brokers unreachable: %w", lastErr))
}
