package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/kafka-go"

	"strikebook/pkg/messaging"
)

// Consumer tails an outcome topic and hands each decoded message to a handler.
type Consumer struct {
	reader *kafka.Reader
}

// NewConsumer creates a reader over the outcome topic. An empty groupID tails
// the topic from its last offset without committing.
func NewConsumer(brokerAddr, topic, groupID string) *Consumer {
	cfg := kafka.ReaderConfig{
		Brokers:  []string{brokerAddr},
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	}
	if groupID == "" {
		cfg.StartOffset = kafka.LastOffset
	}

	return &Consumer{reader: kafka.NewReader(cfg)}
}

// Consume blocks reading messages until the context is canceled or the
// handler returns an error. Context cancellation is a clean stop, not an error.
func (c *Consumer) Consume(ctx context.Context, handler func(*messaging.OutcomeMessage) error) error {
	for {
		kafkaMsg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("failed to read message from Kafka: %w", err)
		}

		var msg messaging.OutcomeMessage
		if err := json.Unmarshal(kafkaMsg.Value, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal outcome message: %w", err)
		}

		if err := handler(&msg); err != nil {
			return err
		}
	}
}

// Close closes the Kafka reader
func (c *Consumer) Close() error {
	return c.reader.Close()
}
