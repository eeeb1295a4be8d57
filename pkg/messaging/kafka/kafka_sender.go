package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"strikebook/pkg/messaging"
)

// Sender implements OutcomeSender using Kafka
type Sender struct {
	writer *kafka.Writer
	topic  string
}

// NewSender creates a new Kafka outcome sender
func NewSender(brokerAddr, topic string) (*Sender, error) {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokerAddr),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 10 * time.Millisecond,
	}

	return &Sender{
		writer: writer,
		topic:  topic,
	}, nil
}

// Send publishes an outcome message to Kafka. The symbol keys the message so
// one symbol's outcomes stay on one partition, in order.
func (s *Sender) Send(ctx context.Context, msg *messaging.OutcomeMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome message: %w", err)
	}

	kafkaMsg := kafka.Message{
		Key:   []byte(msg.Symbol),
		Value: data,
		Time:  time.Now(),
	}

	if err := s.writer.WriteMessages(ctx, kafkaMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the Kafka writer
func (s *Sender) Close() error {
	return s.writer.Close()
}

// Ensure Sender implements OutcomeSender
var _ messaging.OutcomeSender = (*Sender)(nil)
