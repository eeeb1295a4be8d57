package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/IBM/sarama"

	"strikebook/pkg/messaging"
)

const (
	defaultBrokerList = "localhost:9092"
	defaultTopic      = "strikebook-outcomes"
	maxRetry          = 5
)

var (
	brokerList = defaultBrokerList
	topic      = defaultTopic

	// newSyncProducer is replaced in tests to inject a scripted producer
	newSyncProducer = sarama.NewSyncProducer
)

// SetBrokerList overrides the Kafka broker list (comma separated)
func SetBrokerList(brokers string) {
	brokerList = brokers
}

// SetTopic overrides the outcome topic
func SetTopic(t string) {
	topic = t
}

// QueueOutcomeSender implements the OutcomeSender interface on a sarama
// synchronous producer. Each sender owns one producer connection.
type QueueOutcomeSender struct {
	producer sarama.SyncProducer
}

// NewQueueOutcomeSender creates a sender with a fresh producer connection
func NewQueueOutcomeSender() (*QueueOutcomeSender, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = maxRetry
	config.Producer.Return.Successes = true

	producer, err := newSyncProducer(strings.Split(brokerList, ","), config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kafka producer: %w", err)
	}

	return &QueueOutcomeSender{producer: producer}, nil
}

// Send publishes the outcome message to the Kafka queue
func (q *QueueOutcomeSender) Send(ctx context.Context, msg *messaging.OutcomeMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal outcome message: %w", err)
	}

	producerMsg := &sarama.ProducerMessage{
		Topic: topic,
		Key:   sarama.StringEncoder(msg.Symbol),
		Value: sarama.ByteEncoder(data),
	}

	if _, _, err := q.producer.SendMessage(producerMsg); err != nil {
		return fmt.Errorf("failed to send message to Kafka: %w", err)
	}

	return nil
}

// Close closes the underlying producer
func (q *QueueOutcomeSender) Close() error {
	return q.producer.Close()
}

// Ensure QueueOutcomeSender implements OutcomeSender
var _ messaging.OutcomeSender = (*QueueOutcomeSender)(nil)
