package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strikebook/pkg/messaging"
)

// withMockProducer swaps producer creation for the given mock and restores it
// after the test.
func withMockProducer(t *testing.T, mock sarama.SyncProducer) {
	t.Helper()

	oldNewSyncProducer := newSyncProducer
	newSyncProducer = func(addrs []string, config *sarama.Config) (sarama.SyncProducer, error) {
		return mock, nil
	}
	t.Cleanup(func() { newSyncProducer = oldNewSyncProducer })
}

func TestQueueOutcomeSender_Send(t *testing.T) {
	outcome := &messaging.OutcomeMessage{
		Symbol:        "IBM",
		Kind:          "TRADED",
		UserID:        3,
		OrderID:       3,
		BuyerUserID:   2,
		BuyerOrderID:  2,
		SellerUserID:  3,
		SellerOrderID: 3,
		Price:         "5.000",
		Quantity:      "50.000",
		Top: &messaging.TopOfBook{
			Side:  "B",
			Empty: true,
		},
	}

	mockProd := &mockProducer{}
	withMockProducer(t, mockProd)

	sender, err := NewQueueOutcomeSender()
	require.NoError(t, err)
	defer sender.Close()

	err = sender.Send(context.Background(), outcome)
	require.NoError(t, err)

	// Verify the message was sent
	require.Len(t, mockProd.sentMessages, 1)
	msg := mockProd.sentMessages[0]

	require.Equal(t, topic, msg.Topic)

	key, err := msg.Key.Encode()
	require.NoError(t, err)
	assert.Equal(t, "IBM", string(key))

	// Unmarshal the message value to verify its content
	var decoded messaging.OutcomeMessage
	err = json.Unmarshal([]byte(msg.Value.(sarama.ByteEncoder)), &decoded)
	require.NoError(t, err)

	assert.Equal(t, outcome.Kind, decoded.Kind)
	assert.Equal(t, outcome.UserID, decoded.UserID)
	assert.Equal(t, outcome.OrderID, decoded.OrderID)
	assert.Equal(t, outcome.BuyerUserID, decoded.BuyerUserID)
	assert.Equal(t, outcome.SellerOrderID, decoded.SellerOrderID)
	assert.Equal(t, outcome.Price, decoded.Price)
	assert.Equal(t, outcome.Quantity, decoded.Quantity)
	require.NotNil(t, decoded.Top)
	assert.Equal(t, "B", decoded.Top.Side)
	assert.True(t, decoded.Top.Empty)
}

func TestQueueOutcomeSender_SendCanceledContext(t *testing.T) {
	mockProd := &mockProducer{}
	withMockProducer(t, mockProd)

	sender, err := NewQueueOutcomeSender()
	require.NoError(t, err)
	defer sender.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = sender.Send(ctx, &messaging.OutcomeMessage{Symbol: "IBM"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mockProd.sentMessages)
}

func TestSenderPoolRoundRobin(t *testing.T) {
	first := messaging.NewMockSender()
	second := messaging.NewMockSender()

	pool, err := NewSenderPoolWith([]messaging.OutcomeSender{first, second})
	require.NoError(t, err)
	defer pool.Close()

	ctx := context.Background()
	for i := uint64(1); i <= 4; i++ {
		require.NoError(t, pool.Send(ctx, &messaging.OutcomeMessage{Symbol: "IBM", OrderID: i}))
	}

	// Messages alternate between the two senders
	require.Len(t, first.Sent(), 2)
	require.Len(t, second.Sent(), 2)
	assert.Equal(t, uint64(1), first.Sent()[0].OrderID)
	assert.Equal(t, uint64(2), second.Sent()[0].OrderID)
	assert.Equal(t, uint64(3), first.Sent()[1].OrderID)
	assert.Equal(t, uint64(4), second.Sent()[1].OrderID)
}

func TestSenderPoolRejectsEmpty(t *testing.T) {
	_, err := NewSenderPoolWith(nil)
	assert.ErrorIs(t, err, ErrEmptyPool)
}

func TestSetBrokerListAndTopic(t *testing.T) {
	oldBrokers, oldTopic := brokerList, topic
	t.Cleanup(func() {
		brokerList = oldBrokers
		topic = oldTopic
	})

	SetBrokerList("kafka-1:9092,kafka-2:9092")
	SetTopic("outcomes-test")

	assert.Equal(t, "kafka-1:9092,kafka-2:9092", brokerList)
	assert.Equal(t, "outcomes-test", topic)

	mockProd := &mockProducer{}
	withMockProducer(t, mockProd)

	sender, err := NewQueueOutcomeSender()
	require.NoError(t, err)
	defer sender.Close()

	require.NoError(t, sender.Send(context.Background(), &messaging.OutcomeMessage{Symbol: "IBM"}))
	require.Len(t, mockProd.sentMessages, 1)
	assert.Equal(t, "outcomes-test", mockProd.sentMessages[0].Topic)
}
