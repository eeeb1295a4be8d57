package messaging

import (
	"context"
	"sync"
)

// MockSender is an in-memory implementation of OutcomeSender for testing.
// It records every message it is asked to send.
type MockSender struct {
	mu   sync.Mutex
	sent []*OutcomeMessage
	err  error
}

// NewMockSender creates a new MockSender.
func NewMockSender() *MockSender {
	return &MockSender{}
}

// Send records the message, or returns the configured error.
func (m *MockSender) Send(ctx context.Context, msg *OutcomeMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

// Close does nothing.
func (m *MockSender) Close() error {
	return nil
}

// FailWith makes every subsequent Send return err.
func (m *MockSender) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Sent returns the messages recorded so far.
func (m *MockSender) Sent() []*OutcomeMessage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*OutcomeMessage, len(m.sent))
	copy(out, m.sent)
	return out
}

// Ensure MockSender implements OutcomeSender
var _ OutcomeSender = (*MockSender)(nil)
