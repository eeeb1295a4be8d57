package queue

import (
	"context"
	"errors"
	"sync"

	"strikebook/pkg/messaging"
)

// defaultPoolSize keeps enough producer connections warm for a busy feed
const defaultPoolSize = 8

// ErrEmptyPool is returned when a pool is constructed with no senders
var ErrEmptyPool = errors.New("sender pool has no senders")

// SenderPool fans Send calls out over a fixed set of senders behind one
// mutex, so a hot pipeline is not serialized on a single producer connection.
type SenderPool struct {
	mu      sync.Mutex
	senders []messaging.OutcomeSender
	next    int
}

// NewSenderPool builds a pool of size fresh queue senders. A non-positive
// size falls back to the default.
func NewSenderPool(size int) (*SenderPool, error) {
	if size <= 0 {
		size = defaultPoolSize
	}

	senders := make([]messaging.OutcomeSender, 0, size)
	for i := 0; i < size; i++ {
		sender, err := NewQueueOutcomeSender()
		if err != nil {
			for _, s := range senders {
				_ = s.Close()
			}
			return nil, err
		}
		senders = append(senders, sender)
	}

	return NewSenderPoolWith(senders)
}

// NewSenderPoolWith wraps an existing set of senders. The pool takes
// ownership and closes them all on Close.
func NewSenderPoolWith(senders []messaging.OutcomeSender) (*SenderPool, error) {
	if len(senders) == 0 {
		return nil, ErrEmptyPool
	}
	return &SenderPool{senders: senders}, nil
}

// Send forwards the message to the next sender in round-robin order
func (p *SenderPool) Send(ctx context.Context, msg *messaging.OutcomeMessage) error {
	p.mu.Lock()
	sender := p.senders[p.next]
	p.next = (p.next + 1) % len(p.senders)
	p.mu.Unlock()

	return sender.Send(ctx, msg)
}

// Close closes every pooled sender and reports the first failure
func (p *SenderPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for _, sender := range p.senders {
		if err := sender.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Ensure SenderPool implements OutcomeSender
var _ messaging.OutcomeSender = (*SenderPool)(nil)
