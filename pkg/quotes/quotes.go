// Package quotes mirrors visible top-of-book changes into Redis so
// dashboards and downstream readers can poll or subscribe without touching
// the matching engine. It caches display state only; the book itself is
// never persisted.
package quotes

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"strikebook/pkg/book"
)

// DefaultTTL bounds how long a stale quote survives a stopped feed
const DefaultTTL = 5 * time.Minute

// Options represents configuration options for the quote cache connection
type Options struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewClient creates a Redis client from the given options
func NewClient(options *Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     options.Addr,
		Password: options.Password,
		DB:       options.DB,
	})
}

// Quote is the cached top-of-book document for one side of one symbol.
// Price and Volume are empty when the side holds no resting orders.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     string    `json:"price,omitempty"`
	Volume    string    `json:"volume,omitempty"`
	Empty     bool      `json:"empty,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Cache writes quote documents into Redis and notifies subscribers. A nil
// Cache is valid and drops every call, so callers need no enabled checks.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCache creates a quote cache over an existing Redis client
func NewCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Publish stores the snapshot under book:{symbol}:{ask|bid} with the cache
// TTL and publishes the same document on quotes:{symbol}.
func (c *Cache) Publish(ctx context.Context, symbol string, top *book.TopSnapshot) error {
	if c == nil || top == nil {
		return nil
	}

	quote := &Quote{
		Symbol:    symbol,
		Side:      sideName(top.Side),
		Empty:     top.Empty,
		UpdatedAt: time.Now().UTC(),
	}
	if !top.Empty {
		quote.Price = top.Price.String()
		quote.Volume = top.Volume.String()
	}

	data, err := json.Marshal(quote)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	pipe := c.client.Pipeline()
	pipe.Set(ctx, c.quoteKey(symbol, top.Side), data, c.ttl)
	pipe.Publish(ctx, channelKey(symbol), data)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.Error("failed to publish quote",
			zap.String("symbol", symbol),
			zap.String("side", quote.Side),
			zap.Error(err))
		return err
	}

	return nil
}

// Top reads back the cached quote for one side of a symbol. It returns nil
// without error when no quote is cached.
func (c *Cache) Top(ctx context.Context, symbol string, side book.Side) (*Quote, error) {
	if c == nil {
		return nil, nil
	}

	data, err := c.client.Get(ctx, c.quoteKey(symbol, side)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		c.logger.Error("failed to get quote",
			zap.String("symbol", symbol),
			zap.Error(err))
		return nil, err
	}

	var quote Quote
	if err := json.Unmarshal(data, &quote); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}

	return &quote, nil
}

// Close releases the underlying Redis connection
func (c *Cache) Close() error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Close()
}

func (c *Cache) quoteKey(symbol string, side book.Side) string {
	return fmt.Sprintf("book:%s:%s", symbol, sideName(side))
}

func channelKey(symbol string) string {
	return fmt.Sprintf("quotes:%s", symbol)
}

func sideName(side book.Side) string {
	if side == book.Ask {
		return "ask"
	}
	return "bid"
}
