package feed

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nikolaydubina/fpdecimal"

	"strikebook/pkg/book"
	"strikebook/pkg/logging"
)

// Router owns every live order book, keyed by symbol, and remembers which
// book each order id went to so cancels route without carrying a symbol.
//
// The lock covers the maps only. Book mutations are not locked: instructions
// are applied from a single goroutine, and Stats is meant for idle moments
// (startup, shutdown, between runs), not for sampling a running feed.
type Router struct {
	mu      sync.RWMutex
	books   map[string]*book.OrderBook
	created map[string]time.Time
	symbols map[uint64]string
}

// Applied pairs an outcome with the symbol of the book that produced it
type Applied struct {
	Symbol  string
	Outcome book.Outcome
}

// BookStats describes one live book
type BookStats struct {
	Symbol     string
	CreatedAt  time.Time
	OrderCount int
	BestAsk    fpdecimal.Decimal
	HasAsk     bool
	BestBid    fpdecimal.Decimal
	HasBid     bool
}

// NewRouter creates an empty Router
func NewRouter() *Router {
	return &Router{
		books:   make(map[string]*book.OrderBook),
		created: make(map[string]time.Time),
		symbols: make(map[uint64]string),
	}
}

// Apply routes one instruction to its book and returns what the book made
// of it. Flushes return nil: they produce no outcome. Canceling an order id
// the router has never seen accepted is a feed contract violation and
// panics, matching the book's own cancel precondition.
func (r *Router) Apply(ctx context.Context, ins Instruction) *Applied {
	switch ins.Kind {
	case KindNew:
		return r.submit(ctx, ins)
	case KindCancel:
		return r.cancel(ctx, ins)
	case KindFlush:
		r.Flush(ctx)
		return nil
	default:
		panic(fmt.Sprintf("feed: unhandled instruction kind %d", ins.Kind))
	}
}

func (r *Router) submit(ctx context.Context, ins Instruction) *Applied {
	r.mu.Lock()
	b, ok := r.books[ins.Symbol]
	if !ok {
		b = book.NewOrderBook()
		r.books[ins.Symbol] = b
		r.created[ins.Symbol] = time.Now()
	}
	r.symbols[ins.OrderID] = ins.Symbol
	r.mu.Unlock()

	logger := logging.FromContext(ctx)
	if !ok {
		logger.Info().Str("symbol", ins.Symbol).Msg("Created order book")
	}

	out := b.SubmitOrder(ins.Side, ins.Price, ins.Quantity, ins.UserID, ins.OrderID)
	logger.Debug().
		Str("symbol", ins.Symbol).
		Uint64("order_id", ins.OrderID).
		Str("side", ins.Side.String()).
		Str("outcome", out.Kind.String()).
		Msg("Submitted order")

	return &Applied{Symbol: ins.Symbol, Outcome: out}
}

func (r *Router) cancel(ctx context.Context, ins Instruction) *Applied {
	r.mu.RLock()
	symbol, ok := r.symbols[ins.OrderID]
	b := r.books[symbol]
	r.mu.RUnlock()
	if !ok || b == nil {
		panic(fmt.Sprintf("feed: cancel of unrouted order id %d", ins.OrderID))
	}

	out := b.CancelOrder(ins.OrderID)
	logging.FromContext(ctx).Debug().
		Str("symbol", symbol).
		Uint64("order_id", ins.OrderID).
		Str("outcome", out.Kind.String()).
		Msg("Canceled order")

	return &Applied{Symbol: symbol, Outcome: out}
}

// Flush discards every book and the whole routing map. Books have no clear
// operation; a flushed symbol starts over with a fresh book on its next
// order.
func (r *Router) Flush(ctx context.Context) {
	r.mu.Lock()
	n := len(r.books)
	r.books = make(map[string]*book.OrderBook)
	r.created = make(map[string]time.Time)
	r.symbols = make(map[uint64]string)
	r.mu.Unlock()

	logging.FromContext(ctx).Info().Int("books", n).Msg("Flushed order books")
}

// Book returns the live book for a symbol
func (r *Router) Book(symbol string) (*book.OrderBook, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	b, ok := r.books[symbol]
	return b, ok
}

// Symbol returns the symbol an order id was routed to
func (r *Router) Symbol(orderID uint64) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	symbol, ok := r.symbols[orderID]
	return symbol, ok
}

// Len returns the number of live books
func (r *Router) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.books)
}

// Stats reports each live book's age, order count and best prices, sorted
// by symbol
func (r *Router) Stats() []BookStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := make([]BookStats, 0, len(r.books))
	for symbol, b := range r.books {
		s := BookStats{
			Symbol:     symbol,
			CreatedAt:  r.created[symbol],
			OrderCount: b.Len(),
		}
		s.BestAsk, s.HasAsk = b.BestAskPrice()
		s.BestBid, s.HasBid = b.BestBidPrice()
		stats = append(stats, s)
	}

	sort.Slice(stats, func(i, j int) bool { return stats[i].Symbol < stats[j].Symbol })
	return stats
}
