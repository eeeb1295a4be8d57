package loadgen

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"

	"github.com/nikolaydubina/fpdecimal"

	"strikebook/pkg/book"
	"strikebook/pkg/feed"
)

// Generator produces one reproducible instruction stream. Bids ladder below
// the mid price and asks above it, so resting orders never cross; the mid
// price itself is reserved for trade pairs, which are emitted back to back
// and leave nothing behind.
type Generator struct {
	cfg        *Config
	rng        *rand.Rand
	nextID     uint64
	resting    map[string][]liveOrder
	sinceFlush int
}

type liveOrder struct {
	userID  uint64
	orderID uint64
}

// NewGenerator creates a Generator for cfg, deterministic under cfg.Seed
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		cfg:     cfg,
		rng:     rand.New(rand.NewSource(cfg.Seed)),
		resting: make(map[string][]liveOrder),
	}
}

// Emit calls fn for each generated instruction until the configured budget
// is spent or fn returns an error.
func (g *Generator) Emit(fn func(feed.Instruction) error) error {
	emitted := 0
	emit := func(ins feed.Instruction) error {
		emitted++
		g.sinceFlush++
		return fn(ins)
	}

	for emitted < g.cfg.Instructions {
		if g.cfg.FlushEvery > 0 && g.sinceFlush >= g.cfg.FlushEvery {
			if err := emit(feed.Instruction{Kind: feed.KindFlush}); err != nil {
				return err
			}
			g.reset()
			continue
		}

		symbol := g.cfg.Symbols[g.rng.Intn(len(g.cfg.Symbols))]
		roll := g.rng.Intn(100)
		switch {
		case roll < g.cfg.TradePercent && emitted+2 <= g.cfg.Instructions:
			maker, taker := g.tradePair(symbol)
			if err := emit(maker); err != nil {
				return err
			}
			if err := emit(taker); err != nil {
				return err
			}
		case roll < g.cfg.TradePercent+g.cfg.CancelPercent && len(g.resting[symbol]) > 0:
			if err := emit(g.cancelRandom(symbol)); err != nil {
				return err
			}
		default:
			if err := emit(g.restingOrder(symbol)); err != nil {
				return err
			}
		}
	}

	return nil
}

// Generate collects the whole stream into a slice
func (g *Generator) Generate() []feed.Instruction {
	out := make([]feed.Instruction, 0, g.cfg.Instructions)
	_ = g.Emit(func(ins feed.Instruction) error {
		out = append(out, ins)
		return nil
	})
	return out
}

// WriteCSV writes the whole stream as feed records and reports how many
// instructions were written
func (g *Generator) WriteCSV(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	n := 0
	err := g.Emit(func(ins feed.Instruction) error {
		n++
		_, err := fmt.Fprintln(bw, feed.FormatInstruction(ins))
		return err
	})
	if err != nil {
		return n, err
	}
	return n, bw.Flush()
}

// restingOrder emits an order one to Levels ticks away from the mid price:
// below for bids, above for asks. Such an order always rests.
func (g *Generator) restingOrder(symbol string) feed.Instruction {
	level := 1 + g.rng.Intn(g.cfg.Levels)
	side := book.Bid
	price := g.cfg.MidPrice - level*g.cfg.TickSize
	if g.rng.Intn(2) == 0 {
		side = book.Ask
		price = g.cfg.MidPrice + level*g.cfg.TickSize
	}

	ins := feed.Instruction{
		Kind:     feed.KindNew,
		UserID:   g.user(),
		OrderID:  g.nextOrderID(),
		Symbol:   symbol,
		Price:    fpdecimal.FromInt(price),
		Quantity: fpdecimal.FromInt(g.cfg.OrderSize),
		Side:     side,
	}
	g.resting[symbol] = append(g.resting[symbol], liveOrder{ins.UserID, ins.OrderID})
	return ins
}

// tradePair emits a maker and its taker at the mid price with equal
// quantity. The mid price level is empty before the maker arrives and empty
// again after the taker consumes it.
func (g *Generator) tradePair(symbol string) (feed.Instruction, feed.Instruction) {
	price := fpdecimal.FromInt(g.cfg.MidPrice)
	quantity := fpdecimal.FromInt(g.cfg.OrderSize)

	maker := feed.Instruction{
		Kind:     feed.KindNew,
		UserID:   g.user(),
		OrderID:  g.nextOrderID(),
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
		Side:     book.Ask,
	}
	taker := feed.Instruction{
		Kind:     feed.KindNew,
		UserID:   g.user(),
		OrderID:  g.nextOrderID(),
		Symbol:   symbol,
		Price:    price,
		Quantity: quantity,
		Side:     book.Bid,
	}
	if g.rng.Intn(2) == 0 {
		maker.Side, taker.Side = book.Bid, book.Ask
	}
	return maker, taker
}

// cancelRandom cancels one still-resting order of the symbol
func (g *Generator) cancelRandom(symbol string) feed.Instruction {
	live := g.resting[symbol]
	i := g.rng.Intn(len(live))
	picked := live[i]
	live[i] = live[len(live)-1]
	g.resting[symbol] = live[:len(live)-1]

	return feed.Instruction{Kind: feed.KindCancel, UserID: picked.userID, OrderID: picked.orderID}
}

func (g *Generator) reset() {
	g.resting = make(map[string][]liveOrder)
	g.sinceFlush = 0
}

func (g *Generator) user() uint64 {
	return uint64(1 + g.rng.Intn(g.cfg.Users))
}

func (g *Generator) nextOrderID() uint64 {
	g.nextID++
	return g.nextID
}
