// Package book implements a single-instrument limit order matching engine.
//
// The engine matches on exact quantity only: an incoming order trades when a
// resting order at its price on the opposite side carries the same quantity,
// with ties broken by arrival order. There are no partial fills and a trade
// never spans price levels. Marketable orders that cannot be matched this way
// are rejected instead of resting. The book performs no I/O and contains no
// locking; callers drive it one instruction at a time.
package book

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// OrderBook owns the two sides of one instrument's book plus a flat index
// from order id to the order resting there. The index holds copies, not
// references: every mutation updates the index and the side together, so the
// two views never disagree between operations.
type OrderBook struct {
	asks  *BookSide
	bids  *BookSide
	index map[uint64]Order
}

// NewOrderBook creates an empty book
func NewOrderBook() *OrderBook {
	return &OrderBook{
		asks:  NewBookSide(),
		bids:  NewBookSide(),
		index: make(map[uint64]Order),
	}
}

// GetOrder returns a copy of the resting order with the given id
func (ob *OrderBook) GetOrder(orderID uint64) (Order, bool) {
	order, ok := ob.index[orderID]
	return order, ok
}

// Len returns the number of resting orders
func (ob *OrderBook) Len() int {
	return len(ob.index)
}

// BestAskPrice returns the lowest resting ask price
func (ob *OrderBook) BestAskPrice() (fpdecimal.Decimal, bool) {
	level := ob.asks.Min()
	if level == nil {
		return fpdecimal.Zero, false
	}
	return level.Price(), true
}

// BestBidPrice returns the highest resting bid price
func (ob *OrderBook) BestBidPrice() (fpdecimal.Decimal, bool) {
	level := ob.bids.Max()
	if level == nil {
		return fpdecimal.Zero, false
	}
	return level.Price(), true
}

// SubmitOrder runs one order through the book and reports what happened.
//
// The order first tries to trade against the opposite side at exactly its
// price and quantity. On a match the maker leaves the book and the outcome is
// OutcomeTraded, carrying a top-of-book snapshot when the trade consumed the
// opposite side's best price. Without a match, an order priced at or through
// the opposite best is rejected rather than left crossing the book. Otherwise
// the order rests: OutcomeTopOfBook when it starts or joins the side's best
// price, OutcomeAccepted when it rests deeper.
func (ob *OrderBook) SubmitOrder(side Side, price, quantity fpdecimal.Decimal, ownerID, orderID uint64) Outcome {
	opposite := side.Opposite()

	priorTop := fpdecimal.Zero
	hasOpposite := false
	if level := ob.bestLevel(opposite); level != nil {
		priorTop = level.Price()
		hasOpposite = true
	}

	if maker, ok := ob.sideFor(opposite).Trade(price, quantity); ok {
		delete(ob.index, maker.ID())
		out := newTraded(ownerID, orderID, maker, price, quantity)
		if priorTop.Equal(price) {
			out.Top = ob.topSnapshot(opposite)
		}
		return out
	}

	if hasOpposite && betterOrEqual(side, price, priorTop) {
		return newRejected(ownerID, orderID)
	}

	order := NewOrder(orderID, ownerID, side, price, quantity)
	ownBest := ob.bestLevel(side)
	ob.sideFor(side).Append(order)
	ob.index[orderID] = order

	if ownBest == nil || betterOrEqual(side, price, ownBest.Price()) {
		return newTopOfBook(ownerID, orderID, ob.topSnapshot(side))
	}
	return newAccepted(ownerID, orderID)
}

// CancelOrder removes a resting order from the book. Canceling an id that is
// not resting is a caller bug and panics: the driver contract only allows
// cancels for orders it has seen accepted and not yet matched or canceled.
// The outcome is OutcomeTopOfBook with a fresh snapshot when the canceled
// order sat at its side's best price, OutcomeAccepted otherwise.
func (ob *OrderBook) CancelOrder(orderID uint64) Outcome {
	order, ok := ob.index[orderID]
	if !ok {
		panic(fmt.Sprintf("book: cancel of unknown order id %d", orderID))
	}

	priorTop := ob.bestLevel(order.Side()).Price()
	if _, ok := ob.sideFor(order.Side()).Remove(order); !ok {
		panic(fmt.Sprintf("book: order %d indexed but not resident on %s side", orderID, order.Side()))
	}
	delete(ob.index, orderID)

	if !priorTop.Equal(order.Price()) {
		return newAccepted(order.OwnerID(), order.ID())
	}
	return newTopOfBook(order.OwnerID(), order.ID(), ob.topSnapshot(order.Side()))
}

// String implements Stringer interface
func (ob *OrderBook) String() string {
	return "asks:" + ob.asks.String() + "\nbids:" + ob.bids.String()
}

// sideFor selects the side a tag names. Side is a closed two-variant set, so
// selection is an explicit branch, never dispatch.
func (ob *OrderBook) sideFor(side Side) *BookSide {
	if side == Ask {
		return ob.asks
	}
	return ob.bids
}

// bestLevel returns the most aggressive level of a side: the lowest ask or
// the highest bid. Nil when the side is empty.
func (ob *OrderBook) bestLevel(side Side) *PriceLevel {
	if side == Ask {
		return ob.asks.Min()
	}
	return ob.bids.Max()
}

// topSnapshot captures a side's best price and volume after a change
func (ob *OrderBook) topSnapshot(side Side) *TopSnapshot {
	level := ob.bestLevel(side)
	if level == nil {
		return &TopSnapshot{Side: side, Empty: true}
	}
	return &TopSnapshot{Side: side, Price: level.Price(), Volume: level.Volume()}
}

// betterOrEqual reports whether price is at least as aggressive as ref on the
// given side: lower or equal for asks, higher or equal for bids.
func betterOrEqual(side Side, price, ref fpdecimal.Decimal) bool {
	if side == Ask {
		return price.LessThanOrEqual(ref)
	}
	return price.GreaterThanOrEqual(ref)
}
