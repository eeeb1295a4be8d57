package book

import (
	"fmt"
	"strings"

	"github.com/nikolaydubina/fpdecimal"
	"github.com/tidwall/btree"
)

// BookSide is one half of the book: an ordered index from price to the
// PriceLevel resting there. It exclusively owns its levels, creates them on
// first use and drops them as soon as they empty, so every indexed price
// carries at least one order.
type BookSide struct {
	levels *btree.BTreeG[*PriceLevel]
}

// NewBookSide creates an empty side
func NewBookSide() *BookSide {
	return &BookSide{
		levels: btree.NewBTreeG(func(a, b *PriceLevel) bool {
			return a.price.LessThan(b.price)
		}),
	}
}

// Append adds an order to the level at its price, creating the level if this
// is the first order there, and returns the volume now resting at that price.
func (bs *BookSide) Append(order Order) fpdecimal.Decimal {
	level, ok := bs.levels.GetMut(&PriceLevel{price: order.price})
	if !ok {
		level = NewPriceLevel(order.price)
		bs.levels.Set(level)
	}
	return level.Append(order)
}

// Remove takes a resident order out of its level, dropping the level when it
// empties. It returns false when no level exists at the order's price.
func (bs *BookSide) Remove(order Order) (Order, bool) {
	level, ok := bs.levels.GetMut(&PriceLevel{price: order.price})
	if !ok {
		return Order{}, false
	}
	level.Remove(order)
	if level.IsEmpty() {
		bs.levels.Delete(level)
	}
	return order, true
}

// Trade asks the level at exactly the given price for an exact-quantity
// match. It never walks neighbouring levels. The emptied level is dropped.
func (bs *BookSide) Trade(price, quantity fpdecimal.Decimal) (Order, bool) {
	level, ok := bs.levels.GetMut(&PriceLevel{price: price})
	if !ok {
		return Order{}, false
	}
	matched, ok := level.Trade(quantity)
	if !ok {
		return Order{}, false
	}
	if level.IsEmpty() {
		bs.levels.Delete(level)
	}
	return matched, true
}

// Min returns the level at the lowest indexed price, or nil if the side is empty
func (bs *BookSide) Min() *PriceLevel {
	level, ok := bs.levels.Min()
	if !ok {
		return nil
	}
	return level
}

// Max returns the level at the highest indexed price, or nil if the side is empty
func (bs *BookSide) Max() *PriceLevel {
	level, ok := bs.levels.Max()
	if !ok {
		return nil
	}
	return level
}

// PriceVolume returns the aggregate volume resting at a price
func (bs *BookSide) PriceVolume(price fpdecimal.Decimal) (fpdecimal.Decimal, bool) {
	level, ok := bs.levels.Get(&PriceLevel{price: price})
	if !ok {
		return fpdecimal.Zero, false
	}
	return level.Volume(), true
}

// Len returns the number of indexed price levels
func (bs *BookSide) Len() int {
	return bs.levels.Len()
}

// Volume returns the total quantity resting on the side
func (bs *BookSide) Volume() fpdecimal.Decimal {
	total := fpdecimal.Zero
	bs.levels.Scan(func(level *PriceLevel) bool {
		total = total.Add(level.volume)
		return true
	})
	return total
}

// Prices returns all indexed prices in ascending order
func (bs *BookSide) Prices() []fpdecimal.Decimal {
	prices := make([]fpdecimal.Decimal, 0, bs.levels.Len())
	bs.levels.Scan(func(level *PriceLevel) bool {
		prices = append(prices, level.price)
		return true
	})
	return prices
}

// String implements Stringer interface
func (bs *BookSide) String() string {
	var sb strings.Builder
	bs.levels.Scan(func(level *PriceLevel) bool {
		fmt.Fprintf(&sb, "\n%s -> orders: %d, volume: %s", level.price, level.Len(), level.volume)
		return true
	})
	return sb.String()
}
