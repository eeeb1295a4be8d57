package book

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"
)

// PriceLevel holds all resting orders at one exact price, oldest first, and
// maintains the aggregate volume of its queue.
type PriceLevel struct {
	price  fpdecimal.Decimal
	volume fpdecimal.Decimal
	queue  []Order
}

// NewPriceLevel creates an empty price level
func NewPriceLevel(price fpdecimal.Decimal) *PriceLevel {
	return &PriceLevel{
		price:  price,
		volume: fpdecimal.Zero,
	}
}

// Price returns the level price
func (pl *PriceLevel) Price() fpdecimal.Decimal {
	return pl.price
}

// Volume returns the aggregate quantity of all queued orders
func (pl *PriceLevel) Volume() fpdecimal.Decimal {
	return pl.volume
}

// Len returns the number of queued orders
func (pl *PriceLevel) Len() int {
	return len(pl.queue)
}

// IsEmpty reports whether no orders rest at this price
func (pl *PriceLevel) IsEmpty() bool {
	return len(pl.queue) == 0
}

// Front returns the oldest queued order
func (pl *PriceLevel) Front() (Order, bool) {
	if len(pl.queue) == 0 {
		return Order{}, false
	}
	return pl.queue[0], true
}

// Orders returns a copy of the queue in arrival order
func (pl *PriceLevel) Orders() []Order {
	orders := make([]Order, len(pl.queue))
	copy(orders, pl.queue)
	return orders
}

// Append adds an order to the back of the queue and returns the new volume
func (pl *PriceLevel) Append(order Order) fpdecimal.Decimal {
	pl.queue = append(pl.queue, order)
	pl.volume = pl.volume.Add(order.quantity)
	return pl.volume
}

// Remove takes a resident order out of the queue and returns the new volume.
// Removing an order that is not resident is a caller bug and panics.
func (pl *PriceLevel) Remove(order Order) fpdecimal.Decimal {
	for i, resident := range pl.queue {
		if resident == order {
			pl.queue = append(pl.queue[:i], pl.queue[i+1:]...)
			pl.volume = pl.volume.Sub(order.quantity)
			return pl.volume
		}
	}
	panic(fmt.Sprintf("book: order %d is not resident at price %s", order.id, pl.price))
}

// Trade removes and returns the first order, in arrival order, whose quantity
// equals the requested quantity exactly. There is no partial fill and no
// aggregation across orders; ties on quantity go to the earliest arrival.
func (pl *PriceLevel) Trade(quantity fpdecimal.Decimal) (Order, bool) {
	for i, resident := range pl.queue {
		if resident.quantity.Equal(quantity) {
			pl.queue = append(pl.queue[:i], pl.queue[i+1:]...)
			pl.volume = pl.volume.Sub(resident.quantity)
			return resident, true
		}
	}
	return Order{}, false
}
