package book

import (
	"github.com/nikolaydubina/fpdecimal"
)

// Order stores information about one order. It is a plain comparable value:
// the book keeps independent copies in its flat index and in the price-level
// queues, and two orders are equal iff every field matches. Orders are built
// by the book when it accepts a submission and are never mutated afterwards.
type Order struct {
	id       uint64
	ownerID  uint64
	side     Side
	price    fpdecimal.Decimal
	quantity fpdecimal.Decimal
}

// NewOrder creates a new constant Order value
func NewOrder(id, ownerID uint64, side Side, price, quantity fpdecimal.Decimal) Order {
	return Order{
		id:       id,
		ownerID:  ownerID,
		side:     side,
		price:    price,
		quantity: quantity,
	}
}

// ID returns the order id
func (o Order) ID() uint64 {
	return o.id
}

// OwnerID returns the id of the user who placed the order
func (o Order) OwnerID() uint64 {
	return o.ownerID
}

// Side returns side of the Order
func (o Order) Side() Side {
	return o.side
}

// Price returns Price field copy
func (o Order) Price() fpdecimal.Decimal {
	return o.price
}

// Quantity returns Quantity field copy
func (o Order) Quantity() fpdecimal.Decimal {
	return o.quantity
}
