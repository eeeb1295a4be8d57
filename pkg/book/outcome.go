package book

import (
	"github.com/nikolaydubina/fpdecimal"
)

// OutcomeKind classifies what a submission or cancellation did to the book
type OutcomeKind int

// Outcome kinds. Accepted covers both an order resting away from the top and
// a cancellation that left the top untouched: either way the instruction was
// applied with no externally visible price change.
const (
	OutcomeRejected OutcomeKind = iota
	OutcomeAccepted
	OutcomeTopOfBook
	OutcomeTraded
)

// String returns kind as string
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeRejected:
		return "REJECTED"
	case OutcomeAccepted:
		return "ACCEPTED"
	case OutcomeTopOfBook:
		return "TOP_OF_BOOK"
	case OutcomeTraded:
		return "TRADED"
	default:
		return "UNKNOWN"
	}
}

// TopSnapshot describes the best price level of one side after an operation
// changed it. Empty is set when the side was left without any resting orders,
// in which case Price and Volume carry no information.
type TopSnapshot struct {
	Side   Side
	Price  fpdecimal.Decimal
	Volume fpdecimal.Decimal
	Empty  bool
}

// Outcome reports the externally visible effect of one book operation.
// OwnerID and OrderID always identify the acting order. The trade fields are
// populated only for OutcomeTraded. Top is non-nil whenever the operation
// moved the visible top of a side: always for OutcomeTopOfBook, sometimes for
// OutcomeTraded, never for the other kinds.
type Outcome struct {
	Kind    OutcomeKind
	OwnerID uint64
	OrderID uint64

	BuyerOwnerID  uint64
	BuyerOrderID  uint64
	SellerOwnerID uint64
	SellerOrderID uint64
	Price         fpdecimal.Decimal
	Quantity      fpdecimal.Decimal

	Top *TopSnapshot
}

func newRejected(ownerID, orderID uint64) Outcome {
	return Outcome{Kind: OutcomeRejected, OwnerID: ownerID, OrderID: orderID}
}

func newAccepted(ownerID, orderID uint64) Outcome {
	return Outcome{Kind: OutcomeAccepted, OwnerID: ownerID, OrderID: orderID}
}

func newTopOfBook(ownerID, orderID uint64, top *TopSnapshot) Outcome {
	return Outcome{Kind: OutcomeTopOfBook, OwnerID: ownerID, OrderID: orderID, Top: top}
}

// newTraded assigns the buyer and seller legs from the maker's side: a maker
// resting on the ask side sold to the incoming order, and vice versa.
func newTraded(ownerID, orderID uint64, maker Order, price, quantity fpdecimal.Decimal) Outcome {
	out := Outcome{
		Kind:     OutcomeTraded,
		OwnerID:  ownerID,
		OrderID:  orderID,
		Price:    price,
		Quantity: quantity,
	}
	if maker.side == Ask {
		out.BuyerOwnerID, out.BuyerOrderID = ownerID, orderID
		out.SellerOwnerID, out.SellerOrderID = maker.ownerID, maker.id
	} else {
		out.BuyerOwnerID, out.BuyerOrderID = maker.ownerID, maker.id
		out.SellerOwnerID, out.SellerOrderID = ownerID, orderID
	}
	return out
}
