package messaging

import (
	"context"

	"strikebook/pkg/book"
)

// OutcomeSender defines an interface for publishing outcome messages.
// This helps decouple the feed pipeline from specific transports
// like Kafka in the kafka and queue packages.
type OutcomeSender interface {
	Send(ctx context.Context, msg *OutcomeMessage) error
	Close() error
}

// OutcomeMessage represents the message structure for one book outcome
// to be sent to Kafka. Identities are numeric, decimals travel as strings
// and sides use the feed letters (B for bid, S for ask).
type OutcomeMessage struct {
	Symbol  string `json:"symbol"`
	Kind    string `json:"kind"`
	UserID  uint64 `json:"user_id"`
	OrderID uint64 `json:"order_id"`

	BuyerUserID   uint64 `json:"buyer_user_id,omitempty"`
	BuyerOrderID  uint64 `json:"buyer_order_id,omitempty"`
	SellerUserID  uint64 `json:"seller_user_id,omitempty"`
	SellerOrderID uint64 `json:"seller_order_id,omitempty"`
	Price         string `json:"price,omitempty"`
	Quantity      string `json:"quantity,omitempty"`

	Top *TopOfBook `json:"top,omitempty"`
}

// TopOfBook is the nested top-of-book snapshot attached to outcomes that
// moved a side's visible best price. Price and Volume are absent when the
// side was left empty.
type TopOfBook struct {
	Side   string `json:"side"`
	Price  string `json:"price,omitempty"`
	Volume string `json:"volume,omitempty"`
	Empty  bool   `json:"empty,omitempty"`
}

// FromOutcome converts a book outcome into its message form.
func FromOutcome(symbol string, out *book.Outcome) *OutcomeMessage {
	msg := &OutcomeMessage{
		Symbol:  symbol,
		Kind:    out.Kind.String(),
		UserID:  out.OwnerID,
		OrderID: out.OrderID,
	}

	if out.Kind == book.OutcomeTraded {
		msg.BuyerUserID = out.BuyerOwnerID
		msg.BuyerOrderID = out.BuyerOrderID
		msg.SellerUserID = out.SellerOwnerID
		msg.SellerOrderID = out.SellerOrderID
		msg.Price = out.Price.String()
		msg.Quantity = out.Quantity.String()
	}

	if out.Top != nil {
		top := &TopOfBook{Side: sideLetter(out.Top.Side), Empty: out.Top.Empty}
		if !out.Top.Empty {
			top.Price = out.Top.Price.String()
			top.Volume = out.Top.Volume.String()
		}
		msg.Top = top
	}

	return msg
}

// sideLetter maps a side to its single-letter feed representation.
func sideLetter(side book.Side) string {
	if side == book.Bid {
		return "B"
	}
	return "S"
}
