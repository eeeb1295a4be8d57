// Package feed drives order books from an instruction stream.
//
// A feed is a sequence of records: new orders, cancels, and flushes, each
// applied to the book of the symbol it names. The package owns everything
// the matching core leaves to its driver: the record format, the routing of
// instructions to per-symbol books, the line protocol describing outcomes,
// and the pipeline that decouples reading, applying, and writing.
package feed

import (
	"github.com/nikolaydubina/fpdecimal"

	"strikebook/pkg/book"
)

// Kind discriminates the three instruction forms of a feed
type Kind int

// Instruction kinds
const (
	KindNew Kind = iota
	KindCancel
	KindFlush
)

// String returns kind as string
func (k Kind) String() string {
	switch k {
	case KindNew:
		return "NEW"
	case KindCancel:
		return "CANCEL"
	case KindFlush:
		return "FLUSH"
	default:
		return "UNKNOWN"
	}
}

// Instruction is one parsed feed record. Which fields are meaningful depends
// on Kind: New uses all of them, Cancel only UserID and OrderID, Flush none.
type Instruction struct {
	Kind     Kind
	UserID   uint64
	OrderID  uint64
	Symbol   string
	Price    fpdecimal.Decimal
	Quantity fpdecimal.Decimal
	Side     book.Side
}
