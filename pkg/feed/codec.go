package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/nikolaydubina/fpdecimal"

	"strikebook/pkg/book"
)

// NewReader returns a CSV reader configured for the feed format: '#' opens a
// comment line, whitespace after commas is ignored, and records carry a
// varying number of fields depending on their tag.
func NewReader(r io.Reader) *csv.Reader {
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	return reader
}

// ParseRecord builds an Instruction from one CSV record:
//
//	N, user, symbol, price, quantity, side, orderId
//	C, user, orderId
//	F
//
// Fields are trimmed of surrounding whitespace; the CSV reader only strips
// it on the left.
func ParseRecord(record []string) (Instruction, error) {
	if len(record) == 0 {
		return Instruction{}, ErrEmptyRecord
	}

	for i := range record {
		record[i] = strings.TrimSpace(record[i])
	}

	switch record[0] {
	case "N":
		return parseNew(record)
	case "C":
		return parseCancel(record)
	case "F":
		return Instruction{Kind: KindFlush}, nil
	default:
		return Instruction{}, fmt.Errorf("%w: %q", ErrUnknownTag, record[0])
	}
}

func parseNew(record []string) (Instruction, error) {
	if len(record) < 7 {
		return Instruction{}, fmt.Errorf("%w: N takes 7 fields, got %d", ErrShortRecord, len(record))
	}

	userID, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("user id %q: %w", record[1], err)
	}
	price, err := fpdecimal.FromString(record[3])
	if err != nil {
		return Instruction{}, fmt.Errorf("price %q: %w", record[3], err)
	}
	quantity, err := fpdecimal.FromString(record[4])
	if err != nil {
		return Instruction{}, fmt.Errorf("quantity %q: %w", record[4], err)
	}
	side, err := ParseSide(record[5])
	if err != nil {
		return Instruction{}, err
	}
	orderID, err := strconv.ParseUint(record[6], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("order id %q: %w", record[6], err)
	}

	return Instruction{
		Kind:     KindNew,
		UserID:   userID,
		Symbol:   record[2],
		Price:    price,
		Quantity: quantity,
		Side:     side,
		OrderID:  orderID,
	}, nil
}

func parseCancel(record []string) (Instruction, error) {
	if len(record) < 3 {
		return Instruction{}, fmt.Errorf("%w: C takes 3 fields, got %d", ErrShortRecord, len(record))
	}

	userID, err := strconv.ParseUint(record[1], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("user id %q: %w", record[1], err)
	}
	orderID, err := strconv.ParseUint(record[2], 10, 64)
	if err != nil {
		return Instruction{}, fmt.Errorf("order id %q: %w", record[2], err)
	}

	return Instruction{Kind: KindCancel, UserID: userID, OrderID: orderID}, nil
}

// ParseSide converts a side letter from the feed format
func ParseSide(letter string) (book.Side, error) {
	switch letter {
	case "B":
		return book.Bid, nil
	case "S":
		return book.Ask, nil
	default:
		return book.Ask, fmt.Errorf("%w: %q", ErrInvalidSide, letter)
	}
}

// SideLetter converts a side to its feed letter
func SideLetter(side book.Side) string {
	if side == book.Bid {
		return "B"
	}
	return "S"
}

// FormatInstruction renders an instruction as its feed record line, the
// inverse of ParseRecord
func FormatInstruction(ins Instruction) string {
	switch ins.Kind {
	case KindNew:
		return fmt.Sprintf("N, %d, %s, %s, %s, %s, %d",
			ins.UserID, ins.Symbol,
			FormatDecimal(ins.Price), FormatDecimal(ins.Quantity),
			SideLetter(ins.Side), ins.OrderID)
	case KindCancel:
		return fmt.Sprintf("C, %d, %d", ins.UserID, ins.OrderID)
	case KindFlush:
		return "F"
	default:
		panic(fmt.Sprintf("feed: unhandled instruction kind %d", ins.Kind))
	}
}

// FormatOutcome renders one outcome as its output lines. Every applied
// instruction acknowledges with an A (or R) line naming the acting order;
// trades add a T line naming both legs, and any change to a side's visible
// top adds a B line with the new best price and volume, or dashes when the
// side emptied.
func FormatOutcome(out *book.Outcome) []string {
	switch out.Kind {
	case book.OutcomeRejected:
		return []string{fmt.Sprintf("R, %d, %d", out.OwnerID, out.OrderID)}
	case book.OutcomeAccepted:
		return []string{fmt.Sprintf("A, %d, %d", out.OwnerID, out.OrderID)}
	case book.OutcomeTopOfBook:
		return []string{
			fmt.Sprintf("A, %d, %d", out.OwnerID, out.OrderID),
			formatTop(out.Top),
		}
	case book.OutcomeTraded:
		lines := []string{
			fmt.Sprintf("A, %d, %d", out.OwnerID, out.OrderID),
			fmt.Sprintf("T, %d, %d, %d, %d, %s, %s",
				out.BuyerOwnerID, out.BuyerOrderID,
				out.SellerOwnerID, out.SellerOrderID,
				FormatDecimal(out.Price), FormatDecimal(out.Quantity)),
		}
		if out.Top != nil {
			lines = append(lines, formatTop(out.Top))
		}
		return lines
	default:
		return nil
	}
}

func formatTop(top *book.TopSnapshot) string {
	if top.Empty {
		return fmt.Sprintf("B, %s, -, -", SideLetter(top.Side))
	}
	return fmt.Sprintf("B, %s, %s, %s",
		SideLetter(top.Side), FormatDecimal(top.Price), FormatDecimal(top.Volume))
}

// FormatDecimal renders a decimal without trailing fractional zeros, so a
// price read as "5" prints as "5" again rather than "5.000"
func FormatDecimal(d fpdecimal.Decimal) string {
	s := d.String()
	if !strings.Contains(s, ".") {
		return s
	}
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}
