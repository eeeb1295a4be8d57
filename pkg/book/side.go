package book

// Side represents the ask or bid half of the book
type Side int

// Book sides
const (
	Ask Side = iota
	Bid
)

// Opposite returns the side an incoming order trades against
func (s Side) Opposite() Side {
	if s == Ask {
		return Bid
	}
	return Ask
}

// String returns side as string
func (s Side) String() string {
	switch s {
	case Ask:
		return "ASK"
	case Bid:
		return "BID"
	default:
		return "UNKNOWN"
	}
}
