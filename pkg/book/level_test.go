package book

import (
	"testing"

	"github.com/nikolaydubina/fpdecimal"
)

func TestPriceLevelAppend(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))

	vol := level.Append(NewOrder(1, 1, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(100)))
	if !vol.Equal(fpdecimal.FromInt(100)) {
		t.Errorf("Expected volume 100 after first append, got %s", vol)
	}

	vol = level.Append(NewOrder(2, 2, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(50)))
	if !vol.Equal(fpdecimal.FromInt(150)) {
		t.Errorf("Expected volume 150 after second append, got %s", vol)
	}

	if level.Len() != 2 {
		t.Errorf("Expected 2 queued orders, got %d", level.Len())
	}
	if level.IsEmpty() {
		t.Error("Expected level to be non-empty")
	}
}

func TestPriceLevelFront(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))

	if _, ok := level.Front(); ok {
		t.Error("Expected no front order on an empty level")
	}

	first := NewOrder(1, 1, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(100))
	level.Append(first)
	level.Append(NewOrder(2, 2, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(50)))

	front, ok := level.Front()
	if !ok {
		t.Fatal("Expected a front order")
	}
	if front != first {
		t.Errorf("Expected front order to be the first arrival, got id %d", front.ID())
	}
}

func TestPriceLevelRemove(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))
	first := NewOrder(1, 1, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(100))
	second := NewOrder(2, 2, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(50))
	third := NewOrder(3, 3, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(25))
	level.Append(first)
	level.Append(second)
	level.Append(third)

	vol := level.Remove(second)
	if !vol.Equal(fpdecimal.FromInt(125)) {
		t.Errorf("Expected volume 125 after removal, got %s", vol)
	}

	// Arrival order of the survivors must be preserved
	orders := level.Orders()
	if len(orders) != 2 || orders[0] != first || orders[1] != third {
		t.Errorf("Expected queue [1 3] after removing the middle order, got %v", orders)
	}
}

func TestPriceLevelRemoveAbsentPanics(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))
	level.Append(NewOrder(1, 1, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(100)))

	defer func() {
		if r := recover(); r == nil {
			t.Error("Expected removing a non-resident order to panic")
		}
	}()
	level.Remove(NewOrder(99, 1, Ask, fpdecimal.FromInt(10), fpdecimal.FromInt(100)))
}

func TestPriceLevelTradeExactQuantity(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))
	level.Append(NewOrder(1, 1, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(100)))
	level.Append(NewOrder(2, 2, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(50)))

	matched, ok := level.Trade(fpdecimal.FromInt(50))
	if !ok {
		t.Fatal("Expected an exact-quantity match")
	}
	if matched.ID() != 2 {
		t.Errorf("Expected order 2 to match, got %d", matched.ID())
	}
	if !level.Volume().Equal(fpdecimal.FromInt(100)) {
		t.Errorf("Expected volume 100 after trade, got %s", level.Volume())
	}
}

func TestPriceLevelTradeNoPartialFill(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))
	level.Append(NewOrder(1, 1, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(100)))

	// 60 is available in aggregate but no single order carries exactly 60
	if _, ok := level.Trade(fpdecimal.FromInt(60)); ok {
		t.Error("Expected no match for a quantity no resident order carries")
	}
	if !level.Volume().Equal(fpdecimal.FromInt(100)) {
		t.Errorf("Expected volume untouched by failed trade, got %s", level.Volume())
	}
}

func TestPriceLevelTradeFIFOTieBreak(t *testing.T) {
	level := NewPriceLevel(fpdecimal.FromInt(10))
	level.Append(NewOrder(1, 1, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(50)))
	level.Append(NewOrder(2, 2, Bid, fpdecimal.FromInt(10), fpdecimal.FromInt(50)))

	matched, ok := level.Trade(fpdecimal.FromInt(50))
	if !ok || matched.ID() != 1 {
		t.Errorf("Expected the earliest arrival (order 1) to match first, got %d", matched.ID())
	}

	matched, ok = level.Trade(fpdecimal.FromInt(50))
	if !ok || matched.ID() != 2 {
		t.Errorf("Expected order 2 to match next, got %d", matched.ID())
	}

	if !level.IsEmpty() {
		t.Error("Expected level to be empty after both trades")
	}
}
