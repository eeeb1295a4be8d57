package book

import (
	"sort"
	"testing"

	"github.com/nikolaydubina/fpdecimal"
	"pgregory.net/rapid"
)

func TestProperty_LevelVolumeMatchesQueue(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		level := NewPriceLevel(fpdecimal.FromInt(10))
		var shadow []Order
		nextID := uint64(1)

		steps := rapid.IntRange(1, 100).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			op := rapid.IntRange(0, 2).Draw(t, "op")
			switch {
			case op == 0 || len(shadow) == 0:
				qty := fpdecimal.FromInt(rapid.IntRange(1, 20).Draw(t, "qty"))
				order := NewOrder(nextID, 1, Ask, fpdecimal.FromInt(10), qty)
				nextID++
				level.Append(order)
				shadow = append(shadow, order)
			case op == 1:
				idx := rapid.IntRange(0, len(shadow)-1).Draw(t, "removeIdx")
				level.Remove(shadow[idx])
				shadow = append(shadow[:idx], shadow[idx+1:]...)
			default:
				qty := fpdecimal.FromInt(rapid.IntRange(1, 20).Draw(t, "tradeQty"))
				if matched, ok := level.Trade(qty); ok {
					for j, o := range shadow {
						if o == matched {
							shadow = append(shadow[:j], shadow[j+1:]...)
							break
						}
					}
				}
			}

			want := fpdecimal.Zero
			for _, o := range shadow {
				want = want.Add(o.Quantity())
			}
			if !level.Volume().Equal(want) {
				t.Fatalf("volume %s diverged from queue sum %s after %d steps", level.Volume(), want, i+1)
			}
			if level.Len() != len(shadow) {
				t.Fatalf("queue length %d diverged from model %d", level.Len(), len(shadow))
			}
		}
	})
}

func TestProperty_IndexMatchesBook(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ob := NewOrderBook()
		resting := make(map[uint64]Order)
		nextID := uint64(1)

		steps := rapid.IntRange(1, 150).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			doCancel := len(resting) > 0 && rapid.IntRange(0, 3).Draw(t, "op") == 3
			if doCancel {
				ids := make([]uint64, 0, len(resting))
				for id := range resting {
					ids = append(ids, id)
				}
				sort.Slice(ids, func(a, b int) bool { return ids[a] < ids[b] })
				id := rapid.SampledFrom(ids).Draw(t, "cancelID")
				ob.CancelOrder(id)
				delete(resting, id)
			} else {
				side := Ask
				if rapid.Bool().Draw(t, "bid") {
					side = Bid
				}
				price := fpdecimal.FromInt(rapid.IntRange(1, 20).Draw(t, "price"))
				qty := fpdecimal.FromInt(rapid.IntRange(1, 10).Draw(t, "qty"))
				owner := rapid.Uint64Range(1, 5).Draw(t, "owner")
				id := nextID
				nextID++

				out := ob.SubmitOrder(side, price, qty, owner, id)
				switch out.Kind {
				case OutcomeAccepted, OutcomeTopOfBook:
					resting[id] = NewOrder(id, owner, side, price, qty)
				case OutcomeTraded:
					makerID := out.SellerOrderID
					if makerID == id {
						makerID = out.BuyerOrderID
					}
					delete(resting, makerID)
				}
			}

			if ob.Len() != len(resting) {
				t.Fatalf("index size %d diverged from model %d", ob.Len(), len(resting))
			}
			for id, want := range resting {
				got, ok := ob.GetOrder(id)
				if !ok || got != want {
					t.Fatalf("order %d missing from or mutated in the index", id)
				}
				vol, ok := ob.sideFor(want.Side()).PriceVolume(want.Price())
				if !ok || vol.LessThan(want.Quantity()) {
					t.Fatalf("level volume at %s does not cover order %d", want.Price(), id)
				}
			}

			ask, askOk := ob.BestAskPrice()
			bid, bidOk := ob.BestBidPrice()
			if askOk && bidOk && !bid.LessThan(ask) {
				t.Fatalf("book crossed after step %d: bid %s >= ask %s", i+1, bid, ask)
			}
		}
	})
}
