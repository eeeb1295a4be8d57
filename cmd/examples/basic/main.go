package main

import (
	"fmt"

	"github.com/nikolaydubina/fpdecimal"

	"strikebook/pkg/book"
)

func main() {
	// Initialize an order book
	ob := book.NewOrderBook()

	// Rest a sell order: user 1 offers 100 at 11
	out := ob.SubmitOrder(book.Ask, fpdecimal.FromInt(11), fpdecimal.FromInt(100), 1, 1)
	fmt.Printf("Sell 100 @ 11 -> %s (%s)\n", out.Kind, describeTop(out.Top))

	// A second, worse-priced sell rests without moving the top
	out = ob.SubmitOrder(book.Ask, fpdecimal.FromInt(12), fpdecimal.FromInt(100), 1, 2)
	fmt.Printf("Sell 100 @ 12 -> %s (%s)\n", out.Kind, describeTop(out.Top))

	// A bid below the best ask rests on the other side
	out = ob.SubmitOrder(book.Bid, fpdecimal.FromInt(9), fpdecimal.FromInt(100), 2, 101)
	fmt.Printf("Buy  100 @ 9  -> %s (%s)\n", out.Kind, describeTop(out.Top))

	// A crossing bid whose quantity matches no resting order is rejected
	out = ob.SubmitOrder(book.Bid, fpdecimal.FromInt(11), fpdecimal.FromInt(50), 2, 102)
	fmt.Printf("Buy   50 @ 11 -> %s\n", out.Kind)

	// The same price with the exact resting quantity trades at the resting price
	out = ob.SubmitOrder(book.Bid, fpdecimal.FromInt(11), fpdecimal.FromInt(100), 2, 103)
	fmt.Printf("Buy  100 @ 11 -> %s (%s)\n", out.Kind, describeTop(out.Top))
	fmt.Printf("  trade: buyer %d/%d, seller %d/%d, price %s, quantity %s\n",
		out.BuyerOwnerID, out.BuyerOrderID,
		out.SellerOwnerID, out.SellerOrderID,
		out.Price.String(), out.Quantity.String())

	// Canceling the last resting sell empties the ask side
	out = ob.CancelOrder(2)
	fmt.Printf("Cancel order 2 -> %s (%s)\n", out.Kind, describeTop(out.Top))

	// Summary
	fmt.Printf("\nResting orders: %d\n", ob.Len())
	if price, ok := ob.BestBidPrice(); ok {
		fmt.Printf("Best bid: %s\n", price.String())
	}
	if _, ok := ob.BestAskPrice(); !ok {
		fmt.Println("Best ask: none")
	}
}

func describeTop(top *book.TopSnapshot) string {
	if top == nil {
		return "top unchanged"
	}
	if top.Empty {
		return fmt.Sprintf("%s side now empty", top.Side)
	}
	return fmt.Sprintf("best %s now %s x %s", top.Side, top.Price.String(), top.Volume.String())
}
