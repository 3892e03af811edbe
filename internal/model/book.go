package model

import "github.com/shopspring/decimal"

// PriceLevel is one resting level of the book.
type PriceLevel struct {
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// OrderBook holds bids sorted descending and asks sorted ascending, best
// price first on both sides.
type OrderBook struct {
	Bids []PriceLevel
	Asks []PriceLevel
}

func (b OrderBook) BestBid() (PriceLevel, bool) {
	if len(b.Bids) == 0 {
		return PriceLevel{}, false
	}
	return b.Bids[0], true
}

func (b OrderBook) BestAsk() (PriceLevel, bool) {
	if len(b.Asks) == 0 {
		return PriceLevel{}, false
	}
	return b.Asks[0], true
}

// Mid returns the midpoint of the touch. It reports false when either side
// is empty.
func (b OrderBook) Mid() (decimal.Decimal, bool) {
	bid, ok := b.BestBid()
	if !ok {
		return decimal.Zero, false
	}
	ask, ok := b.BestAsk()
	if !ok {
		return decimal.Zero, false
	}
	return bid.Price.Add(ask.Price).Div(decimal.NewFromInt(2)), true
}
