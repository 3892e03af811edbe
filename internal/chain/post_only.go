package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
)

// PreventPostOnlyCrossingBook reprices post-only orders that would cross the
// opposite touch to one tick inside the spread, instead of letting the venue
// reject or slide them.
type PreventPostOnlyCrossingBook struct{}

func NewPreventPostOnlyCrossingBook() *PreventPostOnlyCrossingBook {
	return &PreventPostOnlyCrossingBook{}
}

func (p *PreventPostOnlyCrossingBook) Name() string { return "prevent_post_only_crossing_book" }

func (p *PreventPostOnlyCrossingBook) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	tick := state.Market.TickSize
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		if !order.Type.IsPostOnly() {
			out = append(out, order)
			continue
		}

		switch order.Side {
		case enum.OrderSideBuy:
			if ask, ok := state.Book.BestAsk(); ok && order.Price.GreaterThanOrEqual(ask.Price) {
				order = order.WithPrice(ask.Price.Sub(tick))
			}
		case enum.OrderSideSell:
			if bid, ok := state.Book.BestBid(); ok && order.Price.LessThanOrEqual(bid.Price) {
				order = order.WithPrice(bid.Price.Add(tick))
			}
		}
		out = append(out, order)
	}
	return out, nil
}
