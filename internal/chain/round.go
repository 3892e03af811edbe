package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
)

// RoundToLotSize snaps prices to the tick size and quantities to the lot
// size. Buy prices round down and sell prices round up, so rounding never
// makes a quote more aggressive. Quantities round down on both sides; an
// order that rounds to zero quantity is dropped. Configure it last so the
// reconciler compares venue-valid values.
type RoundToLotSize struct{}

func NewRoundToLotSize() *RoundToLotSize {
	return &RoundToLotSize{}
}

func (r *RoundToLotSize) Name() string { return "round_to_lot_size" }

func (r *RoundToLotSize) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	market := state.Market
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		switch order.Side {
		case enum.OrderSideBuy:
			order = order.WithPrice(market.RoundPriceDown(order.Price))
		case enum.OrderSideSell:
			order = order.WithPrice(market.RoundPriceUp(order.Price))
		}

		order = order.WithQuantity(market.RoundQuantityDown(order.Quantity))
		if order.Quantity.IsZero() {
			continue
		}
		out = append(out, order)
	}
	return out, nil
}
