package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// AfterAccumulatedDepth walks the order's own side of the book from the
// touch, accumulating resting quantity until it covers the order's quantity
// (or the fixed configured depth), then reprices the order at that level
// shifted offsetTicks further from the touch. Queueing behind that much
// depth keeps the quote from being first in line for adverse fills.
type AfterAccumulatedDepth struct {
	fixedDepth  decimal.Decimal // zero means use each order's own quantity
	offsetTicks int64
}

func NewAfterAccumulatedDepth(fixedDepth decimal.Decimal, offsetTicks int64) (*AfterAccumulatedDepth, error) {
	if fixedDepth.IsNegative() {
		return nil, errors.Wrapf(exception.ErrChainBadParameter, "accumulated depth: %s", fixedDepth)
	}
	return &AfterAccumulatedDepth{fixedDepth: fixedDepth, offsetTicks: offsetTicks}, nil
}

func (a *AfterAccumulatedDepth) Name() string { return "after_accumulated_depth" }

func (a *AfterAccumulatedDepth) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	offset := state.Market.TickSize.Mul(decimal.NewFromInt(a.offsetTicks))
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		target := a.fixedDepth
		if target.IsZero() {
			target = order.Quantity
		}

		var levels []model.PriceLevel
		if order.Side == enum.OrderSideBuy {
			levels = state.Book.Bids
		} else {
			levels = state.Book.Asks
		}
		if len(levels) == 0 {
			out = append(out, order)
			continue
		}

		price := levels[len(levels)-1].Price
		accumulated := decimal.Zero
		for _, level := range levels {
			accumulated = accumulated.Add(level.Quantity)
			if accumulated.GreaterThanOrEqual(target) {
				price = level.Price
				break
			}
		}

		if order.Side == enum.OrderSideBuy {
			order = order.WithPrice(price.Sub(offset))
		} else {
			order = order.WithPrice(price.Add(offset))
		}
		out = append(out, order)
	}
	return out, nil
}
