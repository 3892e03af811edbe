package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// MinimumCharge widens quotes so that (sell - buy) / reference >= ratio.
// Each side gives up half the ratio: buys are clamped to at most
// reference x (1 - ratio/2) and sells to at least reference x (1 + ratio/2).
// The reference is the mid, or the touch on the order's own side when
// FromBook is set.
type MinimumCharge struct {
	ratio    decimal.Decimal
	fromBook bool
}

func NewMinimumCharge(ratio decimal.Decimal, fromBook bool) (*MinimumCharge, error) {
	if ratio.IsNegative() {
		return nil, errors.Wrapf(exception.ErrChainBadParameter, "minimum charge ratio: %s", ratio)
	}
	return &MinimumCharge{ratio: ratio, fromBook: fromBook}, nil
}

func (m *MinimumCharge) Name() string { return "minimum_charge" }

func (m *MinimumCharge) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	if m.ratio.IsZero() {
		return orders, nil
	}

	mid, ok := state.ReferencePrice()
	if !ok {
		return nil, exception.ErrChainNoReference
	}

	half := m.ratio.Div(decimal.NewFromInt(2))
	one := decimal.NewFromInt(1)
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		ref := mid
		switch order.Side {
		case enum.OrderSideBuy:
			if m.fromBook {
				if bid, ok := state.Book.BestBid(); ok {
					ref = bid.Price
				}
			}
			ceiling := ref.Mul(one.Sub(half))
			if order.Price.GreaterThan(ceiling) {
				order = order.WithPrice(ceiling)
			}
		case enum.OrderSideSell:
			if m.fromBook {
				if ask, ok := state.Book.BestAsk(); ok {
					ref = ask.Price
				}
			}
			floor := ref.Mul(one.Add(half))
			if order.Price.LessThan(floor) {
				order = order.WithPrice(floor)
			}
		}
		out = append(out, order)
	}
	return out, nil
}
