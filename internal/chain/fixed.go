package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// FixedPositionSize overrides every desired order's quantity with a fixed
// value, for strategies that do not size off collateral.
type FixedPositionSize struct {
	size decimal.Decimal
}

func NewFixedPositionSize(size decimal.Decimal) (*FixedPositionSize, error) {
	if !size.IsPositive() {
		return nil, errors.Wrapf(exception.ErrChainBadParameter, "fixed size: %s", size)
	}
	return &FixedPositionSize{size: size}, nil
}

func (f *FixedPositionSize) Name() string { return "fixed_position_size" }

func (f *FixedPositionSize) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		out = append(out, order.WithQuantity(f.size))
	}
	return out, nil
}

// FixedSpread reprices every desired order to a fixed absolute distance of
// spread/2 from the reference mid.
type FixedSpread struct {
	spread decimal.Decimal
}

func NewFixedSpread(spread decimal.Decimal) (*FixedSpread, error) {
	if !spread.IsPositive() {
		return nil, errors.Wrapf(exception.ErrChainBadParameter, "fixed spread: %s", spread)
	}
	return &FixedSpread{spread: spread}, nil
}

func (f *FixedSpread) Name() string { return "fixed_spread" }

func (f *FixedSpread) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	mid, ok := state.ReferencePrice()
	if !ok {
		return nil, exception.ErrChainNoReference
	}

	half := f.spread.Div(decimal.NewFromInt(2))
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		switch order.Side {
		case enum.OrderSideBuy:
			order = order.WithPrice(mid.Sub(half))
		case enum.OrderSideSell:
			order = order.WithPrice(mid.Add(half))
		}
		out = append(out, order)
	}
	return out, nil
}

// QuoteSingleSide drops every desired order not on the configured side.
type QuoteSingleSide struct {
	side enum.OrderSide
}

func NewQuoteSingleSide(side enum.OrderSide) (*QuoteSingleSide, error) {
	if !side.IsAvailable() {
		return nil, errors.Wrap(exception.ErrChainBadParameter, "quote side is unknown")
	}
	return &QuoteSingleSide{side: side}, nil
}

func (q *QuoteSingleSide) Name() string { return "quote_single_side" }

func (q *QuoteSingleSide) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		if order.Side == q.side {
			out = append(out, order)
		}
	}
	return out, nil
}
