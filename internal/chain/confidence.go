package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// ConfidenceInterval originates a BUY/SELL pair per configured level. The
// spread of each layer is level x oracle confidence, so quotes widen as the
// oracle gets less certain. Quantity is sizeRatio x collateral at the mid.
type ConfidenceInterval struct {
	levels    []decimal.Decimal
	sizeRatio decimal.Decimal
	orderTyp  enum.OrderType
}

func NewConfidenceInterval(levels []decimal.Decimal, sizeRatio decimal.Decimal, orderTyp enum.OrderType) (*ConfidenceInterval, error) {
	if len(levels) == 0 {
		return nil, errors.Wrap(exception.ErrChainBadParameter, "confidence levels are empty")
	}
	for i := range levels {
		if !levels[i].IsPositive() {
			return nil, errors.Wrapf(exception.ErrChainBadParameter, "level %d: %s", i, levels[i])
		}
	}
	if !sizeRatio.IsPositive() {
		return nil, errors.Wrapf(exception.ErrChainBadParameter, "size ratio: %s", sizeRatio)
	}
	if !orderTyp.IsAvailable() {
		orderTyp = enum.OrderTypePostOnly
	}
	return &ConfidenceInterval{levels: levels, sizeRatio: sizeRatio, orderTyp: orderTyp}, nil
}

func (c *ConfidenceInterval) Name() string { return "confidence_interval" }

func (c *ConfidenceInterval) OriginatesOrders() {}

func (c *ConfidenceInterval) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	if !state.OracleOk {
		return nil, exception.ErrChainNoReference
	}

	mid := state.Oracle.Mid
	quantity := c.sizeRatio.Mul(state.AvailableCollateral).Div(mid)
	out := append([]model.DesiredOrder{}, orders...)
	for _, level := range c.levels {
		spread := level.Mul(state.Oracle.Confidence)
		buyPrice := mid.Sub(spread)
		if !buyPrice.IsPositive() {
			return nil, errors.Wrapf(exception.ErrChainBadParameter, "level %s widens below zero at mid %s", level, mid)
		}
		out = append(out,
			model.NewDesiredOrder(enum.OrderSideBuy, buyPrice, quantity, c.orderTyp),
			model.NewDesiredOrder(enum.OrderSideSell, mid.Add(spread), quantity, c.orderTyp),
		)
	}
	return out, nil
}
