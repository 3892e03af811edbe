package chain

import (
	"main/internal/model"

	"github.com/shopspring/decimal"
)

// BiasQuoteOnPosition shifts every price by a factor of bias x inventory.
// Positive inventory pushes quotes down to favor selling the excess, negative
// inventory pushes them up. A zero bias is a no-op.
type BiasQuoteOnPosition struct {
	bias decimal.Decimal
}

func NewBiasQuoteOnPosition(bias decimal.Decimal) *BiasQuoteOnPosition {
	return &BiasQuoteOnPosition{bias: bias}
}

func (b *BiasQuoteOnPosition) Name() string { return "bias_quote_on_position" }

func (b *BiasQuoteOnPosition) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	if b.bias.IsZero() || state.Inventory.IsZero() {
		return orders, nil
	}

	factor := decimal.NewFromInt(1).Sub(b.bias.Mul(state.Inventory))
	if !factor.IsPositive() {
		return orders, nil
	}

	out := make([]model.DesiredOrder, 0, len(orders))
	for _, order := range orders {
		out = append(out, order.WithPrice(order.Price.Mul(factor)))
	}
	return out, nil
}
