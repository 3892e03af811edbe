package model

import "github.com/shopspring/decimal"

// Market carries the venue metadata a strategy needs to emit valid orders.
type Market struct {
	Symbol        string
	Base          string
	Quote         string
	TickSize      decimal.Decimal
	LotSize       decimal.Decimal
	RequiresCrank bool
}

// RoundPriceDown rounds price down to the nearest tick.
func (m Market) RoundPriceDown(price decimal.Decimal) decimal.Decimal {
	if m.TickSize.IsZero() {
		return price
	}
	return price.Div(m.TickSize).Floor().Mul(m.TickSize)
}

// RoundPriceUp rounds price up to the nearest tick.
func (m Market) RoundPriceUp(price decimal.Decimal) decimal.Decimal {
	if m.TickSize.IsZero() {
		return price
	}
	return price.Div(m.TickSize).Ceil().Mul(m.TickSize)
}

// RoundQuantityDown rounds quantity down to the nearest lot. Rounding down on
// both sides keeps the order within the collateral that priced it.
func (m Market) RoundQuantityDown(quantity decimal.Decimal) decimal.Decimal {
	if m.LotSize.IsZero() {
		return quantity
	}
	return quantity.Div(m.LotSize).Floor().Mul(m.LotSize)
}
