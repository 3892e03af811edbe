package chain

import (
	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Ratios originates one BUY and one SELL per (spread, size) pair. Prices come
// from the reference mid by default, or from the touch when FromBook is set.
// Quantity is sizeRatio x available collateral at the order's own price.
type Ratios struct {
	spreads  []decimal.Decimal
	sizes    []decimal.Decimal
	fromBook bool
	orderTyp enum.OrderType
	ttl      int64
}

func NewRatios(spreads, sizes []decimal.Decimal, fromBook bool, orderTyp enum.OrderType, ttlSeconds int64) (*Ratios, error) {
	if len(spreads) == 0 || len(spreads) != len(sizes) {
		return nil, errors.Wrapf(exception.ErrChainRatioLengths, "spreads: %d, sizes: %d", len(spreads), len(sizes))
	}
	for i := range spreads {
		if spreads[i].IsNegative() || !sizes[i].IsPositive() {
			return nil, errors.Wrapf(exception.ErrChainBadParameter, "layer %d: spread %s, size %s", i, spreads[i], sizes[i])
		}
	}
	if !orderTyp.IsAvailable() {
		orderTyp = enum.OrderTypePostOnly
	}
	return &Ratios{spreads: spreads, sizes: sizes, fromBook: fromBook, orderTyp: orderTyp, ttl: ttlSeconds}, nil
}

func (r *Ratios) Name() string { return "ratios" }

func (r *Ratios) OriginatesOrders() {}

func (r *Ratios) Apply(state *model.State, orders []model.DesiredOrder) ([]model.DesiredOrder, error) {
	mid, ok := state.ReferencePrice()
	if !ok {
		return nil, exception.ErrChainNoReference
	}

	buyBase, sellBase := mid, mid
	if r.fromBook {
		if bid, ok := state.Book.BestBid(); ok {
			buyBase = bid.Price
		}
		if ask, ok := state.Book.BestAsk(); ok {
			sellBase = ask.Price
		}
	}

	one := decimal.NewFromInt(1)
	out := append([]model.DesiredOrder{}, orders...)
	for i := range r.spreads {
		buyPrice := buyBase.Mul(one.Sub(r.spreads[i]))
		sellPrice := sellBase.Mul(one.Add(r.spreads[i]))
		if !buyPrice.IsPositive() || !sellPrice.IsPositive() {
			return nil, errors.Wrapf(exception.ErrChainBadParameter, "layer %d spread %s collapses price", i, r.spreads[i])
		}

		notional := r.sizes[i].Mul(state.AvailableCollateral)
		buy := model.NewDesiredOrder(enum.OrderSideBuy, buyPrice, notional.Div(buyPrice), r.orderTyp)
		sell := model.NewDesiredOrder(enum.OrderSideSell, sellPrice, notional.Div(sellPrice), r.orderTyp)
		buy.Expiration = r.expiration(state)
		sell.Expiration = r.expiration(state)
		out = append(out, buy, sell)
	}
	return out, nil
}

func (r *Ratios) expiration(state *model.State) int64 {
	if r.ttl <= 0 {
		return 0
	}
	return state.BuiltAtNano/1e9 + r.ttl
}
