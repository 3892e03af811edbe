package model

import (
	"fmt"

	"github.com/shopspring/decimal"

	"main/internal/model/enum"
)

// Order is an immutable order value. "Updates" produce a new copy, the
// receiver is never mutated.
type Order struct {
	Side       enum.OrderSide
	Price      decimal.Decimal
	Quantity   decimal.Decimal
	Type       enum.OrderType
	ClientID   uint64 // correlation id chosen at placement, 0 = unset
	MatchLimit int    // max number of matches on entry, 0 = venue default
	Expiration int64  // unix seconds, 0 = no expiration
}

// DesiredOrder is intent: an order the engine wants resting on the book. It
// carries no venue state.
type DesiredOrder struct {
	Order
}

// ExistingOrder is an order the engine believes is resting on the book,
// keyed by the client id used when it was placed.
type ExistingOrder struct {
	Order
}

func NewDesiredOrder(side enum.OrderSide, price, quantity decimal.Decimal, typ enum.OrderType) DesiredOrder {
	return DesiredOrder{Order: Order{
		Side:     side,
		Price:    price,
		Quantity: quantity,
		Type:     typ,
	}}
}

func (o Order) WithPrice(price decimal.Decimal) Order {
	o.Price = price
	return o
}

func (o Order) WithQuantity(quantity decimal.Decimal) Order {
	o.Quantity = quantity
	return o
}

func (o Order) WithClientID(id uint64) Order {
	o.ClientID = id
	return o
}

func (o Order) String() string {
	return fmt.Sprintf("%s %s @ %s (%s)", o.Side, o.Quantity, o.Price, o.Type)
}

func (d DesiredOrder) WithPrice(price decimal.Decimal) DesiredOrder {
	d.Order = d.Order.WithPrice(price)
	return d
}

func (d DesiredOrder) WithQuantity(quantity decimal.Decimal) DesiredOrder {
	d.Order = d.Order.WithQuantity(quantity)
	return d
}
