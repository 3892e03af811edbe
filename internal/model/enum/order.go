package enum

import "strings"

// OrderSide buy, sell
type OrderSide uint8

const (
	_order_side_beg OrderSide = iota
	OrderSideBuy
	OrderSideSell
	_order_side_end
)

func (s OrderSide) IsAvailable() bool {
	return s > _order_side_beg && s < _order_side_end
}

func (s OrderSide) String() string {
	switch s {
	case OrderSideBuy:
		return "BUY"
	case OrderSideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the other side of the book.
func (s OrderSide) Opposite() OrderSide {
	switch s {
	case OrderSideBuy:
		return OrderSideSell
	case OrderSideSell:
		return OrderSideBuy
	default:
		return s
	}
}

// ParseOrderSide accepts "BUY"/"SELL" in any case.
func ParseOrderSide(s string) (OrderSide, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY":
		return OrderSideBuy, true
	case "SELL":
		return OrderSideSell, true
	default:
		return _order_side_beg, false
	}
}

// OrderType limit, ioc, post only, post only slide
type OrderType uint8

const (
	_order_type_beg OrderType = iota
	OrderTypeLimit
	OrderTypeIOC
	OrderTypePostOnly
	OrderTypePostOnlySlide
	_order_type_end
)

func (t OrderType) IsAvailable() bool {
	return t > _order_type_beg && t < _order_type_end
}

func (t OrderType) String() string {
	switch t {
	case OrderTypeLimit:
		return "LIMIT"
	case OrderTypeIOC:
		return "IOC"
	case OrderTypePostOnly:
		return "POST_ONLY"
	case OrderTypePostOnlySlide:
		return "POST_ONLY_SLIDE"
	default:
		return "UNKNOWN"
	}
}

// IsPostOnly reports whether the venue rejects or slides the order when it
// would cross the book.
func (t OrderType) IsPostOnly() bool {
	return t == OrderTypePostOnly || t == OrderTypePostOnlySlide
}

// ParseOrderType accepts the wire names of the order types in any case.
func ParseOrderType(s string) (OrderType, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "LIMIT":
		return OrderTypeLimit, true
	case "IOC":
		return OrderTypeIOC, true
	case "POST_ONLY":
		return OrderTypePostOnly, true
	case "POST_ONLY_SLIDE":
		return OrderTypePostOnlySlide, true
	default:
		return _order_type_beg, false
	}
}
