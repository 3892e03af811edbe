package model

import "github.com/shopspring/decimal"

// OraclePrice is the oracle midpoint plus its confidence interval.
type OraclePrice struct {
	Mid        decimal.Decimal
	Confidence decimal.Decimal
}

// State is one immutable snapshot of everything a pulse reads: oracle, book,
// account inventory and collateral, market metadata. A pulse builds its own
// snapshot and never shares it for mutation, so readers need no locks.
type State struct {
	Market              Market
	Book                OrderBook
	Oracle              OraclePrice
	OracleOk            bool
	Inventory           decimal.Decimal // signed base asset balance
	DerivativePosition  decimal.Decimal // signed perp/derivative position
	AvailableCollateral decimal.Decimal // quote collateral free for quoting
	BuiltAtNano         int64
}

// ReferencePrice returns the oracle mid when present, otherwise the book mid.
func (s *State) ReferencePrice() (decimal.Decimal, bool) {
	if s.OracleOk {
		return s.Oracle.Mid, true
	}
	return s.Book.Mid()
}
