package venue

import (
	"context"
	"sync"
	"time"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
)

// Sim is an in-memory venue for paper trading and tests. It keeps a book,
// an oracle price and an account, executes instruction batches against them,
// and serves model-state snapshots like a market data client would.
//
// IOC orders fill immediately against the touch within their limit price and
// never rest; everything else rests until cancelled.
type Sim struct {
	mu sync.Mutex

	market     model.Market
	book       model.OrderBook
	oracle     model.OraclePrice
	oracleOk   bool
	inventory  decimal.Decimal
	derivative decimal.Decimal
	collateral decimal.Decimal

	resting map[uint64]model.Order
	cranks  int
	settles int
}

func NewSim(market model.Market) *Sim {
	return &Sim{
		market:  market,
		resting: make(map[uint64]model.Order),
	}
}

func (s *Sim) SetBook(book model.OrderBook) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.book = book
}

func (s *Sim) SetOracle(mid, confidence decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.oracle = model.OraclePrice{Mid: mid, Confidence: confidence}
	s.oracleOk = true
}

func (s *Sim) SetAccount(inventory, derivative, collateral decimal.Decimal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inventory = inventory
	s.derivative = derivative
	s.collateral = collateral
}

func (s *Sim) Inventory() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inventory
}

// Resting returns the client ids currently on the book.
func (s *Sim) Resting() map[uint64]model.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[uint64]model.Order, len(s.resting))
	for id, order := range s.resting {
		out[id] = order
	}
	return out
}

func (s *Sim) Cranks() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cranks
}

// Snapshot builds a fresh immutable model state from the current sim world.
func (s *Sim) Snapshot(ctx context.Context) (*model.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	book := model.OrderBook{
		Bids: append([]model.PriceLevel{}, s.book.Bids...),
		Asks: append([]model.PriceLevel{}, s.book.Asks...),
	}
	return &model.State{
		Market:              s.market,
		Book:                book,
		Oracle:              s.oracle,
		OracleOk:            s.oracleOk,
		Inventory:           s.inventory,
		DerivativePosition:  s.derivative,
		AvailableCollateral: s.collateral,
		BuiltAtNano:         time.Now().UTC().UnixNano(),
	}, nil
}

func (s *Sim) Submit(ctx context.Context, batch []Instruction) ([]Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	results := make([]Result, 0, len(batch))
	for _, ix := range batch {
		results = append(results, Result{Instruction: ix, Err: s.apply(ix)})
	}
	return results, nil
}

func (s *Sim) apply(ix Instruction) error {
	switch ix.Kind {
	case InstructionPlace:
		if ix.ClientID != 0 {
			if _, ok := s.resting[ix.ClientID]; ok {
				return errors.Wrapf(exception.ErrVenueDuplicateClientID, "client id %d", ix.ClientID)
			}
		}
		if ix.Order.Type == enum.OrderTypeIOC {
			s.fillIOC(ix.Order)
			return nil
		}
		s.resting[ix.ClientID] = ix.Order
		return nil

	case InstructionCancel:
		if _, ok := s.resting[ix.ClientID]; !ok {
			return errors.Wrapf(exception.ErrVenueOrderMissing, "client id %d", ix.ClientID)
		}
		delete(s.resting, ix.ClientID)
		return nil

	case InstructionCrank:
		s.cranks++
		return nil

	case InstructionSettle:
		s.settles++
		return nil

	default:
		return exception.ErrVenueUnsupportedInstruction
	}
}

// fillIOC crosses the order against the touch. The unfilled remainder is
// dropped, as an immediate-or-cancel order requires.
func (s *Sim) fillIOC(order model.Order) {
	switch order.Side {
	case enum.OrderSideBuy:
		ask, ok := s.book.BestAsk()
		if !ok || ask.Price.GreaterThan(order.Price) {
			return
		}
		filled := decimal.Min(order.Quantity, ask.Quantity)
		s.inventory = s.inventory.Add(filled)
		s.collateral = s.collateral.Sub(filled.Mul(ask.Price))
	case enum.OrderSideSell:
		bid, ok := s.book.BestBid()
		if !ok || bid.Price.LessThan(order.Price) {
			return
		}
		filled := decimal.Min(order.Quantity, bid.Quantity)
		s.inventory = s.inventory.Sub(filled)
		s.collateral = s.collateral.Add(filled.Mul(bid.Price))
	}
}
