package venue

import (
	"context"

	"main/internal/model"

	"github.com/yanun0323/logs"
)

// Executor submits an instruction batch to the venue. Submit returns one
// Result per instruction; a non-nil error means the batch as a whole never
// reached the venue.
type Executor interface {
	Submit(ctx context.Context, batch []Instruction) ([]Result, error)
}

// MarketOps builds the instructions a given market kind understands. The
// market maker only depends on this interface, never on the concrete kind.
type MarketOps interface {
	PlaceIx(order model.DesiredOrder, clientID uint64) Instruction
	CancelIx(order model.ExistingOrder) Instruction
	CrankIx() Instruction
	SettleIx() Instruction
	RequiresCrank() bool
}

// PerpMarket quotes a perpetual book. Perp venues need periodic cranking to
// match resting orders and settlement to realize PnL.
type PerpMarket struct {
	Market model.Market
}

func (m PerpMarket) PlaceIx(order model.DesiredOrder, clientID uint64) Instruction {
	return Instruction{
		Kind:     InstructionPlace,
		Market:   m.Market.Symbol,
		Order:    order.Order.WithClientID(clientID),
		ClientID: clientID,
	}
}

func (m PerpMarket) CancelIx(order model.ExistingOrder) Instruction {
	return Instruction{
		Kind:        InstructionCancel,
		Market:      m.Market.Symbol,
		Order:       order.Order,
		ClientID:    order.ClientID,
		OkIfMissing: true,
	}
}

func (m PerpMarket) CrankIx() Instruction {
	return Instruction{Kind: InstructionCrank, Market: m.Market.Symbol}
}

func (m PerpMarket) SettleIx() Instruction {
	return Instruction{Kind: InstructionSettle, Market: m.Market.Symbol}
}

func (m PerpMarket) RequiresCrank() bool {
	return m.Market.RequiresCrank
}

// SpotMarket quotes a spot book. Spot venues settle on fill, so crank and
// settle instructions are never appended.
type SpotMarket struct {
	Market model.Market
}

func (m SpotMarket) PlaceIx(order model.DesiredOrder, clientID uint64) Instruction {
	return Instruction{
		Kind:     InstructionPlace,
		Market:   m.Market.Symbol,
		Order:    order.Order.WithClientID(clientID),
		ClientID: clientID,
	}
}

func (m SpotMarket) CancelIx(order model.ExistingOrder) Instruction {
	return Instruction{
		Kind:        InstructionCancel,
		Market:      m.Market.Symbol,
		Order:       order.Order,
		ClientID:    order.ClientID,
		OkIfMissing: true,
	}
}

func (m SpotMarket) CrankIx() Instruction {
	return Instruction{Kind: InstructionCrank, Market: m.Market.Symbol}
}

func (m SpotMarket) SettleIx() Instruction {
	return Instruction{Kind: InstructionSettle, Market: m.Market.Symbol}
}

func (m SpotMarket) RequiresCrank() bool {
	return false
}

// DryRun wraps an executor and reports what would be submitted without
// mutating venue state. Every instruction succeeds.
type DryRun struct{}

func NewDryRun() DryRun {
	return DryRun{}
}

func (DryRun) Submit(ctx context.Context, batch []Instruction) ([]Result, error) {
	results := make([]Result, 0, len(batch))
	for _, ix := range batch {
		logs.Infof("dry run: %s", ix)
		results = append(results, Result{Instruction: ix})
	}
	return results, nil
}
