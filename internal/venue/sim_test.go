package venue

import (
	"context"
	"testing"

	"main/internal/model"
	"main/internal/model/enum"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func simMarket(requiresCrank bool) model.Market {
	return model.Market{
		Symbol:        "SOL-PERP",
		Base:          "SOL",
		Quote:         "USDC",
		TickSize:      dec("0.01"),
		LotSize:       dec("0.1"),
		RequiresCrank: requiresCrank,
	}
}

func seededSim(t *testing.T) *Sim {
	t.Helper()
	sim := NewSim(simMarket(false))
	sim.SetOracle(dec("100"), dec("0.05"))
	sim.SetBook(model.OrderBook{
		Bids: []model.PriceLevel{{Price: dec("99.9"), Quantity: dec("10")}},
		Asks: []model.PriceLevel{{Price: dec("100.1"), Quantity: dec("10")}},
	})
	sim.SetAccount(decimal.Zero, decimal.Zero, dec("10000"))
	return sim
}

func placeIx(clientID uint64, side enum.OrderSide, price, quantity string, typ enum.OrderType) Instruction {
	order := model.NewDesiredOrder(side, dec(price), dec(quantity), typ)
	return Instruction{
		Kind:     InstructionPlace,
		Market:   "SOL-PERP",
		Order:    order.Order.WithClientID(clientID),
		ClientID: clientID,
	}
}

func TestSimPlaceAndCancel(t *testing.T) {
	sim := seededSim(t)
	ctx := context.Background()

	results, err := sim.Submit(ctx, []Instruction{
		placeIx(1, enum.OrderSideBuy, "98", "1", enum.OrderTypePostOnly),
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Ok())
	assert.Len(t, sim.Resting(), 1)

	results, err = sim.Submit(ctx, []Instruction{
		{Kind: InstructionCancel, Market: "SOL-PERP", ClientID: 1},
	})
	require.NoError(t, err)
	assert.True(t, results[0].Ok())
	assert.Empty(t, sim.Resting())
}

func TestSimRejectsDuplicateClientID(t *testing.T) {
	sim := seededSim(t)
	ctx := context.Background()

	results, err := sim.Submit(ctx, []Instruction{
		placeIx(7, enum.OrderSideBuy, "98", "1", enum.OrderTypePostOnly),
		placeIx(7, enum.OrderSideBuy, "97", "1", enum.OrderTypePostOnly),
	})
	require.NoError(t, err)
	assert.True(t, results[0].Ok())
	assert.ErrorIs(t, results[1].Err, exception.ErrVenueDuplicateClientID)
}

func TestSimCancelMissingFailsTheInstructionOnly(t *testing.T) {
	sim := seededSim(t)

	results, err := sim.Submit(context.Background(), []Instruction{
		{Kind: InstructionCancel, Market: "SOL-PERP", ClientID: 404},
		placeIx(1, enum.OrderSideBuy, "98", "1", enum.OrderTypePostOnly),
	})
	require.NoError(t, err, "a rejected instruction must not fail the batch")
	assert.ErrorIs(t, results[0].Err, exception.ErrVenueOrderMissing)
	assert.True(t, results[1].Ok(), "later instructions still execute")
}

func TestSimIOCFillsWithinLimit(t *testing.T) {
	sim := seededSim(t)

	_, err := sim.Submit(context.Background(), []Instruction{
		placeIx(0, enum.OrderSideBuy, "101", "3", enum.OrderTypeIOC),
	})
	require.NoError(t, err)

	assert.True(t, sim.Inventory().Equal(dec("3")), "inventory %s", sim.Inventory())
	assert.Empty(t, sim.Resting(), "IOC orders never rest")
}

func TestSimIOCOutsideLimitDoesNothing(t *testing.T) {
	sim := seededSim(t)

	// best ask 100.1 is worse than the 100 limit, the whole order lapses
	_, err := sim.Submit(context.Background(), []Instruction{
		placeIx(0, enum.OrderSideBuy, "100", "3", enum.OrderTypeIOC),
	})
	require.NoError(t, err)
	assert.True(t, sim.Inventory().IsZero())
	assert.Empty(t, sim.Resting())
}

func TestSimCrankAndSettleCount(t *testing.T) {
	sim := seededSim(t)

	_, err := sim.Submit(context.Background(), []Instruction{
		{Kind: InstructionCrank, Market: "SOL-PERP"},
		{Kind: InstructionSettle, Market: "SOL-PERP"},
		{Kind: InstructionCrank, Market: "SOL-PERP"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, sim.Cranks())
}

func TestSimSnapshotIsolatesBook(t *testing.T) {
	sim := seededSim(t)

	state, err := sim.Snapshot(context.Background())
	require.NoError(t, err)
	require.True(t, state.OracleOk)
	assert.NotZero(t, state.BuiltAtNano)

	// mutating the snapshot must not leak back into the sim
	state.Book.Bids[0].Price = dec("1")
	next, err := sim.Snapshot(context.Background())
	require.NoError(t, err)
	assert.True(t, next.Book.Bids[0].Price.Equal(dec("99.9")))
}

func TestMarketOpsCrankPolicy(t *testing.T) {
	perp := PerpMarket{Market: simMarket(true)}
	assert.True(t, perp.RequiresCrank())
	perpNoCrank := PerpMarket{Market: simMarket(false)}
	assert.False(t, perpNoCrank.RequiresCrank())

	spot := SpotMarket{Market: simMarket(true)}
	assert.False(t, spot.RequiresCrank(), "spot books settle on fill")
}

func TestMarketOpsCancelIsOkIfMissing(t *testing.T) {
	perp := PerpMarket{Market: simMarket(true)}
	order := model.NewDesiredOrder(enum.OrderSideBuy, dec("98"), dec("1"), enum.OrderTypePostOnly)
	ix := perp.CancelIx(model.ExistingOrder{Order: order.Order.WithClientID(9)})
	assert.True(t, ix.OkIfMissing)
	assert.Equal(t, uint64(9), ix.ClientID)
}

func TestDryRunTouchesNothing(t *testing.T) {
	results, err := NewDryRun().Submit(context.Background(), []Instruction{
		placeIx(1, enum.OrderSideBuy, "98", "1", enum.OrderTypePostOnly),
		{Kind: InstructionCancel, Market: "SOL-PERP", ClientID: 404},
	})
	require.NoError(t, err)
	require.Len(t, results, 2)
	for _, result := range results {
		assert.True(t, result.Ok())
	}
}
