package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"main/internal/model"
	"main/internal/ops"
	"main/internal/recon"
	"main/internal/venue"

	"github.com/shopspring/decimal"
)

// quote runs the configured chain once against a synthetic model state and
// prints the reconciliation plan. Nothing is submitted anywhere; it is the
// quickest way to sanity-check a chain configuration before deploying it.
func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	mid := flag.Float64("mid", 100, "Oracle mid price")
	confidence := flag.Float64("confidence", 0.05, "Oracle confidence")
	inventory := flag.Float64("inventory", 0, "Base asset inventory")
	collateral := flag.Float64("collateral", 10_000, "Available collateral")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %+v", err)
	}

	sim := venue.NewSim(loaded.Market)
	midDec := decimal.NewFromFloat(*mid)
	tick := loaded.Market.TickSize
	sim.SetOracle(midDec, decimal.NewFromFloat(*confidence))
	sim.SetBook(model.OrderBook{
		Bids: []model.PriceLevel{{Price: midDec.Sub(tick), Quantity: decimal.NewFromInt(100)}},
		Asks: []model.PriceLevel{{Price: midDec.Add(tick), Quantity: decimal.NewFromInt(100)}},
	})
	sim.SetAccount(decimal.NewFromFloat(*inventory), decimal.Zero, decimal.NewFromFloat(*collateral))

	state, err := sim.Snapshot(context.Background())
	if err != nil {
		log.Fatalf("snapshot failed: %+v", err)
	}

	desired, err := loaded.Chain.Process(state)
	if err != nil {
		log.Fatalf("chain failed: %+v", err)
	}

	result := loaded.Reconciler.Reconcile(nil, desired)
	fmt.Printf("market %s, mid %s, %d desired orders\n", loaded.Market.Symbol, midDec, len(desired))
	printPlan(result)
}

func printPlan(result recon.Result) {
	for _, order := range result.ToPlace {
		fmt.Printf("  place  %s\n", order.Order)
	}
	for _, order := range result.ToCancel {
		fmt.Printf("  cancel %s\n", order.Order)
	}
}
