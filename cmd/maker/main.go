package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"
	"time"

	"main/internal/bus"
	"main/internal/hedge"
	"main/internal/ingest"
	"main/internal/journal"
	"main/internal/maker"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/notify"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/pulse"
	"main/internal/telemetry"
	"main/internal/venue"
	"main/pkg/conn"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/ws"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to JSON config")
	feedURL := flag.String("feed-url", "", "Websocket feed URL for WEBSOCKET update mode")
	paperMid := flag.Float64("paper-mid", 100, "Paper venue: initial oracle mid")
	paperConfidence := flag.Float64("paper-confidence", 0.05, "Paper venue: initial oracle confidence")
	paperCollateral := flag.Float64("paper-collateral", 10_000, "Paper venue: available collateral")
	flag.Parse()

	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %+v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if loaded.Profiling.Enabled {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "market-maker",
			ServerAddress:   loaded.Profiling.ServerAddress,
			Tags:            map[string]string{"market": loaded.Market.Symbol},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() { _ = profiler.Stop() }()
	}

	// The paper venue stands in for the on-chain client: it serves model
	// state snapshots and absorbs instruction batches. A production client
	// plugs in behind the same ingest.Source / venue.Executor interfaces.
	sim := venue.NewSim(loaded.Market)
	seedSim(sim, *paperMid, *paperConfidence, *paperCollateral)

	builder, err := buildStateBuilder(ctx, loaded, sim, *feedURL)
	if err != nil {
		log.Fatalf("state builder failed: %+v", err)
	}

	var executor venue.Executor = sim
	if loaded.DryRun {
		executor = venue.NewDryRun()
	}

	metrics := obs.NewMetrics()
	events := bus.NewQueue(1024)
	consume := startConsumers(ctx, loaded, events)

	mm, err := newMarketMaker(loaded, builder, sim, executor, events, metrics)
	if err != nil {
		log.Fatalf("market maker init failed: %+v", err)
	}

	hedger := newHedger(loaded, builder, executor, events, metrics)

	var notifier notify.Notifier = notify.Nop{}
	if loaded.DiscordWebhook != "" {
		notifier = notify.NewDiscord(loaded.DiscordWebhook)
	}

	scheduler, err := pulse.NewScheduler([]pulse.Trigger{
		{Name: "maker", Interval: loaded.MakerInterval, Run: mm.Pulse},
		{Name: "hedger", Interval: loaded.HedgerInterval, Run: hedger.Pulse},
	},
		pulse.WithMetrics(metrics),
		pulse.WithErrorHandler(func(trigger string, err error) {
			if alertErr := notifier.Alert("pulse failed: "+trigger, err.Error()); alertErr != nil {
				logs.Errorf("alert delivery failed: %+v", alertErr)
			}
		}),
	)
	if err != nil {
		log.Fatalf("scheduler init failed: %+v", err)
	}

	logs.Infof("quoting %s every %s, hedging every %s, dry run %t",
		loaded.Market.Symbol, loaded.MakerInterval, loaded.HedgerInterval, loaded.DryRun)
	scheduler.Run(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := mm.Shutdown(shutdownCtx); err != nil {
		logs.Errorf("shutdown failed: %+v", err)
	}

	events.Close()
	if consume != nil {
		consume()
	}

	snapshot := metrics.Snapshot()
	logs.Infof("metrics: maker=%d hedger=%d errors=%d placed=%d cancelled=%d skipped=%d drops=%d maker_latency=%+v",
		snapshot.MakerPulses, snapshot.HedgerPulses, snapshot.PulseErrors,
		snapshot.Placed, snapshot.Cancelled, snapshot.Skipped, snapshot.QueueDrops, snapshot.MakerLatency)
}

func newMarketMaker(loaded ops.Loaded, builder ingest.Builder, sim *venue.Sim, executor venue.Executor, events *bus.Queue, metrics *obs.Metrics) (*maker.MarketMaker, error) {
	var marketOps venue.MarketOps
	if loaded.IsPerp {
		marketOps = venue.PerpMarket{Market: loaded.Market}
	} else {
		marketOps = venue.SpotMarket{Market: loaded.Market}
	}

	return maker.New(builder, loaded.Chain, loaded.Reconciler, marketOps, executor, loaded.Market.Symbol,
		maker.WithOrderLister(simLister{sim}),
		maker.WithEvents(events),
		maker.WithMetrics(metrics),
	)
}

func newHedger(loaded ops.Loaded, builder ingest.Builder, executor venue.Executor, events *bus.Queue, metrics *obs.Metrics) hedge.Hedger {
	if loaded.Hedge == nil {
		return hedge.Null{}
	}

	hedger, err := hedge.NewDelta(*loaded.Hedge, builder,
		venue.SpotMarket{Market: loaded.Hedge.Market}, executor,
		hedge.WithEvents(events), hedge.WithMetrics(metrics))
	if err != nil {
		log.Fatalf("hedger init failed: %+v", err)
	}
	return hedger
}

func buildStateBuilder(ctx context.Context, loaded ops.Loaded, sim *venue.Sim, feedURL string) (ingest.Builder, error) {
	switch loaded.UpdateMode {
	case enum.UpdateModeWebsocket:
		builder, err := ingest.NewPushBuilder(ctx, ingest.PushConfig{
			URL:    feedURL,
			Decode: decodeFeed(loaded.Market),
			MaxAge: 3 * loaded.MakerInterval,
		})
		if err != nil {
			return nil, err
		}
		if err := builder.Start(ctx); err != nil {
			return nil, err
		}
		return builder, nil
	default:
		return ingest.NewPollBuilder(sim)
	}
}

// feedPayload is the JSON shape of the external model-state feed.
type feedPayload struct {
	Mid        decimal.Decimal   `json:"mid"`
	Confidence decimal.Decimal   `json:"confidence"`
	Bids       [][2]string       `json:"bids"` // [0]price [1]quantity
	Asks       [][2]string       `json:"asks"`
	Inventory  decimal.Decimal   `json:"inventory"`
	Derivative decimal.Decimal   `json:"derivative"`
	Collateral decimal.Decimal   `json:"collateral"`
}

func decodeFeed(market model.Market) func(m ws.Message, prev *model.State) (*model.State, bool) {
	return func(m ws.Message, prev *model.State) (*model.State, bool) {
		payload, ok := ws.ReadMessage[feedPayload](m)
		if !ok {
			return nil, false
		}

		state := &model.State{
			Market:              market,
			Oracle:              model.OraclePrice{Mid: payload.Mid, Confidence: payload.Confidence},
			OracleOk:            payload.Mid.IsPositive(),
			Inventory:           payload.Inventory,
			DerivativePosition:  payload.Derivative,
			AvailableCollateral: payload.Collateral,
		}
		state.Book.Bids = parseLevels(payload.Bids)
		state.Book.Asks = parseLevels(payload.Asks)
		return state, true
	}
}

func parseLevels(raw [][2]string) []model.PriceLevel {
	levels := make([]model.PriceLevel, 0, len(raw))
	for _, row := range raw {
		price, err := decimal.NewFromString(row[0])
		if err != nil {
			continue
		}
		quantity, err := decimal.NewFromString(row[1])
		if err != nil {
			continue
		}
		levels = append(levels, model.PriceLevel{Price: price, Quantity: quantity})
	}
	return levels
}

func startConsumers(ctx context.Context, loaded ops.Loaded, events *bus.Queue) (wait func()) {
	var hub *telemetry.Hub
	if loaded.TelemetryAddr != "" {
		hub = telemetry.NewHub()
		go func() {
			if err := hub.Serve(ctx, loaded.TelemetryAddr); err != nil {
				logs.Errorf("telemetry server failed: %+v", err)
			}
		}()
	}

	var store *journal.Journal
	if loaded.JournalDSN != "" {
		client, err := conn.New(loaded.JournalDSN)
		if err != nil {
			log.Fatalf("journal connect failed: %+v", err)
		}
		store, err = journal.New(client.DB())
		if err != nil {
			log.Fatalf("journal init failed: %+v", err)
		}
	}

	if hub == nil && store == nil {
		// Nobody listening. Drain so the queue never reports drops.
		go events.Run(ctx, func(bus.Event) {})
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		events.Run(ctx, func(e bus.Event) {
			if hub != nil {
				hub.Publish(e)
			}
			if store != nil {
				if err := store.Append(e); err != nil {
					logs.Errorf("journal append failed: %+v", err)
				}
			}
		})
	}()
	return func() { <-done }
}

func seedSim(sim *venue.Sim, mid, confidence, collateral float64) {
	midDec := decimal.NewFromFloat(mid)
	spread := midDec.Mul(decimal.NewFromFloat(0.001))
	quantity := decimal.NewFromInt(50)
	sim.SetOracle(midDec, decimal.NewFromFloat(confidence))
	sim.SetBook(model.OrderBook{
		Bids: []model.PriceLevel{
			{Price: midDec.Sub(spread), Quantity: quantity},
			{Price: midDec.Sub(spread.Mul(decimal.NewFromInt(2))), Quantity: quantity},
			{Price: midDec.Sub(spread.Mul(decimal.NewFromInt(3))), Quantity: quantity},
		},
		Asks: []model.PriceLevel{
			{Price: midDec.Add(spread), Quantity: quantity},
			{Price: midDec.Add(spread.Mul(decimal.NewFromInt(2))), Quantity: quantity},
			{Price: midDec.Add(spread.Mul(decimal.NewFromInt(3))), Quantity: quantity},
		},
	})
	sim.SetAccount(decimal.Zero, decimal.Zero, decimal.NewFromFloat(collateral))
}

// simLister adapts the sim venue to the maker's own-order listing.
type simLister struct {
	sim *venue.Sim
}

func (l simLister) OwnOrders(ctx context.Context) (map[uint64]model.Order, error) {
	return l.sim.Resting(), nil
}
