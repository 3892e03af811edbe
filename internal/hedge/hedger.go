package hedge

import (
	"context"
	"time"

	"main/internal/bus"
	"main/internal/ingest"
	"main/internal/model"
	"main/internal/model/enum"
	"main/internal/obs"
	"main/internal/venue"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Hedger runs one delta-hedging pulse.
type Hedger interface {
	Pulse(ctx context.Context) error
}

// Null is the default hedger: it does nothing every pulse. Hedging is
// strictly opt-in.
type Null struct{}

func (Null) Pulse(ctx context.Context) error { return nil }

// Config parameterizes a delta hedger.
type Config struct {
	Market          model.Market    // the spot market traded to hedge
	Target          decimal.Decimal // spot balance considered neutral
	MaxSlippage     decimal.Decimal // worst acceptable distance from oracle mid
	MaxChunk        decimal.Decimal // per-pulse trade cap, zero = unlimited
	ActionThreshold decimal.Decimal // |delta| below this is left alone
	PulsePause      int             // pulses to skip after sending a chunk
}

func (cfg Config) validate() error {
	if cfg.MaxSlippage.IsNegative() || cfg.MaxChunk.IsNegative() || cfg.ActionThreshold.IsNegative() {
		return errors.Wrap(exception.ErrInvalidArgument, "hedge config has negative bounds")
	}
	if cfg.PulsePause < 0 {
		return errors.Wrap(exception.ErrInvalidArgument, "hedge pulse pause is negative")
	}
	return nil
}

// Delta trades the spot leg toward derivativePosition - (spot - target) = 0.
// It sends at most one IOC chunk per eligible pulse and then pauses, letting
// fills settle before re-evaluating. An unfilled remainder needs no retry
// bookkeeping: the next pulse recomputes the delta from scratch.
type Delta struct {
	cfg      Config
	builder  ingest.Builder
	ops      venue.MarketOps
	executor venue.Executor
	events   *bus.Queue
	metrics  *obs.Metrics

	pauseLeft int
}

type Option func(*Delta)

func WithEvents(events *bus.Queue) Option {
	return func(h *Delta) { h.events = events }
}

func WithMetrics(metrics *obs.Metrics) Option {
	return func(h *Delta) { h.metrics = metrics }
}

func NewDelta(cfg Config, builder ingest.Builder, ops venue.MarketOps, executor venue.Executor, opts ...Option) (*Delta, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if builder == nil || ops == nil || executor == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "hedger collaborator")
	}

	h := &Delta{cfg: cfg, builder: builder, ops: ops, executor: executor}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

func (h *Delta) Pulse(ctx context.Context) error {
	started := time.Now()
	if h.pauseLeft > 0 {
		h.pauseLeft--
		return nil
	}

	state, err := h.builder.Build(ctx)
	if err != nil {
		return errors.Wrap(err, "build model state")
	}
	if !state.OracleOk {
		return exception.ErrHedgeNoOracle
	}

	delta := state.DerivativePosition.Sub(state.Inventory.Sub(h.cfg.Target))
	if delta.Abs().LessThanOrEqual(h.cfg.ActionThreshold) {
		return nil
	}

	quantity := delta.Abs()
	if h.cfg.MaxChunk.IsPositive() {
		quantity = decimal.Min(quantity, h.cfg.MaxChunk)
	}

	one := decimal.NewFromInt(1)
	mid := state.Oracle.Mid
	var side enum.OrderSide
	var worst decimal.Decimal
	if delta.IsPositive() {
		side = enum.OrderSideBuy
		worst = mid.Mul(one.Add(h.cfg.MaxSlippage))
	} else {
		side = enum.OrderSideSell
		worst = mid.Mul(one.Sub(h.cfg.MaxSlippage))
	}

	order := model.NewDesiredOrder(side, worst, quantity, enum.OrderTypeIOC)
	results, err := h.executor.Submit(ctx, []venue.Instruction{h.ops.PlaceIx(order, 0)})
	if err != nil {
		return errors.Wrap(err, "submit hedge order")
	}
	for _, result := range results {
		if !result.Ok() {
			logs.Errorf("hedge instruction failed: %s, err: %+v", result.Instruction, result.Err)
		}
	}

	h.pauseLeft = h.cfg.PulsePause
	h.publish(bus.Event{
		Kind:     bus.EventHedgeTrade,
		AtNano:   time.Now().UTC().UnixNano(),
		Market:   h.cfg.Market.Symbol,
		Order:    order.Order,
		Price:    worst,
		Quantity: quantity,
	})
	if h.metrics != nil {
		h.metrics.ObserveHedgerPulse(time.Since(started))
	}

	logs.Infof("hedge %s: delta %s, %s %s capped at %s",
		h.cfg.Market.Symbol, delta, side, quantity, worst)
	return nil
}

func (h *Delta) publish(e bus.Event) {
	if h.events == nil {
		return
	}
	if err := h.events.TryPublish(e); err != nil && h.metrics != nil {
		h.metrics.IncQueueDrop()
	}
}
