package maker

import (
	"context"
	"time"

	"main/internal/bus"
	"main/internal/chain"
	"main/internal/ingest"
	"main/internal/model"
	"main/internal/obs"
	"main/internal/recon"
	"main/internal/track"
	"main/internal/venue"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// OrderLister is the optional venue capability to list this account's own
// resting orders, used to observe fills and expiry between pulses.
type OrderLister interface {
	OwnOrders(ctx context.Context) (map[uint64]model.Order, error)
}

// MarketMaker runs one quoting pulse: build a model state, run the chain,
// reconcile against tracked orders, submit the resulting batch. All of its
// collaborators are fixed at construction; a pulse has no hidden ambient
// dependencies.
type MarketMaker struct {
	builder    ingest.Builder
	chain      *chain.Chain
	reconciler *recon.Reconciler
	tracker    *track.Tracker
	ops        venue.MarketOps
	executor   venue.Executor
	lister     OrderLister
	events     *bus.Queue
	metrics    *obs.Metrics

	market       string
	nextClientID uint64
}

type Option func(*MarketMaker)

// WithOrderLister lets the pulse prune tracked orders the venue no longer
// shows on the book.
func WithOrderLister(lister OrderLister) Option {
	return func(m *MarketMaker) { m.lister = lister }
}

// WithEvents publishes pulse events onto the queue. Publishing never blocks;
// events are dropped when the queue is full.
func WithEvents(events *bus.Queue) Option {
	return func(m *MarketMaker) { m.events = events }
}

func WithMetrics(metrics *obs.Metrics) Option {
	return func(m *MarketMaker) { m.metrics = metrics }
}

func New(builder ingest.Builder, ch *chain.Chain, reconciler *recon.Reconciler, ops venue.MarketOps, executor venue.Executor, market string, opts ...Option) (*MarketMaker, error) {
	if builder == nil || ch == nil || reconciler == nil || ops == nil || executor == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "market maker collaborator")
	}

	m := &MarketMaker{
		builder:    builder,
		chain:      ch,
		reconciler: reconciler,
		tracker:    track.NewTracker(),
		ops:        ops,
		executor:   executor,
		market:     market,
		// Seed correlation ids from the clock so a restarted process never
		// collides with its predecessor's resting orders.
		nextClientID: uint64(time.Now().UTC().UnixNano()),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Tracker exposes the tracked-order set for the shutdown path and tests.
func (m *MarketMaker) Tracker() *track.Tracker {
	return m.tracker
}

// Pulse runs steps 1-9 of one quoting round. Any error aborts the pulse; the
// next scheduled pulse retries from a fresh snapshot.
func (m *MarketMaker) Pulse(ctx context.Context) error {
	started := time.Now()

	state, err := m.builder.Build(ctx)
	if err != nil {
		return errors.Wrap(err, "build model state")
	}

	desired, err := m.chain.Process(state)
	if err != nil {
		return errors.Wrap(err, "process chain")
	}

	m.observeBook(ctx)
	existing := m.tracker.Existing()
	result := m.reconciler.Reconcile(existing, desired)

	batch := make([]venue.Instruction, 0, len(result.ToCancel)+len(result.ToPlace)+2)
	for _, order := range result.ToCancel {
		batch = append(batch, m.ops.CancelIx(order))
		m.tracker.Untrack(order.ClientID)
	}
	placed := make([]model.ExistingOrder, 0, len(result.ToPlace))
	for _, order := range result.ToPlace {
		id := m.nextID()
		tracked := model.ExistingOrder{Order: order.Order.WithClientID(id)}
		if err := m.tracker.Track(tracked); err != nil {
			return errors.Wrap(err, "track order")
		}
		placed = append(placed, tracked)
		batch = append(batch, m.ops.PlaceIx(order, id))
	}
	if m.ops.RequiresCrank() {
		batch = append(batch, m.ops.CrankIx(), m.ops.SettleIx())
	}

	if err := m.submit(ctx, batch); err != nil {
		return err
	}

	m.publishOrderEvents(result.ToCancel, placed)
	m.publishPulse(bus.PulseSummary{
		Trigger:      "maker",
		Desired:      len(desired),
		Placed:       len(result.ToPlace),
		Cancelled:    len(result.ToCancel),
		DurationNano: time.Since(started).Nanoseconds(),
	})
	if m.metrics != nil {
		m.metrics.ObserveMakerPulse(time.Since(started))
		m.metrics.AddPlaced(len(result.ToPlace))
		m.metrics.AddCancelled(len(result.ToCancel))
	}

	logs.Infof("pulse %s: desired %d, place %d, cancel %d, tracked %d",
		m.market, len(desired), len(result.ToPlace), len(result.ToCancel), m.tracker.Len())
	return nil
}

// Shutdown cancels every tracked order and cranks the book one last time.
// In-flight cancels are allowed to complete: aborting them could leave
// orphaned resting orders.
func (m *MarketMaker) Shutdown(ctx context.Context) error {
	existing := m.tracker.Existing()
	batch := make([]venue.Instruction, 0, len(existing)+2)
	for _, order := range existing {
		batch = append(batch, m.ops.CancelIx(order))
		m.tracker.Untrack(order.ClientID)
	}
	if m.ops.RequiresCrank() {
		batch = append(batch, m.ops.CrankIx(), m.ops.SettleIx())
	}
	if len(batch) == 0 {
		return nil
	}

	logs.Infof("shutdown %s: cancelling %d tracked orders", m.market, len(existing))
	return m.submit(ctx, batch)
}

// submit sends the batch and resolves per-instruction outcomes. Partial
// failure is tolerated: a failed place is untracked and re-evaluated next
// pulse, a cancel of an already-gone order counts as success.
func (m *MarketMaker) submit(ctx context.Context, batch []venue.Instruction) error {
	if len(batch) == 0 {
		return nil
	}

	results, err := m.executor.Submit(ctx, batch)
	if err != nil {
		return errors.Wrap(err, "submit batch")
	}

	for _, result := range results {
		if result.Ok() {
			continue
		}
		ix := result.Instruction
		if ix.Kind == venue.InstructionCancel && ix.OkIfMissing && errors.Is(result.Err, exception.ErrVenueOrderMissing) {
			continue
		}
		if ix.Kind == venue.InstructionPlace {
			m.tracker.Untrack(ix.ClientID)
		}
		logs.Errorf("instruction failed: %s, err: %+v", ix, result.Err)
	}
	return nil
}

// observeBook prunes tracked orders the venue no longer shows, so fills and
// expiry surface as missing existing orders instead of phantom state.
func (m *MarketMaker) observeBook(ctx context.Context) {
	if m.lister == nil {
		return
	}

	own, err := m.lister.OwnOrders(ctx)
	if err != nil {
		logs.Errorf("list own orders: %+v", err)
		return
	}
	onBook := make(map[uint64]struct{}, len(own))
	for id := range own {
		onBook[id] = struct{}{}
	}
	if dropped := m.tracker.Prune(onBook); len(dropped) > 0 {
		logs.Infof("pruned %d orders no longer on the book", len(dropped))
	}
}

func (m *MarketMaker) nextID() uint64 {
	m.nextClientID++
	return m.nextClientID
}

func (m *MarketMaker) publishOrderEvents(cancelled, placed []model.ExistingOrder) {
	if m.events == nil {
		return
	}
	now := time.Now().UTC().UnixNano()
	for _, order := range cancelled {
		m.publish(bus.Event{
			Kind:     bus.EventOrderCancelled,
			AtNano:   now,
			Market:   m.market,
			ClientID: order.ClientID,
			Order:    order.Order,
		})
	}
	for _, order := range placed {
		m.publish(bus.Event{
			Kind:     bus.EventOrderPlaced,
			AtNano:   now,
			Market:   m.market,
			ClientID: order.ClientID,
			Order:    order.Order,
		})
	}
}

func (m *MarketMaker) publishPulse(summary bus.PulseSummary) {
	m.publish(bus.Event{
		Kind:   bus.EventPulseComplete,
		AtNano: time.Now().UTC().UnixNano(),
		Market: m.market,
		Pulse:  summary,
	})
}

func (m *MarketMaker) publish(e bus.Event) {
	if m.events == nil {
		return
	}
	if err := m.events.TryPublish(e); err != nil && m.metrics != nil {
		m.metrics.IncQueueDrop()
	}
}
