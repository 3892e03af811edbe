package bus

import (
	"context"
	"sync/atomic"

	"main/internal/model"
	"main/pkg/exception"

	"github.com/shopspring/decimal"
)

// EventKind order placed, order cancelled, hedge trade, pulse complete
type EventKind uint8

const (
	_event_kind_beg EventKind = iota
	EventOrderPlaced
	EventOrderCancelled
	EventHedgeTrade
	EventPulseComplete
	_event_kind_end
)

func (k EventKind) IsAvailable() bool {
	return k > _event_kind_beg && k < _event_kind_end
}

func (k EventKind) String() string {
	switch k {
	case EventOrderPlaced:
		return "order_placed"
	case EventOrderCancelled:
		return "order_cancelled"
	case EventHedgeTrade:
		return "hedge_trade"
	case EventPulseComplete:
		return "pulse_complete"
	default:
		return "unknown"
	}
}

// PulseSummary describes one finished pulse for liveness reporting.
type PulseSummary struct {
	Trigger      string
	Desired      int
	Placed       int
	Cancelled    int
	DurationNano int64
	Err          string
}

// Event is the unit passed from the pulse goroutines to telemetry, journal
// and notification consumers.
type Event struct {
	Kind     EventKind
	AtNano   int64
	Market   string
	ClientID uint64
	Order    model.Order
	Price    decimal.Decimal
	Quantity decimal.Decimal
	Pulse    PulseSummary
}

// Queue is a bounded, non-blocking event queue. Producers drop on full so a
// slow consumer can never stall a pulse.
type Queue struct {
	ch     chan Event
	closed uint32
}

// NewQueue allocates a queue with the given capacity.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = 1
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// TryPublish enqueues an event without blocking.
func (q *Queue) TryPublish(e Event) error {
	if atomic.LoadUint32(&q.closed) != 0 {
		return exception.ErrQueueClosed
	}
	select {
	case q.ch <- e:
		return nil
	default:
		return exception.ErrQueueFull
	}
}

// Close stops the queue from accepting new events.
func (q *Queue) Close() {
	if atomic.CompareAndSwapUint32(&q.closed, 0, 1) {
		close(q.ch)
	}
}

// Run consumes events until the context is done or the queue is closed.
func (q *Queue) Run(ctx context.Context, handler func(Event)) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-q.ch:
			if !ok {
				return
			}
			handler(e)
		}
	}
}
