package obs

import (
	"sync/atomic"
	"time"
)

// Metrics collects lightweight counters and latency stats for the pulse
// loops. All methods are safe for concurrent use.
type Metrics struct {
	makerPulses  uint64
	hedgerPulses uint64
	pulseErrors  uint64
	placed       uint64
	cancelled    uint64
	skipped      uint64
	queueDrops   uint64

	makerLatency  LatencyStats
	hedgerLatency LatencyStats
}

// LatencyStats aggregates duration samples in nanoseconds.
type LatencyStats struct {
	count uint64
	sum   uint64
	max   uint64
}

// LatencySnapshot is a point-in-time view of latency stats.
type LatencySnapshot struct {
	Count uint64
	Max   time.Duration
	Avg   time.Duration
}

// Snapshot captures the current metrics values.
type Snapshot struct {
	MakerPulses   uint64
	HedgerPulses  uint64
	PulseErrors   uint64
	Placed        uint64
	Cancelled     uint64
	Skipped       uint64
	QueueDrops    uint64
	MakerLatency  LatencySnapshot
	HedgerLatency LatencySnapshot
}

// NewMetrics allocates a metrics container.
func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) ObserveMakerPulse(d time.Duration) {
	atomic.AddUint64(&m.makerPulses, 1)
	m.makerLatency.observe(d)
}

func (m *Metrics) ObserveHedgerPulse(d time.Duration) {
	atomic.AddUint64(&m.hedgerPulses, 1)
	m.hedgerLatency.observe(d)
}

func (m *Metrics) IncPulseError() { atomic.AddUint64(&m.pulseErrors, 1) }
func (m *Metrics) IncSkipped()    { atomic.AddUint64(&m.skipped, 1) }
func (m *Metrics) IncQueueDrop()  { atomic.AddUint64(&m.queueDrops, 1) }

func (m *Metrics) AddPlaced(n int)    { atomic.AddUint64(&m.placed, uint64(n)) }
func (m *Metrics) AddCancelled(n int) { atomic.AddUint64(&m.cancelled, uint64(n)) }

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		MakerPulses:   atomic.LoadUint64(&m.makerPulses),
		HedgerPulses:  atomic.LoadUint64(&m.hedgerPulses),
		PulseErrors:   atomic.LoadUint64(&m.pulseErrors),
		Placed:        atomic.LoadUint64(&m.placed),
		Cancelled:     atomic.LoadUint64(&m.cancelled),
		Skipped:       atomic.LoadUint64(&m.skipped),
		QueueDrops:    atomic.LoadUint64(&m.queueDrops),
		MakerLatency:  m.makerLatency.snapshot(),
		HedgerLatency: m.hedgerLatency.snapshot(),
	}
}

func (s *LatencyStats) observe(d time.Duration) {
	ns := uint64(d.Nanoseconds())
	atomic.AddUint64(&s.count, 1)
	atomic.AddUint64(&s.sum, ns)
	for {
		current := atomic.LoadUint64(&s.max)
		if ns <= current || atomic.CompareAndSwapUint64(&s.max, current, ns) {
			break
		}
	}
}

func (s *LatencyStats) snapshot() LatencySnapshot {
	count := atomic.LoadUint64(&s.count)
	sum := atomic.LoadUint64(&s.sum)
	out := LatencySnapshot{
		Count: count,
		Max:   time.Duration(atomic.LoadUint64(&s.max)),
	}
	if count > 0 {
		out.Avg = time.Duration(sum / count)
	}
	return out
}
