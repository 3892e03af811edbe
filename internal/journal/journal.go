package journal

import (
	"context"
	"time"

	"main/internal/bus"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"
)

// OrderRecord is one placed or cancelled order.
type OrderRecord struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	At       time.Time
	Market   string `gorm:"index"`
	Action   string // place / cancel
	ClientID uint64 `gorm:"index"`
	Side     string
	Price    string
	Quantity string
}

func (OrderRecord) TableName() string { return "order_records" }

// HedgeRecord is one hedge chunk sent to the spot leg.
type HedgeRecord struct {
	ID       uint64 `gorm:"primaryKey;autoIncrement"`
	At       time.Time
	Market   string `gorm:"index"`
	Side     string
	Price    string
	Quantity string
}

func (HedgeRecord) TableName() string { return "hedge_records" }

// PulseRecord summarizes one finished pulse.
type PulseRecord struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement"`
	At         time.Time
	Market     string `gorm:"index"`
	Trigger    string
	Desired    int
	Placed     int
	Cancelled  int
	DurationMs int64
}

func (PulseRecord) TableName() string { return "pulse_records" }

// Journal appends engine events to Postgres. It is an audit trail, never a
// source of truth: the engine rebuilds its view of the book from the venue
// on every pulse.
type Journal struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Journal, error) {
	if err := db.AutoMigrate(&OrderRecord{}, &HedgeRecord{}, &PulseRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal tables")
	}
	return &Journal{db: db}, nil
}

// Consume drains the event queue into the journal until the context ends.
// A failed insert is logged and dropped; journaling never blocks trading.
func (j *Journal) Consume(ctx context.Context, queue *bus.Queue) {
	queue.Run(ctx, func(e bus.Event) {
		if err := j.Append(e); err != nil {
			logs.Errorf("journal append failed: %+v", err)
		}
	})
}

// Append writes one event to its table.
func (j *Journal) Append(e bus.Event) error {
	at := time.Unix(0, e.AtNano).UTC()
	switch e.Kind {
	case bus.EventOrderPlaced, bus.EventOrderCancelled:
		action := "place"
		if e.Kind == bus.EventOrderCancelled {
			action = "cancel"
		}
		return j.db.Create(&OrderRecord{
			At:       at,
			Market:   e.Market,
			Action:   action,
			ClientID: e.ClientID,
			Side:     e.Order.Side.String(),
			Price:    e.Order.Price.String(),
			Quantity: e.Order.Quantity.String(),
		}).Error

	case bus.EventHedgeTrade:
		return j.db.Create(&HedgeRecord{
			At:       at,
			Market:   e.Market,
			Side:     e.Order.Side.String(),
			Price:    e.Price.String(),
			Quantity: e.Quantity.String(),
		}).Error

	case bus.EventPulseComplete:
		return j.db.Create(&PulseRecord{
			At:         at,
			Market:     e.Market,
			Trigger:    e.Pulse.Trigger,
			Desired:    e.Pulse.Desired,
			Placed:     e.Pulse.Placed,
			Cancelled:  e.Pulse.Cancelled,
			DurationMs: e.Pulse.DurationNano / int64(time.Millisecond),
		}).Error

	default:
		return nil
	}
}
