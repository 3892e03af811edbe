package ingest

import (
	"context"
	"sync/atomic"
	"time"

	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"
)

// PushConfig wires a websocket feed into a push builder. Decode folds one
// raw message into a fresh snapshot derived from the previous one; it must
// return a new state, never mutate prev.
type PushConfig struct {
	URL       string
	Subscribe func(ctx context.Context, wss *ws.WebSocket) error
	Decode    func(m ws.Message, prev *model.State) (*model.State, bool)

	// MaxAge bounds snapshot staleness at Build time. Zero disables the
	// check.
	MaxAge time.Duration
}

// PushBuilder keeps the latest snapshot from a websocket subscription and
// hands it out per pulse. Consumers only ever see whole immutable snapshots,
// so no locking is needed on read.
type PushBuilder struct {
	cfg    PushConfig
	wss    *ws.WebSocket
	latest atomic.Pointer[model.State]
}

func NewPushBuilder(ctx context.Context, cfg PushConfig) (*PushBuilder, error) {
	if cfg.URL == "" {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "push builder url is empty")
	}
	if cfg.Decode == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "push builder decoder")
	}
	return &PushBuilder{
		cfg: cfg,
		wss: ws.New(ctx, cfg.URL),
	}, nil
}

// Start opens the subscription and consumes updates until the context ends.
func (b *PushBuilder) Start(ctx context.Context) error {
	if err := b.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}

	if b.cfg.Subscribe != nil {
		if err := b.cfg.Subscribe(ctx, b.wss); err != nil {
			return errors.Wrap(err, "subscribe")
		}
	}

	ch, cancel := b.wss.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				next, ok := b.cfg.Decode(m, b.latest.Load())
				if !ok {
					continue
				}
				if next.BuiltAtNano == 0 {
					next.BuiltAtNano = time.Now().UTC().UnixNano()
				}
				b.latest.Store(next)
			}
		}
	}()
	return nil
}

func (b *PushBuilder) Close() {
	b.wss.Close()
}

// Build returns the latest cached snapshot. It fails until the first update
// arrives, and when the cache is older than MaxAge.
func (b *PushBuilder) Build(ctx context.Context) (*model.State, error) {
	state := b.latest.Load()
	if state == nil {
		return nil, exception.ErrVenueNoSnapshot
	}
	if b.cfg.MaxAge > 0 {
		age := time.Duration(time.Now().UTC().UnixNano() - state.BuiltAtNano)
		if age > b.cfg.MaxAge {
			logs.Infof("push snapshot is %s old, limit %s", age, b.cfg.MaxAge)
			return nil, errors.Wrapf(exception.ErrVenueStaleSnapshot, "age: %s", age)
		}
	}
	return state, nil
}
