package ingest

import (
	"context"
	"time"

	"main/internal/model"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
)

// Source is the market data/account client a poll builder fetches from.
// Snapshot may block on network I/O and must be safely callable once per
// pulse.
type Source interface {
	Snapshot(ctx context.Context) (*model.State, error)
}

// Builder hands one immutable model state to each pulse. The pulse uses that
// snapshot for its whole duration; there is no mid-pulse refresh.
type Builder interface {
	Build(ctx context.Context) (*model.State, error)
}

// PollBuilder fetches a fresh snapshot from the source on every pulse.
type PollBuilder struct {
	source Source
}

func NewPollBuilder(source Source) (*PollBuilder, error) {
	if source == nil {
		return nil, errors.Wrap(exception.ErrNilInstance, "poll builder source")
	}
	return &PollBuilder{source: source}, nil
}

func (b *PollBuilder) Build(ctx context.Context) (*model.State, error) {
	state, err := b.source.Snapshot(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "poll snapshot")
	}
	if state.BuiltAtNano == 0 {
		state.BuiltAtNano = time.Now().UTC().UnixNano()
	}
	return state, nil
}
