package pulse

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"main/internal/obs"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yanun0323/errors"
)

func TestSchedulerValidatesTriggers(t *testing.T) {
	_, err := NewScheduler(nil)
	assert.ErrorIs(t, err, exception.ErrInvalidArgument)

	noop := func(ctx context.Context) error { return nil }
	bad := [][]Trigger{
		{{Name: "", Interval: time.Second, Run: noop}},
		{{Name: "x", Interval: 0, Run: noop}},
		{{Name: "x", Interval: time.Second, Run: nil}},
	}
	for _, triggers := range bad {
		_, err := NewScheduler(triggers)
		assert.ErrorIs(t, err, exception.ErrInvalidArgument)
	}
}

func TestSchedulerDrivesTriggers(t *testing.T) {
	var fired atomic.Int64
	s, err := NewScheduler([]Trigger{{
		Name:     "count",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			fired.Add(1)
			return nil
		},
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, fired.Load(), int64(3))
}

func TestSchedulerDropsOverlappingFirings(t *testing.T) {
	var concurrent atomic.Int64
	var peak atomic.Int64
	metrics := obs.NewMetrics()

	s, err := NewScheduler([]Trigger{{
		Name:     "slow",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			now := concurrent.Add(1)
			defer concurrent.Add(-1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(45 * time.Millisecond)
			return nil
		},
	}}, WithMetrics(metrics))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.Equal(t, int64(1), peak.Load(), "the same trigger must never run concurrently")
	assert.Greater(t, metrics.Snapshot().Skipped, uint64(0), "overlapping firings are dropped, not queued")
}

func TestSchedulerIsolatesErrors(t *testing.T) {
	var healthy atomic.Int64
	var notified atomic.Int64
	metrics := obs.NewMetrics()

	s, err := NewScheduler([]Trigger{
		{
			Name:     "failing",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				return errors.New("boom")
			},
		},
		{
			Name:     "healthy",
			Interval: 10 * time.Millisecond,
			Run: func(ctx context.Context) error {
				healthy.Add(1)
				return nil
			},
		},
	},
		WithMetrics(metrics),
		WithErrorHandler(func(trigger string, err error) {
			assert.Equal(t, "failing", trigger)
			notified.Add(1)
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, healthy.Load(), int64(3), "a failing trigger must not starve the others")
	assert.Greater(t, metrics.Snapshot().PulseErrors, uint64(0))
	assert.Greater(t, notified.Load(), int64(0))
}

func TestSchedulerRecoversPanics(t *testing.T) {
	var after atomic.Int64
	metrics := obs.NewMetrics()

	s, err := NewScheduler([]Trigger{{
		Name:     "panicky",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			if after.Add(1) == 1 {
				panic("first firing explodes")
			}
			return nil
		},
	}}, WithMetrics(metrics))
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()
	s.Run(ctx)

	assert.GreaterOrEqual(t, after.Load(), int64(2), "the trigger keeps firing after a panic")
	assert.Greater(t, metrics.Snapshot().PulseErrors, uint64(0))
}

func TestSchedulerWaitsForInflightPulse(t *testing.T) {
	finished := make(chan struct{})
	s, err := NewScheduler([]Trigger{{
		Name:     "long",
		Interval: 10 * time.Millisecond,
		Run: func(ctx context.Context) error {
			time.Sleep(60 * time.Millisecond)
			close(finished)
			return nil
		},
	}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	s.Run(ctx)

	select {
	case <-finished:
	default:
		t.Fatal("Run returned while a pulse was still in flight")
	}
}
