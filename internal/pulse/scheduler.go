package pulse

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"main/internal/obs"
	"main/pkg/exception"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

// Trigger is one independently-timed periodic task.
type Trigger struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler drives its triggers on independent timers. When a trigger fires
// while its previous invocation is still running, the firing is dropped, not
// queued: the same pulse never runs twice concurrently. Errors and panics
// inside a pulse are caught and logged; they never stop the scheduler.
type Scheduler struct {
	triggers []Trigger
	metrics  *obs.Metrics
	onError  func(trigger string, err error)
}

type Option func(*Scheduler)

func WithMetrics(metrics *obs.Metrics) Option {
	return func(s *Scheduler) { s.metrics = metrics }
}

// WithErrorHandler forwards pulse errors, e.g. to a notification channel.
func WithErrorHandler(handler func(trigger string, err error)) Option {
	return func(s *Scheduler) { s.onError = handler }
}

func NewScheduler(triggers []Trigger, opts ...Option) (*Scheduler, error) {
	if len(triggers) == 0 {
		return nil, errors.Wrap(exception.ErrInvalidArgument, "scheduler has no triggers")
	}
	for _, trigger := range triggers {
		if trigger.Name == "" || trigger.Interval <= 0 || trigger.Run == nil {
			return nil, errors.Wrapf(exception.ErrInvalidArgument, "trigger %q is incomplete", trigger.Name)
		}
	}

	s := &Scheduler{triggers: triggers}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Run blocks until the context ends, then waits for in-flight pulses to
// finish. In-flight work is allowed to complete so a half-submitted batch
// never leaves orphaned resting orders.
func (s *Scheduler) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := range s.triggers {
		wg.Add(1)
		go func(trigger Trigger) {
			defer wg.Done()
			s.drive(ctx, trigger)
		}(s.triggers[i])
	}
	wg.Wait()
}

func (s *Scheduler) drive(ctx context.Context, trigger Trigger) {
	ticker := time.NewTicker(trigger.Interval)
	defer ticker.Stop()

	var running atomic.Bool
	var inflight sync.WaitGroup
	defer inflight.Wait()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !running.CompareAndSwap(false, true) {
				if s.metrics != nil {
					s.metrics.IncSkipped()
				}
				logs.Infof("trigger %s still running, firing dropped", trigger.Name)
				continue
			}

			inflight.Add(1)
			go func() {
				defer inflight.Done()
				defer running.Store(false)
				s.runOnce(ctx, trigger)
			}()
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context, trigger Trigger) {
	defer func() {
		if r := recover(); r != nil {
			logs.Errorf("trigger %s panicked: %+v", trigger.Name, r)
			if s.metrics != nil {
				s.metrics.IncPulseError()
			}
		}
	}()

	if err := trigger.Run(ctx); err != nil {
		logs.Errorf("trigger %s failed: %+v", trigger.Name, err)
		if s.metrics != nil {
			s.metrics.IncPulseError()
		}
		if s.onError != nil {
			s.onError(trigger.Name, err)
		}
	}
}
