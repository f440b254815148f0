// Package scheduler drives the nightly sweep: a single background timer
// aligned to midnight UTC that triggers the cycle sweeper once per day.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"habitd/internal/cycle"
)

// Sweeper is the guarded all-teams runner the scheduler ticks.
type Sweeper interface {
	Run() (cycle.Result, error)
}

// Scheduler owns the tick loop. Overlap protection lives in the sweeper's
// compare-and-swap guard; a tick that lands mid-sweep is simply dropped.
type Scheduler struct {
	mu      sync.RWMutex
	sweeper Sweeper
	logger  *slog.Logger
	cancel  context.CancelFunc
	done    chan struct{}

	// grace bounds how long Stop waits for an in-flight sweep before
	// abandoning it. Partial writes are safe to abandon: re-running a day
	// is idempotent.
	grace time.Duration

	// untilNext returns the wait before the next tick; overridable in
	// tests. The default aligns to the next midnight UTC.
	untilNext func(now time.Time) time.Duration
	now       func() time.Time
}

const defaultStopGrace = 60 * time.Second

func New(sweeper Sweeper, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		sweeper:   sweeper,
		logger:    logger,
		grace:     defaultStopGrace,
		untilNext: untilNextMidnight,
		now:       time.Now,
	}
}

func untilNextMidnight(now time.Time) time.Duration {
	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, 1)
	return next.Sub(now)
}

// Start begins the tick loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	s.logger.Info("scheduler started", "first_tick_in", s.untilNext(s.now()))

	go func() {
		defer close(s.done)
		for {
			timer := time.NewTimer(s.untilNext(s.now()))
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
				s.tick()
			}
		}
	}()
}

// Grace overrides how long Stop waits for an in-flight sweep.
func (s *Scheduler) Grace(d time.Duration) {
	if d > 0 {
		s.grace = d
	}
}

// Stop ceases ticking and grants an in-flight sweep a bounded grace period
// to finish before abandoning it.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done == nil {
		return
	}

	select {
	case <-done:
		s.logger.Info("scheduler stopped")
	case <-time.After(s.grace):
		s.logger.Warn("scheduler stop grace elapsed, abandoning in-flight sweep")
	}
}

// RunNow triggers a sweep outside the schedule, for operational tooling.
// It reports whether the sweep ran or was dropped against one in flight.
func (s *Scheduler) RunNow() (cycle.Result, error) {
	return s.sweeper.Run()
}

func (s *Scheduler) tick() {
	start := s.now()
	s.logger.Info("scheduled sweep tick", "at", start)

	res, err := s.sweeper.Run()
	if errors.Is(err, cycle.ErrSweepRunning) {
		s.logger.Info("tick dropped, sweep in flight")
		return
	}
	if err != nil {
		// Never fatal: the next tick is the retry mechanism.
		s.logger.Error("scheduled sweep failed", "error", err)
		return
	}

	s.logger.Info("scheduled sweep finished",
		"teams", res.TeamsProcessed,
		"regenerated", res.Regenerated,
		"elapsed", s.now().Sub(start))
}
