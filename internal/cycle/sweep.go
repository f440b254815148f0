package cycle

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"habitd/internal/websocket"
)

// ErrSweepRunning reports that a sweep was requested while another was in
// flight. The request is dropped, not queued.
var ErrSweepRunning = errors.New("sweep already running")

// TeamDirectory lists the teams a sweep iterates over.
type TeamDirectory interface {
	ListIDs() ([]string, error)
}

// RunJournal is the single-slot record of the last successful sweep date.
type RunJournal interface {
	LastRun() (*time.Time, error)
	Record(date time.Time) error
}

// Evaluator runs one team's evaluation for one date.
type Evaluator interface {
	Evaluate(teamID string, date time.Time) (int, error)
}

// Result tallies one full sweep across all teams.
type Result struct {
	TeamsProcessed int
	Regenerated    int
}

// Sweeper runs the cycle engine across every known team for a date,
// enforcing the at-most-one-concurrent-run policy with a compare-and-swap
// guard. Per-team failures are logged and do not stop the remaining teams.
type Sweeper struct {
	engine  Evaluator
	teams   TeamDirectory
	journal RunJournal
	hub     *websocket.Hub
	logger  *slog.Logger
	running atomic.Bool
	now     func() time.Time
}

func NewSweeper(engine Evaluator, teams TeamDirectory, journal RunJournal, hub *websocket.Hub, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		engine:  engine,
		teams:   teams,
		journal: journal,
		hub:     hub,
		logger:  logger,
		now:     time.Now,
	}
}

// Run sweeps all teams for today.
func (s *Sweeper) Run() (Result, error) {
	return s.RunForDate(s.now().UTC())
}

// RunForDate sweeps all teams for the given evaluation date. The journal
// is written only after the full pass; a journal write failure is logged
// but does not fail the sweep, since re-running a day is idempotent.
func (s *Sweeper) RunForDate(date time.Time) (Result, error) {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("sweep already running, dropping request")
		return Result{}, ErrSweepRunning
	}
	defer s.running.Store(false)

	date = startOfDay(date)
	start := s.now()

	ids, err := s.teams.ListIDs()
	if err != nil {
		return Result{}, fmt.Errorf("list teams: %w", err)
	}

	s.logger.Info("sweep started", "date", date.Format("2006-01-02"), "teams", len(ids))

	var res Result
	for _, teamID := range ids {
		n, err := s.engine.Evaluate(teamID, date)
		if err != nil {
			s.logger.Error("team evaluation failed", "team", teamID, "error", err)
			continue
		}
		res.TeamsProcessed++
		res.Regenerated += n
	}

	if err := s.journal.Record(date); err != nil {
		s.logger.Error("record sweep journal", "error", err)
	}

	s.logger.Info("sweep complete",
		"date", date.Format("2006-01-02"),
		"teams", res.TeamsProcessed,
		"regenerated", res.Regenerated,
		"elapsed", s.now().Sub(start))

	if s.hub != nil {
		s.hub.Broadcast(websocket.Event{
			Type:   websocket.EventSweepCompleted,
			SentAt: s.now(),
			Extra: map[string]any{
				"date":        date.Format("2006-01-02"),
				"teams":       res.TeamsProcessed,
				"regenerated": res.Regenerated,
			},
		})
	}
	return res, nil
}
