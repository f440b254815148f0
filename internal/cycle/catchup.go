package cycle

import (
	"errors"
	"time"
)

// CatchUp replays the sweep once for every calendar day missed while the
// process was down: each date strictly after the journaled last run,
// through today, in ascending order. Later dates assume earlier ones are
// settled, so the replays are strictly sequential. With no journal the
// last run is assumed to be yesterday, which still settles today.
func (s *Sweeper) CatchUp() {
	today := startOfDay(s.now().UTC())

	last, err := s.journal.LastRun()
	if err != nil {
		s.logger.Error("read sweep journal", "error", err)
		last = nil
	}

	from := today.AddDate(0, 0, -1)
	if last != nil {
		from = startOfDay(*last)
	}

	var missed []time.Time
	for d := from.AddDate(0, 0, 1); !d.After(today); d = d.AddDate(0, 0, 1) {
		missed = append(missed, d)
	}
	if len(missed) == 0 {
		s.logger.Info("catch-up: nothing missed")
		return
	}

	s.logger.Info("catch-up started", "days", len(missed))
	for _, d := range missed {
		if _, err := s.RunForDate(d); err != nil && !errors.Is(err, ErrSweepRunning) {
			s.logger.Error("catch-up sweep failed", "date", d.Format("2006-01-02"), "error", err)
		}
	}
	s.logger.Info("catch-up finished")
}
