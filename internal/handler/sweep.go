package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"habitd/internal/cycle"
)

// SweepRunner triggers a full evaluation pass across all teams.
type SweepRunner interface {
	Run() (cycle.Result, error)
	RunForDate(date time.Time) (cycle.Result, error)
}

type SweepHandler struct {
	sweeper SweepRunner
	logger  *slog.Logger
}

func NewSweepHandler(sweeper SweepRunner, logger *slog.Logger) *SweepHandler {
	return &SweepHandler{sweeper: sweeper, logger: logger}
}

// Run triggers a sweep for today, or for the date query parameter when
// present. A sweep already in flight yields 409; the request is dropped,
// not queued.
func (h *SweepHandler) Run(w http.ResponseWriter, r *http.Request) {
	var (
		res cycle.Result
		err error
	)
	if v := r.URL.Query().Get("date"); v != "" {
		var date time.Time
		date, err = parseDateParam(v, time.Time{})
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		res, err = h.sweeper.RunForDate(date)
	} else {
		res, err = h.sweeper.Run()
	}

	if errors.Is(err, cycle.ErrSweepRunning) {
		writeError(w, http.StatusConflict, "sweep already running")
		return
	}
	if err != nil {
		h.logger.Error("manual sweep", "error", err)
		writeError(w, http.StatusInternalServerError, "sweep failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"teams_processed": res.TeamsProcessed,
		"regenerated":     res.Regenerated,
	})
}
