// Package cycle implements the recurring-task regeneration engine: the
// nightly evaluation of every team's recurring tasks, the catch-up replay
// of missed days, and the immediate regeneration path used when a task is
// completed after its deadline.
package cycle

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"habitd/internal/model"
)

// ErrStatusNotFound reports a completion attempt against a status that was
// never regenerated for that user, task, and date.
var ErrStatusNotFound = errors.New("status not found")

// TaskStore is the slice of the task repository the engine needs.
type TaskStore interface {
	ListByTeam(teamID string) ([]model.Task, error)
	GetByID(id string) (*model.Task, error)
	Save(t *model.Task) error
}

// StatusStore is the slice of the status repository the engine needs. The
// origin lookup is the idempotency guard: it finds a regenerated instance
// no matter which task in the lineage chain produced it.
type StatusStore interface {
	FindByTaskAndDate(taskID string, date time.Time) ([]model.UserTaskStatus, error)
	FindByUserTaskDate(userID, taskID string, date time.Time) (*model.UserTaskStatus, error)
	FindByUserOriginDate(userID, originID string, date time.Time) (*model.UserTaskStatus, error)
	Save(st *model.UserTaskStatus) error
	SetDone(id string, at time.Time) error
}

// UserStore resolves the user a status belongs to.
type UserStore interface {
	GetByID(id string) (*model.User, error)
}

// Reporter applies the sabotage point delta for one judged status.
type Reporter interface {
	Report(user *model.User, teamID string, task *model.Task, missed bool) error
}

// Engine evaluates one team for one date and regenerates the next cycle's
// task instances. All work within a call is sequential; the sweep layer
// guarantees at most one evaluation is in flight process-wide.
type Engine struct {
	tasks    TaskStore
	statuses StatusStore
	users    UserStore
	ledger   Reporter
	logger   *slog.Logger
	now      func() time.Time
}

func NewEngine(tasks TaskStore, statuses StatusStore, users UserStore, ledger Reporter, logger *slog.Logger) *Engine {
	return &Engine{
		tasks:    tasks,
		statuses: statuses,
		users:    users,
		ledger:   ledger,
		logger:   logger,
		now:      time.Now,
	}
}

// Evaluate judges every recurring task of a team against the day before
// evaluationDate and regenerates open statuses for the next cycle. It
// returns the number of instances regenerated. Re-running for the same
// date is safe: the origin lookup skips statuses that already exist.
func (e *Engine) Evaluate(teamID string, evaluationDate time.Time) (int, error) {
	evaluationDate = startOfDay(evaluationDate)
	refDate := evaluationDate.AddDate(0, 0, -1)

	tasks, err := e.tasks.ListByTeam(teamID)
	if err != nil {
		return 0, fmt.Errorf("list team tasks: %w", err)
	}

	e.logger.Debug("evaluating team",
		"team", teamID, "date", evaluationDate.Format("2006-01-02"), "tasks", len(tasks))

	regenerated := 0
	for i := range tasks {
		task := tasks[i]

		var nextDue time.Time
		switch task.CycleKind {
		case model.CycleDaily:
			nextDue = evaluationDate
		case model.CycleWeekly:
			nextDue = refDate.AddDate(0, 0, 7)
		default:
			continue
		}

		// Advance the task's own forward pointer, independent of per-user
		// status regeneration.
		task.DueDate = nextDue
		if err := e.tasks.Save(&task); err != nil {
			e.logger.Error("advance task due date", "task", task.ID, "error", err)
			continue
		}

		statuses, err := e.statuses.FindByTaskAndDate(task.ID, refDate)
		if err != nil {
			e.logger.Error("find statuses", "task", task.ID, "error", err)
			continue
		}

		origin := task.Origin()
		for _, st := range statuses {
			// The idempotency guard gates the whole per-user step: a rerun
			// for the same date must not re-judge points either.
			existing, err := e.statuses.FindByUserOriginDate(st.UserID, origin, nextDue)
			if err != nil {
				e.logger.Error("idempotency lookup", "user", st.UserID, "origin", origin, "error", err)
				continue
			}
			if existing != nil {
				e.logger.Debug("status already exists, skipping",
					"user", st.UserID, "origin", origin, "date", nextDue.Format("2006-01-02"))
				continue
			}

			e.judge(teamID, &task, &st, refDate)

			if e.insertOpen(teamID, &task, st.UserID, nextDue) {
				regenerated++
			}
		}
	}
	return regenerated, nil
}

// judge applies the sabotage outcome for one status. Failures here are
// per-user: they are logged and never stop the remaining users.
func (e *Engine) judge(teamID string, task *model.Task, st *model.UserTaskStatus, refDate time.Time) {
	user, err := e.users.GetByID(st.UserID)
	if err != nil {
		e.logger.Error("load user", "user", st.UserID, "error", err)
		return
	}
	if user == nil {
		e.logger.Error("user not found", "user", st.UserID)
		return
	}

	missed := !completedOnTime(st, task.DueTime, refDate)
	if err := e.ledger.Report(user, teamID, task, missed); err != nil {
		e.logger.Error("report sabotage outcome", "user", user.ID, "task", task.ID, "error", err)
	}
}

// regenerate inserts a fresh open status at nextDue unless the idempotency
// guard finds one already recorded for this (user, lineage, date).
func (e *Engine) regenerate(teamID string, task *model.Task, userID string, nextDue time.Time) bool {
	origin := task.Origin()

	existing, err := e.statuses.FindByUserOriginDate(userID, origin, nextDue)
	if err != nil {
		e.logger.Error("idempotency lookup", "user", userID, "origin", origin, "error", err)
		return false
	}
	if existing != nil {
		e.logger.Debug("status already exists, skipping",
			"user", userID, "origin", origin, "date", nextDue.Format("2006-01-02"))
		return false
	}

	return e.insertOpen(teamID, task, userID, nextDue)
}

// insertOpen writes the fresh, not-yet-evaluated status for the next cycle.
func (e *Engine) insertOpen(teamID string, task *model.Task, userID string, nextDue time.Time) bool {
	origin := task.Origin()
	st := &model.UserTaskStatus{
		ID:       model.StatusID(origin, userID, nextDue),
		UserID:   userID,
		TaskID:   task.ID,
		TeamID:   teamID,
		OriginID: origin,
		Date:     nextDue,
		Done:     false,
	}
	if err := e.statuses.Save(st); err != nil {
		e.logger.Error("save regenerated status", "user", userID, "task", task.ID, "error", err)
		return false
	}

	e.logger.Info("regenerated status",
		"user", userID, "task", task.ID, "date", nextDue.Format("2006-01-02"))
	return true
}

// CompleteStatus marks an open status done at the current instant. When
// the completion lands past the deadline and the task recurs, the next
// instance is regenerated immediately with a due slot adjusted to stay in
// the future, instead of waiting for the nightly sweep. Already-completed
// statuses are returned untouched.
func (e *Engine) CompleteStatus(userID, taskID string, date time.Time) (*model.UserTaskStatus, error) {
	date = startOfDay(date)

	st, err := e.statuses.FindByUserTaskDate(userID, taskID, date)
	if err != nil {
		return nil, fmt.Errorf("find status: %w", err)
	}
	if st == nil {
		return nil, fmt.Errorf("%w: user %s, task %s on %s", ErrStatusNotFound, userID, taskID, date.Format("2006-01-02"))
	}
	if st.Done {
		return st, nil
	}

	now := e.now()
	if err := e.statuses.SetDone(st.ID, now); err != nil {
		return nil, fmt.Errorf("mark done: %w", err)
	}
	st.Done = true
	st.CompletedAt = &now

	task, err := e.tasks.GetByID(taskID)
	if err != nil || task == nil {
		return st, nil
	}

	if now.After(Deadline(st.Date, task.DueTime)) && task.CycleKind != model.CycleNone {
		e.regenerateLate(st, task, now)
	}
	return st, nil
}

// regenerateLate produces the follow-up instance for a past-deadline
// completion. Best effort: a failure leaves the nightly sweep to pick the
// task up on its next pass.
func (e *Engine) regenerateLate(st *model.UserTaskStatus, task *model.Task, now time.Time) {
	var target time.Time
	switch task.CycleKind {
	case model.CycleDaily:
		target = st.Date.AddDate(0, 0, 1)
	case model.CycleWeekly:
		target = st.Date.AddDate(0, 0, 7)
	default:
		return
	}
	if target.Before(startOfDay(now)) {
		target = startOfDay(now)
	}

	slotDate, slotTime := NextDueSlot(task.DueTime, target, now)

	task.DueDate = slotDate
	task.DueTime = slotTime
	if err := e.tasks.Save(task); err != nil {
		e.logger.Error("advance task after late completion", "task", task.ID, "error", err)
	}

	if e.regenerate(st.TeamID, task, st.UserID, slotDate) {
		e.logger.Info("regenerated after late completion",
			"user", st.UserID, "task", task.ID, "date", slotDate.Format("2006-01-02"), "time", slotTime)
	}
}

func completedOnTime(st *model.UserTaskStatus, dueTime string, refDate time.Time) bool {
	if !st.Done {
		return false
	}
	if st.CompletedAt == nil {
		// Done with no recorded instant: trust the flag.
		return true
	}
	return st.CompletedAt.Before(Deadline(refDate, dueTime))
}
