package model

import "time"

// CycleKind is the recurrence category of a task. Anything other than
// daily or weekly behaves as no recurrence.
type CycleKind string

const (
	CycleNone   CycleKind = "none"
	CycleDaily  CycleKind = "daily"
	CycleWeekly CycleKind = "weekly"
)

// ParseCycleKind normalizes a stored cycle string. Unknown values map to
// CycleNone rather than an error.
func ParseCycleKind(s string) CycleKind {
	switch CycleKind(s) {
	case CycleDaily:
		return CycleDaily
	case CycleWeekly:
		return CycleWeekly
	default:
		return CycleNone
	}
}

type Task struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Description      string    `json:"description"`
	EstimatedMinutes int       `json:"estimated_minutes"`
	TeamID           string    `json:"team_id"`
	CycleKind        CycleKind `json:"cycle_kind"`
	DueDate          time.Time `json:"due_date"`
	DueTime          string    `json:"due_time,omitempty"` // "15:04" wall clock, empty when unset
	OriginID         string    `json:"origin_id,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Origin returns the lineage identifier linking regenerated instances of
// this task to their common origin: the task's own ID for originals.
func (t Task) Origin() string {
	if t.OriginID != "" {
		return t.OriginID
	}
	return t.ID
}

// UserTaskStatus is one user's completion state for one task on one date.
// At most one row may exist per (user, task, date).
type UserTaskStatus struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id"`
	TaskID      string     `json:"task_id"`
	TeamID      string     `json:"team_id"`
	OriginID    string     `json:"origin_id"`
	Date        time.Time  `json:"date"`
	Done        bool       `json:"done"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// StatusID derives the identifier for a regenerated status. It is a pure
// function of (origin, user, date) so replaying an evaluation produces the
// same row instead of a duplicate.
func StatusID(originID, userID string, date time.Time) string {
	return originID + "-" + userID + "-" + date.Format("2006-01-02")
}
