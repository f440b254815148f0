package store

import (
	"database/sql"
	"fmt"
	"time"

	"habitd/internal/model"
)

type StatusStore struct {
	db *sql.DB
}

func NewStatusStore(db *sql.DB) *StatusStore {
	return &StatusStore{db: db}
}

const statusCols = `id, user_id, task_id, team_id, origin_id, date, done, completed_at`

func scanStatus(scanner interface{ Scan(...any) error }) (*model.UserTaskStatus, error) {
	var st model.UserTaskStatus
	var date string
	var completedAt sql.NullTime

	err := scanner.Scan(
		&st.ID, &st.UserID, &st.TaskID, &st.TeamID, &st.OriginID,
		&date, &st.Done, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	st.Date, err = time.Parse(dateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("parse status date %q: %w", date, err)
	}
	if completedAt.Valid {
		t := completedAt.Time
		st.CompletedAt = &t
	}
	return &st, nil
}

// Save inserts a status row. The (user, task, date) identity is guarded by
// a unique index; callers check for an existing row first.
func (s *StatusStore) Save(st *model.UserTaskStatus) error {
	var completedAt any
	if st.CompletedAt != nil {
		completedAt = st.CompletedAt.UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO user_task_statuses (id, user_id, task_id, team_id, origin_id, date, done, completed_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		st.ID, st.UserID, st.TaskID, st.TeamID, st.OriginID,
		st.Date.Format(dateFormat), st.Done, completedAt,
	)
	if err != nil {
		return fmt.Errorf("insert status: %w", err)
	}
	return nil
}

// SetDone marks a status completed at the given instant. It never clears a
// completion; evaluated rows are append-only from the engine's view.
func (s *StatusStore) SetDone(id string, at time.Time) error {
	_, err := s.db.Exec(
		`UPDATE user_task_statuses SET done = 1, completed_at = ? WHERE id = ?`,
		at.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("set done: %w", err)
	}
	return nil
}

func (s *StatusStore) FindByTaskAndDate(taskID string, date time.Time) ([]model.UserTaskStatus, error) {
	rows, err := s.db.Query(
		`SELECT `+statusCols+` FROM user_task_statuses WHERE task_id = ? AND date = ? ORDER BY user_id ASC`,
		taskID, date.Format(dateFormat),
	)
	if err != nil {
		return nil, fmt.Errorf("find statuses by task and date: %w", err)
	}
	defer rows.Close()

	var statuses []model.UserTaskStatus
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

func (s *StatusStore) FindByTask(taskID string) ([]model.UserTaskStatus, error) {
	rows, err := s.db.Query(
		`SELECT `+statusCols+` FROM user_task_statuses WHERE task_id = ? ORDER BY date ASC, user_id ASC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("find statuses by task: %w", err)
	}
	defer rows.Close()

	var statuses []model.UserTaskStatus
	for rows.Next() {
		st, err := scanStatus(rows)
		if err != nil {
			return nil, fmt.Errorf("scan status: %w", err)
		}
		statuses = append(statuses, *st)
	}
	return statuses, rows.Err()
}

func (s *StatusStore) FindByUserTaskDate(userID, taskID string, date time.Time) (*model.UserTaskStatus, error) {
	row := s.db.QueryRow(
		`SELECT `+statusCols+` FROM user_task_statuses WHERE user_id = ? AND task_id = ? AND date = ?`,
		userID, taskID, date.Format(dateFormat),
	)
	st, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find status: %w", err)
	}
	return st, nil
}

// FindByUserOriginDate looks a status up by lineage rather than by concrete
// task, so a regenerated instance is found no matter which task in the
// chain produced it.
func (s *StatusStore) FindByUserOriginDate(userID, originID string, date time.Time) (*model.UserTaskStatus, error) {
	row := s.db.QueryRow(
		`SELECT `+statusCols+` FROM user_task_statuses WHERE user_id = ? AND origin_id = ? AND date = ?`,
		userID, originID, date.Format(dateFormat),
	)
	st, err := scanStatus(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find status by origin: %w", err)
	}
	return st, nil
}
