package store

import (
	"database/sql"
	"fmt"
	"time"

	"habitd/internal/model"
)

const dateFormat = "2006-01-02"

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

const taskCols = `id, name, description, estimated_minutes, team_id, cycle_kind, due_date, due_time, origin_id, created_at, updated_at`

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	var cycle, dueDate string

	err := scanner.Scan(
		&t.ID, &t.Name, &t.Description, &t.EstimatedMinutes, &t.TeamID,
		&cycle, &dueDate, &t.DueTime, &t.OriginID,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CycleKind = model.ParseCycleKind(cycle)
	t.DueDate, err = time.Parse(dateFormat, dueDate)
	if err != nil {
		return nil, fmt.Errorf("parse due date %q: %w", dueDate, err)
	}
	return &t, nil
}

func (s *TaskStore) Create(t *model.Task) (*model.Task, error) {
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, name, description, estimated_minutes, team_id, cycle_kind, due_date, due_time, origin_id) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Description, t.EstimatedMinutes, t.TeamID,
		string(t.CycleKind), t.DueDate.Format(dateFormat), t.DueTime, t.OriginID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return s.GetByID(t.ID)
}

// Save upserts a task by identifier. The cycle engine uses it to advance a
// task's due date in place.
func (s *TaskStore) Save(t *model.Task) error {
	_, err := s.db.Exec(
		`INSERT INTO tasks (id, name, description, estimated_minutes, team_id, cycle_kind, due_date, due_time, origin_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   description = excluded.description,
		   estimated_minutes = excluded.estimated_minutes,
		   team_id = excluded.team_id,
		   cycle_kind = excluded.cycle_kind,
		   due_date = excluded.due_date,
		   due_time = excluded.due_time,
		   origin_id = excluded.origin_id,
		   updated_at = datetime('now')`,
		t.ID, t.Name, t.Description, t.EstimatedMinutes, t.TeamID,
		string(t.CycleKind), t.DueDate.Format(dateFormat), t.DueTime, t.OriginID,
	)
	if err != nil {
		return fmt.Errorf("save task: %w", err)
	}
	return nil
}

func (s *TaskStore) GetByID(id string) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByTeam(teamID string) ([]model.Task, error) {
	rows, err := s.db.Query(`SELECT `+taskCols+` FROM tasks WHERE team_id = ? ORDER BY due_date ASC, name ASC`, teamID)
	if err != nil {
		return nil, fmt.Errorf("list tasks by team: %w", err)
	}
	defer rows.Close()

	var tasks []model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, *t)
	}
	return tasks, rows.Err()
}

func (s *TaskStore) Delete(id string) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
