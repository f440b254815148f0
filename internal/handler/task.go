package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitd/internal/cycle"
	"habitd/internal/model"
	"habitd/internal/store"
)

type TaskHandler struct {
	tasks    *store.TaskStore
	statuses *store.StatusStore
	users    *store.UserStore
	engine   *cycle.Engine
	logger   *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, ss *store.StatusStore, us *store.UserStore, engine *cycle.Engine, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, statuses: ss, users: us, engine: engine, logger: logger}
}

type taskRequest struct {
	Name             string   `json:"name"`
	Description      string   `json:"description"`
	EstimatedMinutes int      `json:"estimated_minutes"`
	TeamID           string   `json:"team_id"`
	CycleKind        string   `json:"cycle_kind"`
	DueDate          string   `json:"due_date"`
	DueTime          string   `json:"due_time"`
	UserIDs          []string `json:"user_ids"`
}

// Create stores a new task and opens an initial status for each assigned
// user on the task's due date.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.TeamID == "" {
		writeError(w, http.StatusBadRequest, "team_id is required")
		return
	}
	if req.DueTime != "" {
		if _, err := time.Parse("15:04", req.DueTime); err != nil {
			writeError(w, http.StatusBadRequest, "due_time must be HH:MM")
			return
		}
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	dueDate, err := parseDateParam(req.DueDate, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	for _, userID := range req.UserIDs {
		user, err := h.users.GetByID(userID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to check user")
			return
		}
		if user == nil {
			writeError(w, http.StatusBadRequest, "user "+userID+" not found")
			return
		}
	}

	task := &model.Task{
		ID:               uuid.NewString(),
		Name:             req.Name,
		Description:      req.Description,
		EstimatedMinutes: req.EstimatedMinutes,
		TeamID:           req.TeamID,
		CycleKind:        model.ParseCycleKind(req.CycleKind),
		DueDate:          dueDate,
		DueTime:          req.DueTime,
	}
	created, err := h.tasks.Create(task)
	if err != nil {
		h.logger.Error("create task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create task")
		return
	}

	for _, userID := range req.UserIDs {
		st := &model.UserTaskStatus{
			ID:       model.StatusID(created.ID, userID, dueDate),
			UserID:   userID,
			TaskID:   created.ID,
			TeamID:   created.TeamID,
			OriginID: created.ID,
			Date:     dueDate,
		}
		if err := h.statuses.Save(st); err != nil {
			h.logger.Error("open initial status", "task", created.ID, "user", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "failed to open initial status")
			return
		}
	}

	writeJSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) ListByTeam(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListByTeam(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list tasks")
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.tasks.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get task")
		return
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.tasks.Delete(r.PathValue("id")); err != nil {
		h.logger.Error("delete task", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to delete task")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Statuses lists every per-user status recorded for a task.
func (h *TaskHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.statuses.FindByTask(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list statuses")
		return
	}
	if statuses == nil {
		statuses = []model.UserTaskStatus{}
	}
	writeJSON(w, http.StatusOK, statuses)
}

// Complete marks a user's status for the task done. A completion past the
// deadline of a recurring task triggers immediate regeneration of the next
// instance.
func (h *TaskHandler) Complete(w http.ResponseWriter, r *http.Request) {
	var req struct {
		UserID string `json:"user_id"`
		Date   string `json:"date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)
	date, err := parseDateParam(req.Date, today)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	st, err := h.engine.CompleteStatus(req.UserID, r.PathValue("id"), date)
	if err != nil {
		if errors.Is(err, cycle.ErrStatusNotFound) {
			writeError(w, http.StatusNotFound, "status not found")
			return
		}
		h.logger.Error("complete status", "task", r.PathValue("id"), "user", req.UserID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to complete status")
		return
	}

	writeJSON(w, http.StatusOK, st)
}
