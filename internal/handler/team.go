package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"habitd/internal/model"
	"habitd/internal/store"
	"habitd/internal/websocket"
)

type TeamHandler struct {
	teams    *store.TeamStore
	messages *store.MessageStore
	hub      *websocket.Hub
	logger   *slog.Logger
}

func NewTeamHandler(ts *store.TeamStore, ms *store.MessageStore, hub *websocket.Hub, logger *slog.Logger) *TeamHandler {
	return &TeamHandler{teams: ts, messages: ms, hub: hub, logger: logger}
}

func (h *TeamHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	team, err := h.teams.Create(req.ID, req.Name)
	if err != nil {
		h.logger.Error("create team", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create team")
		return
	}

	writeJSON(w, http.StatusCreated, team)
}

func (h *TeamHandler) List(w http.ResponseWriter, r *http.Request) {
	teams, err := h.teams.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list teams")
		return
	}
	if teams == nil {
		teams = []model.Team{}
	}
	writeJSON(w, http.StatusOK, teams)
}

func (h *TeamHandler) Get(w http.ResponseWriter, r *http.Request) {
	team, err := h.teams.GetByID(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to get team")
		return
	}
	if team == nil {
		writeError(w, http.StatusNotFound, "team not found")
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// Feed returns a team's message feed, newest first. The optional limit
// query parameter caps the result.
func (h *TeamHandler) Feed(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}

	msgs, err := h.messages.ListByTeam(r.PathValue("id"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}
	if msgs == nil {
		msgs = []model.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}

// PostMessage appends a user-authored message to the team feed and
// notifies connected clients.
func (h *TeamHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SenderID string `json:"sender_id"`
		Body     string `json:"body"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}
	if req.SenderID == "" {
		writeError(w, http.StatusBadRequest, "sender_id is required")
		return
	}

	msg, err := h.messages.Append(&model.Message{
		SenderID: req.SenderID,
		TeamID:   r.PathValue("id"),
		Body:     req.Body,
		SentAt:   time.Now().UTC(),
	})
	if err != nil {
		h.logger.Error("append message", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to post message")
		return
	}

	if h.hub != nil {
		h.hub.Broadcast(websocket.Event{
			Type:   websocket.EventMessagePosted,
			TeamID: msg.TeamID,
			Body:   msg.Body,
			SentAt: msg.SentAt,
			Extra:  map[string]any{"sender_id": msg.SenderID},
		})
	}

	writeJSON(w, http.StatusCreated, msg)
}
