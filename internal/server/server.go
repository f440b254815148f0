package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"

	"habitd/internal/cycle"
	"habitd/internal/handler"
	"habitd/internal/journal"
	"habitd/internal/middleware"
	"habitd/internal/sabotage"
	"habitd/internal/store"
	ws "habitd/internal/websocket"
)

// Server wires the stores, the cycle engine, and the HTTP surface.
type Server struct {
	db      *sql.DB
	hub     *ws.Hub
	sweeper *cycle.Sweeper
	engine  *cycle.Engine
	teamH   *handler.TeamHandler
	userH   *handler.UserHandler
	taskH   *handler.TaskHandler
	sweepH  *handler.SweepHandler
	logger  *slog.Logger
}

func New(db *sql.DB, journalPath string, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	teamStore := store.NewTeamStore(db)
	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	statusStore := store.NewStatusStore(db)
	messageStore := store.NewMessageStore(db)

	ledger := sabotage.NewLedger(userStore, messageStore, hub, logger.With("component", "sabotage"))
	engine := cycle.NewEngine(taskStore, statusStore, userStore, ledger, logger.With("component", "cycle"))
	sweeper := cycle.NewSweeper(engine, teamStore, journal.New(journalPath), hub, logger.With("component", "sweep"))

	return &Server{
		db:      db,
		hub:     hub,
		sweeper: sweeper,
		engine:  engine,
		teamH:   handler.NewTeamHandler(teamStore, messageStore, hub, logger.With("component", "team")),
		userH:   handler.NewUserHandler(userStore, logger.With("component", "user")),
		taskH:   handler.NewTaskHandler(taskStore, statusStore, userStore, engine, logger.With("component", "task")),
		sweepH:  handler.NewSweepHandler(sweeper, logger.With("component", "sweep_handler")),
		logger:  logger,
	}
}

// Sweeper exposes the sweep runner for the scheduler and startup catch-up.
func (s *Server) Sweeper() *cycle.Sweeper {
	return s.sweeper
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)

	mux.HandleFunc("POST /api/teams", s.teamH.Create)
	mux.HandleFunc("GET /api/teams", s.teamH.List)
	mux.HandleFunc("GET /api/teams/{id}", s.teamH.Get)
	mux.HandleFunc("GET /api/teams/{id}/feed", s.teamH.Feed)
	mux.HandleFunc("POST /api/teams/{id}/messages", s.teamH.PostMessage)
	mux.HandleFunc("GET /api/teams/{id}/tasks", s.taskH.ListByTeam)

	mux.HandleFunc("POST /api/users", s.userH.Create)
	mux.HandleFunc("GET /api/users", s.userH.List)
	mux.HandleFunc("GET /api/users/{id}", s.userH.Get)

	mux.HandleFunc("POST /api/tasks", s.taskH.Create)
	mux.HandleFunc("GET /api/tasks/{id}", s.taskH.Get)
	mux.HandleFunc("DELETE /api/tasks/{id}", s.taskH.Delete)
	mux.HandleFunc("GET /api/tasks/{id}/statuses", s.taskH.Statuses)
	mux.HandleFunc("POST /api/tasks/{id}/complete", s.taskH.Complete)

	mux.HandleFunc("POST /api/sweep/run", s.sweepH.Run)

	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
