// Package api exposes the game session and batch runner over HTTP.
// GET endpoints are read-only observation. Mutating endpoints require a
// bearer token when an admin key is configured.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/timberline/internal/config"
	"github.com/talgya/timberline/internal/game"
	"github.com/talgya/timberline/internal/persistence"
	"github.com/talgya/timberline/internal/report"
	"github.com/talgya/timberline/internal/sim"
)

// Server serves one game session and the batch run store over HTTP.
type Server struct {
	Game      *game.Game
	SessionID string
	DB        *persistence.DB // Optional; nil disables run storage and snapshots
	AdminKey  string          // Bearer token for mutating endpoints. Empty = open.

	// Game actions are atomic against a single session; the mux serves
	// concurrently, so serialize here.
	mu sync.Mutex
}

// Handler builds the HTTP handler with all routes wired.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Observation endpoints.
	mux.HandleFunc("GET /api/v1/state", s.handleState)
	mux.HandleFunc("GET /api/v1/runs", s.handleRuns)
	mux.HandleFunc("GET /api/v1/run/{id}", s.handleRunDetail)

	// Session commands.
	mux.HandleFunc("POST /api/v1/harvest", s.guarded(s.handleAction(func(amount float64) (game.Outcome, error) {
		return s.Game.Harvest(amount)
	})))
	mux.HandleFunc("POST /api/v1/transport", s.guarded(s.handleAction(func(amount float64) (game.Outcome, error) {
		return s.Game.Transport(amount)
	})))
	mux.HandleFunc("POST /api/v1/process", s.guarded(s.handleAction(func(amount float64) (game.Outcome, error) {
		return s.Game.Process(amount)
	})))
	mux.HandleFunc("POST /api/v1/sell", s.guarded(s.handleAction(func(amount float64) (game.Outcome, error) {
		return s.Game.Sell(amount)
	})))
	mux.HandleFunc("POST /api/v1/advance", s.guarded(s.handleAdvance))
	mux.HandleFunc("POST /api/v1/restart", s.guarded(s.handleRestart))

	// Batch runner.
	mux.HandleFunc("POST /api/v1/run", s.guarded(s.handleRun))

	return corsMiddleware(mux)
}

// Start serves the API; blocks until the listener fails.
func (s *Server) Start(port int) error {
	addr := fmt.Sprintf(":%d", port)
	slog.Info("HTTP API starting", "addr", addr, "auth", s.AdminKey != "")
	return http.ListenAndServe(addr, s.Handler())
}

// corsMiddleware allows browser frontends to talk to the API.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// guarded requires a bearer token on mutating endpoints when a key is set.
func (s *Server) guarded(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.AdminKey != "" {
			auth := r.Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") || strings.TrimPrefix(auth, "Bearer ") != s.AdminKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

type actionRequest struct {
	Amount float64 `json:"amount"`
}

// actionResponse is the uniform reply for session commands. Refusal is a
// domain outcome, not a transport error: the caller renders the reason.
type actionResponse struct {
	Outcome game.Outcome `json:"outcome"`
	Refusal string       `json:"refusal,omitempty"`
	State   game.State   `json:"state"`
}

func (s *Server) handleAction(act func(float64) (game.Outcome, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req actionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Amount < 0 {
			http.Error(w, "amount must be non-negative", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		out, err := act(req.Amount)
		st := s.Game.State()
		s.mu.Unlock()

		resp := actionResponse{Outcome: out, State: st}
		if err != nil {
			resp.Refusal = err.Error()
		}
		s.snapshot(st)
		writeJSON(w, resp)
	}
}

func (s *Server) handleAdvance(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	err := s.Game.AdvanceTurn()
	st := s.Game.State()
	s.mu.Unlock()

	resp := actionResponse{Outcome: game.Outcome{Action: "advance"}, State: st}
	if err != nil {
		resp.Refusal = err.Error()
	}
	s.snapshot(st)
	writeJSON(w, resp)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.Game.Restart()
	st := s.Game.State()
	s.mu.Unlock()

	s.snapshot(st)
	writeJSON(w, actionResponse{Outcome: game.Outcome{Action: "restart"}, State: st})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	st := s.Game.State()
	target := s.Game.Target()
	s.mu.Unlock()

	writeJSON(w, map[string]any{
		"session_id": s.SessionID,
		"state":      st,
		"target":     target,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run storage disabled", http.StatusServiceUnavailable)
		return
	}

	cfg, err := config.Default()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if err := json.NewDecoder(r.Body).Decode(&cfg.Scenario); err != nil {
		http.Error(w, "invalid scenario body", http.StatusBadRequest)
		return
	}
	if err := cfg.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records := sim.Run(cfg.Scenario)
	summary := report.Summarize(records, cfg.Scenario.InitialForestStock)

	id := uuid.NewString()
	if err := s.DB.SaveRun(id, cfg.Scenario, records); err != nil {
		slog.Error("save run failed", "run_id", id, "error", err)
		http.Error(w, "failed to store run", http.StatusInternalServerError)
		return
	}

	slog.Info("batch run stored", "run_id", id, "periods", len(records))
	writeJSON(w, map[string]any{
		"id":      id,
		"summary": summary,
		"records": records,
	})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run storage disabled", http.StatusServiceUnavailable)
		return
	}

	runs, err := s.DB.ListRuns(50)
	if err != nil {
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{"runs": runs})
}

func (s *Server) handleRunDetail(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		http.Error(w, "run storage disabled", http.StatusServiceUnavailable)
		return
	}

	meta, records, err := s.DB.LoadRun(r.PathValue("id"))
	if errors.Is(err, persistence.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "failed to load run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"run": meta, "records": records})
}

// snapshot persists the session after a mutation so a daemon restart can
// resume mid-game. Best effort: a failed save is logged, not surfaced.
func (s *Server) snapshot(st game.State) {
	if s.DB == nil || s.SessionID == "" {
		return
	}
	if err := s.DB.SaveSession(s.SessionID, st); err != nil {
		slog.Error("session snapshot failed", "session_id", s.SessionID, "error", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write response failed", "error", err)
	}
}
