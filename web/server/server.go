package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"

	"github.com/df07/go-optics-tracer/pkg/config"
	"github.com/df07/go-optics-tracer/pkg/scene"
	"github.com/df07/go-optics-tracer/pkg/store"
)

const maxBodySize = 1 << 20

// Server handles web requests for the optics tracer
type Server struct {
	cfg    *config.Config
	levels store.LevelStore
	router *mux.Router

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, levels store.LevelStore) *Server {
	s := &Server{
		cfg:      cfg,
		levels:   levels,
		sessions: make(map[string]*Session),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(Recovery)
	r.Use(Logger)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/levels", s.handleListLevels).Methods("GET")
	api.HandleFunc("/levels", s.handleCreateLevel).Methods("POST")
	api.HandleFunc("/levels/{id}", s.handleGetLevel).Methods("GET")
	api.HandleFunc("/levels/{id}", s.handleDeleteLevel).Methods("DELETE")
	api.HandleFunc("/levels/{id}/image", s.handleRenderImage).Methods("GET")
	api.HandleFunc("/levels/{id}/inspect", s.handleInspect).Methods("GET")
	api.HandleFunc("/trace", s.handleTrace).Methods("POST")

	r.HandleFunc("/ws/levels/{id}", s.handleSession)

	// Static viewer, when present
	r.PathPrefix("/").Handler(http.FileServer(http.Dir("static/")))
	return r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Shutdown closes every live session
func (s *Server) Shutdown() {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for _, session := range s.sessions {
		sessions = append(sessions, session)
	}
	s.mu.Unlock()

	for _, session := range sessions {
		session.Close("server shutting down")
	}
}

func (s *Server) register(session *Session) {
	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()
}

func (s *Server) unregister(session *Session) {
	s.mu.Lock()
	delete(s.sessions, session.ID)
	s.mu.Unlock()
}

// SessionCount returns the number of live sessions
func (s *Server) SessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":   "ok",
		"sessions": s.SessionCount(),
	})
}

// loadLevel resolves a level id: built-in name, "file:<name>" in the level
// directory, or a stored level id
func (s *Server) loadLevel(ctx context.Context, id string) (*scene.Level, error) {
	if level, err := scene.Builtin(id); err == nil {
		return level, nil
	}

	if name, ok := strings.CutPrefix(id, "file:"); ok {
		if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
			return nil, store.ErrNotFound
		}
		path := filepath.Join(s.cfg.LevelDir, name+".json")
		level, err := scene.LoadLevelFile(path)
		if errors.Is(err, os.ErrNotExist) {
			return nil, store.ErrNotFound
		}
		if err != nil {
			return nil, err
		}
		level.ID = id
		return level, nil
	}

	return s.levels.Get(ctx, id)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleLevelError maps level lookup failures onto HTTP statuses
func handleLevelError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "level not found")
	case errors.Is(err, scene.ErrInvalidLevel):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.Error("level lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %g and %g, got: %g", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}
