package server

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/df07/go-optics-tracer/pkg/scene"
	"github.com/df07/go-optics-tracer/pkg/store"
)

// handleListLevels returns built-in, file and stored levels grouped for the UI
func (s *Server) handleListLevels(w http.ResponseWriter, r *http.Request) {
	stored, err := s.levels.List(r.Context())
	if err != nil {
		slog.Error("list stored levels failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	response, err := scene.ListAllLevels(s.cfg.LevelDir, stored...)
	if err != nil {
		slog.Error("list levels failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, response)
}

func (s *Server) handleGetLevel(w http.ResponseWriter, r *http.Request) {
	level, err := s.loadLevel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleLevelError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, level)
}

// handleCreateLevel validates and stores a level, assigning a new id
func (s *Server) handleCreateLevel(w http.ResponseWriter, r *http.Request) {
	level, err := scene.LoadLevel(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if level.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	// Entities must build before the level is accepted
	if _, err := level.Build(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	level.ID = ""
	saved, err := s.levels.Save(r.Context(), level)
	if err != nil {
		slog.Error("save level failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleDeleteLevel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := scene.Builtin(id); err == nil {
		writeError(w, http.StatusForbidden, "built-in levels cannot be deleted")
		return
	}

	if err := s.levels.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "level not found")
			return
		}
		slog.Error("delete level failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
