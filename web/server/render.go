package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// Limits accepted from clients on one-shot traces
const (
	maxRequestBounces = scene.MaxBounceLimit
	maxImageSize      = 2000
)

// TraceRequest is a one-shot trace of a level
type TraceRequest struct {
	Level  json.RawMessage  `json:"level"`
	Config *renderer.Config `json:"config,omitempty"` // Optional override of the server limits
}

// TargetState reports one detector after a trace
type TargetState struct {
	ID        string     `json:"id"`
	Hit       bool       `json:"hit"`
	Intensity float64    `json:"intensity"`
	Color     core.Color `json:"color,omitempty"`
}

// TraceResponse is the result of tracing a level once
type TraceResponse struct {
	Segments     []renderer.Segment `json:"segments"`
	Targets      []TargetState      `json:"targets"`
	TargetsHit   int                `json:"targetsHit"`
	TargetsTotal int                `json:"targetsTotal"`
	Complete     bool               `json:"complete"`
	Stats        renderer.Stats     `json:"stats"`
	ElapsedMs    int64              `json:"elapsedMs"`
}

// tracerConfig layers the level settings and an optional client override on
// top of the server limits
func (s *Server) tracerConfig(settings scene.Settings, override *renderer.Config) (renderer.Config, error) {
	config := s.cfg.Tracer().WithSettings(settings)
	if override == nil {
		return config, nil
	}
	if override.MaxBounces < 0 || override.MaxBounces > maxRequestBounces {
		return config, fmt.Errorf("maxBounces must be between 0 and %d", maxRequestBounces)
	}
	if override.MinIntensity < 0 || override.MinIntensity > 1 ||
		(override.MinIntensity != 0 && override.MinIntensity < scene.MinIntensityFloor) {
		return config, fmt.Errorf("minIntensity must be 0 (default) or between %v and 1", scene.MinIntensityFloor)
	}
	if override.EscapeDistance < 0 {
		return config, fmt.Errorf("escapeDistance must not be negative")
	}
	return config.WithSettings(scene.Settings{
		MaxBounces:     override.MaxBounces,
		MinIntensity:   override.MinIntensity,
		EscapeDistance: override.EscapeDistance,
	}), nil
}

// handleTrace builds the posted level and traces it once
func (s *Server) handleTrace(w http.ResponseWriter, r *http.Request) {
	var req TraceRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if len(req.Level) == 0 {
		writeError(w, http.StatusBadRequest, "level is required")
		return
	}

	level, err := scene.LoadLevel(bytes.NewReader(req.Level))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	sceneObj, err := level.Build()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	config, err := s.tracerConfig(level.Settings, req.Config)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	startTime := time.Now()
	raycaster := renderer.NewRaycaster(sceneObj, config, newRequestLogger(r))
	segments := raycaster.TraceAll()

	writeJSON(w, http.StatusOK, newTraceResponse(sceneObj, segments, raycaster.Stats(), time.Since(startTime)))
}

func newTraceResponse(s *scene.Scene, segments []renderer.Segment, stats renderer.Stats, elapsed time.Duration) TraceResponse {
	hit, total := s.TargetsHit()
	return TraceResponse{
		Segments:     segments,
		Targets:      targetStates(s),
		TargetsHit:   hit,
		TargetsTotal: total,
		Complete:     s.Complete(),
		Stats:        stats,
		ElapsedMs:    elapsed.Milliseconds(),
	}
}

func targetStates(s *scene.Scene) []TargetState {
	states := make([]TargetState, 0, len(s.Targets()))
	for _, detector := range s.Targets() {
		state := TargetState{ID: detector.ID(), Hit: detector.IsHit()}
		if target, ok := detector.(*entity.Target); ok && target.IsHit() {
			state.Intensity = target.HitIntensity()
			state.Color = target.HitColor()
		}
		states = append(states, state)
	}
	return states
}

// handleRenderImage traces a level and returns it as a PNG
func (s *Server) handleRenderImage(w http.ResponseWriter, r *http.Request) {
	level, err := s.loadLevel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleLevelError(w, err)
		return
	}

	opts := renderer.DefaultImageOptions()
	if opts.Width, err = parseIntParam(r.URL.Query(), "width", opts.Width, 16, maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if opts.Height, err = parseIntParam(r.URL.Query(), "height", opts.Height, 16, maxImageSize); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	sceneObj, err := level.Build()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	raycaster := renderer.NewRaycaster(sceneObj, s.cfg.Tracer().WithSettings(level.Settings), newRequestLogger(r))
	img := renderer.RenderImage(raycaster.TraceAll(), sceneObj, opts)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to encode image")
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}
