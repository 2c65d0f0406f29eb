package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/renderer"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
	maxMsgSize = 64 * 1024
)

// Session is one live client editing a level. The Run goroutine owns the
// scene; commands from the client are queued and applied between frames.
type Session struct {
	ID string

	server    *Server
	conn      *websocket.Conn
	level     *scene.Level
	scene     *scene.Scene
	raycaster *renderer.Raycaster
	tick      time.Duration

	commands chan Message
	send     chan []byte
	console  chan ConsoleMessage

	frame     int64
	closeOnce sync.Once
}

func newSession(server *Server, conn *websocket.Conn, level *scene.Level, sceneObj *scene.Scene) *Session {
	session := &Session{
		ID:       uuid.New().String(),
		server:   server,
		conn:     conn,
		level:    level,
		scene:    sceneObj,
		tick:     server.cfg.TickInterval(),
		commands: make(chan Message, 64),
		send:     make(chan []byte, 256),
		console:  make(chan ConsoleMessage, 50),
	}
	config := server.cfg.Tracer().WithSettings(level.Settings)
	session.raycaster = renderer.NewRaycaster(sceneObj, config, NewWebLogger(session.ID, session.console))
	return session
}

// handleSession upgrades the request and runs a live session on the level
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	level, err := s.loadLevel(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		handleLevelError(w, err)
		return
	}
	sceneObj, err := level.Build()
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: s.cfg.Origins(),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	session := newSession(s, conn, level, sceneObj)
	s.register(session)
	defer s.unregister(session)
	slog.Info("session started", "session", session.ID, "level", level.ID)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go session.WritePump(ctx)
	go session.Run(ctx)
	session.ReadPump(ctx)

	slog.Info("session ended", "session", session.ID)
}

// Close ends the session's connection
func (s *Session) Close(reason string) {
	s.closeOnce.Do(func() {
		s.conn.Close(websocket.StatusGoingAway, reason)
	})
}

func (s *Session) ReadPump(ctx context.Context) {
	defer s.Close("")

	s.conn.SetReadLimit(maxMsgSize)

	for {
		_, data, err := s.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure ||
				websocket.CloseStatus(err) == websocket.StatusGoingAway {
				return
			}
			slog.Debug("read error", "error", err, "session", s.ID)
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			slog.Warn("invalid message", "error", err, "session", s.ID)
			continue
		}

		select {
		case s.commands <- msg:
		default:
			slog.Warn("command queue full, dropping message", "session", s.ID, "type", msg.Type)
		}
	}
}

func (s *Session) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		s.Close("")
	}()

	for {
		select {
		case message := <-s.send:
			writeCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Write(writeCtx, websocket.MessageText, message)
			cancel()
			if err != nil {
				slog.Debug("write error", "error", err, "session", s.ID)
				return
			}

		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, writeWait)
			err := s.conn.Ping(pingCtx)
			cancel()
			if err != nil {
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// Run is the frame loop: apply queued commands, advance animations, trace
// and publish the frame
func (s *Session) Run(ctx context.Context) {
	s.Send(TypeWelcome, WelcomePayload{
		SessionID: s.ID,
		Level:     s.level,
		TickRate:  s.server.cfg.TickRate,
	})
	for _, id := range s.scene.DanglingWormholes() {
		s.Send(TypeConsole, ConsoleMessage{
			Message:   fmt.Sprintf("wormhole %q has no partner; rays entering it are dropped", id),
			Timestamp: time.Now(),
			Level:     "warning",
		})
	}

	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()
	last := time.Now()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			s.applyCommands(ctx)
			s.step(dt)
			s.flushConsole()
		}
	}
}

// step advances the scene by dt and publishes a traced frame
func (s *Session) step(dt float64) {
	s.scene.Update(dt)

	startTime := time.Now()
	segments := s.raycaster.TraceAll()
	elapsed := time.Since(startTime)

	s.frame++
	entities := make([]entity.Descriptor, 0, s.scene.Len())
	for _, e := range s.scene.Entities() {
		entities = append(entities, entity.Describe(e))
	}

	s.Send(TypeFrame, FramePayload{
		Frame:         s.frame,
		Entities:      entities,
		TraceResponse: newTraceResponse(s.scene, segments, s.raycaster.Stats(), elapsed),
	})
}

func (s *Session) applyCommands(ctx context.Context) {
	for {
		select {
		case msg := <-s.commands:
			if err := s.apply(ctx, msg); err != nil {
				s.Send(TypeError, ErrorPayload{Message: err.Error()})
			}
		default:
			return
		}
	}
}

func (s *Session) apply(ctx context.Context, msg Message) error {
	switch msg.Type {
	case TypeMove, TypeRotate, TypeToggle:
		var cmd CommandPayload
		if err := json.Unmarshal(msg.Payload, &cmd); err != nil {
			return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
		}
		e, ok := s.scene.Lookup(cmd.ID)
		if !ok {
			return fmt.Errorf("unknown entity %q", cmd.ID)
		}
		return applyCommand(msg.Type, e, cmd)

	case TypeSave:
		var req SavePayload
		if len(msg.Payload) > 0 {
			if err := json.Unmarshal(msg.Payload, &req); err != nil {
				return fmt.Errorf("invalid %s payload: %w", msg.Type, err)
			}
		}
		snapshot := scene.Snapshot(s.scene, "")
		snapshot.Description = s.level.Description
		snapshot.Settings = s.level.Settings
		if req.Name != "" {
			snapshot.Name = req.Name
		}
		saved, err := s.server.levels.Save(ctx, snapshot)
		if err != nil {
			slog.Error("save level failed", "error", err, "session", s.ID)
			return fmt.Errorf("save failed")
		}
		s.Send(TypeSaved, SavedPayload{ID: saved.ID})
		return nil

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

func applyCommand(kind string, e entity.Entity, cmd CommandPayload) error {
	pose := e.Pose()
	switch kind {
	case TypeMove:
		position := core.NewVec2(cmd.X, cmd.Y)
		if !position.IsFinite() {
			return fmt.Errorf("invalid position for %q", cmd.ID)
		}
		pose.Position = position
	case TypeRotate:
		if math.IsNaN(cmd.Angle) || math.IsInf(cmd.Angle, 0) {
			return fmt.Errorf("invalid angle for %q", cmd.ID)
		}
		pose.Angle = cmd.Angle * math.Pi / 180
	case TypeToggle:
		laser, ok := e.(*entity.Laser)
		if !ok {
			return fmt.Errorf("entity %q is not a laser", cmd.ID)
		}
		laser.Active = !laser.Active
	}
	return nil
}

func (s *Session) flushConsole() {
	for {
		select {
		case msg := <-s.console:
			s.Send(TypeConsole, msg)
		default:
			return
		}
	}
}

// Send queues a message for the client, dropping it when the buffer is full
func (s *Session) Send(msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.Error("marshal payload", "error", err, "type", msgType)
		return
	}
	message, err := json.Marshal(Message{Type: msgType, Payload: data})
	if err != nil {
		slog.Error("marshal message", "error", err)
		return
	}

	select {
	case s.send <- message:
	default:
		slog.Warn("session send buffer full, dropping message", "session", s.ID, "type", msgType)
	}
}
