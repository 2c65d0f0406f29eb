package server

import (
	"encoding/json"

	"github.com/df07/go-optics-tracer/pkg/entity"
	"github.com/df07/go-optics-tracer/pkg/scene"
)

// Message is the envelope for every websocket message in both directions
type Message struct {
	Type    string          `json:"type"`
	Seq     int64           `json:"seq,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

const (
	// Server to client
	TypeWelcome = "welcome"
	TypeFrame   = "frame"
	TypeConsole = "console"
	TypeSaved   = "level.saved"
	TypeError   = "error"

	// Client to server
	TypeMove   = "entity.move"
	TypeRotate = "entity.rotate"
	TypeToggle = "laser.toggle"
	TypeSave   = "level.save"
)

type WelcomePayload struct {
	SessionID string       `json:"sessionId"`
	Level     *scene.Level `json:"level"`
	TickRate  int          `json:"tickRate"`
}

// FramePayload is one traced frame of a live session
type FramePayload struct {
	Frame    int64               `json:"frame"`
	Entities []entity.Descriptor `json:"entities"`
	TraceResponse
}

// CommandPayload addresses an entity. Move uses X and Y, rotate uses Angle
// in degrees, toggle uses only the id.
type CommandPayload struct {
	ID    string  `json:"id"`
	X     float64 `json:"x,omitempty"`
	Y     float64 `json:"y,omitempty"`
	Angle float64 `json:"angle,omitempty"`
}

type SavePayload struct {
	Name string `json:"name,omitempty"`
}

type SavedPayload struct {
	ID string `json:"id"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
