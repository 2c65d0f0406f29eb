package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Wall is an opaque rectangle that absorbs every ray
type Wall struct {
	Rect
}

// NewWall creates a new wall
func NewWall(id string, center core.Vec2, width, height, angle float64) *Wall {
	return &Wall{Rect: Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2}}
}

func (w *Wall) Kind() Kind { return KindWall }

// Respond absorbs the ray
func (w *Wall) Respond(in Incident) []Outgoing {
	return nil
}
