package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Splitter is a half-silvered rectangle: every hit yields a reflected ray and
// a transmitted ray of equal strength
type Splitter struct {
	Rect
}

// NewSplitter creates a new beam splitter
func NewSplitter(id string, center core.Vec2, width, height, angle float64) *Splitter {
	return &Splitter{Rect: Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2}}
}

func (s *Splitter) Kind() Kind { return KindSplitter }

// Respond returns the reflected ray followed by the straight-through ray
func (s *Splitter) Respond(in Incident) []Outgoing {
	transmitted := Outgoing{
		Origin:    transmitThrough(s, in.Hit.Point, in.Direction),
		Direction: in.Direction,
		Intensity: SplitRatio,
		Color:     in.Color,
	}
	return []Outgoing{reflected(in, SplitRatio, in.Color), transmitted}
}
