package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Mirror is a rectangle with a specular surface on every face
type Mirror struct {
	Rect
	Reflectivity float64 // Intensity multiplier per bounce
}

// NewMirror creates a new mirror
func NewMirror(id string, center core.Vec2, width, height, angle float64) *Mirror {
	return &Mirror{
		Rect:         Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2},
		Reflectivity: MirrorReflectivity,
	}
}

func (m *Mirror) Kind() Kind { return KindMirror }

// Respond reflects the ray, keeping its color
func (m *Mirror) Respond(in Incident) []Outgoing {
	return []Outgoing{reflected(in, m.Reflectivity, in.Color)}
}
