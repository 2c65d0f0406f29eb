package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Lens is a rectangular block of refracting material
type Lens struct {
	Rect
	RefractiveIndex float64 // Index of refraction (e.g., 1.5 for glass)
}

// NewLens creates a new lens
func NewLens(id string, center core.Vec2, width, height, angle, refractiveIndex float64) *Lens {
	return &Lens{
		Rect:            Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2},
		RefractiveIndex: refractiveIndex,
	}
}

func (l *Lens) Kind() Kind { return KindLens }

// Respond refracts the ray into or out of the block
func (l *Lens) Respond(in Incident) []Outgoing {
	// Determine if we're entering or exiting the material
	n1, n2 := AirIndex, l.RefractiveIndex
	if exiting(l, in) {
		n1, n2 = n2, n1
	}
	return []Outgoing{refracted(in, n1, n2, in.Color)}
}
