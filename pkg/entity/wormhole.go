package entity

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
)

// Wormhole is a circular portal. A ray entering it continues from its
// partner's position in the same direction.
type Wormhole struct {
	Circle
	PartnerID string
	SpinRate  float64 // Radians per second, purely cosmetic
}

// NewWormhole creates a new wormhole linked to partnerID
func NewWormhole(id string, center core.Vec2, radius float64, partnerID string) *Wormhole {
	return &Wormhole{
		Circle:    Circle{Body: Body{id: id, Position: center}, Radius: radius},
		PartnerID: partnerID,
		SpinRate:  math.Pi,
	}
}

func (w *Wormhole) Kind() Kind { return KindWormhole }

// Respond returns a single teleport directive carrying the incident direction
func (w *Wormhole) Respond(in Incident) []Outgoing {
	return []Outgoing{{
		Direction: in.Direction,
		Intensity: 1.0,
		Color:     in.Color,
		Teleport:  true,
		PartnerID: w.PartnerID,
	}}
}

// Update spins the wormhole
func (w *Wormhole) Update(dt float64) {
	w.Angle = math.Mod(w.Angle+w.SpinRate*dt, 2*math.Pi)
}
