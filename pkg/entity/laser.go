package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Laser is an emitter. Its housing is an opaque rectangle and its beam leaves
// the front face along Angle.
type Laser struct {
	Rect
	Intensity float64    // Starting intensity, at most 1
	Color     core.Color // White beams disperse in prisms
	Active    bool
}

// NewLaser creates a new active white laser at full intensity
func NewLaser(id string, center core.Vec2, width, height, angle float64) *Laser {
	return &Laser{
		Rect:      Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2},
		Intensity: 1.0,
		Color:     core.ColorWhite,
		Active:    true,
	}
}

func (l *Laser) Kind() Kind { return KindLaser }

// Respond absorbs rays striking the housing
func (l *Laser) Respond(in Incident) []Outgoing {
	return nil
}

// Emission returns the beam's starting ray, just in front of the housing
func (l *Laser) Emission() core.Ray {
	direction := core.FromAngle(l.Angle)
	return core.NewRay(l.Position.Add(direction.Multiply(l.HalfWidth+OffsetDistance)), direction)
}

func (l *Laser) BeamIntensity() float64 { return l.Intensity }

func (l *Laser) BeamColor() core.Color { return l.Color }

func (l *Laser) IsActive() bool { return l.Active }
