package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Target is a circular detector. It absorbs rays and remembers the strongest
// hit of the current frame.
type Target struct {
	Circle

	hit          bool
	hitCount     int
	hitIntensity float64
	hitColor     core.Color
}

// NewTarget creates a new target
func NewTarget(id string, center core.Vec2, radius float64) *Target {
	return &Target{Circle: Circle{Body: Body{id: id, Position: center}, Radius: radius}}
}

func (t *Target) Kind() Kind { return KindTarget }

// Respond absorbs the ray. Hits are recorded by the tracer through RecordHit.
func (t *Target) Respond(in Incident) []Outgoing {
	return nil
}

// RecordHit marks the target as lit this frame
func (t *Target) RecordHit(intensity float64, color core.Color) {
	t.hitCount++
	if !t.hit || intensity > t.hitIntensity {
		t.hitIntensity = intensity
		t.hitColor = color.Normalize()
	}
	t.hit = true
}

// IsHit reports whether any ray reached the target since the last reset
func (t *Target) IsHit() bool {
	return t.hit
}

// HitIntensity returns the strongest intensity recorded this frame
func (t *Target) HitIntensity() float64 {
	return t.hitIntensity
}

// HitColor returns the color of the strongest hit this frame
func (t *Target) HitColor() core.Color {
	return t.hitColor
}

// HitCount returns how many rays reached the target this frame
func (t *Target) HitCount() int {
	return t.hitCount
}

// ResetHit clears the frame's hit state
func (t *Target) ResetHit() {
	t.hit = false
	t.hitCount = 0
	t.hitIntensity = 0
	t.hitColor = ""
}
