package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Filter is a colored pane. It tints white light to its color, passes light
// already of its color, and absorbs everything else.
type Filter struct {
	Rect
	PassColor    core.Color
	Transmission float64
}

// NewFilter creates a new color filter
func NewFilter(id string, center core.Vec2, width, height, angle float64, passColor core.Color) *Filter {
	return &Filter{
		Rect:         Rect{Body: Body{id: id, Position: center, Angle: angle}, HalfWidth: width / 2, HalfHeight: height / 2},
		PassColor:    passColor.Normalize(),
		Transmission: FilterTransmission,
	}
}

func (f *Filter) Kind() Kind { return KindFilter }

// Passes reports whether a ray of the given color gets through.
// Tags must match exactly (ignoring case); white always passes.
func (f *Filter) Passes(color core.Color) bool {
	return color.IsWhite() || color.Matches(f.PassColor)
}

// Respond transmits matching light through the pane
func (f *Filter) Respond(in Incident) []Outgoing {
	if !f.Passes(in.Color) {
		return nil
	}
	return []Outgoing{{
		Origin:    transmitThrough(f, in.Hit.Point, in.Direction),
		Direction: in.Direction,
		Intensity: f.Transmission,
		Color:     f.PassColor,
	}}
}
