package entity

import "github.com/df07/go-optics-tracer/pkg/core"

// Prism is an equilateral triangle of dispersive glass. White light entering
// it separates into red, green and blue rays.
type Prism struct {
	Triangle
	RefractiveIndex float64 // Index for green light
	Dispersion      float64 // Index spread between green and red/blue
}

// NewPrism creates a new prism
func NewPrism(id string, center core.Vec2, side, angle, refractiveIndex float64) *Prism {
	return &Prism{
		Triangle:        Triangle{Body: Body{id: id, Position: center, Angle: angle}, Side: side},
		RefractiveIndex: refractiveIndex,
		Dispersion:      PrismDispersion,
	}
}

func (p *Prism) Kind() Kind { return KindPrism }

// IndexFor returns the refractive index seen by a ray of the given color.
// Non-spectral colors see the base index.
func (p *Prism) IndexFor(color core.Color) float64 {
	switch color.Normalize() {
	case core.ColorRed:
		return p.RefractiveIndex - p.Dispersion
	case core.ColorBlue:
		return p.RefractiveIndex + p.Dispersion
	}
	return p.RefractiveIndex
}

// spectrum is the order white light is split into
var spectrum = [...]core.Color{core.ColorRed, core.ColorGreen, core.ColorBlue}

// Respond refracts the ray, splitting white light into three colored rays
func (p *Prism) Respond(in Incident) []Outgoing {
	leaving := exiting(p, in)

	refract := func(color core.Color) Outgoing {
		n1, n2 := AirIndex, p.IndexFor(color)
		if leaving {
			n1, n2 = n2, n1
		}
		return refracted(in, n1, n2, color)
	}

	if !in.Color.IsWhite() {
		return []Outgoing{refract(in.Color)}
	}

	out := make([]Outgoing, 0, len(spectrum))
	for _, color := range spectrum {
		out = append(out, refract(color))
	}
	return out
}
