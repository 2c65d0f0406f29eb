package core

import (
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Reflect calculates the reflection of incident off a surface with unit normal
func Reflect(incident, normal Vec2) Vec2 {
	// r = v - 2*dot(v,n)*n
	return incident.Subtract(normal.Multiply(2 * incident.Dot(normal)))
}

// Refract bends a unit incident direction through a surface using Snell's law.
// The normal must oppose the incident direction. n1 is the index the ray is
// leaving and n2 the index it enters. Returns false on total internal reflection.
func Refract(incident, normal Vec2, n1, n2 float64) (Vec2, bool) {
	if n2 == 0 {
		return Vec2{}, false
	}
	ratio := n1 / n2
	cosI := -normal.Dot(incident)
	sinT2 := ratio * ratio * (1.0 - cosI*cosI)
	if sinT2 > 1.0 {
		return Vec2{}, false
	}
	cosT := math.Sqrt(1.0 - sinT2)
	return incident.Multiply(ratio).Add(normal.Multiply(ratio*cosI - cosT)), true
}

// WavelengthToColor approximates the visible color of a wavelength in nanometers.
// Wavelengths outside 380-780nm are black; intensity falls off toward both ends.
func WavelengthToColor(nm float64) colorful.Color {
	var r, g, b float64
	switch {
	case nm >= 380 && nm < 440:
		r, g, b = -(nm-440)/(440-380), 0, 1
	case nm >= 440 && nm < 490:
		r, g, b = 0, (nm-440)/(490-440), 1
	case nm >= 490 && nm < 510:
		r, g, b = 0, 1, -(nm-510)/(510-490)
	case nm >= 510 && nm < 580:
		r, g, b = (nm-510)/(580-510), 1, 0
	case nm >= 580 && nm < 645:
		r, g, b = 1, -(nm-645)/(645-580), 0
	case nm >= 645 && nm <= 780:
		r, g, b = 1, 0, 0
	default:
		return colorful.Color{}
	}

	// Vision falls off near the spectrum limits
	var factor float64
	switch {
	case nm < 420:
		factor = 0.3 + 0.7*(nm-380)/(420-380)
	case nm > 700:
		factor = 0.3 + 0.7*(780-nm)/(780-700)
	default:
		factor = 1.0
	}

	return colorful.Color{R: r * factor, G: g * factor, B: b * factor}.Clamped()
}
