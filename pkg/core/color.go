package core

import (
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Color tags the spectral content of a ray. The empty tag means untinted (white).
type Color string

const (
	ColorWhite Color = "white"
	ColorRed   Color = "red"
	ColorGreen Color = "green"
	ColorBlue  Color = "blue"
)

// Representative wavelengths in nanometers for the spectral tags
const (
	WavelengthRed   = 650.0
	WavelengthGreen = 532.0
	WavelengthBlue  = 450.0
)

// Normalize lower-cases and trims the tag, mapping the empty tag to white
func (c Color) Normalize() Color {
	n := Color(strings.ToLower(strings.TrimSpace(string(c))))
	if n == "" {
		return ColorWhite
	}
	return n
}

// IsWhite reports whether the tag carries no tint
func (c Color) IsWhite() bool {
	return c.Normalize() == ColorWhite
}

// Matches reports whether two tags name the same color
func (c Color) Matches(other Color) bool {
	return c.Normalize() == other.Normalize()
}

// Wavelength returns the representative wavelength for spectral tags
func (c Color) Wavelength() (float64, bool) {
	switch c.Normalize() {
	case ColorRed:
		return WavelengthRed, true
	case ColorGreen:
		return WavelengthGreen, true
	case ColorBlue:
		return WavelengthBlue, true
	}
	return 0, false
}

// RGB resolves the tag to a displayable color. Spectral tags go through
// WavelengthToColor, hex tags (#rrggbb) are parsed, anything else is white.
func (c Color) RGB() colorful.Color {
	if nm, ok := c.Wavelength(); ok {
		return WavelengthToColor(nm)
	}
	n := c.Normalize()
	if strings.HasPrefix(string(n), "#") {
		if parsed, err := colorful.Hex(string(n)); err == nil {
			return parsed
		}
	}
	return colorful.Color{R: 1, G: 1, B: 1}
}
