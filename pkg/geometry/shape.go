package geometry

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
)

// Epsilon is the minimum hit distance, guarding against a ray re-hitting the
// surface it starts on
const Epsilon = 1e-3

// Intersection contains information about a ray-shape intersection
type Intersection struct {
	Point    core.Vec2 // Point of intersection
	Distance float64   // Distance along the ray to the point
	Normal   core.Vec2 // Unit surface normal, always facing against the ray
}

// SetFaceNormal stores the outward normal flipped so that it opposes the ray direction
func (h *Intersection) SetFaceNormal(ray core.Ray, outwardNormal core.Vec2) {
	normal := outwardNormal.Normalize()
	if ray.Direction.Dot(normal) > 0 {
		normal = normal.Negate()
	}
	h.Normal = normal
}

// Valid reports whether the intersection holds finite numbers
func (h Intersection) Valid() bool {
	return h.Point.IsFinite() && h.Normal.IsFinite() &&
		!math.IsNaN(h.Distance) && h.Distance >= 0 && h.Distance < maxDistance
}
