package geometry

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
)

// RectVertices returns the corners of a rectangle centred on center with the
// given half extents, rotated by angle radians. The first edge runs along the
// rectangle's length.
func RectVertices(center core.Vec2, halfWidth, halfHeight, angle float64) []core.Vec2 {
	corners := [4]core.Vec2{
		{X: -halfWidth, Y: -halfHeight},
		{X: halfWidth, Y: -halfHeight},
		{X: halfWidth, Y: halfHeight},
		{X: -halfWidth, Y: halfHeight},
	}
	vertices := make([]core.Vec2, len(corners))
	for i, c := range corners {
		vertices[i] = center.Add(c.Rotate(angle))
	}
	return vertices
}

// TriangleVertices returns an equilateral triangle with the given side length
// centred on its centroid, with one vertex pointing along angle
func TriangleVertices(center core.Vec2, side, angle float64) []core.Vec2 {
	circumradius := side / math.Sqrt(3)
	vertices := make([]core.Vec2, 3)
	for i := range vertices {
		vertices[i] = center.Add(core.FromAngle(angle + float64(i)*2*math.Pi/3).Multiply(circumradius))
	}
	return vertices
}
