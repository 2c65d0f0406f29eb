package entity

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
	"github.com/df07/go-optics-tracer/pkg/geometry"
)

// Body holds the identity and pose shared by every entity.
// Position and Angle (radians) may be changed between frames by input handlers.
type Body struct {
	id       string
	Position core.Vec2
	Angle    float64
}

// ID returns the entity's scene-unique identifier
func (b *Body) ID() string {
	return b.id
}

// Pose returns the body itself so hosts can move or rotate any entity
func (b *Body) Pose() *Body {
	return b
}

// Rect is a rectangle body. Width runs along Angle, Height across it.
type Rect struct {
	Body
	HalfWidth  float64
	HalfHeight float64
}

// Vertices returns the rectangle's corners at its current pose
func (r *Rect) Vertices() []core.Vec2 {
	return geometry.RectVertices(r.Position, r.HalfWidth, r.HalfHeight, r.Angle)
}

// Intersect tests the ray against the rectangle's edges
func (r *Rect) Intersect(ray core.Ray) (geometry.Intersection, bool) {
	return geometry.RayVsPolygonEdges(ray, r.Vertices())
}

// Contains reports whether p lies inside the rectangle
func (r *Rect) Contains(p core.Vec2) bool {
	return geometry.PointInPolygon(p, r.Vertices())
}

// DistanceTo returns the distance from p to the rectangle outline, zero inside
func (r *Rect) DistanceTo(p core.Vec2) float64 {
	if r.Contains(p) {
		return 0
	}
	return geometry.DistanceToPolygon(p, r.Vertices())
}

// Bounds returns the rectangle's bounding box at its current pose
func (r *Rect) Bounds() core.AABB {
	return core.NewAABBFromPoints(r.Vertices()...)
}

// Circle is a circular body
type Circle struct {
	Body
	Radius float64
}

// Intersect tests the ray against the circle
func (c *Circle) Intersect(ray core.Ray) (geometry.Intersection, bool) {
	return geometry.RayVsCircle(ray, c.Position, c.Radius)
}

// Contains reports whether p lies inside the circle
func (c *Circle) Contains(p core.Vec2) bool {
	return p.Subtract(c.Position).LengthSquared() <= c.Radius*c.Radius
}

// DistanceTo returns the distance from p to the circle outline, zero inside
func (c *Circle) DistanceTo(p core.Vec2) float64 {
	return math.Max(0, p.Subtract(c.Position).Length()-c.Radius)
}

// Bounds returns the circle's bounding box
func (c *Circle) Bounds() core.AABB {
	extent := core.NewVec2(c.Radius, c.Radius)
	return core.NewAABB(c.Position.Subtract(extent), c.Position.Add(extent))
}

// Triangle is an equilateral triangle body with side length Side
type Triangle struct {
	Body
	Side float64
}

// Vertices returns the triangle's corners at its current pose
func (t *Triangle) Vertices() []core.Vec2 {
	return geometry.TriangleVertices(t.Position, t.Side, t.Angle)
}

// Intersect tests the ray against the triangle's edges
func (t *Triangle) Intersect(ray core.Ray) (geometry.Intersection, bool) {
	return geometry.RayVsPolygonEdges(ray, t.Vertices())
}

// Contains reports whether p lies inside the triangle
func (t *Triangle) Contains(p core.Vec2) bool {
	return geometry.PointInPolygon(p, t.Vertices())
}

// DistanceTo returns the distance from p to the triangle outline, zero inside
func (t *Triangle) DistanceTo(p core.Vec2) float64 {
	if t.Contains(p) {
		return 0
	}
	return geometry.DistanceToPolygon(p, t.Vertices())
}

// Bounds returns the triangle's bounding box at its current pose
func (t *Triangle) Bounds() core.AABB {
	return core.NewAABBFromPoints(t.Vertices()...)
}

type intersecter interface {
	Intersect(ray core.Ray) (geometry.Intersection, bool)
}

// offsetOrigin starts an outgoing ray just off the surface at point
func offsetOrigin(point, direction core.Vec2) core.Vec2 {
	return point.Add(direction.Multiply(OffsetDistance))
}

// transmitThrough returns the origin for a ray continuing straight through a
// body it just entered at point: just past the body's far side
func transmitThrough(body intersecter, point, direction core.Vec2) core.Vec2 {
	start := offsetOrigin(point, direction)
	if exit, ok := body.Intersect(core.NewRay(start, direction)); ok {
		return offsetOrigin(exit.Point, direction)
	}
	return start
}

// reflected builds the specular reflection of the incident ray
func reflected(in Incident, intensity float64, color core.Color) Outgoing {
	direction := core.Reflect(in.Direction, in.Hit.Normal).Normalize()
	return Outgoing{
		Origin:    offsetOrigin(in.Hit.Point, direction),
		Direction: direction,
		Intensity: intensity,
		Color:     color,
	}
}

// refracted bends the incident ray from index n1 into n2, falling back to
// reflection on total internal reflection
func refracted(in Incident, n1, n2 float64, color core.Color) Outgoing {
	direction, ok := core.Refract(in.Direction, in.Hit.Normal, n1, n2)
	if !ok {
		return reflected(in, 1.0, color)
	}
	direction = direction.Normalize()
	return Outgoing{
		Origin:    offsetOrigin(in.Hit.Point, direction),
		Direction: direction,
		Intensity: 1.0,
		Color:     color,
	}
}

// exiting reports whether the incident ray is leaving the volume, by probing
// a point just behind the hit
func exiting(volume Container, in Incident) bool {
	probe := in.Hit.Point.Subtract(in.Direction.Multiply(ProbeDistance))
	return volume.Contains(probe)
}
