package geometry

import (
	"math"

	"github.com/df07/go-optics-tracer/pkg/core"
)

const (
	// rayReach is the far end used when a ray is tested as a segment
	rayReach = 1e6
	// maxDistance bounds what counts as a finite hit
	maxDistance = 1e12
	// parallelEpsilon is the smallest cross product treated as non-parallel
	parallelEpsilon = 1e-12
)

// SegmentIntersect finds where segment p1-p2 crosses segment p3-p4.
// t is the parameter along p1-p2 in [0, 1]. Parallel or disjoint segments return false.
func SegmentIntersect(p1, p2, p3, p4 core.Vec2) (core.Vec2, float64, bool) {
	r := p2.Subtract(p1)
	s := p4.Subtract(p3)

	denominator := r.Cross(s)
	if math.Abs(denominator) < parallelEpsilon {
		return core.Vec2{}, 0, false
	}

	qp := p3.Subtract(p1)
	t := qp.Cross(s) / denominator
	u := qp.Cross(r) / denominator
	if t < 0 || t > 1 || u < 0 || u > 1 {
		return core.Vec2{}, 0, false
	}

	return p1.Add(r.Multiply(t)), t, true
}

// RayVsPolygonEdges tests the ray against every edge of the closed polygon and
// returns the closest hit farther than Epsilon
func RayVsPolygonEdges(ray core.Ray, vertices []core.Vec2) (Intersection, bool) {
	n := len(vertices)
	if n < 2 {
		return Intersection{}, false
	}

	direction := ray.Direction.Normalize()
	if direction == (core.Vec2{}) {
		return Intersection{}, false
	}
	ray = core.NewRay(ray.Origin, direction)
	far := ray.At(rayReach)

	edges := n
	if n == 2 {
		// A two-vertex polygon is a single segment
		edges = 1
	}

	var closest Intersection
	found := false
	closestSoFar := math.Inf(1)

	for i := 0; i < edges; i++ {
		a := vertices[i]
		b := vertices[(i+1)%n]

		point, t, ok := SegmentIntersect(ray.Origin, far, a, b)
		if !ok {
			continue
		}

		distance := t * rayReach
		if distance <= Epsilon || distance >= closestSoFar {
			continue
		}

		hit := Intersection{Point: point, Distance: distance}
		hit.SetFaceNormal(ray, b.Subtract(a).Perpendicular())
		if !hit.Valid() {
			continue
		}

		closest = hit
		closestSoFar = distance
		found = true
	}

	return closest, found
}

// RayVsCircle intersects the ray with a circle, keeping the nearest root farther
// than Epsilon. A ray starting inside the circle hits its far side.
func RayVsCircle(ray core.Ray, center core.Vec2, radius float64) (Intersection, bool) {
	if radius <= 0 {
		return Intersection{}, false
	}

	direction := ray.Direction.Normalize()
	if direction == (core.Vec2{}) {
		return Intersection{}, false
	}
	ray = core.NewRay(ray.Origin, direction)

	// Quadratic equation with a = 1 for a unit direction: t² + 2bt + c = 0
	oc := ray.Origin.Subtract(center)
	halfB := oc.Dot(direction)
	c := oc.Dot(oc) - radius*radius

	discriminant := halfB*halfB - c
	if discriminant <= 0 {
		return Intersection{}, false
	}

	sqrtD := math.Sqrt(discriminant)

	// Try the closer root first
	root := -halfB - sqrtD
	if root <= Epsilon {
		root = -halfB + sqrtD
		if root <= Epsilon {
			return Intersection{}, false
		}
	}

	hit := Intersection{Point: ray.At(root), Distance: root}
	hit.SetFaceNormal(ray, hit.Point.Subtract(center))
	// A grazing ray has no normal facing it
	if !hit.Valid() || hit.Normal.Dot(direction) >= 0 {
		return Intersection{}, false
	}
	return hit, true
}

// PointInPolygon reports whether p lies inside the polygon using the even-odd rule
func PointInPolygon(p core.Vec2, vertices []core.Vec2) bool {
	inside := false
	n := len(vertices)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := vertices[i], vertices[j]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			crossX := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
			if p.X < crossX {
				inside = !inside
			}
		}
	}
	return inside
}

// ClosestPointOnSegment returns the point of segment a-b nearest to p
func ClosestPointOnSegment(p, a, b core.Vec2) core.Vec2 {
	ab := b.Subtract(a)
	lengthSq := ab.LengthSquared()
	if lengthSq == 0 {
		return a
	}
	t := p.Subtract(a).Dot(ab) / lengthSq
	t = math.Max(0, math.Min(1, t))
	return a.Add(ab.Multiply(t))
}

// DistanceToPolygon returns the distance from p to the nearest polygon edge
func DistanceToPolygon(p core.Vec2, vertices []core.Vec2) float64 {
	best := math.Inf(1)
	n := len(vertices)
	for i := 0; i < n; i++ {
		closest := ClosestPointOnSegment(p, vertices[i], vertices[(i+1)%n])
		best = math.Min(best, closest.Subtract(p).Length())
	}
	return best
}
