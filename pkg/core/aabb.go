package core

import "math"

// AABB represents an axis-aligned bounding box
type AABB struct {
	Min Vec2 // Minimum corner
	Max Vec2 // Maximum corner
}

// NewAABB creates a new AABB from min and max points
func NewAABB(min, max Vec2) AABB {
	return AABB{Min: min, Max: max}
}

// NewAABBFromPoints creates an AABB that bounds all given points
func NewAABBFromPoints(points ...Vec2) AABB {
	if len(points) == 0 {
		return AABB{}
	}

	min := points[0]
	max := points[0]
	for _, point := range points[1:] {
		min.X = math.Min(min.X, point.X)
		min.Y = math.Min(min.Y, point.Y)
		max.X = math.Max(max.X, point.X)
		max.Y = math.Max(max.Y, point.Y)
	}

	return AABB{Min: min, Max: max}
}

// Hit tests if a ray intersects this AABB within [tMin, tMax] using the slab method.
// t is measured in multiples of the ray's direction.
func (aabb AABB) Hit(ray Ray, tMin, tMax float64) bool {
	slabs := [2][4]float64{
		{aabb.Min.X, aabb.Max.X, ray.Origin.X, ray.Direction.X},
		{aabb.Min.Y, aabb.Max.Y, ray.Origin.Y, ray.Direction.Y},
	}

	for _, slab := range slabs {
		min, max, origin, direction := slab[0], slab[1], slab[2], slab[3]

		// Parallel to this axis
		if math.Abs(direction) < 1e-12 {
			if origin < min || origin > max {
				return false
			}
			continue
		}

		invDirection := 1.0 / direction
		t1 := (min - origin) * invDirection
		t2 := (max - origin) * invDirection
		if t1 > t2 {
			t1, t2 = t2, t1
		}

		tMin = math.Max(tMin, t1)
		tMax = math.Min(tMax, t2)
		if tMin > tMax {
			return false
		}
	}

	return true
}

// Expand returns an AABB grown by amount on every side
func (aabb AABB) Expand(amount float64) AABB {
	expansion := NewVec2(amount, amount)
	return AABB{
		Min: aabb.Min.Subtract(expansion),
		Max: aabb.Max.Add(expansion),
	}
}
