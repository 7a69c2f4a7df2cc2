package types

import "math"

// An axis-aligned bounding box.
type AABB struct {
	Min Vec3
	Max Vec3
}

// Return an inverted box that acts as the identity element for Union.
func EmptyAABB() AABB {
	return AABB{
		Min: Vec3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: Vec3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
}

// Calculate the bounding box of a set of points.
func AABBFromPoints(points ...Vec3) AABB {
	box := EmptyAABB()
	for _, p := range points {
		box = box.Grow(p)
	}
	return box
}

// Returns true if the box does not enclose any point.
func (b AABB) IsEmpty() bool {
	return b.Min[0] > b.Max[0] || b.Min[1] > b.Max[1] || b.Min[2] > b.Max[2]
}

// Extend the box so it includes p.
func (b AABB) Grow(p Vec3) AABB {
	return AABB{MinVec3(b.Min, p), MaxVec3(b.Max, p)}
}

// Calculate the box enclosing both b and other.
func (b AABB) Union(other AABB) AABB {
	return AABB{MinVec3(b.Min, other.Min), MaxVec3(b.Max, other.Max)}
}

// Calculate the overlap of b and other. The result is empty if the boxes
// are disjoint.
func (b AABB) Intersect(other AABB) AABB {
	return AABB{MaxVec3(b.Min, other.Min), MinVec3(b.Max, other.Max)}
}

// Returns true if other lies entirely inside b.
func (b AABB) Contains(other AABB) bool {
	for axis := 0; axis < 3; axis++ {
		if other.Min[axis] < b.Min[axis] || other.Max[axis] > b.Max[axis] {
			return false
		}
	}
	return true
}

// Get the box side lengths.
func (b AABB) Extent() Vec3 {
	return b.Max.Sub(b.Min)
}

// Get the box center.
func (b AABB) Center() Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// Get the box surface area. Empty boxes have no area.
func (b AABB) SurfaceArea() float32 {
	if b.IsEmpty() {
		return 0
	}
	side := b.Extent()
	return 2 * (side[0]*side[1] + side[1]*side[2] + side[0]*side[2])
}
