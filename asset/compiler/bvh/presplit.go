package bvh

import (
	"github.com/sivansh11/aurora/types"
)

// Maximum number of vertices produced by clipping a triangle against the six
// planes of a box.
const maxClipVertices = 9

// Subdivide the bounding boxes of triangles that are large compared to the
// scene into smaller boxes that tightly bound the part of the triangle they
// cover.
//
// A box is split at the midpoint of its longest axis whenever its extent
// along that axis exceeds threshold times the extent of the scene bounds
// along the same axis. Splitting recurses on both halves until the boxes are
// small enough or maxDepth subdivisions have been applied. Triangles with
// zero area are never split. Flat triangles lying in an axis-aligned plane
// have zero-volume boxes but are still split like any other triangle.
//
// The returned back-reference list has one entry per returned box holding
// the index of the triangle that the box was derived from. Every triangle
// contributes at least one box.
func Presplit(aabbs []types.AABB, triangles []Triangle, threshold float32, maxDepth int) ([]types.AABB, []uint32) {
	// A lone triangle spans the whole scene but there is nothing to
	// separate it from.
	if len(aabbs) < 2 {
		return append([]types.AABB(nil), aabbs...), IdentityRefs(len(aabbs))
	}

	rootBBox := types.EmptyAABB()
	for _, bbox := range aabbs {
		rootBBox = rootBBox.Union(bbox)
	}

	p := &presplitter{
		maxExtent: rootBBox.Extent().Mul(threshold),
		maxDepth:  maxDepth,
		aabbs:     make([]types.AABB, 0, len(aabbs)),
		backRefs:  make([]uint32, 0, len(aabbs)),
	}

	for triIndex, bbox := range aabbs {
		tri := &triangles[triIndex]
		if tri.Area() == 0 {
			p.emit(bbox, uint32(triIndex))
			continue
		}
		p.split(tri, bbox, uint32(triIndex), 0)
	}

	return p.aabbs, p.backRefs
}

// Get a back-reference list that maps every box to the triangle with the
// same index. It is used when presplitting is disabled.
func IdentityRefs(count int) []uint32 {
	refs := make([]uint32, count)
	for index := range refs {
		refs[index] = uint32(index)
	}
	return refs
}

type presplitter struct {
	// Boxes whose extent along their longest axis exceeds the value of
	// maxExtent for that axis get split.
	maxExtent types.Vec3
	maxDepth  int

	aabbs    []types.AABB
	backRefs []uint32

	// Scratch buffers for polygon clipping.
	clipA, clipB [maxClipVertices + 1]types.Vec3
}

func (p *presplitter) oversized(bbox types.AABB) bool {
	side := bbox.Extent()
	axis := side.MaxAxis()
	return side[axis] > p.maxExtent[axis]
}

func (p *presplitter) emit(bbox types.AABB, triIndex uint32) {
	p.aabbs = append(p.aabbs, bbox)
	p.backRefs = append(p.backRefs, triIndex)
}

// Recursively split bbox and emit the resulting boxes. Returns the number of
// emitted boxes.
func (p *presplitter) split(tri *Triangle, bbox types.AABB, triIndex uint32, depth int) int {
	if depth >= p.maxDepth || !p.oversized(bbox) {
		p.emit(bbox, triIndex)
		return 1
	}

	axis := bbox.Extent().MaxAxis()
	mid := 0.5 * (bbox.Min[axis] + bbox.Max[axis])

	left, right := bbox, bbox
	left.Max[axis] = mid
	right.Min[axis] = mid

	emitted := 0
	for _, half := range [2]types.AABB{left, right} {
		clipped, ok := p.clip(tri, half)
		if !ok {
			continue
		}
		emitted += p.split(tri, clipped, triIndex, depth+1)
	}

	// Both halves may clip away due to rounding; keep the parent box so
	// the triangle stays covered.
	if emitted == 0 {
		p.emit(bbox, triIndex)
		emitted = 1
	}

	return emitted
}

// Clip the triangle against box and return the bounds of the clipped
// polygon limited to box. The second return value is false if the triangle
// does not intersect box.
func (p *presplitter) clip(tri *Triangle, box types.AABB) (types.AABB, bool) {
	poly := p.clipA[:0]
	poly = append(poly, tri.Vertices[:]...)
	out := p.clipB[:0]

	for axis := 0; axis < 3; axis++ {
		out = clipPolygon(poly, out[:0], axis, box.Min[axis], false)
		poly, out = out, poly
		out = clipPolygon(poly, out[:0], axis, box.Max[axis], true)
		poly, out = out, poly
		if len(poly) == 0 {
			return types.AABB{}, false
		}
	}

	bounds := types.AABBFromPoints(poly...).Intersect(box)
	if bounds.IsEmpty() {
		return types.AABB{}, false
	}
	return bounds, true
}

// Clip a convex polygon against the axis-aligned plane at pos, appending the
// result to out. If keepBelow is set the part with coordinates <= pos is
// kept; otherwise the part with coordinates >= pos is kept.
func clipPolygon(poly, out []types.Vec3, axis int, pos float32, keepBelow bool) []types.Vec3 {
	for i := range poly {
		cur := poly[i]
		next := poly[(i+1)%len(poly)]

		dCur := cur[axis] - pos
		dNext := next[axis] - pos
		if keepBelow {
			dCur, dNext = -dCur, -dNext
		}

		if dCur >= 0 {
			out = append(out, cur)
		}
		if (dCur >= 0) != (dNext >= 0) {
			t := dCur / (dCur - dNext)
			v := cur.Add(next.Sub(cur).Mul(t))
			v[axis] = pos
			out = append(out, v)
		}
	}
	return out
}
