package bvh

import (
	"github.com/sivansh11/aurora/asset/compiler/input"
	"github.com/sivansh11/aurora/types"
)

// A triangle extracted from a scene mesh. MeshIndex and LocalIndex identify
// the mesh triangle it came from and do not take part in any geometric
// computation.
type Triangle struct {
	Vertices [3]types.Vec3

	MeshIndex  uint32
	LocalIndex uint32
}

// Get the triangle AABB.
func (t *Triangle) BBox() types.AABB {
	return types.AABBFromPoints(t.Vertices[0], t.Vertices[1], t.Vertices[2])
}

// Get the triangle area.
func (t *Triangle) Area() float32 {
	e01 := t.Vertices[1].Sub(t.Vertices[0])
	e02 := t.Vertices[2].Sub(t.Vertices[0])
	return 0.5 * e01.Cross(e02).Len()
}

// Flatten the triangles of all meshes into a single list and calculate a
// parallel list of triangle bounding boxes. Mesh order and the triangle
// order within each mesh is preserved.
func ExtractTriangles(meshes []*input.Mesh) ([]Triangle, []types.AABB) {
	total := 0
	for _, m := range meshes {
		total += m.TriangleCount()
	}

	triangles := make([]Triangle, 0, total)
	aabbs := make([]types.AABB, 0, total)
	for meshIndex, m := range meshes {
		for local := 0; local < m.TriangleCount(); local++ {
			idx := m.Indices[3*local : 3*local+3]
			tri := Triangle{
				Vertices: [3]types.Vec3{
					m.Vertices[idx[0]],
					m.Vertices[idx[1]],
					m.Vertices[idx[2]],
				},
				MeshIndex:  uint32(meshIndex),
				LocalIndex: uint32(local),
			}
			triangles = append(triangles, tri)
			aabbs = append(aabbs, tri.BBox())
		}
	}

	return triangles, aabbs
}
