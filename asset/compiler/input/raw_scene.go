package input

import (
	"github.com/sivansh11/aurora/types"
)

// A mesh is an indexed triangle list. Every three consecutive entries in
// Indices form a triangle whose corners are looked up in Vertices.
type Mesh struct {
	Name     string
	Vertices []types.Vec3
	Indices  []uint32
}

// Create a new mesh.
func NewMesh(name string) *Mesh {
	return &Mesh{
		Name:     name,
		Vertices: make([]types.Vec3, 0),
		Indices:  make([]uint32, 0),
	}
}

// Append a vertex and return its mesh-local index.
func (m *Mesh) AddVertex(v types.Vec3) uint32 {
	m.Vertices = append(m.Vertices, v)
	return uint32(len(m.Vertices) - 1)
}

// Append a triangle referencing three mesh-local vertex indices.
func (m *Mesh) AddTriangle(i0, i1, i2 uint32) {
	m.Indices = append(m.Indices, i0, i1, i2)
}

// Get the number of complete triangles in the mesh.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// The scene contains all elements that are processed and optimized by the
// scene compiler.
type Scene struct {
	Meshes []*Mesh
}

// Create a new scene.
func NewScene() *Scene {
	return &Scene{
		Meshes: make([]*Mesh, 0),
	}
}

// Get the total number of triangles across all scene meshes.
func (sc *Scene) TriangleCount() int {
	total := 0
	for _, m := range sc.Meshes {
		total += m.TriangleCount()
	}
	return total
}
