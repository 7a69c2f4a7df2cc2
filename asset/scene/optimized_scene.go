package scene

import (
	"bytes"
	"fmt"
	"reflect"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/sivansh11/aurora/types"
)

// Bvh nodes are comprised of two Vec3 and two multipurpose int32 parameters
// whose value depends on the node type:
//
// - For interior nodes they are both >0 and point to the L/R child nodes.
// - For leafs:
//   - left W is <= 0 and holds the negated index of the first entry in the
//     primitive index list
//   - right W is >= 0 and contains the count of leaf primitives
//
// The root is always stored at index 0 so a valid child index is never 0.
type BvhNode struct {
	Min   types.Vec3
	LData int32

	Max   types.Vec3
	RData int32
}

// Set bounding box.
func (n *BvhNode) SetBBox(bbox types.AABB) {
	n.Min = bbox.Min
	n.Max = bbox.Max
}

// Get bounding box.
func (n *BvhNode) BBox() types.AABB {
	return types.AABB{Min: n.Min, Max: n.Max}
}

// Set left and right child node indices.
func (n *BvhNode) SetChildNodes(left, right uint32) {
	n.LData = int32(left)
	n.RData = int32(right)
}

// Get left and right child node indices.
func (n *BvhNode) GetChildNodes() (left, right uint32) {
	return uint32(n.LData), uint32(n.RData)
}

// Set primitive index and count.
func (n *BvhNode) SetPrimitives(firstPrimIndex, count uint32) {
	n.LData = -int32(firstPrimIndex)
	n.RData = int32(count)
}

// Get primitive index and count.
func (n *BvhNode) GetPrimitives() (firstPrimIndex, count uint32) {
	return uint32(-n.LData), uint32(n.RData)
}

// Returns true if this is a leaf node.
func (n *BvhNode) IsLeaf() bool {
	return n.LData <= 0
}

// A triangle packed as three (vec3, uint32) rows so it can be read by
// shaders without extra padding rules.
type Triangle struct {
	V0        types.Vec3
	MeshIndex uint32

	V1         types.Vec3
	LocalIndex uint32

	V2 types.Vec3
	_  uint32
}

// Get the triangle vertices.
func (t *Triangle) Vertices() [3]types.Vec3 {
	return [3]types.Vec3{t.V0, t.V1, t.V2}
}

// Get the triangle bounding box.
func (t *Triangle) BBox() types.AABB {
	return types.AABBFromPoints(t.V0, t.V1, t.V2)
}

// Per mesh bookkeeping; triangles for each mesh are stored contiguously.
type MeshInfo struct {
	Name           string
	TriangleOffset uint32
	TriangleCount  uint32
}

// A compiled scene ready for upload to the GPU.
type Scene struct {
	// A unique id assigned when the scene was compiled.
	BuildID string

	// The BVH tree; leaf ranges index into PrimitiveIndexList which in
	// turn indexes into TriangleList.
	BvhNodeList        []BvhNode
	PrimitiveIndexList []uint32

	TriangleList []Triangle
	MeshList     []MeshInfo
}

// Build a tabular representation of scene statistics.
func (sc *Scene) Stats() string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"Asset Type", "Asset", "Count", "Size"})
	table.Append([]string{"Geometry", "---", "", fmtSize(sc.TriangleList, sc.MeshList)})
	table.Append([]string{"", "Meshes", fmt.Sprint(len(sc.MeshList)), fmtSize(sc.MeshList)})
	table.Append([]string{"", "Triangles", fmt.Sprint(len(sc.TriangleList)), fmtSize(sc.TriangleList)})
	table.Append([]string{" ", " ", " ", " "})
	table.Append([]string{"BVH", "---", "", fmtSize(sc.BvhNodeList, sc.PrimitiveIndexList)})
	table.Append([]string{"", "Nodes", fmt.Sprint(len(sc.BvhNodeList)), fmtSize(sc.BvhNodeList)})
	table.Append([]string{"", "Prim. indices", fmt.Sprint(len(sc.PrimitiveIndexList)), fmtSize(sc.PrimitiveIndexList)})
	table.SetFooter([]string{"Total", " ", " ", strings.TrimLeft(fmtSize(sc.TriangleList, sc.MeshList, sc.BvhNodeList, sc.PrimitiveIndexList), " ")})

	table.Render()
	return buf.String()
}

// Sum the total space used by a set of slices and return back a formatted
// value with the appropriate byte/kb/mb unit.
func fmtSize(items ...interface{}) string {
	var totalBytes float32 = 0.0
	for _, item := range items {
		t := reflect.TypeOf(item)
		v := reflect.ValueOf(item)
		if v.Len() == 0 {
			continue
		}

		totalBytes += float32(int(t.Elem().Size()) * v.Len())
	}

	if totalBytes < 1e3 {
		return fmt.Sprintf("%3d bytes", int(totalBytes))
	} else if totalBytes < 1e6 {
		return fmt.Sprintf("%3.1f kb", totalBytes/1e3)
	}
	return fmt.Sprintf("%5.1f mb", totalBytes/1e6)
}
