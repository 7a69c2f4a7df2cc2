package scene

import (
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/sivansh11/aurora/types"
)

func TestBvhNodeTagging(t *testing.T) {
	var node BvhNode

	node.SetPrimitives(0, 0)
	if !node.IsLeaf() {
		t.Fatal("expected empty leaf starting at 0 to be tagged as a leaf")
	}

	node.SetPrimitives(12, 3)
	if !node.IsLeaf() {
		t.Fatal("expected node to be tagged as a leaf")
	}
	first, count := node.GetPrimitives()
	if first != 12 || count != 3 {
		t.Fatalf("expected leaf range (12, 3); got (%d, %d)", first, count)
	}

	node.SetChildNodes(1, 4)
	if node.IsLeaf() {
		t.Fatal("expected node to be tagged as an interior node")
	}
	left, right := node.GetChildNodes()
	if left != 1 || right != 4 {
		t.Fatalf("expected children (1, 4); got (%d, %d)", left, right)
	}
}

func TestNodeBufferLayout(t *testing.T) {
	sc := &Scene{
		BvhNodeList: make([]BvhNode, 2),
	}
	sc.BvhNodeList[0].SetBBox(types.AABB{Min: types.Vec3{-1, -2, -3}, Max: types.Vec3{1, 2, 3}})
	sc.BvhNodeList[0].SetChildNodes(1, 1)
	sc.BvhNodeList[1].SetPrimitives(5, 2)

	data := sc.NodeBuffer()
	if len(data) != 2*BvhNodeSize {
		t.Fatalf("expected node buffer to be %d bytes; got %d", 2*BvhNodeSize, len(data))
	}

	if v := math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])); v != -2 {
		t.Fatalf("expected min.y to be -2; got %f", v)
	}
	if v := int32(binary.LittleEndian.Uint32(data[12:16])); v != 1 {
		t.Fatalf("expected left child to be 1; got %d", v)
	}
	if v := math.Float32frombits(binary.LittleEndian.Uint32(data[24:28])); v != 3 {
		t.Fatalf("expected max.z to be 3; got %f", v)
	}

	leaf := data[BvhNodeSize:]
	if v := int32(binary.LittleEndian.Uint32(leaf[12:16])); v != -5 {
		t.Fatalf("expected leaf LData to be -5; got %d", v)
	}
	if v := int32(binary.LittleEndian.Uint32(leaf[28:32])); v != 2 {
		t.Fatalf("expected leaf count to be 2; got %d", v)
	}
}

func TestTriangleAndIndexBuffers(t *testing.T) {
	sc := &Scene{
		PrimitiveIndexList: []uint32{7, 1, 3},
		TriangleList: []Triangle{
			{V0: types.Vec3{0, 0, 0}, V1: types.Vec3{1, 0, 0}, V2: types.Vec3{0, 1, 0}, MeshIndex: 2, LocalIndex: 9},
		},
	}

	data := sc.TriangleBuffer()
	if len(data) != TriangleSize {
		t.Fatalf("expected triangle buffer to be %d bytes; got %d", TriangleSize, len(data))
	}
	if v := binary.LittleEndian.Uint32(data[12:16]); v != 2 {
		t.Fatalf("expected mesh index 2; got %d", v)
	}
	if v := binary.LittleEndian.Uint32(data[28:32]); v != 9 {
		t.Fatalf("expected local index 9; got %d", v)
	}

	data = sc.PrimitiveIndexBuffer()
	if len(data) != 12 {
		t.Fatalf("expected index buffer to be 12 bytes; got %d", len(data))
	}
	if v := binary.LittleEndian.Uint32(data[4:8]); v != 1 {
		t.Fatalf("expected second index to be 1; got %d", v)
	}
}

func TestSceneStats(t *testing.T) {
	sc := &Scene{
		BvhNodeList:        make([]BvhNode, 3),
		PrimitiveIndexList: make([]uint32, 2),
		TriangleList:       make([]Triangle, 2),
		MeshList:           []MeshInfo{{Name: "m", TriangleCount: 2}},
	}

	out := sc.Stats()
	for _, exp := range []string{"Triangles", "Nodes", "96 bytes", "Total"} {
		if !strings.Contains(out, exp) {
			t.Fatalf("expected stats table to contain %q; got:\n%s", exp, out)
		}
	}
}
