package bvh

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sivansh11/aurora/types"
)

func TestPresplitSingleTriangle(t *testing.T) {
	triangles := []Triangle{
		{Vertices: [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}}},
	}

	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.3, 4)
	if len(aabbs) != 1 {
		t.Fatalf("expected 1 presplit entry; got %d", len(aabbs))
	}
	if diff := cmp.Diff([]uint32{0}, backRefs); diff != "" {
		t.Fatalf("back-reference mismatch (-want +got):\n%s", diff)
	}

	tree := Build(aabbs, DefaultBuildOptions())
	if len(tree.Nodes) != 1 || !tree.Nodes[0].IsLeaf() {
		t.Fatalf("expected tree to contain a single leaf; got %d nodes", len(tree.Nodes))
	}
	if first, count := tree.Nodes[0].GetPrimitives(); first != 0 || count != 1 {
		t.Fatalf("expected leaf range (0, 1); got (%d, %d)", first, count)
	}
}

func TestPresplitClipsToTriangle(t *testing.T) {
	triangles := []Triangle{
		{Vertices: [3]types.Vec3{{0, 0, 0}, {4, 0, 0}, {0, 4, 0}}},
		{Vertices: [3]types.Vec3{{0.1, 0.1, 0}, {0.2, 0.1, 0}, {0.1, 0.2, 0}}},
	}

	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.6, 4)

	expBBoxes := []types.AABB{
		{Min: types.Vec3{0, 0, 0}, Max: types.Vec3{2, 2, 0}},
		{Min: types.Vec3{0, 2, 0}, Max: types.Vec3{2, 4, 0}},
		{Min: types.Vec3{2, 0, 0}, Max: types.Vec3{4, 2, 0}},
		triangles[1].BBox(),
	}
	if diff := cmp.Diff(expBBoxes, aabbs); diff != "" {
		t.Fatalf("presplit bboxes mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]uint32{0, 0, 0, 1}, backRefs); diff != "" {
		t.Fatalf("back-reference mismatch (-want +got):\n%s", diff)
	}
}

func TestPresplitLongTriangle(t *testing.T) {
	triangles := longTriangleScene()

	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.3, 4)
	if len(aabbs) != len(backRefs) {
		t.Fatalf("expected bbox and back-reference lists to have the same length; got %d and %d", len(aabbs), len(backRefs))
	}

	var longEntries int
	for index, ref := range backRefs {
		if ref == 0 {
			longEntries++
		}

		if !triangles[ref].BBox().Contains(aabbs[index]) {
			t.Fatalf("expected entry %d to lie inside the bbox of triangle %d; got %v", index, ref, aabbs[index])
		}
	}
	if longEntries < 2 {
		t.Fatalf("expected the long triangle to be split into multiple entries; got %d", longEntries)
	}
	if expCount := len(triangles) - 1 + longEntries; len(aabbs) != expCount {
		t.Fatalf("expected small triangles to pass through unsplit (%d entries); got %d", expCount, len(aabbs))
	}

	// Keep everything in a single leaf so sub-boxes of the long triangle
	// share it.
	opts := DefaultBuildOptions()
	opts.LeafSize = len(aabbs)
	opts.MaxLeafSize = len(aabbs)
	tree := Build(aabbs, opts)
	RemoveIndirection(tree, backRefs)
	RemoveDuplicates(tree)

	if len(tree.Nodes) != 1 {
		t.Fatalf("expected a single leaf; got %d nodes", len(tree.Nodes))
	}
	if _, count := tree.Nodes[0].GetPrimitives(); int(count) != len(triangles) {
		t.Fatalf("expected deduplicated leaf to reference %d triangles; got %d", len(triangles), count)
	}

	// Default build; every leaf must reference the long triangle at most once.
	tree = Build(aabbs, DefaultBuildOptions())
	RemoveIndirection(tree, backRefs)
	if err := Verify(tree.Nodes, tree.PrimIndices, boxesOf(triangles), VerifyOptions{AllowDuplicates: true}); err != nil {
		t.Fatal(err)
	}
	RemoveDuplicates(tree)
	if err := Verify(tree.Nodes, tree.PrimIndices, boxesOf(triangles), VerifyOptions{}); err != nil {
		t.Fatal(err)
	}
}

func TestPresplitCoverage(t *testing.T) {
	triangles := randomTriangles(7, 300, 50, 20)

	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.1, 4)
	if len(aabbs) <= len(triangles) {
		t.Fatalf("expected large triangles to be split; got %d entries for %d triangles", len(aabbs), len(triangles))
	}

	seen := make([]int, len(triangles))
	for _, ref := range backRefs {
		seen[ref]++
	}
	for triIndex, count := range seen {
		if count == 0 {
			t.Fatalf("expected triangle %d to be referenced at least once", triIndex)
		}
	}
}

func TestPresplitThresholdMonotonicity(t *testing.T) {
	triangles := randomTriangles(42, 200, 50, 25)
	boxes := boxesOf(triangles)

	prevCount := 0
	for _, threshold := range []float32{1.0, 0.5, 0.3, 0.2, 0.1, 0.05, 0.01} {
		aabbs, _ := Presplit(boxes, triangles, threshold, 4)
		if len(aabbs) < prevCount {
			t.Fatalf("expected threshold %f to yield at least %d entries; got %d", threshold, prevCount, len(aabbs))
		}
		prevCount = len(aabbs)
	}
}

func TestPresplitSkipsDegenerateTriangles(t *testing.T) {
	triangles := []Triangle{
		// Collinear: zero area but spans the whole scene along X
		{Vertices: [3]types.Vec3{{-5, 0, 0}, {5, 0, 0}, {0, 0, 0}}},
		{Vertices: [3]types.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 1}}},
	}

	_, backRefs := Presplit(boxesOf(triangles), triangles, 0.3, 4)

	var degenerateEntries int
	for _, ref := range backRefs {
		if ref == 0 {
			degenerateEntries++
		}
	}
	if degenerateEntries != 1 {
		t.Fatalf("expected degenerate triangle to pass through unsplit; got %d entries", degenerateEntries)
	}
}

func TestPresplitSplitsFlatTriangles(t *testing.T) {
	triangles := []Triangle{
		// Lies in the y=0 plane so its bbox has no volume.
		{Vertices: [3]types.Vec3{{-5, 0, -5}, {5, 0, -5}, {-5, 0, 5}}},
		{Vertices: [3]types.Vec3{{0, 1, 0}, {1, 1, 0}, {0, 2, 1}}},
	}

	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.3, 4)

	var flatEntries int
	for index, ref := range backRefs {
		if ref != 0 {
			continue
		}
		flatEntries++
		if ext := aabbs[index].Extent(); ext[1] != 0 {
			t.Fatalf("expected split box %d to stay in the y=0 plane; got extent %v", index, ext)
		}
	}
	if flatEntries < 2 {
		t.Fatalf("expected flat triangle to be split; got %d entries", flatEntries)
	}
}

func TestPresplitMaxDepth(t *testing.T) {
	triangles := longTriangleScene()

	aabbs, _ := Presplit(boxesOf(triangles), triangles, 0.001, 0)
	if len(aabbs) != len(triangles) {
		t.Fatalf("expected a max depth of 0 to disable splitting; got %d entries for %d triangles", len(aabbs), len(triangles))
	}

	// A triangle can be split into at most 2^depth boxes.
	aabbs, backRefs := Presplit(boxesOf(triangles), triangles, 0.001, 3)
	var longEntries int
	for _, ref := range backRefs {
		if ref == 0 {
			longEntries++
		}
	}
	if longEntries > 8 {
		t.Fatalf("expected at most 8 entries for the long triangle; got %d", longEntries)
	}
	if len(aabbs) <= len(triangles) {
		t.Fatalf("expected splitting to produce extra entries; got %d", len(aabbs))
	}
}

// A scene with a long sliver triangle (index 0) crossing a small cluster of
// triangles inside the unit cube.
func longTriangleScene() []Triangle {
	triangles := []Triangle{
		{Vertices: [3]types.Vec3{{-5, 0, 0}, {5, 0.5, 1}, {5, 1, 0}}},
	}
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			o := types.XYZ(float32(i)*0.25, float32(j)*0.25, 0.5)
			triangles = append(triangles, Triangle{
				Vertices: [3]types.Vec3{o, o.Add(types.XYZ(0.2, 0, 0)), o.Add(types.XYZ(0, 0.2, 0.1))},
			})
		}
	}
	return triangles
}
