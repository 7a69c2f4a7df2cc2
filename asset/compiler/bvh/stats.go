package bvh

import (
	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/scene"
)

// Summary of the shape of a BVH tree.
type TreeStats struct {
	Nodes      int
	Leafs      int
	EmptyLeafs int
	MaxDepth   int

	// Leaf primitive counts.
	MinLeafSize int
	MaxLeafSize int
	AvgLeafSize float32

	// Expected traversal cost of the tree under the SAH cost model with
	// unit traversal and intersection costs.
	SAHCost float32
}

// Walk a tree from its root and collect statistics about it. An error is
// returned if a node references a child outside the node list or if a node
// can be reached more than once.
func CollectStats(nodes []scene.BvhNode) (TreeStats, error) {
	var st TreeStats
	if len(nodes) == 0 {
		return st, nil
	}

	rootArea := nodes[0].BBox().SurfaceArea()

	type entry struct {
		index uint32
		depth int
	}
	totalPrims := 0
	visited := make([]bool, len(nodes))
	visited[0] = true
	stack := []entry{{0, 0}}
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		node := &nodes[e.index]
		st.Nodes++
		if e.depth > st.MaxDepth {
			st.MaxDepth = e.depth
		}

		var relArea float32 = 1
		if rootArea > 0 {
			relArea = node.BBox().SurfaceArea() / rootArea
		}

		if !node.IsLeaf() {
			st.SAHCost += relArea
			left, right := node.GetChildNodes()
			for _, child := range [2]uint32{right, left} {
				if int(child) >= len(nodes) {
					return st, errors.Errorf("bvh: node %d references invalid child %d", e.index, child)
				}
				if visited[child] {
					return st, errors.Errorf("bvh: node %d is reachable through more than one path", child)
				}
				visited[child] = true
				stack = append(stack, entry{child, e.depth + 1})
			}
			continue
		}

		_, count := node.GetPrimitives()
		size := int(count)
		if st.Leafs == 0 || size < st.MinLeafSize {
			st.MinLeafSize = size
		}
		if size > st.MaxLeafSize {
			st.MaxLeafSize = size
		}
		if size == 0 {
			st.EmptyLeafs++
		}
		st.Leafs++
		totalPrims += size
		st.SAHCost += relArea * float32(size)
	}

	st.AvgLeafSize = float32(totalPrims) / float32(st.Leafs)
	return st, nil
}
