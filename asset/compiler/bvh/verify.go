package bvh

import (
	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/types"
)

// Options for Verify.
type VerifyOptions struct {
	// Require every leaf box to fully contain the bounds of the triangles
	// it references. Presplit trees only bound the clipped part of large
	// triangles so this check only holds for trees built without
	// presplitting.
	RequireContainment bool

	// Allow a leaf to reference the same triangle more than once. This is
	// the case for presplit trees before duplicates are removed.
	AllowDuplicates bool
}

// Check the structural invariants of a BVH tree whose primitive indices
// reference the triangles with the given bounds. It returns an error
// describing the first violation found.
func Verify(nodes []scene.BvhNode, primIndices []uint32, triBounds []types.AABB, opts VerifyOptions) error {
	if len(nodes) == 0 {
		return errors.New("bvh: tree has no root node")
	}

	v := &verifier{
		nodes:       nodes,
		primIndices: primIndices,
		triBounds:   triBounds,
		opts:        opts,
		visited:     make([]bool, len(nodes)),
		claimed:     make([]bool, len(primIndices)),
		covered:     make([]bool, len(triBounds)),
	}

	if err := v.visit(0); err != nil {
		return err
	}

	for nodeIndex, seen := range v.visited {
		if !seen {
			return errors.Errorf("bvh: node %d is not reachable from the root", nodeIndex)
		}
	}
	for triIndex, seen := range v.covered {
		if !seen {
			return errors.Errorf("bvh: triangle %d is not referenced by any leaf", triIndex)
		}
	}
	return nil
}

type verifier struct {
	nodes       []scene.BvhNode
	primIndices []uint32
	triBounds   []types.AABB
	opts        VerifyOptions

	visited []bool
	claimed []bool
	covered []bool
}

func (v *verifier) visit(nodeIndex uint32) error {
	if v.visited[nodeIndex] {
		return errors.Errorf("bvh: node %d is reachable through more than one path", nodeIndex)
	}
	v.visited[nodeIndex] = true

	node := &v.nodes[nodeIndex]
	bbox := node.BBox()
	if node.IsLeaf() {
		return v.visitLeaf(nodeIndex, node, bbox)
	}

	left, right := node.GetChildNodes()
	for _, child := range []uint32{left, right} {
		if child == 0 || int(child) >= len(v.nodes) {
			return errors.Errorf("bvh: node %d references invalid child %d", nodeIndex, child)
		}
		if !bbox.Contains(v.nodes[child].BBox()) {
			return errors.Errorf("bvh: node %d bbox does not enclose child %d", nodeIndex, child)
		}
		if err := v.visit(child); err != nil {
			return err
		}
	}
	return nil
}

func (v *verifier) visitLeaf(nodeIndex uint32, node *scene.BvhNode, bbox types.AABB) error {
	first, count := node.GetPrimitives()
	if int(first)+int(count) > len(v.primIndices) {
		return errors.Errorf("bvh: leaf %d range [%d, %d) exceeds primitive index list length %d", nodeIndex, first, first+count, len(v.primIndices))
	}

	var leafPrims map[uint32]struct{}
	if !v.opts.AllowDuplicates {
		leafPrims = make(map[uint32]struct{}, count)
	}

	for offset := first; offset < first+count; offset++ {
		if v.claimed[offset] {
			return errors.Errorf("bvh: leaf %d range overlaps another leaf at index %d", nodeIndex, offset)
		}
		v.claimed[offset] = true

		prim := v.primIndices[offset]
		if int(prim) >= len(v.triBounds) {
			return errors.Errorf("bvh: leaf %d references invalid triangle %d", nodeIndex, prim)
		}
		v.covered[prim] = true

		if leafPrims != nil {
			if _, dup := leafPrims[prim]; dup {
				return errors.Errorf("bvh: leaf %d references triangle %d more than once", nodeIndex, prim)
			}
			leafPrims[prim] = struct{}{}
		}

		if v.opts.RequireContainment && !bbox.Contains(v.triBounds[prim]) {
			return errors.Errorf("bvh: leaf %d bbox does not enclose triangle %d", nodeIndex, prim)
		}
	}
	return nil
}
