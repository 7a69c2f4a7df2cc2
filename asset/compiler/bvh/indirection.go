package bvh

// Leafs with at most this many entries are deduplicated with a linear scan.
const dedupScanLimit = 16

// Rewrite the primitive indices of tree so they point to the triangles that
// produced each presplit box instead of the boxes themselves. Node ranges
// are not modified.
func RemoveIndirection(tree *Tree, backRefs []uint32) {
	for index, prim := range tree.PrimIndices {
		tree.PrimIndices[index] = backRefs[prim]
	}
}

// Remove repeated primitive indices inside each leaf. The first occurrence
// of each index is kept and the leaf count shrinks accordingly; entries past
// the new count are left in place but are no longer referenced.
func RemoveDuplicates(tree *Tree) {
	var seen map[uint32]struct{}

	for nodeIndex := range tree.Nodes {
		node := &tree.Nodes[nodeIndex]
		if !node.IsLeaf() {
			continue
		}

		first, count := node.GetPrimitives()
		if count < 2 {
			continue
		}

		prims := tree.PrimIndices[first : first+count]
		var kept int
		if count <= dedupScanLimit {
			kept = dedupScan(prims)
		} else {
			if seen == nil {
				seen = make(map[uint32]struct{}, count)
			}
			kept = dedupSet(prims, seen)
		}

		node.SetPrimitives(first, uint32(kept))
	}
}

func dedupScan(prims []uint32) int {
	kept := 0
	for _, prim := range prims {
		dup := false
		for _, k := range prims[:kept] {
			if k == prim {
				dup = true
				break
			}
		}
		if !dup {
			prims[kept] = prim
			kept++
		}
	}
	return kept
}

func dedupSet(prims []uint32, seen map[uint32]struct{}) int {
	clear(seen)

	kept := 0
	for _, prim := range prims {
		if _, dup := seen[prim]; dup {
			continue
		}
		seen[prim] = struct{}{}
		prims[kept] = prim
		kept++
	}
	return kept
}
