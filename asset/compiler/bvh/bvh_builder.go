package bvh

import (
	"cmp"
	"runtime"
	"time"

	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/log"
	"github.com/sivansh11/aurora/types"
	"go.uber.org/atomic"
	"golang.org/x/exp/slices"
	"golang.org/x/sync/errgroup"
)

type Axis uint8

const (
	XAxis Axis = iota
	YAxis
	ZAxis
)

// Ranges with at least this many primitives are handed off to a worker
// goroutine if one is available.
const parallelThreshold = 1024

// Options controlling BVH construction.
type BuildOptions struct {
	// Ranges with this many primitives or fewer always become leafs.
	LeafSize int

	// Ranges where no split improves on the leaf cost become leafs as
	// long as they contain at most this many primitives; larger ranges
	// are always split.
	MaxLeafSize int

	// SAH cost model constants.
	TraversalCost    float32
	IntersectionCost float32

	// Max number of goroutines used for building subtrees. Values <= 1
	// select a serial build.
	Workers int
}

// Get the default build options.
func DefaultBuildOptions() BuildOptions {
	return BuildOptions{
		LeafSize:         1,
		MaxLeafSize:      8,
		TraversalCost:    1.0,
		IntersectionCost: 1.0,
		Workers:          runtime.NumCPU(),
	}
}

// A BVH tree stored as a flat node list. Leaf nodes index into PrimIndices.
// The root node is always stored at index 0.
type Tree struct {
	Nodes       []scene.BvhNode
	PrimIndices []uint32
}

type stats struct {
	nodes    *atomic.Int32
	leafs    *atomic.Int32
	maxDepth *atomic.Int32
}

func (s *stats) recordDepth(depth int32) {
	for {
		cur := s.maxDepth.Load()
		if depth <= cur || s.maxDepth.CompareAndSwap(cur, depth) {
			return
		}
	}
}

type builder struct {
	logger log.Logger
	opts   BuildOptions

	aabbs     []types.AABB
	centroids []types.Vec3

	// Node slots. A subtree over k primitives owns the 2k-1 slots
	// starting at its root so workers never write to the same slot.
	nodes []scene.BvhNode

	// Primitive indices; each subtree owns a contiguous range.
	prims []uint32

	group *errgroup.Group

	stats stats
}

// Construct a BVH over a set of bounding boxes using a full sweep SAH. The
// returned tree references the input boxes by their index.
//
// Split candidates are evaluated at every primitive position along all
// three axes after sorting by centroid; the cheapest candidate wins with
// ties resolving to the first axis and position tested. The output only
// depends on the input boxes and the cost options; the number of workers
// does not affect it.
func Build(aabbs []types.AABB, opts BuildOptions) *Tree {
	if len(aabbs) == 0 {
		return &Tree{
			Nodes:       []scene.BvhNode{{}},
			PrimIndices: []uint32{},
		}
	}

	if opts.LeafSize < 1 {
		opts.LeafSize = 1
	}
	if opts.MaxLeafSize < opts.LeafSize {
		opts.MaxLeafSize = opts.LeafSize
	}

	b := &builder{
		logger:    log.New("bvh builder"),
		opts:      opts,
		aabbs:     aabbs,
		centroids: make([]types.Vec3, len(aabbs)),
		nodes:     make([]scene.BvhNode, 2*len(aabbs)-1),
		prims:     make([]uint32, len(aabbs)),
		stats: stats{
			nodes:    atomic.NewInt32(0),
			leafs:    atomic.NewInt32(0),
			maxDepth: atomic.NewInt32(0),
		},
	}
	for index, bbox := range aabbs {
		b.centroids[index] = bbox.Center()
		b.prims[index] = uint32(index)
	}

	if opts.Workers > 1 {
		b.group = &errgroup.Group{}
		b.group.SetLimit(opts.Workers)
	}

	start := time.Now()
	b.partition(0, 0, len(aabbs), 0)
	if b.group != nil {
		// Subtree builds never fail.
		_ = b.group.Wait()
	}

	tree := &Tree{
		Nodes:       compactNodes(b.nodes),
		PrimIndices: b.prims,
	}

	b.logger.Debugf(
		"BVH tree build time: %d ms, prims: %d, maxDepth: %d, nodes: %d, leafs: %d",
		time.Since(start).Nanoseconds()/1e6,
		len(aabbs), b.stats.maxDepth.Load(), b.stats.nodes.Load(), b.stats.leafs.Load(),
	)
	return tree
}

// Build the subtree for prims[first:last] rooted at the given node slot.
func (b *builder) partition(slot uint32, first, last int, depth int32) {
	b.stats.recordDepth(depth)
	b.stats.nodes.Inc()

	prims := b.prims[first:last]
	bbox := types.EmptyAABB()
	for _, prim := range prims {
		bbox = bbox.Union(b.aabbs[prim])
	}

	node := &b.nodes[slot]
	node.SetBBox(bbox)

	count := len(prims)
	if count <= b.opts.LeafSize {
		b.createLeaf(node, first, count)
		return
	}

	axis, split, cost := b.findSplit(prims, bbox)
	leafCost := b.opts.IntersectionCost * float32(count)
	if cost >= leafCost && count <= b.opts.MaxLeafSize {
		b.createLeaf(node, first, count)
		return
	}

	// Put primitives in the order evaluated for the winning axis; the
	// first split entries form the left child.
	b.sortByCentroid(prims, axis)

	leftSlot := slot + 1
	rightSlot := slot + uint32(2*split)
	node.SetChildNodes(leftSlot, rightSlot)

	mid := first + split
	if b.group != nil && split >= parallelThreshold {
		if b.group.TryGo(func() error {
			b.partition(leftSlot, first, mid, depth+1)
			return nil
		}) {
			b.partition(rightSlot, mid, last, depth+1)
			return
		}
	}

	b.partition(leftSlot, first, mid, depth+1)
	b.partition(rightSlot, mid, last, depth+1)
}

func (b *builder) createLeaf(node *scene.BvhNode, first, count int) {
	node.SetPrimitives(uint32(first), uint32(count))
	b.stats.leafs.Inc()
}

// Evaluate SAH split candidates along each axis and return the best axis,
// the number of primitives that go to the left child and the split cost.
func (b *builder) findSplit(prims []uint32, bbox types.AABB) (axis Axis, split int, cost float32) {
	count := len(prims)
	parentArea := bbox.SurfaceArea()

	// All boxes collapse to a point or a line; there is no meaningful SAH
	// so fall back to an object median split.
	if parentArea == 0 {
		return XAxis, count / 2, b.opts.TraversalCost + b.opts.IntersectionCost*float32(count)
	}

	sorted := make([]uint32, count)
	rightArea := make([]float32, count)

	bestCost := float32(0)
	bestAxis := XAxis
	bestSplit := 0
	for a := XAxis; a <= ZAxis; a++ {
		copy(sorted, prims)
		b.sortByCentroid(sorted, a)

		// Sweep from the right to get the area of every suffix.
		acc := types.EmptyAABB()
		for i := count - 1; i > 0; i-- {
			acc = acc.Union(b.aabbs[sorted[i]])
			rightArea[i] = acc.SurfaceArea()
		}

		// Sweep from the left and score each split position.
		acc = types.EmptyAABB()
		for i := 1; i < count; i++ {
			acc = acc.Union(b.aabbs[sorted[i-1]])
			c := b.opts.TraversalCost + b.opts.IntersectionCost*
				(acc.SurfaceArea()*float32(i)+rightArea[i]*float32(count-i))/parentArea
			if bestSplit == 0 || c < bestCost {
				bestCost = c
				bestAxis = a
				bestSplit = i
			}
		}
	}

	return bestAxis, bestSplit, bestCost
}

// Sort primitives by their centroid along axis. Equal centroids are
// ordered by primitive index so the result is deterministic.
func (b *builder) sortByCentroid(prims []uint32, axis Axis) {
	slices.SortFunc(prims, func(p1, p2 uint32) int {
		if c := cmp.Compare(b.centroids[p1][axis], b.centroids[p2][axis]); c != 0 {
			return c
		}
		return cmp.Compare(p1, p2)
	})
}

// Drop unused node slots by renumbering the reachable nodes in depth-first
// order. The root stays at index 0 and every left child directly follows
// its parent.
func compactNodes(slots []scene.BvhNode) []scene.BvhNode {
	out := make([]scene.BvhNode, 0, len(slots))

	var visit func(slot uint32) uint32
	visit = func(slot uint32) uint32 {
		nodeIndex := uint32(len(out))
		out = append(out, slots[slot])
		if slots[slot].IsLeaf() {
			return nodeIndex
		}

		left, right := slots[slot].GetChildNodes()
		leftIndex := visit(left)
		rightIndex := visit(right)
		out[nodeIndex].SetChildNodes(leftIndex, rightIndex)
		return nodeIndex
	}
	visit(0)

	return out
}
