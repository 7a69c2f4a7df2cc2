package compiler

import (
	"time"

	"github.com/google/uuid"
	"github.com/sivansh11/aurora/asset/compiler/bvh"
	"github.com/sivansh11/aurora/asset/compiler/input"
	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/log"
	"github.com/sivansh11/aurora/types"
)

type sceneCompiler struct {
	parsedScene    *input.Scene
	optimizedScene *scene.Scene
	opts           Options
	logger         log.Logger

	// Flattened scene triangles and their bounding boxes.
	triangles []bvh.Triangle
	triBounds []types.AABB
}

// Compile a scene representation parsed by a scene reader into a GPU-friendly
// optimized scene format.
func Compile(parsedScene *input.Scene, opts Options) (*scene.Scene, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	compiler := &sceneCompiler{
		parsedScene: parsedScene,
		optimizedScene: &scene.Scene{
			BuildID: uuid.New().String(),
		},
		opts:   opts,
		logger: log.New("scene compiler"),
	}

	start := time.Now()
	compiler.logger.Noticef("compiling scene %s", compiler.optimizedScene.BuildID)

	compiler.extractGeometry()
	compiler.partitionGeometry()

	compiler.logger.Noticef("compiled scene in %d ms", time.Since(start).Nanoseconds()/1e6)
	return compiler.optimizedScene, nil
}

// Flatten mesh triangles into the scene triangle list.
func (sc *sceneCompiler) extractGeometry() {
	start := time.Now()
	sc.logger.Infof("extracting geometry (%d meshes)", len(sc.parsedScene.Meshes))

	sc.triangles, sc.triBounds = bvh.ExtractTriangles(sc.parsedScene.Meshes)

	sc.optimizedScene.TriangleList = make([]scene.Triangle, len(sc.triangles))
	for index, tri := range sc.triangles {
		sc.optimizedScene.TriangleList[index] = scene.Triangle{
			V0:         tri.Vertices[0],
			V1:         tri.Vertices[1],
			V2:         tri.Vertices[2],
			MeshIndex:  tri.MeshIndex,
			LocalIndex: tri.LocalIndex,
		}
	}

	sc.optimizedScene.MeshList = make([]scene.MeshInfo, len(sc.parsedScene.Meshes))
	var triOffset uint32 = 0
	for index, mesh := range sc.parsedScene.Meshes {
		count := uint32(mesh.TriangleCount())
		sc.optimizedScene.MeshList[index] = scene.MeshInfo{
			Name:           mesh.Name,
			TriangleOffset: triOffset,
			TriangleCount:  count,
		}
		triOffset += count
	}

	sc.logger.Infof("extracted %d triangles in %d ms", len(sc.triangles), time.Since(start).Nanoseconds()/1e6)
}

// Build a BVH over the scene triangles. Large triangles are presplit into
// multiple boxes before building the tree; once the tree is built its
// primitive indices are mapped back to triangle indices and any repeated
// triangle references in each leaf are removed.
func (sc *sceneCompiler) partitionGeometry() {
	start := time.Now()
	sc.logger.Notice("partitioning geometry")

	var aabbs []types.AABB
	var backRefs []uint32
	if sc.opts.DisablePresplit {
		aabbs, backRefs = sc.triBounds, bvh.IdentityRefs(len(sc.triBounds))
	} else {
		stageStart := time.Now()
		aabbs, backRefs = bvh.Presplit(sc.triBounds, sc.triangles, sc.opts.PresplitThreshold, sc.opts.MaxSplitDepth)
		sc.logger.Infof(
			"presplit %d triangles into %d boxes in %d ms",
			len(sc.triBounds), len(aabbs), time.Since(stageStart).Nanoseconds()/1e6,
		)
	}

	stageStart := time.Now()
	tree := bvh.Build(aabbs, sc.opts.BuildOptions())
	sc.logger.Infof("built BVH with %d nodes in %d ms", len(tree.Nodes), time.Since(stageStart).Nanoseconds()/1e6)

	if !sc.opts.DisablePresplit {
		stageStart = time.Now()
		bvh.RemoveIndirection(tree, backRefs)
		bvh.RemoveDuplicates(tree)
		sc.logger.Infof("resolved presplit references in %d ms", time.Since(stageStart).Nanoseconds()/1e6)
	}

	sc.optimizedScene.BvhNodeList = tree.Nodes
	sc.optimizedScene.PrimitiveIndexList = tree.PrimIndices

	sc.logger.Noticef("partitioned geometry in %d ms", time.Since(start).Nanoseconds()/1e6)
}
