package cmd

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/sivansh11/aurora/asset/compiler/bvh"
	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/asset/scene/reader"
	"github.com/sivansh11/aurora/types"
	"github.com/urfave/cli"
)

// Display compiled scene info.
func ShowSceneInfo(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := loadCompiledScene(ctx)
	if err != nil {
		return err
	}

	logger.Noticef("scene %s information:\n%s", sc.BuildID, sc.Stats())

	st, err := bvh.CollectStats(sc.BvhNodeList)
	if err != nil {
		return errors.Wrapf(err, "scene %s contains a malformed BVH", sc.BuildID)
	}
	logger.Noticef("BVH information:\n%s", bvhStatsTable(st))
	return nil
}

// Check the BVH of a compiled scene for structural errors.
func VerifyScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	sc, err := loadCompiledScene(ctx)
	if err != nil {
		return err
	}

	if err = verifyScene(sc, ctx.Bool("strict")); err != nil {
		return err
	}

	logger.Noticef("scene %s: BVH with %d nodes over %d triangles is valid", sc.BuildID, len(sc.BvhNodeList), len(sc.TriangleList))
	return nil
}

func loadCompiledScene(ctx *cli.Context) (*scene.Scene, error) {
	if ctx.NArg() != 1 {
		return nil, errors.New("missing compiled scene zip file")
	}

	sceneFile := ctx.Args().First()
	if !strings.HasSuffix(sceneFile, ".zip") {
		return nil, errors.New("only compiled scene files with a .zip extension are supported")
	}

	return reader.ReadScene(sceneFile, compiler.DefaultOptions())
}

// Verify the scene BVH. In strict mode every leaf must fully enclose the
// triangles it references, which only holds for scenes compiled without
// presplitting.
func verifyScene(sc *scene.Scene, strict bool) error {
	triBounds := make([]types.AABB, len(sc.TriangleList))
	for index := range sc.TriangleList {
		triBounds[index] = sc.TriangleList[index].BBox()
	}

	err := bvh.Verify(sc.BvhNodeList, sc.PrimitiveIndexList, triBounds, bvh.VerifyOptions{RequireContainment: strict})
	return errors.Wrapf(err, "scene %s failed verification", sc.BuildID)
}

// Render tree statistics as a table.
func bvhStatsTable(st bvh.TreeStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetHeader([]string{"Property", "Value"})
	table.Append([]string{"Nodes", fmt.Sprint(st.Nodes)})
	table.Append([]string{"Leafs", fmt.Sprintf("%d (%d empty)", st.Leafs, st.EmptyLeafs)})
	table.Append([]string{"Max depth", fmt.Sprint(st.MaxDepth)})
	table.Append([]string{"Leaf size", fmt.Sprintf("min %d, max %d, avg %.2f", st.MinLeafSize, st.MaxLeafSize, st.AvgLeafSize)})
	table.Append([]string{"SAH cost", fmt.Sprintf("%.3f", st.SAHCost)})
	table.Render()
	return buf.String()
}
