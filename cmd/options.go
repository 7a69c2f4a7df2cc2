package cmd

import (
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/urfave/cli"
)

// Flags for tuning the scene compiler. Values set on the command line take
// precedence over values loaded from the config file.
var CompilerFlags = []cli.Flag{
	cli.StringFlag{
		Name:  "config, c",
		Usage: "load compiler options from a TOML file",
	},
	cli.Float64Flag{
		Name:  "threshold",
		Value: 0.3,
		Usage: "split triangles whose extent exceeds this fraction of the scene extent",
	},
	cli.BoolFlag{
		Name:  "no-presplit",
		Usage: "build the BVH directly from the triangle bounding boxes",
	},
	cli.IntFlag{
		Name:  "max-split-depth",
		Value: 4,
		Usage: "max number of times a triangle bbox may be recursively split",
	},
	cli.IntFlag{
		Name:  "leaf-size",
		Value: 1,
		Usage: "nodes with this many triangles or fewer always become leafs",
	},
	cli.IntFlag{
		Name:  "max-leaf-size",
		Value: 8,
		Usage: "max number of triangles in a leaf when splitting does not reduce the SAH cost",
	},
	cli.IntFlag{
		Name:  "workers",
		Value: 0,
		Usage: "number of BVH build workers; 0 uses all available CPUs",
	},
}

// Assemble compiler options from the config file and command line flags.
func compilerOptions(ctx *cli.Context) (compiler.Options, error) {
	opts := compiler.DefaultOptions()
	if cfgFile := ctx.String("config"); cfgFile != "" {
		var err error
		if opts, err = compiler.LoadOptions(cfgFile); err != nil {
			return opts, err
		}
		logger.Infof("loaded compiler options from %s", cfgFile)
	}

	if ctx.IsSet("threshold") {
		opts.PresplitThreshold = float32(ctx.Float64("threshold"))
	}
	if ctx.IsSet("no-presplit") {
		opts.DisablePresplit = ctx.Bool("no-presplit")
	}
	if ctx.IsSet("max-split-depth") {
		opts.MaxSplitDepth = ctx.Int("max-split-depth")
	}
	if ctx.IsSet("leaf-size") {
		opts.LeafSize = ctx.Int("leaf-size")
	}
	if ctx.IsSet("max-leaf-size") {
		opts.MaxLeafSize = ctx.Int("max-leaf-size")
	}
	if ctx.IsSet("workers") {
		opts.Workers = ctx.Int("workers")
	}

	return opts, opts.Validate()
}
