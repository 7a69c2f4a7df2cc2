package main

import (
	"os"

	"github.com/sivansh11/aurora/cmd"
	"github.com/sivansh11/aurora/log"
	"github.com/urfave/cli"
)

func main() {
	cli.VersionFlag = cli.BoolFlag{
		Name:  "version",
		Usage: "print only the version",
	}

	app := cli.NewApp()
	app.Name = "aurora"
	app.Usage = "compile triangle scenes into GPU-ready BVH acceleration structures"
	app.Version = "0.1.0"
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:  "v",
			Usage: "enable verbose logging",
		},
		cli.BoolFlag{
			Name:  "vv",
			Usage: "enable even more verbose logging",
		},
		cli.StringFlag{
			Name:  "log-level",
			Usage: "set log level (debug, info, notice, warning, error)",
		},
	}
	app.Commands = []cli.Command{
		{
			Name:  "compile",
			Usage: "compile wavefront scenes into a binary compressed format",
			Description: `
Parse a scene definition from a wavefront obj file, presplit large triangles,
build a BVH tree to optimize ray intersection tests and package the scene
geometry in a GPU-friendly format.

The optimized scene data is written to a zip archive next to each input file.
With --watch the command keeps running and recompiles a scene whenever its
source file changes.`,
			ArgsUsage: "scene_file1.obj scene_file2.obj ...",
			Flags: append(
				append([]cli.Flag{}, cmd.CompilerFlags...),
				cli.BoolFlag{
					Name:  "watch, w",
					Usage: "recompile scenes when their source files change",
				},
			),
			Action: cmd.CompileScene,
		},
		{
			Name:      "info",
			Usage:     "display compiled scene and BVH statistics",
			ArgsUsage: "scene_file.zip",
			Action:    cmd.ShowSceneInfo,
		},
		{
			Name:      "verify",
			Usage:     "check the BVH of a compiled scene for structural errors",
			ArgsUsage: "scene_file.zip",
			Flags: []cli.Flag{
				cli.BoolFlag{
					Name:  "strict",
					Usage: "require leafs to fully enclose their triangles (scenes compiled with --no-presplit)",
				},
			},
			Action: cmd.VerifyScene,
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.New("aurora").Error(err.Error())
		os.Exit(1)
	}
}
