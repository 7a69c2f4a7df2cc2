package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/sivansh11/aurora/asset/scene/reader"
	"github.com/sivansh11/aurora/asset/scene/writer"
	"github.com/urfave/cli"
)

// Compile scene to binary format.
func CompileScene(ctx *cli.Context) error {
	if err := setupLogging(ctx); err != nil {
		return err
	}

	opts, err := compilerOptions(ctx)
	if err != nil {
		return err
	}

	sceneFiles := make([]string, 0, ctx.NArg())
	for idx := 0; idx < ctx.NArg(); idx++ {
		sceneFile := ctx.Args().Get(idx)
		if !strings.HasSuffix(sceneFile, ".obj") {
			logger.Warningf("skipping unsupported file %s", sceneFile)
			continue
		}
		sceneFiles = append(sceneFiles, sceneFile)
	}
	if len(sceneFiles) == 0 {
		return errors.New("no wavefront scene files specified")
	}

	for _, sceneFile := range sceneFiles {
		if err = compileFile(sceneFile, opts); err != nil {
			if !ctx.Bool("watch") {
				return err
			}
			logger.Error(err.Error())
		}
	}

	if !ctx.Bool("watch") {
		return nil
	}

	sigCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	return watchScenes(sigCtx, sceneFiles, opts, func(sceneFile string, err error) {
		if err != nil {
			logger.Errorf("could not recompile %s: %s", sceneFile, err.Error())
		}
	})
}

// Compile a wavefront scene and write it next to the source file using a
// .zip extension.
func compileFile(sceneFile string, opts compiler.Options) error {
	logger.Noticef("parsing and compiling scene: %s", sceneFile)
	sc, err := reader.ReadScene(sceneFile, opts)
	if err != nil {
		return err
	}

	// Display compiled scene info
	logger.Noticef("scene information:\n%s", sc.Stats())

	return writer.WriteScene(sc, zipFileFor(sceneFile))
}

func zipFileFor(sceneFile string) string {
	return strings.TrimSuffix(sceneFile, filepath.Ext(sceneFile)) + ".zip"
}
