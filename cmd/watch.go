package cmd

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/compiler"
)

// Watch the given scene files and recompile them whenever they change. The
// folders containing the files are watched instead of the files themselves
// so that editors that replace files on save are also detected. The
// onCompile callback is invoked after each recompilation attempt.
//
// Watching stops when ctx is cancelled.
func watchScenes(ctx context.Context, sceneFiles []string, opts compiler.Options, onCompile func(sceneFile string, err error)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "could not create file watcher")
	}
	defer watcher.Close()

	watched := make(map[string]string, len(sceneFiles))
	for _, sceneFile := range sceneFiles {
		absPath, err := filepath.Abs(sceneFile)
		if err != nil {
			return errors.Wrapf(err, "could not resolve path for %s", sceneFile)
		}
		watched[absPath] = sceneFile

		if err = watcher.Add(filepath.Dir(absPath)); err != nil {
			return errors.Wrapf(err, "could not watch %s", filepath.Dir(absPath))
		}
	}

	logger.Noticef("watching %d scene file(s) for changes", len(watched))
	for {
		select {
		case e := <-watcher.Events:
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}

			absPath, err := filepath.Abs(e.Name)
			if err != nil {
				continue
			}
			sceneFile, ok := watched[absPath]
			if !ok {
				continue
			}

			logger.Noticef("detected change to %s", sceneFile)
			onCompile(sceneFile, compileFile(sceneFile, opts))
		case err := <-watcher.Errors:
			logger.Warningf("file watcher error: %s", err.Error())
		case <-ctx.Done():
			return nil
		}
	}
}
