package writer

import (
	"archive/zip"
	"encoding/gob"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/scene"
	"github.com/sivansh11/aurora/log"
)

const (
	dataFile = "scene.bin"
)

type zipSceneWriter struct {
	logger   log.Logger
	filename string
}

// Create a new zip scene writer.
func newZipSceneWriter(filename string) *zipSceneWriter {
	return &zipSceneWriter{
		logger:   log.New("zip writer"),
		filename: filename,
	}
}

// Write a gob-encoded copy of the scene into a zip archive. The archive is
// written to a temp file in the target folder and then renamed so readers
// never observe a partially written scene.
func (w *zipSceneWriter) Write(sc *scene.Scene) error {
	w.logger.Noticef(`writing compiled scene to "%s"`, w.filename)
	start := time.Now()

	tmpFile, err := os.CreateTemp(filepath.Dir(w.filename), filepath.Base(w.filename)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "zipSceneWriter")
	}
	tmpName := tmpFile.Name()
	defer os.Remove(tmpName)

	err = w.encode(tmpFile, sc)
	if closeErr := tmpFile.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return errors.Wrapf(err, "zipSceneWriter: could not write %s", w.filename)
	}

	if err = os.Rename(tmpName, w.filename); err != nil {
		return errors.Wrap(err, "zipSceneWriter")
	}

	w.logger.Noticef("wrote scene %s in %d ms", sc.BuildID, time.Since(start).Nanoseconds()/1e6)
	return nil
}

func (w *zipSceneWriter) encode(f *os.File, sc *scene.Scene) error {
	zw := zip.NewWriter(f)
	entry, err := zw.Create(dataFile)
	if err != nil {
		return err
	}

	if err = gob.NewEncoder(entry).Encode(sc); err != nil {
		return err
	}
	return zw.Close()
}
