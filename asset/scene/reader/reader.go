package reader

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset"
	"github.com/sivansh11/aurora/asset/compiler"
	"github.com/sivansh11/aurora/asset/scene"
)

// The Reader interface is implemented by all scene readers.
type Reader interface {
	// Read scene definition from a resource.
	Read(*asset.Resource) (*scene.Scene, error)
}

// Read scene from file. Wavefront models are compiled using the supplied
// options; compiled scene archives are loaded as-is.
func ReadScene(filename string, opts compiler.Options) (*scene.Scene, error) {
	// Select reader based on file extension
	var reader Reader
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		reader = newWavefrontReader(opts)
	case ".zip":
		reader = newZipSceneReader()
	default:
		return nil, errors.Errorf("readScene: unsupported file format %q", filepath.Ext(filename))
	}

	res, err := asset.NewResource(filename, nil)
	if err != nil {
		return nil, err
	}
	defer res.Close()

	return reader.Read(res)
}
