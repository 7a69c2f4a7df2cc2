package compiler

import (
	"os"
	"runtime"

	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	"github.com/sivansh11/aurora/asset/compiler/bvh"
)

var (
	ErrInvalidThreshold  = errors.New("presplit threshold must be greater than 0")
	ErrInvalidSplitDepth = errors.New("max split depth must not be negative")
	ErrInvalidLeafSize   = errors.New("leaf size must be at least 1 and not exceed the max leaf size")
	ErrInvalidCost       = errors.New("SAH costs must be greater than 0")
)

// Options for compiling a scene. The zero value is not usable; start from
// DefaultOptions and override the fields of interest.
type Options struct {
	// Boxes whose extent along their longest axis exceeds this fraction of
	// the scene extent along the same axis get split before building the
	// BVH.
	PresplitThreshold float32 `toml:"presplit_threshold"`

	// Build the BVH directly from the triangle bounding boxes.
	DisablePresplit bool `toml:"disable_presplit"`

	// Max number of times a triangle bbox may be recursively split.
	MaxSplitDepth int `toml:"max_split_depth"`

	// BVH leaf sizing; see bvh.BuildOptions.
	LeafSize    int `toml:"leaf_size"`
	MaxLeafSize int `toml:"max_leaf_size"`

	TraversalCost    float32 `toml:"traversal_cost"`
	IntersectionCost float32 `toml:"intersection_cost"`

	// Number of workers used for building the BVH. A value of 0 selects
	// the number of available CPUs.
	Workers int `toml:"workers"`
}

// Get the default compiler options.
func DefaultOptions() Options {
	return Options{
		PresplitThreshold: 0.3,
		MaxSplitDepth:     4,
		LeafSize:          1,
		MaxLeafSize:       8,
		TraversalCost:     1.0,
		IntersectionCost:  1.0,
		Workers:           runtime.NumCPU(),
	}
}

// Load options from a TOML file. Settings missing from the file keep their
// default values.
func LoadOptions(path string) (Options, error) {
	opts := DefaultOptions()

	f, err := os.Open(path)
	if err != nil {
		return opts, errors.Wrap(err, "could not open compiler config")
	}
	defer f.Close()

	decoder := toml.NewDecoder(f)
	decoder.DisallowUnknownFields()
	if err = decoder.Decode(&opts); err != nil {
		return opts, errors.Wrapf(err, "could not parse compiler config %q", path)
	}

	if err = opts.Validate(); err != nil {
		return opts, errors.Wrapf(err, "invalid compiler config %q", path)
	}
	return opts, nil
}

// Check that the options are usable.
func (o Options) Validate() error {
	if !o.DisablePresplit && !(o.PresplitThreshold > 0) {
		return errors.Wrapf(ErrInvalidThreshold, "got %v", o.PresplitThreshold)
	}
	if o.MaxSplitDepth < 0 {
		return errors.Wrapf(ErrInvalidSplitDepth, "got %d", o.MaxSplitDepth)
	}
	if o.LeafSize < 1 || o.MaxLeafSize < o.LeafSize {
		return errors.Wrapf(ErrInvalidLeafSize, "got leaf size %d and max leaf size %d", o.LeafSize, o.MaxLeafSize)
	}
	if !(o.TraversalCost > 0) || !(o.IntersectionCost > 0) {
		return errors.Wrapf(ErrInvalidCost, "got traversal cost %v and intersection cost %v", o.TraversalCost, o.IntersectionCost)
	}
	return nil
}

// Get the BVH builder options that correspond to these options.
func (o Options) BuildOptions() bvh.BuildOptions {
	workers := o.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	return bvh.BuildOptions{
		LeafSize:         o.LeafSize,
		MaxLeafSize:      o.MaxLeafSize,
		TraversalCost:    o.TraversalCost,
		IntersectionCost: o.IntersectionCost,
		Workers:          workers,
	}
}
