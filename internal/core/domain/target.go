package domain

import (
	"path/filepath"

	"go.trai.ch/zerr"
)

const (
	// TargetDev is the name of the development build target.
	TargetDev = "dev"
	// TargetTest is the name of the test build target.
	TargetTest = "test"
)

// Target describes one bundle: where it starts and where it is written.
type Target struct {
	// Name identifies the target, e.g. "dev".
	Name string
	// Entry is the entry module path.
	Entry string
	// Build is the output file name.
	Build string
	// Dest is the output directory.
	Dest string
}

// DefaultTargets returns the development and test targets keyed by name.
func DefaultTargets() map[string]Target {
	return map[string]Target{
		TargetDev: {
			Name:  TargetDev,
			Entry: "./index.es6",
			Build: "index.js",
			Dest:  "./public/assets/javascripts",
		},
		TargetTest: {
			Name:  TargetTest,
			Entry: "./spec/javascripts/indexSpec.es6",
			Build: "indexSpec.js",
			Dest:  "./spec/build",
		},
	}
}

// Validate reports whether every field of the target is set.
func (t Target) Validate() error {
	switch {
	case t.Name == "":
		return zerr.With(ErrInvalidTarget, "field", "name")
	case t.Entry == "":
		return zerr.With(zerr.With(ErrInvalidTarget, "field", "entry"), "target", t.Name)
	case t.Build == "":
		return zerr.With(zerr.With(ErrInvalidTarget, "field", "build"), "target", t.Name)
	case t.Dest == "":
		return zerr.With(zerr.With(ErrInvalidTarget, "field", "dest"), "target", t.Name)
	}
	return nil
}

// Resolve returns a copy of the target with Entry and Dest made absolute against root.
func (t Target) Resolve(root string) Target {
	t.Entry = absJoin(root, t.Entry)
	t.Dest = absJoin(root, t.Dest)
	return t
}

// BundlePath is the path of the written bundle.
func (t Target) BundlePath() string {
	return filepath.Join(t.Dest, t.Build)
}

// MapName is the file name of the external source map.
func (t Target) MapName() string {
	return t.Build + ".map"
}

// MapPath is the path of the written source map.
func (t Target) MapPath() string {
	return filepath.Join(t.Dest, t.MapName())
}

func absJoin(root, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
