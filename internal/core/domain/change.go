package domain

import (
	"path/filepath"
	"regexp"
)

// versionFile matches the generated version module whose touches are not real source changes.
var versionFile = regexp.MustCompile(`/version\.js$`)

// ChangeEvent is one batch of changed module paths reported by the watch mechanism.
type ChangeEvent struct {
	Paths []string
}

// NewChangeEvent creates a ChangeEvent from the given paths.
func NewChangeEvent(paths []string) ChangeEvent {
	return ChangeEvent{Paths: paths}
}

// VersionOnly reports whether the batch is exactly one path and that path is the version module.
func (e ChangeEvent) VersionOnly() bool {
	return len(e.Paths) == 1 && versionFile.MatchString(filepath.ToSlash(e.Paths[0]))
}

// ShouldRebuild reports whether the batch warrants a rebuild.
func (e ChangeEvent) ShouldRebuild() bool {
	return !e.VersionOnly()
}
