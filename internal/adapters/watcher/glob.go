package watcher

import (
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

// GlobFilter matches paths under a root against a set of slash-separated globs.
type GlobFilter struct {
	root     string
	patterns []string
	globs    []glob.Glob
}

// NewGlobFilter compiles patterns relative to root. A leading "./" is ignored.
func NewGlobFilter(root string, patterns []string) (*GlobFilter, error) {
	f := &GlobFilter{root: root}
	for _, pattern := range patterns {
		clean := strings.TrimPrefix(filepath.ToSlash(pattern), "./")
		g, err := glob.Compile(clean, '/')
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, domain.ErrInvalidGlob.Error()), "pattern", pattern)
		}
		f.patterns = append(f.patterns, clean)
		f.globs = append(f.globs, g)
	}
	return f, nil
}

// Match reports whether path, absolute or relative to the root, matches any pattern.
func (f *GlobFilter) Match(path string) bool {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(f.root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
		path = rel
	}
	path = filepath.ToSlash(path)

	for _, g := range f.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

// Base returns the deepest directory that contains every possible match.
func (f *GlobFilter) Base() string {
	var common []string
	for i, pattern := range f.patterns {
		dirs := staticDirs(pattern)
		if i == 0 {
			common = dirs
			continue
		}
		n := 0
		for n < len(common) && n < len(dirs) && common[n] == dirs[n] {
			n++
		}
		common = common[:n]
	}
	return filepath.Join(append([]string{f.root}, common...)...)
}

// staticDirs returns the leading directory segments of pattern that contain no glob syntax.
func staticDirs(pattern string) []string {
	segments := strings.Split(pattern, "/")
	var dirs []string
	for _, seg := range segments[:len(segments)-1] {
		if strings.ContainsAny(seg, "*?[]{}!\\") {
			break
		}
		dirs = append(dirs, seg)
	}
	return dirs
}
