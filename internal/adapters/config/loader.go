// Package config provides the configuration loader for knit.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

// Loader implements ports.ConfigLoader using a YAML file.
type Loader struct {
	Logger ports.Logger
}

// NewLoader creates a new Loader with the given logger.
func NewLoader(logger ports.Logger) *Loader {
	return &Loader{Logger: logger}
}

// Load reads the configuration for the project in cwd.
// An explicit path must exist; the default knit.yaml is optional.
func (l *Loader) Load(cwd, path string) (*domain.Project, error) {
	explicit := path != ""
	if !explicit {
		path = domain.ConfigFileName
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(cwd, path)
	}

	var knitfile Knitfile
	err := readAndUnmarshalYAML(path, &knitfile)
	switch {
	case err == nil:
	case !explicit && errors.Is(err, fs.ErrNotExist):
		root, absErr := filepath.Abs(cwd)
		if absErr != nil {
			return nil, zerr.Wrap(absErr, domain.ErrFailedToGetRoot.Error())
		}
		return domain.DefaultProject(root), nil
	default:
		return nil, zerr.With(err, "path", path)
	}

	root, err := filepath.Abs(resolveRoot(path, knitfile.Root))
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrFailedToGetRoot.Error())
	}

	project := domain.DefaultProject(root)
	if err := l.applyTargets(project, knitfile.Targets); err != nil {
		return nil, zerr.With(err, "path", path)
	}
	applyOverrides(project, &knitfile)

	return project, nil
}

func (l *Loader) applyTargets(project *domain.Project, overrides map[string]*TargetDTO) error {
	for name, dto := range overrides {
		base, ok := domain.DefaultTargets()[name]
		if !ok {
			return zerr.With(domain.ErrUnknownTarget, "target", name)
		}
		if dto != nil {
			base.Entry = pick(dto.Entry, base.Entry)
			base.Build = pick(dto.Build, base.Build)
			base.Dest = pick(dto.Dest, base.Dest)
		}
		if err := base.Validate(); err != nil {
			return err
		}

		resolved := base.Resolve(project.Root)
		if _, err := os.Stat(resolved.Entry); err != nil && l.Logger != nil {
			l.Logger.Warn(fmt.Sprintf("entry %s of target '%s' does not exist", base.Entry, name))
		}
		project.Targets[name] = resolved
	}
	return nil
}

func applyOverrides(project *domain.Project, knitfile *Knitfile) {
	if r := knitfile.Resolve; r != nil {
		if len(r.Paths) > 0 {
			project.Bundle.Paths = r.Paths
		}
		if len(r.Extensions) > 0 {
			project.Bundle.Extensions = normalizeExtensions(r.Extensions)
		}
	}
	if s := knitfile.Styles; s != nil {
		if len(s.Sources) > 0 {
			project.Styles.Sources = s.Sources
		}
		if len(s.Command) > 0 {
			project.Styles.Command = s.Command
		}
	}
	if d := knitfile.Docs; d != nil && len(d.Command) > 0 {
		project.Docs.Command = d.Command
	}
}

func readAndUnmarshalYAML[T any](configPath string, target *T) error {
	// #nosec G304 -- configPath is chosen by the user
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return zerr.Wrap(err, domain.ErrConfigReadFailed.Error())
	}

	if parseErr := yaml.Unmarshal(configFile, target); parseErr != nil {
		return zerr.Wrap(parseErr, domain.ErrConfigParseFailed.Error())
	}

	return nil
}

func resolveRoot(configPath, root string) string {
	configDir := filepath.Dir(configPath)
	if root == "" {
		return configDir
	}
	if filepath.IsAbs(root) {
		return filepath.Clean(root)
	}
	return filepath.Join(configDir, root)
}

// normalizeExtensions makes sure every extension starts with a dot.
func normalizeExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		out = append(out, ext)
	}
	return out
}

func pick(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
