package esbuild

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

// PluginName identifies the transform plugin in bundler messages.
const PluginName = "knit-transform"

// sourceFilter selects the modules the transform applies to.
const sourceFilter = `\.(js|jsx|es6|es)$`

var presets = map[string]api.Target{
	domain.PresetES2015: api.ES2015,
}

// TransformError carries the diagnostics of a module that failed to transform.
type TransformError struct {
	Messages []api.Message
}

func (e *TransformError) Error() string {
	texts := make([]string, 0, len(e.Messages))
	for _, msg := range e.Messages {
		texts = append(texts, msg.Text)
	}
	return strings.Join(texts, "\n")
}

// Transformer lowers a single module's source according to a domain.TransformConfig.
//
// Syntax newer than the preset is lowered to it. ES2015 syntax itself is kept:
// classes, arrow functions, template literals and let/const pass through unchanged,
// since esbuild cannot lower them to ES5 and no Go library does. The
// transform-es2015-classes plugin is therefore only validated and has no effect
// on the output, loose or not.
type Transformer struct {
	root          string
	target        api.Target
	protoToAssign bool
	sourceMaps    bool
}

// NewTransformer validates cfg and returns a Transformer for modules under root.
func NewTransformer(root string, cfg domain.TransformConfig) (*Transformer, error) {
	target, ok := presets[cfg.Preset]
	if !ok {
		return nil, zerr.With(domain.ErrUnknownPreset, "preset", cfg.Preset)
	}

	t := &Transformer{root: root, target: target, sourceMaps: cfg.SourceMaps}
	for _, plugin := range cfg.Plugins {
		switch plugin.Name {
		case domain.PluginProtoToAssign:
			t.protoToAssign = true
		case domain.PluginClasses:
		default:
			return nil, zerr.With(domain.ErrUnknownTransformPlugin, "plugin", plugin.Name)
		}
	}
	return t, nil
}

// Transform returns the lowered source of the module at path.
// Syntax errors are reported as a *TransformError.
func (t *Transformer) Transform(path string, source []byte) ([]byte, error) {
	if t.protoToAssign {
		source = rewriteProtoAssignments(source)
	}

	opts := api.TransformOptions{
		Loader:     loaderFor(path),
		Sourcefile: t.displayPath(path),
		Target:     t.target,
		Sourcemap:  api.SourceMapNone,
	}
	if t.sourceMaps {
		opts.Sourcemap = api.SourceMapInline
	}

	result := api.Transform(string(source), opts)
	if len(result.Errors) > 0 {
		return nil, &TransformError{Messages: result.Errors}
	}
	return result.Code, nil
}

// Plugin installs the transform as an esbuild load hook for project sources.
func (t *Transformer) Plugin() api.Plugin {
	return api.Plugin{
		Name: PluginName,
		Setup: func(build api.PluginBuild) {
			build.OnLoad(api.OnLoadOptions{Filter: sourceFilter, Namespace: "file"},
				func(args api.OnLoadArgs) (api.OnLoadResult, error) {
					if isDependency(args.Path) {
						return api.OnLoadResult{}, nil
					}

					// #nosec G304 -- paths come from the bundler's resolver
					source, err := os.ReadFile(args.Path)
					if err != nil {
						return api.OnLoadResult{}, err
					}

					code, err := t.Transform(args.Path, source)
					if err != nil {
						var transformErr *TransformError
						if errors.As(err, &transformErr) {
							return api.OnLoadResult{Errors: transformErr.Messages}, nil
						}
						return api.OnLoadResult{}, err
					}

					contents := string(code)
					return api.OnLoadResult{
						Contents:   &contents,
						ResolveDir: filepath.Dir(args.Path),
						Loader:     api.LoaderJS,
					}, nil
				})
		},
	}
}

func (t *Transformer) displayPath(path string) string {
	if rel, err := filepath.Rel(t.root, path); err == nil && !strings.HasPrefix(rel, "..") {
		return filepath.ToSlash(rel)
	}
	return path
}

func isDependency(path string) bool {
	return strings.Contains(filepath.ToSlash(path), "/node_modules/")
}

func loaderFor(path string) api.Loader {
	if filepath.Ext(path) == ".jsx" {
		return api.LoaderJSX
	}
	return api.LoaderJS
}
