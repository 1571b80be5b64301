// Package esbuild adapts the esbuild bundler, transformer and minifier to the knit ports.
package esbuild

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.BundlerFactory = (*Factory)(nil)

// Factory creates esbuild-backed bundlers.
type Factory struct{}

// NewFactory creates a new Factory.
func NewFactory() *Factory {
	return &Factory{}
}

// NewBundler configures a bundler for target. No build runs until Bundle is called.
func (f *Factory) NewBundler(settings domain.BundleSettings, target domain.Target) (ports.Bundler, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}

	transformer, err := NewTransformer(settings.Root, settings.Transform)
	if err != nil {
		return nil, zerr.With(err, "target", target.Name)
	}

	target = target.Resolve(settings.Root)
	build, ctxErr := api.Context(buildOptions(settings, target, transformer.Plugin()))
	if ctxErr != nil {
		return nil, classify(ctxErr.Errors, settings.Root)
	}

	return &Bundler{
		build:   build,
		root:    settings.Root,
		target:  target,
		modules: []string{target.Entry},
	}, nil
}

func buildOptions(settings domain.BundleSettings, target domain.Target, plugin api.Plugin) api.BuildOptions {
	nodePaths := make([]string, 0, len(settings.Paths))
	for _, p := range settings.Paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(settings.Root, p)
		}
		nodePaths = append(nodePaths, p)
	}

	loaders := make(map[string]api.Loader, len(settings.Extensions))
	for _, ext := range settings.Extensions {
		loaders[ext] = api.LoaderJS
	}

	return api.BuildOptions{
		AbsWorkingDir:     settings.Root,
		EntryPoints:       []string{target.Entry},
		Outfile:           target.BundlePath(),
		Bundle:            true,
		Write:             false,
		Metafile:          true,
		Sourcemap:         api.SourceMapInline,
		Platform:          api.PlatformBrowser,
		Format:            api.FormatIIFE,
		Target:            api.ES2015,
		NodePaths:         nodePaths,
		ResolveExtensions: append([]string{".jsx", ".js", ".json"}, settings.Extensions...),
		Loader:            loaders,
		Plugins:           []api.Plugin{plugin},
		LogLevel:          api.LogLevelSilent,
	}
}

// Bundler is a persistent esbuild build context for one target.
type Bundler struct {
	build  api.BuildContext
	root   string
	target domain.Target

	mu      sync.Mutex
	modules []string
}

// Bundle runs one incremental pass and returns the bundle with its inline source map.
func (b *Bundler) Bundle(ctx context.Context) (io.Reader, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stop := context.AfterFunc(ctx, b.build.Cancel)
	result := b.build.Rebuild()
	stop()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(result.Errors) > 0 {
		b.keepFailedModules(result.Errors)
		return nil, classify(result.Errors, b.root)
	}

	modules, err := metafileInputs(result.Metafile, b.root)
	if err != nil {
		return nil, errors.Join(domain.ErrBundleFailed, err)
	}
	b.setModules(modules)

	for _, file := range result.OutputFiles {
		if file.Path == b.target.BundlePath() {
			return bytes.NewReader(file.Contents), nil
		}
	}
	if len(result.OutputFiles) > 0 {
		return bytes.NewReader(result.OutputFiles[0].Contents), nil
	}
	return nil, zerr.With(zerr.Wrap(domain.ErrBundleFailed, "bundle produced no output"), "target", b.target.Name)
}

// Modules returns the absolute paths of the modules in the last graph.
func (b *Bundler) Modules() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return slices.Clone(b.modules)
}

// Dispose releases the esbuild context.
func (b *Bundler) Dispose() {
	b.build.Dispose()
}

func (b *Bundler) setModules(modules []string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.modules = modules
}

// keepFailedModules keeps the last known graph and adds the files the errors point at,
// so a fix to a broken module is still noticed.
func (b *Bundler) keepFailedModules(msgs []api.Message) {
	b.mu.Lock()
	defer b.mu.Unlock()

	modules := append(slices.Clone(b.modules), b.target.Entry)
	for _, msg := range msgs {
		if msg.Location == nil || msg.Location.File == "" {
			continue
		}
		modules = append(modules, absolute(b.root, msg.Location.File))
	}
	slices.Sort(modules)
	b.modules = slices.Compact(modules)
}

type metafile struct {
	Inputs map[string]json.RawMessage `json:"inputs"`
}

// metafileInputs returns the absolute, sorted paths of the file inputs of a build.
func metafileInputs(raw, root string) ([]string, error) {
	var meta metafile
	if err := json.Unmarshal([]byte(raw), &meta); err != nil {
		return nil, zerr.Wrap(err, "failed to parse bundler metafile")
	}

	modules := make([]string, 0, len(meta.Inputs))
	for path := range meta.Inputs {
		if hasNamespace(path) {
			continue
		}
		modules = append(modules, absolute(root, path))
	}
	slices.Sort(modules)
	return modules, nil
}

// classify turns bundler messages into a domain error. Messages raised by the transform plugin
// are transform failures, everything else is a bundle failure.
func classify(msgs []api.Message, root string) error {
	sentinel := domain.ErrBundleFailed
	for _, msg := range msgs {
		if msg.PluginName == PluginName {
			sentinel = domain.ErrTransformFailed
			break
		}
	}

	formatted := api.FormatMessages(msgs, api.FormatMessagesOptions{Kind: api.ErrorMessage})
	text := strings.TrimSpace(strings.Join(formatted, ""))
	text = strings.ReplaceAll(text, root+string(filepath.Separator), "")
	return errors.Join(sentinel, errors.New(text))
}

// hasNamespace reports whether a metafile input lives outside the file namespace, e.g. "data:...".
func hasNamespace(path string) bool {
	i := strings.Index(path, ":")
	return i > 1 && !filepath.IsAbs(path)
}

func absolute(root, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(root, filepath.FromSlash(path))
}
