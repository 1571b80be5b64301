package ports

import (
	"context"
	"io"

	"go.trai.ch/knit/internal/core/domain"
)

// Bundler owns the module graph and cache of one build target.
//
//go:generate mockgen -source=bundler.go -destination=mocks/mock_bundler.go -package=mocks
type Bundler interface {
	// Bundle runs one bundling pass and returns the raw bundle, which carries an inline source map.
	// Errors are classified as domain.ErrTransformFailed or domain.ErrBundleFailed.
	Bundle(ctx context.Context) (io.Reader, error)

	// Modules returns the absolute paths of the modules in the most recent graph.
	Modules() []string

	// Dispose releases the bundler and its cache.
	Dispose()
}

// BundlerFactory constructs a bundler for a target.
type BundlerFactory interface {
	// NewBundler configures a bundler without touching the filesystem.
	NewBundler(settings domain.BundleSettings, target domain.Target) (Bundler, error)
}

// Minifier compresses a whole bundle.
type Minifier interface {
	// Minify returns the minified code. The inline source map of code, if any, is carried over
	// into an inline source map on the output.
	Minify(ctx context.Context, name string, code []byte, opts domain.MinifyOptions) ([]byte, error)
}
