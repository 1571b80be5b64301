package esbuild

import (
	"context"
	"errors"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
)

var _ ports.Minifier = (*Minifier)(nil)

// Minifier compresses whole bundles with esbuild's transform API.
type Minifier struct{}

// NewMinifier creates a new Minifier.
func NewMinifier() *Minifier {
	return &Minifier{}
}

// Minify returns the minified code with a fresh inline source map.
func (m *Minifier) Minify(ctx context.Context, name string, code []byte, opts domain.MinifyOptions) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	legal := api.LegalCommentsNone
	if opts.PreserveLegalComments {
		legal = api.LegalCommentsInline
	}

	result := api.Transform(string(code), api.TransformOptions{
		Loader:            api.LoaderJS,
		Sourcefile:        name,
		Sourcemap:         api.SourceMapInline,
		Target:            api.ES2015,
		MinifyWhitespace:  true,
		MinifyIdentifiers: opts.Mangle,
		MinifySyntax:      opts.Compress,
		LegalComments:     legal,
	})
	if len(result.Errors) > 0 {
		formatted := api.FormatMessages(result.Errors, api.FormatMessagesOptions{Kind: api.ErrorMessage})
		return nil, errors.Join(domain.ErrTransformFailed, errors.New(strings.TrimSpace(strings.Join(formatted, ""))))
	}
	return result.Code, nil
}
