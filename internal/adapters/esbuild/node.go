package esbuild

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knit/internal/core/ports"
)

const (
	// FactoryNodeID is the unique identifier for the bundler factory Graft node.
	FactoryNodeID graft.ID = "adapter.bundler_factory"
	// MinifierNodeID is the unique identifier for the minifier Graft node.
	MinifierNodeID graft.ID = "adapter.minifier"
)

func init() {
	graft.Register(graft.Node[ports.BundlerFactory]{
		ID:        FactoryNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.BundlerFactory, error) {
			return NewFactory(), nil
		},
	})

	graft.Register(graft.Node[ports.Minifier]{
		ID:        MinifierNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.Minifier, error) {
			return NewMinifier(), nil
		},
	})
}
