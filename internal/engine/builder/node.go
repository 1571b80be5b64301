package builder

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knit/internal/adapters/esbuild"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knit/internal/adapters/logger"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knit/internal/adapters/notify"    //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knit/internal/adapters/telemetry" //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knit/internal/adapters/watcher"   //nolint:depguard // Wired in engine wiring
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/errorsink"
	"go.trai.ch/knit/internal/engine/finisher"
)

// NodeID is the unique identifier for the builder Graft node.
const NodeID graft.ID = "engine.builder"

func init() {
	graft.Register(graft.Node[*Builder]{
		ID:        NodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			esbuild.FactoryNodeID,
			esbuild.MinifierNodeID,
			telemetry.TracerNodeID,
			watcher.ChangeSourceNodeID,
			notify.NodeID,
			logger.NodeID,
		},
		Run: runNode,
	})
}

func runNode(ctx context.Context) (*Builder, error) {
	factory, err := graft.Dep[ports.BundlerFactory](ctx)
	if err != nil {
		return nil, err
	}

	minifier, err := graft.Dep[ports.Minifier](ctx)
	if err != nil {
		return nil, err
	}

	tracer, err := graft.Dep[ports.Tracer](ctx)
	if err != nil {
		return nil, err
	}

	sources, err := graft.Dep[ports.ChangeSourceFactory](ctx)
	if err != nil {
		return nil, err
	}

	notifier, err := graft.Dep[ports.Notifier](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(
		factory,
		finisher.New(minifier, tracer),
		NewRegistry(),
		sources,
		errorsink.New(notifier, log),
		log,
	), nil
}
