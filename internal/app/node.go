package app

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knit/internal/adapters/config"  //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/adapters/logger"  //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/adapters/shell"   //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/builder"
	"go.trai.ch/knit/internal/engine/scheduler"
)

const (
	// AppNodeID is the unique identifier for the main App Graft node.
	AppNodeID graft.ID = "app.main"
	// ComponentsNodeID is the unique identifier for the App components Graft node.
	ComponentsNodeID graft.ID = "app.components"
)

func init() {
	graft.Register(graft.Node[*App]{
		ID:        AppNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			config.NodeID,
			builder.NodeID,
			scheduler.NodeID,
			shell.NodeID,
			watcher.WatcherNodeID,
			logger.NodeID,
		},
		Run: runAppNode,
	})

	graft.Register(graft.Node[*Components]{
		ID:        ComponentsNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{
			AppNodeID,
			logger.NodeID,
		},
		Run: runComponentsNode,
	})
}

func runAppNode(ctx context.Context) (*App, error) {
	loader, err := graft.Dep[ports.ConfigLoader](ctx)
	if err != nil {
		return nil, err
	}

	b, err := graft.Dep[*builder.Builder](ctx)
	if err != nil {
		return nil, err
	}

	sched, err := graft.Dep[*scheduler.Scheduler](ctx)
	if err != nil {
		return nil, err
	}

	executor, err := graft.Dep[ports.Executor](ctx)
	if err != nil {
		return nil, err
	}

	newWatcher, err := graft.Dep[ports.WatcherFactory](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return New(loader, b, sched, executor, newWatcher, log), nil
}

func runComponentsNode(ctx context.Context) (*Components, error) {
	a, err := graft.Dep[*App](ctx)
	if err != nil {
		return nil, err
	}

	log, err := graft.Dep[ports.Logger](ctx)
	if err != nil {
		return nil, err
	}

	return &Components{
		App:    a,
		Logger: log,
	}, nil
}
