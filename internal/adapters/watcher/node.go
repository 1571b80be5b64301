package watcher

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/knit/internal/adapters/logger"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
)

const (
	// ChangeSourceNodeID is the unique identifier for the change source factory Graft node.
	ChangeSourceNodeID graft.ID = "adapter.change_source"
	// WatcherNodeID is the unique identifier for the file watcher factory Graft node.
	WatcherNodeID graft.ID = "adapter.watcher"
)

func init() {
	graft.Register(graft.Node[ports.ChangeSourceFactory]{
		ID:        ChangeSourceNodeID,
		Cacheable: true,
		Run: func(_ context.Context) (ports.ChangeSourceFactory, error) {
			return NewPollerFactory(domain.DefaultPollInterval), nil
		},
	})

	graft.Register(graft.Node[ports.WatcherFactory]{
		ID:        WatcherNodeID,
		Cacheable: true,
		DependsOn: []graft.ID{logger.NodeID},
		Run: func(ctx context.Context) (ports.WatcherFactory, error) {
			log, err := graft.Dep[ports.Logger](ctx)
			if err != nil {
				return nil, err
			}
			return NewWatcherFactory(log), nil
		},
	})
}
