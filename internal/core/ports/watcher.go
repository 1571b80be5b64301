package ports

import (
	"context"
	"iter"
)

// ChangeSource reports batches of changed module paths.
//
//go:generate mockgen -source=watcher.go -destination=mocks/mock_watcher.go -package=mocks
type ChangeSource interface {
	// OnChange subscribes handler to change batches and returns a function that unsubscribes it.
	// Handlers run one at a time; batches detected while a handler runs are delivered after it returns.
	OnChange(handler func(paths []string)) (unsubscribe func())

	// Run detects changes until ctx is canceled.
	Run(ctx context.Context) error
}

// ChangeSourceFactory creates a change source that watches the files returned by files.
type ChangeSourceFactory func(files func() []string) ChangeSource

// WatchOp represents the type of file system operation.
type WatchOp uint8

const (
	// OpCreate indicates a file or directory was created.
	OpCreate WatchOp = iota
	// OpWrite indicates a file was modified.
	OpWrite
	// OpRemove indicates a file or directory was removed.
	OpRemove
	// OpRename indicates a file or directory was renamed.
	OpRename
)

// WatchEvent represents a file system event from the watcher.
type WatchEvent struct {
	// Path is the absolute path of the file or directory that changed.
	Path string
	// Operation is the type of change that occurred.
	Operation WatchOp
}

// Watcher defines the interface for watching file system changes.
type Watcher interface {
	// Start begins watching the given root directory recursively.
	// It returns an error if the watcher fails to start.
	Start(ctx context.Context, root string) error
	// Stop stops the watcher and releases all resources.
	Stop() error
	// Events returns an iterator of file system events.
	Events() iter.Seq[WatchEvent]
}

// WatcherFactory creates a new, unstarted Watcher.
type WatcherFactory func() (Watcher, error)
