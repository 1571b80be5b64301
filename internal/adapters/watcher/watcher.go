package watcher

import (
	"context"
	"io/fs"
	"iter"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.Watcher = (*Watcher)(nil)

// skippedDirectories are never watched.
var skippedDirectories = map[string]bool{
	".git":         true,
	"node_modules": true,
}

const eventChannelBuffer = 100

// Watcher implements recursive directory watching using fsnotify.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	logger    ports.Logger
	events    chan ports.WatchEvent
}

// NewWatcher creates a new, unstarted file system watcher.
func NewWatcher(logger ports.Logger) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, zerr.Wrap(err, domain.ErrWatcherFailed.Error())
	}
	return &Watcher{
		fsWatcher: fsWatcher,
		logger:    logger,
		events:    make(chan ports.WatchEvent, eventChannelBuffer),
	}, nil
}

// NewWatcherFactory returns a ports.WatcherFactory whose watchers report errors to logger.
func NewWatcherFactory(logger ports.Logger) ports.WatcherFactory {
	return func() (ports.Watcher, error) {
		return NewWatcher(logger)
	}
}

// Start watches root and all of its subdirectories.
func (w *Watcher) Start(ctx context.Context, root string) error {
	for dir := range directories(root) {
		if err := w.fsWatcher.Add(dir); err != nil {
			return zerr.With(zerr.Wrap(err, domain.ErrWatcherFailed.Error()), "path", dir)
		}
	}

	go w.processEvents(ctx)
	return nil
}

// Stop stops the watcher and releases all resources.
func (w *Watcher) Stop() error {
	return w.fsWatcher.Close()
}

// Events returns an iterator of file system events. It ends when the watcher stops.
func (w *Watcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.events {
			if !yield(event) {
				return
			}
		}
	}
}

// directories yields root and its subdirectories, skipping unwatched ones.
func directories(root string) iter.Seq[string] {
	return func(yield func(string) bool) {
		_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return nil //nolint:nilerr // unreadable directories are skipped
			}
			if !d.IsDir() {
				return nil
			}
			if path != root && skippedDirectories[d.Name()] {
				return fs.SkipDir
			}
			if !yield(path) {
				return filepath.SkipAll
			}
			return nil
		})
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			op, ok := convertOp(event.Op)
			if !ok {
				continue
			}

			select {
			case w.events <- ports.WatchEvent{Path: event.Name, Operation: op}:
			case <-ctx.Done():
				return
			}

			if op == ports.OpCreate {
				w.watchNewDirectory(event.Name)
			}
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.Warn("file watcher: " + err.Error())
			}
		}
	}
}

func (w *Watcher) watchNewDirectory(path string) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() || skippedDirectories[info.Name()] {
		return
	}
	for dir := range directories(path) {
		_ = w.fsWatcher.Add(dir)
	}
}

// convertOp maps an fsnotify operation to a ports.WatchOp. Chmod-only events are dropped.
func convertOp(op fsnotify.Op) (ports.WatchOp, bool) {
	switch {
	case op.Has(fsnotify.Write):
		return ports.OpWrite, true
	case op.Has(fsnotify.Create):
		return ports.OpCreate, true
	case op.Has(fsnotify.Remove):
		return ports.OpRemove, true
	case op.Has(fsnotify.Rename):
		return ports.OpRename, true
	default:
		return 0, false
	}
}
