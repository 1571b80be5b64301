package watch

import (
	"context"
	"errors"
	"time"

	"go.trai.ch/knit/internal/adapters/watcher" //nolint:depguard // debouncing and glob matching live with the watcher
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// StyleCompile compiles styles after the given sources changed.
type StyleCompile func(ctx context.Context, changed []string) error

// StyleWatch recompiles styles when files matching its globs change.
type StyleWatch struct {
	newWatcher ports.WatcherFactory
	filter     *watcher.GlobFilter
	compile    StyleCompile
	logger     ports.Logger
	window     time.Duration
}

// NewStyleWatch creates a StyleWatch over the sources matched by filter.
func NewStyleWatch(
	newWatcher ports.WatcherFactory,
	filter *watcher.GlobFilter,
	compile StyleCompile,
	logger ports.Logger,
) *StyleWatch {
	return &StyleWatch{
		newWatcher: newWatcher,
		filter:     filter,
		compile:    compile,
		logger:     logger,
		window:     watcher.DefaultDebounceWindow,
	}
}

// Run watches until ctx is canceled. Compile failures are logged and the watch continues.
func (s *StyleWatch) Run(ctx context.Context) error {
	w, err := s.newWatcher()
	if err != nil {
		return errors.Join(domain.ErrWatcherFailed, err)
	}
	defer func() { _ = w.Stop() }()

	if err := w.Start(ctx, s.filter.Base()); err != nil {
		return errors.Join(domain.ErrWatcherFailed, err)
	}

	// One queued batch at most; a later compile covers everything changed meanwhile.
	queued := make(chan []string, 1)
	debouncer := watcher.NewDebouncer(s.window, func(paths []string) {
		select {
		case queued <- paths:
		default:
		}
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for event := range w.Events() {
			if s.filter.Match(event.Path) {
				debouncer.Add(event.Path)
			}
		}
		return nil
	})
	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case paths := <-queued:
				if err := s.compile(gctx, paths); err != nil {
					s.logger.Error(err)
				}
			}
		}
	})
	return g.Wait()
}
