package watch_test

import (
	"context"
	"errors"
	"iter"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/watcher"
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/core/ports/mocks"
	"go.trai.ch/knit/internal/engine/watch"
	"go.uber.org/mock/gomock"
)

// channelWatcher replays events sent on its channel until the watch context ends.
type channelWatcher struct {
	events  chan ports.WatchEvent
	out     chan ports.WatchEvent
	started string
	stopped bool
}

func newChannelWatcher() *channelWatcher {
	return &channelWatcher{
		events: make(chan ports.WatchEvent),
		out:    make(chan ports.WatchEvent),
	}
}

func (w *channelWatcher) Start(ctx context.Context, root string) error {
	w.started = root
	go func() {
		defer close(w.out)
		for {
			select {
			case <-ctx.Done():
				return
			case event := <-w.events:
				w.out <- event
			}
		}
	}()
	return nil
}

func (w *channelWatcher) Stop() error {
	w.stopped = true
	return nil
}

func (w *channelWatcher) Events() iter.Seq[ports.WatchEvent] {
	return func(yield func(ports.WatchEvent) bool) {
		for event := range w.out {
			if !yield(event) {
				return
			}
		}
	}
}

type compileRecorder struct {
	mu    sync.Mutex
	calls [][]string
	err   error
}

func (r *compileRecorder) compile(_ context.Context, changed []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, changed)
	return r.err
}

func (r *compileRecorder) get() [][]string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func newStyleFilter(t *testing.T, root string) *watcher.GlobFilter {
	t.Helper()
	filter, err := watcher.NewGlobFilter(root, domain.DefaultProject(root).Styles.Sources)
	require.NoError(t, err)
	return filter
}

func TestStyleWatch_CompilesMatchingChanges(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)

		root := "/project"
		w := newChannelWatcher()
		rec := &compileRecorder{}
		sw := watch.NewStyleWatch(
			func() (ports.Watcher, error) { return w, nil },
			newStyleFilter(t, root),
			rec.compile,
			log,
		)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- sw.Run(ctx) }()
		synctest.Wait()

		assert.Equal(t, filepath.Join(root, "lib", "sass"), w.started)

		w.events <- ports.WatchEvent{Path: "/project/lib/sass/main.scss", Operation: ports.OpWrite}
		w.events <- ports.WatchEvent{Path: "/project/lib/sass/partials/_grid.scss", Operation: ports.OpWrite}
		w.events <- ports.WatchEvent{Path: "/project/lib/sass/notes.txt", Operation: ports.OpWrite}
		time.Sleep(time.Second)
		synctest.Wait()

		assert.Equal(t, [][]string{{
			"/project/lib/sass/main.scss",
			"/project/lib/sass/partials/_grid.scss",
		}}, rec.get())

		cancel()
		require.NoError(t, <-done)
		assert.True(t, w.stopped)
	})
}

func TestStyleWatch_FailureIsLogged(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		ctrl := gomock.NewController(t)
		log := mocks.NewMockLogger(ctrl)

		compileErr := errors.New("Error: expected \";\".")
		log.EXPECT().Error(compileErr).Times(2)

		w := newChannelWatcher()
		rec := &compileRecorder{err: compileErr}
		sw := watch.NewStyleWatch(
			func() (ports.Watcher, error) { return w, nil },
			newStyleFilter(t, "/project"),
			rec.compile,
			log,
		)

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- sw.Run(ctx) }()
		synctest.Wait()

		for range 2 {
			w.events <- ports.WatchEvent{Path: "/project/lib/sass/main.scss", Operation: ports.OpWrite}
			time.Sleep(time.Second)
			synctest.Wait()
		}

		assert.Len(t, rec.get(), 2)

		cancel()
		require.NoError(t, <-done)
	})
}

func TestStyleWatch_WatcherUnavailable(t *testing.T) {
	ctrl := gomock.NewController(t)
	sw := watch.NewStyleWatch(
		func() (ports.Watcher, error) { return nil, errors.New("too many open files") },
		newStyleFilter(t, "/project"),
		(&compileRecorder{}).compile,
		mocks.NewMockLogger(ctrl),
	)

	err := sw.Run(t.Context())
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrWatcherFailed)
}
