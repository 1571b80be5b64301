package watcher_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/watcher"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/core/ports/mocks"
	"go.uber.org/mock/gomock"
)

func TestWatcher_ReportsWritesInSubdirectories(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "lib", "sass"), 0o750))

	ctrl := gomock.NewController(t)
	log := mocks.NewMockLogger(ctrl)
	log.EXPECT().Warn(gomock.Any()).AnyTimes()

	w, err := watcher.NewWatcherFactory(log)()
	require.NoError(t, err)
	require.NoError(t, w.Start(t.Context(), root))
	t.Cleanup(func() { _ = w.Stop() })

	target := filepath.Join(root, "lib", "sass", "main.scss")
	require.NoError(t, os.WriteFile(target, []byte("body { color: red; }"), 0o600))

	found := make(chan ports.WatchEvent, 1)
	go func() {
		for event := range w.Events() {
			if event.Path == target {
				found <- event
				return
			}
		}
	}()

	select {
	case event := <-found:
		assert.Contains(t, []ports.WatchOp{ports.OpCreate, ports.OpWrite}, event.Operation)
	case <-time.After(5 * time.Second):
		t.Fatal("no event for written file")
	}
}
