package watcher_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/knit/internal/adapters/watcher"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func staticFiles(paths ...string) func() []string {
	return func() []string { return paths }
}

func TestPoller_Poll_Baseline(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	writeFile(t, index, "console.log(1);")

	p := watcher.NewPoller(staticFiles(index), time.Second)
	assert.Empty(t, p.Poll())
	assert.Empty(t, p.Poll())
}

func TestPoller_Poll_ContentChange(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	helper := filepath.Join(dir, "lib", "helper.es6")
	writeFile(t, index, "console.log(1);")
	writeFile(t, helper, "export default 1;")

	p := watcher.NewPoller(staticFiles(index, helper), time.Second)
	p.Poll()

	writeFile(t, helper, "export default 42;")
	assert.Equal(t, []string{helper}, p.Poll())
	assert.Empty(t, p.Poll())
}

func TestPoller_Poll_TouchWithoutContentChange(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	writeFile(t, index, "console.log(1);")

	p := watcher.NewPoller(staticFiles(index), time.Second)
	p.Poll()

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(index, later, later))
	assert.Empty(t, p.Poll())
}

func TestPoller_Poll_RemoveAndRestore(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	writeFile(t, index, "console.log(1);")

	p := watcher.NewPoller(staticFiles(index), time.Second)
	p.Poll()

	require.NoError(t, os.Remove(index))
	assert.Equal(t, []string{index}, p.Poll())
	assert.Empty(t, p.Poll())

	writeFile(t, index, "console.log(1);")
	assert.Equal(t, []string{index}, p.Poll())
}

func TestPoller_Poll_NewFilesAreBaselined(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	extra := filepath.Join(dir, "extra.es6")
	writeFile(t, index, "import './extra';")
	writeFile(t, extra, "console.log(1);")

	files := []string{index}
	p := watcher.NewPoller(func() []string { return files }, time.Second)
	p.Poll()

	files = []string{index, extra}
	assert.Empty(t, p.Poll())

	writeFile(t, extra, "console.log(12);")
	assert.Equal(t, []string{extra}, p.Poll())
}

func TestPoller_Mark_ReportsEditsBeforeFirstPoll(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	helper := filepath.Join(dir, "lib", "helper.es6")
	untouched := filepath.Join(dir, "lib", "untouched.es6")
	writeFile(t, index, "import './lib/helper';")
	writeFile(t, helper, "export default 1;")
	writeFile(t, untouched, "export default 2;")

	earlier := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(untouched, earlier, earlier))

	files := []string{index}
	p := watcher.NewPoller(func() []string { return files }, time.Second)
	p.Mark()

	// The module graph grows while the first pass runs and helper is edited meanwhile.
	files = []string{index, helper, untouched}
	writeFile(t, index, "import './lib/helper'; import './lib/untouched';")
	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(helper, later, later))

	assert.Equal(t, []string{index, helper}, p.Poll())
	assert.Empty(t, p.Poll())
}

func TestPoller_Run_DispatchesChanges(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	writeFile(t, index, "console.log(1);")

	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		var batches [][]string

		p := watcher.NewPoller(staticFiles(index), time.Second)
		p.OnChange(func(paths []string) {
			mu.Lock()
			defer mu.Unlock()
			batches = append(batches, paths)
		})

		ctx, cancel := context.WithCancel(t.Context())
		done := make(chan error, 1)
		go func() { done <- p.Run(ctx) }()
		synctest.Wait()

		writeFile(t, index, "console.log(100);")
		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Equal(t, [][]string{{index}}, batches)
		mu.Unlock()

		cancel()
		require.NoError(t, <-done)
	})
}

func TestPoller_OnChange_Unsubscribe(t *testing.T) {
	dir := t.TempDir()
	index := filepath.Join(dir, "index.es6")
	writeFile(t, index, "console.log(1);")

	synctest.Test(t, func(t *testing.T) {
		var mu sync.Mutex
		calls := 0

		p := watcher.NewPoller(staticFiles(index), time.Second)
		unsubscribe := p.OnChange(func([]string) {
			mu.Lock()
			defer mu.Unlock()
			calls++
		})
		unsubscribe()

		ctx, cancel := context.WithCancel(t.Context())
		defer cancel()
		go func() { _ = p.Run(ctx) }()
		synctest.Wait()

		writeFile(t, index, "console.log(100);")
		time.Sleep(1500 * time.Millisecond)
		synctest.Wait()

		mu.Lock()
		assert.Zero(t, calls)
		mu.Unlock()
	})
}
