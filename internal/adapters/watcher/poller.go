// Package watcher implements change detection for the bundle and style watch tasks.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"go.trai.ch/knit/internal/core/ports"
)

var _ ports.ChangeSource = (*Poller)(nil)

// fileState is the last observed state of a watched file.
type fileState struct {
	modTime time.Time
	size    int64
	digest  uint64
	missing bool
}

// Poller detects changes to a dynamic set of files by polling them at a fixed interval.
// A file counts as changed when its content digest differs or it disappears.
type Poller struct {
	files    func() []string
	interval time.Duration

	mu       sync.Mutex
	handlers map[int]func(paths []string)
	nextID   int

	stateMu sync.Mutex
	states  map[string]fileState
	// since is set by Mark and consumed by the next poll.
	since time.Time
}

// NewPoller creates a Poller over the paths returned by files.
func NewPoller(files func() []string, interval time.Duration) *Poller {
	return &Poller{
		files:    files,
		interval: interval,
		handlers: make(map[int]func(paths []string)),
		states:   make(map[string]fileState),
	}
}

// NewPollerFactory returns a ports.ChangeSourceFactory producing pollers with the given interval.
func NewPollerFactory(interval time.Duration) ports.ChangeSourceFactory {
	return func(files func() []string) ports.ChangeSource {
		return NewPoller(files, interval)
	}
}

// OnChange subscribes handler to change batches.
func (p *Poller) OnChange(handler func(paths []string)) func() {
	p.mu.Lock()
	defer p.mu.Unlock()

	id := p.nextID
	p.nextID++
	p.handlers[id] = handler

	return func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		delete(p.handlers, id)
	}
}

// Mark records a baseline ahead of Run. Files first seen by the next poll are
// reported as changed when they were modified after Mark.
func (p *Poller) Mark() {
	now := time.Now()
	p.Poll()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	p.since = now
}

// Run polls until ctx is canceled. The first poll only records a baseline
// unless Mark was called before.
// Handlers run on the polling goroutine, so changes made while a handler runs
// are reported by the next poll.
func (p *Poller) Run(ctx context.Context) error {
	if changed := p.Poll(); len(changed) > 0 {
		p.dispatch(changed)
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if changed := p.Poll(); len(changed) > 0 {
				p.dispatch(changed)
			}
		}
	}
}

// Poll checks every watched file once and returns the paths that changed since the last poll.
// Files seen for the first time only establish a baseline.
func (p *Poller) Poll() []string {
	files := p.files()

	p.stateMu.Lock()
	defer p.stateMu.Unlock()
	since := p.since
	p.since = time.Time{}
	seen := make(map[string]struct{}, len(files))

	var changed []string
	for _, path := range files {
		if _, dup := seen[path]; dup {
			continue
		}
		seen[path] = struct{}{}

		prev, known := p.states[path]
		next := observe(path, prev, known)
		p.states[path] = next

		switch {
		case known && isChange(prev, next):
			changed = append(changed, path)
		case !known && !since.IsZero() && !next.missing && next.modTime.After(since):
			changed = append(changed, path)
		}
	}

	for path := range p.states {
		if _, ok := seen[path]; !ok {
			delete(p.states, path)
		}
	}

	return changed
}

func (p *Poller) dispatch(paths []string) {
	p.mu.Lock()
	ids := make([]int, 0, len(p.handlers))
	for id := range p.handlers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	handlers := make([]func([]string), 0, len(ids))
	for _, id := range ids {
		handlers = append(handlers, p.handlers[id])
	}
	p.mu.Unlock()

	for _, handler := range handlers {
		handler(slices.Clone(paths))
	}
}

// observe returns the current state of path, reusing the previous digest when
// neither size nor modification time moved.
func observe(path string, prev fileState, known bool) fileState {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fileState{missing: true}
		}
		return prev
	}

	next := fileState{modTime: info.ModTime(), size: info.Size()}
	if known && !prev.missing && prev.modTime.Equal(next.modTime) && prev.size == next.size {
		next.digest = prev.digest
		return next
	}

	// #nosec G304 -- paths come from the bundler's module graph
	data, err := os.ReadFile(path)
	if err != nil {
		return prev
	}
	next.digest = xxhash.Sum64(data)
	return next
}

func isChange(prev, next fileState) bool {
	if prev.missing || next.missing {
		return prev.missing != next.missing
	}
	return prev.digest != next.digest
}
