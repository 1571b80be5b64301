package builder

import (
	"sync"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/zerr"
)

// Registry tracks which targets have an active bundler.
type Registry struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{active: make(map[string]struct{})}
}

// Acquire marks target as active. It fails with domain.ErrTargetBusy when it already is.
func (r *Registry) Acquire(target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, busy := r.active[target]; busy {
		return zerr.With(zerr.Wrap(domain.ErrTargetBusy, "cannot start bundler"), "target", target)
	}
	r.active[target] = struct{}{}
	return nil
}

// Release marks target as inactive.
func (r *Registry) Release(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.active, target)
}

// Active reports whether target has an active bundler.
func (r *Registry) Active(target string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.active[target]
	return ok
}
