// Package watch keeps bundles and styles up to date while sources change.
package watch

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/errorsink"
)

// State is the state of a Controller.
type State int32

const (
	// StateIdle means the controller is waiting for changes.
	StateIdle State = iota
	// StateRebuilding means a pass is running.
	StateRebuilding
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRebuilding:
		return "rebuilding"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Controller reruns a bundle pass for qualifying change batches.
// Passes never overlap and failures are routed to the error sink.
type Controller struct {
	build  string
	pass   errorsink.Pass
	sink   *errorsink.Sink
	logger ports.Logger

	mu     sync.Mutex
	state  atomic.Int32
	passes atomic.Int64
}

// NewController creates an idle controller. build names the output file in log lines.
func NewController(build string, pass errorsink.Pass, sink *errorsink.Sink, logger ports.Logger) *Controller {
	return &Controller{
		build:  build,
		pass:   pass,
		sink:   sink,
		logger: logger,
	}
}

// State returns the current state.
func (c *Controller) State() State {
	return State(c.state.Load())
}

// Passes returns how many passes have started.
func (c *Controller) Passes() int {
	return int(c.passes.Load())
}

// Activate runs the initial pass unconditionally and reports whether it succeeded.
func (c *Controller) Activate(ctx context.Context) bool {
	return c.rebuild(ctx, "Built")
}

// HandleChange rebuilds for paths unless the batch is a lone version module touch.
// It reports whether a pass ran.
func (c *Controller) HandleChange(ctx context.Context, paths []string) bool {
	if !domain.NewChangeEvent(paths).ShouldRebuild() {
		return false
	}
	c.rebuild(ctx, "Rebuilt")
	return true
}

// marker is implemented by change sources that can take their baseline before Run.
type marker interface {
	Mark()
}

// Watch activates the controller, then rebuilds on every batch from source until ctx is canceled.
// Sources implementing Mark are marked before the initial pass so edits made during it are not lost.
func (c *Controller) Watch(ctx context.Context, source ports.ChangeSource) error {
	if m, ok := source.(marker); ok {
		m.Mark()
	}
	c.Activate(ctx)

	unsubscribe := source.OnChange(func(paths []string) {
		c.HandleChange(ctx, paths)
	})
	defer unsubscribe()

	return source.Run(ctx)
}

func (c *Controller) rebuild(ctx context.Context, verb string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(int32(StateRebuilding))
	defer c.state.Store(int32(StateIdle))
	c.passes.Add(1)

	// The timing line closes every pass, failed ones included, after the sink reported the error.
	start := time.Now()
	ok := c.sink.Run(ctx, c.pass)
	c.logger.Info(fmt.Sprintf("%s %s in %d milliseconds.", verb, c.build, time.Since(start).Milliseconds()))
	return ok
}
