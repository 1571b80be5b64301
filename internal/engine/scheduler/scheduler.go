// Package scheduler runs named tasks and their dependencies.
package scheduler

import (
	"context"
	"errors"
	"sync"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

// TaskStatus represents the status of a task.
type TaskStatus string

const (
	// StatusPending indicates the task is waiting for its dependencies.
	StatusPending TaskStatus = "Pending"
	// StatusRunning indicates the task is currently executing.
	StatusRunning TaskStatus = "Running"
	// StatusCompleted indicates the task has finished successfully.
	StatusCompleted TaskStatus = "Completed"
	// StatusFailed indicates the task execution failed.
	StatusFailed TaskStatus = "Failed"
)

// Action is the work behind a task. Aggregate tasks have a nil action.
type Action func(ctx context.Context) error

// Scheduler executes tasks of a dependency graph. A task starts once all of its
// dependencies completed; independent tasks run concurrently and each task runs
// at most once per Run.
type Scheduler struct {
	tracer ports.Tracer

	mu         sync.RWMutex
	taskStatus map[string]TaskStatus
}

// NewScheduler creates a new Scheduler.
func NewScheduler(tracer ports.Tracer) *Scheduler {
	return &Scheduler{
		tracer:     tracer,
		taskStatus: make(map[string]TaskStatus),
	}
}

// Status returns the status of a task in the current or last run.
func (s *Scheduler) Status(name string) (TaskStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	status, ok := s.taskStatus[name]
	return status, ok
}

func (s *Scheduler) initTaskStatuses(tasks []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, task := range tasks {
		s.taskStatus[task] = StatusPending
	}
}

func (s *Scheduler) updateStatus(name string, status TaskStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.taskStatus[name] = status
}

// Run executes targetNames and everything they depend on.
// Dependents of a failed task are not started; all failures are joined.
func (s *Scheduler) Run(
	ctx context.Context,
	graph *domain.Graph,
	actions map[string]Action,
	targetNames []string,
) error {
	if err := graph.Validate(); err != nil {
		return err
	}

	state, err := s.newRunState(ctx, graph, actions, targetNames)
	if err != nil {
		return err
	}

	s.initTaskStatuses(state.allTasks)

	return state.runExecutionLoop()
}

type result struct {
	task string
	err  error
}

type runState struct {
	ctx       context.Context
	s         *Scheduler
	graph     *domain.Graph
	actions   map[string]Action
	inDegree  map[string]int
	ready     []string
	active    int
	resultsCh chan result
	errs      error
	allTasks  []string
}

func (s *Scheduler) newRunState(
	ctx context.Context,
	graph *domain.Graph,
	actions map[string]Action,
	targetNames []string,
) (*runState, error) {
	for _, name := range targetNames {
		if _, ok := graph.Task(name); !ok {
			return nil, zerr.With(domain.ErrTaskNotFound, "task", name)
		}
	}

	tasksToRun, allTasks := collectDependencies(graph, targetNames)

	inDegree := make(map[string]int, len(tasksToRun))
	var ready []string
	// allTasks is in discovery order, which keeps scheduling deterministic.
	for _, name := range allTasks {
		task, _ := graph.Task(name)
		degree := 0
		for _, dep := range task.Dependencies {
			if tasksToRun[dep] {
				degree++
			}
		}
		inDegree[name] = degree
		if degree == 0 {
			ready = append(ready, name)
		}
	}

	return &runState{
		ctx:       ctx,
		s:         s,
		graph:     graph,
		actions:   actions,
		inDegree:  inDegree,
		ready:     ready,
		resultsCh: make(chan result, len(allTasks)),
		allTasks:  allTasks,
	}, nil
}

// collectDependencies walks the graph breadth-first from targets.
func collectDependencies(graph *domain.Graph, targets []string) (map[string]bool, []string) {
	tasksToRun := make(map[string]bool)
	var allTasks []string

	queue := append([]string(nil), targets...)
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if tasksToRun[current] {
			continue
		}
		tasksToRun[current] = true
		allTasks = append(allTasks, current)

		task, _ := graph.Task(current)
		queue = append(queue, task.Dependencies...)
	}

	return tasksToRun, allTasks
}

func (state *runState) runExecutionLoop() error {
	done := state.ctx.Done()
	for !state.isDone() {
		state.schedule()

		if state.isDone() {
			break
		}

		if state.ctx.Err() != nil && state.active == 0 {
			return errors.Join(state.errs, state.ctx.Err())
		}

		select {
		case res := <-state.resultsCh:
			state.handleResult(res)
		case <-done:
			// Only the remaining results are awaited from here on.
			done = nil
		}
	}

	return state.errs
}

func (state *runState) isDone() bool {
	return state.active == 0 && len(state.ready) == 0
}

func (state *runState) schedule() {
	for len(state.ready) > 0 && state.ctx.Err() == nil {
		name := state.ready[0]
		state.ready = state.ready[1:]

		state.active++
		state.s.updateStatus(name, StatusRunning)

		go state.executeTask(name)
	}
}

func (state *runState) executeTask(name string) {
	// The span ends before the result is sent so it is recorded by the time Run returns.
	res := func() result {
		ctx, span := state.s.tracer.Start(state.ctx, name)
		defer span.End()

		action := state.actions[name]
		if action == nil {
			return result{task: name}
		}

		err := action(ctx)
		if err != nil {
			span.RecordError(err)
		}
		return result{task: name, err: err}
	}()

	state.resultsCh <- res
}

func (state *runState) handleResult(res result) {
	state.active--

	if res.err != nil {
		taskErr := zerr.With(zerr.Wrap(res.err, domain.ErrTaskFailed.Error()), "task", res.task)
		state.errs = errors.Join(state.errs, taskErr)
		state.s.updateStatus(res.task, StatusFailed)
		return
	}

	state.s.updateStatus(res.task, StatusCompleted)
	for _, dep := range state.graph.Dependents(res.task) {
		if _, ok := state.inDegree[dep]; ok {
			state.inDegree[dep]--
			if state.inDegree[dep] == 0 {
				state.ready = append(state.ready, dep)
			}
		}
	}
}
