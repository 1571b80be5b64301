// Package domain contains the core domain models for targets, tasks and change events.
package domain

import (
	"iter"
	"slices"
	"sort"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency graph of registered tasks.
type Graph struct {
	tasks          map[string]Task
	executionOrder []string
}

// NewGraph creates a new empty Graph.
func NewGraph() *Graph {
	return &Graph{
		tasks: make(map[string]Task),
	}
}

// AddTask adds a task to the graph.
// It returns an error if a task with the same name already exists.
func (g *Graph) AddTask(t *Task) error {
	if _, exists := g.tasks[t.Name]; exists {
		return zerr.With(ErrTaskAlreadyExists, "task_name", t.Name)
	}
	g.tasks[t.Name] = *t
	return nil
}

// Task returns the task registered under name.
func (g *Graph) Task(name string) (Task, bool) {
	t, ok := g.tasks[name]
	return t, ok
}

// TaskCount returns the number of registered tasks.
func (g *Graph) TaskCount() int {
	return len(g.tasks)
}

// Dependents returns the names of the tasks that depend directly on name, sorted.
func (g *Graph) Dependents(name string) []string {
	var dependents []string
	for _, t := range g.tasks {
		if slices.Contains(t.Dependencies, name) {
			dependents = append(dependents, t.Name)
		}
	}
	sort.Strings(dependents)
	return dependents
}

// Validate checks for missing dependencies and cycles using a topological sort.
// It populates the execution order used by Walk.
func (g *Graph) Validate() error {
	g.executionOrder = make([]string, 0, len(g.tasks))
	visited := make(map[string]int) // 0: unvisited, 1: visiting, 2: visited
	var path []string

	var visit func(u string) error
	visit = func(u string) error {
		visited[u] = 1
		path = append(path, u)

		task, exists := g.tasks[u]
		if !exists {
			return zerr.With(ErrMissingDependency, "dependency", u)
		}

		for _, dep := range task.Dependencies {
			if visited[dep] == 1 {
				return buildCycleError(path, dep)
			}
			if visited[dep] == 0 {
				if err := visit(dep); err != nil {
					return err
				}
			}
		}

		visited[u] = 2
		path = path[:len(path)-1]
		g.executionOrder = append(g.executionOrder, u)
		return nil
	}

	// Sorted so that listings and error reports are stable.
	names := make([]string, 0, len(g.tasks))
	for name := range g.tasks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if visited[name] == 0 {
			if err := visit(name); err != nil {
				return err
			}
		}
	}

	return nil
}

func buildCycleError(path []string, dep string) error {
	start := slices.Index(path, dep)
	cycle := append(slices.Clone(path[start:]), dep)
	return zerr.With(ErrCycleDetected, "cycle", strings.Join(cycle, " -> "))
}

// Walk returns an iterator that yields tasks in dependency order.
// It assumes Validate() has been called and returned nil.
func (g *Graph) Walk() iter.Seq[Task] {
	return func(yield func(Task) bool) {
		for _, name := range g.executionOrder {
			if !yield(g.tasks[name]) {
				return
			}
		}
	}
}
