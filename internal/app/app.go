// Package app implements the application layer for knit.
package app

import (
	"context"
	"errors"
	"io"
	"os"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/builder"
	"go.trai.ch/knit/internal/engine/scheduler"
	"go.trai.ch/zerr"
)

// App represents the main application logic.
type App struct {
	configLoader ports.ConfigLoader
	builder      *builder.Builder
	scheduler    *scheduler.Scheduler
	executor     ports.Executor
	newWatcher   ports.WatcherFactory
	logger       ports.Logger
	stdout       io.Writer
	stderr       io.Writer
}

// New creates a new App instance.
func New(
	loader ports.ConfigLoader,
	b *builder.Builder,
	sched *scheduler.Scheduler,
	executor ports.Executor,
	newWatcher ports.WatcherFactory,
	log ports.Logger,
) *App {
	return &App{
		configLoader: loader,
		builder:      b,
		scheduler:    sched,
		executor:     executor,
		newWatcher:   newWatcher,
		logger:       log,
		stdout:       os.Stdout,
		stderr:       os.Stderr,
	}
}

// WithOutput sets where external tools write their output.
func (a *App) WithOutput(stdout, stderr io.Writer) *App {
	a.stdout = stdout
	a.stderr = stderr
	return a
}

// RunOptions configuration for the Run and ListTasks methods.
type RunOptions struct {
	// ConfigPath is an explicit configuration file. Empty means the default file in the working directory.
	ConfigPath string
}

// Run executes the named tasks and their dependencies. No names runs the default task.
// Cancellation of ctx ends watch tasks without an error.
func (a *App) Run(ctx context.Context, taskNames []string, opts RunOptions) error {
	tasks, err := a.load(opts)
	if err != nil {
		return err
	}

	if len(taskNames) == 0 {
		taskNames = []string{TaskDefault}
	}

	err = a.scheduler.Run(ctx, tasks.Graph, tasks.Actions, taskNames)
	if err != nil && ctx.Err() != nil && errors.Is(err, ctx.Err()) && !errors.Is(err, domain.ErrTaskFailed) {
		return nil
	}
	return err
}

// ListTasks returns the registered tasks sorted by name.
func (a *App) ListTasks(opts RunOptions) ([]domain.Task, error) {
	tasks, err := a.load(opts)
	if err != nil {
		return nil, err
	}
	return tasks.List(), nil
}

func (a *App) load(opts RunOptions) (*Tasks, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, zerr.Wrap(err, "failed to get working directory")
	}

	project, err := a.configLoader.Load(cwd, opts.ConfigPath)
	if err != nil {
		return nil, zerr.Wrap(err, "failed to load configuration")
	}

	return a.Tasks(project)
}
