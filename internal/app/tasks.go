package app

import (
	"context"
	"sort"

	"go.trai.ch/knit/internal/adapters/watcher" //nolint:depguard // Wired in app layer
	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/engine/scheduler"
	"go.trai.ch/knit/internal/engine/watch"
	"go.trai.ch/zerr"
)

// Task names.
const (
	TaskDev       = "dev"
	TaskTest      = "test"
	TaskSass      = "sass"
	TaskBuild     = "build"
	TaskDefault   = "default"
	TaskWatchDev  = "watch-dev"
	TaskWatchTest = "watch-test"
	TaskWatchSass = "watch-sass"
	TaskWatch     = "watch"
	TaskDoc       = "doc"
)

// Tasks is the task registry for one project: the dependency graph and an action per task.
// Aggregate tasks have no action.
type Tasks struct {
	Graph   *domain.Graph
	Actions map[string]scheduler.Action
}

// List returns the registered tasks sorted by name.
func (t *Tasks) List() []domain.Task {
	list := make([]domain.Task, 0, t.Graph.TaskCount())
	for name := range t.Actions {
		task, _ := t.Graph.Task(name)
		list = append(list, task)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

type taskDef struct {
	task   domain.Task
	action scheduler.Action
}

// Tasks builds the task registry for project.
func (a *App) Tasks(project *domain.Project) (*Tasks, error) {
	dev, err := projectTarget(project, domain.TargetDev)
	if err != nil {
		return nil, err
	}
	test, err := projectTarget(project, domain.TargetTest)
	if err != nil {
		return nil, err
	}

	defs := []taskDef{
		{
			task:   domain.Task{Name: TaskDev, Description: "Build the development bundle"},
			action: a.buildAction(project, dev),
		},
		{
			task:   domain.Task{Name: TaskTest, Description: "Build the test bundle"},
			action: a.buildAction(project, test),
		},
		{
			task:   domain.Task{Name: TaskSass, Description: "Compile the stylesheets"},
			action: func(ctx context.Context) error { return a.compileStyles(ctx, project) },
		},
		{
			task: domain.Task{
				Name:         TaskBuild,
				Description:  "Build both bundles and the stylesheets",
				Dependencies: []string{TaskDev, TaskTest, TaskSass},
			},
		},
		{
			task: domain.Task{
				Name:         TaskDefault,
				Description:  "Alias for build",
				Dependencies: []string{TaskBuild},
			},
		},
		{
			task:   domain.Task{Name: TaskWatchDev, Description: "Rebuild the development bundle on change"},
			action: a.watchAction(project, dev),
		},
		{
			task:   domain.Task{Name: TaskWatchTest, Description: "Rebuild the test bundle on change"},
			action: a.watchAction(project, test),
		},
		{
			task:   domain.Task{Name: TaskWatchSass, Description: "Recompile the stylesheets on change"},
			action: a.watchStylesAction(project),
		},
		{
			task: domain.Task{
				Name:         TaskWatch,
				Description:  "Run every watch task",
				Dependencies: []string{TaskWatchDev, TaskWatchTest, TaskWatchSass},
			},
		},
		{
			task:   domain.Task{Name: TaskDoc, Description: "Generate the API documentation"},
			action: func(ctx context.Context) error { return a.generateDocs(ctx, project) },
		},
	}

	tasks := &Tasks{
		Graph:   domain.NewGraph(),
		Actions: make(map[string]scheduler.Action, len(defs)),
	}
	for _, def := range defs {
		if err := tasks.Graph.AddTask(&def.task); err != nil {
			return nil, err
		}
		tasks.Actions[def.task.Name] = def.action
	}
	if err := tasks.Graph.Validate(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func projectTarget(project *domain.Project, name string) (domain.Target, error) {
	target, ok := project.Target(name)
	if !ok {
		return domain.Target{}, zerr.With(zerr.Wrap(domain.ErrUnknownTarget, "target not configured"), "target", name)
	}
	return target, nil
}

func (a *App) buildAction(project *domain.Project, target domain.Target) scheduler.Action {
	return func(ctx context.Context) error {
		_, err := a.builder.Build(ctx, project.Bundle, target, false)
		return err
	}
}

func (a *App) watchAction(project *domain.Project, target domain.Target) scheduler.Action {
	return func(ctx context.Context) error {
		return a.builder.Watch(ctx, project.Bundle, target, false)
	}
}

func (a *App) watchStylesAction(project *domain.Project) scheduler.Action {
	return func(ctx context.Context) error {
		filter, err := watcher.NewGlobFilter(project.Root, project.Styles.Sources)
		if err != nil {
			return err
		}
		compile := func(ctx context.Context, _ []string) error {
			return a.compileStyles(ctx, project)
		}
		return watch.NewStyleWatch(a.newWatcher, filter, compile, a.logger).Run(ctx)
	}
}

func (a *App) compileStyles(ctx context.Context, project *domain.Project) error {
	return a.executor.Execute(ctx, domain.Command{
		Name: TaskSass,
		Args: project.Styles.Command,
		Dir:  project.Root,
	}, a.stdout, a.stderr)
}

func (a *App) generateDocs(ctx context.Context, project *domain.Project) error {
	return a.executor.Execute(ctx, domain.Command{
		Name: TaskDoc,
		Args: project.Docs.Command,
		Dir:  project.Root,
	}, a.stdout, a.stderr)
}
