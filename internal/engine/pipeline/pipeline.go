// Package pipeline runs named stages in sequence.
package pipeline

import (
	"context"

	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/zerr"
)

// Stage is one named step of a pipeline.
type Stage[T any] struct {
	Name string
	Run  func(ctx context.Context, in T) (T, error)
}

// Pipeline runs its stages one after another, each in its own span.
// The first failing stage stops the pipeline.
type Pipeline[T any] struct {
	tracer ports.Tracer
	stages []Stage[T]
}

// New creates a pipeline of stages.
func New[T any](tracer ports.Tracer, stages ...Stage[T]) *Pipeline[T] {
	return &Pipeline[T]{tracer: tracer, stages: stages}
}

// Stages returns the stage names in order.
func (p *Pipeline[T]) Stages() []string {
	names := make([]string, 0, len(p.stages))
	for _, s := range p.stages {
		names = append(names, s.Name)
	}
	return names
}

// Run feeds in through every stage and returns the last stage's output.
func (p *Pipeline[T]) Run(ctx context.Context, in T) (T, error) {
	current := in
	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			var zero T
			return zero, err
		}

		next, err := p.runStage(ctx, stage, current)
		if err != nil {
			var zero T
			return zero, zerr.With(zerr.Wrap(err, "stage "+stage.Name+" failed"), "stage", stage.Name)
		}
		current = next
	}
	return current, nil
}

func (p *Pipeline[T]) runStage(ctx context.Context, stage Stage[T], in T) (T, error) {
	ctx, span := p.tracer.Start(ctx, stage.Name)
	defer span.End()

	out, err := stage.Run(ctx, in)
	if err != nil {
		span.RecordError(err)
	}
	return out, err
}
