// Package builder runs one-shot and watched builds of a target.
package builder

import (
	"context"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/errorsink"
	"go.trai.ch/knit/internal/engine/finisher"
	"go.trai.ch/knit/internal/engine/watch"
	"go.trai.ch/zerr"
)

// Builder connects bundlers to the finisher.
type Builder struct {
	factory  ports.BundlerFactory
	finisher *finisher.Finisher
	registry *Registry
	sources  ports.ChangeSourceFactory
	sink     *errorsink.Sink
	logger   ports.Logger
}

// New creates a Builder.
func New(
	factory ports.BundlerFactory,
	fin *finisher.Finisher,
	registry *Registry,
	sources ports.ChangeSourceFactory,
	sink *errorsink.Sink,
	logger ports.Logger,
) *Builder {
	return &Builder{
		factory:  factory,
		finisher: fin,
		registry: registry,
		sources:  sources,
		sink:     sink,
		logger:   logger,
	}
}

// Build bundles target once and writes the result. Errors are returned to the caller.
func (b *Builder) Build(
	ctx context.Context,
	settings domain.BundleSettings,
	target domain.Target,
	minify bool,
) (*finisher.Artifact, error) {
	bundler, release, err := b.lease(settings, target)
	if err != nil {
		return nil, err
	}
	defer release()

	return b.pass(ctx, bundler, target, minify)
}

// Watch keeps a bundler for target alive and rebuilds whenever one of its modules changes.
// Failed passes are reported through the error sink. Watch returns when ctx is canceled.
func (b *Builder) Watch(
	ctx context.Context,
	settings domain.BundleSettings,
	target domain.Target,
	minify bool,
) error {
	bundler, release, err := b.lease(settings, target)
	if err != nil {
		return err
	}
	defer release()

	controller := watch.NewController(target.Build, func(ctx context.Context) error {
		_, err := b.pass(ctx, bundler, target, minify)
		return err
	}, b.sink, b.logger)

	return controller.Watch(ctx, b.sources(bundler.Modules))
}

// lease creates the bundler for target. The returned release disposes it.
func (b *Builder) lease(settings domain.BundleSettings, target domain.Target) (ports.Bundler, func(), error) {
	if err := b.registry.Acquire(target.Name); err != nil {
		return nil, nil, err
	}

	bundler, err := b.factory.NewBundler(settings, target)
	if err != nil {
		b.registry.Release(target.Name)
		return nil, nil, zerr.With(zerr.Wrap(err, "failed to create bundler"), "target", target.Name)
	}

	return bundler, func() {
		bundler.Dispose()
		b.registry.Release(target.Name)
	}, nil
}

func (b *Builder) pass(
	ctx context.Context,
	bundler ports.Bundler,
	target domain.Target,
	minify bool,
) (*finisher.Artifact, error) {
	raw, err := bundler.Bundle(ctx)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to bundle "+target.Build), "target", target.Name)
	}
	return b.finisher.Finish(ctx, target, raw, minify)
}
