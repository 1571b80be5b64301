// Package finisher turns a raw bundle into the files written for a build target.
package finisher

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"

	"go.trai.ch/knit/internal/core/domain"
	"go.trai.ch/knit/internal/core/ports"
	"go.trai.ch/knit/internal/engine/pipeline"
	"go.trai.ch/zerr"
)

const (
	dirPerm  = 0o750
	filePerm = 0o644
)

// Artifact is a finished bundle.
type Artifact struct {
	Target    domain.Target
	Code      []byte
	SourceMap []byte
	// Files are the paths written, bundle first.
	Files []string
}

// job is the value passed between finisher stages.
type job struct {
	bundle   io.Reader
	artifact *Artifact
}

// Finisher buffers, optionally minifies, splits out the source map and writes a bundle.
type Finisher struct {
	minifier ports.Minifier
	tracer   ports.Tracer
	options  domain.MinifyOptions
}

// New creates a Finisher that minifies with the default options.
func New(minifier ports.Minifier, tracer ports.Tracer) *Finisher {
	return &Finisher{
		minifier: minifier,
		tracer:   tracer,
		options:  domain.DefaultMinify(),
	}
}

// Finish consumes bundle and writes <dest>/<build> and <dest>/<build>.map for target.
func (f *Finisher) Finish(ctx context.Context, target domain.Target, bundle io.Reader, minify bool) (*Artifact, error) {
	out, err := f.pipeline(minify).Run(ctx, &job{
		bundle:   bundle,
		artifact: &Artifact{Target: target},
	})
	if err != nil {
		return nil, zerr.With(err, "target", target.Name)
	}
	return out.artifact, nil
}

func (f *Finisher) pipeline(minify bool) *pipeline.Pipeline[*job] {
	stages := []pipeline.Stage[*job]{{Name: "buffer", Run: bufferStage}}
	if minify {
		stages = append(stages, pipeline.Stage[*job]{Name: "minify", Run: f.minifyStage})
	}
	stages = append(stages,
		pipeline.Stage[*job]{Name: "sourcemap", Run: sourceMapStage},
		pipeline.Stage[*job]{Name: "write", Run: writeStage},
	)
	return pipeline.New(f.tracer, stages...)
}

func bufferStage(_ context.Context, j *job) (*job, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(j.bundle); err != nil {
		return nil, errors.Join(domain.ErrBundleFailed, err)
	}
	j.artifact.Code = buf.Bytes()
	return j, nil
}

func (f *Finisher) minifyStage(ctx context.Context, j *job) (*job, error) {
	code, err := f.minifier.Minify(ctx, j.artifact.Target.Build, j.artifact.Code, f.options)
	if err != nil {
		return nil, err
	}
	j.artifact.Code = code
	return j, nil
}

func sourceMapStage(_ context.Context, j *job) (*job, error) {
	code, sourceMap, err := ExtractSourceMap(j.artifact.Code, j.artifact.Target.MapName())
	if err != nil {
		return nil, err
	}
	j.artifact.Code = code
	j.artifact.SourceMap = sourceMap
	return j, nil
}

func writeStage(_ context.Context, j *job) (*job, error) {
	target := j.artifact.Target
	if err := os.MkdirAll(target.Dest, dirPerm); err != nil {
		return nil, writeError(err, target.Dest)
	}

	files := []struct {
		path string
		data []byte
	}{
		{path: target.BundlePath(), data: j.artifact.Code},
		{path: target.MapPath(), data: j.artifact.SourceMap},
	}
	for _, file := range files {
		if err := os.WriteFile(file.path, file.data, filePerm); err != nil { //nolint:gosec // build output is world readable
			return nil, writeError(err, file.path)
		}
		j.artifact.Files = append(j.artifact.Files, file.path)
	}
	return j, nil
}

func writeError(err error, path string) error {
	return errors.Join(domain.ErrWriteFailed, zerr.With(zerr.Wrap(err, "write failed"), "path", path))
}
