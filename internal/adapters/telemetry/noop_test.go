package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/knit/internal/adapters/telemetry"
)

func TestNoOpTracer(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewNoOpTracer()
	ctx := context.Background()

	newCtx, span := tracer.Start(ctx, "dev")
	assert.Equal(t, ctx, newCtx)
	assert.NotPanics(t, func() {
		span.SetAttribute("target", "dev")
		span.RecordError(errors.New("boom"))
		span.End()
	})
}

func TestOTelSpan_SetAttribute(t *testing.T) {
	t.Parallel()

	tracer := telemetry.NewOTelTracer("test")
	_, span := tracer.Start(context.Background(), "dev")
	assert.NotPanics(t, func() {
		span.SetAttribute("target", "dev")
		span.SetAttribute("minify", true)
		span.SetAttribute("bytes", 42)
		span.SetAttribute("modules", []string{"index.es6"})
		span.SetAttribute("elapsed", struct{}{})
		span.RecordError(nil)
	})
	span.End()
}
