package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/knit/internal/core/ports"
)

var _ sdktrace.SpanProcessor = (*Bridge)(nil)

// Bridge implements sdktrace.SpanProcessor and reports task spans to a logger.
// Only root spans are tasks; nested spans are pipeline stages and stay silent.
type Bridge struct {
	logger ports.Logger
}

// NewBridge returns a new Bridge.
func NewBridge(logger ports.Logger) *Bridge {
	return &Bridge{logger: logger}
}

// OnStart is called when a span starts.
func (b *Bridge) OnStart(_ context.Context, s sdktrace.ReadWriteSpan) {
	if b.logger == nil || s.Parent().IsValid() {
		return
	}
	b.logger.Info(fmt.Sprintf("Starting '%s'...", s.Name()))
}

// OnEnd is called when a span ends.
func (b *Bridge) OnEnd(s sdktrace.ReadOnlySpan) {
	if b.logger == nil || s.Parent().IsValid() {
		return
	}

	elapsed := FormatDuration(s.EndTime().Sub(s.StartTime()))
	if s.Status().Code == codes.Error {
		b.logger.Warn(fmt.Sprintf("'%s' errored after %s", s.Name(), elapsed))
		return
	}
	b.logger.Info(fmt.Sprintf("Finished '%s' after %s", s.Name(), elapsed))
}

// ForceFlush does nothing.
func (b *Bridge) ForceFlush(_ context.Context) error {
	return nil
}

// Shutdown does nothing.
func (b *Bridge) Shutdown(_ context.Context) error {
	return nil
}

// FormatDuration renders d the way task timings are printed: "850 μs", "412 ms" or "1.25 s".
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d μs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}
