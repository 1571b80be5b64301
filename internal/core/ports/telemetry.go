package ports

import "context"

// Tracer is the entry point for creating spans.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Tracer interface {
	// Start creates a new span as a child of any span in ctx.
	Start(ctx context.Context, name string) (context.Context, Span)
}

// Span represents a unit of work.
type Span interface {
	// End completes the span.
	End()
	// RecordError records an error for the span.
	RecordError(err error)
	// SetAttribute adds a key-value pair to the span.
	SetAttribute(key string, value any)
}
