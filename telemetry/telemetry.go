// Package telemetry defines the logging, metrics, and tracing interfaces of
// the client library; the tracing package consumes Tracer and Span, and no
// adapter or the agent run loop calls into this package. Implementations
// typically delegate to goa.design/clue/log and OpenTelemetry, but the
// interfaces are intentionally small so callers can substitute lightweight
// stubs in tests or no-ops when observability is not wired up.
package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Logger captures structured logging with key-value pairs.
type Logger interface {
	Debug(ctx context.Context, msg string, keyvals ...any)
	Info(ctx context.Context, msg string, keyvals ...any)
	Warn(ctx context.Context, msg string, keyvals ...any)
	Error(ctx context.Context, msg string, keyvals ...any)
}

// Metrics exposes counter, timer, and gauge helpers for instrumenting
// generate/stream calls and tool executions.
type Metrics interface {
	IncCounter(name string, value float64, tags ...string)
	RecordTimer(name string, duration time.Duration, tags ...string)
	RecordGauge(name string, value float64, tags ...string)
}

// Tracer abstracts span creation so callers remain agnostic of the
// underlying OpenTelemetry provider.
type Tracer interface {
	Start(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, Span)
	Span(ctx context.Context) Span
}

// Span represents an in-flight tracing span.
type Span interface {
	End(opts ...trace.SpanEndOption)
	AddEvent(name string, attrs ...any)
	SetStatus(code codes.Code, description string)
	RecordError(err error, opts ...trace.EventOption)
}

// ToolCallTelemetry holds observability metadata for a single tool
// execution. The agent run loop does not populate it.
type ToolCallTelemetry struct {
	// ToolName identifies the tool that was invoked.
	ToolName string
	// DurationMs is the wall-clock execution time in milliseconds.
	DurationMs int64
	// IsError reports whether the tool call ended in an error result.
	IsError bool
	// Extra holds tool-specific metadata not captured by the fields above.
	Extra map[string]any
}
