// Package tracing provides the engine's tracing surface: one span per
// run, one child span per node execution. It is a deliberately thin
// slice of the teacher's tracing package (span-per-unit-of-work only;
// no audit/redaction/retention machinery, which has no analog here).
package tracing

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// StartRun opens the root span for one pipeline run. tracer may be nil,
// in which case span is nil and every other function in this file is a
// no-op on it.
func StartRun(ctx context.Context, tracer trace.Tracer, pipelineName, runID string) (context.Context, trace.Span) {
	ctx, span := safeStart(ctx, tracer, "wrench.run", trace.WithAttributes(
		attribute.String("pipeline", pipelineName),
		attribute.String("run_id", runID),
	))
	return ctx, span
}

// StartNode opens a child span for one node execution within a run span.
func StartNode(ctx context.Context, tracer trace.Tracer, runID, component string) (context.Context, trace.Span) {
	ctx, span := safeStart(ctx, tracer, "wrench.node", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.String("component", component),
	))
	return ctx, span
}

// EndWithStatus sets the span's final status attribute and ends it.
func EndWithStatus(span trace.Span, status string, err error) {
	if span == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic ending span", "error", r)
		}
	}()

	span.SetAttributes(attribute.String("status", status))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func safeStart(ctx context.Context, tracer trace.Tracer, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	if tracer == nil {
		return ctx, nil
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("panic starting span", "error", r, "span_name", name)
		}
	}()
	return tracer.Start(ctx, name, opts...)
}
