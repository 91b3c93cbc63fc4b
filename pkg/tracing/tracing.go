// Package tracing wraps units of work in OpenTelemetry spans.
//
// It replaces method-level instrumentation with an explicit call:
//
//	err := tracing.Run(ctx, tracer, "scaffold.copy", func(ctx context.Context) error {
//		return copyTree(ctx, src, dst)
//	})
//
// The wrapped function's result and error are returned unchanged. Failed work
// records the error on the span and marks it with an error status.
package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used when no tracer is supplied.
const InstrumentationName = "github.com/cdkforge/cdkforge"

// Tracer returns tracer when non-nil, otherwise a tracer from the global provider.
// The global provider is a no-op unless the process installs one.
func Tracer(tracer trace.Tracer) trace.Tracer {
	if tracer != nil {
		return tracer
	}
	return otel.Tracer(InstrumentationName)
}

// Run executes fn inside a span called name.
func Run(ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) error, attrs ...attribute.KeyValue) error {
	_, err := Do(ctx, tracer, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	}, attrs...)
	return err
}

// Do executes fn inside a span called name and returns its result.
func Do[T any](ctx context.Context, tracer trace.Tracer, name string, fn func(context.Context) (T, error), attrs ...attribute.KeyValue) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	ctx, span := Tracer(tracer).Start(ctx, name, trace.WithAttributes(attrs...))
	defer span.End()

	result, err := fn(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return result, err
	}

	span.SetStatus(codes.Ok, "")
	return result, nil
}
