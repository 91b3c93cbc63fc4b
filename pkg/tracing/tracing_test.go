package tracing

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newRecorder(t *testing.T) (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	t.Helper()
	rec := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return rec, tp
}

func TestRun_Success(t *testing.T) {
	t.Parallel()

	rec, tp := newRecorder(t)
	called := false

	err := Run(context.Background(), tp.Tracer("test"), "unit.work", func(ctx context.Context) error {
		called = true
		return nil
	}, attribute.String("key", "value"))
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not called")
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Name() != "unit.work" {
		t.Errorf("span name = %q, want %q", spans[0].Name(), "unit.work")
	}
	if spans[0].Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", spans[0].Status().Code)
	}
	if len(spans[0].Attributes()) != 1 {
		t.Errorf("attributes = %d, want 1", len(spans[0].Attributes()))
	}
}

func TestRun_ErrorIsReturnedAndRecorded(t *testing.T) {
	t.Parallel()

	rec, tp := newRecorder(t)
	boom := errors.New("boom")

	err := Run(context.Background(), tp.Tracer("test"), "unit.fail", func(context.Context) error {
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}

	spans := rec.Ended()
	if len(spans) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("expected the error to be recorded as a span event")
	}
}

func TestDo_ReturnsResult(t *testing.T) {
	t.Parallel()

	rec, tp := newRecorder(t)

	got, err := Do(context.Background(), tp.Tracer("test"), "unit.value", func(context.Context) (int, error) {
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if got != 42 {
		t.Errorf("Do() = %d, want 42", got)
	}
	if len(rec.Ended()) != 1 {
		t.Errorf("ended spans = %d, want 1", len(rec.Ended()))
	}
}

func TestDo_NestedSpansShareTrace(t *testing.T) {
	t.Parallel()

	rec, tp := newRecorder(t)
	tracer := tp.Tracer("test")

	err := Run(context.Background(), tracer, "outer", func(ctx context.Context) error {
		return Run(ctx, tracer, "inner", func(context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	spans := rec.Ended()
	if len(spans) != 2 {
		t.Fatalf("ended spans = %d, want 2", len(spans))
	}
	inner, outer := spans[0], spans[1]
	if inner.Parent().SpanID() != outer.SpanContext().SpanID() {
		t.Error("inner span should be a child of outer span")
	}
}

func TestTracer_FallsBackToGlobal(t *testing.T) {
	t.Parallel()

	if Tracer(nil) == nil {
		t.Fatal("Tracer(nil) returned nil")
	}

	// The global provider is a no-op; Run must still call through.
	called := false
	if err := Run(context.Background(), nil, "noop", func(context.Context) error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !called {
		t.Error("wrapped function was not called with the global tracer")
	}
}
