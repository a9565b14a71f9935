package daemon

import (
	"context"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// newTracerProvider builds a local tracer provider with a batching
// span processor writing to w (the daemon passes os.Stderr); there is no OTLP
// collector in scope, only a local exporter an operator can redirect.
func newTracerProvider(w io.Writer, serviceName string) (*sdktrace.TracerProvider, error) {
	res, err := resource.New(context.Background(),
		resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return nil, err
	}
	exp, err := newStdoutExporter(w)
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	return tp, nil
}

// Tracer is the daemon-wide tracer, named after the three span kinds
// it emits: entropy.tick, battery.charge, gate.verify_work.
func Tracer() trace.Tracer {
	return otel.Tracer("pohwd/internal/daemon")
}
