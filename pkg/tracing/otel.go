// Package tracing wires OpenTelemetry trace export.
package tracing

import (
	"context"
	"log/slog"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// EndpointEnv enables export when set.
const EndpointEnv = "OTEL_EXPORTER_OTLP_ENDPOINT"

// Init installs a global tracer provider exporting over OTLP/HTTP if
// OTEL_EXPORTER_OTLP_ENDPOINT is set. The exporter reads the remaining
// OTEL_EXPORTER_OTLP_* variables itself.
// Returns a flush function that must be called before process exit.
func Init(ctx context.Context) (flush func()) {
	endpoint := os.Getenv(EndpointEnv)
	if endpoint == "" {
		return func() {}
	}

	exp, err := otlptracehttp.New(ctx)
	if err != nil {
		slog.Warn("otel tracing disabled", "error", err)
		return func() {}
	}

	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exp))
	otel.SetTracerProvider(tp)
	slog.Debug("otel tracing enabled", "endpoint", endpoint)

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			slog.Warn("flush traces", "error", err)
		}
	}
}
