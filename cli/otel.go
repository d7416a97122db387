package cli

import (
	"context"
	"fmt"
	"time"

	otelapi "go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// setupTelemetry installs global tracer and meter providers. When endpoint
// is non-empty, spans are exported over OTLP/HTTP; metrics stay in-process
// (no exporter is configured for them here).
func setupTelemetry(ctx context.Context, endpoint string) (func(context.Context) error, error) {
	res := resource.NewSchemaless(
		attribute.String("service.name", "pushover-mcp"),
	)

	meterProvider := sdkmetric.NewMeterProvider(sdkmetric.WithResource(res))
	otelapi.SetMeterProvider(meterProvider)

	if endpoint == "" {
		otelapi.SetTracerProvider(sdktrace.NewTracerProvider(sdktrace.WithResource(res)))
		return func(shutdownCtx context.Context) error {
			return meterProvider.Shutdown(shutdownCtx)
		}, nil
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithResource(res),
	)
	otelapi.SetTracerProvider(tracerProvider)

	return func(shutdownCtx context.Context) error {
		traceErr := tracerProvider.Shutdown(shutdownCtx)
		if metricErr := meterProvider.Shutdown(shutdownCtx); metricErr != nil && traceErr == nil {
			traceErr = metricErr
		}
		return traceErr
	}, nil
}
