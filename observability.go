package pushovermcp

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// SendObservation captures one tool invocation outcome.
type SendObservation struct {
	RequestID  string
	DurationMS int64
	Success    bool
	ErrorCode  string
}

// HealthObservation captures one credential health-check outcome.
type HealthObservation struct {
	DurationMS int64
	Healthy    bool
	ErrorCode  string
}

// Observer records invocation and health signals into OpenTelemetry. A nil
// *Observer is a no-op everywhere it is consulted.
type Observer struct {
	tracer trace.Tracer

	sends   metric.Int64Counter
	health  metric.Int64Counter
	latency metric.Float64Histogram
}

// NewObserver creates an observer bound to the provided meter and tracer.
func NewObserver(meter metric.Meter, tracer trace.Tracer) (*Observer, error) {
	sends, err := meter.Int64Counter(
		"pushover.sends",
		metric.WithDescription("Number of notification send attempts"),
	)
	if err != nil {
		return nil, err
	}
	health, err := meter.Int64Counter(
		"pushover.health.checks",
		metric.WithDescription("Number of credential health checks"),
	)
	if err != nil {
		return nil, err
	}
	latency, err := meter.Float64Histogram(
		"pushover.latency",
		metric.WithDescription("Upstream round-trip latency in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &Observer{
		tracer:  tracer,
		sends:   sends,
		health:  health,
		latency: latency,
	}, nil
}

// ObserveSend records one invocation result.
func (o *Observer) ObserveSend(observation SendObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("request_id", observation.RequestID),
		attribute.Bool("success", observation.Success),
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.sends.Add(ctx, 1, options)
	o.latency.Record(ctx, float64(time.Duration(observation.DurationMS)*time.Millisecond)/float64(time.Second), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "pushover.send", trace.WithAttributes(attrs...))
	if !observation.Success {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}

// ObserveHealth records one credential check result.
func (o *Observer) ObserveHealth(observation HealthObservation) {
	if o == nil {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("healthy", observation.Healthy),
	}
	if observation.ErrorCode != "" {
		attrs = append(attrs, attribute.String("error_code", observation.ErrorCode))
	}

	ctx := context.Background()
	options := metric.WithAttributes(attrs...)
	o.health.Add(ctx, 1, options)
	o.latency.Record(ctx, float64(time.Duration(observation.DurationMS)*time.Millisecond)/float64(time.Second), options)

	if o.tracer == nil {
		return
	}
	_, span := o.tracer.Start(ctx, "pushover.health.check", trace.WithAttributes(attrs...))
	if !observation.Healthy {
		span.SetStatus(codes.Error, observation.ErrorCode)
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
