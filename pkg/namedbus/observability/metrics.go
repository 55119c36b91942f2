package observability

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery modes used as the "mode" attribute.
const (
	ModeDirect  = "direct"
	ModeDelayed = "delayed"
	ModeReplay  = "replay"
)

// MetricsRecorder records namedbus metrics.
// Use NewMetricsRecorder() for OTel metrics or NoopMetrics{} when disabled.
type MetricsRecorder interface {
	// RecordPost records a Post (ModeDirect) or PostDelayed (ModeDelayed) call.
	RecordPost(ctx context.Context, mode, eventType string)

	// RecordDelivery records one handler invocation.
	RecordDelivery(ctx context.Context, bus, eventType, mode string, duration time.Duration, panicked bool)

	// RecordBuffered records an event parked in a bus's delay buffer.
	RecordBuffered(ctx context.Context, bus, eventType string)

	// RecordReplayed records events drained from the delay buffer.
	RecordReplayed(ctx context.Context, bus, eventType string, count int)

	// RecordBusLifecycle records bus creation (created=true) or destruction.
	RecordBusLifecycle(ctx context.Context, bus string, created bool)
}

// otelMetrics implements MetricsRecorder using OpenTelemetry.
type otelMetrics struct {
	posted         metric.Int64Counter
	delivered      metric.Int64Counter
	deliverLatency metric.Float64Histogram
	panics         metric.Int64Counter
	buffered       metric.Int64Counter
	replayed       metric.Int64Counter
	busesCreated   metric.Int64Counter
	busesDestroyed metric.Int64Counter
}

var (
	defaultMetrics     *otelMetrics
	defaultMetricsOnce sync.Once
	defaultMetricsErr  error
)

func getDefaultMetrics() (*otelMetrics, error) {
	defaultMetricsOnce.Do(func() {
		defaultMetrics, defaultMetricsErr = newOtelMetrics()
	})
	return defaultMetrics, defaultMetricsErr
}

func newOtelMetrics() (*otelMetrics, error) {
	meter := otel.Meter("namedbus")
	m := &otelMetrics{}
	var err error

	if m.posted, err = meter.Int64Counter("namedbus.events.posted",
		metric.WithDescription("Number of Post and PostDelayed calls"),
	); err != nil {
		return nil, err
	}
	if m.delivered, err = meter.Int64Counter("namedbus.events.delivered",
		metric.WithDescription("Number of handler invocations"),
	); err != nil {
		return nil, err
	}
	if m.deliverLatency, err = meter.Float64Histogram("namedbus.delivery.latency_ms",
		metric.WithDescription("Handler latency in milliseconds"),
		metric.WithUnit("ms"),
	); err != nil {
		return nil, err
	}
	if m.panics, err = meter.Int64Counter("namedbus.handler.panics",
		metric.WithDescription("Number of recovered handler panics"),
	); err != nil {
		return nil, err
	}
	if m.buffered, err = meter.Int64Counter("namedbus.events.buffered",
		metric.WithDescription("Number of events parked in a delay buffer"),
	); err != nil {
		return nil, err
	}
	if m.replayed, err = meter.Int64Counter("namedbus.events.replayed",
		metric.WithDescription("Number of events drained from a delay buffer"),
	); err != nil {
		return nil, err
	}
	if m.busesCreated, err = meter.Int64Counter("namedbus.buses.created",
		metric.WithDescription("Number of buses created"),
	); err != nil {
		return nil, err
	}
	if m.busesDestroyed, err = meter.Int64Counter("namedbus.buses.destroyed",
		metric.WithDescription("Number of buses destroyed"),
	); err != nil {
		return nil, err
	}
	return m, nil
}

// NewMetricsRecorder returns a MetricsRecorder that uses OpenTelemetry.
// If metrics initialization fails, returns a no-op recorder.
//
// The recorder uses the global OTel meter provider. Configure the provider
// before calling this function:
//
//	otel.SetMeterProvider(yourProvider)
func NewMetricsRecorder() MetricsRecorder {
	m, err := getDefaultMetrics()
	if err != nil {
		slog.Warn("metrics initialization failed, using no-op recorder",
			slog.String("error", err.Error()))
		return NoopMetrics{}
	}
	return m
}

func (m *otelMetrics) RecordPost(ctx context.Context, mode, eventType string) {
	m.posted.Add(ctx, 1, metric.WithAttributes(
		attribute.String("mode", mode),
		attribute.String("event_type", eventType),
	))
}

func (m *otelMetrics) RecordDelivery(ctx context.Context, bus, eventType, mode string, duration time.Duration, panicked bool) {
	attrs := metric.WithAttributes(
		attribute.String("bus", bus),
		attribute.String("event_type", eventType),
		attribute.String("mode", mode),
	)
	m.delivered.Add(ctx, 1, attrs)
	m.deliverLatency.Record(ctx, float64(duration.Microseconds())/1000, attrs)
	if panicked {
		m.panics.Add(ctx, 1, attrs)
	}
}

func (m *otelMetrics) RecordBuffered(ctx context.Context, bus, eventType string) {
	m.buffered.Add(ctx, 1, metric.WithAttributes(
		attribute.String("bus", bus),
		attribute.String("event_type", eventType),
	))
}

func (m *otelMetrics) RecordReplayed(ctx context.Context, bus, eventType string, count int) {
	if count <= 0 {
		return
	}
	m.replayed.Add(ctx, int64(count), metric.WithAttributes(
		attribute.String("bus", bus),
		attribute.String("event_type", eventType),
	))
}

func (m *otelMetrics) RecordBusLifecycle(ctx context.Context, bus string, created bool) {
	attrs := metric.WithAttributes(attribute.String("bus", bus))
	if created {
		m.busesCreated.Add(ctx, 1, attrs)
		return
	}
	m.busesDestroyed.Add(ctx, 1, attrs)
}
