package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("namedbus")

// SpanManager handles trace span lifecycle.
// Use NewSpanManager() for OTel tracing or NoopSpanManager{} when disabled.
type SpanManager interface {
	// StartPostSpan starts a span for one Post or PostDelayed call.
	// bus is empty for unnamed broadcasts.
	StartPostSpan(ctx context.Context, mode, bus, eventType, eventID string) (context.Context, trace.Span)

	// EndPostSpan records the number of deliveries and whether the event was
	// buffered, then ends the span.
	EndPostSpan(span trace.Span, delivered int, buffered bool)

	// AddSpanEvent adds an event to the current span in context.
	AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue)
}

type otelSpanManager struct{}

// NewSpanManager returns a SpanManager that uses the global OTel tracer provider.
func NewSpanManager() SpanManager {
	return &otelSpanManager{}
}

func (m *otelSpanManager) StartPostSpan(ctx context.Context, mode, bus, eventType, eventID string) (context.Context, trace.Span) {
	name := "namedbus.post"
	if mode == ModeDelayed {
		name = "namedbus.post_delayed"
	}
	return tracer.Start(ctx, name,
		trace.WithAttributes(
			attribute.String("bus", bus),
			attribute.Bool("broadcast", bus == ""),
			attribute.String("event.type", eventType),
			attribute.String("event.id", eventID),
		),
		trace.WithSpanKind(trace.SpanKindProducer),
	)
}

func (m *otelSpanManager) EndPostSpan(span trace.Span, delivered int, buffered bool) {
	if span == nil {
		return
	}
	span.SetAttributes(
		attribute.Int("delivered", delivered),
		attribute.Bool("buffered", buffered),
	)
	span.SetStatus(codes.Ok, "")
	span.End()
}

func (m *otelSpanManager) AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}
