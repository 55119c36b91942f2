package observability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

// setupMetricsTest installs a test meter provider and returns its reader.
func setupMetricsTest(t *testing.T) *sdkmetric.ManualReader {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	original := otel.GetMeterProvider()
	otel.SetMeterProvider(provider)

	t.Cleanup(func() {
		otel.SetMeterProvider(original)
		if err := provider.Shutdown(context.Background()); err != nil {
			t.Logf("Error shutting down meter provider: %v", err)
		}
	})
	return reader
}

func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) *metricdata.ResourceMetrics {
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return &rm
}

func findMetric(rm *metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

// sumFor returns the counter value of the datapoint whose attribute key has value.
func sumFor(t *testing.T, rm *metricdata.ResourceMetrics, name, key, value string) int64 {
	t.Helper()
	m := findMetric(rm, name)
	require.NotNil(t, m, "metric %s not found", name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "Expected Sum type")

	var total int64
	for _, dp := range sum.DataPoints {
		if v, ok := dp.Attributes.Value(attribute.Key(key)); ok && v.AsString() == value {
			total += dp.Value
		}
	}
	return total
}

func TestNewMetricsRecorder(t *testing.T) {
	setupMetricsTest(t)

	recorder := NewMetricsRecorder()
	require.NotNil(t, recorder)

	_, isNoop := recorder.(NoopMetrics)
	assert.False(t, isNoop, "Expected real metrics recorder, got noop")
}

func TestRecordPost(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordPost(ctx, ModeDirect, "talk")
	m.RecordPost(ctx, ModeDelayed, "talk")
	m.RecordPost(ctx, ModeDelayed, "walk")

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumFor(t, rm, "namedbus.events.posted", "mode", ModeDirect))
	assert.Equal(t, int64(2), sumFor(t, rm, "namedbus.events.posted", "mode", ModeDelayed))
}

func TestRecordDelivery(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordDelivery(ctx, "ui", "talk", ModeDirect, 2*time.Millisecond, false)
	m.RecordDelivery(ctx, "ui", "talk", ModeReplay, time.Millisecond, true)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "namedbus.events.delivered", "bus", "ui"))
	assert.Equal(t, int64(1), sumFor(t, rm, "namedbus.handler.panics", "mode", ModeReplay))

	latency := findMetric(rm, "namedbus.delivery.latency_ms")
	require.NotNil(t, latency)
	hist, ok := latency.Data.(metricdata.Histogram[float64])
	require.True(t, ok, "Expected Histogram type")
	require.NotEmpty(t, hist.DataPoints)
}

func TestRecordBufferAndReplay(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordBuffered(ctx, "ui", "talk")
	m.RecordBuffered(ctx, "ui", "talk")
	m.RecordReplayed(ctx, "ui", "talk", 2)
	m.RecordReplayed(ctx, "ui", "walk", 0) // ignored

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(2), sumFor(t, rm, "namedbus.events.buffered", "event_type", "talk"))
	assert.Equal(t, int64(2), sumFor(t, rm, "namedbus.events.replayed", "event_type", "talk"))
	assert.Equal(t, int64(0), sumFor(t, rm, "namedbus.events.replayed", "event_type", "walk"))
}

func TestRecordBusLifecycle(t *testing.T) {
	reader := setupMetricsTest(t)
	m, err := newOtelMetrics()
	require.NoError(t, err)
	ctx := context.Background()

	m.RecordBusLifecycle(ctx, "ui", true)
	m.RecordBusLifecycle(ctx, "ui", false)
	m.RecordBusLifecycle(ctx, "panel", true)

	rm := collectMetrics(t, reader)
	assert.Equal(t, int64(1), sumFor(t, rm, "namedbus.buses.created", "bus", "ui"))
	assert.Equal(t, int64(1), sumFor(t, rm, "namedbus.buses.created", "bus", "panel"))
	assert.Equal(t, int64(1), sumFor(t, rm, "namedbus.buses.destroyed", "bus", "ui"))
}

func TestNoopMetrics(t *testing.T) {
	var m MetricsRecorder = NoopMetrics{}
	ctx := context.Background()
	assert.NotPanics(t, func() {
		m.RecordPost(ctx, ModeDirect, "t")
		m.RecordDelivery(ctx, "b", "t", ModeDirect, time.Second, true)
		m.RecordBuffered(ctx, "b", "t")
		m.RecordReplayed(ctx, "b", "t", 3)
		m.RecordBusLifecycle(ctx, "b", true)
	})
}
