package namedbus

import (
	"log/slog"

	"github.com/randalmurphal/namedbus/pkg/namedbus/journal"
	"github.com/randalmurphal/namedbus/pkg/namedbus/observability"
)

// DefaultBusName is the bus used when no name is given.
const DefaultBusName = "default"

// Delivery modes reported in Delivery.Mode, metrics and the journal.
const (
	ModeDirect  = observability.ModeDirect
	ModeDelayed = observability.ModeDelayed
	ModeReplay  = observability.ModeReplay
)

// Option configures a Directory.
type Option func(*Directory)

// WithLogger sets the logger for diagnostics. Most records are at debug level.
// Default: nil (no logging).
func WithLogger(logger *slog.Logger) Option {
	return func(d *Directory) {
		d.logger = logger
	}
}

// WithDefaultBus changes the name used when Register or Unregister get no
// name, and the bus an unnamed PostDelayed makes sure exists.
// Default: "default"
func WithDefaultBus(name string) Option {
	return func(d *Directory) {
		if name != "" {
			d.defaultName = name
		}
	}
}

// WithMetrics enables OpenTelemetry metrics using the global meter provider.
// Default: false
func WithMetrics(enabled bool) Option {
	return func(d *Directory) {
		if enabled {
			d.metrics = observability.NewMetricsRecorder()
		} else {
			d.metrics = observability.NoopMetrics{}
		}
	}
}

// WithMetricsRecorder sets a specific recorder.
func WithMetricsRecorder(m observability.MetricsRecorder) Option {
	return func(d *Directory) {
		if m != nil {
			d.metrics = m
		}
	}
}

// WithTracing enables an OpenTelemetry span per Post and PostDelayed call
// using the global tracer provider.
// Default: false
func WithTracing(enabled bool) Option {
	return func(d *Directory) {
		if enabled {
			d.spans = observability.NewSpanManager()
		} else {
			d.spans = observability.NoopSpanManager{}
		}
	}
}

// WithSpanManager sets a specific span manager.
func WithSpanManager(m observability.SpanManager) Option {
	return func(d *Directory) {
		if m != nil {
			d.spans = m
		}
	}
}

// WithMiddleware wraps every subscriber's handler, first middleware outermost.
// Middleware applies to subscriptions created after the option is applied,
// so in practice to all of them.
func WithMiddleware(mw ...Middleware) Option {
	return func(d *Directory) {
		d.middleware = append(d.middleware, mw...)
	}
}

// WithJournal records every delivery to store. The Directory takes ownership
// and closes the store in Close.
func WithJournal(store journal.Store) Option {
	return func(d *Directory) {
		d.journal = store
	}
}
