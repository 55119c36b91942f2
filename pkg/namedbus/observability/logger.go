// Package observability provides logging, metrics and tracing for namedbus.
//
// Features:
//   - Structured logging via slog (Go stdlib)
//   - Metrics via OpenTelemetry
//   - Tracing via OpenTelemetry
//   - A Prometheus collector exposing directory state at scrape time
//
// All features are opt-in and have no-op implementations when disabled.
package observability

import (
	"fmt"
	"log/slog"
	"strings"
)

// ParseLevel maps a config log level to a slog.Level.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// LogBusCreated logs lazy creation of a bus.
func LogBusCreated(logger *slog.Logger, bus string) {
	if logger == nil {
		return
	}
	logger.Debug("bus created", slog.String("bus", bus))
}

// LogBusDestroyed logs teardown of a bus after its last subscriber left.
func LogBusDestroyed(logger *slog.Logger, bus string, discarded int) {
	if logger == nil {
		return
	}
	logger.Debug("bus destroyed",
		slog.String("bus", bus),
		slog.Int("discarded_events", discarded),
	)
}

// LogBusMissing logs a named post to a bus that does not exist.
func LogBusMissing(logger *slog.Logger, bus, eventType string) {
	if logger == nil {
		return
	}
	logger.Debug("bus not found",
		slog.String("bus", bus),
		slog.String("event_type", eventType),
	)
}

// LogSubscribed logs a new or widened subscription.
func LogSubscribed(logger *slog.Logger, bus, subscriber string, types []string) {
	if logger == nil {
		return
	}
	logger.Debug("subscriber registered",
		slog.String("bus", bus),
		slog.String("subscriber", subscriber),
		slog.Any("types", types),
	)
}

// LogUnsubscribed logs a narrowed or removed subscription.
// types is empty when the subscriber was removed entirely.
func LogUnsubscribed(logger *slog.Logger, bus, subscriber string, types []string) {
	if logger == nil {
		return
	}
	logger.Debug("subscriber unregistered",
		slog.String("bus", bus),
		slog.String("subscriber", subscriber),
		slog.Any("types", types),
	)
}

// LogIgnored logs a call that was dropped as a no-op.
func LogIgnored(logger *slog.Logger, op, bus, reason string) {
	if logger == nil {
		return
	}
	logger.Debug("operation ignored",
		slog.String("op", op),
		slog.String("bus", bus),
		slog.String("reason", reason),
	)
}

// LogDispatch logs delivery of an event to one subscriber.
func LogDispatch(logger *slog.Logger, bus, subscriber, eventType, eventID string) {
	if logger == nil {
		return
	}
	logger.Debug("dispatch",
		slog.String("bus", bus),
		slog.String("subscriber", subscriber),
		slog.String("event_type", eventType),
		slog.String("event_id", eventID),
	)
}

// LogBuffered logs an event parked in the delay buffer.
func LogBuffered(logger *slog.Logger, bus, eventType string, depth int) {
	if logger == nil {
		return
	}
	logger.Debug("event buffered",
		slog.String("bus", bus),
		slog.String("event_type", eventType),
		slog.Int("depth", depth),
	)
}

// LogHandlerPanic logs a recovered handler panic.
func LogHandlerPanic(logger *slog.Logger, subscriber, eventType string, recovered any) {
	if logger == nil {
		return
	}
	logger.Error("handler panic",
		slog.String("subscriber", subscriber),
		slog.String("event_type", eventType),
		slog.String("panic", fmt.Sprint(recovered)),
	)
}

// LogJournalError logs a failed journal write (non-fatal).
func LogJournalError(logger *slog.Logger, bus, eventID string, err error) {
	if logger == nil {
		return
	}
	logger.Warn("journal write failed",
		slog.String("bus", bus),
		slog.String("event_id", eventID),
		slog.String("error", err.Error()),
	)
}
