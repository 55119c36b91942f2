package observability

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureLogger returns a debug-level JSON logger writing into a buffer.
func captureLogger() (*slog.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	return slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug})), buf
}

func records(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range bytes.Split(buf.Bytes(), []byte("\n")) {
		if len(line) == 0 {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m))
		out = append(out, m)
	}
	return out
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	recs := records(t, buf)
	require.NotEmpty(t, recs)
	return recs[len(recs)-1]
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"", slog.LevelInfo, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLogHelpers_NilLogger(t *testing.T) {
	assert.NotPanics(t, func() {
		LogBusCreated(nil, "b")
		LogBusDestroyed(nil, "b", 0)
		LogBusMissing(nil, "b", "t")
		LogSubscribed(nil, "b", "s", nil)
		LogUnsubscribed(nil, "b", "s", nil)
		LogIgnored(nil, "post", "b", "r")
		LogDispatch(nil, "b", "s", "t", "id")
		LogBuffered(nil, "b", "t", 1)
		LogHandlerPanic(nil, "s", "t", "boom")
		LogJournalError(nil, "b", "id", errors.New("x"))
	})
}

func TestLogSubscribed(t *testing.T) {
	logger, buf := captureLogger()

	LogSubscribed(logger, "ui", "panel", []string{"talk", "walk"})

	rec := lastRecord(t, buf)
	assert.Equal(t, "subscriber registered", rec["msg"])
	assert.Equal(t, "DEBUG", rec["level"])
	assert.Equal(t, "ui", rec["bus"])
	assert.Equal(t, "panel", rec["subscriber"])
	assert.Equal(t, []any{"talk", "walk"}, rec["types"])
}

func TestLogBusLifecycle(t *testing.T) {
	logger, buf := captureLogger()

	LogBusCreated(logger, "ui")
	LogBusDestroyed(logger, "ui", 3)

	recs := records(t, buf)
	require.Len(t, recs, 2)
	assert.Equal(t, "bus created", recs[0]["msg"])
	assert.Equal(t, "bus destroyed", recs[1]["msg"])
	assert.Equal(t, float64(3), recs[1]["discarded_events"]) // JSON decodes ints as float64
}

func TestLogDispatchAndBuffered(t *testing.T) {
	logger, buf := captureLogger()

	LogDispatch(logger, "ui", "panel", "talk", "evt-1")
	rec := lastRecord(t, buf)
	assert.Equal(t, "dispatch", rec["msg"])
	assert.Equal(t, "evt-1", rec["event_id"])

	LogBuffered(logger, "ui", "talk", 2)
	rec = lastRecord(t, buf)
	assert.Equal(t, "event buffered", rec["msg"])
	assert.Equal(t, float64(2), rec["depth"])
}

func TestLogHandlerPanic(t *testing.T) {
	logger, buf := captureLogger()

	LogHandlerPanic(logger, "panel", "talk", "boom")

	rec := lastRecord(t, buf)
	assert.Equal(t, "ERROR", rec["level"])
	assert.Equal(t, "boom", rec["panic"])
}

func TestLogJournalError(t *testing.T) {
	logger, buf := captureLogger()

	LogJournalError(logger, "ui", "evt-1", errors.New("disk full"))

	rec := lastRecord(t, buf)
	assert.Equal(t, "WARN", rec["level"])
	assert.Equal(t, "disk full", rec["error"])
}

func TestLogLevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewJSONHandler(buf, &slog.HandlerOptions{Level: slog.LevelInfo}))

	LogBusCreated(logger, "ui")
	LogBusMissing(logger, "ghost", "talk")
	assert.Empty(t, buf.String(), "debug records must be filtered at info level")

	LogHandlerPanic(logger, "panel", "talk", "boom")
	assert.NotEmpty(t, buf.String())
}
