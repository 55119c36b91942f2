package namedbus

import (
	"time"

	"github.com/google/uuid"
)

// Flags is an opaque bit set carried with an event. The bus never inspects it;
// it exists so producers and consumers can agree on delivery hints of their own.
type Flags uint32

// Has reports whether every bit in f2 is set in f.
func (f Flags) Has(f2 Flags) bool {
	return f&f2 == f2
}

// Event is a typed message with an opaque payload.
// Events are shared by pointer between subscribers and must not be modified
// once posted.
type Event struct {
	ID        string
	Type      string
	Payload   any
	Flags     Flags
	Timestamp time.Time
}

// EventOption configures event creation.
type EventOption func(*Event)

// WithEventID sets a specific event ID (default: random UUID).
func WithEventID(id string) EventOption {
	return func(e *Event) {
		e.ID = id
	}
}

// WithTimestamp sets a specific timestamp (default: time.Now()).
func WithTimestamp(t time.Time) EventOption {
	return func(e *Event) {
		e.Timestamp = t
	}
}

// WithFlags sets the event flags.
func WithFlags(f Flags) EventOption {
	return func(e *Event) {
		e.Flags = f
	}
}

// New creates an event of the given type carrying payload.
func New(eventType string, payload any, opts ...EventOption) *Event {
	evt := &Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now(),
	}
	for _, opt := range opts {
		opt(evt)
	}
	return evt
}

// PayloadAs returns the payload of evt as T.
// The second result is false when evt is nil or the payload has another type.
func PayloadAs[T any](evt *Event) (T, bool) {
	var zero T
	if evt == nil {
		return zero, false
	}
	v, ok := evt.Payload.(T)
	if !ok {
		return zero, false
	}
	return v, true
}
