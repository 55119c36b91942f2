package namedbus

import (
	"context"

	"github.com/google/uuid"
)

// Handler receives events synchronously. HandleEvent runs on the goroutine
// that posted the event and may itself post, register or unregister.
type Handler interface {
	HandleEvent(ctx context.Context, evt *Event)
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(ctx context.Context, evt *Event)

// HandleEvent implements Handler.
func (f HandlerFunc) HandleEvent(ctx context.Context, evt *Event) {
	f(ctx, evt)
}

// TypedHandler adapts a function taking a payload of type T. Events whose
// payload is not a T are skipped.
func TypedHandler[T any](fn func(ctx context.Context, payload T, evt *Event)) Handler {
	return HandlerFunc(func(ctx context.Context, evt *Event) {
		if payload, ok := PayloadAs[T](evt); ok {
			fn(ctx, payload, evt)
		}
	})
}

// Subscriber is an opaque registration handle. Buses compare subscribers by
// identity: two handles wrapping the same handler are distinct subscribers.
type Subscriber struct {
	id      string
	name    string
	handler Handler
}

// NewSubscriber creates a subscriber handle. name is used in logs and the
// journal; it does not need to be unique. A nil handler yields a subscriber
// that every bus operation ignores.
func NewSubscriber(name string, handler Handler) *Subscriber {
	return &Subscriber{
		id:      uuid.NewString(),
		name:    name,
		handler: handler,
	}
}

// Subscribe is shorthand for NewSubscriber(name, HandlerFunc(fn)).
func Subscribe(name string, fn func(ctx context.Context, evt *Event)) *Subscriber {
	if fn == nil {
		return NewSubscriber(name, nil)
	}
	return NewSubscriber(name, HandlerFunc(fn))
}

// ID returns the subscriber's unique identifier.
func (s *Subscriber) ID() string {
	return s.id
}

// Name returns the diagnostic name, falling back to the ID.
func (s *Subscriber) Name() string {
	if s.name != "" {
		return s.name
	}
	return s.id
}

// deliverable reports whether s can receive events.
func (s *Subscriber) deliverable() bool {
	return s != nil && s.handler != nil
}
