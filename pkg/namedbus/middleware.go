package namedbus

import (
	"context"
	"time"
)

// Delivery describes the delivery in progress. Handlers and middleware can
// read it with DeliveryFromContext.
type Delivery struct {
	Bus        string
	Subscriber *Subscriber

	// Mode is ModeDirect, ModeDelayed or ModeReplay.
	Mode string
}

type deliveryKey struct{}

// DeliveryFromContext returns the delivery info attached by the bus.
func DeliveryFromContext(ctx context.Context) (Delivery, bool) {
	d, ok := ctx.Value(deliveryKey{}).(Delivery)
	return d, ok
}

func withDelivery(ctx context.Context, d Delivery) context.Context {
	return context.WithValue(ctx, deliveryKey{}, d)
}

// Middleware wraps a subscriber's handler.
type Middleware func(next Handler) Handler

// Chain applies middleware in order, with the first middleware outermost.
func Chain(h Handler, middleware ...Middleware) Handler {
	for i := len(middleware) - 1; i >= 0; i-- {
		h = middleware[i](h)
	}
	return h
}

// RecoveryMiddleware recovers handler panics and reports them to onPanic.
// The bus already isolates panics; use this to observe them inside a chain.
func RecoveryMiddleware(onPanic func(ctx context.Context, evt *Event, recovered any)) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, evt *Event) {
			defer func() {
				if r := recover(); r != nil && onPanic != nil {
					onPanic(ctx, evt, r)
				}
			}()
			next.HandleEvent(ctx, evt)
		})
	}
}

// LoggingMiddleware reports every handled event with its duration.
func LoggingMiddleware(logFn func(ctx context.Context, evt *Event, duration time.Duration)) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, evt *Event) {
			start := time.Now()
			next.HandleEvent(ctx, evt)
			logFn(ctx, evt, time.Since(start))
		})
	}
}

// TypeFilterMiddleware only passes events whose type is in types.
func TypeFilterMiddleware(types ...string) Middleware {
	allowed := normalizeTypes(types)
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, evt *Event) {
			if allowed.wildcard() || allowed.contains(evt.Type) {
				next.HandleEvent(ctx, evt)
			}
		})
	}
}
