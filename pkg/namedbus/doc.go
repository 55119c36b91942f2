/*
Package namedbus provides named, in-process publish/subscribe event buses.

# Overview

Components exchange events through a bus instead of holding references to each
other. Buses are identified by name and live in a Directory, which creates a
bus the first time it is needed and destroys it when its last subscriber
leaves. Delivery is synchronous: every matching handler has run by the time a
post returns.

# Basic Usage

	dir := namedbus.NewDirectory()

	sub := namedbus.Subscribe("audit", func(ctx context.Context, evt *namedbus.Event) {
	    fmt.Println("got", evt.Type)
	})
	dir.Register(ctx, sub, []string{"user.created"})

	dir.Post(ctx, namedbus.New("user.created", user))

A subscriber registered with no types accepts every type (a wildcard).
Registering an existing subscriber again widens its type list; Unregister
narrows it, and removes the subscriber once nothing is left.

# Named Buses

Every call takes an optional bus name. Register and Unregister fall back to the
default bus. Post and PostDelayed without a name broadcast to every existing
bus, oldest first:

	dir.Register(ctx, sub, []string{"tick"}, "metrics")
	dir.Post(ctx, namedbus.New("tick", nil), "metrics") // only the "metrics" bus
	dir.Post(ctx, namedbus.New("tick", nil))            // every bus

A named Post to a bus that does not exist does nothing.

# Delayed Posts

PostDelayed only delivers to subscribers that explicitly listed the event type;
wildcard subscribers never see delayed events. When a bus has no such
subscriber the event is kept, per type and in order, and handed to the first
subscriber that registers for the type:

	dir.PostDelayed(ctx, namedbus.New("config.loaded", cfg))
	// later
	dir.Register(ctx, sub, []string{"config.loaded"}) // sub receives cfg now

The buffer for a type is drained once. Subscribers registering afterwards do
not see the replayed events. Buffered events are dropped when their bus is
destroyed.

# Re-entrancy

No lock is held while a handler runs. Handlers may post, register and
unregister, including on the bus that is delivering to them. Each delivery pass
works on a snapshot of the subscribers taken when it started.

# Observability

Options enable structured logging (WithLogger), OpenTelemetry metrics
(WithMetrics) and tracing (WithTracing), and a delivery journal (WithJournal).
Directory.Stats feeds observability.NewCollector for Prometheus.
*/
package namedbus
