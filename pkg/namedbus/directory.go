package namedbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/namedbus/pkg/namedbus/journal"
	"github.com/randalmurphal/namedbus/pkg/namedbus/observability"
	"github.com/randalmurphal/namedbus/pkg/namedbus/registry"
)

// Directory maps bus names to buses. It creates a bus on first use and
// destroys it when its last subscriber leaves.
//
// A Directory is safe for concurrent use. Delivery is synchronous: every
// matching handler has returned by the time Post or PostDelayed returns. No
// lock is held while a handler runs, so handlers may call back into the
// Directory.
type Directory struct {
	buses       *registry.Registry[string, *Bus]
	defaultName string

	logger     *slog.Logger
	metrics    observability.MetricsRecorder
	spans      observability.SpanManager
	middleware []Middleware

	journal       journal.Store
	journalClosed atomic.Bool
}

// NewDirectory creates an empty directory.
func NewDirectory(opts ...Option) *Directory {
	d := &Directory{
		buses:       registry.New[string, *Bus](),
		defaultName: DefaultBusName,
		metrics:     observability.NoopMetrics{},
		spans:       observability.NoopSpanManager{},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// DefaultName returns the name used when no bus name is given.
func (d *Directory) DefaultName() string {
	return d.defaultName
}

// Post delivers evt to every subscriber that accepts its type, including
// wildcard subscribers. With a name, only that bus is used, and nothing
// happens if it does not exist. Without one, every existing bus receives
// the event, oldest bus first.
func (d *Directory) Post(ctx context.Context, evt *Event, name ...string) {
	if evt == nil {
		observability.LogIgnored(d.logger, "post", firstName(name), "nil event")
		return
	}
	target := firstName(name)

	ctx, span := d.spans.StartPostSpan(ctx, ModeDirect, target, evt.Type, evt.ID)
	d.metrics.RecordPost(ctx, ModeDirect, evt.Type)

	delivered := 0
	if target != "" {
		if b := d.Bus(target, false); b != nil {
			delivered = b.Emit(ctx, evt, false)
		} else {
			observability.LogBusMissing(d.logger, target, evt.Type)
		}
	} else {
		for _, b := range d.buses.Values() {
			delivered += b.Emit(ctx, evt, false)
		}
	}

	d.spans.EndPostSpan(span, delivered, false)
}

// PostDelayed delivers evt to subscribers that explicitly listed its type.
// Wildcard subscribers are skipped. A bus with no such subscriber keeps the
// event until one registers for the type.
//
// With a name, that bus is created if needed. Without one, the default bus is
// created if needed and every existing bus receives the event.
func (d *Directory) PostDelayed(ctx context.Context, evt *Event, name ...string) {
	if evt == nil {
		observability.LogIgnored(d.logger, "post_delayed", firstName(name), "nil event")
		return
	}
	target := firstName(name)

	ctx, span := d.spans.StartPostSpan(ctx, ModeDelayed, target, evt.Type, evt.ID)
	d.metrics.RecordPost(ctx, ModeDelayed, evt.Type)

	delivered, buffered := 0, false
	queue := func(b *Bus) bool {
		n, live := b.queue(ctx, evt)
		delivered += n
		buffered = buffered || (live && n == 0)
		return live
	}

	if target != "" {
		d.withLiveBus(target, queue)
	} else {
		d.Bus(d.defaultName, true)
		for _, b := range d.buses.Values() {
			queue(b)
		}
	}

	d.spans.EndPostSpan(span, delivered, buffered)
}

// Register subscribes sub to types on the named bus (default bus when no
// name is given), creating the bus if needed. Empty types means every type.
// Registering again widens the existing registration; buffered events of
// newly added types are delivered to sub before Register returns.
func (d *Directory) Register(ctx context.Context, sub *Subscriber, types []string, name ...string) {
	target := d.nameOrDefault(name)
	if !sub.deliverable() {
		observability.LogIgnored(d.logger, "register", target, "subscriber cannot receive events")
		return
	}

	set := normalizeTypes(types)
	d.withLiveBus(target, func(b *Bus) bool {
		return b.add(ctx, sub, set)
	})
}

// Unregister removes types from sub's registration on the named bus (default
// bus when no name is given). Empty types, or removing every type sub listed,
// removes sub entirely; the bus is destroyed when its last subscriber leaves.
func (d *Directory) Unregister(ctx context.Context, sub *Subscriber, types []string, name ...string) {
	target := d.nameOrDefault(name)
	if !sub.deliverable() {
		observability.LogIgnored(d.logger, "unregister", target, "subscriber cannot receive events")
		return
	}

	b := d.Bus(target, false)
	if b == nil {
		observability.LogIgnored(d.logger, "unregister", target, "bus not found")
		return
	}

	if emptied, discarded := b.remove(ctx, sub, normalizeTypes(types)); emptied {
		d.destroy(ctx, b, discarded)
	}
}

// Bus returns the named bus (default bus for ""), creating it when
// createIfMissing is set. It returns nil if the bus does not exist and was
// not created.
func (d *Directory) Bus(name string, createIfMissing bool) *Bus {
	if name == "" {
		name = d.defaultName
	}
	if !createIfMissing {
		b, _ := d.buses.Get(name)
		return b
	}

	b, created := d.buses.GetOrCreate(name, func() *Bus {
		return newBus(d, name)
	})
	if created {
		observability.LogBusCreated(d.logger, name)
		d.metrics.RecordBusLifecycle(context.Background(), name, true)
	}
	return b
}

// Names returns the names of existing buses in creation order.
func (d *Directory) Names() []string {
	return d.buses.Keys()
}

// Stats returns subscriber and buffer counts for every existing bus.
func (d *Directory) Stats() []observability.BusStats {
	var stats []observability.BusStats
	d.buses.Range(func(name string, b *Bus) bool {
		b.mu.Lock()
		stats = append(stats, observability.BusStats{
			Name:        name,
			Subscribers: len(b.subs),
			Buffered:    b.bufferedLocked(),
		})
		b.mu.Unlock()
		return true
	})
	return stats
}

// Close releases the journal, if any. The directory stays usable; deliveries
// are no longer journaled.
func (d *Directory) Close() error {
	if d.journal == nil || !d.journalClosed.CompareAndSwap(false, true) {
		return nil
	}
	return d.journal.Close()
}

// withLiveBus runs fn against the named bus, creating it if needed. fn returns
// false when the bus it got was torn down concurrently; the stale entry is
// dropped and fn runs again on a fresh bus.
func (d *Directory) withLiveBus(name string, fn func(*Bus) bool) {
	for {
		b := d.Bus(name, true)
		if fn(b) {
			return
		}
		d.forget(b)
	}
}

// destroy removes a bus that lost its last subscriber.
func (d *Directory) destroy(ctx context.Context, b *Bus, discarded int) {
	if d.forget(b) {
		observability.LogBusDestroyed(d.logger, b.name, discarded)
		d.metrics.RecordBusLifecycle(ctx, b.name, false)
	}
}

// forget drops b from the directory unless the name already maps to another bus.
func (d *Directory) forget(b *Bus) bool {
	return d.buses.CompareAndDelete(b.name, func(cur *Bus) bool { return cur == b })
}

// deliver invokes one subscriber's handler. Panics are contained so that one
// failing subscriber does not stop delivery to the rest.
func (d *Directory) deliver(ctx context.Context, b *Bus, t target, evt *Event, mode string) {
	ctx = withDelivery(ctx, Delivery{Bus: b.name, Subscriber: t.sub, Mode: mode})
	observability.LogDispatch(d.logger, b.name, t.sub.Name(), evt.Type, evt.ID)

	start := time.Now()
	panicked := d.invoke(ctx, t, evt)
	d.metrics.RecordDelivery(ctx, b.name, evt.Type, mode, time.Since(start), panicked)

	d.record(ctx, b, t.sub, evt, mode)
}

func (d *Directory) invoke(ctx context.Context, t target, evt *Event) (panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			observability.LogHandlerPanic(d.logger, t.sub.Name(), evt.Type, r)
		}
	}()
	t.handler.HandleEvent(ctx, evt)
	return false
}

// record appends a delivery to the journal. Failures are logged and ignored;
// a payload that cannot be encoded is journaled without one.
func (d *Directory) record(ctx context.Context, b *Bus, sub *Subscriber, evt *Event, mode string) {
	if d.journal == nil || d.journalClosed.Load() {
		return
	}

	payload, err := json.Marshal(evt.Payload)
	if err != nil {
		observability.LogJournalError(d.logger, b.name, evt.ID, fmt.Errorf("encode payload: %w", err))
		payload = nil
	}

	_, err = d.journal.Append(ctx, journal.Entry{
		EventID:     evt.ID,
		EventType:   evt.Type,
		Bus:         b.name,
		Subscriber:  sub.Name(),
		Mode:        mode,
		Payload:     payload,
		DeliveredAt: time.Now(),
	})
	if err != nil {
		observability.LogJournalError(d.logger, b.name, evt.ID, err)
	}
}

func (d *Directory) nameOrDefault(name []string) string {
	if n := firstName(name); n != "" {
		return n
	}
	return d.defaultName
}

func firstName(name []string) string {
	if len(name) == 0 {
		return ""
	}
	return name[0]
}
