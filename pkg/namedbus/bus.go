package namedbus

import (
	"context"
	"sync"

	"github.com/randalmurphal/namedbus/pkg/namedbus/observability"
)

// subscription is one subscriber's registration on a bus.
type subscription struct {
	sub     *Subscriber
	types   typeSet
	handler Handler // sub.handler wrapped in the directory middleware
}

// target is a snapshot of a subscription taken under the bus lock.
type target struct {
	sub     *Subscriber
	handler Handler
}

// Bus is one named routing domain: an ordered subscriber registry plus a
// per-type delay buffer. Buses are created and destroyed by their Directory.
type Bus struct {
	name string
	dir  *Directory

	mu     sync.Mutex
	subs   []*subscription // newest first
	buffer map[string][]*Event
	closed bool
}

func newBus(dir *Directory, name string) *Bus {
	return &Bus{
		name:   name,
		dir:    dir,
		buffer: make(map[string][]*Event),
	}
}

// Name returns the bus name.
func (b *Bus) Name() string {
	return b.name
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Buffered returns the number of events waiting in the delay buffer.
func (b *Bus) Buffered() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bufferedLocked()
}

// BufferedTypes returns the number of buffered events per type.
func (b *Bus) BufferedTypes() map[string]int {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]int, len(b.buffer))
	for t, events := range b.buffer {
		out[t] = len(events)
	}
	return out
}

// Types returns the event types sub is registered for. An empty, non-nil
// slice means sub accepts every type. ok is false when sub is not registered.
func (b *Bus) Types(sub *Subscriber) (types []string, ok bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if s := b.findLocked(sub); s != nil {
		return s.types.clone(), true
	}
	return nil, false
}

// Subscribers returns the registered subscribers, newest first.
func (b *Bus) Subscribers() []*Subscriber {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]*Subscriber, len(b.subs))
	for i, s := range b.subs {
		out[i] = s.sub
	}
	return out
}

// Emit delivers evt to every matching subscriber, newest first, and returns
// the number of deliveries. A restricted emit skips wildcard subscribers.
func (b *Bus) Emit(ctx context.Context, evt *Event, restricted bool) int {
	if evt == nil {
		return 0
	}

	b.mu.Lock()
	targets := b.matchLocked(evt.Type, restricted)
	b.mu.Unlock()

	mode := ModeDirect
	if restricted {
		mode = ModeDelayed
	}
	for _, t := range targets {
		b.dir.deliver(ctx, b, t, evt, mode)
	}
	return len(targets)
}

// Queue delivers evt to subscribers that explicitly listed its type. When
// there are none the event is parked in the delay buffer until a subscriber
// registers for the type. It returns the number of deliveries.
func (b *Bus) Queue(ctx context.Context, evt *Event) int {
	n, _ := b.queue(ctx, evt)
	return n
}

// queue is Queue that also reports whether the bus was still live.
func (b *Bus) queue(ctx context.Context, evt *Event) (int, bool) {
	if evt == nil {
		return 0, true
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return 0, false
	}
	targets := b.matchLocked(evt.Type, true)
	if len(targets) == 0 {
		// Buffer before unlocking so a concurrent add either sees this event
		// or is seen by the match above.
		b.buffer[evt.Type] = append(b.buffer[evt.Type], evt)
		depth := len(b.buffer[evt.Type])
		b.mu.Unlock()

		observability.LogBuffered(b.dir.logger, b.name, evt.Type, depth)
		b.dir.metrics.RecordBuffered(ctx, b.name, evt.Type)
		return 0, true
	}
	b.mu.Unlock()

	for _, t := range targets {
		b.dir.deliver(ctx, b, t, evt, ModeDelayed)
	}
	return len(targets), true
}

// add registers sub for types or widens its existing registration, then
// replays buffered events of the newly accepted types to it. It returns false
// if the bus was already torn down.
//
// Replay runs after the bus lock is released. A PostDelayed racing with add
// on another goroutine may reach sub before the replayed backlog does; each
// event is still delivered exactly once, and the backlog itself stays FIFO.
func (b *Bus) add(ctx context.Context, sub *Subscriber, types typeSet) bool {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return false
	}

	var (
		s     = b.findLocked(sub)
		added typeSet
	)
	if s == nil {
		s = &subscription{
			sub:     sub,
			types:   types,
			handler: Chain(sub.handler, b.dir.middleware...),
		}
		b.subs = append([]*subscription{s}, b.subs...)
		added = types
	} else {
		var merged typeSet
		merged, added = s.types.union(types)
		if len(added) == 0 {
			b.mu.Unlock()
			return true
		}
		s.types = merged
	}
	drained := b.drainLocked(added)
	t := target{sub: s.sub, handler: s.handler}
	b.mu.Unlock()

	observability.LogSubscribed(b.dir.logger, b.name, sub.Name(), added.clone())
	b.poll(ctx, t, added, drained)
	return true
}

// poll delivers events drained for types directly to t, type by type, FIFO.
func (b *Bus) poll(ctx context.Context, t target, types typeSet, drained map[string][]*Event) {
	for _, eventType := range types {
		events := drained[eventType]
		if len(events) == 0 {
			continue
		}
		b.dir.metrics.RecordReplayed(ctx, b.name, eventType, len(events))
		for _, evt := range events {
			b.dir.deliver(ctx, b, t, evt, ModeReplay)
		}
	}
}

// remove narrows or drops sub's registration. emptied reports that the last
// subscriber left and the bus is now closed; discarded is the number of
// buffered events thrown away with it.
func (b *Bus) remove(ctx context.Context, sub *Subscriber, types typeSet) (emptied bool, discarded int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false, 0
	}

	idx := b.indexLocked(sub)
	if idx < 0 {
		observability.LogIgnored(b.dir.logger, "unregister", b.name, "subscriber not registered")
		return false, 0
	}
	s := b.subs[idx]

	if !types.wildcard() {
		remaining := s.types.difference(types)
		// A typed subscriber left with no types would become a wildcard;
		// treat that as a full unsubscribe instead.
		if s.types.wildcard() || len(remaining) > 0 {
			s.types = remaining
			observability.LogUnsubscribed(b.dir.logger, b.name, sub.Name(), types.clone())
			return false, 0
		}
	}

	subs := make([]*subscription, 0, len(b.subs)-1)
	subs = append(subs, b.subs[:idx]...)
	subs = append(subs, b.subs[idx+1:]...)
	b.subs = subs
	observability.LogUnsubscribed(b.dir.logger, b.name, sub.Name(), nil)

	if len(b.subs) > 0 {
		return false, 0
	}
	discarded = b.bufferedLocked()
	b.buffer = nil
	b.closed = true
	return true, discarded
}

// matchLocked snapshots the subscriptions that accept eventType.
func (b *Bus) matchLocked(eventType string, restricted bool) []target {
	if b.closed {
		return nil
	}
	var targets []target
	for _, s := range b.subs {
		if s.types.matches(eventType, restricted) {
			targets = append(targets, target{sub: s.sub, handler: s.handler})
		}
	}
	return targets
}

// drainLocked removes and returns the buffered events of each type.
func (b *Bus) drainLocked(types typeSet) map[string][]*Event {
	var drained map[string][]*Event
	for _, t := range types {
		events, ok := b.buffer[t]
		if !ok {
			continue
		}
		delete(b.buffer, t)
		if drained == nil {
			drained = make(map[string][]*Event)
		}
		drained[t] = events
	}
	return drained
}

func (b *Bus) findLocked(sub *Subscriber) *subscription {
	if i := b.indexLocked(sub); i >= 0 {
		return b.subs[i]
	}
	return nil
}

func (b *Bus) indexLocked(sub *Subscriber) int {
	for i, s := range b.subs {
		if s.sub == sub {
			return i
		}
	}
	return -1
}

func (b *Bus) bufferedLocked() int {
	n := 0
	for _, events := range b.buffer {
		n += len(events)
	}
	return n
}
