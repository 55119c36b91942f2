// Package journal records event deliveries for later inspection.
//
// A journal is diagnostic only. Entries are never replayed into a bus, so a
// restarted process starts with empty delay buffers whatever the journal holds.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Entry records one delivery of an event to one subscriber.
type Entry struct {
	// Seq is assigned by the store, starting at 1, in append order.
	Seq int64

	EventID    string
	EventType  string
	Bus        string
	Subscriber string

	// Mode is how the event reached the subscriber: direct, delayed or replay.
	Mode string

	// Payload is the JSON encoding of the event payload, nil if it could not
	// be encoded.
	Payload []byte

	DeliveredAt time.Time
}

// Filter narrows List results. Zero fields match everything.
type Filter struct {
	Bus       string
	EventType string

	// Limit caps the number of entries returned. 0 means no limit.
	Limit int
}

// Store persists delivery entries.
// Implementations must be safe for concurrent use.
type Store interface {
	// Append stores an entry and returns its sequence number.
	Append(ctx context.Context, e Entry) (int64, error)

	// List returns matching entries ordered by sequence.
	// Returns an empty slice (not an error) when nothing matches.
	List(ctx context.Context, f Filter) ([]Entry, error)

	// Count returns the number of entries per bus.
	Count(ctx context.Context) (map[string]int, error)

	// Close releases any resources (connections, files).
	Close() error
}

// ErrStoreClosed indicates the store has been closed.
var ErrStoreClosed = errors.New("journal store closed")

// StoreError wraps a failed store operation.
type StoreError struct {
	// Op is the operation that failed ("append", "list", "count", "open").
	Op  string
	Err error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return fmt.Sprintf("journal %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Err
}
