// Package registry provides a generic thread-safe, insertion-ordered registry
// of values indexed by key.
//
// Registry is designed for read-heavy workloads using sync.RWMutex. Keys are
// remembered in the order they were first inserted, so Keys, Values and Range
// visit entries oldest first. namedbus uses it to hold buses by name and to
// broadcast to them in creation order.
//
// # Basic Usage
//
//	r := registry.New[string, *Bus]()
//	bus, created := r.GetOrCreate("default", func() *Bus { return newBus("default") })
//
//	if b, ok := r.Get("default"); ok {
//	    // use b
//	}
//
// # Conditional Removal
//
// CompareAndDelete removes an entry only if the stored value still satisfies
// a predicate. This lets a caller tear down the value it observed without
// racing against a replacement registered under the same key:
//
//	r.CompareAndDelete("default", func(cur *Bus) bool { return cur == bus })
//
// # Thread Safety
//
// All Registry methods are safe for concurrent use. Range and Values work on a
// snapshot, so the registry may be mutated while iterating.
package registry
