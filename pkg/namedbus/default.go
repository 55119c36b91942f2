package namedbus

import (
	"context"
	"sync"
)

var (
	defaultDir     *Directory
	defaultDirOnce sync.Once
)

// Default returns the process-wide Directory used by the package-level
// functions.
func Default() *Directory {
	defaultDirOnce.Do(func() {
		defaultDir = NewDirectory()
	})
	return defaultDir
}

// Post calls Post on the default Directory.
func Post(ctx context.Context, evt *Event, name ...string) {
	Default().Post(ctx, evt, name...)
}

// PostDelayed calls PostDelayed on the default Directory.
func PostDelayed(ctx context.Context, evt *Event, name ...string) {
	Default().PostDelayed(ctx, evt, name...)
}

// Register calls Register on the default Directory.
func Register(ctx context.Context, sub *Subscriber, types []string, name ...string) {
	Default().Register(ctx, sub, types, name...)
}

// Unregister calls Unregister on the default Directory.
func Unregister(ctx context.Context, sub *Subscriber, types []string, name ...string) {
	Default().Unregister(ctx, sub, types, name...)
}

// GetBus calls Bus on the default Directory.
func GetBus(name string, createIfMissing bool) *Bus {
	return Default().Bus(name, createIfMissing)
}
