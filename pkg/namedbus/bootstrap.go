package namedbus

import (
	"fmt"
	"log/slog"

	"github.com/randalmurphal/namedbus/pkg/namedbus/config"
	"github.com/randalmurphal/namedbus/pkg/namedbus/journal"
)

// NewFromConfig builds a Directory from configuration keys default_bus,
// metrics, tracing and journal. Extra options are applied last.
//
// log_level is not applied here; pass a logger built with
// observability.ParseLevel.
func NewFromConfig(cfg config.Config, logger *slog.Logger, opts ...Option) (*Directory, error) {
	s := cfg.Settings()

	base := []Option{
		WithLogger(logger),
		WithDefaultBus(s.DefaultBus),
		WithMetrics(s.Metrics),
		WithTracing(s.Tracing),
	}
	if s.Journal != "" {
		store, err := journal.NewSQLiteStore(s.Journal)
		if err != nil {
			return nil, fmt.Errorf("open journal: %w", err)
		}
		base = append(base, WithJournal(store))
	}

	return NewDirectory(append(base, opts...)...), nil
}
