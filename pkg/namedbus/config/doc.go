/*
Package config loads namedbus settings from YAML or JSON.

# Overview

Config wraps a map[string]any and provides typed accessors that return a
default when a key is missing or holds the wrong type. Settings extracts the
keys namedbus understands:

	default_bus: default   # bus used by unnamed delayed posts and by Register
	metrics: true          # record OpenTelemetry metrics
	tracing: false         # start an OpenTelemetry span per post
	journal: ./bus.db      # SQLite delivery journal (":memory:" allowed, empty disables)
	log_level: debug       # debug | info | warn | error

# Usage

	cfg, err := config.FromFile("namedbus.yaml")
	if err != nil {
	    log.Fatal(err)
	}
	settings := cfg.Settings()

Load combines a file with environment overrides, which win:

	cfg, err := config.Load("namedbus.yaml", "NAMEDBUS") // NAMEDBUS_JOURNAL etc.

Unknown keys are ignored. Values of the wrong type fall back to the defaults
in DefaultSettings.
*/
package config
