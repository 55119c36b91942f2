package config

import "strings"

// Config wraps a map[string]any for type-safe value extraction.
type Config struct {
	data map[string]any
}

// New creates a Config from the given map.
// If data is nil, an empty Config is returned.
func New(data map[string]any) Config {
	if data == nil {
		data = make(map[string]any)
	}
	return Config{data: data}
}

// String returns the string value for key, or defaultVal if missing or not a string.
func (c Config) String(key, defaultVal string) string {
	if s, ok := c.data[key].(string); ok {
		return s
	}
	return defaultVal
}

// Bool returns the boolean value for key, or defaultVal if missing or not a bool.
//
// The strings "true", "yes", "on" and "false", "no", "off" are accepted as well,
// since environment-templated files often quote them.
func (c Config) Bool(key string, defaultVal bool) bool {
	switch v := c.data[key].(type) {
	case bool:
		return v
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "on":
			return true
		case "false", "no", "off":
			return false
		}
	}
	return defaultVal
}

// Has returns true if the key exists in the config.
func (c Config) Has(key string) bool {
	_, ok := c.data[key]
	return ok
}

// Settings are the namedbus options carried by a config file.
type Settings struct {
	// DefaultBus names the bus used when Register/Unregister get no name and
	// the bus an unnamed PostDelayed ensures exists.
	DefaultBus string

	// Metrics enables OpenTelemetry metrics.
	Metrics bool

	// Tracing enables an OpenTelemetry span per post.
	Tracing bool

	// Journal is the SQLite path of the delivery journal. Empty disables it.
	Journal string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// DefaultSettings are used for missing keys.
var DefaultSettings = Settings{
	DefaultBus: "default",
	LogLevel:   "info",
}

// Settings extracts namedbus settings, applying DefaultSettings.
func (c Config) Settings() Settings {
	s := Settings{
		DefaultBus: c.String("default_bus", DefaultSettings.DefaultBus),
		Metrics:    c.Bool("metrics", DefaultSettings.Metrics),
		Tracing:    c.Bool("tracing", DefaultSettings.Tracing),
		Journal:    c.String("journal", DefaultSettings.Journal),
		LogLevel:   strings.ToLower(c.String("log_level", DefaultSettings.LogLevel)),
	}
	if s.DefaultBus == "" {
		s.DefaultBus = DefaultSettings.DefaultBus
	}
	return s
}
