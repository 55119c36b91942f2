package config

import (
	"encoding/json"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Keys lists the settings read by Settings, in the order FromEnv looks them up.
var Keys = []string{"default_bus", "metrics", "tracing", "journal", "log_level"}

// Load reads path (skipped when empty) and overlays environment variables
// named prefix + "_" + upper-cased key, e.g. NAMEDBUS_JOURNAL.
func Load(path, prefix string) (Config, error) {
	base := New(nil)
	if path != "" {
		var err error
		if base, err = FromFile(path); err != nil {
			return Config{}, err
		}
	}
	return Merge(base, FromEnv(prefix)), nil
}

// FromFile loads configuration from a file, choosing the format by extension
// (.yaml, .yml or .json). ${VAR} references in the file are expanded from the
// environment before parsing.
func FromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	}
	return Config{}, fmt.Errorf("unsupported config file extension %q", ext)
}

// FromYAML parses a YAML mapping.
func FromYAML(data []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml: %w", err)
	}
	return New(m), nil
}

// FromJSON parses a JSON object.
func FromJSON(data []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return Config{}, fmt.Errorf("parse json: %w", err)
	}
	return New(m), nil
}

// FromEnv collects the Keys that are set in the environment under prefix.
// Values stay strings; Bool accepts "true", "on" and friends.
func FromEnv(prefix string) Config {
	m := make(map[string]any)
	for _, key := range Keys {
		name := strings.ToUpper(key)
		if prefix != "" {
			name = strings.ToUpper(prefix) + "_" + name
		}
		if v, ok := os.LookupEnv(name); ok {
			m[key] = v
		}
	}
	return New(m)
}

// Merge returns a Config holding base's keys with overlay's keys on top.
// Neither input is modified.
func Merge(base, overlay Config) Config {
	m := maps.Clone(base.data)
	if m == nil {
		m = make(map[string]any, len(overlay.data))
	}
	maps.Copy(m, overlay.data)
	return New(m)
}
