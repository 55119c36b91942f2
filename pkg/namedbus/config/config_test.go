package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/randalmurphal/namedbus/pkg/namedbus/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestString verifies string extraction with defaults.
func TestString(t *testing.T) {
	tests := []struct {
		name       string
		data       map[string]any
		key        string
		defaultVal string
		want       string
	}{
		{"key exists", map[string]any{"name": "alice"}, "name", "default", "alice"},
		{"key missing", map[string]any{"other": "value"}, "name", "default", "default"},
		{"empty string", map[string]any{"name": ""}, "name", "default", ""},
		{"wrong type int", map[string]any{"name": 123}, "name", "default", "default"},
		{"nil map", nil, "name", "default", "default"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(tt.data)
			assert.Equal(t, tt.want, cfg.String(tt.key, tt.defaultVal))
		})
	}
}

// TestBool verifies boolean extraction, including quoted forms.
func TestBool(t *testing.T) {
	tests := []struct {
		name       string
		value      any
		defaultVal bool
		want       bool
	}{
		{"true", true, false, true},
		{"false", false, true, false},
		{"quoted yes", "yes", false, true},
		{"quoted off", " OFF ", true, false},
		{"garbage string", "maybe", true, true},
		{"wrong type", 1, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.New(map[string]any{"flag": tt.value})
			assert.Equal(t, tt.want, cfg.Bool("flag", tt.defaultVal))
		})
	}
}

func TestHas(t *testing.T) {
	cfg := config.New(map[string]any{"present": nil})
	assert.True(t, cfg.Has("present"))
	assert.False(t, cfg.Has("absent"))
}

func TestSettings_Defaults(t *testing.T) {
	s := config.New(nil).Settings()
	assert.Equal(t, config.DefaultSettings, s)
}

func TestSettings_EmptyDefaultBusFallsBack(t *testing.T) {
	s := config.New(map[string]any{"default_bus": ""}).Settings()
	assert.Equal(t, "default", s.DefaultBus)
}

func TestFromYAML(t *testing.T) {
	data := []byte(`
default_bus: ui
metrics: true
tracing: "on"
journal: ":memory:"
log_level: DEBUG
`)
	cfg, err := config.FromYAML(data)
	require.NoError(t, err)

	assert.Equal(t, config.Settings{
		DefaultBus: "ui",
		Metrics:    true,
		Tracing:    true,
		Journal:    ":memory:",
		LogLevel:   "debug",
	}, cfg.Settings())
}

func TestFromYAML_Invalid(t *testing.T) {
	_, err := config.FromYAML([]byte("default_bus: [unterminated"))
	assert.ErrorContains(t, err, "parse yaml")
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"default_bus": "panel", "metrics": false}`))
	require.NoError(t, err)

	s := cfg.Settings()
	assert.Equal(t, "panel", s.DefaultBus)
	assert.False(t, s.Metrics)
	assert.Equal(t, "info", s.LogLevel)
}

func TestFromJSON_Invalid(t *testing.T) {
	_, err := config.FromJSON([]byte("{"))
	assert.ErrorContains(t, err, "parse json")
}

func TestFromFile(t *testing.T) {
	dir := t.TempDir()

	t.Run("yaml", func(t *testing.T) {
		path := filepath.Join(dir, "bus.yaml")
		require.NoError(t, os.WriteFile(path, []byte("default_bus: yml\n"), 0o600))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "yml", cfg.Settings().DefaultBus)
	})

	t.Run("upper case json extension", func(t *testing.T) {
		path := filepath.Join(dir, "bus.JSON")
		require.NoError(t, os.WriteFile(path, []byte(`{"default_bus":"js"}`), 0o600))

		cfg, err := config.FromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "js", cfg.Settings().DefaultBus)
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "bus.toml")
		require.NoError(t, os.WriteFile(path, []byte(""), 0o600))

		_, err := config.FromFile(path)
		assert.ErrorContains(t, err, `unsupported config file extension ".toml"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.FromFile(filepath.Join(dir, "nope.yaml"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})
}

func TestFromFile_ExpandsEnv(t *testing.T) {
	t.Setenv("TEST_JOURNAL_DIR", "/var/lib/bus")
	path := filepath.Join(t.TempDir(), "bus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("journal: ${TEST_JOURNAL_DIR}/journal.db\n"), 0o600))

	cfg, err := config.FromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/bus/journal.db", cfg.Settings().Journal)
}

func TestFromEnv(t *testing.T) {
	t.Setenv("NAMEDBUS_DEFAULT_BUS", "env-bus")
	t.Setenv("NAMEDBUS_METRICS", "on")
	t.Setenv("NAMEDBUS_UNRELATED", "x")

	cfg := config.FromEnv("namedbus")

	assert.True(t, cfg.Has("default_bus"))
	assert.False(t, cfg.Has("journal"))
	assert.False(t, cfg.Has("unrelated"))

	s := cfg.Settings()
	assert.Equal(t, "env-bus", s.DefaultBus)
	assert.True(t, s.Metrics)
}

func TestMerge(t *testing.T) {
	base := config.New(map[string]any{"default_bus": "file", "metrics": true})
	overlay := config.New(map[string]any{"default_bus": "env"})

	merged := config.Merge(base, overlay)
	assert.Equal(t, "env", merged.String("default_bus", ""))
	assert.True(t, merged.Bool("metrics", false))
	assert.Equal(t, "file", base.String("default_bus", ""), "base unchanged")

	assert.False(t, config.Merge(config.Config{}, config.Config{}).Has("metrics"))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bus.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"default_bus":"file","tracing":true}`), 0o600))
	t.Setenv("APP_DEFAULT_BUS", "env")

	cfg, err := config.Load(path, "APP")
	require.NoError(t, err)
	s := cfg.Settings()
	assert.Equal(t, "env", s.DefaultBus)
	assert.True(t, s.Tracing)

	cfg, err = config.Load("", "APP")
	require.NoError(t, err)
	assert.Equal(t, "env", cfg.Settings().DefaultBus)

	_, err = config.Load(filepath.Join(t.TempDir(), "missing.yaml"), "APP")
	assert.Error(t, err)
}
