package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/nodeweave/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_MissingFileYieldsDefaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	_, err = config.Load(filepath.Join(t.TempDir(), "nope.yaml"), true)
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "nodeweave.yaml", `
log_level: debug
store: redis
redis:
  addr: redis:6379
  db: 2
  ttl: 10m
http:
  port: 9090
`)
	cfg, err := config.Load(path, true)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, config.StoreRedis, cfg.Store)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
	assert.Equal(t, 2, cfg.Redis.DB)
	assert.Equal(t, 10*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, "nodeweave:graph:", cfg.Redis.Prefix)
	assert.Equal(t, ".nodeweave/graphs", cfg.StoreDir)
	assert.True(t, cfg.HTTP.Metrics)
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "nodeweave.json", `{"store": "memory", "http": {"port": "7000"}}`)
	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, config.StoreMemory, cfg.Store)
	assert.Equal(t, 7000, cfg.HTTP.Port, "weakly typed input")
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{"malformed", "store: [", false},
		{"unknown key", "colour: blue", false},
		{"bad store", "store: sqlite", true},
		{"bad format", "format: toml", true},
		{"bad port", "http:\n  port: 70000", true},
		{"bad ttl", "redis:\n  ttl: soon", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, "c.yaml", tt.content), true)
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, config.ErrInvalidConfig)
			}
		})
	}
}

func TestApply_Overrides(t *testing.T) {
	cfg := config.Default()
	require.NoError(t, cfg.Apply(map[string]any{"log_level": "warn", "store_dir": "/tmp/g"}))
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "/tmp/g", cfg.StoreDir)

	require.NoError(t, cfg.Apply(nil))
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestSecurity_Keys(t *testing.T) {
	key := strings.Repeat("ab", 32)
	path := write(t, "c.yaml", "security:\n  encryption_key: "+key+"\n  fallback_keys: ["+strings.Repeat("cd", 32)+"]\n  redact: [\"(?i)token\"]\n")
	cfg, err := config.Load(path, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"(?i)token"}, cfg.Security.Redact)
	assert.True(t, cfg.Security.ValidateOnSave)

	active, fallback, err := cfg.Security.Keys()
	require.NoError(t, err)
	assert.Len(t, active, 32)
	require.Len(t, fallback, 1)
	assert.Equal(t, byte(0xcd), fallback[0][0])

	_, err = config.Load(write(t, "bad.yaml", "security:\n  encryption_key: abcd\n"), true)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	off, _, err := config.Default().Security.Keys()
	require.NoError(t, err)
	assert.Nil(t, off)
}
