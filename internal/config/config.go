// Package config loads the nodeweave CLI configuration.
//
// Files are YAML (or JSON, which YAML accepts). Values are decoded through
// mapstructure so that file contents and flag overrides share one path.
package config

import (
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given.
const DefaultPath = "nodeweave.yaml"

// Store backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

// ErrInvalidConfig is returned for values that decode but make no sense.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the CLI configuration.
type Config struct {
	LogLevel string   `mapstructure:"log_level"`
	Store    string   `mapstructure:"store"`
	StoreDir string   `mapstructure:"store_dir"`
	Format   string   `mapstructure:"format"`
	Redis    Redis    `mapstructure:"redis"`
	HTTP     HTTP     `mapstructure:"http"`
	Security Security `mapstructure:"security"`
}

// Security configures the store middleware chain.
type Security struct {
	// EncryptionKey is a hex encoded AES-256 key. Empty disables encryption.
	EncryptionKey string   `mapstructure:"encryption_key"`
	FallbackKeys  []string `mapstructure:"fallback_keys"`

	// Redact lists regular expressions matched against input names.
	Redact []string `mapstructure:"redact"`

	// ValidateOnSave rejects invalid graphs before they reach the store.
	ValidateOnSave bool `mapstructure:"validate_on_save"`
}

// Keys decodes the encryption keys. It returns nil when encryption is off.
func (s Security) Keys() (active []byte, fallback [][]byte, err error) {
	if s.EncryptionKey == "" {
		return nil, nil, nil
	}
	if active, err = decodeKey(s.EncryptionKey); err != nil {
		return nil, nil, fmt.Errorf("%w: security.encryption_key: %v", ErrInvalidConfig, err)
	}
	for i, k := range s.FallbackKeys {
		key, err := decodeKey(k)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: security.fallback_keys[%d]: %v", ErrInvalidConfig, i, err)
		}
		fallback = append(fallback, key)
	}
	return active, fallback, nil
}

func decodeKey(s string) ([]byte, error) {
	key, err := hex.DecodeString(s)
	if err != nil {
		return nil, err
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("want 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Redis configures the redis store and save lock.
type Redis struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// HTTP configures the serve command.
type HTTP struct {
	Port    int  `mapstructure:"port"`
	Metrics bool `mapstructure:"metrics"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		LogLevel: "info",
		Store:    StoreFile,
		StoreDir: ".nodeweave/graphs",
		Format:   "json",
		Redis: Redis{
			Addr:   "localhost:6379",
			Prefix: "nodeweave:graph:",
		},
		HTTP:     HTTP{Port: 8080, Metrics: true},
		Security: Security{ValidateOnSave: true},
	}
}

// Load reads path on top of the defaults. A missing file yields the
// defaults unless required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Apply(raw); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Apply decodes raw over c. Keys use the file names ("log_level",
// "redis": {"ttl": "10m"}, ...). Unknown keys are rejected.
func (c *Config) Apply(raw map[string]any) error {
	if len(raw) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks enumerations and ranges.
func (c Config) Validate() error {
	switch c.Store {
	case StoreFile, StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("%w: store %q (want file, memory or redis)", ErrInvalidConfig, c.Store)
	}
	switch c.Format {
	case "json", "yaml":
	default:
		return fmt.Errorf("%w: format %q (want json or yaml)", ErrInvalidConfig, c.Format)
	}
	if c.HTTP.Port < 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("%w: http.port %d", ErrInvalidConfig, c.HTTP.Port)
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("%w: redis.ttl %s", ErrInvalidConfig, c.Redis.TTL)
	}
	if _, _, err := c.Security.Keys(); err != nil {
		return err
	}
	return nil
}
