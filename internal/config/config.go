// Package config loads and validates the two Stripe API keys and the local
// storage locations. Values come from the environment, optionally seeded
// from a .env file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// ErrInvalid marks key validation failures, so callers can tell a bad or
// missing key apart from unrelated startup failures.
var ErrInvalid = errors.New("invalid configuration")

// Environment variable names.
const (
	EnvProdKey     = "STRIPE_SECRET_KEY"
	EnvTestKey     = "STRIPE_SECRET_KEY_TEST"
	EnvMappingsDir = "STRIPECOPY_MAPPINGS_DIR"
	EnvDBPath      = "STRIPECOPY_DB_PATH"
)

const testKeyPrefix = "sk_test_"

// DefaultMappingsDir is where snapshot files land unless overridden.
const DefaultMappingsDir = "mappings"

// Config is the validated application configuration.
type Config struct {
	// ProdKey is the production secret key, used read-only.
	ProdKey string
	// TestKey is the test secret key, the only one writes go through.
	TestKey string
	// MappingsDir receives the per-run snapshot JSON files.
	MappingsDir string
	// DBPath is the sqlite database location; empty selects the default.
	DBPath string
}

// Load reads configuration from the environment. When envFile is non-empty
// it must exist; otherwise a ./.env file is read when present.
func Load(envFile string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("env")

	if envFile != "" {
		v.SetConfigFile(envFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		v.SetConfigFile(".env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	}

	v.AutomaticEnv()
	v.SetDefault(EnvMappingsDir, DefaultMappingsDir)

	cfg := &Config{
		ProdKey:     v.GetString(EnvProdKey),
		TestKey:     v.GetString(EnvTestKey),
		MappingsDir: v.GetString(EnvMappingsDir),
		DBPath:      v.GetString(EnvDBPath),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate enforces the key safety rules. A violation is fatal and aborts
// before any remote call.
func (c *Config) Validate() error {
	if c.ProdKey == "" {
		return fmt.Errorf("%w: %s missing: set it in the environment or a .env file", ErrInvalid, EnvProdKey)
	}
	if c.TestKey == "" {
		return fmt.Errorf("%w: %s missing: set it in the environment or a .env file", ErrInvalid, EnvTestKey)
	}
	if !strings.HasPrefix(c.TestKey, testKeyPrefix) {
		return fmt.Errorf("%w: %s must be a TEST key (%s*), found %s", ErrInvalid, EnvTestKey, testKeyPrefix, Redact(c.TestKey))
	}
	if c.ProdKey == c.TestKey {
		return fmt.Errorf("%w: production and test keys cannot be identical", ErrInvalid)
	}
	return nil
}

// Redact shortens a secret key for display without exposing it.
func Redact(key string) string {
	if len(key) <= 12 {
		return key
	}
	return key[:12] + "..."
}
