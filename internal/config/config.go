// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 HoloMUSH Contributors

// Package config loads authd configuration. Sources are layered, later ones
// winning: built-in defaults, the YAML config file, the legacy bare
// environment variables, AUTHD_-prefixed environment variables and finally
// command-line flags that were set explicitly.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/holomush/authd/internal/auth"
	"github.com/holomush/authd/internal/logging"
	"github.com/holomush/authd/internal/store"
)

// EnvPrefix is the prefix of authd's structured environment variables.
// Nested keys are separated by a double underscore, e.g.
// AUTHD_DATABASE__URL sets database.url.
const EnvPrefix = "AUTHD_"

// Config is the complete authd configuration.
type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Sessions SessionsConfig `koanf:"sessions"`
	Log      LogConfig      `koanf:"log"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Sentry   SentryConfig   `koanf:"sentry"`
}

// DatabaseConfig locates PostgreSQL and controls startup behavior.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	AutoMigrate    bool          `koanf:"auto_migrate"`
	ConnectRetries uint64        `koanf:"connect_retries"`
	ConnectBackoff time.Duration `koanf:"connect_backoff"`
}

// AuthConfig holds the token signing settings.
type AuthConfig struct {
	SecretKey       string        `koanf:"secret_key"`
	Algorithm       string        `koanf:"algorithm"`
	AccessTokenTTL  time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`
}

// SessionsConfig controls the expired-session sweeper.
type SessionsConfig struct {
	SweepInterval time.Duration `koanf:"sweep_interval"`
}

// LogConfig selects the log encoding and level.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// MetricsConfig sets the observability listen address. Empty disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// SentryConfig enables error reporting when DSN is set.
type SentryConfig struct {
	DSN         string  `koanf:"dsn"`
	Environment string  `koanf:"environment"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Defaults returns the built-in configuration layer.
func Defaults() map[string]any {
	retry := store.DefaultRetryConfig()
	return map[string]any{
		"database.auto_migrate":    false,
		"database.connect_retries": retry.MaxRetries,
		"database.connect_backoff": retry.InitialBackoff.String(),
		"auth.algorithm":           auth.DefaultAlgorithm,
		"auth.access_token_ttl":    auth.DefaultAccessTTL.String(),
		"auth.refresh_token_ttl":   auth.DefaultRefreshTTL.String(),
		"sessions.sweep_interval":  "1h",
		"log.format":               "json",
		"log.level":                "info",
		"metrics.addr":             "127.0.0.1:9100",
		"sentry.environment":       "production",
		"sentry.sample_rate":       1.0,
	}
}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// File is the YAML config path. A missing file is an error only when
	// FileRequired is set.
	File         string
	FileRequired bool
	// DotEnv lists .env files to load into the process environment first.
	// Missing files are ignored. Variables already set are not overridden.
	DotEnv []string
	// Flags are applied last, but only those the user set explicitly.
	Flags *pflag.FlagSet
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"database-url":   "database.url",
	"auto-migrate":   "database.auto_migrate",
	"secret-key":     "auth.secret_key",
	"algorithm":      "auth.algorithm",
	"sweep-interval": "sessions.sweep_interval",
	"log-format":     "log.format",
	"log-level":      "log.level",
	"metrics-addr":   "metrics.addr",
	"sentry-dsn":     "sentry.dsn",
}

// Load resolves and validates the configuration.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadDotEnv(opts.DotEnv); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(Defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if opts.File != "" {
		_, statErr := os.Stat(opts.File)
		switch {
		case statErr == nil:
			if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
				return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", opts.File).Wrap(err)
			}
		case errors.Is(statErr, fs.ErrNotExist) && !opts.FileRequired:
		default:
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", opts.File).Wrap(statErr)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", legacyEnv), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "legacy env").Wrap(err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "env").Wrap(err)
	}

	if opts.Flags != nil {
		provider := posflag.ProviderWithFlag(opts.Flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok {
				return "", nil
			}
			return key, posflag.FlagVal(opts.Flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode config").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv(files []string) error {
	for _, name := range files {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return oops.Code("CONFIG_LOAD_FAILED").With("source", "dotenv").With("path", name).Wrap(err)
		}
	}
	return nil
}

// envKey turns AUTHD_DATABASE__URL into database.url.
func envKey(name string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "__", ".")
}

// legacyEnv maps the bare variable names of existing deployments.
func legacyEnv(name, value string) (string, any) {
	switch name {
	case "DATABASE_URL":
		return "database.url", value
	case "SECRET_KEY":
		return "auth.secret_key", value
	case "ALGORITHM":
		return "auth.algorithm", value
	case "ACCESS_TOKEN_EXPIRE_MINUTES":
		return "auth.access_token_ttl", scaledDuration(value, time.Minute)
	case "REFRESH_TOKEN_EXPIRE_DAYS":
		return "auth.refresh_token_ttl", scaledDuration(value, 24*time.Hour)
	}
	return "", nil
}

// scaledDuration converts an integer count of unit to a duration string.
// Anything else is passed through so that decoding reports it.
func scaledDuration(value string, unit time.Duration) string {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return value
	}
	return (time.Duration(n) * unit).String()
}

// Validate checks the loaded values.
func (c *Config) Validate() error {
	if err := c.TokenConfig().Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").With("section", "auth").Errorf("invalid auth settings: %s", err)
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		return oops.Code("CONFIG_INVALID").
			With("section", "log").
			Errorf("log format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code("CONFIG_INVALID").With("section", "log").Errorf("invalid log level %q", c.Log.Level)
	}
	if c.Sessions.SweepInterval <= 0 {
		return oops.Code("CONFIG_INVALID").
			With("section", "sessions").
			Errorf("sweep interval must be positive")
	}
	if c.Sentry.SampleRate < 0 || c.Sentry.SampleRate > 1 {
		return oops.Code("CONFIG_INVALID").
			With("section", "sentry").
			Errorf("sample rate must be between 0 and 1")
	}
	return nil
}

// RequireDatabase reports an error when no database URL is configured.
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return oops.Code("CONFIG_INVALID").
			With("section", "database").
			Errorf("database url is required (set DATABASE_URL or %sDATABASE__URL)", EnvPrefix)
	}
	return nil
}

// TokenConfig returns the signing settings for auth.NewTokenCodec.
func (c *Config) TokenConfig() auth.TokenConfig {
	return auth.TokenConfig{
		Secret:     c.Auth.SecretKey,
		Algorithm:  c.Auth.Algorithm,
		AccessTTL:  c.Auth.AccessTokenTTL,
		RefreshTTL: c.Auth.RefreshTokenTTL,
	}
}

// RetryConfig returns the database connection retry policy.
func (c *Config) RetryConfig() store.RetryConfig {
	rc := store.DefaultRetryConfig()
	rc.MaxRetries = c.Database.ConnectRetries
	rc.InitialBackoff = c.Database.ConnectBackoff
	return rc
}

// LogLevel returns the parsed log level. Validate has already checked it.
func (c *Config) LogLevel() slog.Level {
	level, _ := logging.ParseLevel(c.Log.Level) //nolint:errcheck // validated in Load
	return level
}
