// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 StaffRoster Contributors

// Package config loads the process configuration.
//
// Values are layered in this order, later layers winning: built-in defaults,
// an optional YAML file, STAFFROSTER_* environment variables, then any
// command-line flags the user actually set. The result is immutable.
package config

import (
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/staffroster/staffroster/internal/auth"
)

// EnvPrefix is the prefix of environment overrides. Nested keys are joined
// with a double underscore, e.g. STAFFROSTER_AUTH__SIGNING_SECRET.
const EnvPrefix = "STAFFROSTER_"

// Config is the full process configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Log      LogConfig      `koanf:"log"`
	Auth     AuthConfig     `koanf:"auth"`
	Media    MediaConfig    `koanf:"media"`
	Tracing  TracingConfig  `koanf:"tracing"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr           string        `koanf:"addr"`
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL             string `koanf:"url"`
	ConnectAttempts int    `koanf:"connect_attempts"`
}

// LogConfig configures slog output.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// AuthConfig configures session signing and cookies.
type AuthConfig struct {
	SigningSecret    string `koanf:"signing_secret"`
	SigningAlgorithm string `koanf:"signing_algorithm"`
	TokenExpiryDays  int    `koanf:"token_expiry_days"`
	CookieExpiryDays int    `koanf:"cookie_expiry_days"`
	CookieSecure     bool   `koanf:"cookie_secure"`
}

// MediaConfig configures the avatar store. An empty Dir resolves to the XDG
// data directory.
type MediaConfig struct {
	Dir            string `koanf:"dir"`
	BaseURL        string `koanf:"base_url"`
	MaxUploadBytes int64  `koanf:"max_upload_bytes"`
}

// TracingConfig configures OpenTelemetry tracing. Spans are always recorded
// so logs carry trace IDs; they are exported only when OTLPEndpoint is set.
type TracingConfig struct {
	OTLPEndpoint string  `koanf:"otlp_endpoint"`
	Insecure     bool    `koanf:"insecure"`
	SampleRatio  float64 `koanf:"sample_ratio"`
}

// defaults are the built-in values, keyed by their dotted paths.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":                 ":8080",
		"http.request_timeout":      "30s",
		"metrics.addr":              "127.0.0.1:9100",
		"database.url":              "",
		"database.connect_attempts": 10,
		"log.format":                "json",
		"log.level":                 "info",
		"auth.signing_secret":       "",
		"auth.signing_algorithm":    "HS256",
		"auth.token_expiry_days":    7,
		"auth.cookie_expiry_days":   7,
		"auth.cookie_secure":        false,
		"media.dir":                 "",
		"media.base_url":            "/media",
		"media.max_upload_bytes":    5 << 20,
		"tracing.otlp_endpoint":     "",
		"tracing.insecure":          false,
		"tracing.sample_ratio":      1.0,
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"http-addr":          "http.addr",
	"request-timeout":    "http.request_timeout",
	"metrics-addr":       "metrics.addr",
	"database-url":       "database.url",
	"log-format":         "log.format",
	"log-level":          "log.level",
	"signing-algorithm":  "auth.signing_algorithm",
	"token-expiry-days":  "auth.token_expiry_days",
	"cookie-expiry-days": "auth.cookie_expiry_days",
	"media-dir":          "media.dir",
	"otlp-endpoint":      "tracing.otlp_endpoint",
}

// RegisterFlags adds the overridable flags to fs. Their defaults are only
// documentation; unset flags never override other layers.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("http-addr", ":8080", "API listen address")
	fs.Duration("request-timeout", 30*time.Second, "per-request timeout")
	fs.String("metrics-addr", "127.0.0.1:9100", "metrics/health listen address (empty = disabled)")
	fs.String("database-url", "", "PostgreSQL connection URL")
	fs.String("log-format", "json", "log format (json or text)")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.String("signing-algorithm", "HS256", "session token algorithm (HS256, HS384, HS512)")
	fs.Int("token-expiry-days", 7, "session token lifetime in days")
	fs.Int("cookie-expiry-days", 7, "session cookie lifetime in days")
	fs.String("media-dir", "", "avatar storage directory (default: XDG_DATA_HOME/staffroster/media)")
	fs.String("otlp-endpoint", "", "OTLP/HTTP trace collector host:port (empty = no export)")
}

// Options selects the layers Load reads.
type Options struct {
	// File is an optional YAML file path.
	File string
	// Flags is an optional parsed flag set registered with RegisterFlags.
	Flags *pflag.FlagSet
	// Environ overrides os.Environ for tests. Nil reads the process environment.
	Environ []string
}

// Load builds and validates the configuration.
func Load(opts Options) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "defaults").Wrap(err)
	}

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").
				With("layer", "file").
				With("path", opts.File).
				Wrap(err)
		}
	}

	envOpt := env.Opt{
		Prefix: EnvPrefix,
		TransformFunc: func(name, value string) (string, any) {
			return envKey(name), value
		},
	}
	if opts.Environ != nil {
		envOpt.EnvironFunc = func() []string { return opts.Environ }
	}
	if err := k.Load(env.Provider(".", envOpt), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "env").Wrap(err)
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
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("layer", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("operation", "decode configuration").Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// envKey turns STAFFROSTER_AUTH__SIGNING_SECRET into auth.signing_secret.
func envKey(name string) string {
	name = strings.TrimPrefix(name, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}

var (
	validLogFormats = []string{"json", "text"}
	validLogLevels  = []string{"debug", "info", "warn", "error"}
)

// Validate checks the configuration for values the server cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return oops.Code("CONFIG_INVALID").Errorf("http.addr is required")
	}
	if c.HTTP.RequestTimeout <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("http.request_timeout must be positive")
	}
	if !slices.Contains(validLogFormats, c.Log.Format) {
		return oops.Code("CONFIG_INVALID").
			With("log_format", c.Log.Format).
			Errorf("log.format must be 'json' or 'text', got %q", c.Log.Format)
	}
	if !slices.Contains(validLogLevels, strings.ToLower(c.Log.Level)) {
		return oops.Code("CONFIG_INVALID").
			With("log_level", c.Log.Level).
			Errorf("log.level must be one of %s, got %q", strings.Join(validLogLevels, ", "), c.Log.Level)
	}
	if c.Database.ConnectAttempts < 1 {
		return oops.Code("CONFIG_INVALID").Errorf("database.connect_attempts must be at least 1")
	}
	if c.Media.MaxUploadBytes <= 0 {
		return oops.Code("CONFIG_INVALID").Errorf("media.max_upload_bytes must be positive")
	}
	if c.Tracing.SampleRatio < 0 || c.Tracing.SampleRatio > 1 {
		return oops.Code("CONFIG_INVALID").
			With("sample_ratio", c.Tracing.SampleRatio).
			Errorf("tracing.sample_ratio must be between 0 and 1")
	}
	if err := c.SessionConfig().Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").With("section", "auth").Wrap(err)
	}
	return nil
}

// SessionConfig converts the auth section for auth.NewSessionIssuer.
func (c *Config) SessionConfig() auth.SessionConfig {
	return auth.SessionConfig{
		Secret:       []byte(c.Auth.SigningSecret),
		Algorithm:    c.Auth.SigningAlgorithm,
		TokenExpiry:  time.Duration(c.Auth.TokenExpiryDays) * auth.Day,
		CookieExpiry: time.Duration(c.Auth.CookieExpiryDays) * auth.Day,
		CookieSecure: c.Auth.CookieSecure,
	}
}
