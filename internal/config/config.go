// Package config provides configuration loading and validation for the
// dvmrun command.
//
// Configuration file: none by default; callers pass --config to point at
// a YAML file. Without one, Defaults() governs.
//
// Validation:
//   - entry must be non-empty.
//   - effects must be "simulate" or "realize".
//   - log.level must be a recognized zap level name.
//   - ledger.retention_runs, when the ledger is enabled, must be >= 1.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for dvmrun.
type Config struct {
	// Entry is the default entrypoint name used when --entry is not
	// passed on the command line.
	Entry string `yaml:"entry"`

	// Effects is the default effect mode: "simulate" or "realize".
	Effects string `yaml:"effects"`

	Log     LogConfig     `yaml:"log"`
	Ledger  LedgerConfig  `yaml:"ledger"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LogConfig configures the zap logger dvmrun builds at startup.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is "json" or "console".
	Format string `yaml:"format"`
}

// LedgerConfig configures the optional bbolt-backed run ledger.
type LedgerConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Path          string        `yaml:"path"`
	RetentionRuns int           `yaml:"retention_runs"`
	OpenTimeout   time.Duration `yaml:"open_timeout"`
}

// MetricsConfig configures the optional Prometheus metrics server.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// Defaults returns the configuration dvmrun runs with when no --config
// file is supplied.
func Defaults() Config {
	return Config{
		Entry:   "main",
		Effects: "simulate",
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Ledger: LedgerConfig{
			Enabled:       false,
			Path:          "dvmrun.ledger.db",
			RetentionRuns: 1000,
			OpenTimeout:   2 * time.Second,
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9464",
		},
	}
}

// Load reads and validates a config file from path, merging it over
// Defaults().
func Load(path string) (*Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse %q: %w", path, err)
	}
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config.Load: validation failed: %w", err)
	}
	return &cfg, nil
}

var validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}

// Validate checks cfg for correctness, returning a single error
// describing every violation found.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Entry == "" {
		errs = append(errs, "entry must not be empty")
	}
	if cfg.Effects != "simulate" && cfg.Effects != "realize" {
		errs = append(errs, fmt.Sprintf("effects must be \"simulate\" or \"realize\", got %q", cfg.Effects))
	}
	if !validLogLevels[cfg.Log.Level] {
		errs = append(errs, fmt.Sprintf("log.level must be one of debug/info/warn/error, got %q", cfg.Log.Level))
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("log.format must be \"json\" or \"console\", got %q", cfg.Log.Format))
	}
	if cfg.Ledger.Enabled {
		if cfg.Ledger.Path == "" {
			errs = append(errs, "ledger.path must not be empty when ledger.enabled is true")
		}
		if cfg.Ledger.RetentionRuns < 1 {
			errs = append(errs, fmt.Sprintf("ledger.retention_runs must be >= 1, got %d", cfg.Ledger.RetentionRuns))
		}
	}
	if cfg.Metrics.Enabled && cfg.Metrics.Addr == "" {
		errs = append(errs, "metrics.addr must not be empty when metrics.enabled is true")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", joinStrings(errs, "\n  - "))
	}
	return nil
}

func joinStrings(ss []string, sep string) string {
	if len(ss) == 0 {
		return ""
	}
	result := ss[0]
	for _, s := range ss[1:] {
		result += sep + s
	}
	return result
}
