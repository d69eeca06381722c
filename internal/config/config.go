// Package config provides configuration loading for workdeck.
//
// Configuration is loaded from an optional YAML file and environment
// variables, with environment selection between a development and a
// production backend. This package supports application, API, UI, and
// logging settings.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Environment names accepted in app.env.
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Config holds the complete workdeck configuration.
type Config struct {
	App     AppConfig     `koanf:"app"`
	API     APIConfig     `koanf:"api"`
	UI      UIConfig      `koanf:"ui"`
	Logging LoggingConfig `koanf:"logging"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Env string `koanf:"env"` // development or production
}

// APIConfig holds backend API settings. The base URLs have no defaults:
// the URL for the active environment must be configured explicitly, and
// a missing one fails validation.
type APIConfig struct {
	BaseURLDev  string `koanf:"base_url_dev"`
	BaseURLProd string `koanf:"base_url_prod"`
}

// UIConfig holds terminal UI settings.
type UIConfig struct {
	RefreshInterval Duration `koanf:"refresh_interval"` // auto-reload cadence (default: 30s)
	StatePath       string   `koanf:"state_path"`       // persisted UI state file
	ConfirmDelete   bool     `koanf:"confirm_delete"`
}

// LoggingConfig holds log output settings. File is the log sink; the
// interactive UI owns the terminal, so logs default to a file under the
// config directory. An empty File sends logs to stderr.
type LoggingConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // json or console
	File   string `koanf:"file"`
}

// ActiveBaseURL returns the backend base URL for the configured
// environment.
func (c *Config) ActiveBaseURL() string {
	if c.App.Env == EnvProduction {
		return c.API.BaseURLProd
	}
	return c.API.BaseURLDev
}

// Validate validates the configuration.
//
// Returns an error if:
//   - App environment is not development or production
//   - The base URL for the active environment is empty
//   - Refresh interval is not positive
//   - Logging level or format is unrecognized
func (c *Config) Validate() error {
	if c.App.Env != EnvDevelopment && c.App.Env != EnvProduction {
		return fmt.Errorf("invalid app environment: %q (must be %s or %s)", c.App.Env, EnvDevelopment, EnvProduction)
	}

	// A missing base URL for the active environment is a deployment
	// mistake that must surface at startup, not as a broken request later.
	if c.ActiveBaseURL() == "" {
		return fmt.Errorf("no API base URL configured for environment %q", c.App.Env)
	}

	if c.UI.RefreshInterval.Duration() <= 0 {
		return errors.New("refresh interval must be positive")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid logging level: %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "json", "console":
	default:
		return fmt.Errorf("invalid logging format: %q (must be json or console)", c.Logging.Format)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
// The API base URLs deliberately have no defaults.
func applyDefaults(cfg *Config) {
	if cfg.App.Env == "" {
		cfg.App.Env = EnvDevelopment
	}

	// UI defaults
	if cfg.UI.RefreshInterval == 0 {
		cfg.UI.RefreshInterval = DefaultRefreshInterval
	}
	if cfg.UI.StatePath == "" {
		if dir, err := configDir(); err == nil {
			cfg.UI.StatePath = filepath.Join(dir, "state.json")
		}
	}

	// Logging defaults
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.File == "" {
		if dir, err := configDir(); err == nil {
			cfg.Logging.File = filepath.Join(dir, "workdeck.log")
		}
	}
}

// configDir returns the workdeck config directory path.
func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".config", "workdeck"), nil
}

// EnsureConfigDir creates the workdeck config directory if it doesn't
// exist. Called during startup so the state file and log file have a home.
// The directory is created with 0700 permissions.
func EnsureConfigDir() error {
	dir, err := configDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", dir, err)
	}
	return nil
}
