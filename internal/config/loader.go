package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB
)

// defaultsYAML seeds the koanf tree before the file and environment
// layers. Booleans that default to true must live here: once unmarshaled,
// false and unset are indistinguishable. The API base URLs are absent on
// purpose.
var defaultsYAML = []byte(`app:
  env: development

ui:
  refresh_interval: 30s
  confirm_delete: true

logging:
  level: info
  format: json
`)

// Load loads configuration from defaults, an optional YAML file, and
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (APP_ENV, API_BASE_URL_DEV, etc.)
//  2. YAML config file (~/.config/workdeck/config.yaml)
//  3. Built-in defaults
//
// A .env file in the working directory is applied to the process
// environment first (godotenv); a missing .env is not an error. The
// configPath parameter names the YAML file; if empty, the default path is
// used, and a missing file at either path is skipped.
//
// # Environment Variable Mapping
//
// Environment variables are uppercased with an underscore between the
// section and the field name:
//
//	APP_ENV          -> app.env
//	API_BASE_URL_DEV -> api.base_url_dev
//	UI_STATE_PATH    -> ui.state_path
//
// # Example
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
func Load(configPath string) (*Config, error) {
	// Populate the environment from .env before the env layer reads it.
	// Real environment variables win over .env entries.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(rawbytes.Provider(defaultsYAML), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to load default config: %w", err)
	}

	// Use default config path if not specified
	if configPath == "" {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		configPath = filepath.Join(dir, "config.yaml")
	}

	// Load from YAML file if it exists
	if _, err := os.Stat(configPath); err == nil {
		// Open once and validate through the file descriptor to avoid a
		// TOCTOU race between stat and read.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}

		if err := validateConfigFile(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Override with environment variables
	if err := k.Load(env.Provider("", ".", envTransform), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Fill computed defaults (paths under the home directory)
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envTransform maps an environment variable name to a koanf key.
// The first underscore separates the section from the field name;
// underscores inside the field name are preserved:
//
//	APP_ENV           -> app.env
//	API_BASE_URL_PROD -> api.base_url_prod
//	UI_REFRESH_INTERVAL -> ui.refresh_interval
func envTransform(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)

	if len(parts) == 1 {
		return lower
	}

	return parts[0] + "." + parts[1]
}

// validateConfigFile checks size and type of an existing config file.
// Takes FileInfo from an already-opened file descriptor.
func validateConfigFile(info os.FileInfo) error {
	if !info.Mode().IsRegular() {
		return fmt.Errorf("config path is not a regular file: %s", info.Mode())
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}
