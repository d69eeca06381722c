package config

import (
	"strings"
	"testing"
	"time"
)

// validConfig returns a configuration that passes Validate.
func validConfig() Config {
	return Config{
		App: AppConfig{Env: EnvDevelopment},
		API: APIConfig{BaseURLDev: "http://localhost:8000"},
		UI: UIConfig{
			RefreshInterval: DefaultRefreshInterval,
			ConfirmDelete:   true,
		},
		Logging: LoggingConfig{Level: "info", Format: "json"},
	}
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() error = %v, want nil", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:    "unknown environment",
			mutate:  func(c *Config) { c.App.Env = "qa" },
			wantErr: "invalid app environment",
		},
		{
			name:    "missing dev base URL",
			mutate:  func(c *Config) { c.API.BaseURLDev = "" },
			wantErr: "no API base URL configured",
		},
		{
			name: "missing prod base URL in production",
			mutate: func(c *Config) {
				c.App.Env = EnvProduction
				c.API.BaseURLProd = ""
			},
			wantErr: "no API base URL configured",
		},
		{
			name:    "zero refresh interval",
			mutate:  func(c *Config) { c.UI.RefreshInterval = 0 },
			wantErr: "refresh interval",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid logging level",
		},
		{
			name:    "unknown log format",
			mutate:  func(c *Config) { c.Logging.Format = "text" },
			wantErr: "invalid logging format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestActiveBaseURL(t *testing.T) {
	cfg := Config{
		App: AppConfig{Env: EnvDevelopment},
		API: APIConfig{
			BaseURLDev:  "http://localhost:8000",
			BaseURLProd: "https://dashboard.example.com",
		},
	}

	if got := cfg.ActiveBaseURL(); got != "http://localhost:8000" {
		t.Errorf("ActiveBaseURL() = %q, want dev URL", got)
	}

	cfg.App.Env = EnvProduction
	if got := cfg.ActiveBaseURL(); got != "https://dashboard.example.com" {
		t.Errorf("ActiveBaseURL() = %q, want prod URL", got)
	}
}

func TestDuration_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", text: "45s", want: 45 * time.Second},
		{name: "minutes", text: "2m", want: 2 * time.Minute},
		{name: "compound", text: "1m30s", want: 90 * time.Second},
		{name: "negative rejected", text: "-5s", wantErr: true},
		{name: "garbage rejected", text: "soon", wantErr: true},
		{name: "bare number rejected", text: "30", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalText([]byte(tt.text))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("UnmarshalText(%q) error = nil, want error", tt.text)
				}
				return
			}
			if err != nil {
				t.Fatalf("UnmarshalText(%q) error = %v, want nil", tt.text, err)
			}
			if d.Duration() != tt.want {
				t.Errorf("Duration() = %v, want %v", d.Duration(), tt.want)
			}
		})
	}
}
