package config

import (
	"fmt"
	"time"
)

// DefaultRefreshInterval is the UI auto-reload cadence when none is
// configured.
const DefaultRefreshInterval = Duration(30 * time.Second)

// Duration wraps time.Duration so config fields parse from strings like
// "30s" or "2m" in YAML and environment variables.
type Duration time.Duration

// UnmarshalText parses a duration string. Negative durations are
// rejected.
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", string(text), err)
	}
	if parsed < 0 {
		return fmt.Errorf("duration must not be negative, got %q", string(text))
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText renders the duration in time.Duration notation.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}
