package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Settings are read from CREAM_* environment variables. Command line
// flags and the configuration script override them.
type Settings struct {
	Homepage    string        `envconfig:"HOMEPAGE" default:"about:blank" yaml:"homepage"`
	Socket      string        `envconfig:"SOCKET" yaml:"socket,omitempty"`
	UserAgent   string        `envconfig:"USER_AGENT" default:"cream-browser" yaml:"user_agent"`
	HTTPTimeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"30s" yaml:"http_timeout"`
	Log         LogSettings   `yaml:"log"`
}

// LogSettings holds logging configuration. Nested under Log, the
// variables are CREAM_LOG_LEVEL and CREAM_LOG_DEV.
type LogSettings struct {
	Level       string `envconfig:"LEVEL" default:"info" yaml:"level"`
	Development bool   `envconfig:"DEV" default:"false" yaml:"development"`
}

// LoadSettings loads settings from the environment.
func LoadSettings() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("cream", &s); err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

// DefaultSettings returns the settings used when the environment is empty.
func DefaultSettings() *Settings {
	return &Settings{
		Homepage:    "about:blank",
		UserAgent:   "cream-browser",
		HTTPTimeout: 30 * time.Second,
		Log: LogSettings{
			Level: "info",
		},
	}
}
