package script

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/theme"
)

// ErrInvalidSetting is returned for set() calls with an unknown name or
// a value of the wrong shape.
var ErrInvalidSetting = errors.New("invalid setting")

// Options configures a Runtime.
type Options struct {
	// Modules are the module names protocol.register accepts.
	Modules []string
	// Commands, when set, restricts bind() to these command names.
	Commands []string
	// Timeout stops scripts that run too long. Zero means DefaultTimeout.
	Timeout time.Duration
	// Logger receives console output.
	Logger *zap.Logger
}

// DefaultTimeout bounds a configuration script.
const DefaultTimeout = 5 * time.Second

// Protocol is one protocol.register call. An empty Module keeps the
// prefix reserved without a handler.
type Protocol struct {
	Prefix string `yaml:"prefix"`
	Module string `yaml:"module,omitempty"`
}

// Binding is one bind or unbind call. Unbind has an empty Command.
type Binding struct {
	Context string `yaml:"context"`
	Key     string `yaml:"key"`
	Command string `yaml:"command,omitempty"`
}

// Config is what a configuration script declared.
type Config struct {
	File      string            `yaml:"file"`
	Protocols []Protocol        `yaml:"protocols"`
	Bindings  []Binding         `yaml:"bindings,omitempty"`
	Settings  map[string]string `yaml:"settings,omitempty"`
	Theme     *theme.Theme      `yaml:"theme"`
}

// ConfigError reports a failure while running a configuration script.
type ConfigError struct {
	File string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: %v", e.File, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

// settingNames lists the names set() accepts.
var settingNames = []string{"homepage", "socket", "user_agent", "http_timeout", "log_level"}

func checkSetting(name, value string) error {
	switch name {
	case "homepage", "socket", "user_agent", "log_level":
		return nil
	case "http_timeout":
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("%w: http_timeout: %v", ErrInvalidSetting, err)
		}
		return nil
	}
	return fmt.Errorf("%w: unknown name %q, expected one of %s", ErrInvalidSetting, name, strings.Join(settingNames, ", "))
}

// Apply copies the script's settings over s.
func (c *Config) Apply(s *config.Settings) error {
	for name, value := range c.Settings {
		if err := checkSetting(name, value); err != nil {
			return err
		}
		switch name {
		case "homepage":
			s.Homepage = value
		case "socket":
			s.Socket = value
		case "user_agent":
			s.UserAgent = value
		case "log_level":
			s.Log.Level = value
		case "http_timeout":
			s.HTTPTimeout, _ = time.ParseDuration(value)
		}
	}
	return nil
}
