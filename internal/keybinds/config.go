package keybinds

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"
)

// Config represents the user's keybinding configuration. Each section
// maps a key to a command line; an empty command removes the binding.
type Config struct {
	Version string                       `json:"version"`
	Global  map[string]string            `json:"global,omitempty"`
	Normal  map[string]string            `json:"normal,omitempty"`
	Input   map[string]string            `json:"input,omitempty"`
	Custom  map[string]map[string]string `json:"custom,omitempty"`
}

// LoadConfig loads keybinding configuration from a JSON file. Comments
// and trailing commas are allowed.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := json.Unmarshal(jsonc.ToJSON(data), &config); err != nil {
		return nil, fmt.Errorf("invalid keybinds.json format: %w", err)
	}

	return &config, nil
}

// SaveConfig saves keybinding configuration to a JSON file
func SaveConfig(config *Config, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ApplyConfig applies user configuration to a registry
// User bindings override default bindings
func ApplyConfig(registry *Registry, config *Config) error {
	contextMappings := map[Context]map[string]string{
		ContextGlobal: config.Global,
		ContextNormal: config.Normal,
		ContextInput:  config.Input,
	}
	for contextName, bindings := range config.Custom {
		contextMappings[Context(contextName)] = bindings
	}

	for context, bindings := range contextMappings {
		for key, command := range bindings {
			if err := ValidateKey(key); err != nil {
				return fmt.Errorf("context %s: %w", context, err)
			}
			if command == "" {
				registry.Unregister(context, key)
				continue
			}
			registry.Register(context, key, Action(command))
		}
	}

	return nil
}

// LoadOrDefault applies the user config at configPath, if it exists, on
// top of base. base is modified and returned; a nil base starts from the
// default bindings.
func LoadOrDefault(base *Registry, configPath string) (*Registry, error) {
	registry := base
	if registry == nil {
		registry = NewDefaultRegistry()
	}

	if _, err := os.Stat(configPath); err == nil {
		config, err := LoadConfig(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load keybinds.json: %w", err)
		}

		if err := ApplyConfig(registry, config); err != nil {
			return nil, fmt.Errorf("failed to apply keybinds config: %w", err)
		}
	}

	return registry, nil
}

// ExportConfig exports the bindings of a registry as a config.
func ExportConfig(registry *Registry) *Config {
	config := &Config{
		Version: "1.0",
		Global:  make(map[string]string),
		Normal:  make(map[string]string),
		Input:   make(map[string]string),
	}

	sections := map[Context]map[string]string{
		ContextGlobal: config.Global,
		ContextNormal: config.Normal,
		ContextInput:  config.Input,
	}
	for context, bindings := range registry.bindings {
		section, ok := sections[context]
		if !ok {
			if config.Custom == nil {
				config.Custom = make(map[string]map[string]string)
			}
			section = make(map[string]string)
			config.Custom[string(context)] = section
		}
		for key, action := range bindings {
			section[key] = string(action)
		}
	}

	return config
}
