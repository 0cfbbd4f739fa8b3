package shell

import (
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/HFT/cream-browser/internal/command"
	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/modules"
	"github.com/HFT/cream-browser/internal/script"
	"github.com/HFT/cream-browser/internal/version"
)

const historyPageLimit = 50

// Effective is the configuration a running browser uses.
type Effective struct {
	Settings  *config.Settings `yaml:"settings"`
	Script    *script.Config   `yaml:"script"`
	Protocols []string         `yaml:"protocols"`
	Keybinds  *keybinds.Config `yaml:"keybinds"`
}

// Dump renders the effective configuration as YAML.
func Dump(cfg *script.Config, settings *config.Settings, bindings *keybinds.Registry, protocols []string) ([]byte, error) {
	data, err := yaml.Marshal(Effective{
		Settings:  settings,
		Script:    cfg,
		Protocols: protocols,
		Keybinds:  keybinds.ExportConfig(bindings),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal configuration: %w", err)
	}
	return data, nil
}

// Check builds the protocol table and key bindings opts describe
// without opening any page. Binding errors fail the check; warnings are
// returned with the effective configuration as YAML.
func Check(opts Options) (dump []byte, warnings []string, err error) {
	if opts.Config == nil {
		return nil, nil, errors.New("shell: no configuration")
	}
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	if opts.Config.Theme != nil {
		if err := opts.Config.Theme.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid theme: %w", err)
		}
	}

	catalog := modules.New(modules.Options{Opener: opts.Opener, Logger: opts.Logger})
	registry, err := buildRegistry(opts.Config, catalog)
	if err != nil {
		return nil, nil, err
	}
	bindings, err := buildBindings(opts.Config, opts.KeybindsFile)
	if err != nil {
		return nil, nil, err
	}

	names := command.RegisterBuiltins(command.NewDispatcher(opts.Logger)).Names()
	result := keybinds.NewValidator().WithCommands(names).ValidateRegistry(bindings)
	if result.HasErrors() {
		return nil, nil, fmt.Errorf("invalid key bindings:\n%s", strings.TrimRight(result.String(), "\n"))
	}
	for _, w := range result.Warnings {
		warnings = append(warnings, w.Error())
	}

	dump, err = Dump(opts.Config, opts.Settings, bindings, registry.Prefixes())
	return dump, warnings, err
}

// Dump renders the configuration of s.
func (s *Shell) Dump() ([]byte, error) {
	return Dump(s.opts.Config, s.opts.Settings, s.bindings, s.registry.Prefixes())
}

func (s *Shell) versionPage() []string {
	return []string{
		version.Banner(),
		"",
		"Modules: " + strings.Join(s.catalog.Available(), ", "),
		"Protocols: " + strings.Join(s.registry.Prefixes(), " "),
		"Configuration: " + s.opts.Config.File,
	}
}

func (s *Shell) commandsPage() []string {
	lines := []string{"# Commands", ""}
	for _, name := range s.dispatcher.Names() {
		c, _ := s.dispatcher.Lookup(name)
		lines = append(lines, fmt.Sprintf("%-34s %s", c.Usage, c.Help))
	}

	lines = append(lines, "", "# Keys", "")
	for _, ctx := range keybinds.Contexts() {
		for _, b := range s.bindings.ListBindings(ctx) {
			lines = append(lines, fmt.Sprintf("%-8s %-12s %s", ctx, b.Key, b.Action))
		}
	}
	return lines
}

func (s *Shell) historyPage() []string {
	if s.opts.History == nil {
		return []string{"History is disabled."}
	}
	visits, err := s.opts.History.Recent(historyPageLimit)
	if err != nil {
		return []string{"Error: " + err.Error()}
	}
	if len(visits) == 0 {
		return []string{"No history"}
	}

	lines := []string{"# History", ""}
	for _, v := range visits {
		lines = append(lines, fmt.Sprintf("%s  %s", v.VisitedAt.Format("2006-01-02 15:04"), v.Label()), "  "+v.URI)
	}
	return lines
}

func (s *Shell) configPage() []string {
	data, err := s.Dump()
	if err != nil {
		return []string{"Error: " + err.Error()}
	}
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}
