// Package command implements the ':' command language: a table of named
// commands and the dispatcher that runs a command line against the
// focused pane and tab.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
)

var (
	// ErrUnknownCommand is returned when the leading token names no command.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage is wrapped by errors caused by bad arguments.
	ErrUsage = errors.New("usage")
)

// RunFunc executes a command. args is the rest of the line after the
// command name and its separating whitespace, unmodified.
type RunFunc func(ctx *Context, args string) (string, error)

// Command is a named entry of the command table.
type Command struct {
	Name    string
	Aliases []string
	Usage   string
	Help    string
	Run     RunFunc
}

// Dispatcher resolves command lines to commands.
type Dispatcher struct {
	commands map[string]*Command
	names    []string
	logger   *zap.Logger
}

// NewDispatcher returns a dispatcher without commands.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		commands: make(map[string]*Command),
		logger:   logger,
	}
}

// Register adds c under its name and aliases, replacing earlier entries.
func (d *Dispatcher) Register(c *Command) {
	if _, exists := d.commands[c.Name]; !exists {
		d.names = append(d.names, c.Name)
		sort.Strings(d.names)
	}
	d.commands[c.Name] = c
	for _, a := range c.Aliases {
		d.commands[a] = c
	}
}

// Lookup returns the command registered under name or one of its aliases.
func (d *Dispatcher) Lookup(name string) (*Command, bool) {
	c, ok := d.commands[name]
	return c, ok
}

// Names returns the command names, aliases excluded, sorted.
func (d *Dispatcher) Names() []string {
	return append([]string(nil), d.names...)
}

// Dispatch runs line. The leading whitespace-delimited token selects the
// command and the remainder is passed to it verbatim.
func (d *Dispatcher) Dispatch(line string, ctx *Context) (string, error) {
	name, args := splitCommand(line)
	if name == "" {
		return "", nil
	}

	c, ok := d.commands[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	if ctx.Dispatcher == nil {
		ctx.Dispatcher = d
	}

	out, err := c.Run(ctx, args)
	if err != nil {
		d.logger.Debug("command failed", zap.String("command", name), zap.Error(err))
		return "", err
	}
	d.logger.Debug("command executed", zap.String("command", name))
	return out, nil
}

// splitCommand separates the command name from its arguments. Only the
// whitespace between them is dropped.
func splitCommand(line string) (string, string) {
	line = strings.TrimLeftFunc(line, unicode.IsSpace)
	i := strings.IndexFunc(line, unicode.IsSpace)
	if i < 0 {
		return line, ""
	}
	return line[:i], strings.TrimLeftFunc(line[i:], unicode.IsSpace)
}
