package command

import (
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/session"
)

const historyLimit = 20

func shellCommands() []*Command {
	return []*Command{
		{
			Name:  "prompt",
			Usage: "prompt <text>",
			Help:  "focus the input box filled with text",
			Run: func(ctx *Context, args string) (string, error) {
				ctx.Tab().Input().Prompt(args)
				return "", nil
			},
		},
		{
			Name:  "echo",
			Usage: "echo <text>",
			Help:  "print text",
			Run: func(_ *Context, args string) (string, error) {
				return args, nil
			},
		},
		{
			Name:  "bind",
			Usage: "bind <context> <key> <command>",
			Help:  "bind a key to a command line",
			Run:   runBind,
		},
		{
			Name:  "unbind",
			Usage: "unbind <context> <key>",
			Help:  "remove a key binding",
			Run:   runUnbind,
		},
		{
			Name:  "history",
			Usage: "history [text]",
			Help:  "list visited pages, optionally matching text",
			Run:   runHistory,
		},
		{
			Name:  "session",
			Usage: "session save|restore",
			Help:  "save or restore the open panes and tabs",
			Run:   runSession,
		},
		{
			Name:  "commands",
			Usage: "commands",
			Help:  "list the available commands",
			Run:   runCommands,
		},
		{
			Name:    "quit",
			Aliases: []string{"q"},
			Usage:   "quit",
			Help:    "leave the browser",
			Run: func(ctx *Context, _ string) (string, error) {
				if ctx.UI == nil {
					return "", fmt.Errorf("quit: %w", ErrUnavailable)
				}
				ctx.UI.Quit()
				return "", nil
			},
		},
	}
}

func runBind(ctx *Context, args string) (string, error) {
	if ctx.Bindings == nil {
		return "", fmt.Errorf("bind: %w", ErrUnavailable)
	}

	context, rest := splitCommand(args)
	key, command := splitCommand(rest)
	name, _ := splitCommand(command)
	if context == "" || key == "" || name == "" {
		return "", fmt.Errorf("%w: bind <context> <key> <command>", ErrUsage)
	}
	if !validContext(context) {
		return "", fmt.Errorf("%w: unknown context %q", ErrUsage, context)
	}
	if err := keybinds.ValidateKey(key); err != nil {
		return "", err
	}
	if _, ok := ctx.Dispatcher.Lookup(name); !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}

	ctx.Bindings.Register(keybinds.Context(context), key, keybinds.Action(command))
	return "", nil
}

func validContext(name string) bool {
	for _, c := range keybinds.Contexts() {
		if string(c) == name {
			return true
		}
	}
	return false
}

func runUnbind(ctx *Context, args string) (string, error) {
	if ctx.Bindings == nil {
		return "", fmt.Errorf("unbind: %w", ErrUnavailable)
	}

	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "", fmt.Errorf("%w: unbind <context> <key>", ErrUsage)
	}
	if !ctx.Bindings.Unregister(keybinds.Context(fields[0]), fields[1]) {
		return "", fmt.Errorf("%s is not bound in %s", fields[1], fields[0])
	}
	return "", nil
}

func runHistory(ctx *Context, args string) (string, error) {
	if ctx.History == nil {
		return "", fmt.Errorf("history: %w", ErrUnavailable)
	}

	visits, err := ctx.History.Search(strings.TrimSpace(args), historyLimit)
	if err != nil {
		return "", fmt.Errorf("failed to read history: %w", err)
	}
	if len(visits) == 0 {
		return "No history", nil
	}

	lines := make([]string, len(visits))
	for i, v := range visits {
		title := v.Title
		if title == "" {
			title = "-"
		}
		lines[i] = fmt.Sprintf("%s  %s  %s", v.VisitedAt.Format("2006-01-02 15:04"), title, v.URI)
	}
	return strings.Join(lines, "\n"), nil
}

func runSession(ctx *Context, args string) (string, error) {
	if ctx.Sessions == nil {
		return "", fmt.Errorf("session: %w", ErrUnavailable)
	}

	switch strings.TrimSpace(args) {
	case "save", "":
		snap := session.Capture(ctx.Tree)
		if err := ctx.Sessions.Save(snap); err != nil {
			return "", err
		}
		return "Session saved (" + strconv.Itoa(snap.TabCount()) + " tabs)", nil

	case "restore":
		snap, err := ctx.Sessions.Load()
		if err != nil {
			return "", err
		}
		if err := session.Restore(ctx.Tree, snap); err != nil {
			ctx.logger().Warn("session restore incomplete", zap.Error(err))
			return "", err
		}
		return "Session restored", nil
	}

	return "", fmt.Errorf("%w: session save|restore", ErrUsage)
}

func runCommands(ctx *Context, _ string) (string, error) {
	var b strings.Builder
	for i, name := range ctx.Dispatcher.Names() {
		c, _ := ctx.Dispatcher.Lookup(name)
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%-34s %s", c.Usage, c.Help)
	}
	return b.String(), nil
}
