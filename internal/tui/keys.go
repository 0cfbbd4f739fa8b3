package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/keybinds"
)

// handleKeyPress routes one key press. Global bindings win, then input
// bindings while the box has focus, then the focused tab's input box,
// which resolves normal bindings itself.
func (m *Model) handleKeyPress(msg tea.KeyMsg) {
	key := msg.String()
	t := m.shell.Focused()
	if t == nil {
		return
	}
	input := t.Input()
	bindings := m.shell.Bindings()

	if action, ok := bindings.Match(keybinds.ContextGlobal, key); ok {
		m.run(string(action))
		return
	}
	if input.Focused() {
		if action, ok := bindings.Match(keybinds.ContextInput, key); ok {
			m.run(string(action))
			return
		}
	}

	if !input.Key(key) {
		m.logger.Debug("unhandled key", zap.String("key", key))
	}
}

// run dispatches a bound command line and shows its result without
// moving focus.
func (m *Model) run(line string) {
	out, err := m.shell.Dispatch(line)
	switch {
	case err != nil:
		m.shell.Message(err.Error(), true)
	case out != "":
		m.shell.Message(out, false)
	}
}
