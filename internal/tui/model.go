package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/shell"
	"github.com/HFT/cream-browser/internal/theme"
)

// loopMsg reports that the shell loop has callbacks queued.
type loopMsg struct{}

// Model is the Bubble Tea model of the browser.
type Model struct {
	shell  *shell.Shell
	styles theme.Styles
	logger *zap.Logger

	width  int
	height int

	panes    map[string]*pane
	quitting bool
}

// New creates the model and registers it as the shell's UI. A nil theme
// uses the defaults.
func New(s *shell.Shell, t *theme.Theme, logger *zap.Logger) *Model {
	if t == nil {
		t = theme.Default()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	m := &Model{
		shell:  s,
		styles: t.Styles(),
		logger: logger.Named("tui"),
		panes:  make(map[string]*pane),
	}
	s.SetUI(m)
	return m
}

// Run starts the TUI and blocks until the user quits or ctx is done.
func Run(ctx context.Context, s *shell.Shell, t *theme.Theme, logger *zap.Logger) error {
	m := New(s, t, logger)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}

// Init starts waiting on the shell loop.
func (m *Model) Init() tea.Cmd {
	return m.waitForLoop()
}

func (m *Model) waitForLoop() tea.Cmd {
	ready := m.shell.Loop().Ready()
	return func() tea.Msg {
		<-ready
		return loopMsg{}
	}
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case loopMsg:
		n := m.shell.Loop().Drain()
		m.logger.Debug("drained", zap.Int("callbacks", n))
		cmd = m.waitForLoop()
	}

	m.followMatch()
	if m.quitting {
		return m, tea.Quit
	}
	return m, cmd
}

// Quit makes the program exit after the current message.
func (m *Model) Quit() {
	m.quitting = true
}

// Quitting reports whether Quit was called.
func (m *Model) Quitting() bool {
	return m.quitting
}
