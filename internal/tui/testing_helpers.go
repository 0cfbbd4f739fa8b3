package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/script"
	"github.com/HFT/cream-browser/internal/shell"
)

// CreateTestModel creates a sized Model over a shell that serves about:
// and file:// pages, starting on homepage.
func CreateTestModel(t *testing.T, homepage string) *Model {
	t.Helper()

	settings := config.DefaultSettings()
	settings.Homepage = homepage
	s, err := shell.New(shell.Options{
		Config: &script.Config{Protocols: []script.Protocol{
			{Prefix: "about:", Module: "about"},
			{Prefix: "file://", Module: "file"},
		}},
		Settings:     settings,
		DownloadsDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Failed to create shell: %v", err)
	}
	t.Cleanup(s.Shutdown)

	m := New(s, nil, nil)
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return m
}

// SendKeys feeds each key to the model the way Bubble Tea would.
func SendKeys(m *Model, keys ...string) tea.Cmd {
	var cmd tea.Cmd
	for _, k := range keys {
		_, cmd = m.Update(keyMsg(k))
	}
	return cmd
}

// TypeText feeds text one rune at a time.
func TypeText(m *Model, text string) {
	for _, r := range text {
		m.Update(keyMsg(string(r)))
	}
}

func keyMsg(key string) tea.KeyMsg {
	switch key {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "ctrl+v":
		return tea.KeyMsg{Type: tea.KeyCtrlV}
	case "ctrl+w":
		return tea.KeyMsg{Type: tea.KeyCtrlW}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)}
}

// AssertModelField verifies a field value
func AssertModelField[T comparable](t *testing.T, fieldName string, got, want T) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %v, want %v", fieldName, got, want)
	}
}

// AssertViewContains verifies the rendered screen contains each string
func AssertViewContains(t *testing.T, m *Model, want ...string) {
	t.Helper()
	screen := m.View()
	for _, w := range want {
		if !strings.Contains(screen, w) {
			t.Errorf("view does not contain %q:\n%s", w, screen)
		}
	}
}
