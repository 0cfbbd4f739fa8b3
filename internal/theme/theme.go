// Package theme holds the colours of the browser chrome and turns them
// into lipgloss styles.
package theme

import (
	"fmt"
	"regexp"

	"github.com/charmbracelet/lipgloss"
)

// Colors is a background or foreground colour set.
type Colors struct {
	Normal string `json:"normal" yaml:"normal"`
	Secure string `json:"secure,omitempty" yaml:"secure,omitempty"`
	Focus  string `json:"focus,omitempty" yaml:"focus,omitempty"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Border string `json:"border,omitempty" yaml:"border,omitempty"`
}

// Box controls spacing around a widget.
type Box struct {
	Padding int `json:"padding" yaml:"padding"`
}

// Section is the look of one widget.
type Section struct {
	Font string `json:"font,omitempty" yaml:"font,omitempty"`
	Bg   Colors `json:"bg" yaml:"bg"`
	Fg   Colors `json:"fg" yaml:"fg"`
	Box  Box    `json:"box" yaml:"box"`
}

type Theme struct {
	Global    Section `json:"global" yaml:"global"`
	Statusbar Section `json:"statusbar" yaml:"statusbar"`
	Tab       Section `json:"tab" yaml:"tab"`
	Promptbox Section `json:"promptbox" yaml:"promptbox"`
	Webview   Section `json:"webview" yaml:"webview"`
}

// Default returns the stock theme: a black status bar that turns green
// on secure pages, grey tabs and a dark prompt box that turns red on
// errors.
func Default() *Theme {
	return &Theme{
		Global: Section{
			Font: "sans normal 8",
		},
		Statusbar: Section{
			Font: "sans normal 8",
			Bg:   Colors{Normal: "#000000", Secure: "#B0FF00"},
			Fg:   Colors{Normal: "#FFFFFF", Secure: "#000000"},
		},
		Tab: Section{
			Font: "sans normal 8",
			Bg:   Colors{Normal: "#505050", Focus: "#000000", Border: "#000000"},
			Fg:   Colors{Normal: "#CCCCCC", Focus: "#FFFFFF", Border: "#000000"},
		},
		Promptbox: Section{
			Font: "sans normal 8",
			Bg:   Colors{Normal: "#151515", Error: "#FF0000"},
			Fg:   Colors{Normal: "#CCCCCC", Error: "#000000"},
		},
		Webview: Section{
			Box: Box{Padding: 1},
		},
	}
}

var colorPattern = regexp.MustCompile(`^(#[0-9A-Fa-f]{3}|#[0-9A-Fa-f]{6}|[0-9]{1,3})$`)

// Validate reports the first colour that lipgloss cannot render.
func (t *Theme) Validate() error {
	sections := []struct {
		name string
		s    Section
	}{
		{"global", t.Global},
		{"statusbar", t.Statusbar},
		{"tab", t.Tab},
		{"promptbox", t.Promptbox},
		{"webview", t.Webview},
	}

	for _, sec := range sections {
		for _, c := range []struct {
			name  string
			value string
		}{
			{"bg.normal", sec.s.Bg.Normal}, {"bg.secure", sec.s.Bg.Secure},
			{"bg.focus", sec.s.Bg.Focus}, {"bg.error", sec.s.Bg.Error},
			{"bg.border", sec.s.Bg.Border},
			{"fg.normal", sec.s.Fg.Normal}, {"fg.secure", sec.s.Fg.Secure},
			{"fg.focus", sec.s.Fg.Focus}, {"fg.error", sec.s.Fg.Error},
			{"fg.border", sec.s.Fg.Border},
		} {
			if c.value != "" && !colorPattern.MatchString(c.value) {
				return fmt.Errorf("theme.%s.%s: invalid colour %q", sec.name, c.name, c.value)
			}
		}
		if sec.s.Box.Padding < 0 {
			return fmt.Errorf("theme.%s.box.padding: must not be negative", sec.name)
		}
	}
	return nil
}

// Styles are the rendered styles of a theme.
type Styles struct {
	Status       lipgloss.Style
	StatusSecure lipgloss.Style
	Tab          lipgloss.Style
	TabFocus     lipgloss.Style
	Prompt       lipgloss.Style
	PromptError  lipgloss.Style
	Page         lipgloss.Style
	PaneBorder   lipgloss.Style
	PaneFocus    lipgloss.Style
}

// Styles builds lipgloss styles from t.
func (t *Theme) Styles() Styles {
	pad := func(s lipgloss.Style, b Box) lipgloss.Style {
		return s.Padding(0, b.Padding)
	}

	status := pad(lipgloss.NewStyle().Bold(true), t.Statusbar.Box)
	tabStyle := pad(lipgloss.NewStyle(), Box{Padding: max(t.Tab.Box.Padding, 1)})
	prompt := pad(lipgloss.NewStyle(), t.Promptbox.Box)

	return Styles{
		Status: status.
			Background(color(t.Statusbar.Bg.Normal)).
			Foreground(color(t.Statusbar.Fg.Normal)),
		StatusSecure: status.
			Background(color(t.Statusbar.Bg.Secure, t.Statusbar.Bg.Normal)).
			Foreground(color(t.Statusbar.Fg.Secure, t.Statusbar.Fg.Normal)),
		Tab: tabStyle.
			Background(color(t.Tab.Bg.Normal)).
			Foreground(color(t.Tab.Fg.Normal)),
		TabFocus: tabStyle.
			Bold(true).
			Background(color(t.Tab.Bg.Focus, t.Tab.Bg.Normal)).
			Foreground(color(t.Tab.Fg.Focus, t.Tab.Fg.Normal)),
		Prompt: prompt.
			Background(color(t.Promptbox.Bg.Normal)).
			Foreground(color(t.Promptbox.Fg.Normal)),
		PromptError: prompt.
			Background(color(t.Promptbox.Bg.Error, t.Promptbox.Bg.Normal)).
			Foreground(color(t.Promptbox.Fg.Error, t.Promptbox.Fg.Normal)),
		Page: lipgloss.NewStyle().
			Padding(0, t.Webview.Box.Padding),
		PaneBorder: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(color(t.Tab.Bg.Normal)),
		PaneFocus: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(color(t.Tab.Fg.Focus, t.Tab.Fg.Normal)),
	}
}

// color returns the first non-empty value as a lipgloss colour.
func color(values ...string) lipgloss.TerminalColor {
	for _, v := range values {
		if v != "" {
			return lipgloss.Color(v)
		}
	}
	return lipgloss.NoColor{}
}
