package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/split"
)

const (
	maxTabLabel     = 24
	maxMessageLines = 12
)

// View renders the pane tree above the prompt line.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 || m.quitting {
		return ""
	}

	prompt := m.renderPrompt()
	bodyHeight := m.height - lipgloss.Height(prompt)

	tree := m.shell.Tree()
	live := make(map[string]bool)
	body := m.renderNode(tree, tree.Root(), m.width, bodyHeight, tree.Len() > 1, live)
	m.prune(live)

	return lipgloss.JoinVertical(lipgloss.Left, body, prompt)
}

// renderNode lays out h in a width x height box. Horizontal nodes stack
// their children, vertical nodes put them side by side.
func (m *Model) renderNode(tree *split.Tree, h split.Handle, width, height int, bordered bool, live map[string]bool) string {
	n, err := tree.Node(h)
	if err != nil || width <= 0 || height <= 0 {
		return ""
	}

	if n.Leaf {
		focused := h == tree.FocusedLeaf()
		if !bordered {
			return m.renderGroup(n.Group, width, height, focused, live)
		}
		style := m.styles.PaneBorder
		if focused {
			style = m.styles.PaneFocus
		}
		inner := m.renderGroup(n.Group, width-2, height-2, focused, live)
		return style.Width(width - 2).Height(height - 2).Render(inner)
	}

	if n.Orientation == split.Vertical {
		left := width / 2
		return lipgloss.JoinHorizontal(lipgloss.Top,
			m.renderNode(tree, n.Children[0], left, height, bordered, live),
			m.renderNode(tree, n.Children[1], width-left, height, bordered, live),
		)
	}
	top := height / 2
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderNode(tree, n.Children[0], width, top, bordered, live),
		m.renderNode(tree, n.Children[1], width, height-top, bordered, live),
	)
}

// renderGroup draws the tab bar, the focused tab's content and its
// status bar.
func (m *Model) renderGroup(g *notebook.Group, width, height int, focused bool, live map[string]bool) string {
	for _, t := range g.Tabs() {
		live[t.ID()] = true
	}
	t := g.Focused()
	if t == nil || width <= 0 || height <= 0 {
		return ""
	}

	p := m.paneFor(t)
	status := m.renderStatus(g, p, width)
	if height < 3 {
		p.sync(t, width, 1)
		return status
	}

	p.sync(t, width, height-2)
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderTabBar(g, width),
		p.vp.View(),
		status,
	)
}

func (m *Model) renderTabBar(g *notebook.Group, width int) string {
	var parts []string
	for i, t := range g.Tabs() {
		label := fmt.Sprintf("%d %s", i+1, truncate(t.Label(), maxTabLabel))
		if t.Progress() < 100 {
			label += fmt.Sprintf(" %d%%", t.Progress())
		}
		style := m.styles.Tab
		if i == g.FocusIndex() {
			style = m.styles.TabFocus
		}
		parts = append(parts, style.Render(label))
	}
	return fill(lipgloss.JoinHorizontal(lipgloss.Top, parts...), width)
}

// renderStatus shows the location with its back/forward markers on the
// left, and the status text, load progress and scroll position on the
// right. https pages use the secure colours.
func (m *Model) renderStatus(g *notebook.Group, p *pane, width int) string {
	t := g.Focused()
	style := m.styles.Status
	if t.Secure() {
		style = m.styles.StatusSecure
	}

	var right []string
	if s := t.Status(); s != "" {
		right = append(right, s)
	}
	if t.Progress() < 100 {
		right = append(right, fmt.Sprintf("%d%%", t.Progress()))
	}
	right = append(right, p.scrollLabel())
	rightText := strings.Join(right, "  ")

	inner := width - style.GetHorizontalFrameSize()
	room := inner - lipgloss.Width(rightText) - 1
	left := truncate(t.Location(), max(room, 0))
	gap := max(inner-lipgloss.Width(left)-lipgloss.Width(rightText), 1)

	line := left + strings.Repeat(" ", gap) + rightText
	return style.Width(width).MaxWidth(width).MaxHeight(1).Render(line)
}

// renderPrompt draws the focused tab's input box. Multi-line messages
// take up to maxMessageLines lines.
func (m *Model) renderPrompt() string {
	t := m.shell.Focused()
	if t == nil {
		return ""
	}
	input := t.Input()

	text := input.Text()
	if input.Focused() && !input.Message() {
		text += "█"
	}
	if text == "" {
		if pending := m.shell.Bindings().Pending(keybinds.ContextNormal); pending != "" {
			text = fmt.Sprintf("%*s", m.width-m.styles.Prompt.GetHorizontalFrameSize(), pending)
		}
	}

	lines := strings.Split(text, "\n")
	if limit := min(maxMessageLines, m.height/2); len(lines) > limit && limit > 0 {
		lines = append(lines[:limit-1], fmt.Sprintf("... %d more lines", len(lines)-limit+1))
	}

	style := m.styles.Prompt
	if input.Failed() {
		style = m.styles.PromptError
	}
	return style.Width(m.width).MaxWidth(m.width).Render(strings.Join(lines, "\n"))
}

// truncate shortens s to at most n cells, marking the cut with an
// ellipsis.
func truncate(s string, n int) string {
	if lipgloss.Width(s) <= n {
		return s
	}
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > n-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}

// fill pads or clips s to exactly width cells.
func fill(s string, width int) string {
	if w := lipgloss.Width(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return lipgloss.NewStyle().MaxWidth(width).Render(s)
}
