package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/HFT/cream-browser/internal/tab"
	"github.com/HFT/cream-browser/internal/view"
)

// pane is the scroll state of one tab's content.
type pane struct {
	vp      viewport.Model
	content string
	match   int
}

// paneFor returns the pane of t, creating it on first use.
func (m *Model) paneFor(t *tab.Tab) *pane {
	p, ok := m.panes[t.ID()]
	if !ok {
		p = &pane{vp: viewport.New(80, 20), match: -1}
		p.vp.Style = m.styles.Page
		m.panes[t.ID()] = p
	}
	return p
}

// sync resizes the viewport and refreshes its content from the view.
func (p *pane) sync(t *tab.Tab, width, height int) {
	if width > 0 {
		p.vp.Width = width
	}
	if height > 0 {
		p.vp.Height = height
	}
	if content := t.View().Content(); content != p.content {
		p.content = content
		p.vp.SetContent(content)
	}
}

// scrollLabel renders All, Top, Bot or the percentage.
func (p *pane) scrollLabel() string {
	return tab.ScrollLabel(p.vp.YOffset, p.vp.TotalLineCount(), p.vp.Height)
}

// Scroll moves the focused tab's content.
func (m *Model) Scroll(action string) error {
	t := m.shell.Focused()
	if t == nil {
		return fmt.Errorf("no tab to scroll")
	}
	p := m.paneFor(t)
	p.sync(t, 0, 0)

	switch action {
	case "up":
		p.vp.ScrollUp(1)
	case "down":
		p.vp.ScrollDown(1)
	case "pageup":
		p.vp.PageUp()
	case "pagedown":
		p.vp.PageDown()
	case "halfup":
		p.vp.HalfViewUp()
	case "halfdown":
		p.vp.HalfViewDown()
	case "top":
		p.vp.GotoTop()
	case "bottom":
		p.vp.GotoBottom()
	default:
		return fmt.Errorf("unknown scroll action %q", action)
	}
	return nil
}

// followMatch scrolls the focused tab to a new search match.
func (m *Model) followMatch() {
	t := m.shell.Focused()
	if t == nil {
		return
	}
	loc, ok := t.View().(view.Locator)
	if !ok {
		return
	}
	p := m.paneFor(t)
	line := loc.MatchLine()
	if line == p.match {
		return
	}
	p.match = line
	if line >= 0 {
		p.sync(t, 0, 0)
		p.vp.SetYOffset(line)
	}
}

// prune forgets the panes of tabs that no longer exist.
func (m *Model) prune(live map[string]bool) {
	for id := range m.panes {
		if !live[id] {
			delete(m.panes, id)
		}
	}
}
