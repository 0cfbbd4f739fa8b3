// Package notebook implements an ordered, focus tracking group of tabs.
package notebook

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/tab"
	"github.com/HFT/cream-browser/internal/view"
)

// ErrInvalidIndex is returned for a tab index outside the group.
var ErrInvalidIndex = errors.New("invalid tab index")

// ChangeFunc is called whenever the tab strip needs to be rendered again.
type ChangeFunc func(g *Group)

// Group is an ordered list of tabs. focus is -1 exactly when the group is
// empty.
type Group struct {
	resolver tab.Resolver
	opts     tab.Options
	logger   *zap.Logger

	tabs     []*tab.Tab
	focus    int
	onChange ChangeFunc
}

// New creates an empty group. Tabs it opens are created with opts; the
// NewWindow hook defaults to opening the URI in a new tab of this group.
func New(r tab.Resolver, opts tab.Options) *Group {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	g := &Group{
		resolver: r,
		logger:   logger,
		focus:    -1,
	}
	if opts.NewWindow == nil {
		opts.NewWindow = func(uri string) bool {
			if err := g.TabOpen(uri); err != nil {
				g.logger.Warn("new window request failed", zap.String("uri", uri), zap.Error(err))
				return false
			}
			return true
		}
	}
	g.opts = opts
	return g
}

// SetOnChange installs the label refresh callback.
func (g *Group) SetOnChange(fn ChangeFunc) { g.onChange = fn }

func (g *Group) Len() int         { return len(g.tabs) }
func (g *Group) FocusIndex() int  { return g.focus }
func (g *Group) Tabs() []*tab.Tab { return append([]*tab.Tab(nil), g.tabs...) }

// Focused returns the focused tab, nil when empty.
func (g *Group) Focused() *tab.Tab {
	if g.focus < 0 {
		return nil
	}
	return g.tabs[g.focus]
}

// Index returns the position of t, -1 if t is not in the group.
func (g *Group) Index(t *tab.Tab) int {
	for i, x := range g.tabs {
		if x == t {
			return i
		}
	}
	return -1
}

// Labels returns the tab labels in order.
func (g *Group) Labels() []string {
	labels := make([]string, len(g.tabs))
	for i, t := range g.tabs {
		labels[i] = t.Label()
	}
	return labels
}

// Open loads uri in the focused tab, or in a new tab when the group is
// empty.
func (g *Group) Open(uri string) error {
	t := g.Focused()
	if t == nil {
		return g.TabOpen(uri)
	}
	if err := t.Open(uri); err != nil {
		return err
	}
	g.changed()
	return nil
}

// TabOpen appends a new focused tab loading uri.
func (g *Group) TabOpen(uri string) error {
	t, err := tab.New(g.resolver, uri, g.opts)
	if err != nil {
		return err
	}

	t.SetOnChange(g.tabChanged)
	g.tabs = append(g.tabs, t)
	g.focus = len(g.tabs) - 1

	g.logger.Debug("tab opened", zap.String("tab", t.ID()), zap.String("uri", t.URI()))
	g.changed()
	return nil
}

// Close removes the tab at index and releases its view. Focus moves to
// the tab now at min(index, len-1), or -1 when the group becomes empty.
// The caller is expected to close an empty group's pane.
func (g *Group) Close(index int) error {
	if index < 0 || index >= len(g.tabs) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}

	t := g.tabs[index]
	g.tabs = append(g.tabs[:index], g.tabs[index+1:]...)
	t.Close()

	switch {
	case len(g.tabs) == 0:
		g.focus = -1
	case g.focus > index:
		g.focus--
	case g.focus == index:
		g.focus = min(index, len(g.tabs)-1)
	}

	g.logger.Debug("tab closed", zap.String("tab", t.ID()), zap.Int("remaining", len(g.tabs)))
	g.changed()
	return nil
}

// CloseAll closes every tab.
func (g *Group) CloseAll() {
	for _, t := range g.tabs {
		t.Close()
	}
	g.tabs = nil
	g.focus = -1
}

// Focus selects the tab at index.
func (g *Group) Focus(index int) error {
	if index < 0 || index >= len(g.tabs) {
		return fmt.Errorf("%w: %d", ErrInvalidIndex, index)
	}
	g.focus = index
	g.changed()
	return nil
}

// Next focuses the following tab, wrapping around.
func (g *Group) Next() {
	g.cycle(1)
}

// Prev focuses the preceding tab, wrapping around.
func (g *Group) Prev() {
	g.cycle(-1)
}

func (g *Group) cycle(step int) {
	n := len(g.tabs)
	if n == 0 {
		return
	}
	g.focus = ((g.focus+step)%n + n) % n
	g.changed()
}

func (g *Group) tabChanged(t *tab.Tab, ev view.Event) {
	switch ev.Kind {
	case view.TitleChanged, view.URIChanged:
		g.changed()
	}
}

func (g *Group) changed() {
	if g.onChange != nil {
		g.onChange(g)
	}
}
