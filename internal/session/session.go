package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/split"
)

const snapshotVersion = 1

// ErrNoSession is returned by Load when nothing has been saved yet.
var ErrNoSession = errors.New("no saved session")

// ErrInvalidLayout is returned for a snapshot whose pane tree is malformed.
var ErrInvalidLayout = errors.New("invalid session layout")

// Layout mirrors one node of the pane tree. Leaves carry tabs, inner
// nodes carry an orientation and exactly two children.
type Layout struct {
	Orientation string    `json:"orientation,omitempty"`
	Children    []*Layout `json:"children,omitempty"`
	Tabs        []string  `json:"tabs,omitempty"`
	Focus       int       `json:"focus,omitempty"`
}

func (l *Layout) leaf() bool { return len(l.Children) == 0 }

// Snapshot is the saved state of every pane and tab.
type Snapshot struct {
	Version int     `json:"version"`
	Root    *Layout `json:"root"`
	// Focus is the index of the focused pane in left-to-right order.
	Focus int `json:"focus"`
}

// TabCount returns the number of tabs across all panes.
func (s Snapshot) TabCount() int {
	n := 0
	s.eachLeaf(func(l *Layout) { n += len(l.Tabs) })
	return n
}

// Panes returns the number of panes.
func (s Snapshot) Panes() int {
	n := 0
	s.eachLeaf(func(*Layout) { n++ })
	return n
}

func (s Snapshot) eachLeaf(fn func(l *Layout)) {
	var walk func(l *Layout)
	walk = func(l *Layout) {
		if l == nil {
			return
		}
		if l.leaf() {
			fn(l)
			return
		}
		for _, c := range l.Children {
			walk(c)
		}
	}
	walk(s.Root)
}

// Validate reports the first malformed node of the layout: a missing
// node, an unknown orientation, or an inner node without exactly two
// children.
func (s Snapshot) Validate() error {
	var check func(l *Layout, path string) error
	check = func(l *Layout, path string) error {
		if l == nil {
			return fmt.Errorf("%w at %s: missing node", ErrInvalidLayout, path)
		}
		if l.leaf() {
			return nil
		}
		if _, err := parseOrientation(l.Orientation); err != nil {
			return fmt.Errorf("%w at %s: %v", ErrInvalidLayout, path, err)
		}
		if len(l.Children) != 2 {
			return fmt.Errorf("%w at %s: %d children", ErrInvalidLayout, path, len(l.Children))
		}
		for i, c := range l.Children {
			if err := check(c, fmt.Sprintf("%s.children[%d]", path, i)); err != nil {
				return err
			}
		}
		return nil
	}
	if s.Root == nil {
		return nil
	}
	return check(s.Root, "root")
}

// Capture records the layout and tab URIs of t.
func Capture(t *split.Tree) Snapshot {
	snap := Snapshot{Version: snapshotVersion}
	focused := t.FocusedLeaf()

	pane := 0
	var build func(h split.Handle) *Layout
	build = func(h split.Handle) *Layout {
		n, err := t.Node(h)
		if err != nil {
			return &Layout{}
		}
		if !n.Leaf {
			return &Layout{
				Orientation: n.Orientation.String(),
				Children:    []*Layout{build(n.Children[0]), build(n.Children[1])},
			}
		}

		if h == focused {
			snap.Focus = pane
		}
		pane++
		return captureGroup(n.Group)
	}

	snap.Root = build(t.Root())
	return snap
}

func captureGroup(g *notebook.Group) *Layout {
	l := &Layout{Focus: g.FocusIndex()}
	for _, tb := range g.Tabs() {
		l.Tabs = append(l.Tabs, tb.URI())
	}
	if l.Focus < 0 {
		l.Focus = 0
	}
	return l
}

// Restore collapses t to its focused pane and rebuilds the layout of
// snap around it. Tabs whose URI no longer resolves are skipped and
// reported in the returned error; everything else is still restored.
func Restore(t *split.Tree, snap Snapshot) error {
	if snap.Root == nil || snap.TabCount() == 0 {
		return fmt.Errorf("failed to restore session: %w", ErrNoSession)
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}

	t.Only()
	var errs []error
	leaves := 0
	var focus split.Handle

	var build func(h split.Handle, l *Layout, fresh bool)
	build = func(h split.Handle, l *Layout, fresh bool) {
		if l == nil {
			errs = append(errs, fmt.Errorf("%w: missing node", ErrInvalidLayout))
			return
		}
		if l.leaf() {
			if leaves == snap.Focus {
				focus = h
			}
			leaves++
			g, err := t.Group(h)
			if err != nil {
				errs = append(errs, err)
				return
			}
			errs = append(errs, restoreGroup(g, l, fresh)...)
			return
		}

		o, err := parseOrientation(l.Orientation)
		if err != nil || len(l.Children) != 2 {
			errs = append(errs, fmt.Errorf("invalid layout node %q", l.Orientation))
			return
		}
		second, err := t.Split(h, o)
		if err != nil {
			errs = append(errs, err)
			return
		}
		build(h, l.Children[0], fresh)
		build(second, l.Children[1], true)
	}

	root := t.Root()
	focus = root
	build(root, snap.Root, false)

	if err := t.Focus(focus); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// restoreGroup loads l.Tabs into g. A fresh group holds a single blank
// tab that the first URI replaces; an existing group keeps its tabs
// until at least one restored tab has opened.
func restoreGroup(g *notebook.Group, l *Layout, fresh bool) []error {
	var errs []error
	old := g.Len()
	opened := 0

	for _, uri := range l.Tabs {
		var err error
		if fresh && opened == 0 {
			err = g.Open(uri)
		} else {
			err = g.TabOpen(uri)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("failed to restore %s: %w", uri, err))
			continue
		}
		opened++
	}

	if !fresh && opened > 0 {
		for i := 0; i < old; i++ {
			g.Close(0)
		}
	}

	if l.Focus < g.Len() {
		g.Focus(l.Focus)
	}
	return errs
}

func parseOrientation(s string) (split.Orientation, error) {
	for _, o := range []split.Orientation{split.Horizontal, split.Vertical} {
		if o.String() == s {
			return o, nil
		}
	}
	return 0, fmt.Errorf("unknown orientation %q", s)
}

// Manager persists snapshots as JSON.
type Manager struct {
	path string
}

func NewManager(path string) *Manager {
	return &Manager{path: path}
}

func (m *Manager) Path() string { return m.path }

// Save writes snap to disk.
func (m *Manager) Save(snap Snapshot) error {
	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create session directory: %w", err)
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load reads the saved snapshot.
func (m *Manager) Load() (Snapshot, error) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Snapshot{}, ErrNoSession
		}
		return Snapshot{}, fmt.Errorf("failed to read session file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to parse session file: %w", err)
	}
	if snap.Version > snapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported session version %d", snap.Version)
	}
	if err := snap.Validate(); err != nil {
		return Snapshot{}, err
	}

	return snap, nil
}
