// Package split implements the pane layout: a binary tree whose leaves are
// tab groups and whose inner nodes split their area in two.
//
// Nodes live in an arena and are addressed by Handle, a slot index plus a
// generation. A handle to a node that has been removed no longer matches
// its slot's generation, so stale handles are detected instead of
// silently addressing a recycled node.
package split

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/view"
)

var (
	// ErrInvalidReference is returned for a stale or non-leaf handle.
	ErrInvalidReference = errors.New("invalid pane reference")
	// ErrInvariantViolation is returned when an operation would leave the
	// tree without a pane.
	ErrInvariantViolation = errors.New("cannot close the last pane")
)

// Orientation of an inner node.
type Orientation int

const (
	// Horizontal stacks the children top and bottom.
	Horizontal Orientation = iota
	// Vertical puts the children side by side.
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

// Handle addresses a node. The zero Handle is never valid.
type Handle struct {
	index int
	gen   uint32
}

func (h Handle) String() string {
	return fmt.Sprintf("pane#%d.%d", h.index, h.gen)
}

// GroupFactory creates the tab group of a new pane, loading uri.
type GroupFactory func(uri string) (*notebook.Group, error)

// Node is a read-only snapshot of a node for layout code.
type Node struct {
	Handle      Handle
	Leaf        bool
	Group       *notebook.Group
	Orientation Orientation
	Children    [2]Handle
}

type node struct {
	gen    uint32
	live   bool
	parent int

	leaf   bool
	group  *notebook.Group
	orient Orientation
	child  [2]int
}

// Tree is the pane layout. It always holds at least one leaf.
type Tree struct {
	nodes    []node
	free     []int
	root     int
	focus    int
	newGroup GroupFactory
	logger   *zap.Logger
}

// New creates a tree with a single pane loading home.
func New(newGroup GroupFactory, home string, logger *zap.Logger) (*Tree, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	g, err := newGroup(home)
	if err != nil {
		return nil, fmt.Errorf("failed to create root pane: %w", err)
	}

	t := &Tree{newGroup: newGroup, logger: logger}
	t.root = t.alloc(node{parent: -1, leaf: true, group: g})
	t.focus = t.root
	return t, nil
}

func (t *Tree) alloc(n node) int {
	n.live = true
	if k := len(t.free); k > 0 {
		idx := t.free[k-1]
		t.free = t.free[:k-1]
		n.gen = t.nodes[idx].gen + 1
		t.nodes[idx] = n
		return idx
	}
	n.gen = 1
	t.nodes = append(t.nodes, n)
	return len(t.nodes) - 1
}

func (t *Tree) release(idx int) {
	n := &t.nodes[idx]
	n.live = false
	n.group = nil
	t.free = append(t.free, idx)
}

func (t *Tree) handle(idx int) Handle {
	return Handle{index: idx, gen: t.nodes[idx].gen}
}

func (t *Tree) lookup(h Handle) (int, bool) {
	if h.index < 0 || h.index >= len(t.nodes) {
		return 0, false
	}
	n := &t.nodes[h.index]
	if !n.live || n.gen != h.gen {
		return 0, false
	}
	return h.index, true
}

func (t *Tree) leaf(h Handle) (int, error) {
	idx, ok := t.lookup(h)
	if !ok || !t.nodes[idx].leaf {
		t.logger.DPanic("stale pane handle", zap.Stringer("handle", h))
		return 0, fmt.Errorf("%w: %s", ErrInvalidReference, h)
	}
	return idx, nil
}

// Root returns the root node handle.
func (t *Tree) Root() Handle { return t.handle(t.root) }

// Node returns a snapshot of the node at h.
func (t *Tree) Node(h Handle) (Node, error) {
	idx, ok := t.lookup(h)
	if !ok {
		return Node{}, fmt.Errorf("%w: %s", ErrInvalidReference, h)
	}
	n := t.nodes[idx]
	out := Node{Handle: h, Leaf: n.leaf, Group: n.group, Orientation: n.orient}
	if !n.leaf {
		out.Children = [2]Handle{t.handle(n.child[0]), t.handle(n.child[1])}
	}
	return out, nil
}

// Group returns the tab group of the leaf at h.
func (t *Tree) Group(h Handle) (*notebook.Group, error) {
	idx, err := t.leaf(h)
	if err != nil {
		return nil, err
	}
	return t.nodes[idx].group, nil
}

// Focused returns the tab group of the focused pane.
func (t *Tree) Focused() *notebook.Group { return t.nodes[t.focus].group }

// FocusedLeaf returns the handle of the focused pane.
func (t *Tree) FocusedLeaf() Handle { return t.handle(t.focus) }

// Focus moves focus to the leaf at h.
func (t *Tree) Focus(h Handle) error {
	idx, err := t.leaf(h)
	if err != nil {
		return err
	}
	t.focus = idx
	return nil
}

// Split replaces the leaf at h with an inner node holding the old leaf
// and a new pane showing about:blank. The new pane gets focus and its
// handle is returned. Handles to the old leaf stay valid.
func (t *Tree) Split(h Handle, o Orientation) (Handle, error) {
	idx, err := t.leaf(h)
	if err != nil {
		return Handle{}, err
	}

	g, err := t.newGroup(view.BlankURI)
	if err != nil {
		return Handle{}, fmt.Errorf("failed to create pane: %w", err)
	}

	parent := t.nodes[idx].parent
	inner := t.alloc(node{parent: parent, orient: o})
	fresh := t.alloc(node{parent: inner, leaf: true, group: g})
	t.nodes[inner].child = [2]int{idx, fresh}
	t.nodes[idx].parent = inner

	if parent == -1 {
		t.root = inner
	} else {
		t.replaceChild(parent, idx, inner)
	}

	t.focus = fresh
	t.logger.Debug("pane split",
		zap.Stringer("from", h),
		zap.Stringer("orientation", o),
		zap.Stringer("new", t.handle(fresh)),
	)
	return t.handle(fresh), nil
}

// Close removes the leaf at h, closes its tabs and promotes its sibling
// into the parent's place. When focus was on the removed leaf it moves to
// the leftmost leaf of the promoted sibling. Closing the only pane fails
// with ErrInvariantViolation and leaves the tree untouched.
func (t *Tree) Close(h Handle) error {
	idx, err := t.leaf(h)
	if err != nil {
		return err
	}
	if idx == t.root {
		return ErrInvariantViolation
	}

	parent := t.nodes[idx].parent
	sibling := t.nodes[parent].child[0]
	if sibling == idx {
		sibling = t.nodes[parent].child[1]
	}

	grand := t.nodes[parent].parent
	t.nodes[sibling].parent = grand
	if grand == -1 {
		t.root = sibling
	} else {
		t.replaceChild(grand, parent, sibling)
	}

	if g := t.nodes[idx].group; g != nil {
		g.CloseAll()
	}
	t.release(idx)
	t.release(parent)

	if t.focus == idx {
		t.focus = t.leftmost(sibling)
	}

	t.logger.Debug("pane closed", zap.Stringer("handle", h), zap.Int("panes", t.Len()))
	return nil
}

// Only closes every pane except the focused one and returns how many
// were closed.
func (t *Tree) Only() int {
	keep := t.FocusedLeaf()
	closed := 0
	for _, h := range t.Leaves() {
		if h == keep {
			continue
		}
		if err := t.Close(h); err == nil {
			closed++
		}
	}
	return closed
}

func (t *Tree) replaceChild(parent, old, repl int) {
	p := &t.nodes[parent]
	if p.child[0] == old {
		p.child[0] = repl
	} else {
		p.child[1] = repl
	}
}

func (t *Tree) leftmost(idx int) int {
	for !t.nodes[idx].leaf {
		idx = t.nodes[idx].child[0]
	}
	return idx
}

// Leaves returns the leaf handles from left to right.
func (t *Tree) Leaves() []Handle {
	var out []Handle
	t.walk(t.root, 0, func(idx, _ int) {
		if t.nodes[idx].leaf {
			out = append(out, t.handle(idx))
		}
	})
	return out
}

// Len returns the number of panes.
func (t *Tree) Len() int {
	return len(t.Leaves())
}

// Walk visits every node in pre-order with its depth.
func (t *Tree) Walk(fn func(n Node, depth int)) {
	t.walk(t.root, 0, func(idx, depth int) {
		n, _ := t.Node(t.handle(idx))
		fn(n, depth)
	})
}

func (t *Tree) walk(idx, depth int, fn func(idx, depth int)) {
	fn(idx, depth)
	n := t.nodes[idx]
	if n.leaf {
		return
	}
	t.walk(n.child[0], depth+1, fn)
	t.walk(n.child[1], depth+1, fn)
}

// LeafOf returns the pane holding g.
func (t *Tree) LeafOf(g *notebook.Group) (Handle, bool) {
	for _, h := range t.Leaves() {
		if t.nodes[h.index].group == g {
			return h, true
		}
	}
	return Handle{}, false
}

// FocusNext moves focus to the next pane in leaf order, wrapping around.
func (t *Tree) FocusNext() { t.cycle(1) }

// FocusPrev moves focus to the previous pane in leaf order.
func (t *Tree) FocusPrev() { t.cycle(-1) }

func (t *Tree) cycle(step int) {
	leaves := t.Leaves()
	n := len(leaves)
	cur := t.FocusedLeaf()
	for i, h := range leaves {
		if h == cur {
			t.focus = leaves[((i+step)%n+n)%n].index
			return
		}
	}
}

// CloseAll closes every tab in every pane. The tree must not be used
// afterwards.
func (t *Tree) CloseAll() {
	for _, h := range t.Leaves() {
		t.nodes[h.index].group.CloseAll()
	}
}
