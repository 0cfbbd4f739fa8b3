package split

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/protocol/prototest"
	"github.com/HFT/cream-browser/internal/tab"
)

func newTestTree(t *testing.T) (*Tree, *prototest.Set) {
	t.Helper()

	set := prototest.NewSet()
	factory := func(uri string) (*notebook.Group, error) {
		g := notebook.New(set.Registry, tab.Options{})
		if err := g.TabOpen(uri); err != nil {
			return nil, err
		}
		return g, nil
	}

	tree, err := New(factory, "http://home.example", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return tree, set
}

func assertFocusedHasTab(t *testing.T, tree *Tree) {
	t.Helper()

	g := tree.Focused()
	if g == nil || g.Len() < 1 || g.Focused() == nil {
		t.Fatal("focused pane must hold at least one tab")
	}
	if _, err := tree.Group(tree.FocusedLeaf()); err != nil {
		t.Fatalf("FocusedLeaf() is not a live leaf: %v", err)
	}
}

func TestNew_SingleLeaf(t *testing.T) {
	tree, _ := newTestTree(t)

	if tree.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tree.Len())
	}
	if tree.Root() != tree.FocusedLeaf() {
		t.Error("root should be the focused leaf")
	}
	if got := tree.Focused().Focused().URI(); got != "http://home.example" {
		t.Errorf("home URI = %q", got)
	}
}

func TestSplit(t *testing.T) {
	tree, _ := newTestTree(t)
	first := tree.FocusedLeaf()

	second, err := tree.Split(first, Vertical)
	if err != nil {
		t.Fatal(err)
	}

	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
	if tree.FocusedLeaf() != second {
		t.Error("focus should move to the new pane")
	}
	if got := tree.Focused().Focused().URI(); got != "about:blank" {
		t.Errorf("new pane URI = %q, want about:blank", got)
	}
	if _, err := tree.Group(first); err != nil {
		t.Errorf("old leaf handle should stay valid: %v", err)
	}

	root, err := tree.Node(tree.Root())
	if err != nil {
		t.Fatal(err)
	}
	if root.Leaf || root.Orientation != Vertical {
		t.Errorf("root leaf=%v orientation=%s", root.Leaf, root.Orientation)
	}
	if root.Children != [2]Handle{first, second} {
		t.Errorf("children = %v, want [%s %s]", root.Children, first, second)
	}
}

func TestClose_SoleLeafRejected(t *testing.T) {
	tree, _ := newTestTree(t)
	h := tree.FocusedLeaf()
	g := tree.Focused()

	err := tree.Close(h)
	if !errors.Is(err, ErrInvariantViolation) {
		t.Fatalf("Close = %v, want ErrInvariantViolation", err)
	}
	if tree.Len() != 1 || tree.FocusedLeaf() != h || tree.Focused() != g || g.Len() != 1 {
		t.Error("tree must be unchanged")
	}
}

func TestClose_PromotesSibling(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Horizontal)
	c, _ := tree.Split(b, Vertical)

	// a | (b / c), focus on c
	if err := tree.Close(c); err != nil {
		t.Fatal(err)
	}

	if tree.FocusedLeaf() != b {
		t.Errorf("focus = %s, want %s", tree.FocusedLeaf(), b)
	}
	root, _ := tree.Node(tree.Root())
	if root.Children != [2]Handle{a, b} {
		t.Errorf("children = %v, want [%s %s]", root.Children, a, b)
	}
	if _, err := tree.Group(c); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("closed handle should be stale, got %v", err)
	}
}

func TestClose_FocusMovesToLeftmostOfSibling(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)
	c, _ := tree.Split(b, Horizontal)
	_ = c

	if err := tree.Focus(a); err != nil {
		t.Fatal(err)
	}
	if err := tree.Close(a); err != nil {
		t.Fatal(err)
	}

	if tree.FocusedLeaf() != b {
		t.Errorf("focus = %s, want leftmost leaf %s", tree.FocusedLeaf(), b)
	}
	if tree.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tree.Len())
	}
}

func TestClose_UnfocusedKeepsFocus(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)

	if err := tree.Close(a); err != nil {
		t.Fatal(err)
	}
	if tree.FocusedLeaf() != b || tree.Root() != b {
		t.Errorf("focus=%s root=%s, want %s", tree.FocusedLeaf(), tree.Root(), b)
	}
}

func TestClose_ReleasesTabs(t *testing.T) {
	tree, set := newTestTree(t)
	a := tree.FocusedLeaf()
	if _, err := tree.Split(a, Vertical); err != nil {
		t.Fatal(err)
	}
	blank := set.About.Last()

	if err := tree.Close(tree.FocusedLeaf()); err != nil {
		t.Fatal(err)
	}
	if !blank.Closed() {
		t.Error("views of a closed pane must be released")
	}
}

func TestStaleHandles(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)
	tree.Close(b)

	// the slot of b is reused by the next split
	d, _ := tree.Split(a, Vertical)

	tests := []struct {
		name string
		fn   func() error
	}{
		{"split stale", func() error { _, err := tree.Split(b, Vertical); return err }},
		{"close stale", func() error { return tree.Close(b) }},
		{"focus stale", func() error { return tree.Focus(b) }},
		{"zero handle", func() error { return tree.Focus(Handle{}) }},
		{"inner node", func() error { return tree.Focus(tree.Root()) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.fn(); !errors.Is(err, ErrInvalidReference) {
				t.Errorf("err = %v, want ErrInvalidReference", err)
			}
		})
	}

	if tree.FocusedLeaf() != d {
		t.Error("failed calls must not move focus")
	}
}

func TestFocusCycle(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)
	c, _ := tree.Split(b, Vertical)

	leaves := tree.Leaves()
	if len(leaves) != 3 || leaves[0] != a || leaves[1] != b || leaves[2] != c {
		t.Fatalf("Leaves() = %v", leaves)
	}

	tree.FocusNext()
	if tree.FocusedLeaf() != a {
		t.Errorf("FocusNext from last = %s, want %s", tree.FocusedLeaf(), a)
	}
	tree.FocusPrev()
	if tree.FocusedLeaf() != c {
		t.Errorf("FocusPrev from first = %s, want %s", tree.FocusedLeaf(), c)
	}
}

func TestOnly(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)
	tree.Split(b, Horizontal)
	tree.Focus(b)

	if n := tree.Only(); n != 2 {
		t.Errorf("Only() closed %d, want 2", n)
	}
	if tree.Len() != 1 || tree.Root() != b || tree.FocusedLeaf() != b {
		t.Errorf("Len()=%d root=%s focus=%s", tree.Len(), tree.Root(), tree.FocusedLeaf())
	}
}

func TestLeafOf(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	b, _ := tree.Split(a, Vertical)

	g, _ := tree.Group(b)
	if h, ok := tree.LeafOf(g); !ok || h != b {
		t.Errorf("LeafOf = %s, %v", h, ok)
	}
	if _, ok := tree.LeafOf(&notebook.Group{}); ok {
		t.Error("unknown group should not be found")
	}
}

func TestWalk(t *testing.T) {
	tree, _ := newTestTree(t)
	a := tree.FocusedLeaf()
	tree.Split(a, Vertical)

	var depths []int
	tree.Walk(func(n Node, depth int) { depths = append(depths, depth) })

	want := []int{0, 1, 1}
	if len(depths) != len(want) {
		t.Fatalf("depths = %v, want %v", depths, want)
	}
	for i := range want {
		if depths[i] != want[i] {
			t.Errorf("depth[%d] = %d, want %d", i, depths[i], want[i])
		}
	}
}

func TestRandomSplitCloseKeepsFocus(t *testing.T) {
	tree, _ := newTestTree(t)
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		leaves := tree.Leaves()
		h := leaves[rng.Intn(len(leaves))]

		if len(leaves) == 1 || rng.Intn(2) == 0 {
			if _, err := tree.Split(h, Orientation(rng.Intn(2))); err != nil {
				t.Fatalf("step %d: Split: %v", i, err)
			}
		} else {
			if err := tree.Close(h); err != nil {
				t.Fatalf("step %d: Close: %v", i, err)
			}
		}

		assertFocusedHasTab(t, tree)
		if got := len(tree.Leaves()); got != tree.Len() || got < 1 {
			t.Fatalf("step %d: leaf count %d", i, got)
		}
	}
}
