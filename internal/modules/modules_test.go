package modules

import (
	"reflect"
	"sort"
	"testing"
)

func TestCatalog(t *testing.T) {
	c := New(Options{})

	want := append([]string(nil), Names...)
	sort.Strings(want)
	if got := c.Available(); !reflect.DeepEqual(got, want) {
		t.Errorf("Available() = %v, want %v", got, want)
	}

	for _, name := range Names {
		m, ok := c.Lookup(name)
		if !ok {
			t.Fatalf("Lookup(%q) not found", name)
		}
		if m.Name() != name {
			t.Errorf("Lookup(%q).Name() = %q", name, m.Name())
		}
	}

	if _, ok := c.Lookup("gopher"); ok {
		t.Error("Lookup(gopher) should fail")
	}
	if m, _ := c.Lookup("www"); m != c.WWW {
		t.Error("WWW should be the registered www module")
	}
}
