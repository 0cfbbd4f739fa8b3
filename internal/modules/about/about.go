// Package about serves the built-in about: pages.
package about

import (
	"sort"
	"strings"

	"github.com/HFT/cream-browser/internal/view"
)

// Page renders the lines of one about: page. It runs on the UI
// goroutine.
type Page func() []string

type Module struct {
	pages map[string]Page
}

// New creates the module. about:blank is always available; pages adds
// more, keyed by the part after "about:".
func New(pages map[string]Page) *Module {
	m := &Module{pages: map[string]Page{
		"blank": func() []string { return nil },
	}}
	for name, p := range pages {
		m.pages[name] = p
	}
	m.pages["about"] = m.index
	return m
}

func (m *Module) Name() string { return "about" }

func (m *Module) NewView(p view.Poster) view.View {
	return &View{Base: view.NewBase(p), module: m}
}

// Names lists the pages in alphabetical order.
func (m *Module) Names() []string {
	names := make([]string, 0, len(m.pages))
	for name := range m.pages {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (m *Module) index() []string {
	lines := []string{"# about: pages", ""}
	for _, name := range m.Names() {
		lines = append(lines, "about:"+name)
	}
	return lines
}

// View is an about: page. Pages are generated synchronously.
type View struct {
	view.Base
	module *Module
}

func (v *View) Load(uri string) {
	v.Reset(uri)

	name := strings.TrimPrefix(uri, "about:")
	page, ok := v.module.pages[name]
	if !ok {
		v.SetLines([]string{"Unknown page: " + uri, "", "See about:about for the list."})
		v.SetStatus("Unknown page")
		v.Finish()
		return
	}

	v.SetLines(page())
	if name != "blank" {
		v.SetTitle(uri)
	}
	v.Finish()
}
