// Package prototest provides in-memory protocol modules for tests.
package prototest

import (
	"github.com/HFT/cream-browser/internal/protocol"
	"github.com/HFT/cream-browser/internal/view"
)

// View is a synchronous view. Load resets it and, when the owning
// module has AutoFinish set, completes the load immediately.
type View struct {
	view.Base

	module *Module

	// Listeners keeps every listener ever subscribed, including the ones
	// that have since been unsubscribed.
	Listeners []view.Listener
	Loads     []string
}

func (v *View) Load(uri string) {
	v.Loads = append(v.Loads, uri)
	v.Reset(uri)
	if v.module.AutoFinish {
		v.SetTitle(v.module.TitleFor(uri))
		v.Finish()
	}
}

// Subscribe records l and subscribes it.
func (v *View) Subscribe(l view.Listener) view.Subscription {
	v.Listeners = append(v.Listeners, l)
	return v.Base.Subscribe(l)
}

// Module is a protocol module that hands out *View values.
type Module struct {
	ModuleName string
	AutoFinish bool
	// Title overrides the title set by AutoFinish.
	Title string

	Views []*View
}

// NewModule returns a module named name whose views finish loading
// synchronously.
func NewModule(name string) *Module {
	return &Module{ModuleName: name, AutoFinish: true}
}

func (m *Module) Name() string { return m.ModuleName }

func (m *Module) NewView(p view.Poster) view.View {
	v := &View{Base: view.NewBase(p), module: m}
	m.Views = append(m.Views, v)
	return v
}

// Last returns the most recently created view, nil if none.
func (m *Module) Last() *View {
	if len(m.Views) == 0 {
		return nil
	}
	return m.Views[len(m.Views)-1]
}

// TitleFor returns the title a finished load of uri gets.
func (m *Module) TitleFor(uri string) string {
	return m.Title
}

// Set is a registry populated with fake modules in the default order.
type Set struct {
	Registry *protocol.Registry
	Mailto   *Module
	About    *Module
	File     *Module
	HTTP     *Module
	HTTPS    *Module
}

// NewSet builds the fake registry.
func NewSet() *Set {
	s := &Set{
		Registry: protocol.NewRegistry(),
		Mailto:   NewModule("mailto"),
		About:    NewModule("about"),
		File:     NewModule("file"),
		HTTP:     NewModule("http"),
		HTTPS:    NewModule("https"),
	}
	s.Registry.Register("mailto:", s.Mailto)
	s.Registry.Register("about:", s.About)
	s.Registry.Register("file://", s.File)
	s.Registry.Register("http://", s.HTTP)
	s.Registry.Register("https://", s.HTTPS)
	return s
}
