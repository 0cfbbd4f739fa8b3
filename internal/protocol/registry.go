// Package protocol maps URI prefixes to the modules that load them.
package protocol

import (
	"errors"
	"fmt"
	"strings"

	"github.com/HFT/cream-browser/internal/view"
)

// ErrUnknownProtocol is returned when no registered prefix matches a URI.
var ErrUnknownProtocol = errors.New("unknown protocol")

// Module creates views for the URIs it handles.
type Module interface {
	Name() string
	NewView(p view.Poster) view.View
}

type entry struct {
	prefix string
	module Module
}

// Registry resolves URIs by first prefix match in registration order.
// The zero value is an empty registry.
type Registry struct {
	entries []entry
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends prefix to the table. A nil module registers a prefix
// that is never matched, which keeps a slot for protocols that have no
// implementation. Registering a prefix twice keeps the first entry in
// front, so the earlier registration wins.
func (r *Registry) Register(prefix string, m Module) {
	if prefix == "" {
		return
	}
	r.entries = append(r.entries, entry{prefix: prefix, module: m})
}

// Len returns the number of prefixes that have a module.
func (r *Registry) Len() int {
	n := 0
	for _, e := range r.entries {
		if e.module != nil {
			n++
		}
	}
	return n
}

// Prefixes lists registered prefixes in resolution order.
func (r *Registry) Prefixes() []string {
	out := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e.prefix)
	}
	return out
}

// Resolve returns the module for uri together with the normalized URI
// that should be loaded. A bare absolute path becomes a file:// URI;
// anything else that does not match is retried once with http://.
func (r *Registry) Resolve(uri string) (Module, string, error) {
	uri = strings.TrimSpace(uri)

	if m := r.match(uri); m != nil {
		return m, uri, nil
	}

	var retry string
	if strings.HasPrefix(uri, "/") {
		retry = "file://" + uri
	} else {
		retry = "http://" + uri
	}

	if m := r.match(retry); m != nil {
		return m, retry, nil
	}

	return nil, "", fmt.Errorf("%w: %s", ErrUnknownProtocol, uri)
}

func (r *Registry) match(uri string) Module {
	for _, e := range r.entries {
		if e.module != nil && strings.HasPrefix(uri, e.prefix) {
			return e.module
		}
	}
	return nil
}
