package keybinds

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// namedKeys are multi-character key names that are single keys, not
// sequences.
var namedKeys = map[string]bool{
	"up": true, "down": true, "left": true, "right": true,
	"home": true, "end": true, "pgup": true, "pgdown": true,
	"tab": true, "enter": true, "esc": true, "space": true,
	"backspace": true, "delete": true, "insert": true,
}

// IsSequence reports whether key is a sequence of several key presses
// such as "gt", as opposed to a single named or modified key.
func IsSequence(key string) bool {
	if utf8.RuneCountInString(key) < 2 || strings.Contains(key, "+") || namedKeys[key] {
		return false
	}
	if key[0] == 'f' && len(key) <= 3 && strings.Trim(key[1:], "0123456789") == "" {
		return false
	}
	return true
}

// Binding represents a keybinding mapping
type Binding struct {
	Key     string
	Action  Action
	Context Context
}

// Registry manages keybinding mappings and matching
type Registry struct {
	// bindings maps context -> key -> action
	bindings map[Context]map[string]Action

	// multiKeyState tracks pending multi-key sequences (like 'gt')
	multiKeyState map[Context]string
}

// NewRegistry creates a new keybinding registry
func NewRegistry() *Registry {
	return &Registry{
		bindings:      make(map[Context]map[string]Action),
		multiKeyState: make(map[Context]string),
	}
}

// Register adds a keybinding to the registry
func (r *Registry) Register(context Context, key string, action Action) {
	if r.bindings[context] == nil {
		r.bindings[context] = make(map[string]Action)
	}
	r.bindings[context][key] = action
}

// RegisterMultiple registers multiple keybindings for the same action
func (r *Registry) RegisterMultiple(context Context, keys []string, action Action) {
	for _, key := range keys {
		r.Register(context, key, action)
	}
}

// Unregister removes a binding. It reports whether the key was bound.
func (r *Registry) Unregister(context Context, key string) bool {
	if _, ok := r.bindings[context][key]; !ok {
		return false
	}
	delete(r.bindings[context], key)
	return true
}

// Match attempts to match a key to an action in the given context
// Contexts are checked in priority order: specific context -> global
func (r *Registry) Match(context Context, key string) (Action, bool) {
	if contextBindings, ok := r.bindings[context]; ok {
		if action, ok := contextBindings[key]; ok {
			return action, true
		}
	}

	if globalBindings, ok := r.bindings[ContextGlobal]; ok {
		if action, ok := globalBindings[key]; ok {
			return action, true
		}
	}

	return "", false
}

// MatchMultiKey handles multi-key sequences like 'gt'.
// Returns the action, whether it's a complete match, and whether it's a
// partial match waiting for more keys. A key that completes no sequence
// abandons the pending keys and is matched on its own.
func (r *Registry) MatchMultiKey(context Context, key string) (Action, bool, bool) {
	pending := r.multiKeyState[context]
	sequence := pending + key
	delete(r.multiKeyState, context)

	if r.isPrefix(context, sequence) {
		r.multiKeyState[context] = sequence
		return "", false, true
	}

	if action, ok := r.Match(context, sequence); ok {
		return action, true, false
	}
	if pending != "" {
		return r.MatchMultiKey(context, key)
	}

	return "", false, false
}

// isPrefix reports whether sequence starts a longer binding.
func (r *Registry) isPrefix(context Context, sequence string) bool {
	for _, ctx := range []Context{context, ContextGlobal} {
		for key := range r.bindings[ctx] {
			if len(key) > len(sequence) && strings.HasPrefix(key, sequence) && IsSequence(key) {
				return true
			}
		}
	}
	return false
}

// ClearMultiKeyState clears any pending multi-key state for a context
func (r *Registry) ClearMultiKeyState(context Context) {
	delete(r.multiKeyState, context)
}

// Pending returns the keys typed so far in an unfinished sequence.
func (r *Registry) Pending(context Context) string {
	return r.multiKeyState[context]
}

// Matcher adapts the registry to the input box for one context.
type Matcher struct {
	registry *Registry
	context  Context
}

// ForContext returns a matcher for context.
func (r *Registry) ForContext(context Context) *Matcher {
	return &Matcher{registry: r, context: context}
}

// Lookup resolves key, possibly completing a pending sequence.
func (m *Matcher) Lookup(key string) (string, bool, bool) {
	action, matched, partial := m.registry.MatchMultiKey(m.context, key)
	return string(action), matched, partial
}

// GetBinding returns the key(s) bound to an action in a context
func (r *Registry) GetBinding(context Context, action Action) []string {
	var keys []string

	for key, act := range r.bindings[context] {
		if act == action {
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		for key, act := range r.bindings[ContextGlobal] {
			if act == action {
				keys = append(keys, key)
			}
		}
	}

	sort.Strings(keys)
	return keys
}

// GetBindingString returns a human-readable string of keys bound to an action
func (r *Registry) GetBindingString(context Context, action Action) string {
	keys := r.GetBinding(context, action)
	if len(keys) == 0 {
		return "unbound"
	}
	return strings.Join(keys, ", ")
}

// ListBindings returns all bindings for a context, global ones included,
// sorted by context then key.
func (r *Registry) ListBindings(context Context) []Binding {
	var bindings []Binding

	for key, action := range r.bindings[context] {
		bindings = append(bindings, Binding{Key: key, Action: action, Context: context})
	}

	if context != ContextGlobal {
		for key, action := range r.bindings[ContextGlobal] {
			bindings = append(bindings, Binding{Key: key, Action: action, Context: ContextGlobal})
		}
	}

	sort.Slice(bindings, func(i, j int) bool {
		if bindings[i].Context != bindings[j].Context {
			return bindings[i].Context < bindings[j].Context
		}
		return bindings[i].Key < bindings[j].Key
	})
	return bindings
}

// HasBinding checks if a key is bound in a context
func (r *Registry) HasBinding(context Context, key string) bool {
	_, ok := r.Match(context, key)
	return ok
}

// Clone creates a deep copy of the registry
func (r *Registry) Clone() *Registry {
	clone := NewRegistry()

	for context, contextBindings := range r.bindings {
		for key, action := range contextBindings {
			clone.Register(context, key, action)
		}
	}

	return clone
}

// Merge combines bindings from another registry, with other taking precedence
func (r *Registry) Merge(other *Registry) {
	for context, contextBindings := range other.bindings {
		for key, action := range contextBindings {
			r.Register(context, key, action)
		}
	}
}
