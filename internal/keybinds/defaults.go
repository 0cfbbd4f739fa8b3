package keybinds

// NewDefaultRegistry creates a registry with all default keybindings
func NewDefaultRegistry() *Registry {
	r := NewRegistry()

	registerGlobalBindings(r)
	registerPromptBindings(r)
	registerTabBindings(r)
	registerPaneBindings(r)
	registerPageBindings(r)
	registerScrollBindings(r)

	return r
}

// registerGlobalBindings sets up bindings available in all modes
func registerGlobalBindings(r *Registry) {
	r.Register(ContextGlobal, "ctrl+c", ActionQuit)
}

func registerPromptBindings(r *Registry) {
	r.Register(ContextNormal, ":", ActionPromptCommand)
	r.Register(ContextNormal, "/", ActionPromptSearch)
	r.Register(ContextNormal, "?", ActionPromptReverse)
	r.Register(ContextNormal, "o", ActionPromptOpen)
	r.Register(ContextNormal, "t", ActionPromptTabOpen)
	r.Register(ContextNormal, "f", ActionPromptFollow)
	r.Register(ContextNormal, "F", ActionPromptTabFoll)
}

func registerTabBindings(r *Registry) {
	r.Register(ContextNormal, "d", ActionTabClose)
	r.Register(ContextNormal, "gt", ActionTabNext)
	r.Register(ContextNormal, "gT", ActionTabPrev)
	r.Register(ContextNormal, "ZZ", ActionQuit)
}

func registerPaneBindings(r *Registry) {
	r.Register(ContextNormal, "ctrl+s", ActionSplit)
	r.Register(ContextNormal, "ctrl+v", ActionVSplit)
	r.Register(ContextNormal, "ctrl+x", ActionPaneClose)
	r.Register(ContextNormal, "ctrl+o", ActionPaneOnly)
	r.RegisterMultiple(ContextNormal, []string{"ctrl+w", "tab"}, ActionPaneNext)
	r.Register(ContextNormal, "shift+tab", ActionPanePrev)
}

func registerPageBindings(r *Registry) {
	r.Register(ContextNormal, "H", ActionBack)
	r.Register(ContextNormal, "L", ActionForward)
	r.Register(ContextNormal, "r", ActionReload)
	r.Register(ContextNormal, "gf", ActionViewSource)
	r.Register(ContextNormal, "y", ActionYank)
}

// registerScrollBindings sets up the viewport navigation keys
func registerScrollBindings(r *Registry) {
	r.RegisterMultiple(ContextNormal, []string{"up", "k"}, ActionScrollUp)
	r.RegisterMultiple(ContextNormal, []string{"down", "j"}, ActionScrollDown)
	r.Register(ContextNormal, "pgup", ActionScrollPageUp)
	r.RegisterMultiple(ContextNormal, []string{"pgdown", " "}, ActionScrollPageDown)
	r.Register(ContextNormal, "ctrl+u", ActionScrollHalfUp)
	r.Register(ContextNormal, "ctrl+d", ActionScrollHalfDown)
	r.RegisterMultiple(ContextNormal, []string{"gg", "home"}, ActionScrollTop)
	r.RegisterMultiple(ContextNormal, []string{"G", "end"}, ActionScrollBottom)
}
