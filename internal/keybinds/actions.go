package keybinds

// Action is the command line a key runs, without the leading ':'.
type Action string

// Context represents the context in which keybindings are active
type Context string

const (
	ContextGlobal Context = "global" // Available everywhere
	ContextNormal Context = "normal" // Page focused, input box idle
	ContextInput  Context = "input"  // Input box focused
)

const (
	ActionQuit          Action = "quit"
	ActionPromptCommand Action = "prompt :"
	ActionPromptSearch  Action = "prompt /"
	ActionPromptReverse Action = "prompt ?"
	ActionPromptOpen    Action = "prompt :open "
	ActionPromptTabOpen Action = "prompt :tabopen "
	ActionPromptFollow  Action = "prompt :follow "
	ActionPromptTabFoll Action = "prompt :tabfollow "

	ActionTabClose Action = "tabclose"
	ActionTabNext  Action = "tabnext"
	ActionTabPrev  Action = "tabprev"

	ActionSplit     Action = "split"
	ActionVSplit    Action = "vsplit"
	ActionPaneClose Action = "close"
	ActionPaneOnly  Action = "only"
	ActionPaneNext  Action = "wnext"
	ActionPanePrev  Action = "wprev"

	ActionBack       Action = "back"
	ActionForward    Action = "forward"
	ActionReload     Action = "reload"
	ActionViewSource Action = "viewsource"
	ActionYank       Action = "yank"

	ActionScrollUp       Action = "scroll up"
	ActionScrollDown     Action = "scroll down"
	ActionScrollPageUp   Action = "scroll pageup"
	ActionScrollPageDown Action = "scroll pagedown"
	ActionScrollHalfUp   Action = "scroll halfup"
	ActionScrollHalfDown Action = "scroll halfdown"
	ActionScrollTop      Action = "scroll top"
	ActionScrollBottom   Action = "scroll bottom"
)

// Contexts lists every known context.
func Contexts() []Context {
	return []Context{ContextGlobal, ContextNormal, ContextInput}
}
