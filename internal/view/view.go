package view

// BlankURI is the URI every view starts on.
const BlankURI = "about:blank"

// EventKind identifies a view event.
type EventKind int

const (
	URIChanged EventKind = iota
	TitleChanged
	StatusChanged
	LoadProgress
	LoadFinished
)

func (k EventKind) String() string {
	switch k {
	case URIChanged:
		return "uri-changed"
	case TitleChanged:
		return "title-changed"
	case StatusChanged:
		return "status-changed"
	case LoadProgress:
		return "load-progress"
	case LoadFinished:
		return "load-finished"
	}
	return "unknown"
}

// Event is delivered to listeners on the UI goroutine.
type Event struct {
	Kind     EventKind
	Text     string // uri, title or status
	Progress int    // 0..100, LoadProgress only
}

// Listener receives view events.
type Listener func(Event)

// Subscription detaches a listener.
type Subscription interface {
	Unsubscribe()
}

// Hooks are the requests a view makes back to its owner.
// A nil hook is treated as "not handled".
type Hooks struct {
	// NewWindow returns true when the owner opened uri itself and the
	// view must not navigate.
	NewWindow func(uri string) bool
	// Download returns true when the owner took care of the resource.
	Download func(resource string) bool
}

// View is the capability every loadable content widget provides.
type View interface {
	Load(uri string)

	URI() string
	Title() string
	Status() string
	Progress() int
	CanGoBack() bool
	CanGoForward() bool

	// Content is the text rendition shown in the pane.
	Content() string
	// Search looks for term from the last match and reports whether it
	// was found.
	Search(term string, forward bool) bool

	Subscribe(l Listener) Subscription
	SetHooks(h Hooks)

	// Close releases the view. It must be called on the UI goroutine.
	Close()
}

// Locator is implemented by views that can report where the last search
// match is, so the pane can scroll to it.
type Locator interface {
	MatchLine() int
}

// SourceToggler is implemented by views that can show the raw source.
type SourceToggler interface {
	SourceMode() bool
	SetSourceMode(on bool)
}

// Linker is implemented by views that expose numbered links.
type Linker interface {
	Links() []string
}

// Querier is implemented by views holding structured (JSON) content.
type Querier interface {
	Query(expr string) (string, error)
}

// Sender is implemented by views that can push a message to their peer.
type Sender interface {
	Send(msg string) error
}
