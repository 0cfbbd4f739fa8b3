package view

import "strings"

type listenerEntry struct {
	id int
	fn Listener
}

// Base implements the bookkeeping part of View. Modules embed it and
// provide Load. Every method except Post must be called on the UI
// goroutine.
type Base struct {
	post Poster

	uri      string
	title    string
	status   string
	progress int

	lines     []string
	matchLine int
	lastTerm  string

	listeners []listenerEntry
	nextID    int
	hooks     Hooks

	closed  bool
	onClose []func()
}

// NewBase returns a Base that posts through p.
func NewBase(p Poster) Base {
	if p == nil {
		p = Immediate
	}
	return Base{post: p, uri: BlankURI, matchLine: -1}
}

// Post runs fn on the UI goroutine unless the view has been closed by the
// time it gets there. Safe to call from any goroutine.
func (b *Base) Post(fn func()) {
	b.post.Post(func() {
		if b.closed {
			return
		}
		fn()
	})
}

// OnClose registers fn to run when the view is closed (cancel a pending
// load, drop a connection).
func (b *Base) OnClose(fn func()) {
	b.onClose = append(b.onClose, fn)
}

// Closed reports whether Close has been called.
func (b *Base) Closed() bool { return b.closed }

// Close detaches all listeners and hooks and runs the close callbacks.
func (b *Base) Close() {
	if b.closed {
		return
	}
	b.closed = true
	b.listeners = nil
	b.hooks = Hooks{}
	for _, fn := range b.onClose {
		fn()
	}
	b.onClose = nil
}

func (b *Base) URI() string        { return b.uri }
func (b *Base) Title() string      { return b.title }
func (b *Base) Status() string     { return b.status }
func (b *Base) Progress() int      { return b.progress }
func (b *Base) CanGoBack() bool    { return false }
func (b *Base) CanGoForward() bool { return false }

// Content joins the current lines.
func (b *Base) Content() string { return strings.Join(b.lines, "\n") }

// Lines returns the current lines.
func (b *Base) Lines() []string { return b.lines }

// MatchLine is the line of the last search match, -1 if none.
func (b *Base) MatchLine() int { return b.matchLine }

// SetHooks replaces the owner hooks.
func (b *Base) SetHooks(h Hooks) {
	if b.closed {
		return
	}
	b.hooks = h
}

// Subscribe adds a listener. Listeners are called in subscription order.
func (b *Base) Subscribe(l Listener) Subscription {
	b.nextID++
	id := b.nextID
	if !b.closed {
		b.listeners = append(b.listeners, listenerEntry{id: id, fn: l})
	}
	return &subscription{base: b, id: id}
}

type subscription struct {
	base *Base
	id   int
}

func (s *subscription) Unsubscribe() {
	if s.base == nil {
		return
	}
	ls := s.base.listeners
	for i, e := range ls {
		if e.id == s.id {
			s.base.listeners = append(ls[:i:i], ls[i+1:]...)
			break
		}
	}
	s.base = nil
}

// ListenerCount reports how many listeners are attached.
func (b *Base) ListenerCount() int { return len(b.listeners) }

func (b *Base) emit(ev Event) {
	if b.closed {
		return
	}
	// Copy so a listener may unsubscribe while we iterate.
	ls := append([]listenerEntry(nil), b.listeners...)
	for _, e := range ls {
		e.fn(ev)
	}
}

// Reset starts a new load cycle on uri: title, status and lines are
// cleared and progress goes back to 0.
func (b *Base) Reset(uri string) {
	if uri == "" {
		uri = BlankURI
	}
	b.title = ""
	b.status = ""
	b.lines = nil
	b.matchLine = -1
	b.lastTerm = ""
	b.progress = 0
	b.SetURI(uri)
	b.emit(Event{Kind: LoadProgress, Progress: 0})
}

// SetURI records uri and emits URIChanged.
func (b *Base) SetURI(uri string) {
	if uri == "" {
		uri = BlankURI
	}
	b.uri = uri
	b.emit(Event{Kind: URIChanged, Text: uri})
}

// SetTitle records title and emits TitleChanged.
func (b *Base) SetTitle(title string) {
	b.title = title
	b.emit(Event{Kind: TitleChanged, Text: title})
}

// SetStatus records status and emits StatusChanged.
func (b *Base) SetStatus(status string) {
	b.status = status
	b.emit(Event{Kind: StatusChanged, Text: status})
}

// SetProgress moves progress forward. Values below the current progress
// are ignored so progress stays monotonic within one load.
func (b *Base) SetProgress(p int) {
	if p > 100 {
		p = 100
	}
	if p <= b.progress {
		return
	}
	b.progress = p
	b.emit(Event{Kind: LoadProgress, Progress: p})
}

// Finish sets progress to 100 and emits LoadFinished.
func (b *Base) Finish() {
	b.SetProgress(100)
	b.emit(Event{Kind: LoadFinished})
}

// SetLines replaces the rendered content.
func (b *Base) SetLines(lines []string) {
	b.lines = lines
	b.matchLine = -1
}

// AppendLine adds one line to the rendered content.
func (b *Base) AppendLine(line string) {
	b.lines = append(b.lines, line)
}

// RequestNewWindow asks the owner to open uri elsewhere.
func (b *Base) RequestNewWindow(uri string) bool {
	if b.closed || b.hooks.NewWindow == nil {
		return false
	}
	return b.hooks.NewWindow(uri)
}

// RequestDownload asks the owner to download resource.
func (b *Base) RequestDownload(resource string) bool {
	if b.closed || b.hooks.Download == nil {
		return false
	}
	return b.hooks.Download(resource)
}

// Search does a case-insensitive line search starting after (or before)
// the previous match, wrapping around once.
func (b *Base) Search(term string, forward bool) bool {
	n := len(b.lines)
	if term == "" || n == 0 {
		return false
	}

	needle := strings.ToLower(term)
	start := b.matchLine
	if term != b.lastTerm {
		start = -1
		if !forward {
			start = n
		}
	}
	b.lastTerm = term

	for i := 1; i <= n; i++ {
		var idx int
		if forward {
			idx = ((start+i)%n + n) % n
		} else {
			idx = ((start-i)%n + n) % n
		}
		if strings.Contains(strings.ToLower(b.lines[idx]), needle) {
			b.matchLine = idx
			return true
		}
	}
	return false
}
