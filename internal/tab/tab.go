// Package tab implements one content slot: a view, its status chrome
// and its input box.
package tab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/inputbox"
	"github.com/HFT/cream-browser/internal/protocol"
	"github.com/HFT/cream-browser/internal/view"
)

// ErrNoHistory is returned by Back and Forward at either end.
var ErrNoHistory = errors.New("no history in that direction")

// Resolver finds the module for a URI.
type Resolver interface {
	Resolve(uri string) (protocol.Module, string, error)
}

// Options configures new tabs.
type Options struct {
	Poster    view.Poster
	Submitter inputbox.Submitter
	Bindings  inputbox.Bindings
	Logger    *zap.Logger

	// Completion is installed on the input box of every tab.
	Completion inputbox.CompletionFunc

	// NewWindow and Download are installed as hooks on every view the
	// tab creates.
	NewWindow func(uri string) bool
	Download  func(resource string) bool

	// Observer sees every event the tab applies, after the owner's
	// change callback.
	Observer ChangeFunc
}

// ChangeFunc is notified after the tab applied an event from its
// current view.
type ChangeFunc func(t *Tab, ev view.Event)

// Tab owns exactly one view at a time.
type Tab struct {
	id       string
	resolver Resolver
	opts     Options
	logger   *zap.Logger

	module protocol.Module
	view   view.View
	subs   []view.Subscription
	gen    uint64

	input   *inputbox.Engine
	back    []string
	forward []string

	secure   bool
	closed   bool
	onChange ChangeFunc
}

// New resolves uri and creates a tab loading it. Nothing is created when
// resolution fails.
func New(r Resolver, uri string, opts Options) (*Tab, error) {
	m, normalized, err := r.Resolve(uri)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Poster == nil {
		opts.Poster = view.Immediate
	}

	t := &Tab{
		id:       uuid.NewString(),
		resolver: r,
		opts:     opts,
		logger:   logger,
		input:    inputbox.New(opts.Submitter, opts.Bindings),
	}
	t.input.SetCompletion(opts.Completion)
	t.attach(m, normalized)
	return t, nil
}

func (t *Tab) ID() string                { return t.id }
func (t *Tab) View() view.View           { return t.view }
func (t *Tab) Module() protocol.Module   { return t.module }
func (t *Tab) Input() *inputbox.Engine   { return t.input }
func (t *Tab) Secure() bool              { return t.secure }
func (t *Tab) Closed() bool              { return t.closed }
func (t *Tab) SetOnChange(fn ChangeFunc) { t.onChange = fn }

func (t *Tab) URI() string     { return t.view.URI() }
func (t *Tab) Title() string   { return t.view.Title() }
func (t *Tab) Status() string  { return t.view.Status() }
func (t *Tab) Progress() int   { return t.view.Progress() }
func (t *Tab) CanGoBack() bool { return len(t.back) > 0 || t.view.CanGoBack() }
func (t *Tab) CanGoForward() bool {
	return len(t.forward) > 0 || t.view.CanGoForward()
}

// Label is the title, or the URI when there is no title yet.
func (t *Tab) Label() string {
	if title := t.Title(); title != "" {
		return title
	}
	return t.URI()
}

// Location renders the URI with the back and forward markers.
func (t *Tab) Location() string {
	back, fwd := t.CanGoBack(), t.CanGoForward()
	if !back && !fwd {
		return t.URI()
	}

	var b strings.Builder
	b.WriteString(t.URI())
	b.WriteString(" [")
	if back {
		b.WriteByte('+')
	}
	if fwd {
		b.WriteByte('-')
	}
	b.WriteByte(']')
	return b.String()
}

// Open replaces the view with one loading uri. The tab is unchanged when
// uri cannot be resolved.
func (t *Tab) Open(uri string) error {
	m, normalized, err := t.resolver.Resolve(uri)
	if err != nil {
		return err
	}

	if cur := t.URI(); cur != view.BlankURI {
		t.back = append(t.back, cur)
	}
	t.forward = nil
	t.attach(m, normalized)
	return nil
}

// Reload loads the current URI into a fresh view.
func (t *Tab) Reload() error {
	m, normalized, err := t.resolver.Resolve(t.URI())
	if err != nil {
		return err
	}
	t.attach(m, normalized)
	return nil
}

// Back goes to the previous URI.
func (t *Tab) Back() error {
	return t.travel(&t.back, &t.forward)
}

// Forward goes to the next URI.
func (t *Tab) Forward() error {
	return t.travel(&t.forward, &t.back)
}

func (t *Tab) travel(from, to *[]string) error {
	if len(*from) == 0 {
		return ErrNoHistory
	}

	uri := (*from)[len(*from)-1]
	m, normalized, err := t.resolver.Resolve(uri)
	if err != nil {
		return fmt.Errorf("failed to revisit %s: %w", uri, err)
	}

	*from = (*from)[:len(*from)-1]
	*to = append(*to, t.URI())
	t.attach(m, normalized)
	return nil
}

// Close releases the view. The tab must not be used afterwards.
func (t *Tab) Close() {
	if t.closed {
		return
	}
	t.detach()
	t.closed = true
}

// attach replaces the current view. The old view's subscriptions are
// removed and it is closed before the new one starts loading.
func (t *Tab) attach(m protocol.Module, uri string) {
	t.detach()

	t.gen++
	gen := t.gen

	v := m.NewView(t.opts.Poster)
	t.module = m
	t.view = v
	t.secure = strings.HasPrefix(uri, "https://")

	t.subs = append(t.subs, v.Subscribe(func(ev view.Event) {
		t.handle(gen, ev)
	}))
	v.SetHooks(view.Hooks{
		NewWindow: t.opts.NewWindow,
		Download:  t.opts.Download,
	})

	t.logger.Debug("loading",
		zap.String("tab", t.id),
		zap.String("module", m.Name()),
		zap.String("uri", uri),
	)
	v.Load(uri)
}

func (t *Tab) detach() {
	for _, s := range t.subs {
		s.Unsubscribe()
	}
	t.subs = nil
	if t.view != nil {
		t.view.Close()
	}
}

func (t *Tab) handle(gen uint64, ev view.Event) {
	if t.closed || gen != t.gen {
		t.logger.Debug("dropped event from superseded view",
			zap.String("tab", t.id),
			zap.Stringer("kind", ev.Kind),
		)
		return
	}

	if ev.Kind == view.URIChanged {
		t.secure = strings.HasPrefix(ev.Text, "https://")
	}
	if t.onChange != nil {
		t.onChange(t, ev)
	}
	if t.opts.Observer != nil {
		t.opts.Observer(t, ev)
	}
}
