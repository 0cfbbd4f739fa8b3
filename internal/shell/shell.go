// Package shell assembles the browser: protocol registry, key bindings,
// command dispatcher and pane tree, and runs commands on the UI
// goroutine for the terminal front end and the control socket.
package shell

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/command"
	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/history"
	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/modules"
	"github.com/HFT/cream-browser/internal/modules/about"
	"github.com/HFT/cream-browser/internal/modules/mailto"
	"github.com/HFT/cream-browser/internal/modules/www"
	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/protocol"
	"github.com/HFT/cream-browser/internal/script"
	"github.com/HFT/cream-browser/internal/session"
	"github.com/HFT/cream-browser/internal/split"
	"github.com/HFT/cream-browser/internal/tab"
	"github.com/HFT/cream-browser/internal/view"
)

var (
	// ErrNoProtocols is returned when the configuration registered no
	// usable protocol.
	ErrNoProtocols = errors.New("no protocols registered")
	// ErrUnknownModule is returned for a protocol naming a module that
	// does not exist.
	ErrUnknownModule = errors.New("unknown module")
)

// Options configures a Shell. Config is required.
type Options struct {
	Config   *script.Config
	Settings *config.Settings

	History      *history.Store
	Sessions     *session.Manager
	KeybindsFile string
	DownloadsDir string

	Clipboard func(text string) error
	Opener    mailto.Opener
	Logger    *zap.Logger
}

// Shell owns every piece of browser state. Apart from Call, Post and
// Loop, its methods must run on the UI goroutine.
type Shell struct {
	opts   Options
	logger *zap.Logger
	loop   *Loop

	catalog    *modules.Catalog
	registry   *protocol.Registry
	bindings   *keybinds.Registry
	dispatcher *command.Dispatcher
	downloads  *www.Downloader
	complete   *completer

	tree *split.Tree
	ctx  *command.Context
}

// New builds the shell and opens the homepage in the first pane.
func New(opts Options) (*Shell, error) {
	if opts.Config == nil {
		return nil, errors.New("shell: no configuration")
	}
	if opts.Settings == nil {
		opts.Settings = config.DefaultSettings()
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Shell{
		opts:       opts,
		logger:     logger,
		loop:       NewLoop(),
		dispatcher: command.RegisterBuiltins(command.NewDispatcher(logger.Named("command"))),
	}

	s.catalog = modules.New(modules.Options{
		WWW: www.Options{
			UserAgent: opts.Settings.UserAgent,
			Timeout:   opts.Settings.HTTPTimeout,
		},
		AboutPages: s.aboutPages(),
		Opener:     opts.Opener,
		Logger:     logger,
	})

	var err error
	if s.registry, err = buildRegistry(opts.Config, s.catalog); err != nil {
		return nil, err
	}
	if s.bindings, err = buildBindings(opts.Config, opts.KeybindsFile); err != nil {
		return nil, err
	}

	s.downloads = s.catalog.WWW.NewDownloader(opts.DownloadsDir, s.downloadDone)
	s.complete = &completer{names: s.dispatcher.Names}
	if opts.History != nil {
		s.complete.visited = s.visited
	}

	s.ctx = &command.Context{
		Dispatcher: s.dispatcher,
		Bindings:   s.bindings,
		Sessions:   opts.Sessions,
		Downloads:  s.downloads,
		Clipboard:  opts.Clipboard,
		Homepage:   opts.Settings.Homepage,
		Logger:     logger,
	}
	if opts.History != nil {
		s.ctx.History = opts.History
	}

	s.tree, err = split.New(s.newGroup, opts.Settings.Homepage, logger)
	if err != nil {
		s.downloads.Stop()
		return nil, fmt.Errorf("failed to open %s: %w", opts.Settings.Homepage, err)
	}
	s.ctx.Tree = s.tree

	logger.Info("shell ready",
		zap.Strings("protocols", s.registry.Prefixes()),
		zap.String("homepage", opts.Settings.Homepage),
	)
	return s, nil
}

func buildRegistry(cfg *script.Config, catalog *modules.Catalog) (*protocol.Registry, error) {
	r := protocol.NewRegistry()
	for _, p := range cfg.Protocols {
		if p.Module == "" {
			r.Register(p.Prefix, nil)
			continue
		}
		m, ok := catalog.Lookup(p.Module)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownModule, p.Module)
		}
		r.Register(p.Prefix, m)
	}
	if r.Len() == 0 {
		return nil, ErrNoProtocols
	}
	return r, nil
}

// buildBindings starts from the defaults, applies the script's bind and
// unbind calls, then the keybinds.json overlay.
func buildBindings(cfg *script.Config, path string) (*keybinds.Registry, error) {
	r := keybinds.NewDefaultRegistry()
	for _, b := range cfg.Bindings {
		if b.Command == "" {
			r.Unregister(keybinds.Context(b.Context), b.Key)
			continue
		}
		r.Register(keybinds.Context(b.Context), b.Key, keybinds.Action(b.Command))
	}
	if path == "" {
		return r, nil
	}
	return keybinds.LoadOrDefault(r, path)
}

func (s *Shell) Tree() *split.Tree                { return s.tree }
func (s *Shell) Bindings() *keybinds.Registry     { return s.bindings }
func (s *Shell) Dispatcher() *command.Dispatcher  { return s.dispatcher }
func (s *Shell) Registry() *protocol.Registry     { return s.registry }
func (s *Shell) Downloads() *www.Downloader       { return s.downloads }
func (s *Shell) Loop() *Loop                      { return s.loop }
func (s *Shell) Settings() *config.Settings       { return s.opts.Settings }
func (s *Shell) Modules() []string                { return s.catalog.Available() }
func (s *Shell) Config() *script.Config           { return s.opts.Config }
func (s *Shell) Post(fn func())                   { s.loop.Post(fn) }
func (s *Shell) SetUI(ui command.UI)              { s.ctx.UI = ui }
func (s *Shell) Focused() *tab.Tab                { return s.tree.Focused().Focused() }
func (s *Shell) CommandContext() *command.Context { return s.ctx }

// Dispatch runs a command line against the focused pane and tab.
func (s *Shell) Dispatch(line string) (string, error) {
	return s.dispatcher.Dispatch(line, s.ctx)
}

// Call runs line on the UI goroutine and waits for its result. It is
// safe to call from any goroutine.
func (s *Shell) Call(ctx context.Context, line string) (string, error) {
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	s.loop.Post(func() {
		out, err := s.Dispatch(line)
		done <- result{out, err}
	})

	select {
	case r := <-done:
		return r.out, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Open loads the first URI in the focused tab and opens the others in
// new tabs.
func (s *Shell) Open(uris []string) error {
	var errs []error
	for i, uri := range uris {
		var err error
		if i == 0 {
			err = s.tree.Focused().Open(uri)
		} else {
			err = s.tree.Focused().TabOpen(uri)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", uri, err))
		}
	}
	return errors.Join(errs...)
}

// Message shows msg in the focused tab's input box.
func (s *Shell) Message(msg string, isError bool) {
	if t := s.Focused(); t != nil {
		t.Input().Show(msg, isError)
	}
}

// Shutdown saves the session, closes every view and stops downloads.
func (s *Shell) Shutdown() {
	if s.opts.Sessions != nil {
		snap := session.Capture(s.tree)
		if err := s.opts.Sessions.Save(snap); err != nil {
			s.logger.Warn("failed to save session", zap.Error(err))
		} else {
			s.logger.Info("session saved",
				zap.String("path", s.opts.Sessions.Path()),
				zap.Int("tabs", snap.TabCount()),
			)
		}
	}
	s.tree.CloseAll()
	s.downloads.Stop()
}

func (s *Shell) newGroup(uri string) (*notebook.Group, error) {
	g := notebook.New(s.registry, s.tabOptions())
	if err := g.TabOpen(uri); err != nil {
		return nil, err
	}
	return g, nil
}

func (s *Shell) tabOptions() tab.Options {
	return tab.Options{
		Poster:     s.loop,
		Submitter:  submitter{s},
		Bindings:   s.bindings.ForContext(keybinds.ContextNormal),
		Logger:     s.logger.Named("tab"),
		Completion: s.complete.Complete,
		Download:   s.download,
		Observer:   s.observe,
	}
}

func (s *Shell) download(resource string) bool {
	dest, err := s.downloads.Start(resource)
	if err != nil {
		s.Message(err.Error(), true)
		return false
	}
	s.Message("Downloading to "+dest, false)
	return true
}

// downloadDone runs on the download's goroutine.
func (s *Shell) downloadDone(dest string, err error) {
	s.loop.Post(func() {
		if err != nil {
			s.Message(fmt.Sprintf("Download of %s failed: %v", dest, err), true)
			return
		}
		s.Message("Downloaded "+dest, false)
	})
}

// observe records finished loads in the history store.
func (s *Shell) observe(t *tab.Tab, ev view.Event) {
	if s.opts.History == nil || ev.Kind != view.LoadFinished {
		return
	}
	uri := t.URI()
	if strings.HasPrefix(uri, "about:") {
		return
	}
	if err := s.opts.History.Record(uri, t.Title()); err != nil {
		s.logger.Warn("failed to record visit", zap.String("uri", uri), zap.Error(err))
	}
}

func (s *Shell) visited() []string {
	visits, err := s.opts.History.Recent(completionHistory)
	if err != nil {
		s.logger.Warn("failed to read history", zap.Error(err))
		return nil
	}
	uris := make([]string, len(visits))
	for i, v := range visits {
		uris[i] = v.URI
	}
	return uris
}

// submitter sends the input box's commands and searches to the focused
// pane and tab.
type submitter struct {
	s *Shell
}

func (sub submitter) Command(line string) (string, error) {
	return sub.s.Dispatch(line)
}

func (sub submitter) Search(term string, forward bool) bool {
	t := sub.s.Focused()
	if t == nil {
		return false
	}
	return t.View().Search(term, forward)
}

func (s *Shell) aboutPages() map[string]about.Page {
	return map[string]about.Page{
		"version":  s.versionPage,
		"commands": s.commandsPage,
		"history":  s.historyPage,
		"config":   s.configPage,
	}
}
