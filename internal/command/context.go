package command

import (
	"errors"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/history"
	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/notebook"
	"github.com/HFT/cream-browser/internal/session"
	"github.com/HFT/cream-browser/internal/split"
	"github.com/HFT/cream-browser/internal/tab"
)

// ErrUnavailable is returned by commands whose service is not configured.
var ErrUnavailable = errors.New("not available")

// UI is what commands need from the terminal front end.
type UI interface {
	Quit()
	Scroll(action string) error
}

// HistoryStore lists visited pages.
type HistoryStore interface {
	Search(query string, limit int) ([]history.Visit, error)
}

// Downloader starts a background download and returns its destination.
type Downloader interface {
	Start(uri string) (string, error)
}

// Context is the state a command runs against. Tree is required; every
// other service may be nil.
type Context struct {
	Tree       *split.Tree
	Dispatcher *Dispatcher

	Bindings  *keybinds.Registry
	History   HistoryStore
	Sessions  *session.Manager
	Downloads Downloader
	Clipboard func(text string) error
	UI        UI
	Homepage  string

	Logger *zap.Logger
}

// Group returns the focused tab group.
func (c *Context) Group() *notebook.Group {
	return c.Tree.Focused()
}

// Tab returns the focused tab.
func (c *Context) Tab() *tab.Tab {
	return c.Group().Focused()
}

func (c *Context) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
