// Package modules builds the protocol modules a configuration script can
// register by name.
package modules

import (
	"sort"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/modules/about"
	"github.com/HFT/cream-browser/internal/modules/file"
	"github.com/HFT/cream-browser/internal/modules/mailto"
	"github.com/HFT/cream-browser/internal/modules/www"
	"github.com/HFT/cream-browser/internal/modules/ws"
	"github.com/HFT/cream-browser/internal/protocol"
)

// Names are the module names known to the catalog, in the order the
// default configuration registers them.
var Names = []string{"mailto", "about", "file", "www", "ws"}

// Options configures every module.
type Options struct {
	WWW        www.Options
	AboutPages map[string]about.Page
	Opener     mailto.Opener
	Logger     *zap.Logger
}

// Catalog holds one instance of each module.
type Catalog struct {
	WWW     *www.Module
	modules map[string]protocol.Module
}

// New builds the catalog.
func New(opts Options) *Catalog {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.WWW.Logger == nil {
		opts.WWW.Logger = logger
	}

	w := www.New(opts.WWW)
	return &Catalog{
		WWW: w,
		modules: map[string]protocol.Module{
			"mailto": mailto.New(opts.Opener, logger),
			"about":  about.New(opts.AboutPages),
			"file":   file.New(logger),
			"www":    w,
			"ws":     ws.New(ws.Options{UserAgent: opts.WWW.UserAgent, Logger: logger}),
		},
	}
}

// Lookup returns the module called name.
func (c *Catalog) Lookup(name string) (protocol.Module, bool) {
	m, ok := c.modules[name]
	return m, ok
}

// Available lists the names of the modules in the catalog.
func (c *Catalog) Available() []string {
	names := make([]string, 0, len(c.modules))
	for name := range c.modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
