// Package mailto hands mailto: links to the desktop mail client.
package mailto

import (
	"context"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/view"
)

// Opener launches the external handler for uri.
type Opener func(ctx context.Context, uri string) error

// XDGOpen runs xdg-open and waits for it to exit.
func XDGOpen(ctx context.Context, uri string) error {
	out, err := exec.CommandContext(ctx, "xdg-open", uri).CombinedOutput()
	if err != nil {
		if len(out) > 0 {
			return fmt.Errorf("xdg-open: %w: %s", err, out)
		}
		return fmt.Errorf("xdg-open: %w", err)
	}
	return nil
}

const openTimeout = 30 * time.Second

type Module struct {
	open   Opener
	logger *zap.Logger
}

// New creates the module. A nil opener uses XDGOpen.
func New(open Opener, logger *zap.Logger) *Module {
	if open == nil {
		open = XDGOpen
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{open: open, logger: logger.Named("mailto")}
}

func (m *Module) Name() string { return "mailto" }

func (m *Module) NewView(p view.Poster) view.View {
	v := &View{Base: view.NewBase(p), module: m}
	return v
}

// View shows the outcome of handing the address off.
type View struct {
	view.Base
	module *Module
}

func (v *View) Load(uri string) {
	v.Reset(uri)
	v.SetStatus("Opening mail client...")

	ctx, cancel := context.WithTimeout(context.Background(), openTimeout)
	v.OnClose(cancel)

	go func() {
		defer cancel()
		err := v.module.open(ctx, uri)
		if err != nil {
			v.module.logger.Warn("failed to open mail client", zap.String("uri", uri), zap.Error(err))
		}
		v.Post(func() {
			if err != nil {
				v.SetLines([]string{"Error: " + err.Error()})
				v.SetStatus(err.Error())
			} else {
				v.SetLines([]string{"Sent " + uri + " to the mail client."})
				v.SetStatus("Mail client opened")
			}
			v.Finish()
		})
	}()
}
