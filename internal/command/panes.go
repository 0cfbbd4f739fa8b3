package command

import (
	"errors"
	"strings"

	"github.com/HFT/cream-browser/internal/split"
)

func paneCommands() []*Command {
	return []*Command{
		{
			Name:  "split",
			Usage: "split [uri]",
			Help:  "split the pane top and bottom",
			Run: func(ctx *Context, args string) (string, error) {
				return "", splitPane(ctx, split.Horizontal, args)
			},
		},
		{
			Name:  "vsplit",
			Usage: "vsplit [uri]",
			Help:  "split the pane side by side",
			Run: func(ctx *Context, args string) (string, error) {
				return "", splitPane(ctx, split.Vertical, args)
			},
		},
		{
			Name:  "close",
			Usage: "close",
			Help:  "close the focused pane",
			Run: func(ctx *Context, _ string) (string, error) {
				return "", ctx.Tree.Close(ctx.Tree.FocusedLeaf())
			},
		},
		{
			Name:  "only",
			Usage: "only",
			Help:  "close every other pane",
			Run: func(ctx *Context, _ string) (string, error) {
				ctx.Tree.Only()
				return "", nil
			},
		},
		{
			Name:  "wnext",
			Usage: "wnext",
			Help:  "focus the next pane",
			Run: func(ctx *Context, _ string) (string, error) {
				ctx.Tree.FocusNext()
				return "", nil
			},
		},
		{
			Name:  "wprev",
			Usage: "wprev",
			Help:  "focus the previous pane",
			Run: func(ctx *Context, _ string) (string, error) {
				ctx.Tree.FocusPrev()
				return "", nil
			},
		},
	}
}

func splitPane(ctx *Context, o split.Orientation, args string) error {
	h, err := ctx.Tree.Split(ctx.Tree.FocusedLeaf(), o)
	if err != nil {
		return err
	}
	uri := strings.TrimSpace(args)
	if uri == "" {
		return nil
	}
	if err := ctx.Group().Open(uri); err != nil {
		// The new pane goes away and focus returns to its sibling.
		if cerr := ctx.Tree.Close(h); cerr != nil {
			return errors.Join(err, cerr)
		}
		return err
	}
	return nil
}
