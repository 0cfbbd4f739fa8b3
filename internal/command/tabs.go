package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HFT/cream-browser/internal/split"
	"github.com/HFT/cream-browser/internal/view"
)

func tabCommands() []*Command {
	return []*Command{
		{
			Name:  "open",
			Usage: "open <uri>",
			Help:  "load uri in the focused tab",
			Run:   runOpen,
		},
		{
			Name:  "tabopen",
			Usage: "tabopen [uri]",
			Help:  "open uri in a new tab",
			Run:   runTabOpen,
		},
		{
			Name:  "tabclose",
			Usage: "tabclose [n]",
			Help:  "close the focused tab, or tab n",
			Run:   runTabClose,
		},
		{
			Name:  "tabnext",
			Usage: "tabnext [n]",
			Help:  "focus the next tab, or tab n",
			Run:   runTabNext,
		},
		{
			Name:  "tabprev",
			Usage: "tabprev",
			Help:  "focus the previous tab",
			Run: func(ctx *Context, _ string) (string, error) {
				ctx.Group().Prev()
				return "", nil
			},
		},
	}
}

func runOpen(ctx *Context, args string) (string, error) {
	uri := strings.TrimSpace(args)
	if uri == "" {
		return "", fmt.Errorf("%w: open <uri>", ErrUsage)
	}
	return "", ctx.Group().Open(uri)
}

func runTabOpen(ctx *Context, args string) (string, error) {
	uri := strings.TrimSpace(args)
	if uri == "" {
		uri = view.BlankURI
	}
	return "", ctx.Group().TabOpen(uri)
}

// tabIndex parses a 1-based tab number.
func tabIndex(args string, n int) (int, error) {
	i, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || i < 1 || i > n {
		return 0, fmt.Errorf("%w: no tab %q", ErrUsage, strings.TrimSpace(args))
	}
	return i - 1, nil
}

func runTabClose(ctx *Context, args string) (string, error) {
	g := ctx.Group()
	index := g.FocusIndex()
	if strings.TrimSpace(args) != "" {
		i, err := tabIndex(args, g.Len())
		if err != nil {
			return "", err
		}
		index = i
	}
	return "", closeTab(ctx, index)
}

// closeTab closes a tab of the focused group and, when the group is left
// empty, its pane. The last tab of the last pane is never closed.
func closeTab(ctx *Context, index int) error {
	g := ctx.Group()
	if g.Len() == 1 && ctx.Tree.Len() == 1 {
		return fmt.Errorf("%w: use :quit to leave", split.ErrInvariantViolation)
	}

	if err := g.Close(index); err != nil {
		return err
	}
	if g.Len() > 0 {
		return nil
	}
	return ctx.Tree.Close(ctx.Tree.FocusedLeaf())
}

func runTabNext(ctx *Context, args string) (string, error) {
	g := ctx.Group()
	if strings.TrimSpace(args) == "" {
		g.Next()
		return "", nil
	}
	i, err := tabIndex(args, g.Len())
	if err != nil {
		return "", err
	}
	return "", g.Focus(i)
}
