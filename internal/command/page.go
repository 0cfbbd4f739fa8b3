package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/HFT/cream-browser/internal/view"
)

func pageCommands() []*Command {
	return []*Command{
		{
			Name:  "reload",
			Usage: "reload",
			Help:  "load the current page again",
			Run: func(ctx *Context, _ string) (string, error) {
				return "", ctx.Tab().Reload()
			},
		},
		{
			Name:  "back",
			Usage: "back",
			Help:  "go back in the tab history",
			Run: func(ctx *Context, _ string) (string, error) {
				return "", ctx.Tab().Back()
			},
		},
		{
			Name:  "forward",
			Usage: "forward",
			Help:  "go forward in the tab history",
			Run: func(ctx *Context, _ string) (string, error) {
				return "", ctx.Tab().Forward()
			},
		},
		{
			Name:  "follow",
			Usage: "follow <n>",
			Help:  "open link n in the focused tab",
			Run: func(ctx *Context, args string) (string, error) {
				return follow(ctx, args, false)
			},
		},
		{
			Name:  "tabfollow",
			Usage: "tabfollow <n>",
			Help:  "open link n in a new tab",
			Run: func(ctx *Context, args string) (string, error) {
				return follow(ctx, args, true)
			},
		},
		{
			Name:  "viewsource",
			Usage: "viewsource",
			Help:  "toggle between the page text and its source",
			Run:   runViewSource,
		},
		{
			Name:  "yank",
			Usage: "yank [text]",
			Help:  "copy the page URI, or text, to the clipboard",
			Run:   runYank,
		},
		{
			Name:  "query",
			Usage: "query <jmespath>",
			Help:  "evaluate a JMESPath expression against a JSON page",
			Run:   runQuery,
		},
		{
			Name:  "send",
			Usage: "send <message>",
			Help:  "send a message on a websocket page",
			Run:   runSend,
		},
		{
			Name:  "download",
			Usage: "download [uri]",
			Help:  "download uri, or the current page",
			Run:   runDownload,
		},
		{
			Name:  "scroll",
			Usage: "scroll up|down|pageup|pagedown|halfup|halfdown|top|bottom",
			Help:  "scroll the focused pane",
			Run: func(ctx *Context, args string) (string, error) {
				if ctx.UI == nil {
					return "", fmt.Errorf("scroll: %w", ErrUnavailable)
				}
				return "", ctx.UI.Scroll(strings.TrimSpace(args))
			},
		},
	}
}

func follow(ctx *Context, args string, newTab bool) (string, error) {
	linker, ok := ctx.Tab().View().(view.Linker)
	if !ok {
		return "", fmt.Errorf("this page has no links")
	}

	links := linker.Links()
	n, err := strconv.Atoi(strings.TrimSpace(args))
	if err != nil || n < 1 || n > len(links) {
		return "", fmt.Errorf("%w: follow <1-%d>", ErrUsage, len(links))
	}

	uri := links[n-1]
	if newTab {
		return "", ctx.Group().TabOpen(uri)
	}
	return "", ctx.Group().Open(uri)
}

func runViewSource(ctx *Context, _ string) (string, error) {
	src, ok := ctx.Tab().View().(view.SourceToggler)
	if !ok {
		return "", fmt.Errorf("this page has no source view")
	}
	src.SetSourceMode(!src.SourceMode())
	return "", nil
}

func runYank(ctx *Context, args string) (string, error) {
	if ctx.Clipboard == nil {
		return "", fmt.Errorf("yank: %w", ErrUnavailable)
	}

	text := strings.TrimSpace(args)
	if text == "" {
		text = ctx.Tab().URI()
	}
	if err := ctx.Clipboard(text); err != nil {
		return "", fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	return "Yanked " + text, nil
}

func runQuery(ctx *Context, args string) (string, error) {
	q, ok := ctx.Tab().View().(view.Querier)
	if !ok {
		return "", fmt.Errorf("this page cannot be queried")
	}
	expr := strings.TrimSpace(args)
	if expr == "" {
		return "", fmt.Errorf("%w: query <jmespath>", ErrUsage)
	}
	return q.Query(expr)
}

func runSend(ctx *Context, args string) (string, error) {
	s, ok := ctx.Tab().View().(view.Sender)
	if !ok {
		return "", fmt.Errorf("this page is not a websocket")
	}
	if args == "" {
		return "", fmt.Errorf("%w: send <message>", ErrUsage)
	}
	return "", s.Send(args)
}

func runDownload(ctx *Context, args string) (string, error) {
	if ctx.Downloads == nil {
		return "", fmt.Errorf("download: %w", ErrUnavailable)
	}

	uri := strings.TrimSpace(args)
	if uri == "" {
		uri = ctx.Tab().URI()
	}
	dest, err := ctx.Downloads.Start(uri)
	if err != nil {
		return "", err
	}
	return "Downloading to " + dest, nil
}
