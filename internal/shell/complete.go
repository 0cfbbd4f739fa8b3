package shell

import (
	"strings"

	"github.com/sahilm/fuzzy"
)

const completionHistory = 200

// completer cycles through fuzzy matches for the input box: command
// names after ':', visited URIs after ':open ' and ':tabopen '.
type completer struct {
	names   func() []string
	visited func() []string

	last    string
	matches []string
	index   int
}

func (c *completer) Complete(text string, reverse bool) (string, bool) {
	if text != "" && text == c.last && len(c.matches) > 1 {
		step := 1
		if reverse {
			step = -1
		}
		c.index = (c.index + step + len(c.matches)) % len(c.matches)
		c.last = c.matches[c.index]
		return c.last, true
	}

	c.matches = c.candidates(text)
	if len(c.matches) == 0 {
		c.last = ""
		return "", false
	}
	c.index = 0
	if reverse {
		c.index = len(c.matches) - 1
	}
	c.last = c.matches[c.index]
	return c.last, true
}

func (c *completer) candidates(text string) []string {
	if !strings.HasPrefix(text, ":") {
		return nil
	}

	name, arg, hasArg := strings.Cut(text[1:], " ")
	if !hasArg {
		return prefixed(":", find(name, c.names()))
	}

	switch name {
	case "open", "tabopen":
		if c.visited == nil {
			return nil
		}
		return prefixed(":"+name+" ", find(strings.TrimSpace(arg), c.visited()))
	}
	return nil
}

// find returns the entries of data matching pattern, best match first.
// An empty pattern matches everything in order.
func find(pattern string, data []string) []string {
	if pattern == "" {
		return data
	}
	matches := fuzzy.Find(pattern, data)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Str
	}
	return out
}

func prefixed(prefix string, items []string) []string {
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = prefix + s
	}
	return out
}
