package document

import (
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
)

// blocks break the current line before and after themselves.
var blocks = map[string]bool{
	"address": true, "article": true, "aside": true, "blockquote": true,
	"dd": true, "div": true, "dl": true, "dt": true, "figcaption": true,
	"figure": true, "footer": true, "form": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "header": true,
	"hr": true, "li": true, "main": true, "nav": true, "ol": true, "p": true,
	"pre": true, "section": true, "table": true, "tr": true, "ul": true,
}

// paragraphs are also followed by a blank line.
var paragraphs = map[string]bool{
	"blockquote": true, "h1": true, "h2": true, "h3": true, "h4": true,
	"h5": true, "h6": true, "ol": true, "p": true, "pre": true,
	"table": true, "ul": true,
}

type renderer struct {
	base  *url.URL
	lines []string
	cur   strings.Builder
	pre   int

	links []string
	index map[string]int
}

func newRenderer(uri string) *renderer {
	base, err := url.Parse(uri)
	if err != nil {
		base = &url.URL{}
	}
	return &renderer{base: base, index: make(map[string]int)}
}

func (r *renderer) walk(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if r.pre > 0 {
			r.writePre(n.Data)
		} else {
			r.cur.WriteString(n.Data)
		}
		return
	case html.ElementNode:
	default:
		r.children(n)
		return
	}

	switch n.Data {
	case "script", "style", "noscript", "head", "template":
		return
	case "br":
		r.flush()
		return
	case "img":
		if alt := attr(n, "alt"); alt != "" {
			r.cur.WriteString(" [" + alt + "] ")
		}
		return
	case "a":
		r.children(n)
		if num := r.link(attr(n, "href")); num > 0 {
			fmt.Fprintf(&r.cur, " [%d]", num)
		}
		return
	case "td", "th":
		r.children(n)
		r.cur.WriteString(" | ")
		return
	}

	if !blocks[n.Data] {
		r.children(n)
		return
	}

	r.flush()
	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		r.cur.WriteString(strings.Repeat("#", int(n.Data[1]-'0')) + " ")
	case "li":
		r.cur.WriteString("* ")
	case "blockquote":
		r.cur.WriteString("> ")
	case "hr":
		r.lines = append(r.lines, strings.Repeat("-", 40))
	case "pre":
		r.pre++
	}
	r.children(n)
	r.flush()
	if n.Data == "pre" {
		r.pre--
	}
	if paragraphs[n.Data] {
		r.blank()
	}
}

func (r *renderer) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		r.walk(c)
	}
}

func (r *renderer) writePre(text string) {
	parts := strings.Split(text, "\n")
	for i, part := range parts {
		if i > 0 {
			r.lines = append(r.lines, strings.TrimRight(r.cur.String(), " \t"))
			r.cur.Reset()
		}
		r.cur.WriteString(part)
	}
}

// flush ends the current line.
func (r *renderer) flush() {
	var line string
	if r.pre > 0 {
		line = strings.TrimRight(r.cur.String(), " \t")
	} else {
		line = normalizeSpace(r.cur.String())
		line = strings.TrimSuffix(line, " |")
	}
	r.cur.Reset()
	if line != "" {
		r.lines = append(r.lines, line)
	}
}

func (r *renderer) blank() {
	if n := len(r.lines); n > 0 && r.lines[n-1] != "" {
		r.lines = append(r.lines, "")
	}
}

func (r *renderer) finish() []string {
	r.flush()
	for len(r.lines) > 0 && r.lines[len(r.lines)-1] == "" {
		r.lines = r.lines[:len(r.lines)-1]
	}
	return r.lines
}

// link records href and returns its 1-based number, 0 when it cannot be
// followed. The same target keeps its first number.
func (r *renderer) link(href string) int {
	target := resolve(r.base, href)
	if target == "" {
		return 0
	}
	if num, ok := r.index[target]; ok {
		return num
	}
	r.links = append(r.links, target)
	r.index[target] = len(r.links)
	return len(r.links)
}

func resolve(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "data:") {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(u).String()
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
