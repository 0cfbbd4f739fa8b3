package document

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// SourceStyle is the chroma style used for the source view.
var SourceStyle = "monokai"

// SourceLines returns the highlighted source, one terminal line per
// element. Documents without a source (binary ones) return nil.
func (d *Document) SourceLines() []string {
	if d.Source == "" {
		return nil
	}
	out, err := highlight(d.Source, d.MediaType)
	if err != nil {
		return splitLines(d.Source)
	}
	return splitLines(out)
}

func highlight(src, mediaType string) (string, error) {
	lexer := lexers.MatchMimeType(mediaType)
	if lexer == nil {
		lexer = lexers.Analyse(src)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := styles.Get(SourceStyle)
	if style == nil {
		style = styles.Fallback
	}
	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	it, err := lexer.Tokenise(nil, src)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	if err := formatter.Format(&b, style, it); err != nil {
		return "", err
	}
	return b.String(), nil
}
