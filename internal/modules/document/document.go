// Package document turns fetched bytes into the text rendition shown in
// a pane: decoded, sanitised, wrapped into lines with numbered links.
package document

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/gabriel-vasile/mimetype"
	"github.com/jmespath/go-jmespath"
	"github.com/microcosm-cc/bluemonday"
	"github.com/saintfish/chardet"
	"golang.org/x/net/html/charset"
)

// MaxSize limits how much of a resource is rendered.
const MaxSize = 10 * 1024 * 1024

// ErrNotJSON is returned by Query on documents that are not JSON.
var ErrNotJSON = errors.New("not a JSON page")

// Kind classifies a document by how it is rendered.
type Kind int

const (
	KindText Kind = iota
	KindHTML
	KindJSON
	KindBinary
)

func (k Kind) String() string {
	switch k {
	case KindHTML:
		return "html"
	case KindJSON:
		return "json"
	case KindBinary:
		return "binary"
	}
	return "text"
}

// Document is a rendered resource.
type Document struct {
	URI       string
	Title     string
	MediaType string
	Kind      Kind
	Size      int

	Lines []string
	Links []string
	// Source is the decoded body, used by the source view.
	Source string

	data interface{}
}

var sanitizer = bluemonday.UGCPolicy()

// Parse renders body. contentType may be empty, in which case the type
// is sniffed from the bytes.
func Parse(uri, contentType string, body []byte) (*Document, error) {
	if len(body) > MaxSize {
		return nil, fmt.Errorf("document exceeds maximum size of %d bytes", MaxSize)
	}

	mediaType, params := mediaTypeOf(contentType, body)
	doc := &Document{URI: uri, MediaType: mediaType, Size: len(body)}

	switch {
	case isJSON(mediaType):
		doc.Kind = KindJSON
		return doc, doc.parseJSON(body)
	case mediaType == "text/html" || mediaType == "application/xhtml+xml":
		doc.Kind = KindHTML
		src, err := Decode(body, params["charset"])
		if err != nil {
			return nil, err
		}
		doc.Source = src
		return doc, doc.parseHTML(src)
	case strings.HasPrefix(mediaType, "text/") || mediaType == "application/xml" ||
		mediaType == "application/javascript":
		doc.Kind = KindText
		src, err := Decode(body, params["charset"])
		if err != nil {
			return nil, err
		}
		doc.Source = src
		doc.Lines = splitLines(src)
		return doc, nil
	}

	doc.Kind = KindBinary
	doc.Lines = []string{fmt.Sprintf("%s, %d bytes", mediaType, len(body))}
	return doc, nil
}

func mediaTypeOf(contentType string, body []byte) (string, map[string]string) {
	if contentType != "" {
		if mt, params, err := mime.ParseMediaType(contentType); err == nil {
			return mt, params
		}
	}
	mt, params, err := mime.ParseMediaType(mimetype.Detect(body).String())
	if err != nil {
		return "application/octet-stream", nil
	}
	return mt, params
}

func isJSON(mediaType string) bool {
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Decode converts body to UTF-8. A declared charset is trusted; without
// one, bytes that are not valid UTF-8 go through charset detection.
func Decode(body []byte, declared string) (string, error) {
	if declared == "" {
		if utf8.Valid(body) {
			return string(body), nil
		}
		declared = detectCharset(body)
	}

	r, err := charset.NewReader(bytes.NewReader(body), "text/plain; charset="+declared)
	if err != nil {
		return string(body), nil
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to decode %s: %w", declared, err)
	}
	return string(out), nil
}

func detectCharset(body []byte) string {
	result, err := chardet.NewTextDetector().DetectBest(body)
	if err != nil || result == nil {
		return "utf-8"
	}
	return strings.ToLower(result.Charset)
}

func (d *Document) parseJSON(body []byte) error {
	if err := json.Unmarshal(body, &d.data); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", "  "); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	d.Source = string(body)
	d.Lines = splitLines(buf.String())
	return nil
}

func (d *Document) parseHTML(src string) error {
	page, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	d.Title = normalizeSpace(page.Find("title").First().Text())

	body, err := page.Find("body").First().Html()
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}
	clean, err := goquery.NewDocumentFromReader(strings.NewReader(sanitizer.Sanitize(body)))
	if err != nil {
		return fmt.Errorf("failed to parse HTML: %w", err)
	}

	r := newRenderer(d.URI)
	for _, n := range clean.Find("body").Nodes {
		r.walk(n)
	}
	d.Lines = r.finish()
	d.Links = r.links
	return nil
}

// Query evaluates a JMESPath expression against a JSON document and
// returns the indented result.
func (d *Document) Query(expr string) (string, error) {
	if d.Kind != KindJSON {
		return "", ErrNotJSON
	}
	result, err := jmespath.Search(expr, d.data)
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("query failed: %w", err)
	}
	return string(out), nil
}

// Summary is a short status line for the document.
func (d *Document) Summary() string {
	switch d.Kind {
	case KindHTML:
		return fmt.Sprintf("%s, %d links", d.MediaType, len(d.Links))
	case KindBinary:
		return fmt.Sprintf("%s, %d bytes", d.MediaType, d.Size)
	}
	return d.MediaType
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.TrimRight(s, "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
