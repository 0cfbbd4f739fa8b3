package document

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HFT/cream-browser/internal/view"
)

const samplePage = `<!DOCTYPE html>
<html>
<head><title>  Sample
  Page </title><style>body { color: red }</style></head>
<body>
<h1>Welcome</h1>
<p>Read the <a href="/docs">docs</a> or <a href="https://other.example/">elsewhere</a>.</p>
<p onclick="steal()">Again: <a href="docs">relative docs</a>, <a href="/docs">same docs</a>.</p>
<script>alert("gotcha")</script>
<ul><li>one</li><li>two <a href="javascript:void(0)">js</a></li></ul>
<pre>line 1
  line 2</pre>
<p><a href="#top">top</a></p>
</body>
</html>`

func TestParseHTML(t *testing.T) {
	doc, err := Parse("http://site.example/index.html", "text/html; charset=utf-8", []byte(samplePage))
	require.NoError(t, err)

	assert.Equal(t, KindHTML, doc.Kind)
	assert.Equal(t, "Sample Page", doc.Title)
	assert.Equal(t, []string{
		"http://site.example/docs",
		"https://other.example/",
	}, doc.Links, "relative links resolve and duplicates keep their number")

	assert.Equal(t, []string{
		"# Welcome",
		"",
		"Read the docs [1] or elsewhere [2].",
		"",
		"Again: relative docs [1], same docs [1].",
		"",
		"* one",
		"* two js",
		"",
		"line 1",
		"  line 2",
		"",
		"top",
	}, doc.Lines)

	content := strings.Join(doc.Lines, "\n")
	assert.NotContains(t, content, "gotcha")
	assert.NotContains(t, content, "color: red")
	assert.Equal(t, "text/html, 2 links", doc.Summary())
}

func TestParseJSON(t *testing.T) {
	body := []byte(`{"items":[{"name":"a","size":1},{"name":"b","size":2}]}`)
	doc, err := Parse("http://api.example/items", "application/json", body)
	require.NoError(t, err)

	assert.Equal(t, KindJSON, doc.Kind)
	assert.Equal(t, "{", doc.Lines[0])
	assert.Equal(t, `  "items": [`, doc.Lines[1])

	out, err := doc.Query("items[?size > `1`].name")
	require.NoError(t, err)
	assert.Equal(t, "[\n  \"b\"\n]", out)

	_, err = doc.Query("items[")
	assert.Error(t, err)

	_, err = Parse("http://api.example/", "application/problem+json", []byte("{broken"))
	assert.ErrorContains(t, err, "invalid JSON")
}

func TestQueryNotJSON(t *testing.T) {
	doc, err := Parse("http://x.example/", "text/plain", []byte("hello"))
	require.NoError(t, err)
	_, err = doc.Query("a")
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestParseSniffsType(t *testing.T) {
	doc, err := Parse("file:///tmp/a", "", []byte("just some text\nsecond line\n"))
	require.NoError(t, err)
	assert.Equal(t, KindText, doc.Kind)
	assert.Equal(t, "text/plain", doc.MediaType)
	assert.Equal(t, []string{"just some text", "second line"}, doc.Lines)

	png := []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")
	doc, err = Parse("file:///tmp/a.png", "", png)
	require.NoError(t, err)
	assert.Equal(t, KindBinary, doc.Kind)
	assert.Equal(t, "image/png", doc.MediaType)
	assert.Empty(t, doc.Source)
}

func TestDecode(t *testing.T) {
	latin1 := []byte("caf\xe9 cr\xe8me")

	got, err := Decode(latin1, "iso-8859-1")
	require.NoError(t, err)
	assert.Equal(t, "café crème", got)

	got, err = Decode([]byte("déjà vu"), "")
	require.NoError(t, err)
	assert.Equal(t, "déjà vu", got, "valid UTF-8 is left alone")
}

func TestParseDeclaredCharset(t *testing.T) {
	body := []byte("<html><head><title>Caf\xe9</title></head><body><p>Men\xfa</p></body></html>")
	doc, err := Parse("http://x.example/", "text/html; charset=ISO-8859-1", body)
	require.NoError(t, err)
	assert.Equal(t, "Café", doc.Title)
	assert.Equal(t, []string{"Menú"}, doc.Lines)
}

func TestSourceLines(t *testing.T) {
	doc, err := Parse("http://x.example/", "text/html", []byte("<html><body><p>hi</p></body></html>"))
	require.NoError(t, err)

	lines := doc.SourceLines()
	require.NotEmpty(t, lines)
	assert.Contains(t, lines[0], "html")
	assert.NotEqual(t, doc.Source, lines[0], "source is highlighted")
}

func TestView(t *testing.T) {
	v := &View{}
	v.Init(view.Immediate)

	var events []view.EventKind
	v.Subscribe(func(ev view.Event) { events = append(events, ev.Kind) })

	ctx := v.Begin("http://x.example/")
	doc, err := Parse("http://x.example/final", "text/html", []byte(samplePage))
	require.NoError(t, err)
	v.Deliver(ctx, func() { v.Show(doc) })

	assert.Equal(t, "http://x.example/final", v.URI(), "redirect target becomes the URI")
	assert.Equal(t, "Sample Page", v.Title())
	assert.Equal(t, 100, v.Progress())
	assert.Equal(t, view.LoadFinished, events[len(events)-1])
	assert.Len(t, v.Links(), 2)

	v.SetSourceMode(true)
	assert.True(t, v.SourceMode())
	assert.NotEqual(t, doc.Lines, v.Lines())
	v.SetSourceMode(false)
	assert.Equal(t, doc.Lines, v.Lines())

	_, err = v.Query("a")
	assert.ErrorIs(t, err, ErrNotJSON)
}

func TestViewDropsSupersededLoad(t *testing.T) {
	v := &View{}
	v.Init(view.Immediate)

	first := v.Begin("http://one.example/")
	v.Begin("http://two.example/")

	called := false
	v.Deliver(first, func() { called = true })
	assert.False(t, called)
	assert.Error(t, first.Err())

	v.Close()
	assert.Nil(t, v.cancel, "close stops the load in flight")
}
