// Package file loads file:// URIs: local files and directory listings.
package file

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/modules/document"
	"github.com/HFT/cream-browser/internal/view"
)

type Module struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Module {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{logger: logger.Named("file")}
}

func (m *Module) Name() string { return "file" }

func (m *Module) NewView(p view.Poster) view.View {
	v := &View{module: m}
	v.Init(p)
	return v
}

// View is one local file or directory.
type View struct {
	document.View
	module *Module
}

func (v *View) Load(uri string) {
	ctx := v.Begin(uri)
	go func() {
		doc, err := v.module.Read(ctx, uri)
		v.Deliver(ctx, func() {
			if err != nil {
				v.Fail(err)
				return
			}
			v.Show(doc)
		})
	}()
}

// Path extracts the local path from a file:// URI.
func Path(uri string) (string, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("invalid file URI: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("invalid file URI: %q", uri)
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", fmt.Errorf("remote file URIs are not supported: %s", u.Host)
	}
	if u.Path == "" {
		return "/", nil
	}
	return filepath.Clean(u.Path), nil
}

// URI builds the file:// URI of an absolute path.
func URI(path string) string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(path)}).String()
}

// Read renders the file or directory at uri.
func (m *Module) Read(ctx context.Context, uri string) (*document.Document, error) {
	path, err := Path(uri)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return m.list(path)
	}
	if info.Size() > document.MaxSize {
		return nil, fmt.Errorf("%s is too large to display (%d bytes)", path, info.Size())
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to detect type of %s: %w", path, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("read", zap.String("path", path), zap.String("type", mtype.String()))
	doc, err := document.Parse(URI(path), mtype.String(), body)
	if err != nil {
		return nil, err
	}
	if doc.Title == "" {
		doc.Title = filepath.Base(path)
	}
	return doc, nil
}

// list renders a directory with one numbered link per entry.
// Directories come first.
func (m *Module) list(dir string) (*document.Document, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsDir() != entries[j].IsDir() {
			return entries[i].IsDir()
		}
		return entries[i].Name() < entries[j].Name()
	})

	doc := &document.Document{
		URI:       URI(dir),
		Title:     dir,
		MediaType: "inode/directory",
		Kind:      document.KindText,
		Lines:     []string{"Index of " + dir, ""},
	}

	if parent := filepath.Dir(dir); parent != dir {
		doc.Links = append(doc.Links, URI(parent))
		doc.Lines = append(doc.Lines, fmt.Sprintf("../ [%d]", len(doc.Links)))
	}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		doc.Links = append(doc.Links, URI(filepath.Join(dir, e.Name())))
		doc.Lines = append(doc.Lines, fmt.Sprintf("%s [%d]", name, len(doc.Links)))
	}
	return doc, nil
}
