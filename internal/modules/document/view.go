package document

import (
	"context"

	"github.com/HFT/cream-browser/internal/view"
)

// View shows a Document. Protocol views embed it and implement Load on
// top of Begin, Deliver, Show and Fail.
type View struct {
	view.Base

	doc    *Document
	source bool
	cancel context.CancelFunc
}

// Init must be called once the View is at its final address.
func (v *View) Init(p view.Poster) {
	v.Base = view.NewBase(p)
	v.OnClose(v.Stop)
}

// Begin starts a new load of uri. The returned context is cancelled by
// the next Begin and by Close.
func (v *View) Begin(uri string) context.Context {
	v.Stop()
	v.doc = nil
	v.source = false
	v.Reset(uri)

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	v.SetStatus("Loading...")
	return ctx
}

// Stop cancels the load in flight.
func (v *View) Stop() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
}

// Deliver posts fn to the UI goroutine unless the load that owns ctx has
// been superseded by then. Safe to call from any goroutine.
func (v *View) Deliver(ctx context.Context, fn func()) {
	v.Post(func() {
		if ctx.Err() != nil {
			return
		}
		fn()
	})
}

// Show displays doc and finishes the load.
func (v *View) Show(doc *Document) {
	v.doc = doc
	if doc.URI != "" && doc.URI != v.URI() {
		v.SetURI(doc.URI)
	}
	v.SetTitle(doc.Title)
	v.SetLines(doc.Lines)
	v.SetStatus(doc.Summary())
	v.Finish()
}

// Fail displays err and finishes the load.
func (v *View) Fail(err error) {
	v.doc = nil
	v.SetLines([]string{"Error: " + err.Error()})
	v.SetStatus(err.Error())
	v.Finish()
}

// Document is the document on display, nil while loading or after a
// failure.
func (v *View) Document() *Document { return v.doc }

func (v *View) Links() []string {
	if v.doc == nil {
		return nil
	}
	return v.doc.Links
}

func (v *View) Query(expr string) (string, error) {
	if v.doc == nil {
		return "", ErrNotJSON
	}
	return v.doc.Query(expr)
}

func (v *View) SourceMode() bool { return v.source }

// SetSourceMode switches between the rendered text and the highlighted
// source. It does nothing for documents without a source.
func (v *View) SetSourceMode(on bool) {
	if v.doc == nil || v.doc.Source == "" || on == v.source {
		return
	}
	v.source = on
	if on {
		v.SetLines(v.doc.SourceLines())
	} else {
		v.SetLines(v.doc.Lines)
	}
}
