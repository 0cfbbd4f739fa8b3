package www

import (
	"github.com/HFT/cream-browser/internal/modules/document"
)

// View is one web page.
type View struct {
	document.View
	module *Module
}

// Load fetches uri in the background. Binary resources are offered to
// the owner as downloads instead of being displayed.
func (v *View) Load(uri string) {
	ctx := v.Begin(uri)
	v.SetProgress(10)

	go func() {
		resp, err := v.module.Get(ctx, uri)
		if err != nil {
			v.Deliver(ctx, func() { v.Fail(err) })
			return
		}
		v.Deliver(ctx, func() { v.SetProgress(60) })

		doc, err := document.Parse(resp.URI, resp.ContentType, resp.Body)
		v.Deliver(ctx, func() {
			if err != nil {
				v.Fail(err)
				return
			}
			v.Show(doc)
			if doc.Kind == document.KindBinary && v.RequestDownload(doc.URI) {
				v.SetStatus("Download requested: " + doc.URI)
			}
		})
	}()
}
