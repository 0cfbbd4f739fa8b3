package about

import (
	"reflect"
	"testing"

	"github.com/HFT/cream-browser/internal/view"
)

func TestLoad(t *testing.T) {
	m := New(map[string]Page{
		"version": func() []string { return []string{"cream-browser 1.0"} },
	})

	tests := []struct {
		uri     string
		title   string
		content string
		status  string
	}{
		{"about:blank", "", "", ""},
		{"about:version", "about:version", "cream-browser 1.0", ""},
		{"about:about", "about:about", "# about: pages\n\nabout:about\nabout:blank\nabout:version", ""},
		{"about:nope", "", "Unknown page: about:nope\n\nSee about:about for the list.", "Unknown page"},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			v := m.NewView(view.Immediate)

			var finished bool
			v.Subscribe(func(ev view.Event) {
				if ev.Kind == view.LoadFinished {
					finished = true
				}
			})
			v.Load(tt.uri)

			if !finished || v.Progress() != 100 {
				t.Errorf("load not finished: progress %d", v.Progress())
			}
			if v.URI() != tt.uri {
				t.Errorf("URI() = %q", v.URI())
			}
			if v.Title() != tt.title {
				t.Errorf("Title() = %q, want %q", v.Title(), tt.title)
			}
			if v.Content() != tt.content {
				t.Errorf("Content() = %q, want %q", v.Content(), tt.content)
			}
			if v.Status() != tt.status {
				t.Errorf("Status() = %q, want %q", v.Status(), tt.status)
			}
		})
	}
}

func TestNames(t *testing.T) {
	got := New(nil).Names()
	if want := []string{"about", "blank"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}
