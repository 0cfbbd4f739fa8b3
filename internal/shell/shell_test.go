package shell

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HFT/cream-browser/internal/config"
	"github.com/HFT/cream-browser/internal/history"
	"github.com/HFT/cream-browser/internal/keybinds"
	"github.com/HFT/cream-browser/internal/script"
	"github.com/HFT/cream-browser/internal/session"
)

func testConfig() *script.Config {
	return &script.Config{
		File: "rc.js",
		Protocols: []script.Protocol{
			{Prefix: "about:", Module: "about"},
			{Prefix: "file://", Module: "file"},
			{Prefix: "gopher://"},
			{Prefix: "http://", Module: "www"},
		},
	}
}

func newTestShell(t *testing.T, configure func(*Options)) *Shell {
	t.Helper()

	settings := config.DefaultSettings()
	settings.Homepage = "about:version"
	opts := Options{
		Config:       testConfig(),
		Settings:     settings,
		DownloadsDir: t.TempDir(),
	}
	if configure != nil {
		configure(&opts)
	}

	s, err := New(opts)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(s.Shutdown)
	return s
}

// drainUntil runs posted callbacks until cond holds.
func drainUntil(t *testing.T, s *Shell, cond func() bool) {
	t.Helper()

	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case <-s.Loop().Ready():
			s.Loop().Drain()
		case <-deadline:
			t.Fatal("condition not reached")
		}
	}
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name      string
		protocols []script.Protocol
		want      error
	}{
		{"only reserved prefixes", []script.Protocol{{Prefix: "gopher://"}}, ErrNoProtocols},
		{"no protocols", nil, ErrNoProtocols},
		{"unknown module", []script.Protocol{{Prefix: "x://", Module: "x"}}, ErrUnknownModule},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(Options{Config: &script.Config{Protocols: tt.protocols}})
			if !errors.Is(err, tt.want) {
				t.Errorf("New() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_OpensHomepage(t *testing.T) {
	s := newTestShell(t, nil)

	if s.Tree().Len() != 1 {
		t.Fatalf("panes = %d, want 1", s.Tree().Len())
	}
	tb := s.Focused()
	if tb.URI() != "about:version" {
		t.Errorf("URI() = %q", tb.URI())
	}
	if !strings.Contains(tb.View().Content(), "cream-browser") {
		t.Errorf("Content() = %q", tb.View().Content())
	}
	if !strings.Contains(tb.View().Content(), "Protocols: about: file:// gopher:// http://") {
		t.Errorf("version page does not list the protocols: %q", tb.View().Content())
	}
}

func TestNew_UnresolvableHomepage(t *testing.T) {
	settings := config.DefaultSettings()
	settings.Homepage = "nothing-here"
	cfg := &script.Config{Protocols: []script.Protocol{{Prefix: "about:", Module: "about"}}}

	if _, err := New(Options{Config: cfg, Settings: settings}); err == nil {
		t.Fatal("expected an error for a homepage no module handles")
	}
}

func TestKeysDriveCommands(t *testing.T) {
	s := newTestShell(t, nil)
	input := s.Focused().Input()

	if !input.Key("o") {
		t.Fatal("o was not consumed")
	}
	if !input.Focused() || input.Text() != ":open " {
		t.Fatalf("after o: focused=%v text=%q", input.Focused(), input.Text())
	}
	for _, r := range "about:commands" {
		input.Key(string(r))
	}
	input.Key("enter")

	if got := s.Focused().URI(); got != "about:commands" {
		t.Errorf("URI() = %q, want about:commands", got)
	}
	if input.Focused() {
		t.Error("input box kept focus after a successful command")
	}
	if h := input.History(); len(h) != 1 || h[0] != ":open about:commands" {
		t.Errorf("History() = %v", h)
	}
}

func TestSearchUsesFocusedView(t *testing.T) {
	s := newTestShell(t, nil)
	input := s.Focused().Input()

	input.Prompt("/Modules")
	input.Key("enter")
	if input.Failed() {
		t.Fatalf("search failed: %q", input.Text())
	}

	input.Prompt("/no such text")
	input.Key("enter")
	if !input.Failed() || input.Text() != "No matches found for: no such text" {
		t.Errorf("failed=%v text=%q", input.Failed(), input.Text())
	}
}

func TestBindings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keybinds.json")
	overlay := `{
		// overlay
		"normal": {"x": "tabclose", "gh": "open about:history",},
	}`
	if err := os.WriteFile(path, []byte(overlay), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestShell(t, func(o *Options) {
		o.Config.Bindings = []script.Binding{
			{Context: "normal", Key: "gh", Command: "open about:version"},
			{Context: "normal", Key: "gH", Command: "tabopen about:about"},
			{Context: "normal", Key: "d"},
		}
		o.KeybindsFile = path
	})

	tests := []struct {
		key  string
		want keybinds.Action
		ok   bool
	}{
		{"gh", "open about:history", true},
		{"gH", "tabopen about:about", true},
		{"x", "tabclose", true},
		{"d", "", false},
		{"r", keybinds.ActionReload, true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := s.Bindings().Match(keybinds.ContextNormal, tt.key)
			if ok != tt.ok || got != tt.want {
				t.Errorf("Match(%q) = %q, %v; want %q, %v", tt.key, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestCall(t *testing.T) {
	s := newTestShell(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Loop().Run(ctx)

	out, err := s.Call(ctx, "echo hello there")
	if err != nil || out != "hello there" {
		t.Fatalf("Call(echo) = %q, %v", out, err)
	}

	if _, err := s.Call(ctx, "tabopen about:about"); err != nil {
		t.Fatalf("Call(tabopen) error = %v", err)
	}
	n, err := s.Call(ctx, "echo done")
	if err != nil || n != "done" {
		t.Fatalf("Call(echo) = %q, %v", n, err)
	}
	if got := s.Tree().Focused().Len(); got != 2 {
		t.Errorf("tabs = %d, want 2", got)
	}

	if _, err := s.Call(ctx, "frobnicate"); err == nil {
		t.Error("expected an error for an unknown command")
	}
}

func TestCall_ContextDone(t *testing.T) {
	s := newTestShell(t, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := s.Call(ctx, "echo nobody drains"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Call() error = %v, want deadline exceeded", err)
	}
}

func TestOpenRecordsHistory(t *testing.T) {
	store, err := history.NewStore(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })

	dir := t.TempDir()
	page := filepath.Join(dir, "page.txt")
	if err := os.WriteFile(page, []byte("hello\n"), 0644); err != nil {
		t.Fatal(err)
	}

	s := newTestShell(t, func(o *Options) { o.History = store })
	if err := s.Open([]string{"file://" + page, "about:about"}); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	g := s.Tree().Focused()
	if g.Len() != 2 {
		t.Fatalf("tabs = %d, want 2", g.Len())
	}
	first := g.Tabs()[0]
	drainUntil(t, s, func() bool { return first.Progress() == 100 })

	visits, err := store.Search("page.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(visits) != 1 || visits[0].Title != "page.txt" {
		t.Errorf("visits = %+v", visits)
	}
	if n, _ := store.Count(); n != 1 {
		t.Errorf("Count() = %d, want 1 (about: pages are not recorded)", n)
	}

	out, err := s.Dispatch("history page")
	if err != nil || !strings.Contains(out, "page.txt") {
		t.Errorf("history = %q, %v", out, err)
	}
}

func TestDownloadHook(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write([]byte{1, 2, 3})
	}))
	defer srv.Close()

	dir := t.TempDir()
	s := newTestShell(t, func(o *Options) { o.DownloadsDir = dir })

	if err := s.Open([]string{srv.URL + "/blob.bin"}); err != nil {
		t.Fatal(err)
	}
	input := s.Focused().Input()
	drainUntil(t, s, func() bool { return strings.HasPrefix(input.Text(), "Downloaded ") })

	data, err := os.ReadFile(filepath.Join(dir, "blob.bin"))
	if err != nil {
		t.Fatal(err)
	}
	if len(data) != 3 {
		t.Errorf("downloaded %d bytes, want 3", len(data))
	}
}

func TestShutdownSavesSession(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	sessions := session.NewManager(path)

	settings := config.DefaultSettings()
	settings.Homepage = "about:about"
	s, err := New(Options{Config: testConfig(), Settings: settings, Sessions: sessions})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Dispatch("vsplit"); err != nil {
		t.Fatal(err)
	}
	s.Shutdown()

	snap, err := sessions.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if snap.Panes() != 2 || snap.TabCount() != 2 {
		t.Errorf("panes = %d, tabs = %d", snap.Panes(), snap.TabCount())
	}
}

func TestDump(t *testing.T) {
	s := newTestShell(t, nil)

	data, err := s.Dump()
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{"homepage: about:version", "- gopher://", "file: rc.js", "ctrl+c: quit"} {
		if !strings.Contains(out, want) {
			t.Errorf("dump does not contain %q:\n%s", want, out)
		}
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name        string
		bindings    []script.Binding
		wantErr     string
		wantWarning string
	}{
		{
			name: "clean",
		},
		{
			name:     "unknown command",
			bindings: []script.Binding{{Context: "normal", Key: "x", Command: "frobnicate"}},
			wantErr:  `unknown command "frobnicate"`,
		},
		{
			name:        "shadowed global",
			bindings:    []script.Binding{{Context: "normal", Key: "ctrl+c", Command: "echo hi"}},
			wantWarning: "shadows global binding",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Bindings = tt.bindings

			dump, warnings, err := Check(Options{Config: cfg})
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("Check() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			var got struct {
				Protocols []string `yaml:"protocols"`
			}
			if err := yaml.Unmarshal(dump, &got); err != nil {
				t.Fatalf("dump is not YAML: %v", err)
			}
			want := []string{"about:", "file://", "gopher://", "http://"}
			if strings.Join(got.Protocols, " ") != strings.Join(want, " ") {
				t.Errorf("dump protocols = %v, want %v", got.Protocols, want)
			}

			joined := strings.Join(warnings, "\n")
			if tt.wantWarning == "" && joined != "" {
				t.Errorf("unexpected warnings:\n%s", joined)
			}
			if tt.wantWarning != "" && !strings.Contains(joined, tt.wantWarning) {
				t.Errorf("warnings %q do not contain %q", joined, tt.wantWarning)
			}
		})
	}
}

func TestCheck_NoProtocols(t *testing.T) {
	_, _, err := Check(Options{Config: &script.Config{}})
	if !errors.Is(err, ErrNoProtocols) {
		t.Errorf("Check() error = %v, want ErrNoProtocols", err)
	}
}
