package inputbox

import (
	"errors"
	"testing"
)

type recorder struct {
	commands []string
	searches []string
	found    bool
	err      error
	out      string
	onCmd    func(line string)
}

func (r *recorder) Command(line string) (string, error) {
	r.commands = append(r.commands, line)
	if r.onCmd != nil {
		r.onCmd(line)
	}
	return r.out, r.err
}

func (r *recorder) Search(term string, forward bool) bool {
	dir := "?"
	if forward {
		dir = "/"
	}
	r.searches = append(r.searches, dir+term)
	return r.found
}

type bindingTable map[string]string

func (b bindingTable) Lookup(key string) (string, bool, bool) {
	if cmd, ok := b[key]; ok {
		return cmd, true, false
	}
	for k := range b {
		if len(k) > len(key) && k[:len(key)] == key {
			return "", false, true
		}
	}
	return "", false, false
}

func typeLine(e *Engine, line string) {
	for _, r := range line {
		e.Key(string(r))
	}
}

func submit(e *Engine, line string) {
	e.FocusIn()
	typeLine(e, line)
	e.Key("enter")
}

func TestModeOf(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
	}{
		{"", ModeNormal},
		{":", ModeCommand},
		{":open x", ModeCommand},
		{"/", ModeSearchForward},
		{"/foo", ModeSearchForward},
		{"?", ModeSearchBackward},
		{"?bar", ModeSearchBackward},
		{"abc", ModeCommand},
		{" /x", ModeCommand},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := ModeOf(tt.in); got != tt.want {
				t.Errorf("ModeOf(%q) = %s, want %s", tt.in, got, tt.want)
			}
			if again := ModeOf(tt.in); again != ModeOf(tt.in) {
				t.Errorf("ModeOf(%q) not stable", tt.in)
			}
		})
	}
}

func TestFocusTransitions(t *testing.T) {
	e := New(&recorder{}, nil)

	if e.Mode() != ModeNormal {
		t.Fatalf("initial mode = %s, want NORMAL", e.Mode())
	}

	e.FocusIn()
	if e.Mode() != ModeCommand || !e.Focused() {
		t.Errorf("after FocusIn mode = %s focused = %v", e.Mode(), e.Focused())
	}

	e.FocusOut()
	if e.Mode() != ModeNormal || e.Focused() {
		t.Errorf("after FocusOut mode = %s focused = %v", e.Mode(), e.Focused())
	}
}

func TestTyping_DerivesMode(t *testing.T) {
	e := New(&recorder{}, nil)
	e.FocusIn()

	e.Key("/")
	if e.Mode() != ModeSearchForward {
		t.Errorf("mode = %s, want SEARCH", e.Mode())
	}
	if !e.Grabbed() {
		t.Error("search mode should grab input")
	}

	e.Key("esc")
	if e.Text() != "" || e.Mode() != ModeNormal || e.Grabbed() {
		t.Errorf("after esc text=%q mode=%s grabbed=%v", e.Text(), e.Mode(), e.Grabbed())
	}

	e.FocusIn()
	e.Key("?")
	if e.Mode() != ModeSearchBackward {
		t.Errorf("mode = %s, want SEARCH BACKWARD", e.Mode())
	}
	e.Key("backspace")
	e.FocusIn()
	e.Key(":")
	e.Key("o")
	if e.Mode() != ModeCommand || e.Grabbed() {
		t.Errorf("mode = %s grabbed = %v, want COMMAND ungrabbed", e.Mode(), e.Grabbed())
	}
}

func TestBackspace_SingleCharForcesNormal(t *testing.T) {
	e := New(&recorder{}, nil)
	e.FocusIn()
	typeLine(e, "/a")

	e.Key("backspace")
	if e.Text() != "/" || e.Mode() != ModeSearchForward {
		t.Fatalf("text=%q mode=%s", e.Text(), e.Mode())
	}

	e.Key("backspace")
	if e.Text() != "" {
		t.Errorf("text = %q, want empty", e.Text())
	}
	if e.Mode() != ModeNormal || e.Grabbed() || e.Focused() {
		t.Errorf("mode=%s grabbed=%v focused=%v", e.Mode(), e.Grabbed(), e.Focused())
	}
}

func TestHistory_UpWalk(t *testing.T) {
	r := &recorder{}
	e := New(r, nil)
	submit(e, "a")
	submit(e, "b")
	submit(e, "c")

	e.FocusIn()
	want := []string{"c", "b", "a", "a"}
	for i, w := range want {
		e.Key("up")
		if e.Text() != w {
			t.Errorf("up #%d text = %q, want %q", i+1, e.Text(), w)
		}
	}
	if len(r.commands) != 0 {
		t.Errorf("walking history must not submit, got %v", r.commands)
	}
}

func TestHistory_DownWalk(t *testing.T) {
	e := New(&recorder{}, nil)
	submit(e, ":one")
	submit(e, ":two")

	e.FocusIn()
	e.Key("down")
	if e.Text() != "" || e.Cursor() != -1 {
		t.Errorf("down with no cursor: text=%q cursor=%d", e.Text(), e.Cursor())
	}

	e.Key("up")
	e.Key("up")
	if e.Text() != ":one" {
		t.Fatalf("text = %q, want :one", e.Text())
	}

	e.Key("down")
	if e.Text() != ":two" {
		t.Errorf("text = %q, want :two", e.Text())
	}

	e.Key("down")
	if e.Text() != "" || e.Cursor() != -1 {
		t.Errorf("past newest: text=%q cursor=%d", e.Text(), e.Cursor())
	}
}

func TestHistory_EmptyIsNoop(t *testing.T) {
	e := New(&recorder{}, nil)
	e.FocusIn()
	e.Key("up")
	e.Key("down")

	if e.Text() != "" || e.Cursor() != -1 {
		t.Errorf("text=%q cursor=%d", e.Text(), e.Cursor())
	}
}

func TestSubmit_Command(t *testing.T) {
	r := &recorder{}
	e := New(r, nil)
	submit(e, ":open about:blank")

	if len(r.commands) != 1 || r.commands[0] != "open about:blank" {
		t.Fatalf("commands = %v", r.commands)
	}
	if e.Text() != "" || e.Mode() != ModeNormal || e.Focused() {
		t.Errorf("after success text=%q mode=%s focused=%v", e.Text(), e.Mode(), e.Focused())
	}
	if h := e.History(); len(h) != 1 || h[0] != ":open about:blank" {
		t.Errorf("history = %v", h)
	}
}

func TestSubmit_CommandOutputShown(t *testing.T) {
	r := &recorder{out: "hello"}
	e := New(r, nil)
	submit(e, ":echo hello")

	if e.Text() != "hello" || !e.Message() || e.Failed() {
		t.Errorf("text=%q message=%v failed=%v", e.Text(), e.Message(), e.Failed())
	}
}

func TestSubmit_CommandFailure(t *testing.T) {
	r := &recorder{err: errors.New("unknown command: nope")}
	e := New(r, nil)
	submit(e, ":nope")

	if e.Text() != "unknown command: nope" {
		t.Errorf("text = %q", e.Text())
	}
	if !e.Failed() {
		t.Error("failure should set the error flag")
	}
	if e.Mode() != ModeCommand {
		t.Errorf("mode = %s, want COMMAND", e.Mode())
	}
	if h := e.History(); len(h) != 1 || h[0] != ":nope" {
		t.Errorf("history = %v", h)
	}

	e.Key("x")
	if e.Text() != "x" || e.Failed() {
		t.Errorf("typing after failure: text=%q failed=%v", e.Text(), e.Failed())
	}
}

func TestSubmit_SearchMiss(t *testing.T) {
	r := &recorder{found: false}
	e := New(r, nil)
	submit(e, "/foo")

	if e.Text() != "No matches found for: foo" {
		t.Errorf("text = %q", e.Text())
	}
	if h := e.History(); len(h) != 1 || h[0] != "/foo" {
		t.Errorf("history = %v", h)
	}
	if e.Cursor() != -1 {
		t.Errorf("cursor = %d, want -1", e.Cursor())
	}
	if len(r.searches) != 1 || r.searches[0] != "/foo" {
		t.Errorf("searches = %v", r.searches)
	}
}

func TestSubmit_SearchBackwardHit(t *testing.T) {
	r := &recorder{found: true}
	e := New(r, nil)
	submit(e, "?bar")

	if r.searches[0] != "?bar" {
		t.Errorf("searches = %v", r.searches)
	}
	if e.Text() != "" || e.Mode() != ModeNormal {
		t.Errorf("text=%q mode=%s", e.Text(), e.Mode())
	}
}

func TestSubmit_PlainLineIsNoop(t *testing.T) {
	r := &recorder{}
	e := New(r, nil)
	submit(e, "hello")

	if len(r.commands) != 0 || len(r.searches) != 0 {
		t.Errorf("plain line dispatched: %v %v", r.commands, r.searches)
	}
	if e.Text() != "" || e.Mode() != ModeNormal {
		t.Errorf("text=%q mode=%s", e.Text(), e.Mode())
	}
	if h := e.History(); len(h) != 1 || h[0] != "hello" {
		t.Errorf("history = %v", h)
	}
}

func TestSubmit_CommandRefillsBox(t *testing.T) {
	r := &recorder{}
	e := New(r, nil)
	r.onCmd = func(string) { e.Prompt(":open ") }

	submit(e, ":prompt :open ")

	if e.Text() != ":open " || !e.Focused() || e.Mode() != ModeCommand {
		t.Errorf("text=%q focused=%v mode=%s", e.Text(), e.Focused(), e.Mode())
	}
}

func TestCompletionHook(t *testing.T) {
	e := New(&recorder{}, nil)
	e.FocusIn()
	typeLine(e, ":tabo")

	e.Key("tab")
	if e.Text() != ":tabo" {
		t.Errorf("tab without hook changed text to %q", e.Text())
	}

	var reversed bool
	e.SetCompletion(func(text string, reverse bool) (string, bool) {
		reversed = reverse
		return ":tabopen ", true
	})
	e.Key("shift+tab")
	if e.Text() != ":tabopen " || !reversed {
		t.Errorf("text=%q reverse=%v", e.Text(), reversed)
	}
}

func TestNormalMode_Bindings(t *testing.T) {
	r := &recorder{}
	e := New(r, bindingTable{"d": "tabclose", "gt": "tabnext"})

	if !e.Key("d") {
		t.Error("bound key not consumed")
	}
	if e.Key("x") {
		t.Error("unbound key consumed")
	}
	if !e.Key("g") {
		t.Error("sequence prefix not consumed")
	}
	e.Key("gt")

	want := []string{"tabclose", "tabnext"}
	if len(r.commands) != len(want) {
		t.Fatalf("commands = %v, want %v", r.commands, want)
	}
	for i := range want {
		if r.commands[i] != want[i] {
			t.Errorf("command[%d] = %q, want %q", i, r.commands[i], want[i])
		}
	}
	if len(e.History()) != 0 {
		t.Error("bound commands must not enter history")
	}
}

func TestNormalMode_BindingError(t *testing.T) {
	r := &recorder{err: errors.New("boom")}
	e := New(r, bindingTable{"d": "tabclose"})

	e.Key("d")
	if e.Text() != "boom" || !e.Failed() {
		t.Errorf("text=%q failed=%v", e.Text(), e.Failed())
	}

	e.Key("esc")
	if e.Text() != "" {
		t.Errorf("esc should clear the message, text=%q", e.Text())
	}
}

func TestNonPrintableIgnored(t *testing.T) {
	e := New(&recorder{}, nil)
	e.FocusIn()

	if e.Key("ctrl+c") {
		t.Error("ctrl+c should not be consumed by the box")
	}
	if !e.Key("space") || e.Text() != " " {
		t.Errorf("space: text = %q", e.Text())
	}
}
