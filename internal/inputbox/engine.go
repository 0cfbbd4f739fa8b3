// Package inputbox implements the single-line modal input box: mode
// tracking, command history, and submission of commands and searches.
package inputbox

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Submitter executes what the box submits.
type Submitter interface {
	// Command runs a command line without its leading ':'.
	Command(line string) (string, error)
	// Search looks for term in the focused view.
	Search(term string, forward bool) bool
}

// Bindings resolves keys pressed in Normal mode to command lines.
// partial is true when key starts a longer sequence.
type Bindings interface {
	Lookup(key string) (command string, matched bool, partial bool)
}

// CompletionFunc completes text. reverse is set for shift+tab.
type CompletionFunc func(text string, reverse bool) (string, bool)

// Engine is the input box state machine. It is not safe for concurrent
// use; every method runs on the UI goroutine.
type Engine struct {
	text    string
	mode    Mode
	focused bool
	grabbed bool

	// message is set while text shows a result or error instead of
	// an editable line.
	message bool
	failed  bool

	history []string // most recent first
	cursor  int      // -1 when not walking history

	revision int

	submitter Submitter
	bindings  Bindings
	complete  CompletionFunc
}

// New creates an engine submitting to s. b may be nil.
func New(s Submitter, b Bindings) *Engine {
	return &Engine{
		mode:      ModeNormal,
		cursor:    -1,
		submitter: s,
		bindings:  b,
	}
}

func (e *Engine) Text() string  { return e.text }
func (e *Engine) Mode() Mode    { return e.mode }
func (e *Engine) Focused() bool { return e.focused }
func (e *Engine) Grabbed() bool { return e.grabbed }
func (e *Engine) Failed() bool  { return e.failed }
func (e *Engine) Message() bool { return e.message }
func (e *Engine) Cursor() int   { return e.cursor }

// History returns a copy of the submitted lines, most recent first.
func (e *Engine) History() []string {
	return append([]string(nil), e.history...)
}

// SetBindings replaces the Normal mode key table.
func (e *Engine) SetBindings(b Bindings) { e.bindings = b }

// SetSubmitter replaces the submit target.
func (e *Engine) SetSubmitter(s Submitter) { e.submitter = s }

// SetCompletion installs the hook run on tab and shift+tab.
func (e *Engine) SetCompletion(fn CompletionFunc) { e.complete = fn }

// FocusIn gives the box keyboard focus and enters Command mode.
func (e *Engine) FocusIn() {
	e.focused = true
	e.mode = ModeCommand
}

// FocusOut drops keyboard focus and returns to Normal mode.
func (e *Engine) FocusOut() {
	e.focused = false
	e.grabbed = false
	e.mode = ModeNormal
	e.cursor = -1
}

// Prompt focuses the box and fills it with text.
func (e *Engine) Prompt(text string) {
	e.FocusIn()
	e.setLine(text)
}

// Show displays msg in the box without changing focus. Errors are
// rendered with the error colours.
func (e *Engine) Show(msg string, isError bool) {
	e.revision++
	e.text = msg
	e.message = msg != ""
	e.failed = isError && msg != ""
	e.grabbed = false
}

// Key feeds one key press, named the way bubbletea names keys, and
// reports whether the engine consumed it.
func (e *Engine) Key(key string) bool {
	if !e.focused {
		return e.normalKey(key)
	}

	switch key {
	case "esc":
		e.clearLine()
		e.FocusOut()
		return true

	case "up":
		e.walkHistory(1)
		return true

	case "down":
		e.walkHistory(-1)
		return true

	case "tab", "shift+tab":
		if e.complete != nil && !e.message {
			if text, ok := e.complete(e.text, key == "shift+tab"); ok {
				e.setLine(text)
			}
		}
		return true

	case "backspace":
		e.backspace()
		return true

	case "enter":
		e.submit()
		return true

	case "space":
		key = " "
	}

	r, size := utf8.DecodeRuneInString(key)
	if size != len(key) || !unicode.IsPrint(r) {
		return false
	}
	if e.message {
		e.clearLine()
	}
	e.setLine(e.text + key)
	return true
}

func (e *Engine) normalKey(key string) bool {
	if key == "esc" && e.message {
		e.clearLine()
		return true
	}
	if e.bindings == nil {
		return false
	}

	command, matched, partial := e.bindings.Lookup(key)
	if partial {
		return true
	}
	if !matched {
		return false
	}

	if e.message {
		e.clearLine()
	}

	out, err := e.submitter.Command(command)
	switch {
	case err != nil:
		e.Show(err.Error(), true)
	case out != "" && !e.focused:
		e.Show(out, false)
	}
	return true
}

func (e *Engine) setLine(text string) {
	e.revision++
	e.text = text
	e.message = false
	e.failed = false

	if text != "" {
		e.mode = ModeOf(text)
	} else if !e.focused {
		e.mode = ModeNormal
	}
	e.grabbed = e.mode.IsSearch()
}

func (e *Engine) clearLine() {
	e.revision++
	e.text = ""
	e.message = false
	e.failed = false
}

// walkHistory moves the cursor towards older (+1) or newer (-1) entries.
// Walking past the newest entry clears the line; the oldest entry is
// sticky.
func (e *Engine) walkHistory(step int) {
	if len(e.history) == 0 {
		return
	}

	next := e.cursor + step
	switch {
	case next >= len(e.history):
		return
	case next < -1:
		return
	case next == -1:
		e.cursor = -1
		e.setLine("")
		return
	}

	e.cursor = next
	e.setLine(e.history[next])
}

func (e *Engine) backspace() {
	if e.message {
		e.clearLine()
		return
	}

	if utf8.RuneCountInString(e.text) <= 1 {
		e.clearLine()
		e.FocusOut()
		return
	}

	_, size := utf8.DecodeLastRuneInString(e.text)
	e.setLine(e.text[:len(e.text)-size])
}

func (e *Engine) submit() {
	if e.message {
		e.clearLine()
		e.FocusOut()
		return
	}

	line := e.text
	if line == "" {
		return
	}

	mode := ModeOf(line)
	e.history = append([]string{line}, e.history...)
	e.cursor = -1
	e.clearLine()
	rev := e.revision

	switch mode {
	case ModeCommand:
		if line[0] != ':' {
			e.FocusOut()
			return
		}
		out, err := e.submitter.Command(line[1:])
		if err != nil {
			e.fail(mode, err.Error())
			return
		}
		if e.revision != rev {
			// the command refilled the box (prompt)
			return
		}
		e.FocusOut()
		if out != "" {
			e.Show(out, false)
		}

	case ModeSearchForward, ModeSearchBackward:
		term := line[1:]
		if !e.submitter.Search(term, mode == ModeSearchForward) {
			e.fail(mode, fmt.Sprintf("No matches found for: %s", term))
			return
		}
		e.FocusOut()
	}
}

// fail keeps the submit-time mode and shows msg in place of the line.
func (e *Engine) fail(mode Mode, msg string) {
	e.Show(msg, true)
	e.mode = mode
}
