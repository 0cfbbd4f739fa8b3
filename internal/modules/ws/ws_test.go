package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/HFT/cream-browser/internal/view"
)

func newEchoServer(t *testing.T) string {
	t.Helper()

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte("hello "+r.UserAgent()))
		for {
			mt, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if err := conn.WriteMessage(mt, append([]byte("echo: "), data...)); err != nil {
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

// loop queues callbacks for the test goroutine to run.
type loop chan func()

var _ view.Poster = loop(nil)

func (l loop) Post(fn func()) { l <- fn }

// runUntil drains posted callbacks until cond holds.
func (l loop) runUntil(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(5 * time.Second)
	for !cond() {
		select {
		case fn := <-l:
			fn()
		case <-deadline:
			t.Fatal("timed out")
		}
	}
}

func TestConnectAndSend(t *testing.T) {
	uri := newEchoServer(t)
	l := make(loop, 16)
	v := New(Options{UserAgent: "tester"}).NewView(l).(*View)

	if err := v.Send("early"); err != ErrNotConnected {
		t.Errorf("Send() before connecting error = %v", err)
	}

	v.Load(uri)
	l.runUntil(t, func() bool { return len(v.Lines()) >= 2 })

	if v.Title() != uri || v.Progress() != 100 {
		t.Errorf("Title() = %q, Progress() = %d", v.Title(), v.Progress())
	}
	if got := v.Lines()[1]; got != "< hello tester" {
		t.Errorf("greeting line = %q", got)
	}

	if err := v.Send("ping"); err != nil {
		t.Fatalf("Send() error = %v", err)
	}
	l.runUntil(t, func() bool { return len(v.Lines()) >= 4 })

	want := []string{"Connected to " + uri, "< hello tester", "> ping", "< echo: ping"}
	for i, line := range want {
		if v.Lines()[i] != line {
			t.Errorf("line %d = %q, want %q", i, v.Lines()[i], line)
		}
	}
	if v.Status() != "Connected, 2 received" {
		t.Errorf("Status() = %q", v.Status())
	}

	v.Close()
	if err := v.Send("late"); err != ErrNotConnected {
		t.Errorf("Send() after Close error = %v", err)
	}
}

func TestConnectFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	l := make(loop, 4)
	v := New(Options{}).NewView(l)
	v.Load("ws" + strings.TrimPrefix(srv.URL, "http"))
	l.runUntil(t, func() bool { return v.Progress() == 100 })

	if !strings.Contains(v.Status(), "HTTP 404") {
		t.Errorf("Status() = %q", v.Status())
	}
}
