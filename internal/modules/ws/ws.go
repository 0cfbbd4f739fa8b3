// Package ws shows a websocket connection as a page: every received
// message is a line, and :send writes to the peer.
package ws

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/HFT/cream-browser/internal/view"
)

// ErrNotConnected is returned by Send before the handshake completes or
// after the peer went away.
var ErrNotConnected = errors.New("not connected")

const handshakeTimeout = 45 * time.Second

type Options struct {
	UserAgent string
	Logger    *zap.Logger
}

type Module struct {
	dialer    *websocket.Dialer
	userAgent string
	logger    *zap.Logger
}

func New(opts Options) *Module {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Module{
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		userAgent: opts.UserAgent,
		logger:    logger.Named("ws"),
	}
}

func (m *Module) Name() string { return "ws" }

func (m *Module) NewView(p view.Poster) view.View {
	v := &View{Base: view.NewBase(p), module: m}
	v.OnClose(v.stop)
	return v
}

// View is one connection. conn is only touched on the UI goroutine.
type View struct {
	view.Base
	module *Module

	conn     *websocket.Conn
	cancel   context.CancelFunc
	received int
}

func (v *View) stop() {
	if v.cancel != nil {
		v.cancel()
		v.cancel = nil
	}
	v.conn = nil
}

// Load dials uri. The connection lives until the next Load or Close.
func (v *View) Load(uri string) {
	v.stop()
	v.Reset(uri)
	v.received = 0
	v.SetStatus("Connecting...")

	ctx, cancel := context.WithCancel(context.Background())
	v.cancel = cancel
	go v.run(ctx, uri)
}

func (v *View) run(ctx context.Context, uri string) {
	header := http.Header{}
	if v.module.userAgent != "" {
		header.Set("User-Agent", v.module.userAgent)
	}

	conn, resp, err := v.module.dialer.DialContext(ctx, uri, header)
	if err != nil {
		if resp != nil {
			err = fmt.Errorf("connection failed (HTTP %d): %w", resp.StatusCode, err)
		} else {
			err = fmt.Errorf("connection failed: %w", err)
		}
		v.deliver(ctx, func() {
			v.SetLines([]string{"Error: " + err.Error()})
			v.SetStatus(err.Error())
			v.Finish()
		})
		return
	}

	// The connection goes away with the load that opened it.
	go func() {
		<-ctx.Done()
		conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.Close()
	}()

	v.deliver(ctx, func() {
		v.conn = conn
		v.SetTitle(uri)
		v.SetLines([]string{"Connected to " + uri})
		v.SetStatus("Connected")
		v.Finish()
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			v.module.logger.Debug("connection ended", zap.String("uri", uri), zap.Error(err))
			v.deliver(ctx, func() {
				v.conn = nil
				v.AppendLine("Disconnected: " + err.Error())
				v.SetStatus("Disconnected")
			})
			return
		}
		msg := string(data)
		v.deliver(ctx, func() {
			v.received++
			v.AppendLine("< " + msg)
			v.SetStatus(fmt.Sprintf("Connected, %d received", v.received))
		})
	}
}

func (v *View) deliver(ctx context.Context, fn func()) {
	v.Post(func() {
		if ctx.Err() != nil {
			return
		}
		fn()
	})
}

// Send writes msg as a text message and echoes it into the page.
func (v *View) Send(msg string) error {
	if v.conn == nil {
		return ErrNotConnected
	}
	if err := v.conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		return fmt.Errorf("send failed: %w", err)
	}
	v.AppendLine("> " + msg)
	return nil
}
