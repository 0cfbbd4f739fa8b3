// Package control implements the control socket: a unix stream socket
// on which every newline-terminated line is run as a command and answered
// with one line.
package control

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrInUse is returned by Listen when another process serves the socket.
var ErrInUse = errors.New("control socket already in use")

// MaxLineLength bounds a single command line.
const MaxLineLength = 64 * 1024

// Handler runs one command line. It is called from connection
// goroutines, so it must marshal onto the UI goroutine itself.
type Handler func(ctx context.Context, line string) (string, error)

// Server accepts control connections.
type Server struct {
	path    string
	handler Handler
	logger  *zap.Logger

	listener net.Listener
	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	closed   bool
	wg       sync.WaitGroup
}

// NewServer creates a server for the socket at path.
func NewServer(path string, h Handler, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		path:    path,
		handler: h,
		logger:  logger.Named("control"),
		conns:   make(map[net.Conn]struct{}),
	}
}

// Path is the socket path.
func (s *Server) Path() string { return s.path }

// Listen binds the socket. A stale socket file left by a dead process is
// replaced; a live one is an ErrInUse.
func (s *Server) Listen() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("failed to create socket directory: %w", err)
	}
	if _, err := os.Stat(s.path); err == nil {
		if conn, err := net.DialTimeout("unix", s.path, time.Second); err == nil {
			conn.Close()
			return fmt.Errorf("%w: %s", ErrInUse, s.path)
		}
		if err := os.Remove(s.path); err != nil {
			return fmt.Errorf("failed to remove stale socket: %w", err)
		}
	}

	ln, err := net.Listen("unix", s.path)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.path, err)
	}
	if err := os.Chmod(s.path, 0600); err != nil {
		ln.Close()
		return fmt.Errorf("failed to restrict socket permissions: %w", err)
	}
	s.listener = ln
	s.logger.Info("listening", zap.String("path", s.path))
	return nil
}

// Serve accepts connections until ctx is done or Close is called. It
// returns nil on a clean shutdown.
func (s *Server) Serve(ctx context.Context) error {
	if s.listener == nil {
		return errors.New("control: Serve called before Listen")
	}

	stop := context.AfterFunc(ctx, func() { s.Close() })
	defer stop()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isClosed() {
				s.wg.Wait()
				return nil
			}
			return fmt.Errorf("accept failed: %w", err)
		}

		if !s.track(conn) {
			conn.Close()
			continue
		}
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.untrack(conn)
			s.serveConn(ctx, conn)
		}()
	}
}

// Close stops accepting, drops open connections and removes the socket
// file.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	for c := range s.conns {
		c.Close()
	}
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
		os.Remove(s.path)
	}
	return err
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) track(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.conns[c] = struct{}{}
	return true
}

func (s *Server) untrack(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	c.Close()
}

// serveConn answers complete lines until EOF. A trailing fragment
// without a newline is never run.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	r := bufio.NewReaderSize(conn, 4096)
	w := bufio.NewWriter(conn)

	for {
		line, err := readLine(r)
		if err != nil {
			if !errors.Is(err, io.EOF) && !s.isClosed() {
				s.logger.Debug("connection ended", zap.Error(err))
			}
			return
		}
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		reply := s.run(ctx, line)
		if _, err := w.WriteString(Escape(reply) + "\n"); err != nil {
			return
		}
		if err := w.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) run(ctx context.Context, line string) string {
	out, err := s.handler(ctx, line)
	if err != nil {
		s.logger.Debug("command failed", zap.String("line", line), zap.Error(err))
		return "Error: " + err.Error()
	}
	s.logger.Debug("command", zap.String("line", line))
	return out
}

var errLineTooLong = errors.New("line too long")

// readLine returns the next newline-terminated line without the newline.
// A final line missing its newline is reported as io.EOF.
func readLine(r *bufio.Reader) (string, error) {
	var b strings.Builder
	for {
		chunk, err := r.ReadSlice('\n')
		b.Write(chunk)
		if b.Len() > MaxLineLength {
			return "", errLineTooLong
		}
		switch {
		case err == nil:
			return strings.TrimSuffix(b.String(), "\n"), nil
		case errors.Is(err, bufio.ErrBufferFull):
			continue
		default:
			return "", err
		}
	}
}

// Escape turns a multi-line reply into one line. Backslashes and
// newlines are escaped so Unescape can restore the original.
func Escape(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, "\n", `\n`)
}

// Unescape reverses Escape.
func Unescape(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) {
			switch s[i+1] {
			case 'n':
				b.WriteByte('\n')
				i++
				continue
			case '\\':
				b.WriteByte('\\')
				i++
				continue
			}
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
