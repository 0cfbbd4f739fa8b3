package control

import (
	"bufio"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
)

// DefaultDialTimeout bounds connecting to the socket.
const DefaultDialTimeout = 5 * time.Second

// Client is a connection to a running browser.
type Client struct {
	conn net.Conn
	r    *bufio.Reader
}

// Dial connects to the socket at path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, DefaultDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", path, err)
	}
	return &Client{conn: conn, r: bufio.NewReader(conn)}, nil
}

// Send runs one command and returns its reply.
func (c *Client) Send(line string) (string, error) {
	if strings.ContainsAny(line, "\r\n") {
		return "", errors.New("command must be a single line")
	}
	if _, err := c.conn.Write([]byte(line + "\n")); err != nil {
		return "", fmt.Errorf("failed to send command: %w", err)
	}
	reply, err := c.r.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read reply: %w", err)
	}
	return Unescape(strings.TrimSuffix(reply, "\n")), nil
}

func (c *Client) Close() error { return c.conn.Close() }

// Send connects to path, runs one command and disconnects.
func Send(path, line string) (string, error) {
	c, err := Dial(path)
	if err != nil {
		return "", err
	}
	defer c.Close()
	return c.Send(line)
}
