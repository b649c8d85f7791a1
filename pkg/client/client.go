// Package client talks to a wordrank server over TCP.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bastiangx/wordrank/pkg/server"
	"github.com/bastiangx/wordrank/pkg/suggest"
	"github.com/vmihailenco/msgpack/v5"
)

// ServerError is an error reported by the server for one request.
type ServerError struct {
	Code    int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// ErrClosed is returned by calls on a client after Close.
var ErrClosed = errors.New("client closed")

// Client sends one request at a time over a single connection.
//
// A request that fails after it was written leaves its response in flight,
// so the connection is dropped. Clients made by Dial reconnect on the next
// call; clients made by New stay unusable.
type Client struct {
	addr string
	conn net.Conn
	bw   *bufio.Writer
	enc  *msgpack.Encoder
	dec  *msgpack.Decoder

	mu     sync.Mutex
	seq    uint64
	closed bool
}

// Dial connects to addr.
func Dial(ctx context.Context, addr string) (*Client, error) {
	c := &Client{addr: addr}
	if err := c.connect(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// New wraps an established connection.
func New(conn net.Conn) *Client {
	c := &Client{}
	c.attach(conn)
	return c
}

func (c *Client) attach(conn net.Conn) {
	c.conn = conn
	c.bw = bufio.NewWriter(conn)
	c.enc = msgpack.NewEncoder(c.bw)
	c.dec = msgpack.NewDecoder(bufio.NewReader(conn))
}

func (c *Client) connect(ctx context.Context) error {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return fmt.Errorf("dialing %s: %w", c.addr, err)
	}
	c.attach(conn)
	return nil
}

// drop closes a connection whose stream can no longer be trusted.
func (c *Client) drop() {
	c.conn.Close()
	c.conn = nil
}

// Close closes the connection.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// do sends req and waits for its response. ctx's deadline bounds the round trip.
func (c *Client) do(ctx context.Context, req server.Request) (*server.Response, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrClosed
	}
	if c.conn == nil {
		if c.addr == "" {
			return nil, fmt.Errorf("%w: connection dropped after a failed request", ErrClosed)
		}
		if err := c.connect(ctx); err != nil {
			return nil, err
		}
	}

	c.seq++
	req.ID = strconv.FormatUint(c.seq, 10)

	deadline, hasDeadline := ctx.Deadline()
	if err := c.conn.SetDeadline(deadline); err != nil {
		c.drop()
		return nil, err
	}
	conn := c.conn
	stop := context.AfterFunc(ctx, func() { conn.SetDeadline(time.Now()) })
	defer stop()

	if err := c.enc.Encode(&req); err != nil {
		c.drop()
		return nil, fmt.Errorf("encoding request: %w", err)
	}
	if err := c.bw.Flush(); err != nil {
		c.drop()
		return nil, fmt.Errorf("sending request: %w", err)
	}

	var resp server.Response
	if err := c.dec.Decode(&resp); err != nil {
		c.drop()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var ne net.Error
		if hasDeadline && errors.As(err, &ne) && ne.Timeout() {
			return nil, context.DeadlineExceeded
		}
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.ID != req.ID && resp.ID != "" {
		c.drop()
		return nil, fmt.Errorf("response id %q does not match request %q", resp.ID, req.ID)
	}
	if resp.Error != "" {
		return &resp, &ServerError{Code: resp.Code, Message: resp.Error}
	}
	return &resp, nil
}

// Search returns up to limit completions of prefix. A limit of 0 asks for the server default.
func (c *Client) Search(ctx context.Context, prefix string, limit int) ([]suggest.Suggestion, error) {
	resp, err := c.do(ctx, server.Request{Command: server.CommandComplete, Prefix: prefix, Limit: limit})
	if err != nil {
		return nil, err
	}
	out := make([]suggest.Suggestion, len(resp.Suggestions))
	for i, s := range resp.Suggestions {
		out[i] = suggest.Suggestion{Word: s.Word, Rank: s.Rank}
	}
	return out, nil
}

// Stats returns the server's index and request counters.
func (c *Client) Stats(ctx context.Context) (map[string]int, error) {
	resp, err := c.do(ctx, server.Request{Command: server.CommandStats})
	if err != nil {
		return nil, err
	}
	return resp.Stats, nil
}

// Health reports whether the server answers.
func (c *Client) Health(ctx context.Context) error {
	resp, err := c.do(ctx, server.Request{Command: server.CommandHealth})
	if err != nil {
		return err
	}
	if resp.Status != "ok" {
		return fmt.Errorf("server status %q", resp.Status)
	}
	return nil
}

// Join renders suggestions as words each terminated by CRLF.
func Join(suggestions []suggest.Suggestion) string {
	var sb strings.Builder
	for _, s := range suggestions {
		sb.WriteString(s.Word)
		sb.WriteString("\r\n")
	}
	return sb.String()
}
