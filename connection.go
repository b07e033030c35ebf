package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/pior/redis/resp"
)

var (
	ErrConnectionClosed = errors.New("redis: connection closed")
)

// Connection is a single pipelined connection to a redis server. One
// Execute call owns the connection for a full write-then-decode cycle;
// replies come back strictly in command order, so the decoder simply
// counts down the pipeline's expected reply count.
type Connection struct {
	conn    net.Conn
	mu      sync.Mutex
	buf     resp.Buffer
	scratch []byte
	closed  bool

	createdAt time.Time
}

// NewConnection wraps an established network connection.
func NewConnection(conn net.Conn) *Connection {
	return &Connection{
		conn:      conn,
		scratch:   make([]byte, 16*1024),
		createdAt: time.Now(),
	}
}

// Execute serializes the request, writes it in one batch, and decodes
// exactly one reply per pipelined command into a fresh Response.
//
// A poisoned request is rejected before anything reaches the wire. Any
// I/O or protocol error marks the connection closed: a partially
// decoded pipeline cannot be resynchronized.
func (c *Connection) Execute(ctx context.Context, req *resp.Request) (*resp.Response, error) {
	if req.CommandCount() == 0 && !req.Poisoned() {
		return nil, fmt.Errorf("redis: empty request")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrConnectionClosed
	}

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
	} else {
		c.conn.SetDeadline(time.Time{})
	}

	if err := req.SerializeTo(c.conn); err != nil {
		if !errors.Is(err, resp.ErrPoisoned) {
			c.closed = true
		}
		return nil, err
	}

	rsp := resp.NewResponse()
	for {
		err := rsp.ConsumePartial(&c.buf, req.CommandCount())
		if err == nil {
			return rsp, nil
		}
		if !errors.Is(err, resp.ErrIncomplete) {
			c.closed = true
			return nil, err
		}

		n, err := c.conn.Read(c.scratch)
		if n > 0 {
			c.buf.Write(c.scratch[:n])
		}
		if err != nil && n == 0 {
			c.closed = true
			return nil, fmt.Errorf("redis: read: %w", err)
		}
	}
}

// Ping checks the connection with a PING command.
func (c *Connection) Ping(ctx context.Context) error {
	var req resp.Request
	if err := req.AddCommandByComponents("PING"); err != nil {
		return err
	}

	rsp, err := c.Execute(ctx, &req)
	if err != nil {
		return err
	}
	if rsp.Reply(0).Status() != "PONG" {
		return fmt.Errorf("redis: unexpected PING reply: %s", rsp.Reply(0))
	}
	return nil
}

// RemoteAddr returns the address of the peer.
func (c *Connection) RemoteAddr() string {
	return c.conn.RemoteAddr().String()
}

// CreatedAt returns when the connection was established.
func (c *Connection) CreatedAt() time.Time {
	return c.createdAt
}

// IsClosed reports whether the connection has been closed or failed.
func (c *Connection) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Close closes the connection.
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
