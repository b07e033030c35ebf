package redis

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/pior/redis/resp"
)

var ErrServerClosed = errors.New("redis: server closed")

// Server speaks the redis wire protocol on the server side: it decodes
// inbound commands incrementally, resolves each through a
// CommandRegistry, and encodes handler replies back onto the
// connection. Command handler business logic lives entirely in the
// registered handlers.
type Server struct {
	registry *CommandRegistry

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	closed bool
}

// NewServer creates a server dispatching through registry. The
// registry must be fully populated before Serve is called.
func NewServer(registry *CommandRegistry) *Server {
	return &Server{
		registry: registry,
		conns:    make(map[net.Conn]struct{}),
	}
}

// ListenAndServe listens on addr and serves until Close.
func (s *Server) ListenAndServe(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Close. Each connection is
// handled on its own goroutine; within a connection, commands are
// processed strictly in arrival order.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrServerClosed
	}
	s.ln = ln
	s.mu.Unlock()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return ErrServerClosed
			}
			return err
		}

		s.mu.Lock()
		s.conns[conn] = struct{}{}
		s.mu.Unlock()

		go s.serveConn(conn)
	}
}

// Addr returns the listener address, once serving.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

// Close stops the listener and closes all active connections.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	for conn := range s.conns {
		conn.Close()
	}
	return err
}

func (s *Server) removeConn(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// serveConn runs the per-connection loop: read, decode commands,
// dispatch, reply. The ConnContext session is torn down before the
// connection goes away, whatever ended the loop.
func (s *Server) serveConn(conn net.Conn) {
	defer s.removeConn(conn)
	defer conn.Close()

	connCtx := &ConnContext{RemoteAddr: conn.RemoteAddr().String()}
	defer connCtx.Destroy()

	var buf resp.Buffer
	var reader resp.CommandReader
	out := resp.NewWriter(conn)
	scratch := make([]byte, 16*1024)

	for {
		n, err := conn.Read(scratch)
		if n > 0 {
			buf.Write(scratch[:n])
		}
		if err != nil && n == 0 {
			return
		}

		for {
			cmd, err := reader.ReadCommand(&buf)
			if errors.Is(err, resp.ErrIncomplete) {
				break
			}
			if err != nil {
				// Framing is unrecoverable; report and drop the connection.
				out.WriteError("ERR Protocol error: " + err.Error())
				out.Flush()
				return
			}
			s.dispatch(connCtx, cmd, out)
		}

		if err := out.Flush(); err != nil {
			return
		}
	}
}

func (s *Server) dispatch(connCtx *ConnContext, cmd resp.Command, out *resp.Writer) {
	handler, ok := s.registry.Lookup(cmd.Name())
	if !ok {
		out.WriteError(fmt.Sprintf("ERR unknown command '%s'", cmd.Name()))
		return
	}

	buffered := out.Buffered()
	if err := handler.Handle(connCtx, cmd.Args, out); err != nil {
		// A handler that failed before writing still owes one reply.
		if out.Buffered() == buffered {
			out.WriteError("ERR " + err.Error())
		}
	}
}
