package redis

import (
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/resp"
)

// testStore is a minimal in-memory keyspace exposed as command handlers.
type testStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newTestStore() *testStore {
	return &testStore{data: make(map[string][]byte)}
}

func (s *testStore) register(t *testing.T, reg *CommandRegistry) {
	t.Helper()
	require.NoError(t, reg.Register("PING", HandlerFunc(s.ping)))
	require.NoError(t, reg.Register("GET", HandlerFunc(s.get)))
	require.NoError(t, reg.Register("SET", HandlerFunc(s.set)))
	require.NoError(t, reg.Register("DEL", HandlerFunc(s.del)))
	require.NoError(t, reg.Register("INCRBY", HandlerFunc(s.incrBy)))
}

func (s *testStore) ping(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	out.WriteStatus("PONG")
	return nil
}

func (s *testStore) get(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	if len(args) != 2 {
		return fmt.Errorf("wrong number of arguments for 'get' command")
	}
	s.mu.Lock()
	value, ok := s.data[string(args[1])]
	s.mu.Unlock()
	if !ok {
		out.WriteNil()
		return nil
	}
	out.WriteBulk(value)
	return nil
}

func (s *testStore) set(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("wrong number of arguments for 'set' command")
	}
	s.mu.Lock()
	s.data[string(args[1])] = append([]byte(nil), args[2]...)
	s.mu.Unlock()
	out.WriteStatus("OK")
	return nil
}

func (s *testStore) del(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	s.mu.Lock()
	var removed int64
	for _, key := range args[1:] {
		if _, ok := s.data[string(key)]; ok {
			delete(s.data, string(key))
			removed++
		}
	}
	s.mu.Unlock()
	out.WriteInteger(removed)
	return nil
}

func (s *testStore) incrBy(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	if len(args) != 3 {
		return fmt.Errorf("wrong number of arguments for 'incrby' command")
	}
	delta, err := strconv.ParseInt(string(args[2]), 10, 64)
	if err != nil {
		return fmt.Errorf("value is not an integer or out of range")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	current := int64(0)
	if raw, ok := s.data[string(args[1])]; ok {
		current, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("value is not an integer or out of range")
		}
	}
	current += delta
	s.data[string(args[1])] = []byte(strconv.FormatInt(current, 10))
	out.WriteInteger(current)
	return nil
}

func startTestServer(t *testing.T, registry *CommandRegistry) string {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(registry)
	go server.Serve(ln)
	t.Cleanup(func() { server.Close() })

	return ln.Addr().String()
}

func newTestClient(t *testing.T, addr string) *Client {
	t.Helper()
	client, err := NewClient(NewStaticServers(addr), Config{MaxSize: 2})
	require.NoError(t, err)
	t.Cleanup(client.Close)
	return client
}

func TestServerEndToEnd(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)
	client := newTestClient(t, addr)
	ctx := testContext(t)

	require.NoError(t, client.Ping(ctx))

	_, err := client.Get(ctx, "missing")
	assert.ErrorIs(t, err, Nil)

	require.NoError(t, client.Set(ctx, "greeting", []byte("hello")))

	value, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(value))

	n, err := client.Incr(ctx, "counter")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = client.IncrBy(ctx, "counter", 41)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)

	removed, err := client.Del(ctx, "greeting", "missing")
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}

func TestServerPipeline(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)
	client := newTestClient(t, addr)

	var req resp.Request
	require.NoError(t, req.AddCommandByComponents("SET", "k", "v"))
	require.NoError(t, req.AddCommandByComponents("GET", "k"))
	require.NoError(t, req.AddCommandByComponents("GET", "nope"))

	rsp, err := client.ExecutePipeline(testContext(t), "k", &req)
	require.NoError(t, err)

	require.Equal(t, 3, rsp.ReplyCount())
	assert.Equal(t, "OK", rsp.Reply(0).Status())
	assert.Equal(t, "v", rsp.Reply(1).Text())
	assert.True(t, rsp.Reply(2).IsNil())
}

func TestServerUnknownCommand(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)
	client := newTestClient(t, addr)

	reply, err := client.Do(testContext(t), "FLUSHDB")
	require.NoError(t, err)

	require.True(t, reply.IsError())
	assert.Contains(t, reply.ErrorMessage(), "unknown command 'FLUSHDB'")
}

func TestServerHandlerError(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)
	client := newTestClient(t, addr)

	// GET with a bad arity: the handler fails before writing, so the
	// server still owes the client one error reply.
	reply, err := client.Do(testContext(t), "GET")
	require.NoError(t, err)

	require.True(t, reply.IsError())
	assert.Contains(t, reply.ErrorMessage(), "wrong number of arguments")
}

func TestServerCaseInsensitiveDispatch(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)
	client := newTestClient(t, addr)

	reply, err := client.Do(testContext(t), "ping")
	require.NoError(t, err)
	assert.Equal(t, "PONG", reply.Status())
}

func TestServerInlineCommand(t *testing.T) {
	registry := NewCommandRegistry()
	newTestStore().register(t, registry)
	addr := startTestServer(t, registry)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = conn.Write([]byte("PING\r\n"))
	require.NoError(t, err)

	line := make([]byte, 7)
	_, err = io.ReadFull(conn, line)
	require.NoError(t, err)
	assert.Equal(t, "+PONG\r\n", string(line))
}

func TestServerProtocolErrorClosesConnection(t *testing.T) {
	registry := NewCommandRegistry()
	addr := startTestServer(t, registry)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = conn.Write([]byte("*1\r\n:42\r\n"))
	require.NoError(t, err)

	// One error reply, then EOF.
	data, err := io.ReadAll(conn)
	require.NoError(t, err)
	assert.Contains(t, string(data), "-ERR Protocol error:")
}

type signalSession struct {
	destroyed chan struct{}
}

func (s *signalSession) Destroy() {
	close(s.destroyed)
}

func TestServerDestroysSessionOnDisconnect(t *testing.T) {
	session := &signalSession{destroyed: make(chan struct{})}

	registry := NewCommandRegistry()
	require.NoError(t, registry.Register("HELLO", HandlerFunc(
		func(conn *ConnContext, args [][]byte, out *resp.Writer) error {
			conn.ReplaceSession(session)
			out.WriteStatus("OK")
			return nil
		})))
	addr := startTestServer(t, registry)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	conn.SetDeadline(time.Now().Add(5 * time.Second))

	_, err = conn.Write([]byte("*1\r\n$5\r\nHELLO\r\n"))
	require.NoError(t, err)
	reply := make([]byte, 5)
	_, err = io.ReadFull(conn, reply)
	require.NoError(t, err)

	conn.Close()

	select {
	case <-session.destroyed:
	case <-time.After(5 * time.Second):
		t.Fatal("session was not destroyed on disconnect")
	}
}

func TestServerClose(t *testing.T) {
	registry := NewCommandRegistry()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	server := NewServer(registry)
	done := make(chan error, 1)
	go func() { done <- server.Serve(ln) }()

	require.Eventually(t, func() bool { return server.Addr() != nil },
		time.Second, 10*time.Millisecond)

	require.NoError(t, server.Close())
	assert.ErrorIs(t, <-done, ErrServerClosed)
	require.NoError(t, server.Close()) // idempotent
}
