package redis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/pior/redis/resp"
)

var (
	// ErrNotImplemented is reported by extension points that are
	// recognized but not implemented, such as transactional batching.
	ErrNotImplemented = errors.New("redis: not implemented")
)

// Handler processes one decoded command and writes its reply. args
// holds the verb followed by the command arguments; the argument
// slices are only valid for the duration of the call.
//
// Handlers are registered before traffic starts and must be safe for
// concurrent use across connections.
type Handler interface {
	Handle(conn *ConnContext, args [][]byte, out *resp.Writer) error
}

// HandlerFunc adapts a function to the Handler interface.
type HandlerFunc func(conn *ConnContext, args [][]byte, out *resp.Writer) error

func (f HandlerFunc) Handle(conn *ConnContext, args [][]byte, out *resp.Writer) error {
	return f(conn, args, out)
}

// CommandRegistry maps lower-cased command names to handlers. Populate
// it during setup, before the server starts accepting traffic; after
// that it is read-only and needs no synchronization. Registering while
// serving is unsupported.
type CommandRegistry struct {
	handlers map[string]Handler
}

// NewCommandRegistry returns an empty registry.
func NewCommandRegistry() *CommandRegistry {
	return &CommandRegistry{handlers: make(map[string]Handler)}
}

// Register binds handler to name (case-insensitive). Registering a
// name twice fails and leaves the existing binding untouched.
func (r *CommandRegistry) Register(name string, handler Handler) error {
	if name == "" || handler == nil {
		return errors.New("redis: invalid command registration")
	}
	lcname := strings.ToLower(name)
	if _, exists := r.handlers[lcname]; exists {
		return fmt.Errorf("redis: command %q already registered", lcname)
	}
	r.handlers[lcname] = handler
	return nil
}

// Lookup resolves a command name (case-insensitive). It never mutates
// the registry.
func (r *CommandRegistry) Lookup(name string) (Handler, bool) {
	h, ok := r.handlers[strings.ToLower(name)]
	return h, ok
}

// Commands returns the registered command names, for introspection.
func (r *CommandRegistry) Commands() []string {
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	return names
}

// NewTransactionHandler is the extension point for MULTI/EXEC
// transactional batching. No transaction semantics are provided yet:
// it always reports ErrNotImplemented.
func NewTransactionHandler() (Handler, error) {
	return nil, ErrNotImplemented
}
