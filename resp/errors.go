package resp

import (
	"errors"
	"fmt"
)

var (
	// ErrIncomplete reports that the input does not yet hold a complete
	// frame. It is a suspension signal, not a failure: the caller should
	// retry the same call once more bytes have arrived.
	ErrIncomplete = errors.New("resp: incomplete frame")

	// ErrPoisoned reports that a Request refused an operation because an
	// earlier append failed. The flag is sticky until Clear.
	ErrPoisoned = errors.New("resp: request poisoned by earlier encoding error")

	// ErrNotImplemented reports a recognized but unimplemented extension
	// point, such as transactional command batching.
	ErrNotImplemented = errors.New("resp: not implemented")
)

// ProtocolError reports malformed RESP framing. Once returned, later
// bytes on the stream cannot be reframed, so the connection must be
// closed.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "resp: protocol error: " + e.Message
}

// ShouldCloseConnection returns true - framing is unrecoverable.
func (e *ProtocolError) ShouldCloseConnection() bool {
	return true
}

func protocolErrorf(format string, args ...any) error {
	return &ProtocolError{Message: fmt.Sprintf(format, args...)}
}

// EncodeError reports malformed command input to a Request append
// operation. It is local to the Request: nothing reached the wire, so
// the connection stays usable.
type EncodeError struct {
	Message string
}

func (e *EncodeError) Error() string {
	return "resp: encode error: " + e.Message
}

// ShouldCloseConnection returns false - nothing reached the wire.
func (e *EncodeError) ShouldCloseConnection() bool {
	return false
}

func encodeErrorf(format string, args ...any) error {
	return &EncodeError{Message: fmt.Sprintf(format, args...)}
}

// ErrorWithConnectionState is implemented by errors that indicate
// whether the connection they occurred on must be closed.
type ErrorWithConnectionState interface {
	error
	ShouldCloseConnection() bool
}

// ShouldCloseConnection reports whether err requires discarding the
// connection it occurred on. ErrIncomplete never does; unknown errors
// conservatively do.
func ShouldCloseConnection(err error) bool {
	if err == nil || errors.Is(err, ErrIncomplete) {
		return false
	}

	var e ErrorWithConnectionState
	if errors.As(err, &e) {
		return e.ShouldCloseConnection()
	}
	return true
}
