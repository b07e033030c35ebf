package resp

import (
	"bytes"
	"strconv"
	"strings"
)

// maxLineLength bounds a single CRLF-terminated header line. Lines hold
// a type prefix plus text or digits; anything longer is garbage, not a
// frame still in flight.
const maxLineLength = 64 * 1024

type decodeState uint8

const (
	stateInit     decodeState = iota // nothing consumed yet
	stateElements                    // array header consumed, decoding elements
	stateDone
)

// Reply is one decoded RESP value: a status or error line, an integer,
// a bulk string (possibly nil), or an array of nested replies (possibly
// nil). Payload bytes and nested slots live in the owning Arena, so a
// Reply is only valid while its arena is.
//
// A Reply decodes incrementally: consumePartial suspends with
// ErrIncomplete when bytes run out and resumes from the same point on
// the next call. All suspension state lives in the value itself.
type Reply struct {
	typ      ReplyType
	null     bool
	integer  int64
	data     []byte
	elements []Reply
	arena    *Arena

	st       decodeState
	ndecoded int // fully decoded elements
}

// NewReply returns an empty reply owned by arena.
func NewReply(arena *Arena) *Reply {
	return &Reply{arena: arena}
}

// Type returns the decoded frame type, or TypeNil before decoding.
func (r *Reply) Type() ReplyType {
	if r.st != stateDone {
		return TypeNil
	}
	return r.typ
}

// IsNil reports whether the reply is a nil bulk string or nil array.
func (r *Reply) IsNil() bool {
	return r.st != stateDone || r.null
}

// IsError reports whether the reply is an error line.
func (r *Reply) IsError() bool {
	return r.Type() == TypeError
}

// Status returns the text of a status reply, or "" for other types.
func (r *Reply) Status() string {
	if r.Type() == TypeStatus {
		return string(r.data)
	}
	return ""
}

// ErrorMessage returns the text of an error reply, or "" for other types.
func (r *Reply) ErrorMessage() string {
	if r.Type() == TypeError {
		return string(r.data)
	}
	return ""
}

// Integer returns the value of an integer reply, or 0 for other types.
func (r *Reply) Integer() int64 {
	if r.Type() == TypeInteger {
		return r.integer
	}
	return 0
}

// Bytes returns the payload of a bulk string reply. It returns nil for
// a nil bulk string and for non-bulk replies. The slice is arena-owned:
// copy it out if it must outlive the response.
func (r *Reply) Bytes() []byte {
	if r.Type() == TypeBulk && !r.null {
		return r.data
	}
	return nil
}

// Text returns the bulk payload as a string, or "" for nil and
// non-bulk replies.
func (r *Reply) Text() string {
	return string(r.Bytes())
}

// Len returns the element count of an array reply. Nil arrays and
// other types have length 0.
func (r *Reply) Len() int {
	if r.Type() == TypeArray && !r.null {
		return len(r.elements)
	}
	return 0
}

// Element returns the i-th element of an array reply. It returns nil
// when out of range or for non-array replies.
func (r *Reply) Element(i int) *Reply {
	if i < 0 || i >= r.Len() {
		return nil
	}
	return &r.elements[i]
}

// Reset returns the reply to its undecoded state. Arena storage is not
// reclaimed; the owning Response clears the arena as a whole.
func (r *Reply) Reset() {
	*r = Reply{arena: r.arena}
}

// consumePartial decodes one frame from b. It returns nil once the
// frame is complete, ErrIncomplete when more bytes are needed (retry
// with the same receiver after the buffer grows), or a *ProtocolError
// on malformed framing. Calling it on a completed reply is a no-op.
func (r *Reply) consumePartial(b *Buffer) error {
	switch r.st {
	case stateDone:
		return nil
	case stateElements:
		return r.consumeElements(b)
	}

	line, size, err := readLine(b)
	if err != nil {
		return err
	}
	if len(line) == 0 {
		return protocolErrorf("empty frame header")
	}
	body := line[1:]

	switch ReplyType(line[0]) {
	case TypeStatus, TypeError:
		r.typ = ReplyType(line[0])
		r.data = r.arena.CopyBytes(body)
		b.advance(size)
		r.st = stateDone
		return nil

	case TypeInteger:
		n, err := parseInt(body)
		if err != nil {
			return protocolErrorf("invalid integer %q", body)
		}
		r.typ = TypeInteger
		r.integer = n
		b.advance(size)
		r.st = stateDone
		return nil

	case TypeBulk:
		n, err := parseInt(body)
		if err != nil {
			return protocolErrorf("invalid bulk length %q", body)
		}
		if n == -1 {
			r.typ = TypeBulk
			r.null = true
			b.advance(size)
			r.st = stateDone
			return nil
		}
		if n < 0 || n > MaxBulkSize {
			return protocolErrorf("bulk length %d out of range", n)
		}
		// The header is only consumed together with the payload, so a
		// suspended bulk re-parses from the same cursor position.
		total := size + int(n) + 2
		if b.Len() < total {
			return ErrIncomplete
		}
		window := b.Bytes()
		if window[total-2] != '\r' || window[total-1] != '\n' {
			return protocolErrorf("bulk payload not CRLF-terminated")
		}
		r.typ = TypeBulk
		r.data = r.arena.CopyBytes(window[size : size+int(n)])
		b.advance(total)
		r.st = stateDone
		return nil

	case TypeArray:
		n, err := parseInt(body)
		if err != nil {
			return protocolErrorf("invalid array length %q", body)
		}
		if n == -1 {
			r.typ = TypeArray
			r.null = true
			b.advance(size)
			r.st = stateDone
			return nil
		}
		if n < 0 || n > MaxArraySize {
			return protocolErrorf("array length %d out of range", n)
		}
		r.typ = TypeArray
		r.elements = r.arena.AllocateReplies(int(n))
		b.advance(size)
		r.st = stateElements
		return r.consumeElements(b)

	default:
		return protocolErrorf("unknown type prefix %q", line[0])
	}
}

// consumeElements decodes the remaining elements of an array reply in
// order. Element k+1 is never started before element k completes.
func (r *Reply) consumeElements(b *Buffer) error {
	for r.ndecoded < len(r.elements) {
		if err := r.elements[r.ndecoded].consumePartial(b); err != nil {
			return err
		}
		r.ndecoded++
	}
	r.st = stateDone
	return nil
}

// copyFromSameArena copies src into r, sharing leaf storage. Both
// replies must be owned by the same arena.
func (r *Reply) copyFromSameArena(src *Reply) {
	arena := r.arena
	*r = *src
	r.arena = arena
}

// copyFromDifferentArena deep-copies src into r's own arena: payload
// bytes and nested slots are re-allocated so r never aliases storage
// owned by src's arena.
func (r *Reply) copyFromDifferentArena(src *Reply) {
	r.typ = src.typ
	r.null = src.null
	r.integer = src.integer
	r.st = src.st
	r.ndecoded = src.ndecoded
	r.data = r.arena.CopyBytes(src.data)
	r.elements = nil
	if src.elements != nil {
		r.elements = r.arena.AllocateReplies(len(src.elements))
		for i := range src.elements {
			r.elements[i].copyFromDifferentArena(&src.elements[i])
		}
	}
}

// String renders the reply for diagnostics. The output is not part of
// the wire contract and never round-trips.
func (r *Reply) String() string {
	if r.st != stateDone {
		return "<incomplete>"
	}
	switch r.typ {
	case TypeStatus:
		return string(r.data)
	case TypeError:
		return "(error) " + string(r.data)
	case TypeInteger:
		return strconv.FormatInt(r.integer, 10)
	case TypeBulk:
		if r.null {
			return "(nil)"
		}
		return strconv.Quote(string(r.data))
	case TypeArray:
		if r.null {
			return "(nil)"
		}
		parts := make([]string, len(r.elements))
		for i := range r.elements {
			parts[i] = r.elements[i].String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	default:
		return "<unknown>"
	}
}

// readLine locates the next CRLF-terminated line in b without consuming
// it. size includes the terminator.
func readLine(b *Buffer) (line []byte, size int, err error) {
	window := b.Bytes()
	i := bytes.IndexByte(window, '\n')
	if i < 0 {
		if len(window) > maxLineLength {
			return nil, 0, protocolErrorf("header line exceeds %d bytes", maxLineLength)
		}
		return nil, 0, ErrIncomplete
	}
	if i-1 > maxLineLength {
		return nil, 0, protocolErrorf("header line exceeds %d bytes", maxLineLength)
	}
	if i == 0 || window[i-1] != '\r' {
		return nil, 0, protocolErrorf("line terminated by bare LF")
	}
	return window[:i-1], i + 1, nil
}

// parseInt parses a decimal int64 without allocating.
func parseInt(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, strconv.ErrSyntax
	}

	var neg bool
	i := 0
	if b[0] == '-' {
		neg = true
		i = 1
		if len(b) == 1 {
			return 0, strconv.ErrSyntax
		}
	}

	const cutoff = (1<<63 - 1) / 10

	var n int64
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, strconv.ErrSyntax
		}
		if n > cutoff || (n == cutoff && b[i] > '7') {
			return 0, strconv.ErrRange
		}
		n = n*10 + int64(b[i]-'0')
	}

	if neg {
		return -n, nil
	}
	return n, nil
}
