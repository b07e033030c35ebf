package resp

import (
	"io"
	"strconv"
)

// Writer encodes replies onto a stream. Frames accumulate in an
// internal buffer until Flush, so a handler may emit several frames
// that reach the socket in one write.
//
// Write errors are sticky: after the first failure every call is a
// no-op and Flush keeps returning the error.
type Writer struct {
	w   io.Writer
	buf []byte
	err error
}

// NewWriter returns a writer encoding onto w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w, buf: make([]byte, 0, 512)}
}

// WriteStatus writes a status line: +<text>.
func (w *Writer) WriteStatus(text string) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, '+')
	w.buf = append(w.buf, text...)
	w.buf = append(w.buf, CRLF...)
}

// WriteError writes an error line: -<message>.
func (w *Writer) WriteError(message string) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, '-')
	w.buf = append(w.buf, message...)
	w.buf = append(w.buf, CRLF...)
}

// WriteInteger writes an integer reply: :<n>.
func (w *Writer) WriteInteger(n int64) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, ':')
	w.buf = strconv.AppendInt(w.buf, n, 10)
	w.buf = append(w.buf, CRLF...)
}

// WriteBulk writes a bulk string reply. A nil slice is encoded as the
// empty bulk string; use WriteNil for the nil reply.
func (w *Writer) WriteBulk(data []byte) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, '$')
	w.buf = strconv.AppendInt(w.buf, int64(len(data)), 10)
	w.buf = append(w.buf, CRLF...)
	w.buf = append(w.buf, data...)
	w.buf = append(w.buf, CRLF...)
}

// WriteBulkString writes a bulk string reply from a string.
func (w *Writer) WriteBulkString(s string) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, '$')
	w.buf = strconv.AppendInt(w.buf, int64(len(s)), 10)
	w.buf = append(w.buf, CRLF...)
	w.buf = append(w.buf, s...)
	w.buf = append(w.buf, CRLF...)
}

// WriteNil writes the nil bulk string reply: $-1.
func (w *Writer) WriteNil() {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, "$-1"...)
	w.buf = append(w.buf, CRLF...)
}

// WriteArrayHeader starts an array reply of n elements; the caller
// writes the n elements next.
func (w *Writer) WriteArrayHeader(n int) {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, '*')
	w.buf = strconv.AppendInt(w.buf, int64(n), 10)
	w.buf = append(w.buf, CRLF...)
}

// WriteNilArray writes the nil array reply: *-1.
func (w *Writer) WriteNilArray() {
	if w.err != nil {
		return
	}
	w.buf = append(w.buf, "*-1"...)
	w.buf = append(w.buf, CRLF...)
}

// Buffered returns the number of bytes waiting to be flushed.
func (w *Writer) Buffered() int {
	return len(w.buf)
}

// Flush writes the accumulated frames to the underlying stream.
func (w *Writer) Flush() error {
	if w.err != nil {
		return w.err
	}
	if len(w.buf) == 0 {
		return nil
	}
	if _, err := w.w.Write(w.buf); err != nil {
		w.err = err
		return err
	}
	w.buf = w.buf[:0]
	return nil
}
