package resp

// Buffer accumulates raw network bytes and hands them to the decoder.
// Writes append at the tail; decoding consumes from the head. Bytes
// consumed by a decode call are gone; bytes of an incomplete frame are
// left in place so the decoder can resume after the next Write.
//
// The zero value is an empty buffer ready to use.
type Buffer struct {
	buf []byte
	off int // read offset into buf
}

// Write appends p to the buffer. It never fails; the error is to
// satisfy io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	b.compact()
	b.buf = append(b.buf, p...)
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	b.compact()
	b.buf = append(b.buf, s...)
	return len(s), nil
}

// Len returns the number of unconsumed bytes.
func (b *Buffer) Len() int {
	return len(b.buf) - b.off
}

// Bytes returns the unconsumed bytes. The slice is only valid until the
// next Write or decode call.
func (b *Buffer) Bytes() []byte {
	return b.buf[b.off:]
}

// Reset discards all content.
func (b *Buffer) Reset() {
	b.buf = b.buf[:0]
	b.off = 0
}

// advance consumes n bytes from the head.
func (b *Buffer) advance(n int) {
	b.off += n
	if b.off >= len(b.buf) {
		b.buf = b.buf[:0]
		b.off = 0
	}
}

// compact reclaims the consumed prefix before appending, so the buffer
// does not grow without bound across many decode cycles.
func (b *Buffer) compact() {
	if b.off == 0 {
		return
	}
	n := copy(b.buf, b.buf[b.off:])
	b.buf = b.buf[:n]
	b.off = 0
}
