package resp

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DebugCRLFAsSpace controls the diagnostic rendering of requests and
// raw frames: when true, protocol CRLF terminators are shown as a
// single space instead of a literal "\r\n" escape. Diagnostic only,
// never part of the wire contract.
var DebugCRLFAsSpace = false

// Request accumulates one or more RESP-encoded commands to be sent as
// a single pipeline. Appends are all-or-nothing: the first command that
// fails to encode poisons the request, and a poisoned request refuses
// every further append and refuses serialization, so a partially valid
// pipeline can never desynchronize the peer's reply count.
//
// The zero value is an empty request ready to use.
type Request struct {
	buf      []byte
	ncommand int
	poisoned bool
}

// CommandCount returns the number of commands appended so far.
func (r *Request) CommandCount() int {
	return r.ncommand
}

// ByteSize returns the pending encoded length in bytes.
func (r *Request) ByteSize() int {
	return len(r.buf)
}

// Poisoned reports whether an append failed. The flag is sticky until
// Clear.
func (r *Request) Poisoned() bool {
	return r.poisoned
}

// Clear resets the request to empty and unpoisoned.
func (r *Request) Clear() {
	r.buf = r.buf[:0]
	r.ncommand = 0
	r.poisoned = false
}

// AddCommand appends one command given as a single text line, split on
// whitespace with shell-like quoting: double quotes support \r \n \t
// \\ \" escapes, single quotes are literal except \'. Binary-unsafe
// input belongs in AddCommandByComponents instead.
func (r *Request) AddCommand(command string) error {
	if r.poisoned {
		return ErrPoisoned
	}
	args, err := splitCommandLine(command)
	if err == nil && len(args) == 0 {
		err = encodeErrorf("empty command")
	}
	if err != nil {
		r.poisoned = true
		return err
	}
	r.appendMultibulk(args)
	r.ncommand++
	return nil
}

// AddCommandByComponents appends one command from pre-split argument
// strings, one RESP bulk string per component. This is the fast path:
// no re-tokenization, arguments may hold any bytes including spaces.
func (r *Request) AddCommandByComponents(components ...string) error {
	if r.poisoned {
		return ErrPoisoned
	}
	if len(components) == 0 {
		r.poisoned = true
		return encodeErrorf("no components")
	}
	r.appendMultibulk(components)
	r.ncommand++
	return nil
}

// AddCommandf appends one command built from a printf-style format.
// The format is split on literal whitespace, but a conversion
// specifier expands inside its argument: "SET %s %s" with a value
// containing spaces still encodes exactly three arguments.
func (r *Request) AddCommandf(format string, args ...any) error {
	if r.poisoned {
		return ErrPoisoned
	}
	components, err := formatCommand(format, args)
	if err != nil {
		r.poisoned = true
		return err
	}
	r.appendMultibulk(components)
	r.ncommand++
	return nil
}

// SerializeTo writes the accumulated pipeline to w. It fails without
// writing anything when the request is poisoned or empty.
func (r *Request) SerializeTo(w io.Writer) error {
	if r.poisoned {
		return ErrPoisoned
	}
	if r.ncommand == 0 {
		return encodeErrorf("no commands to serialize")
	}
	_, err := w.Write(r.buf)
	return err
}

// Merge appends other's commands onto r. Merging a poisoned request
// poisons the result. other is never mutated.
func (r *Request) Merge(other *Request) {
	r.poisoned = r.poisoned || other.poisoned
	r.buf = append(r.buf, other.buf...)
	r.ncommand += other.ncommand
}

// String renders the pending bytes for diagnostics, with CRLF shown
// per DebugCRLFAsSpace and an [ERROR] marker when poisoned.
func (r *Request) String() string {
	var sb strings.Builder
	renderRaw(&sb, r.buf)
	if r.poisoned {
		sb.WriteString("[ERROR]")
	}
	return sb.String()
}

// appendMultibulk encodes args as one multibulk frame:
// *<argc>\r\n then $<len>\r\n<bytes>\r\n per argument.
func (r *Request) appendMultibulk(args []string) {
	r.buf = append(r.buf, '*')
	r.buf = strconv.AppendInt(r.buf, int64(len(args)), 10)
	r.buf = append(r.buf, CRLF...)
	for _, arg := range args {
		r.buf = append(r.buf, '$')
		r.buf = strconv.AppendInt(r.buf, int64(len(arg)), 10)
		r.buf = append(r.buf, CRLF...)
		r.buf = append(r.buf, arg...)
		r.buf = append(r.buf, CRLF...)
	}
}

// renderRaw writes raw frame bytes with visible line terminators.
func renderRaw(sb *strings.Builder, raw []byte) {
	rest := string(raw)
	for {
		seg, tail, found := strings.Cut(rest, CRLF)
		sb.WriteString(seg)
		if !found {
			return
		}
		if DebugCRLFAsSpace {
			sb.WriteByte(' ')
		} else {
			sb.WriteString(`\r\n`)
		}
		rest = tail
	}
}

// splitCommandLine tokenizes a command line with shell-like quoting.
func splitCommandLine(line string) ([]string, error) {
	var args []string
	i := 0
	for {
		for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
			i++
		}
		if i >= len(line) {
			return args, nil
		}

		var sb strings.Builder
		switch line[i] {
		case '"':
			i++
			for {
				if i >= len(line) {
					return nil, encodeErrorf("unbalanced quotes in command line")
				}
				c := line[i]
				if c == '\\' && i+1 < len(line) {
					i++
					switch line[i] {
					case 'n':
						sb.WriteByte('\n')
					case 'r':
						sb.WriteByte('\r')
					case 't':
						sb.WriteByte('\t')
					default:
						sb.WriteByte(line[i])
					}
					i++
					continue
				}
				if c == '"' {
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if i < len(line) && line[i] != ' ' && line[i] != '\t' {
				return nil, encodeErrorf("closing quote must be followed by a space")
			}
		case '\'':
			i++
			for {
				if i >= len(line) {
					return nil, encodeErrorf("unbalanced quotes in command line")
				}
				c := line[i]
				if c == '\\' && i+1 < len(line) && line[i+1] == '\'' {
					sb.WriteByte('\'')
					i += 2
					continue
				}
				if c == '\'' {
					i++
					break
				}
				sb.WriteByte(c)
				i++
			}
			if i < len(line) && line[i] != ' ' && line[i] != '\t' {
				return nil, encodeErrorf("closing quote must be followed by a space")
			}
		default:
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				sb.WriteByte(line[i])
				i++
			}
		}
		args = append(args, sb.String())
	}
}

// formatCommand expands a printf-style format into command components.
// Literal whitespace separates components; each conversion specifier is
// formatted with its own argument, so expanded values never split.
func formatCommand(format string, args []any) ([]string, error) {
	var components []string
	var sb strings.Builder
	started := false

	flush := func() {
		if started {
			components = append(components, sb.String())
			sb.Reset()
			started = false
		}
	}

	next := 0
	i := 0
	for i < len(format) {
		c := format[i]
		switch {
		case c == ' ' || c == '\t':
			flush()
			i++
		case c == '%':
			j := i + 1
			// flags, width, precision
			for j < len(format) && strings.ContainsRune("+-# 0123456789.", rune(format[j])) {
				j++
			}
			if j >= len(format) {
				return nil, encodeErrorf("truncated conversion specifier in %q", format)
			}
			verb := format[j]
			if verb == '%' {
				sb.WriteByte('%')
				started = true
				i = j + 1
				continue
			}
			if !isFormatVerb(verb) {
				return nil, encodeErrorf("unsupported conversion %%%c in %q", verb, format)
			}
			if next >= len(args) {
				return nil, encodeErrorf("not enough arguments for format %q", format)
			}
			sb.WriteString(fmt.Sprintf(format[i:j+1], args[next]))
			next++
			started = true
			i = j + 1
		default:
			sb.WriteByte(c)
			started = true
			i++
		}
	}
	flush()

	if next != len(args) {
		return nil, encodeErrorf("%d unused arguments for format %q", len(args)-next, format)
	}
	if len(components) == 0 {
		return nil, encodeErrorf("empty command")
	}
	return components, nil
}

func isFormatVerb(c byte) bool {
	switch c {
	case 's', 'q', 'd', 'b', 'o', 'x', 'X', 'c', 'U', 'e', 'E', 'f', 'g', 'G', 't', 'v':
		return true
	}
	return false
}
