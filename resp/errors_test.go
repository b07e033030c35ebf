package resp

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShouldCloseConnection(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"incomplete", ErrIncomplete, false},
		{"wrapped incomplete", fmt.Errorf("read: %w", ErrIncomplete), false},
		{"protocol error", protocolErrorf("bad frame"), true},
		{"wrapped protocol error", fmt.Errorf("decode: %w", protocolErrorf("bad frame")), true},
		{"encode error", encodeErrorf("bad input"), false},
		{"unknown error", errors.New("boom"), true},
		{"io error", io.ErrUnexpectedEOF, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldCloseConnection(tt.err))
		})
	}
}

func TestErrorMessages(t *testing.T) {
	assert.EqualError(t, protocolErrorf("unknown type prefix %q", byte('!')),
		`resp: protocol error: unknown type prefix '!'`)
	assert.EqualError(t, encodeErrorf("empty command"),
		"resp: encode error: empty command")
}
