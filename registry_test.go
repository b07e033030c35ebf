package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pior/redis/resp"
)

func nopHandler() Handler {
	return HandlerFunc(func(conn *ConnContext, args [][]byte, out *resp.Writer) error {
		return nil
	})
}

func TestCommandRegistryRegisterAndLookup(t *testing.T) {
	reg := NewCommandRegistry()
	require.NoError(t, reg.Register("GET", nopHandler()))

	// Lookups are case-insensitive.
	for _, name := range []string{"GET", "get", "Get", "gEt"} {
		h, ok := reg.Lookup(name)
		assert.True(t, ok, name)
		assert.NotNil(t, h, name)
	}

	_, ok := reg.Lookup("set")
	assert.False(t, ok)
}

func TestCommandRegistryDuplicate(t *testing.T) {
	reg := NewCommandRegistry()

	var calledFirst, calledSecond bool
	first := HandlerFunc(func(conn *ConnContext, args [][]byte, out *resp.Writer) error {
		calledFirst = true
		return nil
	})
	second := HandlerFunc(func(conn *ConnContext, args [][]byte, out *resp.Writer) error {
		calledSecond = true
		return nil
	})

	require.NoError(t, reg.Register("GET", first))

	// The name is one slot regardless of case, and a failed registration
	// leaves the existing binding untouched.
	require.Error(t, reg.Register("get", second))
	require.Error(t, reg.Register("GET", second))

	h, ok := reg.Lookup("GET")
	require.True(t, ok)
	require.NoError(t, h.Handle(nil, nil, nil))
	assert.True(t, calledFirst)
	assert.False(t, calledSecond)
	assert.Len(t, reg.Commands(), 1)
}

func TestCommandRegistryInvalidRegistration(t *testing.T) {
	reg := NewCommandRegistry()

	assert.Error(t, reg.Register("", nopHandler()))
	assert.Error(t, reg.Register("GET", nil))
	assert.Empty(t, reg.Commands())
}

func TestCommandRegistryCommands(t *testing.T) {
	reg := NewCommandRegistry()
	require.NoError(t, reg.Register("GET", nopHandler()))
	require.NoError(t, reg.Register("Set", nopHandler()))

	assert.ElementsMatch(t, []string{"get", "set"}, reg.Commands())
}

func TestNewTransactionHandler(t *testing.T) {
	h, err := NewTransactionHandler()
	assert.Nil(t, h)
	assert.ErrorIs(t, err, ErrNotImplemented)
}
