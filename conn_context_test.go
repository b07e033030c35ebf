package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordedSession struct {
	name      string
	destroyed *[]string
}

func (s *recordedSession) Destroy() {
	*s.destroyed = append(*s.destroyed, s.name)
}

func TestConnContextSession(t *testing.T) {
	var destroyed []string
	ctx := &ConnContext{RemoteAddr: "10.0.0.1:6379"}

	assert.Nil(t, ctx.Session())

	first := &recordedSession{name: "first", destroyed: &destroyed}
	ctx.ReplaceSession(first)
	assert.Equal(t, first, ctx.Session())
	assert.Empty(t, destroyed)

	// Replacing destroys the old session before installing the new one.
	second := &recordedSession{name: "second", destroyed: &destroyed}
	ctx.ReplaceSession(second)
	assert.Equal(t, second, ctx.Session())
	assert.Equal(t, []string{"first"}, destroyed)

	ctx.Destroy()
	assert.Nil(t, ctx.Session())
	assert.Equal(t, []string{"first", "second"}, destroyed)

	// Destroy on an empty context is a no-op.
	ctx.Destroy()
	assert.Equal(t, []string{"first", "second"}, destroyed)
}

func TestConnContextReplaceWithNil(t *testing.T) {
	var destroyed []string
	ctx := &ConnContext{}

	ctx.ReplaceSession(&recordedSession{name: "only", destroyed: &destroyed})
	ctx.ReplaceSession(nil)

	require.Equal(t, []string{"only"}, destroyed)
	assert.Nil(t, ctx.Session())
}
