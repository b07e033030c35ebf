package resp

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArenaAllocateBytes(t *testing.T) {
	var a Arena

	p := a.AllocateBytes(4)
	require.Len(t, p, 4)
	copy(p, "abcd")

	q := a.AllocateBytes(4)
	copy(q, "wxyz")

	// Allocations never overlap.
	assert.Equal(t, "abcd", string(p))
	assert.Equal(t, "wxyz", string(q))
}

func TestArenaAllocateBytesLarge(t *testing.T) {
	var a Arena

	small := a.AllocateBytes(8)
	copy(small, "12345678")

	// Oversized allocations get a dedicated block and must not disturb
	// the bump block.
	big := a.AllocateBytes(arenaBlockSize * 2)
	require.Len(t, big, arenaBlockSize*2)

	after := a.AllocateBytes(8)
	copy(after, "abcdefgh")

	assert.Equal(t, "12345678", string(small))
	assert.Equal(t, "abcdefgh", string(after))
}

func TestArenaCopyBytes(t *testing.T) {
	var a Arena

	src := []byte("payload")
	dup := a.CopyBytes(src)
	require.Equal(t, "payload", string(dup))

	// The copy is independent of the source.
	src[0] = 'X'
	assert.Equal(t, "payload", string(dup))

	assert.Nil(t, a.CopyBytes(nil))
	assert.NotNil(t, a.CopyBytes([]byte{}))
	assert.Len(t, a.CopyBytes([]byte{}), 0)
}

func TestArenaAllocateReplies(t *testing.T) {
	var a Arena

	replies := a.AllocateReplies(3)
	require.Len(t, replies, 3)
	for i := range replies {
		assert.Same(t, &a, replies[i].arena)
	}

	assert.Empty(t, a.AllocateReplies(0))
}

func TestArenaClear(t *testing.T) {
	var a Arena

	for i := 0; i < 100; i++ {
		a.CopyBytes(bytes.Repeat([]byte{'x'}, 100))
	}
	a.AllocateReplies(10)

	a.Clear()

	// Cleared arenas allocate from scratch.
	p := a.CopyBytes([]byte("fresh"))
	assert.Equal(t, "fresh", string(p))
}

func TestArenaSwap(t *testing.T) {
	var a, b Arena

	pa := a.CopyBytes([]byte("from-a"))
	pb := b.CopyBytes([]byte("from-b"))

	a.Swap(&b)

	// The payloads stay intact; only ownership moves.
	assert.Equal(t, "from-a", string(pa))
	assert.Equal(t, "from-b", string(pb))

	// Both arenas keep allocating normally after the swap.
	assert.Equal(t, "more-a", string(a.CopyBytes([]byte("more-a"))))
	assert.Equal(t, "more-b", string(b.CopyBytes([]byte("more-b"))))
}
