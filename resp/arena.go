package resp

// arenaBlockSize is the default payload block size. Allocations larger
// than a quarter of it get a dedicated block.
const arenaBlockSize = 4096

// Arena is a bump allocator backing Reply trees. Payload bytes and
// nested reply slots are carved out of shared blocks so that a whole
// decoded response releases in one step instead of node by node.
//
// Replies handed out by an arena must not outlive it: Clear and Swap
// invalidate every Reply allocated so far. Response enforces this by
// always resetting its replies and its arena together.
//
// The zero value is an empty arena ready to use.
type Arena struct {
	blocks [][]byte
	used   int // bytes used in the last block
	slabs  [][]Reply
}

// AllocateBytes returns n bytes of storage valid until Clear or Swap.
// The returned slice has capacity n, so appends never bleed into
// neighboring allocations.
func (a *Arena) AllocateBytes(n int) []byte {
	if n > arenaBlockSize/4 {
		block := make([]byte, n)
		// Keep the current bump block last.
		if len(a.blocks) == 0 {
			a.blocks = append(a.blocks, block)
			a.used = n
			return block
		}
		last := len(a.blocks) - 1
		a.blocks = append(a.blocks[:last], block, a.blocks[last])
		return block
	}

	if len(a.blocks) == 0 || a.used+n > len(a.blocks[len(a.blocks)-1]) {
		a.blocks = append(a.blocks, make([]byte, arenaBlockSize))
		a.used = 0
	}
	block := a.blocks[len(a.blocks)-1]
	s := block[a.used : a.used+n : a.used+n]
	a.used += n
	return s
}

// CopyBytes copies src into arena-owned storage.
func (a *Arena) CopyBytes(src []byte) []byte {
	if src == nil {
		return nil
	}
	dst := a.AllocateBytes(len(src))
	copy(dst, src)
	return dst
}

// AllocateReplies returns n empty reply slots owned by this arena.
func (a *Arena) AllocateReplies(n int) []Reply {
	s := make([]Reply, n)
	for i := range s {
		s[i].arena = a
	}
	a.slabs = append(a.slabs, s)
	return s
}

// Clear releases all blocks at once. Every Reply allocated from the
// arena becomes invalid.
func (a *Arena) Clear() {
	a.blocks = nil
	a.used = 0
	a.slabs = nil
}

// Swap exchanges the storage of two arenas in O(1). Replies keep
// pointing at their original *Arena, so both sides must re-point or
// discard their trees, exactly as with Clear.
func (a *Arena) Swap(other *Arena) {
	if a == other {
		return
	}
	a.blocks, other.blocks = other.blocks, a.blocks
	a.used, other.used = other.used, a.used
	a.slabs, other.slabs = other.slabs, a.slabs
}
