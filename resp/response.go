package resp

import (
	"fmt"
	"strings"
)

// Response incrementally decodes the replies of one pipeline. The first
// reply decodes into an inline slot (a pipeline of one is the common
// case); replies beyond the first go into an overflow block allocated
// from the response's arena, sized once per decode pass.
//
// All reply storage belongs to the response's private arena and is
// released in one step by Clear.
type Response struct {
	firstReply Reply
	others     []Reply
	nreply     int
	consumed   int64
	arena      Arena
}

// NewResponse returns an empty response.
func NewResponse() *Response {
	r := &Response{}
	r.init()
	return r
}

func (r *Response) init() {
	if r.firstReply.arena == nil {
		r.firstReply.arena = &r.arena
	}
}

// ReplyCount returns the number of fully decoded replies. A reply
// currently suspended mid-decode is not counted.
func (r *Response) ReplyCount() int {
	return r.nreply
}

// ConsumedBytes returns the total bytes consumed from input buffers,
// including bytes of frames still mid-decode.
func (r *Response) ConsumedBytes() int64 {
	return r.consumed
}

// Reply returns the i-th decoded reply, or nil when out of range.
func (r *Response) Reply(i int) *Reply {
	switch {
	case i < 0 || i >= r.nreply:
		return nil
	case i == 0:
		return &r.firstReply
	default:
		return &r.others[i-1]
	}
}

// ConsumePartial decodes replies from b until replyCount replies are
// complete or the buffered bytes run out.
//
// It returns nil when all replyCount replies are decoded, ErrIncomplete
// when more bytes are needed (call again with the same response and
// buffer once they arrive; decode state is kept in the reply tree, not
// on the call stack), or a fatal error on malformed framing, which the
// caller must treat as unrecoverable for the connection.
//
// replyCount is the total expected for the current pipeline and must
// not shrink or grow between resumed calls: the overflow block is
// allocated exactly once per decode pass.
func (r *Response) ConsumePartial(b *Buffer, replyCount int) error {
	r.init()
	before := b.Len()
	err := r.consume(b, replyCount)
	r.consumed += int64(before - b.Len())
	return err
}

func (r *Response) consume(b *Buffer, replyCount int) error {
	if replyCount < 1 {
		return fmt.Errorf("resp: reply count %d out of range", replyCount)
	}

	if r.nreply == 0 {
		if err := r.firstReply.consumePartial(b); err != nil {
			return err
		}
		r.nreply = 1
	}

	if replyCount > 1 {
		if r.others == nil {
			r.others = r.arena.AllocateReplies(replyCount - 1)
		}
		if replyCount-1 > len(r.others) {
			return fmt.Errorf("resp: reply count grew from %d to %d mid-decode",
				len(r.others)+1, replyCount)
		}
		for i := r.nreply; i < replyCount; i++ {
			if err := r.others[i-1].consumePartial(b); err != nil {
				return err
			}
			r.nreply++
		}
	}
	return nil
}

// Merge appends other's replies after r's, preserving order. Storage is
// copied, never aliased: other's replies are deep-copied into r's arena
// and other is left untouched. Consumed-byte totals accumulate.
//
// Merging a response with itself is invalid and panics: the overflow
// block cannot be rebuilt from storage it is replacing.
func (r *Response) Merge(other *Response) {
	if r == other {
		panic("resp: Response.Merge with itself")
	}
	r.init()
	if other.nreply == 0 {
		return
	}
	r.consumed += other.consumed

	hadNone := r.nreply == 0
	if hadNone {
		r.firstReply.copyFromDifferentArena(other.Reply(0))
	}

	newCount := r.nreply + other.nreply
	if newCount == 1 {
		r.nreply = 1
		return
	}

	// The overflow block is rebuilt at the merged size: existing entries
	// move within the same arena, other's entries cross arenas.
	newOthers := r.arena.AllocateReplies(newCount - 1)
	idx := 0
	for i := 1; i < r.nreply; i++ {
		newOthers[idx].copyFromSameArena(&r.others[i-1])
		idx++
	}
	start := 0
	if hadNone {
		start = 1
	}
	for i := start; i < other.nreply; i++ {
		newOthers[idx].copyFromDifferentArena(other.Reply(i))
		idx++
	}
	r.others = newOthers
	r.nreply = newCount
}

// Clear resets the response to empty and bulk-releases all reply
// storage. The release is O(arena blocks), not O(reply nodes).
func (r *Response) Clear() {
	r.init()
	r.firstReply.Reset()
	r.others = nil
	r.arena.Clear()
	r.nreply = 0
	r.consumed = 0
}

// String renders the response for diagnostics.
func (r *Response) String() string {
	switch r.nreply {
	case 0:
		return "<empty response>"
	case 1:
		return r.firstReply.String()
	default:
		parts := make([]string, r.nreply)
		for i := 0; i < r.nreply; i++ {
			parts[i] = r.Reply(i).String()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	}
}
