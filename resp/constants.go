package resp

// ReplyType identifies the RESP frame kind by its one-byte wire prefix.
type ReplyType byte

// RESP type prefixes.
const (
	TypeStatus  ReplyType = '+'
	TypeError   ReplyType = '-'
	TypeInteger ReplyType = ':'
	TypeBulk    ReplyType = '$'
	TypeArray   ReplyType = '*'

	// TypeNil is not a wire prefix. It marks a Reply that has not been
	// decoded yet, or one decoded from a nil bulk ($-1) or nil array (*-1).
	TypeNil ReplyType = 0
)

// Protocol delimiters.
const (
	// CRLF terminates every RESP line.
	CRLF = "\r\n"
)

// Protocol limits. Frames declaring larger sizes are rejected as fatal
// protocol violations rather than buffered.
const (
	// MaxBulkSize is the maximum accepted bulk string payload (512 MB,
	// matching the redis proto-max-bulk-len default).
	MaxBulkSize = 512 * 1024 * 1024

	// MaxArraySize is the maximum accepted element count for a single
	// array frame (and for an inbound command's argument vector).
	MaxArraySize = 1024 * 1024
)
