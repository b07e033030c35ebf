// Package resp provides a low-level wire implementation of the Redis
// Serialization Protocol (RESP) built for pipelining.
//
// This package serves as a foundation for building higher-level redis
// clients and servers with different properties (connection pooling,
// batching, dispatch). It focuses on correctness and performance of
// serialization and incremental parsing, without imposing architectural
// decisions on callers.
//
// # Core types
//
//   - Request: an append-only buffer of pipelined commands with an
//     all-or-nothing error policy
//   - Response: an incremental decoder producing one Reply per
//     pipelined command
//   - Reply: one decoded RESP value, owned by an Arena
//   - Buffer: the byte window between the socket and the decoder
//
// # Incremental decoding
//
// Response.ConsumePartial and CommandReader.ReadCommand accept bytes as
// they arrive. When the buffered bytes do not hold a complete frame
// they return ErrIncomplete; the caller performs another read, appends
// to the same Buffer, and calls again. Decode progress is stored in the
// value tree itself, so a single reply may straddle any number of
// reads, at any nesting depth:
//
//	var buf resp.Buffer
//	rsp := resp.NewResponse()
//	for {
//		n, err := conn.Read(scratch)
//		...
//		buf.Write(scratch[:n])
//		err = rsp.ConsumePartial(&buf, expected)
//		if errors.Is(err, resp.ErrIncomplete) {
//			continue
//		}
//		...
//	}
//
// # Memory model
//
// Reply trees never own heap memory directly: payloads and nested
// slots come from the Response's Arena and are released together by
// Response.Clear. A Reply must not be used after the arena backing it
// is cleared or swapped. Merging responses copies reply storage across
// arenas instead of aliasing it.
package resp
