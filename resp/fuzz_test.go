package resp

import (
	"errors"
	"testing"
)

// FuzzResponseConsume checks two properties over arbitrary input: the
// decoder never panics, and feeding the bytes one at a time produces
// the same result as feeding them all at once.
func FuzzResponseConsume(f *testing.F) {
	f.Add([]byte("+OK\r\n"))
	f.Add([]byte("-ERR boom\r\n"))
	f.Add([]byte(":12345\r\n"))
	f.Add([]byte("$5\r\nhello\r\n"))
	f.Add([]byte("$-1\r\n"))
	f.Add([]byte("*2\r\n$3\r\nfoo\r\n:7\r\n"))
	f.Add([]byte("*-1\r\n"))
	f.Add([]byte("*1\r\n*1\r\n*1\r\n+deep\r\n"))
	f.Add([]byte("$3\r\nab"))
	f.Add([]byte("*"))

	f.Fuzz(func(t *testing.T, data []byte) {
		whole := NewResponse()
		var wb Buffer
		wb.Write(data)
		wholeErr := whole.ConsumePartial(&wb, 1)

		steps := NewResponse()
		var sb Buffer
		var stepErr error
		for i := range data {
			sb.Write(data[i : i+1])
			stepErr = steps.ConsumePartial(&sb, 1)
			if stepErr == nil || !errors.Is(stepErr, ErrIncomplete) {
				break
			}
		}

		if wholeErr == nil {
			if stepErr != nil {
				t.Fatalf("all-at-once decoded but byte-at-a-time failed: %v", stepErr)
			}
			if whole.Reply(0).String() != steps.Reply(0).String() {
				t.Fatalf("decode mismatch: %q vs %q",
					whole.Reply(0).String(), steps.Reply(0).String())
			}
			return
		}
		if !errors.Is(wholeErr, ErrIncomplete) && stepErr == nil {
			t.Fatalf("all-at-once failed (%v) but byte-at-a-time decoded", wholeErr)
		}
	})
}

// FuzzCommandReader checks that arbitrary client bytes never panic the
// inbound command decoder.
func FuzzCommandReader(f *testing.F) {
	f.Add([]byte("*1\r\n$4\r\nPING\r\n"))
	f.Add([]byte("PING\r\n"))
	f.Add([]byte("SET k \"a b\"\r\n"))
	f.Add([]byte("*2\r\n$3\r\nGET\r\n:1\r\n"))
	f.Add([]byte("\r\n\r\nPING\r\n"))

	f.Fuzz(func(t *testing.T, data []byte) {
		var cr CommandReader
		var b Buffer
		b.Write(data)
		for {
			_, err := cr.ReadCommand(&b)
			if err != nil {
				break
			}
		}
	})
}
