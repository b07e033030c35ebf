package resp

// Command is one inbound command decoded from a client stream: the
// verb followed by its arguments, each an arbitrary byte string.
type Command struct {
	Args [][]byte
}

// Name returns the command verb as sent by the client.
func (c Command) Name() string {
	if len(c.Args) == 0 {
		return ""
	}
	return string(c.Args[0])
}

// CommandReader incrementally decodes inbound commands from a byte
// stream. Commands normally arrive as multibulk frames; bare text lines
// (the inline form used by humans over telnet) are accepted too.
//
// Decode state survives across calls, so a command split over several
// network reads resumes where it stopped. The arguments of a returned
// command are only valid until the next ReadCommand call.
type CommandReader struct {
	arena Arena
	reply Reply
}

// ReadCommand decodes the next command from b. It returns ErrIncomplete
// when the buffered bytes do not yet hold a full command (retry after
// the next read), or a *ProtocolError on malformed framing.
func (cr *CommandReader) ReadCommand(b *Buffer) (Command, error) {
	if cr.reply.arena == nil {
		cr.reply.arena = &cr.arena
	}

	// Previous command's storage is released wholesale once a new
	// command is requested.
	if cr.reply.st == stateDone {
		cr.reply.Reset()
		cr.arena.Clear()
	}

	for {
		// A multibulk frame mid-decode resumes regardless of what the
		// buffer currently starts with.
		if cr.reply.st == stateInit {
			window := b.Bytes()
			if len(window) == 0 {
				return Command{}, ErrIncomplete
			}
			if ReplyType(window[0]) != TypeArray {
				return cr.readInline(b)
			}
		}

		if err := cr.reply.consumePartial(b); err != nil {
			return Command{}, err
		}

		cmd, ok, err := cr.commandFromReply()
		if err != nil {
			return Command{}, err
		}
		if ok {
			return cmd, nil
		}
		// Empty multibulk: ignored, try the next frame.
		cr.reply.Reset()
		cr.arena.Clear()
	}
}

// commandFromReply converts the decoded multibulk into a command.
// ok is false for an empty or nil array, which clients may send as a
// keep-alive and servers ignore.
func (cr *CommandReader) commandFromReply() (Command, bool, error) {
	r := &cr.reply
	if r.null || len(r.elements) == 0 {
		return Command{}, false, nil
	}
	args := make([][]byte, len(r.elements))
	for i := range r.elements {
		el := &r.elements[i]
		if el.typ != TypeBulk || el.null {
			return Command{}, false, protocolErrorf(
				"command argument %d is not a bulk string", i)
		}
		args[i] = el.data
	}
	return Command{Args: args}, true, nil
}

// readInline decodes a bare text command line.
func (cr *CommandReader) readInline(b *Buffer) (Command, error) {
	for {
		line, size, err := readLine(b)
		if err != nil {
			return Command{}, err
		}
		parts, err := splitCommandLine(string(line))
		if err != nil {
			return Command{}, protocolErrorf("invalid inline command: %v", err)
		}
		b.advance(size)
		if len(parts) == 0 {
			// Blank line between inline commands, skip it.
			continue
		}
		args := make([][]byte, len(parts))
		for i, p := range parts {
			args[i] = []byte(p)
		}
		return Command{Args: args}, nil
	}
}
