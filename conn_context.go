package redis

// Destroyable is a session resource with polymorphic teardown.
type Destroyable interface {
	Destroy()
}

// ConnContext carries per-connection state for handlers: the peer
// address and an optional session slot. At most one session is live per
// context, and teardown is ordered: the old session is always destroyed
// before a replacement is installed or the context is discarded.
//
// A ConnContext is only touched from its connection's goroutine.
type ConnContext struct {
	// RemoteAddr is the peer address, for diagnostics.
	RemoteAddr string

	session Destroyable
}

// Session returns the current session, or nil.
func (c *ConnContext) Session() Destroyable {
	return c.session
}

// ReplaceSession installs a new session, destroying any existing one
// first so a session replacement (re-authentication, protocol upgrade)
// cannot leak the old resource. A nil session just clears the slot.
func (c *ConnContext) ReplaceSession(session Destroyable) {
	if c.session != nil {
		c.session.Destroy()
	}
	c.session = session
}

// Destroy tears down the held session, then leaves the context empty.
// The server calls it exactly once when the connection ends.
func (c *ConnContext) Destroy() {
	if c.session != nil {
		c.session.Destroy()
		c.session = nil
	}
}
