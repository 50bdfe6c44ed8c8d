package reactor

import "github.com/netloop/netloop/ringbuf"

// State is a Connection's position in the reactor's finite state machine.
type State int

const (
	// Idle is the state a Connection starts in immediately after admission,
	// before on_connect has run.
	Idle State = iota
	// Read means the reactor should drive recv() on this descriptor when
	// it reports readable.
	Read
	// Write means the reactor should drive send() on this descriptor when
	// it reports writable.
	Write
	// Dying is terminal: the connection is reaped (deregistered, closed,
	// buffer returned to the pool) at the end of the current tick.
	Dying
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Read:
		return "Read"
	case Write:
		return "Write"
	case Dying:
		return "Dying"
	default:
		return "Unknown"
	}
}

// stateObserver is notified immediately when a connection's state changes,
// so the reactor can update the kernel readiness set before the next tick's
// wait. This replaces the original's file-scope on_state_changed function
// pointer with an explicit per-connection collaborator installed at
// admission time.
type stateObserver interface {
	onStateChanged(c *Connection, old, new State)
}

// Connection is the reactor's per-socket state: descriptor, pool-owned ring
// buffer, FSM state, and an opaque user context slot. Identity is the
// descriptor — two Connections are equal iff their descriptors match.
type Connection struct {
	fd      int
	buf     *ringbuf.RingBuffer
	state   State
	remote  string
	UserCtx interface{}

	observer stateObserver
}

// Fd returns the connection's socket descriptor.
func (c *Connection) Fd() int { return c.fd }

// Remote returns the peer address string captured at accept time.
func (c *Connection) Remote() string { return c.remote }

// Buffer returns the connection's ring buffer, for callbacks to
// inspect/drain/fill. Callbacks must not retain this reference past their
// own invocation.
func (c *Connection) Buffer() *ringbuf.RingBuffer { return c.buf }

// State returns the connection's current FSM state.
func (c *Connection) State() State { return c.state }

// SetState transitions the connection and immediately notifies the
// installed observer so the kernel readiness set reflects the new state
// before the next tick's wait (spec: "a state change from a callback is
// propagated to the kernel readiness set immediately").
func (c *Connection) SetState(s State) {
	if s == c.state {
		return
	}
	old := c.state
	c.state = s
	if c.observer != nil {
		c.observer.onStateChanged(c, old, s)
	}
}
