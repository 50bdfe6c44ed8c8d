package reactor

import "github.com/netloop/netloop/stream"

// Callbacks are the four user hooks the reactor dispatches in response to
// kernel events and state transitions. Callbacks MUST NOT block — the
// reactor is strictly single-threaded cooperative, and a blocking callback
// halts every other connection.
type Callbacks struct {
	OnConnect func(c *Connection)
	OnRead    func(c *Connection)
	OnWrite   func(c *Connection)
	OnErr     func(c *Connection, err error)
}

// Config mirrors ReactorConfig (port, admission limits, poll timeout, and an
// optional acceptor override) and adds BufferCapacity, the per-connection
// ring buffer size.
type Config struct {
	Port int

	// MaxConcurrentConnections sizes the active-connection table and the
	// prepooled buffers.
	MaxConcurrentConnections int

	// MaxAcceptsPerTick bounds how many accept() calls a single Admit
	// phase may make.
	MaxAcceptsPerTick int

	// PollTimeoutMS bounds the readiness wait's sleep.
	PollTimeoutMS int

	// BufferCapacity sizes each connection's ring buffer.
	BufferCapacity int

	// CustomAcceptor, if set, is used instead of a plain TCPAcceptor
	// (injection point for TLS or other acceptor flavors). Ownership
	// stays with the caller, who must outlive the reactor.
	CustomAcceptor stream.Acceptor
}

// DefaultConfig matches the platform table's defaults exactly.
func DefaultConfig(port int) Config {
	return Config{
		Port:                     port,
		MaxConcurrentConnections: 1024,
		MaxAcceptsPerTick:        128,
		PollTimeoutMS:            1000,
		BufferCapacity:           524288,
	}
}
