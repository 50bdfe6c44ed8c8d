// Package stream implements the blocking/non-blocking byte-stream
// capability (spec §4.2): TCP streams, a TLS overlay, and the acceptor that
// produces them. It is deliberately expressed as a capability (interface)
// rather than a class hierarchy — spec §9 calls this out explicitly as a
// re-architecture from the original's virtual-base-class-plus-factory
// design, replaced here with TCPStream/TLSStream as independent concrete
// variants behind the same Stream interface, composed by ownership rather
// than inheritance.
package stream

import "io"

// Stream is the full synchronous capability: connect/disconnect, full
// read/write loops, partial reads, option application, and descriptor
// exposure for reactor registration.
type Stream interface {
	BlockingStream
	// PlatformSocket exposes the underlying descriptor so the reactor can
	// register it with the kernel readiness object. Once a stream has been
	// handed to the reactor, callers must not also call its Read/Write/
	// ReadOnce methods — the descriptor has a single owner at a time.
	PlatformSocket() int
	// Endpoint returns a human-readable peer address when available.
	Endpoint() string
}

// BlockingStream is the synchronous API used outside the reactor: by the
// TLS handshake, the HTTP helpers, and any caller that wants to treat a
// connection like an ordinary blocking socket. Spec §9 calls for splitting
// blocking and non-blocking capabilities rather than mixing them on one
// type; a concrete type (TCPStream, TLSStream) may implement both
// BlockingStream and NonblockingStream, but callers should hold the
// narrowest capability they need.
type BlockingStream interface {
	// Connect resolves host, opens a stream socket, and connects it. In
	// non-blocking mode, completion is awaited with a deadline drawn from
	// Options.ConnectionTimeoutMS; on expiry the socket is closed and
	// ErrTimeout is returned.
	Connect(host string, port int) error
	// Disconnect is idempotent: closes the socket if open, never fails.
	Disconnect() error
	// Write writes exactly len(buf) bytes, looping over partial writes.
	Write(buf []byte) error
	// Read reads exactly len(buf) bytes, blocking until satisfied or error.
	Read(buf []byte) error
	// ReadOnce reads up to len(buf) bytes, returning the count actually
	// read. It returns (0, nil) on orderly peer close, and in non-blocking
	// mode returns (0, ErrWouldBlock) when nothing is currently available.
	ReadOnce(buf []byte) (int, error)
	// StreamIn reads until orderly peer close and returns everything read.
	StreamIn() ([]byte, error)
	// SetOptions applies recognized option fields. Before the socket
	// exists, options are stored and applied at creation; afterwards they
	// are applied immediately.
	SetOptions(opts Options)
}

// NonblockingStream is the narrow capability an admitted connection needs:
// just enough to drive direct, non-blocking recv/send against the
// descriptor from inside the tick. The reactor itself keeps only the
// descriptor of an admitted connection and never calls the wider
// Stream/BlockingStream methods on it — ownership of I/O moves to the tick
// loop, which
// talks to the descriptor directly (mirroring spec §4.4's description of
// Connection as "socket descriptor... pointer to an owned RingBuffer").
type NonblockingStream interface {
	PlatformSocket() int
	Disconnect() error
}

// Acceptor is the bind-listen-accept capability (spec §4.3).
type Acceptor interface {
	// Open binds INADDR_ANY:port with SO_REUSEADDR and begins listening.
	Open(port int) error
	// Accept blocks until a connection arrives and returns a new Stream
	// initialized with the acceptor's current options.
	Accept() (Stream, error)
	// SetOptions updates both the listening socket and the template applied
	// to future accepted streams.
	SetOptions(opts Options)
	// Raw returns the listening descriptor for reactor registration.
	Raw() int
}

var _ io.ReadWriter = (*rwAdapter)(nil)

// rwAdapter adapts a BlockingStream's full-read/full-write contract to
// io.Reader/io.Writer for callers (e.g. wsframe) that want the standard
// interfaces layered over a Stream's record/byte I/O.
type rwAdapter struct {
	s BlockingStream
}

// AsReadWriter exposes a BlockingStream as an io.ReadWriter using its full
// Read/Write loops (not ReadOnce) — appropriate for blocking consumers like
// the WebSocket frame codec and the TLS handshake.
func AsReadWriter(s BlockingStream) io.ReadWriter {
	return &rwAdapter{s: s}
}

func (a *rwAdapter) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := a.s.Read(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (a *rwAdapter) Write(p []byte) (int, error) {
	if err := a.s.Write(p); err != nil {
		return 0, err
	}
	return len(p), nil
}
