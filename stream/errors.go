package stream

import "errors"

// Error taxonomy for the Stream and Acceptor capabilities (spec §7). These
// are sentinel values; callers compare with errors.Is. Underlying OS/runtime
// errors are attached via github.com/pkg/errors.Wrap at the point they are
// translated into one of these, so the original cause is never discarded.
var (
	// ErrResolve indicates hostname resolution failed.
	ErrResolve = errors.New("stream: resolve failed")
	// ErrConnect indicates the transport connect failed or timed out.
	ErrConnect = errors.New("stream: connect failed")
	// ErrBind indicates the acceptor could not bind its listening address.
	ErrBind = errors.New("stream: bind failed")
	// ErrListen indicates the acceptor could not start listening.
	ErrListen = errors.New("stream: listen failed")
	// ErrAccept indicates a failure admitting a connection.
	ErrAccept = errors.New("stream: accept failed")
	// ErrIO indicates recv/send failed with a non-retriable code.
	ErrIO = errors.New("stream: io error")
	// ErrWouldBlock is a transient non-blocking signal, never surfaced past
	// the reactor boundary to user callbacks.
	ErrWouldBlock = errors.New("stream: would block")
	// ErrTimeout indicates a deadline expired on connect or blocking I/O.
	ErrTimeout = errors.New("stream: timeout")
	// ErrClosed indicates an operation was attempted on a disconnected stream.
	ErrClosed = errors.New("stream: closed")
)
