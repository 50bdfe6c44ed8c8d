//go:build !windows

package stream

import (
	"net"
	"strconv"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// TCPAcceptor is the default Acceptor: a plain TCP listening socket managed
// through raw descriptor syscalls, grounded on hope-io's nix_acceptor.cpp.
type TCPAcceptor struct {
	fd   int
	opts Options
}

var _ Acceptor = (*TCPAcceptor)(nil)

// NewTCPAcceptor returns an unopened acceptor.
func NewTCPAcceptor() *TCPAcceptor {
	return &TCPAcceptor{fd: -1}
}

func (a *TCPAcceptor) Raw() int { return a.fd }

// Port returns the bound local port, useful after Open(0) lets the kernel
// pick an ephemeral port (tests and samples that want to discover it).
func (a *TCPAcceptor) Port() (int, error) {
	sa, err := unix.Getsockname(a.fd)
	if err != nil {
		return 0, errors.Wrap(err, "acceptor.Port: getsockname")
	}
	in4, ok := sa.(*unix.SockaddrInet4)
	if !ok {
		return 0, errors.New("acceptor.Port: unexpected sockaddr type")
	}
	return in4.Port, nil
}

// Open creates a stream socket with SO_REUSEADDR, binds INADDR_ANY:port, and
// begins listening with a backlog of 128 (spec §4.3 asks for >=10).
func (a *TCPAcceptor) Open(port int) error {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return errors.Wrap(err, "acceptor.Open: socket()")
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return errors.Wrap(ErrBind, err.Error())
	}
	sa := &unix.SockaddrInet4{Port: port}
	if err := unix.Bind(fd, sa); err != nil {
		unix.Close(fd)
		return errors.Wrap(ErrBind, err.Error())
	}
	const backlog = 128
	if err := unix.Listen(fd, backlog); err != nil {
		unix.Close(fd)
		return errors.Wrap(ErrListen, err.Error())
	}
	a.fd = fd
	a.SetOptions(a.opts)
	return nil
}

// Accept blocks until a connection arrives, returning a new Stream
// initialized with the acceptor's current options (spec §4.3).
func (a *TCPAcceptor) Accept() (Stream, error) {
	if a.fd < 0 {
		return nil, ErrClosed
	}
	nfd, sa, err := unix.Accept(a.fd)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			return nil, ErrWouldBlock
		}
		return nil, errors.Wrap(ErrAccept, err.Error())
	}
	remote := "unknown"
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		remote = net.JoinHostPort(net.IP(in4.Addr[:]).String(), strconv.Itoa(in4.Port))
	}
	return newTCPStreamFromFD(nfd, remote, a.opts), nil
}

// SetOptions updates the listening socket's non-blocking flag (if
// applicable) and the template applied to future accepted streams (spec
// §4.3). Before Open, options are only stored.
func (a *TCPAcceptor) SetOptions(opts Options) {
	a.opts = opts
	if a.fd < 0 {
		return
	}
	_ = unix.SetNonblock(a.fd, opts.NonBlockMode)
}

// Close is idempotent and closes the listening descriptor, if open.
func (a *TCPAcceptor) Close() error {
	if a.fd < 0 {
		return nil
	}
	err := unix.Close(a.fd)
	a.fd = -1
	return err
}
