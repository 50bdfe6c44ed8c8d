//go:build !windows

package stream

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// TCPStream is the default Stream implementation: a plain, unencrypted TCP
// socket managed directly through raw descriptor syscalls (grounded on
// hope-io's nix_stream.cpp / nix_acceptor.cpp), rather than through net.Conn,
// so the reactor can register the exact same descriptor with its kernel
// readiness object without indirection. TCPStream implements both Stream
// (the full blocking capability) and NonblockingStream (the narrow
// capability the reactor holds post-admission).
type TCPStream struct {
	fd     int
	opts   Options
	remote string
}

var (
	_ Stream            = (*TCPStream)(nil)
	_ NonblockingStream = (*TCPStream)(nil)
)

// NewTCPStream returns an unconnected TCPStream. Options set before Connect
// or before the acceptor hands over a socket are deferred and applied on
// creation, per spec §3.
func NewTCPStream() *TCPStream {
	return &TCPStream{fd: -1}
}

// newTCPStreamFromFD wraps an already-open descriptor (produced by Accept),
// applying the acceptor's template options immediately.
func newTCPStreamFromFD(fd int, remote string, opts Options) *TCPStream {
	s := &TCPStream{fd: fd, remote: remote}
	s.SetOptions(opts)
	return s
}

func (s *TCPStream) PlatformSocket() int { return s.fd }

func (s *TCPStream) Endpoint() string { return s.remote }

// Connect resolves host, opens a stream socket, and connects it (spec
// §4.2). In non-blocking mode, completion is awaited via a writability
// check bounded by Options.ConnectionTimeoutMS.
func (s *TCPStream) Connect(host string, port int) error {
	ips, err := net.LookupIP(host)
	if err != nil || len(ips) == 0 {
		return errors.Wrap(wrapOrErr(err, ErrResolve), "stream.Connect: resolve "+host)
	}
	var ip4 [4]byte
	found := false
	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			copy(ip4[:], v4)
			found = true
			break
		}
	}
	if !found {
		return errors.Wrap(ErrResolve, "stream.Connect: no IPv4 address for "+host)
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return errors.Wrap(err, "stream.Connect: socket()")
	}

	if s.opts.NonBlockMode {
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			return errors.Wrap(err, "stream.Connect: set non-blocking")
		}
	}

	sa := &unix.SockaddrInet4{Port: port, Addr: ip4}
	err = unix.Connect(fd, sa)
	if err != nil && err != unix.EINPROGRESS {
		unix.Close(fd)
		return errors.Wrap(ErrConnect, err.Error())
	}
	if err == unix.EINPROGRESS {
		if werr := waitWritable(fd, s.opts.connectTimeout()); werr != nil {
			unix.Close(fd)
			return werr
		}
		if serr, _ := unix.GetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_ERROR); serr != 0 {
			unix.Close(fd)
			return errors.Wrapf(ErrConnect, "connect() failed: errno %d", serr)
		}
	}

	s.fd = fd
	s.remote = net.JoinHostPort(host, strconv.Itoa(port))
	s.SetOptions(s.opts)
	return nil
}

// waitWritable blocks until fd is writable or deadline expires, used to
// await completion of a non-blocking connect (spec §4.2).
func waitWritable(fd int, deadline time.Duration) error {
	timeoutMS := -1
	if deadline > 0 {
		timeoutMS = int(deadline / time.Millisecond)
	}
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLOUT}}
	for {
		n, err := unix.Poll(fds, timeoutMS)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "stream.Connect: poll")
		}
		if n == 0 {
			return errors.Wrap(ErrTimeout, "stream.Connect: connection timed out")
		}
		return nil
	}
}

// Disconnect is idempotent and never fails (spec §4.2, §8).
func (s *TCPStream) Disconnect() error {
	if s.fd < 0 {
		return nil
	}
	_ = unix.Close(s.fd)
	s.fd = -1
	return nil
}

// Write writes exactly len(buf) bytes, looping over partial writes (spec
// §4.2). The "source has two divergent nix implementations" note in spec §9
// applies to Read, not Write, but the full-loop contract is identical: this
// must never accumulate into a doubled counter, only advance by the actual
// bytes sent each iteration.
func (s *TCPStream) Write(buf []byte) error {
	if s.fd < 0 {
		return ErrClosed
	}
	total := 0
	for total < len(buf) {
		n, err := unix.Write(s.fd, buf[total:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				if !s.opts.NonBlockMode {
					// Blocking mode: EAGAIN means SO_SNDTIMEO expired.
					return errors.Wrap(ErrTimeout, "stream.Write: send timed out")
				}
				continue
			}
			if err == unix.EINTR {
				continue
			}
			return errors.Wrap(ErrIO, err.Error())
		}
		if n == 0 {
			return errors.Wrap(ErrIO, "write returned 0")
		}
		total += n
	}
	return nil
}

// Read reads exactly len(buf) bytes, blocking until satisfied or error
// (spec §4.2). This is the corrected full-read loop: the intended contract
// from spec §9's design notes, advancing by the bytes actually received each
// call rather than doubling the running count.
func (s *TCPStream) Read(buf []byte) error {
	if s.fd < 0 {
		return ErrClosed
	}
	total := 0
	for total < len(buf) {
		n, err := unix.Read(s.fd, buf[total:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				if !s.opts.NonBlockMode {
					// Blocking mode: EAGAIN means SO_RCVTIMEO expired.
					return errors.Wrap(ErrTimeout, "stream.Read: recv timed out")
				}
				continue
			}
			if err == unix.EINTR {
				continue
			}
			return errors.Wrap(ErrIO, err.Error())
		}
		if n == 0 {
			return errors.Wrap(ErrIO, "connection closed before read was satisfied")
		}
		total += n
	}
	return nil
}

// ReadOnce reads up to len(buf) bytes (spec §4.2).
func (s *TCPStream) ReadOnce(buf []byte) (int, error) {
	if s.fd < 0 {
		return 0, ErrClosed
	}
	for {
		n, err := unix.Read(s.fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return 0, ErrWouldBlock
			}
			if err == unix.EINTR {
				continue
			}
			return 0, errors.Wrap(ErrIO, err.Error())
		}
		return n, nil
	}
}

// StreamIn reads until orderly peer close, returning everything read (spec
// §4.2). Used by the HTTP helpers for simple request/response exchanges.
func (s *TCPStream) StreamIn() ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := s.ReadOnce(buf)
		if err != nil {
			if err == ErrWouldBlock {
				continue
			}
			return out, err
		}
		if n == 0 {
			return out, nil
		}
		out = append(out, buf[:n]...)
	}
}

// SetOptions applies recognized fields immediately if the socket exists, or
// stores them for application at creation time otherwise (spec §3).
func (s *TCPStream) SetOptions(opts Options) {
	s.opts = opts
	if s.fd < 0 {
		return
	}
	_ = unix.SetNonblock(s.fd, opts.NonBlockMode)
	if opts.ReadTimeoutMS > 0 {
		_ = unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_RCVTIMEO, durationToTimeval(opts.readTimeout()))
	}
	if opts.WriteTimeoutMS > 0 {
		_ = unix.SetsockoptTimeval(s.fd, unix.SOL_SOCKET, unix.SO_SNDTIMEO, durationToTimeval(opts.writeTimeout()))
	}
	if opts.WriteBufferSize > 0 {
		_ = unix.SetsockoptInt(s.fd, unix.SOL_SOCKET, unix.SO_SNDBUF, opts.WriteBufferSize)
	}
}

func durationToTimeval(d time.Duration) *unix.Timeval {
	tv := unix.NsecToTimeval(d.Nanoseconds())
	return &tv
}

func wrapOrErr(cause error, sentinel error) error {
	if cause == nil {
		return sentinel
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
