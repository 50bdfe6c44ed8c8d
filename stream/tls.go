//go:build !windows

package stream

import (
	"crypto/tls"
	"io"
	"net"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/netloop/netloop/tlssupport"
)

// ErrTLS indicates a handshake or record-layer error from the TLS overlay
// (spec §7).
var ErrTLS = errors.New("stream: tls error")

// netConnFromFD bridges a raw, syscall-managed descriptor into a net.Conn so
// crypto/tls's record layer (out of this module's scope per spec §1 — TLS
// handshake and record I/O are specified only as a Stream capability) can
// drive it. The descriptor is duplicated before it is wrapped (and
// net.FileConn duplicates it again), so the TCPStream and the resulting
// net.Conn have independent, separately closeable descriptors sharing the
// same kernel socket.
func netConnFromFD(fd int, name string) (net.Conn, error) {
	dup, err := unix.Dup(fd)
	if err != nil {
		return nil, errors.Wrap(ErrTLS, err.Error())
	}
	f := os.NewFile(uintptr(dup), name)
	defer f.Close()
	conn, err := net.FileConn(f)
	if err != nil {
		return nil, errors.Wrap(ErrTLS, err.Error())
	}
	return conn, nil
}

// TLSStream is a Stream that delegates descriptor, endpoint, and option
// application to an owned TCPStream (composition, not inheritance — spec §9
// re-architects the original's virtual base class this way) while replacing
// read/write/stream_in with TLS record-layer operations.
type TLSStream struct {
	tcp    *TCPStream
	conn   *tls.Conn
	cfg    *tls.Config
	remote string
	handle *tlssupport.Handle
}

var _ Stream = (*TLSStream)(nil)

// NewTLSStream returns an unconnected client-side TLSStream; Connect drives
// both the TCP connect and the TLS client handshake using cfg (ServerName is
// filled in from the dialed host when cfg.ServerName is empty). Acquiring a
// tlssupport.Handle here mirrors the original's init_tls/deinit_tls
// reference-counted guard around every live TLS user (spec §5, §9).
func NewTLSStream(cfg *tls.Config) *TLSStream {
	if cfg == nil {
		cfg = &tls.Config{}
	}
	return &TLSStream{tcp: NewTCPStream(), cfg: cfg, handle: tlssupport.Acquire()}
}

// newTLSServerStream wraps an already-accepted TCPStream, performing the
// server-side TLS handshake (used by TLSAcceptor).
func newTLSServerStream(tcp *TCPStream, cfg *tls.Config) (*TLSStream, error) {
	nc, err := netConnFromFD(tcp.PlatformSocket(), "tls-server")
	if err != nil {
		tcp.Disconnect()
		return nil, err
	}
	sc := tls.Server(nc, cfg)
	if err := sc.Handshake(); err != nil {
		sc.Close()
		tcp.Disconnect()
		return nil, errors.Wrap(ErrTLS, err.Error())
	}
	return &TLSStream{tcp: tcp, conn: sc, remote: tcp.Endpoint(), handle: tlssupport.Acquire()}, nil
}

func (s *TLSStream) PlatformSocket() int { return s.tcp.PlatformSocket() }
func (s *TLSStream) Endpoint() string    { return s.remote }

// Connect opens the underlying TCP stream then performs the client-side TLS
// handshake (spec §4.2's TLS overlay contract).
func (s *TLSStream) Connect(host string, port int) error {
	if err := s.tcp.Connect(host, port); err != nil {
		return err
	}
	nc, err := netConnFromFD(s.tcp.PlatformSocket(), "tls-client")
	if err != nil {
		s.tcp.Disconnect()
		return err
	}
	cfg := s.cfg.Clone()
	if cfg.ServerName == "" {
		cfg.ServerName = host
	}
	cc := tls.Client(nc, cfg)
	if err := cc.Handshake(); err != nil {
		cc.Close()
		s.tcp.Disconnect()
		return errors.Wrap(ErrTLS, err.Error())
	}
	s.conn = cc
	s.remote = s.tcp.Endpoint()
	return nil
}

// Disconnect is idempotent and never fails.
func (s *TLSStream) Disconnect() error {
	if s.conn != nil {
		_ = s.conn.Close()
		s.conn = nil
	}
	if s.handle != nil {
		s.handle.Close()
		s.handle = nil
	}
	return s.tcp.Disconnect()
}

// Write loops until all bytes are sent through the TLS record layer (spec
// §4.2).
func (s *TLSStream) Write(buf []byte) error {
	if s.conn == nil {
		return ErrClosed
	}
	total := 0
	for total < len(buf) {
		n, err := s.conn.Write(buf[total:])
		if err != nil {
			return errors.Wrap(ErrTLS, err.Error())
		}
		total += n
	}
	return nil
}

// Read loops until len(buf) is satisfied (spec §4.2).
func (s *TLSStream) Read(buf []byte) error {
	if s.conn == nil {
		return ErrClosed
	}
	total := 0
	for total < len(buf) {
		n, err := s.conn.Read(buf[total:])
		if err != nil {
			return errors.Wrap(ErrTLS, err.Error())
		}
		if n == 0 {
			return errors.Wrap(ErrTLS, "tls connection closed before read was satisfied")
		}
		total += n
	}
	return nil
}

// ReadOnce reads up to len(buf) bytes of decrypted application data.
func (s *TLSStream) ReadOnce(buf []byte) (int, error) {
	if s.conn == nil {
		return 0, ErrClosed
	}
	n, err := s.conn.Read(buf)
	if err == io.EOF {
		return n, nil
	}
	if err != nil {
		return n, errors.Wrap(ErrTLS, err.Error())
	}
	return n, nil
}

// StreamIn reads TLS records until the peer closes.
func (s *TLSStream) StreamIn() ([]byte, error) {
	var out []byte
	buf := make([]byte, 4096)
	for {
		n, err := s.ReadOnce(buf)
		if n > 0 {
			out = append(out, buf[:n]...)
		}
		if err != nil {
			return out, err
		}
		if n == 0 {
			return out, nil
		}
	}
}

// SetOptions delegates option application to the underlying TCP stream;
// TLS record I/O has no options of its own.
func (s *TLSStream) SetOptions(opts Options) { s.tcp.SetOptions(opts) }

// TLSAcceptor composes a TCPAcceptor, performing the server-side TLS
// handshake on each accepted TCP stream before returning it (spec §4.3).
type TLSAcceptor struct {
	tcp    *TCPAcceptor
	cfg    *tls.Config
	handle *tlssupport.Handle
}

var _ Acceptor = (*TLSAcceptor)(nil)

// NewTLSAcceptor wraps a TCPAcceptor with the given server TLS config,
// holding one tlssupport reference for the acceptor's lifetime (every
// stream it hands out via Accept acquires its own, separate handle).
func NewTLSAcceptor(cfg *tls.Config) *TLSAcceptor {
	return &TLSAcceptor{tcp: NewTCPAcceptor(), cfg: cfg, handle: tlssupport.Acquire()}
}

func (a *TLSAcceptor) Open(port int) error     { return a.tcp.Open(port) }
func (a *TLSAcceptor) SetOptions(opts Options) { a.tcp.SetOptions(opts) }
func (a *TLSAcceptor) Raw() int                { return a.tcp.Raw() }

// Close releases the acceptor's own tlssupport handle and the underlying
// listening socket.
func (a *TLSAcceptor) Close() error {
	if a.handle != nil {
		a.handle.Close()
		a.handle = nil
	}
	return a.tcp.Close()
}

// Accept accepts a TCP connection then performs the server-side TLS
// handshake before returning the resulting Stream.
func (a *TLSAcceptor) Accept() (Stream, error) {
	s, err := a.tcp.Accept()
	if err != nil {
		return nil, err
	}
	tcpStream, ok := s.(*TCPStream)
	if !ok {
		return nil, errors.Wrap(ErrAccept, "tls acceptor requires a TCPStream")
	}
	return newTLSServerStream(tcpStream, a.cfg)
}
