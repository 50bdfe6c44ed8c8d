//go:build windows

package stream

import "errors"

// ErrUnsupportedPlatform is returned on Windows by the stubs' Connect,
// Disconnect, Read, Write, ReadOnce, StreamIn, Open and Accept methods; the
// constructors return nil and the remaining methods do nothing. Spec
// §6/§9 explicitly permits leaving Windows unimplemented and documenting it
// rather than guessing at a WSAPoll-backed port with nothing in the
// retrieval pack to ground it on.
var ErrUnsupportedPlatform = errors.New("stream: windows is not supported, see spec §9")

func NewTCPStream() *TCPStream { return nil }

type TCPStream struct{}

func (s *TCPStream) Connect(host string, port int) error { return ErrUnsupportedPlatform }
func (s *TCPStream) Disconnect() error                   { return ErrUnsupportedPlatform }
func (s *TCPStream) Write(buf []byte) error               { return ErrUnsupportedPlatform }
func (s *TCPStream) Read(buf []byte) error                { return ErrUnsupportedPlatform }
func (s *TCPStream) ReadOnce(buf []byte) (int, error)     { return 0, ErrUnsupportedPlatform }
func (s *TCPStream) StreamIn() ([]byte, error)            { return nil, ErrUnsupportedPlatform }
func (s *TCPStream) SetOptions(opts Options)              {}
func (s *TCPStream) PlatformSocket() int                  { return -1 }
func (s *TCPStream) Endpoint() string                     { return "" }

func NewTCPAcceptor() *TCPAcceptor { return nil }

type TCPAcceptor struct{}

var (
	_ Stream   = (*TCPStream)(nil)
	_ Acceptor = (*TCPAcceptor)(nil)
)

func (a *TCPAcceptor) Open(port int) error    { return ErrUnsupportedPlatform }
func (a *TCPAcceptor) Accept() (Stream, error) { return nil, ErrUnsupportedPlatform }
func (a *TCPAcceptor) SetOptions(opts Options) {}
func (a *TCPAcceptor) Raw() int                { return -1 }
