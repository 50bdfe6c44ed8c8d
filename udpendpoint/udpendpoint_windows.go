//go:build windows

package udpendpoint

import "errors"

// ErrUnsupportedPlatform mirrors the stream package's Windows stub: no
// pack example grounds a Windows datagram-socket implementation.
var ErrUnsupportedPlatform = errors.New("udpendpoint: unsupported platform")

type Builder struct{}

func NewBuilder() *Builder { return &Builder{} }

func (b *Builder) PlatformSocket() int { return -1 }
func (b *Builder) Init(port int) error { return ErrUnsupportedPlatform }
func (b *Builder) Port() (int, error)  { return 0, ErrUnsupportedPlatform }
func (b *Builder) Close() error        { return ErrUnsupportedPlatform }

type Option func(*struct{})

func WithCompression() Option { return func(*struct{}) {} }

type Sender struct{}

func NewSender(opts ...Option) (*Sender, error) { return nil, ErrUnsupportedPlatform }

func (s *Sender) PlatformSocket() int                 { return -1 }
func (s *Sender) Connect(host string, port int) error { return ErrUnsupportedPlatform }
func (s *Sender) Disconnect() error                   { return ErrUnsupportedPlatform }
func (s *Sender) Write(data []byte) error             { return ErrUnsupportedPlatform }

type Receiver struct{}

func NewReceiver(fd int, opts ...Option) *Receiver { return &Receiver{} }

func (r *Receiver) PlatformSocket() int                 { return -1 }
func (r *Receiver) Connect(host string, port int) error { return ErrUnsupportedPlatform }
func (r *Receiver) Disconnect() error                   { return ErrUnsupportedPlatform }
func (r *Receiver) Read(buf []byte) (int, error)        { return 0, ErrUnsupportedPlatform }
