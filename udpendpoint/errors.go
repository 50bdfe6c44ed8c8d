package udpendpoint

import "github.com/pkg/errors"

var (
	// ErrBind indicates socket()/bind() failed when constructing the
	// endpoint.
	ErrBind = errors.New("udpendpoint: bind failed")
	// ErrResolve indicates the peer host could not be resolved.
	ErrResolve = errors.New("udpendpoint: resolve failed")
	// ErrIO indicates a sendto/recvfrom failure not covered by a more
	// specific sentinel.
	ErrIO = errors.New("udpendpoint: io error")
	// ErrClosed indicates an operation on an already-closed endpoint.
	ErrClosed = errors.New("udpendpoint: closed")
)
