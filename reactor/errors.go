package reactor

import "github.com/pkg/errors"

// ErrUnsupportedPlatform is returned by readiness-object constructors on
// platforms with no grounded poller implementation (see poller_other.go).
var ErrUnsupportedPlatform = errors.New("reactor: unsupported platform")

// ErrStopped indicates the reactor's Run loop has already exited.
var ErrStopped = errors.New("reactor: stopped")

// ErrListen wraps failures opening the listening acceptor.
var ErrListen = errors.New("reactor: listen failed")
