package stream

import "time"

// Options holds the recognized StreamOptions fields (spec §3). Options set
// before the underlying socket exists are stored and applied at creation
// time; options set after are applied immediately.
type Options struct {
	// ConnectionTimeoutMS bounds how long a non-blocking connect may linger
	// before failing with ErrTimeout. Zero means no deadline: the connect
	// waits until the socket reports writable.
	ConnectionTimeoutMS int
	// ReadTimeoutMS / WriteTimeoutMS apply SO_RCVTIMEO/SO_SNDTIMEO-equivalent
	// deadlines to blocking reads/writes; expiry surfaces as ErrTimeout.
	// Zero means unlimited.
	ReadTimeoutMS  int
	WriteTimeoutMS int
	// NonBlockMode toggles the non-blocking flag on the underlying
	// descriptor. The reactor always forces this true for sockets it owns.
	NonBlockMode bool
	// WriteBufferSize is advisory; when positive it is applied as SO_SNDBUF
	// on the underlying descriptor.
	WriteBufferSize int
}

// DefaultOptions mirrors the teacher's defaults: blocking mode, unlimited
// timeouts, no advisory buffer size.
func DefaultOptions() Options {
	return Options{}
}

func (o Options) connectTimeout() time.Duration {
	if o.ConnectionTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(o.ConnectionTimeoutMS) * time.Millisecond
}

func (o Options) readTimeout() time.Duration {
	if o.ReadTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(o.ReadTimeoutMS) * time.Millisecond
}

func (o Options) writeTimeout() time.Duration {
	if o.WriteTimeoutMS <= 0 {
		return 0
	}
	return time.Duration(o.WriteTimeoutMS) * time.Millisecond
}
