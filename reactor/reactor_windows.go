//go:build windows

package reactor

// Reactor has no Windows implementation: the pack carries no IOCP or
// WSAPoll example to ground one on, so Windows is documented as
// unsupported (spec.md explicitly permits this) rather than guessed at.
type Reactor struct{}

func New(cfg Config, cb Callbacks) (*Reactor, error) {
	return nil, ErrUnsupportedPlatform
}

func (r *Reactor) Run() error { return ErrUnsupportedPlatform }

func (r *Reactor) Stop() {}

func (r *Reactor) Close() error { return ErrUnsupportedPlatform }
