//go:build !linux

package reactor

// newReadinessObject has no grounded implementation outside Linux: the
// pack carries no kqueue or WSAPoll example to build one on, so non-Linux
// targets are documented as unsupported rather than guessed at (spec.md
// explicitly permits documenting Windows non-support, and offers the same
// kqueue-or-poll latitude for macOS/BSD that we decline for the same
// grounding reason).
func newReadinessObject() (readinessObject, error) {
	return nil, ErrUnsupportedPlatform
}
