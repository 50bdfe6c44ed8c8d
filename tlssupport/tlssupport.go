// Package tlssupport provides the reference-counted global TLS
// initialization handle spec.md §5/§9 calls for, grounded on
// original_source/lib/hope-io/net/tls/tls_init.cpp's mutex-guarded
// init_tls/deinit_tls counter. Go's crypto/tls needs no library-wide
// init/deinit call of its own, but the counter contract — nestable,
// idempotent across matched pairs, safe from any goroutine — is carried
// over unchanged as the one process-wide piece of shared mutable state
// the reactor-core still owns. Every stream.TLSStream and
// stream.TLSAcceptor acquires its own handle for its lifetime and releases
// it on Disconnect/Close.
package tlssupport

import "sync"

var (
	mu    sync.Mutex
	count int
)

// Handle is returned by Acquire; Close decrements the shared counter
// exactly once. Closing a Handle more than once is a no-op, matching the
// "idempotent across matched pairs" requirement.
type Handle struct {
	mu     sync.Mutex
	closed bool
}

// Acquire increments the process-wide TLS reference count and returns a
// handle whose Close decrements it. Safe to call from any goroutine, and
// safe to nest: n Acquire calls followed by n Close calls leaves the
// counter at exactly the value it started at.
func Acquire() *Handle {
	mu.Lock()
	count++
	mu.Unlock()
	return &Handle{}
}

// Close releases this handle's reference. Safe to call more than once.
func (h *Handle) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	mu.Lock()
	count--
	mu.Unlock()
}

// Count reports the current reference count, for tests and diagnostics.
func Count() int {
	mu.Lock()
	defer mu.Unlock()
	return count
}
