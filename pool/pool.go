// Package pool recycles ringbuf.RingBuffer instances across connection
// lifetimes (spec §4.5). It is reactor-local and intentionally not
// thread-safe: unlike the teacher's CopyControl (generic/copy.go), which
// guards a shared scratch buffer with a mutex because it is used from
// multiple goroutine-per-connection copy loops, a BufferPool is only ever
// touched by the single reactor thread (spec §5), so no lock is needed —
// adding one here would be paying for a guarantee nothing requires.
package pool

import "github.com/netloop/netloop/ringbuf"

// BufferPool is a LIFO of recycled ring buffers, grounded on hope-io's
// buffer_pool (a deque-backed allocate/redeem/prepool trio).
type BufferPool struct {
	capacity int
	free     []*ringbuf.RingBuffer
}

// New returns a BufferPool that allocates ring buffers of the given fixed
// capacity.
func New(bufferCapacity int) *BufferPool {
	return &BufferPool{capacity: bufferCapacity}
}

// Prepool constructs n buffers in advance, avoiding first-use allocation
// latency during an admission burst (spec §4.5, §8 scenario 5).
func (p *BufferPool) Prepool(n int) {
	for i := 0; i < n; i++ {
		p.free = append(p.free, ringbuf.New(p.capacity))
	}
}

// Allocate pops a recycled buffer if one is available, else constructs a
// new one.
func (p *BufferPool) Allocate() *ringbuf.RingBuffer {
	if n := len(p.free); n > 0 {
		b := p.free[n-1]
		p.free = p.free[:n-1]
		return b
	}
	return ringbuf.New(p.capacity)
}

// Release resets b and returns it to the pool for reuse.
func (p *BufferPool) Release(b *ringbuf.RingBuffer) {
	b.Reset()
	p.free = append(p.free, b)
}

// Len reports how many buffers are currently idle in the pool.
func (p *BufferPool) Len() int { return len(p.free) }
