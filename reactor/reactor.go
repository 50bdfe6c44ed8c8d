//go:build !windows

package reactor

import (
	"sync/atomic"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/netloop/netloop/pool"
	"github.com/netloop/netloop/stream"
)

// Reactor is the single-threaded readiness loop described in spec.md §4.4:
// it admits new sockets, drives read/write on ready ones, recycles buffers,
// and propagates connection state changes to the kernel readiness set.
type Reactor struct {
	cfg       Config
	cb        Callbacks
	acceptor  stream.Acceptor
	ownAccept bool
	ready     readinessObject
	pool      *pool.BufferPool
	conns     map[int]*Connection
	stopped   int32
}

var _ stateObserver = (*Reactor)(nil)

// New constructs a Reactor: it opens a listening TCPAcceptor on cfg.Port
// (or adopts cfg.CustomAcceptor, if set), switches it to non-blocking mode,
// prepools the ring buffers, and creates the readiness object with the
// listening descriptor registered. Call Run to start the tick loop.
func New(cfg Config, cb Callbacks) (*Reactor, error) {
	if cfg.MaxConcurrentConnections <= 0 {
		cfg.MaxConcurrentConnections = 1024
	}
	if cfg.MaxAcceptsPerTick <= 0 {
		cfg.MaxAcceptsPerTick = 128
	}
	if cfg.PollTimeoutMS <= 0 {
		cfg.PollTimeoutMS = 1000
	}
	if cfg.BufferCapacity <= 0 {
		cfg.BufferCapacity = 524288
	}

	r := &Reactor{
		cfg:   cfg,
		cb:    cb,
		pool:  pool.New(cfg.BufferCapacity),
		conns: make(map[int]*Connection, cfg.MaxConcurrentConnections),
	}
	r.pool.Prepool(cfg.MaxConcurrentConnections)

	if cfg.CustomAcceptor != nil {
		r.acceptor = cfg.CustomAcceptor
	} else {
		acc := stream.NewTCPAcceptor()
		if err := acc.Open(cfg.Port); err != nil {
			return nil, errors.Wrap(ErrListen, err.Error())
		}
		r.acceptor = acc
		r.ownAccept = true
	}
	r.acceptor.SetOptions(stream.Options{NonBlockMode: true})

	ready, err := newReadinessObject()
	if err != nil {
		if r.ownAccept {
			r.acceptor.(*stream.TCPAcceptor).Close()
		}
		return nil, err
	}
	r.ready = ready

	if err := r.ready.Add(r.acceptor.Raw(), true, false); err != nil {
		r.ready.Close()
		return nil, err
	}
	return r, nil
}

// Stop asynchronously requests the tick loop to exit: it sets an atomic
// flag, and Run returns after completing its current tick (spec.md:
// "stop() sets an atomic flag; the current tick completes and the loop
// exits"). Safe to call from any goroutine.
func (r *Reactor) Stop() {
	atomic.StoreInt32(&r.stopped, 1)
}

func (r *Reactor) stopping() bool {
	return atomic.LoadInt32(&r.stopped) != 0
}

// Run executes the Wait → Admit → Service → Reap tick loop until Stop is
// called. Reaping of remaining connections on shutdown is best-effort.
func (r *Reactor) Run() error {
	events := make([]event, 0, 256)
	for !r.stopping() {
		var err error
		events, err = r.ready.Wait(events[:0], r.cfg.PollTimeoutMS)
		if err != nil {
			return err
		}

		listenFd := r.acceptor.Raw()
		for _, ev := range events {
			if ev.fd == listenFd {
				r.admit()
				continue
			}
			c, ok := r.conns[ev.fd]
			if !ok {
				continue
			}
			r.service(c, ev)
		}
		r.reap()
	}
	return nil
}

// admit accepts up to MaxAcceptsPerTick new connections (spec.md §4.4
// step 2).
func (r *Reactor) admit() {
	for i := 0; i < r.cfg.MaxAcceptsPerTick; i++ {
		if len(r.conns) >= r.cfg.MaxConcurrentConnections {
			// At capacity: leave the pending connection in the kernel's
			// listen backlog rather than accept()-ing and immediately
			// resetting it (spec.md §8 invariant 5 — admission blocks
			// beyond this limit by not calling accept).
			return
		}

		s, err := r.acceptor.Accept()
		if err != nil {
			if err == stream.ErrWouldBlock {
				return
			}
			if r.cb.OnErr != nil {
				r.cb.OnErr(nil, err)
			}
			return
		}
		fd := s.PlatformSocket()
		if err := unix.SetNonblock(fd, true); err != nil {
			unix.Close(fd)
			if r.cb.OnErr != nil {
				r.cb.OnErr(nil, errors.Wrap(err, "reactor: set non-blocking on accepted socket"))
			}
			continue
		}

		c := &Connection{
			fd:       fd,
			buf:      r.pool.Allocate(),
			state:    Idle,
			remote:   s.Endpoint(),
			observer: r,
		}
		if err := r.ready.Add(fd, false, false); err != nil {
			unix.Close(fd)
			r.pool.Release(c.buf)
			if r.cb.OnErr != nil {
				r.cb.OnErr(c, err)
			}
			continue
		}
		r.conns[fd] = c
		if r.cb.OnConnect != nil {
			r.cb.OnConnect(c)
		}
	}
}

// service dispatches a ready non-listening descriptor by event (spec.md
// §4.4 step 3).
func (r *Reactor) service(c *Connection, ev event) {
	if ev.hangup || ev.errored {
		if r.cb.OnErr != nil {
			r.cb.OnErr(c, errors.New("reactor: hangup or error on socket"))
		}
		c.SetState(Dying)
		return
	}
	if ev.readable {
		r.serviceRead(c)
	}
	if c.state != Dying && ev.writable {
		r.serviceWrite(c)
	}
}

func (r *Reactor) serviceRead(c *Connection) {
	if c.state != Read {
		return
	}
	for {
		span := c.buf.ReserveWrite()
		if len(span) == 0 {
			// Buffer full: backpressure. Stop reading until on_read drains it.
			return
		}
		n, err := unix.Read(c.fd, span)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			if r.cb.OnErr != nil {
				r.cb.OnErr(c, errors.Wrap(err, "reactor: recv"))
			}
			c.SetState(Dying)
			return
		}
		if n == 0 {
			if r.cb.OnErr != nil {
				r.cb.OnErr(c, errors.New("reactor: recv returned 0 (orderly close)"))
			}
			c.SetState(Dying)
			return
		}
		c.buf.CommitWrite(n)
		stateBefore := c.state
		if r.cb.OnRead != nil {
			r.cb.OnRead(c)
		}
		c.buf.Compact()
		if c.state == Dying {
			return
		}
		if n != len(span) || c.state != stateBefore {
			return
		}
	}
}

func (r *Reactor) serviceWrite(c *Connection) {
	if c.state != Write {
		return
	}
	span := c.buf.ReserveRead()
	if len(span) == 0 {
		return
	}
	n, err := unix.Write(c.fd, span)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
			return
		}
		if r.cb.OnErr != nil {
			r.cb.OnErr(c, errors.Wrap(err, "reactor: send"))
		}
		c.SetState(Dying)
		return
	}
	c.buf.CommitRead(n)
	c.buf.Compact()
	if c.buf.IsEmpty() && r.cb.OnWrite != nil {
		r.cb.OnWrite(c)
	}
}

// reap deregisters, closes, and recycles every connection in state Dying
// (spec.md §4.4 step 4).
func (r *Reactor) reap() {
	for fd, c := range r.conns {
		if c.state != Dying {
			continue
		}
		r.ready.Delete(fd)
		unix.Close(fd)
		r.pool.Release(c.buf)
		delete(r.conns, fd)
	}
}

// onStateChanged implements stateObserver: it updates the kernel readiness
// set's interest for c's descriptor immediately, so the next tick's wait
// selects on the correct event (spec.md: "propagated... immediately").
func (r *Reactor) onStateChanged(c *Connection, old, new State) {
	switch new {
	case Read:
		r.ready.Modify(c.fd, true, false)
	case Write:
		r.ready.Modify(c.fd, false, true)
	case Idle, Dying:
		// No read/write interest; hangup/error stays registered via Add's
		// fixed EPOLLRDHUP|EPOLLERR bits until Reap deletes the fd.
		r.ready.Modify(c.fd, false, false)
	}
}

// Close releases the reactor's own resources: the readiness object and,
// if the reactor opened its own acceptor, the acceptor itself. Remaining
// connections are not reaped by Close; call this only after Run returns.
func (r *Reactor) Close() error {
	if r.ownAccept {
		r.acceptor.(*stream.TCPAcceptor).Close()
	}
	return r.ready.Close()
}
