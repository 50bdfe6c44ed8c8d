//go:build linux

package reactor

import (
	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// epollPoller is the default readinessObject on Linux: level-triggered
// epoll, grounded on the pack's raw-epoll HTTP server example and gaio's
// poller wrapper. No EPOLLET is ever set, matching spec.md's explicit
// level-triggered requirement.
type epollPoller struct {
	epfd int
}

func newReadinessObject() (readinessObject, error) {
	fd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, errors.Wrap(err, "reactor: epoll_create1")
	}
	return &epollPoller{epfd: fd}, nil
}

func epollEvents(readable, writable bool) uint32 {
	ev := uint32(unix.EPOLLRDHUP | unix.EPOLLERR)
	if readable {
		ev |= unix.EPOLLIN
	}
	if writable {
		ev |= unix.EPOLLOUT
	}
	return ev
}

func (p *epollPoller) Add(fd int, readable, writable bool) error {
	ev := &unix.EpollEvent{Events: epollEvents(readable, writable), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, ev); err != nil {
		return errors.Wrap(err, "reactor: epoll_ctl add")
	}
	return nil
}

func (p *epollPoller) Modify(fd int, readable, writable bool) error {
	ev := &unix.EpollEvent{Events: epollEvents(readable, writable), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, ev); err != nil {
		return errors.Wrap(err, "reactor: epoll_ctl mod")
	}
	return nil
}

func (p *epollPoller) Delete(fd int) error {
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil); err != nil {
		return errors.Wrap(err, "reactor: epoll_ctl del")
	}
	return nil
}

func (p *epollPoller) Wait(dst []event, timeoutMS int) ([]event, error) {
	raw := make([]unix.EpollEvent, 256)
	n, err := unix.EpollWait(p.epfd, raw, timeoutMS)
	if err != nil {
		if err == unix.EINTR {
			return dst, nil
		}
		return dst, errors.Wrap(err, "reactor: epoll_wait")
	}
	for i := 0; i < n; i++ {
		e := raw[i]
		dst = append(dst, event{
			fd:       int(e.Fd),
			readable: e.Events&unix.EPOLLIN != 0,
			writable: e.Events&unix.EPOLLOUT != 0,
			hangup:   e.Events&(unix.EPOLLRDHUP|unix.EPOLLHUP) != 0,
			errored:  e.Events&unix.EPOLLERR != 0,
		})
	}
	return dst, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
