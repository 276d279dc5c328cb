//go:build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// epollPoller is the Linux readiness multiplexer. Level-triggered, so a
// partially drained buffer keeps firing until consumed.
type epollPoller struct {
	epfd   int
	events []unix.EpollEvent
	out    []Event
}

// NewPoller creates an epoll instance.
func NewPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return nil, err
	}
	return &epollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, 1024),
		out:    make([]Event, 0, 1024),
	}, nil
}

func (p *epollPoller) Add(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLRDHUP,
		Fd:     int32(fd),
	}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

func (p *epollPoller) ModWrite(fd int, enable bool) error {
	events := uint32(unix.EPOLLIN | unix.EPOLLRDHUP)
	if enable {
		events |= unix.EPOLLOUT
	}
	ev := unix.EpollEvent{Events: events, Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) Wait(timeout int) ([]Event, error) {
	n, err := unix.EpollWait(p.epfd, p.events, timeout)
	if err != nil {
		if err == unix.EINTR {
			return nil, nil
		}
		return nil, err
	}
	p.out = p.out[:0]
	for i := 0; i < n; i++ {
		ev := p.events[i]
		p.out = append(p.out, Event{
			FD:       int(ev.Fd),
			Readable: ev.Events&(unix.EPOLLIN|unix.EPOLLPRI) != 0,
			Writable: ev.Events&unix.EPOLLOUT != 0,
			Closed:   ev.Events&(unix.EPOLLHUP|unix.EPOLLRDHUP|unix.EPOLLERR) != 0,
		})
	}
	return p.out, nil
}

func (p *epollPoller) Close() error {
	return unix.Close(p.epfd)
}
