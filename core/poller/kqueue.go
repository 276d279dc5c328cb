//go:build darwin || freebsd || netbsd || openbsd

package poller

import (
	"golang.org/x/sys/unix"
)

// kqueuePoller is the BSD/macOS readiness multiplexer. Read and write
// filters are registered separately; write is toggled with EV_ENABLE
// and EV_DISABLE while a send queue drains.
type kqueuePoller struct {
	kq     int
	events []unix.Kevent_t
	out    []Event
}

// NewPoller creates a kqueue instance.
func NewPoller() (Poller, error) {
	kq, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}
	return &kqueuePoller{
		kq:     kq,
		events: make([]unix.Kevent_t, 1024),
		out:    make([]Event, 0, 1024),
	}, nil
}

func (p *kqueuePoller) change(changes ...unix.Kevent_t) error {
	_, err := unix.Kevent(p.kq, changes, nil, nil)
	return err
}

func (p *kqueuePoller) Add(fd int) error {
	return p.change(
		unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_ADD},
		unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_ADD | unix.EV_DISABLE},
	)
}

func (p *kqueuePoller) ModWrite(fd int, enable bool) error {
	flags := uint16(unix.EV_ADD | unix.EV_ENABLE)
	if !enable {
		flags = unix.EV_ADD | unix.EV_DISABLE
	}
	return p.change(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flags})
}

func (p *kqueuePoller) Remove(fd int) error {
	// Best effort: the write filter may already be gone with the fd.
	p.change(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: unix.EV_DELETE})
	return p.change(unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: unix.EV_DELETE})
}

func (p *kqueuePoller) Wait(timeout int) ([]Event, error) {
	ts := unix.NsecToTimespec(int64(timeout) * 1e6)
	n, err := unix.Kevent(p.kq, nil, p.events, &ts)
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
			FD:       int(ev.Ident),
			Readable: ev.Filter == unix.EVFILT_READ,
			Writable: ev.Filter == unix.EVFILT_WRITE,
			Closed:   ev.Flags&unix.EV_EOF != 0,
		})
	}
	return p.out, nil
}

func (p *kqueuePoller) Close() error {
	return unix.Close(p.kq)
}
