// Package poller abstracts OS readiness multiplexing. Each event-loop
// worker owns one Poller instance; descriptors are registered for read
// readiness and write interest is toggled while a send queue drains.
package poller

// Event is one readiness notification.
type Event struct {
	FD       int
	Readable bool
	Writable bool
	Closed   bool // peer hung up or error condition on the descriptor
}

// Poller is the I/O multiplexing interface.
type Poller interface {
	// Add registers a descriptor for read readiness.
	Add(fd int) error
	// ModWrite enables or disables write-readiness interest in addition
	// to the always-on read interest.
	ModWrite(fd int, enable bool) error
	// Remove deregisters a descriptor.
	Remove(fd int) error
	// Wait blocks up to timeout milliseconds for events.
	Wait(timeout int) ([]Event, error)
	Close() error
}
