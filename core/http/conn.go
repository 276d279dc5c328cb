package http

import (
	"bytes"
	"errors"
	"time"
)

var (
	// ErrStaleWrite is returned when a handler tries to queue a response
	// for a request the connection has already moved past.
	ErrStaleWrite = errors.New("http: response sequence no longer current")

	// ErrSendQueueFull is returned when the bounded send queue cannot
	// accept another response. The caller treats this as a slow consumer.
	ErrSendQueueFull = errors.New("http: send queue full")

	// ErrBufferOverflow is returned by Feed when the receive buffer limit
	// is exceeded before a full header block arrived.
	ErrBufferOverflow = errors.New("http: request exceeds buffer limit")
)

var crlfcrlf = []byte("\r\n\r\n")

// Conn holds the per-socket buffering state: accumulated raw bytes, the
// header-boundary offset of the request currently being served, the
// outgoing send queue, and the request sequence number used to detect
// stale writes. It performs no I/O itself; the event loop feeds bytes in
// and drains queued responses out, so Conn stays fully testable.
//
// A Conn is owned by exactly one event loop and is never shared across
// worker threads, so none of its state is locked.
type Conn struct {
	fd int

	buf       []byte // unconsumed bytes; may span pipelined requests
	maxBuf    int
	headerEnd int // offset just past CRLFCRLF, -1 until found
	scanned   int // bytes already scanned for the header terminator

	seq       uint64 // current request sequence
	keepAlive bool

	sendq     [][]byte // serialized responses not yet flushed
	queued    int      // bytes held in sendq
	maxQueued int

	lastActive time.Time
}

// NewConn creates the buffering state for one accepted socket. fd is
// kept for the event loop's bookkeeping only; use fd -1 for detached
// connections (protocol bridges, tests).
func NewConn(fd, bufSize, maxQueued int) *Conn {
	if bufSize <= 0 {
		bufSize = 8192
	}
	if maxQueued <= 0 {
		maxQueued = 1 << 20
	}
	return &Conn{
		fd:         fd,
		buf:        make([]byte, 0, bufSize),
		maxBuf:     bufSize * 16,
		headerEnd:  -1,
		keepAlive:  true,
		maxQueued:  maxQueued,
		lastActive: time.Now(),
	}
}

func (c *Conn) FD() int { return c.fd }

// Seq returns the sequence number of the request currently in flight.
func (c *Conn) Seq() uint64 { return c.seq }

func (c *Conn) KeepAlive() bool     { return c.keepAlive }
func (c *Conn) SetKeepAlive(v bool) { c.keepAlive = v }

func (c *Conn) LastActive() time.Time { return c.lastActive }
func (c *Conn) Touch()                { c.lastActive = time.Now() }

// Buffered reports how many unconsumed bytes the connection holds.
func (c *Conn) Buffered() int { return len(c.buf) }

// Feed appends bytes read from the socket to the receive buffer.
func (c *Conn) Feed(p []byte) error {
	if len(c.buf)+len(p) > c.maxBuf {
		return ErrBufferOverflow
	}
	c.buf = append(c.buf, p...)
	return nil
}

// HeadersComplete scans forward for the CRLFCRLF terminator and reports
// whether the current request's full header block is buffered. The scan
// position is remembered so repeated calls never rescan old bytes.
func (c *Conn) HeadersComplete() bool {
	if c.headerEnd >= 0 {
		return true
	}
	start := c.scanned - 3
	if start < 0 {
		start = 0
	}
	if i := bytes.Index(c.buf[start:], crlfcrlf); i >= 0 {
		c.headerEnd = start + i + len(crlfcrlf)
		return true
	}
	c.scanned = len(c.buf)
	return false
}

// HeaderEnd returns the offset just past the header terminator, or -1
// while the header block is still incomplete.
func (c *Conn) HeaderEnd() int { return c.headerEnd }

// Advance consumes the current request's bytes up to end, bumps the
// request sequence, and resets parse positions. Bytes past end belong to
// a pipelined next request and are compacted to the buffer's front.
func (c *Conn) Advance(end int) {
	if end > len(c.buf) {
		end = len(c.buf)
	}
	rest := copy(c.buf, c.buf[end:])
	c.buf = c.buf[:rest]
	c.headerEnd = -1
	c.scanned = 0
	c.seq++
}

// Enqueue appends a serialized response to the send queue. seq must be
// the sequence the response was built for; a mismatch means a stale
// handler is writing after the connection moved on, and the write is
// rejected rather than corrupting the queue.
func (c *Conn) Enqueue(seq uint64, payload []byte) error {
	if seq != c.seq {
		return ErrStaleWrite
	}
	if c.queued+len(payload) > c.maxQueued {
		return ErrSendQueueFull
	}
	c.sendq = append(c.sendq, payload)
	c.queued += len(payload)
	return nil
}

// Pending reports whether the send queue still holds bytes to flush.
func (c *Conn) Pending() bool { return len(c.sendq) > 0 }

// Drain flushes queued responses through write until the queue empties
// or write reports a short (would-block) result. write returns the
// number of bytes accepted; a short count stops the drain and the
// remainder stays queued. Returns true once the queue is empty.
func (c *Conn) Drain(write func([]byte) (int, error)) (bool, error) {
	for len(c.sendq) > 0 {
		head := c.sendq[0]
		n, err := write(head)
		if n > 0 {
			c.queued -= n
		}
		if err != nil {
			return false, err
		}
		if n < len(head) {
			c.sendq[0] = head[n:]
			return false, nil
		}
		c.sendq[0] = nil
		c.sendq = c.sendq[1:]
	}
	return true, nil
}
