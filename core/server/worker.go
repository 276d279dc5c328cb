package server

import (
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sys/unix"

	"github.com/supranim/supranim-sub001/config"
	"github.com/supranim/supranim-sub001/core/http"
	"github.com/supranim/supranim-sub001/core/poller"
)

// worker is one event loop: its own SO_REUSEPORT listener, its own
// poller instance, and its own connection set. Connections never cross
// workers, so nothing here is locked.
type worker struct {
	id         int
	cfg        *config.Config
	dispatcher *Dispatcher
	stats      *Stats
	log        zerolog.Logger
	stopping   *atomic.Bool

	poll  poller.Poller
	lfd   int
	conns map[int]*http.Conn

	// write-readiness interest currently armed, per fd
	writeArmed map[int]bool

	scratch   []byte
	lastSweep time.Time
}

func newWorker(id int, cfg *config.Config, d *Dispatcher, stats *Stats, stopping *atomic.Bool, log zerolog.Logger) (*worker, error) {
	lfd, err := listen(cfg.Port)
	if err != nil {
		return nil, err
	}
	poll, err := poller.NewPoller()
	if err != nil {
		unix.Close(lfd)
		return nil, err
	}
	if err := poll.Add(lfd); err != nil {
		poll.Close()
		unix.Close(lfd)
		return nil, err
	}
	return &worker{
		id:         id,
		cfg:        cfg,
		dispatcher: d,
		stats:      stats,
		log:        log.With().Int("worker", id).Logger(),
		stopping:   stopping,
		poll:       poll,
		lfd:        lfd,
		conns:      make(map[int]*http.Conn, 1024),
		writeArmed: make(map[int]bool),
		scratch:    make([]byte, cfg.ReadBufferSize),
		lastSweep:  time.Now(),
	}, nil
}

// run is the event loop. One iteration: wait for readiness, accept new
// sockets, feed readable connections, drain writable ones, and sweep
// idle connections about once a second.
func (w *worker) run() {
	defer w.shutdown()

	for !w.stopping.Load() {
		events, err := w.poll.Wait(1000)
		if err != nil {
			w.log.Error().Err(err).Msg("poller wait failed")
			continue
		}
		for _, ev := range events {
			if ev.FD == w.lfd {
				w.accept()
				continue
			}
			conn, ok := w.conns[ev.FD]
			if !ok {
				continue
			}
			conn.Touch()
			if ev.Closed {
				w.closeConn(conn)
				continue
			}
			if ev.Writable {
				if !w.flush(conn) {
					continue
				}
			}
			if ev.Readable {
				w.read(conn)
			}
		}
		w.sweepIdle()
	}
}

func (w *worker) shutdown() {
	for _, conn := range w.conns {
		w.closeConn(conn)
	}
	w.poll.Close()
	unix.Close(w.lfd)
	w.log.Debug().Msg("worker stopped")
}

// accept drains the listener's pending connection queue.
func (w *worker) accept() {
	for {
		nfd, _, err := unix.Accept(w.lfd)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			w.log.Error().Err(err).Msg("accept failed")
			return
		}
		if err := unix.SetNonblock(nfd, true); err != nil {
			unix.Close(nfd)
			continue
		}
		unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		conn := http.NewConn(nfd, w.cfg.ReadBufferSize, w.cfg.MaxSendQueue)
		if err := w.poll.Add(nfd); err != nil {
			unix.Close(nfd)
			continue
		}
		w.conns[nfd] = conn
		w.stats.accepted.Inc()
	}
}

// read moves available bytes into the connection buffer, then serves
// every fully buffered request the buffer now holds.
func (w *worker) read(conn *http.Conn) {
	for {
		n, err := unix.Read(conn.FD(), w.scratch)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				break
			}
			if err == unix.EINTR {
				continue
			}
			w.closeConn(conn)
			return
		}
		if n == 0 { // peer closed
			w.closeConn(conn)
			return
		}
		if err := conn.Feed(w.scratch[:n]); err != nil {
			// Oversized header block: answer 400 and drop the peer.
			w.stats.rejected.Inc()
			res := http.NewResponse(conn)
			w.dispatcher.RenderError(http.NewRequest(conn), res, 400)
			if payload, ok := res.Commit(); ok {
				conn.Enqueue(conn.Seq(), payload)
				conn.Drain(func(p []byte) (int, error) { return writeFD(conn.FD(), p) })
			}
			w.closeConn(conn)
			return
		}
		if n < len(w.scratch) {
			break
		}
	}
	w.serve(conn)
}

// serve dispatches buffered requests in strict arrival order. Each
// iteration handles exactly one request; pipelined successors already
// in the buffer are picked up by the next iteration without another
// read from the socket.
func (w *worker) serve(conn *http.Conn) {
	for conn.HeadersComplete() {
		req := http.NewRequest(conn)
		if !req.BodyComplete() {
			break
		}
		res := http.NewResponse(conn)

		verb, ok := req.Method()
		if !ok {
			// Protocol error: the router is never consulted, and the
			// connection cannot be trusted for further framing.
			w.stats.rejected.Inc()
			w.log.Warn().Str("token", req.MethodToken()).Msg("unrecognized method")
			w.dispatcher.RenderError(req, res, 501)
			res.AddHeader("Connection", "close")
			conn.SetKeepAlive(false)
			if !w.enqueue(conn, res) {
				w.closeConn(conn)
				return
			}
			conn.Advance(conn.Buffered())
			break
		}

		status := w.dispatcher.OnRequest(verb, req, res)
		w.stats.served.Inc()
		w.log.Debug().
			Str("method", verb.String()).
			Str("path", req.Path()).
			Stringer("status", status).
			Int("code", res.Status()).
			Msg("request served")

		keep := req.KeepAlive()
		if !keep {
			res.AddHeader("Connection", "close")
		}
		end := req.End()
		if !w.enqueue(conn, res) {
			w.closeConn(conn)
			return
		}
		conn.SetKeepAlive(keep)
		conn.Advance(end)
		if !keep {
			break
		}
	}
	w.flush(conn)
}

// enqueue commits the response and appends it to the connection's send
// queue. A stale sequence or an overflowing queue closes the peer; a
// double commit is dropped with a warning and the connection survives.
func (w *worker) enqueue(conn *http.Conn, res *http.Response) bool {
	payload, first := res.Commit()
	if !first {
		w.log.Warn().Int("fd", conn.FD()).Msg("response already sent, dropping duplicate")
		return true
	}
	if err := conn.Enqueue(res.Seq(), payload); err != nil {
		switch err {
		case http.ErrStaleWrite:
			w.log.Error().Int("fd", conn.FD()).Msg("stale response write rejected")
		case http.ErrSendQueueFull:
			w.stats.rejected.Inc()
			w.log.Warn().Int("fd", conn.FD()).Msg("send queue overflow, closing slow consumer")
		default:
			w.log.Error().Err(err).Int("fd", conn.FD()).Msg("enqueue failed")
		}
		return false
	}
	return true
}

// flush drains the send queue. Returns false when the connection was
// closed during the flush. While bytes remain unflushed, write
// readiness is armed and the remainder goes out on the next event.
func (w *worker) flush(conn *http.Conn) bool {
	if !conn.Pending() {
		return true
	}
	fd := conn.FD()
	done, err := conn.Drain(func(p []byte) (int, error) { return writeFD(fd, p) })
	if err != nil {
		w.closeConn(conn)
		return false
	}
	if !done {
		if !w.writeArmed[fd] {
			w.poll.ModWrite(fd, true)
			w.writeArmed[fd] = true
		}
		return true
	}
	if w.writeArmed[fd] {
		w.poll.ModWrite(fd, false)
		delete(w.writeArmed, fd)
	}
	if !conn.KeepAlive() {
		w.closeConn(conn)
		return false
	}
	return true
}

// writeFD wraps unix.Write so a would-block result reads as a short
// write instead of an error.
func writeFD(fd int, p []byte) (int, error) {
	n, err := unix.Write(fd, p)
	if n < 0 {
		n = 0
	}
	if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
		return n, nil
	}
	return n, err
}

func (w *worker) closeConn(conn *http.Conn) {
	fd := conn.FD()
	if _, ok := w.conns[fd]; !ok {
		return
	}
	w.poll.Remove(fd)
	delete(w.conns, fd)
	delete(w.writeArmed, fd)
	unix.Close(fd)
	w.stats.closed.Inc()
}

// sweepIdle closes connections idle past the configured timeout.
// Runs at most once a second.
func (w *worker) sweepIdle() {
	now := time.Now()
	if now.Sub(w.lastSweep) < time.Second {
		return
	}
	w.lastSweep = now
	for _, conn := range w.conns {
		if now.Sub(conn.LastActive()) > w.cfg.IdleTimeout {
			w.closeConn(conn)
		}
	}
}
