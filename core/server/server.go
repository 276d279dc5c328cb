package server

import (
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/supranim/supranim-sub001/config"
	"github.com/supranim/supranim-sub001/core/router"
)

// Server runs the HTTP/1.1 event-loop pool. The route table is built
// before Run and shared read-only by every worker; each worker owns its
// poller, its listener, and its connections outright.
type Server struct {
	cfg        *config.Config
	dispatcher *Dispatcher
	stats      *Stats
	log        zerolog.Logger

	workers  []*worker
	stopping atomic.Bool
	wg       sync.WaitGroup
}

// New wires a server around an already-registered router.
func New(cfg *config.Config, rt *router.Router, log zerolog.Logger) *Server {
	return &Server{
		cfg: cfg,
		dispatcher: &Dispatcher{
			Router: rt,
			Log:    log,
			Mode:   cfg.Mode,
		},
		stats: NewStats(),
		log:   log,
	}
}

// Dispatcher exposes the onRequest entry point, shared with the
// HTTP/2 bridge.
func (s *Server) Dispatcher() *Dispatcher { return s.dispatcher }

// Stats returns a snapshot of the server-wide counters.
func (s *Server) Stats() Snapshot { return s.stats.Snapshot() }

// Run starts the worker pool and blocks until Stop is called. Worker
// count defaults to the CPU core count.
func (s *Server) Run() error {
	n := s.cfg.Workers
	if n <= 0 {
		n = runtime.NumCPU()
	}

	for i := 0; i < n; i++ {
		w, err := newWorker(i, s.cfg, s.dispatcher, s.stats, &s.stopping, s.log)
		if err != nil {
			s.Stop()
			s.wg.Wait()
			return err
		}
		s.workers = append(s.workers, w)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			w.run()
		}()
	}

	s.log.Info().
		Int("port", s.cfg.Port).
		Int("workers", n).
		Str("mode", s.cfg.Mode).
		Msg("server listening")

	s.wg.Wait()
	return nil
}

// Stop signals every worker to exit its loop. Workers close their
// connections and listeners on the way out.
func (s *Server) Stop() {
	s.stopping.Store(true)
}
