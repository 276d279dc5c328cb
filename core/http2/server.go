// Package http2 runs an optional cleartext HTTP/2 side listener that
// fronts the same route table as the event-loop server. Connections
// wanting HTTP/2 are handed off to this listener instead of the
// hand-rolled HTTP/1.1 path; dispatch semantics are identical because
// both go through the shared Dispatcher.
package http2

import (
	"bytes"
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/supranim/supranim-sub001/core/http"
	"github.com/supranim/supranim-sub001/core/server"
)

// Server wraps an h2c-capable net/http server around the Dispatcher.
type Server struct {
	addr string
	log  zerolog.Logger
	srv  *nethttp.Server
}

// NewServer creates the side listener. addr is the listen address,
// e.g. ":8082".
func NewServer(addr string, d *server.Dispatcher, log zerolog.Logger) *Server {
	h2 := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}
	return &Server{
		addr: addr,
		log:  log,
		srv: &nethttp.Server{
			Addr:    addr,
			Handler: h2c.NewHandler(NewBridge(d, log), h2),
		},
	}
}

// Run blocks serving h2c until Shutdown.
func (s *Server) Run() error {
	s.log.Info().Str("addr", s.addr).Msg("h2c side listener up")
	err := s.srv.ListenAndServe()
	if err == nethttp.ErrServerClosed {
		return nil
	}
	return err
}

// Shutdown stops the listener gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// NewBridge adapts the Dispatcher to net/http: the incoming request is
// re-framed as HTTP/1.1 bytes into a detached connection buffer, served
// through the exact same facade/router/middleware path as event-loop
// traffic, and the accumulated response is copied back out.
func NewBridge(d *server.Dispatcher, log zerolog.Logger) nethttp.Handler {
	return nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			nethttp.Error(w, "bad request", nethttp.StatusBadRequest)
			return
		}

		var raw bytes.Buffer
		fmt.Fprintf(&raw, "%s %s HTTP/1.1\r\n", r.Method, r.URL.RequestURI())
		for key, values := range r.Header {
			for _, v := range values {
				fmt.Fprintf(&raw, "%s: %s\r\n", key, v)
			}
		}
		fmt.Fprintf(&raw, "Content-Length: %d\r\n\r\n", len(body))
		raw.Write(body)

		conn := http.NewConn(-1, raw.Len()+1, 1<<20)
		if err := conn.Feed(raw.Bytes()); err != nil || !conn.HeadersComplete() {
			nethttp.Error(w, "bad request", nethttp.StatusBadRequest)
			return
		}

		req := http.NewRequest(conn)
		res := http.NewResponse(conn)

		verb, ok := req.Method()
		if !ok {
			d.RenderError(req, res, 501)
		} else {
			status := d.OnRequest(verb, req, res)
			log.Debug().
				Str("method", r.Method).
				Str("path", req.Path()).
				Stringer("status", status).
				Msg("h2c request served")
		}

		for _, h := range res.Headers() {
			w.Header().Add(h.Key, h.Value)
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Body())))
		w.WriteHeader(res.Status())
		w.Write(res.Body())
	})
}
