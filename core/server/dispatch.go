// Package server drives the request-acceptance and dispatch path: a
// pool of event-loop workers multiplexing non-blocking sockets, feeding
// buffered requests through the shared route table and middleware
// chain, and flushing serialized responses with keep-alive and
// pipelining semantics.
package server

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/supranim/supranim-sub001/config"
	"github.com/supranim/supranim-sub001/core/http"
	"github.com/supranim/supranim-sub001/core/router"
)

// Dispatcher is the onRequest entry point shared by the HTTP/1.1 event
// loop and the HTTP/2 bridge. It owns no connection state; everything
// it needs arrives with the request/response pair.
type Dispatcher struct {
	Router *router.Router
	Log    zerolog.Logger
	Mode   string // config.ModeHTML or config.ModeJSON
}

// OnRequest runs one fully buffered request through the route table,
// middleware chain and handler, then settles the terminal state:
// a deferred redirect is resolved to a 302, NotFound renders the
// framework 404 for GET and 501 for other verbs, and an aborting
// middleware's response is left untouched. A handler panic is contained
// here so one misbehaving route cannot take down the worker's other
// connections.
func (d *Dispatcher) OnRequest(verb http.Method, req *http.Request, res *http.Response) router.RuntimeStatus {
	status := d.dispatch(verb, req, res)

	switch status {
	case router.BlockedByRedirect:
		res.Redirect(302, res.DeferredRedirect())
	case router.RouteNotFound:
		if verb == http.MethodGet {
			d.RenderError(req, res, 404)
		} else {
			d.RenderError(req, res, 501)
		}
	}
	return status
}

func (d *Dispatcher) dispatch(verb http.Method, req *http.Request, res *http.Response) (status router.RuntimeStatus) {
	defer func() {
		if rec := recover(); rec != nil {
			d.Log.Error().
				Str("method", verb.String()).
				Str("path", req.Path()).
				Interface("panic", rec).
				Msg("handler panic recovered")
			d.RenderError(req, res, 500)
			status = router.RouteFound
		}
	}()
	return d.Router.Dispatch(verb, req, res)
}

// RenderError renders a framework-level error response: the registered
// errorHandler override when one exists, otherwise a default page in
// the configured application mode.
func (d *Dispatcher) RenderError(req *http.Request, res *http.Response, code int) {
	res.SetStatus(code)
	if h := d.Router.ErrorFor(code); h != nil {
		h(req, res)
		return
	}
	text := http.StatusText(code)
	if d.Mode == config.ModeJSON {
		res.JSON(code, map[string]any{"status": code, "message": text})
		return
	}
	res.HTML(code, fmt.Sprintf("<html><head><title>%d %s</title></head><body><h1>%d %s</h1></body></html>", code, text, code, text))
}
