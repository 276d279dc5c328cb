package router

import (
	"github.com/supranim/supranim-sub001/core/http"
)

// RuntimeStatus is the terminal state of one dispatch cycle.
type RuntimeStatus uint8

const (
	// RouteFound: middleware all signalled continue and the handler ran.
	RouteFound RuntimeStatus = iota
	// RouteNotFound: neither table resolved the (verb, path) pair.
	RouteNotFound
	// BlockedByAbort: a middleware stopped the chain; the response is
	// left exactly as the aborting middleware shaped it.
	BlockedByAbort
	// BlockedByRedirect: a middleware stopped the chain after recording
	// a deferred redirect target.
	BlockedByRedirect
)

var statusNames = [...]string{
	RouteFound:        "Found",
	RouteNotFound:     "NotFound",
	BlockedByAbort:    "BlockedByAbort",
	BlockedByRedirect: "BlockedByRedirect",
}

func (s RuntimeStatus) String() string {
	if int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "invalid"
}

// Dispatch resolves the request path for the given verb, runs the
// route's middleware strictly in registration order, and invokes the
// handler when every middleware signalled continue. The first
// middleware returning false short-circuits the chain: later middleware
// and the handler never run.
func (r *Router) Dispatch(verb http.Method, req *http.Request, res *http.Response) RuntimeStatus {
	m, ok := r.Lookup(verb, req.Path())
	if !ok {
		return RouteNotFound
	}
	req.SetParams(m.Params)

	for _, mw := range m.Route.middleware {
		if !mw(req, res) {
			if res.DeferredRedirect() != "" {
				return BlockedByRedirect
			}
			return BlockedByAbort
		}
	}
	m.Route.handler(req, res)
	return RouteFound
}
