package router

import (
	"fmt"

	"github.com/supranim/supranim-sub001/core/http"
)

// Router is the route table: per-verb static exact-match maps plus
// per-verb dynamic tables kept in registration order. It is built once,
// single-threaded, before the server starts serving, and is read-only
// afterwards, so workers share it by reference with no locking.
//
// Overlapping dynamic routes of identical shape resolve to the earliest
// registration; the dynamic table is an ordered slice precisely so this
// precedence is deterministic.
type Router struct {
	static        [http.NumMethods]map[string]*Route
	dynamic       [http.NumMethods][]*Route
	dynamicByPath [http.NumMethods]map[string]*Route

	errorHandlers map[int]Handler
}

// DuplicateRouteError reports a second registration for the same
// verb and exact path.
type DuplicateRouteError struct {
	Verb http.Method
	Path string
}

func (e *DuplicateRouteError) Error() string {
	return fmt.Sprintf("router: duplicate route %s %s", e.Verb, e.Path)
}

// New creates an empty route table.
func New() *Router {
	r := &Router{errorHandlers: make(map[int]Handler)}
	for i := range r.static {
		r.static[i] = make(map[string]*Route)
		r.dynamicByPath[i] = make(map[string]*Route)
	}
	return r
}

// Handle compiles and registers a route. Registration errors (duplicate
// route, malformed pattern) panic: they are start-up defects and must
// surface before the server accepts connections.
func (r *Router) Handle(verb http.Method, path string, h Handler) *Route {
	segments, routeType, err := compilePath(path)
	if err != nil {
		panic(err)
	}
	route := &Route{
		Verb:     verb,
		Path:     path,
		Type:     routeType,
		Segments: segments,
		handler:  h,
	}
	if routeType == Static {
		if _, dup := r.static[verb][path]; dup {
			panic(&DuplicateRouteError{Verb: verb, Path: path})
		}
		r.static[verb][path] = route
		return route
	}
	if _, dup := r.dynamicByPath[verb][path]; dup {
		panic(&DuplicateRouteError{Verb: verb, Path: path})
	}
	r.dynamicByPath[verb][path] = route
	r.dynamic[verb] = append(r.dynamic[verb], route)
	return route
}

// Get registers a GET route.
func (r *Router) Get(path string, h Handler) *Route { return r.Handle(http.MethodGet, path, h) }

// Head registers a HEAD route.
func (r *Router) Head(path string, h Handler) *Route { return r.Handle(http.MethodHead, path, h) }

// Post registers a POST route.
func (r *Router) Post(path string, h Handler) *Route { return r.Handle(http.MethodPost, path, h) }

// Put registers a PUT route.
func (r *Router) Put(path string, h Handler) *Route { return r.Handle(http.MethodPut, path, h) }

// Delete registers a DELETE route.
func (r *Router) Delete(path string, h Handler) *Route { return r.Handle(http.MethodDelete, path, h) }

// Connect registers a CONNECT route.
func (r *Router) Connect(path string, h Handler) *Route { return r.Handle(http.MethodConnect, path, h) }

// Options registers an OPTIONS route.
func (r *Router) Options(path string, h Handler) *Route { return r.Handle(http.MethodOptions, path, h) }

// Trace registers a TRACE route.
func (r *Router) Trace(path string, h Handler) *Route { return r.Handle(http.MethodTrace, path, h) }

// Patch registers a PATCH route.
func (r *Router) Patch(path string, h Handler) *Route { return r.Handle(http.MethodPatch, path, h) }

// ErrorHandler overrides the framework default renderer for an error
// status code such as 404 or 500.
func (r *Router) ErrorHandler(code int, h Handler) {
	r.errorHandlers[code] = h
}

// ErrorFor returns the registered override for a status code, or nil.
func (r *Router) ErrorFor(code int) Handler {
	return r.errorHandlers[code]
}

// Group registers routes under a shared path prefix, with optional
// middleware applied to every route registered through it.
type Group struct {
	router     *Router
	base       string
	middleware []MiddlewareFunc
}

// Group creates a prefixed registration scope.
func (r *Router) Group(base string, mw ...MiddlewareFunc) *Group {
	return &Group{router: r, base: base, middleware: mw}
}

func (g *Group) handle(verb http.Method, path string, h Handler) *Route {
	route := g.router.Handle(verb, g.base+path, h)
	if len(g.middleware) > 0 {
		route.Middleware(g.middleware...)
	}
	return route
}

// Get registers a GET route under the group prefix.
func (g *Group) Get(path string, h Handler) *Route { return g.handle(http.MethodGet, path, h) }

// Post registers a POST route under the group prefix.
func (g *Group) Post(path string, h Handler) *Route { return g.handle(http.MethodPost, path, h) }

// Put registers a PUT route under the group prefix.
func (g *Group) Put(path string, h Handler) *Route { return g.handle(http.MethodPut, path, h) }

// Delete registers a DELETE route under the group prefix.
func (g *Group) Delete(path string, h Handler) *Route { return g.handle(http.MethodDelete, path, h) }

// Patch registers a PATCH route under the group prefix.
func (g *Group) Patch(path string, h Handler) *Route { return g.handle(http.MethodPatch, path, h) }
