package router

import (
	"github.com/supranim/supranim-sub001/core/http"
)

// Match is a resolved route plus the dynamic parameters extracted from
// the request path. Params holds placeholder positions only; literal
// segments are stripped before the handler sees them.
type Match struct {
	Route  *Route
	Params []http.Param
}

// Lookup resolves a (verb, path) pair. Static routes resolve by a
// single map lookup regardless of dynamic-table size; otherwise the
// dynamic table for the verb is scanned in registration order and the
// first structurally compatible route wins.
func (r *Router) Lookup(verb http.Method, path string) (Match, bool) {
	if route, ok := r.static[verb][path]; ok {
		return Match{Route: route}, true
	}
	segs := splitPath(path)
	for _, route := range r.dynamic[verb] {
		if params, ok := matchSegments(route.Segments, segs); ok {
			return Match{Route: route, Params: params}, true
		}
	}
	return Match{}, false
}

// matchSegments compares a request's segments against a compiled route
// position by position. Counts must agree, except that trailing
// optional placeholders may be absent. Literal positions compare shape
// first, then exact string; placeholder positions accept any value
// whose shape satisfies the pattern kind.
func matchSegments(route []Segment, segs []string) ([]http.Param, bool) {
	if len(segs) > len(route) {
		return nil, false
	}
	for _, s := range route[len(segs):] {
		if !s.Optional {
			return nil, false
		}
	}

	var params []http.Param
	for i, value := range segs {
		rs := route[i]
		if !rs.Dynamic {
			if Classify(value) != rs.Kind || value != rs.Raw {
				return nil, false
			}
			continue
		}
		if !accepts(rs.Kind, value) {
			return nil, false
		}
		params = append(params, http.Param{Kind: rs.Kind, Value: value})
	}
	return params, true
}
