package router

import (
	"fmt"
	"strings"

	"github.com/supranim/supranim-sub001/core/http"
)

// Handler is the invocation contract between the dispatch cycle and the
// application layer: it reads the request view and writes into the
// response builder.
type Handler func(*http.Request, *http.Response)

// MiddlewareFunc is a pre-handler hook. Returning false stops the chain:
// the dispatch ends BlockedByAbort, or BlockedByRedirect when the
// response carries a deferred redirect target.
type MiddlewareFunc func(*http.Request, *http.Response) bool

// RouteType classifies a whole route: Static routes carry no
// placeholders and resolve by exact path lookup, Dynamic routes are
// matched structurally segment by segment.
type RouteType uint8

const (
	Static RouteType = iota
	Dynamic
)

// Segment is one compiled path component. Dynamic marks a placeholder;
// literals keep their raw text and are classified with the same shape
// scan so the matcher can compare shape before string equality.
type Segment struct {
	Raw      string
	Kind     http.PatternKind
	Dynamic  bool
	Optional bool
}

// Route is a compiled association of (verb, path pattern) with a
// handler and an ordered middleware list. Routes are built once during
// start-up registration and are immutable afterwards.
type Route struct {
	Verb     http.Method
	Path     string
	Type     RouteType
	Segments []Segment

	handler    Handler
	middleware []MiddlewareFunc
}

// Middleware appends middleware to the route, preserving registration
// order, and returns the route for chaining.
func (r *Route) Middleware(mw ...MiddlewareFunc) *Route {
	r.middleware = append(r.middleware, mw...)
	return r
}

// Handler returns the route's target handler.
func (r *Route) Handler() Handler { return r.handler }

// PatternError reports a malformed route path at registration time.
type PatternError struct {
	Path   string
	Reason string
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("router: invalid route path %q: %s", e.Path, e.Reason)
}

// reservedPatterns maps placeholder keywords to their pattern kinds.
var reservedPatterns = map[string]http.PatternKind{
	"id":     http.PatternId,
	"slug":   http.PatternSlug,
	"alpha":  http.PatternAlpha,
	"digit":  http.PatternDigits,
	"digits": http.PatternDigits,
	"date":   http.PatternDate,
	"year":   http.PatternYear,
	"month":  http.PatternMonth,
	"day":    http.PatternDay,
}

// splitPath breaks a path into its non-empty segments.
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	parts := strings.Split(path, "/")
	segs := parts[:0]
	for _, p := range parts {
		if p != "" {
			segs = append(segs, p)
		}
	}
	return segs
}

// compilePath turns a registration path such as "/orders/{id}/edit"
// into its ordered segment patterns. A segment wrapped in braces is a
// placeholder; a leading '?' inside the braces marks it optional.
// Placeholder names outside the reserved keywords are classified by the
// same character scan applied to literals.
func compilePath(path string) ([]Segment, RouteType, error) {
	if path == "" || path[0] != '/' {
		return nil, Static, &PatternError{Path: path, Reason: "must begin with '/'"}
	}

	var (
		segments    []Segment
		routeType   = Static
		sawOptional bool
	)
	for _, raw := range splitPath(path) {
		if raw[0] == '{' {
			if raw[len(raw)-1] != '}' {
				return nil, Static, &PatternError{Path: path, Reason: "unterminated placeholder " + raw}
			}
			name := raw[1 : len(raw)-1]
			optional := false
			if strings.HasPrefix(name, "?") {
				optional = true
				name = name[1:]
			}
			if name == "" {
				return nil, Static, &PatternError{Path: path, Reason: "empty placeholder"}
			}
			kind, ok := reservedPatterns[name]
			if !ok {
				kind = Classify(name)
			}
			if kind == http.PatternNone {
				return nil, Static, &PatternError{Path: path, Reason: "placeholder " + name + " has no recognizable shape"}
			}
			if sawOptional && !optional {
				return nil, Static, &PatternError{Path: path, Reason: "required segment after optional placeholder"}
			}
			sawOptional = sawOptional || optional
			segments = append(segments, Segment{Raw: raw, Kind: kind, Dynamic: true, Optional: optional})
			routeType = Dynamic
			continue
		}
		if sawOptional {
			return nil, Static, &PatternError{Path: path, Reason: "required segment after optional placeholder"}
		}
		segments = append(segments, Segment{Raw: raw, Kind: Classify(raw)})
	}
	return segments, routeType, nil
}
