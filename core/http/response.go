package http

import (
	"strconv"
	"time"

	"github.com/supranim/supranim-sub001/core/codec"
)

// Header is one response header field. Responses keep a multimap:
// adding the same key twice emits the field twice on the wire.
type Header struct {
	Key   string
	Value string
}

// Response accumulates exactly one reply for the request currently in
// flight on a connection. Middleware and handlers mutate it through the
// primitives below; the dispatch cycle serializes and queues it once.
// A second commit attempt is a no-op, guarded by the sent flag.
type Response struct {
	conn *Conn
	seq  uint64

	status   int
	headers  []Header
	body     []byte
	redirect string // deferred redirect target set by middleware
	sent     bool
}

// NewResponse creates the response builder for the connection's current
// request. The sequence is captured so a stale builder can be detected
// after the connection moves on.
func NewResponse(c *Conn) *Response {
	return &Response{conn: c, seq: c.seq, status: 200}
}

// Seq returns the request sequence this response belongs to.
func (r *Response) Seq() uint64 { return r.seq }

// SetStatus sets the status code. Idempotent; later calls win.
func (r *Response) SetStatus(code int) { r.status = code }

// Status returns the current status code.
func (r *Response) Status() int { return r.status }

// AddHeader appends a header field. Duplicate keys are kept.
func (r *Response) AddHeader(key, value string) {
	r.headers = append(r.headers, Header{Key: key, Value: value})
}

// Headers returns the accumulated header fields in insertion order.
func (r *Response) Headers() []Header { return r.headers }

// SetBody replaces the response body.
func (r *Response) SetBody(body []byte) { r.body = body }

// Body returns the accumulated body.
func (r *Response) Body() []byte { return r.body }

// DeferRedirect records a redirect target without terminating the
// dispatch cycle; the chain runner resolves it after middleware ran.
func (r *Response) DeferRedirect(target string) { r.redirect = target }

// DeferredRedirect returns the recorded redirect target, or "".
func (r *Response) DeferredRedirect() string { return r.redirect }

// Redirect resolves a redirect immediately: status plus Location.
func (r *Response) Redirect(code int, target string) {
	r.status = code
	r.AddHeader("Location", target)
	r.body = nil
}

// Sent reports whether the response has already been committed.
func (r *Response) Sent() bool { return r.sent }

// Text sets a plain-text body.
func (r *Response) Text(code int, s string) {
	r.status = code
	r.AddHeader("Content-Type", "text/plain")
	r.body = []byte(s)
}

// HTML sets an HTML body.
func (r *Response) HTML(code int, s string) {
	r.status = code
	r.AddHeader("Content-Type", "text/html")
	r.body = []byte(s)
}

// JSON encodes v as the response body.
func (r *Response) JSON(code int, v any) error {
	data, err := codec.JSON.Encode(v)
	if err != nil {
		return err
	}
	r.status = code
	r.AddHeader("Content-Type", codec.JSON.ContentType())
	r.body = data
	return nil
}

// Proto encodes a protobuf message as the response body.
func (r *Response) Proto(code int, v any) error {
	data, err := codec.Protobuf.Encode(v)
	if err != nil {
		return err
	}
	r.status = code
	r.AddHeader("Content-Type", codec.Protobuf.ContentType())
	r.body = data
	return nil
}

// Commit serializes the response exactly once. The second and later
// calls return (nil, false) so a double send never reaches the socket.
func (r *Response) Commit() ([]byte, bool) {
	if r.sent {
		return nil, false
	}
	r.sent = true
	return r.serialize(), true
}

// serialize renders the full HTTP/1.1 wire form: status line, Date,
// Content-Length, accumulated headers, blank line, body.
func (r *Response) serialize() []byte {
	body := r.body
	out := make([]byte, 0, 128+len(body))

	out = append(out, "HTTP/1.1 "...)
	out = strconv.AppendInt(out, int64(r.status), 10)
	out = append(out, ' ')
	out = append(out, StatusText(r.status)...)
	out = append(out, "\r\nDate: "...)
	out = append(out, time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05 GMT")...)
	out = append(out, "\r\nContent-Length: "...)
	out = strconv.AppendInt(out, int64(len(body)), 10)
	out = append(out, "\r\n"...)
	for _, h := range r.headers {
		out = append(out, h.Key...)
		out = append(out, ": "...)
		out = append(out, h.Value...)
		out = append(out, "\r\n"...)
	}
	out = append(out, "\r\n"...)
	out = append(out, body...)
	return out
}

// StatusText returns the reason phrase for a status code.
func StatusText(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 307:
		return "Temporary Redirect"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 405:
		return "Method Not Allowed"
	case 429:
		return "Too Many Requests"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	case 503:
		return "Service Unavailable"
	default:
		return "Unknown"
	}
}
