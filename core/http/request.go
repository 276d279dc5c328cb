package http

import (
	"bytes"
	"strconv"
	"strings"
)

// Request is a read-only view over a Conn's receive buffer. Nothing is
// parsed eagerly: method, path, headers and body are re-derived from the
// buffered bytes on each call, so the facade carries no copies of its
// own. The only state a Request owns is the set of dynamic-route
// parameters resolved for it and the sequence id it was opened under.
//
// A Request is valid only while its Conn is still positioned on the same
// request; once the connection advances to a pipelined successor, Stale
// reports true and every accessor returns zero values.
type Request struct {
	conn   *Conn
	seq    uint64
	params []Param
}

// NewRequest opens a request view at the connection's current sequence.
// The caller must have seen HeadersComplete report true.
func NewRequest(c *Conn) *Request {
	return &Request{conn: c, seq: c.seq}
}

// Seq returns the sequence id this view was opened under.
func (r *Request) Seq() uint64 { return r.seq }

// Stale reports whether the connection has moved past this request.
func (r *Request) Stale() bool { return r.seq != r.conn.seq }

// headerBlock returns the buffered bytes of the request line plus
// headers, excluding the terminator. Empty while headers are incomplete
// or after the view went stale.
func (r *Request) headerBlock() []byte {
	if r.Stale() || r.conn.headerEnd < 0 {
		return nil
	}
	return r.conn.buf[:r.conn.headerEnd-len(crlfcrlf)]
}

// requestLine splits the first buffered line into its three tokens.
func (r *Request) requestLine() (method, target, proto string, ok bool) {
	block := r.headerBlock()
	if len(block) == 0 {
		return "", "", "", false
	}
	line := block
	if i := bytes.IndexByte(block, '\n'); i >= 0 {
		line = block[:i]
	}
	line = bytes.TrimSuffix(line, []byte{'\r'})

	sp1 := bytes.IndexByte(line, ' ')
	if sp1 <= 0 {
		return "", "", "", false
	}
	sp2 := bytes.IndexByte(line[sp1+1:], ' ')
	if sp2 < 0 {
		return "", "", "", false
	}
	sp2 += sp1 + 1
	return string(line[:sp1]), string(line[sp1+1 : sp2]), string(line[sp2+1:]), true
}

// MethodToken returns the raw verb token from the request line.
func (r *Request) MethodToken() string {
	m, _, _, _ := r.requestLine()
	return m
}

// Method maps the request-line token to a verb. ok is false for
// unknown or unparsable tokens.
func (r *Request) Method() (Method, bool) {
	m, _, _, ok := r.requestLine()
	if !ok {
		return 0, false
	}
	return ParseMethod(m)
}

// RawTarget returns the request target including any query string.
func (r *Request) RawTarget() string {
	_, t, _, _ := r.requestLine()
	return t
}

// Path returns the request path with the query string stripped; routing
// operates on this value.
func (r *Request) Path() string {
	_, t, _, _ := r.requestLine()
	if i := strings.IndexByte(t, '?'); i >= 0 {
		return t[:i]
	}
	return t
}

// Query returns the value of a query-string parameter, or "".
func (r *Request) Query(key string) string {
	_, t, _, _ := r.requestLine()
	i := strings.IndexByte(t, '?')
	if i < 0 {
		return ""
	}
	qs := t[i+1:]
	for len(qs) > 0 {
		pair := qs
		if amp := strings.IndexByte(qs, '&'); amp >= 0 {
			pair, qs = qs[:amp], qs[amp+1:]
		} else {
			qs = ""
		}
		if eq := strings.IndexByte(pair, '='); eq >= 0 {
			if pair[:eq] == key {
				return pair[eq+1:]
			}
		} else if pair == key {
			return ""
		}
	}
	return ""
}

// Proto returns the protocol token, e.g. "HTTP/1.1".
func (r *Request) Proto() string {
	_, _, p, _ := r.requestLine()
	return p
}

// Header returns the value of the named header. Keys compare
// case-sensitively and the last occurrence of a duplicated key wins.
func (r *Request) Header(key string) string {
	var value string
	r.ForeachHeader(func(k, v string) {
		if k == key {
			value = v
		}
	})
	return value
}

// ForeachHeader calls fn for every header line in buffer order.
func (r *Request) ForeachHeader(fn func(key, value string)) {
	block := r.headerBlock()
	if i := bytes.IndexByte(block, '\n'); i >= 0 {
		block = block[i+1:] // skip the request line
	} else {
		return
	}
	for len(block) > 0 {
		line := block
		if i := bytes.IndexByte(block, '\n'); i >= 0 {
			line, block = block[:i], block[i+1:]
		} else {
			block = nil
		}
		line = bytes.TrimSuffix(line, []byte{'\r'})
		colon := bytes.IndexByte(line, ':')
		if colon <= 0 {
			continue
		}
		fn(string(bytes.TrimSpace(line[:colon])), string(bytes.TrimSpace(line[colon+1:])))
	}
}

// ContentLength returns the declared body length, or 0.
func (r *Request) ContentLength() int {
	v := r.Header("Content-Length")
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// End returns the buffer offset one past the request's body, i.e. where
// a pipelined successor would begin. Valid once headers are complete.
func (r *Request) End() int {
	if r.Stale() || r.conn.headerEnd < 0 {
		return 0
	}
	return r.conn.headerEnd + r.ContentLength()
}

// BodyComplete reports whether the declared body is fully buffered.
func (r *Request) BodyComplete() bool {
	if r.Stale() || r.conn.headerEnd < 0 {
		return false
	}
	return len(r.conn.buf) >= r.End()
}

// Body returns the buffered body bytes. The slice aliases the
// connection buffer and is valid only until the connection advances.
func (r *Request) Body() []byte {
	if r.Stale() || r.conn.headerEnd < 0 {
		return nil
	}
	end := r.End()
	if end > len(r.conn.buf) {
		end = len(r.conn.buf)
	}
	return r.conn.buf[r.conn.headerEnd:end]
}

// KeepAlive reports whether the connection persists after this request,
// per HTTP/1.1 defaults: persistent unless the client asks to close, or
// HTTP/1.0 without an explicit keep-alive.
func (r *Request) KeepAlive() bool {
	conn := r.Header("Connection")
	if r.Proto() == "HTTP/1.0" {
		return conn == "keep-alive"
	}
	return conn != "close"
}

// SetParams records the dynamic-route parameters resolved for this
// request. Called by the router exactly once per dispatch.
func (r *Request) SetParams(ps []Param) { r.params = ps }

// Params returns the resolved dynamic-route parameters in path order.
func (r *Request) Params() []Param { return r.params }

// Param returns the i-th dynamic parameter value, or "".
func (r *Request) Param(i int) string {
	if i < 0 || i >= len(r.params) {
		return ""
	}
	return r.params[i].Value
}
