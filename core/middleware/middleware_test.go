package middleware

import (
	"strings"
	"testing"

	"github.com/supranim/supranim-sub001/core/http"
)

func newExchange(t *testing.T, raw string) (*http.Request, *http.Response) {
	t.Helper()
	conn := http.NewConn(-1, 4096, 1<<16)
	if err := conn.Feed([]byte(raw)); err != nil {
		t.Fatal(err)
	}
	if !conn.HeadersComplete() {
		t.Fatal("request not fully framed")
	}
	return http.NewRequest(conn), http.NewResponse(conn)
}

func headerValue(res *http.Response, key string) string {
	for _, h := range res.Headers() {
		if h.Key == key {
			return h.Value
		}
	}
	return ""
}

// TestCORSPassThrough tests header stamping on a normal request
func TestCORSPassThrough(t *testing.T) {
	req, res := newExchange(t, "GET /api HTTP/1.1\r\nOrigin: https://a\r\n\r\n")
	if !CORS()(req, res) {
		t.Fatal("GET should continue the chain")
	}
	if headerValue(res, "Access-Control-Allow-Origin") != "*" {
		t.Error("missing allow-origin header")
	}
}

// TestCORSPreflight tests that OPTIONS is answered and the chain stops
func TestCORSPreflight(t *testing.T) {
	req, res := newExchange(t, "OPTIONS /api HTTP/1.1\r\nOrigin: https://a\r\n\r\n")
	if CORS()(req, res) {
		t.Fatal("preflight should stop the chain")
	}
	if res.Status() != 204 {
		t.Errorf("Status = %d, want 204", res.Status())
	}
}

// TestRequestID tests unique id stamping across requests
func TestRequestID(t *testing.T) {
	mw := RequestID()

	req1, res1 := newExchange(t, "GET /a HTTP/1.1\r\n\r\n")
	req2, res2 := newExchange(t, "GET /b HTTP/1.1\r\n\r\n")
	if !mw(req1, res1) || !mw(req2, res2) {
		t.Fatal("RequestID must continue the chain")
	}

	id1, id2 := headerValue(res1, "X-Request-ID"), headerValue(res2, "X-Request-ID")
	if id1 == "" || id2 == "" || id1 == id2 {
		t.Errorf("ids = %q, %q", id1, id2)
	}
}

// TestRateLimit tests 429 beyond the per-second budget
func TestRateLimit(t *testing.T) {
	mw := RateLimit(2)

	for i := 0; i < 2; i++ {
		req, res := newExchange(t, "GET /x HTTP/1.1\r\n\r\n")
		if !mw(req, res) {
			t.Fatalf("request %d should pass", i+1)
		}
	}

	req, res := newExchange(t, "GET /x HTTP/1.1\r\n\r\n")
	if mw(req, res) {
		t.Fatal("third request within the second should be refused")
	}
	if res.Status() != 429 {
		t.Errorf("Status = %d, want 429", res.Status())
	}
	if !strings.Contains(string(res.Body()), "Too Many Requests") {
		t.Errorf("Body = %q", res.Body())
	}
}

// TestRedirectTo tests deferral semantics
func TestRedirectTo(t *testing.T) {
	req, res := newExchange(t, "GET /old HTTP/1.1\r\n\r\n")
	if RedirectTo("/new")(req, res) {
		t.Fatal("redirect middleware should stop the chain")
	}
	if res.DeferredRedirect() != "/new" {
		t.Errorf("DeferredRedirect = %q", res.DeferredRedirect())
	}
	if res.Sent() {
		t.Error("deferral must not commit the response")
	}
}
