package server

import (
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/supranim/supranim-sub001/config"
	"github.com/supranim/supranim-sub001/core/http"
	"github.com/supranim/supranim-sub001/core/router"
)

func newDispatcher(mode string) *Dispatcher {
	return &Dispatcher{
		Router: router.New(),
		Log:    zerolog.Nop(),
		Mode:   mode,
	}
}

func exchange(t *testing.T, raw string) (*http.Conn, *http.Request, *http.Response) {
	t.Helper()
	conn := http.NewConn(-1, 4096, 1<<16)
	if err := conn.Feed([]byte(raw)); err != nil {
		t.Fatal(err)
	}
	if !conn.HeadersComplete() {
		t.Fatal("request not fully framed")
	}
	return conn, http.NewRequest(conn), http.NewResponse(conn)
}

// TestOnRequestFound tests the happy path through a registered route
func TestOnRequestFound(t *testing.T) {
	d := newDispatcher(config.ModeHTML)
	d.Router.Get("/ping", func(req *http.Request, res *http.Response) {
		res.Text(200, "pong")
	})

	_, req, res := exchange(t, "GET /ping HTTP/1.1\r\nHost: t\r\n\r\n")
	if st := d.OnRequest(http.MethodGet, req, res); st != router.RouteFound {
		t.Fatalf("status = %v", st)
	}
	if res.Status() != 200 || string(res.Body()) != "pong" {
		t.Errorf("response = %d %q", res.Status(), res.Body())
	}
}

// TestNotFoundHTML tests the default 404 page for GET in html mode
func TestNotFoundHTML(t *testing.T) {
	d := newDispatcher(config.ModeHTML)

	_, req, res := exchange(t, "GET /missing HTTP/1.1\r\nHost: t\r\n\r\n")
	if st := d.OnRequest(http.MethodGet, req, res); st != router.RouteNotFound {
		t.Fatalf("status = %v", st)
	}
	if res.Status() != 404 {
		t.Errorf("Status = %d", res.Status())
	}
	if !strings.Contains(string(res.Body()), "404 Not Found") {
		t.Errorf("Body = %q", res.Body())
	}
}

// TestNotFoundJSON tests the default 404 body in json mode
func TestNotFoundJSON(t *testing.T) {
	d := newDispatcher(config.ModeJSON)

	_, req, res := exchange(t, "GET /missing HTTP/1.1\r\nHost: t\r\n\r\n")
	d.OnRequest(http.MethodGet, req, res)
	body := string(res.Body())
	if !strings.Contains(body, `"status":404`) || !strings.Contains(body, "Not Found") {
		t.Errorf("Body = %q", body)
	}
}

// TestNotFoundNonGet tests that unmatched non-GET verbs report 501
func TestNotFoundNonGet(t *testing.T) {
	d := newDispatcher(config.ModeHTML)

	_, req, res := exchange(t, "POST /missing HTTP/1.1\r\nContent-Length: 0\r\n\r\n")
	if st := d.OnRequest(http.MethodPost, req, res); st != router.RouteNotFound {
		t.Fatalf("status = %v", st)
	}
	if res.Status() != 501 {
		t.Errorf("Status = %d, want 501", res.Status())
	}
}

// TestErrorHandlerOverride tests a registered 404 handler taking over
func TestErrorHandlerOverride(t *testing.T) {
	d := newDispatcher(config.ModeHTML)
	d.Router.ErrorHandler(404, func(req *http.Request, res *http.Response) {
		res.Text(404, "custom not found: "+req.Path())
	})

	_, req, res := exchange(t, "GET /gone HTTP/1.1\r\nHost: t\r\n\r\n")
	d.OnRequest(http.MethodGet, req, res)
	if string(res.Body()) != "custom not found: /gone" {
		t.Errorf("Body = %q", res.Body())
	}
}

// TestDeferredRedirectResolved tests middleware deferral becoming a 302
func TestDeferredRedirectResolved(t *testing.T) {
	d := newDispatcher(config.ModeHTML)
	guard := func(req *http.Request, res *http.Response) bool {
		res.DeferRedirect("/login")
		return false
	}
	d.Router.Get("/admin", func(req *http.Request, res *http.Response) {
		t.Error("handler must not run behind a redirecting guard")
	}).Middleware(guard)

	_, req, res := exchange(t, "GET /admin HTTP/1.1\r\nHost: t\r\n\r\n")
	if st := d.OnRequest(http.MethodGet, req, res); st != router.BlockedByRedirect {
		t.Fatalf("status = %v", st)
	}
	if res.Status() != 302 {
		t.Errorf("Status = %d", res.Status())
	}
	var loc string
	for _, h := range res.Headers() {
		if h.Key == "Location" {
			loc = h.Value
		}
	}
	if loc != "/login" {
		t.Errorf("Location = %q", loc)
	}
}

// TestPanicRecovery tests that a panicking handler yields a 500
func TestPanicRecovery(t *testing.T) {
	d := newDispatcher(config.ModeHTML)
	d.Router.Get("/boom", func(req *http.Request, res *http.Response) {
		panic("kaboom")
	})

	_, req, res := exchange(t, "GET /boom HTTP/1.1\r\nHost: t\r\n\r\n")
	if st := d.OnRequest(http.MethodGet, req, res); st != router.RouteFound {
		t.Fatalf("status = %v", st)
	}
	if res.Status() != 500 {
		t.Errorf("Status = %d", res.Status())
	}
}

// TestPipelinedOrder tests strict FIFO serving of back-to-back requests
// buffered on one connection
func TestPipelinedOrder(t *testing.T) {
	d := newDispatcher(config.ModeHTML)
	d.Router.Get("/a", func(req *http.Request, res *http.Response) { res.Text(200, "A") })
	d.Router.Get("/b", func(req *http.Request, res *http.Response) { res.Text(200, "B") })

	conn := http.NewConn(-1, 4096, 1<<16)
	conn.Feed([]byte("GET /a HTTP/1.1\r\nHost: t\r\n\r\nGET /b HTTP/1.1\r\nHost: t\r\n\r\n"))

	var bodies []string
	for conn.HeadersComplete() {
		req := http.NewRequest(conn)
		res := http.NewResponse(conn)
		verb, _ := req.Method()
		d.OnRequest(verb, req, res)
		bodies = append(bodies, string(res.Body()))

		wire, ok := res.Commit()
		if !ok {
			t.Fatal("Commit failed")
		}
		if err := conn.Enqueue(res.Seq(), wire); err != nil {
			t.Fatal(err)
		}
		conn.Advance(req.End())
	}

	if len(bodies) != 2 || bodies[0] != "A" || bodies[1] != "B" {
		t.Errorf("served order = %v", bodies)
	}

	// The queue holds both responses in arrival order.
	var out []byte
	done, err := conn.Drain(func(p []byte) (int, error) {
		out = append(out, p...)
		return len(p), nil
	})
	if err != nil || !done {
		t.Fatalf("Drain = %v, %v", done, err)
	}
	if ia, ib := strings.Index(string(out), "\r\n\r\nA"), strings.Index(string(out), "\r\n\r\nB"); ia < 0 || ib < 0 || ia > ib {
		t.Errorf("responses out of order on the wire: %q", out)
	}
}
