package router

import (
	"testing"

	"github.com/supranim/supranim-sub001/core/http"
)

func newTestExchange(t *testing.T, raw string) (*http.Request, *http.Response) {
	t.Helper()
	conn := http.NewConn(-1, 4096, 1<<16)
	if err := conn.Feed([]byte(raw)); err != nil {
		t.Fatal(err)
	}
	if !conn.HeadersComplete() {
		t.Fatal("test request is not fully framed")
	}
	return http.NewRequest(conn), http.NewResponse(conn)
}

// TestDispatchFound tests the happy path: all middleware continue,
// handler runs
func TestDispatchFound(t *testing.T) {
	r := New()
	order := []string{}

	r.Get("/x", func(req *http.Request, res *http.Response) {
		order = append(order, "handler")
		res.Text(200, "ok")
	}).Middleware(
		func(req *http.Request, res *http.Response) bool {
			order = append(order, "a")
			return true
		},
		func(req *http.Request, res *http.Response) bool {
			order = append(order, "b")
			return true
		},
	)

	req, res := newTestExchange(t, "GET /x HTTP/1.1\r\nHost: t\r\n\r\n")
	status := r.Dispatch(http.MethodGet, req, res)

	if status != RouteFound {
		t.Fatalf("status = %s, want Found", status)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "handler" {
		t.Errorf("execution order = %v", order)
	}
}

// TestDispatchAbort tests that the first stop signal blocks the chain
func TestDispatchAbort(t *testing.T) {
	r := New()
	ranB := false
	ranHandler := false

	r.Get("/x", func(req *http.Request, res *http.Response) {
		ranHandler = true
	}).Middleware(
		func(req *http.Request, res *http.Response) bool {
			res.SetStatus(403)
			res.SetBody([]byte("forbidden"))
			return false
		},
		func(req *http.Request, res *http.Response) bool {
			ranB = true
			return true
		},
	)

	req, res := newTestExchange(t, "GET /x HTTP/1.1\r\nHost: t\r\n\r\n")
	status := r.Dispatch(http.MethodGet, req, res)

	if status != BlockedByAbort {
		t.Fatalf("status = %s, want BlockedByAbort", status)
	}
	if ranB {
		t.Error("middleware B must not run after A aborted")
	}
	if ranHandler {
		t.Error("handler must not run after abort")
	}
	// The response stays exactly as the aborting middleware left it.
	if res.Status() != 403 || string(res.Body()) != "forbidden" {
		t.Errorf("response mutated after abort: %d %q", res.Status(), res.Body())
	}
}

// TestDispatchDeferredRedirect tests that a stop with a deferred
// redirect target yields BlockedByRedirect
func TestDispatchDeferredRedirect(t *testing.T) {
	r := New()
	ranB := false

	r.Get("/x", func(req *http.Request, res *http.Response) {
		t.Error("handler must not run")
	}).Middleware(
		func(req *http.Request, res *http.Response) bool {
			res.DeferRedirect("/login")
			return false
		},
		func(req *http.Request, res *http.Response) bool {
			ranB = true
			return true
		},
	)

	req, res := newTestExchange(t, "GET /x HTTP/1.1\r\nHost: t\r\n\r\n")
	status := r.Dispatch(http.MethodGet, req, res)

	if status != BlockedByRedirect {
		t.Fatalf("status = %s, want BlockedByRedirect", status)
	}
	if ranB {
		t.Error("middleware B must not run after redirect")
	}
	if res.DeferredRedirect() != "/login" {
		t.Errorf("deferred target = %q", res.DeferredRedirect())
	}
}

// TestDispatchNotFound tests resolution failure
func TestDispatchNotFound(t *testing.T) {
	r := New()
	r.Get("/exists", func(req *http.Request, res *http.Response) {})

	req, res := newTestExchange(t, "GET /missing HTTP/1.1\r\nHost: t\r\n\r\n")
	if status := r.Dispatch(http.MethodGet, req, res); status != RouteNotFound {
		t.Fatalf("status = %s, want NotFound", status)
	}
}

// TestDispatchInjectsParams tests that the handler sees exactly the
// extracted placeholder values
func TestDispatchInjectsParams(t *testing.T) {
	r := New()
	r.Get("/orders/{id}", func(req *http.Request, res *http.Response) {
		params := req.Params()
		if len(params) != 1 {
			t.Fatalf("handler saw %d params, want 1", len(params))
		}
		if params[0].Kind != http.PatternId || params[0].Value != "42" {
			t.Errorf("handler saw %+v", params[0])
		}
	})

	req, res := newTestExchange(t, "GET /orders/42 HTTP/1.1\r\nHost: t\r\n\r\n")
	if status := r.Dispatch(http.MethodGet, req, res); status != RouteFound {
		t.Fatalf("status = %s", status)
	}
}
