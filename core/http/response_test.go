package http

import (
	"bytes"
	"strings"
	"testing"
)

// TestCommitOnce tests that a second commit never produces bytes
func TestCommitOnce(t *testing.T) {
	conn := NewConn(-1, 4096, 1<<16)
	res := NewResponse(conn)
	res.Text(200, "ok")

	first, ok := res.Commit()
	if !ok || len(first) == 0 {
		t.Fatal("first Commit should serialize")
	}
	if !res.Sent() {
		t.Error("Sent should report true after Commit")
	}

	second, ok := res.Commit()
	if ok || second != nil {
		t.Errorf("second Commit = %q, %v, want nil, false", second, ok)
	}
}

// TestSerialize tests the wire form of a committed response
func TestSerialize(t *testing.T) {
	conn := NewConn(-1, 4096, 1<<16)
	res := NewResponse(conn)
	res.SetStatus(201)
	res.AddHeader("X-One", "a")
	res.AddHeader("X-One", "b") // multimap: both fields emitted
	res.SetBody([]byte("created"))

	wire, _ := res.Commit()
	s := string(wire)

	if !strings.HasPrefix(s, "HTTP/1.1 201 Created\r\n") {
		t.Errorf("status line: %q", s[:strings.Index(s, "\r\n")])
	}
	if !strings.Contains(s, "\r\nDate: ") {
		t.Error("missing Date header")
	}
	if !strings.Contains(s, "\r\nContent-Length: 7\r\n") {
		t.Error("missing or wrong Content-Length")
	}
	if strings.Count(s, "X-One:") != 2 {
		t.Errorf("duplicate header emitted %d times", strings.Count(s, "X-One:"))
	}
	head, body, found := strings.Cut(s, "\r\n\r\n")
	if !found || body != "created" {
		t.Errorf("body = %q", body)
	}
	if strings.Contains(head, "\r\n\r\n") {
		t.Error("header block contains an extra blank line")
	}
}

// TestDeferredRedirect tests that deferral records without committing
func TestDeferredRedirect(t *testing.T) {
	conn := NewConn(-1, 4096, 1<<16)
	res := NewResponse(conn)

	res.DeferRedirect("/login")
	if res.Sent() {
		t.Error("deferral must not commit")
	}
	if res.DeferredRedirect() != "/login" {
		t.Errorf("DeferredRedirect = %q", res.DeferredRedirect())
	}

	res.Redirect(302, res.DeferredRedirect())
	wire, _ := res.Commit()
	if !bytes.Contains(wire, []byte("HTTP/1.1 302 Found\r\n")) {
		t.Error("missing 302 status line")
	}
	if !bytes.Contains(wire, []byte("Location: /login\r\n")) {
		t.Error("missing Location header")
	}
}

// TestJSONBody tests the JSON renderer
func TestJSONBody(t *testing.T) {
	conn := NewConn(-1, 4096, 1<<16)
	res := NewResponse(conn)

	if err := res.JSON(200, map[string]int{"n": 7}); err != nil {
		t.Fatal(err)
	}
	if res.Status() != 200 {
		t.Errorf("Status = %d", res.Status())
	}
	if string(res.Body()) != `{"n":7}` {
		t.Errorf("Body = %s", res.Body())
	}
	var ct string
	for _, h := range res.Headers() {
		if h.Key == "Content-Type" {
			ct = h.Value
		}
	}
	if ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
}

// TestStatusText tests reason phrases used in serialized responses
func TestStatusText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "OK"},
		{404, "Not Found"},
		{501, "Not Implemented"},
		{999, "Unknown"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.code); got != tt.want {
			t.Errorf("StatusText(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}
