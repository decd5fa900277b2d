package httpx

import (
	"bytes"
	"errors"
	"log"
	"net"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
)

type MockAddr struct {
	str string
}

func (m MockAddr) Network() string { return "tcp" }
func (m MockAddr) String() string  { return m.str }

// MockConn reads the request from in and collects the response in out.
type MockConn struct {
	in     *strings.Reader
	out    bytes.Buffer
	addr   MockAddr
	closed bool

	deadlineErr error
}

func newMockConn(request, remote string) *MockConn {
	return &MockConn{in: strings.NewReader(request), addr: MockAddr{remote}}
}

func (m *MockConn) Read(b []byte) (int, error)  { return m.in.Read(b) }
func (m *MockConn) Write(b []byte) (int, error) { return m.out.Write(b) }

func (m *MockConn) Close() error {
	m.closed = true
	return nil
}

func (m *MockConn) LocalAddr() net.Addr {
	return nil
}

func (m *MockConn) RemoteAddr() net.Addr {
	return m.addr
}

func (m *MockConn) SetDeadline(t time.Time) error {
	return m.deadlineErr
}

func (m *MockConn) SetReadDeadline(t time.Time) error {
	return nil
}

func (m *MockConn) SetWriteDeadline(t time.Time) error {
	return nil
}

func testRoot(t *testing.T) billy.Filesystem {
	t.Helper()
	fs := memfs.New()
	files := map[string]string{
		"index.html":    "<p>hello</p>",
		"notes.txt":     "plain notes",
		"data/blob.bin": "\x00\x01\x02",
	}
	for name, content := range files {
		if err := util.WriteFile(fs, name, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fs
}

func serve(t *testing.T, request string) *MockConn {
	t.Helper()
	var logs bytes.Buffer
	srv := NewServer(testRoot(t), testMimes(t), log.New(&logs, "", 0))
	conn := newMockConn(request, "192.0.2.7:5555")
	srv.ServeConn(conn)
	if !conn.closed {
		t.Fatalf("connection left open")
	}
	return conn
}

func TestServeConnGet(t *testing.T) {
	conn := serve(t, "GET /index.html HTTP/1.0\r\n\r\n")
	expect := "HTTP/1.0 200 OK\r\nContent-type: text/html\r\n\r\n<p>hello</p>"
	if got := conn.out.String(); got != expect {
		t.Fatalf("got=%q want=%q", got, expect)
	}
}

func TestServeConnGetIdempotent(t *testing.T) {
	first := serve(t, "GET /notes.txt HTTP/1.0\r\n\r\n").out.String()
	second := serve(t, "GET /notes.txt HTTP/1.0\r\n\r\n").out.String()
	if first != second {
		t.Fatalf("responses differ: %q vs %q", first, second)
	}
}

func TestServeConnHead(t *testing.T) {
	conn := serve(t, "HEAD /notes.txt HTTP/1.0\r\n\r\n")
	expect := "HTTP/1.0 200 OK\r\nContent-type: text/plain\r\n\r\n"
	if got := conn.out.String(); got != expect {
		t.Fatalf("got=%q want=%q", got, expect)
	}
}

func TestServeConnUnknownExtension(t *testing.T) {
	conn := serve(t, "GET /data/blob.bin HTTP/1.0\r\n\r\n")
	expect := "HTTP/1.0 200 OK\r\nContent-type: application/octet-stream\r\n\r\n\x00\x01\x02"
	if got := conn.out.String(); got != expect {
		t.Fatalf("got=%q want=%q", got, expect)
	}
}

func TestServeConnNotFound(t *testing.T) {
	conn := serve(t, "GET /missing.html HTTP/1.0\r\nUser-Agent: tester/2\r\n\r\n")
	got := conn.out.String()
	if !strings.HasPrefix(got, "HTTP/1.0 404 Not Found\r\nContent-type: text/html\r\n\r\n") {
		t.Fatalf("unexpected head: %q", got)
	}
	if !strings.Contains(got, "Client-IP: 192.0.2.7") || !strings.Contains(got, "User-Agent: tester/2") {
		t.Fatalf("404 body misses client facts: %q", got)
	}
}

func TestServeConnDirectoryIsNotFound(t *testing.T) {
	conn := serve(t, "GET /data HTTP/1.0\r\n\r\n")
	if got := conn.out.String(); !strings.HasPrefix(got, "HTTP/1.0 404 ") {
		t.Fatalf("got=%q want 404", got)
	}
}

func TestServeConnNotImplemented(t *testing.T) {
	for _, target := range []string{"/index.html", "/missing"} {
		conn := serve(t, "DELETE "+target+" HTTP/1.0\r\n\r\n")
		if got := conn.out.String(); !strings.HasPrefix(got, "HTTP/1.0 501 Not Implemented\r\n") {
			t.Fatalf("DELETE %s got=%q want 501", target, got)
		}
	}
}

func TestServeConnPost(t *testing.T) {
	cases := []struct {
		request string
		status  string
	}{
		{"POST /index.html HTTP/1.0\r\nContent-Length: 5\r\n\r\nhello", "HTTP/1.0 204 No Content\r\n\r\n"},
		{"POST /index.html HTTP/1.0\r\nContent-Length: 0\r\n\r\n", "HTTP/1.0 204 No Content\r\n\r\n"},
		{"POST /index.html HTTP/1.0\r\nContent-Length: 9\r\n\r\nhello", "HTTP/1.0 400 Bad Request\r\n"},
		{"POST /index.html HTTP/1.0\r\nContent-Length: 2\r\n\r\nhello", "HTTP/1.0 400 Bad Request\r\n"},
		{"POST /missing HTTP/1.0\r\nContent-Length: 9\r\n\r\nhello", "HTTP/1.0 400 Bad Request\r\n"},
		{"POST /missing HTTP/1.0\r\nContent-Length: 5\r\n\r\nhello", "HTTP/1.0 404 Not Found\r\n"},
	}
	for _, c := range cases {
		got := serve(t, c.request).out.String()
		if !strings.HasPrefix(got, c.status) {
			t.Fatalf("%q got=%q want prefix %q", c.request, got, c.status)
		}
	}
}

func TestServeConnMalformed(t *testing.T) {
	conn := serve(t, "GET\r\n\r\n")
	if got := conn.out.String(); !strings.HasPrefix(got, "HTTP/1.0 400 Bad Request\r\n") {
		t.Fatalf("got=%q want 400", got)
	}
}

func TestServeConnPrematureEnd(t *testing.T) {
	for _, request := range []string{"", "GET /index.html HTTP/1.0\r\nHost: x\r\n"} {
		conn := serve(t, request)
		if conn.out.Len() != 0 {
			t.Fatalf("%q: expected no response, got %q", request, conn.out.String())
		}
	}
}

func TestServeConnBadContentLength(t *testing.T) {
	conn := serve(t, "POST /index.html HTTP/1.0\r\nContent-Length: x\r\n\r\n")
	if conn.out.Len() != 0 {
		t.Fatalf("expected no response, got %q", conn.out.String())
	}
}

type panicFS struct {
	billy.Filesystem
}

func (panicFS) Stat(string) (os.FileInfo, error) { panic("boom") }

func TestServeConnRecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(panicFS{memfs.New()}, nil, log.New(&logs, "", 0))
	conn := newMockConn("GET /x HTTP/1.0\r\n\r\n", "192.0.2.7:1")
	srv.ServeConn(conn)
	if !conn.closed {
		t.Fatalf("connection left open after panic")
	}
	if !strings.Contains(logs.String(), "panic serving") {
		t.Fatalf("panic not logged: %q", logs.String())
	}
}

func TestServeConnLogsDeadlineError(t *testing.T) {
	var logs bytes.Buffer
	srv := NewServer(testRoot(t), testMimes(t), log.New(&logs, "", 0))
	srv.Timeout = time.Minute
	conn := newMockConn("GET /notes.txt HTTP/1.0\r\n\r\n", "192.0.2.7:5555")
	conn.deadlineErr = errors.New("deadline not supported")
	srv.ServeConn(conn)
	if !strings.Contains(logs.String(), "set deadline: deadline not supported") {
		t.Fatalf("deadline error not logged: %q", logs.String())
	}
	if got := conn.out.String(); !strings.HasPrefix(got, "HTTP/1.0 200 OK\r\n") {
		t.Fatalf("got=%q want 200", got)
	}
}
