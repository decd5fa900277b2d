package httpx

import (
	"context"
	"errors"
	"log"
	"net"
	"time"

	"github.com/go-git/go-billy/v5"
)

// Server serves files from a document root over HTTP/1.0, one request per
// connection.
type Server struct {
	fs     billy.Filesystem
	mimes  *MimeTable
	logger *log.Logger

	// Timeout bounds the whole exchange on one connection. Zero means no
	// deadline.
	Timeout time.Duration

	// BodyTimeout bounds the wait for a POST body. Zero waits as long as
	// Timeout allows.
	BodyTimeout time.Duration
}

// DefaultBodyTimeout is how long a POST body may take to arrive in full.
const DefaultBodyTimeout = time.Second

func NewServer(fs billy.Filesystem, mimes *MimeTable, logger *log.Logger) *Server {
	return &Server{fs: fs, mimes: mimes, logger: logger, BodyTimeout: DefaultBodyTimeout}
}

func (s *Server) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// Serve accepts connections on ln until it is closed, handing each one to its
// own goroutine.
// Failing accepts are retried with a backoff capped at one second, like
// net/http does.
func (s *Server) Serve(ln net.Listener) error {
	var tempDelay time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			if tempDelay == 0 {
				tempDelay = 5 * time.Millisecond
			} else {
				tempDelay *= 2
			}
			if tempDelay > maxAcceptDelay {
				tempDelay = maxAcceptDelay
			}
			s.logf("accept error: %v; retrying in %v", err, tempDelay)
			time.Sleep(tempDelay)
			continue
		}
		tempDelay = 0
		go s.ServeConn(conn)
	}
}

const maxAcceptDelay = time.Second

// StartHTTPServer listens on addr and serves srv in the background. It returns
// the listener so the caller can manage lifecycle.
func StartHTTPServer(addr string, srv *Server, reusePort bool) (net.Listener, error) {
	if addr == "" {
		addr = ":6789"
	}
	lc := net.ListenConfig{}
	if reusePort {
		if err := setReusePort(&lc); err != nil {
			return nil, err
		}
	}
	ln, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}
	go func() {
		srv.logf("http server listening on %s (%d mime types)", ln.Addr(), srv.mimes.Len())
		if err := srv.Serve(ln); err != nil {
			srv.logf("http serve error: %v", err)
		}
	}()
	return ln, nil
}
