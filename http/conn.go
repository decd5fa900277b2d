package httpx

import (
	"bufio"
	"net"
	"runtime/debug"
	"time"

	"github.com/go-git/go-billy/v5"

	"github.com/silvan-habenicht/Webserver/docroot"
	"github.com/silvan-habenicht/Webserver/utils"
)

// ServeConn answers exactly one request on conn and closes it. It takes
// ownership of conn; nothing that goes wrong here leaves this goroutine.
func (s *Server) ServeConn(conn net.Conn) {
	defer conn.Close()
	defer func() {
		if r := recover(); r != nil {
			s.logf("panic serving %s: %v\n%s", conn.RemoteAddr(), r, debug.Stack())
		}
	}()

	client := utils.HostOnly(conn.RemoteAddr().String())

	var deadline time.Time
	if s.Timeout > 0 {
		deadline = time.Now().Add(s.Timeout)
		if err := conn.SetDeadline(deadline); err != nil {
			s.logf("%s: set deadline: %v", client, err)
		}
	}
	br := bufio.NewReader(conn)

	req, err := ReadRequest(br)
	if err != nil {
		s.logf("%s: %v", client, err)
		return
	}

	var file billy.File
	facts := Facts{ClientIP: client, BodyOK: true}
	if !req.Malformed {
		file, _, facts.FileExists = docroot.Probe(s.fs, req.RootedPath())
	}
	if file != nil {
		defer file.Close()
	}
	if req.Is(MethodPost) && req.ContentLength > -1 {
		facts.BodyOK = s.checkBody(conn, br, req.ContentLength, deadline)
	}

	res := Classify(req, facts, s.mimes)
	s.logf("%s %s %s %d", client, req.Method, req.Target, res.Outcome.Status())

	if err := WriteResponse(conn, res, file); err != nil {
		s.logf("%s: write: %v", client, err)
		return
	}
	// FIN before close so unread request bytes do not reset the response.
	if cw, ok := conn.(interface{ CloseWrite() error }); ok {
		if err := cw.CloseWrite(); err != nil {
			s.logf("%s: close write: %v", client, err)
		}
	}
}

// checkBody runs CheckBody with the read side bounded by BodyTimeout, so a
// client that announces more bytes than it sends gets a 400 instead of a
// stalled handler. The connection deadline is restored afterwards.
func (s *Server) checkBody(conn net.Conn, br *bufio.Reader, n int64, deadline time.Time) bool {
	if s.BodyTimeout > 0 {
		bodyDeadline := time.Now().Add(s.BodyTimeout)
		if deadline.IsZero() || bodyDeadline.Before(deadline) {
			if err := conn.SetReadDeadline(bodyDeadline); err != nil {
				s.logf("%s: set read deadline: %v", conn.RemoteAddr(), err)
			}
			defer func() {
				if err := conn.SetReadDeadline(deadline); err != nil {
					s.logf("%s: reset read deadline: %v", conn.RemoteAddr(), err)
				}
			}()
		}
	}
	return CheckBody(br, n)
}
