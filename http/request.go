package httpx

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrContentLength is returned for a POST whose Content-Length is not a
// non-negative integer.
var ErrContentLength = errors.New("invalid Content-Length")

// ProtocolError reports a stream that ended before the request was complete.
type ProtocolError struct {
	What string
	Err  error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("premature end of request (%s): %v", e.What, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Request holds what the server needs from one HTTP/1.0 request. It is built
// per connection and never shared.
type Request struct {
	Line   string // request line as received
	Method string
	Target string

	// UserAgent is the whole User-Agent header line, name included, or
	// empty when the header is absent.
	UserAgent string

	// ContentLength is -1 when the header is absent.
	ContentLength int64

	// Malformed is set when the request line has fewer than two tokens.
	Malformed bool
}

// RootedPath anchors the target under the document root.
func (r *Request) RootedPath() string {
	return "." + r.Target
}

// Extension is everything after the last '.' of the rooted path.
func (r *Request) Extension() string {
	p := r.RootedPath()
	return p[strings.LastIndexByte(p, '.')+1:]
}

// similar to readLineSlice() in net/textproto/reader.go
func readLine(r *bufio.Reader) (string, error) {
	var line []byte
	for {
		l, more, err := r.ReadLine()
		if err != nil {
			return "", err
		}
		if line == nil && !more {
			return string(l), nil
		}
		line = append(line, l...)
		if !more {
			break
		}
	}
	return string(line), nil
}

// ReadRequest reads the request line and headers up to the blank line. The
// body, if any, is left in br.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	rl, err := readLine(br)
	if err != nil {
		return nil, &ProtocolError{What: "request line", Err: err}
	}
	req := &Request{Line: rl, ContentLength: -1}

	fields := strings.Fields(rl)
	if len(fields) > 0 {
		req.Method = fields[0]
	}
	if len(fields) > 1 {
		req.Target = fields[1]
	} else {
		req.Malformed = true
	}

	var rawLength string
	var hasLength bool
	for {
		line, err := readLine(br)
		if err != nil {
			return nil, &ProtocolError{What: "headers", Err: err}
		}
		if len(line) == 0 {
			break
		}
		if strings.HasPrefix(line, "User-Agent") {
			req.UserAgent = line
		}
		if strings.HasPrefix(line, "Content-Length") {
			rawLength = strings.TrimLeft(line[len("Content-Length"):], ": \t")
			hasLength = true
		}
	}

	if hasLength {
		n, err := strconv.ParseInt(strings.TrimSpace(rawLength), 10, 64)
		switch {
		case err == nil && n >= 0:
			req.ContentLength = n
		case req.Is(MethodPost):
			return nil, fmt.Errorf("%w: %q", ErrContentLength, rawLength)
		}
	}
	return req, nil
}

const (
	MethodGet  = "GET"
	MethodHead = "HEAD"
	MethodPost = "POST"
)

// Is reports whether the request line starts with method. The match is on
// the raw line, so "GETX" counts as GET.
func (r *Request) Is(method string) bool {
	return strings.HasPrefix(r.Line, method)
}

// Supported reports whether the method is one the server implements.
func (r *Request) Supported() bool {
	return r.Is(MethodGet) || r.Is(MethodHead) || r.Is(MethodPost)
}
