package httpx

import (
	"bufio"
	"io"
)

// Outcome is the response case chosen for a request.
type Outcome int

const (
	NotImplemented Outcome = iota
	BadRequest
	NoContent
	OK
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case NotImplemented:
		return "Not Implemented"
	case BadRequest:
		return "Bad Request"
	case NoContent:
		return "No Content"
	case OK:
		return "OK"
	case NotFound:
		return "Not Found"
	}
	return "Unknown"
}

// Status is the HTTP status code of the outcome.
func (o Outcome) Status() int {
	switch o {
	case NotImplemented:
		return 501
	case BadRequest:
		return 400
	case NoContent:
		return 204
	case OK:
		return 200
	case NotFound:
		return 404
	}
	return 500
}

const htmlType = "text/html"

// Response is everything the writer needs to put on the wire.
type Response struct {
	Outcome     Outcome
	ContentType string // empty means no Content-type line
	Body        string // synthetic body, written before any file content
	SendFile    bool
}

func htmlPage(title, body string) string {
	return "<HTML>" +
		"<HEAD><TITLE>" + title + "</TITLE></HEAD>" +
		"<BODY>" + body + "</BODY></HTML>"
}

// Facts are the per-connection inputs to Classify besides the request.
type Facts struct {
	FileExists bool
	// BodyOK is the result of CheckBody; only consulted for POST with a
	// Content-Length.
	BodyOK bool
	// ClientIP is rendered in the 404 page.
	ClientIP string
}

// Classify picks exactly one outcome for req. The first matching rule wins.
func Classify(req *Request, facts Facts, mimes *MimeTable) *Response {
	post := req.Is(MethodPost) && req.ContentLength > -1

	switch {
	case !req.Supported():
		o := NotImplemented
		return &Response{Outcome: o, ContentType: htmlType, Body: htmlPage(o.String(), o.String())}
	case req.Malformed, post && !facts.BodyOK:
		o := BadRequest
		return &Response{Outcome: o, ContentType: htmlType, Body: htmlPage(o.String(), o.String())}
	case post && facts.FileExists:
		return &Response{Outcome: NoContent}
	case facts.FileExists:
		return &Response{
			Outcome:     OK,
			ContentType: mimes.Lookup(req.Extension()),
			SendFile:    !req.Is(MethodHead),
		}
	default:
		o := NotFound
		return &Response{
			Outcome:     o,
			ContentType: htmlType,
			Body:        htmlPage(o.String(), o.String()+"<br> Client-IP: "+facts.ClientIP+"<br>"+req.UserAgent),
		}
	}
}

// CheckBody reports whether exactly n body bytes follow on br. A short read
// fails, and so do surplus bytes already sitting behind the body.
func CheckBody(br *bufio.Reader, n int64) bool {
	if n < 0 {
		return true
	}
	if _, err := io.CopyN(io.Discard, br, n); err != nil {
		return false
	}
	return br.Buffered() == 0
}
