package httpx

import (
	"bufio"
	"fmt"
	"io"
)

const copyChunk = 1024

// WriteResponse writes the status line, the optional Content-type line, the
// blank line, the synthetic body and, for a 200 that carries the file, the
// file bytes. No other headers are emitted.
func WriteResponse(w io.Writer, res *Response, file io.Reader) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "HTTP/1.0 %d %s\r\n", res.Outcome.Status(), res.Outcome)
	if res.ContentType != "" {
		fmt.Fprintf(bw, "Content-type: %s\r\n", res.ContentType)
	}
	fmt.Fprintf(bw, "\r\n")
	if res.Body != "" {
		bw.WriteString(res.Body)
	}
	if res.SendFile && file != nil {
		buf := make([]byte, copyChunk)
		if _, err := io.CopyBuffer(bw, file, buf); err != nil {
			return fmt.Errorf("sending file: %w", err)
		}
	}
	return bw.Flush()
}
