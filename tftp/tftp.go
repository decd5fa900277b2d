// Package tftp mirrors the document root over TFTP for clients that cannot
// speak HTTP. Only reads are served.
package tftp

import (
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5"
	tftp "github.com/pin/tftp/v3"

	"github.com/silvan-habenicht/Webserver/docroot"
)

// rootedName maps a TFTP filename onto the document root the same way the
// HTTP server does, with or without a leading slash.
func rootedName(filename string) string {
	name := strings.TrimSpace(filename)
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return "." + path.Clean(name)
}

func readHandler(fs billy.Filesystem, logger *log.Logger) func(string, io.ReaderFrom) error {
	return func(filename string, rf io.ReaderFrom) error {
		name := rootedName(filename)
		f, fi, ok := docroot.Probe(fs, name)
		if !ok {
			if logger != nil {
				logger.Printf("RRQ %q: not found", filename)
			}
			return fmt.Errorf("file not found: %s", filename)
		}
		defer f.Close()
		if ot, ok := rf.(tftp.OutgoingTransfer); ok {
			ot.SetSize(fi.Size())
		}
		n, err := rf.ReadFrom(f)
		if logger != nil {
			logger.Printf("RRQ %q: %d bytes sent", filename, n)
		}
		return err
	}
}

// StartTFTPServer serves fs read-only on addr in the background.
func StartTFTPServer(addr string, fs billy.Filesystem, logger *log.Logger) (*tftp.Server, error) {
	if addr == "" {
		addr = ":69"
	}
	// Write handler not used.
	srv := tftp.NewServer(readHandler(fs, logger), nil)
	srv.SetTimeout(5 * time.Second)

	go func() {
		if logger != nil {
			logger.Printf("TFTP server listening on %s", addr)
		}
		if err := srv.ListenAndServe(addr); err != nil {
			if logger != nil {
				logger.Printf("TFTP server error: %v", err)
			}
		}
	}()
	return srv, nil
}
