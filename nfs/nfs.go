// Package nfs exports the document root over NFSv3 so boot loaders and
// installers can mount what the HTTP server serves.
package nfs

import (
	"log"
	"net"

	"github.com/go-git/go-billy/v5"
	gonfs "github.com/willscott/go-nfs"
	nfshelper "github.com/willscott/go-nfs/helpers"

	"github.com/silvan-habenicht/Webserver/utils"
)

// handleCacheSize bounds the number of file handles kept for clients.
const handleCacheSize = 1024

func newHandler(fs billy.Filesystem) gonfs.Handler {
	return nfshelper.NewCachingHandler(nfshelper.NewNullAuthHandler(fs), handleCacheSize)
}

// StartNFSServer serves fs on addr (TCP, MOUNT and NFS on the same port) in
// the background. fs is expected to be read-only.
func StartNFSServer(addr string, fs billy.Filesystem, logger *log.Logger) (net.Listener, error) {
	if addr == "" {
		addr = ":2049"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}
	handler := newHandler(fs)
	go func() {
		if logger != nil {
			port := utils.MustPort(ln.Addr().String())
			logger.Printf("nfs listening on %s, mount with -o port=%d,mountport=%d,nfsvers=3,tcp", ln.Addr(), port, port)
		}
		if err := gonfs.Serve(ln, handler); err != nil {
			if logger != nil {
				logger.Printf("nfs serve error: %v", err)
			}
		}
	}()
	return ln, nil
}
