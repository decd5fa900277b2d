//go:build linux

package httpx

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// setReusePort lets several server processes share one port.
func setReusePort(lc *net.ListenConfig) error {
	lc.Control = func(network, address string, c syscall.RawConn) error {
		var serr error
		err := c.Control(func(fd uintptr) {
			serr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		})
		if err != nil {
			return err
		}
		return serr
	}
	return nil
}
