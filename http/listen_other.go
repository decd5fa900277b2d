//go:build !linux

package httpx

import (
	"errors"
	"net"
)

func setReusePort(lc *net.ListenConfig) error {
	return errors.New("reuseport is only supported on linux")
}
