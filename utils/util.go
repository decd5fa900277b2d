package utils

import (
	"log"
	"net"
	"strconv"
	"strings"
)

// HostOnly strips the port from a "host:port" address. Anything that does
// not parse is returned unchanged.
func HostOnly(addr string) string {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return addr
	}
	return host
}

// JoinPort builds a listen address from an optional host and a port.
func JoinPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func MustPort(addr string) int {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		if strings.HasPrefix(addr, ":") {
			v, _ := strconv.Atoi(addr[1:])
			return v
		}
		log.Fatalf("invalid addr %q: %v", addr, err)
	}
	v, err := strconv.Atoi(p)
	if err != nil {
		log.Fatalf("invalid port in %q: %v", addr, err)
	}
	return v
}
