package utils

import (
	"errors"
	"fmt"
	"net"
)

// InterfaceIPv4 returns the first IPv4 address of the named interface, which
// must be up.
func InterfaceIPv4(name string) (net.IP, error) {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return nil, err
	}
	if (ifc.Flags & net.FlagUp) == 0 {
		return nil, fmt.Errorf("interface %s is down", name)
	}
	addrs, err := ifc.Addrs()
	if err != nil {
		return nil, err
	}
	for _, a := range addrs {
		switch v := a.(type) {
		case *net.IPNet:
			ip := v.IP.To4()
			if ip != nil {
				return ip, nil
			}
		}
	}
	return nil, errors.New("no IPv4 on interface " + name)
}
