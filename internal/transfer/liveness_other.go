//go:build !linux

package transfer

import "net"

func tcpEstablished(net.Conn) (bool, error) {
	return false, ErrUnsupported
}
