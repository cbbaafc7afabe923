//go:build linux

package transfer

import (
	"net"
	"syscall"

	"golang.org/x/sys/unix"
)

// tcpEstablished reads the kernel TCP state. A peer that has closed moves
// the socket to CLOSE_WAIT, which reports false.
func tcpEstablished(c net.Conn) (bool, error) {
	sc, ok := c.(syscall.Conn)
	if !ok {
		return false, ErrUnsupported
	}
	raw, err := sc.SyscallConn()
	if err != nil {
		return false, err
	}

	var (
		info    *unix.TCPInfo
		sockErr error
	)
	if err := raw.Control(func(fd uintptr) {
		info, sockErr = unix.GetsockoptTCPInfo(int(fd), unix.IPPROTO_TCP, unix.TCP_INFO)
	}); err != nil {
		return false, err
	}
	if sockErr != nil {
		return false, sockErr
	}
	return info.State == unix.BPF_TCP_ESTABLISHED, nil
}
