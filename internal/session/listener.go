package session

import (
	"net"
	"sync"

	"golang.org/x/net/netutil"
)

// Listener admits one connection at a time and reports each accept and
// close to m.
func Listener(l net.Listener, m *Machine) net.Listener {
	return netutil.LimitListener(&listener{Listener: l, machine: m}, 1)
}

type listener struct {
	net.Listener
	machine *Machine
}

// Accept drops connections the machine refuses and keeps listening.
func (l *listener) Accept() (net.Conn, error) {
	for {
		c, err := l.Listener.Accept()
		if err != nil {
			return nil, err
		}
		if _, err := l.machine.Accept(c); err != nil {
			c.Close()
			continue
		}
		return &conn{Conn: c, machine: l.machine}, nil
	}
}

type conn struct {
	net.Conn
	machine *Machine
	once    sync.Once
}

func (c *conn) Close() error {
	c.once.Do(func() { _ = c.machine.Close() })
	return c.Conn.Close()
}
