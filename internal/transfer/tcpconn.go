package transfer

import (
	"errors"
	"net"
	"os"
	"time"
)

// tcpConn adapts a hijacked connection to Conn. Each write is bounded by a
// write deadline; expiry reports the partial count as accepted bytes.
type tcpConn struct {
	stream net.Conn
	ctl    net.Conn
	slice  time.Duration
	dead   bool
}

// newTCPConn writes to stream and reads socket state from ctl, which is
// the unwrapped connection when stream is a listener wrapper.
func newTCPConn(stream, ctl net.Conn, slice time.Duration) *tcpConn {
	if ctl == nil {
		ctl = stream
	}
	return &tcpConn{stream: stream, ctl: ctl, slice: slice}
}

func (c *tcpConn) SetNoDelay() error {
	tc, ok := c.ctl.(*net.TCPConn)
	if !ok {
		return nil
	}
	return tc.SetNoDelay(true)
}

func (c *tcpConn) Write(p []byte) (int, error) {
	if c.dead {
		return 0, net.ErrClosed
	}
	if c.slice > 0 {
		if err := c.stream.SetWriteDeadline(time.Now().Add(c.slice)); err != nil {
			c.dead = true
			return 0, err
		}
	}
	n, err := c.stream.Write(p)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return n, nil
		}
		c.dead = true
	}
	return n, err
}

func (c *tcpConn) Connected() bool {
	if c.dead {
		return false
	}
	ok, err := tcpEstablished(c.ctl)
	if err != nil {
		return errors.Is(err, ErrUnsupported)
	}
	return ok
}

// responseConn streams through a plain ResponseWriter when the connection
// cannot be hijacked.
type responseConn struct {
	w         writeFlusher
	connected func() bool
}

type writeFlusher interface {
	Write(p []byte) (int, error)
	Flush()
}

func (c *responseConn) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if err == nil {
		c.w.Flush()
	}
	return n, err
}

func (c *responseConn) Connected() bool {
	return c.connected()
}
