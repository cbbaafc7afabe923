package transfer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"apdiag/internal/logger"
	"apdiag/internal/timeutil"
)

// scriptConn accepts writes according to accept; a negative entry accepts
// the full slice. Once the script is exhausted every write is accepted.
type scriptConn struct {
	accept     []int
	writes     int
	received   []byte
	maxWrite   int
	err        error
	errAfter   int
	aliveUntil int
}

func (c *scriptConn) Write(p []byte) (int, error) {
	c.writes++
	if len(p) > c.maxWrite {
		c.maxWrite = len(p)
	}
	if c.err != nil && c.writes > c.errAfter {
		return 0, c.err
	}
	n := len(p)
	if len(c.accept) > 0 {
		if a := c.accept[0]; a >= 0 && a < n {
			n = a
		}
		c.accept = c.accept[1:]
	}
	c.received = append(c.received, p[:n]...)
	return n, nil
}

func (c *scriptConn) Connected() bool {
	return c.aliveUntil == 0 || c.writes < c.aliveUntil
}

func newTestSender(chunk int) (*Sender, *timeutil.MockClock) {
	clock := timeutil.NewMockClock(time.Unix(0, 0))
	return NewSender(chunk, time.Millisecond, clock, logger.Nop()), clock
}

func TestSend_ExactByteCount(t *testing.T) {
	t.Parallel()

	for _, size := range []int64{0, 1, 4095, 4096, 4097, 12345, 1048576} {
		s, clock := newTestSender(4096)
		conn := &scriptConn{}

		sent := s.Send(context.Background(), conn, size)
		assert.Equal(t, size, sent, "size %d", size)
		assert.Len(t, conn.received, int(size))
		assert.LessOrEqual(t, conn.maxWrite, 4096)
		assert.Empty(t, clock.Sleeps())
		for i, b := range conn.received {
			if b != PatternByte {
				t.Fatalf("size %d: byte %d = %#x", size, i, b)
			}
		}
	}
}

func TestSend_ZeroSizeWritesNothing(t *testing.T) {
	t.Parallel()

	s, _ := newTestSender(4096)
	conn := &scriptConn{}
	assert.Equal(t, int64(0), s.Send(context.Background(), conn, 0))
	assert.Zero(t, conn.writes)
}

func TestSend_BackpressureYieldsAndRetries(t *testing.T) {
	t.Parallel()

	s, clock := newTestSender(4096)
	conn := &scriptConn{accept: []int{0, 0, 0, 0, 0}}

	sent := s.Send(context.Background(), conn, 8192)
	assert.Equal(t, int64(8192), sent)
	assert.Len(t, conn.received, 8192)
	assert.Equal(t, 7, conn.writes)

	sleeps := clock.Sleeps()
	require.Len(t, sleeps, 5)
	for _, d := range sleeps {
		assert.Equal(t, time.Millisecond, d)
	}
}

func TestSend_PartialWritesAdvanceByAccepted(t *testing.T) {
	t.Parallel()

	s, clock := newTestSender(4096)
	conn := &scriptConn{accept: []int{100, 0, 1000, 3000}}

	sent := s.Send(context.Background(), conn, 5000)
	assert.Equal(t, int64(5000), sent)
	assert.Len(t, conn.received, 5000)
	assert.Len(t, clock.Sleeps(), 1)
}

func TestSend_StopsWithinOneIterationOfDisconnect(t *testing.T) {
	t.Parallel()

	s, _ := newTestSender(4096)
	conn := &scriptConn{aliveUntil: 3}

	sent := s.Send(context.Background(), conn, 1<<20)
	assert.Equal(t, 3, conn.writes)
	assert.Equal(t, int64(3*4096), sent)
}

func TestSend_DisconnectDuringBackpressure(t *testing.T) {
	t.Parallel()

	s, clock := newTestSender(4096)
	conn := &scriptConn{accept: []int{0, 0, 0, 0, 0, 0}, aliveUntil: 2}

	sent := s.Send(context.Background(), conn, 4096)
	assert.Equal(t, int64(0), sent)
	assert.Equal(t, 2, conn.writes)
	assert.Len(t, clock.Sleeps(), 2)
}

func TestSend_WriteErrorEndsQuietly(t *testing.T) {
	t.Parallel()

	s, _ := newTestSender(4096)
	conn := &scriptConn{err: errors.New("connection reset by peer"), errAfter: 2}

	sent := s.Send(context.Background(), conn, 1<<20)
	assert.Equal(t, int64(2*4096), sent)
	assert.Equal(t, 3, conn.writes)
}

func TestSend_ContextCancelled(t *testing.T) {
	t.Parallel()

	s, _ := newTestSender(4096)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	conn := &scriptConn{}
	assert.Equal(t, int64(0), s.Send(ctx, conn, 4096))
	assert.Zero(t, conn.writes)
}
