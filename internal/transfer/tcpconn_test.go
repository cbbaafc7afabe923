package transfer

import (
	"net"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tcpPair(t *testing.T) (server, client net.Conn) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := ln.Accept()
		if err != nil {
			close(accepted)
			return
		}
		accepted <- c
	}()

	client, err = net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server, ok := <-accepted
	require.True(t, ok)

	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return server, client
}

func TestTCPConn_DeadlineIsBackpressure(t *testing.T) {
	t.Parallel()

	server, _ := tcpPair(t)
	tc := newTCPConn(server, nil, 10*time.Millisecond)
	require.NoError(t, tc.SetNoDelay())

	chunk := make([]byte, 64*1024)
	short := false
	for i := 0; i < 10000 && !short; i++ {
		n, err := tc.Write(chunk)
		require.NoError(t, err)
		short = n < len(chunk)
	}
	assert.True(t, short, "peer never exerted backpressure")
	assert.True(t, tc.Connected())
}

func TestTCPConn_PeerCloseIsDetected(t *testing.T) {
	t.Parallel()
	if runtime.GOOS != "linux" {
		t.Skip("tcp state is read from TCP_INFO")
	}

	server, client := tcpPair(t)
	tc := newTCPConn(server, nil, 10*time.Millisecond)
	assert.True(t, tc.Connected())

	require.NoError(t, client.Close())
	assert.Eventually(t, func() bool { return !tc.Connected() }, 2*time.Second, 5*time.Millisecond)
}

func TestTCPConn_HardErrorMarksDead(t *testing.T) {
	t.Parallel()

	server, _ := tcpPair(t)
	tc := newTCPConn(server, nil, 10*time.Millisecond)
	require.NoError(t, server.Close())

	_, err := tc.Write([]byte{PatternByte})
	require.Error(t, err)
	assert.False(t, tc.Connected())
}
