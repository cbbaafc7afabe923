// Package transfer implements the bulk download and upload endpoints.
package transfer

import (
	"bytes"
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"apdiag/internal/timeutil"
)

// PatternByte fills every download payload.
const PatternByte = 0xAA

// ErrUnsupported is returned when the platform cannot report TCP state.
var ErrUnsupported = errors.New("tcp state not supported on this platform")

// Conn is the sink a download is streamed into.
type Conn interface {
	// Write may accept fewer bytes than offered, including zero, without
	// that being an error.
	Write(p []byte) (int, error)
	// Connected reports whether the peer is still reachable.
	Connected() bool
}

// Sender streams a fixed-size pattern payload with backpressure.
type Sender struct {
	chunk []byte
	yield time.Duration
	clock timeutil.Clock
	log   zerolog.Logger
}

// NewSender builds a sender writing at most chunkSize bytes per write and
// sleeping yield after every write that is not accepted.
func NewSender(chunkSize int, yield time.Duration, clock timeutil.Clock, log zerolog.Logger) *Sender {
	if chunkSize <= 0 {
		chunkSize = 4096
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Sender{
		chunk: bytes.Repeat([]byte{PatternByte}, chunkSize),
		yield: yield,
		clock: clock,
		log:   log,
	}
}

// Send writes size bytes to conn and returns how many were accepted. It
// stops early, without error, once conn is disconnected, a write fails or
// ctx is done; the caller compares the result with size.
func (s *Sender) Send(ctx context.Context, conn Conn, size int64) int64 {
	var sent int64
	for sent < size {
		if ctx.Err() != nil || !conn.Connected() {
			s.log.Debug().Int64("sent", sent).Int64("size", size).Msg("peer gone, stopping download")
			return sent
		}

		n := int64(len(s.chunk))
		if rem := size - sent; rem < n {
			n = rem
		}

		w, err := conn.Write(s.chunk[:n])
		if w > 0 {
			sent += int64(w)
		}
		if err != nil {
			s.log.Debug().Err(err).Int64("sent", sent).Msg("download write failed")
			return sent
		}
		if w == 0 {
			s.clock.Sleep(s.yield)
		}
	}
	return sent
}
