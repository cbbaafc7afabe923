// Package linkmon counts disconnect-class link events. The counter is the
// only value shared between the event goroutine and request handling.
package linkmon

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"apdiag/internal/radio"
)

// Counter is a process-wide, increment-only event counter. It wraps on
// uint32 overflow.
type Counter struct {
	n atomic.Uint32
}

// Inc adds one in a single atomic operation.
func (c *Counter) Inc() {
	c.n.Add(1)
}

// Load returns the current value.
func (c *Counter) Load() uint32 {
	return c.n.Load()
}

// Monitor feeds disconnect-class events from an EventSource into a Counter.
type Monitor struct {
	source     radio.EventSource
	counter    *Counter
	log        zerolog.Logger
	maxBackoff time.Duration
}

// NewMonitor builds a monitor that increments counter.
func NewMonitor(source radio.EventSource, counter *Counter, log zerolog.Logger) *Monitor {
	return &Monitor{
		source:     source,
		counter:    counter,
		log:        log,
		maxBackoff: 30 * time.Second,
	}
}

// Handle processes one event. It never blocks.
func (m *Monitor) Handle(ev radio.Event) {
	if !ev.Kind.Disconnect() {
		m.log.Debug().Str("event", ev.Kind.String()).Str("iface", ev.Interface).Msg("link event")
		return
	}
	m.counter.Inc()
	m.log.Info().
		Str("event", ev.Kind.String()).
		Str("iface", ev.Interface).
		Str("peer", ev.Peer).
		Msg("disconnect")
}

// Run subscribes to the source until ctx is done. A source that exits is
// restarted with exponential backoff.
func (m *Monitor) Run(ctx context.Context) error {
	b := backoff.NewExponentialBackOff()
	b.MaxInterval = m.maxBackoff
	b.MaxElapsedTime = 0
	if b.InitialInterval > m.maxBackoff {
		b.InitialInterval = m.maxBackoff
	}
	b.Reset()

	err := backoff.RetryNotify(func() error {
		err := m.source.Events(ctx, m.Handle)
		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}
		if err == nil {
			err = errors.New("event source closed")
		}
		return err
	}, backoff.WithContext(b, ctx), func(err error, d time.Duration) {
		m.log.Warn().Err(err).Dur("retry_in", d).Msg("link event source failed")
	})
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
