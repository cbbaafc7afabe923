// Package session tracks the lifecycle of the one connection the service
// handles at a time.
package session

import (
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"apdiag/internal/timeutil"
)

// ErrInvalidTransition is returned when an event does not fit the current
// state, which would mean two sessions overlap.
var ErrInvalidTransition = errors.New("invalid session transition")

type State int

const (
	StateIdle State = iota
	StateAccepted
	StateRouted
	StateHandling
	StateResponding
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAccepted:
		return "accepted"
	case StateRouted:
		return "routed"
	case StateHandling:
		return "handling"
	case StateResponding:
		return "responding"
	case StateClosed:
		return "closed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Machine is the serve loop state machine:
// Idle → Accepted → Routed → Handling → Responding → Closed → Accepted ...
type Machine struct {
	mu       sync.Mutex
	state    State
	id       string
	conn     net.Conn
	started  time.Time
	sessions uint64
	clock    timeutil.Clock
	log      zerolog.Logger
}

func NewMachine(clock timeutil.Clock, log zerolog.Logger) *Machine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &Machine{clock: clock, log: log}
}

// Accept starts a session for conn and returns its id.
func (m *Machine) Accept(conn net.Conn) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state != StateIdle && m.state != StateClosed {
		return "", m.reject("accept")
	}
	m.state = StateAccepted
	m.id = uuid.NewString()
	m.conn = conn
	m.started = m.clock.Now()
	m.sessions++

	ev := m.log.Debug().Str("session", m.id)
	if conn != nil {
		ev = ev.Str("remote", conn.RemoteAddr().String())
	}
	ev.Msg("session accepted")
	return m.id, nil
}

// Route records that the request was dispatched.
func (m *Machine) Route(method, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.advance("route", StateAccepted, StateRouted); err != nil {
		return err
	}
	m.log.Debug().Str("session", m.id).Str("method", method).Str("path", path).Msg("routed")
	return nil
}

// Handle records that a handler started.
func (m *Machine) Handle() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advance("handle", StateRouted, StateHandling)
}

// Respond records the first response byte.
func (m *Machine) Respond() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advance("respond", StateHandling, StateResponding)
}

// Close ends the session. A connection may close from any active state.
func (m *Machine) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.state {
	case StateAccepted, StateRouted, StateHandling, StateResponding:
	default:
		return m.reject("close")
	}
	from := m.state
	m.state = StateClosed
	m.conn = nil
	m.log.Debug().
		Str("session", m.id).
		Str("from", from.String()).
		Dur("elapsed", m.clock.Since(m.started)).
		Msg("session closed")
	return nil
}

func (m *Machine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// ID returns the current or most recent session id.
func (m *Machine) ID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.id
}

// Conn returns the raw connection of the active session, or nil.
func (m *Machine) Conn() net.Conn {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.conn
}

// Sessions returns how many sessions have been accepted.
func (m *Machine) Sessions() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}

func (m *Machine) advance(event string, from, to State) error {
	if m.state != from {
		return m.reject(event)
	}
	m.state = to
	return nil
}

func (m *Machine) reject(event string) error {
	err := fmt.Errorf("%w: %s in state %s", ErrInvalidTransition, event, m.state)
	m.log.Warn().Err(err).Str("session", m.id).Msg("session state violation")
	return err
}
