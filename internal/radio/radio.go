// Package radio exposes the platform wireless primitives the diagnostic
// core consumes: scan snapshots, the association table, interface info and
// link-state events.
package radio

//go:generate mockgen -destination=mock_radio.go -package=radio apdiag/internal/radio Scanner,StationLister,InfoReader

import (
	"context"
	"net"
)

// AuthMode is the platform's view of a network's security configuration.
type AuthMode uint8

const (
	AuthOpen AuthMode = iota
	AuthWEP
	AuthWPAPSK
	AuthWPA2PSK
	AuthWPAWPA2PSK
	AuthWPA2Enterprise
	AuthWPA3PSK
	AuthWPA2WPA3PSK
	AuthOWE
	// AuthUnrecognized marks suites the parser could not classify.
	AuthUnrecognized AuthMode = 0xff
)

// BSS is one access point seen during a scan.
type BSS struct {
	SSID    string
	BSSID   net.HardwareAddr
	RSSI    int
	Channel int
	Auth    AuthMode
}

// Station is one peer associated with the local access point.
type Station struct {
	MAC  net.HardwareAddr
	RSSI int
}

// Info describes the local radio interface.
type Info struct {
	MAC net.HardwareAddr
	// TxPowerQuarterDBm is the configured transmit power in 0.25 dBm units.
	TxPowerQuarterDBm int
	HasTxPower        bool
}

// ScanBuffer holds the results of one scan until Release is called.
type ScanBuffer struct {
	entries []BSS
	release func()
}

// NewScanBuffer wraps scan entries; release runs when the buffer is freed.
func NewScanBuffer(entries []BSS, release func()) *ScanBuffer {
	return &ScanBuffer{entries: entries, release: release}
}

func (b *ScanBuffer) Len() int {
	return len(b.entries)
}

func (b *ScanBuffer) At(i int) BSS {
	return b.entries[i]
}

// Release drops the entries and runs the platform release hook. Callers
// own the buffer and must release it exactly once.
func (b *ScanBuffer) Release() {
	b.entries = nil
	if b.release != nil {
		b.release()
	}
}

// Scanner performs a blocking scan. It does not return until the scan is
// complete.
type Scanner interface {
	Scan(ctx context.Context) (*ScanBuffer, error)
}

// StationLister reports the current association table.
type StationLister interface {
	Stations(ctx context.Context) ([]Station, error)
}

// InfoReader reads the local interface configuration.
type InfoReader interface {
	Info(ctx context.Context) (Info, error)
}

// EventKind classifies a link-state notification.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventStationConnected
	EventStationDisconnected
	EventConnected
	EventDisconnected
)

func (k EventKind) String() string {
	switch k {
	case EventStationConnected:
		return "station_connected"
	case EventStationDisconnected:
		return "station_disconnected"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	default:
		return "unknown"
	}
}

// Disconnect reports whether the event is disconnect-class: an AP-side
// peer leaving or the station side losing its link.
func (k EventKind) Disconnect() bool {
	return k == EventStationDisconnected || k == EventDisconnected
}

// Event is a single link-state notification.
type Event struct {
	Kind      EventKind
	Interface string
	Peer      string
}

// EventSource delivers link-state notifications to handle until ctx is
// done or the source fails. handle runs on the source's goroutine.
type EventSource interface {
	Events(ctx context.Context, handle func(Event)) error
}
