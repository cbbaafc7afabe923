// Package status aggregates the live health snapshot served by /api/status.
package status

import (
	"context"

	"github.com/rs/zerolog"

	"apdiag/internal/linkmon"
	"apdiag/internal/model"
	"apdiag/internal/radio"
	"apdiag/internal/roster"
	"apdiag/internal/timeutil"
)

const unknownIP = "0.0.0.0"

// Aggregator builds a fresh StatusSnapshot on every call. Nothing is cached.
type Aggregator struct {
	iface   string
	radio   radio.InfoReader
	host    HostProbe
	uptime  *timeutil.Uptime
	counter *linkmon.Counter
	log     zerolog.Logger
}

// NewAggregator reads addressing for iface, radio settings from info and
// host counters from host.
func NewAggregator(iface string, info radio.InfoReader, host HostProbe, uptime *timeutil.Uptime, counter *linkmon.Counter, log zerolog.Logger) *Aggregator {
	if host == nil {
		host = SystemProbe{}
	}
	return &Aggregator{
		iface:   iface,
		radio:   info,
		host:    host,
		uptime:  uptime,
		counter: counter,
		log:     log,
	}
}

// Snapshot reads every value now. Readings that fail degrade to zero values;
// the retransmit counter is left nil when the host does not expose it.
func (a *Aggregator) Snapshot(ctx context.Context) model.StatusSnapshot {
	snap := model.StatusSnapshot{
		IP:          unknownIP,
		Uptime:      a.uptime.Seconds(),
		Disconnects: a.counter.Load(),
	}

	ip, hw, err := a.host.InterfaceAddr(a.iface)
	if err != nil {
		a.log.Warn().Err(err).Str("iface", a.iface).Msg("interface address unavailable")
	}
	if ip != nil {
		snap.IP = ip.String()
	}

	if a.radio != nil {
		info, err := a.radio.Info(ctx)
		if err != nil {
			a.log.Warn().Err(err).Msg("radio info unavailable")
		} else {
			if len(info.MAC) > 0 {
				hw = info.MAC
			}
			if info.HasTxPower {
				snap.TxPower = float64(info.TxPowerQuarterDBm) * 0.25
			}
		}
	}
	snap.MAC = roster.FormatMAC(hw)

	if heap, err := a.host.AvailableMemory(ctx); err != nil {
		a.log.Warn().Err(err).Msg("memory reading unavailable")
	} else {
		snap.Heap = heap
	}

	if mhz, err := a.host.CPUFrequencyMHz(ctx); err != nil {
		a.log.Debug().Err(err).Msg("cpu frequency unavailable")
	} else {
		snap.CPUFreq = mhz
	}

	if n, ok := a.host.TCPRetransmits(ctx); ok {
		snap.TCPRexmit = &n
	}

	return snap
}
