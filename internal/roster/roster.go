// Package roster reports the peers currently associated with the access
// point.
package roster

import (
	"context"
	"fmt"
	"net"

	"github.com/rs/zerolog"

	"apdiag/internal/model"
	"apdiag/internal/radio"
)

// FormatMAC renders a hardware address as uppercase colon-separated hex,
// e.g. AA:BB:CC:00:11:22. Short or missing addresses are zero-padded to
// six bytes.
func FormatMAC(mac net.HardwareAddr) string {
	var b [6]byte
	copy(b[:], mac)
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", b[0], b[1], b[2], b[3], b[4], b[5])
}

// Adapter reads the association table from a StationLister.
type Adapter struct {
	lister radio.StationLister
	log    zerolog.Logger
}

func NewAdapter(lister radio.StationLister, log zerolog.Logger) *Adapter {
	return &Adapter{lister: lister, log: log}
}

// Clients returns the associated peers in platform order. Failures and an
// empty table both yield an empty, non-nil list.
func (a *Adapter) Clients(ctx context.Context) []model.ClientRecord {
	stations, err := a.lister.Stations(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("station list failed")
		return []model.ClientRecord{}
	}

	records := make([]model.ClientRecord, 0, len(stations))
	for _, st := range stations {
		records = append(records, model.ClientRecord{
			MAC:  FormatMAC(st.MAC),
			RSSI: st.RSSI,
		})
	}
	return records
}
