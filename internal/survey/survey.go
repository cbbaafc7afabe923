// Package survey turns a blocking radio scan into the normalized network
// list served by /api/scan.
package survey

import (
	"context"

	"github.com/rs/zerolog"

	"apdiag/internal/model"
	"apdiag/internal/radio"
)

// AuthName maps a platform security mode onto the fixed wire vocabulary.
// Anything outside the known set is "Unknown".
func AuthName(mode radio.AuthMode) string {
	switch mode {
	case radio.AuthOpen:
		return "Open"
	case radio.AuthWEP:
		return "WEP"
	case radio.AuthWPAPSK:
		return "WPA_PSK"
	case radio.AuthWPA2PSK:
		return "WPA2_PSK"
	case radio.AuthWPAWPA2PSK:
		return "WPA_WPA2_PSK"
	case radio.AuthWPA2Enterprise:
		return "WPA2_ENTERPRISE"
	case radio.AuthWPA3PSK:
		return "WPA3_PSK"
	default:
		return "Unknown"
	}
}

// Adapter runs surveys against a Scanner.
type Adapter struct {
	scanner radio.Scanner
	log     zerolog.Logger
}

func NewAdapter(scanner radio.Scanner, log zerolog.Logger) *Adapter {
	return &Adapter{scanner: scanner, log: log}
}

// Networks blocks until the scan completes and returns its records in scan
// order. A failed scan yields an empty, non-nil list. The scan buffer is
// released exactly once.
func (a *Adapter) Networks(ctx context.Context) []model.NetworkRecord {
	buf, err := a.scanner.Scan(ctx)
	if err != nil {
		a.log.Warn().Err(err).Msg("scan failed")
		return []model.NetworkRecord{}
	}
	if buf == nil {
		return []model.NetworkRecord{}
	}
	defer buf.Release()

	records := make([]model.NetworkRecord, 0, buf.Len())
	for i := 0; i < buf.Len(); i++ {
		bss := buf.At(i)
		records = append(records, model.NetworkRecord{
			SSID:    bss.SSID,
			RSSI:    bss.RSSI,
			Channel: bss.Channel,
			Auth:    AuthName(bss.Auth),
		})
	}
	a.log.Debug().Int("networks", len(records)).Msg("scan complete")
	return records
}
