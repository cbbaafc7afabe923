package radio

import (
	"context"
	"fmt"

	"apdiag/internal/execx"
)

// IW implements the radio interfaces on top of the iw(8) tool.
type IW struct {
	runner    execx.Runner
	streamer  execx.Streamer
	apIface   string
	scanIface string
}

// NewIW builds an iw-backed radio. scanIface may equal apIface when the
// radio runs in pure AP mode.
func NewIW(r execx.Runner, s execx.Streamer, apIface, scanIface string) *IW {
	if r == nil || s == nil {
		osr := execx.NewOSRunner()
		if r == nil {
			r = osr
		}
		if s == nil {
			s = osr
		}
	}
	if scanIface == "" {
		scanIface = apIface
	}
	return &IW{runner: r, streamer: s, apIface: apIface, scanIface: scanIface}
}

// Scan runs a blocking scan on the scan interface.
func (w *IW) Scan(ctx context.Context) (*ScanBuffer, error) {
	out, err := w.runner.Output(ctx, "iw", "dev", w.scanIface, "scan")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", w.scanIface, err)
	}
	return NewScanBuffer(ParseScan(out), nil), nil
}

// Stations lists peers associated with the AP interface.
func (w *IW) Stations(ctx context.Context) ([]Station, error) {
	out, err := w.runner.Output(ctx, "iw", "dev", w.apIface, "station", "dump")
	if err != nil {
		return nil, fmt.Errorf("station dump %s: %w", w.apIface, err)
	}
	return ParseStationDump(out), nil
}

// Info reads the AP interface address and transmit power.
func (w *IW) Info(ctx context.Context) (Info, error) {
	out, err := w.runner.Output(ctx, "iw", "dev", w.apIface, "info")
	if err != nil {
		return Info{}, fmt.Errorf("info %s: %w", w.apIface, err)
	}
	return ParseInfo(out), nil
}

// Events follows `iw event` and reports notifications for the AP and scan
// interfaces only.
func (w *IW) Events(ctx context.Context, handle func(Event)) error {
	return w.streamer.Stream(ctx, func(line string) {
		ev, ok := ParseEvent(line)
		if !ok {
			return
		}
		if ev.Interface != w.apIface && ev.Interface != w.scanIface {
			return
		}
		handle(ev)
	}, "iw", "event")
}

var (
	_ Scanner       = (*IW)(nil)
	_ StationLister = (*IW)(nil)
	_ InfoReader    = (*IW)(nil)
	_ EventSource   = (*IW)(nil)
)
