package status

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"apdiag/internal/linkmon"
	"apdiag/internal/logger"
	"apdiag/internal/radio"
	"apdiag/internal/timeutil"
)

type fakeHost struct {
	ip      net.IP
	mac     net.HardwareAddr
	addrErr error
	heap    uint64
	mhz     int
	rexmit  uint64
	hasRex  bool
}

func (f *fakeHost) AvailableMemory(context.Context) (uint64, error) { return f.heap, nil }
func (f *fakeHost) CPUFrequencyMHz(context.Context) (int, error)    { return f.mhz, nil }
func (f *fakeHost) TCPRetransmits(context.Context) (uint64, bool)   { return f.rexmit, f.hasRex }
func (f *fakeHost) InterfaceAddr(string) (net.IP, net.HardwareAddr, error) {
	return f.ip, f.mac, f.addrErr
}

func newTestAggregator(t *testing.T, host HostProbe, info radio.InfoReader) (*Aggregator, *timeutil.MockClock, *linkmon.Counter) {
	t.Helper()
	clock := timeutil.NewMockClock(time.Unix(1700000000, 0))
	counter := &linkmon.Counter{}
	agg := NewAggregator("wlan0", info, host, timeutil.NewUptime(clock), counter, logger.Nop())
	return agg, clock, counter
}

func TestSnapshot_Fields(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	info := radio.NewMockInfoReader(ctrl)
	info.EXPECT().Info(gomock.Any()).Return(radio.Info{
		MAC:               net.HardwareAddr{0x24, 0x6f, 0x28, 0xaa, 0xbb, 0xcc},
		TxPowerQuarterDBm: 78,
		HasTxPower:        true,
	}, nil)

	host := &fakeHost{ip: net.IPv4(192, 168, 4, 1), heap: 180000, mhz: 240, rexmit: 3, hasRex: true}
	agg, clock, counter := newTestAggregator(t, host, info)
	clock.Advance(90*time.Second + 500*time.Millisecond)
	counter.Inc()

	snap := agg.Snapshot(context.Background())
	assert.Equal(t, "192.168.4.1", snap.IP)
	assert.Equal(t, "24:6F:28:AA:BB:CC", snap.MAC)
	assert.Equal(t, int64(90), snap.Uptime)
	assert.Equal(t, uint64(180000), snap.Heap)
	assert.InDelta(t, 19.5, snap.TxPower, 1e-9)
	assert.Equal(t, 240, snap.CPUFreq)
	require.NotNil(t, snap.TCPRexmit)
	assert.Equal(t, uint64(3), *snap.TCPRexmit)
	assert.Equal(t, uint32(1), snap.Disconnects)

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ip":"192.168.4.1","mac":"24:6F:28:AA:BB:CC","uptime":90,"heap":180000,`+
		`"tx_power":19.5,"cpu_freq":240,"tcp_rexmit":3,"disconnects":1}`, string(data))
}

func TestSnapshot_OmitsRetransmitsWhenUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	info := radio.NewMockInfoReader(ctrl)
	info.EXPECT().Info(gomock.Any()).Return(radio.Info{}, nil)

	agg, _, _ := newTestAggregator(t, &fakeHost{ip: net.IPv4(192, 168, 4, 1)}, info)
	snap := agg.Snapshot(context.Background())
	assert.Nil(t, snap.TCPRexmit)

	data, err := json.Marshal(snap)
	require.NoError(t, err)

	var keys map[string]any
	require.NoError(t, json.Unmarshal(data, &keys))
	assert.NotContains(t, keys, "tcp_rexmit")
	for _, k := range []string{"ip", "mac", "uptime", "heap", "tx_power", "cpu_freq", "disconnects"} {
		assert.Contains(t, keys, k)
	}
}

func TestSnapshot_DisconnectsTrackCounter(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	info := radio.NewMockInfoReader(ctrl)
	info.EXPECT().Info(gomock.Any()).Return(radio.Info{}, nil).AnyTimes()

	agg, _, counter := newTestAggregator(t, &fakeHost{}, info)
	assert.Equal(t, uint32(0), agg.Snapshot(context.Background()).Disconnects)

	for i := 0; i < 7; i++ {
		counter.Inc()
	}
	assert.Equal(t, uint32(7), agg.Snapshot(context.Background()).Disconnects)
}

func TestSnapshot_RepeatedReadsAreStable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	info := radio.NewMockInfoReader(ctrl)
	info.EXPECT().Info(gomock.Any()).Return(radio.Info{TxPowerQuarterDBm: 80, HasTxPower: true}, nil).Times(2)

	host := &fakeHost{ip: net.IPv4(192, 168, 4, 1), heap: 1024, mhz: 160}
	agg, _, _ := newTestAggregator(t, host, info)

	first := agg.Snapshot(context.Background())
	second := agg.Snapshot(context.Background())
	assert.Equal(t, first, second)
}

func TestSnapshot_DegradesOnErrors(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	info := radio.NewMockInfoReader(ctrl)
	info.EXPECT().Info(gomock.Any()).Return(radio.Info{}, errors.New("iw: no such device"))

	host := &fakeHost{
		mac:     net.HardwareAddr{0x02, 0, 0, 0, 0, 0x01},
		addrErr: ErrNoIPv4,
	}
	agg, _, _ := newTestAggregator(t, host, info)

	snap := agg.Snapshot(context.Background())
	assert.Equal(t, "0.0.0.0", snap.IP)
	assert.Equal(t, "02:00:00:00:00:01", snap.MAC)
	assert.Zero(t, snap.TxPower)
}
