package status

import (
	"context"
	"errors"
	"testing"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests swap package-level readers and must not run in parallel.

func TestSystemProbe_AvailableMemory(t *testing.T) {
	orig := virtualMemory
	t.Cleanup(func() { virtualMemory = orig })

	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 4096, Available: 1024}, nil
	}
	got, err := SystemProbe{}.AvailableMemory(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1024), got)

	virtualMemory = func(context.Context) (*mem.VirtualMemoryStat, error) {
		return nil, errors.New("boom")
	}
	_, err = SystemProbe{}.AvailableMemory(context.Background())
	require.Error(t, err)
}

func TestSystemProbe_CPUFrequency(t *testing.T) {
	orig := cpuInfo
	t.Cleanup(func() { cpuInfo = orig })

	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) {
		return []cpu.InfoStat{{Mhz: 0}, {Mhz: 239.6}}, nil
	}
	got, err := SystemProbe{}.CPUFrequencyMHz(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 240, got)

	cpuInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, nil }
	_, err = SystemProbe{}.CPUFrequencyMHz(context.Background())
	require.Error(t, err)
}

func TestSystemProbe_TCPRetransmits(t *testing.T) {
	orig := protoCounters
	t.Cleanup(func() { protoCounters = orig })

	protoCounters = func(context.Context, []string) ([]psnet.ProtoCountersStat, error) {
		return []psnet.ProtoCountersStat{{Protocol: "tcp", Stats: map[string]int64{"RetransSegs": 12}}}, nil
	}
	n, ok := SystemProbe{}.TCPRetransmits(context.Background())
	assert.True(t, ok)
	assert.Equal(t, uint64(12), n)

	protoCounters = func(context.Context, []string) ([]psnet.ProtoCountersStat, error) {
		return []psnet.ProtoCountersStat{{Protocol: "tcp", Stats: map[string]int64{}}}, nil
	}
	_, ok = SystemProbe{}.TCPRetransmits(context.Background())
	assert.False(t, ok)

	protoCounters = func(context.Context, []string) ([]psnet.ProtoCountersStat, error) {
		return nil, errors.New("not implemented yet")
	}
	_, ok = SystemProbe{}.TCPRetransmits(context.Background())
	assert.False(t, ok)
}

func TestSystemProbe_InterfaceAddrMissing(t *testing.T) {
	_, _, err := SystemProbe{}.InterfaceAddr("apdiag-does-not-exist0")
	require.Error(t, err)
}
