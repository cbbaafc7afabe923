package status

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	psnet "github.com/shirou/gopsutil/v3/net"
)

// ErrNoIPv4 is returned when the interface carries no IPv4 address.
var ErrNoIPv4 = errors.New("no ipv4 address")

// HostProbe reads host-level counters. Every method reads live values.
type HostProbe interface {
	AvailableMemory(ctx context.Context) (uint64, error)
	CPUFrequencyMHz(ctx context.Context) (int, error)
	// TCPRetransmits reports cumulative retransmitted TCP segments; ok is
	// false when the host does not expose the counter.
	TCPRetransmits(ctx context.Context) (n uint64, ok bool)
	InterfaceAddr(name string) (ip net.IP, mac net.HardwareAddr, err error)
}

var (
	virtualMemory   = mem.VirtualMemoryWithContext
	cpuInfo         = cpu.InfoWithContext
	protoCounters   = psnet.ProtoCountersWithContext
	interfaceByName = net.InterfaceByName
)

// SystemProbe implements HostProbe with gopsutil and the net package.
type SystemProbe struct{}

func (SystemProbe) AvailableMemory(ctx context.Context) (uint64, error) {
	vm, err := virtualMemory(ctx)
	if err != nil {
		return 0, fmt.Errorf("virtual memory: %w", err)
	}
	return vm.Available, nil
}

// CPUFrequencyMHz reports the clock of the first logical CPU.
func (SystemProbe) CPUFrequencyMHz(ctx context.Context) (int, error) {
	infos, err := cpuInfo(ctx)
	if err != nil {
		return 0, fmt.Errorf("cpu info: %w", err)
	}
	for _, info := range infos {
		if info.Mhz > 0 {
			return int(math.Round(info.Mhz)), nil
		}
	}
	return 0, errors.New("cpu frequency unavailable")
}

func (SystemProbe) TCPRetransmits(ctx context.Context) (uint64, bool) {
	counters, err := protoCounters(ctx, []string{"tcp"})
	if err != nil {
		return 0, false
	}
	for _, c := range counters {
		if c.Protocol != "tcp" {
			continue
		}
		v, ok := c.Stats["RetransSegs"]
		if !ok || v < 0 {
			return 0, false
		}
		return uint64(v), true
	}
	return 0, false
}

func (SystemProbe) InterfaceAddr(name string) (net.IP, net.HardwareAddr, error) {
	iface, err := interfaceByName(name)
	if err != nil {
		return nil, nil, err
	}
	addrs, err := iface.Addrs()
	if err != nil {
		return nil, iface.HardwareAddr, err
	}
	for _, a := range addrs {
		ipnet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		if v4 := ipnet.IP.To4(); v4 != nil {
			return v4, iface.HardwareAddr, nil
		}
	}
	return nil, iface.HardwareAddr, ErrNoIPv4
}
