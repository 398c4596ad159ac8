package sysinfo

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestProvider() *Provider {
	return &Provider{
		hostInfo: func(context.Context) (*host.InfoStat, error) {
			return &host.InfoStat{
				Hostname: "box",
				Platform: "ubuntu",
				OS:       "linux",
				Uptime:   4242,
			}, nil
		},
		cpuInfo: func(context.Context) ([]cpu.InfoStat, error) {
			return []cpu.InfoStat{{ModelName: "Ryzen 7 5800X"}}, nil
		},
		cpuCounts: func(context.Context, bool) (int, error) {
			return 16, nil
		},
		readVM: func(context.Context) (*mem.VirtualMemoryStat, error) {
			return &mem.VirtualMemoryStat{Total: 32 << 30}, nil
		},
	}
}

func TestCollectGathersHostFacts(t *testing.T) {
	info, err := newTestProvider().Collect(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "box", info.Hostname)
	assert.Equal(t, "ubuntu", info.Platform)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Equal(t, "Ryzen 7 5800X", info.CPUModel)
	assert.Equal(t, 16, info.CPUCores)
	assert.Equal(t, 32.0, info.MemoryTotalGB)
	assert.Equal(t, uint64(4242), info.UptimeSeconds)
}

func TestCollectFallsBackToOSName(t *testing.T) {
	p := newTestProvider()
	p.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{Hostname: "box", OS: "linux"}, nil
	}

	info, err := p.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "linux", info.Platform)
}

func TestCollectToleratesPartialProbeFailures(t *testing.T) {
	probeErr := errors.New("probe failed")
	p := newTestProvider()
	p.cpuInfo = func(context.Context) ([]cpu.InfoStat, error) { return nil, probeErr }
	p.cpuCounts = func(context.Context, bool) (int, error) { return 0, probeErr }
	p.readVM = func(context.Context) (*mem.VirtualMemoryStat, error) { return nil, probeErr }

	info, err := p.Collect(context.Background())
	require.NoError(t, err, "only the host lookup is fatal")
	assert.Equal(t, "box", info.Hostname)
	assert.Empty(t, info.CPUModel)
	assert.Zero(t, info.CPUCores)
	assert.Zero(t, info.MemoryTotalGB)
}

func TestCollectSurfacesHostLookupFailure(t *testing.T) {
	p := newTestProvider()
	p.hostInfo = func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("host probe failed")
	}

	_, err := p.Collect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "host info")
}

func TestNewProviderUsesLiveProbes(t *testing.T) {
	p := NewProvider()
	assert.NotNil(t, p.hostInfo)
	assert.NotNil(t, p.cpuInfo)
	assert.NotNil(t, p.cpuCounts)
	assert.NotNil(t, p.readVM)
}
