// Package sysinfo reports static facts about the host.
package sysinfo

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

// Provider collects host facts. Every call reads fresh values; nothing here
// touches the metrics cache.
type Provider struct {
	hostInfo  func(ctx context.Context) (*host.InfoStat, error)
	cpuInfo   func(ctx context.Context) ([]cpu.InfoStat, error)
	cpuCounts func(ctx context.Context, logical bool) (int, error)
	readVM    func(ctx context.Context) (*mem.VirtualMemoryStat, error)
}

// NewProvider returns a provider backed by gopsutil.
func NewProvider() *Provider {
	return &Provider{
		hostInfo:  host.InfoWithContext,
		cpuInfo:   cpu.InfoWithContext,
		cpuCounts: cpu.CountsWithContext,
		readVM:    mem.VirtualMemoryWithContext,
	}
}

// Collect gathers platform, hardware and uptime details. Partial probe
// failures leave their fields zeroed; only a failed host lookup is an error.
func (p *Provider) Collect(ctx context.Context) (models.SystemInfo, error) {
	hostStat, err := p.hostInfo(ctx)
	if err != nil {
		return models.SystemInfo{}, fmt.Errorf("host info: %w", err)
	}

	info := models.SystemInfo{
		Hostname:      hostStat.Hostname,
		Platform:      hostStat.Platform,
		Arch:          runtime.GOARCH,
		UptimeSeconds: hostStat.Uptime,
	}
	if info.Platform == "" {
		info.Platform = hostStat.OS
	}

	if cores, err := p.cpuCounts(ctx, true); err == nil {
		info.CPUCores = cores
	}
	if stats, err := p.cpuInfo(ctx); err == nil && len(stats) > 0 {
		info.CPUModel = stats[0].ModelName
	}
	if vm, err := p.readVM(ctx); err == nil && vm != nil {
		info.MemoryTotalGB = math.Round(float64(vm.Total)/(1<<30)*100) / 100
	}
	return info, nil
}
