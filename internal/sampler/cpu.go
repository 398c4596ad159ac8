// Package sampler reads instantaneous CPU and memory figures from the host.
package sampler

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
)

// DefaultSampleInterval separates the two tick snapshots of one CPU sample.
const DefaultSampleInterval = time.Second

// TickReader returns the aggregate CPU tick counters. Swapped out in tests.
type TickReader func(ctx context.Context) ([]cpu.TimesStat, error)

// CPUSampler measures CPU utilization from the tick deltas across its
// sampling interval.
type CPUSampler struct {
	interval  time.Duration
	readTicks TickReader
}

// NewCPUSampler returns a sampler with the given interval between snapshots.
// Non-positive intervals fall back to DefaultSampleInterval.
func NewCPUSampler(interval time.Duration) *CPUSampler {
	if interval <= 0 {
		interval = DefaultSampleInterval
	}
	return &CPUSampler{
		interval: interval,
		readTicks: func(ctx context.Context) ([]cpu.TimesStat, error) {
			return cpu.TimesWithContext(ctx, false)
		},
	}
}

// Sample blocks for the sampling interval and returns the busy percentage
// across it, clamped to [0,100]. An interval with no tick movement reports 0
// rather than an error; only a failed tick read surfaces.
func (s *CPUSampler) Sample(ctx context.Context) (float64, error) {
	first, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	timer := time.NewTimer(s.interval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return 0, ctx.Err()
	case <-timer.C:
	}

	second, err := s.snapshot(ctx)
	if err != nil {
		return 0, err
	}

	idleDelta := second.Idle - first.Idle
	totalDelta := cpuTotal(second) - cpuTotal(first)
	if totalDelta <= 0 {
		return 0, nil
	}
	percent := 100 - math.Floor(100*idleDelta/totalDelta)
	return clampFloat(percent, 0, 100), nil
}

func (s *CPUSampler) snapshot(ctx context.Context) (cpu.TimesStat, error) {
	stats, err := s.readTicks(ctx)
	if err != nil {
		return cpu.TimesStat{}, fmt.Errorf("read cpu ticks: %w", err)
	}
	if len(stats) == 0 {
		return cpu.TimesStat{}, errors.New("no aggregate cpu ticks reported")
	}
	return stats[0], nil
}

func cpuTotal(stat cpu.TimesStat) float64 {
	return stat.User + stat.System + stat.Nice + stat.Idle + stat.Iowait +
		stat.Irq + stat.Softirq + stat.Steal + stat.Guest + stat.GuestNice
}

func clampFloat(val, min, max float64) float64 {
	if math.IsNaN(val) {
		return min
	}
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}
