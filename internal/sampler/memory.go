package sampler

import (
	"context"
	"fmt"
	"math"

	"github.com/shirou/gopsutil/v4/mem"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

const bytesPerGB = 1 << 30

// VMReader returns host virtual memory counters. Swapped out in tests.
type VMReader func(ctx context.Context) (*mem.VirtualMemoryStat, error)

// MemoryReader converts host memory counters into rounded gigabyte figures.
type MemoryReader struct {
	readVM VMReader
}

// NewMemoryReader returns a reader backed by gopsutil.
func NewMemoryReader() *MemoryReader {
	return &MemoryReader{readVM: mem.VirtualMemoryWithContext}
}

// Read reports total, used and free gigabytes rounded to two decimals.
// Used is derived from the already-rounded total and free so the three
// figures stay consistent on the wire: used + free always equals total.
func (r *MemoryReader) Read(ctx context.Context) (models.MemoryUsage, error) {
	vm, err := r.readVM(ctx)
	if err != nil {
		return models.MemoryUsage{}, fmt.Errorf("read virtual memory: %w", err)
	}
	if vm == nil {
		return models.MemoryUsage{}, nil
	}

	totalGB := roundTwo(float64(vm.Total) / bytesPerGB)
	if totalGB == 0 {
		// a total of a few megabytes rounds to zero; report an empty
		// reading rather than divide by it
		return models.MemoryUsage{}, nil
	}
	freeGB := roundTwo(float64(vm.Free) / bytesPerGB)
	usedGB := roundTwo(totalGB - freeGB)

	return models.MemoryUsage{
		TotalGB:     totalGB,
		UsedGB:      usedGB,
		FreeGB:      freeGB,
		UsedPercent: int(math.Round(usedGB / totalGB * 100)),
	}, nil
}

func roundTwo(v float64) float64 {
	return math.Round(v*100) / 100
}
