// Package cache holds the one shared metrics record every reader sees.
//
// Reads are served from the cached snapshot while it is fresh. Stale reads
// trigger a full refresh, and concurrent triggers collapse into a single
// in-flight refresh, so at most one sampling pass runs at any instant. A
// background warmer keeps the record fresh between requests.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/juanmmendes/monitor-sistema/internal/models"
	"github.com/juanmmendes/monitor-sistema/internal/telemetry"
)

// Default cache tuning. Usage turns stale faster than the process table,
// and the warmer tick sits between the two so steady-state reads stay on
// the fresh path.
const (
	DefaultUsageTTL        = 3 * time.Second
	DefaultProcessTTL      = 5 * time.Second
	DefaultRefreshInterval = 4 * time.Second
)

// refreshKey collapses concurrent refresh triggers into one flight.
const refreshKey = "refresh"

// CPUSampler measures CPU utilization across its sampling interval.
type CPUSampler interface {
	Sample(ctx context.Context) (float64, error)
}

// MemoryReader reports current memory usage.
type MemoryReader interface {
	Read(ctx context.Context) (models.MemoryUsage, error)
}

// ProcessCollector assembles the process snapshot. It never fails; a broken
// listing degrades to synthetic records inside the collector.
type ProcessCollector interface {
	Collect(ctx context.Context) []models.ProcessRecord
}

// Options tune a MetricsCache.
type Options struct {
	UsageTTL        time.Duration
	ProcessTTL      time.Duration
	RefreshInterval time.Duration
	Logger          zerolog.Logger
	Metrics         *telemetry.Metrics
	// OnRefresh runs after every successful refresh with the new usage
	// snapshot. The websocket hub hangs off this.
	OnRefresh func(models.UsageSnapshot)
}

// MetricsCache is the shared metrics record.
type MetricsCache struct {
	cpu    CPUSampler
	memory MemoryReader
	procs  ProcessCollector

	usageTTL        time.Duration
	processTTL      time.Duration
	refreshInterval time.Duration

	log       zerolog.Logger
	metrics   *telemetry.Metrics
	onRefresh func(models.UsageSnapshot)

	group singleflight.Group

	mu         sync.RWMutex
	usage      models.UsageSnapshot
	processes  []models.ProcessRecord
	lastUpdate time.Time

	stopMu sync.Mutex
	stopCh chan struct{}
	wg     sync.WaitGroup

	now func() time.Time
}

// New builds a cache over the three collectors. Zero options fall back to
// the defaults above.
func New(cpu CPUSampler, memory MemoryReader, procs ProcessCollector, opts Options) *MetricsCache {
	if opts.UsageTTL <= 0 {
		opts.UsageTTL = DefaultUsageTTL
	}
	if opts.ProcessTTL <= 0 {
		opts.ProcessTTL = DefaultProcessTTL
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = DefaultRefreshInterval
	}
	return &MetricsCache{
		cpu:             cpu,
		memory:          memory,
		procs:           procs,
		usageTTL:        opts.UsageTTL,
		processTTL:      opts.ProcessTTL,
		refreshInterval: opts.RefreshInterval,
		log:             opts.Logger,
		metrics:         opts.Metrics,
		onRefresh:       opts.OnRefresh,
		now:             time.Now,
	}
}

// Usage returns the cached usage snapshot, refreshing first when it has gone
// stale. A failed refresh falls back to the previous snapshot; only a cold
// cache surfaces the error.
func (c *MetricsCache) Usage(ctx context.Context) (models.UsageSnapshot, error) {
	c.mu.RLock()
	usage := c.usage
	last := c.lastUpdate
	c.mu.RUnlock()

	if !last.IsZero() && c.now().Sub(last) < c.usageTTL {
		c.metrics.CacheRead("usage", true)
		return usage, nil
	}
	c.metrics.CacheRead("usage", false)

	if err := c.refresh(ctx); err != nil {
		if last.IsZero() {
			return models.UsageSnapshot{}, err
		}
		return usage, nil
	}

	c.mu.RLock()
	usage = c.usage
	c.mu.RUnlock()
	return usage, nil
}

// Processes returns a copy of the cached process snapshot, refreshing first
// when it has gone stale. Failure semantics match Usage.
func (c *MetricsCache) Processes(ctx context.Context) ([]models.ProcessRecord, error) {
	c.mu.RLock()
	procs := copyRecords(c.processes)
	last := c.lastUpdate
	c.mu.RUnlock()

	if !last.IsZero() && c.now().Sub(last) < c.processTTL {
		c.metrics.CacheRead("processes", true)
		return procs, nil
	}
	c.metrics.CacheRead("processes", false)

	if err := c.refresh(ctx); err != nil {
		if last.IsZero() {
			return nil, err
		}
		return procs, nil
	}

	c.mu.RLock()
	procs = copyRecords(c.processes)
	c.mu.RUnlock()
	return procs, nil
}

// LastUpdate reports when the record was last replaced. Zero means the cache
// has never been primed.
func (c *MetricsCache) LastUpdate() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastUpdate
}

// Refresh forces a full refresh regardless of the TTLs. Concurrent callers
// share one in-flight refresh.
func (c *MetricsCache) Refresh(ctx context.Context) error {
	return c.refresh(ctx)
}

func (c *MetricsCache) refresh(ctx context.Context) error {
	_, err, _ := c.group.Do(refreshKey, func() (any, error) {
		return nil, c.doRefresh(ctx)
	})
	return err
}

// doRefresh runs one full sampling pass and swaps the record wholesale.
// The CPU sampler and process collector run concurrently since the sampler
// spends its time sleeping between tick snapshots; the memory read is a
// single cheap call and stays on this goroutine.
func (c *MetricsCache) doRefresh(ctx context.Context) error {
	started := time.Now()

	var (
		cpuPercent float64
		processes  []models.ProcessRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pct, err := c.cpu.Sample(gctx)
		if err != nil {
			return fmt.Errorf("cpu sample: %w", err)
		}
		cpuPercent = pct
		return nil
	})
	g.Go(func() error {
		processes = c.procs.Collect(gctx)
		return nil
	})

	memory, memErr := c.memory.Read(ctx)

	if err := g.Wait(); err != nil {
		return c.failRefresh(err)
	}
	if memErr != nil {
		return c.failRefresh(fmt.Errorf("memory read: %w", memErr))
	}

	now := c.now()
	snapshot := models.UsageSnapshot{
		CPUPercent:        cpuPercent,
		MemoryTotalGB:     memory.TotalGB,
		MemoryUsedGB:      memory.UsedGB,
		MemoryFreeGB:      memory.FreeGB,
		MemoryUsedPercent: memory.UsedPercent,
		SampledAt:         now,
	}

	c.mu.Lock()
	c.usage = snapshot
	c.processes = processes
	c.lastUpdate = now
	c.mu.Unlock()

	c.metrics.RefreshSucceeded(time.Since(started))
	if c.onRefresh != nil {
		c.onRefresh(snapshot)
	}
	return nil
}

// failRefresh leaves the previous record untouched.
func (c *MetricsCache) failRefresh(err error) error {
	c.metrics.RefreshFailed()
	c.log.Error().Err(err).Msg("metrics refresh failed")
	return err
}

// Start primes the cache and launches the background warmer. Calling Start
// on a running cache is a no-op.
func (c *MetricsCache) Start(ctx context.Context) {
	c.stopMu.Lock()
	if c.stopCh != nil {
		c.stopMu.Unlock()
		return
	}
	stop := make(chan struct{})
	c.stopCh = stop
	c.stopMu.Unlock()

	if err := c.refresh(ctx); err != nil {
		c.log.Warn().Err(err).Msg("initial metrics refresh failed")
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		ticker := time.NewTicker(c.refreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := c.refresh(ctx); err != nil {
					c.log.Warn().Err(err).Msg("background metrics refresh failed")
				}
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop terminates the background warmer and waits for it to exit.
func (c *MetricsCache) Stop() {
	c.stopMu.Lock()
	stop := c.stopCh
	c.stopCh = nil
	c.stopMu.Unlock()
	if stop != nil {
		close(stop)
	}
	c.wg.Wait()
}

func copyRecords(records []models.ProcessRecord) []models.ProcessRecord {
	if records == nil {
		return nil
	}
	dup := make([]models.ProcessRecord, len(records))
	copy(dup, records)
	return dup
}
