// Package proclist builds the top-process snapshot served by the API.
//
// A platform lister shells out to the native listing command and parses its
// output. The collector prepends a fixed set of showcase records so the
// dashboard always has rows to draw, even when the host command fails.
package proclist

import (
	"context"
	"os/exec"
	"time"

	"github.com/rs/zerolog"

	"github.com/juanmmendes/monitor-sistema/internal/models"
	"github.com/juanmmendes/monitor-sistema/internal/telemetry"
)

// maxRealRecords caps how many live processes one snapshot carries.
const maxRealRecords = 10

// listTimeout bounds one listing command invocation.
const listTimeout = 5 * time.Second

// Lister produces live process records for the current platform.
type Lister interface {
	List(ctx context.Context) ([]models.ProcessRecord, error)
}

// Runner executes a listing command and returns its stdout.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	cctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()
	return exec.CommandContext(cctx, name, args...).Output()
}

// syntheticRecords returns the fixed demo rows that head every snapshot.
// IDs are assigned when the snapshot is assembled.
func syntheticRecords() []models.ProcessRecord {
	return []models.ProcessRecord{
		{Name: "chrome", PID: "1101", CPUPercent: 12.5, MemoryMB: 845.3, Status: models.ProcessStatusRunning},
		{Name: "node", PID: "1102", CPUPercent: 8.2, MemoryMB: 512.7, Status: models.ProcessStatusRunning},
		{Name: "code", PID: "1103", CPUPercent: 6.4, MemoryMB: 256.4, Status: models.ProcessStatusRunning},
		{Name: "spotify", PID: "1104", CPUPercent: 3.1, MemoryMB: 198.2, Status: models.ProcessStatusRunning},
		{Name: "terminal", PID: "1105", CPUPercent: 1.8, MemoryMB: 64.5, Status: models.ProcessStatusRunning},
	}
}

// Collector merges synthetic and live records into one snapshot.
type Collector struct {
	lister  Lister
	log     zerolog.Logger
	metrics *telemetry.Metrics
}

// NewCollector wires a collector around the given lister. A nil lister gets
// the platform default.
func NewCollector(lister Lister, log zerolog.Logger, metrics *telemetry.Metrics) *Collector {
	if lister == nil {
		lister = NewLister()
	}
	return &Collector{lister: lister, log: log, metrics: metrics}
}

// Collect returns the snapshot for this instant: the synthetic rows followed
// by up to maxRealRecords live processes, IDs renumbered from 1. A listing
// failure degrades to the synthetic rows alone; the caller never sees an
// error.
func (c *Collector) Collect(ctx context.Context) []models.ProcessRecord {
	records := syntheticRecords()
	live, err := c.lister.List(ctx)
	if err != nil {
		c.log.Warn().Err(err).Msg("process listing failed, serving synthetic records only")
		c.metrics.ProcessListFailed()
	} else {
		if len(live) > maxRealRecords {
			live = live[:maxRealRecords]
		}
		records = append(records, live...)
	}
	for i := range records {
		records[i].ID = i + 1
	}
	return records
}
