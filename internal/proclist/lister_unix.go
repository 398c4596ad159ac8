//go:build !windows

package proclist

import (
	"context"
	"fmt"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

// psLister shells out to ps for the live process table, highest CPU first.
type psLister struct {
	run Runner
}

// NewLister returns the process lister for this platform.
func NewLister() Lister {
	return &psLister{run: runCommand}
}

func (l *psLister) List(ctx context.Context) ([]models.ProcessRecord, error) {
	out, err := l.run(ctx, "ps", "-eo", "pid,ppid,pcpu,pmem,comm", "--sort=-pcpu")
	if err != nil {
		return nil, fmt.Errorf("ps: %w", err)
	}
	return parsePSOutput(string(out)), nil
}
