//go:build windows

package proclist

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

// tasklistLister shells out to tasklist for the live process table.
type tasklistLister struct {
	run       Runner
	randFloat func() float64
}

// NewLister returns the process lister for this platform.
func NewLister() Lister {
	return &tasklistLister{run: runCommand, randFloat: rand.Float64}
}

func (l *tasklistLister) List(ctx context.Context) ([]models.ProcessRecord, error) {
	out, err := l.run(ctx, "tasklist", "/fo", "csv", "/nh")
	if err != nil {
		return nil, fmt.Errorf("tasklist: %w", err)
	}
	return parseTasklistOutput(string(out), l.randFloat), nil
}
