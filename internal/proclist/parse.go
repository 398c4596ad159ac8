package proclist

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"github.com/juanmmendes/monitor-sistema/internal/models"
)

// unknownName stands in when a listing row carries no usable command name.
const unknownName = "Unknown"

// memPercentFactorMB scales a ps %mem column into an approximate resident
// size in MB. The listing keeps this rough fixed factor instead of reading
// exact per-process figures.
const memPercentFactorMB = 100

// parsePSOutput turns `ps -eo pid,ppid,pcpu,pmem,comm` output into records.
// The header line is skipped, rows with fewer than five columns are dropped,
// and numeric columns that fail to parse fall back to zero.
func parsePSOutput(out string) []models.ProcessRecord {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	records := make([]models.ProcessRecord, 0, maxRealRecords)
	for i, line := range lines {
		if i == 0 {
			continue // header
		}
		fields := strings.Fields(line)
		if len(fields) < 5 {
			continue
		}
		records = append(records, models.ProcessRecord{
			Name:       fields[4],
			PID:        fields[0],
			CPUPercent: parseFloat(fields[2]),
			MemoryMB:   parseFloat(fields[3]) * memPercentFactorMB,
			Status:     models.ProcessStatusRunning,
		})
		if len(records) == maxRealRecords {
			break
		}
	}
	return records
}

// parseTasklistOutput turns `tasklist /fo csv /nh` output into records.
// tasklist reports no per-process CPU or resident size, so those columns are
// randomized placeholders in [0,30) and [0,1000), matching what the
// dashboard has always displayed on Windows. randFloat supplies the uniform
// [0,1) values and is injected so tests stay deterministic.
func parseTasklistOutput(out string, randFloat func() float64) []models.ProcessRecord {
	reader := csv.NewReader(strings.NewReader(out))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records := make([]models.ProcessRecord, 0, maxRealRecords)
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		if len(row) < 2 || strings.TrimSpace(row[1]) == "" {
			continue
		}
		name := strings.TrimSpace(row[0])
		if name == "" {
			name = unknownName
		}
		records = append(records, models.ProcessRecord{
			Name:       name,
			PID:        strings.TrimSpace(row[1]),
			CPUPercent: randFloat() * 30,
			MemoryMB:   randFloat() * 1000,
			Status:     models.ProcessStatusRunning,
		})
		if len(records) == maxRealRecords {
			break
		}
	}
	return records
}

func parseFloat(s string) float64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}
