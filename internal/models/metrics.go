package models

import "time"

// ProcessStatusRunning is the only status the snapshot reports; the listing
// commands never show anything but live processes.
const ProcessStatusRunning = "running"

// UsageSnapshot captures host CPU and memory usage from one sampling pass.
type UsageSnapshot struct {
	CPUPercent        float64   `json:"cpuPercent"`
	MemoryTotalGB     float64   `json:"memoryTotalGB"`
	MemoryUsedGB      float64   `json:"memoryUsedGB"`
	MemoryFreeGB      float64   `json:"memoryFreeGB"`
	MemoryUsedPercent int       `json:"memoryUsedPercent"`
	SampledAt         time.Time `json:"sampledAt"`
}

// MemoryUsage holds the rounded gigabyte figures of one memory reading.
type MemoryUsage struct {
	TotalGB     float64
	UsedGB      float64
	FreeGB      float64
	UsedPercent int
}

// ProcessRecord describes one row of the top-process snapshot.
type ProcessRecord struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	PID        string  `json:"pid"`
	CPUPercent float64 `json:"cpuPercent"`
	MemoryMB   float64 `json:"memoryMB"`
	Status     string  `json:"status"`
}

// SystemInfo describes static host facts, collected fresh per request.
type SystemInfo struct {
	Hostname      string  `json:"hostname"`
	Platform      string  `json:"platform"`
	Arch          string  `json:"arch"`
	CPUModel      string  `json:"cpuModel"`
	CPUCores      int     `json:"cpuCores"`
	MemoryTotalGB float64 `json:"memoryTotalGB"`
	UptimeSeconds uint64  `json:"uptimeSeconds"`
}

// APIResponse is the envelope wrapping every JSON API payload.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}
