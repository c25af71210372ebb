package system

import (
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// Metrics holds host and process resource usage for the dashboard
// status strip
type Metrics struct {
	CPUPercent float64   // Host CPU usage percentage (0-100)
	MemUsedGB  float64   // Host memory used in GB
	MemTotalGB float64   // Total host memory in GB
	MemPercent float64   // Host memory usage percentage (0-100)
	ProcMemMB  float64   // This process's resident memory in MB
	Goroutines int       // Goroutines in this process
	NumCPU     int       // Number of CPUs
	UpdatedAt  time.Time // When metrics were last updated
}

// MetricsCollector collects metrics on a fixed interval
type MetricsCollector struct {
	mu          sync.RWMutex
	metrics     Metrics
	proc        *process.Process
	refreshRate time.Duration
	stopCh      chan struct{}
	running     bool
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector(refreshRate time.Duration) *MetricsCollector {
	if refreshRate < time.Second {
		refreshRate = time.Second
	}

	// Process handle for self-stats; nil is tolerated by collect
	proc, _ := process.NewProcess(int32(os.Getpid()))

	return &MetricsCollector{
		refreshRate: refreshRate,
		stopCh:      make(chan struct{}),
		proc:        proc,
		metrics:     Metrics{NumCPU: runtime.NumCPU()},
	}
}

// Start begins collecting metrics periodically
func (mc *MetricsCollector) Start() {
	mc.mu.Lock()
	if mc.running {
		mc.mu.Unlock()
		return
	}
	mc.running = true
	mc.mu.Unlock()

	// Initial collection
	mc.collect()

	go func() {
		ticker := time.NewTicker(mc.refreshRate)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				mc.collect()
			case <-mc.stopCh:
				return
			}
		}
	}()
}

// Stop stops the metrics collection
func (mc *MetricsCollector) Stop() {
	mc.mu.Lock()
	if mc.running {
		mc.running = false
		close(mc.stopCh)
	}
	mc.mu.Unlock()
}

// Get returns the current metrics
func (mc *MetricsCollector) Get() Metrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.metrics
}

// collect gathers all metrics
func (mc *MetricsCollector) collect() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.collectCPU()
	mc.collectMemory()
	mc.collectProcess()
	mc.metrics.NumCPU = runtime.NumCPU()
	mc.metrics.Goroutines = runtime.NumGoroutine()
	mc.metrics.UpdatedAt = time.Now()
}

// collectCPU reads host CPU usage using gopsutil
func (mc *MetricsCollector) collectCPU() {
	// Non-blocking: uses the delta since the previous sample
	percents, err := cpu.Percent(0, false)
	if err != nil || len(percents) == 0 {
		return
	}
	mc.metrics.CPUPercent = percents[0]
}

// collectMemory reads host memory info using gopsutil
func (mc *MetricsCollector) collectMemory() {
	vmStat, err := mem.VirtualMemory()
	if err != nil {
		return
	}

	mc.metrics.MemTotalGB = float64(vmStat.Total) / 1024 / 1024 / 1024
	mc.metrics.MemUsedGB = float64(vmStat.Used) / 1024 / 1024 / 1024
	mc.metrics.MemPercent = vmStat.UsedPercent
}

// collectProcess reads this process's resident memory
func (mc *MetricsCollector) collectProcess() {
	if mc.proc == nil {
		return
	}

	memInfo, err := mc.proc.MemoryInfo()
	if err != nil || memInfo == nil {
		return
	}
	mc.metrics.ProcMemMB = float64(memInfo.RSS) / 1024 / 1024
}
