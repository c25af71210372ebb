package system

import (
	"testing"
	"time"
)

func TestCollectorPopulatesMetrics(t *testing.T) {
	mc := NewMetricsCollector(time.Second)
	mc.Start()
	defer mc.Stop()

	m := mc.Get()
	if m.UpdatedAt.IsZero() {
		t.Error("expected UpdatedAt set after Start")
	}
	if m.NumCPU < 1 {
		t.Errorf("expected at least one CPU, got %d", m.NumCPU)
	}
	if m.Goroutines < 1 {
		t.Errorf("expected at least one goroutine, got %d", m.Goroutines)
	}
	if m.MemTotalGB <= 0 {
		t.Errorf("expected positive total memory, got %f", m.MemTotalGB)
	}
}

func TestCollectorStartStopIdempotent(t *testing.T) {
	mc := NewMetricsCollector(time.Second)
	mc.Start()
	mc.Start() // second Start is a no-op
	mc.Stop()
	mc.Stop() // second Stop must not panic
}

func TestCollectorMinimumRefreshRate(t *testing.T) {
	mc := NewMetricsCollector(10 * time.Millisecond)
	if mc.refreshRate < time.Second {
		t.Errorf("refresh rate not clamped: %v", mc.refreshRate)
	}
}
