package eventbus

import (
	"pilotdeck/modules/platform/logger"
)

// LogBridge forwards emitted log lines onto the bus as EventLogLine
// events, so UI subscribers can show live diagnostics
type LogBridge struct {
	bus *Bus
}

// NewLogBridge creates a broadcaster that publishes to the given bus
func NewLogBridge(bus *Bus) *LogBridge {
	return &LogBridge{bus: bus}
}

// BroadcastLog implements logger.Broadcaster
func (b *LogBridge) BroadcastLog(line logger.Line) {
	b.bus.Publish(NewEvent(EventLogLine).
		WithSource(line.Source).
		WithData("time_str", line.TimeStr).
		WithData("level", line.Level).
		WithData("source", line.Source).
		WithData("message", line.Message))
}
