package conn

import "pilotdeck/modules/platform/protocol"

// EventKind discriminates connection events
type EventKind int

const (
	// EventFrame carries one parsed inbound frame
	EventFrame EventKind = iota
	// EventConnected signals the link came up
	EventConnected
	// EventDisconnected signals the link went down
	EventDisconnected
)

// Event is one item on the manager's event stream. Events preserve
// receipt order; consumers read them from Events().
type Event struct {
	Kind  EventKind
	Frame *protocol.Frame // set for EventFrame
}
