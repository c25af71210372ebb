package conn

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"pilotdeck/modules/platform/eventbus"
	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"

	"github.com/gorilla/websocket"
)

const (
	// DefaultReconnectDelay is the fixed wait between reconnect
	// attempts. There is no backoff: the backend is expected to be a
	// local process that either runs or does not.
	DefaultReconnectDelay = 3 * time.Second

	handshakeTimeout = 5 * time.Second
	writeTimeout     = 10 * time.Second
	maxFrameSize     = 512 * 1024
)

// Manager owns the single connection to the backend. It dials on
// Start, reads frames until the link drops, then redials after a
// fixed delay, forever, until Stop. Received frames are appended to an
// in-memory log and pushed onto the event stream in receipt order.
//
// A Manager is single-use: once stopped it cannot be restarted.
type Manager struct {
	url string
	log *logger.Logger
	bus *eventbus.Bus

	reconnectDelay time.Duration

	mu        sync.Mutex
	writeMu   sync.Mutex
	conn      *websocket.Conn
	connected bool
	started   bool
	stopped   bool
	frames    []*protocol.Frame

	questions *QuestionQueue
	events    chan Event
	done      chan struct{}
	wg        sync.WaitGroup
}

// NewManager creates a connection manager for the given websocket URL
func NewManager(url string, log *logger.Logger, bus *eventbus.Bus) *Manager {
	return &Manager{
		url:            url,
		log:            log,
		bus:            bus,
		reconnectDelay: DefaultReconnectDelay,
		questions:      NewQuestionQueue(),
		events:         make(chan Event, 256),
		done:           make(chan struct{}),
	}
}

// SetReconnectDelay overrides the reconnect delay. Must be called
// before Start.
func (m *Manager) SetReconnectDelay(d time.Duration) {
	m.reconnectDelay = d
}

// Start begins dialing the backend and keeps the link alive until
// Stop. A failed dial is not an error here; it schedules a retry like
// any other drop.
func (m *Manager) Start() error {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return fmt.Errorf("connection manager already started")
	}
	if m.stopped {
		m.mu.Unlock()
		return fmt.Errorf("connection manager already stopped")
	}
	m.started = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run()
	return nil
}

// Stop tears down the connection and cancels any pending reconnect.
// The event stream is closed once the receive loop has exited.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.started || m.stopped {
		m.mu.Unlock()
		return
	}
	m.stopped = true
	conn := m.conn
	m.mu.Unlock()

	close(m.done)
	if conn != nil {
		conn.Close()
	}
	m.wg.Wait()
	close(m.events)
}

// Connected reports whether the link is currently up
func (m *Manager) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.connected
}

// Events returns the ordered stream of connection events. The channel
// is closed by Stop.
func (m *Manager) Events() <-chan Event {
	return m.events
}

// Frames returns a snapshot of all frames received this session, in
// receipt order. The log is append-only and never pruned.
func (m *Manager) Frames() []*protocol.Frame {
	m.mu.Lock()
	defer m.mu.Unlock()
	snapshot := make([]*protocol.Frame, len(m.frames))
	copy(snapshot, m.frames)
	return snapshot
}

// Questions returns the pending question queue
func (m *Manager) Questions() *QuestionQueue {
	return m.questions
}

// Send marshals payload and writes it to the active connection. When
// the link is down the frame is dropped; the failure is logged and
// returned, but callers are free to ignore it.
func (m *Manager) Send(payload interface{}) error {
	m.mu.Lock()
	if !m.connected || m.conn == nil {
		m.mu.Unlock()
		m.log.Warn("send dropped: not connected")
		return fmt.Errorf("not connected")
	}
	conn := m.conn
	m.mu.Unlock()

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}

	m.writeMu.Lock()
	defer m.writeMu.Unlock()

	conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
		m.log.Warn("send failed: %v", err)
		return err
	}

	m.bus.Publish(eventbus.NewEvent(eventbus.EventFrameOut).WithSource("conn"))
	return nil
}

// SendResponse answers a pending question and resolves it in the
// queue. Resolution is local: the backend sends no acknowledgment.
func (m *Manager) SendResponse(resp *protocol.Response) error {
	if err := m.Send(resp); err != nil {
		return err
	}

	m.questions.Resolve(resp.QuestionID)
	m.bus.Publish(eventbus.NewEvent(eventbus.EventQuestionAnswered).
		WithSource("conn").
		WithData("question_id", resp.QuestionID))
	return nil
}

// SendModelChange tells the backend which provider/model to use
func (m *Manager) SendModelChange(provider, model string) error {
	if err := m.Send(protocol.NewModelChange(provider, model)); err != nil {
		return err
	}

	m.bus.Publish(eventbus.NewEvent(eventbus.EventModelChanged).
		WithSource("conn").
		WithData("provider", provider).
		WithData("model", model))
	return nil
}

// run dials, pumps frames until the link drops, waits the fixed
// delay, and dials again
func (m *Manager) run() {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return
		default:
		}

		if err := m.connectOnce(); err != nil {
			m.log.Warn("connect to %s failed: %v", m.url, err)
			m.bus.Publish(eventbus.NewEvent(eventbus.EventConnRetry).WithSource("conn"))
		}

		select {
		case <-m.done:
			return
		case <-time.After(m.reconnectDelay):
		}
	}
}

// connectOnce dials once and reads frames until the connection closes
func (m *Manager) connectOnce() error {
	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, _, err := dialer.Dial(m.url, nil)
	if err != nil {
		return err
	}
	// gorilla leaves the connection open after a read error; close it
	// here so a dropped link does not leak its fd across redials.
	defer conn.Close()

	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return nil
	}
	m.conn = conn
	m.connected = true
	m.mu.Unlock()

	m.log.Info("connected to %s", m.url)
	m.bus.Publish(eventbus.NewEvent(eventbus.EventConnOpened).
		WithSource("conn").
		WithData("url", m.url))
	m.emit(Event{Kind: EventConnected})

	m.readLoop(conn)

	m.mu.Lock()
	m.connected = false
	m.conn = nil
	m.mu.Unlock()

	m.log.Info("disconnected from %s", m.url)
	m.bus.Publish(eventbus.NewEvent(eventbus.EventConnClosed).WithSource("conn"))
	m.emit(Event{Kind: EventDisconnected})
	return nil
}

// readLoop pumps frames off the wire until the connection dies.
// Malformed frames are logged and dropped; they never reach the log
// or the event stream.
func (m *Manager) readLoop(conn *websocket.Conn) {
	conn.SetReadLimit(maxFrameSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				m.log.Warn("connection lost: %v", err)
			}
			return
		}

		frame, err := protocol.ParseFrame(data)
		if err != nil {
			m.log.Warn("dropping frame: %v", err)
			m.bus.Publish(eventbus.NewEvent(eventbus.EventFrameBroken).WithSource("conn"))
			continue
		}

		m.mu.Lock()
		m.frames = append(m.frames, frame)
		m.mu.Unlock()

		if frame.IsQuestion() {
			m.questions.Push(frame)
			m.bus.Publish(eventbus.NewEvent(eventbus.EventQuestionAsked).
				WithSource("conn").
				WithData("question_id", frame.QuestionID))
		}

		m.bus.Publish(eventbus.NewEvent(eventbus.EventFrameIn).
			WithSource("conn").
			WithData("frame_type", string(frame.Type)))
		m.emit(Event{Kind: EventFrame, Frame: frame})
	}
}

// emit pushes an event to the stream, blocking until the consumer
// catches up or the manager stops
func (m *Manager) emit(ev Event) {
	select {
	case m.events <- ev:
	case <-m.done:
	}
}
