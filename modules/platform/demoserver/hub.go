package demoserver

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The demo backend is a local development tool
		return true
	},
}

// Client is one connected UI. Each client gets its own scripted
// session and its own question counter, mirroring a backend that runs
// one pilot process per UI.
type Client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	gone chan struct{}
	hub  *Hub

	mu      sync.Mutex
	seq     int
	pending map[string]chan *protocol.Response
}

// nextQuestionID returns the next stringified counter value
func (c *Client) nextQuestionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return fmt.Sprintf("%d", c.seq)
}

// expectResponse registers a pending question and returns the channel
// its answer will arrive on
func (c *Client) expectResponse(questionID string) chan *protocol.Response {
	ch := make(chan *protocol.Response, 1)
	c.mu.Lock()
	c.pending[questionID] = ch
	c.mu.Unlock()
	return ch
}

// resolve routes an inbound response to its waiting question
func (c *Client) resolve(resp *protocol.Response) {
	c.mu.Lock()
	ch, ok := c.pending[resp.QuestionID]
	if ok {
		delete(c.pending, resp.QuestionID)
	}
	c.mu.Unlock()

	if ok {
		ch <- resp
	}
}

// sendFrame marshals a frame onto the client's send queue
func (c *Client) sendFrame(v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.send <- data:
	case <-c.gone:
	}
}

// Hub accepts websocket connections and replays the scripted scenario
// to each one
type Hub struct {
	mu       sync.RWMutex
	clients  map[string]*Client
	scenario []ScenarioStep
	log      *logger.Logger
	nextID   int
	done     chan struct{}
}

// NewHub creates a hub that serves the given scenario
func NewHub(scenario []ScenarioStep, log *logger.Logger) *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		scenario: scenario,
		log:      log,
		done:     make(chan struct{}),
	}
}

// Stop disconnects all clients and stops scenario playback
func (h *Hub) Stop() {
	close(h.done)

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, c := range h.clients {
		c.conn.Close()
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeWS upgrades the connection and starts the client's session
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed: %v", err)
		return
	}

	h.mu.Lock()
	h.nextID++
	client := &Client{
		id:      fmt.Sprintf("ui-%d", h.nextID),
		conn:    conn,
		send:    make(chan []byte, 256),
		gone:    make(chan struct{}),
		hub:     h,
		pending: make(map[string]chan *protocol.Response),
	}
	h.clients[client.id] = client
	h.mu.Unlock()

	h.log.Info("client connected: %s", client.id)

	go client.writePump()
	go client.readPump()
	go h.runScenario(client)
}

// remove drops a client from the hub
func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c.id]; ok {
		delete(h.clients, c.id)
		h.log.Info("client disconnected: %s", c.id)
	}
	h.mu.Unlock()
}

// writePump pumps queued frames to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(30 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.gone:
			return
		}
	}
}

// readPump pumps responses from the websocket connection
func (c *Client) readPump() {
	defer func() {
		close(c.gone)
		c.hub.remove(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(512 * 1024)

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.log.Warn("client %s read error: %v", c.id, err)
			}
			return
		}
		c.handleMessage(message)
	}
}

// handleMessage dispatches one inbound client frame
func (c *Client) handleMessage(message []byte) {
	var probe struct {
		Type protocol.MessageType `json:"type"`
	}
	if err := json.Unmarshal(message, &probe); err != nil {
		c.hub.log.Warn("client %s sent malformed frame: %v", c.id, err)
		return
	}

	switch probe.Type {
	case protocol.MsgResponse:
		var resp protocol.Response
		if err := json.Unmarshal(message, &resp); err != nil {
			return
		}
		c.resolve(&resp)

	case protocol.MsgModelChange:
		var change protocol.ModelChange
		if err := json.Unmarshal(message, &change); err != nil {
			return
		}
		c.hub.log.Info("client %s selected %s/%s", c.id, change.Provider, change.Model)
		c.sendFrame(&protocol.Frame{
			Type:              protocol.MsgMessage,
			Message:           fmt.Sprintf("Model switched to %s (%s).", change.Model, change.Provider),
			Source:            "system",
			SourceDisplayName: "System",
		})

	default:
		c.hub.log.Debug("client %s sent unhandled frame type %q", c.id, probe.Type)
	}
}
