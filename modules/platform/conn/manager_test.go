package conn

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"pilotdeck/modules/platform/eventbus"
	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"

	"github.com/gorilla/websocket"
)

var testUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// testServer is a scriptable websocket endpoint. Each accepted
// connection is handed to the configured handler.
type testServer struct {
	srv     *httptest.Server
	mu      sync.Mutex
	dials   int
	dialAt  []time.Time
	handler func(conn *websocket.Conn)
}

func newTestServer(t *testing.T, handler func(conn *websocket.Conn)) *testServer {
	t.Helper()
	ts := &testServer{handler: handler}
	ts.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := testUpgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		ts.mu.Lock()
		ts.dials++
		ts.dialAt = append(ts.dialAt, time.Now())
		ts.mu.Unlock()
		if ts.handler != nil {
			ts.handler(conn)
		}
	}))
	t.Cleanup(ts.srv.Close)
	return ts
}

func (ts *testServer) url() string {
	return "ws" + strings.TrimPrefix(ts.srv.URL, "http") + "/ws"
}

func (ts *testServer) dialCount() int {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.dials
}

func newTestManager(t *testing.T, url string) *Manager {
	t.Helper()
	log := logger.NewLogger(logger.ERROR, []io.Writer{io.Discard}, "test")
	m := NewManager(url, log, eventbus.NewBus())
	m.SetReconnectDelay(150 * time.Millisecond)
	t.Cleanup(m.Stop)
	return m
}

// collectFrames reads events until the expected number of frames
// arrived or the timeout expires
func collectFrames(t *testing.T, m *Manager, want int, timeout time.Duration) []*protocol.Frame {
	t.Helper()
	var frames []*protocol.Frame
	deadline := time.After(timeout)
	for len(frames) < want {
		select {
		case ev, ok := <-m.Events():
			if !ok {
				t.Fatalf("event stream closed after %d of %d frames", len(frames), want)
			}
			if ev.Kind == EventFrame {
				frames = append(frames, ev.Frame)
			}
		case <-deadline:
			t.Fatalf("timed out after %d of %d frames", len(frames), want)
		}
	}
	return frames
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal(msg)
}

func TestDefaultReconnectDelayIsThreeSeconds(t *testing.T) {
	if DefaultReconnectDelay != 3*time.Second {
		t.Fatalf("expected 3s default reconnect delay, got %v", DefaultReconnectDelay)
	}
}

func TestFramesArriveInReceiptOrder(t *testing.T) {
	payloads := []string{
		`{"type":"message","message":"one"}`,
		`{"type":"stream","chunk":"tw"}`,
		`{"type":"message","message":"three"}`,
	}

	ts := newTestServer(t, func(conn *websocket.Conn) {
		for _, p := range payloads {
			conn.WriteMessage(websocket.TextMessage, []byte(p))
		}
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	frames := collectFrames(t, m, 3, 2*time.Second)
	if frames[0].Message != "one" || frames[1].Chunk != "tw" || frames[2].Message != "three" {
		t.Errorf("frames out of order: %+v", frames)
	}

	log := m.Frames()
	if len(log) != 3 {
		t.Fatalf("expected 3 frames in log, got %d", len(log))
	}
	for i := range frames {
		if log[i] != frames[i] {
			t.Errorf("log[%d] does not match event stream", i)
		}
	}
}

func TestMalformedFramesAreDropped(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","message":"good"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{{{not json`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"missing":"type"}`))
		conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"message","message":"also good"}`))
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	frames := collectFrames(t, m, 2, 2*time.Second)
	if frames[0].Message != "good" || frames[1].Message != "also good" {
		t.Errorf("unexpected frames: %+v", frames)
	}
	if len(m.Frames()) != 2 {
		t.Errorf("malformed frames leaked into the log: %d entries", len(m.Frames()))
	}
}

func TestConnectedFlagFollowsLink(t *testing.T) {
	hold := make(chan struct{})
	ts := newTestServer(t, func(conn *websocket.Conn) {
		<-hold
		conn.Close()
	})

	m := newTestManager(t, ts.url())
	if m.Connected() {
		t.Fatal("connected before Start")
	}
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 2*time.Second, m.Connected, "never connected")

	close(hold)
	waitFor(t, 2*time.Second, func() bool { return !m.Connected() }, "connected flag never dropped")
}

func TestReconnectAfterFixedDelay(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	waitFor(t, 3*time.Second, func() bool { return ts.dialCount() >= 2 }, "no reconnect happened")

	ts.mu.Lock()
	gap := ts.dialAt[1].Sub(ts.dialAt[0])
	ts.mu.Unlock()
	if gap < 150*time.Millisecond {
		t.Errorf("reconnect after %v, expected at least the configured 150ms", gap)
	}
}

func TestStopCancelsReconnect(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	waitFor(t, 2*time.Second, func() bool { return ts.dialCount() >= 1 }, "never dialed")

	m.Stop()
	dials := ts.dialCount()

	time.Sleep(400 * time.Millisecond) // well past the 150ms delay
	if ts.dialCount() != dials {
		t.Errorf("manager kept dialing after Stop: %d -> %d", dials, ts.dialCount())
	}

	// Event stream is closed after Stop
	select {
	case _, ok := <-m.Events():
		if ok {
			// Drain remaining buffered events
			for range m.Events() {
			}
		}
	case <-time.After(time.Second):
		t.Error("event stream not closed after Stop")
	}
}

func TestReconnectDoesNotLeakConnections(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("fd counting relies on /proc")
	}

	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	m := newTestManager(t, ts.url())
	m.SetReconnectDelay(20 * time.Millisecond)
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Let a few cycles run before the baseline so one-time allocations
	// (epoll fds, DNS sockets) don't count against the delta.
	waitFor(t, 2*time.Second, func() bool { return ts.dialCount() >= 3 }, "never cycled")
	before := openFDCount(t)

	base := ts.dialCount()
	waitFor(t, 5*time.Second, func() bool { return ts.dialCount() >= base+20 }, "reconnect cycling stalled")
	after := openFDCount(t)

	if after > before+3 {
		t.Errorf("open fds grew from %d to %d across reconnect cycles", before, after)
	}
}

func openFDCount(t *testing.T) int {
	t.Helper()
	entries, err := os.ReadDir("/proc/self/fd")
	if err != nil {
		t.Fatalf("reading /proc/self/fd: %v", err)
	}
	return len(entries)
}

func TestSendWhileDisconnectedIsDropped(t *testing.T) {
	m := newTestManager(t, "ws://127.0.0.1:1/ws")

	if err := m.Send(protocol.NewButtonResponse("q1", "yes")); err == nil {
		t.Error("expected error when sending while disconnected")
	}
}

func TestQuestionAnswerRoundTrip(t *testing.T) {
	received := make(chan []byte, 1)
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"question","question_id":"q1","question":"Continue?","buttons":{"yes":"Yes","no":"No"}}`))
		_, data, err := conn.ReadMessage()
		if err == nil {
			received <- data
		}
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	collectFrames(t, m, 1, 2*time.Second)

	active := m.Questions().Active()
	if active == nil || active.QuestionID != "q1" {
		t.Fatalf("expected q1 active, got %+v", active)
	}

	if err := m.SendResponse(protocol.NewButtonResponse("q1", "yes")); err != nil {
		t.Fatalf("SendResponse failed: %v", err)
	}

	select {
	case data := <-received:
		want := `{"type":"response","question_id":"q1","button":"yes","cancelled":false}`
		if string(data) != want {
			t.Errorf("wire frame mismatch:\n got %s\nwant %s", data, want)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("server never received the response")
	}

	if m.Questions().Active() != nil {
		t.Error("question still active after response")
	}
}

func TestStartTwiceFails(t *testing.T) {
	ts := newTestServer(t, func(conn *websocket.Conn) {
		conn.Close()
	})

	m := newTestManager(t, ts.url())
	if err := m.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	if err := m.Start(); err == nil {
		t.Error("expected second Start to fail")
	}
}
