package demoserver

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"

	"github.com/gorilla/websocket"
)

func testLogger() *logger.Logger {
	return logger.NewLogger(logger.ERROR, []io.Writer{io.Discard}, "test")
}

func startServer(t *testing.T, scenario []ScenarioStep) *Server {
	t.Helper()

	srv := NewServer(0, scenario, testLogger())
	if err := srv.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return srv
}

func dial(t *testing.T, srv *Server) *websocket.Conn {
	t.Helper()

	ws, _, err := websocket.DefaultDialer.Dial("ws://"+srv.Addr()+"/ws", nil)
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}
	t.Cleanup(func() { ws.Close() })

	return ws
}

func readFrame(t *testing.T, ws *websocket.Conn) *protocol.Frame {
	t.Helper()

	ws.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	frame, err := protocol.ParseFrame(data)
	if err != nil {
		t.Fatalf("parse failed: %v (payload %s)", err, data)
	}
	return frame
}

func TestDefaultScenarioShape(t *testing.T) {
	steps := DefaultScenario()
	if len(steps) == 0 {
		t.Fatal("default scenario is empty")
	}

	questions := 0
	for i, step := range steps {
		if step.Frame == nil {
			t.Fatalf("step %d has no frame", i)
		}
		if step.Frame.Type == "" {
			t.Fatalf("step %d frame has no type", i)
		}
		if step.Frame.Type == protocol.MsgQuestion {
			questions++
			if step.Frame.Question == "" {
				t.Fatalf("step %d question has no text", i)
			}
			if step.Frame.QuestionID != "" {
				t.Fatalf("step %d question carries a pre-assigned ID", i)
			}
		}
	}
	if questions == 0 {
		t.Fatal("default scenario asks no questions")
	}
}

func TestServerStartStop(t *testing.T) {
	srv := startServer(t, nil)

	if !srv.IsRunning() {
		t.Fatal("IsRunning() = false after Start")
	}
	if srv.Addr() == "" {
		t.Fatal("Addr() empty after Start")
	}
	if err := srv.Start(); err == nil {
		t.Fatal("second Start() did not fail")
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if srv.IsRunning() {
		t.Fatal("IsRunning() = true after Stop")
	}
}

func TestHealthEndpoint(t *testing.T) {
	srv := startServer(t, nil)

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `"status":"ok"`) {
		t.Fatalf("body = %s, want status ok", body)
	}
}

func TestScenarioRoundTrip(t *testing.T) {
	scenario := []ScenarioStep{
		{Frame: &protocol.Frame{
			Type:              protocol.MsgMessage,
			Message:           "Hello",
			Source:            "product-owner",
			SourceDisplayName: "Product Owner",
		}},
		{Frame: &protocol.Frame{
			Type:        protocol.MsgQuestion,
			Question:    "Proceed?",
			Buttons:     map[string]string{"yes": "Yes", "no": "No"},
			ButtonsOnly: true,
			Default:     "yes",
		}},
		{Frame: &protocol.Frame{
			Type:    protocol.MsgMessage,
			Message: "Continuing.",
		}},
	}

	srv := startServer(t, scenario)
	ws := dial(t, srv)

	greeting := readFrame(t, ws)
	if greeting.Type != protocol.MsgMessage || greeting.Message != "Hello" {
		t.Fatalf("first frame = %+v, want greeting message", greeting)
	}

	question := readFrame(t, ws)
	if question.Type != protocol.MsgQuestion {
		t.Fatalf("second frame type = %q, want question", question.Type)
	}
	if question.QuestionID != "1" {
		t.Fatalf("question_id = %q, want counter value 1", question.QuestionID)
	}

	answer := protocol.NewButtonResponse(question.QuestionID, "yes")
	data, err := answer.Encode()
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	followup := readFrame(t, ws)
	if followup.Type != protocol.MsgMessage || followup.Message != "Continuing." {
		t.Fatalf("frame after answer = %+v, want continuation message", followup)
	}
}

func TestQuestionIDsCountPerClient(t *testing.T) {
	scenario := []ScenarioStep{
		{Frame: &protocol.Frame{Type: protocol.MsgQuestion, Question: "First?"}},
		{Frame: &protocol.Frame{Type: protocol.MsgQuestion, Question: "Second?"}},
	}

	srv := startServer(t, scenario)
	ws := dial(t, srv)

	first := readFrame(t, ws)
	if first.QuestionID != "1" {
		t.Fatalf("first question_id = %q, want 1", first.QuestionID)
	}

	text := protocol.NewTextResponse(first.QuestionID, "an answer")
	data, _ := text.Encode()
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	second := readFrame(t, ws)
	if second.QuestionID != "2" {
		t.Fatalf("second question_id = %q, want 2", second.QuestionID)
	}

	// A fresh client starts its own counter.
	ws2 := dial(t, srv)
	other := readFrame(t, ws2)
	if other.QuestionID != "1" {
		t.Fatalf("new client question_id = %q, want 1", other.QuestionID)
	}
}

func TestModelChangeGetsAcknowledged(t *testing.T) {
	srv := startServer(t, nil)
	ws := dial(t, srv)

	change := protocol.NewModelChange("anthropic", "claude-3-5-sonnet-20241022")
	data, err := json.Marshal(change)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := ws.WriteMessage(websocket.TextMessage, data); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	reply := readFrame(t, ws)
	if reply.Type != protocol.MsgMessage {
		t.Fatalf("reply type = %q, want message", reply.Type)
	}
	if !strings.Contains(reply.Message, "claude-3-5-sonnet-20241022") {
		t.Fatalf("reply = %q, want model name in acknowledgement", reply.Message)
	}
}

func TestStopDisconnectsClients(t *testing.T) {
	srv := startServer(t, nil)
	ws := dial(t, srv)

	// Let the hub register the client before stopping.
	deadline := time.Now().Add(2 * time.Second)
	for srv.hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if srv.hub.ClientCount() == 0 {
		t.Fatal("client never registered")
	}

	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}

	ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := ws.ReadMessage(); err == nil {
		t.Fatal("read succeeded after server stop")
	}
}
