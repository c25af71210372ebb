package core

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"pilotdeck/modules/core/catalog"
	"pilotdeck/modules/core/projects"
	"pilotdeck/modules/platform/config"
	"pilotdeck/modules/platform/conn"
	"pilotdeck/modules/platform/demoserver"
	"pilotdeck/modules/platform/eventbus"
	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"
)

func discardLogger() *logger.Logger {
	return logger.NewLogger(logger.ERROR, []io.Writer{io.Discard}, "test")
}

type changeRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *changeRecorder) record(provider, model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, provider+"/"+model)
}

func (r *changeRecorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

// newTestPresenter builds a presenter over an unstarted connection
// manager. The link is down, which is exactly what the local-only
// tests need.
func newTestPresenter(t *testing.T, rec *changeRecorder) *AppPresenter {
	t.Helper()

	bus := eventbus.NewBus()
	mgr := conn.NewManager("ws://127.0.0.1:1/ws", discardLogger(), bus)
	svc := projects.NewService(projects.NewEmptyStore(), nil, 0)

	var onChange catalog.ChangeFunc
	if rec != nil {
		onChange = rec.record
	}
	selection := catalog.NewSelection("openai", "gpt-4o-latest", onChange)

	p := NewAppPresenter(mgr, selection, svc, config.DefaultConfig(), bus, discardLogger())
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { p.Shutdown() })

	return p
}

func waitUntil(t *testing.T, d time.Duration, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func sessionOf(t *testing.T, p *AppPresenter) *SessionVM {
	t.Helper()
	vm, err := p.GetViewModel(VMSession)
	if err != nil {
		t.Fatalf("GetViewModel(session) error = %v", err)
	}
	return vm.(*SessionVM)
}

func dashboardOf(t *testing.T, p *AppPresenter) *DashboardVM {
	t.Helper()
	vm, err := p.GetViewModel(VMDashboard)
	if err != nil {
		t.Fatalf("GetViewModel(dashboard) error = %v", err)
	}
	return vm.(*DashboardVM)
}

// waitLoaded blocks until the initial background project fetch has
// landed, so later assertions cannot race it.
func waitLoaded(t *testing.T, p *AppPresenter) {
	t.Helper()
	waitUntil(t, 2*time.Second, "initial project load", func() bool {
		return !dashboardOf(t, p).IsLoading
	})
}

func TestCreateProjectIsLocal(t *testing.T) {
	p := newTestPresenter(t, nil)
	waitLoaded(t, p)

	// The manager was never started, so any network call would fail
	// loudly. Creation must succeed regardless.
	if err := p.HandleEvent(CreateProjectEvent("Demo")); err != nil {
		t.Fatalf("HandleEvent(create) error = %v", err)
	}

	dash := dashboardOf(t, p)
	if dash.ProjectCount != 1 || len(dash.Projects) != 1 {
		t.Fatalf("dashboard projects = %d, want 1", len(dash.Projects))
	}
	row := dash.Projects[0]
	if row.Name != "Demo" {
		t.Errorf("Name = %q", row.Name)
	}
	if row.BranchCount != 1 {
		t.Errorf("BranchCount = %d, want the main branch only", row.BranchCount)
	}
	if row.StepCount != 0 {
		t.Errorf("StepCount = %d, want 0", row.StepCount)
	}

	// Creation navigates into the new project.
	if p.state.GetCurrentView() != VMSession {
		t.Fatalf("current view = %q, want session", p.state.GetCurrentView())
	}
	if sessionOf(t, p).ProjectName != "Demo" {
		t.Fatalf("session project = %q", sessionOf(t, p).ProjectName)
	}
}

func TestCreateProjectRejectsBlankName(t *testing.T) {
	p := newTestPresenter(t, nil)
	waitLoaded(t, p)

	if err := p.HandleEvent(CreateProjectEvent("   ")); err == nil {
		t.Fatal("blank name accepted")
	}
	if dash := dashboardOf(t, p); len(dash.Projects) != 0 {
		t.Fatalf("projects = %d, want 0", len(dash.Projects))
	}
}

func TestNavigateUnknownViewFails(t *testing.T) {
	p := newTestPresenter(t, nil)

	if err := p.HandleEvent(NewEvent(EventNavigate).WithTarget("nope")); err == nil {
		t.Fatal("unknown view accepted")
	}
}

func TestProviderSwitchResetsModelAndNotifies(t *testing.T) {
	rec := &changeRecorder{}
	p := newTestPresenter(t, rec)

	if err := p.HandleEvent(ModelEvent("anthropic", "")); err != nil {
		t.Fatalf("HandleEvent(model) error = %v", err)
	}

	session := sessionOf(t, p)
	if session.Provider != "Anthropic" {
		t.Errorf("Provider = %q", session.Provider)
	}
	if session.Model != "claude-3-5-sonnet-20241022" {
		t.Errorf("Model = %q, want provider's first model", session.Model)
	}

	calls := rec.all()
	if len(calls) != 1 || calls[0] != "anthropic/claude-3-5-sonnet-20241022" {
		t.Fatalf("change calls = %v", calls)
	}
}

func TestSelectUnknownProviderFails(t *testing.T) {
	p := newTestPresenter(t, nil)

	if err := p.HandleEvent(ModelEvent("hal9000", "")); err == nil {
		t.Fatal("unknown provider accepted")
	}
}

func TestCycleProviderWraps(t *testing.T) {
	rec := &changeRecorder{}
	p := newTestPresenter(t, rec)

	for i := 0; i < 3; i++ {
		if err := p.HandleEvent(NewEvent(EventCycleProvider).WithValue(1)); err != nil {
			t.Fatalf("cycle %d error = %v", i, err)
		}
	}

	// Three steps over three providers lands back on the start.
	session := sessionOf(t, p)
	if session.Provider != "OpenAI" || session.Selector.ProviderIndex != 0 {
		t.Fatalf("after full cycle: %q idx %d", session.Provider, session.Selector.ProviderIndex)
	}
	if len(rec.all()) != 3 {
		t.Fatalf("change calls = %v", rec.all())
	}
}

func TestButtonsOnlyBlocksTextAnswers(t *testing.T) {
	p := newTestPresenter(t, nil)

	p.conn.Questions().Push(&protocol.Frame{
		Type:        protocol.MsgQuestion,
		QuestionID:  "q1",
		Question:    "Continue?",
		Buttons:     map[string]string{"yes": "Yes", "no": "No"},
		ButtonsOnly: true,
	})
	p.rebuildSession()

	err := p.HandleEvent(AnswerEvent("q1", "free text"))
	if err == nil {
		t.Fatal("text answer accepted for buttons-only question")
	}
	if !strings.Contains(err.Error(), "button") {
		t.Fatalf("error = %v", err)
	}

	// The question must still be pending.
	if sessionOf(t, p).Question == nil {
		t.Fatal("question resolved by rejected answer")
	}
}

func TestEmptyAnswerNeedsAllowEmpty(t *testing.T) {
	p := newTestPresenter(t, nil)

	p.conn.Questions().Push(&protocol.Frame{
		Type:       protocol.MsgQuestion,
		QuestionID: "q1",
		Question:   "Name?",
	})

	if err := p.HandleEvent(AnswerEvent("q1", "")); err == nil {
		t.Fatal("empty answer accepted without allow_empty")
	}
}

func TestUnknownButtonRejected(t *testing.T) {
	p := newTestPresenter(t, nil)

	p.conn.Questions().Push(&protocol.Frame{
		Type:       protocol.MsgQuestion,
		QuestionID: "q1",
		Question:   "Continue?",
		Buttons:    map[string]string{"yes": "Yes"},
	})

	if err := p.HandleEvent(ButtonEvent("q1", "maybe")); err == nil {
		t.Fatal("unknown button accepted")
	}
}

func TestLogLinesReachLogsView(t *testing.T) {
	bus := eventbus.NewBus()
	mgr := conn.NewManager("ws://127.0.0.1:1/ws", discardLogger(), bus)
	svc := projects.NewService(projects.NewEmptyStore(), nil, 0)
	selection := catalog.NewSelection("openai", "", nil)

	log := logger.NewLogger(logger.INFO, []io.Writer{io.Discard}, "apitest")
	log.SetBroadcaster(eventbus.NewLogBridge(bus))

	p := NewAppPresenter(mgr, selection, svc, config.DefaultConfig(), bus, log)
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { p.Shutdown() })

	log.Info("hello diagnostics")

	waitUntil(t, 2*time.Second, "log line to land", func() bool {
		vm, _ := p.GetViewModel(VMLogs)
		logs := vm.(*LogsVM)
		for _, line := range logs.Lines {
			if line.Message == "hello diagnostics" && line.Source == "apitest" {
				return true
			}
		}
		return false
	})
}

func TestInitializeSeedsLogsFromBusHistory(t *testing.T) {
	bus := eventbus.NewBus()
	mgr := conn.NewManager("ws://127.0.0.1:1/ws", discardLogger(), bus)
	svc := projects.NewService(projects.NewEmptyStore(), nil, 0)
	selection := catalog.NewSelection("openai", "", nil)

	// Lines logged during startup wiring, before any presenter exists
	log := logger.NewLogger(logger.INFO, []io.Writer{io.Discard}, "boot")
	log.SetBroadcaster(eventbus.NewLogBridge(bus))
	log.Info("loading config")
	log.Info("starting connection")

	p := NewAppPresenter(mgr, selection, svc, config.DefaultConfig(), bus, log)
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { p.Shutdown() })

	vm, err := p.GetViewModel(VMLogs)
	if err != nil {
		t.Fatalf("GetViewModel(logs) error = %v", err)
	}
	logs := vm.(*LogsVM)
	if len(logs.Lines) != 2 {
		t.Fatalf("expected 2 replayed lines, got %d: %+v", len(logs.Lines), logs.Lines)
	}
	if logs.Lines[0].Message != "loading config" || logs.Lines[1].Message != "starting connection" {
		t.Errorf("replayed lines out of order: %+v", logs.Lines)
	}
}

func TestQuestionFlowEndToEnd(t *testing.T) {
	scenario := []demoserver.ScenarioStep{
		{Frame: &protocol.Frame{
			Type:              protocol.MsgMessage,
			Message:           "Hello",
			Source:            "agent:pm",
			SourceDisplayName: "Product Owner",
		}},
		{Frame: &protocol.Frame{
			Type:        protocol.MsgQuestion,
			Question:    "Continue?",
			Buttons:     map[string]string{"yes": "Yes", "no": "No"},
			ButtonsOnly: true,
		}},
		{Frame: &protocol.Frame{
			Type:    protocol.MsgMessage,
			Message: "Continuing.",
			Source:  "agent:pm",
		}},
	}

	srv := demoserver.NewServer(0, scenario, discardLogger())
	if err := srv.Start(); err != nil {
		t.Fatalf("demo server start: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	bus := eventbus.NewBus()
	mgr := conn.NewManager("ws://"+srv.Addr()+"/ws", discardLogger(), bus)
	if err := mgr.Start(); err != nil {
		t.Fatalf("manager start: %v", err)
	}
	t.Cleanup(mgr.Stop)

	svc := projects.NewService(projects.NewEmptyStore(), nil, 0)
	selection := catalog.NewSelection("openai", "", nil)
	p := NewAppPresenter(mgr, selection, svc, config.DefaultConfig(), bus, discardLogger())
	if err := p.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	t.Cleanup(func() { p.Shutdown() })

	waitUntil(t, 3*time.Second, "question to become active", func() bool {
		return sessionOf(t, p).Question != nil
	})

	q := sessionOf(t, p).Question
	if q.Text != "Continue?" || !q.ButtonsOnly {
		t.Fatalf("question = %+v", q)
	}

	if err := p.HandleEvent(ButtonEvent(q.ID, "yes")); err != nil {
		t.Fatalf("button answer error = %v", err)
	}

	waitUntil(t, 3*time.Second, "answer to resolve and scenario to continue", func() bool {
		s := sessionOf(t, p)
		if s.Question != nil {
			return false
		}
		for _, e := range s.Transcript {
			if e.Content == "Continuing." {
				return true
			}
		}
		return false
	})

	// The greeting arrived labeled by display name.
	found := false
	for _, e := range sessionOf(t, p).Transcript {
		if e.Line() == "Product Owner: Hello" {
			found = true
		}
	}
	if !found {
		t.Fatal("greeting not in transcript")
	}
}
