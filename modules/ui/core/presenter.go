package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pilotdeck/modules/core/catalog"
	"pilotdeck/modules/core/projects"
	"pilotdeck/modules/platform/config"
	"pilotdeck/modules/platform/conn"
	"pilotdeck/modules/platform/eventbus"
	"pilotdeck/modules/platform/logger"
	"pilotdeck/modules/platform/protocol"
)

// AppPresenter is the main presenter implementation. All dependencies
// are injected; it owns no connection or service lifecycle.
type AppPresenter struct {
	mu sync.RWMutex

	// Services
	conn           *conn.Manager
	selection      *catalog.Selection
	projectService *projects.Service
	config         *config.Config
	bus            *eventbus.Bus
	log            *logger.Logger

	// State
	state *AppState

	// Callbacks
	stateCallbacks        []func(StateUpdate)
	notificationCallbacks []func(*Notification)

	// Context
	ctx    context.Context
	cancel context.CancelFunc

	logSubID string
}

// NewAppPresenter creates a new application presenter
func NewAppPresenter(
	connMgr *conn.Manager,
	selection *catalog.Selection,
	projectService *projects.Service,
	cfg *config.Config,
	bus *eventbus.Bus,
	log *logger.Logger,
) *AppPresenter {
	return &AppPresenter{
		conn:                  connMgr,
		selection:             selection,
		projectService:        projectService,
		config:                cfg,
		bus:                   bus,
		log:                   log,
		state:                 NewAppState(),
		stateCallbacks:        make([]func(StateUpdate), 0),
		notificationCallbacks: make([]func(*Notification), 0),
	}
}

// NewPresenter is a convenience constructor that returns the Presenter interface
func NewPresenter(
	connMgr *conn.Manager,
	selection *catalog.Selection,
	projectService *projects.Service,
	cfg *config.Config,
	bus *eventbus.Bus,
	log *logger.Logger,
) Presenter {
	return NewAppPresenter(connMgr, selection, projectService, cfg, bus, log)
}

// Initialize sets up the presenter and starts consuming connection
// events. The connection manager must already be started by the caller.
func (p *AppPresenter) Initialize(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.state.SetConnected(p.conn.Connected())

	// Replay log lines broadcast before the presenter attached (startup
	// wiring logs through the same bridge), then follow the live feed.
	for _, ev := range p.bus.GetHistoryByType([]eventbus.EventType{eventbus.EventLogLine}, p.state.Logs.MaxLines) {
		p.appendLogEvent(ev)
	}
	p.logSubID = p.bus.Subscribe([]eventbus.EventType{eventbus.EventLogLine}, p.appendLogEvent)

	go p.pumpEvents()

	p.loadProjects()
	p.rebuildSession()

	return nil
}

// HandleEvent processes a user event
func (p *AppPresenter) HandleEvent(event *Event) error {
	switch event.Type {
	// Navigation
	case EventNavigate:
		return p.handleNavigate(event)
	case EventBack:
		return p.handleNavigate(NavigateEvent(VMDashboard))
	case EventRefresh:
		return p.Refresh()
	case EventQuit:
		return p.Shutdown()

	// Dashboard
	case EventSelectProject:
		return p.handleSelectProject(event)
	case EventOpenProject:
		return p.openProject(event.ProjectID)
	case EventCreateProject:
		return p.handleCreateProject(event)
	case EventFilter:
		return p.handleFilter(event)

	// Questions
	case EventAnswerText:
		return p.handleAnswerText(event)
	case EventPressButton:
		return p.handlePressButton(event)
	case EventCancelAnswer:
		return p.handleCancelAnswer(event)

	// Model selection
	case EventSelectModel:
		return p.handleSelectModel(event)
	case EventCycleProvider:
		return p.handleCycle(event, true)
	case EventCycleModel:
		return p.handleCycle(event, false)

	default:
		return fmt.Errorf("unknown event type: %s", event.Type)
	}
}

// GetViewModel returns the view model for a view type
func (p *AppPresenter) GetViewModel(viewType ViewModelType) (ViewModel, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch viewType {
	case VMDashboard:
		return p.state.Dashboard, nil
	case VMSession:
		return p.state.Session, nil
	case VMLogs:
		return p.state.Logs, nil
	default:
		return nil, fmt.Errorf("unknown view type: %s", viewType)
	}
}

// Subscribe registers a callback for state updates
func (p *AppPresenter) Subscribe(callback func(StateUpdate)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stateCallbacks = append(p.stateCallbacks, callback)
}

// SubscribeNotifications registers a callback for notifications
func (p *AppPresenter) SubscribeNotifications(callback func(*Notification)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.notificationCallbacks = append(p.notificationCallbacks, callback)
}

// Connected reports the current backend link state
func (p *AppPresenter) Connected() bool {
	return p.state.Connected()
}

// Refresh forces a reload of projects and a session rebuild
func (p *AppPresenter) Refresh() error {
	p.loadProjects()
	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())

	p.mu.Lock()
	p.state.LastRefresh = time.Now()
	p.mu.Unlock()
	return nil
}

// Shutdown cleans up resources. The connection manager is stopped by
// its owner, not here.
func (p *AppPresenter) Shutdown() error {
	if p.cancel != nil {
		p.cancel()
	}
	if p.logSubID != "" {
		p.bus.Unsubscribe(p.logSubID)
	}
	return nil
}

// GetState returns the full application state
func (p *AppPresenter) GetState() *AppState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state
}

// ============================================
// Connection event pump
// ============================================

// pumpEvents consumes the connection manager's ordered event stream
// until shutdown
func (p *AppPresenter) pumpEvents() {
	events := p.conn.Events()

	for {
		select {
		case <-p.ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch ev.Kind {
			case conn.EventConnected:
				p.state.SetConnected(true)
				p.notifyStateUpdate(p.state.GetCurrentView(), p.state.GetCurrentViewModel())
			case conn.EventDisconnected:
				p.state.SetConnected(false)
				p.notifyStateUpdate(p.state.GetCurrentView(), p.state.GetCurrentViewModel())
			case conn.EventFrame:
				p.rebuildSession()
				p.notifyStateUpdate(VMSession, p.sessionVM())
			}
		}
	}
}

// ============================================
// Private handlers
// ============================================

func (p *AppPresenter) handleNavigate(event *Event) error {
	viewType := ViewModelType(event.Target)

	switch viewType {
	case VMDashboard, VMSession, VMLogs:
		p.state.SetCurrentView(viewType)
	default:
		return fmt.Errorf("unknown view: %s", event.Target)
	}

	if viewType == VMSession {
		p.rebuildSession()
	}
	p.notifyStateUpdate(viewType, p.state.GetCurrentViewModel())
	return nil
}

func (p *AppPresenter) handleSelectProject(event *Event) error {
	p.mu.Lock()
	dash := cloneDashboard(p.state.Dashboard)
	dash.SelectedIndex = -1
	for i, proj := range dash.Projects {
		if proj.ID == event.ProjectID {
			dash.SelectedIndex = i
			break
		}
	}
	p.state.Dashboard = dash
	p.mu.Unlock()

	p.notifyStateUpdate(VMDashboard, dash)
	return nil
}

// openProject switches the session view to the given project and
// navigates to it
func (p *AppPresenter) openProject(projectID string) error {
	proj, err := p.projectService.GetProject(projectID)
	if err != nil {
		p.notify(NotifyError, "Open Failed", err.Error())
		return err
	}

	p.mu.Lock()
	session := cloneSession(p.state.Session)
	session.ProjectID = proj.ID
	session.ProjectName = proj.Name
	p.state.Session = session
	p.mu.Unlock()

	p.rebuildSession()
	p.state.SetCurrentView(VMSession)
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

func (p *AppPresenter) handleCreateProject(event *Event) error {
	name, ok := event.Value.(string)
	if !ok {
		return fmt.Errorf("invalid project name")
	}

	proj, err := p.projectService.CreateProject(name)
	if err != nil {
		p.notify(NotifyError, "Create Failed", err.Error())
		return err
	}

	// Creation is local; prepend the row instead of re-fetching
	p.mu.Lock()
	dash := cloneDashboard(p.state.Dashboard)
	dash.Projects = append([]ProjectVM{projectToVM(proj)}, dash.Projects...)
	dash.ProjectCount = len(dash.Projects)
	dash.SelectedIndex = 0
	dash.UpdatedAt = time.Now()
	p.state.Dashboard = dash
	p.mu.Unlock()

	p.notifyStateUpdate(VMDashboard, dash)
	p.notify(NotifySuccess, "Project Created", fmt.Sprintf("Created %s", proj.Name))

	return p.openProject(proj.ID)
}

func (p *AppPresenter) handleFilter(event *Event) error {
	text, _ := event.Value.(string)

	p.mu.Lock()
	dash := cloneDashboard(p.state.Dashboard)
	dash.FilterText = text
	p.state.Dashboard = dash
	p.mu.Unlock()

	p.notifyStateUpdate(VMDashboard, dash)
	return nil
}

func (p *AppPresenter) handleAnswerText(event *Event) error {
	questionID := event.Data["question_id"]
	text, _ := event.Value.(string)

	q := p.pendingQuestion(questionID)
	if q == nil {
		return fmt.Errorf("no pending question %q", questionID)
	}
	if q.ButtonsOnly {
		return fmt.Errorf("question %s accepts button answers only", questionID)
	}
	if text == "" && !q.AllowEmpty {
		return fmt.Errorf("question %s does not allow an empty answer", questionID)
	}

	if err := p.conn.SendResponse(protocol.NewTextResponse(questionID, text)); err != nil {
		return err
	}

	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

func (p *AppPresenter) handlePressButton(event *Event) error {
	questionID := event.Data["question_id"]
	key, _ := event.Value.(string)

	q := p.pendingQuestion(questionID)
	if q == nil {
		return fmt.Errorf("no pending question %q", questionID)
	}
	if _, ok := q.Buttons[key]; !ok {
		return fmt.Errorf("question %s has no button %q", questionID, key)
	}

	if err := p.conn.SendResponse(protocol.NewButtonResponse(questionID, key)); err != nil {
		return err
	}

	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

func (p *AppPresenter) handleCancelAnswer(event *Event) error {
	questionID := event.Data["question_id"]

	if p.pendingQuestion(questionID) == nil {
		return fmt.Errorf("no pending question %q", questionID)
	}

	if err := p.conn.SendResponse(protocol.NewCancelResponse(questionID)); err != nil {
		return err
	}

	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

func (p *AppPresenter) handleSelectModel(event *Event) error {
	provider := event.Data["provider"]
	model := event.Data["model"]

	if provider != "" {
		if _, ok := catalog.FindProvider(provider); !ok {
			return fmt.Errorf("unknown provider %q", provider)
		}
		p.selection.SetProvider(provider)
	}
	if model != "" {
		p.selection.SetModel(model)
	}

	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

func (p *AppPresenter) handleCycle(event *Event, provider bool) error {
	delta, ok := event.Value.(int)
	if !ok || delta == 0 {
		delta = 1
	}

	if provider {
		p.selection.CycleProvider(delta)
	} else {
		p.selection.CycleModel(delta)
	}

	p.rebuildSession()
	p.notifyStateUpdate(VMSession, p.sessionVM())
	return nil
}

// pendingQuestion finds a question in the queue by ID
func (p *AppPresenter) pendingQuestion(questionID string) *protocol.Frame {
	for _, q := range p.conn.Questions().Pending() {
		if q.QuestionID == questionID {
			return q
		}
	}
	return nil
}

// ============================================
// View model refresh
// ============================================

// loadProjects fetches the project list in the background. The fetch
// has a simulated delay, so the dashboard shows a loading state until
// it lands.
func (p *AppPresenter) loadProjects() {
	p.mu.Lock()
	dash := cloneDashboard(p.state.Dashboard)
	dash.IsLoading = true
	dash.Error = ""
	p.state.Dashboard = dash
	p.mu.Unlock()

	p.notifyStateUpdate(VMDashboard, dash)

	go func() {
		list, err := p.projectService.FetchProjects(p.ctx)

		p.mu.Lock()
		dash := cloneDashboard(p.state.Dashboard)
		dash.IsLoading = false
		if err != nil {
			if p.ctx.Err() != nil {
				p.mu.Unlock()
				return
			}
			dash.Error = "Failed to load projects."
			p.log.Error("project fetch failed: %v", err)
		} else {
			dash.Projects = make([]ProjectVM, 0, len(list))
			for _, proj := range list {
				dash.Projects = append(dash.Projects, projectToVM(proj))
			}
			dash.ProjectCount = len(dash.Projects)
			if dash.SelectedIndex >= len(dash.Projects) {
				dash.SelectedIndex = len(dash.Projects) - 1
			}
		}
		dash.UpdatedAt = time.Now()
		p.state.Dashboard = dash
		p.state.Initializing = false
		p.mu.Unlock()

		p.notifyStateUpdate(VMDashboard, dash)
		p.bus.Publish(eventbus.NewEvent(eventbus.EventProjectsUpdated).
			WithSource("presenter").
			WithData("count", fmt.Sprintf("%d", len(dash.Projects))))
	}()
}

// rebuildSession rebuilds the session view model from the frame log,
// the pending-question queue, and the model selection
func (p *AppPresenter) rebuildSession() {
	frames := p.conn.Frames()

	p.mu.Lock()
	old := p.state.Session
	session := &SessionVM{
		BaseViewModel: BaseViewModel{VMType: VMSession, UpdatedAt: time.Now()},
		ProjectID:     old.ProjectID,
		ProjectName:   old.ProjectName,
	}
	session.Transcript = BuildTranscript(frames, session.ProjectID)
	session.Progress = BuildProgress(frames, session.ProjectID)
	session.Files = BuildFiles(frames, session.ProjectID)
	session.Question = QuestionToVM(p.conn.Questions().ActiveFor(session.ProjectID))
	session.Selector = p.selectorVM()

	provider := p.selection.Provider()
	session.Provider = provider.Name
	session.Model = p.selection.Model()

	p.state.Session = session
	p.mu.Unlock()
}

func (p *AppPresenter) sessionVM() *SessionVM {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.state.Session
}

func (p *AppPresenter) selectorVM() SelectorVM {
	providers := p.selection.Providers()
	options := make([]ProviderOptionVM, 0, len(providers))
	for _, prov := range providers {
		options = append(options, ProviderOptionVM{
			ID:     prov.ID,
			Name:   prov.Name,
			Models: prov.Models,
		})
	}

	providerIdx, modelIdx := p.selection.Indexes()
	return SelectorVM{
		Providers:     options,
		ProviderIndex: providerIdx,
		ModelIndex:    modelIdx,
	}
}

// appendLogEvent feeds broadcast log lines into the diagnostics view
func (p *AppPresenter) appendLogEvent(event *eventbus.Event) {
	line := LogLineVM{
		TimeStr: stringData(event, "time_str"),
		Source:  stringData(event, "source"),
		Level:   stringData(event, "level"),
		Message: stringData(event, "message"),
	}
	if line.Message == "" {
		return
	}

	p.mu.Lock()
	old := p.state.Logs
	logs := &LogsVM{
		BaseViewModel: BaseViewModel{VMType: VMLogs, UpdatedAt: time.Now()},
		AutoScroll:    old.AutoScroll,
		MaxLines:      old.MaxLines,
	}
	logs.Lines = append(append([]LogLineVM{}, old.Lines...), line)
	if len(logs.Lines) > logs.MaxLines {
		logs.Lines = logs.Lines[len(logs.Lines)-logs.MaxLines:]
	}
	p.state.Logs = logs
	p.mu.Unlock()

	p.notifyStateUpdate(VMLogs, logs)
}

func stringData(event *eventbus.Event, key string) string {
	if v, ok := event.Data[key].(string); ok {
		return v
	}
	return ""
}

// ============================================
// Converters
// ============================================

func projectToVM(proj *projects.Project) ProjectVM {
	return ProjectVM{
		ID:          proj.ID,
		Name:        proj.Name,
		UpdatedStr:  FormatAge(proj.UpdatedAt),
		BranchCount: len(proj.Branches),
		StepCount:   proj.TotalSteps(),
		Workspace:   proj.Workspace,
		GitBranch:   proj.GitBranch,
		GitDirty:    proj.GitDirty,
	}
}

func cloneDashboard(vm *DashboardVM) *DashboardVM {
	clone := *vm
	clone.Projects = append([]ProjectVM{}, vm.Projects...)
	return &clone
}

func cloneSession(vm *SessionVM) *SessionVM {
	clone := *vm
	return &clone
}

// ============================================
// Notify helpers
// ============================================

func (p *AppPresenter) notify(ntype NotificationType, title, message string) {
	n := NewNotification(ntype, title, message)
	p.state.AddNotification(n)

	p.mu.RLock()
	callbacks := p.notificationCallbacks
	p.mu.RUnlock()

	for _, cb := range callbacks {
		cb(n)
	}
}

func (p *AppPresenter) notifyStateUpdate(viewType ViewModelType, vm ViewModel) {
	update := StateUpdate{
		ViewType:  viewType,
		ViewModel: vm,
		Connected: p.state.Connected(),
	}

	p.mu.RLock()
	callbacks := p.stateCallbacks
	p.mu.RUnlock()

	for _, cb := range callbacks {
		cb(update)
	}
}
