package tui

import (
	"strings"
	"time"

	"pilotdeck/modules/platform/system"
	"pilotdeck/modules/ui/core"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// FocusArea represents which area has focus
type FocusArea int

const (
	FocusSidebar FocusArea = iota
	FocusMain
)

// ViewState holds the saved selection state for a view
type ViewState struct {
	FocusArea    FocusArea
	MainIndex    int
	ScrollOffset int
}

// Session tab names
const (
	sessionTabChat     = "chat"
	sessionTabTasks    = "tasks"
	sessionTabFiles    = "files"
	sessionTabSettings = "settings"
)

var sessionTabOrder = []string{sessionTabChat, sessionTabTasks, sessionTabFiles, sessionTabSettings}

// Model is the main Bubble Tea model for the TUI
type Model struct {
	// Core
	presenter core.Presenter
	state     *core.AppState
	keys      KeyMap
	metrics   *system.MetricsCollector

	// UI state
	width       int
	height      int
	ready       bool
	currentView core.ViewModelType

	// Focus management
	focusArea    FocusArea
	sidebarIndex int // Selected item in sidebar
	mainIndex    int // Selected item in main list
	maxMainItems int // Total items in main list

	// Scroll state
	scrollOffset    int
	visibleMainRows int

	// Per-view state preservation
	viewStates map[core.ViewModelType]*ViewState

	// Dashboard state
	filterText   string
	filterActive bool
	createActive bool
	createInput  textinput.Model

	// Session state
	sessionTab   string
	chatScroll   int // Lines scrolled up from the transcript tail (0 = follow)
	inputActive  bool
	chatInput    textinput.Model
	prefilledFor string // Question ID whose initial text is already loaded

	// Log filtering
	logLevelFilter  string // "", "error", "warn", "info", "debug"
	logSearchText   string
	logSearchActive bool
	logScrollOffset int  // Scroll offset from bottom (0 = follow tail)
	logAutoScroll   bool // Auto-scroll to bottom on new lines

	// Modals
	showHelp bool

	// Components
	help    help.Model
	spinner spinner.Model
	md      *markdownRenderer

	// Notifications
	notifications []*core.Notification
	lastError     string
	lastErrorTime time.Time
}

// NewModel creates the initial model, seeded from the presenter's
// current view models
func NewModel(presenter core.Presenter, metrics *system.MetricsCollector) *Model {
	state := core.NewAppState()
	for _, vt := range []core.ViewModelType{core.VMDashboard, core.VMSession, core.VMLogs} {
		if vm, err := presenter.GetViewModel(vt); err == nil {
			state.UpdateViewModel(vm)
		}
	}
	state.SetConnected(presenter.Connected())

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorSecondary)

	chatInput := textinput.New()
	chatInput.Placeholder = "Type your answer..."
	chatInput.CharLimit = 4096
	chatInput.Prompt = "> "
	chatInput.PromptStyle = lipgloss.NewStyle().Foreground(ColorPrimary)

	createInput := textinput.New()
	createInput.Placeholder = "Project name"
	createInput.CharLimit = 120
	createInput.Prompt = "> "
	createInput.PromptStyle = lipgloss.NewStyle().Foreground(ColorPrimary)

	return &Model{
		presenter:     presenter,
		state:         state,
		keys:          DefaultKeyMap(),
		metrics:       metrics,
		currentView:   core.VMDashboard,
		focusArea:     FocusSidebar,
		viewStates:    make(map[core.ViewModelType]*ViewState),
		sessionTab:    sessionTabChat,
		chatInput:     chatInput,
		createInput:   createInput,
		logAutoScroll: true,
		help:          help.New(),
		spinner:       sp,
	}
}

// ===========================================
// Messages
// ===========================================

type stateUpdateMsg struct {
	update core.StateUpdate
}

type notificationMsg struct {
	notification *core.Notification
}

type refreshMsg struct{}

type errMsg struct {
	err error
}

func (e errMsg) Error() string { return e.err.Error() }

type tickMsg time.Time

type selectProjectMsg struct {
	projectID string
}

type setTabMsg struct {
	tab string
}

// tickCmd drives the clock and metrics strip redraw
func tickCmd() tea.Cmd {
	return tea.Tick(2*time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// ===========================================
// Bubble Tea interface
// ===========================================

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.refreshData,
		tickCmd(),
		textinput.Blink,
	)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.visibleMainRows = max(1, m.height-12)
		m.help.Width = msg.Width
		m.md = newMarkdownRenderer(m.chatContentWidth())
		m.chatInput.Width = max(20, m.chatContentWidth()-4)
		m.updateItemCounts()

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.MouseMsg:
		if cmd := m.handleMouse(msg); cmd != nil {
			cmds = append(cmds, cmd)
		}

	case stateUpdateMsg:
		m.handleStateUpdate(msg.update)

	case notificationMsg:
		m.handleNotification(msg.notification)

	case refreshMsg:
		m.updateItemCounts()

	case errMsg:
		m.lastError = msg.err.Error()
		m.lastErrorTime = time.Now()

	case tickMsg:
		cmds = append(cmds, tickCmd())

	case selectProjectMsg:
		m.selectProjectByID(msg.projectID)

	case setTabMsg:
		m.setSessionTab(msg.tab)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// View renders the UI
func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	header := m.renderHeader()
	sidebar := m.renderSidebar()
	main := m.renderMainContent()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, main)
	footer := m.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

// ===========================================
// Key handling
// ===========================================

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Text entry modes capture keys first
	if m.createActive {
		return m.handleCreateInput(msg)
	}
	if m.inputActive {
		return m.handleChatInput(msg)
	}
	if m.filterActive {
		return m.handleFilterInput(msg)
	}
	if m.logSearchActive {
		return m.handleLogsSearchInput(msg)
	}

	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true

	case key.Matches(msg, m.keys.Tab):
		m.cycleFocus()

	case key.Matches(msg, m.keys.Escape):
		m.handleEscape()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refreshData

	case key.Matches(msg, m.keys.Up):
		return m, m.navigate(-1)

	case key.Matches(msg, m.keys.Down):
		return m, m.navigate(1)

	case key.Matches(msg, m.keys.Left):
		return m, m.navigateHoriz(-1)

	case key.Matches(msg, m.keys.Right):
		return m, m.navigateHoriz(1)

	case key.Matches(msg, m.keys.PageUp):
		return m, m.navigate(-m.pageSize())

	case key.Matches(msg, m.keys.PageDown):
		return m, m.navigate(m.pageSize())

	case key.Matches(msg, m.keys.Home):
		m.navigateHome()

	case key.Matches(msg, m.keys.End):
		m.navigateEnd()

	case key.Matches(msg, m.keys.Enter):
		return m.handleEnter()

	default:
		return m.handleActionKey(msg)
	}

	return m, nil
}

// handleActionKey handles view jumps and per-view shortcuts
func (m *Model) handleActionKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	s := msg.String()

	// Global view jumps (uppercase to avoid collisions with list keys)
	switch s {
	case "D":
		return m, m.selectView(core.VMDashboard)
	case "P":
		return m, m.selectView(core.VMSession)
	case "L":
		return m, m.selectView(core.VMLogs)
	}

	switch m.currentView {
	case core.VMDashboard:
		switch s {
		case "n":
			return m, m.openCreateDialog()
		case "/":
			m.filterActive = true
		}

	case core.VMSession:
		// Number keys answer the pending question's buttons
		if m.sessionTab == sessionTabChat && len(s) == 1 && s[0] >= '1' && s[0] <= '9' {
			return m, m.pressQuestionButton(int(s[0] - '1'))
		}
		switch s {
		case "c":
			m.setSessionTab(sessionTabChat)
		case "t":
			m.setSessionTab(sessionTabTasks)
		case "f":
			m.setSessionTab(sessionTabFiles)
		case "s":
			m.setSessionTab(sessionTabSettings)
		case "]":
			m.cycleSessionTab(1)
		case "[":
			m.cycleSessionTab(-1)
		case "i":
			return m, m.activateChatInput()
		case "x":
			return m, m.cancelQuestion()
		}

	case core.VMLogs:
		m.handleLogsShortcut(s)
	}

	return m, nil
}

// handleEnter acts on the focused element
func (m *Model) handleEnter() (tea.Model, tea.Cmd) {
	if m.focusArea == FocusSidebar {
		return m, m.selectView(sidebarViews[m.sidebarIndex].vtype)
	}

	switch m.currentView {
	case core.VMDashboard:
		rows := m.filteredProjects()
		if m.mainIndex >= 0 && m.mainIndex < len(rows) {
			cmds := []tea.Cmd{
				m.sendEvent(core.OpenProjectEvent(rows[m.mainIndex].ID)),
				m.selectView(core.VMSession),
			}
			m.setSessionTab(sessionTabChat)
			return m, tea.Batch(cmds...)
		}

	case core.VMSession:
		if m.sessionTab == sessionTabChat {
			q := m.activeQuestion()
			if q == nil {
				return m, nil
			}
			if q.ButtonsOnly {
				// Enter picks the default button when the backend named one
				if q.Default != "" {
					return m, m.sendEvent(core.ButtonEvent(q.ID, q.Default))
				}
				return m, nil
			}
			return m, m.activateChatInput()
		}
	}

	return m, nil
}

// handleEscape backs out of the current context
func (m *Model) handleEscape() {
	switch {
	case m.showHelp:
		m.showHelp = false
	case m.filterText != "" && m.currentView == core.VMDashboard:
		m.filterText = ""
		m.updateItemCounts()
	case m.logSearchText != "" && m.currentView == core.VMLogs:
		m.logSearchText = ""
	case m.focusArea == FocusMain:
		m.focusArea = FocusSidebar
	}
}

func (m *Model) cycleFocus() {
	if m.focusArea == FocusSidebar {
		m.focusArea = FocusMain
	} else {
		m.focusArea = FocusSidebar
	}
}

// ===========================================
// Navigation
// ===========================================

// navigate moves the selection or scrolls, depending on view and focus
func (m *Model) navigate(delta int) tea.Cmd {
	if m.focusArea == FocusSidebar {
		m.sidebarIndex = clamp(m.sidebarIndex+delta, 0, len(sidebarViews)-1)
		return nil
	}

	switch m.currentView {
	case core.VMDashboard:
		m.moveMain(delta, len(m.filteredProjects()))

	case core.VMSession:
		switch m.sessionTab {
		case sessionTabChat:
			m.chatScroll = max(0, m.chatScroll-delta) // Up scrolls back, down toward the tail
		case sessionTabTasks:
			m.scrollOffset = max(0, m.scrollOffset+delta)
		case sessionTabFiles:
			m.moveMain(delta, len(m.sessionVM().Files))
		case sessionTabSettings:
			return m.sendEvent(core.NewEvent(core.EventCycleModel).WithValue(delta))
		}

	case core.VMLogs:
		if delta < 0 {
			m.logScrollOffset -= delta
			m.logAutoScroll = false
		} else {
			m.logScrollOffset = max(0, m.logScrollOffset-delta)
			if m.logScrollOffset == 0 {
				m.logAutoScroll = true
			}
		}
	}

	return nil
}

// navigateHoriz moves focus between panels, or cycles the provider on
// the settings tab
func (m *Model) navigateHoriz(delta int) tea.Cmd {
	if m.currentView == core.VMSession && m.focusArea == FocusMain && m.sessionTab == sessionTabSettings {
		return m.sendEvent(core.NewEvent(core.EventCycleProvider).WithValue(delta))
	}

	if delta > 0 && m.focusArea == FocusSidebar {
		m.focusArea = FocusMain
	} else if delta < 0 && m.focusArea == FocusMain {
		m.focusArea = FocusSidebar
	}
	return nil
}

func (m *Model) navigateHome() {
	if m.focusArea == FocusSidebar {
		m.sidebarIndex = 0
		return
	}
	switch m.currentView {
	case core.VMDashboard:
		m.mainIndex = 0
		m.scrollOffset = 0
	case core.VMSession:
		if m.sessionTab == sessionTabChat {
			m.chatScroll = 1 << 20 // Renderer clamps to the top
		} else {
			m.mainIndex = 0
			m.scrollOffset = 0
		}
	case core.VMLogs:
		m.logScrollOffset = 1 << 20
		m.logAutoScroll = false
	}
}

func (m *Model) navigateEnd() {
	if m.focusArea == FocusSidebar {
		m.sidebarIndex = len(sidebarViews) - 1
		return
	}
	switch m.currentView {
	case core.VMDashboard:
		m.mainIndex = max(0, len(m.filteredProjects())-1)
		m.ensureVisible()
	case core.VMSession:
		if m.sessionTab == sessionTabChat {
			m.chatScroll = 0
		} else {
			m.mainIndex = max(0, m.maxMainItems-1)
			m.ensureVisible()
		}
	case core.VMLogs:
		m.logScrollOffset = 0
		m.logAutoScroll = true
	}
}

// moveMain moves the main list selection and keeps it visible
func (m *Model) moveMain(delta, count int) {
	if count == 0 {
		m.mainIndex = 0
		return
	}
	m.mainIndex = clamp(m.mainIndex+delta, 0, count-1)
	m.ensureVisible()
}

// ensureVisible adjusts the scroll offset so the selection stays on screen
func (m *Model) ensureVisible() {
	if m.visibleMainRows <= 0 {
		return
	}
	if m.mainIndex < m.scrollOffset {
		m.scrollOffset = m.mainIndex
	}
	if m.mainIndex >= m.scrollOffset+m.visibleMainRows {
		m.scrollOffset = m.mainIndex - m.visibleMainRows + 1
	}
}

func (m *Model) pageSize() int {
	return max(1, m.visibleMainRows-1)
}

// handleMouse scrolls the chat and log views with the wheel
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	switch msg.Type {
	case tea.MouseWheelUp:
		return m.navigate(-3)
	case tea.MouseWheelDown:
		return m.navigate(3)
	}
	return nil
}

// ===========================================
// View switching
// ===========================================

// selectView switches the active view, preserving selection state
func (m *Model) selectView(viewType core.ViewModelType) tea.Cmd {
	if viewType == m.currentView {
		m.focusArea = FocusMain
		return nil
	}

	m.saveViewState()
	m.currentView = viewType
	m.state.SetCurrentView(viewType)
	m.restoreViewState()
	m.focusArea = FocusMain
	for i, v := range sidebarViews {
		if v.vtype == viewType {
			m.sidebarIndex = i
		}
	}
	m.updateItemCounts()

	return m.sendEvent(core.NavigateEvent(viewType))
}

func (m *Model) saveViewState() {
	m.viewStates[m.currentView] = &ViewState{
		FocusArea:    m.focusArea,
		MainIndex:    m.mainIndex,
		ScrollOffset: m.scrollOffset,
	}
}

func (m *Model) restoreViewState() {
	if vs, ok := m.viewStates[m.currentView]; ok {
		m.mainIndex = vs.MainIndex
		m.scrollOffset = vs.ScrollOffset
	} else {
		m.mainIndex = 0
		m.scrollOffset = 0
	}
}

// setSessionTab switches the session sub-view
func (m *Model) setSessionTab(tab string) {
	for _, t := range sessionTabOrder {
		if t == tab {
			if m.sessionTab != tab {
				m.sessionTab = tab
				m.mainIndex = 0
				m.scrollOffset = 0
				m.updateItemCounts()
			}
			return
		}
	}
}

func (m *Model) cycleSessionTab(delta int) {
	for i, t := range sessionTabOrder {
		if t == m.sessionTab {
			next := ((i+delta)%len(sessionTabOrder) + len(sessionTabOrder)) % len(sessionTabOrder)
			m.setSessionTab(sessionTabOrder[next])
			return
		}
	}
}

// ===========================================
// Question interaction
// ===========================================

// activeQuestion returns the pending question, if any
func (m *Model) activeQuestion() *core.QuestionVM {
	return core.SelectActiveQuestion(m.state)
}

// pressQuestionButton answers the pending question with the numbered button
func (m *Model) pressQuestionButton(idx int) tea.Cmd {
	q := m.activeQuestion()
	if q == nil || idx < 0 || idx >= len(q.Buttons) {
		return nil
	}
	return m.sendEvent(core.ButtonEvent(q.ID, q.Buttons[idx].Key))
}

// activateChatInput opens the text input for the pending question
func (m *Model) activateChatInput() tea.Cmd {
	q := m.activeQuestion()
	if q == nil {
		m.flashError("no question is waiting for an answer")
		return nil
	}
	if q.ButtonsOnly {
		m.flashError("this question accepts button answers only")
		return nil
	}

	if q.Placeholder != "" {
		m.chatInput.Placeholder = q.Placeholder
	} else {
		m.chatInput.Placeholder = "Type your answer..."
	}
	if m.prefilledFor != q.ID {
		m.chatInput.SetValue(q.InitialText)
		m.prefilledFor = q.ID
	}
	m.inputActive = true
	m.chatScroll = 0
	return m.chatInput.Focus()
}

// cancelQuestion dismisses the pending question
func (m *Model) cancelQuestion() tea.Cmd {
	q := m.activeQuestion()
	if q == nil {
		m.flashError("no question is waiting for an answer")
		return nil
	}
	m.inputActive = false
	m.chatInput.Blur()
	m.chatInput.Reset()
	m.prefilledFor = ""
	return m.sendEvent(core.CancelEvent(q.ID))
}

// handleChatInput processes keys while the answer input is focused
func (m *Model) handleChatInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.inputActive = false
		m.chatInput.Blur()
		return m, nil

	case "enter":
		q := m.activeQuestion()
		if q == nil {
			m.inputActive = false
			m.chatInput.Blur()
			return m, nil
		}
		text := m.chatInput.Value()
		if text == "" && !q.AllowEmpty {
			m.flashError("this question does not accept an empty answer")
			return m, nil
		}
		m.inputActive = false
		m.chatInput.Blur()
		m.chatInput.Reset()
		m.prefilledFor = ""
		return m, m.sendEvent(core.AnswerEvent(q.ID, text))

	default:
		var cmd tea.Cmd
		m.chatInput, cmd = m.chatInput.Update(msg)
		return m, cmd
	}
}

// ===========================================
// Dialogs and inline inputs
// ===========================================

// openCreateDialog opens the new-project dialog
func (m *Model) openCreateDialog() tea.Cmd {
	m.createActive = true
	m.createInput.Reset()
	return m.createInput.Focus()
}

// handleCreateInput processes keys while the new-project dialog is open
func (m *Model) handleCreateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.createActive = false
		m.createInput.Blur()
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.createInput.Value())
		m.createActive = false
		m.createInput.Blur()
		if name == "" {
			return m, nil
		}
		return m, m.sendEvent(core.CreateProjectEvent(name))

	default:
		var cmd tea.Cmd
		m.createInput, cmd = m.createInput.Update(msg)
		return m, cmd
	}
}

// handleFilterInput processes keys while the dashboard filter is active
func (m *Model) handleFilterInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filterActive = false
		m.filterText = ""
		m.updateItemCounts()
		return m, m.sendEvent(core.FilterEvent(""))

	case "enter":
		m.filterActive = false
		return m, m.sendEvent(core.FilterEvent(m.filterText))

	case "backspace":
		if len(m.filterText) > 0 {
			runes := []rune(m.filterText)
			m.filterText = string(runes[:len(runes)-1])
			m.updateItemCounts()
		}

	default:
		if len(msg.Runes) == 1 {
			m.filterText += string(msg.Runes)
			m.mainIndex = 0
			m.scrollOffset = 0
			m.updateItemCounts()
		}
	}
	return m, nil
}

// handleLogsSearchInput processes keys while the log search is active
func (m *Model) handleLogsSearchInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.logSearchActive = false
		m.logSearchText = ""

	case "enter":
		m.logSearchActive = false

	case "backspace":
		if len(m.logSearchText) > 0 {
			runes := []rune(m.logSearchText)
			m.logSearchText = string(runes[:len(runes)-1])
		}

	default:
		if len(msg.Runes) == 1 {
			m.logSearchText += string(msg.Runes)
		}
	}
	return m, nil
}

// handleLogsShortcut applies the level filter and scroll shortcuts
func (m *Model) handleLogsShortcut(s string) {
	switch s {
	case "a":
		m.logLevelFilter = ""
	case "e":
		m.logLevelFilter = "error"
	case "w":
		m.logLevelFilter = "warn"
	case "i":
		m.logLevelFilter = "info"
	case "d":
		m.logLevelFilter = "debug"
	case "/":
		m.logSearchActive = true
	case " ":
		m.logAutoScroll = !m.logAutoScroll
		if m.logAutoScroll {
			m.logScrollOffset = 0
		}
	}
}

// ===========================================
// Presenter plumbing
// ===========================================

// sendEvent wraps a presenter event into a command, surfacing errors
// in the footer
func (m *Model) sendEvent(event *core.Event) tea.Cmd {
	return func() tea.Msg {
		if err := m.presenter.HandleEvent(event); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// refreshData asks the presenter to refresh all view models
func (m *Model) refreshData() tea.Msg {
	if err := m.presenter.Refresh(); err != nil {
		return errMsg{err}
	}
	return refreshMsg{}
}

// handleStateUpdate applies a view model snapshot from the presenter
func (m *Model) handleStateUpdate(update core.StateUpdate) {
	if update.ViewModel != nil {
		m.state.UpdateViewModel(update.ViewModel)
	}
	m.state.SetConnected(update.Connected)
	m.updateItemCounts()
}

// handleNotification records a notification for the footer
func (m *Model) handleNotification(n *core.Notification) {
	if n == nil {
		return
	}
	m.notifications = append(m.notifications, n)
	if len(m.notifications) > 5 {
		m.notifications = m.notifications[len(m.notifications)-5:]
	}
}

// updateItemCounts recomputes list sizes and clamps the selection
func (m *Model) updateItemCounts() {
	switch m.currentView {
	case core.VMDashboard:
		m.maxMainItems = len(m.filteredProjects())
	case core.VMSession:
		if m.sessionTab == sessionTabFiles {
			m.maxMainItems = len(m.sessionVM().Files)
		} else {
			m.maxMainItems = 0
		}
	default:
		m.maxMainItems = 0
	}

	if m.maxMainItems == 0 {
		m.mainIndex = 0
	} else if m.mainIndex >= m.maxMainItems {
		m.mainIndex = m.maxMainItems - 1
	}
}

func (m *Model) flashError(text string) {
	m.lastError = text
	m.lastErrorTime = time.Now()
}

// ===========================================
// View model access
// ===========================================

// dashboardVM returns the dashboard view model, never nil
func (m *Model) dashboardVM() *core.DashboardVM {
	if m.state.Dashboard != nil {
		return m.state.Dashboard
	}
	return &core.DashboardVM{BaseViewModel: core.BaseViewModel{VMType: core.VMDashboard}}
}

// sessionVM returns the session view model, never nil
func (m *Model) sessionVM() *core.SessionVM {
	if m.state.Session != nil {
		return m.state.Session
	}
	return &core.SessionVM{BaseViewModel: core.BaseViewModel{VMType: core.VMSession}}
}

// logsVM returns the logs view model, never nil
func (m *Model) logsVM() *core.LogsVM {
	if m.state.Logs != nil {
		return m.state.Logs
	}
	return &core.LogsVM{BaseViewModel: core.BaseViewModel{VMType: core.VMLogs}}
}

// filteredProjects returns dashboard rows matching the filter text
func (m *Model) filteredProjects() []core.ProjectVM {
	projects := m.dashboardVM().Projects
	if m.filterText == "" {
		return projects
	}
	needle := strings.ToLower(m.filterText)
	filtered := make([]core.ProjectVM, 0, len(projects))
	for _, p := range projects {
		if strings.Contains(strings.ToLower(p.Name), needle) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// selectProjectByID moves the dashboard selection to the given project
func (m *Model) selectProjectByID(projectID string) {
	m.filterText = ""
	for i, p := range m.dashboardVM().Projects {
		if p.ID == projectID {
			m.mainIndex = i
			m.ensureVisible()
			return
		}
	}
}

// selectedProjectID returns the ID of the selected dashboard row
func (m *Model) selectedProjectID() string {
	rows := m.filteredProjects()
	if m.mainIndex >= 0 && m.mainIndex < len(rows) {
		return rows[m.mainIndex].ID
	}
	return ""
}

// chatContentWidth is the inner width available to transcript text
func (m *Model) chatContentWidth() int {
	return max(20, m.width-getSidebarWidth()-8)
}
