package core

import (
	"sync"
	"time"
)

// AppState represents the global application state
type AppState struct {
	mu sync.RWMutex

	// Current view
	CurrentView ViewModelType

	// View models (cached)
	Dashboard *DashboardVM
	Session   *SessionVM
	Logs      *LogsVM

	// Global state
	IsConnected   bool
	Initializing  bool // True while presenter is initializing (project loading)
	LastRefresh   time.Time
	Notifications []*Notification
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		CurrentView:   VMDashboard,
		Initializing:  true, // Until the first project load completes
		Dashboard:     &DashboardVM{BaseViewModel: BaseViewModel{VMType: VMDashboard, IsLoading: true}, SelectedIndex: -1},
		Session:       &SessionVM{BaseViewModel: BaseViewModel{VMType: VMSession}},
		Logs:          &LogsVM{BaseViewModel: BaseViewModel{VMType: VMLogs}, AutoScroll: true, MaxLines: 1000},
		Notifications: make([]*Notification, 0),
	}
}

// GetCurrentViewModel returns the view model for the current view
func (s *AppState) GetCurrentViewModel() ViewModel {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.CurrentView {
	case VMDashboard:
		return s.Dashboard
	case VMSession:
		return s.Session
	case VMLogs:
		return s.Logs
	default:
		return s.Dashboard
	}
}

// UpdateViewModel replaces the cached view model of the matching type
func (s *AppState) UpdateViewModel(vm ViewModel) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch v := vm.(type) {
	case *DashboardVM:
		s.Dashboard = v
	case *SessionVM:
		s.Session = v
	case *LogsVM:
		s.Logs = v
	}
}

// SetCurrentView changes the current view
func (s *AppState) SetCurrentView(view ViewModelType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CurrentView = view
}

// GetCurrentView returns the current view type
func (s *AppState) GetCurrentView() ViewModelType {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.CurrentView
}

// SetConnected updates the link state
func (s *AppState) SetConnected(connected bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IsConnected = connected
}

// Connected returns the link state
func (s *AppState) Connected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.IsConnected
}

// AddNotification adds a notification
func (s *AppState) AddNotification(n *Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = append(s.Notifications, n)
}

// ClearNotifications clears all notifications
func (s *AppState) ClearNotifications() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Notifications = make([]*Notification, 0)
}

// ============================================
// State selectors (for views to query state)
// ============================================

// SelectProjects returns all dashboard projects
func SelectProjects(state *AppState) []ProjectVM {
	state.mu.RLock()
	defer state.mu.RUnlock()
	if state.Dashboard == nil {
		return nil
	}
	return state.Dashboard.Projects
}

// SelectProjectByID returns a project by ID
func SelectProjectByID(state *AppState, projectID string) *ProjectVM {
	state.mu.RLock()
	defer state.mu.RUnlock()
	if state.Dashboard == nil {
		return nil
	}

	for _, p := range state.Dashboard.Projects {
		if p.ID == projectID {
			return &p
		}
	}
	return nil
}

// SelectActiveQuestion returns the session's active question, if any
func SelectActiveQuestion(state *AppState) *QuestionVM {
	state.mu.RLock()
	defer state.mu.RUnlock()
	if state.Session == nil {
		return nil
	}
	return state.Session.Question
}

// SelectNotifications returns all notifications
func SelectNotifications(state *AppState) []*Notification {
	state.mu.RLock()
	defer state.mu.RUnlock()
	return state.Notifications
}
