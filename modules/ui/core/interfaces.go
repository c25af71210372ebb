package core

import (
	"context"
)

// View is the interface that full-screen UI implementations satisfy.
// The Bubble Tea TUI is the primary implementation; the readline
// console is a line client and talks to the connection layer directly.
type View interface {
	// Initialize sets up the view
	Initialize(presenter Presenter) error

	// Run starts the view's main loop (blocking)
	Run(ctx context.Context) error

	// Stop gracefully stops the view
	Stop() error

	// UpdateState updates the view with new state
	UpdateState(update StateUpdate)

	// ShowNotification displays a notification
	ShowNotification(notification *Notification)

	// GetCurrentView returns the current active view type
	GetCurrentView() ViewModelType
}

// Presenter handles the business logic and prepares view models
// It's the bridge between the domain services and the views
type Presenter interface {
	// Initialize sets up the presenter with services
	Initialize(ctx context.Context) error

	// HandleEvent processes a user event
	HandleEvent(event *Event) error

	// GetViewModel returns the current view model for a view type
	GetViewModel(viewType ViewModelType) (ViewModel, error)

	// Subscribe registers a callback for state updates
	Subscribe(callback func(StateUpdate))

	// SubscribeNotifications registers a callback for notifications
	SubscribeNotifications(callback func(*Notification))

	// Connected reports the current backend link state
	Connected() bool

	// Refresh forces a refresh of all data
	Refresh() error

	// Shutdown cleans up resources
	Shutdown() error
}

// ============================================
// View-specific interfaces (optional, for type safety)
// ============================================

// DashboardView is the interface for dashboard-specific functionality
type DashboardView interface {
	View
	SetSelectedProject(projectID string)
	GetSelectedProject() string
}

// SessionView is the interface for session-specific functionality
type SessionView interface {
	View
	SetActiveTab(tab string)
	GetActiveTab() string
}
