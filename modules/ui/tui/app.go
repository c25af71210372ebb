package tui

import (
	"context"
	"sync"

	"pilotdeck/modules/platform/system"
	"pilotdeck/modules/ui/core"

	tea "github.com/charmbracelet/bubbletea"
)

// TUIView implements the core.View interface for Bubble Tea TUI
type TUIView struct {
	mu             sync.RWMutex
	presenter      core.Presenter
	program        *tea.Program
	model          *Model
	ctx            context.Context
	cancel         context.CancelFunc
	metrics        *system.MetricsCollector
	startView      core.ViewModelType // View to open on startup (deep link)
	pendingUpdates []core.StateUpdate // Buffered state updates if received before program starts
}

// NewTUIView creates a new TUI view. The metrics collector is optional;
// when nil the footer omits the resource strip.
func NewTUIView(metrics *system.MetricsCollector) *TUIView {
	return &TUIView{metrics: metrics}
}

// SetStartView sets the view to open when the program starts.
// Used by the --project deep link to land directly on the session view.
func (v *TUIView) SetStartView(viewType core.ViewModelType) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.startView = viewType
}

// Initialize sets up the view with a presenter
func (v *TUIView) Initialize(presenter core.Presenter) error {
	v.mu.Lock()
	v.presenter = presenter
	v.model = NewModel(presenter, v.metrics)
	v.mu.Unlock()

	// Subscribe to state updates (must be outside lock - callback may call UpdateState)
	presenter.Subscribe(func(update core.StateUpdate) {
		v.UpdateState(update)
	})

	// Subscribe to notifications
	presenter.SubscribeNotifications(func(n *core.Notification) {
		v.ShowNotification(n)
	})

	return nil
}

// Run starts the TUI main loop (blocking)
func (v *TUIView) Run(ctx context.Context) error {
	v.mu.Lock()
	v.ctx, v.cancel = context.WithCancel(ctx)
	pendingUpdates := v.pendingUpdates
	v.pendingUpdates = nil
	if v.startView != "" {
		v.model.currentView = v.startView
	}
	v.program = tea.NewProgram(
		v.model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	program := v.program
	metrics := v.metrics
	v.mu.Unlock()

	if metrics != nil {
		metrics.Start()
		defer metrics.Stop()
	}

	// Channel to receive final model and error from program.Run()
	type runResult struct {
		model tea.Model
		err   error
	}
	resultCh := make(chan runResult, 1)
	go func() {
		finalModel, err := program.Run()
		resultCh <- runResult{model: finalModel, err: err}
	}()

	// Apply pending state updates after program starts
	for _, update := range pendingUpdates {
		program.Send(stateUpdateMsg{update: update})
	}

	// Wait for either context cancellation or program exit
	select {
	case <-v.ctx.Done():
		v.program.Quit()
		return v.ctx.Err()
	case result := <-resultCh:
		v.mu.Lock()
		if finalModel, ok := result.model.(*Model); ok {
			v.model = finalModel
		}
		v.mu.Unlock()
		return result.err
	}
}

// Stop gracefully stops the TUI
func (v *TUIView) Stop() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.cancel != nil {
		v.cancel()
	}
	if v.program != nil {
		v.program.Quit()
	}
	return nil
}

// UpdateState updates the view with new state from the presenter
func (v *TUIView) UpdateState(update core.StateUpdate) {
	v.mu.Lock()
	program := v.program
	if program == nil {
		// Buffer if program not started yet
		v.pendingUpdates = append(v.pendingUpdates, update)
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	program.Send(stateUpdateMsg{update: update})
}

// ShowNotification displays a notification
func (v *TUIView) ShowNotification(notification *core.Notification) {
	v.mu.RLock()
	program := v.program
	v.mu.RUnlock()

	if program != nil {
		program.Send(notificationMsg{notification: notification})
	}
}

// GetCurrentView returns the current active view type
func (v *TUIView) GetCurrentView() core.ViewModelType {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.model != nil {
		return v.model.currentView
	}
	return core.VMDashboard
}

// ===========================================
// DashboardView / SessionView implementation
// ===========================================

// SetSelectedProject moves the dashboard selection to the given project
func (v *TUIView) SetSelectedProject(projectID string) {
	v.mu.Lock()
	program := v.program
	if program == nil {
		if v.model != nil {
			v.model.selectProjectByID(projectID)
		}
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	program.Send(selectProjectMsg{projectID: projectID})
}

// GetSelectedProject returns the ID of the selected dashboard row
func (v *TUIView) GetSelectedProject() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.model != nil {
		return v.model.selectedProjectID()
	}
	return ""
}

// SetActiveTab switches the session view to the named tab
func (v *TUIView) SetActiveTab(tab string) {
	v.mu.Lock()
	program := v.program
	if program == nil {
		if v.model != nil {
			v.model.setSessionTab(tab)
		}
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	program.Send(setTabMsg{tab: tab})
}

// GetActiveTab returns the active session tab name
func (v *TUIView) GetActiveTab() string {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.model != nil {
		return v.model.sessionTab
	}
	return sessionTabChat
}
