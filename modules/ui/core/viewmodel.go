package core

import (
	"fmt"
	"time"
)

// ViewModelType identifies the type of view model
type ViewModelType string

const (
	VMDashboard ViewModelType = "dashboard"
	VMSession   ViewModelType = "session"
	VMLogs      ViewModelType = "logs"
)

// ViewModel is the base interface for all view models
type ViewModel interface {
	Type() ViewModelType
	LastUpdated() time.Time
}

// BaseViewModel provides common fields for all view models
type BaseViewModel struct {
	VMType    ViewModelType `json:"type"`
	UpdatedAt time.Time     `json:"updated_at"`
	Error     string        `json:"error,omitempty"`
	IsLoading bool          `json:"is_loading"`
}

func (vm *BaseViewModel) Type() ViewModelType    { return vm.VMType }
func (vm *BaseViewModel) LastUpdated() time.Time { return vm.UpdatedAt }

// ProjectVM represents a project row on the dashboard
type ProjectVM struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	UpdatedStr  string `json:"updated_str"`
	BranchCount int    `json:"branch_count"`
	StepCount   int    `json:"step_count"`
	Workspace   string `json:"workspace,omitempty"`
	GitBranch   string `json:"git_branch,omitempty"`
	GitDirty    bool   `json:"git_dirty,omitempty"`
}

// EntryKind classifies a transcript entry
type EntryKind string

const (
	EntryMessage  EntryKind = "message"
	EntryStream   EntryKind = "stream"
	EntryQuestion EntryKind = "question"
	EntrySystem   EntryKind = "system"
)

// ChatEntryVM is one line of the session transcript
type ChatEntryVM struct {
	Kind       EntryKind `json:"kind"`
	Source     string    `json:"source,omitempty"`
	SourceName string    `json:"source_name,omitempty"`
	Content    string    `json:"content"`
	Streaming  bool      `json:"streaming,omitempty"`
}

// Line renders the entry as a single labeled line
func (e ChatEntryVM) Line() string {
	if e.SourceName != "" {
		return e.SourceName + ": " + e.Content
	}
	return e.Content
}

// ButtonVM is one answer choice on a question
type ButtonVM struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// QuestionVM is the active question awaiting an answer
type QuestionVM struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Buttons     []ButtonVM `json:"buttons,omitempty"`
	ButtonsOnly bool       `json:"buttons_only"`
	AllowEmpty  bool       `json:"allow_empty"`
	FullScreen  bool       `json:"full_screen"`
	Default     string     `json:"default,omitempty"`
	Placeholder string     `json:"placeholder,omitempty"`
	Hint        string     `json:"hint,omitempty"`
	InitialText string     `json:"initial_text,omitempty"`
	SourceName  string     `json:"source_name,omitempty"`
}

// EpicVM is one epic row on the tasks tab
type EpicVM struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed"`
}

// TaskVM is one task row on the tasks tab
type TaskVM struct {
	Description string `json:"description"`
	Status      string `json:"status"`
}

// ProgressVM aggregates pipeline progress for the tasks tab
type ProgressVM struct {
	Stage       string   `json:"stage,omitempty"`
	Epics       []EpicVM `json:"epics,omitempty"`
	Tasks       []TaskVM `json:"tasks,omitempty"`
	TaskIndex   int      `json:"task_index"`
	TaskCount   int      `json:"task_count"`
	CurrentTask string   `json:"current_task,omitempty"`
	TaskStatus  string   `json:"task_status,omitempty"`
	StepIndex   int      `json:"step_index"`
	StepCount   int      `json:"step_count"`
}

// FileVM is one file row on the files tab
type FileVM struct {
	Path   string `json:"path"`
	Status string `json:"status,omitempty"`
}

// ProviderOptionVM is one provider entry in the model selector
type ProviderOptionVM struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Models []string `json:"models"`
}

// SelectorVM is the model selector state on the settings tab
type SelectorVM struct {
	Providers     []ProviderOptionVM `json:"providers"`
	ProviderIndex int                `json:"provider_index"`
	ModelIndex    int                `json:"model_index"`
}

// LogLineVM is one diagnostics line on the logs view
type LogLineVM struct {
	TimeStr string `json:"time_str"`
	Source  string `json:"source"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

// ============================================
// Composite View Models (for each view/page)
// ============================================

// DashboardVM is the view model for the dashboard
type DashboardVM struct {
	BaseViewModel
	ProjectCount  int         `json:"project_count"`
	Projects      []ProjectVM `json:"projects"`
	SelectedIndex int         `json:"selected_index"`
	FilterText    string      `json:"filter_text"`
}

// SessionVM is the view model for the project session view
type SessionVM struct {
	BaseViewModel
	ProjectID   string        `json:"project_id"`
	ProjectName string        `json:"project_name"`
	Transcript  []ChatEntryVM `json:"transcript"`
	Question    *QuestionVM   `json:"question,omitempty"`
	Progress    ProgressVM    `json:"progress"`
	Files       []FileVM      `json:"files,omitempty"`
	Selector    SelectorVM    `json:"selector"`
	Provider    string        `json:"provider"`
	Model       string        `json:"model"`
}

// LogsVM is the view model for the diagnostics view
type LogsVM struct {
	BaseViewModel
	Lines      []LogLineVM `json:"lines"`
	AutoScroll bool        `json:"auto_scroll"`
	MaxLines   int         `json:"max_lines"`
}

// FormatAge renders a timestamp as a relative age string
func FormatAge(t time.Time) string {
	if t.IsZero() {
		return "never"
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}
