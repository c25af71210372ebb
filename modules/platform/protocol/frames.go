package protocol

import (
	"encoding/json"
	"fmt"
)

// MessageType identifies the type of frame
type MessageType string

const (
	// Client -> Server
	MsgResponse    MessageType = "response"     // Answer to a pending question
	MsgModelChange MessageType = "model_change" // Provider/model selection

	// Server -> Client
	MsgStream              MessageType = "stream"                // Streamed chunk of agent output
	MsgMessage             MessageType = "message"               // Complete agent message
	MsgQuestion            MessageType = "question"              // Question requiring user input
	MsgKeyExpired          MessageType = "key_expired"           // API key expired
	MsgAppFinished         MessageType = "app_finished"          // App build finished
	MsgFeatureFinished     MessageType = "feature_finished"      // Feature build finished
	MsgProjectStage        MessageType = "project_stage"         // Pipeline stage change
	MsgEpicsAndTasks       MessageType = "epics_and_tasks"       // Full epic/task breakdown
	MsgTaskProgress        MessageType = "task_progress"         // Task progress update
	MsgStepProgress        MessageType = "step_progress"         // Step progress within a task
	MsgModifiedFiles       MessageType = "modified_files"        // Files changed by the agent
	MsgDataAboutLogs       MessageType = "data_about_logs"       // Log metadata
	MsgRunCommand          MessageType = "run_command"           // Command the agent wants run
	MsgAppLink             MessageType = "app_link"              // URL of the running app
	MsgOpenEditor          MessageType = "open_editor"           // Open a file in the editor
	MsgProjectRoot         MessageType = "project_root"          // Project root path
	MsgProjectStats        MessageType = "project_stats"         // Project statistics
	MsgTestInstructions    MessageType = "test_instructions"     // Manual test instructions
	MsgKnowledgeBaseUpdate MessageType = "knowledge_base_update" // Knowledge base refresh
	MsgFileStatus          MessageType = "file_status"           // Per-file processing status
	MsgBugHunterStatus     MessageType = "bug_hunter_status"     // Bug hunter state
	MsgGenerateDiff        MessageType = "generate_diff"         // Show a diff
	MsgCloseDiff           MessageType = "close_diff"            // Close the diff view
	MsgLoadingFinished     MessageType = "loading_finished"      // Project finished loading
	MsgProjectDescription  MessageType = "project_description"   // Project description text
	MsgFeaturesList        MessageType = "features_list"         // Implemented features
	MsgImportProject       MessageType = "import_project"        // Import an existing project
)

// Epic is one epic in an epics_and_tasks frame
type Epic struct {
	Name        string `json:"name,omitempty"`
	Source      string `json:"source,omitempty"`
	Description string `json:"description,omitempty"`
	Completed   bool   `json:"completed,omitempty"`
}

// Task is one task in an epics_and_tasks or task_progress frame
type Task struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
}

// Frame is a single message on the wire. The backend sends flat JSON
// objects where the set of populated fields depends on Type; fields
// not used by a given type are simply absent.
type Frame struct {
	Type MessageType `json:"type"`

	// stream / message content
	Chunk   string `json:"chunk,omitempty"`
	Message string `json:"message,omitempty"`

	// question fields
	QuestionID  string            `json:"question_id,omitempty"`
	Question    string            `json:"question,omitempty"`
	Buttons     map[string]string `json:"buttons,omitempty"`
	Default     string            `json:"default,omitempty"`
	ButtonsOnly bool              `json:"buttons_only,omitempty"`
	AllowEmpty  bool              `json:"allow_empty,omitempty"`
	FullScreen  bool              `json:"full_screen,omitempty"`
	Hint        string            `json:"hint,omitempty"`
	Verbose     bool              `json:"verbose,omitempty"`
	InitialText string            `json:"initial_text,omitempty"`
	Placeholder string            `json:"placeholder,omitempty"`

	// sender attribution
	Source            string `json:"source,omitempty"`
	SourceDisplayName string `json:"source_display_name,omitempty"`
	ProjectStateID    string `json:"project_state_id,omitempty"`
	ExtraInfo         string `json:"extra_info,omitempty"`

	// epics_and_tasks
	Epics []Epic `json:"epics,omitempty"`
	Tasks []Task `json:"tasks,omitempty"`

	// task_progress
	Index       int    `json:"index,omitempty"`
	NTasks      int    `json:"n_tasks,omitempty"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status,omitempty"`
	SourceIndex int    `json:"source_index,omitempty"`

	// step_progress
	NSteps     int             `json:"n_steps,omitempty"`
	Step       json.RawMessage `json:"step,omitempty"`
	TaskSource string          `json:"task_source,omitempty"`

	// project_stage, project_stats and other data-bearing frames
	Data json.RawMessage `json:"data,omitempty"`

	// modified_files
	Files json.RawMessage `json:"modified_files,omitempty"`

	// run_command / app_link / open_editor / project_root
	RunCommand string `json:"run_command,omitempty"`
	AppLink    string `json:"app_link,omitempty"`
	Path       string `json:"path,omitempty"`
	Line       int    `json:"line,omitempty"`
}

// ParseFrame decodes a single frame from the wire. Frames without a
// type field are rejected; unknown types are passed through so the
// caller can log them.
func ParseFrame(data []byte) (*Frame, error) {
	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}
	if frame.Type == "" {
		return nil, fmt.Errorf("frame missing type field")
	}
	return &frame, nil
}

// DisplaySource returns the human-readable sender of a frame,
// falling back to the raw source name
func (f *Frame) DisplaySource() string {
	if f.SourceDisplayName != "" {
		return f.SourceDisplayName
	}
	return f.Source
}

// IsQuestion reports whether the frame asks for user input
func (f *Frame) IsQuestion() bool {
	return f.Type == MsgQuestion
}
