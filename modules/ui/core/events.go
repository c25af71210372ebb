package core

// EventType identifies the type of UI event
type EventType string

const (
	// Navigation events
	EventNavigate EventType = "navigate"
	EventBack     EventType = "back"
	EventRefresh  EventType = "refresh"
	EventQuit     EventType = "quit"

	// Dashboard events
	EventSelectProject EventType = "select_project"
	EventOpenProject   EventType = "open_project"
	EventCreateProject EventType = "create_project"
	EventFilter        EventType = "filter"

	// Question events
	EventAnswerText   EventType = "answer_text"
	EventPressButton  EventType = "press_button"
	EventCancelAnswer EventType = "cancel_answer"

	// Model selection events
	EventSelectModel   EventType = "select_model"
	EventCycleProvider EventType = "cycle_provider"
	EventCycleModel    EventType = "cycle_model"
)

// Event represents a user action in the UI
type Event struct {
	Type      EventType         `json:"type"`
	Target    string            `json:"target,omitempty"` // View or element target
	ProjectID string            `json:"project_id,omitempty"`
	Value     interface{}       `json:"value,omitempty"` // Generic payload
	Data      map[string]string `json:"data,omitempty"`  // Additional data
}

// NewEvent creates a new event
func NewEvent(eventType EventType) *Event {
	return &Event{
		Type: eventType,
		Data: make(map[string]string),
	}
}

// WithTarget sets the target
func (e *Event) WithTarget(target string) *Event {
	e.Target = target
	return e
}

// WithProject sets the project ID
func (e *Event) WithProject(projectID string) *Event {
	e.ProjectID = projectID
	return e
}

// WithValue sets the value
func (e *Event) WithValue(value interface{}) *Event {
	e.Value = value
	return e
}

// WithData adds data key-value pairs
func (e *Event) WithData(key, value string) *Event {
	if e.Data == nil {
		e.Data = make(map[string]string)
	}
	e.Data[key] = value
	return e
}

// ============================================
// Notification events (from presenter to view)
// ============================================

// NotificationType identifies the type of notification
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifySuccess NotificationType = "success"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
)

// Notification represents a message to display to the user
type Notification struct {
	Type        NotificationType `json:"type"`
	Title       string           `json:"title"`
	Message     string           `json:"message"`
	Duration    int              `json:"duration"` // seconds, 0 = persistent
	Dismissable bool             `json:"dismissable"`
}

// NewNotification creates a new notification
func NewNotification(ntype NotificationType, title, message string) *Notification {
	return &Notification{
		Type:        ntype,
		Title:       title,
		Message:     message,
		Duration:    5,
		Dismissable: true,
	}
}

// ============================================
// State update events (from presenter to view)
// ============================================

// StateUpdate represents a state change notification
type StateUpdate struct {
	ViewType  ViewModelType `json:"view_type"`
	ViewModel ViewModel     `json:"view_model"`
	Connected bool          `json:"connected"` // Current link state for the header chip
}

// ============================================
// Common event helpers
// ============================================

// NavigateEvent creates a navigation event
func NavigateEvent(target ViewModelType) *Event {
	return NewEvent(EventNavigate).WithTarget(string(target))
}

// OpenProjectEvent creates an open-project event
func OpenProjectEvent(projectID string) *Event {
	return NewEvent(EventOpenProject).WithProject(projectID)
}

// CreateProjectEvent creates a create-project event
func CreateProjectEvent(name string) *Event {
	return NewEvent(EventCreateProject).WithValue(name)
}

// AnswerEvent creates a free-text answer event
func AnswerEvent(questionID, text string) *Event {
	return NewEvent(EventAnswerText).WithData("question_id", questionID).WithValue(text)
}

// ButtonEvent creates a button-press answer event
func ButtonEvent(questionID, key string) *Event {
	return NewEvent(EventPressButton).WithData("question_id", questionID).WithValue(key)
}

// CancelEvent creates a question-cancel event
func CancelEvent(questionID string) *Event {
	return NewEvent(EventCancelAnswer).WithData("question_id", questionID)
}

// ModelEvent creates an explicit provider/model selection event
func ModelEvent(provider, model string) *Event {
	return NewEvent(EventSelectModel).WithData("provider", provider).WithData("model", model)
}

// FilterEvent creates a filter event
func FilterEvent(filterText string) *Event {
	return NewEvent(EventFilter).WithValue(filterText)
}
