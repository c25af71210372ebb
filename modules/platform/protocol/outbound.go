package protocol

import "encoding/json"

// Response answers a pending question. Field order matters for the wire:
// the backend matches responses on question_id and reads whichever of
// text/button is present.
type Response struct {
	Type       MessageType `json:"type"`
	QuestionID string      `json:"question_id"`
	Text       *string     `json:"text,omitempty"`
	Button     *string     `json:"button,omitempty"`
	Cancelled  bool        `json:"cancelled"`
}

// NewTextResponse answers a question with free text. Empty text is a
// valid answer when the question allows it.
func NewTextResponse(questionID, text string) *Response {
	return &Response{
		Type:       MsgResponse,
		QuestionID: questionID,
		Text:       &text,
	}
}

// NewButtonResponse answers a question with a button value
func NewButtonResponse(questionID, button string) *Response {
	return &Response{
		Type:       MsgResponse,
		QuestionID: questionID,
		Button:     &button,
	}
}

// NewCancelResponse dismisses a question without answering it
func NewCancelResponse(questionID string) *Response {
	return &Response{
		Type:       MsgResponse,
		QuestionID: questionID,
		Cancelled:  true,
	}
}

// Encode serializes the response for the wire
func (r *Response) Encode() ([]byte, error) {
	return json.Marshal(r)
}

// ModelChange tells the backend which provider/model to use
type ModelChange struct {
	Type     MessageType `json:"type"`
	Provider string      `json:"provider"`
	Model    string      `json:"model"`
}

// NewModelChange creates a model selection frame
func NewModelChange(provider, model string) *ModelChange {
	return &ModelChange{
		Type:     MsgModelChange,
		Provider: provider,
		Model:    model,
	}
}

// Encode serializes the model change for the wire
func (m *ModelChange) Encode() ([]byte, error) {
	return json.Marshal(m)
}
