package demoserver

import (
	"encoding/json"
	"time"

	"pilotdeck/modules/platform/protocol"
)

// ScenarioStep is one scripted backend action. Steps are replayed in
// order; question frames block until the client answers.
type ScenarioStep struct {
	Delay time.Duration
	Frame *protocol.Frame
}

// runScenario replays the script to one client. It returns when the
// script ends, the client disconnects, or the hub stops. Question IDs
// are assigned from the client's counter at send time.
func (h *Hub) runScenario(c *Client) {
	for _, step := range h.scenario {
		if step.Delay > 0 {
			select {
			case <-time.After(step.Delay):
			case <-c.gone:
				return
			case <-h.done:
				return
			}
		}
		if step.Frame == nil {
			continue
		}

		frame := *step.Frame
		if frame.Type == protocol.MsgQuestion {
			frame.QuestionID = c.nextQuestionID()
			answer := c.expectResponse(frame.QuestionID)
			c.sendFrame(&frame)

			select {
			case resp := <-answer:
				h.logAnswer(c, &frame, resp)
			case <-c.gone:
				return
			case <-h.done:
				return
			}
			continue
		}

		c.sendFrame(&frame)
	}

	h.log.Info("scenario finished for %s", c.id)
}

func (h *Hub) logAnswer(c *Client, q *protocol.Frame, resp *protocol.Response) {
	switch {
	case resp.Cancelled:
		h.log.Info("client %s cancelled question %s", c.id, q.QuestionID)
	case resp.Button != nil:
		h.log.Info("client %s answered question %s with button %q", c.id, q.QuestionID, *resp.Button)
	case resp.Text != nil:
		h.log.Info("client %s answered question %s with text %q", c.id, q.QuestionID, *resp.Text)
	}
}

// DefaultScenario is a condensed pilot session: greeting, spec
// question, planning stream, task breakdown, a confirmation question,
// and the wrap-up frames a real session ends with.
func DefaultScenario() []ScenarioStep {
	return []ScenarioStep{
		{
			Frame: &protocol.Frame{
				Type: protocol.MsgProjectStage,
				Data: json.RawMessage(`{"stage":"project_description"}`),
			},
		},
		{
			Delay: 400 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:              protocol.MsgMessage,
				Message:           "Hello! I'm the Product Owner. Let's figure out what we're building.",
				Source:            "product-owner",
				SourceDisplayName: "Product Owner",
			},
		},
		{
			Delay: 300 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:              protocol.MsgQuestion,
				Question:          "Describe the app you would like to build.",
				AllowEmpty:        false,
				Placeholder:       "e.g. a todo list with user accounts",
				Source:            "product-owner",
				SourceDisplayName: "Product Owner",
			},
		},
		{
			Delay: 500 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:              protocol.MsgStream,
				Chunk:             "Great. Drafting the technical plan",
				Source:            "architect",
				SourceDisplayName: "Architect",
			},
		},
		{
			Delay: 250 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:              protocol.MsgStream,
				Chunk:             " and picking the stack...",
				Source:            "architect",
				SourceDisplayName: "Architect",
			},
		},
		{
			Delay: 600 * time.Millisecond,
			Frame: &protocol.Frame{
				Type: protocol.MsgEpicsAndTasks,
				Epics: []protocol.Epic{
					{Name: "MVP", Description: "First working version"},
				},
				Tasks: []protocol.Task{
					{Description: "Project scaffolding", Status: "todo"},
					{Description: "Data model and storage", Status: "todo"},
					{Description: "Core screens", Status: "todo"},
				},
			},
		},
		{
			Delay: 400 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:        protocol.MsgTaskProgress,
				Index:       1,
				NTasks:      3,
				Description: "Project scaffolding",
				Status:      "in_progress",
				SourceIndex: 1,
			},
		},
		{
			Delay: 500 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:              protocol.MsgQuestion,
				Question:          "Does this plan look good?",
				Buttons:           map[string]string{"yes": "Looks good", "change": "Request changes"},
				ButtonsOnly:       true,
				Default:           "yes",
				Source:            "tech-lead",
				SourceDisplayName: "Tech Lead",
			},
		},
		{
			Delay: 400 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:  protocol.MsgModifiedFiles,
				Files: json.RawMessage(`[{"path":"server.js"},{"path":"package.json"}]`),
			},
		},
		{
			Delay: 300 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:       protocol.MsgRunCommand,
				RunCommand: "npm start",
			},
		},
		{
			Delay: 300 * time.Millisecond,
			Frame: &protocol.Frame{
				Type:    protocol.MsgAppLink,
				AppLink: "http://localhost:3000",
			},
		},
		{
			Delay: 300 * time.Millisecond,
			Frame: &protocol.Frame{
				Type: protocol.MsgLoadingFinished,
			},
		},
	}
}
