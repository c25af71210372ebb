package conn

import (
	"sync"

	"pilotdeck/modules/platform/protocol"
)

// QuestionQueue tracks pending questions in arrival order, keyed by
// question_id. The oldest unresolved question is the active one.
// Resolution is independent of any view, so an answered question
// stays answered when a view is reopened.
type QuestionQueue struct {
	mu      sync.Mutex
	order   []string
	pending map[string]*protocol.Frame
}

// NewQuestionQueue creates an empty queue
func NewQuestionQueue() *QuestionQueue {
	return &QuestionQueue{
		pending: make(map[string]*protocol.Frame),
	}
}

// Push adds a question frame to the queue. Frames that are not
// questions, lack an ID, or duplicate a pending ID are ignored.
func (q *QuestionQueue) Push(frame *protocol.Frame) {
	if frame == nil || !frame.IsQuestion() || frame.QuestionID == "" {
		return
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	if _, exists := q.pending[frame.QuestionID]; exists {
		return
	}
	q.pending[frame.QuestionID] = frame
	q.order = append(q.order, frame.QuestionID)
}

// Active returns the oldest pending question, or nil if none
func (q *QuestionQueue) Active() *protocol.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range q.order {
		if frame, ok := q.pending[id]; ok {
			return frame
		}
	}
	return nil
}

// ActiveFor returns the oldest pending question visible to the given
// project: tagged with its ID or untagged (session-global)
func (q *QuestionQueue) ActiveFor(projectID string) *protocol.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()

	for _, id := range q.order {
		frame, ok := q.pending[id]
		if !ok {
			continue
		}
		if frame.ProjectStateID == "" || frame.ProjectStateID == projectID {
			return frame
		}
	}
	return nil
}

// Resolve removes a question from the queue. Reports whether the ID
// was pending.
func (q *QuestionQueue) Resolve(questionID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if _, ok := q.pending[questionID]; !ok {
		return false
	}
	delete(q.pending, questionID)

	for i, id := range q.order {
		if id == questionID {
			q.order = append(q.order[:i], q.order[i+1:]...)
			break
		}
	}
	return true
}

// Pending returns all unresolved questions in arrival order
func (q *QuestionQueue) Pending() []*protocol.Frame {
	q.mu.Lock()
	defer q.mu.Unlock()

	frames := make([]*protocol.Frame, 0, len(q.order))
	for _, id := range q.order {
		if frame, ok := q.pending[id]; ok {
			frames = append(frames, frame)
		}
	}
	return frames
}

// Len returns the number of pending questions
func (q *QuestionQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}
