package conn

import (
	"testing"

	"pilotdeck/modules/platform/protocol"
)

func question(id, text, projectID string) *protocol.Frame {
	return &protocol.Frame{
		Type:           protocol.MsgQuestion,
		QuestionID:     id,
		Question:       text,
		ProjectStateID: projectID,
	}
}

func TestQueueOldestPendingIsActive(t *testing.T) {
	q := NewQuestionQueue()
	q.Push(question("1", "first?", ""))
	q.Push(question("2", "second?", ""))

	if active := q.Active(); active == nil || active.QuestionID != "1" {
		t.Fatalf("expected question 1 active, got %+v", active)
	}

	if !q.Resolve("1") {
		t.Fatal("Resolve(1) reported not pending")
	}
	if active := q.Active(); active == nil || active.QuestionID != "2" {
		t.Fatalf("expected question 2 active after resolving 1, got %+v", active)
	}

	q.Resolve("2")
	if q.Active() != nil {
		t.Error("expected no active question")
	}
}

func TestQueueIgnoresInvalidPushes(t *testing.T) {
	q := NewQuestionQueue()

	q.Push(nil)
	q.Push(&protocol.Frame{Type: protocol.MsgMessage, Message: "not a question"})
	q.Push(&protocol.Frame{Type: protocol.MsgQuestion}) // no ID
	if q.Len() != 0 {
		t.Fatalf("expected empty queue, got %d", q.Len())
	}

	q.Push(question("7", "once?", ""))
	q.Push(question("7", "twice?", ""))
	if q.Len() != 1 {
		t.Errorf("duplicate ID not ignored: %d pending", q.Len())
	}
	if q.Active().Question != "once?" {
		t.Error("duplicate push replaced the original frame")
	}
}

func TestQueueResolveUnknown(t *testing.T) {
	q := NewQuestionQueue()
	if q.Resolve("missing") {
		t.Error("expected Resolve to report false for unknown ID")
	}
}

func TestQueueActiveForFiltersByProject(t *testing.T) {
	q := NewQuestionQueue()
	q.Push(question("1", "for project A?", "proj-a"))
	q.Push(question("2", "global?", ""))
	q.Push(question("3", "for project B?", "proj-b"))

	if active := q.ActiveFor("proj-b"); active.QuestionID != "2" {
		t.Errorf("expected global question 2 first for proj-b, got %s", active.QuestionID)
	}

	q.Resolve("2")
	if active := q.ActiveFor("proj-b"); active.QuestionID != "3" {
		t.Errorf("expected question 3 for proj-b, got %s", active.QuestionID)
	}
	if active := q.ActiveFor("proj-a"); active.QuestionID != "1" {
		t.Errorf("expected question 1 for proj-a, got %s", active.QuestionID)
	}
}

func TestQueuePendingSnapshotOrder(t *testing.T) {
	q := NewQuestionQueue()
	q.Push(question("a", "?", ""))
	q.Push(question("b", "?", ""))
	q.Push(question("c", "?", ""))
	q.Resolve("b")

	pending := q.Pending()
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending, got %d", len(pending))
	}
	if pending[0].QuestionID != "a" || pending[1].QuestionID != "c" {
		t.Errorf("pending order wrong: %s, %s", pending[0].QuestionID, pending[1].QuestionID)
	}
}
