package eventbus

import (
	"sync"
	"testing"
	"time"
)

func TestSubscribeAndPublish(t *testing.T) {
	bus := NewBus()

	var mu sync.Mutex
	received := make([]*Event, 0)
	done := make(chan struct{}, 1)

	bus.Subscribe([]EventType{EventConnOpened}, func(e *Event) {
		mu.Lock()
		received = append(received, e)
		mu.Unlock()
		done <- struct{}{}
	})

	bus.Publish(NewEvent(EventConnOpened).WithSource("conn"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("subscriber not notified")
	}

	mu.Lock()
	defer mu.Unlock()
	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if received[0].Type != EventConnOpened || received[0].Source != "conn" {
		t.Errorf("unexpected event: %+v", received[0])
	}
}

func TestSubscribeFiltersTypes(t *testing.T) {
	bus := NewBus()

	notified := make(chan EventType, 4)
	bus.Subscribe([]EventType{EventFrameIn}, func(e *Event) {
		notified <- e.Type
	})

	bus.Publish(NewEvent(EventConnClosed))
	bus.Publish(NewEvent(EventFrameIn))

	select {
	case got := <-notified:
		if got != EventFrameIn {
			t.Errorf("expected frame_in, got %s", got)
		}
	case <-time.After(time.Second):
		t.Fatal("matching event not delivered")
	}

	select {
	case got := <-notified:
		t.Errorf("unexpected extra delivery: %s", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeNilReceivesAll(t *testing.T) {
	bus := NewBus()

	notified := make(chan EventType, 4)
	bus.Subscribe(nil, func(e *Event) {
		notified <- e.Type
	})

	bus.Publish(NewEvent(EventConnClosed))
	bus.Publish(NewEvent(EventLogLine))

	seen := map[EventType]bool{}
	for i := 0; i < 2; i++ {
		select {
		case et := <-notified:
			seen[et] = true
		case <-time.After(time.Second):
			t.Fatal("missing delivery for nil subscription")
		}
	}
	if !seen[EventConnClosed] || !seen[EventLogLine] {
		t.Errorf("nil subscription missed events: %v", seen)
	}
}

func TestUnsubscribe(t *testing.T) {
	bus := NewBus()

	notified := make(chan struct{}, 1)
	id := bus.Subscribe(nil, func(e *Event) {
		notified <- struct{}{}
	})
	bus.Unsubscribe(id)

	bus.Publish(NewEvent(EventConnOpened))

	select {
	case <-notified:
		t.Error("unsubscribed handler was notified")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHistory(t *testing.T) {
	bus := NewBus()

	bus.Publish(NewEvent(EventConnOpened))
	bus.Publish(NewEvent(EventFrameIn))
	bus.Publish(NewEvent(EventFrameIn))

	all := bus.GetHistory(0)
	if len(all) != 3 {
		t.Fatalf("expected 3 events in history, got %d", len(all))
	}

	last := bus.GetHistory(1)
	if len(last) != 1 || last[0].Type != EventFrameIn {
		t.Errorf("unexpected last event: %+v", last)
	}

	frames := bus.GetHistoryByType([]EventType{EventFrameIn}, 10)
	if len(frames) != 2 {
		t.Errorf("expected 2 frame events, got %d", len(frames))
	}
}
