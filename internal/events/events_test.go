package events

import (
	"errors"
	"testing"
	"time"
)

func TestSubscribeReceivesMatchingType(t *testing.T) {
	eb := NewEventBus(4)
	defer eb.Close()

	ch := eb.Subscribe(EventProgress)
	eb.PublishProgress("SN1", "Test", 1, 3, "downloading")

	select {
	case ev := <-ch:
		pe, ok := ev.(*ProgressEvent)
		if !ok {
			t.Fatalf("received %T, want *ProgressEvent", ev)
		}
		if pe.Index != 1 || pe.Total != 3 || pe.Measurement != "Test" {
			t.Errorf("unexpected progress event: %+v", pe)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for progress event")
	}
}

func TestSubscribeDoesNotReceiveOtherTypes(t *testing.T) {
	eb := NewEventBus(4)
	defer eb.Close()

	ch := eb.Subscribe(EventComplete)
	eb.PublishLog("noise")

	select {
	case ev := <-ch:
		t.Fatalf("received unexpected event %T", ev)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSubscribeAllReceivesEverything(t *testing.T) {
	eb := NewEventBus(4)
	defer eb.Close()

	ch := eb.SubscribeAll()
	eb.PublishLog("one")
	eb.PublishError("Test", errors.New("boom"), false)

	types := map[EventType]bool{}
	for i := 0; i < 2; i++ {
		select {
		case ev := <-ch:
			types[ev.Type()] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for events")
		}
	}
	if !types[EventLog] || !types[EventError] {
		t.Errorf("missing event types, got %v", types)
	}
}

func TestPublishToFullBufferDropsEvent(t *testing.T) {
	eb := NewEventBus(1)
	defer eb.Close()

	eb.Subscribe(EventLog) // never drained
	eb.PublishLog("fills the buffer")
	eb.PublishLog("dropped")

	if got := eb.DroppedEventCount(); got != 1 {
		t.Errorf("DroppedEventCount() = %d, want 1", got)
	}
}

func TestPublishAfterCloseIsNoOp(t *testing.T) {
	eb := NewEventBus(4)
	ch := eb.Subscribe(EventLog)
	eb.Close()

	eb.PublishLog("after close") // must not panic on closed channel

	if _, open := <-ch; open {
		t.Error("subscriber channel still open after Close()")
	}
}
