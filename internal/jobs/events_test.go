package jobs

import (
	"fmt"
	"testing"
	"time"
)

// TestEventBusSince verifies incremental event reads by sequence.
func TestEventBusSince(t *testing.T) {
	bus := NewEventBus(3)
	bus.Publish(Event{Type: EventTypeStatus, Message: "1"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "2"})
	bus.Publish(Event{Type: EventTypeStatus, Message: "3"})

	events := bus.Since(1)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Seq != 2 || events[1].Seq != 3 {
		t.Fatalf("unexpected seqs: %+v", events)
	}
}

// TestEventBusCapsHistory verifies buffer limit trimming behavior.
func TestEventBusCapsHistory(t *testing.T) {
	bus := NewEventBus(2)
	bus.Publish(Event{Message: "1"})
	bus.Publish(Event{Message: "2"})
	bus.Publish(Event{Message: "3"})

	events := bus.Since(0)
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2", len(events))
	}
	if events[0].Message != "2" || events[1].Message != "3" {
		t.Fatalf("unexpected events: %+v", events)
	}
}

// TestEventBusSubscribeKeepsOrderBeyondHistory checks subscribers are unbounded and FIFO.
func TestEventBusSubscribeKeepsOrderBeyondHistory(t *testing.T) {
	bus := NewEventBus(2)
	ch, cancel := bus.Subscribe()
	defer cancel()

	const n = 200
	for i := 0; i < n; i++ {
		bus.Publish(Event{Type: EventTypeText, Message: fmt.Sprint(i)})
	}

	for i := 0; i < n; i++ {
		select {
		case ev := <-ch:
			if ev.Message != fmt.Sprint(i) {
				t.Fatalf("event %d message = %q", i, ev.Message)
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for event %d", i)
		}
	}
}

// TestEventBusCancelClosesChannel checks unsubscribe behavior.
func TestEventBusCancelClosesChannel(t *testing.T) {
	bus := NewEventBus(10)
	ch, cancel := bus.Subscribe()
	cancel()
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A buffered event may be delivered before close; drain once more.
			if _, ok := <-ch; ok {
				t.Fatal("expected closed channel")
			}
		}
	case <-time.After(2 * time.Second):
		t.Fatal("channel was not closed")
	}

	bus.Publish(Event{Message: "after cancel"})
}
