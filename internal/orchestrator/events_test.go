package orchestrator

import (
	"testing"
	"time"
)

func TestEmitDeliversBuffered(t *testing.T) {
	e := NewEventEmitter(2)
	e.Emit(Event{Type: EventAreaReceived, Area: "a"})
	e.Emit(Event{Type: EventAreaAccepted, Area: "a"})

	got := <-e.Events()
	if got.Type != EventAreaReceived {
		t.Errorf("first event = %s, want %s", got.Type, EventAreaReceived)
	}
	if got.Timestamp.IsZero() {
		t.Error("emit did not stamp the timestamp")
	}
	if e.DroppedCount() != 0 {
		t.Errorf("dropped = %d, want 0", e.DroppedCount())
	}
}

func TestEmitPreservesExplicitTimestamp(t *testing.T) {
	e := NewEventEmitter(1)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	e.Emit(Event{Type: EventManifestBuilt, Timestamp: ts})

	if got := <-e.Events(); !got.Timestamp.Equal(ts) {
		t.Errorf("timestamp = %v, want %v", got.Timestamp, ts)
	}
}

func TestEmitDropsWhenSubscriberStalls(t *testing.T) {
	e := NewEventEmitter(1)
	e.Emit(Event{Type: EventAreaReceived}) // fills the buffer

	// Nobody is draining: after the fallback window the event drops
	// instead of stalling the pipeline.
	start := time.Now()
	e.Emit(Event{Type: EventAreaAccepted})
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("emit blocked for %v", elapsed)
	}
	if e.DroppedCount() != 1 {
		t.Errorf("dropped = %d, want 1", e.DroppedCount())
	}
}

func TestCloseEndsSubscription(t *testing.T) {
	e := NewEventEmitter(1)
	e.Close()

	if _, ok := <-e.Events(); ok {
		t.Error("channel still open after Close")
	}
}
