package timer

import (
	"testing"
	"time"
)

func makeEvent(remaining int) Event {
	return Event{
		Type:      EventTick,
		Snapshot:  Snapshot{SecondsRemaining: remaining},
		Timestamp: time.Now().UTC(),
	}
}

func TestRingBuffer_EmptyRead(t *testing.T) {
	rb := NewRingBuffer(10)
	if events := rb.ReadAll(); len(events) != 0 {
		t.Errorf("expected empty buffer, got %d events", len(events))
	}
}

func TestRingBuffer_PartialFill(t *testing.T) {
	rb := NewRingBuffer(10)
	for i := 0; i < 5; i++ {
		rb.Write(makeEvent(i))
	}

	events := rb.ReadAll()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	for i, e := range events {
		if e.Snapshot.SecondsRemaining != i {
			t.Errorf("event %d: expected %d, got %d", i, i, e.Snapshot.SecondsRemaining)
		}
	}
}

func TestRingBuffer_Overflow(t *testing.T) {
	rb := NewRingBuffer(5)
	for i := 0; i < 8; i++ {
		rb.Write(makeEvent(i))
	}

	events := rb.ReadAll()
	if len(events) != 5 {
		t.Fatalf("expected 5 events, got %d", len(events))
	}
	// Oldest three dropped.
	for i, e := range events {
		if e.Snapshot.SecondsRemaining != i+3 {
			t.Errorf("event %d: expected %d, got %d", i, i+3, e.Snapshot.SecondsRemaining)
		}
	}
}

func TestRingBuffer_MinimumCapacity(t *testing.T) {
	rb := NewRingBuffer(0)
	rb.Write(makeEvent(1))
	rb.Write(makeEvent(2))

	events := rb.ReadAll()
	if len(events) != 1 || events[0].Snapshot.SecondsRemaining != 2 {
		t.Errorf("expected only the latest event, got %+v", events)
	}
}
