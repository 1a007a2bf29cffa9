// inbox_test.go - Tests for the lock-free command inbox

package looper

import "testing"

func TestInboxDrainEmptyReturnsFalse(t *testing.T) {
	var ib Inbox
	_, ok := ib.drain()
	if ok {
		t.Fatal("expected drain of empty inbox to return false")
	}
}

func TestInboxSubmitThenDrainRoundTrips(t *testing.T) {
	var ib Inbox
	want := Event{Kind: EventRecordTrack, Track: 3, Group: 1}
	ib.Submit(want)

	got, ok := ib.drain()
	if !ok {
		t.Fatal("expected drain to report a pending event")
	}
	if got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	_, ok = ib.drain()
	if ok {
		t.Fatal("expected second drain to find nothing pending")
	}
}

func TestInboxSubmitOverwritesUndrainedEvent(t *testing.T) {
	var ib Inbox
	ib.Submit(Event{Kind: EventRecordTrack, Track: 0})
	ib.Submit(Event{Kind: EventPlayTrack, Track: 1})

	got, ok := ib.drain()
	if !ok {
		t.Fatal("expected a pending event")
	}
	if got.Kind != EventPlayTrack || got.Track != 1 {
		t.Fatalf("got %+v, want the later Submit to win", got)
	}
}
