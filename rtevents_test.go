// rtevents_test.go - Tests for the realtime diagnostic event ring

package looper

import "testing"

func TestRTEventRingDrainEmptyReturnsNil(t *testing.T) {
	var r rtEventRing
	if got := r.drainAll(); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
}

func TestRTEventRingPublishThenDrainInOrder(t *testing.T) {
	var r rtEventRing
	r.publish(RTEvent{Kind: RTEventCapacityOverflow, Track: 0})
	r.publish(RTEvent{Kind: RTEventCapacityOverflow, Track: 1})

	got := r.drainAll()
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].Track != 0 || got[1].Track != 1 {
		t.Fatalf("got %+v, want events in publish order", got)
	}

	if got := r.drainAll(); got != nil {
		t.Fatalf("expected drain to clear the ring, got %v", got)
	}
}

func TestRTEventRingDropsWhenFull(t *testing.T) {
	var r rtEventRing
	for i := 0; i < rtEventRingCapacity+5; i++ {
		r.publish(RTEvent{Kind: RTEventCapacityOverflow, Track: i})
	}

	got := r.drainAll()
	if len(got) != rtEventRingCapacity {
		t.Fatalf("got %d events, want %d (ring capacity)", len(got), rtEventRingCapacity)
	}
	if got[0].Track != 0 {
		t.Fatalf("got first track %d, want 0 (oldest events kept)", got[0].Track)
	}
}
