// scripting_test.go - Tests for Lua host function to Event translation

package scripting

import "testing"

type fakeCommander struct {
	events []Event
}

func (f *fakeCommander) SubmitCommand(ev Event) {
	f.events = append(f.events, ev)
}

type fakeStepper struct {
	advanced []int
}

func (f *fakeStepper) Advance(n int) {
	f.advanced = append(f.advanced, n)
}

func TestHarnessRecordPlayAdvance(t *testing.T) {
	cmd := &fakeCommander{}
	step := &fakeStepper{}
	h := NewHarness(cmd, step)
	defer h.Close()

	err := h.Run(`
		record(0, 0)
		advance(256)
		play(0, 1)
		advance(64)
	`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(cmd.events) != 2 {
		t.Fatalf("got %d events, want 2", len(cmd.events))
	}
	if cmd.events[0].Kind != KindRecord || cmd.events[0].Track != 0 || cmd.events[0].Group != 0 {
		t.Fatalf("unexpected first event: %+v", cmd.events[0])
	}
	if cmd.events[1].Kind != KindPlay || cmd.events[1].Track != 0 || cmd.events[1].Repeat != 1 {
		t.Fatalf("unexpected second event: %+v", cmd.events[1])
	}
	if len(step.advanced) != 2 || step.advanced[0] != 256 || step.advanced[1] != 64 {
		t.Fatalf("unexpected advance calls: %v", step.advanced)
	}
}

func TestHarnessGroupAndResetCommands(t *testing.T) {
	cmd := &fakeCommander{}
	h := NewHarness(cmd, nil)
	defer h.Close()

	err := h.Run(`
		group_add(2, 1)
		group_remove(2, 1)
		select_group(1)
		mute(2)
		unmute(2)
		overdub(2)
		reset()
	`)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	wantKinds := []EventKind{
		KindAddToGroup, KindRemoveFromGroup, KindSetActiveGroup,
		KindMute, KindUnmute, KindOverdub, KindReset,
	}
	if len(cmd.events) != len(wantKinds) {
		t.Fatalf("got %d events, want %d", len(cmd.events), len(wantKinds))
	}
	for i, k := range wantKinds {
		if cmd.events[i].Kind != k {
			t.Fatalf("event %d: kind = %v, want %v", i, cmd.events[i].Kind, k)
		}
	}
}

func TestHarnessAdvanceWithNilStepperIsANoOp(t *testing.T) {
	cmd := &fakeCommander{}
	h := NewHarness(cmd, nil)
	defer h.Close()

	if err := h.Run(`advance(128)`); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestHarnessScriptErrorSurfaces(t *testing.T) {
	cmd := &fakeCommander{}
	h := NewHarness(cmd, nil)
	defer h.Close()

	if err := h.Run(`this is not valid lua (((`); err == nil {
		t.Fatal("expected a Lua syntax error")
	}
}
