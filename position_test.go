// position_test.go - Tests for the position engine's advance/wrap/repeat rules

package looper

import "testing"

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(Config{
		NumGroups: 4, NumTracks: 4, Stereo: false,
		SampleRate: 100, TrackSeconds: 10, // sampleLimit = 1000, small for tests
	})
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

// S3: repeat wrap. track 0 has endIdx=256, startIdx=0, repeat=true,
// state=Playback; currIdx starts at 200. After one cycle of n=128, currIdx
// (328) exceeds endIdx and the track resets to its startIdx rather than
// carrying the remainder forward.
func TestPositionRepeatWrapScenarioS3(t *testing.T) {
	e := newTestEngine(t)
	e.groups[0].Add(0)
	e.selectedGroup = 0
	e.state = StatePlayback
	tr := e.tracks[0]
	tr.state = TrackPlayback
	tr.repeat = true
	tr.startIdx = 0
	tr.endIdx = 256
	tr.currIdx = 200
	e.masterLength[0] = 256
	e.masterCurrIdx = 200

	e.advancePositions(128)

	if tr.currIdx != tr.startIdx {
		t.Fatalf("currIdx = %d, want %d (startIdx)", tr.currIdx, tr.startIdx)
	}
}

func TestPositionMasterClampsToSampleLimit(t *testing.T) {
	e := newTestEngine(t)
	e.masterCurrIdx = e.sampleLimit - 10
	e.state = StatePlayback

	e.advancePositions(128)

	if e.masterCurrIdx > e.sampleLimit {
		t.Fatalf("masterCurrIdx %d exceeds sampleLimit %d", e.masterCurrIdx, e.sampleLimit)
	}
}

// S5: buffer-full guard. selectedTrack.currIdx forced to sampleLimit-64,
// state=Recording. After one cycle of n=128, currIdx==sampleLimit and
// system state becomes Playback.
func TestPositionBufferFullScenarioS5(t *testing.T) {
	e := newTestEngine(t)
	e.groups[0].Add(0)
	e.selectedGroup = 0
	e.selectedTrack = 0
	e.state = StateRecording
	tr := e.tracks[0]
	tr.state = TrackRecording
	tr.currIdx = e.sampleLimit - 64

	e.advancePositions(128)

	if tr.currIdx != e.sampleLimit {
		t.Fatalf("currIdx = %d, want %d", tr.currIdx, e.sampleLimit)
	}
	if e.state != StatePlayback {
		t.Fatalf("state = %v, want Playback", e.state)
	}
	diag := e.DrainDiagnostics()
	if len(diag) != 1 || diag[0].Kind != RTEventCapacityOverflow {
		t.Fatalf("expected one capacity-overflow diagnostic, got %v", diag)
	}
}

func TestPositionMasterLengthTracksLongestEndIdx(t *testing.T) {
	e := newTestEngine(t)
	e.groups[0].Add(0)
	e.selectedGroup = 0
	e.selectedTrack = 0
	e.state = StateRecording
	tr := e.tracks[0]
	tr.state = TrackRecording
	tr.currIdx = 0
	tr.endIdx = 0

	e.advancePositions(100)

	if e.masterLength[0] != tr.endIdx {
		t.Fatalf("masterLength[0] = %d, want %d", e.masterLength[0], tr.endIdx)
	}
	if tr.endIdx != 100 {
		t.Fatalf("endIdx = %d, want 100", tr.endIdx)
	}
}

func TestPositionPlaybackWrapsMasterToZero(t *testing.T) {
	e := newTestEngine(t)
	e.groups[0].Add(0)
	e.selectedGroup = 0
	e.state = StatePlayback
	tr := e.tracks[0]
	tr.state = TrackPlayback
	tr.startIdx, tr.endIdx, tr.currIdx = 0, 50, 0
	e.masterLength[0] = 50
	e.masterCurrIdx = 0

	e.advancePositions(60)

	if e.masterCurrIdx != 0 {
		t.Fatalf("masterCurrIdx = %d, want 0 (wrapped)", e.masterCurrIdx)
	}
	if tr.currIdx != 0 {
		t.Fatalf("currIdx = %d, want 0 (non-repeat track reset)", tr.currIdx)
	}
}

func TestInvariantIndicesWithinBoundsAfterManyAdvances(t *testing.T) {
	e := newTestEngine(t)
	e.groups[0].Add(0)
	e.selectedGroup = 0
	e.state = StatePlayback
	tr := e.tracks[0]
	tr.state = TrackPlayback
	tr.repeat = true
	tr.startIdx, tr.endIdx, tr.currIdx = 10, 90, 10
	e.masterLength[0] = 90

	for i := 0; i < 50; i++ {
		e.advancePositions(37)
		if tr.startIdx > tr.endIdx || tr.endIdx > e.sampleLimit {
			t.Fatalf("invariant violated: start=%d end=%d limit=%d", tr.startIdx, tr.endIdx, e.sampleLimit)
		}
		if e.masterCurrIdx > e.sampleLimit {
			t.Fatalf("masterCurrIdx %d exceeds sampleLimit %d", e.masterCurrIdx, e.sampleLimit)
		}
	}
}
