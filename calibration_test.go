// calibration_test.go - Tests for round-trip latency measurement

package looper

import "testing"

func TestMeasureRoundTripLatencyFindsFirstPulse(t *testing.T) {
	e := newTestEngine(t)
	e.applyEvent(Event{Kind: EventStartCalibration})
	calIdx := e.CalibrationTrack()

	if e.SelectedTrack() != calIdx {
		t.Fatalf("selectedTrack = %d, want calibration track %d", e.SelectedTrack(), calIdx)
	}

	silence := make([]float32, 20)
	pulse := make([]float32, 20)
	pulse[12] = 0.8

	e.Process(20, pulse, nil, silence, nil)
	e.applyEvent(Event{Kind: EventStopCalibration})

	offset, found := e.MeasureRoundTripLatency()
	if !found {
		t.Fatal("expected to find the calibration pulse")
	}
	if offset != 12 {
		t.Fatalf("offset = %d, want 12", offset)
	}
}

func TestMeasureRoundTripLatencyNotFoundWhenSilent(t *testing.T) {
	e := newTestEngine(t)
	e.applyEvent(Event{Kind: EventStartCalibration})

	silence := make([]float32, 20)
	e.Process(20, silence, nil, make([]float32, 20), nil)
	e.applyEvent(Event{Kind: EventStopCalibration})

	_, found := e.MeasureRoundTripLatency()
	if found {
		t.Fatal("expected no pulse detected in silence")
	}
}
