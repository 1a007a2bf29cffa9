// calibration.go - Round-trip latency measurement via the calibration track

// License: GPLv3 or later

package looper

// pulseThreshold is the minimum absolute sample magnitude MeasureRoundTripLatency
// treats as the tuning impulse having arrived, rather than residual noise.
const pulseThreshold = 0.1

// MeasureRoundTripLatency scans the calibration track's recorded samples
// for the first one exceeding pulseThreshold and returns its frame offset,
// i.e. the round-trip delay between the tuning impulse leaving the output
// and its arrival back at the input. It is a control-thread-only
// diagnostic: never called from Process, and safe to call only once the
// calibration recording has stopped.
//
// found is false if no sample in [0, EndIndex) exceeds the threshold.
func (e *Engine) MeasureRoundTripLatency() (offset uint32, found bool) {
	t := e.tracks[e.calibrationTrack]
	end := t.EndIndex()
	buf := make([]float32, end)
	if end == 0 {
		return 0, false
	}
	t.Read(ChannelLeft, 0, buf)
	for i, s := range buf {
		if s > pulseThreshold || s < -pulseThreshold {
			return uint32(i), true
		}
	}
	return 0, false
}
