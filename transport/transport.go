// transport.go - Engine/InputSource seam shared by the oto and headless backends

// License: GPLv3 or later

// Package transport adapts the looper engine's Process callback to a real
// audio device. It owns no looper state: it pulls fixed-size frames from an
// Engine and an InputSource, and hands the result to whatever output backend
// is compiled in (oto on a normal build; on a headless build, Pull returns
// it to the caller).
package transport

// Engine is the subset of *looper.Engine the transport needs. Defining it
// here rather than importing the looper package keeps transport buildable
// (and testable) independently of the engine.
type Engine interface {
	Process(n int, inL, inR, outL, outR []float32)
}

// InputSource supplies live input samples for one Process cycle. Real
// microphone capture has no equivalent in the oto library this package is
// built on (oto is playback-only), so InputSource is the seam a capture
// backend or a simulated input plugs into; SilentInput is the only
// implementation in this package.
type InputSource interface {
	// Read fills bufL (and bufR, for a stereo source) with the next len(bufL)
	// samples of input. It must not block or allocate once running.
	Read(bufL, bufR []float32)
}

// SilentInput is the default InputSource: it reports digital silence, which
// is what a looper without a microphone attached should record.
type SilentInput struct{}

func (SilentInput) Read(bufL, bufR []float32) {
	for i := range bufL {
		bufL[i] = 0
	}
	for i := range bufR {
		bufR[i] = 0
	}
}

// frameSize is the most stereo sample pairs the oto Player pulls per Process
// call. It
// mirrors the fixed pre-allocated buffer size the original player used for
// its typical oto buffer.
const frameSize = 1024
