// process.go - The realtime per-cycle Process entry point

// License: GPLv3 or later

package looper

// Process is the realtime per-cycle entry point (spec §4.4). It is called
// once per audio cycle with n frames; inR and outR may be nil for a mono
// device. It must return in bounded time: no allocation, no blocking I/O, no
// unbounded loop. Process may run concurrently with the control thread's
// SubmitCommand and DrainDiagnostics calls — every other Engine method either
// expects to run on the same thread as Process, or is a plain read intended
// for introspection only.
func (e *Engine) Process(n int, inL, inR, outL, outR []float32) {
	if ev, ok := e.inbox.drain(); ok {
		e.applyEvent(ev)
	}

	if e.state == StatePassthrough {
		e.processPassthrough(inL, inR, outL, outR, n)
		e.clearTransients()
		return
	}

	if e.finalizeTrack >= 0 {
		e.finalizeRecording(inL, inR, n)
	}

	switch e.state {
	case StateOverdubbing:
		e.overdubSelected(inL, inR, n)
	case StateRecording:
		e.recordSelected(inL, inR, n)
	case StateCalibration:
		e.recordCalibration(inL, inR, n)
	}

	e.mixdown(inL, inR, outL, outR, n)
	e.advancePositions(uint32(n))
	e.clearTransients()
}

func (e *Engine) clearTransients() {
	e.recFrameDelay = 0
	e.playFrameDelay = 0
	e.finalizeTrack = -1
}

func (e *Engine) processPassthrough(inL, inR, outL, outR []float32, n int) {
	if e.monitoringOff {
		for i := 0; i < n; i++ {
			outL[i] = 0
		}
		if outR != nil {
			for i := 0; i < n; i++ {
				outR[i] = 0
			}
		}
		return
	}

	copy(outL[:n], inL[:n])
	if outR != nil {
		if inR != nil {
			copy(outR[:n], inR[:n])
		} else {
			copy(outR[:n], inL[:n])
		}
	}
}

// recordSelected memcpys live input into the selected track starting at its
// current position, honoring a mid-cycle Record command's recFrameDelay
// (spec §4.5): only the last n-recFrameDelay input samples are captured.
func (e *Engine) recordSelected(inL, inR []float32, n int) {
	e.copyInputIntoTrack(e.selectedTrack, inL, inR, n, int(e.recFrameDelay))
}

// overdubSelected mirrors recordSelected but sums (destructively) rather
// than overwrites.
func (e *Engine) overdubSelected(inL, inR []float32, n int) {
	t := e.tracks[e.selectedTrack]
	delay := int(e.recFrameDelay)
	if delay > n {
		delay = n
	}
	count := n - delay
	if count <= 0 {
		return
	}
	dest := t.currIdx
	count = e.clampToCapacity(dest, count)
	if count <= 0 {
		return
	}
	t.Overdub(ChannelLeft, dest, inL[delay:delay+count])
	if t.stereo {
		if inR != nil {
			t.Overdub(ChannelRight, dest, inR[delay:delay+count])
		} else {
			t.Overdub(ChannelRight, dest, inL[delay:delay+count])
		}
	}
}

func (e *Engine) recordCalibration(inL, inR []float32, n int) {
	e.copyInputIntoTrack(e.calibrationTrack, inL, inR, n, int(e.recFrameDelay))
}

func (e *Engine) copyInputIntoTrack(trackIdx int, inL, inR []float32, n, delay int) {
	if delay > n {
		delay = n
	}
	count := n - delay
	if count <= 0 {
		return
	}
	t := e.tracks[trackIdx]
	dest := t.currIdx
	count = e.clampToCapacity(dest, count)
	if count <= 0 {
		return
	}
	t.Write(ChannelLeft, dest, inL[delay:delay+count])
	if t.stereo {
		if inR != nil {
			t.Write(ChannelRight, dest, inR[delay:delay+count])
		} else {
			t.Write(ChannelRight, dest, inL[delay:delay+count])
		}
	}
}

// clampToCapacity reduces count so that dest+count never exceeds the
// engine's per-track sample capacity. A recording that reaches sampleLimit
// mid-cycle keeps what it already captured instead of writing out of bounds;
// advancePositions is what clamps currIdx itself and flips the system to
// Playback once this cycle's advance runs.
func (e *Engine) clampToCapacity(dest uint32, count int) int {
	if dest >= e.sampleLimit {
		return 0
	}
	if room := int(e.sampleLimit - dest); count > room {
		return room
	}
	return count
}

// finalizeRecording handles the "cycle that finalizes recording" case of
// spec §4.5: a Play command landed mid-cycle and stopRecording already
// transitioned the system to Playback before Process reached its dispatch
// step, but the track is still owed its first playFrameDelay samples of
// live input from *this* cycle before the ordinary Playback path takes
// over.
func (e *Engine) finalizeRecording(inL, inR []float32, n int) {
	trackIdx := e.finalizeTrack
	delay := int(e.finalizeDelay)
	if delay > n {
		delay = n
	}
	if delay == 0 {
		return
	}
	t := e.tracks[trackIdx]
	dest := t.currIdx
	delay = e.clampToCapacity(dest, delay)
	if delay == 0 {
		return
	}
	t.Write(ChannelLeft, dest, inL[:delay])
	if t.stereo {
		if inR != nil {
			t.Write(ChannelRight, dest, inR[:delay])
		} else {
			t.Write(ChannelRight, dest, inL[:delay])
		}
	}
}

func (e *Engine) mixdown(inL, inR, outL, outR []float32, n int) {
	g := &e.groups[e.selectedGroup]
	mix(g, e.tracks, inL, inR, outL, outR, n)
}
