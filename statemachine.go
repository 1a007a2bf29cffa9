// statemachine.go - Control state machine transition table and handlers

// License: GPLv3 or later

package looper

// applyEvent is the Control State Machine of spec §4.6: it validates ev
// against the current system state and, if the transition is legal, mutates
// the engine. Invalid events for the current state are silently ignored, as
// required by spec §7's "Invalid command" taxonomy — rejection is signaled
// at the serial command boundary (see the serial package), not here.
func (e *Engine) applyEvent(ev Event) {
	switch ev.Kind {
	case EventSystemReset:
		e.resetSystem()

	case EventPassthrough:
		if e.state != StatePassthrough {
			e.resetSystem()
		}

	case EventRecordTrack:
		if e.state == StatePassthrough || e.state == StatePlayback {
			e.startRecording(ev.Track, ev.Group, ev.RecFrameDelay)
		}

	case EventOverdubTrack:
		if e.state == StatePlayback {
			e.startOverdubbing(ev.Track, ev.RecFrameDelay)
		}

	case EventPlayTrack:
		switch e.state {
		case StateRecording, StateOverdubbing:
			if ev.Track == e.selectedTrack {
				e.stopRecording(ev.Track, ev.Repeat, ev.PlayFrameDelay)
			}
		case StatePlayback:
			e.updateRepeat(ev.Track, ev.Repeat)
		}

	case EventMuteTrack:
		if e.state == StatePlayback {
			e.setTrackMuted(ev.Track, true)
		}

	case EventUnmuteTrack:
		if e.state == StatePlayback {
			e.setTrackMuted(ev.Track, false)
		}

	case EventAddTrackToGroup:
		if e.state == StatePlayback {
			e.addTrackToGroup(ev.Track, ev.Group)
		}

	case EventRemoveTrackFromGroup:
		if e.state == StatePlayback {
			e.removeTrackFromGroup(ev.Track, ev.Group)
		}

	case EventSetActiveGroup:
		if e.state == StatePlayback {
			e.setActiveGroup(ev.Group)
		}

	case EventSetMonitoring:
		e.monitoringOff = !ev.Monitoring

	case EventStartCalibration:
		if e.state == StatePassthrough {
			e.startCalibration()
		}

	case EventStopCalibration:
		if e.state == StateCalibration {
			e.stopCalibration()
		}
	}
}

func (e *Engine) validTrack(idx int) bool {
	return idx >= 0 && idx < len(e.tracks)
}

func (e *Engine) validGroup(g int) bool {
	return g >= 0 && g < len(e.groups)
}

// activeTrackCount counts non-Off tracks bound to group g.
func (e *Engine) activeTrackCount(g int) int {
	n := 0
	for idx, t := range e.tracks {
		if e.groups[g].Has(idx) && t.state != TrackOff {
			n++
		}
	}
	return n
}

// startRecording implements spec §4.6's startRecording: recording into a
// group with no active tracks, into a group other than the selected one, or
// as the group's only active track restarts the master clock at zero;
// otherwise recording is layered onto the existing timeline.
func (e *Engine) startRecording(trackIdx, group int, recDelay uint32) {
	if !e.validTrack(trackIdx) || !e.validGroup(group) || trackIdx == e.calibrationTrack {
		return
	}

	alreadyMember := e.groups[group].Has(trackIdx)
	activeCount := e.activeTrackCount(group)
	newGroup := group != e.selectedGroup
	onlyTrack := activeCount == 0 || (activeCount == 1 && alreadyMember)

	if activeCount == 0 || newGroup || onlyTrack {
		e.masterCurrIdx = 0
		e.masterLength[group] = 0
	}

	if !alreadyMember {
		e.groups[group].Add(trackIdx)
	}

	t := e.tracks[trackIdx]
	t.setStartIndex(e.masterCurrIdx)
	t.setCurrentIndex(e.masterCurrIdx)
	t.setEndIndex(0)
	t.setRepeat(false)
	t.setState(TrackRecording)

	e.selectedTrack = trackIdx
	e.selectedGroup = group
	e.state = StateRecording
	e.recFrameDelay = recDelay
}

func (e *Engine) startOverdubbing(trackIdx int, recDelay uint32) {
	if !e.validTrack(trackIdx) || trackIdx == e.calibrationTrack {
		return
	}
	t := e.tracks[trackIdx]
	if t.state == TrackOff {
		return
	}
	t.setState(TrackRecording)
	e.selectedTrack = trackIdx
	e.state = StateOverdubbing
	e.recFrameDelay = recDelay
}

// stopRecording/stopOverdubbing (the same routine; the transition table
// gives them identical behavior) grow endIdx/masterLength to account for the
// play_frame_delay samples the finalizing cycle will still capture, apply
// any pending repeat change, and hand the track to Playback.
func (e *Engine) stopRecording(trackIdx int, repeat RepeatOption, playDelay uint32) {
	if !e.validTrack(trackIdx) {
		return
	}
	t := e.tracks[trackIdx]
	g := e.selectedGroup

	finalEnd := t.currIdx + playDelay
	if finalEnd > e.sampleLimit {
		finalEnd = e.sampleLimit
	}
	t.setEndIndex(finalEnd)

	if finalEnd > e.masterLength[g] {
		e.masterLength[g] = finalEnd
		e.masterCurrIdx = 0
	}

	applyRepeatOption(t, repeat)
	t.setState(TrackPlayback)

	e.state = StatePlayback
	e.playFrameDelay = playDelay
	e.finalizeTrack = trackIdx
	e.finalizeDelay = playDelay
}

func (e *Engine) updateRepeat(trackIdx int, repeat RepeatOption) {
	if !e.validTrack(trackIdx) {
		return
	}
	t := e.tracks[trackIdx]
	if t.state == TrackOff {
		return
	}
	applyRepeatOption(t, repeat)
}

func applyRepeatOption(t *Track, r RepeatOption) {
	switch r {
	case RepeatOn:
		t.setRepeat(true)
	case RepeatOff:
		t.setRepeat(false)
	case RepeatUnchanged:
		// no change
	}
}

func (e *Engine) setTrackMuted(trackIdx int, muted bool) {
	if !e.validTrack(trackIdx) {
		return
	}
	t := e.tracks[trackIdx]
	switch {
	case muted && t.state == TrackPlayback:
		t.setState(TrackMute)
	case !muted && t.state == TrackMute:
		t.setState(TrackPlayback)
	}
}

func (e *Engine) addTrackToGroup(trackIdx, group int) {
	if !e.validTrack(trackIdx) || !e.validGroup(group) {
		return
	}
	e.groups[group].Add(trackIdx)
}

func (e *Engine) removeTrackFromGroup(trackIdx, group int) {
	if !e.validTrack(trackIdx) || !e.validGroup(group) {
		return
	}
	e.groups[group].Remove(trackIdx)
}

// setActiveGroup is the two-pass safe variant spec §9 calls for: mute every
// currently non-Off track first, then reactivate exactly the new group's
// members. Doing this in two passes means no track is ever read through a
// stale or partially-updated group membership, unlike the original's
// single-pass dereference-without-null-check implementation.
func (e *Engine) setActiveGroup(group int) {
	if !e.validGroup(group) {
		return
	}

	for _, t := range e.tracks {
		if t.state != TrackOff {
			t.setState(TrackMute)
		}
	}

	for idx, t := range e.tracks {
		if !e.groups[group].Has(idx) {
			continue
		}
		if t.state == TrackOff {
			continue
		}
		t.setState(TrackPlayback)
		if t.repeat {
			t.setCurrentIndex(t.startIdx)
		} else {
			t.setCurrentIndex(0)
		}
	}

	e.selectedGroup = group
	e.masterCurrIdx = 0
}

// resetSystem idempotently returns every track to Off with zeroed indices,
// zeroes every group's masterLength, resets masterCurrIdx, and returns the
// system to Passthrough. Applying it twice in a row is a no-op the second
// time, satisfying the idempotent-reset invariant.
func (e *Engine) resetSystem() {
	for _, t := range e.tracks {
		t.setState(TrackOff)
		t.setStartIndex(0)
		t.setCurrentIndex(0)
		t.setEndIndex(0)
		t.setRepeat(false)
	}
	for g := range e.masterLength {
		e.masterLength[g] = 0
	}
	e.masterCurrIdx = 0
	e.state = StatePassthrough
	e.selectedTrack = -1
	e.finalizeTrack = -1
	e.recFrameDelay = 0
	e.playFrameDelay = 0
}

func (e *Engine) startCalibration() {
	t := e.tracks[e.calibrationTrack]
	t.setStartIndex(0)
	t.setCurrentIndex(0)
	t.setEndIndex(0)
	t.setRepeat(false)
	t.setState(TrackRecording)
	e.selectedTrack = e.calibrationTrack
	e.state = StateCalibration
}

func (e *Engine) stopCalibration() {
	t := e.tracks[e.calibrationTrack]
	t.setState(TrackPlayback)
	e.state = StatePassthrough
	e.selectedTrack = -1
}
