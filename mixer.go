// mixer.go - Mixdown of active tracks plus live input, with overflow limiting

// License: GPLv3 or later

package looper

// mix produces n frames of output by summing every non-Off, non-Mute track
// in members at its current position, then adding the live input. It never
// reads or writes past n frames of the provided slices, and it silently
// skips any track whose currIdx has moved outside [startIdx, endIdx) instead
// of treating that as a bounds error — a track past its own end without
// repeat is just inaudible this cycle, not a fault.
func mix(members *GroupSet, tracks []*Track, inL, inR, outL, outR []float32, n int) {
	for s := 0; s < n; s++ {
		var sumL, sumR float32

		for ti, t := range tracks {
			if !members.Has(ti) {
				continue
			}
			if t.state == TrackOff || t.state == TrackMute {
				continue
			}
			if t.currIdx < t.startIdx || t.currIdx >= t.endIdx {
				continue
			}
			i := t.currIdx + uint32(s)
			if i >= t.endIdx {
				continue
			}
			sumL = limit(sumL + t.left[i])
			if t.stereo {
				sumR = limit(sumR + t.right[i])
			}
		}

		if inL != nil {
			sumL = limit(sumL + inL[s])
		}
		if inR != nil {
			sumR = limit(sumR + inR[s])
		} else if outR != nil && inL != nil {
			// Mono input feeding a stereo output: duplicate the left
			// contribution onto the right sum (spec §4.2).
			sumR = limit(sumR + inL[s])
		}

		outL[s] = sumL
		if outR != nil {
			outR[s] = sumR
		}
	}
}
