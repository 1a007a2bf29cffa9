// sim.go - `looperd sim`: replays a Lua script against a headless engine

// License: GPLv3 or later

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/perfloop/looper"
	"github.com/perfloop/looper/scripting"
)

// engineCommander adapts *looper.Engine to scripting.Commander, translating
// the harness's engine-agnostic Event into a looper.Event. The two EventKind
// enumerations are not numerically aligned (scripting's is a small subset
// vocabulary matching the Lua host functions, looper's includes Passthrough/
// Calibration/Monitoring events scripting never issues), so
// this is an explicit switch rather than a bare numeric cast.
type engineCommander struct {
	engine *looper.Engine
}

func (c engineCommander) SubmitCommand(ev scripting.Event) {
	out := looper.Event{
		Track:         ev.Track,
		Group:         ev.Group,
		Repeat:        looper.RepeatOption(ev.Repeat),
		Monitoring:    ev.Monitoring,
		RecFrameDelay: ev.RecFrameDelay,
	}
	switch ev.Kind {
	case scripting.KindRecord:
		out.Kind = looper.EventRecordTrack
	case scripting.KindOverdub:
		out.Kind = looper.EventOverdubTrack
	case scripting.KindPlay:
		out.Kind = looper.EventPlayTrack
	case scripting.KindMute:
		out.Kind = looper.EventMuteTrack
	case scripting.KindUnmute:
		out.Kind = looper.EventUnmuteTrack
	case scripting.KindAddToGroup:
		out.Kind = looper.EventAddTrackToGroup
	case scripting.KindRemoveFromGroup:
		out.Kind = looper.EventRemoveTrackFromGroup
	case scripting.KindSetActiveGroup:
		out.Kind = looper.EventSetActiveGroup
	case scripting.KindReset:
		out.Kind = looper.EventSystemReset
	default:
		return
	}
	c.engine.SubmitCommand(out)
}

// engineStepper runs n frames of silence through Process, the same way a
// real device would pull audio, so a script can assert on engine state
// between commands without a real transport attached.
type engineStepper struct {
	engine *looper.Engine
	stereo bool
}

const simChunk = 128

func (s engineStepper) Advance(n int) {
	silenceL := make([]float32, simChunk)
	var silenceR []float32
	outL := make([]float32, simChunk)
	var outR []float32
	if s.stereo {
		silenceR = make([]float32, simChunk)
		outR = make([]float32, simChunk)
	}
	for remaining := n; remaining > 0; {
		step := simChunk
		if remaining < step {
			step = remaining
		}
		s.engine.Process(step, silenceL[:step], sliceOrNil(silenceR, step), outL[:step], sliceOrNil(outR, step))
		remaining -= step
	}
}

func sliceOrNil(s []float32, n int) []float32 {
	if s == nil {
		return nil
	}
	return s[:n]
}

func runSim(scriptPath string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Close()

	script, err := os.ReadFile(scriptPath)
	if err != nil {
		return fmt.Errorf("looperd: reading script: %w", err)
	}

	engine, err := looper.NewEngine(looper.Config{
		NumGroups:    flagGroups,
		NumTracks:    flagTracks,
		Stereo:       flagStereo,
		SampleRate:   flagSampleRate,
		TrackSeconds: flagTrackSeconds,
	})
	if err != nil {
		return &looper.InitError{Subsystem: "engine", Err: err}
	}

	harness := scripting.NewHarness(
		engineCommander{engine: engine},
		engineStepper{engine: engine, stereo: flagStereo},
	)
	defer harness.Close()

	if err := harness.Run(string(script)); err != nil {
		return fmt.Errorf("looperd: script failed: %w", err)
	}

	for _, ev := range engine.DrainDiagnostics() {
		log.Warn("realtime diagnostic", zap.Int("kind", int(ev.Kind)), zap.Int("track", ev.Track))
	}
	log.Info("simulation finished",
		zap.String("state", engine.SystemState().String()),
		zap.Int("selected_group", engine.SelectedGroup()),
		zap.Int("selected_track", engine.SelectedTrack()),
	)
	return nil
}
