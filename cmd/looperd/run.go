// run.go - Wires the engine, transport, and control reader for `looperd run`

// License: GPLv3 or later

package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/perfloop/looper"
	"github.com/perfloop/looper/serial"
	"github.com/perfloop/looper/transport"
)

type loggerCloser struct{ *zap.Logger }

func (l *loggerCloser) Close() error { return l.Sync() }

// runLive wires an Engine to a real audio device and, if --control is set,
// a raw-mode stdin command reader. It blocks until interrupted.
func runLive() error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Close()

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

	player, err := transport.NewPlayer(flagSampleRate)
	if err != nil {
		return &looper.InitError{Subsystem: "audio transport", Err: err}
	}
	player.SetEngine(engine)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	sessionID := uuid.New().String()

	player.Start()
	defer player.Close()
	log.Info("looper started",
		zap.String("session_id", sessionID),
		zap.Int("groups", flagGroups),
		zap.Int("tracks", flagTracks),
		zap.Bool("stereo", flagStereo),
		zap.Int("sample_rate", flagSampleRate),
	)

	if flagControl {
		reader := serial.NewReader(
			func(cmd serial.Command) {
				if ev, ok := translateCommand(cmd); ok {
					engine.SubmitCommand(ev)
				}
				if cmd.Kind == serial.EventQuit {
					cancel()
				}
			},
			func() { log.Warn("rejected malformed command frame") },
		)
		if err := reader.Start(); err != nil {
			return &looper.InitError{Subsystem: "command reader", Err: err}
		}
		g.Go(func() error {
			<-ctx.Done()
			reader.Stop()
			return nil
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				for _, ev := range engine.DrainDiagnostics() {
					log.Warn("realtime diagnostic",
						zap.Int("kind", int(ev.Kind)),
						zap.Int("track", ev.Track))
				}
			}
		}
	})

	<-ctx.Done()
	if err := g.Wait(); err != nil {
		return fmt.Errorf("looperd: %w", err)
	}
	log.Info("looper stopped")
	return nil
}

// translateCommand maps a decoded serial.Command onto the engine's Event
// type. Kept here, not in the serial package, so serial stays free of an
// import on the engine.
func translateCommand(cmd serial.Command) (looper.Event, bool) {
	ev := looper.Event{Track: cmd.Track, Group: cmd.Group}
	switch cmd.Kind {
	case serial.EventRecordTrack:
		ev.Kind = looper.EventRecordTrack
	case serial.EventOverdubTrack:
		ev.Kind = looper.EventOverdubTrack
	case serial.EventPlayTrack:
		ev.Kind = looper.EventPlayTrack
		ev.Repeat = looper.RepeatOption(cmd.Repeat)
	case serial.EventMuteTrack:
		ev.Kind = looper.EventMuteTrack
	case serial.EventUnmuteTrack:
		ev.Kind = looper.EventUnmuteTrack
	case serial.EventAddTrackToGroup:
		ev.Kind = looper.EventAddTrackToGroup
	case serial.EventRemoveTrackFromGroup:
		ev.Kind = looper.EventRemoveTrackFromGroup
	case serial.EventSetActiveGroup:
		ev.Kind = looper.EventSetActiveGroup
	case serial.EventSystemReset:
		ev.Kind = looper.EventSystemReset
	case serial.EventSetMonitoring:
		ev.Kind = looper.EventSetMonitoring
		ev.Monitoring = cmd.Monitoring
	case serial.EventStartCalibration:
		ev.Kind = looper.EventStartCalibration
	case serial.EventStopCalibration:
		ev.Kind = looper.EventStopCalibration
	default:
		return looper.Event{}, false
	}
	return ev, true
}
