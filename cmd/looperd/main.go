// main.go - CLI entry point: flag parsing and subcommand wiring

// License: GPLv3 or later

// Command looperd runs the multi-track live looper engine against a real
// audio device, or replays a Lua script against a headless engine for
// offline simulation and testing.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/perfloop/looper/logging"
)

var (
	flagGroups       int
	flagTracks       int
	flagStereo       bool
	flagSampleRate   int
	flagTrackSeconds int
	flagControl      bool
	flagLogLevel     string
	flagLogFile      string
)

func main() {
	root := &cobra.Command{
		Use:   "looperd",
		Short: "A multi-track live audio looper engine.",
	}
	root.PersistentFlags().IntVar(&flagGroups, "groups", 4, "number of track groups")
	root.PersistentFlags().IntVar(&flagTracks, "tracks", 16, "number of tracks (one is reserved for calibration)")
	root.PersistentFlags().BoolVar(&flagStereo, "stereo", true, "allocate stereo track buffers")
	root.PersistentFlags().IntVar(&flagSampleRate, "sample-rate", 44100, "audio sample rate in Hz")
	root.PersistentFlags().IntVar(&flagTrackSeconds, "track-seconds", 60, "per-track capacity in seconds")
	root.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "debug, info, warn, or error")
	root.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "optional rotated log file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Run the looper against a live audio device.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLive()
		},
	}
	runCmd.Flags().BoolVar(&flagControl, "control", true, "read serial commands from stdin")

	simCmd := &cobra.Command{
		Use:   "sim <script.lua>",
		Short: "Replay a Lua script against a headless engine.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(args[0])
		},
	}

	root.AddCommand(runCmd, simCmd)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newLogger() (*loggerCloser, error) {
	log, err := logging.New(logging.Config{
		Level:      logging.Level(flagLogLevel),
		OutputPath: flagLogFile,
		MaxSize:    10,
		MaxBackups: 3,
		MaxAge:     28,
		Compress:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("looperd: logger initialization failed: %w", err)
	}
	return &loggerCloser{log}, nil
}
