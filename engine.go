// engine.go - MasterLooper root aggregate: config, allocation, and accessors

// License: GPLv3 or later

package looper

import "fmt"

// NumTracksMax bounds the fixed-size group membership masks and the
// selected-track sentinel. The serial command boundary (see the serial
// package) encodes a track as two decimal digits, so no configuration can
// exceed two digits' worth of tracks.
const NumTracksMax = 100

// NumGroupsMax bounds the fixed-size masterLength array. The serial command
// boundary encodes a group as one decimal digit.
const NumGroupsMax = 10

// DefaultSampleRate and DefaultTrackSeconds reproduce the original engine's
// default capacity: 60 seconds at 44.1kHz per track.
const (
	DefaultSampleRate   = 44100
	DefaultTrackSeconds = 60
)

// SystemState is the looper's top-level dispatch state.
type SystemState int

const (
	StatePassthrough SystemState = iota
	StatePlayback
	StateRecording
	StateOverdubbing
	StateCalibration
)

func (s SystemState) String() string {
	switch s {
	case StatePassthrough:
		return "passthrough"
	case StatePlayback:
		return "playback"
	case StateRecording:
		return "recording"
	case StateOverdubbing:
		return "overdubbing"
	case StateCalibration:
		return "calibration"
	default:
		return "unknown"
	}
}

// Config parameterizes engine construction. SampleLimit (the per-track
// capacity) is derived as SampleRate * TrackSeconds, generalizing the
// original engine's hardcoded 44100*60.
type Config struct {
	NumGroups    int
	NumTracks    int
	Stereo       bool
	SampleRate   int
	TrackSeconds int
}

// DefaultConfig returns the original engine's defaults: 4 groups, 16 tracks,
// stereo, 44.1kHz, 60 seconds of capacity per track.
func DefaultConfig() Config {
	return Config{
		NumGroups:    4,
		NumTracks:    16,
		Stereo:       true,
		SampleRate:   DefaultSampleRate,
		TrackSeconds: DefaultTrackSeconds,
	}
}

// Validate checks the configuration against the fixed array bounds and
// rejects nonsensical rates/durations.
func (c Config) Validate() error {
	if c.NumGroups <= 0 || c.NumGroups > NumGroupsMax {
		return fmt.Errorf("looper: NumGroups must be in (0, %d], got %d", NumGroupsMax, c.NumGroups)
	}
	if c.NumTracks <= 1 || c.NumTracks > NumTracksMax {
		return fmt.Errorf("looper: NumTracks must be in (1, %d], got %d", NumTracksMax, c.NumTracks)
	}
	if c.SampleRate <= 0 {
		return fmt.Errorf("looper: SampleRate must be positive, got %d", c.SampleRate)
	}
	if c.TrackSeconds <= 0 {
		return fmt.Errorf("looper: TrackSeconds must be positive, got %d", c.TrackSeconds)
	}
	return nil
}

// Engine is the MasterLooper root aggregate: it exclusively owns the tracks
// and group membership, and is the single mutator of all looper state. It is
// mutated only by the realtime thread, inside Process; the control thread's
// only write surface is SubmitCommand, which hands an Event to the lock-free
// inbox.
type Engine struct {
	cfg         Config
	sampleLimit uint32

	tracks []*Track
	groups []GroupSet

	masterLength  []uint32
	masterCurrIdx uint32

	selectedGroup int
	selectedTrack int

	state         SystemState
	monitoringOff bool

	// calibrationTrack is the fixed track index reserved for the
	// Calibration dispatch arm; it is excluded from normal record/overdub
	// target validation.
	calibrationTrack int

	// Edge-alignment accumulators (spec §4.5). Single-use: cleared at the
	// end of every cycle regardless of whether they were consumed.
	recFrameDelay  uint32
	playFrameDelay uint32

	// finalizeTrack/finalizeDelay implement the "cycle that finalizes
	// recording" case of §4.5: when a Play event stops an in-progress
	// Recording/Overdubbing mid-cycle, the finalizing cycle still owes
	// the track its first playFrameDelay samples of live input before the
	// engine can fall through to the ordinary Playback mixdown. -1 means
	// nothing to finalize this cycle.
	finalizeTrack int
	finalizeDelay uint32

	inbox    Inbox
	rtEvents rtEventRing
}

// NewEngine allocates all sample buffers and group state up front. It must
// not run on the realtime thread.
func NewEngine(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	sampleLimit := uint32(cfg.SampleRate) * uint32(cfg.TrackSeconds)

	e := &Engine{
		cfg:              cfg,
		sampleLimit:      sampleLimit,
		tracks:           make([]*Track, cfg.NumTracks),
		groups:           make([]GroupSet, cfg.NumGroups),
		masterLength:     make([]uint32, cfg.NumGroups),
		selectedTrack:    -1,
		selectedGroup:    0,
		calibrationTrack: cfg.NumTracks - 1,
		finalizeTrack:    -1,
	}
	for i := range e.tracks {
		e.tracks[i] = newTrack(sampleLimit, cfg.Stereo)
	}
	return e, nil
}

// SubmitCommand is the control thread's sole write surface: it publishes an
// Event into the lock-free single-slot inbox for the realtime thread to
// drain on its next Process call. Safe to call concurrently with Process.
func (e *Engine) SubmitCommand(ev Event) {
	e.inbox.Submit(ev)
}

// DrainDiagnostics returns and clears any realtime diagnostic events
// (currently just capacity-overflow notices) published since the last call.
// Intended to be polled by the control thread once per command cycle and
// forwarded to the logger; never called from Process itself.
func (e *Engine) DrainDiagnostics() []RTEvent {
	return e.rtEvents.drainAll()
}

// System state and selection accessors. These are plain reads of fields the
// realtime thread is the sole writer of; a control thread reading them
// concurrently with Process may observe a stale value for one cycle, which
// is acceptable for introspection (the engine never blocks or synchronizes
// to serve them).
func (e *Engine) SystemState() SystemState  { return e.state }
func (e *Engine) SelectedGroup() int        { return e.selectedGroup }
func (e *Engine) SelectedTrack() int        { return e.selectedTrack }
func (e *Engine) MonitoringEnabled() bool   { return !e.monitoringOff }
func (e *Engine) MasterCurrentIndex() uint32 { return e.masterCurrIdx }
func (e *Engine) MasterLength(group int) uint32 {
	if group < 0 || group >= len(e.masterLength) {
		return 0
	}
	return e.masterLength[group]
}
func (e *Engine) NumTracks() int { return len(e.tracks) }
func (e *Engine) NumGroups() int { return len(e.groups) }
func (e *Engine) SampleLimit() uint32 { return e.sampleLimit }
func (e *Engine) CalibrationTrack() int { return e.calibrationTrack }

// Track returns a pointer to the track at idx for introspection (reading
// its State/Repeat/StartIndex/EndIndex/CurrentIndex); out-of-range idx
// returns nil.
func (e *Engine) Track(idx int) *Track {
	if idx < 0 || idx >= len(e.tracks) {
		return nil
	}
	return e.tracks[idx]
}

// GroupMembers reports whether track belongs to group.
func (e *Engine) GroupMembers(group, track int) bool {
	if group < 0 || group >= len(e.groups) {
		return false
	}
	return e.groups[group].Has(track)
}
