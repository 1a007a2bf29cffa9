// scripting.go - Lua host functions bridging scripts to engine Commands

// License: GPLv3 or later

// Package scripting drives a looper.Engine from a small Lua script instead
// of live serial commands, for scripted integration tests and offline
// simulation runs (the looperd "sim" subcommand). It never touches the
// realtime path directly: every host function it exposes turns into a
// looper.Event submitted through the same Inbox a real command reader
// would use, plus an advance(n) host function that steps the engine by n
// frames through a Stepper so a script can assert on engine state between
// commands.
package scripting

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"
)

// Commander is the subset of *looper.Engine a script can drive.
type Commander interface {
	SubmitCommand(ev Event)
}

// Event mirrors looper.Event's constructor fields; scripting depends on
// this instead of the looper package directly so it stays usable against
// any engine-shaped type in tests.
type Event struct {
	Kind          int
	Track         int
	Group         int
	Repeat        int
	Monitoring    bool
	RecFrameDelay uint32
}

// Stepper advances the engine by n frames; looperd sim supplies one that
// calls the engine's Process directly.
type Stepper interface {
	Advance(n int)
}

// Harness wires a Lua state to host functions record/overdub/play/mute/
// unmute/group_add/group_remove/select_group/reset/advance, covering the
// track and group commands of the serial command boundary so a script reads
// like a transcript of commands.
type Harness struct {
	L    *lua.LState
	cmd  Commander
	step Stepper
}

// Event kind constants for the subset of looper.EventKind a script can
// issue, numbered independently of it so this package does not import the
// engine.
const (
	KindRecord EventKind = iota
	KindOverdub
	KindPlay
	KindMute
	KindUnmute
	KindAddToGroup
	KindRemoveFromGroup
	KindSetActiveGroup
	KindReset
)

type EventKind = int

// NewHarness creates a Lua state with the looper host functions registered
// and returns it ready for DoString/DoFile.
func NewHarness(cmd Commander, step Stepper) *Harness {
	h := &Harness{L: lua.NewState(), cmd: cmd, step: step}
	h.register()
	return h
}

func (h *Harness) register() {
	h.L.SetGlobal("record", h.L.NewFunction(h.luaRecord))
	h.L.SetGlobal("overdub", h.L.NewFunction(h.luaOverdub))
	h.L.SetGlobal("play", h.L.NewFunction(h.luaPlay))
	h.L.SetGlobal("mute", h.L.NewFunction(h.luaMute))
	h.L.SetGlobal("unmute", h.L.NewFunction(h.luaUnmute))
	h.L.SetGlobal("group_add", h.L.NewFunction(h.luaGroupAdd))
	h.L.SetGlobal("group_remove", h.L.NewFunction(h.luaGroupRemove))
	h.L.SetGlobal("select_group", h.L.NewFunction(h.luaSelectGroup))
	h.L.SetGlobal("reset", h.L.NewFunction(h.luaReset))
	h.L.SetGlobal("advance", h.L.NewFunction(h.luaAdvance))
}

// Run executes a script in full. Each host function call submits an Event
// synchronously and returns immediately; the script itself decides when to
// call advance() to let the engine process those queued commands.
func (h *Harness) Run(script string) error {
	if err := h.L.DoString(script); err != nil {
		return fmt.Errorf("scripting: %w", err)
	}
	return nil
}

// Close releases the Lua state.
func (h *Harness) Close() {
	h.L.Close()
}

func (h *Harness) luaRecord(L *lua.LState) int {
	track := L.CheckInt(1)
	group := L.CheckInt(2)
	h.cmd.SubmitCommand(Event{Kind: KindRecord, Track: track, Group: group})
	return 0
}

func (h *Harness) luaOverdub(L *lua.LState) int {
	track := L.CheckInt(1)
	h.cmd.SubmitCommand(Event{Kind: KindOverdub, Track: track})
	return 0
}

func (h *Harness) luaPlay(L *lua.LState) int {
	track := L.CheckInt(1)
	repeat := 0
	if L.GetTop() >= 2 {
		repeat = L.CheckInt(2)
	}
	h.cmd.SubmitCommand(Event{Kind: KindPlay, Track: track, Repeat: repeat})
	return 0
}

func (h *Harness) luaMute(L *lua.LState) int {
	track := L.CheckInt(1)
	h.cmd.SubmitCommand(Event{Kind: KindMute, Track: track})
	return 0
}

func (h *Harness) luaUnmute(L *lua.LState) int {
	track := L.CheckInt(1)
	h.cmd.SubmitCommand(Event{Kind: KindUnmute, Track: track})
	return 0
}

func (h *Harness) luaGroupAdd(L *lua.LState) int {
	track := L.CheckInt(1)
	group := L.CheckInt(2)
	h.cmd.SubmitCommand(Event{Kind: KindAddToGroup, Track: track, Group: group})
	return 0
}

func (h *Harness) luaGroupRemove(L *lua.LState) int {
	track := L.CheckInt(1)
	group := L.CheckInt(2)
	h.cmd.SubmitCommand(Event{Kind: KindRemoveFromGroup, Track: track, Group: group})
	return 0
}

func (h *Harness) luaSelectGroup(L *lua.LState) int {
	group := L.CheckInt(1)
	h.cmd.SubmitCommand(Event{Kind: KindSetActiveGroup, Group: group})
	return 0
}

func (h *Harness) luaReset(L *lua.LState) int {
	h.cmd.SubmitCommand(Event{Kind: KindReset})
	return 0
}

func (h *Harness) luaAdvance(L *lua.LState) int {
	n := L.CheckInt(1)
	if h.step != nil {
		h.step.Advance(n)
	}
	return 0
}
