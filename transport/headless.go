//go:build headless

// headless.go - No-device backend for CI builds without an audio device

// License: GPLv3 or later

package transport

import "sync/atomic"

// Player is the headless stand-in used for CI builds: it runs the same
// Process/InputSource contract as the oto-backed
// Player but never touches a real audio device. Callers drive it by calling
// Pull instead of relying on a device callback.
type Player struct {
	engine  atomic.Pointer[Engine]
	input   atomic.Pointer[InputSource]
	started bool
}

func NewPlayer(sampleRate int) (*Player, error) {
	p := &Player{}
	var silent InputSource = SilentInput{}
	p.input.Store(&silent)
	return p, nil
}

func (p *Player) SetEngine(e Engine) {
	p.engine.Store(&e)
}

func (p *Player) SetInputSource(src InputSource) {
	p.input.Store(&src)
}

// Pull runs exactly one Process cycle of n frames and returns the stereo
// output, for callers that step the engine manually instead of letting a
// device pull it.
func (p *Player) Pull(n int) (outL, outR []float32) {
	enginePtr := p.engine.Load()
	outL, outR = make([]float32, n), make([]float32, n)
	if enginePtr == nil {
		return outL, outR
	}
	engine := *enginePtr
	input := *p.input.Load()
	inL, inR := make([]float32, n), make([]float32, n)
	input.Read(inL, inR)
	engine.Process(n, inL, inR, outL, outR)
	return outL, outR
}

func (p *Player) Start()          { p.started = true }
func (p *Player) Stop()           { p.started = false }
func (p *Player) Close() error    { p.started = false; return nil }
func (p *Player) IsStarted() bool { return p.started }
