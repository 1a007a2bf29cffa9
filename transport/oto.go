//go:build !headless

// oto.go - oto/v3 audio output backend

// License: GPLv3 or later

package transport

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/ebitengine/oto/v3"
)

// Player drives an Engine through oto's stereo float32 output, pulling
// input from an InputSource on the same cycle. Engine and InputSource are
// swapped atomically so the realtime Read callback never blocks on a mutex;
// only Start/Stop/Close take the control mutex, mirroring how the original
// OTO backend separated its hot Read path from setup/control operations.
type Player struct {
	ctx     *oto.Context
	player  *oto.Player
	engine  atomic.Pointer[Engine]
	input   atomic.Pointer[InputSource]
	started bool
	mutex   sync.Mutex

	inL, inR   []float32
	outL, outR []float32
	interleave []float32
}

// NewPlayer opens the oto context at sampleRate with a stereo float32
// layout. The returned Player has no engine attached until SetEngine is
// called.
func NewPlayer(sampleRate int) (*Player, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   0,
	}

	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{
		ctx:        ctx,
		inL:        make([]float32, frameSize),
		inR:        make([]float32, frameSize),
		outL:       make([]float32, frameSize),
		outR:       make([]float32, frameSize),
		interleave: make([]float32, frameSize*2),
	}
	var silent InputSource = SilentInput{}
	p.input.Store(&silent)
	return p, nil
}

// SetEngine attaches the engine driving playback. Safe to call concurrently
// with Read; takes effect on the next cycle.
func (p *Player) SetEngine(e Engine) {
	p.engine.Store(&e)
	if p.player == nil {
		p.mutex.Lock()
		p.player = p.ctx.NewPlayer(p)
		p.mutex.Unlock()
	}
}

// SetInputSource overrides the default SilentInput. Safe to call
// concurrently with Read.
func (p *Player) SetInputSource(src InputSource) {
	p.input.Store(&src)
}

// Read implements io.Reader for oto.Player: it is called on oto's own
// goroutine and must return promptly. It loads the engine and input source
// atomically, runs exactly one Process cycle sized to the request (at most
// frameSize frames), and interleaves the stereo result into b as
// little-endian float32 bytes, returning how many bytes it filled.
func (p *Player) Read(b []byte) (int, error) {
	enginePtr := p.engine.Load()
	if enginePtr == nil {
		for i := range b {
			b[i] = 0
		}
		return len(b), nil
	}
	engine := *enginePtr
	input := *p.input.Load()

	n := len(b) / 8 // 2 channels * 4 bytes per float32
	if n > frameSize {
		n = frameSize
	}

	inL, inR := p.inL[:n], p.inR[:n]
	outL, outR := p.outL[:n], p.outR[:n]
	input.Read(inL, inR)
	engine.Process(n, inL, inR, outL, outR)

	interleaved := p.interleave[: n*2 : n*2]
	for i := 0; i < n; i++ {
		interleaved[2*i] = outL[i]
		interleaved[2*i+1] = outR[i]
	}

	nBytes := n * 8
	copy(b, (*[1 << 30]byte)(unsafe.Pointer(&interleaved[0]))[:nBytes])
	return nBytes, nil
}

// Start begins playback. No-op if already started or no engine attached.
func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

// Stop pauses playback without releasing the underlying oto player.
func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Pause()
		p.started = false
	}
}

// Close releases the oto player. The Player is not usable afterward.
func (p *Player) Close() error {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		err := p.player.Close()
		p.player = nil
		return err
	}
	return nil
}

// IsStarted reports whether playback is currently running.
func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}
