// Package audio drives the oto playback sink with decoded WMA PCM and
// the engine's background-music dissolve (volume fade) behavior.
package audio

import (
	"sync"
	"sync/atomic"

	"github.com/ebitengine/oto/v3"
)

// Source supplies interleaved float32 PCM samples on demand, matching
// the shape of a decoded wma.PcmFrame stream.
type Source interface {
	// NextSample returns the next interleaved sample, or false once
	// the source is exhausted.
	NextSample() (float32, bool)
	Channels() int
}

const dissolveStepsPerSecond = 60

// Player adapts a Source to oto's io.Reader-based playback, the same
// pre-allocated-buffer, atomic-pointer-swap shape as the teacher's
// OtoPlayer, plus a master-volume dissolve (fade) stepped once per Read
// call and applied to every sample of that call.
type Player struct {
	ctx       *oto.Context
	player    *oto.Player
	source    atomic.Pointer[Source]
	sampleBuf []float32
	started   bool
	mutex     sync.Mutex

	volume        atomic.Uint32 // float32 bits, current master volume
	dissolveTo     atomic.Uint32 // float32 bits, fade target
	dissolvePerTick atomic.Uint32 // float32 bits, per-Read-chunk step
}

// NewPlayer opens an oto playback context at sampleRate for the given
// channel count.
func NewPlayer(sampleRate, channels int) (*Player, error) {
	opts := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: channels,
		Format:       oto.FormatFloat32LE,
		BufferSize:   4,
	}
	ctx, ready, err := oto.NewContext(opts)
	if err != nil {
		return nil, err
	}
	<-ready

	p := &Player{ctx: ctx}
	p.volume.Store(math32bits(1))
	p.dissolveTo.Store(math32bits(1))
	return p, nil
}

// SetupSource installs src as the active sample source and creates the
// underlying oto player.
func (p *Player) SetupSource(src Source) {
	p.mutex.Lock()
	defer p.mutex.Unlock()

	p.source.Store(&src)
	p.player = p.ctx.NewPlayer(p)
	p.sampleBuf = make([]float32, 4096)
}

// Read implements io.Reader for oto, pulling samples from the active
// source and applying the current dissolve-adjusted master volume.
func (p *Player) Read(buf []byte) (int, error) {
	srcPtr := p.source.Load()
	if srcPtr == nil {
		for i := range buf {
			buf[i] = 0
		}
		return len(buf), nil
	}
	src := *srcPtr

	numSamples := len(buf) / 4
	if len(p.sampleBuf) < numSamples {
		p.sampleBuf = make([]float32, numSamples)
	}
	samples := p.sampleBuf[:numSamples]

	vol := bitsToFloat32(p.volume.Load())
	target := bitsToFloat32(p.dissolveTo.Load())
	step := bitsToFloat32(p.dissolvePerTick.Load())
	vol = stepToward(vol, target, step)

	for i := 0; i < numSamples; i++ {
		s, ok := src.NextSample()
		if !ok {
			s = 0
		}
		samples[i] = s * vol
	}
	p.volume.Store(math32bits(vol))

	packFloat32LE(buf, samples)
	return len(buf), nil
}

func stepToward(cur, target, step float32) float32 {
	if step <= 0 || cur == target {
		return target
	}
	if cur < target {
		cur += step
		if cur > target {
			cur = target
		}
		return cur
	}
	cur -= step
	if cur < target {
		cur = target
	}
	return cur
}

// Dissolve fades the master volume to target over durationMs, sampled
// once per Read chunk at dissolveStepsPerSecond-equivalent granularity.
func (p *Player) Dissolve(target float32, durationMs int) {
	p.dissolveTo.Store(math32bits(target))
	if durationMs <= 0 {
		p.volume.Store(math32bits(target))
		p.dissolvePerTick.Store(math32bits(1))
		return
	}
	steps := float32(durationMs) / 1000 * dissolveStepsPerSecond
	if steps < 1 {
		steps = 1
	}
	cur := bitsToFloat32(p.volume.Load())
	delta := target - cur
	if delta < 0 {
		delta = -delta
	}
	p.dissolvePerTick.Store(math32bits(delta / steps))
}

func (p *Player) Start() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if !p.started && p.player != nil {
		p.player.Play()
		p.started = true
	}
}

func (p *Player) Stop() {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.started && p.player != nil {
		p.player.Close()
		p.started = false
	}
}

func (p *Player) Close() {
	p.Stop()
	p.mutex.Lock()
	defer p.mutex.Unlock()
	if p.player != nil {
		p.player.Close()
		p.player = nil
	}
}

func (p *Player) IsStarted() bool {
	p.mutex.Lock()
	defer p.mutex.Unlock()
	return p.started
}

// Volume returns the current master volume, mid-dissolve included.
func (p *Player) Volume() float32 { return bitsToFloat32(p.volume.Load()) }
