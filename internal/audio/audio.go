// Package audio plays game sound cues as short synthesized tones through
// the beep speaker.
package audio

import (
	"math"
	"sync"
	"time"

	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"
)

// Base pitch and length per cue family. Cue rate multiplies the pitch.
var toneTable = map[game.SoundKind]struct {
	freq     float64
	duration time.Duration
}{
	game.SoundGate:      {440, 90 * time.Millisecond},
	game.SoundPill:      {523.25, 160 * time.Millisecond},
	game.SoundFire:      {220, 40 * time.Millisecond},
	game.SoundExplosion: {70, 300 * time.Millisecond},
}

// Tone is the synthesized form of a cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Volume   float64 // linear gain, 0 is silent
}

// ToneFor maps a cue to its tone. Unknown kinds fall back to the gate tone.
func ToneFor(cue game.SoundCue) Tone {
	spec, ok := toneTable[cue.Kind]
	if !ok {
		spec = toneTable[game.SoundGate]
	}
	rate := cue.Rate
	if rate <= 0 {
		rate = 1
	}
	return Tone{
		Freq:     spec.freq * rate,
		Duration: spec.duration,
		Volume:   math.Max(0, cue.Volume),
	}
}

// Streamer renders a tone at sr with a linear fade-out and gain applied
// on top of masterLog2. It returns nil for tones beep cannot synthesize.
func Streamer(t Tone, sr beep.SampleRate, masterLog2 float64) beep.Streamer {
	sine, err := generators.SineTone(sr, t.Freq)
	if err != nil {
		return nil
	}
	n := sr.N(t.Duration)
	vol := &effects.Volume{Streamer: &fadeOut{s: beep.Take(n, sine), total: n}, Base: 2, Silent: t.Volume <= 0}
	if t.Volume > 0 {
		vol.Volume = math.Log2(t.Volume) + masterLog2
	}
	return vol
}

// fadeOut ramps amplitude linearly from 1 to 0 over total samples.
type fadeOut struct {
	s     beep.Streamer
	pos   int
	total int
}

func (f *fadeOut) Stream(samples [][2]float64) (int, bool) {
	n, ok := f.s.Stream(samples)
	for i := 0; i < n; i++ {
		g := 1 - float64(f.pos)/float64(f.total)
		samples[i][0] *= g
		samples[i][1] *= g
		f.pos++
	}
	return n, ok
}

func (f *fadeOut) Err() error { return f.s.Err() }

type speakerLock struct{}

func (speakerLock) Lock()   { speaker.Lock() }
func (speakerLock) Unlock() { speaker.Unlock() }

// Player is a game.AudioSink backed by a beep mixer on the speaker.
type Player struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	lock        sync.Locker // guards mixer against the speaker goroutine
	sampleRate  beep.SampleRate
	master      float64
	initialized bool
	dropped     int
	log         zerolog.Logger
}

// NewPlayer creates a silent player. Call Init to open the speaker.
func NewPlayer(sampleRate int, masterLog2 float64, log zerolog.Logger) *Player {
	return &Player{
		mixer:      &beep.Mixer{},
		lock:       speakerLock{},
		sampleRate: beep.SampleRate(sampleRate),
		master:     masterLog2,
		log:        log,
	}
}

// Init opens the speaker and starts the mixer.
func (p *Player) Init() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.initialized {
		return nil
	}
	if err := speaker.Init(p.sampleRate, p.sampleRate.N(time.Second/20)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.initialized = true
	p.log.Info().Int("sampleRate", int(p.sampleRate)).Msg("audio ready")
	return nil
}

// PlaySound queues cue on the mixer. Before Init, cues are counted and
// dropped.
func (p *Player) PlaySound(cue game.SoundCue) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		p.dropped++
		return
	}
	s := Streamer(ToneFor(cue), p.sampleRate, p.master)
	if s == nil {
		p.log.Debug().Stringer("kind", cue.Kind).Float64("rate", cue.Rate).Msg("tone out of range")
		p.dropped++
		return
	}
	p.lock.Lock()
	p.mixer.Add(s)
	p.lock.Unlock()
}

// Dropped returns how many cues were not played.
func (p *Player) Dropped() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.dropped
}

// Close clears pending sounds and shuts the speaker.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.initialized {
		return
	}
	p.lock.Lock()
	p.mixer.Clear()
	p.lock.Unlock()
	speaker.Close()
	p.initialized = false
}
