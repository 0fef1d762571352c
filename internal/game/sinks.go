package game

// SoundKind identifies a family of cues for the audio adapter.
type SoundKind int

const (
	SoundGate SoundKind = iota
	SoundPill
	SoundFire
	SoundExplosion
)

func (sk SoundKind) String() string {
	switch sk {
	case SoundGate:
		return "gate"
	case SoundPill:
		return "pill"
	case SoundFire:
		return "fire"
	case SoundExplosion:
		return "explosion"
	default:
		return "unknown"
	}
}

// SoundCue is one fire-and-forget sound request.
type SoundCue struct {
	Kind   SoundKind
	Rate   float64 // playback-rate multiplier, 1 = base pitch
	Volume float64
	Pos    Vec
}

// AudioSink plays sounds. Implementations must not block the tick.
type AudioSink interface {
	PlaySound(cue SoundCue)
}

// VisualSink mirrors entity lifecycle into the presentation layer.
type VisualSink interface {
	Spawned(ref EntityRef)
	Removed(ref EntityRef)
	Tinted(ref EntityRef, rgb uint32)
	Explosion(at Vec, scale float64)
}

// StateListener is told about every game state transition.
type StateListener func(from, to GameState)

// SceneChangeListener fires once, a fixed delay after a terminal state.
type SceneChangeListener func(final GameState)

type nopAudio struct{}

func (nopAudio) PlaySound(SoundCue) {}

type nopVisual struct{}

func (nopVisual) Spawned(EntityRef) {}
func (nopVisual) Removed(EntityRef) {}
func (nopVisual) Tinted(EntityRef, uint32) {}
func (nopVisual) Explosion(Vec, float64) {}

// MultiVisual fans visual events out to several sinks.
type MultiVisual []VisualSink

func (m MultiVisual) Spawned(ref EntityRef) {
	for _, s := range m {
		s.Spawned(ref)
	}
}

func (m MultiVisual) Removed(ref EntityRef) {
	for _, s := range m {
		s.Removed(ref)
	}
}

func (m MultiVisual) Tinted(ref EntityRef, rgb uint32) {
	for _, s := range m {
		s.Tinted(ref, rgb)
	}
}

func (m MultiVisual) Explosion(at Vec, scale float64) {
	for _, s := range m {
		s.Explosion(at, scale)
	}
}

// MultiAudio fans sound cues out to several sinks.
type MultiAudio []AudioSink

func (m MultiAudio) PlaySound(cue SoundCue) {
	for _, s := range m {
		s.PlaySound(cue)
	}
}
