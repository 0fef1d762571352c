package game

import (
	"fmt"
	"math"
)

// Scale maps a note index to a playback-rate multiplier. Steps are semitone
// offsets within one octave; OctaveStep is added per wrap (+12 climbs,
// -12 descends). Base is the rate of step zero.
type Scale struct {
	Name       string
	Steps      []int
	OctaveStep int
	Base       float64
}

var (
	ScaleSakuraDown     = Scale{Name: "sakura-down", Steps: []int{0, -4, -5, -9, -10}, OctaveStep: -12, Base: 4}
	ScaleSakuraUp       = Scale{Name: "sakura-up", Steps: []int{0, 2, 3, 7, 8}, OctaveStep: 12, Base: 1}
	ScaleIonian         = Scale{Name: "ionian", Steps: []int{0, 2, 4, 5, 7, 9, 11}, OctaveStep: 12, Base: 1}
	ScalePhrygianDown   = Scale{Name: "phrygian-down", Steps: []int{0, -2, -4, -5, -7, -9, -11}, OctaveStep: 12, Base: 1}
	ScalePentatonicUp   = Scale{Name: "pentatonic-up", Steps: []int{0, 2, 4, 7, 9}, OctaveStep: 12, Base: 0.5}
	ScalePentatonicDown = Scale{Name: "pentatonic-down", Steps: []int{0, -3, -5, -7, -10}, OctaveStep: -12, Base: 4}
	ScaleTankTheme      = Scale{Name: "tank-theme", Steps: []int{0, -4, -5, -7, -9}, OctaveStep: -12, Base: 4}
	ScaleCrystal4       = Scale{Name: "crystal-4", Steps: []int{0, -3, -6, -8}, OctaveStep: -12, Base: 4}
	ScaleCrystal5       = Scale{Name: "crystal-5", Steps: []int{0, -1, -3, -6, -8}, OctaveStep: -12, Base: 4}
)

// Rate returns the playback-rate multiplier for noteIndex shifted by offset
// semitones.
func (s Scale) Rate(noteIndex, offset int) float64 {
	n := len(s.Steps)
	if n == 0 {
		return s.Base
	}
	idx := noteIndex % n
	oct := noteIndex / n
	if idx < 0 {
		idx += n
		oct--
	}
	semi := s.Steps[idx] + oct*s.OctaveStep + offset
	return s.Base * math.Pow(2, float64(semi)/12)
}

// HarmonicDown returns 8/(n+1), a descending harmonic series.
func HarmonicDown(noteIndex int) (float64, error) {
	if noteIndex < 0 {
		return 0, fmt.Errorf("harmonic index %d is negative", noteIndex)
	}
	return 8 / float64(noteIndex+1), nil
}

// HarmonicUp returns (n+1)/8.
func HarmonicUp(noteIndex int) (float64, error) {
	if noteIndex < 0 {
		return 0, fmt.Errorf("harmonic index %d is negative", noteIndex)
	}
	return float64(noteIndex+1) / 8, nil
}

// HarmonicCustom walks the rising series downward from the twelfth partial,
// so the sound-test gates 0..11 all map to valid indices.
func HarmonicCustom(noteIndex int) (float64, error) {
	return HarmonicUp(11 - noteIndex)
}

// VolumeFromMultiplier is the gate tone loudness for a multiplier.
func VolumeFromMultiplier(m int) float64 {
	return 3 * (0.013*math.Pow(float64(m), 1.5) + 0.3)
}

// DistanceVolume attenuates a sound heard from d pixels away.
func DistanceVolume(d float64) float64 {
	return 1 / (d/200 + 1)
}
