package game

import (
	"math"
	"testing"
)

func TestScaleRate_WrapsOctaves(t *testing.T) {
	if r := ScaleIonian.Rate(0, 0); r != 1 {
		t.Fatalf("ionian step 0 should be the base rate, got %v", r)
	}
	if r := ScaleIonian.Rate(7, 0); !near(r, 2) {
		t.Fatalf("ionian index 7 should be an octave up, got %v", r)
	}
	if r := ScaleIonian.Rate(-1, 0); !near(r, math.Pow(2, -1.0/12)) {
		t.Fatalf("ionian index -1 should be a semitone below base, got %v", r)
	}
	if r := ScaleSakuraDown.Rate(5, 0); !near(r, 2) {
		t.Fatalf("sakura-down index 5 should drop an octave from 4, got %v", r)
	}
	if r := ScaleIonian.Rate(0, 12); !near(r, 2) {
		t.Fatalf("offset of 12 semitones should double the rate, got %v", r)
	}
}

func TestScaleRate_EmptyStepsReturnBase(t *testing.T) {
	s := Scale{Name: "empty", Base: 3}
	if r := s.Rate(4, 2); r != 3 {
		t.Fatalf("expected base rate, got %v", r)
	}
}

func TestHarmonics(t *testing.T) {
	if r, err := HarmonicDown(1); err != nil || r != 4 {
		t.Fatalf("HarmonicDown(1) = %v, %v", r, err)
	}
	if r, err := HarmonicUp(7); err != nil || r != 1 {
		t.Fatalf("HarmonicUp(7) = %v, %v", r, err)
	}
	if r, err := HarmonicCustom(11); err != nil || r != 0.125 {
		t.Fatalf("HarmonicCustom(11) = %v, %v", r, err)
	}
	if _, err := HarmonicDown(-1); err == nil {
		t.Fatal("expected error for negative index")
	}
	if _, err := HarmonicCustom(12); err == nil {
		t.Fatal("expected error past the twelfth partial")
	}
}

func TestVolumeCurves(t *testing.T) {
	if v := VolumeFromMultiplier(0); !near(v, 0.9) {
		t.Fatalf("VolumeFromMultiplier(0) = %v, want 0.9", v)
	}
	if VolumeFromMultiplier(4) <= VolumeFromMultiplier(2) {
		t.Fatal("louder gates for larger multipliers")
	}
	if v := DistanceVolume(0); v != 1 {
		t.Fatalf("DistanceVolume(0) = %v, want 1", v)
	}
	if v := DistanceVolume(200); v != 0.5 {
		t.Fatalf("DistanceVolume(200) = %v, want 0.5", v)
	}
}

func TestSoundKindString(t *testing.T) {
	if SoundGate.String() != "gate" || SoundExplosion.String() != "explosion" || SoundKind(99).String() != "unknown" {
		t.Fatal("unexpected sound kind names")
	}
}
