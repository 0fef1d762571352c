package game

import "testing"

func TestSoundTestGates_Layout(t *testing.T) {
	tu := DefaultTuning()
	specs := SoundTestGates(tu)
	if len(specs) != soundTestGates {
		t.Fatalf("expected %d gates, got %d", soundTestGates, len(specs))
	}
	for m, gs := range specs {
		if gs.Multiplier != m || gs.Type != GateNormal {
			t.Fatalf("gate %d: %s x%d", m, gs.Type, gs.Multiplier)
		}
		if gs.Start.Y != gs.End.Y || !near(gs.End.X-gs.Start.X, 2*soundTestHalfLen) {
			t.Fatalf("gate %d should be horizontal and %d wide", m, 2*soundTestHalfLen)
		}
	}
	if !near(specs[0].Start.Y, 5630) || !near(specs[11].Start.Y, 5130) {
		t.Fatalf("unexpected rows: %v and %v", specs[0].Start.Y, specs[11].Start.Y)
	}
}

func TestNewSoundTestWorld_SandboxNeverEnds(t *testing.T) {
	w, err := NewSoundTestWorld()
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Gates) != soundTestGates || !w.Sandbox || w.Tuning.ForceForward {
		t.Fatalf("unexpected sound test world: gates=%d sandbox=%v", len(w.Gates), w.Sandbox)
	}
	start := w.Player.Pos
	for i := 0; i < 300; i++ {
		w.Step(ControlInput{})
	}
	if w.State != StatePlaying {
		t.Fatalf("sound test should never end, got %s", w.State)
	}
	if w.Player.Pos != start {
		t.Fatalf("player should stand still without input, moved to %s", w.Player.Pos)
	}
}

func TestNewSoundTestWorld_ShootingSoundsGates(t *testing.T) {
	sink := newRecordingSink()
	w, err := NewSoundTestWorld(WithAudio(sink))
	if err != nil {
		t.Fatal(err)
	}
	w.Player.Pos.X = 125 // under the x0 gate
	for i := 0; i < 300; i++ {
		w.Step(HoldFire(i))
	}
	gates := 0
	for _, c := range sink.sounds {
		if c.Kind == SoundGate {
			gates++
		}
	}
	if gates == 0 {
		t.Fatal("expected at least one gate cue")
	}
	if w.Metrics.Multiplied != 0 {
		t.Fatal("the x0 gate must only swallow bullets")
	}
}

func TestBlankLevel(t *testing.T) {
	l := BlankLevel("b", 5, 0.5)
	if len(l.Rows) != 5 || l.Speed(2) != 0.5 {
		t.Fatalf("unexpected blank level %+v", l)
	}
	for _, c := range l.Rows[0].Cells {
		if k, err := ClassifyCell(c); err != nil || k != CellEmpty {
			t.Fatalf("blank cell %q classified as %v (%v)", c, k, err)
		}
	}
}
