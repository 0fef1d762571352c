package game

import (
	"errors"
	"math"
	"testing"
)

func TestParseControlScheme(t *testing.T) {
	cases := map[string]ControlScheme{
		"":               SchemeKeyboardMouse,
		"keyboard-mouse": SchemeKeyboardMouse,
		"single-stick":   SchemeSingleStick,
		"autopilot":      SchemeAutopilot,
	}
	for in, want := range cases {
		got, err := ParseControlScheme(in)
		if err != nil || got != want {
			t.Fatalf("ParseControlScheme(%q) = %s, %v; want %s", in, got, err, want)
		}
		if in != "" && got.String() != in {
			t.Fatalf("String() = %q, want %q", got.String(), in)
		}
	}
	if _, err := ParseControlScheme("gamepad"); !errors.Is(err, ErrInvalidControlScheme) {
		t.Fatalf("expected ErrInvalidControlScheme, got %v", err)
	}
}

func TestAutopilot_WeavesAndFires(t *testing.T) {
	a := NewAutopilot()
	var in ControlInput
	for i := 0; i < 60; i++ {
		in = a.Poll()
	}
	if !in.Fire || !near(in.Aim.Angle, -math.Pi/2) {
		t.Fatalf("autopilot should aim up and fire, got %+v", in)
	}
	if in.Move.Angle != 0 || !near(in.Move.Radius, 60) {
		t.Fatalf("quarter weave should push right at full sway, got %+v", in.Move)
	}
	for i := 0; i < 120; i++ {
		in = a.Poll()
	}
	if in.Move.Angle != math.Pi || !near(in.Move.Radius, 60) {
		t.Fatalf("three-quarter weave should push left, got %+v", in.Move)
	}
}

func TestAutopilot_DrivesWorld(t *testing.T) {
	w := NewTestSim(WithBlankLevel(60, 1), WithWorldOptions(WithInput(NewAutopilot()))).World
	for i := 0; i < 60; i++ {
		w.Update()
	}
	if w.Player.Pos.X <= 500 {
		t.Fatalf("first half-weave should move the player right, x=%v", w.Player.Pos.X)
	}
	if w.Metrics.Fired == 0 {
		t.Fatal("autopilot should have fired")
	}
}

func TestStick_Active(t *testing.T) {
	if (Stick{}).Active() || !(Stick{Radius: 0.1}).Active() {
		t.Fatal("a stick is active only when deflected")
	}
}
