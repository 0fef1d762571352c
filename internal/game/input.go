package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidControlScheme is returned for an unrecognised control scheme name.
var ErrInvalidControlScheme = errors.New("invalid control scheme")

// Stick is a normalised analogue input: direction in radians, deflection in
// pixels of thumb travel (the stick threshold maps to full speed).
type Stick struct {
	Angle  float64
	Radius float64
}

// Active reports whether the stick is deflected at all.
func (s Stick) Active() bool { return s.Radius > 0 }

// ControlInput is everything the simulation reads from the player in a tick.
type ControlInput struct {
	Move Stick
	Aim  Stick
	Fire bool
}

// InputSource yields one ControlInput per tick.
type InputSource interface {
	Poll() ControlInput
}

// InputFunc adapts a function to InputSource.
type InputFunc func() ControlInput

func (f InputFunc) Poll() ControlInput { return f() }

// idleInput never moves and never fires.
var idleInput = InputFunc(func() ControlInput { return ControlInput{} })

// ControlScheme names how raw device input is turned into sticks.
type ControlScheme int

const (
	SchemeKeyboardMouse ControlScheme = iota // WASD moves, mouse aims
	SchemeSingleStick                        // one stick drives and aims
	SchemeAutopilot                          // scripted, for headless runs
)

// ParseControlScheme resolves a scheme name from config or flags.
func ParseControlScheme(name string) (ControlScheme, error) {
	switch name {
	case "keyboard-mouse", "":
		return SchemeKeyboardMouse, nil
	case "single-stick":
		return SchemeSingleStick, nil
	case "autopilot":
		return SchemeAutopilot, nil
	default:
		return 0, fmt.Errorf("%q: %w", name, ErrInvalidControlScheme)
	}
}

func (cs ControlScheme) String() string {
	switch cs {
	case SchemeKeyboardMouse:
		return "keyboard-mouse"
	case SchemeSingleStick:
		return "single-stick"
	case SchemeAutopilot:
		return "autopilot"
	default:
		return "unknown"
	}
}

// Autopilot is a deterministic input script: it weaves the player left and
// right while aiming straight up and holding fire.
type Autopilot struct {
	tick   int
	Period int     // ticks per full weave
	Sway   float64 // stick radius at the weave peak
	Fire   bool
}

// NewAutopilot returns the default weaving script.
func NewAutopilot() *Autopilot {
	return &Autopilot{Period: 240, Sway: 60, Fire: true}
}

func (a *Autopilot) Poll() ControlInput {
	a.tick++
	phase := 2 * math.Pi * float64(a.tick) / float64(max(a.Period, 1))
	sway := math.Sin(phase) * a.Sway
	move := Stick{Angle: 0, Radius: math.Abs(sway)}
	if sway < 0 {
		move.Angle = math.Pi
	}
	return ControlInput{
		Move: move,
		Aim:  Stick{Angle: -math.Pi / 2, Radius: 1},
		Fire: a.Fire,
	}
}
