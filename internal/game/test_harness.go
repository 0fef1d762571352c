package game

import (
	"fmt"
	"math"
)

// TestSim is a headless world harness used by tests and the batch reporter.
// It drives World.Step with scripted controls and supports deterministic
// seeding and structured logging.
type TestSim struct {
	World  *World
	SimLog *SimLog

	level    *Level
	tuning   Tuning
	seed     int64
	controls func(tick int) ControlInput
	extra    []WorldOption

	err error
}

// simOptionKind controls the pass in which an option is applied.
type simOptionKind int

const (
	simOptInfra  simOptionKind = iota // level, tuning, seed, verbose; applied before the world exists
	simOptEntity                      // place tanks, gates, pills after the world is built
)

// SimOption is a builder function applied to a TestSim during construction.
type SimOption struct {
	kind simOptionKind
	fn   func(*TestSim)
}

// WithLevel runs the sim on l instead of the embedded demo level.
func WithLevel(l *Level) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.level = l }}
}

// WithBlankLevel runs on n empty rows scrolling at speed.
func WithBlankLevel(rows int, speed float64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.level = BlankLevel("blank", rows, speed) }}
}

// WithSimTuning edits the tuning before the world is built.
func WithSimTuning(edit func(*Tuning)) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { edit(&ts.tuning) }}
}

// WithSimSeed sets the RNG seed for deterministic runs.
func WithSimSeed(seed int64) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.seed = seed }}
}

// WithVerbose enables per-hit and per-gate logging.
func WithVerbose(v bool) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.SimLog = NewSimLog(v) }}
}

// WithControls scripts the player input by tick.
func WithControls(fn func(tick int) ControlInput) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.controls = fn }}
}

// WithWorldOptions passes extra options through to NewWorld.
func WithWorldOptions(opts ...WorldOption) SimOption {
	return SimOption{simOptInfra, func(ts *TestSim) { ts.extra = append(ts.extra, opts...) }}
}

// WithEnemy places an enemy at (x, y) once the world exists.
func WithEnemy(tt TankType, move MoveMode, x, y float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.spawnEnemy(EnemySpec{Type: tt, Rotation: 0, Move: move}, Vec{x, y}, RowIndexAt(y))
	}}
}

// WithGate places a gate once the world exists.
func WithGate(gt GateType, start, end Vec, multiplier int) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		ts.World.addGate(GateSpec{Type: gt, Start: start, End: end, Multiplier: multiplier})
	}}
}

// WithPill places a pill once the world exists.
func WithPill(pt PillType, x, y float64) SimOption {
	return SimOption{simOptEntity, func(ts *TestSim) {
		w := ts.World
		w.Pills = append(w.Pills, newPill(w.newID(), pt, Vec{x, y}, w.Tuning))
	}}
}

// NewTestSim constructs a TestSim from the given options in ordered passes:
//  1. Infrastructure (level, tuning, seed, verbose, controls)
//  2. Build the World
//  3. Entities
func NewTestSim(opts ...SimOption) *TestSim {
	ts := &TestSim{
		tuning:   DefaultTuning(),
		seed:     1,
		SimLog:   NewSimLog(false),
		controls: func(int) ControlInput { return ControlInput{} },
	}
	for _, o := range opts {
		if o.kind == simOptInfra {
			o.fn(ts)
		}
	}
	if ts.level == nil {
		ts.level = MustLoadLevel("demo.lvl")
	}
	wopts := append([]WorldOption{
		WithTuning(ts.tuning),
		WithSeed(ts.seed),
		WithSimLog(ts.SimLog),
	}, ts.extra...)
	ts.World, ts.err = NewWorld(ts.level, wopts...)
	if ts.err != nil {
		return ts
	}
	for _, o := range opts {
		if o.kind == simOptEntity {
			o.fn(ts)
		}
	}
	return ts
}

// Err returns the world construction error, if any.
func (ts *TestSim) Err() error { return ts.err }

// RunTicks advances the simulation n ticks.
func (ts *TestSim) RunTicks(n int) {
	for i := 0; i < n; i++ {
		ts.step()
	}
}

// RunUntil advances the simulation up to maxTicks, stopping early if predicate
// returns true. Returns the tick at which the predicate was satisfied, or -1.
func (ts *TestSim) RunUntil(predicate func(*TestSim) bool, maxTicks int) int {
	for i := 0; i < maxTicks; i++ {
		ts.step()
		if predicate(ts) {
			return ts.World.Tick
		}
	}
	return -1
}

func (ts *TestSim) step() {
	w := ts.World
	prevState := w.State
	prevType := w.Player.Type
	w.Step(ts.controls(w.Tick + 1))

	if w.Player.Type != prevType {
		ts.SimLog.Add(w.Tick, w.Player.Label(), "player", "upgrade", "tier",
			fmt.Sprintf("%s → %s", prevType, w.Player.Type), 0)
	}
	if w.State != prevState {
		ts.SimLog.AddVerbose(w.Tick, "--", "--", "session", "observed",
			fmt.Sprintf("%s → %s", prevState, w.State), 0)
	}
	ts.SimLog.AddVerbose(w.Tick, w.Player.Label(), "player", "move", "position",
		w.Player.Pos.String(), w.Player.Pos.Y)
}

// CurrentTick returns the current simulation tick.
func (ts *TestSim) CurrentTick() int {
	return ts.World.Tick
}

// Snapshot returns the current world summary.
func (ts *TestSim) Snapshot() WorldSnapshot {
	return ts.World.Snapshot()
}

// HoldFire is a control script that fires straight up every tick.
func HoldFire(int) ControlInput {
	return ControlInput{Aim: Stick{Angle: -math.Pi / 2, Radius: 1}, Fire: true}
}
