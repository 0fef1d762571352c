package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/rs/zerolog"
)

// ErrNoLevel is returned when a world is built without level rows.
var ErrNoLevel = errors.New("world has no level")

// GameState is the session phase. Win and lose are terminal.
type GameState int

const (
	StateInit GameState = iota
	StatePlaying
	StateWin
	StateLose
)

func (gs GameState) String() string {
	switch gs {
	case StateInit:
		return "init"
	case StatePlaying:
		return "playing"
	case StateWin:
		return "win"
	case StateLose:
		return "lose"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further gameplay happens in this state.
func (gs GameState) Terminal() bool { return gs == StateWin || gs == StateLose }

// World is the whole simulation: every entity, the tick counter and the
// session state. It has no rendering dependency; adapters observe it
// through sinks and listeners.
type World struct {
	Tuning Tuning
	Level  *Level
	Tiles  *TileMap

	Player  *Tank
	Enemies []*Tank
	Gates   []*Gate
	Pills   []*Pill

	Camera    *Camera
	Scheduler *Scheduler
	Metrics   *Metrics
	SimLog    *SimLog
	Log       zerolog.Logger

	Tick         int
	State        GameState
	RowCurr      int
	RowPrev      int
	SceneChanged bool

	// Sandbox keeps the session playing forever; used by the sound test.
	Sandbox bool

	// Events is the collision list of the most recent tick.
	Events []CollisionEvent

	rng      *rand.Rand
	input    InputSource
	controls ControlInput
	audio    AudioSink
	visual   VisualSink

	stateListeners []StateListener
	sceneListeners []SceneChangeListener

	streamed       map[int]bool
	nextID         int
	nextEnemyIndex int
}

// WorldOption configures a World during NewWorld.
type WorldOption func(*World)

// WithTuning replaces the default tuning.
func WithTuning(tu Tuning) WorldOption {
	return func(w *World) { w.Tuning = tu }
}

// WithSeed seeds the enemy-fire RNG for deterministic runs.
func WithSeed(seed int64) WorldOption {
	return func(w *World) {
		w.rng = rand.New(rand.NewSource(seed)) // #nosec G404 -- gameplay randomness
	}
}

// WithLogger attaches a structured logger.
func WithLogger(l zerolog.Logger) WorldOption {
	return func(w *World) { w.Log = l }
}

// WithMetrics attaches counters. Without it the no-op meter is used.
func WithMetrics(m *Metrics) WorldOption {
	return func(w *World) { w.Metrics = m }
}

// WithSimLog records gameplay events into sl.
func WithSimLog(sl *SimLog) WorldOption {
	return func(w *World) { w.SimLog = sl }
}

// WithSandbox disables the win/lose check.
func WithSandbox() WorldOption {
	return func(w *World) { w.Sandbox = true }
}

// WithInput sets where Update reads player controls from.
func WithInput(in InputSource) WorldOption {
	return func(w *World) { w.input = in }
}

// WithAudio routes sound cues to a.
func WithAudio(a AudioSink) WorldOption {
	return func(w *World) { w.audio = a }
}

// WithVisual routes lifecycle events to v.
func WithVisual(v VisualSink) WorldOption {
	return func(w *World) { w.visual = v }
}

// WithStateListener registers fn for every state transition.
func WithStateListener(fn StateListener) WorldOption {
	return func(w *World) { w.stateListeners = append(w.stateListeners, fn) }
}

// WithSceneChangeListener registers fn for the delayed scene change.
func WithSceneChangeListener(fn SceneChangeListener) WorldOption {
	return func(w *World) { w.sceneListeners = append(w.sceneListeners, fn) }
}

// NewWorld builds a world for level. Platforms, spikes, pills and gates are
// placed immediately; enemy tanks are streamed in as the player advances.
func NewWorld(level *Level, opts ...WorldOption) (*World, error) {
	if level == nil || len(level.Rows) == 0 {
		return nil, ErrNoLevel
	}
	w := &World{
		Tuning:    DefaultTuning(),
		Level:     level,
		Scheduler: NewScheduler(),
		SimLog:    NewSimLog(false),
		Log:       zerolog.Nop(),
		State:     StateInit,
		rng:       rand.New(rand.NewSource(1)), // #nosec G404 -- gameplay randomness
		input:     idleInput,
		audio:     nopAudio{},
		visual:    nopVisual{},
		streamed:  make(map[int]bool),
	}
	for _, o := range opts {
		o(w)
	}
	if w.Metrics == nil {
		w.Metrics = nopMetrics()
	}

	w.Tiles = NewTileMap(rowCells, len(level.Rows))
	if err := w.placeStatics(); err != nil {
		return nil, err
	}

	tu := w.Tuning
	start := Vec{tu.GameWidth * 0.5, tu.GameHeightLong * tu.TankStartYRatio}
	w.Player = newPlayerTank(w.newID(), start, tu)
	w.Camera = NewCamera(tu, start.Y)
	w.RowCurr = RowIndexAt(start.Y)
	w.RowPrev = w.RowCurr
	w.visual.Spawned(EntityRef{EntityTank, w.Player.ID})

	w.Log.Info().
		Str("level", level.Name).
		Int("rows", len(level.Rows)).
		Int("gates", len(w.Gates)).
		Int("pills", len(w.Pills)).
		Msg("world created")
	return w, nil
}

// placeStatics decodes every non-tank cell of the level.
func (w *World) placeStatics() error {
	for i, row := range w.Level.Rows {
		for j, code := range row.Cells {
			kind, err := ClassifyCell(code)
			if err != nil {
				return fmt.Errorf("row %d col %d: %w", i, j, err)
			}
			switch kind {
			case CellPlatform:
				w.Tiles.Set(j, i, TilePlatform)
			case CellSpike:
				w.Tiles.Set(j, i, TileSpike)
			case CellPill:
				pt, err := DecodePill(code)
				if err != nil {
					return fmt.Errorf("row %d col %d: %w", i, j, err)
				}
				p := newPill(w.newID(), pt, CellCenter(j, i), w.Tuning)
				w.Pills = append(w.Pills, p)
				w.visual.Spawned(EntityRef{EntityPill, p.ID})
			case CellGate:
				gs, err := DecodeGate(code, i, j)
				if err != nil {
					return fmt.Errorf("row %d col %d: %w", i, j, err)
				}
				w.addGate(gs)
			}
		}
	}
	return nil
}

func (w *World) addGate(gs GateSpec) *Gate {
	g := NewGate(w.newID(), gs.Type, gs.Start, gs.End, gs.Multiplier, ScaleSakuraDown, w.Tuning.GateSoundNoteOffset)
	w.Gates = append(w.Gates, g)
	w.visual.Spawned(EntityRef{EntityGate, g.ID})
	return g
}

func (w *World) newID() int {
	w.nextID++
	return w.nextID
}

// Controls returns the input read on the current tick.
func (w *World) Controls() ControlInput { return w.controls }

// Update polls the input source and advances one tick.
func (w *World) Update() {
	w.Step(w.input.Poll())
}

// Step advances the simulation one fixed tick with the given controls.
// Once the session is won or lost only deferred timers keep running.
func (w *World) Step(in ControlInput) {
	// 1. CLOCK
	w.Tick++

	// 2. TIMERS
	w.Scheduler.RunDue(w, w.Tick)
	if w.State.Terminal() {
		return
	}

	// 3. ROW
	w.RowCurr = RowIndexAt(w.Player.Pos.Y)

	// 4. CONTROLS
	w.controls = in

	// 5. TANKS (enemies first, then the player)
	for _, e := range append([]*Tank(nil), w.Enemies...) {
		w.updateTank(e)
	}
	w.updateTank(w.Player)

	// 6. PHYSICS
	w.integrate()

	// 7. COLLISIONS
	w.Events = w.broadPhase()
	w.resolve(w.Events)

	// 8. GATES
	w.updateGateArrows()

	// 9. CAMERA
	w.Camera.Follow(w.Player.Pos.Y)

	// 10. SESSION
	switch w.State {
	case StateInit:
		w.setState(StatePlaying)
	case StatePlaying:
		w.streamCreate()
		w.streamDestroy()
		if !w.Sandbox {
			w.checkWinLose()
		}
	}

	w.RowPrev = w.RowCurr
}

// integrate moves every live body by its velocity over one tick.
func (w *World) integrate() {
	tu := w.Tuning
	move := func(t *Tank) {
		for _, b := range t.Bullets.Snapshot() {
			b.Pos = b.Pos.Add(b.Vel.Scale(tickSeconds))
		}
		if !t.IsAlive() {
			return
		}
		t.PrevPos = t.Pos
		t.Pos = t.Pos.Add(t.Vel.Scale(tickSeconds))
		lo, hi := t.Radius, tu.GameWidth-t.Radius
		if t.Pos.X < lo || t.Pos.X > hi {
			t.Pos.X = clamp(t.Pos.X, lo, hi)
			t.Vel.X = 0
		}
		t.Health.Follow(t.Pos)
		t.Fire.Follow(t.Pos)
	}
	for _, e := range w.Enemies {
		move(e)
	}
	move(w.Player)
}

func (w *World) updateGateArrows() {
	if !w.Tuning.GateArrowUsesTurretRotation {
		return
	}
	heading := w.Player.TurretRotation - math.Pi/2
	for _, g := range w.Gates {
		g.ArrowAngle = GateTransformAngle(heading, g.Type, g.Rotation)
	}
}

// tankByID finds the player or a live-listed enemy.
func (w *World) tankByID(id int) *Tank {
	if w.Player != nil && w.Player.ID == id {
		return w.Player
	}
	for _, e := range w.Enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

func (w *World) gateByID(id int) *Gate {
	for _, g := range w.Gates {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// AliveEnemies counts enemies still in the alive state.
func (w *World) AliveEnemies() int {
	n := 0
	for _, e := range w.Enemies {
		if e.IsAlive() {
			n++
		}
	}
	return n
}

// BulletCount sums live bullets across every tank.
func (w *World) BulletCount() int {
	n := w.Player.Bullets.Len()
	for _, e := range w.Enemies {
		n += e.Bullets.Len()
	}
	return n
}

// --- Lifecycle ---

// checkDeath moves a tank whose health ran out from alive to dead.
func (w *World) checkDeath(t *Tank) {
	if t.IsAlive() && t.Health.IsEmpty() {
		w.killTank(t)
	}
}

// killTank performs alive -> dead and schedules the gone step.
func (w *World) killTank(t *Tank) {
	if err := t.kill(w.Tick); err != nil {
		w.Log.Debug().Err(err).Msg("kill skipped")
		return
	}
	w.Metrics.destroyed(t)
	w.visual.Explosion(t.Pos, 1)
	w.audio.PlaySound(SoundCue{Kind: SoundExplosion, Rate: 1, Volume: 1, Pos: t.Pos})
	tankEvent(w.Log.Info(), t).Int("tick", w.Tick).Msg("tank destroyed")
	w.record(t, "state", "dead", fmt.Sprintf("alive → dead at %s", t.Pos), t.Health.Max())

	delay := w.Tuning.TankDeadGoneDelayMs
	if t.IsPlayer() {
		delay = w.Tuning.TankPlayerGoneDelayMs
	}
	w.Scheduler.After(w.Tick, MsToTicks(delay), "tank-gone", EntityRef{EntityTank, t.ID},
		func(w *World, ref EntityRef) {
			t := w.tankByID(ref.ID)
			if t == nil || t.State != TankDead {
				return
			}
			w.finishTank(t)
		})
}

// finishTank performs dead -> gone: bullets are destroyed and an enemy is
// dropped from the roster.
func (w *World) finishTank(t *Tank) {
	if err := t.finish(); err != nil {
		w.Log.Debug().Err(err).Msg("finish skipped")
		return
	}
	for _, b := range t.Bullets.Snapshot() {
		w.destroyBullet(t, b)
	}
	w.visual.Removed(EntityRef{EntityTank, t.ID})
	w.record(t, "state", "gone", "dead → gone", 0)
	if t.IsPlayer() {
		return
	}
	for i, e := range w.Enemies {
		if e.ID == t.ID {
			w.Enemies = append(w.Enemies[:i], w.Enemies[i+1:]...)
			break
		}
	}
}

// destroyTank tears a tank down immediately. An alive tank is first forced
// through the dead state without an explosion.
func (w *World) destroyTank(t *Tank) {
	if t.IsAlive() {
		if err := t.kill(w.Tick); err != nil {
			return
		}
		w.record(t, "state", "dead", "streamed out", 0)
	}
	if t.State == TankDead {
		w.finishTank(t)
	}
}

// --- Session state ---

// evaluateOutcome decides the session state from the current world.
func (w *World) evaluateOutcome() GameState {
	if !w.Player.IsAlive() {
		return StateLose
	}
	if w.Level.Speed(w.RowCurr) != 0 {
		return StatePlaying
	}
	if w.AliveEnemies() > 0 {
		return StatePlaying
	}
	return StateWin
}

func (w *World) checkWinLose() {
	if next := w.evaluateOutcome(); next != w.State {
		w.setState(next)
	}
}

// setState performs a transition and notifies listeners. Entering a
// terminal state schedules the scene change.
func (w *World) setState(to GameState) {
	from := w.State
	if from == to || from.Terminal() {
		return
	}
	w.State = to
	w.Log.Info().Str("from", from.String()).Str("to", to.String()).Int("tick", w.Tick).Msg("state change")
	w.SimLog.Add(w.Tick, "--", "--", "session", "state", fmt.Sprintf("%s → %s", from, to), 0)
	for _, fn := range w.stateListeners {
		fn(from, to)
	}
	if !to.Terminal() {
		return
	}
	w.Scheduler.After(w.Tick, MsToTicks(w.Tuning.StateChangeDelayMs), "scene-change", EntityRef{Kind: EntityWorld},
		func(w *World, _ EntityRef) {
			if w.SceneChanged {
				return
			}
			w.SceneChanged = true
			w.Log.Info().Str("final", w.State.String()).Msg("scene change")
			for _, fn := range w.sceneListeners {
				fn(w.State)
			}
		})
}

// record writes a tank event to the sim log.
func (w *World) record(t *Tank, category, key, value string, num float64) {
	w.SimLog.Add(w.Tick, t.Label(), sideOf(t), category, key, value, num)
}

// --- Snapshot ---

// WorldSnapshot is a compact, comparable summary of a tick.
type WorldSnapshot struct {
	Tick         int
	State        GameState
	Row          int
	PlayerPos    Vec
	PlayerType   TankType
	PlayerHealth float64
	PlayerFire   float64
	Enemies      int
	AliveEnemies int
	Bullets      int
	Gates        int
	Pills        int
}

// Snapshot returns the current summary.
func (w *World) Snapshot() WorldSnapshot {
	return WorldSnapshot{
		Tick:         w.Tick,
		State:        w.State,
		Row:          w.RowCurr,
		PlayerPos:    w.Player.Pos,
		PlayerType:   w.Player.Type,
		PlayerHealth: w.Player.Health.Value(),
		PlayerFire:   w.Player.Fire.Value(),
		Enemies:      len(w.Enemies),
		AliveEnemies: w.AliveEnemies(),
		Bullets:      w.BulletCount(),
		Gates:        len(w.Gates),
		Pills:        len(w.Pills),
	}
}
