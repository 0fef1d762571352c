package game

import (
	"errors"
	"math"
	"testing"
)

// levelWithTank returns a blank level holding one tank code at (col, row).
func levelWithTank(rows, row, col int, code string) *Level {
	l := BlankLevel("tanks", rows, 1)
	cells := append([]string(nil), l.Rows[row].Cells...)
	cells[col] = code
	l.Rows[row].Cells = cells
	return l
}

func enemiesInRow(w *World, row int) int {
	n := 0
	for _, e := range w.Enemies {
		if e.RowIndex == row {
			n++
		}
	}
	return n
}

func TestNewWorld_RejectsEmptyLevel(t *testing.T) {
	if _, err := NewWorld(nil); !errors.Is(err, ErrNoLevel) {
		t.Fatalf("nil level: expected ErrNoLevel, got %v", err)
	}
	if _, err := NewWorld(&Level{Name: "empty"}); !errors.Is(err, ErrNoLevel) {
		t.Fatalf("rowless level: expected ErrNoLevel, got %v", err)
	}
	ts := NewTestSim(WithLevel(&Level{}))
	if !errors.Is(ts.Err(), ErrNoLevel) {
		t.Fatalf("harness should surface the build error, got %v", ts.Err())
	}
}

func TestNewWorld_InitialState(t *testing.T) {
	w := openField().World
	if w.State != StateInit || w.Tick != 0 {
		t.Fatalf("expected init at tick 0, got %s at %d", w.State, w.Tick)
	}
	if !near(w.Player.Pos.X, 500) || !near(w.Player.Pos.Y, 5880) {
		t.Fatalf("player should start at (500,5880), got %s", w.Player.Pos)
	}
	if w.RowCurr != 58 || w.RowPrev != 58 {
		t.Fatalf("expected start row 58, got %d/%d", w.RowCurr, w.RowPrev)
	}
	if !near(w.Camera.Y, 4980) {
		t.Fatalf("camera should start settled at 4980, got %v", w.Camera.Y)
	}
	if len(w.Enemies) != 0 {
		t.Fatal("enemies are streamed, not placed at build time")
	}
}

func TestNewWorld_PlacesStaticsFromDemoLevel(t *testing.T) {
	l := MustLoadLevel("demo.lvl")
	w, err := NewWorld(l)
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Gates) != l.Count(CellGate) || len(w.Pills) != l.Count(CellPill) {
		t.Fatalf("gates %d/%d pills %d/%d", len(w.Gates), l.Count(CellGate), len(w.Pills), l.Count(CellPill))
	}
	solid := w.Tiles.Count(TilePlatform) + w.Tiles.Count(TileSpike)
	if want := l.Count(CellPlatform) + l.Count(CellSpike); solid != want {
		t.Fatalf("expected %d solid tiles, got %d", want, solid)
	}
}

func TestStep_InitBecomesPlayingOnFirstTick(t *testing.T) {
	var moves [][2]GameState
	ts := openField(WithWorldOptions(WithStateListener(func(from, to GameState) {
		moves = append(moves, [2]GameState{from, to})
	})))
	ts.RunTicks(1)
	if ts.World.State != StatePlaying {
		t.Fatalf("expected playing after one tick, got %s", ts.World.State)
	}
	if len(moves) != 1 || moves[0] != [2]GameState{StateInit, StatePlaying} {
		t.Fatalf("unexpected transitions %v", moves)
	}
}

func TestStep_ForceForwardClimbs(t *testing.T) {
	ts := openField()
	ts.RunTicks(60)
	p := ts.World.Player
	if !near(p.Pos.X, 500) {
		t.Fatalf("player drifted sideways to %v", p.Pos.X)
	}
	if dy := 5880 - p.Pos.Y; dy < 119 || dy > 121 {
		t.Fatalf("expected about 120px climbed in a second, got %v", dy)
	}
}

func TestStreamCreate_WarmUpSweepsRowsAhead(t *testing.T) {
	ts := NewTestSim(WithLevel(levelWithTank(60, 50, 3, "tkb1|s")))
	w := ts.World

	ts.RunTicks(49)
	if n := enemiesInRow(w, 50); n != 0 {
		t.Fatalf("row 50 streamed early: %d enemies at tick %d", n, w.Tick)
	}
	ts.RunTicks(1)
	if n := enemiesInRow(w, 50); n != 1 {
		t.Fatalf("expected row 50 streamed on tick 50, got %d enemies", n)
	}
	e := w.Enemies[0]
	if e.Pos != CellCenter(3, 50) || e.Type != TankBoxSingle || e.Move != MoveStationary {
		t.Fatalf("unexpected enemy %s %s at %s", e.Type, e.Move, e.Pos)
	}
	if !w.SimLog.HasEntry("stream", "spawn", TankBoxSingle.String()) {
		t.Fatal("spawn should be logged")
	}
}

func TestStreamRow_OnlyOnce(t *testing.T) {
	w := NewTestSim(WithLevel(levelWithTank(60, 50, 3, "tkb1|s"))).World
	w.streamRow(50)
	w.streamRow(50)
	w.streamRow(-1)
	w.streamRow(60)
	if len(w.Enemies) != 1 {
		t.Fatalf("expected one enemy after repeated streaming, got %d", len(w.Enemies))
	}
}

func TestStreamRow_BoxTripleMovingCell(t *testing.T) {
	w := NewTestSim(WithLevel(levelWithTank(60, 50, 4, "tkb3|m"))).World
	w.streamRow(50)
	if len(w.Enemies) != 1 {
		t.Fatalf("expected one enemy, got %d", len(w.Enemies))
	}
	e := w.Enemies[0]
	if got := e.Type.String(); got != "tank_turret_box_triple" {
		t.Fatalf("expected tank_turret_box_triple, got %s", got)
	}
	if got := e.Move.String(); got != "move" {
		t.Fatalf("expected move, got %s", got)
	}
	if e.TurretRotation != math.Pi {
		t.Fatalf("expected turret rotation π, got %v", e.TurretRotation)
	}
	if e.Health.Max() != w.Tuning.TankEnemyHealthBox3 || !e.Health.IsFull() {
		t.Fatalf("expected full %v health, got %v/%v", w.Tuning.TankEnemyHealthBox3, e.Health.Value(), e.Health.Max())
	}
	if e.Pos != CellCenter(4, 50) || e.RowIndex != 50 {
		t.Fatalf("unexpected placement %s row %d", e.Pos, e.RowIndex)
	}
}

func TestStreamCreate_RowChangeStreamsAhead(t *testing.T) {
	ts := NewTestSim(WithLevel(levelWithTank(60, 47, 0, "tkc1|m")))
	w := ts.World
	tick := ts.RunUntil(func(ts *TestSim) bool { return enemiesInRow(ts.World, 47) > 0 }, 120)
	if tick < 0 {
		t.Fatal("row 47 never streamed")
	}
	if tick >= 47 {
		t.Fatalf("row 47 should come in on the row change, before the warm-up reaches it; got tick %d", tick)
	}
	if w.RowCurr != 57 {
		t.Fatalf("expected row change to 57, got %d", w.RowCurr)
	}
}

func TestStreamDestroy_DropsTanksFarBehind(t *testing.T) {
	ts := openField(
		WithEnemy(TankBoxSingle, MoveStationary, 500, 6680),
		WithEnemy(TankBoxSingle, MoveStationary, 200, 5500),
	)
	w := ts.World
	ts.RunTicks(2)
	if len(w.Enemies) != 1 || w.Enemies[0].Pos.Y != 5500 {
		t.Fatalf("expected only the near enemy to remain, got %d", len(w.Enemies))
	}
	if !w.SimLog.HasEntry("state", "dead", "streamed out") {
		t.Fatal("expected a streamed-out entry")
	}
	if w.Metrics.Destroyed != 0 {
		t.Fatal("streaming out is not a kill")
	}
}

func TestWin_ReachedExactlyOnce(t *testing.T) {
	wins := 0
	scenes := 0
	var final GameState
	ts := NewTestSim(
		WithBlankLevel(60, 0),
		WithWorldOptions(
			WithStateListener(func(_, to GameState) {
				if to == StateWin {
					wins++
				}
			}),
			WithSceneChangeListener(func(s GameState) {
				scenes++
				final = s
			}),
		),
	)
	w := ts.World
	ts.RunTicks(2)
	if w.State != StateWin {
		t.Fatalf("stopped row with no enemies should win, got %s", w.State)
	}
	pos := w.Player.Pos

	ts.RunTicks(239)
	if w.SceneChanged || scenes != 0 {
		t.Fatal("scene change fired early")
	}
	ts.RunTicks(1)
	if !w.SceneChanged || scenes != 1 || final != StateWin {
		t.Fatalf("scene change at tick %d: changed=%v count=%d final=%s", w.Tick, w.SceneChanged, scenes, final)
	}
	ts.RunTicks(300)
	if wins != 1 || scenes != 1 {
		t.Fatalf("expected one win and one scene change, got %d and %d", wins, scenes)
	}
	if w.Player.Pos != pos {
		t.Fatal("world must be frozen after a terminal state")
	}
	if w.SimLog.CountCategory("session", "state") != 2 {
		t.Fatalf("expected init→playing and playing→win only, got %d", w.SimLog.CountCategory("session", "state"))
	}
}

func TestWin_BlockedByLiveEnemy(t *testing.T) {
	ts := NewTestSim(
		WithBlankLevel(60, 0),
		WithSimTuning(func(tu *Tuning) { tu.TankEnemiesFire = false }),
		WithEnemy(TankBoxSingle, MoveStationary, 200, 5500),
	)
	w := ts.World
	ts.RunTicks(10)
	if w.State != StatePlaying {
		t.Fatalf("a live enemy should hold the win, got %s", w.State)
	}
	w.killTank(w.Enemies[0])
	ts.RunTicks(1)
	if w.State != StateWin {
		t.Fatalf("expected win once the last enemy died, got %s", w.State)
	}
}

func TestLose_PlayerDeathThenGone(t *testing.T) {
	ts := openField()
	w := ts.World
	ts.RunTicks(1)
	w.Player.Health.SetZero()
	ts.RunTicks(1)
	if w.State != StateLose || w.Player.State != TankDead {
		t.Fatalf("expected lose with a dead player, got %s / %s", w.State, w.Player.State)
	}
	if w.Player.DiedAt != 2 {
		t.Fatalf("expected death at tick 2, got %d", w.Player.DiedAt)
	}
	if !w.SimLog.HasEntry("state", "dead", "alive → dead") {
		t.Fatal("expected a death entry")
	}

	ts.RunTicks(119)
	if w.Player.State != TankDead {
		t.Fatalf("player gone too early at tick %d", w.Tick)
	}
	ts.RunTicks(1)
	if w.Player.State != TankGone {
		t.Fatalf("player should be gone at tick %d", w.Tick)
	}
}

func TestSandbox_NeverEnds(t *testing.T) {
	ts := NewTestSim(WithBlankLevel(60, 0), WithWorldOptions(WithSandbox()))
	ts.RunTicks(100)
	if ts.World.State != StatePlaying {
		t.Fatalf("sandbox should stay playing, got %s", ts.World.State)
	}
}

func TestStep_DeterministicForSeed(t *testing.T) {
	run := func() []WorldSnapshot {
		ts := NewTestSim(WithSimSeed(5), WithControls(HoldFire))
		var snaps []WorldSnapshot
		for i := 0; i < 10; i++ {
			ts.RunTicks(60)
			snaps = append(snaps, ts.Snapshot())
		}
		return snaps
	}
	a, b := run(), run()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("runs diverged at sample %d:\n%+v\n%+v", i, a[i], b[i])
		}
	}
}

func TestUpdate_PollsInputSource(t *testing.T) {
	polls := 0
	in := InputFunc(func() ControlInput {
		polls++
		return ControlInput{Fire: true}
	})
	w := NewTestSim(WithBlankLevel(60, 1), WithWorldOptions(WithInput(in))).World
	w.Update()
	if polls != 1 || !w.Controls().Fire {
		t.Fatalf("expected one poll carrying fire, got %d polls", polls)
	}
}

func TestTankByID_FindsPlayerAndEnemies(t *testing.T) {
	ts := openField(WithEnemy(TankBoxDouble, MoveEllipse, 300, 5500))
	w := ts.World
	if w.tankByID(w.Player.ID) != w.Player {
		t.Fatal("player lookup failed")
	}
	e := w.Enemies[0]
	if w.tankByID(e.ID) != e || w.tankByID(9999) != nil {
		t.Fatal("enemy lookup failed")
	}
	if e.Health.Max() != w.Tuning.TankEnemyHealthBox2 {
		t.Fatalf("enemy should be built at its tier, max health %v", e.Health.Max())
	}
}
