package game

import (
	"math"
	"testing"
)

func TestPushOutOfCell_SpikeFromBelowIsLethal(t *testing.T) {
	w := openField().World
	p := w.Player
	w.Tiles.Set(5, 57, TileSpike)
	p.Pos = Vec{550, 5820}
	p.Vel = Vec{0, -120}

	w.pushOutOfCell(p, 5, 57)

	if !near(p.Pos.Y, 5830) {
		t.Fatalf("hull should be pushed below the cell, got y=%v", p.Pos.Y)
	}
	if p.Vel.Y != 0 {
		t.Fatalf("upward velocity should be cancelled, got %v", p.Vel.Y)
	}
	if !p.Health.IsEmpty() {
		t.Fatalf("spike underside should empty health, got %v", p.Health.Value())
	}
	if !w.SimLog.HasEntry("combat", "spike", "") {
		t.Fatal("expected a combat/spike log entry")
	}
}

func TestPushOutOfCell_PlatformFromBelowIsHarmless(t *testing.T) {
	w := openField().World
	p := w.Player
	w.Tiles.Set(5, 57, TilePlatform)
	p.Pos = Vec{550, 5820}

	w.pushOutOfCell(p, 5, 57)

	if !near(p.Pos.Y, 5830) {
		t.Fatalf("expected y=5830, got %v", p.Pos.Y)
	}
	if p.Health.Value() != w.Tuning.TankPlayerHealthInit {
		t.Fatalf("platform must not damage, health %v", p.Health.Value())
	}
}

func TestPushOutOfCell_SpikeFromTheSideIsHarmless(t *testing.T) {
	w := openField().World
	p := w.Player
	w.Tiles.Set(5, 57, TileSpike)
	p.Pos = Vec{490, 5750}
	p.Vel = Vec{80, 0}

	w.pushOutOfCell(p, 5, 57)

	if !near(p.Pos.X, 470) || !near(p.Pos.Y, 5750) {
		t.Fatalf("expected push left to (470,5750), got %s", p.Pos)
	}
	if p.Vel.X != 0 {
		t.Fatalf("velocity into the cell should be cancelled, got %v", p.Vel.X)
	}
	if p.Health.IsEmpty() {
		t.Fatal("side contact with a spike must not kill")
	}
}

func TestPushOutOfCell_NoOverlapNoChange(t *testing.T) {
	w := openField().World
	p := w.Player
	w.Tiles.Set(5, 57, TilePlatform)
	p.Pos = Vec{550, 5900}
	w.pushOutOfCell(p, 5, 57)
	if p.Pos != (Vec{550, 5900}) {
		t.Fatalf("non-overlapping tank moved to %s", p.Pos)
	}
}

func TestSeparateTanks_SplitsOverlap(t *testing.T) {
	tu := DefaultTuning()
	a := newEnemyTank(1, 0, EnemySpec{Type: TankBoxSingle}, Vec{100, 100}, 1, tu)
	b := newEnemyTank(2, 1, EnemySpec{Type: TankBoxSingle}, Vec{130, 100}, 1, tu)

	separateTanks(a, b)

	if !near(a.Pos.X, 85) || !near(b.Pos.X, 145) {
		t.Fatalf("expected x 85 and 145, got %v and %v", a.Pos.X, b.Pos.X)
	}
	if !near(b.Pos.Dist(a.Pos), a.Radius+b.Radius) {
		t.Fatalf("hulls should just touch, dist %v", b.Pos.Dist(a.Pos))
	}
}

func TestSeparateTanks_CoincidentPushesVertically(t *testing.T) {
	tu := DefaultTuning()
	a := newEnemyTank(1, 0, EnemySpec{Type: TankBoxSingle}, Vec{100, 100}, 1, tu)
	b := newEnemyTank(2, 1, EnemySpec{Type: TankBoxSingle}, Vec{100, 100}, 1, tu)
	separateTanks(a, b)
	if !near(a.Pos.Y, 70) || !near(b.Pos.Y, 130) {
		t.Fatalf("expected y 70 and 130, got %v and %v", a.Pos.Y, b.Pos.Y)
	}
}

func TestSweptPlatformHit_FirstCellAlongSegment(t *testing.T) {
	w := openField().World
	w.Tiles.Set(5, 54, TilePlatform)
	w.Tiles.Set(5, 53, TileSpike)

	col, row, ok := w.sweptPlatformHit(Vec{550, 5520}, Vec{550, 5250})
	if !ok || col != 5 || row != 54 {
		t.Fatalf("expected first hit (5,54), got (%d,%d) ok=%v", col, row, ok)
	}
	if _, _, ok := w.sweptPlatformHit(Vec{450, 5520}, Vec{450, 5250}); ok {
		t.Fatal("segment beside the cells must miss")
	}
}

func TestBroadPhase_FastBulletStopsAtPlatform(t *testing.T) {
	ts := openField(WithSimTuning(func(tu *Tuning) { tu.BulletsCollidePlatforms = true }))
	w := ts.World
	w.Tiles.Set(5, 54, TilePlatform)
	w.fire(w.Player, Vec{550, 5520}, -math.Pi/2)
	b := w.Player.Bullets.Oldest()
	// the whole cell is skipped in one sweep
	b.Pos = Vec{550, 5380}

	events := w.broadPhase()
	found := false
	for _, ev := range events {
		if ev.Kind == HitBulletPlatform && ev.Col == 5 && ev.Row == 54 {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a bullet-platform event, got %v", events)
	}
	w.resolve(events)
	if !b.Dead {
		t.Fatal("bullet should be destroyed by the platform")
	}
}

func TestBroadPhase_PlatformsIgnoredByDefault(t *testing.T) {
	w := openField().World
	w.Tiles.Set(5, 54, TilePlatform)
	w.fire(w.Player, Vec{550, 5520}, -math.Pi/2)
	w.Player.Bullets.Oldest().Pos = Vec{550, 5450}
	for _, ev := range w.broadPhase() {
		if ev.Kind == HitBulletPlatform {
			t.Fatal("bullets pass platforms unless enabled")
		}
	}
}

func TestPillPickup_ConsumedOnce(t *testing.T) {
	ts := openField(WithPill(PillTime, 500, 5880))
	w := ts.World
	p := w.Player
	p.Fire.SetZero()
	before := p.FireMinUpdatesBetween

	w.resolve(w.broadPhase())

	if len(w.Pills) != 0 {
		t.Fatalf("pill should be removed, %d left", len(w.Pills))
	}
	if p.FireMinUpdatesBetween != before/2 || p.Fire.Value() != p.Fire.Max() {
		t.Fatalf("time pill not applied: cooldown %d fire %v", p.FireMinUpdatesBetween, p.Fire.Value())
	}
	if w.Metrics.Pills != 1 || !w.SimLog.HasEntry("pill", "time", "") {
		t.Fatal("pill consumption should be counted and logged")
	}
	if len(w.broadPhase()) != 0 {
		t.Fatal("a consumed pill must not collide again")
	}
}

func TestPillPickup_DeadPlayerCollectsNothing(t *testing.T) {
	ts := openField(WithPill(PillHealth, 500, 5880))
	w := ts.World
	w.killTank(w.Player)
	w.resolve(w.broadPhase())
	if len(w.Pills) != 1 {
		t.Fatal("a dead player must not collect pills")
	}
}

func TestCollisionKind_String(t *testing.T) {
	if HitTankPill.String() != "tank-pill" || CollisionKind(99).String() != "unknown" {
		t.Fatal("unexpected collision kind names")
	}
}
