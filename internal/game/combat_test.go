package game

import (
	"math"
	"testing"
)

// recordingSink captures visual and audio events for assertions.
type recordingSink struct {
	spawned    map[EntityRef]int
	removed    map[EntityRef]int
	tints      map[EntityRef]uint32
	explosions int
	sounds     []SoundCue
}

func newRecordingSink() *recordingSink {
	return &recordingSink{
		spawned: make(map[EntityRef]int),
		removed: make(map[EntityRef]int),
		tints:   make(map[EntityRef]uint32),
	}
}

func (r *recordingSink) Spawned(ref EntityRef)            { r.spawned[ref]++ }
func (r *recordingSink) Removed(ref EntityRef)            { r.removed[ref]++ }
func (r *recordingSink) Tinted(ref EntityRef, rgb uint32) { r.tints[ref] = rgb }
func (r *recordingSink) Explosion(Vec, float64)           { r.explosions++ }
func (r *recordingSink) PlaySound(cue SoundCue)           { r.sounds = append(r.sounds, cue) }

// openField is a blank scrolling level with the player at its usual start.
func openField(opts ...SimOption) *TestSim {
	return NewTestSim(append([]SimOption{WithBlankLevel(60, 1)}, opts...)...)
}

// bulletCrossing fires one player bullet and places it so that its next
// sweep crosses y=gateY at x=500, past the spawn debounce.
func bulletCrossing(t *testing.T, w *World, gateY float64) *Bullet {
	t.Helper()
	if !w.fire(w.Player, Vec{500, gateY + 5}, -math.Pi/2) {
		t.Fatal("fire refused an on-screen spawn")
	}
	b := w.Player.Bullets.Oldest()
	b.UpdatesSeen = w.Tuning.BulletNumUpdatesSkip
	b.PrevPos = Vec{500, gateY + 5}
	b.Pos = Vec{500, gateY - 5}
	return b
}

func TestFire_RefusesOffScreenSpawn(t *testing.T) {
	w := openField().World
	if w.fire(w.Player, Vec{500, 100}, 0) {
		t.Fatal("spawn far above the camera must be refused")
	}
	if w.Player.Bullets.Len() != 0 || w.Metrics.Fired != 0 {
		t.Fatal("refused spawn must not create a bullet")
	}
}

func TestFire_CapEvictsOldest(t *testing.T) {
	w := openField().World
	p := w.Player
	p.BulletCap = 3
	var ids []int
	for i := 0; i < 3; i++ {
		if !w.fire(p, Vec{500, 5500}, -math.Pi/2) {
			t.Fatal("fire refused")
		}
		ids = append(ids, p.Bullets.Snapshot()[i].ID)
	}
	oldest := p.Bullets.Oldest()
	if !w.fire(p, Vec{500, 5500}, -math.Pi/2) {
		t.Fatal("fire at cap should evict, not refuse")
	}
	if p.Bullets.Len() != 3 {
		t.Fatalf("queue should stay at the cap, got %d", p.Bullets.Len())
	}
	if p.Bullets.Find(ids[0]) != nil || !oldest.Dead {
		t.Fatal("the oldest bullet should have been evicted")
	}
	if p.Bullets.Find(ids[1]) == nil || p.Bullets.Find(ids[2]) == nil {
		t.Fatal("only the oldest bullet may be evicted")
	}
	if w.Metrics.Evicted != 1 || w.Metrics.Fired != 4 {
		t.Fatalf("expected 1 eviction and 4 fired, got %d and %d", w.Metrics.Evicted, w.Metrics.Fired)
	}
}

func TestFire_VelocityFollowsAngle(t *testing.T) {
	w := openField().World
	w.fire(w.Player, Vec{500, 5500}, 0)
	b := w.Player.Bullets.Oldest()
	if !near(b.Vel.X, w.Tuning.BulletMaxSpeed) || !near(b.Vel.Y, 0) {
		t.Fatalf("expected velocity (%v,0), got %s", w.Tuning.BulletMaxSpeed, b.Vel)
	}
}

func TestGate_NormalTimesThreeMultiplies(t *testing.T) {
	sink := newRecordingSink()
	ts := openField(
		WithWorldOptions(WithVisual(sink)),
		WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 3),
	)
	w := ts.World
	orig := bulletCrossing(t, w, 5495)

	w.updateBullets(w.Player)

	if !orig.Dead || w.Player.Bullets.Find(orig.ID) != nil {
		t.Fatal("the crossing bullet must be destroyed")
	}
	bullets := w.Player.Bullets.Snapshot()
	if len(bullets) != 3 {
		t.Fatalf("expected 3 bullets after a x3 gate, got %d", len(bullets))
	}
	step := 2 * w.Tuning.BulletAdditionRotationRad / float64(3-1)
	for i, b := range bullets {
		want := -math.Pi/2 + float64(i-1)*step
		if !near(b.Rotation, want) {
			t.Fatalf("bullet %d: rotation %v, want %v", i, b.Rotation, want)
		}
		if !near(b.Pos.Y, 5495) || !near(b.Pos.X, 500) {
			t.Fatalf("bullet %d should spawn at the hit point, got %s", i, b.Pos)
		}
	}
	g := w.Gates[0]
	if !g.Flashing || g.FlashColor != gateFlashOK {
		t.Fatal("gate should flash white on a multiply")
	}
	if sink.tints[EntityRef{EntityGate, g.ID}] != gateFlashOK {
		t.Fatal("flash should be mirrored to the visual sink")
	}
	if w.Metrics.Multiplied != 1 {
		t.Fatalf("expected 1 multiply, got %d", w.Metrics.Multiplied)
	}
}

func TestGate_FlashRevertsAfterDelay(t *testing.T) {
	ts := openField(WithGate(GateMirror, Vec{400, 5495}, Vec{600, 5495}, 2))
	w := ts.World
	bulletCrossing(t, w, 5495)
	w.updateBullets(w.Player)

	g := w.Gates[0]
	if w.Scheduler.Len() != 1 {
		t.Fatalf("expected one scheduled revert, got %d", w.Scheduler.Len())
	}
	if g.flash(gateFlashLimit) {
		t.Fatal("a flashing gate must ignore a second flash")
	}
	w.Scheduler.RunDue(w, w.Tick+MsToTicks(w.Tuning.GateFlashMs)-1)
	if !g.Flashing {
		t.Fatal("flash reverted too early")
	}
	w.Scheduler.RunDue(w, w.Tick+MsToTicks(w.Tuning.GateFlashMs))
	if g.Flashing || g.Tint() != g.Color {
		t.Fatal("flash should revert to the resting colour")
	}
}

func TestGate_MultiplierZeroSwallows(t *testing.T) {
	ts := openField(WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 0))
	w := ts.World
	orig := bulletCrossing(t, w, 5495)
	w.updateBullets(w.Player)
	if !orig.Dead || w.Player.Bullets.Len() != 0 {
		t.Fatalf("x0 gate should consume the bullet, %d left", w.Player.Bullets.Len())
	}
}

func TestGate_OverflowAtCapFlashesBlack(t *testing.T) {
	ts := openField(WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 3))
	w := ts.World
	w.Player.BulletCap = 1
	orig := bulletCrossing(t, w, 5495)
	w.updateBullets(w.Player)

	if !orig.Dead || w.Player.Bullets.Len() != 0 {
		t.Fatal("overflowing bullet should be destroyed without duplicates")
	}
	if g := w.Gates[0]; g.FlashColor != gateFlashLimit {
		t.Fatalf("expected black flash, got %#06x", g.FlashColor)
	}
	if w.Metrics.Overflows != 1 || w.Metrics.Multiplied != 0 {
		t.Fatalf("expected 1 overflow and no multiply, got %d and %d", w.Metrics.Overflows, w.Metrics.Multiplied)
	}
}

func TestGate_FreshBulletIsDebounced(t *testing.T) {
	ts := openField(WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 3))
	w := ts.World
	b := bulletCrossing(t, w, 5495)
	b.UpdatesSeen = 0
	w.updateBullets(w.Player)
	if b.Dead || w.Player.Bullets.Len() != 1 {
		t.Fatal("a bullet inside the debounce window must pass the gate untouched")
	}
	if b.PrevPos != b.Pos {
		t.Fatal("surviving bullet should carry its position forward")
	}
}

func TestGate_SoundRateLimited(t *testing.T) {
	sink := newRecordingSink()
	ts := openField(
		WithWorldOptions(WithAudio(sink)),
		WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 1),
	)
	w := ts.World
	g := w.Gates[0]
	w.playGateSound(g)
	w.playGateSound(g)
	if len(sink.sounds) != 1 || sink.sounds[0].Kind != SoundGate {
		t.Fatalf("expected one gate cue, got %v", sink.sounds)
	}
	w.Tick += MsToTicks(w.Tuning.GateRepeatSoundMs)
	w.playGateSound(g)
	if len(sink.sounds) != 2 {
		t.Fatalf("expected a second cue after the repeat window, got %d", len(sink.sounds))
	}
}

func TestUpdateBullets_CullsOffScreen(t *testing.T) {
	w := openField().World
	w.fire(w.Player, Vec{500, 5500}, -math.Pi/2)
	b := w.Player.Bullets.Oldest()
	b.Pos = Vec{500, w.Camera.Y - w.Tuning.GameBoundaryExtraPadding - 1}
	w.updateBullets(w.Player)
	if !b.Dead || w.Player.Bullets.Len() != 0 {
		t.Fatal("bullet past the padded view should be destroyed")
	}
}

func TestUpdateBullets_CullBoundaryFollowsPadding(t *testing.T) {
	w := openField().World
	w.Tuning.GameBoundaryExtraPadding = 400
	w.fire(w.Player, Vec{500, 5500}, -math.Pi/2)
	b := w.Player.Bullets.Oldest()
	b.Pos = Vec{500, w.Camera.Y - 200}
	w.updateBullets(w.Player)
	if b.Dead || w.Player.Bullets.Len() != 1 {
		t.Fatal("bullet 200px out should survive a 400px padding")
	}
	b.Pos = Vec{500, w.Camera.Y - 401}
	w.updateBullets(w.Player)
	if !b.Dead || w.Player.Bullets.Len() != 0 {
		t.Fatal("bullet past the 400px padding should be destroyed")
	}
}

func TestGate_FlashingGateStaysSilent(t *testing.T) {
	sink := newRecordingSink()
	ts := openField(
		WithWorldOptions(WithAudio(sink)),
		WithGate(GateNormal, Vec{400, 5495}, Vec{600, 5495}, 1),
	)
	w := ts.World
	bulletCrossing(t, w, 5495)
	w.updateBullets(w.Player)
	if n := countSounds(sink, SoundGate); n != 1 {
		t.Fatalf("expected one gate cue on the first crossing, got %d", n)
	}

	w.Tick += MsToTicks(w.Tuning.GateRepeatSoundMs)
	for _, b := range w.Player.Bullets.Snapshot() {
		w.destroyBullet(w.Player, b)
	}
	bulletCrossing(t, w, 5495)
	w.updateBullets(w.Player)
	if !w.Gates[0].Flashing {
		t.Fatal("gate should still be flashing")
	}
	if n := countSounds(sink, SoundGate); n != 1 {
		t.Fatalf("a flashing gate must not sound again, got %d cues", n)
	}
}

func countSounds(r *recordingSink, kind SoundKind) int {
	n := 0
	for _, c := range r.sounds {
		if c.Kind == kind {
			n++
		}
	}
	return n
}

func TestDestroyBullet_Idempotent(t *testing.T) {
	sink := newRecordingSink()
	w := openField(WithWorldOptions(WithVisual(sink))).World
	w.fire(w.Player, Vec{500, 5500}, 0)
	b := w.Player.Bullets.Oldest()
	w.destroyBullet(w.Player, b)
	w.destroyBullet(w.Player, b)
	w.destroyBullet(w.Player, nil)
	if n := sink.removed[EntityRef{EntityBullet, b.ID}]; n != 1 {
		t.Fatalf("expected exactly one removal, got %d", n)
	}
}

func TestBulletHit_DamagesAliveTargetOnly(t *testing.T) {
	ts := openField(WithEnemy(TankBoxSingle, MoveStationary, 500, 5500))
	w := ts.World
	e := w.Enemies[0]
	w.fire(w.Player, e.Pos, -math.Pi/2)

	w.resolve(w.broadPhase())
	if want := w.Tuning.TankEnemyHealthBox1 - w.Tuning.TankBulletDamage; e.Health.Value() != want {
		t.Fatalf("expected enemy health %v, got %v", want, e.Health.Value())
	}
	if w.Player.Bullets.Len() != 0 {
		t.Fatal("hitting bullet should be destroyed")
	}

	w.killTank(e)
	w.fire(w.Player, e.Pos, -math.Pi/2)
	b := w.Player.Bullets.Oldest()
	w.applyBulletHit(w.Player, b, e)
	if b.Dead {
		t.Fatal("a bullet hitting a dead tank should fly on")
	}
}

func TestClashBullets_EnemyAgainstPlayer(t *testing.T) {
	sink := newRecordingSink()
	ts := openField(
		WithWorldOptions(WithVisual(sink)),
		WithEnemy(TankBoxSingle, MoveStationary, 200, 5200),
	)
	w := ts.World
	e := w.Enemies[0]
	w.fire(e, Vec{700, 5500}, math.Pi/2)
	w.fire(w.Player, Vec{702, 5500}, -math.Pi/2)

	events := w.broadPhase()
	clashes := 0
	for _, ev := range events {
		if ev.Kind == HitBulletBullet {
			clashes++
		}
	}
	if clashes != 1 {
		t.Fatalf("expected exactly one bullet-bullet event, got %d", clashes)
	}
	w.resolve(events)
	if e.Bullets.Len() != 0 || w.Player.Bullets.Len() != 0 {
		t.Fatal("both bullets should be annihilated")
	}
	if sink.explosions != 1 {
		t.Fatalf("expected one explosion, got %d", sink.explosions)
	}
}

func TestTryFire_GatedByCooldownAndGauge(t *testing.T) {
	ts := openField()
	w := ts.World
	p := w.Player
	p.updateMuzzle()
	w.Tick = 100
	w.controls = ControlInput{Fire: true}

	w.tryFire(p)
	if p.Bullets.Len() != 1 || p.FireLastUpdateIndex != 100 {
		t.Fatalf("first shot should fire, got %d bullets", p.Bullets.Len())
	}
	if want := w.Tuning.TankFireInitCircle - p.FireCost; p.Fire.Value() != want {
		t.Fatalf("fire gauge %v, want %v", p.Fire.Value(), want)
	}

	w.Tick = 100 + p.FireMinUpdatesBetween - 1
	w.tryFire(p)
	if p.Bullets.Len() != 1 {
		t.Fatal("cooldown should block the second shot")
	}

	w.Tick = 100 + p.FireMinUpdatesBetween
	p.Fire.SetZero()
	w.tryFire(p)
	if p.Bullets.Len() != 1 {
		t.Fatal("an empty fire gauge should block the shot")
	}

	p.Fire.SetFull()
	w.controls = ControlInput{}
	w.tryFire(p)
	if p.Bullets.Len() != 1 {
		t.Fatal("no trigger, no shot")
	}
}

func TestTryFire_EachBarrelCostsAShot(t *testing.T) {
	sink := newRecordingSink()
	w := openField(WithWorldOptions(WithAudio(sink))).World
	p := w.Player
	p.Type = TankBoxTriple
	p.updateMuzzle()
	w.Tick = 100
	w.controls = ControlInput{Fire: true}
	p.Fire.SetMax(100)
	p.Fire.SetFull()

	w.tryFire(p)
	if p.Bullets.Len() != 3 {
		t.Fatalf("triple turret should fire 3 bullets, got %d", p.Bullets.Len())
	}
	if want := 100 - 3*p.FireCost; p.Fire.Value() != want {
		t.Fatalf("fire gauge %v, want %v", p.Fire.Value(), want)
	}
	if len(sink.sounds) != 1 || sink.sounds[0].Kind != SoundFire {
		t.Fatalf("expected one fire cue per trigger pull, got %v", sink.sounds)
	}
}

func TestDestroyedBullets_NeverReappear(t *testing.T) {
	sink := newRecordingSink()
	ts := NewTestSim(
		WithSimSeed(7),
		WithControls(HoldFire),
		WithWorldOptions(WithVisual(sink)),
	)
	w := ts.World
	for i := 0; i < 900 && !w.State.Terminal(); i++ {
		ts.RunTicks(1)
		for _, tk := range w.allTanks() {
			for _, b := range tk.Bullets.Snapshot() {
				if b.Dead {
					t.Fatalf("tick %d: dead bullet %d still queued on %s", w.Tick, b.ID, tk.Label())
				}
				if sink.removed[EntityRef{EntityBullet, b.ID}] > 0 {
					t.Fatalf("tick %d: removed bullet %d reappeared on %s", w.Tick, b.ID, tk.Label())
				}
			}
		}
	}
	if w.Metrics.Fired == 0 {
		t.Fatal("expected the player to fire during the run")
	}
}
