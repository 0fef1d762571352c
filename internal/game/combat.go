package game

import "fmt"

// --- Combat constants ---

const (
	hitExplosionScale = 0.5 // explosion size for bullet impacts
)

// fire admits one bullet for t at pos heading along angle. Spawn points off
// screen are refused. A tank at its bullet cap loses its oldest bullet to
// make room, so the queue never exceeds the cap.
func (w *World) fire(t *Tank, pos Vec, angle float64) bool {
	if !w.Camera.OnScreen(pos) {
		return false
	}
	if t.BulletCap <= 0 {
		return false
	}
	for t.Bullets.Len() >= t.BulletCap {
		w.destroyBullet(t, t.Bullets.Oldest())
		w.Metrics.evicted(t)
	}
	speed := w.Tuning.BulletMaxSpeed
	b := &Bullet{
		ID:       w.newID(),
		Owner:    t.ID,
		Pos:      pos,
		PrevPos:  pos,
		Vel:      polar(speed, angle),
		Rotation: angle,
		Speed:    speed,
	}
	t.Bullets.Push(b)
	w.visual.Spawned(EntityRef{EntityBullet, b.ID})
	w.Metrics.fired(t)
	return true
}

// destroyBullet removes b from its owner. Destroying twice is a no-op.
func (w *World) destroyBullet(t *Tank, b *Bullet) {
	if b == nil || b.Dead {
		return
	}
	b.Dead = true
	t.Bullets.Remove(b.ID)
	w.visual.Removed(EntityRef{EntityBullet, b.ID})
}

// updateBullets sweeps each of t's bullets from its previous position to
// its current one against every gate, then culls bullets that left the view.
func (w *World) updateBullets(t *Tank) {
	for _, b := range t.Bullets.Snapshot() {
		if b.Dead {
			continue
		}
		b.UpdatesSeen++
		if w.crossGates(t, b) {
			continue
		}
		if !w.Camera.OnScreenPadded(b.Pos, w.Tuning.GameBoundaryExtraPadding) {
			w.destroyBullet(t, b)
			continue
		}
		b.PrevPos = b.Pos
	}
}

// crossGates applies the first gate b crossed this tick. Freshly spawned
// bullets are exempt for a few updates so duplicates do not re-trigger the
// gate they were born on. The crossing bullet is always consumed.
func (w *World) crossGates(t *Tank, b *Bullet) bool {
	if b.UpdatesSeen < w.Tuning.BulletNumUpdatesSkip {
		return false
	}
	for _, g := range w.Gates {
		hit, ok := g.Cross(b.PrevPos, b.Pos)
		if !ok {
			continue
		}
		if t.Bullets.Len() < t.BulletCap {
			w.multiplyAtGate(t, b, g, hit)
			w.flashGate(g, gateFlashOK)
		} else {
			w.flashGate(g, gateFlashLimit)
			w.Metrics.overflow(t)
		}
		w.destroyBullet(t, b)
		return true
	}
	return false
}

// multiplyAtGate spawns the gate's multiplier worth of bullets at hit,
// fanned around the transformed heading.
func (w *World) multiplyAtGate(t *Tank, b *Bullet, g *Gate, hit Vec) {
	tu := w.Tuning
	for i := 0; i < g.Multiplier; i++ {
		angle, err := GateBulletAngle(b.Rotation, g.Type, g.Rotation, i, g.Multiplier, tu.BulletAdditionRotationRad)
		if err != nil {
			w.Log.Error().Err(err).Int("gate", g.ID).Msg("gate bullet angle")
			return
		}
		spawn := OffsetPoint(hit, tu.GateBulletSpawnPointOffset, radToDeg(angle))
		w.fire(t, spawn, angle)
	}
	if g.Multiplier == 0 {
		return
	}
	w.Metrics.multiplied(t)
	w.SimLog.AddVerbose(w.Tick, t.Label(), sideOf(t), "gate", "multiply",
		fmt.Sprintf("gate %d %s x%d at %s", g.ID, g.Type, g.Multiplier, hit), float64(g.Multiplier))
}

// flashGate tints g briefly and sounds its tone. A gate that is already
// flashing stays silent. The revert is scheduled, not polled.
func (w *World) flashGate(g *Gate, c uint32) {
	if !g.flash(c) {
		return
	}
	ref := EntityRef{EntityGate, g.ID}
	w.visual.Tinted(ref, c)
	w.playGateSound(g)
	w.Scheduler.After(w.Tick, MsToTicks(w.Tuning.GateFlashMs), "gate-flash", ref,
		func(w *World, ref EntityRef) {
			g := w.gateByID(ref.ID)
			if g == nil {
				return
			}
			g.Flashing = false
			w.visual.Tinted(ref, g.Color)
		})
}

// playGateSound plays the gate's tone unless it sounded very recently.
func (w *World) playGateSound(g *Gate) {
	if w.Tick-g.lastSoundTick < MsToTicks(w.Tuning.GateRepeatSoundMs) {
		return
	}
	g.lastSoundTick = w.Tick
	c := g.Center()
	w.audio.PlaySound(SoundCue{
		Kind:   SoundGate,
		Rate:   g.SoundRate,
		Volume: g.SoundVolume * DistanceVolume(c.Dist(w.Player.Pos)),
		Pos:    c,
	})
}

// applyBulletHit damages target with shooter's bullet. Hits on tanks that
// are no longer alive are ignored and the bullet flies on.
func (w *World) applyBulletHit(shooter *Tank, b *Bullet, target *Tank) {
	if b.Dead || !target.IsAlive() {
		return
	}
	w.destroyBullet(shooter, b)
	target.Health.Decrease(w.Tuning.TankBulletDamage)
	w.visual.Explosion(b.Pos, hitExplosionScale)
	w.SimLog.AddVerbose(w.Tick, target.Label(), sideOf(target), "combat", "hit",
		fmt.Sprintf("by %s hp=%.0f", shooter.Label(), target.Health.Value()), target.Health.Value())
}

// clashBullets annihilates an enemy bullet and a player bullet that met.
func (w *World) clashBullets(enemy *Tank, eb *Bullet, player *Tank, pb *Bullet) {
	if eb.Dead || pb.Dead {
		return
	}
	mid := Vec{(eb.Pos.X + pb.Pos.X) / 2, (eb.Pos.Y + pb.Pos.Y) / 2}
	w.destroyBullet(enemy, eb)
	w.destroyBullet(player, pb)
	w.visual.Explosion(mid, hitExplosionScale)
}

// consumePill hands pill p to the player, once.
func (w *World) consumePill(t *Tank, p *Pill) {
	if p.Consumed || !t.IsAlive() {
		return
	}
	p.Consumed = true
	applyPill(t, p.Type, w.Tuning)
	for i, q := range w.Pills {
		if q.ID == p.ID {
			w.Pills = append(w.Pills[:i], w.Pills[i+1:]...)
			break
		}
	}
	w.visual.Removed(EntityRef{EntityPill, p.ID})
	w.audio.PlaySound(SoundCue{Kind: SoundPill, Rate: p.SoundRate, Volume: 1, Pos: p.Pos})
	w.Metrics.pill(p.Type)
	tankEvent(w.Log.Debug(), t).Str("pill", p.Type.String()).Msg("pill consumed")
	w.record(t, "pill", p.Type.String(), fmt.Sprintf("type=%s", t.Type), t.Health.Value())
}

func sideOf(t *Tank) string {
	if t.IsPlayer() {
		return "player"
	}
	return "enemy"
}
