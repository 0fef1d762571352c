package game

import "math"

// CollisionKind is the pair class of a contact found by the broad phase.
type CollisionKind int

const (
	HitBulletTank CollisionKind = iota
	HitBulletBullet
	HitBulletPlatform
	HitTankPlatform
	HitTankTank
	HitTankPill
)

func (ck CollisionKind) String() string {
	switch ck {
	case HitBulletTank:
		return "bullet-tank"
	case HitBulletBullet:
		return "bullet-bullet"
	case HitBulletPlatform:
		return "bullet-platform"
	case HitTankPlatform:
		return "tank-platform"
	case HitTankTank:
		return "tank-tank"
	case HitTankPill:
		return "tank-pill"
	default:
		return "unknown"
	}
}

// CollisionEvent is one contact. Which fields are set depends on Kind:
// bullet events carry Shooter and Bullet; bullet-bullet adds Other and
// OtherBullet; tank events carry Tank plus Target, a cell or a Pill.
type CollisionEvent struct {
	Kind CollisionKind

	Shooter     *Tank
	Bullet      *Bullet
	Other       *Tank
	OtherBullet *Bullet

	Tank   *Tank
	Target *Tank
	Pill   *Pill
	Col    int
	Row    int
}

// broadPhase lists this tick's contacts in a fixed order so resolution is
// deterministic.
func (w *World) broadPhase() []CollisionEvent {
	tu := w.Tuning
	p := w.Player
	var events []CollisionEvent

	// player bullets vs enemies
	for _, b := range p.Bullets.Snapshot() {
		for _, e := range w.Enemies {
			if e.IsAlive() && b.Pos.Dist(e.Pos) <= e.Radius+tu.BulletRadius {
				events = append(events, CollisionEvent{Kind: HitBulletTank, Shooter: p, Bullet: b, Target: e})
			}
		}
	}

	for _, e := range w.Enemies {
		for _, b := range e.Bullets.Snapshot() {
			// enemy bullets vs player
			if p.IsAlive() && b.Pos.Dist(p.Pos) <= p.Radius+tu.BulletRadius {
				events = append(events, CollisionEvent{Kind: HitBulletTank, Shooter: e, Bullet: b, Target: p})
			}
			// enemy bullets vs player bullets
			for _, pb := range p.Bullets.Snapshot() {
				if b.Pos.Dist(pb.Pos) <= 2*tu.BulletRadius {
					events = append(events, CollisionEvent{Kind: HitBulletBullet, Shooter: e, Bullet: b, Other: p, OtherBullet: pb})
				}
			}
		}
	}

	if tu.BulletsCollidePlatforms {
		for _, t := range w.allTanks() {
			for _, b := range t.Bullets.Snapshot() {
				if col, row, ok := w.sweptPlatformHit(b.PrevPos, b.Pos); ok {
					events = append(events, CollisionEvent{Kind: HitBulletPlatform, Shooter: t, Bullet: b, Col: col, Row: row})
				}
			}
		}
	}

	// tanks vs platforms and spikes
	for _, t := range w.allTanks() {
		if !t.IsAlive() {
			continue
		}
		c0, r0 := CellAt(Vec{t.Pos.X - t.Radius, t.Pos.Y - t.Radius})
		c1, r1 := CellAt(Vec{t.Pos.X + t.Radius, t.Pos.Y + t.Radius})
		for row := r0; row <= r1; row++ {
			for col := c0; col <= c1; col++ {
				if w.Tiles.At(col, row).Solid() {
					events = append(events, CollisionEvent{Kind: HitTankPlatform, Tank: t, Col: col, Row: row})
				}
			}
		}
	}

	// tanks vs tanks
	tanks := w.allTanks()
	for i, a := range tanks {
		if !a.IsAlive() {
			continue
		}
		for _, b := range tanks[i+1:] {
			if b.IsAlive() && a.Pos.Dist(b.Pos) < a.Radius+b.Radius {
				events = append(events, CollisionEvent{Kind: HitTankTank, Tank: a, Target: b})
			}
		}
	}

	// player vs pills
	if p.IsAlive() {
		for _, pl := range w.Pills {
			if !pl.Consumed && pl.Pos.Dist(p.Pos) <= p.Radius+tu.PillRadius {
				events = append(events, CollisionEvent{Kind: HitTankPill, Tank: p, Pill: pl})
			}
		}
	}
	return events
}

// resolve applies each contact. Entities consumed by an earlier event are
// skipped by the handlers themselves.
func (w *World) resolve(events []CollisionEvent) {
	for _, ev := range events {
		switch ev.Kind {
		case HitBulletTank:
			w.applyBulletHit(ev.Shooter, ev.Bullet, ev.Target)
		case HitBulletBullet:
			w.clashBullets(ev.Shooter, ev.Bullet, ev.Other, ev.OtherBullet)
		case HitBulletPlatform:
			w.destroyBullet(ev.Shooter, ev.Bullet)
		case HitTankPlatform:
			w.pushOutOfCell(ev.Tank, ev.Col, ev.Row)
		case HitTankTank:
			separateTanks(ev.Tank, ev.Target)
		case HitTankPill:
			w.consumePill(ev.Tank, ev.Pill)
		}
	}
}

// sweptPlatformHit returns the first solid cell the segment a->b enters.
func (w *World) sweptPlatformHit(a, b Vec) (int, int, bool) {
	c0, r0 := CellAt(Vec{math.Min(a.X, b.X), math.Min(a.Y, b.Y)})
	c1, r1 := CellAt(Vec{math.Max(a.X, b.X), math.Max(a.Y, b.Y)})
	bestT := math.Inf(1)
	hitCol, hitRow := 0, 0
	for row := r0; row <= r1; row++ {
		for col := c0; col <= c1; col++ {
			if !w.Tiles.At(col, row).Solid() {
				continue
			}
			minX, minY, maxX, maxY := cellBounds(col, row)
			if t, ok := segmentAABBHitT(a, b, minX, minY, maxX, maxY); ok && t < bestT {
				bestT, hitCol, hitRow = t, col, row
			}
		}
	}
	return hitCol, hitRow, !math.IsInf(bestT, 1)
}

// allTanks returns enemies then the player.
func (w *World) allTanks() []*Tank {
	out := make([]*Tank, 0, len(w.Enemies)+1)
	out = append(out, w.Enemies...)
	return append(out, w.Player)
}

// pushOutOfCell moves t out of a solid cell along the axis of least
// penetration. Driving the top of the hull into the underside of a spike
// is lethal.
func (w *World) pushOutOfCell(t *Tank, col, row int) {
	if !t.IsAlive() {
		return
	}
	minX, minY, maxX, maxY := cellBounds(col, row)
	left := t.Pos.X + t.Radius - minX
	right := maxX - (t.Pos.X - t.Radius)
	up := t.Pos.Y + t.Radius - minY
	down := maxY - (t.Pos.Y - t.Radius)
	if left <= 0 || right <= 0 || up <= 0 || down <= 0 {
		return
	}

	pen := math.Min(math.Min(left, right), math.Min(up, down))
	switch pen {
	case down:
		t.Pos.Y += down
		t.Vel.Y = math.Max(t.Vel.Y, 0)
		if w.Tiles.At(col, row) == TileSpike {
			t.Health.SetZero()
			tankEvent(w.Log.Info(), t).Int("col", col).Int("row", row).Msg("spiked")
			w.record(t, "combat", "spike", "hull hit spike underside", 0)
		}
	case up:
		t.Pos.Y -= up
		t.Vel.Y = math.Min(t.Vel.Y, 0)
	case left:
		t.Pos.X -= left
		t.Vel.X = math.Min(t.Vel.X, 0)
	default:
		t.Pos.X += right
		t.Vel.X = math.Max(t.Vel.X, 0)
	}
}

// separateTanks pushes two overlapping hulls apart by half the overlap each.
func separateTanks(a, b *Tank) {
	if !a.IsAlive() || !b.IsAlive() {
		return
	}
	d := b.Pos.Sub(a.Pos)
	dist := d.Len()
	overlap := a.Radius + b.Radius - dist
	if overlap <= 0 {
		return
	}
	n := Vec{0, 1}
	if dist > 0 {
		n = d.Scale(1 / dist)
	}
	half := n.Scale(overlap / 2)
	a.Pos = a.Pos.Sub(half)
	b.Pos = b.Pos.Add(half)
}
