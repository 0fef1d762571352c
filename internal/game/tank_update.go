package game

import "math"

// Barrel spacing from the muzzle, along the turret normal.
const (
	barrelOffsetDouble = 7
	barrelOffsetTriple = 12
	muzzleReach        = 120 // unscaled turret length
)

// updateTank runs one tick of per-tank logic. Dead tanks still carry their
// in-flight bullets; only the alive branch moves, regenerates and fires, and
// ends with the death check.
func (w *World) updateTank(t *Tank) {
	if t.State == TankGone {
		return
	}
	t.updateBodyRotation()
	t.updateMuzzle()
	w.updateBullets(t)

	// friction
	t.Vel = t.Vel.Scale(w.Tuning.TankKeepVelocity)

	if !t.IsAlive() {
		return
	}
	t.Fire.Increase(t.FireReplenishRate)
	w.moveTank(t)
	w.tryFire(t)
	t.Health.Follow(t.Pos)
	t.Fire.Follow(t.Pos)
	if t.IsPlayer() && w.controls.Aim.Active() {
		t.TurretRotation = w.controls.Aim.Angle + math.Pi/2
	}
	w.checkDeath(t)
}

// updateBodyRotation eases the hull toward the direction of travel.
func (t *Tank) updateBodyRotation() {
	if t.Vel.IsZero() {
		return
	}
	t.BodyRotation = AverageAngle(t.BodyRotation, t.Vel.Angle()+math.Pi/2)
}

func (t *Tank) updateMuzzle() {
	t.Muzzle = OffsetPoint(t.Pos, muzzleReach*t.Scale, radToDeg(t.TurretRotation)-90)
}

// moveTank drives velocity according to the tank's movement mode.
func (w *World) moveTank(t *Tank) {
	keep := w.Tuning.TankKeepVelocity
	switch t.Move {
	case MoveControls:
		w.moveByControls(t)
	case MoveEllipse:
		ms := float64(w.Tick) * 1000 / TicksPerSecond
		phase := ms/1000 + float64(t.EnemyIndex)
		t.Vel.X = math.Sin(phase)*200*(1-keep) + t.Vel.X*keep
		t.Vel.Y = math.Cos(phase)*30*(1-keep) + t.Vel.Y*keep
	case MoveStationary:
	}
}

// moveByControls steers the player from the move stick. With force-forward
// on, the tank is pushed up the level at a speed blended toward the current
// row's scroll multiplier and the stick only steers sideways.
func (w *World) moveByControls(t *Tank) {
	tu := w.Tuning
	keep := tu.TankKeepVelocity
	stick := w.controls.Move
	r := math.Min(stick.Radius, tu.StickThreshold)
	push := 0.0
	if tu.StickThreshold > 0 {
		push = r / tu.StickThreshold * tu.TankMaxSpeed * (1 - keep)
	}

	if tu.ForceForward {
		t.speedMult = 0.99*t.speedMult + 0.01*w.Level.Speed(w.RowCurr)
		t.Vel.Y = -tu.TankForceForwardSpeed * t.speedMult
		t.Vel.X = keep*t.Vel.X + push*math.Cos(stick.Angle)
		return
	}
	if !stick.Active() {
		return
	}
	t.Vel.X = keep*t.Vel.X + push*math.Cos(stick.Angle)
	t.Vel.Y = keep*t.Vel.Y + push*math.Sin(stick.Angle)
}

// wantsFire reports whether the tank's trigger is held this tick. Enemies
// pull it at random.
func (w *World) wantsFire(t *Tank) bool {
	if t.IsPlayer() {
		return w.controls.Fire
	}
	return w.Tuning.TankEnemiesFire && w.rng.Float64() < w.Tuning.TankEnemyPercentShooting
}

// tryFire fires every barrel if the gauge, cooldown and trigger allow it.
// Each admitted shot costs a full FireCost.
func (w *World) tryFire(t *Tank) {
	if !t.IsAlive() || !t.Fire.HasAmount(t.FireCost) {
		return
	}
	if w.Tick-t.FireLastUpdateIndex < t.FireMinUpdatesBetween {
		return
	}
	if !w.wantsFire(t) {
		return
	}
	heading := t.TurretRotation - math.Pi/2
	shots := 0
	for _, p := range barrelPositions(t.Muzzle, heading, t.Type) {
		if w.fire(t, p, heading) {
			t.FireLastUpdateIndex = w.Tick
			t.Fire.Decrease(t.FireCost)
			shots++
		}
	}
	if shots > 0 {
		w.audio.PlaySound(SoundCue{Kind: SoundFire, Rate: t.FireSoundRate, Volume: 1, Pos: t.Pos})
	}
}

// barrelPositions returns the spawn point of each barrel, spaced along the
// normal of the firing heading.
func barrelPositions(muzzle Vec, heading float64, tt TankType) []Vec {
	normal := radToDeg(heading + math.Pi/2)
	switch tt.Barrels() {
	case 2:
		return []Vec{
			OffsetPoint(muzzle, barrelOffsetDouble, normal),
			OffsetPoint(muzzle, barrelOffsetDouble, normal-180),
		}
	case 3:
		return []Vec{
			OffsetPoint(muzzle, barrelOffsetTriple, normal),
			muzzle,
			OffsetPoint(muzzle, barrelOffsetTriple, normal-180),
		}
	default:
		return []Vec{muzzle}
	}
}
