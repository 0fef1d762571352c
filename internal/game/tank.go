package game

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidTransition is returned when a tank lifecycle step is attempted
// out of order (alive -> dead -> gone is the only path).
var ErrInvalidTransition = errors.New("invalid tank state transition")

// TankType is the turret tier. Tiers advance along the upgrade ladder.
type TankType int

const (
	TankCircleSingle TankType = iota // weakest, one barrel
	TankBoxSingle
	TankBoxDouble
	TankBoxTriple // top of the ladder
)

func (tt TankType) String() string {
	switch tt {
	case TankCircleSingle:
		return "tank_turret_circle_single"
	case TankBoxSingle:
		return "tank_turret_box_single"
	case TankBoxDouble:
		return "tank_turret_box_double"
	case TankBoxTriple:
		return "tank_turret_box_triple"
	default:
		return "unknown"
	}
}

// Barrels returns how many bullets one trigger pull fires.
func (tt TankType) Barrels() int {
	switch tt {
	case TankBoxDouble:
		return 2
	case TankBoxTriple:
		return 3
	default:
		return 1
	}
}

// MoveMode selects how a tank's velocity is driven each tick.
type MoveMode int

const (
	MoveControls   MoveMode = iota // player input
	MoveEllipse                    // scripted elliptical drift
	MoveStationary                 // friction only
)

func (mm MoveMode) String() string {
	switch mm {
	case MoveControls:
		return "controls"
	case MoveEllipse:
		return "move"
	case MoveStationary:
		return "stationary"
	default:
		return "unknown"
	}
}

// TankState is the lifecycle stage. It only ever advances.
type TankState int

const (
	TankAlive TankState = iota
	TankDead            // wreck on the field, no colliders
	TankGone            // fully torn down
)

func (ts TankState) String() string {
	switch ts {
	case TankAlive:
		return "alive"
	case TankDead:
		return "dead"
	case TankGone:
		return "gone"
	default:
		return "unknown"
	}
}

// Tank is a player or enemy vehicle. Rendering state lives in the
// presentation layer keyed by ID.
type Tank struct {
	ID         int
	EnemyIndex int // -1 for the player
	Type       TankType
	Move       MoveMode
	State      TankState

	Pos     Vec
	PrevPos Vec
	Vel     Vec

	BodyRotation   float64 // radians
	TurretRotation float64 // radians; 0 points up the screen
	Muzzle         Vec

	Health *Gauge
	Fire   *Gauge

	FireCost              float64
	FireReplenishRate     float64
	FireMinUpdatesBetween int
	FireLastUpdateIndex   int

	Bullets   *BulletQueue
	BulletCap int

	Color         uint32
	FireSoundRate float64 // drops a step with each upgrade
	Scale         float64
	Radius        float64
	RowIndex      int // level row the tank was streamed from, -1 for the player

	speedMult float64 // smoothed force-forward multiplier
	DiedAt    int     // tick of alive -> dead, 0 while alive
}

// IsPlayer reports whether this is the player's tank.
func (t *Tank) IsPlayer() bool { return t.EnemyIndex < 0 }

// IsAlive reports whether the tank can still move, fire and take damage.
func (t *Tank) IsAlive() bool { return t.State == TankAlive }

// Label is a short human identifier used by logs and the inspector.
func (t *Tank) Label() string {
	if t.IsPlayer() {
		return "P"
	}
	return fmt.Sprintf("E%d", t.EnemyIndex)
}

// kill moves alive -> dead.
func (t *Tank) kill(tick int) error {
	if t.State != TankAlive {
		return fmt.Errorf("%s %s -> dead: %w", t.Label(), t.State, ErrInvalidTransition)
	}
	t.State = TankDead
	t.DiedAt = tick
	t.Vel = Vec{}
	t.Health.Visible = false
	t.Fire.Visible = false
	return nil
}

// finish moves dead -> gone.
func (t *Tank) finish() error {
	if t.State != TankDead {
		return fmt.Errorf("%s %s -> gone: %w", t.Label(), t.State, ErrInvalidTransition)
	}
	t.State = TankGone
	return nil
}

// newPlayerTank creates the player's tank at pos.
func newPlayerTank(id int, pos Vec, tu Tuning) *Tank {
	t := &Tank{
		ID:                    id,
		EnemyIndex:            -1,
		Type:                  TankCircleSingle,
		Move:                  MoveControls,
		State:                 TankAlive,
		Pos:                   pos,
		PrevPos:               pos,
		Health:                NewGauge(tu.TankPlayerHealthInit, tu.TankPlayerHealthInit),
		Fire:                  NewGauge(tu.TankFireInitCircle, tu.TankFireInitCircle),
		FireCost:              tu.TankPlayerFireCost,
		FireReplenishRate:     tu.TankFireReplenishRate,
		FireMinUpdatesBetween: tu.TankFireMinUpdates,
		FireLastUpdateIndex:   math.MinInt32,
		Bullets:               &BulletQueue{},
		BulletCap:             tu.BulletMaxPerTankPlayer,
		Color:                 tu.TankPlayerColor,
		FireSoundRate:         1,
		Scale:                 tu.TankScale,
		Radius:                tu.TankRadius,
		RowIndex:              -1,
		speedMult:             1,
	}
	t.layoutBars()
	return t
}

// EnemySpec is a decoded tank cell: what to spawn, facing where, moving how.
type EnemySpec struct {
	Type     TankType
	Rotation float64
	Move     MoveMode
}

// newEnemyTank creates an enemy built directly at its tier.
func newEnemyTank(id, index int, spec EnemySpec, pos Vec, row int, tu Tuning) *Tank {
	health := tu.tankHealthInit(spec.Type)
	fire := tu.TankFireInit
	if spec.Type == TankCircleSingle {
		fire = tu.TankFireInitCircle
	}
	t := &Tank{
		ID:                    id,
		EnemyIndex:            index,
		Type:                  spec.Type,
		Move:                  spec.Move,
		State:                 TankAlive,
		Pos:                   pos,
		PrevPos:               pos,
		BodyRotation:          spec.Rotation,
		TurretRotation:        spec.Rotation,
		Health:                NewGauge(health, health),
		Fire:                  NewGauge(fire, fire),
		FireCost:              tu.TankEnemyFireCost,
		FireReplenishRate:     tu.TankFireReplenishRate,
		FireMinUpdatesBetween: tu.TankFireMinUpdates,
		FireLastUpdateIndex:   math.MinInt32,
		Bullets:               &BulletQueue{},
		BulletCap:             tu.BulletMaxPerTankEnemy,
		Color:                 tu.tankEnemyColor(spec.Type),
		FireSoundRate:         1,
		Scale:                 tu.TankScale,
		Radius:                tu.TankRadius,
		RowIndex:              row,
		speedMult:             1,
	}
	t.layoutBars()
	return t
}

// layoutBars places the health bar below the hull and the fire bar under it.
func (t *Tank) layoutBars() {
	below := t.Radius + 10
	t.Health.Offset = Vec{0, below}
	t.Fire.Offset = Vec{0, below + 8}
	t.Health.Follow(t.Pos)
	t.Fire.Follow(t.Pos)
}
