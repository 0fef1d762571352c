package game

import "math"

// TicksPerSecond is the fixed simulation rate. Delays configured in
// milliseconds are converted with MsToTicks.
const TicksPerSecond = 60

// Board geometry.
const (
	platformWidth  = 100
	platformHeight = 100
	rowCells       = 10 // cells per level row
	cellRunes      = 6  // runes per cell code
)

// Tuning holds every gameplay constant. DefaultTuning is the single source
// of defaults; config.Load overlays user overrides on top of it.
type Tuning struct {
	// World
	GameWidth                float64 `mapstructure:"game_width"`
	GameHeightBox            float64 `mapstructure:"game_height_box"`  // camera view height
	GameHeightLong           float64 `mapstructure:"game_height_long"` // level height used for the player start
	TankStartYRatio          float64 `mapstructure:"tank_start_y_ratio"`
	GameBoundaryExtraPadding float64 `mapstructure:"game_boundary_extra_padding"`
	PlayerOriginDownScreen   float64 `mapstructure:"player_origin_down_screen"`
	CameraLarping            float64 `mapstructure:"camera_larping"`
	StateChangeDelayMs       int     `mapstructure:"state_change_delay_ms"`

	// Controls
	ForceForward          bool    `mapstructure:"force_forward"`
	TankForceForwardSpeed float64 `mapstructure:"tank_force_forward_speed"`
	StickThreshold        float64 `mapstructure:"stick_threshold"` // stick radius that maps to full speed

	// Tank
	TankCreateNumRowsAhead   int     `mapstructure:"tank_create_num_rows_ahead"`
	TankDestroyNumRowsBehind int     `mapstructure:"tank_destroy_num_rows_behind"`
	TankEnemiesFire          bool    `mapstructure:"tank_enemies_fire"`
	TankMaxSpeed             float64 `mapstructure:"tank_max_speed"`
	TankKeepVelocity         float64 `mapstructure:"tank_keep_velocity"`
	TankEnemyPercentShooting float64 `mapstructure:"tank_enemy_percent_shooting"`
	TankFireMinUpdates       int     `mapstructure:"tank_fire_min_updates_between"`
	TankPlayerFireCost       float64 `mapstructure:"tank_player_fire_cost"`
	TankEnemyFireCost        float64 `mapstructure:"tank_enemy_fire_cost"`
	TankFireReplenishRate    float64 `mapstructure:"tank_fire_replenish_rate"`
	TankPlayerHealthInit     float64 `mapstructure:"tank_player_health_init"`
	TankEnemyHealthCircle    float64 `mapstructure:"tank_enemy_health_circle_single_init"`
	TankEnemyHealthBox1      float64 `mapstructure:"tank_enemy_health_box_single_init"`
	TankEnemyHealthBox2      float64 `mapstructure:"tank_enemy_health_box_double_init"`
	TankEnemyHealthBox3      float64 `mapstructure:"tank_enemy_health_box_triple_init"`
	TankFireInitCircle       float64 `mapstructure:"tank_fire_init_circle"`
	TankFireInit             float64 `mapstructure:"tank_fire_init"`
	TankUpgradeHealthAdd     float64 `mapstructure:"tank_upgrade_health_add"`
	TankBulletDamage         float64 `mapstructure:"tank_bullet_damage"`
	TankDeadGoneDelayMs      int     `mapstructure:"tank_dead_gone_delay_ms"`
	TankPlayerGoneDelayMs    int     `mapstructure:"tank_player_gone_delay_ms"`
	TankScale                float64 `mapstructure:"tank_scale"`
	TankRadius               float64 `mapstructure:"tank_radius"` // collision radius in world px
	TankPlayerColor          uint32  `mapstructure:"tank_player_color"`
	TankColorCircleSingle    uint32  `mapstructure:"tank_enemy_color_circle_single"`
	TankColorBoxSingle       uint32  `mapstructure:"tank_enemy_color_box_single"`
	TankColorBoxDouble       uint32  `mapstructure:"tank_enemy_color_box_double"`
	TankColorBoxTriple       uint32  `mapstructure:"tank_enemy_color_box_triple"`

	// Bullet
	BulletMaxPerTankPlayer    int     `mapstructure:"bullet_max_per_tank_player"`
	BulletMaxPerTankEnemy     int     `mapstructure:"bullet_max_per_tank_enemy"`
	BulletNumUpdatesSkip      int     `mapstructure:"bullet_num_updates_skip"`
	BulletMaxSpeed            float64 `mapstructure:"bullet_max_speed"`
	BulletAdditionRotationRad float64 `mapstructure:"bullet_addition_rotation_rad"`
	BulletRadius              float64 `mapstructure:"bullet_radius"`
	BulletsCollidePlatforms   bool    `mapstructure:"bullets_collide_platforms"`

	// Gate
	GateFlashMs                 int     `mapstructure:"gate_flash_ms"`
	GateRepeatSoundMs           int     `mapstructure:"gate_repeat_sound_ms"`
	GateBulletSpawnPointOffset  float64 `mapstructure:"gate_bullet_spawn_point_offset"`
	GateSoundNoteOffset         int     `mapstructure:"gate_sound_note_offset"`
	PillSoundNoteOffset         int     `mapstructure:"pill_sound_note_offset"`
	GateArrowUsesTurretRotation bool    `mapstructure:"gate_arrow_uses_turret_rotation"`

	// Pill
	PillRadius              float64 `mapstructure:"pill_radius"`
	PillRechargeRateFactor  float64 `mapstructure:"pill_recharge_rate_factor"`
	PillHealthRestoreFactor float64 `mapstructure:"pill_health_restore_factor"`
}

// DefaultTuning returns the stock arcade settings.
func DefaultTuning() Tuning {
	return Tuning{
		GameWidth:                1000,
		GameHeightBox:            1000,
		GameHeightLong:           6000,
		TankStartYRatio:          0.98,
		GameBoundaryExtraPadding: 50,
		PlayerOriginDownScreen:   0.9,
		CameraLarping:            0.5,
		StateChangeDelayMs:       4000,

		ForceForward:          true,
		TankForceForwardSpeed: 120,
		StickThreshold:        100,

		TankCreateNumRowsAhead:   10,
		TankDestroyNumRowsBehind: 7,
		TankEnemiesFire:          true,
		TankMaxSpeed:             500,
		TankKeepVelocity:         0.95,
		TankEnemyPercentShooting: 0.02,
		TankFireMinUpdates:       16,
		TankPlayerFireCost:       10,
		TankEnemyFireCost:        50,
		TankFireReplenishRate:    0.3,
		TankPlayerHealthInit:     50,
		TankEnemyHealthCircle:    15,
		TankEnemyHealthBox1:      20,
		TankEnemyHealthBox2:      25,
		TankEnemyHealthBox3:      30,
		TankFireInitCircle:       50,
		TankFireInit:             100,
		TankUpgradeHealthAdd:     10,
		TankBulletDamage:         5,
		TankDeadGoneDelayMs:      100_000,
		TankPlayerGoneDelayMs:    2000,
		TankScale:                0.5,
		TankRadius:               30,
		TankPlayerColor:          0x88ffff,
		TankColorCircleSingle:    0xccaa88,
		TankColorBoxSingle:       0xcc6688,
		TankColorBoxDouble:       0xcc22aa,
		TankColorBoxTriple:       0xcc55ff,

		BulletMaxPerTankPlayer:    500,
		BulletMaxPerTankEnemy:     100,
		BulletNumUpdatesSkip:      3,
		BulletMaxSpeed:            400,
		BulletAdditionRotationRad: math.Pi / 32,
		BulletRadius:              6,
		BulletsCollidePlatforms:   false,

		GateFlashMs:                 100,
		GateRepeatSoundMs:           50,
		GateBulletSpawnPointOffset:  0,
		GateSoundNoteOffset:         -8,
		PillSoundNoteOffset:         -6,
		GateArrowUsesTurretRotation: true,

		PillRadius:              30,
		PillRechargeRateFactor:  1.5,
		PillHealthRestoreFactor: 0.5,
	}
}

// MsToTicks converts a millisecond delay to whole ticks, rounding up so a
// non-zero delay never fires on the tick it was scheduled.
func MsToTicks(ms int) int {
	if ms <= 0 {
		return 0
	}
	return (ms*TicksPerSecond + 999) / 1000
}

// tickSeconds is the fixed step duration.
const tickSeconds = 1.0 / TicksPerSecond

// tankHealthInit returns the starting health for an enemy of the given type.
func (tu Tuning) tankHealthInit(tt TankType) float64 {
	switch tt {
	case TankBoxSingle:
		return tu.TankEnemyHealthBox1
	case TankBoxDouble:
		return tu.TankEnemyHealthBox2
	case TankBoxTriple:
		return tu.TankEnemyHealthBox3
	default:
		return tu.TankEnemyHealthCircle
	}
}

// tankEnemyColor returns the tier tint for enemies.
func (tu Tuning) tankEnemyColor(tt TankType) uint32 {
	switch tt {
	case TankBoxSingle:
		return tu.TankColorBoxSingle
	case TankBoxDouble:
		return tu.TankColorBoxDouble
	case TankBoxTriple:
		return tu.TankColorBoxTriple
	default:
		return tu.TankColorCircleSingle
	}
}
