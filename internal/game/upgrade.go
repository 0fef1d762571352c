package game

// upgradeLadder maps each tier to the next. The top tier maps to itself.
var upgradeLadder = map[TankType]TankType{
	TankCircleSingle: TankBoxSingle,
	TankBoxSingle:    TankBoxDouble,
	TankBoxDouble:    TankBoxTriple,
	TankBoxTriple:    TankBoxTriple,
}

// fireSoundUpgradeStep lowers the fire click pitch per upgrade.
const fireSoundUpgradeStep = 0.95

// UpgradeTank climbs one rung of the tier ladder. Max health grows by the
// configured increment and both gauges refill. At the top tier the type stays
// put but the rest still applies. Non-alive tanks are left untouched.
func UpgradeTank(t *Tank, tu Tuning) {
	if !t.IsAlive() {
		return
	}
	t.Health.SetMax(t.Health.Max() + tu.TankUpgradeHealthAdd)
	t.Type = upgradeLadder[t.Type]
	if t.IsPlayer() {
		t.Color = tu.TankPlayerColor
	} else {
		t.Color = tu.tankEnemyColor(t.Type)
	}
	t.FireSoundRate *= fireSoundUpgradeStep
	t.Health.SetFull()
	t.Fire.SetFull()
}
