package game

// PillType is the one-shot buff a pill grants the player.
type PillType int

const (
	PillHealth   PillType = iota // restore half of max health
	PillRecharge                 // refill fire, faster regen
	PillTime                     // refill fire, halve the cooldown
	PillUpgrade                  // climb the tier ladder
)

var pillCodes = map[string]PillType{
	"p-hlth": PillHealth,
	"p-rchg": PillRecharge,
	"p-time": PillTime,
	"p-upgr": PillUpgrade,
}

func (pt PillType) String() string {
	switch pt {
	case PillHealth:
		return "health"
	case PillRecharge:
		return "recharge"
	case PillTime:
		return "time"
	case PillUpgrade:
		return "upgrade"
	default:
		return "unknown"
	}
}

// Code returns the six-rune level code of the pill.
func (pt PillType) Code() string {
	for code, t := range pillCodes {
		if t == pt {
			return code
		}
	}
	return ""
}

// Pill is a collectible consumed exactly once by the player.
type Pill struct {
	ID       int
	Type     PillType
	Pos      Vec
	Consumed bool

	SoundRate float64
}

func newPill(id int, pt PillType, pos Vec, tu Tuning) *Pill {
	return &Pill{
		ID:        id,
		Type:      pt,
		Pos:       pos,
		SoundRate: ScaleIonian.Rate(int(pt), tu.PillSoundNoteOffset),
	}
}

// applyPill grants pill's effect to tank. Dead or gone tanks get nothing.
func applyPill(t *Tank, pt PillType, tu Tuning) {
	if !t.IsAlive() {
		return
	}
	switch pt {
	case PillHealth:
		t.Health.Increase(t.Health.Max() * tu.PillHealthRestoreFactor)
	case PillRecharge:
		t.Fire.SetFull()
		t.FireReplenishRate *= tu.PillRechargeRateFactor
	case PillTime:
		t.Fire.SetFull()
		if t.FireMinUpdatesBetween > 0 {
			t.FireMinUpdatesBetween /= 2
		}
	case PillUpgrade:
		UpgradeTank(t, tu)
	}
}
