package game

// RunOutcome is the classified result of one session.
type RunOutcome int

const (
	OutcomeInconclusive RunOutcome = iota
	OutcomeVictory
	OutcomeDefeat
	OutcomeStalled
)

func (o RunOutcome) String() string {
	switch o {
	case OutcomeVictory:
		return "victory"
	case OutcomeDefeat:
		return "defeat"
	case OutcomeStalled:
		return "stalled"
	case OutcomeInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// RunOutcomeReason explains an outcome with the numbers behind it.
type RunOutcomeReason struct {
	Outcome         RunOutcome
	Ticks           int
	RowsTotal       int
	RowReached      int
	Progress        float64 // share of the level climbed, 0..1
	EnemiesSeen     int
	EnemiesAlive    int
	PlayerHealth    float64
	PlayerHealthMax float64
	PlayerType      TankType
	Description     string
}

// stalledSpeed is the player speed below which a still-playing session
// with rows left counts as stuck.
const stalledSpeed = 1.0

// DetermineRunOutcome classifies the world as it stands.
func DetermineRunOutcome(w *World) RunOutcomeReason {
	p := w.Player
	rows := len(w.Level.Rows)
	start := RowIndexAt(w.Tuning.GameHeightLong * w.Tuning.TankStartYRatio)
	progress := 0.0
	if start > 0 {
		progress = clamp(float64(start-w.RowCurr)/float64(start), 0, 1)
	}

	r := RunOutcomeReason{
		Ticks:           w.Tick,
		RowsTotal:       rows,
		RowReached:      w.RowCurr,
		Progress:        progress,
		EnemiesSeen:     w.nextEnemyIndex,
		EnemiesAlive:    w.AliveEnemies(),
		PlayerHealth:    p.Health.Value(),
		PlayerHealthMax: p.Health.Max(),
		PlayerType:      p.Type,
	}

	switch {
	case w.State == StateWin && p.Health.Value() >= p.Health.Max()*0.5:
		r.Outcome = OutcomeVictory
		r.Description = "decisive_victory_level_cleared"
	case w.State == StateWin:
		r.Outcome = OutcomeVictory
		r.Description = "narrow_victory_level_cleared"
	case w.State == StateLose && progress >= 0.75:
		r.Outcome = OutcomeDefeat
		r.Description = "defeat_near_end"
	case w.State == StateLose:
		r.Outcome = OutcomeDefeat
		r.Description = "defeat_destroyed"
	case w.State == StatePlaying && p.Vel.Len() < stalledSpeed && w.Level.Speed(w.RowCurr) != 0:
		r.Outcome = OutcomeStalled
		r.Description = "stalled_no_progress"
	default:
		r.Outcome = OutcomeInconclusive
		r.Description = "inconclusive_time_limit"
	}
	return r
}
