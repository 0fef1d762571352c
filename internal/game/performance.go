package game

import (
	"fmt"
	"sort"
	"strings"
)

// Performance grading thresholds.
const (
	perfThreatRadius    = 250.0 // enemy bullet within this of the player counts as under fire
	perfLowHealthFrac   = 0.3
	perfMinTicksToGrade = 60
	perfStallSpeed      = 5.0
)

// ---------------------------------------------------------------------------
// PerfTracker: per-run accumulator for the player
// ---------------------------------------------------------------------------

// PerfTracker accumulates per-tick performance metrics for the player.
type PerfTracker struct {
	Seed int64

	// Lifecycle.
	TicksAlive int
	Survived   bool
	Won        bool

	// Situation time (ticks).
	TicksUnderFire int
	TicksLowHealth int
	TicksStarved   int // fire gauge below one shot
	TicksTrigger   int // fire held
	TicksStalled   int // barely moving on a scrolling row

	// Aggregates.
	Kills        int
	EnemiesSeen  int
	PillsTaken   int
	Upgrades     int
	DamageTaken  float64
	RowsClimbed  int
	ShotsFired   int64
	Multiplied   int64
	Evicted      int64
	Overflows    int64
	HealthAtEnd  float64
	FinalType    TankType
	FinalOutcome RunOutcome

	// Change detection.
	prevHealth float64
	prevType   TankType
	startRow   int
	bestRow    int
	prevAlive  map[int]bool
	prevPills  int
}

// NewPerfTracker creates a tracker seeded from the world's initial state.
func NewPerfTracker(w *World, seed int64) *PerfTracker {
	return &PerfTracker{
		Seed:       seed,
		prevHealth: w.Player.Health.Value(),
		prevType:   w.Player.Type,
		startRow:   w.RowCurr,
		bestRow:    w.RowCurr,
		prevAlive:  make(map[int]bool),
		prevPills:  len(w.Pills),
	}
}

// Update accumulates one tick of data from the world.
func (pt *PerfTracker) Update(w *World) {
	p := w.Player

	for _, e := range w.Enemies {
		alive := e.IsAlive()
		was, seen := pt.prevAlive[e.ID]
		if !seen {
			pt.EnemiesSeen++
		}
		if was && !alive && e.Health.IsEmpty() {
			pt.Kills++
		}
		pt.prevAlive[e.ID] = alive
	}
	if n := len(w.Pills); n < pt.prevPills {
		pt.PillsTaken += pt.prevPills - n
	}
	pt.prevPills = len(w.Pills)

	if !p.IsAlive() {
		return
	}
	pt.TicksAlive++

	if h := p.Health.Value(); h < pt.prevHealth {
		pt.DamageTaken += pt.prevHealth - h
	}
	pt.prevHealth = p.Health.Value()
	if p.Type != pt.prevType {
		pt.Upgrades++
		pt.prevType = p.Type
	}
	if w.RowCurr < pt.bestRow {
		pt.bestRow = w.RowCurr
	}

	if p.Health.Percent() < perfLowHealthFrac {
		pt.TicksLowHealth++
	}
	if !p.Fire.HasAmount(p.FireCost) {
		pt.TicksStarved++
	}
	if w.Controls().Fire {
		pt.TicksTrigger++
	}
	if w.Level.Speed(w.RowCurr) != 0 && p.Vel.Len() < perfStallSpeed {
		pt.TicksStalled++
	}
	if underFire(w) {
		pt.TicksUnderFire++
	}
}

func underFire(w *World) bool {
	for _, e := range w.Enemies {
		for _, b := range e.Bullets.Snapshot() {
			if b.Pos.Dist(w.Player.Pos) <= perfThreatRadius {
				return true
			}
		}
	}
	return false
}

// Finalize records end-of-run state.
func (pt *PerfTracker) Finalize(w *World) {
	p := w.Player
	pt.Survived = p.IsAlive()
	pt.Won = w.State == StateWin
	pt.HealthAtEnd = p.Health.Value()
	pt.FinalType = p.Type
	pt.RowsClimbed = pt.startRow - pt.bestRow
	pt.ShotsFired = w.Metrics.Fired
	pt.Multiplied = w.Metrics.Multiplied
	pt.Evicted = w.Metrics.Evicted
	pt.Overflows = w.Metrics.Overflows
	pt.FinalOutcome = DetermineRunOutcome(w).Outcome
}

// ---------------------------------------------------------------------------
// RunGrade: computed performance result
// ---------------------------------------------------------------------------

// RunGrade is the computed performance grade for one run.
type RunGrade struct {
	Seed     int64
	Grade    string  // A+, A, B+, B, C+, C, D, F
	Score    float64 // 0-100
	Survived bool
	Won      bool
	Outcome  RunOutcome

	// Situation scores (0-100; -1 = not enough data to grade).
	SurvivalScore   float64
	AggressionScore float64
	EconomyScore    float64
	GateworkScore   float64
	PaceScore       float64

	// Observed traits.
	GoodTraits []string
	BadTraits  []string

	// Key stats.
	Kills       int
	EnemiesSeen int
	DamageTaken float64
	RowsClimbed int
	FinalType   TankType
}

// ---------------------------------------------------------------------------
// Grading logic
// ---------------------------------------------------------------------------

// GradePerformance computes grades for a batch of runs, best first.
func GradePerformance(trackers []*PerfTracker) []RunGrade {
	grades := make([]RunGrade, 0, len(trackers))
	for _, pt := range trackers {
		grades = append(grades, computeGrade(pt))
	}
	SortGrades(grades)
	return grades
}

// SortGrades orders grades best first, keeping run order among ties.
func SortGrades(grades []RunGrade) {
	sort.SliceStable(grades, func(i, j int) bool {
		return grades[i].Score > grades[j].Score
	})
}

func computeGrade(pt *PerfTracker) RunGrade {
	g := RunGrade{
		Seed:            pt.Seed,
		Survived:        pt.Survived,
		Won:             pt.Won,
		Outcome:         pt.FinalOutcome,
		Kills:           pt.Kills,
		EnemiesSeen:     pt.EnemiesSeen,
		DamageTaken:     pt.DamageTaken,
		RowsClimbed:     pt.RowsClimbed,
		FinalType:       pt.FinalType,
		SurvivalScore:   -1,
		AggressionScore: -1,
		EconomyScore:    -1,
		GateworkScore:   -1,
		PaceScore:       -1,
	}
	if pt.TicksAlive < perfMinTicksToGrade {
		g.Score = 0
		g.Grade = PerfLetterGrade(0)
		g.BadTraits = append(g.BadTraits, "early_death")
		return g
	}

	survival := 40.0
	if pt.Survived {
		survival = 70
	}
	if pt.Won {
		survival = 100
	}
	survival -= 30 * perfFrac(pt.TicksLowHealth, pt.TicksAlive)
	g.SurvivalScore = perfClamp(survival)

	if pt.EnemiesSeen > 0 {
		g.AggressionScore = perfClamp(100 * perfFrac(pt.Kills, pt.EnemiesSeen))
	}

	g.EconomyScore = perfClamp(100 * (1 - perfFrac(pt.TicksStarved, pt.TicksAlive)))

	if pt.ShotsFired > 0 {
		ratio := float64(pt.Multiplied) / float64(pt.ShotsFired)
		g.GateworkScore = perfClamp(100 * ratio * 4)
	}

	g.PaceScore = perfClamp(100 * (1 - perfFrac(pt.TicksStalled, pt.TicksAlive)))

	// Weighted mean over the scores that could be graded.
	weights := []struct {
		score, weight float64
	}{
		{g.SurvivalScore, 0.35},
		{g.AggressionScore, 0.25},
		{g.EconomyScore, 0.10},
		{g.GateworkScore, 0.15},
		{g.PaceScore, 0.15},
	}
	sum, wsum := 0.0, 0.0
	for _, w := range weights {
		if w.score < 0 {
			continue
		}
		sum += w.score * w.weight
		wsum += w.weight
	}
	if wsum > 0 {
		g.Score = sum / wsum
	}
	g.Grade = PerfLetterGrade(g.Score)
	g.GoodTraits, g.BadTraits = perfDetectTraits(pt)
	return g
}

// perfDetectTraits names standout habits of a run.
func perfDetectTraits(pt *PerfTracker) (good, bad []string) {
	if pt.Won && pt.DamageTaken == 0 {
		good = append(good, "untouched")
	}
	if pt.EnemiesSeen > 0 && perfFrac(pt.Kills, pt.EnemiesSeen) >= 0.75 {
		good = append(good, "clears_the_field")
	}
	if pt.ShotsFired > 0 && float64(pt.Multiplied)/float64(pt.ShotsFired) >= 0.2 {
		good = append(good, "gate_worker")
	}
	if pt.Upgrades >= 2 {
		good = append(good, "upgraded")
	}
	if pt.Overflows > 0 {
		bad = append(bad, "saturated_gates")
	}
	if perfFrac(pt.TicksStarved, pt.TicksAlive) > 0.5 {
		bad = append(bad, "fire_starved")
	}
	if perfFrac(pt.TicksLowHealth, pt.TicksAlive) > 0.3 {
		bad = append(bad, "lived_dangerously")
	}
	if perfFrac(pt.TicksStalled, pt.TicksAlive) > 0.2 {
		bad = append(bad, "stalled")
	}
	if !pt.Survived {
		bad = append(bad, "destroyed")
	}
	return good, bad
}

// ---------------------------------------------------------------------------
// Formatting
// ---------------------------------------------------------------------------

// FormatGrades returns a human-readable performance report.
func FormatGrades(grades []RunGrade) string {
	var sb strings.Builder
	sb.WriteString("\n=== Run Performance Grades ===\n")
	for _, g := range grades {
		status := "survived"
		if g.Won {
			status = "won"
		} else if !g.Survived {
			status = "destroyed"
		}
		fmt.Fprintf(&sb, "  %-3s  seed=%-6d [%s]  kills=%d/%d  dmg=%.0f  rows=%d  tier=%s\n",
			g.Grade, g.Seed, status, g.Kills, g.EnemiesSeen, g.DamageTaken, g.RowsClimbed, g.FinalType)

		if len(g.GoodTraits) > 0 {
			fmt.Fprintf(&sb, "       Good: %s\n", strings.Join(g.GoodTraits, ", "))
		}
		if len(g.BadTraits) > 0 {
			fmt.Fprintf(&sb, "       Bad:  %s\n", strings.Join(g.BadTraits, ", "))
		}

		var scores []string
		if g.SurvivalScore >= 0 {
			scores = append(scores, fmt.Sprintf("Survival=%.0f", g.SurvivalScore))
		}
		if g.AggressionScore >= 0 {
			scores = append(scores, fmt.Sprintf("Aggression=%.0f", g.AggressionScore))
		}
		if g.EconomyScore >= 0 {
			scores = append(scores, fmt.Sprintf("Economy=%.0f", g.EconomyScore))
		}
		if g.GateworkScore >= 0 {
			scores = append(scores, fmt.Sprintf("Gates=%.0f", g.GateworkScore))
		}
		if g.PaceScore >= 0 {
			scores = append(scores, fmt.Sprintf("Pace=%.0f", g.PaceScore))
		}
		if len(scores) > 0 {
			fmt.Fprintf(&sb, "       Scores: %s\n", strings.Join(scores, "  "))
		}
	}
	return sb.String()
}

// FormatGradesSummary returns a compact summary over all runs.
func FormatGradesSummary(grades []RunGrade) string {
	var sb strings.Builder
	if len(grades) == 0 {
		return "  no runs graded\n"
	}
	sum := 0.0
	won := 0
	good := map[string]int{}
	bad := map[string]int{}
	for _, g := range grades {
		sum += g.Score
		if g.Won {
			won++
		}
		for _, t := range g.GoodTraits {
			good[t]++
		}
		for _, t := range g.BadTraits {
			bad[t]++
		}
	}
	avg := sum / float64(len(grades))
	fmt.Fprintf(&sb, "  avg_score=%.1f (%s)  won=%d/%d\n", avg, PerfLetterGrade(avg), won, len(grades))
	if len(good) > 0 {
		fmt.Fprintf(&sb, "    Top good: %s\n", perfTopTraits(good, 4))
	}
	if len(bad) > 0 {
		fmt.Fprintf(&sb, "    Top bad:  %s\n", perfTopTraits(bad, 4))
	}
	return sb.String()
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

func perfFrac(num, denom int) float64 {
	if denom <= 0 {
		return 0
	}
	return float64(num) / float64(denom)
}

func perfClamp(s float64) float64 {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}

// PerfLetterGrade maps a 0-100 score to a letter grade.
func PerfLetterGrade(score float64) string {
	switch {
	case score >= 93:
		return "A+"
	case score >= 85:
		return "A"
	case score >= 78:
		return "B+"
	case score >= 70:
		return "B"
	case score >= 62:
		return "C+"
	case score >= 55:
		return "C"
	case score >= 45:
		return "D"
	default:
		return "F"
	}
}

func perfTopTraits(counts map[string]int, n int) string {
	type kv struct {
		trait string
		count int
	}
	var items []kv
	for k, v := range counts {
		items = append(items, kv{k, v})
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].count != items[j].count {
			return items[i].count > items[j].count
		}
		return items[i].trait < items[j].trait
	})
	if len(items) > n {
		items = items[:n]
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s(%d)", it.trait, it.count)
	}
	return strings.Join(parts, ", ")
}
