package game

import (
	"fmt"
	"strings"
)

// reportWindowTicks is the default sliding window for recent-behaviour reports (~10s at 60TPS).
const reportWindowTicks = 600

// --- Snapshot types ---

// TankReport captures a single tank's state.
type TankReport struct {
	ID      int
	Label   string
	Type    TankType
	State   TankState
	Move    MoveMode
	Health  float64
	Fire    float64
	Bullets int
	X, Y    float64
}

// SimReport is a full snapshot of the world at one tick.
type SimReport struct {
	Tick  int
	State GameState
	Row   int
	Speed float64

	PlayerHealth    float64
	PlayerHealthMax float64
	PlayerFire      float64
	PlayerType      TankType
	PlayerBullets   int

	EnemiesAlive  int
	EnemiesDead   int
	EnemyTypes    map[TankType]int // alive enemies per tier
	EnemyBullets  int
	GatesFlashing int
	PillsLeft     int

	// Cumulative counters at this tick.
	Fired      int64
	Multiplied int64
	Evicted    int64
	Overflows  int64
	Destroyed  int64

	// Tanks detail (verbose mode only).
	Tanks []TankReport
}

// --- Reporter ---

// SimReporter collects periodic reports from a world and can produce
// summaries over sliding time windows.
type SimReporter struct {
	history     []SimReport
	windowTicks int
	verbose     bool
}

// NewSimReporter creates a reporter with the given window size.
func NewSimReporter(windowTicks int, verbose bool) *SimReporter {
	if windowTicks <= 0 {
		windowTicks = reportWindowTicks
	}
	return &SimReporter{
		windowTicks: windowTicks,
		verbose:     verbose,
	}
}

// Collect gathers a snapshot from the current world state.
// Call this periodically (e.g. every 60 ticks / 1s).
func (r *SimReporter) Collect(w *World) {
	p := w.Player
	rpt := SimReport{
		Tick:            w.Tick,
		State:           w.State,
		Row:             w.RowCurr,
		Speed:           w.Level.Speed(w.RowCurr),
		PlayerHealth:    p.Health.Value(),
		PlayerHealthMax: p.Health.Max(),
		PlayerFire:      p.Fire.Value(),
		PlayerType:      p.Type,
		PlayerBullets:   p.Bullets.Len(),
		EnemyTypes:      make(map[TankType]int),
		PillsLeft:       len(w.Pills),
		Fired:           w.Metrics.Fired,
		Multiplied:      w.Metrics.Multiplied,
		Evicted:         w.Metrics.Evicted,
		Overflows:       w.Metrics.Overflows,
		Destroyed:       w.Metrics.Destroyed,
	}
	for _, e := range w.Enemies {
		if e.IsAlive() {
			rpt.EnemiesAlive++
			rpt.EnemyTypes[e.Type]++
		} else {
			rpt.EnemiesDead++
		}
		rpt.EnemyBullets += e.Bullets.Len()
	}
	for _, g := range w.Gates {
		if g.Flashing {
			rpt.GatesFlashing++
		}
	}
	if r.verbose {
		for _, t := range w.allTanks() {
			rpt.Tanks = append(rpt.Tanks, TankReport{
				ID:      t.ID,
				Label:   t.Label(),
				Type:    t.Type,
				State:   t.State,
				Move:    t.Move,
				Health:  t.Health.Value(),
				Fire:    t.Fire.Value(),
				Bullets: t.Bullets.Len(),
				X:       t.Pos.X,
				Y:       t.Pos.Y,
			})
		}
	}
	r.history = append(r.history, rpt)
}

// Latest returns the most recent report, or nil.
func (r *SimReporter) Latest() *SimReport {
	if len(r.history) == 0 {
		return nil
	}
	return &r.history[len(r.history)-1]
}

// WindowSummary aggregates the reports inside the recent time window.
func (r *SimReporter) WindowSummary() *WindowReport {
	if len(r.history) == 0 {
		return nil
	}

	latestTick := r.history[len(r.history)-1].Tick
	cutoff := latestTick - r.windowTicks
	var window []SimReport
	for i := len(r.history) - 1; i >= 0; i-- {
		if r.history[i].Tick < cutoff {
			break
		}
		window = append(window, r.history[i])
	}
	if len(window) == 0 {
		return nil
	}

	newest, oldest := window[0], window[len(window)-1]
	n := float64(len(window))
	wr := &WindowReport{
		FromTick:    oldest.Tick,
		ToTick:      newest.Tick,
		SampleCount: len(window),
		RowsClimbed: oldest.Row - newest.Row,
		Fired:       newest.Fired - oldest.Fired,
		Multiplied:  newest.Multiplied - oldest.Multiplied,
		Evicted:     newest.Evicted - oldest.Evicted,
		Overflows:   newest.Overflows - oldest.Overflows,
		Destroyed:   newest.Destroyed - oldest.Destroyed,
		HealthLost:  oldest.PlayerHealth - newest.PlayerHealth,
	}
	for _, rpt := range window {
		wr.AvgPlayerHealth += rpt.PlayerHealth
		wr.AvgPlayerFire += rpt.PlayerFire
		wr.AvgEnemiesAlive += float64(rpt.EnemiesAlive)
		wr.AvgBullets += float64(rpt.PlayerBullets + rpt.EnemyBullets)
		wr.AvgSpeed += rpt.Speed
	}
	wr.AvgPlayerHealth /= n
	wr.AvgPlayerFire /= n
	wr.AvgEnemiesAlive /= n
	wr.AvgBullets /= n
	wr.AvgSpeed /= n
	return wr
}

// WindowReport is an aggregated summary over a time window.
type WindowReport struct {
	FromTick, ToTick int
	SampleCount      int

	RowsClimbed int
	HealthLost  float64

	AvgPlayerHealth float64
	AvgPlayerFire   float64
	AvgEnemiesAlive float64
	AvgBullets      float64
	AvgSpeed        float64

	// Deltas over the window.
	Fired, Multiplied, Evicted, Overflows, Destroyed int64
}

// Format returns a human-readable multi-line string of the window summary.
func (wr *WindowReport) Format() string {
	if wr == nil {
		return "No data collected yet.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "=== Run Report (T=%d..%d, %d samples) ===\n",
		wr.FromTick, wr.ToTick, wr.SampleCount)

	sb.WriteString("\n--- Progress ---\n")
	fmt.Fprintf(&sb, "  rows climbed=%d  avg row speed=%.2f (%s)\n",
		wr.RowsClimbed, wr.AvgSpeed, paceLabel(wr.AvgSpeed))

	sb.WriteString("\n--- Player ---\n")
	fmt.Fprintf(&sb, "  avg health=%.1f  health lost=%.1f  avg fire=%.1f\n",
		wr.AvgPlayerHealth, wr.HealthLost, wr.AvgPlayerFire)

	sb.WriteString("\n--- Bullets ---\n")
	fmt.Fprintf(&sb, "  fired=%d  multiplied=%d  evicted=%d  overflows=%d  avg live=%.1f\n",
		wr.Fired, wr.Multiplied, wr.Evicted, wr.Overflows, wr.AvgBullets)

	sb.WriteString("\n--- Enemies ---\n")
	fmt.Fprintf(&sb, "  avg alive=%.1f  destroyed=%d\n", wr.AvgEnemiesAlive, wr.Destroyed)
	return sb.String()
}

func paceLabel(speed float64) string {
	switch {
	case speed >= 0.9:
		return "full speed"
	case speed >= 0.5:
		return "steady"
	case speed > 0:
		return "crawl"
	default:
		return "end zone"
	}
}

// FormatLatest returns a concise snapshot of the most recent collected report.
func (r *SimReporter) FormatLatest() string {
	rpt := r.Latest()
	if rpt == nil {
		return "No data.\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Snapshot T=%d ---\n", rpt.Tick)
	fmt.Fprintf(&sb, "State: %s  row=%d  speed=%.1f\n", rpt.State, rpt.Row, rpt.Speed)
	fmt.Fprintf(&sb, "Player: %s hp=%.0f/%.0f fire=%.0f bullets=%d\n",
		rpt.PlayerType, rpt.PlayerHealth, rpt.PlayerHealthMax, rpt.PlayerFire, rpt.PlayerBullets)
	fmt.Fprintf(&sb, "Enemies: alive=%d dead=%d bullets=%d\n", rpt.EnemiesAlive, rpt.EnemiesDead, rpt.EnemyBullets)
	sb.WriteString("Tiers: ")
	for _, tt := range []TankType{TankCircleSingle, TankBoxSingle, TankBoxDouble, TankBoxTriple} {
		fmt.Fprintf(&sb, "%s=%d ", tt, rpt.EnemyTypes[tt])
	}
	sb.WriteByte('\n')
	for _, t := range rpt.Tanks {
		fmt.Fprintf(&sb, "  %-4s %-26s %-5s hp=%5.1f fire=%5.1f bullets=%3d (%.0f,%.0f)\n",
			t.Label, t.Type, t.State, t.Health, t.Fire, t.Bullets, t.X, t.Y)
	}
	return sb.String()
}

// History returns all collected reports.
func (r *SimReporter) History() []SimReport {
	return r.history
}
