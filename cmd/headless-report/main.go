package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/Garsondee/tank-gates/internal/config"
	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/Garsondee/tank-gates/internal/influx"
	"github.com/Garsondee/tank-gates/internal/store"
	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type runStats struct {
	runIndex int
	seed     int64

	firstKillTick    int
	firstPillTick    int
	firstUpgradeTick int
	deathTick        int
	endTick          int

	kills      int
	spikeHits  int
	pills      int
	upgrades   int
	streamed   int
	stateMoves int

	outcome       game.RunOutcomeReason
	windowSummary *game.WindowReport
	history       []game.SimReport
	grade         game.RunGrade
	world         *game.World
}

type options struct {
	configDir string
	runs      int
	ticks     int
	seedBase  int64
	seedStep  int64
	level     string
	workers   int
	batch     string
	noStore   bool
	influx    bool
	copy      bool
}

func main() {
	var o options
	flag.StringVar(&o.configDir, "config", ".", "directory holding tank-gates.{yaml,json,toml}")
	flag.IntVar(&o.runs, "runs", 0, "number of headless runs (0 = config sim.runs)")
	flag.IntVar(&o.ticks, "ticks", 0, "tick limit per run (0 = config sim.maxTicks)")
	flag.Int64Var(&o.seedBase, "seed-base", 0, "base RNG seed for run 1 (0 = config sim.seed)")
	flag.Int64Var(&o.seedStep, "seed-step", 1, "seed increment between runs")
	flag.StringVar(&o.level, "level", "", "embedded level name (empty = config level)")
	flag.IntVar(&o.workers, "workers", 0, "parallel runs (0 = config sim.workers)")
	flag.StringVar(&o.batch, "batch", "", "batch label stored with each run (default: timestamp)")
	flag.BoolVar(&o.noStore, "no-store", false, "skip writing runs to the sqlite store")
	flag.BoolVar(&o.influx, "influx", false, "export run metrics to InfluxDB regardless of config")
	flag.BoolVar(&o.copy, "copy", false, "copy the full report to the clipboard")
	flag.Parse()

	settings, err := config.Load(o.configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log := game.NewConsoleLogger(os.Stderr, settings.LogLevel)
	o = resolveOptions(o, settings)
	if err := validate(o); err != nil {
		log.Fatal().Err(err).Msg("invalid flags")
	}

	level, err := game.LoadLevel(o.level)
	if err != nil {
		log.Fatal().Err(err).Str("level", o.level).Msg("level load failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var report bytes.Buffer
	out := io.MultiWriter(os.Stdout, &report)

	fmt.Fprintf(out, "=== Headless Run Report ===\n")
	fmt.Fprintf(out, "level=%s runs=%d ticks=%d seed_base=%d seed_step=%d workers=%d batch=%s\n\n",
		level.Name, o.runs, o.ticks, o.seedBase, o.seedStep, o.workers, o.batch)

	all, err := runAll(ctx, o, level, settings.Tuning, log)
	if err != nil {
		log.Fatal().Err(err).Msg("runs failed")
	}
	for _, rs := range all {
		printRun(out, rs)
	}
	printAggregate(out, all)

	if !o.noStore && settings.Store.Enabled {
		if err := saveRuns(ctx, settings.Store.Path, o.batch, all, log); err != nil {
			log.Error().Err(err).Msg("store write failed")
		}
	}
	if o.influx || settings.Influx.Enabled {
		cfg := settings.Influx
		cfg.Enabled = true
		if err := exportRuns(ctx, cfg, o.batch, all, log); err != nil {
			log.Error().Err(err).Msg("influx export failed")
		}
	}
	if o.copy {
		if err := clipboard.WriteAll(report.String()); err != nil {
			log.Warn().Err(err).Msg("clipboard unavailable")
		} else {
			log.Info().Int("bytes", report.Len()).Msg("report copied to clipboard")
		}
	}
}

// resolveOptions fills unset flags from config.
func resolveOptions(o options, s config.Settings) options {
	if o.runs == 0 {
		o.runs = s.Sim.Runs
	}
	if o.ticks == 0 {
		o.ticks = s.Sim.MaxTicks
	}
	if o.seedBase == 0 {
		o.seedBase = s.Sim.Seed
	}
	if o.workers == 0 {
		o.workers = s.Sim.Workers
	}
	if o.level == "" {
		o.level = s.Level
	}
	if o.batch == "" {
		o.batch = time.Now().UTC().Format("20060102T150405Z")
	}
	return o
}

func validate(o options) error {
	switch {
	case o.runs <= 0:
		return errors.New("-runs must be > 0")
	case o.ticks <= 0:
		return errors.New("-ticks must be > 0")
	case o.workers <= 0:
		return errors.New("-workers must be > 0")
	}
	return nil
}

// runAll fans the runs out over a bounded errgroup. Each goroutine owns its
// own world; results land in run order.
func runAll(ctx context.Context, o options, level *game.Level, tu game.Tuning, log zerolog.Logger) ([]runStats, error) {
	all := make([]runStats, o.runs)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i := 0; i < o.runs; i++ {
		seed := o.seedBase + int64(i)*o.seedStep
		g.Go(func() error {
			rs, err := runOne(ctx, i+1, seed, o.ticks, level, tu)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i+1, seed, err)
			}
			log.Debug().Int("run", i+1).Int64("seed", seed).
				Str("outcome", rs.outcome.Outcome.String()).Int("ticks", rs.endTick).Msg("run finished")
			all[i] = rs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return all, nil
}

// runOne plays a level under the autopilot until it is won, lost or the
// tick limit is hit.
func runOne(ctx context.Context, runIndex int, seed int64, ticks int, level *game.Level, tu game.Tuning) (runStats, error) {
	metrics, err := game.NewMetrics(nil)
	if err != nil {
		return runStats{}, err
	}
	pilot := game.NewAutopilot()
	ts := game.NewTestSim(
		game.WithLevel(level),
		game.WithSimTuning(func(t *game.Tuning) { *t = tu }),
		game.WithSimSeed(seed),
		game.WithControls(func(int) game.ControlInput { return pilot.Poll() }),
		game.WithWorldOptions(game.WithMetrics(metrics)),
	)
	if err := ts.Err(); err != nil {
		return runStats{}, err
	}

	w := ts.World
	reporter := game.NewSimReporter(0, false)
	tracker := game.NewPerfTracker(w, seed)
	for i := 0; i < ticks && !w.State.Terminal(); i++ {
		if i%game.TicksPerSecond == 0 && ctx.Err() != nil {
			return runStats{}, ctx.Err()
		}
		ts.RunTicks(1)
		tracker.Update(w)
		if w.Tick%game.TicksPerSecond == 0 {
			reporter.Collect(w)
		}
	}
	reporter.Collect(w)
	tracker.Finalize(w)

	return collectStats(runIndex, seed, ts, reporter, tracker), nil
}

func collectStats(runIndex int, seed int64, ts *game.TestSim, rep *game.SimReporter, tracker *game.PerfTracker) runStats {
	entries := ts.SimLog.Entries()
	kills := 0
	for _, e := range entries {
		if e.Category == "state" && e.Key == "dead" && e.Side == "enemy" && strings.Contains(e.Value, "alive") {
			kills++
		}
	}
	return runStats{
		runIndex:         runIndex,
		seed:             seed,
		firstKillTick:    firstTick(entries, "state", "dead", "enemy", "alive"),
		firstPillTick:    firstTick(entries, "pill", "", "", ""),
		firstUpgradeTick: firstTick(entries, "upgrade", "tier", "", ""),
		deathTick:        firstTick(entries, "state", "dead", "player", ""),
		endTick:          ts.CurrentTick(),
		kills:            kills,
		spikeHits:        ts.SimLog.CountCategory("combat", "spike"),
		pills:            len(ts.SimLog.Filter("pill", "")),
		upgrades:         ts.SimLog.CountCategory("upgrade", "tier"),
		streamed:         ts.SimLog.CountCategory("stream", "spawn"),
		stateMoves:       ts.SimLog.CountCategory("session", "state"),
		outcome:          game.DetermineRunOutcome(ts.World),
		windowSummary:    rep.WindowSummary(),
		history:          rep.History(),
		grade:            game.GradePerformance([]*game.PerfTracker{tracker})[0],
		world:            ts.World,
	}
}

// firstTick returns the tick of the first entry matching category, and key,
// side and value substring when non-empty; -1 if none.
func firstTick(entries []game.SimLogEntry, category, key, side, contains string) int {
	for _, e := range entries {
		if e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if side != "" && e.Side != side {
			continue
		}
		if contains == "" || strings.Contains(e.Value, contains) {
			return e.Tick
		}
	}
	return -1
}

func printRun(out io.Writer, rs runStats) {
	fmt.Fprintf(out, "--- Run %d (seed=%d) ---\n", rs.runIndex, rs.seed)
	fmt.Fprintf(out, "outcome: %s (%s) ticks=%d row=%d/%d progress=%.0f%%\n",
		rs.outcome.Outcome, rs.outcome.Description, rs.endTick,
		rs.outcome.RowReached, rs.outcome.RowsTotal, rs.outcome.Progress*100)
	fmt.Fprintf(out, "phase_markers: first_kill=%d first_pill=%d first_upgrade=%d player_death=%d\n",
		rs.firstKillTick, rs.firstPillTick, rs.firstUpgradeTick, rs.deathTick)
	fmt.Fprintf(out, "event_totals: kills=%d streamed=%d pills=%d upgrades=%d spike_hits=%d state_changes=%d\n",
		rs.kills, rs.streamed, rs.pills, rs.upgrades, rs.spikeHits, rs.stateMoves)
	if m := rs.world.Metrics; m != nil {
		fmt.Fprintf(out, "bullets: fired=%d multiplied=%d evicted=%d overflows=%d\n",
			m.Fired, m.Multiplied, m.Evicted, m.Overflows)
	}
	if stalled, reason := detectStall(rs); stalled {
		fmt.Fprintf(out, "STALL: %s\n", reason)
	}
	if rs.windowSummary != nil {
		fmt.Fprintf(out, "window_samples=%d window_tick_range=%d..%d rows_climbed=%d avg_health=%.1f avg_bullets=%.1f\n",
			rs.windowSummary.SampleCount, rs.windowSummary.FromTick, rs.windowSummary.ToTick,
			rs.windowSummary.RowsClimbed, rs.windowSummary.AvgPlayerHealth, rs.windowSummary.AvgBullets)
	}
	fmt.Fprint(out, game.FormatGrades([]game.RunGrade{rs.grade}))
	fmt.Fprintln(out)
}

// detectStall reports runs that neither finished nor made real progress.
func detectStall(rs runStats) (bool, string) {
	if rs.outcome.Outcome == game.OutcomeStalled {
		return true, "player_not_moving_on_scrolling_row"
	}
	if rs.outcome.Outcome == game.OutcomeInconclusive && rs.outcome.Progress < 0.25 {
		return true, fmt.Sprintf("low_progress=%.0f%%_at_tick_limit", rs.outcome.Progress*100)
	}
	return false, "progressing_or_finished"
}

// outcomeCounts tallies runs by outcome.
func outcomeCounts(all []runStats) map[game.RunOutcome]int {
	counts := make(map[game.RunOutcome]int)
	for _, rs := range all {
		counts[rs.outcome.Outcome]++
	}
	return counts
}

func printAggregate(out io.Writer, all []runStats) {
	totalKills, totalPills, totalUpgrades, totalStreamed := 0, 0, 0, 0
	killTicks := make([]int, 0, len(all))
	endTicks := make([]int, 0, len(all))
	grades := make([]game.RunGrade, 0, len(all))
	stalls := 0
	for _, rs := range all {
		totalKills += rs.kills
		totalPills += rs.pills
		totalUpgrades += rs.upgrades
		totalStreamed += rs.streamed
		if rs.firstKillTick >= 0 {
			killTicks = append(killTicks, rs.firstKillTick)
		}
		endTicks = append(endTicks, rs.endTick)
		grades = append(grades, rs.grade)
		if s, _ := detectStall(rs); s {
			stalls++
		}
	}

	fmt.Fprintln(out, "=== Aggregate ===")
	fmt.Fprintf(out, "runs=%d stalls=%d\n", len(all), stalls)
	counts := outcomeCounts(all)
	fmt.Fprintf(out, "outcomes: victory=%d defeat=%d stalled=%d inconclusive=%d\n",
		counts[game.OutcomeVictory], counts[game.OutcomeDefeat], counts[game.OutcomeStalled], counts[game.OutcomeInconclusive])
	fmt.Fprintf(out, "avg_events_per_run: kills=%.1f pills=%.1f upgrades=%.1f streamed=%.1f\n",
		avg(totalKills, len(all)), avg(totalPills, len(all)), avg(totalUpgrades, len(all)), avg(totalStreamed, len(all)))
	fmt.Fprintf(out, "avg_ticks: first_kill=%s run_length=%s\n", avgTickString(killTicks), avgTickString(endTicks))

	fmt.Fprintln(out, "\n--- Grades (best first) ---")
	game.SortGrades(grades)
	fmt.Fprint(out, game.FormatGradesSummary(grades))
}

func avg(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func avgTickString(ticks []int) string {
	if len(ticks) == 0 {
		return "n/a"
	}
	sum := 0
	for _, t := range ticks {
		sum += t
	}
	return fmt.Sprintf("%.0f", float64(sum)/float64(len(ticks)))
}

func saveRuns(ctx context.Context, path, batch string, all []runStats, log zerolog.Logger) error {
	s, err := store.Open(path, log)
	if err != nil {
		return err
	}
	defer s.Close()

	records := make([]*store.RunRecord, 0, len(all))
	for _, rs := range all {
		rec := store.NewRunRecord(batch, rs.seed, rs.world, rs.grade)
		records = append(records, &rec)
	}
	if err := s.Save(ctx, records...); err != nil {
		return err
	}
	summary, err := s.Summary(ctx, batch)
	if err != nil {
		return err
	}
	for _, row := range summary {
		log.Info().Str("batch", batch).Str("outcome", row.Outcome).
			Int64("runs", row.Runs).Float64("avgScore", row.AvgScore).Msg("stored")
	}
	return nil
}

func exportRuns(ctx context.Context, cfg config.InfluxConfig, batch string, all []runStats, log zerolog.Logger) error {
	m := influx.NewManager(cfg, log)
	if err := m.Connect(ctx); err != nil {
		return err
	}
	start := time.Now()
	for _, rs := range all {
		if err := m.WritePoint(influx.RunPoint(batch, rs.seed, rs.world, rs.grade, start)); err != nil {
			return errors.Join(err, m.Close())
		}
		if err := m.WritePoints(influx.SamplePoints(batch, rs.world.Level.Name, rs.seed, rs.history, start)); err != nil {
			return errors.Join(err, m.Close())
		}
	}
	return m.Close()
}
