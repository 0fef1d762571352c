package game

import (
	"fmt"
	"strings"
)

// debugReport builds the clipboard report for the running window session.
func (g *Game) debugReport(lastTicks int) string {
	var selected *Tank
	if g.inspector.selected != 0 {
		selected = g.world.tankByID(g.inspector.selected)
	}
	return DebugReport(g.world, g.reporter, selected, lastTicks)
}

// DebugReport renders a plain-text picture of the last lastTicks ticks:
// session header, reporter window, the focus tank and the event timeline.
// rep and focus may be nil; a nil focus reports on the player.
func DebugReport(w *World, rep *SimReporter, focus *Tank, lastTicks int) string {
	if lastTicks <= 0 {
		lastTicks = 120
	}
	toTick := w.Tick
	fromTick := max(0, toTick-lastTicks+1)
	if focus == nil {
		focus = w.Player
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- tank-gates debug report ---\n")
	fmt.Fprintf(&b, "level=%s tick_range=[%d..%d] ticks=%d state=%s\n",
		w.Level.Name, fromTick, toTick, toTick-fromTick+1, w.State)
	fmt.Fprintf(&b, "row=%d/%d speed=%.1f streamed=%d enemies_alive=%d bullets=%d gates=%d pills=%d\n\n",
		w.RowCurr, len(w.Level.Rows), w.Level.Speed(w.RowCurr), len(w.streamed),
		w.AliveEnemies(), w.BulletCount(), len(w.Gates), len(w.Pills))

	out := DetermineRunOutcome(w)
	fmt.Fprintf(&b, "outcome=%s (%s) progress=%.0f%%\n\n", out.Outcome, out.Description, out.Progress*100)

	if rep != nil {
		b.WriteString(rep.WindowSummary().Format())
		b.WriteByte('\n')
	}

	fmt.Fprintf(&b, "== focus %s (#%d) ==\n", focus.Label(), focus.ID)
	for _, l := range inspectRaw(focus) {
		b.WriteString("  ")
		b.WriteString(l)
		b.WriteByte('\n')
	}

	events := w.SimLog.FilterTickRange(fromTick, toTick)
	var mine []SimLogEntry
	for _, e := range events {
		if e.Entity == focus.Label() {
			mine = append(mine, e)
		}
	}
	fmt.Fprintf(&b, "focus events: %d\n", len(mine))
	b.WriteString(formatEntries(mine))

	b.WriteString("\n== timeline ==\n")
	if len(events) == 0 {
		b.WriteString("(no events recorded in range)\n")
	} else {
		b.WriteString(formatEntries(events))
	}

	b.WriteString("\n== scheduled ==\n")
	for _, line := range w.Scheduler.Pending() {
		b.WriteString("  ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
