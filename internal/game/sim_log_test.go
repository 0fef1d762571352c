package game

import (
	"strings"
	"testing"
)

func sampleLog() *SimLog {
	sl := NewSimLog(false)
	sl.Add(1, "--", "--", "session", "state", "init → playing", 0)
	sl.Add(5, "E0", "enemy", "stream", "spawn", "box-single", 50)
	sl.Add(9, "E0", "enemy", "state", "dead", "alive → dead at (1.0,2.0)", 20)
	sl.Add(12, "P", "player", "pill", "time", "type=circle", 50)
	return sl
}

func TestSimLog_VerboseGate(t *testing.T) {
	quiet := NewSimLog(false)
	quiet.AddVerbose(1, "P", "player", "combat", "hit", "x", 0)
	if quiet.Len() != 0 {
		t.Fatal("verbose entries must be dropped when quiet")
	}
	loud := NewSimLog(true)
	loud.AddVerbose(1, "P", "player", "combat", "hit", "x", 0)
	if loud.Len() != 1 {
		t.Fatal("verbose entries must be kept when verbose")
	}
}

func TestSimLog_Filters(t *testing.T) {
	sl := sampleLog()
	if n := len(sl.Filter("state", "")); n != 1 {
		t.Fatalf("Filter(state) = %d, want 1", n)
	}
	if n := len(sl.FilterEntity("E0")); n != 2 {
		t.Fatalf("FilterEntity(E0) = %d, want 2", n)
	}
	if n := len(sl.FilterTickRange(5, 9)); n != 2 {
		t.Fatalf("FilterTickRange(5,9) = %d, want 2", n)
	}
	if sl.CountCategory("pill", "time") != 1 {
		t.Fatal("expected one time pill")
	}
	if n := len(sl.Since(3)); n != 1 || sl.Since(10) != nil {
		t.Fatalf("Since misbehaved: %d", n)
	}
}

func TestSimLog_LastOfAndHasEntry(t *testing.T) {
	sl := sampleLog()
	e, ok := sl.LastOf("state", "dead")
	if !ok || e.Tick != 9 {
		t.Fatalf("LastOf(state,dead) = %+v %v", e, ok)
	}
	if _, ok := sl.LastOf("upgrade", "tier"); ok {
		t.Fatal("LastOf on a missing key should report false")
	}
	if !sl.HasEntry("state", "dead", "alive") || sl.HasEntry("state", "dead", "streamed") {
		t.Fatal("HasEntry substring match failed")
	}
}

func TestSimLog_FormatLines(t *testing.T) {
	sl := sampleLog()
	out := sl.Format()
	if lines := strings.Count(out, "\n"); lines != 4 {
		t.Fatalf("expected 4 lines, got %d", lines)
	}
	if !strings.HasPrefix(out, "[T=001] --") {
		t.Fatalf("unexpected first line: %q", strings.SplitN(out, "\n", 2)[0])
	}
	if got := sl.FormatRange(12, 12); !strings.Contains(got, "pill") || strings.Count(got, "\n") != 1 {
		t.Fatalf("unexpected range: %q", got)
	}
}

func TestSimLog_SummaryOfWorld(t *testing.T) {
	ts := openField(WithEnemy(TankBoxDouble, MoveStationary, 300, 5500))
	out := ts.SimLog.Summary(ts.World)
	if !strings.Contains(out, "Summary at T=000") || !strings.Contains(out, "Player:") {
		t.Fatalf("unexpected summary:\n%s", out)
	}
}
