package influx

import (
	"bufio"
	"compress/gzip"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Garsondee/tank-gates/internal/config"
	"github.com/Garsondee/tank-gates/internal/game"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runWorld(t *testing.T, ticks int) (*game.World, *game.SimReporter) {
	t.Helper()
	ts := game.NewTestSim(
		game.WithBlankLevel(20, 1),
		game.WithSimSeed(5),
		game.WithControls(game.HoldFire),
	)
	require.NoError(t, ts.Err())
	rep := game.NewSimReporter(600, false)
	for i := 0; i < ticks; i++ {
		ts.RunTicks(1)
		if ts.World.Tick%game.TicksPerSecond == 0 {
			rep.Collect(ts.World)
		}
	}
	return ts.World, rep
}

func TestRunPoint_TagsAndFields(t *testing.T) {
	w, _ := runWorld(t, 60)
	at := time.Unix(1700000000, 0)
	p := RunPoint("nightly", 5, w, game.RunGrade{Grade: "B", Score: 71}, at)

	assert.Equal(t, MeasurementRun, p.Name())
	assert.Equal(t, at, p.Time())

	tags := map[string]string{}
	for _, tg := range p.TagList() {
		tags[tg.Key] = tg.Value
	}
	assert.Equal(t, "nightly", tags["batch"])
	assert.Equal(t, "blank", tags["level"])
	assert.Equal(t, "5", tags["seed"])
	assert.NotEmpty(t, tags["outcome"])

	fields := map[string]interface{}{}
	for _, f := range p.FieldList() {
		fields[f.Key] = f.Value
	}
	assert.Equal(t, int64(60), fields["ticks"])
	assert.Equal(t, "B", fields["grade"])
	assert.Equal(t, 71.0, fields["score"])
	assert.Equal(t, w.Metrics.Fired, fields["fired"])
}

func TestSamplePoints_OnePerSnapshot(t *testing.T) {
	w, rep := runWorld(t, 180)
	start := time.Unix(0, 0)
	points := SamplePoints("b", w.Level.Name, 5, rep.History(), start)

	require.Len(t, points, 3)
	assert.Equal(t, start.Add(1*time.Second), points[0].Time())
	assert.Equal(t, start.Add(3*time.Second), points[2].Time())
	for _, p := range points {
		assert.Equal(t, MeasurementSample, p.Name())
	}
}

func TestConnect_Disabled(t *testing.T) {
	m := NewManager(config.InfluxConfig{Enabled: false}, zerolog.Nop())
	require.ErrorIs(t, m.Connect(context.Background()), ErrDisabled)
}

func TestWritePoint_NoWriter(t *testing.T) {
	m := NewManager(config.InfluxConfig{}, zerolog.Nop())
	p := influxdb2_write.NewPointWithMeasurement("x").AddField("v", 1)
	require.ErrorIs(t, m.WritePoint(p), ErrNoWriter)
}

func TestBackup_WritesGzipLineProtocol(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.lp.gz")
	m := NewManager(config.InfluxConfig{Enabled: true}, zerolog.Nop())
	require.NoError(t, m.OpenBackup(path))

	w, rep := runWorld(t, 120)
	points := append([]*influxdb2_write.Point{
		RunPoint("b", 5, w, game.RunGrade{Grade: "C"}, time.Unix(10, 0)),
	}, SamplePoints("b", w.Level.Name, 5, rep.History(), time.Unix(0, 0))...)
	require.NoError(t, m.WritePoints(points))
	require.NoError(t, m.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)

	var lines []string
	sc := bufio.NewScanner(zr)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	require.NoError(t, sc.Err())
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "run,"))
	assert.True(t, strings.HasPrefix(lines[1], "run_sample,"))
	assert.Contains(t, lines[0], "grade=\"C\"")
}
