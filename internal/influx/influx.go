// Package influx exports headless run metrics to InfluxDB, falling back to
// a gzip line-protocol backup file when the server cannot be reached.
package influx

import (
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Garsondee/tank-gates/internal/config"
	"github.com/Garsondee/tank-gates/internal/game"
	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	influxdb2_api "github.com/influxdata/influxdb-client-go/v2/api"
	influxdb2_write "github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/rs/zerolog"
)

// Measurement names.
const (
	MeasurementRun    = "run"
	MeasurementSample = "run_sample"
)

// ErrDisabled is returned by Connect when export is switched off.
var ErrDisabled = errors.New("influx export disabled")

// ErrNoWriter is returned when neither the server nor a backup is open.
var ErrNoWriter = errors.New("influx writer not initialized")

// Manager owns the client, the bucket writer and the backup file.
type Manager struct {
	Config       config.InfluxConfig
	Client       influxdb2.Client
	Writer       influxdb2_api.WriteAPI
	BackupWriter *gzip.Writer
	IsValid      bool
	Logger       zerolog.Logger

	backupFile *os.File
}

// NewManager creates an unconnected manager.
func NewManager(cfg config.InfluxConfig, log zerolog.Logger) *Manager {
	return &Manager{Config: cfg, Logger: log}
}

// Connect pings the server. On failure it opens the backup file instead
// and still returns nil so runs are never lost.
func (m *Manager) Connect(ctx context.Context) error {
	if !m.Config.Enabled {
		return ErrDisabled
	}

	m.Client = influxdb2.NewClientWithOptions(m.Config.URL(), m.Config.Token,
		influxdb2.DefaultOptions().
			SetBatchSize(500).
			SetFlushInterval(1000))

	running, err := m.Client.Ping(ctx)
	if err != nil || !running {
		m.Logger.Warn().Err(err).Str("backupPath", m.Config.BackupPath).
			Msg("InfluxDB unreachable, writing to backup file")
		m.Client.Close()
		m.Client = nil
		return m.OpenBackup(m.Config.BackupPath)
	}

	m.IsValid = true
	m.Writer = m.Client.WriteAPI(m.Config.Org, m.Config.Bucket)
	go func(errorsCh <-chan error) {
		for writeErr := range errorsCh {
			m.Logger.Error().Err(writeErr).Str("bucket", m.Config.Bucket).
				Msg("Error sending data to InfluxDB")
		}
	}(m.Writer.Errors())
	m.Logger.Info().Str("url", m.Config.URL()).Msg("InfluxDB client initialized")
	return nil
}

// OpenBackup appends gzip line protocol to path.
func (m *Manager) OpenBackup(path string) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("error creating backup file: %w", err)
	}
	m.backupFile = file
	m.BackupWriter = gzip.NewWriter(file)
	return nil
}

// WritePoint sends p to the server or the backup file.
func (m *Manager) WritePoint(p *influxdb2_write.Point) error {
	if m.IsValid {
		m.Writer.WritePoint(p)
		return nil
	}
	if m.BackupWriter == nil {
		return ErrNoWriter
	}
	line := influxdb2_write.PointToLineProtocol(p, time.Nanosecond)
	if _, err := m.BackupWriter.Write([]byte(line + "\n")); err != nil {
		return fmt.Errorf("error writing to InfluxDB backup file: %w", err)
	}
	return nil
}

// WritePoints writes each point, stopping at the first error.
func (m *Manager) WritePoints(points []*influxdb2_write.Point) error {
	for _, p := range points {
		if err := m.WritePoint(p); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes pending writes and releases the client or backup file.
func (m *Manager) Close() error {
	if m.Writer != nil {
		m.Writer.Flush()
	}
	if m.Client != nil {
		m.Client.Close()
	}
	var errs []error
	if m.BackupWriter != nil {
		errs = append(errs, m.BackupWriter.Close())
	}
	if m.backupFile != nil {
		errs = append(errs, m.backupFile.Close())
	}
	return errors.Join(errs...)
}

func runTags(batch, level string, seed int64) map[string]string {
	return map[string]string{
		"batch": batch,
		"level": level,
		"seed":  strconv.FormatInt(seed, 10),
	}
}

// RunPoint summarises one finished run.
func RunPoint(batch string, seed int64, w *game.World, grade game.RunGrade, at time.Time) *influxdb2_write.Point {
	out := game.DetermineRunOutcome(w)
	tags := runTags(batch, w.Level.Name, seed)
	tags["outcome"] = out.Outcome.String()
	m := w.Metrics
	return influxdb2_write.NewPoint(MeasurementRun, tags, map[string]interface{}{
		"ticks":         w.Tick,
		"row_reached":   out.RowReached,
		"progress":      out.Progress,
		"player_health": out.PlayerHealth,
		"player_type":   out.PlayerType.String(),
		"enemies_seen":  out.EnemiesSeen,
		"fired":         m.Fired,
		"multiplied":    m.Multiplied,
		"overflows":     m.Overflows,
		"evicted":       m.Evicted,
		"destroyed":     m.Destroyed,
		"pills":         m.Pills,
		"score":         grade.Score,
		"grade":         grade.Grade,
	}, at)
}

// SamplePoints turns periodic reporter snapshots into a time series. Sample
// timestamps are start plus the simulated time of each tick.
func SamplePoints(batch, level string, seed int64, history []game.SimReport, start time.Time) []*influxdb2_write.Point {
	points := make([]*influxdb2_write.Point, 0, len(history))
	for _, r := range history {
		at := start.Add(time.Duration(r.Tick) * time.Second / game.TicksPerSecond)
		points = append(points, influxdb2_write.NewPoint(MeasurementSample, runTags(batch, level, seed),
			map[string]interface{}{
				"tick":           r.Tick,
				"row":            r.Row,
				"speed":          r.Speed,
				"player_health":  r.PlayerHealth,
				"player_fire":    r.PlayerFire,
				"player_bullets": r.PlayerBullets,
				"enemies_alive":  r.EnemiesAlive,
				"enemy_bullets":  r.EnemyBullets,
				"fired":          r.Fired,
				"multiplied":     r.Multiplied,
			}, at))
	}
	return points
}
