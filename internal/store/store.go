// Package store persists headless run results in a local SQLite database
// through gorm.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ErrNotFound is returned when a lookup matches no run.
var ErrNotFound = errors.New("run not found")

// RunRecord is one finished headless run.
type RunRecord struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time `gorm:"index"`

	Batch       string `gorm:"index;size:64"`
	Level       string `gorm:"size:64"`
	Seed        int64  `gorm:"index"`
	Ticks       int
	Outcome     string `gorm:"index;size:16"`
	Description string `gorm:"size:64"`

	RowReached   int
	Progress     float64
	PlayerHealth float64
	PlayerType   string `gorm:"size:32"`
	EnemiesSeen  int
	Kills        int

	Fired      int64
	Multiplied int64
	Overflows  int64
	Evicted    int64
	Destroyed  int64
	Pills      int64

	Grade string `gorm:"size:4"`
	Score float64
}

// NewRunRecord flattens a finished world and its grade into a record.
func NewRunRecord(batch string, seed int64, w *game.World, grade game.RunGrade) RunRecord {
	out := game.DetermineRunOutcome(w)
	m := w.Metrics
	return RunRecord{
		Batch:        batch,
		Level:        w.Level.Name,
		Seed:         seed,
		Ticks:        w.Tick,
		Outcome:      out.Outcome.String(),
		Description:  out.Description,
		RowReached:   out.RowReached,
		Progress:     out.Progress,
		PlayerHealth: out.PlayerHealth,
		PlayerType:   out.PlayerType.String(),
		EnemiesSeen:  out.EnemiesSeen,
		Kills:        grade.Kills,
		Fired:        m.Fired,
		Multiplied:   m.Multiplied,
		Overflows:    m.Overflows,
		Evicted:      m.Evicted,
		Destroyed:    m.Destroyed,
		Pills:        m.Pills,
		Grade:        grade.Grade,
		Score:        grade.Score,
	}
}

// OutcomeCount is one row of the per-outcome summary.
type OutcomeCount struct {
	Outcome  string
	Runs     int64
	AvgScore float64
}

// Store wraps the gorm handle.
type Store struct {
	DB     *gorm.DB
	Logger zerolog.Logger
}

// Open connects to the SQLite file at path (":memory:" for a private
// in-memory database) and migrates the schema.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %q: %w", path, err)
	}

	pragmas := []string{
		"PRAGMA journal_mode = WAL;",
		"PRAGMA synchronous = NORMAL;",
		"PRAGMA busy_timeout = 5000;",
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("set pragma %q: %w", p, err)
		}
	}

	if path == ":memory:" {
		// Each pooled connection would otherwise open its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&RunRecord{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	log.Info().Str("path", path).Msg("run store ready")
	return &Store{DB: db, Logger: log}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save inserts records in one batch and fills their IDs.
func (s *Store) Save(ctx context.Context, records ...*RunRecord) error {
	if len(records) == 0 {
		return nil
	}
	if err := s.DB.WithContext(ctx).CreateInBatches(records, 200).Error; err != nil {
		return fmt.Errorf("save runs: %w", err)
	}
	s.Logger.Debug().Int("count", len(records)).Msg("runs saved")
	return nil
}

// Get loads a run by ID.
func (s *Store) Get(ctx context.Context, id uint) (RunRecord, error) {
	var r RunRecord
	err := s.DB.WithContext(ctx).First(&r, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return RunRecord{}, fmt.Errorf("run %d: %w", id, ErrNotFound)
	}
	return r, err
}

// Recent returns the newest n runs, newest first.
func (s *Store) Recent(ctx context.Context, n int) ([]RunRecord, error) {
	var out []RunRecord
	err := s.DB.WithContext(ctx).Order("created_at desc, id desc").Limit(n).Find(&out).Error
	return out, err
}

// BySeed returns every stored run for a seed, oldest first.
func (s *Store) BySeed(ctx context.Context, seed int64) ([]RunRecord, error) {
	var out []RunRecord
	err := s.DB.WithContext(ctx).Where("seed = ?", seed).Order("id").Find(&out).Error
	return out, err
}

// Summary counts runs per outcome, optionally limited to one batch.
func (s *Store) Summary(ctx context.Context, batch string) ([]OutcomeCount, error) {
	q := s.DB.WithContext(ctx).Model(&RunRecord{}).
		Select("outcome, count(*) as runs, avg(score) as avg_score").
		Group("outcome").Order("outcome")
	if batch != "" {
		q = q.Where("batch = ?", batch)
	}
	var out []OutcomeCount
	err := q.Scan(&out).Error
	return out, err
}
