package game

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewConsoleLogger builds a human-readable logger at the named level
// ("trace", "debug", "info", "warn", "error"). Unknown names mean info.
func NewConsoleLogger(w io.Writer, level string) zerolog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}).Level(lvl).With().Timestamp().Logger()
}

// tankEvent attaches the usual tank fields to a log event.
func tankEvent(e *zerolog.Event, t *Tank) *zerolog.Event {
	return e.Str("tank", t.Label()).
		Int("id", t.ID).
		Str("type", t.Type.String()).
		Str("state", t.State.String()).
		Float64("x", t.Pos.X).
		Float64("y", t.Pos.Y)
}
