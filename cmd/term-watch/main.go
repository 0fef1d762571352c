// Command term-watch plays a level under the autopilot in the terminal.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/Garsondee/tank-gates/internal/config"
	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/Garsondee/tank-gates/internal/termview"
	"github.com/gdamore/tcell/v2"
	"github.com/rs/zerolog"
)

func main() {
	configDir := flag.String("config", ".", "directory holding tank-gates.{yaml,json,toml}")
	levelName := flag.String("level", "", "embedded level name (empty = config level)")
	seed := flag.Int64("seed", 0, "first world seed (0 = config sim.seed)")
	loop := flag.Bool("loop", true, "restart with the next seed after each win or loss")
	flag.Parse()

	s, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	if *levelName == "" {
		*levelName = s.Level
	}
	if *seed == 0 {
		*seed = s.Sim.Seed
	}
	// The terminal belongs to tcell; logs only surface at error level.
	log := game.NewConsoleLogger(os.Stderr, zerolog.LevelErrorValue)

	level, err := game.LoadLevel(*levelName)
	if err != nil {
		log.Fatal().Err(err).Str("level", *levelName).Msg("level load failed")
	}

	next := *seed
	build := func() (*game.World, error) {
		w, err := game.NewWorld(level,
			game.WithTuning(s.Tuning),
			game.WithSeed(next),
			game.WithLogger(log),
			game.WithInput(game.NewAutopilot()),
		)
		next++
		return w, err
	}
	w, err := build()
	if err != nil {
		log.Fatal().Err(err).Msg("world setup failed")
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatal().Err(err).Msg("terminal unavailable")
	}
	if err := screen.Init(); err != nil {
		log.Fatal().Err(err).Msg("terminal init failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	r := &termview.Runner{View: termview.New(screen, w)}
	if *loop {
		r.Restart = build
	}
	err = r.Run(ctx)
	stop()
	screen.Fini()
	if err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
