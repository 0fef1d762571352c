package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Garsondee/tank-gates/internal/audio"
	"github.com/Garsondee/tank-gates/internal/config"
	"github.com/Garsondee/tank-gates/internal/game"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	configDir := flag.String("config", ".", "directory holding tank-gates.{yaml,json,toml}")
	seed := flag.Int64("seed", 0, "world RNG seed (0 = config sim.seed, then time-based)")
	levelName := flag.String("level", "", "embedded level name (empty = config level)")
	soundTest := flag.Bool("sound-test", false, "open the gate sound test sandbox")
	flag.Parse()

	s, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	log := game.NewConsoleLogger(os.Stderr, s.LogLevel)

	scheme, err := game.ParseControlScheme(s.Controls)
	if err != nil {
		log.Fatal().Err(err).Msg("bad controls setting")
	}
	if *levelName == "" {
		*levelName = s.Level
	}
	if *seed == 0 {
		*seed = s.Sim.Seed
	}

	var level *game.Level
	if !*soundTest {
		level, err = game.LoadLevel(*levelName)
		if err != nil {
			log.Fatal().Err(err).Str("level", *levelName).Msg("level load failed")
		}
	}

	metrics, err := game.NewMetrics(nil)
	if err != nil {
		log.Fatal().Err(err).Msg("metrics setup failed")
	}

	opts := game.Options{
		Level:     level,
		Tuning:    s.Tuning,
		Seed:      *seed,
		Scheme:    scheme,
		Logger:    log,
		Metrics:   metrics,
		SoundTest: *soundTest,
	}
	if s.Audio.Enabled {
		player := audio.NewPlayer(s.Audio.SampleRate, s.Audio.Volume, log)
		if err := player.Init(); err != nil {
			log.Warn().Err(err).Msg("audio disabled")
		} else {
			defer player.Close()
			opts.Audio = player
		}
	}

	g, err := game.New(opts)
	if err != nil {
		log.Fatal().Err(err).Msg("game setup failed")
	}
	ebiten.SetWindowTitle("Tank Gates")
	ebiten.SetWindowSize(g.Size())
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal().Err(err).Msg("game exited")
	}
}
