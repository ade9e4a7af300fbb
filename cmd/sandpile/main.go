//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"sandpile/internal/app"
	"sandpile/internal/config"
	"sandpile/internal/control"
	"sandpile/internal/entropy"
	"sandpile/internal/logging"
	"sandpile/internal/render"
	"sandpile/internal/stats"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	flags := app.NewFlags()
	flags.Bind(flag.CommandLine)
	flag.Parse()

	cfg, err := config.Load(flags.Config)
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.NewLogger(cfg.LogLevel, os.Stderr)

	regs, err := cfg.Registers()
	if err != nil {
		log.Fatal(err)
	}
	regs.Start = true
	opts := control.Options{
		Machine:   cfg.Machine(),
		Registers: &regs,
		Sensor:    entropy.NewNoise(flags.Seed),
		Logger:    logger,
	}
	if cfg.StatsDB != "" {
		store, err := stats.Open(cfg.StatsDB)
		if err != nil {
			log.Fatal(err)
		}
		defer store.Close()
		opts.Recorder = store
		logger.Info("recording avalanches", "db", cfg.StatsDB, "run", store.Run())
	}
	driver, err := control.NewDriver(opts)
	if err != nil {
		log.Fatal(err)
	}

	game := app.New(driver, flags, logger)

	ebiten.SetWindowTitle("sandpile")
	ebiten.SetTPS(flags.TPS)
	ebiten.SetWindowSize(render.GridSide+flags.HUDWidth, render.GridSide)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
