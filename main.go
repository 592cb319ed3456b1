package main

import (
	"errors"
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"github.com/milk9111/stfu/config"
	"github.com/milk9111/stfu/replay"
)

func main() {
	configPath := flag.String("config", "", "tuning overrides (yaml)")
	levelName := flag.String("level", "", "level file in levels/ (defaults to the configured level)")
	players := flag.Int("players", 0, "number of players (overrides config)")
	record := flag.Bool("record", false, "record a replay that can be saved from the pause menu")
	debug := flag.Bool("debug", false, "draw physics shapes")
	watch := flag.Bool("watch", true, "hot reload prefabs and scripts from prefabs/")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}
	if *players > 0 {
		cfg.Simulation.Players = *players
		if err := cfg.Validate(); err != nil {
			log.Fatal(err)
		}
	}
	level := *levelName
	if level == "" {
		level = cfg.Simulation.Level
	}

	opts := Options{Config: cfg, Level: level, Record: *record, Debug: *debug, Watch: *watch}
	if *record {
		if store, err := replay.OpenStore("stfu"); err != nil {
			log.Printf("replay: saving disabled: %v", err)
		} else {
			opts.Store = store
		}
		if err := clipboard.Init(); err != nil {
			log.Printf("clipboard: %v", err)
		} else {
			opts.Clipboard = true
		}
	}

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("stfu")

	game, err := NewGame(opts)
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
