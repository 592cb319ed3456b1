package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stfu/config"
	"github.com/milk9111/stfu/replay"
	"github.com/milk9111/stfu/sim"
)

const appName = "stfu"

type report struct {
	Replay   uuid.UUID            `yaml:"replay"`
	Level    string               `yaml:"level"`
	Frames   int                  `yaml:"frames"`
	Duration float64              `yaml:"duration"`
	Players  []sim.CharacterState `yaml:"players"`
}

func main() {
	configPath := flag.String("config", "", "tuning overrides (yaml)")
	file := flag.String("file", "", "replay file to run")
	id := flag.String("id", "", "id of a stored replay to run")
	latest := flag.Bool("latest", false, "run the most recently stored replay")
	demo := flag.Int("demo", 0, "run a scripted replay of this many frames instead")
	save := flag.Bool("save", false, "store the replay before running it")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	r, err := loadReplay(cfg, *file, *id, *latest, *demo)
	if err != nil {
		log.Fatal(err)
	}
	if *save {
		store, err := replay.OpenStore(appName)
		if err != nil {
			log.Fatal(err)
		}
		if err := store.Save(r); err != nil {
			log.Fatal(err)
		}
		log.Printf("replay: saved %s", r.ID)
	}

	cfg.Simulation.Players = r.Players
	s, err := sim.Load(cfg, r.Level)
	if err != nil {
		log.Fatal(err)
	}
	defer s.Close()

	if err := replay.Run(s, r); err != nil {
		log.Fatal(err)
	}

	out, err := yaml.Marshal(report{
		Replay:   r.ID,
		Level:    r.Level,
		Frames:   len(r.Frames),
		Duration: r.Duration(),
		Players:  s.Snapshot(),
	})
	if err != nil {
		log.Fatal(err)
	}
	fmt.Print(string(out))
}

func loadReplay(cfg config.Config, file, id string, latest bool, demo int) (*replay.Replay, error) {
	switch {
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		return replay.Decode(data)
	case id != "" || latest:
		store, err := replay.OpenStore(appName)
		if err != nil {
			return nil, err
		}
		if latest {
			return store.Latest()
		}
		parsed, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("replay: bad id %q: %w", id, err)
		}
		return store.Load(parsed)
	case demo > 0:
		return demoReplay(cfg, demo), nil
	}
	return nil, fmt.Errorf("replay: one of -file, -id, -latest or -demo is required")
}

// demoReplay settles, runs right, jumps, fires and dashes on a fixed
// schedule.
func demoReplay(cfg config.Config, frames int) *replay.Replay {
	dt := 1.0 / 60
	rec := replay.NewRecorder(cfg.Simulation.Level, cfg.Simulation.Players)
	intents := make([]sim.Intent, cfg.Simulation.Players)
	for i := 0; i < frames; i++ {
		var in sim.Intent
		switch {
		case i < 60:
		case i < 120:
			in.MoveX = 1
		case i < 135:
			in.MoveX = 1
			in.Jump = true
		case i < 140:
			in.Shoot = true
		case i < 180:
			in.MoveX = -1
		case i < 190:
			in.MoveX = -1
			in.Dash = true
		}
		for p := range intents {
			intents[p] = in
		}
		rec.Record(dt, intents)
	}
	return rec.Replay()
}
