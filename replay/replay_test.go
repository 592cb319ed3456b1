package replay

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/milk9111/stfu/config"
	"github.com/milk9111/stfu/sim"
)

const frameDt = 1.0 / 60

func TestRecorderPadsAndDrops(t *testing.T) {
	rec := NewRecorder("test.toml", 2)
	rec.Record(frameDt, nil)
	rec.Record(frameDt, []sim.Intent{{MoveX: 1}, {Jump: true}, {Dash: true}})

	r := rec.Replay()
	if r.ID == uuid.Nil {
		t.Fatalf("recorder should assign an id")
	}
	if rec.Len() != 2 || len(r.Frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(r.Frames))
	}
	for i, f := range r.Frames {
		if len(f.Intents) != 2 {
			t.Fatalf("frame %d: expected 2 intents, got %d", i, len(f.Intents))
		}
	}
	if r.Frames[1].Intents[1] != (sim.Intent{Jump: true}) {
		t.Fatalf("unexpected intent %+v", r.Frames[1].Intents[1])
	}

	rec.Record(frameDt, nil)
	if len(r.Frames) != 2 {
		t.Fatalf("returned replay should not see later frames")
	}
	if d := rec.Replay().Duration(); d < 3*frameDt-1e-9 || d > 3*frameDt+1e-9 {
		t.Fatalf("unexpected duration %v", d)
	}
}

func TestEncodeDecode(t *testing.T) {
	rec := NewRecorder("test.toml", 1)
	rec.Record(frameDt, []sim.Intent{{MoveX: -1, Jump: true}})
	rec.Record(0.02, []sim.Intent{{Dash: true}})
	want := rec.Replay()

	data, err := Encode(want)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v\n%s", err, data)
	}
	if got.ID != want.ID || got.Level != want.Level || got.Players != want.Players {
		t.Fatalf("header mismatch: got %+v want %+v", got, want)
	}
	if len(got.Frames) != 2 || got.Frames[1].Dt != 0.02 || got.Frames[0].Intents[0] != want.Frames[0].Intents[0] {
		t.Fatalf("frames mismatch: %+v", got.Frames)
	}
}

func TestValidate(t *testing.T) {
	id := uuid.New()
	cases := []struct {
		name string
		r    *Replay
		ok   bool
	}{
		{"ok", &Replay{ID: id, Level: "a", Players: 1}, true},
		{"nil", nil, false},
		{"no_id", &Replay{Level: "a", Players: 1}, false},
		{"no_level", &Replay{ID: id, Players: 1}, false},
		{"no_players", &Replay{ID: id, Level: "a"}, false},
		{"too_many_players", &Replay{ID: id, Level: "a", Players: 5}, false},
		{"negative_dt", &Replay{ID: id, Level: "a", Players: 1, Frames: []Frame{{Dt: -1}}}, false},
		{"extra_intents", &Replay{ID: id, Level: "a", Players: 1, Frames: []Frame{{Dt: frameDt, Intents: make([]sim.Intent, 2)}}}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.r.Validate()
			if c.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidReplay) {
				t.Fatalf("expected ErrInvalidReplay, got %v", err)
			}
		})
	}
	if _, err := Decode([]byte("frames: [")); !errors.Is(err, ErrInvalidReplay) {
		t.Fatalf("expected ErrInvalidReplay for bad yaml, got %v", err)
	}
}

func TestRun(t *testing.T) {
	cfg := config.Default()
	s, err := sim.Load(cfg, cfg.Simulation.Level)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer s.Close()

	rec := NewRecorder(cfg.Simulation.Level, 1)
	for i := 0; i < 60; i++ {
		rec.Record(frameDt, nil)
	}
	for i := 0; i < 30; i++ {
		rec.Record(frameDt, []sim.Intent{{MoveX: 1}})
	}
	if err := Run(s, rec.Replay()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if s.Frame() != 90 {
		t.Fatalf("expected 90 frames, got %d", s.Frame())
	}

	two := NewRecorder(cfg.Simulation.Level, 2)
	two.Record(frameDt, []sim.Intent{{}, {MoveX: 1}})
	if err := Run(s, two.Replay()); !errors.Is(err, sim.ErrNoPlayer) {
		t.Fatalf("expected ErrNoPlayer for a missing player, got %v", err)
	}
}

func TestStore(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("XDG_DATA_HOME", dir)

	store, err := OpenStore("stfu_replay_test")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := store.Latest(); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on an empty store, got %v", err)
	}

	first := NewRecorder("test.toml", 1)
	first.Record(frameDt, []sim.Intent{{MoveX: 1}})
	second := NewRecorder("test.toml", 1)
	second.Record(frameDt, []sim.Intent{{Jump: true}})

	for _, r := range []*Replay{first.Replay(), second.Replay(), first.Replay()} {
		if err := store.Save(r); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	ids, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != first.Replay().ID || ids[1] != second.Replay().ID {
		t.Fatalf("unexpected index %v", ids)
	}

	latest, err := store.Latest()
	if err != nil {
		t.Fatal(err)
	}
	if latest.ID != second.Replay().ID || !latest.Frames[0].Intents[0].Jump {
		t.Fatalf("unexpected latest replay %+v", latest)
	}
	if _, err := store.Load(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
