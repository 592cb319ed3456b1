package prefabs

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

func TestEmbeddedCharacterSpecs(t *testing.T) {
	cases := []struct {
		name   string
		kind   string
		script string
	}{
		{"player", KindPlayer, ""},
		{"walker", KindWalker, "walker.tengo"},
		{"bat", KindFlyer, "bat.tengo"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			spec, err := LoadCharacterSpec(c.name)
			if err != nil {
				t.Fatalf("load: %v", err)
			}
			if spec.Kind != c.kind || spec.Script != c.script {
				t.Fatalf("unexpected spec %+v", spec)
			}
			if spec.Width > spec.Height {
				t.Fatalf("%s: width %v exceeds height %v", c.name, spec.Width, spec.Height)
			}
			if c.script != "" {
				if _, err := LoadScript(c.script); err != nil {
					t.Fatalf("script %s: %v", c.script, err)
				}
			}
		})
	}
}

func TestCharacterSpecValidate(t *testing.T) {
	base := CharacterSpec{Name: "x", Kind: KindPlayer, Width: 1, Height: 2, Density: 1, Health: HealthSpec{Hitpoints: 1}}
	cases := []struct {
		name   string
		mutate func(s *CharacterSpec)
		ok     bool
	}{
		{"valid", func(*CharacterSpec) {}, true},
		{"unknown_kind", func(s *CharacterSpec) { s.Kind = "boss" }, false},
		{"zero_width", func(s *CharacterSpec) { s.Width = 0 }, false},
		{"default_density", func(s *CharacterSpec) { s.Density = 0 }, true},
		{"negative_density", func(s *CharacterSpec) { s.Density = -1 }, false},
		{"no_hitpoints", func(s *CharacterSpec) { s.Health.Hitpoints = 0 }, false},
		{"enemy_without_script", func(s *CharacterSpec) { s.Kind = KindWalker }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := base
			c.mutate(&s)
			err := s.Validate()
			if c.ok && err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if !c.ok && !errors.Is(err, ErrInvalidSpec) {
				t.Fatalf("expected ErrInvalidSpec, got %v", err)
			}
		})
	}
}

func TestYAMLColor(t *testing.T) {
	cases := []struct {
		in   string
		want color.NRGBA
		err  bool
	}{
		{`"#102030"`, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0xff}, false},
		{`"10203040"`, color.NRGBA{R: 0x10, G: 0x20, B: 0x30, A: 0x40}, false},
		{`"#123"`, color.NRGBA{}, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			var got YAMLColor
			err := yaml.Unmarshal([]byte(c.in), &got)
			if c.err {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got.Color != c.want {
				t.Fatalf("expected %v, got %v", c.want, got.Color)
			}
		})
	}
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	t.Cleanup(func() { Dir = old })

	if err := os.MkdirAll(filepath.Join(dir, "scripts"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "scripts", "walker.tengo"), []byte("update := func(e, s) {}"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := LoadScript("prefabs/scripts/walker.tengo")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "update := func(e, s) {}" {
		t.Fatalf("expected disk copy, got %q", got)
	}
	if _, ok := ModTime("player.yaml"); ok {
		t.Fatalf("player.yaml has no disk copy")
	}
}

func TestWatcherReportsScriptEdits(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "bat.tengo")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-w.Changes:
		if c.Path != path || !c.Script {
			t.Fatalf("unexpected change %+v", c)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change reported")
	}
}

func TestClassifyAndDebounce(t *testing.T) {
	cases := []struct {
		name   string
		event  fsnotify.Event
		ok     bool
		script bool
	}{
		{"spec_write", fsnotify.Event{Name: "walker.yaml", Op: fsnotify.Write}, true, false},
		{"yml_create", fsnotify.Event{Name: "bat.YML", Op: fsnotify.Create}, true, false},
		{"script_rename", fsnotify.Event{Name: "scripts/bat.tengo", Op: fsnotify.Rename}, true, true},
		{"removed", fsnotify.Event{Name: "walker.yaml", Op: fsnotify.Remove}, false, false},
		{"chmod", fsnotify.Event{Name: "walker.yaml", Op: fsnotify.Chmod}, false, false},
		{"other_file", fsnotify.Event{Name: "notes.txt", Op: fsnotify.Write}, false, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := classify(c.event)
			if ok != c.ok || got.Script != c.script {
				t.Fatalf("classify(%v) = %+v, %v", c.event, got, ok)
			}
		})
	}

	seen := map[string]time.Time{}
	now := time.Now()
	if recent(seen, "a.yaml", now) {
		t.Fatalf("first event should pass")
	}
	if !recent(seen, "a.yaml", now.Add(reloadDebounce/2)) {
		t.Fatalf("event inside the window should be dropped")
	}
	if recent(seen, "a.yaml", now.Add(2*reloadDebounce)) {
		t.Fatalf("event after the window should pass")
	}
}
