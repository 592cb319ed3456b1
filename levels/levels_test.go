package levels

import (
	"errors"
	"testing"
)

func TestEmbeddedTestLevel(t *testing.T) {
	lvl, err := LoadLevelFromFS("test.toml")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if lvl.Width != 1600 || lvl.Height != 896 {
		t.Fatalf("unexpected size %vx%v", lvl.Width, lvl.Height)
	}
	if len(lvl.Spawns) != 4 {
		t.Fatalf("expected 4 spawns, got %d", len(lvl.Spawns))
	}
	kinds := map[string]int{}
	for _, b := range lvl.Boxes {
		kinds[b.Kind]++
	}
	if kinds[KindGround] == 0 || kinds[KindPlatform] == 0 || kinds[KindDeath] == 0 {
		t.Fatalf("expected every box kind, got %v", kinds)
	}
	if len(lvl.Platforms) != 3 || len(lvl.Enemies) != 2 || len(lvl.Checkpoints) != 1 {
		t.Fatalf("unexpected platforms %d enemies %d checkpoints %d", len(lvl.Platforms), len(lvl.Enemies), len(lvl.Checkpoints))
	}
	platformKinds := map[string]int{}
	for _, p := range lvl.Platforms {
		platformKinds[p.Kind]++
	}
	if platformKinds[""] != 1 || platformKinds[PlatformCircular] != 1 || platformKinds[PlatformFalling] != 1 {
		t.Fatalf("expected one platform of each kind, got %v", platformKinds)
	}
	if c := lvl.Checkpoints[0].Center(); c.X != 976 || c.Y != 768 {
		t.Fatalf("unexpected checkpoint center %+v", c)
	}
	if lvl.Platforms[0].To.X != 864 {
		t.Fatalf("inline table not decoded: %+v", lvl.Platforms[0])
	}
}

func TestParseRejects(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no_spawn", "width = 10\nheight = 10\n"},
		{"bad_kind", "width = 10\nheight = 10\n[[spawn]]\nx = 1\ny = 1\n[[box]]\nx = 0\ny = 0\nw = 1\nh = 1\nkind = \"lava\"\n"},
		{"empty_box", "width = 10\nheight = 10\n[[spawn]]\nx = 1\ny = 1\n[[box]]\nx = 0\ny = 0\nw = 0\nh = 1\nkind = \"ground\"\n"},
		{"unknown_key", "width = 10\nheight = 10\ngravity = 3\n[[spawn]]\nx = 1\ny = 1\n"},
		{"platform_kind", "width = 10\nheight = 10\n[[spawn]]\nx = 1\ny = 1\n[[platform]]\nkind = \"spring\"\nw = 1\nh = 1\n"},
		{"still_platform", "width = 10\nheight = 10\n[[spawn]]\nx = 1\ny = 1\n[[platform]]\nw = 1\nh = 1\nspeed = 1\n"},
		{"empty_checkpoint", "width = 10\nheight = 10\n[[spawn]]\nx = 1\ny = 1\n[[checkpoint]]\nx = 1\ny = 1\nw = 0\nh = 2\n"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Parse([]byte(c.src)); !errors.Is(err, ErrInvalidLevel) {
				t.Fatalf("expected ErrInvalidLevel, got %v", err)
			}
		})
	}
}

func TestFallingDelaysDefault(t *testing.T) {
	fall, reset := Platform{Kind: PlatformFalling}.Delays()
	if fall != DefaultFallDelay || reset != DefaultResetDelay {
		t.Fatalf("got %v/%v", fall, reset)
	}
	fall, reset = Platform{Kind: PlatformFalling, FallDelay: 1, ResetDelay: 2}.Delays()
	if fall != 1 || reset != 2 {
		t.Fatalf("explicit delays lost: %v/%v", fall, reset)
	}
}

func TestSpawnWraps(t *testing.T) {
	lvl := &Level{Spawns: []Point{{X: 1}, {X: 2}}}
	cases := []struct {
		index int
		want  float64
	}{
		{0, 1}, {1, 1}, {2, 2}, {3, 1}, {4, 2},
	}
	for _, c := range cases {
		if got := lvl.Spawn(c.index).X; got != c.want {
			t.Fatalf("spawn %d: got %v, want %v", c.index, got, c.want)
		}
	}
}
