package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/stfu/locomotion"
	"github.com/milk9111/stfu/physics"
)

func TestDefaultsMatchShippedTuning(t *testing.T) {
	cfg := Default()
	if got, want := cfg.PhysicsSettings(), physics.DefaultSettings(); got != want {
		t.Fatalf("physics settings %+v, want %+v", got, want)
	}
	if got, want := cfg.CharacterTuning(), physics.DefaultCharacterTuning(); got != want {
		t.Fatalf("character tuning %+v, want %+v", got, want)
	}
	if got, want := cfg.PlayerTuning(), locomotion.DefaultPlayerTuning(); got != want {
		t.Fatalf("player tuning %+v, want %+v", got, want)
	}
	if got, want := cfg.EnemyTuning(), locomotion.DefaultEnemyTuning(); got != want {
		t.Fatalf("enemy tuning %+v, want %+v", got, want)
	}
}

func TestFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "override.yaml")
	data := []byte("physics:\n  gravity: 10\nsimulation:\n  players: 2\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("STFU_CHARACTER_JUMP_SPEED", "7.5")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cases := []struct {
		name string
		got  float64
		want float64
	}{
		{"file_gravity", cfg.Physics.Gravity, 10},
		{"file_players", float64(cfg.Simulation.Players), 2},
		{"env_jump_speed", cfg.Character.JumpSpeed, 7.5},
		{"default_kept", cfg.Character.RunSpeed, 35},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.got != c.want {
				t.Fatalf("got %v, want %v", c.got, c.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero_physics_step", func(c *Config) { c.Physics.FixedStep = 0 }},
		{"no_substeps", func(c *Config) { c.Simulation.MaxSteps = 0 }},
		{"too_many_players", func(c *Config) { c.Simulation.Players = physics.MaxPlayers + 1 }},
		{"zero_density", func(c *Config) { c.Character.Density = 0 }},
		{"negative_bullets", func(c *Config) { c.Weapon.MaxBullets = -1 }},
		{"zero_bullet_range", func(c *Config) { c.Weapon.BulletRange = 0 }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg := Default()
			c.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
