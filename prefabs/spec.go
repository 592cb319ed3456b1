package prefabs

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var ErrInvalidSpec = errors.New("prefabs: invalid spec")

func LoadSpec[T any](filename string) (T, error) {
	var spec T
	raw, err := Load(filename)
	if err == nil {
		err = yaml.Unmarshal(raw, &spec)
	}
	if err != nil {
		var zero T
		return zero, fmt.Errorf("prefabs: %s: %w", filename, err)
	}
	return spec, nil
}

// Kind values for CharacterSpec.
const (
	KindPlayer = "player"
	KindWalker = "walker"
	KindFlyer  = "flyer"
)

// CharacterSpec describes one character archetype. Sizes are in pixels.
type CharacterSpec struct {
	Name   string  `yaml:"name"`
	Kind   string  `yaml:"kind"`
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
	// Density falls back to the configured default when zero.
	Density float64    `yaml:"density"`
	Color   YAMLColor  `yaml:"color"`
	Health  HealthSpec `yaml:"health"`
	Script  string     `yaml:"script"`
	// RunSpeed overrides the configured wheel speed for this archetype.
	RunSpeed *float64 `yaml:"run_speed"`
}

type HealthSpec struct {
	Hitpoints     int     `yaml:"hitpoints"`
	HitDelay      float64 `yaml:"hit_delay"`
	RecoveryDelay float64 `yaml:"recovery_delay"`
	RespawnDelay  float64 `yaml:"respawn_delay"`
}

// LoadCharacterSpec loads and validates <name>.yaml.
func LoadCharacterSpec(name string) (*CharacterSpec, error) {
	if !strings.HasSuffix(name, ".yaml") {
		name += ".yaml"
	}
	spec, err := LoadSpec[CharacterSpec](name)
	if err != nil {
		return nil, err
	}
	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return &spec, nil
}

func (s CharacterSpec) Validate() error {
	switch s.Kind {
	case KindPlayer, KindWalker, KindFlyer:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSpec, s.Kind)
	}
	if s.Width <= 0 || s.Height <= 0 || s.Density < 0 {
		return fmt.Errorf("%w: size %vx%v density %v", ErrInvalidSpec, s.Width, s.Height, s.Density)
	}
	if s.Health.Hitpoints <= 0 {
		return fmt.Errorf("%w: hitpoints %d", ErrInvalidSpec, s.Health.Hitpoints)
	}
	if s.Kind != KindPlayer && s.Script == "" {
		return fmt.Errorf("%w: enemy %q has no script", ErrInvalidSpec, s.Name)
	}
	return nil
}

// YAMLColor decodes "#rrggbb" or "#rrggbbaa".
type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("%w: color at line %d is not a scalar", ErrInvalidSpec, node.Line)
	}
	rgba, err := parseHexColor(node.Value)
	if err != nil {
		return fmt.Errorf("%w: line %d: %v", ErrInvalidSpec, node.Line, err)
	}
	c.Color = rgba
	return nil
}

func parseHexColor(text string) (color.NRGBA, error) {
	digits := strings.TrimPrefix(text, "#")
	if len(digits) == 6 {
		digits += "ff"
	}
	if len(digits) != 8 {
		return color.NRGBA{}, fmt.Errorf("color %q: want 6 or 8 hex digits", text)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", text, err)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
