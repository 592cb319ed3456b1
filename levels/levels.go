package levels

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed *.toml
var LevelsFS embed.FS

var ErrInvalidLevel = errors.New("levels: invalid level")

// Level is static geometry plus spawn points. Every coordinate is in
// pixels with Y pointing down; boxes are given by their top-left corner.
type Level struct {
	Name      string       `toml:"name"`
	Width     float64      `toml:"width"`
	Height    float64      `toml:"height"`
	Spawns    []Point      `toml:"spawn"`
	Boxes     []Box        `toml:"box"`
	Platforms []Platform   `toml:"platform"`
	Enemies   []EnemySpawn `toml:"enemy"`
	// Checkpoints move every player's respawn point to their center once
	// touched.
	Checkpoints []Area `toml:"checkpoint"`
}

type Point struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
}

// Box kinds.
const (
	KindGround   = "ground"
	KindPlatform = "platform"
	KindDeath    = "death"
)

type Box struct {
	X    float64 `toml:"x"`
	Y    float64 `toml:"y"`
	W    float64 `toml:"w"`
	H    float64 `toml:"h"`
	Kind string  `toml:"kind"`
}

// Area is a rectangle given by its top-left corner.
type Area struct {
	X float64 `toml:"x"`
	Y float64 `toml:"y"`
	W float64 `toml:"w"`
	H float64 `toml:"h"`
}

// Platform kinds. An empty kind is linear.
const (
	PlatformLinear   = "linear"
	PlatformCircular = "circular"
	PlatformFalling  = "falling"
)

// Default falling platform delays, in seconds.
const (
	DefaultFallDelay  = 0.35
	DefaultResetDelay = 5
)

// Platform is a moving tile centered on From. Linear platforms shuttle
// between From and To, circular ones orbit the midpoint of From and To,
// and falling ones sit at From until stood on.
type Platform struct {
	Kind             string  `toml:"kind"`
	From             Point   `toml:"from"`
	To               Point   `toml:"to"`
	W                float64 `toml:"w"`
	H                float64 `toml:"h"`
	Speed            float64 `toml:"speed"`
	SlowRadius       float64 `toml:"slow_radius"`
	Reverse          bool    `toml:"reverse"`
	CounterClockwise bool    `toml:"counter_clockwise"`
	FallDelay        float64 `toml:"fall_delay"`
	ResetDelay       float64 `toml:"reset_delay"`
}

// Delays returns the falling delays with defaults filled in.
func (p Platform) Delays() (fall, reset float64) {
	fall, reset = p.FallDelay, p.ResetDelay
	if fall == 0 {
		fall = DefaultFallDelay
	}
	if reset == 0 {
		reset = DefaultResetDelay
	}
	return fall, reset
}

type EnemySpawn struct {
	Prefab      string  `toml:"prefab"`
	X           float64 `toml:"x"`
	Y           float64 `toml:"y"`
	FacingRight bool    `toml:"facing_right"`
}

// LoadLevelFromFS decodes an embedded level.
func LoadLevelFromFS(name string) (*Level, error) {
	data, err := fs.ReadFile(LevelsFS, name)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return Parse(data)
}

// Load prefers a level file on disk and falls back to the embedded copy.
func Load(name string) (*Level, error) {
	if data, err := os.ReadFile(name); err == nil {
		return Parse(data)
	}
	return LoadLevelFromFS(name)
}

func Parse(data []byte) (*Level, error) {
	var lvl Level
	md, err := toml.Decode(string(data), &lvl)
	if err != nil {
		return nil, fmt.Errorf("decode level: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown key %s", ErrInvalidLevel, undecoded[0])
	}
	if err := lvl.Validate(); err != nil {
		return nil, err
	}
	return &lvl, nil
}

func (l *Level) Validate() error {
	if l.Width <= 0 || l.Height <= 0 {
		return fmt.Errorf("%w: size %vx%v", ErrInvalidLevel, l.Width, l.Height)
	}
	if len(l.Spawns) == 0 {
		return fmt.Errorf("%w: no spawn points", ErrInvalidLevel)
	}
	for i, b := range l.Boxes {
		if b.W <= 0 || b.H <= 0 {
			return fmt.Errorf("%w: box %d has size %vx%v", ErrInvalidLevel, i, b.W, b.H)
		}
		switch b.Kind {
		case KindGround, KindPlatform, KindDeath:
		default:
			return fmt.Errorf("%w: box %d has kind %q", ErrInvalidLevel, i, b.Kind)
		}
	}
	for i, p := range l.Platforms {
		if err := p.validate(); err != nil {
			return fmt.Errorf("%w: platform %d: %v", ErrInvalidLevel, i, err)
		}
	}
	for i, c := range l.Checkpoints {
		if c.W <= 0 || c.H <= 0 {
			return fmt.Errorf("%w: checkpoint %d has size %vx%v", ErrInvalidLevel, i, c.W, c.H)
		}
	}
	for i, e := range l.Enemies {
		if e.Prefab == "" {
			return fmt.Errorf("%w: enemy %d has no prefab", ErrInvalidLevel, i)
		}
	}
	return nil
}

func (p Platform) validate() error {
	if p.W <= 0 || p.H <= 0 {
		return fmt.Errorf("size %vx%v", p.W, p.H)
	}
	switch p.Kind {
	case "", PlatformLinear, PlatformCircular:
		if p.Speed <= 0 {
			return fmt.Errorf("speed %v", p.Speed)
		}
		if p.From == p.To {
			return fmt.Errorf("from equals to")
		}
	case PlatformFalling:
		if p.FallDelay < 0 || p.ResetDelay < 0 {
			return fmt.Errorf("delays %v/%v", p.FallDelay, p.ResetDelay)
		}
	default:
		return fmt.Errorf("kind %q", p.Kind)
	}
	return nil
}

// Center returns the middle of the area.
func (a Area) Center() Point {
	return Point{X: a.X + a.W/2, Y: a.Y + a.H/2}
}

// Spawn returns the spawn point of the 1-based player index, wrapping when
// the level has fewer points than players.
func (l *Level) Spawn(index int) Point {
	if index < 1 {
		index = 1
	}
	return l.Spawns[(index-1)%len(l.Spawns)]
}
