package replay

import (
	"errors"
	"fmt"
	"math"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/milk9111/stfu/physics"
	"github.com/milk9111/stfu/sim"
)

var ErrInvalidReplay = errors.New("replay: invalid replay")

// Frame is one rendered frame: the wall-clock time it covered and the input
// every player held during it. Intents[i] belongs to player i+1.
type Frame struct {
	Dt      float64      `yaml:"dt"`
	Intents []sim.Intent `yaml:"in,omitempty"`
}

// Replay is a recorded session that can be fed back into a fresh
// simulation of the same level.
type Replay struct {
	ID      uuid.UUID `yaml:"id"`
	Level   string    `yaml:"level"`
	Players int       `yaml:"players"`
	Frames  []Frame   `yaml:"frames"`
}

// Duration is the wall-clock time the replay covers.
func (r *Replay) Duration() float64 {
	var d float64
	for _, f := range r.Frames {
		d += f.Dt
	}
	return d
}

func (r *Replay) Validate() error {
	if r == nil {
		return fmt.Errorf("%w: nil", ErrInvalidReplay)
	}
	if r.ID == uuid.Nil {
		return fmt.Errorf("%w: missing id", ErrInvalidReplay)
	}
	if r.Level == "" {
		return fmt.Errorf("%w: missing level", ErrInvalidReplay)
	}
	if r.Players < 1 || r.Players > physics.MaxPlayers {
		return fmt.Errorf("%w: players %d out of range", ErrInvalidReplay, r.Players)
	}
	for i, f := range r.Frames {
		if f.Dt < 0 || math.IsNaN(f.Dt) || math.IsInf(f.Dt, 0) {
			return fmt.Errorf("%w: frame %d dt %v", ErrInvalidReplay, i, f.Dt)
		}
		if len(f.Intents) > r.Players {
			return fmt.Errorf("%w: frame %d has %d intents for %d players", ErrInvalidReplay, i, len(f.Intents), r.Players)
		}
	}
	return nil
}

func Encode(r *Replay) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return yaml.Marshal(r)
}

func Decode(data []byte) (*Replay, error) {
	var r Replay
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidReplay, err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Recorder captures frames as the runner plays them.
type Recorder struct {
	replay Replay
}

func NewRecorder(level string, players int) *Recorder {
	return &Recorder{replay: Replay{ID: uuid.New(), Level: level, Players: players}}
}

// Record appends one frame. Missing intents are recorded as idle and extra
// ones are dropped.
func (rec *Recorder) Record(dt float64, intents []sim.Intent) {
	f := Frame{Dt: dt, Intents: make([]sim.Intent, rec.replay.Players)}
	copy(f.Intents, intents)
	rec.replay.Frames = append(rec.replay.Frames, f)
}

func (rec *Recorder) Len() int { return len(rec.replay.Frames) }

// Replay returns a copy of everything recorded so far.
func (rec *Recorder) Replay() *Replay {
	r := rec.replay
	r.Frames = make([]Frame, len(rec.replay.Frames))
	copy(r.Frames, rec.replay.Frames)
	return &r
}

// Run feeds every frame of r into s, which must have been loaded with the
// replay's level and player count.
func Run(s *sim.Simulation, r *Replay) error {
	if err := r.Validate(); err != nil {
		return err
	}
	for i, f := range r.Frames {
		for p, in := range f.Intents {
			if err := s.SetIntent(p+1, in); err != nil {
				return fmt.Errorf("replay: frame %d: %w", i, err)
			}
		}
		s.Update(f.Dt)
	}
	return nil
}
